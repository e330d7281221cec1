package storagelink

import (
	"net"
	"time"

	"github.com/pion/transport/v3/test"
)

// Pipe provides two connected net.Conn endpoints (which satisfy
// io.ReadWriter) for driving a FramedLink against a Serve loop
// entirely in-process, without real transport hardware. It wraps a
// pion/transport/v3/test.Bridge, ticked by a background goroutine so
// callers never manage delivery by hand.
type Pipe struct {
	bridge *test.Bridge
	stopCh chan struct{}
}

// NewPipe creates a Pipe and starts delivering queued packets in the
// background. Callers must call Close when done.
func NewPipe() *Pipe {
	p := &Pipe{
		bridge: test.NewBridge(),
		stopCh: make(chan struct{}),
	}
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.bridge.Tick()
			}
		}
	}()
	return p
}

// Ends returns the two connected endpoints.
func (p *Pipe) Ends() (net.Conn, net.Conn) {
	return p.bridge.GetConn0(), p.bridge.GetConn1()
}

// Close stops background delivery and closes both endpoints.
func (p *Pipe) Close() error {
	close(p.stopCh)
	err0 := p.bridge.GetConn0().Close()
	err1 := p.bridge.GetConn1().Close()
	if err0 != nil {
		return err0
	}
	return err1
}
