// Package hostxport adapts the block engine to the surface a host
// mass-storage transport (e.g. USB MSC, SCSI-over-whatever) expects:
// Read/Write/Capacity/FlushAll, with every blockengine error folded
// into one of three sense-style categories instead of the engine's
// own taxonomy.
//
// It also implements a process-wide global engine handle: a handle
// that is initialized once before any transport callback can run and
// never reassigned afterward. Bind/Global realize that for code that
// genuinely has no way to thread an *blockengine.Engine through (e.g.
// a C callback table registered once at startup); NewHandler is the
// preferred explicit-dependency-injection alternative for everything
// else.
package hostxport

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/bindkem/blockcore/pkg/blockengine"
)

var globalEngine atomic.Pointer[blockengine.Engine]

// Bind installs engine as the process-wide engine handle. It panics
// if called more than once: the handle is init-before-use and
// never-reassigned, so a second Bind almost certainly means the
// caller is trying to swap volumes under a transport that is already
// running against the first one.
func Bind(engine *blockengine.Engine) {
	if !globalEngine.CompareAndSwap(nil, engine) {
		panic("hostxport: Bind called more than once")
	}
}

// Global returns the process-wide engine handle installed by Bind,
// and whether one has been installed yet.
func Global() (*blockengine.Engine, bool) {
	e := globalEngine.Load()
	return e, e != nil
}

// Handler adapts one *blockengine.Engine to the host-facing surface.
// Prefer constructing a Handler explicitly over relying on Bind/Global
// wherever the caller can thread a reference through directly.
type Handler struct {
	engine *blockengine.Engine
}

// NewHandler wraps engine.
func NewHandler(engine *blockengine.Engine) *Handler {
	return &Handler{engine: engine}
}

// Capacity reports the device's block size and logical block count.
func (h *Handler) Capacity(ctx context.Context) (blockSize, logicalBlockCount uint32, err error) {
	bs, bc, err := h.engine.Capacity(ctx)
	if err != nil {
		return 0, 0, mapError(err)
	}
	return bs, bc, nil
}

// Read reads nblocks logical blocks starting at lbaStart into out.
func (h *Handler) Read(ctx context.Context, lbaStart, nblocks uint32, out []byte) error {
	if err := h.engine.Read(ctx, lbaStart, nblocks, out); err != nil {
		return mapError(err)
	}
	return nil
}

// Write writes nblocks logical blocks starting at lbaStart from in.
func (h *Handler) Write(ctx context.Context, lbaStart, nblocks uint32, in []byte) error {
	if err := h.engine.Write(ctx, lbaStart, nblocks, in); err != nil {
		return mapError(err)
	}
	return nil
}

// FlushAll commits any buffered metadata and transport state.
func (h *Handler) FlushAll(ctx context.Context) error {
	if err := h.engine.FlushAll(ctx); err != nil {
		return mapError(err)
	}
	return nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, blockengine.ErrSizeMismatch),
		errors.Is(err, blockengine.ErrInvalidArgument):
		return fmt.Errorf("%w: %v", ErrIllegalRequest, err)

	case errors.Is(err, blockengine.ErrInvalidFormat),
		errors.Is(err, blockengine.ErrCounterOverflow):
		return fmt.Errorf("%w: %v", ErrMediumError, err)

	case errors.Is(err, blockengine.ErrTransport),
		errors.Is(err, blockengine.ErrAuthenticationFailed),
		errors.Is(err, blockengine.ErrSecureElementError):
		return fmt.Errorf("%w: %v", ErrNotReady, err)

	default:
		return fmt.Errorf("%w: %v", ErrNotReady, err)
	}
}
