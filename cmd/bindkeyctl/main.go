// bindkeyctl is a diagnostic CLI for exercising the encrypted block
// engine without real storage-link or secure-element hardware: it
// wires a secureelement.SimSession and a storagelink.MemoryLink
// together and drives a blockengine.Engine from the command line.
//
// Usage:
//
//	bindkeyctl [options] <subcommand> [args]
//
// Subcommands:
//
//	capacity                 print block size and logical block count
//	read <lba> <nblocks>     read blocks and print them as hex
//	write <lba> <hexdata>    write hex-encoded bytes starting at lba
//	flush                    flush cached metadata and the link
//	derive-key               print the derived volume key as hex
//
// Options:
//
//	-groups      number of physical sector groups to simulate (default 4)
//	-root-slot   secure element root secret slot (default 9)
//	-volume-id   32 hex chars identifying the volume (default all zero)
//	-seed        hex seed for the simulated secure element (default: hex of "bindkeyctl-dev-seed")
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pion/logging"

	"github.com/bindkem/blockcore/pkg/blockengine"
	"github.com/bindkem/blockcore/pkg/keybind"
	"github.com/bindkem/blockcore/pkg/layout"
	"github.com/bindkem/blockcore/pkg/secureelement"
	"github.com/bindkem/blockcore/pkg/storagelink"
)

func main() {
	groups := flag.Uint("groups", 4, "number of physical sector groups to simulate")
	rootSlot := flag.Uint("root-slot", 9, "secure element root secret slot")
	volumeIDHex := flag.String("volume-id", "", "32 hex chars identifying the volume (default all zero)")
	seedHex := flag.String("seed", hex.EncodeToString([]byte("bindkeyctl-dev-seed")), "hex seed for the simulated secure element")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: bindkeyctl [options] <capacity|read|write|flush|derive-key> [args]")
		os.Exit(2)
	}

	var volumeID [keybind.VolumeIDLen]byte
	if *volumeIDHex != "" {
		raw, err := hex.DecodeString(*volumeIDHex)
		if err != nil || len(raw) != keybind.VolumeIDLen {
			log.Fatalf("volume-id must be %d hex bytes", keybind.VolumeIDLen)
		}
		copy(volumeID[:], raw)
	}

	seed, err := hex.DecodeString(*seedHex)
	if err != nil {
		log.Fatalf("invalid -seed: %v", err)
	}

	var serial [secureelement.SerialLen]byte
	copy(serial[:], "bindkeyctl")
	sess := secureelement.NewSimSession(serial, seed)

	ctx := context.Background()
	logFactory := logging.NewDefaultLoggerFactory()

	if args[0] == "derive-key" {
		key, err := keybind.DeriveVolumeKey(sess, uint16(*rootSlot), volumeID)
		if err != nil {
			log.Fatalf("derive-key: %v", err)
		}
		fmt.Println(hex.EncodeToString(key[:]))
		return
	}

	key, err := keybind.DeriveVolumeKey(sess, uint16(*rootSlot), volumeID)
	if err != nil {
		log.Fatalf("derive volume key: %v", err)
	}

	physBlocks := uint32(*groups) * layout.GroupPhysSectors
	link := storagelink.NewMemoryLink(layout.SectorSize, physBlocks)

	engine, err := blockengine.NewEngine(blockengine.Config{
		Link:   link,
		Key:    key[:],
		Logger: logFactory.NewLogger("bindkeyctl"),
	})
	if err != nil {
		log.Fatalf("NewEngine: %v", err)
	}

	if err := runSubcommand(ctx, engine, args); err != nil {
		log.Fatal(err)
	}
}

func runSubcommand(ctx context.Context, engine *blockengine.Engine, args []string) error {
	switch args[0] {
	case "capacity":
		blockSize, logicalBlocks, err := engine.Capacity(ctx)
		if err != nil {
			return fmt.Errorf("capacity: %w", err)
		}
		fmt.Printf("block_size=%d logical_blocks=%d\n", blockSize, logicalBlocks)
		return nil

	case "read":
		if len(args) != 3 {
			return fmt.Errorf("usage: read <lba> <nblocks>")
		}
		lba, nblocks, err := parseLBAAndCount(args[1], args[2])
		if err != nil {
			return err
		}
		out := make([]byte, uint64(nblocks)*layout.SectorSize)
		if err := engine.Read(ctx, lba, nblocks, out); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		fmt.Println(hex.EncodeToString(out))
		return nil

	case "write":
		if len(args) != 3 {
			return fmt.Errorf("usage: write <lba> <hexdata>")
		}
		var lba uint32
		if _, err := fmt.Sscanf(args[1], "%d", &lba); err != nil {
			return fmt.Errorf("bad lba: %w", err)
		}
		data, err := hex.DecodeString(args[2])
		if err != nil {
			return fmt.Errorf("bad hexdata: %w", err)
		}
		if len(data)%layout.SectorSize != 0 {
			return fmt.Errorf("hexdata must be a multiple of %d bytes", layout.SectorSize)
		}
		nblocks := uint32(len(data) / layout.SectorSize)
		if err := engine.Write(ctx, lba, nblocks, data); err != nil {
			return fmt.Errorf("write: %w", err)
		}
		return nil

	case "flush":
		if err := engine.FlushAll(ctx); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func parseLBAAndCount(lbaArg, nblocksArg string) (lba, nblocks uint32, err error) {
	if _, err = fmt.Sscanf(lbaArg, "%d", &lba); err != nil {
		return 0, 0, fmt.Errorf("bad lba: %w", err)
	}
	if _, err = fmt.Sscanf(nblocksArg, "%d", &nblocks); err != nil {
		return 0, 0, fmt.Errorf("bad nblocks: %w", err)
	}
	return lba, nblocks, nil
}
