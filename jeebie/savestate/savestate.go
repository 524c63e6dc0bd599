// Package savestate writes and reads compressed emulator snapshots.
//
// A snapshot is a short header (magic and format version) followed by a zstd
// stream holding a single gob-encoded value.
package savestate

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Version is bumped whenever a snapshotted struct changes shape.
const Version uint8 = 1

var magic = []byte("JBST")

var (
	// ErrNotSnapshot means the stream does not start with the snapshot magic.
	ErrNotSnapshot = errors.New("not a save state")
	// ErrVersion means the snapshot was written by an incompatible build.
	ErrVersion = errors.New("unsupported save state version")
)

// Encode compresses v into w.
func Encode(w io.Writer, v any) error {
	header := append(bytes.Clone(magic), Version)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing save state header: %w", err)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating compressor: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(v); err != nil {
		zw.Close()
		return fmt.Errorf("encoding save state: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flushing save state: %w", err)
	}
	return nil
}

// Decode reads a snapshot written by Encode into v, which must be a pointer.
func Decode(r io.Reader, v any) error {
	header := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("%w: %w", ErrNotSnapshot, err)
	}
	if !bytes.Equal(header[:len(magic)], magic) {
		return ErrNotSnapshot
	}
	if got := header[len(magic)]; got != Version {
		return fmt.Errorf("%w: %d, want %d", ErrVersion, got, Version)
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("creating decompressor: %w", err)
	}
	defer zr.Close()

	if err := gob.NewDecoder(zr).Decode(v); err != nil {
		return fmt.Errorf("decoding save state: %w", err)
	}
	return nil
}
