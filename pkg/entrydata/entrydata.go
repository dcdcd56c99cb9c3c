// Package entrydata provides the lazy, read-on-demand view over a single
// archive entry's payload bytes, shared by every format's reader.
package entrydata

import (
	"io"

	"github.com/bgrewell/bsa-kit/pkg/bsaerr"
	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"
)

// RawEntryData is the uninterpreted byte range an archive's file record
// points at, before any compression framing is applied. It may be backed by
// a slice (zero-copy), an owned buffer, or a bounded stream over the
// archive's underlying reader.
type RawEntryData struct {
	slice  []byte
	stream io.Reader
	length int64
}

// FromSlice wraps a zero-copy slice view, typically backed by an in-memory
// or memory-mapped archive.
func FromSlice(b []byte) RawEntryData {
	return RawEntryData{slice: b, length: int64(len(b))}
}

// FromStream wraps a bounded stream of exactly length bytes, typically an
// io.LimitReader over a seeked file handle.
func FromStream(r io.Reader, length int64) RawEntryData {
	return RawEntryData{stream: io.LimitReader(r, length), length: length}
}

// Len returns the number of raw bytes this entry spans.
func (r RawEntryData) Len() int64 { return r.length }

// ToSlice returns the backing slice, if this instance is slice-backed.
func (r RawEntryData) ToSlice() ([]byte, bool) {
	if r.slice != nil {
		return r.slice, true
	}
	return nil, false
}

// Read implements io.Reader, reading from whichever backing store is set.
func (r *RawEntryData) Read(p []byte) (int, error) {
	if r.stream != nil {
		return r.stream.Read(p)
	}
	if len(r.slice) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.slice)
	r.slice = r.slice[n:]
	return n, nil
}

// IntoOwned reads the entirety of the raw data into a freshly allocated
// buffer, regardless of backing store.
func (r RawEntryData) IntoOwned() ([]byte, error) {
	if b, ok := r.ToSlice(); ok {
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	}
	buf := make([]byte, r.length)
	if _, err := io.ReadFull(r.stream, buf); err != nil {
		return nil, bsaerr.Wrap(bsaerr.Io, err, "reading raw entry data")
	}
	return buf, nil
}

// framing distinguishes how EntryData must decode RawEntryData into the
// entry's logical (uncompressed) payload.
type framing int

const (
	framingRaw framing = iota
	framingZlib
	framingLZ4
)

// EntryData is the logical (possibly decompressed) view of a single
// archive entry's payload.
type EntryData struct {
	kind            framing
	raw             RawEntryData
	uncompressedLen uint32
}

// NewUncompressed wraps raw with no decompression framing.
func NewUncompressed(raw RawEntryData) EntryData {
	return EntryData{kind: framingRaw, raw: raw}
}

// NewZlib wraps raw as a zlib-compressed stream whose decompressed size is
// declared by the archive format as uncompressedLen.
func NewZlib(raw RawEntryData, uncompressedLen uint32) EntryData {
	return EntryData{kind: framingZlib, raw: raw, uncompressedLen: uncompressedLen}
}

// NewLZ4 wraps raw as an LZ4-frame-compressed stream whose decompressed
// size is declared by the archive format as uncompressedLen.
func NewLZ4(raw RawEntryData, uncompressedLen uint32) EntryData {
	return EntryData{kind: framingLZ4, raw: raw, uncompressedLen: uncompressedLen}
}

// Len returns the entry's logical (decompressed) length.
func (e EntryData) Len() int64 {
	switch e.kind {
	case framingZlib, framingLZ4:
		return int64(e.uncompressedLen)
	default:
		return e.raw.Len()
	}
}

// ToSlice returns the backing slice if this entry is both raw (no
// decompression needed) and slice-backed.
func (e EntryData) ToSlice() ([]byte, bool) {
	if e.kind != framingRaw {
		return nil, false
	}
	return e.raw.ToSlice()
}

// reader opens the decompression chain, if any, over the raw bytes.
func (e *EntryData) reader() (io.Reader, error) {
	raw := e.raw
	switch e.kind {
	case framingZlib:
		zr, err := zlib.NewReader(&raw)
		if err != nil {
			return nil, bsaerr.Wrap(bsaerr.Compression, err, "opening zlib entry stream")
		}
		return zr, nil
	case framingLZ4:
		return lz4.NewReader(&raw), nil
	default:
		return &raw, nil
	}
}

// IntoOwned reads the entry's full logical payload into a freshly allocated
// buffer, decompressing as needed.
func (e EntryData) IntoOwned() ([]byte, error) {
	if e.kind == framingRaw {
		return e.raw.IntoOwned()
	}
	r, err := e.reader()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, e.uncompressedLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, bsaerr.Wrap(bsaerr.Compression, err, "decompressing entry data")
	}
	return buf, nil
}

// NewReader returns an io.Reader over the entry's logical payload, applying
// whatever decompression framing is configured. Each call opens a fresh
// decompression chain over the entry's raw bytes: slice-backed data is read
// from its start on every call, while stream-backed data is consumed by the
// first reader.
func (e *EntryData) NewReader() (io.Reader, error) {
	return e.reader()
}

// Detach reads the entry's raw (possibly still-compressed) bytes into an
// owned, slice-backed buffer and returns a new EntryData over that buffer
// with the same framing. The result no longer references the archive's
// underlying stream, so it may be handed to another goroutine to decompress
// and write without racing the main thread's sequential reads.
func (e EntryData) Detach() (EntryData, error) {
	buf, err := e.raw.IntoOwned()
	if err != nil {
		return EntryData{}, err
	}
	e.raw = FromSlice(buf)
	return e, nil
}
