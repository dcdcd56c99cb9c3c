// Package bytesutil provides the little-endian byte cursor and wire-format
// string helpers shared by the tes3fmt, tes4fmt, and ba2fmt readers/writers.
package bytesutil

import (
	"encoding/binary"
	"fmt"
)

// Cursor reads little-endian fields from an in-memory byte slice, advancing
// an internal offset and reporting a bounds error instead of panicking.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for sequential little-endian reads starting at 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the cursor's current offset into buf.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the number of unread bytes remaining.
func (c *Cursor) Len() int { return len(c.buf) - c.pos }

// Seek repositions the cursor to an absolute offset within buf.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.buf) {
		return fmt.Errorf("bytesutil: seek position %d out of bounds (len %d)", pos, len(c.buf))
	}
	c.pos = pos
	return nil
}

func (c *Cursor) take(n int) ([]byte, error) {
	if c.pos+n > len(c.buf) {
		return nil, fmt.Errorf("bytesutil: need %d bytes at offset %d, have %d", n, c.pos, len(c.buf)-c.pos)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// U8 reads a single byte.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a little-endian uint64.
func (c *Cursor) U64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Bytes reads n raw bytes.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	return c.take(n)
}

// Skip advances the cursor by n bytes without returning them.
func (c *Cursor) Skip(n int) error {
	_, err := c.take(n)
	return err
}

// Writer accumulates little-endian fields into a growable byte slice.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty little-endian Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// U8 appends a single byte.
func (w *Writer) U8(v uint8) { w.buf = append(w.buf, v) }

// U16 appends a little-endian uint16.
func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// U32 appends a little-endian uint32.
func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// U64 appends a little-endian uint64.
func (w *Writer) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Raw appends b verbatim.
func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }

// PutU32At overwrites 4 bytes at offset, used for back-patching placeholder
// fields once real offsets and sizes are known.
func (w *Writer) PutU32At(offset int, v uint32) error {
	if offset < 0 || offset+4 > len(w.buf) {
		return fmt.Errorf("bytesutil: PutU32At offset %d out of bounds (len %d)", offset, len(w.buf))
	}
	binary.LittleEndian.PutUint32(w.buf[offset:offset+4], v)
	return nil
}
