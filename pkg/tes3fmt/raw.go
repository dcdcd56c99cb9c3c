// Package tes3fmt implements read and write support for the Morrowind BSA
// archive format: a flat, uncompressed, hash-indexed file table.
package tes3fmt

import (
	"github.com/bgrewell/bsa-kit/pkg/bsaerr"
	"github.com/bgrewell/bsa-kit/pkg/bytesutil"
	"github.com/bgrewell/bsa-kit/pkg/consts"
	"github.com/bgrewell/bsa-kit/pkg/hashing"
)

// Header is the fixed 12-byte TES3 archive header.
type Header struct {
	HashTableOffset uint32
	FileCount       uint32
}

// ReadHeader parses and validates the 12-byte TES3 header.
func ReadHeader(c *bytesutil.Cursor) (Header, error) {
	magic, err := c.U32()
	if err != nil {
		return Header{}, err
	}
	if magic != consts.TES3Magic {
		return Header{}, bsaerr.New(bsaerr.InvalidMagic, "tes3: expected magic 0x%08X, got 0x%08X", consts.TES3Magic, magic)
	}
	hashTableOffset, err := c.U32()
	if err != nil {
		return Header{}, err
	}
	fileCount, err := c.U32()
	if err != nil {
		return Header{}, err
	}
	return Header{HashTableOffset: hashTableOffset, FileCount: fileCount}, nil
}

// Write appends the 12-byte header in its on-disk layout.
func (h Header) Write(w *bytesutil.Writer) {
	w.U32(consts.TES3Magic)
	w.U32(h.HashTableOffset)
	w.U32(h.FileCount)
}

// Record is an 8-byte (size, offset) file record.
type Record struct {
	Size   uint32
	Offset uint32
}

// ReadRecord parses an 8-byte file record.
func ReadRecord(c *bytesutil.Cursor) (Record, error) {
	size, err := c.U32()
	if err != nil {
		return Record{}, err
	}
	offset, err := c.U32()
	if err != nil {
		return Record{}, err
	}
	return Record{Size: size, Offset: offset}, nil
}

// Write appends the 8-byte record.
func (r Record) Write(w *bytesutil.Writer) {
	w.U32(r.Size)
	w.U32(r.Offset)
}

// ReadNameOffset parses a 4-byte name-offset table entry.
func ReadNameOffset(c *bytesutil.Cursor) (uint32, error) {
	return c.U32()
}

// ReadNameHash parses an 8-byte hash-table entry.
func ReadNameHash(c *bytesutil.Cursor) (hashing.TES3Hash, error) {
	v, err := c.U64()
	if err != nil {
		return 0, err
	}
	return hashing.TES3Hash(v), nil
}

// WriteNameHash appends an 8-byte hash-table entry.
func WriteNameHash(w *bytesutil.Writer, h hashing.TES3Hash) {
	w.U64(h.Get())
}
