// Package ba2fmt implements read support for the Fallout 4 BA2 archive
// format, covering both the general-payload and DX10-texture sub-formats.
package ba2fmt

import (
	"github.com/bgrewell/bsa-kit/pkg/bsaerr"
	"github.com/bgrewell/bsa-kit/pkg/bytesutil"
	"github.com/bgrewell/bsa-kit/pkg/consts"
)

// Format distinguishes the BA2 sub-format a header declares.
type Format int

const (
	// FormatGeneral is the "GNRL" tag: one chunk per entry, no texture metadata.
	FormatGeneral Format = iota
	// FormatDX10 is the "DX10" tag: one or more mip-range chunks per entry.
	FormatDX10
)

// Header is the 24-byte BA2 archive header.
type Header struct {
	Format            Format
	FileCount         uint32
	StringTableOffset uint64
}

// ReadHeader parses and validates the fixed 24-byte BA2 header.
func ReadHeader(c *bytesutil.Cursor) (Header, error) {
	magic, err := c.Bytes(4)
	if err != nil {
		return Header{}, err
	}
	if string(magic) != consts.BA2Magic {
		return Header{}, bsaerr.New(bsaerr.InvalidMagic, "ba2: expected magic %q, got %q", consts.BA2Magic, magic)
	}

	version, err := c.U32()
	if err != nil {
		return Header{}, err
	}
	if version != consts.BA2Version {
		return Header{}, bsaerr.New(bsaerr.InvalidVersion, "ba2: unsupported version %d", version)
	}

	formatTag, err := c.Bytes(4)
	if err != nil {
		return Header{}, err
	}
	var format Format
	switch string(formatTag) {
	case consts.BA2FormatGeneral:
		format = FormatGeneral
	case consts.BA2FormatDX10:
		format = FormatDX10
	default:
		return Header{}, bsaerr.New(bsaerr.UnsupportedFormat, "ba2: unrecognized format tag %q", formatTag)
	}

	fileCount, err := c.U32()
	if err != nil {
		return Header{}, err
	}
	stringTableOffset, err := c.U64()
	if err != nil {
		return Header{}, err
	}

	return Header{Format: format, FileCount: fileCount, StringTableOffset: stringTableOffset}, nil
}

// Write appends the 24-byte header in its on-disk layout.
func (h Header) Write(w *bytesutil.Writer) {
	w.Raw([]byte(consts.BA2Magic))
	w.U32(consts.BA2Version)
	switch h.Format {
	case FormatDX10:
		w.Raw([]byte(consts.BA2FormatDX10))
	default:
		w.Raw([]byte(consts.BA2FormatGeneral))
	}
	w.U32(h.FileCount)
	w.U64(h.StringTableOffset)
}

// NameHash is the 12-byte (file, extension, directory) hash triple BA2
// chunk headers key their entries by.
type NameHash struct {
	File      uint32
	Extension uint32
	Directory uint32
}

func readNameHash(c *bytesutil.Cursor) (NameHash, error) {
	file, err := c.U32()
	if err != nil {
		return NameHash{}, err
	}
	ext, err := c.U32()
	if err != nil {
		return NameHash{}, err
	}
	dir, err := c.U32()
	if err != nil {
		return NameHash{}, err
	}
	return NameHash{File: file, Extension: ext, Directory: dir}, nil
}

func (h NameHash) write(w *bytesutil.Writer) {
	w.U32(h.File)
	w.U32(h.Extension)
	w.U32(h.Directory)
}

// GeneralChunkHeader is the 16-byte chunk header for a general-payload entry.
type GeneralChunkHeader struct {
	ID            NameHash
	DataFileIndex uint8
	ChunkCount    uint8
}

// ReadGeneralChunkHeader parses a 16-byte general chunk header, validating
// the embedded chunk-size field matches the fixed expected value.
func ReadGeneralChunkHeader(c *bytesutil.Cursor) (GeneralChunkHeader, error) {
	id, err := readNameHash(c)
	if err != nil {
		return GeneralChunkHeader{}, err
	}
	dataFileIndex, err := c.U8()
	if err != nil {
		return GeneralChunkHeader{}, err
	}
	chunkCount, err := c.U8()
	if err != nil {
		return GeneralChunkHeader{}, err
	}
	chunkSize, err := c.U16()
	if err != nil {
		return GeneralChunkHeader{}, err
	}
	if chunkSize != consts.BA2GeneralChunkSizeField {
		return GeneralChunkHeader{}, bsaerr.New(bsaerr.InvalidHeader, "ba2: general chunk header declares size %d, want %d", chunkSize, consts.BA2GeneralChunkSizeField)
	}
	return GeneralChunkHeader{ID: id, DataFileIndex: dataFileIndex, ChunkCount: chunkCount}, nil
}

// Write appends the 16-byte general chunk header.
func (h GeneralChunkHeader) Write(w *bytesutil.Writer) {
	h.ID.write(w)
	w.U8(h.DataFileIndex)
	w.U8(h.ChunkCount)
	w.U16(consts.BA2GeneralChunkSizeField)
}

// DirectXChunkHeader is the 24-byte chunk header for a DX10 texture entry.
type DirectXChunkHeader struct {
	ID            NameHash
	DataFileIndex uint8
	ChunkCount    uint8
	Height        uint16
	Width         uint16
	MipCount      uint8
	Format        uint8
	Flags         uint8
	TileMode      uint8
}

// ReadDirectXChunkHeader parses a 24-byte DX10 chunk header, validating the
// embedded chunk-size field.
func ReadDirectXChunkHeader(c *bytesutil.Cursor) (DirectXChunkHeader, error) {
	id, err := readNameHash(c)
	if err != nil {
		return DirectXChunkHeader{}, err
	}
	dataFileIndex, err := c.U8()
	if err != nil {
		return DirectXChunkHeader{}, err
	}
	chunkCount, err := c.U8()
	if err != nil {
		return DirectXChunkHeader{}, err
	}
	chunkSize, err := c.U16()
	if err != nil {
		return DirectXChunkHeader{}, err
	}
	if chunkSize != consts.BA2DX10ChunkSizeField {
		return DirectXChunkHeader{}, bsaerr.New(bsaerr.InvalidHeader, "ba2: dx10 chunk header declares size %d, want %d", chunkSize, consts.BA2DX10ChunkSizeField)
	}
	height, err := c.U16()
	if err != nil {
		return DirectXChunkHeader{}, err
	}
	width, err := c.U16()
	if err != nil {
		return DirectXChunkHeader{}, err
	}
	mipCount, err := c.U8()
	if err != nil {
		return DirectXChunkHeader{}, err
	}
	format, err := c.U8()
	if err != nil {
		return DirectXChunkHeader{}, err
	}
	flags, err := c.U8()
	if err != nil {
		return DirectXChunkHeader{}, err
	}
	tileMode, err := c.U8()
	if err != nil {
		return DirectXChunkHeader{}, err
	}
	return DirectXChunkHeader{
		ID: id, DataFileIndex: dataFileIndex, ChunkCount: chunkCount,
		Height: height, Width: width, MipCount: mipCount,
		Format: format, Flags: flags, TileMode: tileMode,
	}, nil
}

// Write appends the 24-byte DX10 chunk header.
func (h DirectXChunkHeader) Write(w *bytesutil.Writer) {
	h.ID.write(w)
	w.U8(h.DataFileIndex)
	w.U8(h.ChunkCount)
	w.U16(consts.BA2DX10ChunkSizeField)
	w.U16(h.Height)
	w.U16(h.Width)
	w.U8(h.MipCount)
	w.U8(h.Format)
	w.U8(h.Flags)
	w.U8(h.TileMode)
}

// ChunkData is the per-chunk payload descriptor shared by both sub-formats;
// DX10 chunks additionally carry a mip range.
type ChunkData struct {
	DataFileOffset   uint64
	CompressedSize   uint32 // 0 means the chunk is stored uncompressed.
	DecompressedSize uint32
	MipFirst         uint16 // only meaningful for DX10 chunks.
	MipLast          uint16
}

// ReadGeneralChunkData parses a 20-byte general chunk-data record,
// validating the trailing sentinel.
func ReadGeneralChunkData(c *bytesutil.Cursor) (ChunkData, error) {
	offset, err := c.U64()
	if err != nil {
		return ChunkData{}, err
	}
	compressed, err := c.U32()
	if err != nil {
		return ChunkData{}, err
	}
	decompressed, err := c.U32()
	if err != nil {
		return ChunkData{}, err
	}
	sentinel, err := c.U32()
	if err != nil {
		return ChunkData{}, err
	}
	if sentinel != consts.BA2ChunkSentinel {
		return ChunkData{}, bsaerr.New(bsaerr.BadSentinel, "ba2: general chunk sentinel 0x%08X, want 0x%08X", sentinel, consts.BA2ChunkSentinel)
	}
	return ChunkData{DataFileOffset: offset, CompressedSize: compressed, DecompressedSize: decompressed}, nil
}

// Write appends the 20-byte general chunk-data record.
func (d ChunkData) Write(w *bytesutil.Writer) {
	w.U64(d.DataFileOffset)
	w.U32(d.CompressedSize)
	w.U32(d.DecompressedSize)
	w.U32(consts.BA2ChunkSentinel)
}

// ReadDirectXChunkData parses a 24-byte DX10 chunk-data record, validating
// the trailing sentinel.
func ReadDirectXChunkData(c *bytesutil.Cursor) (ChunkData, error) {
	offset, err := c.U64()
	if err != nil {
		return ChunkData{}, err
	}
	compressed, err := c.U32()
	if err != nil {
		return ChunkData{}, err
	}
	decompressed, err := c.U32()
	if err != nil {
		return ChunkData{}, err
	}
	mipFirst, err := c.U16()
	if err != nil {
		return ChunkData{}, err
	}
	mipLast, err := c.U16()
	if err != nil {
		return ChunkData{}, err
	}
	sentinel, err := c.U32()
	if err != nil {
		return ChunkData{}, err
	}
	if sentinel != consts.BA2ChunkSentinel {
		return ChunkData{}, bsaerr.New(bsaerr.BadSentinel, "ba2: dx10 chunk sentinel 0x%08X, want 0x%08X", sentinel, consts.BA2ChunkSentinel)
	}
	return ChunkData{
		DataFileOffset: offset, CompressedSize: compressed, DecompressedSize: decompressed,
		MipFirst: mipFirst, MipLast: mipLast,
	}, nil
}

// WriteDX appends the 24-byte DX10 chunk-data record, including the mip range.
func (d ChunkData) WriteDX(w *bytesutil.Writer) {
	w.U64(d.DataFileOffset)
	w.U32(d.CompressedSize)
	w.U32(d.DecompressedSize)
	w.U16(d.MipFirst)
	w.U16(d.MipLast)
	w.U32(consts.BA2ChunkSentinel)
}
