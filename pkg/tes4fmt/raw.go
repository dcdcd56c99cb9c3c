// Package tes4fmt implements read and write support for the TES4-family
// archive formats (Oblivion v103, Skyrim/FO3/FNV v104, Skyrim Special
// Edition v105).
package tes4fmt

import (
	"github.com/bgrewell/bsa-kit/pkg/bsaerr"
	"github.com/bgrewell/bsa-kit/pkg/bytesutil"
	"github.com/bgrewell/bsa-kit/pkg/consts"
	"github.com/bgrewell/bsa-kit/pkg/hashing"
)

// Header is the fixed 36-byte TES4-family archive header.
type Header struct {
	Version               uint32
	ArchiveFlags          consts.ArchiveFlags
	FolderCount           uint32
	FileCount             uint32
	TotalFolderNameLength uint32
	TotalFileNameLength   uint32
	FileFlags             consts.FileFlags
}

// ReadHeader parses and validates the 36-byte header, including the fixed
// magic, the folder-record-table offset (always 36, immediately following
// the header), and that version is one of 103/104/105.
func ReadHeader(c *bytesutil.Cursor) (Header, error) {
	magic, err := c.Bytes(4)
	if err != nil {
		return Header{}, err
	}
	if string(magic) != consts.TES4Magic {
		return Header{}, bsaerr.New(bsaerr.InvalidMagic, "tes4: expected magic %q, got %q", consts.TES4Magic, magic)
	}

	version, err := c.U32()
	if err != nil {
		return Header{}, err
	}
	switch version {
	case consts.TES4VersionV103, consts.TES4VersionV104, consts.TES4VersionV105:
	default:
		return Header{}, bsaerr.New(bsaerr.InvalidVersion, "tes4: unsupported version %d", version)
	}

	offset, err := c.U32()
	if err != nil {
		return Header{}, err
	}
	if offset != consts.TES4HeaderSize {
		return Header{}, bsaerr.New(bsaerr.InvalidHeader, "tes4: folder-record offset %d, want %d", offset, consts.TES4HeaderSize)
	}

	flags, err := c.U32()
	if err != nil {
		return Header{}, err
	}
	folderCount, err := c.U32()
	if err != nil {
		return Header{}, err
	}
	fileCount, err := c.U32()
	if err != nil {
		return Header{}, err
	}
	totalFolderNameLength, err := c.U32()
	if err != nil {
		return Header{}, err
	}
	totalFileNameLength, err := c.U32()
	if err != nil {
		return Header{}, err
	}
	fileFlags, err := c.U16()
	if err != nil {
		return Header{}, err
	}
	if err := c.Skip(2); err != nil {
		return Header{}, err
	}

	return Header{
		Version:               version,
		ArchiveFlags:          consts.ArchiveFlags(flags),
		FolderCount:           folderCount,
		FileCount:             fileCount,
		TotalFolderNameLength: totalFolderNameLength,
		TotalFileNameLength:   totalFileNameLength,
		FileFlags:             consts.FileFlags(fileFlags),
	}, nil
}

// Write appends the 36-byte header in its on-disk layout.
func (h Header) Write(w *bytesutil.Writer) {
	w.Raw([]byte(consts.TES4Magic))
	w.U32(h.Version)
	w.U32(consts.TES4HeaderSize)
	w.U32(uint32(h.ArchiveFlags))
	w.U32(h.FolderCount)
	w.U32(h.FileCount)
	w.U32(h.TotalFolderNameLength)
	w.U32(h.TotalFileNameLength)
	w.U16(uint16(h.FileFlags))
	w.U16(0)
}

// FolderRecordSize returns the on-disk folder record size for version: 24
// bytes (padded) for SSE (v105), 16 bytes for v103/v104.
func FolderRecordSize(version uint32) int {
	if version == consts.TES4VersionV105 {
		return consts.TES4FolderRecordSizeV105
	}
	return consts.TES4FolderRecordSizeV103
}

// FolderRecord is a single directory's entry in the folder-record table:
// its name hash, how many files it holds, and where its file-record block
// (and optional embedded dirname) begins.
type FolderRecord struct {
	Hash   hashing.TES4Hash
	Count  uint32
	Offset uint32
}

// ReadFolderRecord parses a folder record, choosing the 16- or 24-byte
// layout according to version.
func ReadFolderRecord(c *bytesutil.Cursor, version uint32) (FolderRecord, error) {
	hashVal, err := c.U64()
	if err != nil {
		return FolderRecord{}, err
	}
	count, err := c.U32()
	if err != nil {
		return FolderRecord{}, err
	}
	if version == consts.TES4VersionV105 {
		if err := c.Skip(4); err != nil {
			return FolderRecord{}, err
		}
	}
	offset, err := c.U32()
	if err != nil {
		return FolderRecord{}, err
	}
	if version == consts.TES4VersionV105 {
		if err := c.Skip(4); err != nil {
			return FolderRecord{}, err
		}
	}
	return FolderRecord{Hash: hashing.TES4HashFromU64(hashVal), Count: count, Offset: offset}, nil
}

// Write appends the folder record using the 16- or 24-byte layout
// according to version.
func (f FolderRecord) Write(w *bytesutil.Writer, version uint32) {
	w.U64(f.Hash.ToU64())
	w.U32(f.Count)
	if version == consts.TES4VersionV105 {
		w.U32(0)
	}
	w.U32(f.Offset)
	if version == consts.TES4VersionV105 {
		w.U32(0)
	}
}

// FileRecord is a single file's entry within its folder's file-record
// block: its name hash, compressed or uncompressed size (bit 30 flags a
// per-file override of the archive's default compression), and data offset.
type FileRecord struct {
	Hash              hashing.TES4Hash
	Size              uint32
	InvertCompression bool
	Offset            uint32
}

// ReadFileRecord parses a 16-byte file record.
func ReadFileRecord(c *bytesutil.Cursor) (FileRecord, error) {
	hashVal, err := c.U64()
	if err != nil {
		return FileRecord{}, err
	}
	rawSize, err := c.U32()
	if err != nil {
		return FileRecord{}, err
	}
	offset, err := c.U32()
	if err != nil {
		return FileRecord{}, err
	}
	return FileRecord{
		Hash:              hashing.TES4HashFromU64(hashVal),
		Size:              rawSize &^ consts.NegateCompressionBit,
		InvertCompression: rawSize&consts.NegateCompressionBit != 0,
		Offset:            offset,
	}, nil
}

// Write appends the 16-byte file record, OR-ing in the invert-compression
// bit when set.
func (f FileRecord) Write(w *bytesutil.Writer) {
	size := f.Size
	if f.InvertCompression {
		size |= consts.NegateCompressionBit
	}
	w.U64(f.Hash.ToU64())
	w.U32(size)
	w.U32(f.Offset)
}
