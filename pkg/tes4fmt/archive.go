package tes4fmt

import (
	"io"

	"github.com/bgrewell/bsa-kit/pkg/bsaerr"
	"github.com/bgrewell/bsa-kit/pkg/bytesutil"
	"github.com/bgrewell/bsa-kit/pkg/codepage"
	"github.com/bgrewell/bsa-kit/pkg/consts"
	"github.com/bgrewell/bsa-kit/pkg/entrydata"
	"github.com/bgrewell/bsa-kit/pkg/hashing"
)

// Entry is a single named file within a TES4-family archive.
type Entry struct {
	Directory string
	Name      string
	Record    FileRecord
}

// Archive is a parsed, read-only view of a TES4-family archive's folder and
// file tables; entry payloads are fetched lazily via ReadEntry.
type Archive struct {
	Header  Header
	Entries []Entry

	source io.ReaderAt
}

// Parse reads a complete TES4-family archive's header, folder table, file
// tables, and (if present) the file-name block from buf. Entry payloads are
// read lazily from source.
func Parse(buf []byte, source io.ReaderAt) (*Archive, error) {
	c := bytesutil.NewCursor(buf)
	header, err := ReadHeader(c)
	if err != nil {
		return nil, err
	}

	type folderEntry struct {
		dirHash hashing.TES4Hash
		count   uint32
		offset  uint32
		dirName string
	}

	folders := make([]folderEntry, header.FolderCount)
	for i := range folders {
		fr, err := ReadFolderRecord(c, header.Version)
		if err != nil {
			return nil, err
		}
		folders[i].dirHash = fr.Hash
		folders[i].count = fr.Count
		folders[i].offset = fr.Offset
	}

	entries := make([]Entry, 0, header.FileCount)
	for i := range folders {
		// Each folder record's Offset field is the folder block's real byte
		// position plus TotalFileNameLength (a convention the writer follows
		// and a real reader undoes before using the value); the cursor's
		// current position, before this folder's dirname/file-records are
		// consumed, must satisfy that relation exactly.
		wantOffset := uint32(c.Pos()) + header.TotalFileNameLength
		if folders[i].offset != wantOffset {
			return nil, bsaerr.New(bsaerr.InvalidHeader, "tes4: folder %d offset %d, want %d", i, folders[i].offset, wantOffset)
		}
		if header.ArchiveFlags.Has(consts.FlagIncludeDirnames) {
			raw, err := c.BZString()
			if err != nil {
				return nil, bsaerr.Wrap(bsaerr.InvalidHeader, err, "tes4: reading folder %d dirname", i)
			}
			folders[i].dirName = codepage.Decode(raw)
		}
		for j := uint32(0); j < folders[i].count; j++ {
			rec, err := ReadFileRecord(c)
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{Directory: folders[i].dirName, Record: rec})
		}
	}

	if header.ArchiveFlags.Has(consts.FlagIncludeFilenames) {
		for i := range entries {
			raw, err := c.ZString()
			if err != nil {
				return nil, bsaerr.Wrap(bsaerr.InvalidHeader, err, "tes4: reading file name %d", i)
			}
			entries[i].Name = codepage.Decode(raw)
		}
	}

	return &Archive{Header: header, Entries: entries, source: source}, nil
}

// ReadEntry opens an entry's payload as lazy EntryData, applying the
// archive's compression framing (none, zlib for v103/v104, LZ4 for SSE),
// honoring the per-file invert-compression bit, and accounting for the
// optional embedded dirname\filename prefix and the 4-byte uncompressed
// length prefix compressed entries carry.
func (a *Archive) ReadEntry(e *Entry) (entrydata.EntryData, error) {
	offset := int64(e.Record.Offset)
	size := int64(e.Record.Size)

	compressedByDefault := a.Header.ArchiveFlags.Has(consts.FlagCompressed)
	compressed := compressedByDefault != e.Record.InvertCompression

	if a.Header.ArchiveFlags.Has(consts.FlagEmbedFilenames) {
		prefixLen, err := readEmbeddedNameLen(a.source, offset)
		if err != nil {
			return entrydata.EntryData{}, err
		}
		offset += int64(prefixLen)
		size -= int64(prefixLen)
	}

	if !compressed {
		r := io.NewSectionReader(a.source, offset, size)
		return entrydata.NewUncompressed(entrydata.FromStream(r, size)), nil
	}

	var lenBuf [4]byte
	if _, err := a.source.ReadAt(lenBuf[:], offset); err != nil {
		return entrydata.EntryData{}, bsaerr.Wrap(bsaerr.Io, err, "tes4: reading uncompressed-length prefix")
	}
	uncompressedLen := uint32(lenBuf[0]) | uint32(lenBuf[1])<<8 | uint32(lenBuf[2])<<16 | uint32(lenBuf[3])<<24

	raw := entrydata.FromStream(io.NewSectionReader(a.source, offset+4, size-4), size-4)
	if a.Header.Version == consts.TES4VersionV105 {
		return entrydata.NewLZ4(raw, uncompressedLen), nil
	}
	return entrydata.NewZlib(raw, uncompressedLen), nil
}

func readEmbeddedNameLen(source io.ReaderAt, offset int64) (int, error) {
	var lenByte [1]byte
	if _, err := source.ReadAt(lenByte[:], offset); err != nil {
		return 0, bsaerr.Wrap(bsaerr.Io, err, "tes4: reading embedded name length")
	}
	return int(lenByte[0]) + 1, nil
}
