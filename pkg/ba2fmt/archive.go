package ba2fmt

import (
	"io"

	"github.com/bgrewell/bsa-kit/pkg/bsaerr"
	"github.com/bgrewell/bsa-kit/pkg/bytesutil"
	"github.com/bgrewell/bsa-kit/pkg/codepage"
	"github.com/bgrewell/bsa-kit/pkg/entrydata"
)

// Chunk is one fragment of a BA2 entry's payload. General entries have
// exactly one chunk; DX10 entries may have several, one per mip range.
type Chunk struct {
	DataFileOffset   uint64
	CompressedSize   uint32
	DecompressedSize uint32
	MipFirst         uint16
	MipLast          uint16
}

// Entry is a single named file within a BA2 archive.
type Entry struct {
	Name   string
	ID     NameHash
	Chunks []Chunk

	// DX10-only metadata, zero-valued for general entries.
	Height, Width uint16
	MipCount      uint8
	TexFormat     uint8
	Flags         uint8
	TileMode      uint8
}

// Archive is a parsed, read-only view of a BA2 archive's directory; entry
// payloads are fetched lazily via ReadEntry/ReadChunk.
type Archive struct {
	Format  Format
	Entries []Entry

	source io.ReaderAt
}

// Parse reads a complete BA2 archive's header and directory from buf.
// Entry payloads are read lazily from source via ReadEntry/ReadChunk.
func Parse(buf []byte, source io.ReaderAt) (*Archive, error) {
	c := bytesutil.NewCursor(buf)
	header, err := ReadHeader(c)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, header.FileCount)
	switch header.Format {
	case FormatGeneral:
		for i := range entries {
			gh, err := ReadGeneralChunkHeader(c)
			if err != nil {
				return nil, err
			}
			chunks := make([]Chunk, gh.ChunkCount)
			for j := range chunks {
				cd, err := ReadGeneralChunkData(c)
				if err != nil {
					return nil, err
				}
				chunks[j] = Chunk{
					DataFileOffset:   cd.DataFileOffset,
					CompressedSize:   cd.CompressedSize,
					DecompressedSize: cd.DecompressedSize,
				}
			}
			entries[i] = Entry{ID: gh.ID, Chunks: chunks}
		}
	case FormatDX10:
		for i := range entries {
			dh, err := ReadDirectXChunkHeader(c)
			if err != nil {
				return nil, err
			}
			chunks := make([]Chunk, dh.ChunkCount)
			for j := range chunks {
				cd, err := ReadDirectXChunkData(c)
				if err != nil {
					return nil, err
				}
				chunks[j] = Chunk{
					DataFileOffset:   cd.DataFileOffset,
					CompressedSize:   cd.CompressedSize,
					DecompressedSize: cd.DecompressedSize,
					MipFirst:         cd.MipFirst,
					MipLast:          cd.MipLast,
				}
			}
			entries[i] = Entry{
				ID: dh.ID, Chunks: chunks,
				Height: dh.Height, Width: dh.Width, MipCount: dh.MipCount,
				TexFormat: dh.Format, Flags: dh.Flags, TileMode: dh.TileMode,
			}
		}
	}

	if header.StringTableOffset != 0 {
		if err := readStringTable(buf, header.StringTableOffset, entries); err != nil {
			return nil, err
		}
	}

	return &Archive{Format: header.Format, Entries: entries, source: source}, nil
}

func readStringTable(buf []byte, offset uint64, entries []Entry) error {
	if offset >= uint64(len(buf)) {
		return bsaerr.New(bsaerr.BadOffset, "ba2: string table offset %d beyond archive length %d", offset, len(buf))
	}
	c := bytesutil.NewCursor(buf)
	if err := c.Seek(int(offset)); err != nil {
		return err
	}
	for i := range entries {
		raw, err := c.WString()
		if err != nil {
			return bsaerr.Wrap(bsaerr.InvalidHeader, err, "ba2: reading string table entry %d", i)
		}
		entries[i].Name = codepage.Decode(raw)
	}
	return nil
}

// ReadChunk opens the entry's payload for chunk index i as lazy EntryData,
// applying zlib decompression when the chunk declares a compressed size.
func (a *Archive) ReadChunk(e *Entry, i int) (entrydata.EntryData, error) {
	chunk := e.Chunks[i]
	raw := entrydata.FromStream(io.NewSectionReader(a.source, int64(chunk.DataFileOffset), int64(chunkOnDiskLen(chunk))), int64(chunkOnDiskLen(chunk)))
	if chunk.CompressedSize == 0 {
		return entrydata.NewUncompressed(raw), nil
	}
	return entrydata.NewZlib(raw, chunk.DecompressedSize), nil
}

func chunkOnDiskLen(c Chunk) uint32 {
	if c.CompressedSize != 0 {
		return c.CompressedSize
	}
	return c.DecompressedSize
}

// ReadEntry opens an entry's complete logical payload as lazy EntryData,
// decompressing and concatenating its chunks (DX10 entries may carry
// several, one per mip range) in order. General entries have exactly one
// chunk and fall out as a degenerate case of the same reader.
func (a *Archive) ReadEntry(e *Entry) (entrydata.EntryData, error) {
	var total int64
	for _, c := range e.Chunks {
		total += int64(c.DecompressedSize)
	}
	r := &chunkSetReader{archive: a, entry: e}
	return entrydata.NewUncompressed(entrydata.FromStream(r, total)), nil
}

// chunkSetReader concatenates an entry's chunks into one logical stream,
// opening and decompressing each chunk lazily as the read reaches it.
type chunkSetReader struct {
	archive *Archive
	entry   *Entry
	index   int
	cur     io.Reader
}

func (r *chunkSetReader) Read(p []byte) (int, error) {
	for {
		if r.cur == nil {
			if r.index >= len(r.entry.Chunks) {
				return 0, io.EOF
			}
			ed, err := r.archive.ReadChunk(r.entry, r.index)
			if err != nil {
				return 0, err
			}
			cr, err := ed.NewReader()
			if err != nil {
				return 0, err
			}
			r.cur = cr
			r.index++
		}
		n, err := r.cur.Read(p)
		if err == io.EOF {
			r.cur = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}
