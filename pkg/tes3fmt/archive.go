package tes3fmt

import (
	"io"

	"github.com/bgrewell/bsa-kit/pkg/bsaerr"
	"github.com/bgrewell/bsa-kit/pkg/bytesutil"
	"github.com/bgrewell/bsa-kit/pkg/codepage"
	"github.com/bgrewell/bsa-kit/pkg/consts"
	"github.com/bgrewell/bsa-kit/pkg/entrydata"
	"github.com/bgrewell/bsa-kit/pkg/hashing"
)

// Entry is a single named file within a TES3 archive.
type Entry struct {
	Name   string
	Hash   hashing.TES3Hash
	Record Record
}

// Archive is a parsed, read-only view of a TES3 archive's directory; entry
// payloads are fetched lazily via ReadEntry.
type Archive struct {
	Entries []Entry

	dataStart int64
	source    io.ReaderAt
}

// Parse reads a complete TES3 archive's header, record table, name table,
// and hash table from buf. Entry payloads are read lazily from source.
func Parse(buf []byte, source io.ReaderAt) (*Archive, error) {
	c := bytesutil.NewCursor(buf)
	header, err := ReadHeader(c)
	if err != nil {
		return nil, err
	}

	records := make([]Record, header.FileCount)
	for i := range records {
		r, err := ReadRecord(c)
		if err != nil {
			return nil, err
		}
		records[i] = r
	}

	nameOffsets := make([]uint32, header.FileCount)
	for i := range nameOffsets {
		off, err := ReadNameOffset(c)
		if err != nil {
			return nil, err
		}
		nameOffsets[i] = off
	}

	nameBlockStart := c.Pos()
	hashTableStart := consts.TES3HeaderSize + int(header.HashTableOffset)
	if hashTableStart < nameBlockStart {
		return nil, bsaerr.New(bsaerr.InvalidHeader, "tes3: hash table offset %d precedes name block", header.HashTableOffset)
	}
	nameBlock := buf[nameBlockStart:hashTableStart]

	if err := c.Seek(hashTableStart); err != nil {
		return nil, bsaerr.Wrap(bsaerr.InvalidHeader, err, "tes3: hash table offset out of bounds")
	}
	hashes := make([]hashing.TES3Hash, header.FileCount)
	for i := range hashes {
		h, err := ReadNameHash(c)
		if err != nil {
			return nil, err
		}
		hashes[i] = h
	}

	dataStart := int64(c.Pos())

	entries := make([]Entry, header.FileCount)
	for i := range entries {
		name, err := readNameAt(nameBlock, int(nameOffsets[i]))
		if err != nil {
			return nil, err
		}
		entries[i] = Entry{Name: codepage.Decode(name), Hash: hashes[i], Record: records[i]}
	}

	return &Archive{Entries: entries, dataStart: dataStart, source: source}, nil
}

func readNameAt(nameBlock []byte, offset int) ([]byte, error) {
	if offset < 0 || offset > len(nameBlock) {
		return nil, bsaerr.New(bsaerr.BadOffset, "tes3: name offset %d beyond name block length %d", offset, len(nameBlock))
	}
	for i := offset; i < len(nameBlock); i++ {
		if nameBlock[i] == 0 {
			return nameBlock[offset:i], nil
		}
	}
	return nil, bsaerr.New(bsaerr.MissingNul, "tes3: name at offset %d has no NUL terminator", offset)
}

// ReadEntry opens an entry's payload as lazy, uncompressed EntryData; TES3
// archives never compress individual files.
func (a *Archive) ReadEntry(e *Entry) entrydata.EntryData {
	r := io.NewSectionReader(a.source, a.dataStart+int64(e.Record.Offset), int64(e.Record.Size))
	return entrydata.NewUncompressed(entrydata.FromStream(r, int64(e.Record.Size)))
}
