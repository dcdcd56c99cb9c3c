package tes3fmt

import (
	"io"
	"sort"

	"github.com/bgrewell/bsa-kit/pkg/bsaerr"
	"github.com/bgrewell/bsa-kit/pkg/bytesutil"
	"github.com/bgrewell/bsa-kit/pkg/consts"
	"github.com/bgrewell/bsa-kit/pkg/hashing"
	"github.com/bgrewell/bsa-kit/pkg/writerdata"
)

// PendingFile is a single (path, payload) pair queued for a TES3 archive
// write. TES3 has no per-file compression, so Data is always the raw bytes.
type PendingFile struct {
	Path string
	Data writerdata.FileData
}

type pendingEntry struct {
	name []byte
	hash hashing.TES3Hash
	file PendingFile
}

// Write assembles a complete TES3 archive from files and streams it to w.
// Entries are normalized, lowercased, and hashed, then a single hash-sorted
// order is used consistently across the record table, name-offset table,
// name block, hash table, and data region, so the on-disk hash table is
// monotonically increasing and safe to binary-search.
func Write(w io.Writer, files []PendingFile) error {
	entries := make([]pendingEntry, 0, len(files))
	for _, f := range files {
		name, ok := normalizeTES3Name(f.Path)
		if !ok {
			return bsaerr.New(bsaerr.InvalidFileName, "tes3: invalid file name %q", f.Path)
		}
		hash, ok := hashing.HashTES3Name(string(name))
		if !ok {
			return bsaerr.New(bsaerr.InvalidFileName, "tes3: cannot hash file name %q", f.Path)
		}
		entries = append(entries, pendingEntry{name: name, hash: hash, file: f})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].hash.Less(entries[j].hash)
	})

	var fileNamesLen uint32
	for _, e := range entries {
		fileNamesLen += uint32(len(e.name)) + 1 // +1 for the NUL terminator.
	}

	recordsLen := uint32(len(entries)) * consts.TES3RecordSize
	nameOffsetsLen := uint32(len(entries)) * 4
	hashTableOffset := fileNamesLen + recordsLen + nameOffsetsLen

	bw := bytesutil.NewWriter()
	Header{HashTableOffset: hashTableOffset, FileCount: uint32(len(entries))}.Write(bw)

	var dataOffset uint32
	records := make([]Record, len(entries))
	for i, e := range entries {
		length, err := e.file.Data.Len()
		if err != nil {
			return bsaerr.Wrap(bsaerr.Io, err, "tes3: measuring %q", e.file.Path)
		}
		records[i] = Record{Size: uint32(length), Offset: dataOffset}
		dataOffset += uint32(length)
	}
	for _, r := range records {
		r.Write(bw)
	}

	nameBlock := bytesutil.NewWriter()
	nameOffsets := make([]uint32, len(entries))
	for i, e := range entries {
		nameOffsets[i] = uint32(nameBlock.Len())
		nameBlock.Raw(e.name)
		nameBlock.U8(0)
	}
	for _, off := range nameOffsets {
		bw.U32(off)
	}
	bw.Raw(nameBlock.Bytes())

	for _, e := range entries {
		WriteNameHash(bw, e.hash)
	}

	if _, err := w.Write(bw.Bytes()); err != nil {
		return bsaerr.Wrap(bsaerr.Io, err, "tes3: writing header and directory")
	}

	for _, e := range entries {
		if _, err := e.file.Data.WriteTo(w); err != nil {
			return bsaerr.Wrap(bsaerr.Io, err, "tes3: writing data for %q", e.file.Path)
		}
	}
	return nil
}

// normalizeTES3Name folds separators to '\\' and lowercases ASCII, matching
// the hash algorithm's own normalization so the hashed and stored forms
// agree; it rejects non-ASCII bytes and embedded NULs.
func normalizeTES3Name(name string) ([]byte, bool) {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		b := name[i]
		switch {
		case b == '/':
			out = append(out, '\\')
		case b == 0:
			return nil, false
		case b >= 'A' && b <= 'Z':
			out = append(out, b+0x20)
		case b < 0x80:
			out = append(out, b)
		default:
			return nil, false
		}
	}
	return out, true
}
