package tes4fmt

import (
	"bytes"
	"io"
	"sort"

	"github.com/bgrewell/bsa-kit/pkg/bsaerr"
	"github.com/bgrewell/bsa-kit/pkg/bytesutil"
	"github.com/bgrewell/bsa-kit/pkg/consts"
	"github.com/bgrewell/bsa-kit/pkg/hashing"
	"github.com/bgrewell/bsa-kit/pkg/pathutil"
	"github.com/bgrewell/bsa-kit/pkg/writerdata"
	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"
)

// PendingFile is a single (directory, file, payload) triple queued for a
// TES4-family archive write.
type PendingFile struct {
	Directory string
	Name      string
	Data      writerdata.FileData
}

type pendingFileEntry struct {
	nameStem []byte
	nameExt  []byte
	hash     hashing.TES4Hash
	data     writerdata.FileData
}

type pendingDir struct {
	nameBytes []byte
	hash      hashing.TES4Hash
	files     []pendingFileEntry
}

// WriteOptions controls the archive version and compression behavior a
// Write call produces.
type WriteOptions struct {
	Version      uint32
	Compressed   bool // archive-wide default; Version's compression algorithm still applies.
	EmbedNames   bool // embed "dirname\filename" ahead of each file's payload.
}

// Write assembles a complete TES4-family archive from files and streams it
// to w. It normalizes and hashes every path, groups files by directory,
// sorts directories and the files within each directory by hash, and
// performs a two-pass emission: placeholder folder and file records first,
// then the real payloads, then a final seek back to fill in the real
// offsets now that they are known.
func Write(w io.WriteSeeker, files []PendingFile, opts WriteOptions) error {
	dirs, err := groupAndHash(files)
	if err != nil {
		return err
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].hash.Less(dirs[j].hash) })
	for _, d := range dirs {
		sort.Slice(d.files, func(i, j int) bool {
			return fileHash(d.files[i]).Less(fileHash(d.files[j]))
		})
	}

	var totalFolderNameLen, totalFileNameLen, fileCount uint32
	for _, d := range dirs {
		if len(d.nameBytes) > 0 {
			totalFolderNameLen += uint32(len(d.nameBytes)) + 1
		}
		for _, f := range d.files {
			fileCount++
			totalFileNameLen += uint32(len(f.nameStem)+len(f.nameExt)) + 1
		}
	}

	archiveFlags := consts.DefaultArchiveFlags
	if opts.Compressed {
		archiveFlags |= consts.FlagCompressed
	}
	if opts.EmbedNames {
		archiveFlags |= consts.FlagEmbedFilenames
	}

	header := Header{
		Version:               opts.Version,
		ArchiveFlags:          archiveFlags,
		FolderCount:           uint32(len(dirs)),
		FileCount:             fileCount,
		TotalFolderNameLength: totalFolderNameLen,
		TotalFileNameLength:   totalFileNameLen,
		FileFlags:             classify(dirs),
	}

	bw := bytesutil.NewWriter()
	header.Write(bw)

	folderRecordOffsets := make([]int, len(dirs))
	for i, d := range dirs {
		folderRecordOffsets[i] = bw.Len()
		FolderRecord{Hash: d.hash, Count: uint32(len(d.files)), Offset: 0}.Write(bw, opts.Version)
	}

	fileRecordOffsets := make([][]int, len(dirs))
	for i, d := range dirs {
		if header.ArchiveFlags.Has(consts.FlagIncludeDirnames) {
			if err := bw.PutBZString(d.nameBytes); err != nil {
				return bsaerr.Wrap(bsaerr.ArchiveTooLarge, err, "tes4: writing directory name")
			}
		}
		offs := make([]int, len(d.files))
		for j, f := range d.files {
			offs[j] = bw.Len()
			FileRecord{Hash: fileHash(f), Size: 0, Offset: 0}.Write(bw)
		}
		fileRecordOffsets[i] = offs
	}

	if header.ArchiveFlags.Has(consts.FlagIncludeFilenames) {
		for _, d := range dirs {
			for _, f := range d.files {
				name := append(append([]byte{}, f.nameStem...), f.nameExt...)
				bw.PutZString(name)
			}
		}
	}

	// Folder-record offset fields store the folder block's real byte
	// position (relative to the start of the archive) plus
	// TotalFileNameLength, not the real position itself -- a real reader
	// subtracts TotalFileNameLength back out before using the value. The
	// real position of folder i's block is the fixed preamble (header plus
	// the whole folder-record table) plus the prefix sum of every prior
	// folder's own block (its optional dirname bzstring plus its file
	// records, each always 16 bytes on disk regardless of version).
	fixedPreamble := uint32(consts.TES4HeaderSize) + uint32(len(dirs))*uint32(FolderRecordSize(opts.Version))
	var priorBlocks uint32
	for i, d := range dirs {
		offset := fixedPreamble + totalFileNameLen + priorBlocks
		if err := patchFolderOffset(bw, folderRecordOffsets[i], opts.Version, offset); err != nil {
			return err
		}
		block := uint32(len(d.files)) * 16 // FileRecord is always 16 bytes on disk.
		if header.ArchiveFlags.Has(consts.FlagIncludeDirnames) {
			block += uint32(len(d.nameBytes)) + 2 // bzstring length byte + NUL.
		}
		priorBlocks += block
	}

	if _, err := w.Write(bw.Bytes()); err != nil {
		return bsaerr.Wrap(bsaerr.Io, err, "tes4: writing header and directory")
	}

	headerLen := int64(bw.Len())
	dataOffset := headerLen
	realFileRecords := make([]FileRecord, 0, fileCount)
	for _, d := range dirs {
		for _, f := range d.files {
			payload, negate, err := encodePayload(f.data, opts)
			if err != nil {
				return err
			}
			if opts.EmbedNames {
				embed := bytesutil.NewWriter()
				full := append(append(append([]byte{}, d.nameBytes...), '\\'), append(f.nameStem, f.nameExt...)...)
				if err := embed.PutBString(full); err != nil {
					return bsaerr.Wrap(bsaerr.ArchiveTooLarge, err, "tes4: embedding file name")
				}
				payload = append(embed.Bytes(), payload...)
			}
			rec := FileRecord{Hash: fileHash(f), Size: uint32(len(payload)), InvertCompression: negate, Offset: uint32(dataOffset)}
			realFileRecords = append(realFileRecords, rec)
			if _, err := w.Write(payload); err != nil {
				return bsaerr.Wrap(bsaerr.Io, err, "tes4: writing payload for %q", string(f.nameStem)+string(f.nameExt))
			}
			dataOffset += int64(len(payload))
		}
	}

	k := 0
	for i := range dirs {
		for j := range dirs[i].files {
			if _, err := w.Seek(int64(fileRecordOffsets[i][j]), io.SeekStart); err != nil {
				return bsaerr.Wrap(bsaerr.Io, err, "tes4: seeking to back-patch file record")
			}
			patch := bytesutil.NewWriter()
			realFileRecords[k].Write(patch)
			if _, err := w.Write(patch.Bytes()); err != nil {
				return bsaerr.Wrap(bsaerr.Io, err, "tes4: back-patching file record")
			}
			k++
		}
	}
	if _, err := w.Seek(0, io.SeekEnd); err != nil {
		return bsaerr.Wrap(bsaerr.Io, err, "tes4: seeking to end after back-patch")
	}
	return nil
}

func fileHash(f pendingFileEntry) hashing.TES4Hash {
	return f.hash
}

func groupAndHash(files []PendingFile) ([]pendingDir, error) {
	byDir := map[string]*pendingDir{}
	order := make([]string, 0)

	for _, file := range files {
		full := file.Name
		if file.Directory != "" {
			full = file.Directory + "\\" + file.Name
		}
		normPath, err := pathutil.Normalize(full)
		if err != nil {
			return nil, bsaerr.Wrap(bsaerr.InvalidFileName, err, "tes4: invalid path %q", full)
		}
		dirNorm, nameNorm := pathutil.SplitPath(normPath)
		stem, ext := pathutil.SplitExtension(nameNorm)

		d, ok := byDir[string(dirNorm)]
		if !ok {
			hash := hashing.HashTES4DirectoryUnchecked(dirNorm)
			d = &pendingDir{nameBytes: dirNorm, hash: hash}
			byDir[string(dirNorm)] = d
			order = append(order, string(dirNorm))
		}

		fileHashVal := hashing.HashTES4FileUnchecked(stem, ext)
		d.files = append(d.files, pendingFileEntry{nameStem: stem, nameExt: ext, hash: fileHashVal, data: file.Data})
	}

	dirs := make([]pendingDir, 0, len(order))
	for _, key := range order {
		dirs = append(dirs, *byDir[key])
	}
	return dirs, nil
}

func classify(dirs []pendingDir) consts.FileFlags {
	var flags consts.FileFlags
	for _, d := range dirs {
		for _, f := range d.files {
			if flag, ok := consts.ExtensionFileFlag[string(f.nameExt)]; ok {
				flags |= flag
			} else {
				flags |= consts.FileFlagMisc
			}
		}
	}
	return flags
}

func patchFolderOffset(bw *bytesutil.Writer, recordOffset int, version uint32, value uint32) error {
	// hash(8) + count(4) [+ pad(4) for v105] precede the offset field.
	fieldOffset := recordOffset + 12
	if version == consts.TES4VersionV105 {
		fieldOffset += 4
	}
	return bw.PutU32At(fieldOffset, value)
}

func encodePayload(fd writerdata.FileData, opts WriteOptions) (payload []byte, negateCompression bool, err error) {
	var buf bytes.Buffer
	if _, err := fd.WriteTo(&buf); err != nil {
		return nil, false, bsaerr.Wrap(bsaerr.Io, err, "tes4: reading entry payload")
	}
	data := buf.Bytes()

	if !opts.Compressed {
		return data, false, nil
	}

	var compressed []byte
	if opts.Version == consts.TES4VersionV105 {
		compressed, err = lz4Compress(data)
	} else {
		compressed, err = zlibCompress(data)
	}
	if err != nil {
		return nil, false, bsaerr.Wrap(bsaerr.Compression, err, "tes4: compressing entry")
	}

	out := make([]byte, 4+len(compressed))
	out[0] = byte(len(data))
	out[1] = byte(len(data) >> 8)
	out[2] = byte(len(data) >> 16)
	out[3] = byte(len(data) >> 24)
	copy(out[4:], compressed)
	return out, false, nil
}

func zlibCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lz4Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
