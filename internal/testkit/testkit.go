// Package testkit builds synthetic in-memory archive trees and drives them
// through a real write/open/extract cycle, for use by the functional
// roundtrip harness and by package-level tests that want a whole small
// archive rather than a hand-assembled fixture.
package testkit

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	bsa "github.com/bgrewell/bsa-kit"
	"github.com/bgrewell/bsa-kit/pkg/ba2fmt"
	"github.com/bgrewell/bsa-kit/pkg/bytesutil"
	"github.com/bgrewell/bsa-kit/pkg/consts"
	"github.com/bgrewell/bsa-kit/pkg/extract"
	"github.com/bgrewell/bsa-kit/pkg/writerdata"
	"github.com/stretchr/testify/require"
)

// SyntheticTree returns a deterministic set of archive-relative paths to
// payload bytes, sized to exercise both tiny and multi-kilobyte entries.
func SyntheticTree() map[string][]byte {
	tree := map[string][]byte{
		"meshes\\dungeons\\mines\\caveshaft01.nif": repeating("cave", 4096),
		"meshes\\architecture\\door01.nif":         repeating("door", 37),
		"textures\\dungeons\\rockwall01.dds":        repeating("rock", 16384),
		"textures\\armor\\ironhelmet.dds":           repeating("iron", 257),
		"sound\\fx\\door\\dooropen01.wav":           repeating("boom", 1),
		"sound\\voice\\companion01.mp3":             repeating("talk", 8192),
	}
	return tree
}

func repeating(pattern string, n int) []byte {
	out := make([]byte, 0, len(pattern)*n)
	for i := 0; i < n; i++ {
		out = append(out, pattern...)
	}
	return out
}

// WriteArchive assembles a new archive of the given format from tree and
// writes it to destPath, creating parent directories as needed.
func WriteArchive(format bsa.Format, compressed bool, tree map[string][]byte, destPath string) error {
	w, err := bsa.NewWriter(format, compressed)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	for path, data := range tree {
		if err := w.Add(path, writerdata.BytesData(data)); err != nil {
			return fmt.Errorf("adding %q: %w", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}
	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating %q: %w", destPath, err)
	}
	defer dst.Close()

	if err := w.WriteTo(dst); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}
	return nil
}

// ExtractWithStrategy opens archivePath and extracts its entries using
// strategy, returning the extracted content keyed by archive-relative path.
func ExtractWithStrategy(archivePath string, strategy extract.Strategy) (map[string][]byte, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", archivePath, err)
	}
	defer f.Close()

	archive, err := bsa.Open(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", archivePath, err)
	}

	out := make(map[string][]byte, archive.Len())
	sink := func(path string) (io.WriteCloser, error) {
		return &memWriteCloser{out: out, path: path}, nil
	}

	if err := archive.Extract(strategy, sink); err != nil {
		return nil, fmt.Errorf("extracting with strategy %d: %w", strategy, err)
	}
	return out, nil
}

type memWriteCloser struct {
	out  map[string][]byte
	path string
	buf  []byte
}

func (m *memWriteCloser) Write(p []byte) (int, error) {
	m.buf = append(m.buf, p...)
	return len(p), nil
}

func (m *memWriteCloser) Close() error {
	m.out[m.path] = m.buf
	return nil
}

// memWriteSeeker is a minimal in-memory io.WriteSeeker, standing in for a
// destination file for builders that assemble an archive purely in memory.
type memWriteSeeker struct {
	buf []byte
	pos int64
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.buf)) + offset
	}
	return m.pos, nil
}

// WriteArchiveBytes assembles a new archive of the given format from tree
// entirely in memory, with no file ever touching disk.
func WriteArchiveBytes(format bsa.Format, compressed bool, tree map[string][]byte) ([]byte, error) {
	w, err := bsa.NewWriter(format, compressed)
	if err != nil {
		return nil, fmt.Errorf("creating writer: %w", err)
	}
	for path, data := range tree {
		if err := w.Add(path, writerdata.BytesData(data)); err != nil {
			return nil, fmt.Errorf("adding %q: %w", path, err)
		}
	}

	var dst memWriteSeeker
	if err := w.WriteTo(&dst); err != nil {
		return nil, fmt.Errorf("writing archive: %w", err)
	}
	return dst.buf, nil
}

// BuildBA2General hand-assembles a minimal one-entry, one-chunk FO4 BA2
// general-format archive, entirely in memory. There is no BA2 writer (write
// support for FO4/BA2 is out of scope), so synthesizing a valid one for
// tests means laying out the bytes directly, the same way
// pkg/ba2fmt/archive_test.go does for its own fixtures.
func BuildBA2General(payload []byte) []byte {
	w := bytesutil.NewWriter()
	ba2fmt.Header{Format: ba2fmt.FormatGeneral, FileCount: 1}.Write(w)
	ba2fmt.GeneralChunkHeader{
		ID:            ba2fmt.NameHash{File: 1, Extension: 2, Directory: 3},
		DataFileIndex: 0,
		ChunkCount:    1,
	}.Write(w)

	dataOffset := uint64(consts.BA2HeaderSize + consts.BA2GeneralChunkHeaderSize + consts.BA2GeneralChunkDataSize)
	w.U64(dataOffset)
	w.U32(0)
	w.U32(uint32(len(payload)))
	w.U32(consts.BA2ChunkSentinel)
	w.Raw(payload)
	return w.Bytes()
}

// BuildBA2DX10 hand-assembles a minimal one-entry, one-mip-chunk FO4 BA2
// DX10 (texture) archive, entirely in memory.
func BuildBA2DX10(mip []byte, width, height uint16) []byte {
	w := bytesutil.NewWriter()
	ba2fmt.Header{Format: ba2fmt.FormatDX10, FileCount: 1}.Write(w)

	headerSize := uint32(consts.BA2HeaderSize + consts.BA2DX10ChunkHeaderSize)
	ba2fmt.DirectXChunkHeader{
		ID:         ba2fmt.NameHash{File: 4, Extension: 5, Directory: 6},
		ChunkCount: 1,
		Height:     height,
		Width:      width,
		MipCount:   1,
		Format:     98, // DXGI_FORMAT_BC7_UNORM, an arbitrary but plausible tag
	}.Write(w)

	dataOffset := uint64(headerSize) + uint64(consts.BA2DX10ChunkDataSize)
	w.U64(dataOffset)
	w.U32(0)
	w.U32(uint32(len(mip)))
	w.U16(0) // mip start
	w.U16(0) // mip end
	w.U32(consts.BA2ChunkSentinel)
	w.Raw(mip)
	return w.Bytes()
}

// AssertRoundTrip builds format from tree in memory, reopens it, and
// asserts every entry in tree is present with matching content and that no
// extras appear.
func AssertRoundTrip(t testing.TB, format bsa.Format, compressed bool, tree map[string][]byte) {
	t.Helper()
	raw, err := WriteArchiveBytes(format, compressed, tree)
	require.NoError(t, err)

	archive, err := bsa.Open(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, len(tree), archive.Len())

	for path, want := range tree {
		AssertEntryBytes(t, archive, path, want)
	}
}

// AssertEntryBytes opens path within archive and asserts its decompressed
// content equals want.
func AssertEntryBytes(t testing.TB, archive *bsa.Archive, path string, want []byte) {
	t.Helper()
	ed, err := archive.OpenPath(path)
	require.NoError(t, err)
	r, err := ed.NewReader()
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// Diff compares got against the ground-truth want set, reporting any
// missing entries, unexpected extras, and content mismatches.
func Diff(want, got map[string][]byte) []string {
	var problems []string

	for path, wantData := range want {
		gotData, ok := got[path]
		if !ok {
			problems = append(problems, fmt.Sprintf("missing entry: %s", path))
			continue
		}
		if string(gotData) != string(wantData) {
			problems = append(problems, fmt.Sprintf("content mismatch: %s (want %d bytes, got %d bytes)", path, len(wantData), len(gotData)))
		}
	}

	for path := range got {
		if _, ok := want[path]; !ok {
			problems = append(problems, fmt.Sprintf("unexpected extra entry: %s", path))
		}
	}

	return problems
}
