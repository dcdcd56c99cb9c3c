package bsa_test

import (
	"bytes"
	"io"
	"sort"
	"sync"
	"testing"

	bsa "github.com/bgrewell/bsa-kit"
	"github.com/bgrewell/bsa-kit/pkg/ba2fmt"
	"github.com/bgrewell/bsa-kit/pkg/bytesutil"
	"github.com/bgrewell/bsa-kit/pkg/consts"
	"github.com/bgrewell/bsa-kit/pkg/extract"
	"github.com/bgrewell/bsa-kit/pkg/writerdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memWriteSeeker is a minimal in-memory io.WriteSeeker, standing in for a
// destination file across every writer test in this package.
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
	case 0:
		m.pos = offset
	case 1:
		m.pos += offset
	case 2:
		m.pos = int64(len(m.buf)) + offset
	}
	return m.pos, nil
}

func buildTES3Archive(t *testing.T) []byte {
	t.Helper()
	w, err := bsa.NewWriter(bsa.TES3, false)
	require.NoError(t, err)
	require.NoError(t, w.Add("meshes/caveshaft.nif", writerdata.BytesData([]byte{0x01, 0x02, 0x03})))
	require.NoError(t, w.Add("textures/a.dds", writerdata.BytesData([]byte{0xAA, 0xBB})))

	var dst memWriteSeeker
	require.NoError(t, w.WriteTo(&dst))
	return dst.buf
}

func buildTES4Archive(t *testing.T) []byte {
	t.Helper()
	w, err := bsa.NewWriter(bsa.TES5V105, true)
	require.NoError(t, err)
	require.NoError(t, w.Add("sound\\fx\\bark.wav", writerdata.BytesData(bytes.Repeat([]byte("woof"), 30))))
	require.NoError(t, w.Add("meshes\\dungeons\\cave.nif", writerdata.BytesData([]byte{0x01})))

	var dst memWriteSeeker
	require.NoError(t, w.WriteTo(&dst))
	return dst.buf
}

func buildBA2Archive(t *testing.T, payload []byte) []byte {
	t.Helper()
	bw := bytesutil.NewWriter()
	ba2fmt.Header{Format: ba2fmt.FormatGeneral, FileCount: 1}.Write(bw)
	ba2fmt.GeneralChunkHeader{
		ID:            ba2fmt.NameHash{File: 1, Extension: 2, Directory: 3},
		DataFileIndex: 0,
		ChunkCount:    1,
	}.Write(bw)
	dataOffset := uint64(consts.BA2HeaderSize + consts.BA2GeneralChunkHeaderSize + consts.BA2GeneralChunkDataSize)
	bw.U64(dataOffset)
	bw.U32(0)
	bw.U32(uint32(len(payload)))
	bw.U32(consts.BA2ChunkSentinel)
	bw.Raw(payload)
	return bw.Bytes()
}

func TestDetectFormatAllVariants(t *testing.T) {
	tes3 := buildTES3Archive(t)
	format, err := bsa.DetectFormat(tes3)
	require.NoError(t, err)
	assert.Equal(t, bsa.TES3, format)

	tes4 := buildTES4Archive(t)
	format, err = bsa.DetectFormat(tes4)
	require.NoError(t, err)
	assert.Equal(t, bsa.TES5V105, format)

	ba2 := buildBA2Archive(t, []byte("payload"))
	format, err = bsa.DetectFormat(ba2)
	require.NoError(t, err)
	assert.Equal(t, bsa.FO4General, format)
}

func TestDetectFormatRejectsGarbage(t *testing.T) {
	_, err := bsa.DetectFormat([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	assert.Error(t, err)
}

func TestOpenTES3AndIterate(t *testing.T) {
	raw := buildTES3Archive(t)
	archive, err := bsa.Open(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, bsa.TES3, archive.Format())
	require.Equal(t, 2, archive.Len())

	var paths []string
	for _, e := range archive.Entries() {
		paths = append(paths, e.Path)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{"meshes\\caveshaft.nif", "textures\\a.dds"}, paths)
}

func TestOpenPathLookupIsCaseAndSeparatorInsensitive(t *testing.T) {
	raw := buildTES3Archive(t)
	archive, err := bsa.Open(bytes.NewReader(raw))
	require.NoError(t, err)

	ed, err := archive.OpenPath("MESHES/CAVESHAFT.NIF")
	require.NoError(t, err)
	r, err := ed.NewReader()
	require.NoError(t, err)
	content := make([]byte, 3)
	_, err = r.Read(content)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, content)
}

func TestOpenPathMissingEntryErrors(t *testing.T) {
	raw := buildTES3Archive(t)
	archive, err := bsa.Open(bytes.NewReader(raw))
	require.NoError(t, err)

	_, err = archive.OpenPath("nope.txt")
	assert.Error(t, err)
}

func TestOpenTES4RoundTrip(t *testing.T) {
	raw := buildTES4Archive(t)
	archive, err := bsa.Open(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, bsa.TES5V105, archive.Format())
	require.Equal(t, 2, archive.Len())

	entry, ok := archive.EntryByPath("sound\\fx\\bark.wav")
	require.True(t, ok)
	assert.EqualValues(t, len(bytes.Repeat([]byte("woof"), 30)), entry.Size)
}

// TestExtractStrategiesAgree covers positioned-read extraction equivalence:
// every strategy must produce byte-identical output for the same archive
// regardless of whether reads are sequential or fully parallel/positioned.
func TestExtractStrategiesAgree(t *testing.T) {
	raw := buildTES4Archive(t)

	strategies := []extract.Strategy{
		extract.Sequential,
		extract.ParallelDecompress,
		extract.ParallelWrite,
		extract.Positioned,
	}

	var baseline map[string]string
	for _, strategy := range strategies {
		archive, err := bsa.Open(bytes.NewReader(raw))
		require.NoError(t, err)

		var mu sync.Mutex
		out := map[string]string{}
		sink := func(path string) (io.WriteCloser, error) {
			return &bufCloser{path: path, out: out, mu: &mu}, nil
		}

		err = archive.Extract(strategy, sink)
		require.NoError(t, err)

		if baseline == nil {
			baseline = out
			continue
		}
		assert.Equal(t, baseline, out, "strategy %d disagreed with the baseline", strategy)
	}
}

type bufCloser struct {
	path string
	out  map[string]string
	mu   *sync.Mutex
	buf  bytes.Buffer
}

func (b *bufCloser) Write(p []byte) (int, error) { return b.buf.Write(p) }
func (b *bufCloser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out[b.path] = b.buf.String()
	return nil
}

func TestNewWriterRejectsFO4(t *testing.T) {
	_, err := bsa.NewWriter(bsa.FO4General, false)
	assert.Error(t, err)
}
