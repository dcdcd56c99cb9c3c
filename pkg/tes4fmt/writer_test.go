package tes4fmt_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/bgrewell/bsa-kit/pkg/consts"
	"github.com/bgrewell/bsa-kit/pkg/tes4fmt"
	"github.com/bgrewell/bsa-kit/pkg/writerdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSeeker is a minimal io.WriteSeeker over a growable in-memory buffer,
// standing in for a real file during Write's two-pass placeholder-then-
// backpatch assembly.
type memSeeker struct {
	buf []byte
	pos int64
}

func (m *memSeeker) Write(p []byte) (int, error) {
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

func (m *memSeeker) Seek(offset int64, whence int) (int64, error) {
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

func readEntry(t *testing.T, a *tes4fmt.Archive, i int) []byte {
	t.Helper()
	ed, err := a.ReadEntry(&a.Entries[i])
	require.NoError(t, err)
	r, err := ed.NewReader()
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	return content
}

func TestWriteParseRoundTripCompressedV105(t *testing.T) {
	payload := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 20)
	files := []tes4fmt.PendingFile{
		{Directory: "sound\\fx", Name: "bark.wav", Data: writerdata.BytesData(payload)},
		{Directory: "meshes", Name: "caveshaft.nif", Data: writerdata.BytesData([]byte{0x01, 0x02, 0x03})},
	}

	var dst memSeeker
	opts := tes4fmt.WriteOptions{Version: consts.TES4VersionV105, Compressed: true}
	require.NoError(t, tes4fmt.Write(&dst, files, opts))

	raw := dst.buf
	archive, err := tes4fmt.Parse(raw, bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, archive.Entries, 2)

	want := map[string][]byte{
		"bark.wav":      payload,
		"caveshaft.nif": {0x01, 0x02, 0x03},
	}
	for i := range archive.Entries {
		name := archive.Entries[i].Name
		assert.Equal(t, want[name], readEntry(t, archive, i), "content for %q", name)
	}
}

func TestWriteParseRoundTripUncompressedV103(t *testing.T) {
	files := []tes4fmt.PendingFile{
		{Directory: "textures", Name: "a.dds", Data: writerdata.BytesData([]byte{0xAA, 0xBB})},
	}

	var dst memSeeker
	opts := tes4fmt.WriteOptions{Version: consts.TES4VersionV103, Compressed: false}
	require.NoError(t, tes4fmt.Write(&dst, files, opts))

	raw := dst.buf
	archive, err := tes4fmt.Parse(raw, bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, archive.Entries, 1)
	assert.False(t, archive.Entries[0].Record.InvertCompression)
	assert.Equal(t, []byte{0xAA, 0xBB}, readEntry(t, archive, 0))
}

func TestEffectiveCompressionIsDefaultXorInvert(t *testing.T) {
	files := []tes4fmt.PendingFile{
		{Directory: "sound", Name: "a.wav", Data: writerdata.BytesData(bytes.Repeat([]byte{0x42}, 64))},
	}

	var dst memSeeker
	opts := tes4fmt.WriteOptions{Version: consts.TES4VersionV104, Compressed: true}
	require.NoError(t, tes4fmt.Write(&dst, files, opts))

	raw := dst.buf
	archive, err := tes4fmt.Parse(raw, bytes.NewReader(raw))
	require.NoError(t, err)

	// The writer never sets the invert bit, so effective compression
	// equals the archive-wide default: compressed == true here.
	assert.False(t, archive.Entries[0].Record.InvertCompression)
	assert.True(t, archive.Header.ArchiveFlags.Has(consts.FlagCompressed))
	assert.Equal(t, bytes.Repeat([]byte{0x42}, 64), readEntry(t, archive, 0))
}
