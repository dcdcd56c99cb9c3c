package ba2fmt_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/bgrewell/bsa-kit/internal/testkit"
	"github.com/bgrewell/bsa-kit/pkg/ba2fmt"
	"github.com/bgrewell/bsa-kit/pkg/bsaerr"
	"github.com/bgrewell/bsa-kit/pkg/bytesutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeneralArchive(t *testing.T) {
	payload := []byte("hello, wasteland")
	raw := testkit.BuildBA2General(payload)

	archive, err := ba2fmt.Parse(raw, bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, archive.Entries, 1)

	ed, err := archive.ReadChunk(&archive.Entries[0], 0)
	require.NoError(t, err)
	r, err := ed.NewReader()
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, content)
}

func TestParseRejectsBadSentinel(t *testing.T) {
	w := bytesutil.NewWriter()
	ba2fmt.Header{Format: ba2fmt.FormatGeneral, FileCount: 1}.Write(w)
	ba2fmt.GeneralChunkHeader{ID: ba2fmt.NameHash{File: 1, Extension: 2, Directory: 3}, ChunkCount: 1}.Write(w)
	w.U64(0)
	w.U32(0)
	w.U32(1)
	w.U32(0xDEADBEEF) // wrong sentinel
	w.Raw([]byte("x"))
	raw := w.Bytes()

	_, err := ba2fmt.Parse(raw, bytes.NewReader(raw))
	require.Error(t, err)
	assert.True(t, bsaerr.Is(err, bsaerr.BadSentinel))
}

func TestReadHeaderRejectsUnknownFormatTag(t *testing.T) {
	w := bytesutil.NewWriter()
	w.Raw([]byte("BTDX"))
	w.U32(1)
	w.Raw([]byte("XXXX"))
	w.U32(0)
	w.U64(0)

	c := bytesutil.NewCursor(w.Bytes())
	_, err := ba2fmt.ReadHeader(c)
	require.Error(t, err)
	assert.True(t, bsaerr.Is(err, bsaerr.UnsupportedFormat))
}

func TestParseDX10ArchiveSingleMip(t *testing.T) {
	mip := bytes.Repeat([]byte{0xCD}, 512)
	raw := testkit.BuildBA2DX10(mip, 256, 256)

	archive, err := ba2fmt.Parse(raw, bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, archive.Entries, 1)
	assert.EqualValues(t, 256, archive.Entries[0].Width)
	assert.EqualValues(t, 256, archive.Entries[0].Height)

	ed, err := archive.ReadEntry(&archive.Entries[0])
	require.NoError(t, err)
	r, err := ed.NewReader()
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, mip, content)
}
