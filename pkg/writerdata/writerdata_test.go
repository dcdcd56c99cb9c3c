package writerdata_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bgrewell/bsa-kit/pkg/writerdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesDataLenAndWriteTo(t *testing.T) {
	d := writerdata.BytesData([]byte("payload"))

	n, err := d.Len()
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)

	var buf bytes.Buffer
	written, err := d.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, 7, written)
	assert.Equal(t, "payload", buf.String())
}

func TestReaderDataMeasuresAndRewinds(t *testing.T) {
	r := bytes.NewReader([]byte("0123456789"))
	_, err := r.Seek(3, 0)
	require.NoError(t, err)

	d := writerdata.NewReaderData(r)

	n, err := d.Len()
	require.NoError(t, err)
	assert.EqualValues(t, 10, n)

	pos, err := r.Seek(0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, pos, "Len must restore the reader's original position")

	var buf bytes.Buffer
	written, err := d.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, 10, written)
	assert.Equal(t, "0123456789", buf.String())
}

func TestPathDataReadsLazily(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.dds")
	require.NoError(t, os.WriteFile(path, []byte{0xAA, 0xBB, 0xCC}, 0o644))

	d := writerdata.NewPathData(path)

	n, err := d.Len()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	var buf bytes.Buffer
	written, err := d.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, 3, written)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, buf.Bytes())
}

func TestPathDataMissingFileErrors(t *testing.T) {
	d := writerdata.NewPathData(filepath.Join(t.TempDir(), "missing.dds"))
	_, err := d.Len()
	assert.Error(t, err)
}
