package tes3fmt_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/bgrewell/bsa-kit/pkg/tes3fmt"
	"github.com/bgrewell/bsa-kit/pkg/writerdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntry(t *testing.T, a *tes3fmt.Archive, i int) []byte {
	t.Helper()
	ed := a.ReadEntry(&a.Entries[i])
	r, err := ed.NewReader()
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	return content
}

func TestWriteParseRoundTrip(t *testing.T) {
	files := []tes3fmt.PendingFile{
		{Path: "textures/a.dds", Data: writerdata.BytesData([]byte{0x00, 0x01})},
		{Path: "meshes/b.nif", Data: writerdata.BytesData([]byte{0xFF})},
	}

	var buf bytes.Buffer
	require.NoError(t, tes3fmt.Write(&buf, files))

	raw := buf.Bytes()
	archive, err := tes3fmt.Parse(raw, bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, archive.Entries, 2)

	want := map[string][]byte{
		"textures\\a.dds": {0x00, 0x01},
		"meshes\\b.nif":   {0xFF},
	}

	seen := map[string]bool{}
	for i := range archive.Entries {
		content := readEntry(t, archive, i)
		name := archive.Entries[i].Name
		assert.Equal(t, want[name], content, "content for %q", name)
		seen[name] = true
	}
	assert.Len(t, seen, 2)
}

func TestWriteHashTableIsSorted(t *testing.T) {
	files := []tes3fmt.PendingFile{
		{Path: "z.dds", Data: writerdata.BytesData([]byte("z"))},
		{Path: "a.dds", Data: writerdata.BytesData([]byte("a"))},
		{Path: "m.dds", Data: writerdata.BytesData([]byte("m"))},
	}

	var buf bytes.Buffer
	require.NoError(t, tes3fmt.Write(&buf, files))

	raw := buf.Bytes()
	archive, err := tes3fmt.Parse(raw, bytes.NewReader(raw))
	require.NoError(t, err)

	for i := 1; i < len(archive.Entries); i++ {
		assert.False(t, archive.Entries[i].Hash.Less(archive.Entries[i-1].Hash), "hash table must be non-decreasing")
	}
}

