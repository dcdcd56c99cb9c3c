package codepage_test

import (
	"testing"

	"github.com/bgrewell/bsa-kit/pkg/codepage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := "Meshes/Dungeons/Mines/CaveShaft.nif"
	enc, err := codepage.Encode(want)
	require.NoError(t, err)
	assert.Equal(t, want, codepage.Decode(enc))
}

func TestEncodeRejectsNul(t *testing.T) {
	_, err := codepage.Encode("a\x00b")
	assert.Error(t, err)
}

func TestEncodeRejectsUnmappableRune(t *testing.T) {
	_, err := codepage.Encode("文") // a CJK ideograph, no Windows-1252 mapping
	assert.Error(t, err)
}

func TestFoldLowerASCII(t *testing.T) {
	assert.Equal(t, []byte("dungeons"), codepage.FoldLower([]byte("DUNGEONS")))
	assert.Equal(t, []byte("caveshaft.nif"), codepage.FoldLower([]byte("CaveShaft.NIF")))
}

func TestEqualFoldIgnoresCase(t *testing.T) {
	assert.True(t, codepage.EqualFold([]byte("Meshes"), []byte("meshes")))
	assert.False(t, codepage.EqualFold([]byte("Meshes"), []byte("mesh")))
}
