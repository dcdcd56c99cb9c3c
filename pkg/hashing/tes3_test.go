package hashing_test

import (
	"sort"
	"testing"

	"github.com/bgrewell/bsa-kit/pkg/hashing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashTES3NameDeterministic(t *testing.T) {
	h1, ok := hashing.HashTES3Name("textures\\a.dds")
	require.True(t, ok)
	h2, ok := hashing.HashTES3Name("textures\\a.dds")
	require.True(t, ok)
	assert.Equal(t, h1, h2)
}

func TestHashTES3NameFoldsSeparatorAndCase(t *testing.T) {
	h1, ok := hashing.HashTES3Name("textures/A.dds")
	require.True(t, ok)
	h2, ok := hashing.HashTES3Name("TEXTURES\\a.DDS")
	require.True(t, ok)
	assert.Equal(t, h1, h2)
}

func TestHashTES3NameRejectsNonASCII(t *testing.T) {
	_, ok := hashing.HashTES3Name("textures\\\U0001F680.dds")
	assert.False(t, ok)
}

func TestHashTES3NameRejectsEmbeddedNul(t *testing.T) {
	_, ok := hashing.HashTES3Name("textures\\a\x00.dds")
	assert.False(t, ok)
}

func TestTES3HashTotalOrder(t *testing.T) {
	names := []string{
		"textures\\a.dds", "textures\\b.dds", "meshes\\c.nif",
		"sound\\d.wav", "icons\\e.dds", "meshes\\f.nif",
	}
	hashes := make([]hashing.TES3Hash, len(names))
	for i, n := range names {
		h, ok := hashing.HashTES3Name(n)
		require.True(t, ok)
		hashes[i] = h
	}

	sorted := append([]hashing.TES3Hash(nil), hashes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	// A total order is antisymmetric: no two distinct elements may both
	// report Less in each direction, and the sort must be reproducible.
	for i := 0; i < len(sorted)-1; i++ {
		assert.False(t, sorted[i+1].Less(sorted[i]), "sorted order must be non-decreasing")
	}
}
