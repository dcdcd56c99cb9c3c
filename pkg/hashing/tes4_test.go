package hashing_test

import (
	"strings"
	"testing"

	"github.com/bgrewell/bsa-kit/pkg/hashing"
	"github.com/bgrewell/bsa-kit/pkg/pathutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashTES4FileUnchecked(t *testing.T) {
	cases := []struct {
		name string
		want hashing.TES4Hash
	}{
		{
			name: "fxambblowingfog01.nif",
			want: hashing.TES4Hash{Last: 49, Last2: 176, Len: 17, First: 102, Crc: 17588009},
		},
		{
			name: "dog.dds",
			want: hashing.TES4Hash{Last: 231, Last2: 239, Len: 3, First: 100, Crc: 2379983301},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			stem, ext := pathutil.SplitExtension([]byte(c.name))
			got := hashing.HashTES4FileUnchecked(stem, ext)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestHashTES4DirectoryEquivalence(t *testing.T) {
	want := hashing.TES4Hash{Last: 116, Last2: 102, Len: 31, First: 109, Crc: 743299860}

	inputs := []string{
		"meshes/dungeons/mines/caveshaft",
		"meshes\\dungeons\\mines\\caveshaft",
		"meshes/DUNGEONS\\mines\\CAVEshaft",
		"meshes/DUNGEONS\\\\\\mines\\CAVEshaft/",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			norm, err := pathutil.Normalize(in)
			require.NoError(t, err)
			got := hashing.HashTES4DirectoryUnchecked(norm)
			assert.Equal(t, want, got)
		})
	}
}

func TestHashTES4DirectoryRejection(t *testing.T) {
	inputs := []string{
		"meshes/../dungeons/caveshaft",
		"/meshes/",
		"meshes/\U0001F680", // non-ASCII, unencodable in Windows-1252
		"meshes/./caves",
		"",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := pathutil.Normalize(in)
			assert.Error(t, err)
		})
	}

	t.Run("length at or beyond MAX_PATH", func(t *testing.T) {
		long := strings.Repeat("a", 260)
		_, err := pathutil.Normalize(long)
		assert.Error(t, err)
	})
}
