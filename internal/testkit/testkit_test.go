package testkit_test

import (
	"testing"

	bsa "github.com/bgrewell/bsa-kit"
	"github.com/bgrewell/bsa-kit/internal/testkit"
	"github.com/stretchr/testify/assert"
)

func TestAssertRoundTripAcrossFormats(t *testing.T) {
	tree := testkit.SyntheticTree()

	for _, format := range []bsa.Format{bsa.TES3, bsa.TES4V103, bsa.TES5V105} {
		t.Run(format.String(), func(t *testing.T) {
			testkit.AssertRoundTrip(t, format, true, tree)
		})
	}
}

func TestDiffReportsMissingAndExtra(t *testing.T) {
	want := map[string][]byte{
		"a.txt": []byte("hello"),
		"b.txt": []byte("world"),
	}
	got := map[string][]byte{
		"a.txt": []byte("hello"),
		"c.txt": []byte("surprise"),
	}

	problems := testkit.Diff(want, got)
	assert.Len(t, problems, 2, "expected one missing (b.txt) and one extra (c.txt) entry")
}
