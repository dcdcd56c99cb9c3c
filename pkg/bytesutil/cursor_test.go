package bytesutil_test

import (
	"testing"

	"github.com/bgrewell/bsa-kit/pkg/bytesutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterCursorRoundTrip(t *testing.T) {
	w := bytesutil.NewWriter()
	w.U8(0xAB)
	w.U16(0x1234)
	w.U32(0xDEADBEEF)
	w.U64(0x0102030405060708)
	w.Raw([]byte("hello"))

	c := bytesutil.NewCursor(w.Bytes())
	u8, err := c.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), u8)

	u16, err := c.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := c.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)

	u64, err := c.U64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)

	raw, err := c.Bytes(5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw))

	assert.Equal(t, 0, c.Len())
}

func TestCursorReadPastEndErrors(t *testing.T) {
	c := bytesutil.NewCursor([]byte{0x01, 0x02})
	_, err := c.U32()
	assert.Error(t, err)
}

func TestCursorSeekBounds(t *testing.T) {
	c := bytesutil.NewCursor(make([]byte, 8))
	require.NoError(t, c.Seek(4))
	assert.Equal(t, 4, c.Pos())
	assert.Error(t, c.Seek(-1))
	assert.Error(t, c.Seek(9))
}

func TestPutU32AtBackpatches(t *testing.T) {
	w := bytesutil.NewWriter()
	w.U32(0) // placeholder
	w.Raw([]byte("payload"))
	require.NoError(t, w.PutU32At(0, 0x11223344))

	c := bytesutil.NewCursor(w.Bytes())
	v, err := c.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x11223344), v)
}

func TestPutU32AtOutOfBounds(t *testing.T) {
	w := bytesutil.NewWriter()
	w.U32(0)
	assert.Error(t, w.PutU32At(1, 1))
	assert.Error(t, w.PutU32At(-1, 1))
}

func TestBStringRoundTrip(t *testing.T) {
	w := bytesutil.NewWriter()
	require.NoError(t, w.PutBString([]byte("dungeon")))

	c := bytesutil.NewCursor(w.Bytes())
	got, err := c.BString()
	require.NoError(t, err)
	assert.Equal(t, "dungeon", string(got))
}

func TestBZStringRoundTrip(t *testing.T) {
	w := bytesutil.NewWriter()
	require.NoError(t, w.PutBZString([]byte("caveshaft.nif")))

	c := bytesutil.NewCursor(w.Bytes())
	got, err := c.BZString()
	require.NoError(t, err)
	assert.Equal(t, "caveshaft.nif", string(got))
}

func TestBZStringRejectsMissingTerminator(t *testing.T) {
	w := bytesutil.NewWriter()
	w.U8(3)
	w.Raw([]byte("abc")) // no trailing NUL despite length implying one

	c := bytesutil.NewCursor(w.Bytes())
	_, err := c.BZString()
	assert.Error(t, err)
}

func TestZStringRoundTrip(t *testing.T) {
	w := bytesutil.NewWriter()
	w.PutZString([]byte("meshes\\b.nif"))
	w.Raw([]byte("trailing garbage"))

	c := bytesutil.NewCursor(w.Bytes())
	got, err := c.ZString()
	require.NoError(t, err)
	assert.Equal(t, "meshes\\b.nif", string(got))
}

func TestWStringRoundTrip(t *testing.T) {
	w := bytesutil.NewWriter()
	require.NoError(t, w.PutWString([]byte("textures/a.dds")))

	c := bytesutil.NewCursor(w.Bytes())
	got, err := c.WString()
	require.NoError(t, err)
	assert.Equal(t, "textures/a.dds", string(got))
}
