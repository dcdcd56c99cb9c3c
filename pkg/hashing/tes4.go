package hashing

import "github.com/bgrewell/bsa-kit/pkg/consts"

// TES4Hash is a computed TES4-family directory or file name hash: the
// packed (last, last2, len, first, crc) quintuple the CRC+endpoints+
// extension-stir algorithm produces.
type TES4Hash struct {
	Last  uint8
	Last2 uint8
	Len   uint8
	First uint8
	Crc   uint32
}

// ToU64 packs the hash into the little-endian 64-bit value used both on disk
// and as the sort/comparison key.
func (h TES4Hash) ToU64() uint64 {
	return uint64(h.Last) |
		uint64(h.Last2)<<8 |
		uint64(h.Len)<<16 |
		uint64(h.First)<<24 |
		uint64(h.Crc)<<32
}

// TES4HashFromU64 unpacks a little-endian 64-bit value into its component
// fields, the inverse of ToU64.
func TES4HashFromU64(v uint64) TES4Hash {
	return TES4Hash{
		Last:  uint8(v),
		Last2: uint8(v >> 8),
		Len:   uint8(v >> 16),
		First: uint8(v >> 24),
		Crc:   uint32(v >> 32),
	}
}

// Less reports whether h sorts before other by their packed u64 value.
func (h TES4Hash) Less(other TES4Hash) bool {
	return h.ToU64() < other.ToU64()
}

// tes4Crc32 is the custom CRC used by the TES4-family hash: not the
// standard CRC-32 polynomial, just a multiply-accumulate over 0x1003F.
func tes4Crc32(b []byte) uint32 {
	var crc uint32
	for _, c := range b {
		crc = uint32(c) + crc*0x1003F
	}
	return crc
}

// HashTES4DirectoryUnchecked computes a directory hash directly from an
// already-normalized, lowercased, Windows-1252-encoded, backslash-separated
// name with no further validation. Callers must ensure the name is
// non-empty and shorter than consts.MaxPath.
func HashTES4DirectoryUnchecked(name []byte) TES4Hash {
	var h TES4Hash
	h.Len = uint8(len(name))

	if len(name) >= 3 {
		h.Last2 = name[len(name)-2]
		h.Crc = tes4Crc32(name[1 : len(name)-2])
	}
	if len(name) > 0 {
		h.First = name[0]
		h.Last = name[len(name)-1]
	}
	return h
}

// HashTES4FileUnchecked computes a file hash from an already-normalized,
// lowercased, Windows-1252-encoded stem and extension (extension includes
// the leading dot, or is empty). Callers must ensure stem is non-empty and
// shorter than consts.MaxPath, and that extension is shorter than 16 bytes.
func HashTES4FileUnchecked(stem, extension []byte) TES4Hash {
	h := HashTES4DirectoryUnchecked(stem)
	h.Crc += tes4Crc32(extension)

	if i, ok := consts.TES4ExtensionIndex[string(extension)]; ok {
		h.First += uint8(32 * (i & 0xFC))
		h.Last += uint8((i & 0xFE) << 6)
		h.Last2 += uint8(i << 7)
	}
	return h
}
