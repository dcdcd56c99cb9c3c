// Package hashing implements the TES3 and TES4-family archive hash
// algorithms bit-for-bit, including their respective sort/comparison keys.
package hashing

// TES3Hash is a computed Morrowind BSA name hash. It stores the raw 64-bit
// value in the same little-endian layout the on-disk hash table uses.
type TES3Hash uint64

// Get returns the raw hash value as stored on disk.
func (h TES3Hash) Get() uint64 { return uint64(h) }

// compareKey returns the value used to order entries within the hash table:
// the raw hash with its low and high 32-bit halves swapped.
func (h TES3Hash) compareKey() uint64 {
	v := uint64(h)
	return (v >> 32) | (v << 32)
}

// Less reports whether h sorts before other in the on-disk hash table.
func (h TES3Hash) Less(other TES3Hash) bool {
	return h.compareKey() < other.compareKey()
}

// HashTES3Name computes the split-XOR-rotate hash TES3 archives use to key
// their file-name hash table. name must already be
// the full archive-relative path using backslash or forward-slash
// separators; the hash folds '/' to '\\' and lowercases ASCII internally. It
// reports false if name contains a non-ASCII byte or an embedded NUL, which
// the original format cannot hash.
func HashTES3Name(name string) (TES3Hash, bool) {
	normByte := func(b byte) (byte, bool) {
		switch {
		case b == '/':
			return '\\', true
		case b == 0:
			return 0, false
		case b < 0x80:
			if b >= 'A' && b <= 'Z' {
				return b + 0x20, true
			}
			return b, true
		default:
			return 0, false
		}
	}

	bytes := []byte(name)
	mid := len(bytes) / 2
	first, second := bytes[:mid], bytes[mid:]

	var low [4]byte
	for i, b := range first {
		nb, ok := normByte(b)
		if !ok {
			return 0, false
		}
		low[i%4] ^= nb
	}
	lowVal := uint32(low[0]) | uint32(low[1])<<8 | uint32(low[2])<<16 | uint32(low[3])<<24

	var high uint32
	for i, b := range second {
		nb, ok := normByte(b)
		if !ok {
			return 0, false
		}
		temp := uint32(nb) << ((i % 4) * 8)
		high = rotateRight32(high^temp, temp&0x1f)
	}

	return TES3Hash(uint64(lowVal) | (uint64(high) << 32)), true
}

func rotateRight32(v uint32, n uint32) uint32 {
	n &= 31
	if n == 0 {
		return v
	}
	return (v >> n) | (v << (32 - n))
}
