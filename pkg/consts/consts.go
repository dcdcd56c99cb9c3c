// Package consts holds the fixed on-disk constants shared across the TES3,
// TES4-family, and FO4 archive formats.
package consts

const (
	// MaxPath mirrors Windows' MAX_PATH; paths at or beyond this length are rejected.
	MaxPath = 260

	// TES3Magic is the fixed header magic for Morrowind BSA archives.
	TES3Magic uint32 = 0x00000100

	// TES3HeaderSize is the byte size of the TES3 header.
	TES3HeaderSize = 12
	// TES3RecordSize is the byte size of a single TES3 file record.
	TES3RecordSize = 8

	// TES4Magic is the 4-byte magic ("BSA\0") for the TES4-family formats.
	TES4Magic = "BSA\x00"
	// TES4HeaderSize is the byte size of the TES4-family header.
	TES4HeaderSize = 36
	// TES4FolderRecordSizeV103 is the folder record size for versions 103/104.
	TES4FolderRecordSizeV103 = 16
	// TES4FolderRecordSizeV105 is the folder record size for version 105 (SSE).
	TES4FolderRecordSizeV105 = 24
	// TES4FileRecordSize is the byte size of a TES4-family file record.
	TES4FileRecordSize = 16

	// TES4VersionV103 is the Oblivion-era version.
	TES4VersionV103 uint32 = 103
	// TES4VersionV104 is the Skyrim/Fallout 3/New Vegas-era version.
	TES4VersionV104 uint32 = 104
	// TES4VersionV105 is the Skyrim Special Edition version.
	TES4VersionV105 uint32 = 105

	// NegateCompressionBit is bit 30 of a TES4 file record's size field.
	NegateCompressionBit uint32 = 1 << 30

	// BA2Magic is the 4-byte magic ("BTDX") for Fallout 4 archives.
	BA2Magic = "BTDX"
	// BA2HeaderSize is the byte size of the BA2 header.
	BA2HeaderSize = 24
	// BA2Version is the only BA2 version currently defined.
	BA2Version uint32 = 1
	// BA2FormatGeneral is the format tag for general-payload BA2 archives.
	BA2FormatGeneral = "GNRL"
	// BA2FormatDX10 is the format tag for DirectX-texture BA2 archives.
	BA2FormatDX10 = "DX10"
	// BA2GeneralChunkHeaderSize is the chunk header size for general archives.
	BA2GeneralChunkHeaderSize = 16
	// BA2DX10ChunkHeaderSize is the chunk header size for DX10 archives.
	BA2DX10ChunkHeaderSize = 24
	// BA2GeneralChunkSizeField is the expected chunk-size field for general headers.
	BA2GeneralChunkSizeField uint16 = 16
	// BA2DX10ChunkSizeField is the expected chunk-size field for DX10 headers.
	BA2DX10ChunkSizeField uint16 = 24
	// BA2GeneralChunkDataSize is the on-disk size of a general chunk-data record.
	BA2GeneralChunkDataSize = 20
	// BA2DX10ChunkDataSize is the on-disk size of a DX10 chunk-data record.
	BA2DX10ChunkDataSize = 24
	// BA2ChunkSentinel is the fixed trailer every BA2 chunk-data record carries.
	BA2ChunkSentinel uint32 = 0xBAADF00D
)

// ArchiveFlags are the TES4-family header bits controlling name tables,
// compression default, and embedding behavior.
type ArchiveFlags uint32

const (
	FlagIncludeDirnames       ArchiveFlags = 0x1
	FlagIncludeFilenames      ArchiveFlags = 0x2
	FlagCompressed            ArchiveFlags = 0x4
	FlagRetainDirnames        ArchiveFlags = 0x8
	FlagRetainFilenames       ArchiveFlags = 0x10
	FlagRetainFilenameOffsets ArchiveFlags = 0x20
	FlagXbox360               ArchiveFlags = 0x40
	FlagRetainStrings         ArchiveFlags = 0x80
	FlagEmbedFilenames        ArchiveFlags = 0x100
	FlagXMem                  ArchiveFlags = 0x200

	// DefaultArchiveFlags is what the writer emits by default.
	DefaultArchiveFlags = FlagIncludeDirnames | FlagIncludeFilenames
)

// Has reports whether f carries every bit in bit.
func (f ArchiveFlags) Has(bit ArchiveFlags) bool { return f&bit == bit }

// FileFlags classify a TES4-family file record by the extensions it holds,
// inferred by the writer and informational on read.
type FileFlags uint16

const (
	FileFlagMeshes   FileFlags = 0x1
	FileFlagTextures FileFlags = 0x2
	FileFlagMenus    FileFlags = 0x4
	FileFlagSounds   FileFlags = 0x8
	FileFlagVoices   FileFlags = 0x10
	FileFlagShaders  FileFlags = 0x20
	FileFlagTrees    FileFlags = 0x40
	FileFlagFonts    FileFlags = 0x80
	FileFlagMisc     FileFlags = 0x100
)

// ExtensionFileFlag maps a lowercase extension (including the leading dot) to
// the file-kind flag the writer sets for it; extensions with no mapping fall
// through to FileFlagMisc.
var ExtensionFileFlag = map[string]FileFlags{
	".nif":  FileFlagMeshes,
	".dds":  FileFlagTextures,
	".xml":  FileFlagMenus,
	".wav":  FileFlagSounds,
	".mp3":  FileFlagSounds,
	".fuz":  FileFlagVoices,
	".lip":  FileFlagVoices,
	".hlsl": FileFlagShaders,
	".sdp":  FileFlagShaders,
	".spt":  FileFlagTrees,
	".fnt":  FileFlagFonts,
	".tex":  FileFlagFonts,
}

// TES4ExtensionIndex is the fixed table of recognized extensions used to stir
// a filename hash's first/last/last2 fields; unrecognized extensions apply no stir.
var TES4ExtensionIndex = map[string]uint32{
	"":     0,
	".nif": 1,
	".kf":  2,
	".dds": 3,
	".wav": 4,
	".adp": 5,
}
