package option

// CreateOptions configures a new archive writer.
type CreateOptions struct {
	Version    uint32 // TES4-family sub-version (103/104/105); not read by bsa.NewWriter, which takes it from its format.
	EmbedNames bool   // embed "dirname\filename" ahead of each file's payload (TES4-family only).
}

type CreateOption func(*CreateOptions)

// WithVersion records a TES4-family sub-version (103 Oblivion-zlib,
// 104 TES5/FO3/FNV-zlib, 105 SSE-LZ4) in CreateOptions.Version. bsa.NewWriter
// does not read it: the sub-version a new writer targets comes from the
// Format passed to NewWriter.
func WithVersion(version uint32) CreateOption {
	return func(o *CreateOptions) {
		o.Version = version
	}
}

// WithEmbedNames enables writing each file's "dirname\filename" ahead of its
// own payload, mirroring the archive flag of the same name.
func WithEmbedNames(embed bool) CreateOption {
	return func(o *CreateOptions) {
		o.EmbedNames = embed
	}
}
