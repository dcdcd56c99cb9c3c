// Package bsa is the top-level codec for Bethesda game-engine archives: it
// detects, opens, iterates, extracts, and writes TES3 (Morrowind BSA),
// TES4-family (Oblivion/Fallout 3/New Vegas/Skyrim/Skyrim Special Edition
// BSA), and FO4 (BA2) archives behind one uniform Archive/Writer surface,
// dispatching to pkg/tes3fmt, pkg/tes4fmt, and pkg/ba2fmt underneath.
package bsa

import (
	"fmt"
	"io"
	"iter"

	"github.com/bgrewell/bsa-kit/pkg/ba2fmt"
	"github.com/bgrewell/bsa-kit/pkg/bsaerr"
	"github.com/bgrewell/bsa-kit/pkg/consts"
	"github.com/bgrewell/bsa-kit/pkg/entrydata"
	"github.com/bgrewell/bsa-kit/pkg/extract"
	"github.com/bgrewell/bsa-kit/pkg/logging"
	"github.com/bgrewell/bsa-kit/pkg/option"
	"github.com/bgrewell/bsa-kit/pkg/pathutil"
	"github.com/bgrewell/bsa-kit/pkg/tes3fmt"
	"github.com/bgrewell/bsa-kit/pkg/tes4fmt"
	"github.com/bgrewell/bsa-kit/pkg/writerdata"
)

// Format identifies the on-disk archive family and sub-version a parsed
// Archive holds, or that a new Writer will produce.
type Format int

const (
	// TES3 is the flat Morrowind BSA layout.
	TES3 Format = iota
	// TES4V103 is the Oblivion zlib-compressed layout.
	TES4V103
	// TES4V104 is the Skyrim/Fallout 3/New Vegas zlib-compressed layout.
	TES4V104
	// TES5V105 is the Skyrim Special Edition LZ4-compressed layout, with
	// the wider, padded folder record.
	TES5V105
	// FO4General is a Fallout 4 BA2 archive with one chunk per entry.
	FO4General
	// FO4DirectX is a Fallout 4 BA2 archive carrying DX10 texture chunks.
	FO4DirectX
)

// String renders the format the way diagnostics and the CLI tools name it.
func (f Format) String() string {
	switch f {
	case TES3:
		return "TES3"
	case TES4V103:
		return "TES4v103"
	case TES4V104:
		return "TES4v104"
	case TES5V105:
		return "TES5v105"
	case FO4General:
		return "FO4-General"
	case FO4DirectX:
		return "FO4-DirectX"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ByteSource is the minimal random-access handle Open reads an archive
// from. *os.File and *bytes.Reader both satisfy it.
type ByteSource interface {
	io.ReaderAt
}

func defaultLogger() *logging.Logger {
	return logging.DefaultLogger()
}

// DetectFormat inspects buf's leading header bytes and reports which
// archive family and sub-version it declares. It validates only the magic,
// version, and (for BA2) format tag fields needed to choose a parser; the
// chosen format package performs full structural validation.
func DetectFormat(buf []byte) (Format, error) {
	if len(buf) >= 4 {
		magic := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
		if magic == consts.TES3Magic {
			return TES3, nil
		}
	}

	if len(buf) >= 8 && string(buf[0:4]) == consts.TES4Magic {
		version := uint32(buf[4]) | uint32(buf[5])<<8 | uint32(buf[6])<<16 | uint32(buf[7])<<24
		switch version {
		case consts.TES4VersionV103:
			return TES4V103, nil
		case consts.TES4VersionV104:
			return TES4V104, nil
		case consts.TES4VersionV105:
			return TES5V105, nil
		default:
			return 0, bsaerr.New(bsaerr.InvalidVersion, "bsa: unsupported TES4-family version %d", version)
		}
	}

	if len(buf) >= 12 && string(buf[0:4]) == consts.BA2Magic {
		switch string(buf[8:12]) {
		case consts.BA2FormatGeneral:
			return FO4General, nil
		case consts.BA2FormatDX10:
			return FO4DirectX, nil
		default:
			return 0, bsaerr.New(bsaerr.UnsupportedFormat, "bsa: unrecognized BA2 format tag %q", buf[8:12])
		}
	}

	return 0, bsaerr.New(bsaerr.InvalidMagic, "bsa: unrecognized archive header")
}

// Entry is a single named file, uniform across every archive family.
type Entry struct {
	// Path is the archive-relative path, backslash-joined and already
	// Windows-1252-decoded back to a Go string.
	Path string
	// Size is the entry's logical (decompressed) length in bytes.
	Size int64
}

// archiveImpl is the per-format backing store an Archive dispatches to. All
// index arguments are positions into a shared, format-independent entry
// list built once at Open time.
type archiveImpl interface {
	len() int
	pathAt(i int) string
	sizeAt(i int) int64
	open(i int) (entrydata.EntryData, error)
}

// Archive is a parsed, read-only view over one archive's directory. Entry
// payloads are fetched lazily from the underlying ByteSource.
type Archive struct {
	format  Format
	impl    archiveImpl
	byPath  map[string]int
	opts    option.OpenOptions
}

// Open detects src's archive format from its leading bytes (read via
// ReadAt of its first 64 bytes, which covers every family's fixed header)
// and parses its full directory.
func Open(src ByteSource, opts ...option.OpenOption) (*Archive, error) {
	var o option.OpenOptions
	for _, opt := range opts {
		opt(&o)
	}

	header := make([]byte, 64)
	n, err := src.ReadAt(header, 0)
	if err != nil && err != io.EOF {
		return nil, bsaerr.Wrap(bsaerr.Io, err, "bsa: reading archive header")
	}
	header = header[:n]

	logger := o.Logger
	if logger == nil {
		logger = defaultLogger()
	}

	var format Format
	if o.FormatHint != 0 {
		// FormatHint is 1-based (Format(hint-1)) so the zero value keeps
		// its "auto-detect" meaning despite TES3 being Format(0).
		format = Format(o.FormatHint - 1)
	} else {
		format, err = DetectFormat(header)
		if err != nil {
			return nil, err
		}
	}
	logger.Debug("bsa: detected format", "format", format.String())

	// Re-read the whole directory region; the format packages' Parse
	// functions each walk their own header to know how much of buf they
	// need, so pull the entire source into memory up front. Archives are
	// directory-plus-payload formats with payloads at the tail, so this
	// costs one full read and one in-memory copy of src on every Open.
	full, err := readAll(src)
	if err != nil {
		return nil, err
	}

	var impl archiveImpl
	switch format {
	case TES3:
		a, err := tes3fmt.Parse(full, src)
		if err != nil {
			return nil, err
		}
		impl = tes3Impl{a}
	case TES4V103, TES4V104, TES5V105:
		a, err := tes4fmt.Parse(full, src)
		if err != nil {
			return nil, err
		}
		impl = tes4Impl{a}
	case FO4General, FO4DirectX:
		a, err := ba2fmt.Parse(full, src)
		if err != nil {
			return nil, err
		}
		impl = ba2Impl{a}
	default:
		return nil, bsaerr.New(bsaerr.UnsupportedFormat, "bsa: format %s has no reader", format)
	}
	logger.Trace("bsa: parsed directory", "entries", impl.len())

	// Keyed by normalized path so EntryByPath/OpenPath match regardless of
	// the case or separator style a caller supplies; entries themselves
	// keep their on-disk display casing in Entry.Path.
	byPath := make(map[string]int, impl.len())
	for i := 0; i < impl.len(); i++ {
		raw := impl.pathAt(i)
		norm, err := pathutil.Normalize(raw)
		if err != nil {
			// An on-disk name that fails normalization doesn't stop the
			// open; it's just unreachable by path (Entry/Extract by index
			// still work), so this is reported, not returned.
			logger.Error(err, "bsa: entry path failed to normalize, excluding from path lookup", "index", i, "path", raw)
			continue
		}
		logger.Trace("bsa: indexed entry", "index", i, "path", raw)
		byPath[string(norm)] = i
	}

	return &Archive{format: format, impl: impl, byPath: byPath, opts: o}, nil
}

// readAll pulls the entirety of src into memory, probing its length by
// growing a read buffer until ReadAt reports io.EOF. *os.File callers
// should prefer passing a source whose Stat-derived size is already known;
// this fallback only runs the probe loop against sources that can't report
// their own size.
func readAll(src ByteSource) ([]byte, error) {
	if sized, ok := src.(interface{ Size() int64 }); ok {
		buf := make([]byte, sized.Size())
		if _, err := src.ReadAt(buf, 0); err != nil && err != io.EOF {
			return nil, bsaerr.Wrap(bsaerr.Io, err, "bsa: reading archive body")
		}
		return buf, nil
	}

	const chunk = 1 << 20
	var buf []byte
	for {
		next := make([]byte, chunk)
		n, err := src.ReadAt(next, int64(len(buf)))
		buf = append(buf, next[:n]...)
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			return nil, bsaerr.Wrap(bsaerr.Io, err, "bsa: reading archive body")
		}
	}
}

// Format reports the archive's on-disk family and sub-version.
func (a *Archive) Format() Format { return a.format }

// Len returns the number of entries in the archive.
func (a *Archive) Len() int { return a.impl.len() }

// Entry returns entry i's uniform metadata. It panics if i is out of range,
// matching Go slice-index semantics for a programmer error.
func (a *Archive) Entry(i int) Entry {
	return Entry{Path: a.impl.pathAt(i), Size: a.impl.sizeAt(i)}
}

// EntryByPath looks up an entry by its archive-relative path, reporting
// whether it exists.
func (a *Archive) EntryByPath(path string) (Entry, bool) {
	i, ok := a.indexOf(path)
	if !ok {
		return Entry{}, false
	}
	return a.Entry(i), true
}

func (a *Archive) indexOf(path string) (int, bool) {
	norm, err := pathutil.Normalize(path)
	if err != nil {
		return 0, false
	}
	i, ok := a.byPath[string(norm)]
	return i, ok
}

// Entries iterates every entry in archive order.
func (a *Archive) Entries() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i := 0; i < a.impl.len(); i++ {
			if !yield(i, a.Entry(i)) {
				return
			}
		}
	}
}

// Open returns entry i's lazy, possibly-still-compressed payload view.
func (a *Archive) Open(i int) (*entrydata.EntryData, error) {
	ed, err := a.impl.open(i)
	if err != nil {
		return nil, err
	}
	return &ed, nil
}

// OpenPath looks up path and opens it, returning bsaerr.FileNotFound if it
// does not exist.
func (a *Archive) OpenPath(path string) (*entrydata.EntryData, error) {
	i, ok := a.indexOf(path)
	if !ok {
		return nil, bsaerr.New(bsaerr.FileNotFound, "bsa: no such entry %q", path)
	}
	return a.Open(i)
}

// Extract runs strategy over every entry in the archive, writing each
// entry's logical payload to the destination sink produces. Worker and
// writer pool sizes default to the Archive's own open-time options when the
// caller supplies none.
func (a *Archive) Extract(strategy extract.Strategy, sink extract.SinkFactory, opts ...extract.Option) error {
	defaults := []extract.Option{
		extract.WithNumWorkers(a.opts.NumWorkers),
		extract.WithWriterPoolSize(a.opts.WriterPoolSize),
	}
	if a.opts.ExtractionProgressCallback != nil {
		cb := a.opts.ExtractionProgressCallback
		defaults = append(defaults, extract.WithProgress(extract.ProgressCallback(cb)))
	}
	return extract.Run(archiveSource{a}, sink, strategy, append(defaults, opts...)...)
}

// Close releases any resources the Archive itself allocated. The
// underlying ByteSource is owned by the caller and is never closed here.
func (a *Archive) Close() error { return nil }

// archiveSource adapts Archive to extract.Source, whose Open returns
// entrydata.EntryData by value; Archive.Open returns a pointer to match the
// documented external interface, so the two can't share one method name.
type archiveSource struct{ a *Archive }

func (s archiveSource) Len() int             { return s.a.Len() }
func (s archiveSource) Path(i int) string    { return s.a.impl.pathAt(i) }
func (s archiveSource) Open(i int) (entrydata.EntryData, error) {
	return s.a.impl.open(i)
}

var _ extract.Source = archiveSource{}

// tes3Impl adapts *tes3fmt.Archive to archiveImpl.
type tes3Impl struct{ a *tes3fmt.Archive }

func (t tes3Impl) len() int          { return len(t.a.Entries) }
func (t tes3Impl) pathAt(i int) string { return t.a.Entries[i].Name }
func (t tes3Impl) sizeAt(i int) int64  { return int64(t.a.Entries[i].Record.Size) }
func (t tes3Impl) open(i int) (entrydata.EntryData, error) {
	return t.a.ReadEntry(&t.a.Entries[i]), nil
}

// tes4Impl adapts *tes4fmt.Archive to archiveImpl.
type tes4Impl struct{ a *tes4fmt.Archive }

func (t tes4Impl) len() int { return len(t.a.Entries) }
func (t tes4Impl) pathAt(i int) string {
	e := t.a.Entries[i]
	if e.Directory == "" {
		return e.Name
	}
	return e.Directory + "\\" + e.Name
}
func (t tes4Impl) sizeAt(i int) int64 {
	ed, err := t.a.ReadEntry(&t.a.Entries[i])
	if err != nil {
		return int64(t.a.Entries[i].Record.Size)
	}
	return ed.Len()
}
func (t tes4Impl) open(i int) (entrydata.EntryData, error) {
	return t.a.ReadEntry(&t.a.Entries[i])
}

// ba2Impl adapts *ba2fmt.Archive to archiveImpl, flattening each entry's
// chunk list into a single logical stream via Archive.ReadEntry.
type ba2Impl struct{ a *ba2fmt.Archive }

func (b ba2Impl) len() int            { return len(b.a.Entries) }
func (b ba2Impl) pathAt(i int) string { return b.a.Entries[i].Name }
func (b ba2Impl) sizeAt(i int) int64 {
	e := &b.a.Entries[i]
	var total int64
	for _, c := range e.Chunks {
		total += int64(c.DecompressedSize)
	}
	return total
}
func (b ba2Impl) open(i int) (entrydata.EntryData, error) {
	return b.a.ReadEntry(&b.a.Entries[i])
}

// Writer assembles a new archive of a fixed Format in memory and streams it
// to a destination in one WriteTo call.
type Writer interface {
	// Add queues a file at path with the given payload source.
	Add(path string, data writerdata.FileData) error
	// WriteTo assembles and writes the complete archive to w.
	WriteTo(w io.WriteSeeker) error
}

// NewWriter constructs a Writer targeting format, honoring compressed as
// the archive-wide compression default. TES3 ignores it, since TES3 never
// compresses; FO4 formats have no writer and return
// bsaerr.UnsupportedFormat. The sub-version always comes from format;
// option.CreateOptions.Version is not read.
func NewWriter(format Format, compressed bool, opts ...option.CreateOption) (Writer, error) {
	var o option.CreateOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch format {
	case TES3:
		return &tes3Writer{}, nil
	case TES4V103, TES4V104, TES5V105:
		version := tes4Version(format)
		return &tes4Writer{opts: tes4fmt.WriteOptions{
			Version:    version,
			Compressed: compressed,
			EmbedNames: o.EmbedNames,
		}}, nil
	default:
		return nil, bsaerr.New(bsaerr.UnsupportedFormat, "bsa: no writer for format %s", format)
	}
}

func tes4Version(f Format) uint32 {
	switch f {
	case TES4V103:
		return consts.TES4VersionV103
	case TES4V104:
		return consts.TES4VersionV104
	case TES5V105:
		return consts.TES4VersionV105
	default:
		return 0
	}
}

type tes3Writer struct {
	files []tes3fmt.PendingFile
}

func (w *tes3Writer) Add(path string, data writerdata.FileData) error {
	w.files = append(w.files, tes3fmt.PendingFile{Path: path, Data: data})
	return nil
}

func (w *tes3Writer) WriteTo(dst io.WriteSeeker) error {
	return tes3fmt.Write(dst, w.files)
}

type tes4Writer struct {
	opts  tes4fmt.WriteOptions
	files []tes4fmt.PendingFile
}

func (w *tes4Writer) Add(path string, data writerdata.FileData) error {
	dir, name := splitRawPath(path)
	w.files = append(w.files, tes4fmt.PendingFile{Directory: dir, Name: name, Data: data})
	return nil
}

// splitRawPath splits an as-given (not yet normalized) path at its last
// '/' or '\\', the way a caller building a directory tree would supply
// one; tes4fmt.Write normalizes and encodes each half itself.
func splitRawPath(path string) (directory, name string) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '\\' || path[i] == '/' {
			return path[:i], path[i+1:]
		}
	}
	return "", path
}

func (w *tes4Writer) WriteTo(dst io.WriteSeeker) error {
	return tes4fmt.Write(dst, w.files, w.opts)
}
