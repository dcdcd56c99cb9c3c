// Package writerdata supplies the FileData sources an archive writer
// consumes: in-memory buffers, seekable readers, and path-backed files
// opened lazily at write time.
package writerdata

import (
	"io"
	"os"

	"github.com/bgrewell/bsa-kit/pkg/bsaerr"
)

// FileData is a file payload a writer can measure and stream without
// holding it in memory ahead of time.
type FileData interface {
	// Len reports the payload's size in bytes.
	Len() (int64, error)
	// WriteTo streams the payload to w, returning the number of bytes
	// written.
	WriteTo(w io.Writer) (int64, error)
}

// BytesData is a FileData backed by an in-memory buffer.
type BytesData []byte

func (b BytesData) Len() (int64, error) { return int64(len(b)), nil }

func (b BytesData) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b)
	return int64(n), err
}

// ReaderData is a FileData backed by an io.ReadSeeker; Len seeks to the end
// and back to measure it, and WriteTo rewinds to the start before copying.
type ReaderData struct {
	r io.ReadSeeker
}

// NewReaderData wraps r as a FileData.
func NewReaderData(r io.ReadSeeker) ReaderData {
	return ReaderData{r: r}
}

func (d ReaderData) Len() (int64, error) {
	cur, err := d.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, bsaerr.Wrap(bsaerr.Io, err, "writerdata: measuring reader length")
	}
	end, err := d.r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, bsaerr.Wrap(bsaerr.Io, err, "writerdata: measuring reader length")
	}
	if _, err := d.r.Seek(cur, io.SeekStart); err != nil {
		return 0, bsaerr.Wrap(bsaerr.Io, err, "writerdata: restoring reader position")
	}
	return end, nil
}

func (d ReaderData) WriteTo(w io.Writer) (int64, error) {
	if _, err := d.r.Seek(0, io.SeekStart); err != nil {
		return 0, bsaerr.Wrap(bsaerr.Io, err, "writerdata: rewinding reader")
	}
	n, err := io.Copy(w, d.r)
	if err != nil {
		return n, bsaerr.Wrap(bsaerr.Io, err, "writerdata: copying reader payload")
	}
	return n, nil
}

// pathFileData is a FileData that holds only a filesystem path, opening and
// reading the file fresh on every call. This is inherently racy against
// concurrent modification of the underlying file; it exists because holding
// one open *os.File per entry of a large source tree is not feasible on
// most platforms' fd limits.
type pathFileData struct {
	path string
}

// NewPathData returns a FileData that reads path lazily, once per Len/WriteTo
// call, rather than holding an open file handle for the writer's lifetime.
func NewPathData(path string) FileData {
	return pathFileData{path: path}
}

func (d pathFileData) Len() (int64, error) {
	info, err := os.Stat(d.path)
	if err != nil {
		return 0, bsaerr.Wrap(bsaerr.Io, err, "writerdata: statting %q", d.path)
	}
	return info.Size(), nil
}

func (d pathFileData) WriteTo(w io.Writer) (int64, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return 0, bsaerr.Wrap(bsaerr.Io, err, "writerdata: opening %q", d.path)
	}
	defer f.Close()
	n, err := io.Copy(w, f)
	if err != nil {
		return n, bsaerr.Wrap(bsaerr.Io, err, "writerdata: copying %q", d.path)
	}
	return n, nil
}
