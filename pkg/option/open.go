package option

import (
	"github.com/bgrewell/bsa-kit/pkg/logging"
)

// ExtractionProgressCallback reports incremental progress during a bulk
// extraction: the file currently in flight, bytes transferred for it so
// far, its total size, and its position within the overall entry count.
type ExtractionProgressCallback func(
	currentFilename string,
	bytesTransferred int64,
	totalBytes int64,
	currentFileNumber int,
	totalFileCount int,
)

// OpenOptions configures how an archive is opened and how its extraction
// pipeline is tuned.
type OpenOptions struct {
	FormatHint                 int // 1 + the bsa.Format value; zero value = auto-detect from magic.
	NumWorkers                 int // 0 = runtime.NumCPU()
	WriterPoolSize             int // 0 = 64, per the read-all/decompress-parallel/write-parallel strategy.
	ExtractionProgressCallback ExtractionProgressCallback
	Logger                     *logging.Logger
}

type OpenOption func(*OpenOptions)

// WithFormatHint skips auto-detection and parses the archive as
// bsa.Format(format-1); the hint is 1-based so that 0 keeps meaning
// auto-detect.
func WithFormatHint(format int) OpenOption {
	return func(o *OpenOptions) {
		o.FormatHint = format
	}
}

// WithNumWorkers sets the worker-pool size extraction strategies 2-4 use.
// 0 (the default) resolves to runtime.NumCPU() at extraction time.
func WithNumWorkers(n int) OpenOption {
	return func(o *OpenOptions) {
		o.NumWorkers = n
	}
}

// WithWriterPoolSize sets the fixed writer-pool size extraction strategy 3
// uses. 0 (the default) resolves to 64.
func WithWriterPoolSize(n int) OpenOption {
	return func(o *OpenOptions) {
		o.WriterPoolSize = n
	}
}

// WithExtractionProgress sets a progress callback invoked during bulk
// extraction.
func WithExtractionProgress(callback ExtractionProgressCallback) OpenOption {
	return func(o *OpenOptions) {
		o.ExtractionProgressCallback = callback
	}
}

// WithLogger sets the logger an archive uses while parsing and extracting.
func WithLogger(logger *logging.Logger) OpenOption {
	return func(o *OpenOptions) {
		o.Logger = logger
	}
}
