package extract

// ProgressCallback reports incremental progress during a bulk extraction.
type ProgressCallback func(
	currentFilename string,
	bytesTransferred int64,
	totalBytes int64,
	currentFileNumber int,
	totalFileCount int,
)

// Options tunes a Run call's concurrency and progress reporting.
type Options struct {
	NumWorkers     int // 0 = runtime.NumCPU(); strategies 2, 3 and 4.
	WriterPoolSize int // 0 = 64; strategy 3's fixed writer pool.
	Progress       ProgressCallback
}

type Option func(*Options)

// WithNumWorkers sets the worker-pool size strategies 2, 3 and 4 use for
// decompression (and, for strategy 4, positioned reads). 0 resolves to
// runtime.NumCPU() at Run time.
func WithNumWorkers(n int) Option {
	return func(o *Options) {
		o.NumWorkers = n
	}
}

// WithWriterPoolSize sets strategy 3's fixed writer-pool size. 0 resolves
// to 64.
func WithWriterPoolSize(n int) Option {
	return func(o *Options) {
		o.WriterPoolSize = n
	}
}

// WithProgress sets a callback invoked as each entry finishes extracting.
func WithProgress(cb ProgressCallback) Option {
	return func(o *Options) {
		o.Progress = cb
	}
}

func resolve(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
