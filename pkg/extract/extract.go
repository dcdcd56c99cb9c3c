// Package extract implements the four bulk-extraction strategies a parsed
// archive offers: fully sequential, sequential-read-parallel-decompress,
// read-all-then-parallel-write, and fully parallel positioned reads.
package extract

import (
	"context"
	"io"
	"runtime"

	"github.com/bgrewell/bsa-kit/pkg/bsaerr"
	"github.com/bgrewell/bsa-kit/pkg/entrydata"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Strategy selects one of the four extraction disciplines documented in
// the package comment.
type Strategy int

const (
	// Sequential reads, decompresses, and writes one entry at a time.
	Sequential Strategy = iota
	// ParallelDecompress reads entries sequentially (so the underlying
	// source sees monotonic seeks) but decompresses and writes each one
	// on a CPU-sized worker pool.
	ParallelDecompress
	// ParallelWrite reads entries sequentially, decompresses them on a
	// CPU-sized worker pool, and forwards decompressed buffers to a
	// separate fixed-size writer pool so a slow destination never stalls
	// the source's sequential sweep.
	ParallelWrite
	// Positioned parallelizes both the read and the decompress/write
	// stages, relying on the source's io.ReaderAt contract to allow
	// concurrent reads without mutual exclusion.
	Positioned
)

const defaultWriterPoolSize = 64

// Source is the minimal view of an archive an extraction run needs.
type Source interface {
	// Len returns the number of entries.
	Len() int
	// Path returns entry i's archive-relative output path.
	Path(i int) string
	// Open returns entry i's logical (possibly still-compressed) payload
	// view, lazily backed by the archive's underlying byte source.
	Open(i int) (entrydata.EntryData, error)
}

// SinkFactory opens a destination for path, creating any parent
// directories the destination needs. The caller owns cleanup of partial
// output on failure.
type SinkFactory func(path string) (io.WriteCloser, error)

// Run extracts every entry in src to the destinations sink produces, using
// the given strategy.
func Run(src Source, sink SinkFactory, strategy Strategy, opts ...Option) error {
	o := resolve(opts)
	if o.NumWorkers <= 0 {
		o.NumWorkers = runtime.NumCPU()
	}
	if o.WriterPoolSize <= 0 {
		o.WriterPoolSize = defaultWriterPoolSize
	}

	switch strategy {
	case Sequential:
		return runSequential(src, sink, o)
	case ParallelDecompress:
		return runParallelDecompress(src, sink, o)
	case ParallelWrite:
		return runParallelWrite(src, sink, o)
	case Positioned:
		return runPositioned(src, sink, o)
	default:
		return bsaerr.New(bsaerr.InvalidHeader, "extract: unknown strategy %d", strategy)
	}
}

func extractOne(src Source, sink SinkFactory, i int, ed entrydata.EntryData, o Options) error {
	path := src.Path(i)
	r, err := ed.NewReader()
	if err != nil {
		return err
	}
	w, err := sink(path)
	if err != nil {
		return bsaerr.Wrap(bsaerr.Io, err, "extract: opening destination for %q", path)
	}
	defer w.Close()

	n, err := io.Copy(w, r)
	if err != nil {
		return bsaerr.Wrap(bsaerr.Io, err, "extract: writing %q", path)
	}
	if o.Progress != nil {
		o.Progress(path, n, ed.Len(), i+1, src.Len())
	}
	return nil
}

// runSequential implements strategy 1: one entry at a time, minimum memory.
func runSequential(src Source, sink SinkFactory, o Options) error {
	for i := 0; i < src.Len(); i++ {
		ed, err := src.Open(i)
		if err != nil {
			return err
		}
		if err := extractOne(src, sink, i, ed, o); err != nil {
			return err
		}
	}
	return nil
}

// runParallelDecompress implements strategy 2: the main goroutine reads
// each entry's raw block in archive order, detaching it from the
// underlying stream, then hands it to a CPU-sized worker pool that
// decompresses and writes independently.
func runParallelDecompress(src Source, sink SinkFactory, o Options) error {
	g, ctx := errgroup.WithContext(context.Background())
	sem := semaphore.NewWeighted(int64(o.NumWorkers))

	for i := 0; i < src.Len(); i++ {
		ed, err := src.Open(i)
		if err != nil {
			return err
		}
		detached, err := ed.Detach()
		if err != nil {
			return err
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		i, detached := i, detached
		g.Go(func() error {
			defer sem.Release(1)
			return extractOne(src, sink, i, detached, o)
		})
	}
	return g.Wait()
}

// runParallelWrite implements strategy 3: like strategy 2, but decompressed
// buffers are forwarded through a channel to a separate, fixed-size writer
// pool, so the reader's sequential sweep never blocks on disk writes.
func runParallelWrite(src Source, sink SinkFactory, o Options) error {
	type decoded struct {
		index int
		data  []byte
	}

	g, ctx := errgroup.WithContext(context.Background())
	decodeSem := semaphore.NewWeighted(int64(o.NumWorkers))
	writeCh := make(chan decoded, o.WriterPoolSize)

	writers, writeCtx := errgroup.WithContext(ctx)
	for w := 0; w < o.WriterPoolSize; w++ {
		writers.Go(func() error {
			for {
				select {
				case <-writeCtx.Done():
					return writeCtx.Err()
				case d, ok := <-writeCh:
					if !ok {
						return nil
					}
					if err := extractOne(src, sink, d.index, entrydata.NewUncompressed(entrydata.FromSlice(d.data)), o); err != nil {
						return err
					}
				}
			}
		})
	}

	for i := 0; i < src.Len(); i++ {
		ed, err := src.Open(i)
		if err != nil {
			close(writeCh)
			writers.Wait()
			return err
		}
		detached, err := ed.Detach()
		if err != nil {
			close(writeCh)
			writers.Wait()
			return err
		}
		if err := decodeSem.Acquire(ctx, 1); err != nil {
			break
		}
		i, detached := i, detached
		g.Go(func() error {
			defer decodeSem.Release(1)
			buf, err := detached.IntoOwned()
			if err != nil {
				return err
			}
			select {
			case writeCh <- decoded{index: i, data: buf}:
				return nil
			case <-writeCtx.Done():
				return writeCtx.Err()
			}
		})
	}

	decodeErr := g.Wait()
	close(writeCh)
	writeErr := writers.Wait()
	if decodeErr != nil {
		return decodeErr
	}
	return writeErr
}

// runPositioned implements strategy 4: every entry is independently
// positioned-read, decompressed, and written by its own worker, relying on
// the source's concurrency-safe io.ReaderAt-backed Open.
func runPositioned(src Source, sink SinkFactory, o Options) error {
	g, ctx := errgroup.WithContext(context.Background())
	sem := semaphore.NewWeighted(int64(o.NumWorkers))

	for i := 0; i < src.Len(); i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		i := i
		g.Go(func() error {
			defer sem.Release(1)
			ed, err := src.Open(i)
			if err != nil {
				return err
			}
			return extractOne(src, sink, i, ed, o)
		})
	}
	return g.Wait()
}
