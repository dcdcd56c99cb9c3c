package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	bsa "github.com/bgrewell/bsa-kit"
	"github.com/bgrewell/bsa-kit/pkg/extract"
	"github.com/bgrewell/bsa-kit/pkg/logging"
	"github.com/bgrewell/bsa-kit/pkg/option"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/theckman/yacspin"
	"golang.org/x/term"
)

var strategyNames = map[string]extract.Strategy{
	"sequential":          extract.Sequential,
	"parallel-decompress": extract.ParallelDecompress,
	"parallel-write":      extract.ParallelWrite,
	"positioned":          extract.Positioned,
}

func main() {
	debug := flag.Bool("v", false, "Enable verbose (debug) logging")
	outputDir := flag.String("o", "./extracted", "Output directory for extracted files")
	pattern := flag.String("pattern", "", "Only extract entries matching this doublestar glob (e.g. 'meshes/**/*.nif')")
	strategyFlag := flag.String("strategy", "sequential", "Extraction strategy: sequential, parallel-decompress, parallel-write, positioned")
	workers := flag.Int("workers", 0, "Worker pool size for parallel strategies (0 = runtime.NumCPU())")

	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: bsaextract [options] <path-to-archive>")
		fmt.Println("  -v                  Enable verbose (debug) logging")
		fmt.Println("  -o <directory>      Output directory (default './extracted')")
		fmt.Println("  -pattern <glob>     Only extract entries matching this doublestar glob")
		fmt.Println("  -strategy <name>    sequential, parallel-decompress, parallel-write, positioned")
		fmt.Println("  -workers <n>        Worker pool size for parallel strategies")
		os.Exit(1)
	}

	strategy, ok := strategyNames[*strategyFlag]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown strategy %q\n", *strategyFlag)
		os.Exit(1)
	}

	var logger *logging.Logger
	if *debug {
		logger = logging.NewLogger(logging.NewSimpleLogger(os.Stderr, logging.LEVEL_DEBUG, true))
	}

	archivePath := flag.Arg(0)
	f, err := os.Open(archivePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open %q: %v\n", archivePath, err)
		os.Exit(1)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to stat %q: %v\n", archivePath, err)
		os.Exit(1)
	}

	spinner := newSpinner()
	if spinner != nil {
		_ = spinner.Start()
	}

	openOpts := []option.OpenOption{option.WithNumWorkers(*workers), option.WithWriterPoolSize(*workers)}
	if logger != nil {
		openOpts = append(openOpts, option.WithLogger(logger))
	}
	openOpts = append(openOpts, option.WithExtractionProgress(func(currentFilename string, transferred, total int64, fileNum, totalFiles int) {
		if spinner != nil {
			spinner.Message(fmt.Sprintf("[%d/%d] %s", fileNum, totalFiles, currentFilename))
		}
	}))

	archive, err := bsa.Open(fileSizedReaderAt{f, info.Size()}, openOpts...)
	if err != nil {
		stopSpinner(spinner, false)
		fmt.Fprintf(os.Stderr, "failed to open archive: %v\n", err)
		os.Exit(1)
	}

	var matcher func(path string) bool
	if *pattern != "" {
		matcher = func(path string) bool {
			ok, _ := doublestar.Match(*pattern, strings.ReplaceAll(path, "\\", "/"))
			return ok
		}
	}

	sink := func(path string) (io.WriteCloser, error) {
		if matcher != nil && !matcher(path) {
			return discardWriteCloser{}, nil
		}
		dest := filepath.Join(*outputDir, filepath.FromSlash(strings.ReplaceAll(path, "\\", "/")))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, err
		}
		return os.Create(dest)
	}

	if err := archive.Extract(strategy, sink); err != nil {
		stopSpinner(spinner, false)
		fmt.Fprintf(os.Stderr, "extraction failed: %v\n", err)
		os.Exit(1)
	}

	stopSpinner(spinner, true)
	fmt.Printf("Extraction completed successfully to %q.\n", *outputDir)
}

// newSpinner returns nil when stdout isn't a terminal, so progress output
// never corrupts a pipe or log file.
func newSpinner() *yacspin.Spinner {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}
	cfg := yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[9],
		Suffix:          " extracting",
		SuffixAutoColon: true,
		Message:         "starting",
		StopCharacter:   "✓",
		StopColors:      []string{"fgGreen"},
		StopFailMessage: "extraction failed",
		StopFailColors:  []string{"fgRed"},
	}
	s, err := yacspin.New(cfg)
	if err != nil {
		return nil
	}
	return s
}

func stopSpinner(s *yacspin.Spinner, ok bool) {
	if s == nil {
		return
	}
	if ok {
		_ = s.Stop()
	} else {
		_ = s.StopFail()
	}
}

// discardWriteCloser satisfies extract.SinkFactory's return type for
// entries the caller's glob filter excluded.
type discardWriteCloser struct{}

func (discardWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (discardWriteCloser) Close() error                { return nil }

type fileSizedReaderAt struct {
	*os.File
	size int64
}

func (f fileSizedReaderAt) Size() int64 { return f.size }
