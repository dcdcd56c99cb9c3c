package main

import (
	"fmt"
	"os"
	"sort"

	bsa "github.com/bgrewell/bsa-kit"
	"github.com/bgrewell/usage"
)

// displayArchiveInfo prints the archive's format, entry count, and total
// logical size, followed by a sorted listing of every entry when verbose.
func displayArchiveInfo(a *bsa.Archive, verbose bool) {
	var totalSize int64
	paths := make([]string, 0, a.Len())
	for _, e := range a.Entries() {
		totalSize += e.Size
		paths = append(paths, e.Path)
	}
	sort.Strings(paths)

	fmt.Println("=== Archive Information ===")
	fmt.Printf("Format: %s\n", a.Format())
	fmt.Printf("Total Files: %d\n", a.Len())
	fmt.Printf("Total Size: %d bytes (%.2f MB)\n", totalSize, float64(totalSize)/1024/1024)
	fmt.Println("===========================")

	if verbose {
		fmt.Println("\n=== Entries ===")
		for _, p := range paths {
			entry, _ := a.EntryByPath(p)
			fmt.Printf("  %-60s %10d bytes\n", entry.Path, entry.Size)
		}
		fmt.Println("===============")
	}
}

func main() {
	u := usage.NewUsage(
		usage.WithApplicationName("bsaview"),
		usage.WithApplicationDescription("bsaview inspects Bethesda game archives (TES3 BSA, TES4-family BSA, and FO4 BA2), printing format, entry count, and size information, and optionally listing every entry."),
	)

	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "List every entry in the archive", "optional", nil)
	path := u.AddArgument(1, "archive-path", "Path to the archive file to inspect", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if path == nil || *path == "" {
		u.PrintError(fmt.Errorf("path to the archive must be provided"))
		os.Exit(1)
	}

	f, err := os.Open(*path)
	if err != nil {
		u.PrintError(fmt.Errorf("failed to open %q: %w", *path, err))
		os.Exit(1)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		u.PrintError(fmt.Errorf("failed to stat %q: %w", *path, err))
		os.Exit(1)
	}

	archive, err := bsa.Open(sizedReaderAt{f, info.Size()})
	if err != nil {
		u.PrintError(fmt.Errorf("failed to open archive: %w", err))
		os.Exit(1)
	}

	displayArchiveInfo(archive, *verbose)
}

// sizedReaderAt pairs an *os.File with its already-known size, so
// bsa.Open's readAll fast path can size its buffer without a second Stat.
type sizedReaderAt struct {
	*os.File
	size int64
}

func (s sizedReaderAt) Size() int64 { return s.size }
