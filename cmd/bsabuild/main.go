package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	bsa "github.com/bgrewell/bsa-kit"
	"github.com/bgrewell/bsa-kit/pkg/logging"
	"github.com/bgrewell/bsa-kit/pkg/option"
	"github.com/bgrewell/bsa-kit/pkg/writerdata"
	"github.com/bmatcuk/doublestar/v4"
)

func main() {
	format := flag.String("format", "tes3", "Target format: tes3, tes4v103, tes4v104, tes5v105")
	compressed := flag.Bool("compressed", true, "Compress entries (TES4-family only; ignored for TES3)")
	embed := flag.Bool("embed-names", false, "Embed each file's directory\\filename ahead of its payload (TES4-family only)")
	exclude := flag.String("exclude", "", "Doublestar glob; matching paths (relative to source-dir, forward slashes) are skipped")
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Println("Usage: bsabuild [options] <source-dir> <dest-archive>")
		fmt.Println("  -format <name>       tes3, tes4v103, tes4v104, tes5v105 (default tes3)")
		fmt.Println("  -compressed          Compress entries (TES4-family only, default true)")
		fmt.Println("  -embed-names         Embed dirname\\filename ahead of payload (TES4-family only)")
		fmt.Println("  -exclude <pattern>   Doublestar glob of relative paths to skip")
		os.Exit(1)
	}

	sourceDir := flag.Arg(0)
	destPath := flag.Arg(1)

	log := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, logging.LEVEL_TRACE, true))

	target, err := parseFormat(*format)
	if err != nil {
		log.Error(err, "invalid format")
		os.Exit(1)
	}

	w, err := bsa.NewWriter(target, *compressed, option.WithEmbedNames(*embed))
	if err != nil {
		log.Error(err, "failed to create writer")
		os.Exit(1)
	}

	var fileCount int
	err = filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		if *exclude != "" {
			matched, err := doublestar.Match(*exclude, filepath.ToSlash(rel))
			if err != nil {
				return fmt.Errorf("bad -exclude pattern %q: %w", *exclude, err)
			}
			if matched {
				return nil
			}
		}
		if err := w.Add(rel, writerdata.NewPathData(path)); err != nil {
			return fmt.Errorf("adding %q: %w", rel, err)
		}
		fileCount++
		return nil
	})
	if err != nil {
		log.Error(err, "failed walking source directory")
		os.Exit(1)
	}

	dest, err := os.Create(destPath)
	if err != nil {
		log.Error(err, "failed to create destination archive")
		os.Exit(1)
	}
	defer dest.Close()

	if err := w.WriteTo(dest); err != nil {
		log.Error(err, "failed writing archive")
		os.Exit(1)
	}

	fmt.Printf("Wrote %d files from %q to %q (%s).\n", fileCount, sourceDir, destPath, target)
}

func parseFormat(name string) (bsa.Format, error) {
	switch name {
	case "tes3":
		return bsa.TES3, nil
	case "tes4v103":
		return bsa.TES4V103, nil
	case "tes4v104":
		return bsa.TES4V104, nil
	case "tes5v105":
		return bsa.TES5V105, nil
	default:
		return 0, fmt.Errorf("unrecognized format %q", name)
	}
}
