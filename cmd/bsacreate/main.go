// Command bsacreate creates an empty TES3 archive at the given path. It is
// deliberately minimal: a starting point for scripts that add entries
// programmatically via the bsa-kit API rather than from a directory tree
// (see cmd/bsabuild for that).
package main

import (
	"flag"
	"fmt"
	"os"

	bsa "github.com/bgrewell/bsa-kit"
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Println("Usage: bsacreate <dest-archive>")
		os.Exit(1)
	}
	dest := flag.Arg(0)

	w, err := bsa.NewWriter(bsa.TES3, false)
	if err != nil {
		fmt.Printf("failed to create writer: %s\n", err)
		os.Exit(1)
	}

	f, err := os.Create(dest)
	if err != nil {
		fmt.Printf("failed to create %q: %s\n", dest, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := w.WriteTo(f); err != nil {
		fmt.Printf("failed writing archive: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote empty TES3 archive to %q.\n", dest)
	// TODO: wire this up to a directory-tree source once bsabuild's walker
	// is extracted into something both tools can share.
}
