// Package pathutil normalizes archive-relative paths into the canonical
// lowercase, Windows-1252, backslash-separated form the TES4-family hash
// and name tables require.
package pathutil

import (
	"strings"

	"github.com/bgrewell/bsa-kit/pkg/bsaerr"
	"github.com/bgrewell/bsa-kit/pkg/codepage"
	"github.com/bgrewell/bsa-kit/pkg/consts"
)

// Normalize rejects a leading separator, an absolute path, an empty path,
// and any "."/".." component, then splits on both '/' and '\\',
// Windows-1252-encodes and lowercase-folds each component, and rejoins
// with '\\'. It reports an *bsaerr.Error with Kind InvalidFileName on any
// violation, including a result at or beyond consts.MaxPath.
func Normalize(path string) ([]byte, error) {
	if path == "" {
		return nil, bsaerr.New(bsaerr.InvalidFileName, "path is empty")
	}
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "\\") {
		return nil, bsaerr.New(bsaerr.InvalidFileName, "path %q has a leading separator", path)
	}

	var out []byte
	for _, component := range strings.FieldsFunc(path, isSeparator) {
		if component == "." || component == ".." {
			return nil, bsaerr.New(bsaerr.InvalidFileName, "path %q contains a %q component", path, component)
		}
		encoded, err := codepage.Encode(component)
		if err != nil {
			return nil, bsaerr.Wrap(bsaerr.InvalidFileName, err, "path %q has an unencodable component", path)
		}
		if len(out) > 0 {
			out = append(out, '\\')
		}
		out = append(out, codepage.FoldLower(encoded)...)
	}

	if len(out) == 0 {
		return nil, bsaerr.New(bsaerr.InvalidFileName, "path %q has no components", path)
	}
	if len(out) >= consts.MaxPath {
		return nil, bsaerr.New(bsaerr.InvalidFileName, "normalized path %q is %d bytes, at or beyond MAX_PATH", path, len(out))
	}
	return out, nil
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

// SplitExtension splits name at its last '.', returning the stem and the
// extension (the extension includes the leading dot). If name has no '.',
// the extension is empty.
func SplitExtension(name []byte) (stem, extension []byte) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i], name[i:]
		}
	}
	return name, nil
}

// SplitPath splits a normalized, backslash-joined path at its last '\\',
// returning the parent directory and the file name. If path has no
// separator, the directory is empty and name is the whole path.
func SplitPath(path []byte) (directory, name []byte) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '\\' {
			return path[:i], path[i+1:]
		}
	}
	return nil, path
}
