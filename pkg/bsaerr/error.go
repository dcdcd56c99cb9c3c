// Package bsaerr defines the unified error taxonomy crossing the codec's
// public boundary.
package bsaerr

import (
	"errors"
	"fmt"
)

// Kind classifies the reason an operation against a Bethesda archive failed.
type Kind int

const (
	// InvalidMagic means the leading magic bytes did not match any known format.
	InvalidMagic Kind = iota
	// InvalidVersion means the format's version field held an unsupported value.
	InvalidVersion
	// InvalidHeader means a header field failed a structural check (size, pad, count).
	InvalidHeader
	// UnsupportedFormat means the format tag was recognized but is not implemented.
	UnsupportedFormat
	// BadOffset means a record pointed outside the archive's data region.
	BadOffset
	// BadSentinel means a BA2 chunk's trailing sentinel did not equal 0xBAADF00D.
	BadSentinel
	// MissingNul means a bzstring/zstring lacked its required NUL terminator.
	MissingNul
	// EmbeddedNul means a bstring contained a NUL byte where none is allowed.
	EmbeddedNul
	// BadEncoding means a byte sequence could not be interpreted as Windows-1252.
	BadEncoding
	// FileNotFound means a lookup by path or index had no matching entry.
	FileNotFound
	// InvalidFileName means a path could not be normalized or hashed.
	InvalidFileName
	// CompressionUnsupported means the archive format does not support per-file compression.
	CompressionUnsupported
	// ArchiveTooLarge means the assembled archive would overflow a format-defined field.
	ArchiveTooLarge
	// FileTooLarge means a single file's size would overflow a format-defined field.
	FileTooLarge
	// Io means the underlying byte source or sink returned an error.
	Io
	// Compression means a zlib/LZ4 stream failed to decode or encode.
	Compression
)

func (k Kind) String() string {
	switch k {
	case InvalidMagic:
		return "invalid magic"
	case InvalidVersion:
		return "invalid version"
	case InvalidHeader:
		return "invalid header"
	case UnsupportedFormat:
		return "unsupported format"
	case BadOffset:
		return "bad offset"
	case BadSentinel:
		return "bad sentinel"
	case MissingNul:
		return "missing nul terminator"
	case EmbeddedNul:
		return "embedded nul"
	case BadEncoding:
		return "bad encoding"
	case FileNotFound:
		return "file not found"
	case InvalidFileName:
		return "invalid file name"
	case CompressionUnsupported:
		return "compression unsupported"
	case ArchiveTooLarge:
		return "archive too large"
	case FileTooLarge:
		return "file too large"
	case Io:
		return "i/o error"
	case Compression:
		return "compression error"
	default:
		return "unknown error"
	}
}

// Error is the unified error type carried across the codec's public boundary.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
		}
		return e.Kind.String()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs an *Error with no wrapped cause.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an *Error that wraps cause, preserving it for errors.Is/As.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err (or any error it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
