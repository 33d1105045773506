// Package wide converts between Go strings and the NUL-terminated strings
// used by the Win32 calling convention.
package wide

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
	"unsafe"

	"github.com/ubuntu/yowsl/internal/errs"
)

// MaxLength is the longest string, in code units and without the terminator,
// that will be read from a native pointer.
const MaxLength = 32768

// ErrInteriorNUL is returned when a string cannot be passed to the native side
// because it would be truncated at an embedded NUL.
var ErrInteriorNUL = errors.New("string contains a NUL character")

// Encode converts s into UTF-16 and appends the terminating zero unit.
func Encode(s string) ([]uint16, error) {
	if strings.IndexByte(s, 0) != -1 {
		return nil, ErrInteriorNUL
	}
	return append(utf16.Encode([]rune(s)), 0), nil
}

// Decode reads a NUL-terminated UTF-16 string. Unpaired surrogates are
// replaced with U+FFFD.
func Decode(p *uint16) (string, error) {
	if p == nil {
		return "", &errs.DecodeError{What: "wide string", Reason: "null pointer"}
	}

	n, ok := wcsnlen(p, MaxLength)
	if !ok {
		return "", &errs.DecodeError{What: "wide string", Reason: fmt.Sprintf("no terminator within %d code units", MaxLength)}
	}

	return string(utf16.Decode(unsafe.Slice(p, n))), nil
}

// DecodeNarrow reads a NUL-terminated char string. Invalid UTF-8 sequences are
// replaced with U+FFFD.
func DecodeNarrow(p *byte) (string, error) {
	if p == nil {
		return "", &errs.DecodeError{What: "narrow string", Reason: "null pointer"}
	}

	n, ok := strnlen(p, MaxLength)
	if !ok {
		return "", &errs.DecodeError{What: "narrow string", Reason: fmt.Sprintf("no terminator within %d bytes", MaxLength)}
	}

	return strings.ToValidUTF8(string(unsafe.Slice(p, n)), "\uFFFD"), nil
}

// wcsnlen finds the terminator of a wide string, looking at no more than
// maxlen+1 units. ok is false when none was found.
func wcsnlen(p *uint16, maxlen int) (length int, ok bool) {
	for ; length <= maxlen; length++ {
		if *(*uint16)(unsafe.Add(unsafe.Pointer(p), length*2)) == 0 {
			return length, true
		}
	}
	return 0, false
}

// strnlen is wcsnlen for char strings.
func strnlen(p *byte, maxlen int) (length int, ok bool) {
	for ; length <= maxlen; length++ {
		if *(*byte)(unsafe.Add(unsafe.Pointer(p), length)) == 0 {
			return length, true
		}
	}
	return 0, false
}
