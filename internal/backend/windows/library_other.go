//go:build !windows

package windows

import (
	"errors"

	"github.com/ubuntu/yowsl/internal/errs"
)

// Library is a native library. There are none outside of Windows.
type Library struct {
	name string
}

// Open always fails: the WSL libraries only exist on Windows.
func Open(name string) (*Library, error) {
	return nil, &errs.LoadError{Library: name, Err: errors.ErrUnsupported}
}

// Name is the name the library was opened with.
func (l *Library) Name() string {
	return l.name
}

// Resolve always fails outside of Windows.
func (l *Library) Resolve(export string) (uintptr, error) {
	return 0, &errs.SymbolError{Library: l.name, Symbol: export, Err: errors.ErrUnsupported}
}

func (l *Library) call(export string, _ ...uintptr) (uintptr, error) {
	return l.Resolve(export)
}

func (l *Library) String() string {
	return l.name
}
