package yowsl

import (
	"errors"

	"github.com/ubuntu/yowsl/internal/errs"
)

// Errors reported at the boundary with the native libraries.
type (
	// LoadError is returned by New when a native library cannot be loaded.
	LoadError = errs.LoadError
	// SymbolError is returned when a native library does not export a function.
	SymbolError = errs.SymbolError
	// DecodeError is returned when data handed back by the native side is malformed.
	DecodeError = errs.DecodeError
	// StatusError is returned when a native call reported a failure. The HRESULT is preserved.
	StatusError = errs.StatusError
)

var (
	// ErrAlreadyRegistered is returned when registering a distro under a name that is in use.
	ErrAlreadyRegistered = errors.New("distro is already registered")
	// ErrNotRegistered is returned when unregistering a distro that does not exist.
	ErrNotRegistered = errors.New("distro is not registered")
	// ErrEmptyName is returned when a distro name is empty.
	ErrEmptyName = errors.New("distro name cannot be empty")
)
