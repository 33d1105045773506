// Package errs defines the errors raised at the boundary with the native
// WSL libraries, so that every layer of yowsl reports them the same way.
package errs

import "fmt"

// LoadError is returned when a native library (or one of its dependencies)
// cannot be loaded. The native facility must be considered unavailable.
type LoadError struct {
	Library string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load native library %q: %v", e.Library, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SymbolError is returned when a loaded library does not export a function.
// It only affects the operation that needed that export.
type SymbolError struct {
	Library string
	Symbol  string
	Err     error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("native library %q does not export %s: %v", e.Library, e.Symbol, e.Err)
}

func (e *SymbolError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when data handed back by the native side is malformed.
type DecodeError struct {
	What   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode %s: %s", e.What, e.Reason)
}

// StatusError is returned when a native call ran but reported a failure.
// Code is the HRESULT exactly as returned.
type StatusError struct {
	Code uint32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("native call failed with HRESULT 0x%08X", e.Code)
}
