package windows

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ubuntu/yowsl/internal/errs"
	"golang.org/x/sys/windows"
)

// Library is a native library, loaded once and kept for the lifetime of the process.
type Library struct {
	name  string
	dll   *windows.DLL
	procs sync.Map // export name -> *windows.Proc
}

// Open loads the named library. Bare names are only looked up in System32 so
// that a planted DLL in the working directory cannot be picked up.
func Open(name string) (*Library, error) {
	var searchFlags uintptr = windows.LOAD_LIBRARY_SEARCH_SYSTEM32
	if strings.ContainsAny(name, `\/`) {
		searchFlags = 0
	}

	h, err := windows.LoadLibraryEx(name, 0, searchFlags)
	if err != nil {
		return nil, &errs.LoadError{Library: name, Err: err}
	}

	return &Library{
		name: name,
		dll:  &windows.DLL{Name: name, Handle: h},
	}, nil
}

// Name is the name the library was opened with.
func (l *Library) Name() string {
	return l.name
}

// Resolve returns the address of an export. Lookups are cached and safe for
// concurrent use.
func (l *Library) Resolve(export string) (uintptr, error) {
	p, err := l.proc(export)
	if err != nil {
		return 0, err
	}
	return p.Addr(), nil
}

func (l *Library) proc(export string) (*windows.Proc, error) {
	if p, ok := l.procs.Load(export); ok {
		//nolint:forcetypeassert // Only *windows.Proc are stored.
		return p.(*windows.Proc), nil
	}

	p, err := l.dll.FindProc(export)
	if err != nil {
		return nil, &errs.SymbolError{Library: l.name, Symbol: export, Err: err}
	}

	actual, _ := l.procs.LoadOrStore(export, p)
	//nolint:forcetypeassert // Only *windows.Proc are stored.
	return actual.(*windows.Proc), nil
}

// call invokes an export and returns its raw return value. The last error
// reported by the system is not meaningful for HRESULT-returning functions
// and is ignored.
//
// Pointer arguments must be converted to uintptr in the argument list of the
// call itself so that they stay alive until it returns.
//
//go:uintptrescapes
func (l *Library) call(export string, args ...uintptr) (uintptr, error) {
	p, err := l.proc(export)
	if err != nil {
		return 0, err
	}

	r, _, _ := p.Call(args...)
	return r, nil
}

func (l *Library) String() string {
	return fmt.Sprintf("%s (handle 0x%x)", l.name, uintptr(l.dll.Handle))
}
