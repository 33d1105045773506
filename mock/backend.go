// Package mock mocks the native WSL libraries, useful for tests as it allows
// parallelism, decoupling, and execution speed.
//
// Strings and out-parameters cross the mock with the same layout as with the
// real libraries, and the buffers it hands out must be released through
// CoTaskMemFree. Leaks, double frees and frees of unknown pointers are
// recorded.
package mock

import (
	"sync"

	"github.com/ubuntu/yowsl/internal/flags"
	"github.com/ubuntu/yowsl/mock/internal/distrostate"
	"github.com/ubuntu/yowsl/mock/internal/nativeheap"
)

// HRESULTs returned by the mock.
const (
	StatusOK            uint32 = 0x00000000
	StatusInvalidArg    uint32 = 0x80070057 // E_INVALIDARG
	StatusFileNotFound  uint32 = 0x80070002 // HRESULT_FROM_WIN32(ERROR_FILE_NOT_FOUND)
	StatusAlreadyExists uint32 = 0x800700B7 // HRESULT_FROM_WIN32(ERROR_ALREADY_EXISTS)
	StatusNotFound      uint32 = 0x80070490 // HRESULT_FROM_WIN32(ERROR_NOT_FOUND)
)

// Library names reported in SymbolErrors.
const (
	managementLibrary = "wslapi.dll"
	releaseLibrary    = "ole32.dll"
)

// DefaultEnvironment is the environment of freshly registered distros.
var DefaultEnvironment = []string{
	"HOSTTYPE=x86_64",
	"LANG=en_US.UTF-8",
	"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin:/usr/games:/usr/local/games",
	"TERM=xterm-256color",
}

// Backend implements the Backend interface.
type Backend struct {
	distros map[string]*distro // keyed by GUID
	heap    *nativeheap.Heap

	lastLaunch Launch

	mu sync.RWMutex

	// Status injectors. These all have the form of:
	//
	// NameOfTheFunctionStatus
	//
	// When non-zero, the relevant function returns this HRESULT instantly upon
	// being called, without side effects.
	WslRegisterDistributionStatus         uint32
	WslUnregisterDistributionStatus       uint32
	WslGetDistributionConfigurationStatus uint32
	WslConfigureDistributionStatus        uint32
	WslLaunchInteractiveStatus            uint32

	// Error injectors. Their effect is to make the relevant function return an
	// error of type mock.Error instantly upon being called.
	WslIsDistributionRegisteredError bool
	CoTaskMemFreeError               bool

	// CorruptEnvironment makes WslGetDistributionConfiguration hand out an
	// environment whose last entry has no terminator.
	CorruptEnvironment bool

	// MissingExports lists the exports that behave as if absent from their
	// library.
	MissingExports []string
}

// Launch records the arguments of an interactive launch.
type Launch struct {
	DistroName string
	Command    string
	UseCWD     bool
}

type distro struct {
	name        string
	version     uint32
	defaultUID  uint32
	flags       flags.WslFlags
	environment []string
	state       *distrostate.DistroState
}

// New constructs a new mocked back-end for WSL.
func New() *Backend {
	return &Backend{
		distros: make(map[string]*distro),
		heap:    nativeheap.New(),
	}
}

// ResetErrors sets all the injected statuses and errors back to their defaults.
func (b *Backend) ResetErrors() {
	b.WslRegisterDistributionStatus = StatusOK
	b.WslUnregisterDistributionStatus = StatusOK
	b.WslGetDistributionConfigurationStatus = StatusOK
	b.WslConfigureDistributionStatus = StatusOK
	b.WslLaunchInteractiveStatus = StatusOK
	b.WslIsDistributionRegisteredError = false
	b.CoTaskMemFreeError = false
	b.CorruptEnvironment = false
	b.MissingExports = nil
}

// FreeCalls is the number of calls to CoTaskMemFree that reached the mocked heap.
func (b *Backend) FreeCalls() int {
	return b.heap.FreeCalls()
}

// Outstanding is the number of buffers handed out and never released.
func (b *Backend) Outstanding() int {
	return b.heap.Outstanding()
}

// InvalidFrees is the number of double frees and frees of pointers the mock
// never handed out.
func (b *Backend) InvalidFrees() int {
	return b.heap.InvalidFrees()
}

// LastLaunch returns the arguments of the last successful interactive launch.
func (b *Backend) LastLaunch() Launch {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.lastLaunch
}

// Sessions returns how many interactive sessions a distro has served, and
// whether it is registered.
func (b *Backend) Sessions(distroName string) (uint, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, d := b.findDistro(distroName)
	if d == nil {
		return 0, false
	}
	return d.state.Sessions(), true
}

// SetRawFlags overrides the flags stored for a distro, bypassing any
// validation. It returns false if the distro is not registered.
func (b *Backend) SetRawFlags(distroName string, f uint32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, d := b.findDistro(distroName)
	if d == nil {
		return false
	}
	d.flags = flags.WslFlags(f)
	return true
}

// SetEnvironment overrides the default environment of a distro. It returns
// false if the distro is not registered.
func (b *Backend) SetEnvironment(distroName string, env []string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, d := b.findDistro(distroName)
	if d == nil {
		return false
	}
	d.environment = append([]string{}, env...)
	return true
}

// Error is an error triggered by the mock, and not a real problem.
type Error struct{}

func (err Error) Error() string {
	return "error triggered by mock"
}
