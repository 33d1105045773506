package yowsl

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/ubuntu/decorate"
	"github.com/ubuntu/yowsl/internal/backend"
	"github.com/ubuntu/yowsl/internal/backend/windows"
	"github.com/ubuntu/yowsl/internal/wide"
)

// API gives access to the native WSL management functions. It holds no
// state other than the loaded libraries, and is safe for concurrent use.
type API struct {
	backend backend.Backend
	log     *log.Logger
}

type options struct {
	managementLibrary string
	releaseLibrary    string
	logger            *log.Logger
}

// Option configures the API returned by New.
type Option func(*options)

// WithLibraries overrides the names of the management library (wslapi.dll by
// default) and of the library exporting CoTaskMemFree (ole32.dll by default).
// Empty names keep the default.
func WithLibraries(management, release string) Option {
	return func(o *options) {
		if management != "" {
			o.managementLibrary = management
		}
		if release != "" {
			o.releaseLibrary = release
		}
	}
}

// WithLogger sets the logger that native calls are traced to at debug level.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New loads the native libraries. It fails with a LoadError when the WSL
// management facility is not available, which is always the case outside of
// Windows.
func New(ctx context.Context, args ...Option) (api *API, err error) {
	defer decorate.OnError(&err, "could not initialize the WSL API")

	o := options{
		managementLibrary: windows.DefaultManagementLibrary,
		releaseLibrary:    windows.DefaultReleaseLibrary,
		logger:            log.New(io.Discard),
	}
	for _, f := range args {
		f(&o)
	}

	b, err := selectBackend(ctx, o)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("WSL API ready", "management", o.managementLibrary, "release", o.releaseLibrary)

	return &API{backend: b, log: o.logger}, nil
}

// status turns a native HRESULT into an error.
func (a *API) status(export string, status uint32) error {
	a.log.Debug("Native call returned", "export", export, "status", fmt.Sprintf("0x%08X", status))
	if status != 0 {
		return &StatusError{Code: status}
	}
	return nil
}

// isRegistered wraps WslIsDistributionRegistered.
func (a *API) isRegistered(name []uint16) (bool, error) {
	registered, err := a.backend.WslIsDistributionRegistered(&name[0])
	runtime.KeepAlive(name)
	if err != nil {
		return false, err
	}

	a.log.Debug("Native call returned", "export", "WslIsDistributionRegistered", "registered", registered)
	return registered, nil
}

// encodeName rejects empty names before converting them for the native side.
func encodeName(name string) ([]uint16, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return wide.Encode(name)
}
