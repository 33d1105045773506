// Package windows contains the production backend. It is the one used in
// production code, and makes real calls into wslapi.dll and ole32.dll.
//
// Construction always fails with a LoadError outside of Windows.
package windows

import (
	"github.com/ubuntu/decorate"
)

const (
	// DefaultManagementLibrary exports the WSL distro management functions.
	DefaultManagementLibrary = "wslapi.dll"
	// DefaultReleaseLibrary exports CoTaskMemFree.
	DefaultReleaseLibrary = "ole32.dll"
)

// Backend implements the Backend interface.
type Backend struct {
	wslapi *Library
	ole32  *Library
}

// New loads the management and the release libraries. Either both are
// available or no backend is returned.
func New(managementLibrary, releaseLibrary string) (b *Backend, err error) {
	defer decorate.OnError(&err, "could not initialize native backend")

	if managementLibrary == "" {
		managementLibrary = DefaultManagementLibrary
	}
	if releaseLibrary == "" {
		releaseLibrary = DefaultReleaseLibrary
	}

	wslapi, err := Open(managementLibrary)
	if err != nil {
		return nil, err
	}

	ole32, err := Open(releaseLibrary)
	if err != nil {
		return nil, err
	}

	return &Backend{wslapi: wslapi, ole32: ole32}, nil
}

// Libraries returns the names of the loaded management and release libraries.
func (b *Backend) Libraries() (management, release string) {
	return b.wslapi.Name(), b.ole32.Name()
}
