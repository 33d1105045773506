package yowsl

// This file contains utilities to register and unregister WSL distros,
// as well as to query their registration status.

import (
	"runtime"

	"github.com/ubuntu/decorate"
	"github.com/ubuntu/yowsl/internal/wide"
)

// RegisterDistro is a wrapper around Win32's WslRegisterDistribution.
// It creates a new distro named name with the contents of the tar.gz archive
// at archivePath as its filesystem. The native facility installs the distro
// next to the running executable.
func (a *API) RegisterDistro(name, archivePath string) (err error) {
	defer decorate.OnError(&err, "could not register %q from %q", name, archivePath)

	n, err := encodeName(name)
	if err != nil {
		return err
	}

	p, err := wide.Encode(archivePath)
	if err != nil {
		return err
	}

	registered, err := a.isRegistered(n)
	if err != nil {
		return err
	}
	if registered {
		return ErrAlreadyRegistered
	}

	status, err := a.backend.WslRegisterDistribution(&n[0], &p[0])
	runtime.KeepAlive(n)
	runtime.KeepAlive(p)
	if err != nil {
		return err
	}

	return a.status("WslRegisterDistribution", status)
}

// UnregisterDistro is a wrapper around Win32's WslUnregisterDistribution.
// It removes the distro and its filesystem.
func (a *API) UnregisterDistro(name string) (err error) {
	defer decorate.OnError(&err, "could not unregister %q", name)

	n, err := encodeName(name)
	if err != nil {
		return err
	}

	registered, err := a.isRegistered(n)
	if err != nil {
		return err
	}
	if !registered {
		return ErrNotRegistered
	}

	status, err := a.backend.WslUnregisterDistribution(&n[0])
	runtime.KeepAlive(n)
	if err != nil {
		return err
	}

	return a.status("WslUnregisterDistribution", status)
}

// IsDistroRegistered is a wrapper around Win32's WslIsDistributionRegistered.
func (a *API) IsDistroRegistered(name string) (registered bool, err error) {
	defer decorate.OnError(&err, "could not determine if %q is registered", name)

	n, err := encodeName(name)
	if err != nil {
		return false, err
	}

	return a.isRegistered(n)
}
