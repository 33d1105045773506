package yowsl

// This file contains utilities to launch commands into WSL distros.

import (
	"math"
	"runtime"

	"github.com/ubuntu/decorate"
	"github.com/ubuntu/yowsl/internal/wide"
)

// Launch is a wrapper around Win32's WslLaunchInteractive. It runs command
// in the distro, attached to the current console, and blocks until it exits.
// An empty command starts the default shell. With useCWD, the command starts
// in the current working directory instead of the user's home.
//
// The exit code is only meaningful when err is nil.
func (a *API) Launch(name, command string, useCWD bool) (exitCode uint32, err error) {
	defer decorate.OnError(&err, "could not launch %q in %q", command, name)

	n, err := encodeName(name)
	if err != nil {
		return math.MaxUint32, err
	}

	c, err := wide.Encode(command)
	if err != nil {
		return math.MaxUint32, err
	}

	var code uint32
	status, err := a.backend.WslLaunchInteractive(&n[0], &c[0], useCWD, &code)
	runtime.KeepAlive(n)
	runtime.KeepAlive(c)
	if err != nil {
		return math.MaxUint32, err
	}

	if err := a.status("WslLaunchInteractive", status); err != nil {
		return math.MaxUint32, err
	}

	a.log.Debug("Session ended", "distro", name, "exitCode", code)
	return code, nil
}
