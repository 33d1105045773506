package windows

// This file contains the raw adapters to the Win32 API. They translate
// between Go values and the native calling convention without interpreting
// the returned statuses.

import (
	"unsafe"

	"github.com/ubuntu/decorate"
	"github.com/ubuntu/yowsl/internal/backend"
	"github.com/ubuntu/yowsl/internal/flags"
)

// Windows' BOOL.
type wBOOL = uintptr

func toBOOL(b bool) wBOOL {
	if b {
		return 1
	}
	return 0
}

// fromBOOL reads a returned BOOL. It is 32 bits wide: the upper half of the
// register is undefined.
func fromBOOL(r uintptr) bool {
	return uint32(r) != 0
}

// WslRegisterDistribution is a wrapper around the WslRegisterDistribution
// function in the wslapi.dll Win32 library.
func (b *Backend) WslRegisterDistribution(distributionName, tarGzFilename *uint16) (status uint32, err error) {
	defer decorate.OnError(&err, "WslRegisterDistribution")

	r, err := b.wslapi.call("WslRegisterDistribution",
		uintptr(unsafe.Pointer(distributionName)),
		uintptr(unsafe.Pointer(tarGzFilename)))
	if err != nil {
		return 0, err
	}

	return uint32(r), nil
}

// WslUnregisterDistribution is a wrapper around the WslUnregisterDistribution
// function in the wslapi.dll Win32 library.
func (b *Backend) WslUnregisterDistribution(distributionName *uint16) (status uint32, err error) {
	defer decorate.OnError(&err, "WslUnregisterDistribution")

	r, err := b.wslapi.call("WslUnregisterDistribution", uintptr(unsafe.Pointer(distributionName)))
	if err != nil {
		return 0, err
	}

	return uint32(r), nil
}

// WslGetDistributionConfiguration is a wrapper around the WslGetDistributionConfiguration
// function in the wslapi.dll Win32 library.
//
// On success, the environment array and its elements belong to the caller.
func (b *Backend) WslGetDistributionConfiguration(distributionName *uint16, out *backend.RawConfiguration) (status uint32, err error) {
	defer decorate.OnError(&err, "WslGetDistributionConfiguration")

	r, err := b.wslapi.call("WslGetDistributionConfiguration",
		uintptr(unsafe.Pointer(distributionName)),
		uintptr(unsafe.Pointer(&out.Version)),
		uintptr(unsafe.Pointer(&out.DefaultUID)),
		uintptr(unsafe.Pointer(&out.Flags)),
		uintptr(unsafe.Pointer(&out.Environment)),
		uintptr(unsafe.Pointer(&out.EnvironmentCount)))
	if err != nil {
		return 0, err
	}

	return uint32(r), nil
}

// WslConfigureDistribution is a wrapper around the WslConfigureDistribution
// function in the wslapi.dll Win32 library.
func (b *Backend) WslConfigureDistribution(distributionName *uint16, defaultUID uint32, wslDistributionFlags flags.WslFlags) (status uint32, err error) {
	defer decorate.OnError(&err, "WslConfigureDistribution")

	r, err := b.wslapi.call("WslConfigureDistribution",
		uintptr(unsafe.Pointer(distributionName)),
		uintptr(defaultUID),
		uintptr(wslDistributionFlags))
	if err != nil {
		return 0, err
	}

	return uint32(r), nil
}

// WslLaunchInteractive is a wrapper around the WslLaunchInteractive
// function in the wslapi.dll Win32 library.
func (b *Backend) WslLaunchInteractive(distributionName, command *uint16, useCurrentWorkingDirectory bool, exitCode *uint32) (status uint32, err error) {
	defer decorate.OnError(&err, "WslLaunchInteractive")

	r, err := b.wslapi.call("WslLaunchInteractive",
		uintptr(unsafe.Pointer(distributionName)),
		uintptr(unsafe.Pointer(command)),
		toBOOL(useCurrentWorkingDirectory),
		uintptr(unsafe.Pointer(exitCode)))
	if err != nil {
		return 0, err
	}

	return uint32(r), nil
}

// WslIsDistributionRegistered is a wrapper around the WslIsDistributionRegistered
// function in the wslapi.dll Win32 library.
func (b *Backend) WslIsDistributionRegistered(distributionName *uint16) (registered bool, err error) {
	defer decorate.OnError(&err, "WslIsDistributionRegistered")

	r, err := b.wslapi.call("WslIsDistributionRegistered", uintptr(unsafe.Pointer(distributionName)))
	if err != nil {
		return false, err
	}

	return fromBOOL(r), nil
}

// CoTaskMemFree is a wrapper around the CoTaskMemFree function in the
// ole32.dll Win32 library. Freeing a nil pointer is a no-op.
func (b *Backend) CoTaskMemFree(p unsafe.Pointer) (err error) {
	defer decorate.OnError(&err, "CoTaskMemFree")

	_, err = b.ole32.call("CoTaskMemFree", uintptr(p))
	return err
}
