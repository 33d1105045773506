// Package backend defines the raw entry points that a back-end to yowsl must
// expose, either by calling the native WSL libraries or by mocking them.
//
// Every method mirrors one native export: arguments are already encoded for
// the native side and the raw status is returned uninterpreted.
package backend

import (
	"unsafe"

	"github.com/ubuntu/yowsl/internal/flags"
)

// RawConfiguration holds the out-parameters of WslGetDistributionConfiguration.
// Environment and each of its EnvironmentCount elements are owned by the
// caller after a successful call and must be released with CoTaskMemFree.
type RawConfiguration struct {
	Version          uint32
	DefaultUID       uint32
	Flags            flags.WslFlags
	Environment      **byte
	EnvironmentCount uint32
}

// Backend defines what a back-end to yowsl must be able to do or mock.
type Backend interface {
	// wslapi.dll
	WslRegisterDistribution(distributionName, tarGzFilename *uint16) (uint32, error)
	WslUnregisterDistribution(distributionName *uint16) (uint32, error)
	WslGetDistributionConfiguration(distributionName *uint16, out *RawConfiguration) (uint32, error)
	WslConfigureDistribution(distributionName *uint16, defaultUID uint32, wslDistributionFlags flags.WslFlags) (uint32, error)
	WslLaunchInteractive(distributionName, command *uint16, useCurrentWorkingDirectory bool, exitCode *uint32) (uint32, error)
	WslIsDistributionRegistered(distributionName *uint16) (bool, error)

	// ole32.dll
	CoTaskMemFree(p unsafe.Pointer) error
}
