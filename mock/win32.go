package mock

// This file contains mocks for Win32 API definitions and imports.

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unsafe"

	"github.com/google/uuid"
	"github.com/ubuntu/decorate"
	"github.com/ubuntu/yowsl/internal/backend"
	"github.com/ubuntu/yowsl/internal/errs"
	"github.com/ubuntu/yowsl/internal/flags"
	"github.com/ubuntu/yowsl/internal/wide"
	"github.com/ubuntu/yowsl/mock/internal/distrostate"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9-_\.]+$`)

// WslRegisterDistribution mocks the WslRegisterDistribution call to the Win32 API.
func (b *Backend) WslRegisterDistribution(distributionName, tarGzFilename *uint16) (status uint32, err error) {
	defer decorate.OnError(&err, "WslRegisterDistribution")

	if err := b.export(managementLibrary, "WslRegisterDistribution"); err != nil {
		return 0, err
	}

	if b.WslRegisterDistributionStatus != StatusOK {
		return b.WslRegisterDistributionStatus, nil
	}

	name, ok := decodeDistroName(distributionName)
	if !ok {
		return StatusInvalidArg, nil
	}

	tarGz, err := wide.Decode(tarGzFilename)
	if err != nil {
		return StatusInvalidArg, nil
	}

	if _, err := os.Stat(tarGz); err != nil {
		return StatusFileNotFound, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, d := b.findDistro(name); d != nil {
		return StatusAlreadyExists, nil
	}

	GUID, err := uuid.NewRandom()
	if err != nil {
		return 0, fmt.Errorf("could not generate UUID: %v", err)
	}

	b.distros[fmt.Sprintf("{%s}", GUID.String())] = &distro{
		name:        name,
		version:     2,
		defaultUID:  0,
		flags:       flags.WslFlags(0xf),
		environment: slices.Clone(DefaultEnvironment),
		state:       distrostate.New(),
	}

	return StatusOK, nil
}

// WslUnregisterDistribution mocks the WslUnregisterDistribution call to the Win32 API.
func (b *Backend) WslUnregisterDistribution(distributionName *uint16) (status uint32, err error) {
	defer decorate.OnError(&err, "WslUnregisterDistribution")

	if err := b.export(managementLibrary, "WslUnregisterDistribution"); err != nil {
		return 0, err
	}

	if b.WslUnregisterDistributionStatus != StatusOK {
		return b.WslUnregisterDistributionStatus, nil
	}

	name, ok := decodeDistroName(distributionName)
	if !ok {
		return StatusInvalidArg, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	GUID, d := b.findDistro(name)
	if d == nil {
		return StatusNotFound, nil
	}

	_ = d.state.MarkUninstalled()
	delete(b.distros, GUID)

	return StatusOK, nil
}

// WslGetDistributionConfiguration mocks the WslGetDistributionConfiguration call to the Win32 API.
//
// The environment is handed out in the mocked native heap: the caller must
// release every element and then the array through CoTaskMemFree.
func (b *Backend) WslGetDistributionConfiguration(distributionName *uint16, out *backend.RawConfiguration) (status uint32, err error) {
	defer decorate.OnError(&err, "WslGetDistributionConfiguration")

	if err := b.export(managementLibrary, "WslGetDistributionConfiguration"); err != nil {
		return 0, err
	}

	if b.WslGetDistributionConfigurationStatus != StatusOK {
		return b.WslGetDistributionConfigurationStatus, nil
	}

	name, ok := decodeDistroName(distributionName)
	if !ok {
		return StatusInvalidArg, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	_, d := b.findDistro(name)
	if d == nil {
		return StatusNotFound, nil
	}

	elems := make([]*byte, 0, len(d.environment))
	for _, v := range d.environment {
		elems = append(elems, b.heap.String(v))
	}

	if b.CorruptEnvironment {
		garbage := make([]byte, wide.MaxLength+1)
		for i := range garbage {
			garbage[i] = 'x'
		}
		elems = append(elems, b.heap.Bytes(garbage))
	}

	out.Version = d.version
	out.DefaultUID = d.defaultUID
	out.Flags = d.flags
	out.Environment = b.heap.Array(elems)
	out.EnvironmentCount = uint32(len(elems))

	return StatusOK, nil
}

// WslConfigureDistribution mocks the WslConfigureDistribution call to the Win32 API.
func (b *Backend) WslConfigureDistribution(distributionName *uint16, defaultUID uint32, wslDistributionFlags flags.WslFlags) (status uint32, err error) {
	defer decorate.OnError(&err, "WslConfigureDistribution")

	if err := b.export(managementLibrary, "WslConfigureDistribution"); err != nil {
		return 0, err
	}

	if b.WslConfigureDistributionStatus != StatusOK {
		return b.WslConfigureDistributionStatus, nil
	}

	name, ok := decodeDistroName(distributionName)
	if !ok {
		return StatusInvalidArg, nil
	}

	if wslDistributionFlags&^flags.WslFlags(0xf) != 0 {
		return StatusInvalidArg, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	_, d := b.findDistro(name)
	if d == nil {
		return StatusNotFound, nil
	}

	// The WSL version marker cannot be cleared by reconfiguring.
	d.flags = wslDistributionFlags | d.flags&flags.WslFlags(0x8)
	d.defaultUID = defaultUID

	return StatusOK, nil
}

// WslLaunchInteractive mocks the WslLaunchInteractive call to the Win32 API.
//
// Supported commands are the empty command (the default shell, which exits
// immediately), "exit <code>", and a check of the working directory. Any
// other command exits with code 127, as if it were not found.
func (b *Backend) WslLaunchInteractive(distributionName, command *uint16, useCurrentWorkingDirectory bool, exitCode *uint32) (status uint32, err error) {
	defer decorate.OnError(&err, "WslLaunchInteractive")

	if err := b.export(managementLibrary, "WslLaunchInteractive"); err != nil {
		return 0, err
	}

	if b.WslLaunchInteractiveStatus != StatusOK {
		return b.WslLaunchInteractiveStatus, nil
	}

	name, ok := decodeDistroName(distributionName)
	if !ok {
		return StatusInvalidArg, nil
	}

	cmd, err := wide.Decode(command)
	if err != nil {
		return StatusInvalidArg, nil
	}

	b.mu.Lock()
	_, d := b.findDistro(name)
	if d == nil {
		b.mu.Unlock()
		return StatusNotFound, nil
	}
	b.lastLaunch = Launch{DistroName: d.name, Command: cmd, UseCWD: useCurrentWorkingDirectory}
	b.mu.Unlock()

	end, err := d.state.StartSession()
	if err != nil {
		return StatusNotFound, nil
	}
	defer end()

	*exitCode = interpret(cmd, useCurrentWorkingDirectory)
	return StatusOK, nil
}

// WslIsDistributionRegistered mocks the WslIsDistributionRegistered call to the Win32 API.
func (b *Backend) WslIsDistributionRegistered(distributionName *uint16) (registered bool, err error) {
	defer decorate.OnError(&err, "WslIsDistributionRegistered")

	if err := b.export(managementLibrary, "WslIsDistributionRegistered"); err != nil {
		return false, err
	}

	if b.WslIsDistributionRegisteredError {
		return false, Error{}
	}

	name, err := wide.Decode(distributionName)
	if err != nil {
		return false, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	_, d := b.findDistro(name)
	return d != nil, nil
}

// CoTaskMemFree mocks the CoTaskMemFree call to the Win32 API.
func (b *Backend) CoTaskMemFree(p unsafe.Pointer) (err error) {
	defer decorate.OnError(&err, "CoTaskMemFree")

	if err := b.export(releaseLibrary, "CoTaskMemFree"); err != nil {
		return err
	}

	if b.CoTaskMemFreeError {
		return Error{}
	}

	b.heap.Free(p)
	return nil
}

// export fails with a SymbolError when the export was marked as missing.
func (b *Backend) export(library, name string) error {
	if slices.Contains(b.MissingExports, name) {
		return &errs.SymbolError{Library: library, Symbol: name, Err: Error{}}
	}
	return nil
}

// findDistro looks a distro up by name. As on Windows, names are not case sensitive.
//
// Use under a mutex.
func (b *Backend) findDistro(distroName string) (GUID string, d *distro) {
	for GUID, d := range b.distros {
		if strings.EqualFold(d.name, distroName) {
			return GUID, d
		}
	}
	return "", nil
}

func decodeDistroName(p *uint16) (string, bool) {
	name, err := wide.Decode(p)
	if err != nil {
		return "", false
	}
	if !validName.MatchString(name) {
		return "", false
	}
	return name, true
}

func interpret(command string, useCWD bool) uint32 {
	switch command {
	case "":
		return 0
	case "[ `pwd` = /root ]":
		if useCWD {
			// We are wherever the caller was
			return 1
		}
		// We are home (hence /root)
		return 0
	}

	if code, ok := strings.CutPrefix(command, "exit "); ok {
		n, err := strconv.ParseUint(code, 10, 8)
		if err == nil {
			return uint32(n)
		}
	}

	return 127
}
