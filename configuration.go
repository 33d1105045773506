package yowsl

// This file contains utilities to read and change the configuration of
// WSL distros, and to store it as TOML.

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"unsafe"

	"github.com/BurntSushi/toml"
	"github.com/ubuntu/decorate"
	"github.com/ubuntu/yowsl/internal/backend"
	"github.com/ubuntu/yowsl/internal/flags"
	"github.com/ubuntu/yowsl/internal/wide"
)

// DistroFlags are the behaviours of a distro that can be toggled.
type DistroFlags = flags.Capabilities

// Configuration is the configuration of the distro.
type Configuration struct {
	Name                        string      // Name of the distro
	Version                     uint32      // Version reported by WSL, passed through as is
	DefaultUID                  uint32      // User ID of default user
	Flags                       DistroFlags // Interop, path appending and drive mounting
	DefaultEnvironmentVariables []string    // KEY=value pairs passed to the distro by default
}

// DistroConfiguration is a wrapper around Win32's WslGetDistributionConfiguration.
// The environment handed back by the native side is released before returning,
// whether decoding succeeded or not.
func (a *API) DistroConfiguration(name string) (c Configuration, err error) {
	defer decorate.OnError(&err, "could not get configuration of %q", name)

	n, err := encodeName(name)
	if err != nil {
		return Configuration{}, err
	}

	var raw backend.RawConfiguration
	status, err := a.backend.WslGetDistributionConfiguration(&n[0], &raw)
	runtime.KeepAlive(n)
	if err != nil {
		return Configuration{}, err
	}
	if err := a.status("WslGetDistributionConfiguration", status); err != nil {
		return Configuration{}, err
	}

	defer func() {
		released, freeErr := a.release(raw.Environment, raw.EnvironmentCount)
		a.log.Debug("Released native environment", "count", raw.EnvironmentCount, "released", released)
		if freeErr != nil {
			c = Configuration{}
			err = errors.Join(err, freeErr)
		}
	}()

	env, err := decodeEnvironment(raw.Environment, raw.EnvironmentCount)
	if err != nil {
		return Configuration{}, err
	}

	caps, err := flags.Unpack(raw.Flags)
	if err != nil {
		return Configuration{}, &DecodeError{What: "distro flags", Reason: err.Error()}
	}

	return Configuration{
		Name:                        name,
		Version:                     raw.Version,
		DefaultUID:                  raw.DefaultUID,
		Flags:                       caps,
		DefaultEnvironmentVariables: env,
	}, nil
}

// ConfigureDistro is a wrapper around Win32's WslConfigureDistribution.
// Note that only the following config is mutable:
//   - DefaultUID
//   - Flags
func (a *API) ConfigureDistro(c Configuration) (err error) {
	defer decorate.OnError(&err, "could not configure %q", c.Name)

	n, err := encodeName(c.Name)
	if err != nil {
		return err
	}

	f, err := c.Flags.Pack()
	if err != nil {
		return err
	}

	status, err := a.backend.WslConfigureDistribution(&n[0], c.DefaultUID, f)
	runtime.KeepAlive(n)
	if err != nil {
		return err
	}

	return a.status("WslConfigureDistribution", status)
}

// decodeEnvironment copies the native environment into Go memory.
func decodeEnvironment(array **byte, count uint32) ([]string, error) {
	if count == 0 {
		return []string{}, nil
	}
	if array == nil {
		return nil, &DecodeError{What: "environment", Reason: fmt.Sprintf("null array with %d entries", count)}
	}

	env := make([]string, 0, count)
	for i, p := range unsafe.Slice(array, count) {
		s, err := wide.DecodeNarrow(p)
		if err != nil {
			return nil, fmt.Errorf("environment variable %d: %w", i, err)
		}
		env = append(env, s)
	}

	return env, nil
}

// release frees every element of a native environment, then the array itself.
// Every free is attempted even if some fail, unless CoTaskMemFree itself is
// missing. Identical failures are reported once.
func (a *API) release(array **byte, count uint32) (released int, err error) {
	if array == nil {
		return 0, nil
	}

	var failures []error
	free := func(p unsafe.Pointer) error {
		e := a.backend.CoTaskMemFree(p)
		if e == nil {
			released++
			return nil
		}
		if !slices.ContainsFunc(failures, func(f error) bool { return f.Error() == e.Error() }) {
			failures = append(failures, e)
		}
		return e
	}

	for _, p := range unsafe.Slice(array, count) {
		var missing *SymbolError
		if e := free(unsafe.Pointer(p)); errors.As(e, &missing) {
			return released, errors.Join(failures...)
		}
	}

	_ = free(unsafe.Pointer(array))

	return released, errors.Join(failures...)
}

// tomlConfiguration is the layout of a configuration inside its TOML table.
type tomlConfiguration struct {
	Version                     uint32      `toml:"version"`
	DefaultUID                  uint32      `toml:"default_uid"`
	Flags                       DistroFlags `toml:"distro_flags"`
	DefaultEnvironmentVariables []string    `toml:"default_environment_values"`
}

// TOML renders the configuration as a TOML table named after the distro.
func (c Configuration) TOML() ([]byte, error) {
	env := c.DefaultEnvironmentVariables
	if env == nil {
		env = []string{}
	}

	doc := map[string]tomlConfiguration{
		c.Name: {
			Version:                     c.Version,
			DefaultUID:                  c.DefaultUID,
			Flags:                       c.Flags,
			DefaultEnvironmentVariables: env,
		},
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (c Configuration) String() string {
	out, err := c.TOML()
	if err != nil {
		return fmt.Sprintf("# %v\n", err)
	}
	return string(out)
}

// ParseConfiguration reads a configuration rendered by TOML. The
// document must hold exactly one table, named after the distro.
func ParseConfiguration(data []byte) (c Configuration, err error) {
	defer decorate.OnError(&err, "could not parse configuration")

	var doc map[string]tomlConfiguration
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return Configuration{}, err
	}

	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return Configuration{}, fmt.Errorf("unknown keys: %v", undecoded)
	}

	if len(doc) != 1 {
		return Configuration{}, fmt.Errorf("expected exactly one distro, found %d", len(doc))
	}

	for name, t := range doc {
		if name == "" {
			return Configuration{}, ErrEmptyName
		}
		env := t.DefaultEnvironmentVariables
		if env == nil {
			env = []string{}
		}
		c = Configuration{
			Name:                        name,
			Version:                     t.Version,
			DefaultUID:                  t.DefaultUID,
			Flags:                       t.Flags,
			DefaultEnvironmentVariables: env,
		}
	}

	return c, nil
}

// ParseDistroFlags reads exactly three binary digits, most significant first:
// drive mounting, path appending, interop. "101" enables interop and drive
// mounting.
func ParseDistroFlags(s string) (DistroFlags, error) {
	return flags.ParseBinary(s)
}
