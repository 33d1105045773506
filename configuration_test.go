package yowsl_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	wsl "github.com/ubuntu/yowsl"
	"github.com/ubuntu/yowsl/mock"
)

func TestDistroConfiguration(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		notRegistered      bool
		emptyName          bool
		environment        []string
		rawFlags           uint32
		corruptEnvironment bool
		injectStatus       uint32
		missingExport      bool

		wantEnv    []string
		wantFlags  wsl.DistroFlags
		wantFrees  int
		wantDecode bool
		wantStatus uint32
		wantSymbol string
		wantErrIs  error
	}{
		"Success": {
			wantEnv:   mock.DefaultEnvironment,
			wantFlags: wsl.DistroFlags{InteropEnabled: true, PathAppended: true, DriveMountingEnabled: true, UndocumentedWSLVersion: 2},
			wantFrees: len(mock.DefaultEnvironment) + 1,
		},
		"Success with an empty environment": {
			environment: []string{},
			wantEnv:     []string{},
			wantFlags:   wsl.DistroFlags{InteropEnabled: true, PathAppended: true, DriveMountingEnabled: true, UndocumentedWSLVersion: 2},
			wantFrees:   0,
		},
		"Success with a WSL1 distro and some flags off": {
			rawFlags:  0x5,
			wantEnv:   mock.DefaultEnvironment,
			wantFlags: wsl.DistroFlags{InteropEnabled: true, DriveMountingEnabled: true, UndocumentedWSLVersion: 1},
			wantFrees: len(mock.DefaultEnvironment) + 1,
		},
		"Success replacing invalid UTF-8 in the environment": {
			environment: []string{"GREETING=caf\xe9", "LANG=C"},
			wantEnv:     []string{"GREETING=caf\uFFFD", "LANG=C"},
			wantFlags:   wsl.DistroFlags{InteropEnabled: true, PathAppended: true, DriveMountingEnabled: true, UndocumentedWSLVersion: 2},
			wantFrees:   3,
		},

		"Error when the distro name is empty":         {emptyName: true, wantErrIs: wsl.ErrEmptyName},
		"Error when the distro is not registered":     {notRegistered: true, wantStatus: mock.StatusNotFound},
		"Error when the flags contain an unknown bit": {rawFlags: 0x15, wantDecode: true, wantFrees: len(mock.DefaultEnvironment) + 1},
		"Error when an environment variable has no terminator": {
			corruptEnvironment: true,
			wantDecode:         true,
			wantFrees:          len(mock.DefaultEnvironment) + 2,
		},

		// Mock-induced errors
		"Error when the configuration call fails": {injectStatus: 0x80004005, wantStatus: 0x80004005},
		"Error when WslGetDistributionConfiguration is not exported": {
			missingExport: true,
			wantSymbol:    "WslGetDistributionConfiguration",
		},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			api, m := setupBackend(t)

			distroName := uniqueDistroName(t)
			if !tc.notRegistered {
				distroName = newTestDistro(t, api)
			}
			if tc.emptyName {
				distroName = ""
			}
			if tc.environment != nil {
				require.True(t, m.SetEnvironment(distroName, tc.environment), "Setup: could not set the environment")
			}
			if tc.rawFlags != 0 {
				require.True(t, m.SetRawFlags(distroName, tc.rawFlags), "Setup: could not set the flags")
			}

			m.CorruptEnvironment = tc.corruptEnvironment
			m.WslGetDistributionConfigurationStatus = tc.injectStatus
			if tc.missingExport {
				m.MissingExports = []string{"WslGetDistributionConfiguration"}
			}

			freesBefore := m.FreeCalls()
			got, err := api.DistroConfiguration(distroName)
			m.ResetErrors()

			require.Equal(t, tc.wantFrees, m.FreeCalls()-freesBefore, "Every native buffer should be released exactly once")
			require.Zero(t, m.Outstanding(), "No native buffer should be left behind")
			require.Zero(t, m.InvalidFrees(), "No native buffer should be released twice")

			switch {
			case tc.wantDecode:
				var target *wsl.DecodeError
				require.True(t, errors.As(err, &target), "Expected a DecodeError, got %v", err)
				require.Equal(t, wsl.Configuration{}, got, "No configuration should be returned on error")
				return
			case tc.wantStatus != 0 || tc.wantSymbol != "" || tc.wantErrIs != nil:
				requireErrorKind(t, err, false, tc.wantErrIs, tc.wantStatus, tc.wantSymbol, false)
				return
			}

			require.NoError(t, err, "DistroConfiguration should not have failed")
			require.Equal(t, distroName, got.Name, "Unexpected name")
			require.Equal(t, uint32(2), got.Version, "Unexpected version")
			require.Equal(t, uint32(0), got.DefaultUID, "Unexpected default UID")
			require.Equal(t, tc.wantFlags, got.Flags, "Unexpected flags")
			require.Equal(t, tc.wantEnv, got.DefaultEnvironmentVariables, "Unexpected environment")
		})
	}
}

func TestDistroConfigurationReleaseFailure(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		freeError     bool
		missingExport bool

		wantReported string
	}{
		"Error when CoTaskMemFree fails":           {freeError: true, wantReported: "error triggered by mock"},
		"Error when CoTaskMemFree is not exported": {missingExport: true, wantReported: "does not export CoTaskMemFree"},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			api, m := setupUntrackedBackend(t)
			distroName := newTestDistro(t, api)

			m.CoTaskMemFreeError = tc.freeError
			if tc.missingExport {
				m.MissingExports = []string{"CoTaskMemFree"}
			}

			got, err := api.DistroConfiguration(distroName)
			m.ResetErrors()

			require.Error(t, err, "A failure to release native buffers should be reported")
			require.Equal(t, 1, strings.Count(err.Error(), tc.wantReported), "The release failure should be reported exactly once: %v", err)
			require.Equal(t, wsl.Configuration{}, got, "No configuration should be returned on error")
			require.Equal(t, len(mock.DefaultEnvironment)+1, m.Outstanding(), "Setup: buffers should have been leaked")
		})
	}
}

func TestConfigureDistro(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		notRegistered bool
		emptyName     bool
		uid           uint32
		flags         wsl.DistroFlags
		injectStatus  uint32
		missingExport bool

		wantFlags  wsl.DistroFlags
		wantStatus uint32
		wantSymbol string
		wantErrIs  error
		wantErr    bool
	}{
		"Success setting the default user and some flags": {
			uid:       1000,
			flags:     wsl.DistroFlags{InteropEnabled: true, DriveMountingEnabled: true},
			wantFlags: wsl.DistroFlags{InteropEnabled: true, DriveMountingEnabled: true, UndocumentedWSLVersion: 2},
		},
		"Success turning every flag off": {
			flags:     wsl.DistroFlags{},
			wantFlags: wsl.DistroFlags{UndocumentedWSLVersion: 2},
		},
		"Success keeping the WSL version": {
			uid:       42,
			flags:     wsl.DistroFlags{PathAppended: true, UndocumentedWSLVersion: 2},
			wantFlags: wsl.DistroFlags{PathAppended: true, UndocumentedWSLVersion: 2},
		},

		"Error when the distro name is empty":     {emptyName: true, wantErrIs: wsl.ErrEmptyName},
		"Error when the distro is not registered": {notRegistered: true, wantStatus: mock.StatusNotFound},
		"Error when the WSL version is not valid": {flags: wsl.DistroFlags{UndocumentedWSLVersion: 3}, wantErr: true},

		// Mock-induced errors
		"Error when the configure call fails":                 {injectStatus: 0x80004005, wantStatus: 0x80004005},
		"Error when WslConfigureDistribution is not exported": {missingExport: true, wantSymbol: "WslConfigureDistribution"},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			api, m := setupBackend(t)

			distroName := uniqueDistroName(t)
			if !tc.notRegistered {
				distroName = newTestDistro(t, api)
			}
			if tc.emptyName {
				distroName = ""
			}

			m.WslConfigureDistributionStatus = tc.injectStatus
			if tc.missingExport {
				m.MissingExports = []string{"WslConfigureDistribution"}
			}

			err := api.ConfigureDistro(wsl.Configuration{Name: distroName, DefaultUID: tc.uid, Flags: tc.flags})
			m.ResetErrors()

			requireErrorKind(t, err, tc.wantErr, tc.wantErrIs, tc.wantStatus, tc.wantSymbol, false)
			if err != nil {
				return
			}

			got, err := api.DistroConfiguration(distroName)
			require.NoError(t, err, "DistroConfiguration should not fail after a successful configuration")
			require.Equal(t, tc.uid, got.DefaultUID, "Default UID should have been updated")
			require.Equal(t, tc.wantFlags, got.Flags, "Flags should have been updated")
		})
	}
}

func TestConfigurationTOML(t *testing.T) {
	t.Parallel()

	c := wsl.Configuration{
		Name:                        "Ubuntu-22.04",
		Version:                     2,
		DefaultUID:                  1000,
		Flags:                       wsl.DistroFlags{InteropEnabled: true, DriveMountingEnabled: true, UndocumentedWSLVersion: 2},
		DefaultEnvironmentVariables: []string{"HOSTTYPE=x86_64", "LANG=en_US.UTF-8"},
	}

	want := `["Ubuntu-22.04"]
version = 2
default_uid = 1000
distro_flags = 0b101
default_environment_values = ["HOSTTYPE=x86_64", "LANG=en_US.UTF-8"]
`
	require.Equal(t, want, c.String(), "Unexpected rendering of the configuration")

	got, err := wsl.ParseConfiguration([]byte(c.String()))
	require.NoError(t, err, "A rendered configuration should parse back")

	// The WSL version is not part of the rendered flags.
	c.Flags.UndocumentedWSLVersion = 0
	require.Equal(t, c, got, "A rendered configuration should parse back to the same values")
}

func TestParseConfiguration(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		input string

		want    wsl.Configuration
		wantErr bool
	}{
		"Success with a bare distro name": {
			input: "[Ubuntu]\nversion = 2\ndefault_uid = 0\ndistro_flags = 0b111\ndefault_environment_values = []\n",
			want: wsl.Configuration{
				Name:                        "Ubuntu",
				Version:                     2,
				Flags:                       wsl.DistroFlags{InteropEnabled: true, PathAppended: true, DriveMountingEnabled: true},
				DefaultEnvironmentVariables: []string{},
			},
		},
		"Success with missing keys": {
			input: "[Ubuntu]\ndefault_uid = 1000\n",
			want:  wsl.Configuration{Name: "Ubuntu", DefaultUID: 1000, DefaultEnvironmentVariables: []string{}},
		},

		"Error with no distro":              {input: "", wantErr: true},
		"Error with two distros":            {input: "[Ubuntu]\ndefault_uid = 0\n[Debian]\ndefault_uid = 0\n", wantErr: true},
		"Error with an unknown key":         {input: "[Ubuntu]\ndefault_user = 0\n", wantErr: true},
		"Error with flags out of range":     {input: "[Ubuntu]\ndistro_flags = 8\n", wantErr: true},
		"Error with a negative default UID": {input: "[Ubuntu]\ndefault_uid = -1\n", wantErr: true},
		"Error with an empty distro name":   {input: "[\"\"]\ndefault_uid = 0\n", wantErr: true},
		"Error with invalid TOML":           {input: "[Ubuntu\n", wantErr: true},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := wsl.ParseConfiguration([]byte(tc.input))
			if tc.wantErr {
				require.Error(t, err, "ParseConfiguration should have failed")
				return
			}
			require.NoError(t, err, "ParseConfiguration should not have failed")
			require.Equal(t, tc.want, got, "Unexpected configuration")
		})
	}
}
