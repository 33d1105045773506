package yowsl_test

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	wsl "github.com/ubuntu/yowsl"
	"github.com/ubuntu/yowsl/mock"
)

const namePrefix string = "wsltesting"

// sanitizeDistroName sanitizes the name of the distro as much as possible.
func sanitizeDistroName(candidateName string) string {
	r := strings.NewReplacer(
		`/`, `--`,
		` `, `_`,
		`\`, `--`,
		`:`, `_`,
		`'`, ``,
		`,`, ``,
	)
	return r.Replace(candidateName)
}

// Generates a unique distro name. It does not create the distro.
func uniqueDistroName(t *testing.T) string {
	t.Helper()

	//nolint:gosec // No need to be cryptographically secure for this
	return sanitizeDistroName(fmt.Sprintf("%s_%s_%d", namePrefix, t.Name(), rand.Uint64()))
}

// setupBackend returns an API backed by a fresh mock. The mock is checked for
// leaked native buffers when the test binary exits.
func setupBackend(t *testing.T) (*wsl.API, *mock.Backend) {
	t.Helper()

	m := mock.New()

	trackedMocks.mu.Lock()
	defer trackedMocks.mu.Unlock()
	trackedMocks.list = append(trackedMocks.list, m)

	return wsl.NewWithBackend(m), m
}

// setupUntrackedBackend is setupBackend for tests that leak native buffers on purpose.
func setupUntrackedBackend(t *testing.T) (*wsl.API, *mock.Backend) {
	t.Helper()

	m := mock.New()
	return wsl.NewWithBackend(m), m
}

// rootFS creates an archive to register distros from. The mock only checks that it exists.
func rootFS(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rootfs.tar.gz")
	err := os.WriteFile(path, []byte{}, 0600)
	require.NoError(t, err, "Setup: could not create rootfs archive")

	return path
}

// newTestDistro registers a new distro with a mangled name and unregisters it on cleanup.
func newTestDistro(t *testing.T, api *wsl.API) string {
	t.Helper()

	name := uniqueDistroName(t)
	t.Logf("Setup: Registering %q\n", name)

	err := api.RegisterDistro(name, rootFS(t))
	require.NoError(t, err, "Setup: could not register %q", name)

	t.Cleanup(func() {
		if err := api.UnregisterDistro(name); err != nil {
			t.Logf("Cleanup: %v\n", err)
		}
	})

	return name
}
