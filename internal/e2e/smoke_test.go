package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	stdout, stderr, err := runAPX(t, binaryPath, home, "hunter2\n",
		"credentials", "set",
		"--username", "jdoe",
		"--account", "5XX00001",
		"--password-stdin",
	)
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "credentials saved for jdoe")

	stdout, stderr, err = runAPX(t, binaryPath, home, "", "credentials", "show")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "account: 5XX00001")
	assert.NotContains(t, stdout, "hunter2")

	stdout, stderr, err = runAPX(t, binaryPath, home, "", "cookies", "show")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "no saved cookies")

	secret, err := os.ReadFile(filepath.Join(home, ".apx", "secrets", "apx", "jdoe", "password.secret"))
	require.NoError(t, err)
	assert.Equal(t, "hunter2", strings.TrimSpace(string(secret)))
}

func TestSmokeVersion(t *testing.T) {
	binaryPath := buildBinary(t)

	stdout, stderr, err := runAPX(t, binaryPath, t.TempDir(), "", "version")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.True(t, strings.HasPrefix(stdout, "apx "))
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "apx-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/apx")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build apx binary: %s", string(output))
	return binaryPath
}

func runAPX(t *testing.T, binaryPath, home, input string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home, "APX_SECRETS_BACKEND=file", "APX_LOGGER_LEVEL=error")
	cmd.Stdin = strings.NewReader(input)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
