package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/farmledger/internal/config"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "farmledger-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "farmledger")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/farmledger")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runFarmledger(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	_, err := runFarmledger(t, "init", dir, "--name", "Test Farm")
	require.NoError(t, err)

	for _, d := range []string{"accounts", "exports", "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runFarmledger(t, "init", dir, "--name", "Prairie Acres")
	require.NoError(t, err)

	cfg, err := config.LoadRepo(dir)
	require.NoError(t, err)
	assert.Equal(t, "Prairie Acres", cfg.Farm.Name)
	assert.Equal(t, "xlsx", cfg.Output.Format)
	assert.Equal(t, "0.01", cfg.Validation.Epsilon)
}

func TestInit_Gitignore(t *testing.T) {
	dir := t.TempDir()
	_, err := runFarmledger(t, "init", dir, "--name", "Test Farm")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "~$*", "spreadsheet lock files are ignored")
}

func TestInit_Git(t *testing.T) {
	dir := t.TempDir()
	_, err := runFarmledger(t, "init", dir, "--name", "Test Farm", "--git")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runFarmledger(t, "init", t.TempDir())
	require.Error(t, err, "init without --name should fail")
}

func TestInit_RefusesExistingRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := runFarmledger(t, "init", dir, "--name", "Test Farm")
	require.NoError(t, err)

	out, err := runFarmledger(t, "init", dir, "--name", "Other Farm")
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}
