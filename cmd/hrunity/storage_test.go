package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// executeCmd runs the root command against in-memory storage with captured
// output.
func executeCmd(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("HRUNITY_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("EMAIL_PROVIDER", "simulated")
	t.Setenv("LOG_LEVEL", "error")

	storageJSONOutput = false
	resetForce = false

	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(errBuf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err = rootCmd.Execute()

	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetIn(nil)
	rootCmd.SetArgs(nil)
	return outBuf.String(), errBuf.String(), err
}

func TestStorageTablesJSON(t *testing.T) {
	stdout, _, err := executeCmd(t, "", "storage", "tables", "--json")
	require.NoError(t, err)

	var out struct {
		Tables []string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Contains(t, out.Tables, "employees")
	require.Contains(t, out.Tables, "performance_records")
}

func TestStorageResetRequiresConfirmation(t *testing.T) {
	stdout, stderr, err := executeCmd(t, "no\n", "storage", "reset", "employees")
	require.NoError(t, err)
	require.Contains(t, stderr, "Aborted")
	require.Empty(t, stdout)

	stdout, _, err = executeCmd(t, "reset\n", "storage", "reset", "employees")
	require.NoError(t, err)
	require.Contains(t, stdout, "Reset employees")
}

func TestStorageResetForce(t *testing.T) {
	stdout, _, err := executeCmd(t, "", "storage", "reset", "--force", "--json")
	require.NoError(t, err)

	var out struct {
		Reset []string `json:"reset"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.NotEmpty(t, out.Reset)
}

func TestStorageResetUnknownTable(t *testing.T) {
	_, _, err := executeCmd(t, "", "storage", "reset", "--force", "salaries")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown table salaries")
}

func TestStorageSeed(t *testing.T) {
	stdout, _, err := executeCmd(t, "", "storage", "seed")
	require.NoError(t, err)
	require.Contains(t, stdout, "Seeded")
}

func TestEmailCheckSimulated(t *testing.T) {
	stdout, _, err := executeCmd(t, "", "email", "check")
	require.NoError(t, err)
	require.Contains(t, stdout, "provider ready")
}
