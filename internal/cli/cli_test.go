package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnmi-yang-bridge/internal/types"
)

const (
	fixturesDir      = "../../fixtures"
	fixtureModelsDir = "../../fixtures/models"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, name := range []string{"resolve", "validate", "inspect", "models", "get", "set"} {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestRootCommandStoreFlags(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"models-dir", "store", "workers", "semver-compatible", "config", "log-level"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing flag: %s", name)
	}
}

func TestModelsCommandHasSubcommands(t *testing.T) {
	cmd := newModelsCommand(&storeOptions{})
	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"add", "list", "delete", "import"}, names)
}

func TestResolveCommandFlags(t *testing.T) {
	cmd := newResolveCommand(&storeOptions{})
	for _, name := range []string{"capabilities", "capability", "report", "watch"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestSetCommandFlags(t *testing.T) {
	cmd := newSetCommand(&storeOptions{})
	for _, name := range []string{"capabilities", "capability", "data", "delete", "replace", "update", "dry-run"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

// ---------- Command execution tests ----------

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestResolveCommandWritesReport(t *testing.T) {
	report := filepath.Join(t.TempDir(), "resolution.yaml")

	out, err := runCommand(t, "resolve",
		"--models-dir", fixtureModelsDir,
		"--capabilities", filepath.Join(fixturesDir, "capabilities.yaml"),
		"--report", report,
	)
	require.NoError(t, err, out)
	assert.Contains(t, out, "resolved 5 modules")
	assert.FileExists(t, report)

	out, err = runCommand(t, "inspect", "--report", report)
	require.NoError(t, err, out)
	assert.Contains(t, out, "openconfig-extensions")
}

func TestResolveCommandMissingModelExitCode(t *testing.T) {
	models := t.TempDir()
	body, err := os.ReadFile(filepath.Join(fixtureModelsDir, "example-system.yang"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(models, "example-system.yang"), body, 0o644))

	out, err := runCommand(t, "resolve", "--models-dir", models, "--capability", "example-system")
	require.Error(t, err)
	assert.Contains(t, out, "missing: openconfig-extensions@2020-06-16")
	assert.Equal(t, 4, exitCodeForError(err))
}

func TestGetAndSetCommands(t *testing.T) {
	data := filepath.Join(t.TempDir(), "datastore.json")
	body, err := os.ReadFile(filepath.Join(fixturesDir, "datastore.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(data, body, 0o644))
	common := []string{
		"--models-dir", fixtureModelsDir,
		"--capabilities", filepath.Join(fixturesDir, "capabilities.yaml"),
		"--data", data,
	}

	out, err := runCommand(t, append([]string{"set", "--update", "/system/hostname=edge-9"}, common...)...)
	require.NoError(t, err, out)
	assert.Contains(t, out, "update\t/system")

	out, err = runCommand(t, append([]string{"get", "/system/hostname"}, common...)...)
	require.NoError(t, err, out)
	assert.Contains(t, out, `"example-system:hostname":"edge-9"`)

	_, err = runCommand(t, append([]string{"get", "--type", "state", "/system/hostname"}, common...)...)
	require.Error(t, err)
	assert.Equal(t, 5, exitCodeForError(err))
}

func TestModelsCommands(t *testing.T) {
	store := filepath.Join(t.TempDir(), "models.db")

	out, err := runCommand(t, "models", "import", fixtureModelsDir, "--store", store)
	require.NoError(t, err, out)
	assert.Contains(t, out, "imported openconfig-interfaces@3.0.0")

	out, err = runCommand(t, "models", "list", "--store", store)
	require.NoError(t, err, out)
	assert.Contains(t, out, "example-system\trevision\t2023-05-01")

	out, err = runCommand(t, "models", "delete", "example-system", "--version", "2023-05-01", "--store", store)
	require.NoError(t, err, out)

	_, err = runCommand(t, "models", "delete", "example-system", "--version", "2023-05-01", "--store", store)
	require.Error(t, err)
	assert.Equal(t, 5, exitCodeForError(err))
}

// ---------- Helper function tests ----------

func TestResolveString(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		value    string
		expected string
	}{
		{
			name:     "nil cmd with value returns value",
			cmd:      nil,
			value:    "explicit",
			expected: "explicit",
		},
		{
			name:     "nil cmd empty value returns empty",
			cmd:      nil,
			value:    "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveString(tt.cmd, tt.value, "test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveStrings(t *testing.T) {
	got := resolveStrings(nil, []string{"a", "b"}, "test_key", "test-flag")
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestResolveBoolAndInt(t *testing.T) {
	assert.True(t, resolveBool(nil, true, "test_key", "test-flag"))
	assert.Equal(t, 42, resolveInt(nil, 42, "test_key", "test-flag"))
}

func TestFlagChangedAfterSet(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	assert.False(t, flagChanged(cmd, "myflag"))
	require.NoError(t, cmd.Flags().Set("myflag", "val"))
	assert.True(t, flagChanged(cmd, "myflag"))
	assert.False(t, flagChanged(nil, "myflag"))
}

func TestParseDataType(t *testing.T) {
	tests := map[string]types.DataType{
		"":            types.DataTypeAll,
		"all":         types.DataTypeAll,
		"CONFIG":      types.DataTypeConfig,
		"state":       types.DataTypeState,
		"operational": types.DataTypeState,
	}
	for raw, want := range tests {
		got, err := parseDataType(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := parseDataType("running")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "invalid argument",
			err:      errbuilder.New().WithCode(errbuilder.CodeInvalidArgument).WithMsg("bad input"),
			expected: 2,
		},
		{
			name:     "already exists",
			err:      errbuilder.New().WithCode(errbuilder.CodeAlreadyExists).WithMsg("dup"),
			expected: 2,
		},
		{
			name:     "ambiguous model",
			err:      errbuilder.New().WithCode(errbuilder.CodeFailedPrecondition).WithMsg("ambiguous model"),
			expected: 3,
		},
		{
			name:     "resolution failure",
			err:      &types.ResolutionError{Missing: []types.Capability{{Name: "openconfig-extensions"}}},
			expected: 4,
		},
		{
			name:     "not found",
			err:      errbuilder.New().WithCode(errbuilder.CodeNotFound).WithMsg("no data"),
			expected: 5,
		},
		{
			name:     "internal error",
			err:      errbuilder.New().WithCode(errbuilder.CodeInternal).WithMsg("boom"),
			expected: 5,
		},
		{
			name:     "unknown error",
			err:      assert.AnError,
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, exitCodeForError(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := errbuilder.New().WithCode(errbuilder.CodeInternal).WithMsg("something broke")
	assert.Equal(t, "something broke", errorMessage(err))
	assert.Equal(t, assert.AnError.Error(), errorMessage(assert.AnError))
}
