package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dushyant25398/Persistent-Systems/internal/infrastructure/sinks"
)

func TestGetVersion(t *testing.T) {
	v := getVersion()
	require.NotEmpty(t, v)
	if v != "dev" && !strings.HasPrefix(v, "v") {
		t.Errorf("getVersion() = %q, want 'dev' or 'vX.Y.Z'", v)
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "echoserver "))
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmd := newRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "version"})
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestSinksRegistered(t *testing.T) {
	assert.Equal(t, []string{"o3", "postgres"}, sinks.GlobalRegistry.ListRegistered())
}

func TestMigrate_RequiresPostgresURL(t *testing.T) {
	chdir(t, t.TempDir())
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"migrate"})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "archive.sinks.postgres.url")
}
