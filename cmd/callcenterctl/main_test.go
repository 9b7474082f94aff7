package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/persistence"
)

func TestCommandTree(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "status"},
		{"user", "create"},
		{"notifications", "purge"},
	} {
		cmd, rest, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Empty(t, rest)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestUserCreateRequiresFlags(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"user", "create", "--name", "Sam"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestPrintStatuses(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, printStatuses(cmd, []persistence.MigrationStatus{
		{Version: 1, File: "00001_init.sql", Applied: true},
		{Version: 2, File: "00002_calls.sql"},
	}))

	lines := out.String()
	assert.Contains(t, lines, "VERSION")
	assert.Regexp(t, `1\s+00001_init.sql\s+applied`, lines)
	assert.Regexp(t, `2\s+00002_calls.sql\s+pending`, lines)
}
