package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Help(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "serve")
	assert.Contains(t, out.String(), "migrate")
}

func TestRootCommand_RejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kycore.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\naddr = \"\"\n"), 0o600))

	for _, sub := range []string{"serve", "migrate"} {
		t.Run(sub, func(t *testing.T) {
			t.Setenv("KYCORE_ADDR", "")
			cmd := newRootCommand()
			cmd.SetArgs([]string{sub, "--config", path})
			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "server.addr is required")
		})
	}
}

func TestRootCommand_UnknownCommand(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"frobnicate"})
	assert.Error(t, cmd.Execute())
}
