package main

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestCLI(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	out := execute(t, "list", "--json", "--sort", "popularity")
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &items), out)
	assert.Empty(t, items)

	out = execute(t, "carousel", "--limit", "5")
	assert.Contains(t, out, "TITLE")

	out = execute(t, "inbox", "cleanup")
	assert.Equal(t, "deleted 0 expired inbox items\n", out)
}
