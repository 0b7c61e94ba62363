package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoExtractor_Fixture(t *testing.T) {
	entries, err := extractCommands(context.Background(), filepath.Join("testdata", "layout.go"), langAuto, "cmd_")
	require.NoError(t, err)

	want := []CommandEntry{
		{Name: "resize", Parameters: []string{"width", "height"}, Description: "cmd_resize resizes the node."},
		{Name: "info", Parameters: []string{}, Description: ""},
		{Name: "swap", Parameters: []string{"a", "b"}, Description: "cmd_swap swaps two nodes.\n\nSee `swap` for details."},
	}
	assert.Equal(t, want, entries)
}

func TestGoExtractor_UnnamedParameters(t *testing.T) {
	path := writeSource(t, "unnamed.go", `package p

type T struct{}

func (T) cmd_plain(int, string) {}
`)
	entries, err := extractCommands(context.Background(), path, langGo, "cmd_")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"_", "_"}, entries[0].Parameters)
}

func TestGoExtractor_CustomPrefix(t *testing.T) {
	path := writeSource(t, "prefix.go", `package p

// Do the thing.
func CmdRun(ctx int, name string) {}

func cmd_ignored() {}
`)
	entries, err := extractCommands(context.Background(), path, langGo, "Cmd")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, CommandEntry{Name: "Run", Parameters: []string{"name"}, Description: "Do the thing."}, entries[0])
}

func TestGoExtractor_ParseError(t *testing.T) {
	path := writeSource(t, "broken.go", "package p\n\nfunc cmd_x( {\n")
	_, err := extractCommands(context.Background(), path, langGo, "cmd_")
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr), "got %v", err)
	assert.Equal(t, path, parseErr.Path)
	assert.GreaterOrEqual(t, parseErr.Line, 3)
	assert.NotEmpty(t, parseErr.Msg)
}
