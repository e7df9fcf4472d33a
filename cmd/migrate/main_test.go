package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunCreateThenValidate(t *testing.T) {
	dir := t.TempDir()
	out := &bytes.Buffer{}

	require.NoError(t, run(context.Background(), []string{"-cmd=create", "-name=add_notes_to_plants", "-dir", dir}, out))
	require.Contains(t, out.String(), "created migration:")

	matches, err := filepath.Glob(filepath.Join(dir, "*_add_notes_to_plants.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	body, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	require.Contains(t, string(body), "ALTER TABLE plants ADD COLUMN IF NOT EXISTS notes text;")

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"-cmd=validate", "-dir", dir}, out))
	require.Contains(t, out.String(), "migration validation passed")
}

func TestRunFileCommandErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.ErrorContains(t, run(ctx, []string{"-cmd=create", "-dir", dir}, &bytes.Buffer{}), "missing -name")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.sql"), []byte("SELECT 1;"), 0o644))
	require.ErrorContains(t, run(ctx, []string{"-cmd=validate", "-dir", dir}, &bytes.Buffer{}), "validation failed")

	require.Error(t, run(ctx, []string{"-no-such-flag"}, &bytes.Buffer{}))
	require.ErrorContains(t, run(ctx, []string{"-cmd=drop"}, &bytes.Buffer{}), "unknown -cmd value")
}
