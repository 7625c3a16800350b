package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagsRequiresCommandArguments(t *testing.T) {
	_, err := parseFlags([]string{"-cmd", "create"})
	assert.Error(t, err)

	_, err = parseFlags([]string{"-cmd", "version"})
	assert.Error(t, err)

	opts, err := parseFlags([]string{"-cmd", "version", "-version", "20250301090000"})
	require.NoError(t, err)
	assert.Equal(t, "20250301090000", opts.version)
}

func TestRunCreateThenValidate(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"-cmd", "create", "-dir", dir, "-name", "add brand index"}, &out))
	assert.Contains(t, out.String(), "_add_brand_index.sql")

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"-cmd", "validate", "-dir", dir}, &out))
	assert.Equal(t, "migrations valid\n", out.String())
}

func TestRunValidateReportsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_broken.sql"), []byte("-- +goose Up\n"), 0o644))

	err := run(context.Background(), []string{"-cmd", "validate", "-dir", dir}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "goose Down")
}
