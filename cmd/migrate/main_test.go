package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestDiscover_OrdersByFilenameAndSkipsOthers(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"002_items.sql":   "SELECT 2;",
		"001_pedidos.sql": "SELECT 1;",
		"README.md":       "notes",
	})

	got, err := discover(dir)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "001", got[0].version)
	assert.Equal(t, "002_items.sql", got[1].filename)
	assert.Len(t, got[0].checksum, 64)
	assert.NotEqual(t, got[0].checksum, got[1].checksum)
}

func TestDiscover_RejectsDuplicateVersion(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"001_a.sql": "SELECT 1;",
		"001_b.sql": "SELECT 2;",
	})
	_, err := discover(dir)
	assert.ErrorContains(t, err, "version 001")
}

func TestDiscover_RejectsUnversionedName(t *testing.T) {
	dir := writeFiles(t, map[string]string{"pedidos.sql": "SELECT 1;"})
	_, err := discover(dir)
	assert.ErrorContains(t, err, "NNN_description.sql")
}
