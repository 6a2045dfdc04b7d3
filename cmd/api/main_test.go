package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, cfg map[string]any) string {
	t.Helper()
	body, err := json.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, body, 0o644))
	return path
}

func TestRun_BadFlags(t *testing.T) {
	assert.Equal(t, 2, run([]string{"-nope"}))
}

func TestRun_MissingConfig(t *testing.T) {
	assert.Equal(t, 1, run([]string{"-config", filepath.Join(t.TempDir(), "missing.json")}))
}

func TestRun_RequiresDatabase(t *testing.T) {
	path := writeConfig(t, map[string]any{"websites_file": "sites.txt", "max_threads": 1})
	assert.Equal(t, 1, run([]string{"-config", path}))
}

func TestRun_UnreachableRedisReturnsInsteadOfExiting(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "pdfs.db")
	path := writeConfig(t, map[string]any{
		"websites_file": "sites.txt",
		"max_threads":   1,
		"download_dir":  filepath.Join(dir, "pdfs"),
		"database":      map[string]any{"driver": "sqlite", "dsn": dbPath},
		"redis":         map[string]any{"addr": "127.0.0.1:1"},
	})

	assert.Equal(t, 1, run([]string{"-config", path}))
	assert.FileExists(t, dbPath, "store was opened before the redis failure")
}
