// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingDirectory(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "does-not-exist"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestLoad_ReadsTrimmedValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeySemanticScholar), []byte("  abc123\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyOpenAlexEmail), []byte("dev@example.org"), 0o600))

	var log bytes.Buffer
	s, err := Load(dir, &log)
	require.NoError(t, err)
	assert.Equal(t, "abc123", s[KeySemanticScholar])
	assert.Equal(t, "dev@example.org", s[KeyOpenAlexEmail])
	assert.Empty(t, log.String())
}

func TestLoad_SkipsDotfilesAndEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty-key"), []byte("   \n"), 0o600))

	s, err := Load(dir, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestLoad_WarnsOnUnknownKey(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "semantic-scholar-apikey"), []byte("abc"), 0o600))

	var log bytes.Buffer
	s, err := Load(dir, &log)
	require.NoError(t, err)
	assert.Equal(t, "abc", s["semantic-scholar-apikey"])
	assert.Contains(t, log.String(), "unrecognized secret")
}
