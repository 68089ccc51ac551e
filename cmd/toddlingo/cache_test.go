package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/toddlingo/internal/assetcache"
	"github.com/at-ishikawa/toddlingo/internal/testutil"
)

func seedCache(t *testing.T, tmpDir string) {
	t.Helper()
	store, err := assetcache.OpenSQLite(context.Background(), filepath.Join(tmpDir, "cache", "assets.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(context.Background(), assetcache.PartitionImage, assetcache.Entry{Key: "/books/7/1.png", Data: []byte("png-bytes"), ContentType: "image/png"}))
	require.NoError(t, store.Put(context.Background(), assetcache.PartitionAudio, assetcache.Entry{Key: "/books/7/1.mp3", Data: []byte("mp3"), ContentType: "audio/mpeg"}))
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { configFile = "" })

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCacheCommands(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := testutil.SetupTestConfig(t, tmpDir)
	seedCache(t, tmpDir)

	out, err := runCommand(t, "--config", cfgPath, "cache", "stats")
	require.NoError(t, err)
	assert.Equal(t, "image\t1\naudio\t1\n", out)

	outputFile := filepath.Join(tmpDir, "page.png")
	out, err = runCommand(t, "--config", cfgPath, "cache", "get", "image", "/books/7/1.png", "-o", outputFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, assetcache.ObjectScheme))
	assert.Contains(t, out, "image/png\t9 bytes")
	written, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), written)

	_, err = runCommand(t, "--config", cfgPath, "cache", "get", "image", "/books/7/1.mp3")
	assert.ErrorContains(t, err, "is not cached")

	_, err = runCommand(t, "--config", cfgPath, "cache", "get", "video", "/books/7/1.mp3")
	assert.ErrorIs(t, err, assetcache.ErrUnknownPartition)

	out, err = runCommand(t, "--config", cfgPath, "cache", "clear")
	require.NoError(t, err)
	assert.Equal(t, "asset cache cleared\n", out)

	out, err = runCommand(t, "--config", cfgPath, "cache", "clear")
	require.NoError(t, err)
	assert.Equal(t, "asset cache cleared\n", out)

	out, err = runCommand(t, "--config", cfgPath, "cache", "stats")
	require.NoError(t, err)
	assert.Equal(t, "image\t0\naudio\t0\n", out)
}

func TestNewCacheCommand(t *testing.T) {
	cmd := newCacheCommand()

	assert.Equal(t, "cache", cmd.Use)
	assert.True(t, cmd.HasSubCommands())
	get, _, err := cmd.Find([]string{"get"})
	require.NoError(t, err)
	assert.NotNil(t, get.Flags().ShorthandLookup("o"))
}

func TestPrefetchCommand_InvalidBookID(t *testing.T) {
	_, err := runCommand(t, "prefetch", "abc")
	assert.ErrorContains(t, err, "invalid book id")

	_, err = runCommand(t, "prefetch")
	assert.Error(t, err)
}

func TestTranslationsAuditCommand_Validation(t *testing.T) {
	_, err := runCommand(t, "translations", "audit", "--collection", "users")
	assert.Error(t, err)

	_, err = runCommand(t, "translations", "audit", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}
