package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 25, cfg.Engine.HashMb)
	assert.Equal(t, 25, cfg.Engine.OverheadMs)
	assert.Equal(t, 1, cfg.Engine.Threads)
	assert.False(t, cfg.Book.Enabled)
	assert.False(t, cfg.Experience.Enabled)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "galumph.toml")
	content := `
[engine]
hash_mb = 256
overhead_ms = 50
eval_file = "nets/big.gnet"

[book]
enabled = true
path = "books/main.bin"

[experience]
enabled = true
dir = "exp"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 256, cfg.Engine.HashMb)
	assert.Equal(t, 50, cfg.Engine.OverheadMs)
	assert.Equal(t, "nets/big.gnet", cfg.Engine.EvalFile)
	assert.Equal(t, 1, cfg.Engine.Threads, "unset field keeps its default")
	assert.True(t, cfg.Book.Enabled)
	assert.Equal(t, "books/main.bin", cfg.Book.Path)
	assert.True(t, cfg.Experience.Enabled)
	assert.Equal(t, "exp", cfg.Experience.Dir)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "galumph.toml")
	require.NoError(t, os.WriteFile(path, []byte("[engine\nhash"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
