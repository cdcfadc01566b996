package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, root, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, "ais.yml"), []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Empty(t, cfg.Connection)
	assert.True(t, cfg.Options.LoadApexPackages)
	assert.Equal(t, filepath.Join(root, ".ais"), cfg.MetadataDir())
}

func TestLoadFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
connection: db.example.com:1521/xepdb1
username: hr
options:
  public_packages:
    - owa_util
    - htp
  load_apex_packages: false
paths:
  cache_dir: metadata
  apex_cache_file: /srv/shared/apex.yaml
`)

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "db.example.com:1521/xepdb1", cfg.Connection)
	assert.Equal(t, "hr", cfg.Username)
	assert.Equal(t, []string{"owa_util", "htp"}, cfg.Options.PublicPackages)
	assert.False(t, cfg.Options.LoadApexPackages)
	assert.Equal(t, filepath.Join(root, "metadata"), cfg.MetadataDir())
	assert.Equal(t, "/srv/shared/apex.yaml", cfg.Paths.ApexCacheFile)
}

func TestLoadMalformedFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "connection: [broken")

	_, err := Load(root)
	assert.Error(t, err)
}

func TestMetadataDirAbsolute(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "paths:\n  cache_dir: /var/lib/ais\n")

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/ais", cfg.MetadataDir())
}

func TestPassword(t *testing.T) {
	t.Setenv("AIS_PASSWORD", "s3cret")
	assert.Equal(t, "s3cret", Password())

	t.Setenv("AIS_PASSWORD", "")
	assert.Equal(t, "", Password())
}

func TestSetLoadApexPackages(t *testing.T) {
	t.Run("updates an existing file", func(t *testing.T) {
		root := t.TempDir()
		writeConfig(t, root, "username: hr\noptions:\n  load_apex_packages: true\n")

		cfg, err := Load(root)
		require.NoError(t, err)
		require.NoError(t, cfg.SetLoadApexPackages(false))

		reloaded, err := Load(root)
		require.NoError(t, err)
		assert.False(t, reloaded.Options.LoadApexPackages)
		assert.Equal(t, "hr", reloaded.Username)
	})

	t.Run("creates the file when missing", func(t *testing.T) {
		root := t.TempDir()

		cfg, err := Load(root)
		require.NoError(t, err)
		require.NoError(t, cfg.SetLoadApexPackages(false))

		_, err = os.Stat(filepath.Join(root, "ais.yml"))
		require.NoError(t, err)

		reloaded, err := Load(root)
		require.NoError(t, err)
		assert.False(t, reloaded.Options.LoadApexPackages)
	})
}
