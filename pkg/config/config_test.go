package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Len(t, cfg.Sources.ForgeMaven, 2)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Sources, cfg.Sources)
}

func TestLoadPartialYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "craftkit.yaml")
	content := `
launcher_dir: /srv/craftkit
concurrency: 4
http_timeout: 30s
sources:
  forge_maven:
    - http://mirror.local/forge/
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/craftkit", cfg.LauncherDir)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []string{"http://mirror.local/forge/"}, cfg.Sources.ForgeMaven)
	// untouched sources keep their defaults
	assert.Equal(t, DefaultSources().Libraries, cfg.Sources.Libraries)
	assert.Equal(t, DefaultLauncherVersion, cfg.LauncherVersion)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concurrency: [oops"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CRAFTKIT_DIR", "/tmp/ck")
	t.Setenv("CRAFTKIT_CONCURRENCY", "3")
	t.Setenv("CRAFTKIT_HTTP_TIMEOUT", "5s")
	t.Setenv("CRAFTKIT_JAVA_ARGS", "-Xmx2G")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "/tmp/ck", cfg.LauncherDir)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "-Xmx2G", cfg.JavaArgs)

	t.Setenv("CRAFTKIT_CONCURRENCY", "many")
	assert.Error(t, Default().ApplyEnv())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Concurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LauncherDir = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Sources.ForgeMaven = nil
	assert.Error(t, cfg.Validate())
}

func TestDirs(t *testing.T) {
	cfg := &Config{LauncherDir: "/root/launcher"}
	assert.Equal(t, filepath.Join("/root/launcher", "java_installs"), cfg.JavaInstallsDir())
	assert.Equal(t, filepath.Join("/root/launcher", "instances"), cfg.InstancesDir())
	assert.Equal(t, filepath.Join("/root/launcher", "servers"), cfg.ServersDir())
}
