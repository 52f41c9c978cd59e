package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "craftkit"

// DefaultLauncherDir returns the platform data directory for launcher state.
func DefaultLauncherDir() string {
	switch runtime.GOOS {
	case "darwin":
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Application Support", appName)
		}
	case "linux":
		if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
			return filepath.Join(xdgData, appName)
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".local", "share", appName)
		}
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}

	return filepath.Join(os.TempDir(), appName)
}

// JavaInstallsDir is where provisioned runtimes live, one directory per version.
func (c *Config) JavaInstallsDir() string {
	return filepath.Join(c.LauncherDir, "java_installs")
}

// InstancesDir holds client instances.
func (c *Config) InstancesDir() string {
	return filepath.Join(c.LauncherDir, "instances")
}

// ServersDir holds server instances.
func (c *Config) ServersDir() string {
	return filepath.Join(c.LauncherDir, "servers")
}
