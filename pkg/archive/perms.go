package archive

import (
	"os"
	"runtime"
)

// Default permission constants
const (
	FilePerms       = 0o644
	ExecutablePerms = 0o755
	DirPerms        = 0o755
)

// IsExecutable checks if permissions include execute bit for owner
func IsExecutable(perm os.FileMode) bool {
	return perm&0o100 != 0
}

// MakeExecutable adds execute bits for everyone who can read the file.
// It is a no-op on Windows.
func MakeExecutable(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	perm := info.Mode().Perm()
	// r bits shifted onto x bits
	return os.Chmod(path, perm|(perm&0o444)>>2|0o100)
}
