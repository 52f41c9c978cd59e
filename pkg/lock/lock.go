// Package lock manages the marker files that flag an install as in progress.
//
// A lock that survives a run means the install it guards never finished; the
// next run sees it and redoes the work instead of trusting a half-written
// directory.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	ckerrors "github.com/provide-io/craftkit/pkg/errors"
	"github.com/provide-io/craftkit/pkg/logging"
)

// Info is what a lock file records about its writer.
type Info struct {
	Note string
	PID  int
}

// Create writes the lock at path. existed reports that a previous run left
// one behind, in which case the old lock is kept as-is.
func Create(path, note string, logger hclog.Logger) (existed bool, err error) {
	logger = logging.OrNull(logger)

	if Exists(path) {
		info, _ := Read(path)
		logger.Warn("🔁 Previously incomplete installation found, resuming", "lock", path, "pid", info.PID)
		return true, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, ckerrors.Path("mkdir", filepath.Dir(path), err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			logger.Debug("🔒 Lock created concurrently", "lock", path)
			return true, nil
		}
		return false, ckerrors.Path("create", path, err)
	}
	defer file.Close()

	pid := os.Getpid()
	if _, err := fmt.Fprintf(file, "%s\npid: %d\n", note, pid); err != nil {
		os.Remove(path)
		return false, ckerrors.Path("write", path, err)
	}

	logger.Debug("🔒 Acquired install lock", "lock", path, "pid", pid)
	return false, nil
}

// Exists reports whether a lock file is present.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Read parses a lock file. A lock without a parsable pid line yields PID 0.
func Read(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, ckerrors.Path("read", path, err)
	}

	var info Info
	var note []string
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if rest, ok := strings.CutPrefix(line, "pid: "); ok {
			if pid, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil {
				info.PID = pid
				continue
			}
		}
		note = append(note, line)
	}
	info.Note = strings.Join(note, "\n")
	return info, nil
}

// Remove deletes the lock. A missing lock is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return ckerrors.Path("remove", path, err)
	}
	return nil
}
