//go:build !windows
// +build !windows

package download

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
)

// atomicReplace moves a finished temp file over its final name.
// On Unix, os.Rename is already atomic.
func atomicReplace(sourcePath, destPath string, logger hclog.Logger) error {
	if err := os.Rename(sourcePath, destPath); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	logger.Trace("✅ Replaced file", "dest", destPath)
	return nil
}
