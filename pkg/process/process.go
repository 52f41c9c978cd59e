// Package process runs external tools (javac, java) and captures their output.
package process

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/hashicorp/go-hclog"

	ckerrors "github.com/provide-io/craftkit/pkg/errors"
	"github.com/provide-io/craftkit/pkg/logging"
)

// Result is the captured output of a finished child process.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Run spawns binary with args in dir and waits for it. A non-zero exit, or a
// failure to start, yields a *ProcessError tagged with stage.
func Run(ctx context.Context, logger hclog.Logger, stage, dir, binary string, args ...string) (*Result, error) {
	logger = logging.OrNull(logger)

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir
	configure(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Info("🚀 Executing command", "stage", stage, "path", binary)
	logger.Debug("🚀 Full command with args", "command", JoinArgs(cmd.Args), "dir", dir)

	err := cmd.Run()
	res := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		logger.Debug("✅ Process completed successfully", "stage", stage)
		return res, nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	logger.Error("⏹️ Process failed", "stage", stage, "code", exitCode)

	return res, &ckerrors.ProcessError{
		Stage:    stage,
		Binary:   binary,
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Err:      err,
	}
}
