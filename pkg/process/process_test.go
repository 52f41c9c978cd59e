package process

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ckerrors "github.com/provide-io/craftkit/pkg/errors"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestRunSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	dir := t.TempDir()
	script := writeScript(t, dir, "javac", `echo "compiled $1"; pwd >&2`)

	res, err := Run(context.Background(), nil, ckerrors.StageCompile, dir, script, "ForgeInstaller.java")
	require.NoError(t, err)
	assert.Equal(t, "compiled ForgeInstaller.java\n", string(res.Stdout))

	// The child runs in dir
	wantDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, string(res.Stderr), wantDir)
}

func TestRunNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	dir := t.TempDir()
	script := writeScript(t, dir, "java", "echo out; echo boom >&2; exit 3\n")

	_, err := Run(context.Background(), nil, ckerrors.StageInstaller, dir, script)
	var procErr *ckerrors.ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, ckerrors.StageInstaller, procErr.Stage)
	assert.Equal(t, 3, procErr.ExitCode)
	assert.Equal(t, "out\n", procErr.Stdout)
	assert.Equal(t, "boom\n", procErr.Stderr)
}

func TestRunMissingBinary(t *testing.T) {
	_, err := Run(context.Background(), nil, ckerrors.StageCompile, t.TempDir(), filepath.Join(t.TempDir(), "nope"))
	var procErr *ckerrors.ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, -1, procErr.ExitCode)
}
