// Package errors defines the error kinds shared by every provisioning component.
//
// Sentinels are matched with errors.Is; typed errors carry the failing path,
// URL, payload or subprocess output and always unwrap to their cause.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Transport errors 🌐
	ErrNotFound         = errors.New("❌ not found")
	ErrMirrorsExhausted = errors.New("❌ every download mirror failed")
	ErrChecksumMismatch = errors.New("❌ checksum mismatch")

	// Resolution errors 🔎
	ErrNoLoaderVersion     = errors.New("❌ no loader version found")
	ErrNoInstallDescriptor = errors.New("❌ installer contains no version descriptor")
	ErrDescriptorSchema    = errors.New("❌ descriptor matches no known schema")
	ErrInvalidLibraryName  = errors.New("❌ invalid library name")

	// Platform errors 💻
	ErrUnsupportedPlatform = errors.New("❌ unsupported platform")
	ErrOnlyJava8           = errors.New("❌ only Java 8 (Minecraft 1.16.5 and below) is supported on this platform")
	ErrNoJavaBinary        = errors.New("❌ no java binary found")

	// Archive errors 📦
	ErrUnknownArchive = errors.New("❌ unknown archive extension")
)

// Re-exported so callers only need one errors import.
var (
	Is     = errors.Is
	As     = errors.As
	New    = errors.New
	Join   = errors.Join
	Unwrap = errors.Unwrap
)

// IOError is a file-system failure tagged with the path it happened on.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Path wraps err as an *IOError, returning nil when err is nil.
func Path(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// JSONError is a decode failure that keeps (a prefix of) the offending document.
type JSONError struct {
	Content string
	Err     error
}

const maxJSONContent = 512

func (e *JSONError) Error() string {
	content := e.Content
	if len(content) > maxJSONContent {
		content = content[:maxJSONContent] + "…"
	}
	return fmt.Sprintf("invalid json: %v\n%s", e.Err, content)
}

func (e *JSONError) Unwrap() error { return e.Err }

// RequestError is a transport failure. A 404 response matches ErrNotFound.
type RequestError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is (or wraps) a 404 response.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Subprocess stages
const (
	StageCompile   = "compile"
	StageInstaller = "installer"
)

// ProcessError is a subprocess that exited unsuccessfully, with its captured output.
type ProcessError struct {
	Stage    string
	Binary   string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s error: %s exited with code %d\nstdout:\n%s\nstderr:\n%s",
		e.Stage, e.Binary, e.ExitCode, e.Stdout, e.Stderr)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// ArchiveError is a corrupt archive or an unreadable entry inside one.
type ArchiveError struct {
	Entry string
	Err   error
}

func (e *ArchiveError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("archive: %v", e.Err)
	}
	return fmt.Sprintf("archive entry %s: %v", e.Entry, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }
