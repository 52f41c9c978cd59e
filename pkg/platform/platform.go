// Package platform describes the operating system and CPU a runtime is provisioned for.
package platform

import "runtime"

// GOOS / GOARCH values the provisioner knows about.
const (
	Linux   = "linux"
	Darwin  = "darwin"
	Windows = "windows"

	AMD64 = "amd64"
	I386  = "386"
	ARM64 = "arm64"
	ARM   = "arm"
)

// Platform is an (OS, architecture) pair using Go's GOOS/GOARCH names.
type Platform struct {
	OS   string
	Arch string
}

// Current returns the platform this binary was built for.
func Current() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

func (p Platform) IsWindows() bool { return p.OS == Windows }

// ClasspathSeparator is the path-list separator the JVM expects on this platform.
func (p Platform) ClasspathSeparator() string {
	if p.IsWindows() {
		return ";"
	}
	return ":"
}

// RuleName is the OS name used by library `rules` in version descriptors.
func (p Platform) RuleName() string {
	switch p.OS {
	case Darwin:
		return "osx"
	default:
		return p.OS
	}
}
