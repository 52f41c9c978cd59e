// Package java provisions Java runtimes into the launcher directory and
// resolves the path of a runtime binary such as java or javac.
package java

import (
	"fmt"
	"strings"

	"github.com/provide-io/craftkit/pkg/platform"
)

// Version is a Java major version the game needs.
type Version int

const (
	Java8  Version = 8
	Java16 Version = 16
	Java17 Version = 17
	Java21 Version = 21
)

// Versions lists every supported version, oldest first.
var Versions = []Version{Java8, Java16, Java17, Java21}

// ParseVersion accepts "17", "java_17" or "java17".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "java"), "_")
	for _, v := range Versions {
		if s == fmt.Sprint(int(v)) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unsupported java version %q", s)
}

// String is the install directory name, e.g. java_17.
func (v Version) String() string {
	return fmt.Sprintf("java_%d", int(v))
}

// Component is the Mojang runtime component serving this version.
func (v Version) Component() string {
	switch v {
	case Java8:
		return "jre-legacy"
	case Java16:
		return "java-runtime-alpha"
	case Java17:
		return "java-runtime-gamma"
	case Java21:
		return "java-runtime-delta"
	default:
		return ""
	}
}

// Remap swaps versions that cannot run on p for the nearest one that can.
// It is defined for every input.
func Remap(v Version, p platform.Platform) Version {
	switch {
	case p.OS == platform.Windows && p.Arch == platform.ARM64:
		// 17 runs most 8 and 16 era versions; some old loaders may break
		if v == Java8 || v == Java16 {
			return Java17
		}
	case p.OS == platform.Darwin && p.Arch == platform.ARM64:
		if v == Java16 {
			return Java17
		}
	}
	return v
}

// JavaExecutable is the launcher binary name: javaw on Windows, java elsewhere.
func JavaExecutable(p platform.Platform) string {
	if p.IsWindows() {
		return "javaw"
	}
	return "java"
}
