// Package fabric builds the launcher jar that starts a Fabric server with
// `java -jar`.
package fabric

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/flate"

	"github.com/provide-io/craftkit/pkg/archive"
	ckerrors "github.com/provide-io/craftkit/pkg/errors"
	"github.com/provide-io/craftkit/pkg/logging"
)

const (
	ManifestPath         = "META-INF/MANIFEST.MF"
	LaunchPropertiesPath = "fabric-server-launch.properties"
	ServerLauncherClass  = "net.fabricmc.loader.impl.launch.server.FabricServerLauncher"

	servicesDir = "META-INF/services/"
)

var signatureFile = regexp.MustCompile(`^META-INF/[^/]+\.(SF|DSA|RSA|EC)$`)

// MakeLaunchJar writes out, a jar whose manifest starts the Fabric server
// launcher, which in turn starts launchMainClass.
//
// Without shade the libraries are referenced from the manifest Class-Path by
// file name, so the jar must sit next to them. With shade every library is
// merged into the jar: the first copy of a file wins, signatures are dropped
// and service provider files are merged.
func MakeLaunchJar(out, launchMainClass string, libs []string, shade bool, logger hclog.Logger) error {
	logger = logging.OrNull(logger).Named("fabric")
	logger.Info("🫙 Building launch jar", "output", out, "libraries", len(libs), "shade", shade)

	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		return ckerrors.Path("remove", out, err)
	}
	f, err := os.Create(out)
	if err != nil {
		return ckerrors.Path("create", out, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	jar := newJarWriter(bw)

	manifest := NewManifestBuilder()
	if !shade {
		names := make([]string, 0, len(libs))
		for _, lib := range libs {
			names = append(names, classPathName(lib))
		}
		manifest.Add("Class-Path: " + strings.Join(names, " "))
	}
	manifest.Add("Main-Class: " + ServerLauncherClass)

	if err := jar.add(ManifestPath, strings.NewReader(manifest.String())); err != nil {
		return err
	}
	props := fmt.Sprintf("launch.mainClass=%s\n", launchMainClass)
	if err := jar.add(LaunchPropertiesPath, strings.NewReader(props)); err != nil {
		return err
	}

	if shade {
		services := make(map[string]map[string]bool)
		for n, lib := range libs {
			logger.Info("🫙 Shading library", "num", n+1, "total", len(libs), "library", lib)
			if err := shadeLibrary(jar, lib, services); err != nil {
				return err
			}
		}
		if err := writeServices(jar, services); err != nil {
			return err
		}
	}

	if err := jar.zw.Close(); err != nil {
		return ckerrors.Path("write", out, err)
	}
	if err := bw.Flush(); err != nil {
		return ckerrors.Path("write", out, err)
	}
	if err := f.Close(); err != nil {
		return ckerrors.Path("close", out, err)
	}

	logger.Info("✅ Launch jar written", "output", out, "entries", len(jar.seen))
	return nil
}

// classPathName is lib relative to its own directory, with forward slashes.
func classPathName(lib string) string {
	return filepath.ToSlash(filepath.Base(lib))
}

// jarWriter writes each entry name once.
type jarWriter struct {
	zw   *zip.Writer
	seen map[string]bool
}

func newJarWriter(w io.Writer) *jarWriter {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	return &jarWriter{zw: zw, seen: make(map[string]bool)}
}

// add writes an entry unless one with the same name exists.
func (j *jarWriter) add(name string, r io.Reader) error {
	if j.seen[name] {
		return nil
	}
	j.seen[name] = true

	h := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: archive.FixedTime}
	h.SetMode(archive.FilePerms)
	w, err := j.zw.CreateHeader(h)
	if err != nil {
		return &ckerrors.ArchiveError{Entry: name, Err: err}
	}
	if _, err := io.Copy(w, r); err != nil {
		return &ckerrors.ArchiveError{Entry: name, Err: err}
	}
	return nil
}

func shadeLibrary(jar *jarWriter, lib string, services map[string]map[string]bool) error {
	zr, err := zip.OpenReader(lib)
	if err != nil {
		return &ckerrors.ArchiveError{Entry: lib, Err: err}
	}
	defer zr.Close()

	for _, f := range zr.File {
		name := f.Name
		switch {
		case f.FileInfo().IsDir() || strings.HasSuffix(name, "/"):
			continue
		case isServiceFile(name):
			data, err := readEntry(f)
			if err != nil {
				return err
			}
			mergeServices(services, name, string(data))
		case signatureFile.MatchString(name):
			continue
		default:
			if jar.seen[name] {
				continue
			}
			rc, err := f.Open()
			if err != nil {
				return &ckerrors.ArchiveError{Entry: name, Err: err}
			}
			err = jar.add(name, rc)
			rc.Close()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// isServiceFile matches META-INF/services/<name>, not nested directories.
func isServiceFile(name string) bool {
	rest, ok := strings.CutPrefix(name, servicesDir)
	return ok && rest != "" && !strings.Contains(rest, "/")
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, &ckerrors.ArchiveError{Entry: f.Name, Err: err}
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &ckerrors.ArchiveError{Entry: f.Name, Err: err}
	}
	return data, nil
}

// mergeServices adds the providers listed in data, ignoring comments and
// blank lines.
func mergeServices(services map[string]map[string]bool, name, data string) {
	for _, line := range strings.Split(data, "\n") {
		provider, _, _ := strings.Cut(line, "#")
		provider = strings.TrimSpace(provider)
		if provider == "" {
			continue
		}
		if services[name] == nil {
			services[name] = make(map[string]bool)
		}
		services[name][provider] = true
	}
}

// writeServices emits the merged service files sorted by name, each with its
// providers sorted.
func writeServices(jar *jarWriter, services map[string]map[string]bool) error {
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		providers := make([]string, 0, len(services[name]))
		for p := range services[name] {
			providers = append(providers, p)
		}
		sort.Strings(providers)

		var b strings.Builder
		for _, p := range providers {
			b.WriteString(p + "\n")
		}
		if err := jar.add(name, strings.NewReader(b.String())); err != nil {
			return err
		}
	}
	return nil
}
