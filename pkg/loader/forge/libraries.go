package forge

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	ckerrors "github.com/provide-io/craftkit/pkg/errors"
	"github.com/provide-io/craftkit/pkg/instance"
	"github.com/provide-io/craftkit/pkg/jobs"
	"github.com/provide-io/craftkit/pkg/platform"
	"github.com/provide-io/craftkit/pkg/progress"
)

// Forge's own artifact; the installer builds it, so it is never downloaded.
const (
	forgeGroup    = "net.minecraftforge"
	forgeArtifact = "forge"
)

// Library is a descriptor library resolved to a location on disk and online.
type Library struct {
	Name     string
	Group    string
	Artifact string
	Version  string
	// Dir is slash-separated and relative to the libraries root.
	Dir  string
	File string
	URL  string
	SHA1 string
}

// Key is the clean classpath form, group:artifact.
func (l Library) Key() string {
	return l.Group + ":" + l.Artifact
}

// RelPath is Dir/File.
func (l Library) RelPath() string {
	return l.Dir + "/" + l.File
}

// IsLoader reports whether the library is the loader itself.
func (l Library) IsLoader() bool {
	return l.Group == forgeGroup && l.Artifact == forgeArtifact
}

// ResolveLibrary derives where a library lives. Explicit download metadata
// wins; otherwise the Maven layout of its coordinates is used against the
// library's own repository or defaultBase.
func ResolveLibrary(lib instance.Library, defaultBase string) (Library, error) {
	parts := strings.Split(lib.Name, ":")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Library{}, fmt.Errorf("%w: %q", ckerrors.ErrInvalidLibraryName, lib.Name)
	}

	group, artifact, version := parts[0], parts[1], parts[2]
	ext := "jar"
	classifier := ""
	if len(parts) > 3 {
		classifier = parts[3]
	}
	// group:artifact:version[:classifier][@ext]
	last := &version
	if classifier != "" {
		last = &classifier
	}
	if v, e, ok := strings.Cut(*last, "@"); ok {
		*last, ext = v, e
	}

	res := Library{
		Name:     lib.Name,
		Group:    group,
		Artifact: artifact,
		Version:  version,
	}

	if a := lib.Downloads; a != nil && a.Artifact != nil && a.Artifact.Path != "" {
		res.Dir = path.Dir(a.Artifact.Path)
		res.File = path.Base(a.Artifact.Path)
		res.URL = a.Artifact.URL
		res.SHA1 = a.Artifact.SHA1
	} else {
		res.Dir = strings.ReplaceAll(group, ".", "/") + "/" + artifact + "/" + version
		res.File = artifact + "-" + version
		if classifier != "" {
			res.File += "-" + classifier
		}
		res.File += "." + ext
	}

	if res.URL == "" {
		base := lib.URL
		if base == "" {
			base = defaultBase
		}
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		res.URL = base + res.RelPath()
	}
	return res, nil
}

// FilterLibraries drops libraries that do not apply: clientreq:false ones for
// clients, and ones whose OS rules exclude p.
func FilterLibraries(libs []instance.Library, server bool, p platform.Platform) []instance.Library {
	out := make([]instance.Library, 0, len(libs))
	for _, lib := range libs {
		if !server && lib.ClientReq != nil && !*lib.ClientReq {
			continue
		}
		if !instance.Allowed(lib.Rules, p) {
			continue
		}
		out = append(out, lib)
	}
	return out
}

// libraryResult says whether a library ended up on disk.
type libraryResult struct {
	lib     Library
	present bool
}

// fetchLibraries downloads every library into librariesDir, skipping files
// already present and libraries the mirror does not have (404). A library
// declared more than once is fetched once; the results still follow libs.
func (i *Installer) fetchLibraries(ctx context.Context, libs []Library, librariesDir string, stages chan<- progress.ForgeStage) ([]libraryResult, error) {
	var (
		unique []Library
		slot   = make([]int, len(libs))
		seen   = make(map[string]int, len(libs))
	)
	for n, lib := range libs {
		if first, ok := seen[lib.RelPath()]; ok {
			i.logger.Debug("📚 Library declared twice", "library", lib.Name)
			slot[n] = first
			continue
		}
		seen[lib.RelPath()] = len(unique)
		slot[n] = len(unique)
		unique = append(unique, lib)
	}

	counter := jobs.NewCounter(len(unique))
	work := make([]jobs.Job[bool], 0, len(unique))
	for _, lib := range unique {
		work = append(work, func(ctx context.Context) (bool, error) {
			num, total := counter.Next()
			progress.Send(stages, progress.ForgeStage{Stage: progress.StageDownloadingLibrary, Num: num, OutOf: total})
			return i.fetchLibrary(ctx, lib, librariesDir, num, total)
		})
	}

	present, err := jobs.Run(ctx, i.cfg.Concurrency, work)
	if err != nil {
		return nil, err
	}
	i.logger.Debug("📚 Libraries processed", "count", counter.Done(), "declared", len(libs))

	results := make([]libraryResult, len(libs))
	for n, lib := range libs {
		results[n] = libraryResult{lib: lib, present: present[slot[n]]}
	}
	return results, nil
}

// fetchLibrary reports whether lib ended up on disk.
func (i *Installer) fetchLibrary(ctx context.Context, lib Library, librariesDir string, num, total int) (bool, error) {
	if lib.IsLoader() {
		i.logger.Debug("📚 Built in forge library, skipping", "library", lib.Name)
		return false, nil
	}

	dest := filepath.Join(librariesDir, filepath.FromSlash(lib.RelPath()))
	if _, err := os.Stat(dest); err == nil {
		i.logger.Debug("📚 Library already exists", "num", num, "total", total, "library", lib.Name)
		return true, nil
	}

	i.logger.Info("📚 Downloading library", "num", num, "total", total, "library", lib.Name)
	err := i.client.ToFileVerified(ctx, lib.URL, dest, lib.SHA1)
	if ckerrors.IsNotFound(err) {
		i.logger.Warn("⚠️ Library not found, skipping", "library", lib.Name, "url", lib.URL)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("library %s: %w", lib.Name, err)
	}
	return true, nil
}

// Classpath accumulates separator-terminated entries in insertion order,
// ignoring repeats.
type Classpath struct {
	sep  string
	b    strings.Builder
	seen map[string]bool
}

func NewClasspath(sep string) *Classpath {
	return &Classpath{sep: sep, seen: make(map[string]bool)}
}

// AddRaw appends a pre-terminated prefix as-is.
func (c *Classpath) AddRaw(s string) {
	if s == "" || c.seen[s] {
		return
	}
	c.seen[s] = true
	c.b.WriteString(s)
}

// Add appends one entry followed by the separator.
func (c *Classpath) Add(entry string) {
	c.AddRaw(entry + c.sep)
}

func (c *Classpath) String() string {
	return c.b.String()
}

// assembleClasspath builds both classpath files from download results, in
// declaration order regardless of which download finished first.
func assembleClasspath(prefix, root, sep string, major int, results []libraryResult) (classpath, clean string) {
	cp := NewClasspath(sep)
	cp.AddRaw(prefix)

	var cleanB strings.Builder
	for _, r := range results {
		cleanB.WriteString(r.lib.Key() + "\n")

		switch {
		case r.lib.IsLoader():
			if major > 48 {
				cp.Add(root + "/libraries/" + r.lib.RelPath())
			}
		case r.present:
			cp.Add(root + "/libraries/" + r.lib.RelPath())
		}
	}
	return cp.String(), cleanB.String()
}
