// Package forge installs the Forge mod loader into client and server instances.
package forge

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/craftkit/pkg/config"
	"github.com/provide-io/craftkit/pkg/download"
	ckerrors "github.com/provide-io/craftkit/pkg/errors"
	"github.com/provide-io/craftkit/pkg/instance"
	"github.com/provide-io/craftkit/pkg/java"
	"github.com/provide-io/craftkit/pkg/lock"
	"github.com/provide-io/craftkit/pkg/logging"
	"github.com/provide-io/craftkit/pkg/platform"
	"github.com/provide-io/craftkit/pkg/process"
	"github.com/provide-io/craftkit/pkg/progress"
)

//go:embed assets/ForgeInstaller.java
var installerSource string

const (
	lockName = "forge.lock"
	lockNote = "If you see this, forge was not installed correctly."

	// The last release installed as a library-based loader despite its age.
	pinnedModernVersion = "1.5.2"

	installerClass = "ForgeInstaller"
)

// Files written to the forge directory.
const (
	ClasspathFile      = "classpath.txt"
	CleanClasspathFile = "clean_classpath.txt"
	DetailsFile        = "details.json"
)

// JavaResolver provisions a Java binary. *java.Provisioner implements it.
type JavaResolver interface {
	Binary(ctx context.Context, v java.Version, name string, ch chan<- progress.Generic) (string, error)
}

// Installer installs Forge. It is safe to reuse across installs, but not
// for concurrent installs into the same instance.
type Installer struct {
	// Platform defaults to the host; tests override it.
	Platform platform.Platform

	cfg    *config.Config
	client *download.Client
	java   JavaResolver
	logger hclog.Logger
}

func NewInstaller(cfg *config.Config, client *download.Client, javaResolver JavaResolver, logger hclog.Logger) *Installer {
	return &Installer{
		Platform: platform.Current(),
		cfg:      cfg,
		client:   client,
		java:     javaResolver,
		logger:   logging.OrNull(logger).Named("forge"),
	}
}

// job is the state of one install.
type job struct {
	sel         instance.Selection
	instanceDir string
	forgeDir    string
	root        string
	details     *instance.VersionDetails
	game        string
	loader      string
	short       string
	major       int
	stages      chan<- progress.ForgeStage
}

// Install installs loader version (or the latest promoted one when empty)
// into sel. Stage events go to stages and Java provisioning progress to
// javaProgress; either may be nil.
//
// On failure the instance keeps its forge.lock, and the next Install redoes
// the work.
func (i *Installer) Install(ctx context.Context, version string, sel instance.Selection,
	stages chan<- progress.ForgeStage, javaProgress chan<- progress.Generic) error {

	i.logger.Info("🔨 Started installing forge", "instance", sel)
	progress.Send(stages, progress.ForgeStage{Stage: progress.StageStart})

	j, err := i.prepare(ctx, version, sel, stages)
	if err != nil {
		return err
	}

	progress.Send(stages, progress.ForgeStage{Stage: progress.StageDownloadingInstaller})
	installerBytes, installerName, err := i.downloadInstaller(ctx, j)
	if err != nil {
		return err
	}

	if j.details.IsLegacy(i.logger) && j.details.ID != pinnedModernVersion {
		return i.installJarMod(ctx, j, installerBytes)
	}

	librariesDir := filepath.Join(j.forgeDir, "libraries")
	if err := os.MkdirAll(librariesDir, 0o755); err != nil {
		return ckerrors.Path("mkdir", librariesDir, err)
	}

	if j.major >= installerMajor {
		if err := i.runInstaller(ctx, j, installerName, javaProgress); err != nil {
			return err
		}
	}

	descriptor, err := ReadDescriptor(installerBytes)
	if err != nil {
		return fmt.Errorf("reading descriptor of forge %s: %w", j.short, err)
	}

	filtered := FilterLibraries(descriptor.Libraries, sel.Server, i.Platform)
	libs := make([]Library, 0, len(filtered))
	for _, l := range filtered {
		lib, err := ResolveLibrary(l, i.cfg.Sources.Libraries)
		if err != nil {
			return err
		}
		libs = append(libs, lib)
	}

	results, err := i.fetchLibraries(ctx, libs, librariesDir, stages)
	if err != nil {
		return err
	}

	sep := i.Platform.ClasspathSeparator()
	prefix := classpathPrefix(j.root, installerName, j.short, j.major, sep)
	classpath, clean := assembleClasspath(prefix, j.root, sep, j.major, results)

	if err := i.finish(j, descriptor, classpath, clean); err != nil {
		return err
	}

	progress.Deliver(ctx, stages, progress.ForgeStage{Stage: progress.StageDone})
	i.logger.Info("✅ Finished installing forge", "version", j.short, "instance", sel)
	return nil
}

// prepare resolves the instance and loader version and takes the lock.
func (i *Installer) prepare(ctx context.Context, version string, sel instance.Selection, stages chan<- progress.ForgeStage) (*job, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	j := &job{
		sel:         sel,
		instanceDir: sel.Dir(i.cfg),
		stages:      stages,
	}
	j.forgeDir = filepath.Join(j.instanceDir, "forge")
	j.root = "../forge"
	if sel.Server {
		j.root = "forge"
	}

	details, err := instance.LoadDetails(j.instanceDir)
	if err != nil {
		return nil, err
	}
	j.details = details
	j.game = details.ID

	for _, dir := range []string{j.forgeDir, sel.ModsDir(i.cfg)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, ckerrors.Path("mkdir", dir, err)
		}
	}
	if _, err := lock.Create(filepath.Join(j.instanceDir, lockName), lockNote, i.logger); err != nil {
		return nil, err
	}

	progress.Send(stages, progress.ForgeStage{Stage: progress.StageDownloadingJSON})
	if version == "" {
		promos, err := FetchPromotions(ctx, i.client, i.cfg.Sources.ForgePromotions)
		if err != nil {
			return nil, err
		}
		if version, err = promos.Latest(j.game); err != nil {
			return nil, err
		}
	}
	j.loader = version
	j.short = ShortVersion(j.game, version)

	if j.major, err = MajorVersion(version); err != nil {
		return nil, err
	}

	i.logger.Info("🔨 Forge version is being installed", "version", version, "minecraft", j.game, "major", j.major)
	return j, nil
}

// downloadInstaller fetches the first installer candidate that exists and
// stores it in the forge directory.
func (i *Installer) downloadInstaller(ctx context.Context, j *job) ([]byte, string, error) {
	urls := CandidateURLs(i.cfg.Sources.ForgeMaven, j.game, j.loader, j.major)

	var data []byte
	for n, url := range urls {
		body, err := i.client.Bytes(ctx, url)
		if err == nil {
			i.logger.Debug("📦 Downloaded installer", "url", url)
			data = body
			break
		}
		if !ckerrors.IsNotFound(err) {
			return nil, "", err
		}
		if n == len(urls)-1 {
			return nil, "", fmt.Errorf("%w: forge %s: %w", ckerrors.ErrMirrorsExhausted, j.short, err)
		}
		i.logger.Trace("📦 Installer candidate missing", "url", url)
	}
	if data == nil {
		return nil, "", fmt.Errorf("%w: forge %s", ckerrors.ErrMirrorsExhausted, j.short)
	}

	name := InstallerName(j.short, j.major)
	path := filepath.Join(j.forgeDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, "", ckerrors.Path("write", path, err)
	}
	return data, name, nil
}

// installJarMod applies the installer as a jar mod, for versions that predate
// library-based installs.
func (i *Installer) installJarMod(ctx context.Context, j *job, installerBytes []byte) error {
	i.logger.Info("🧩 Legacy version, installing forge as a jar mod", "minecraft", j.game)
	if err := instance.InsertJarMod(j.instanceDir, installerBytes, "Forge"); err != nil {
		return err
	}
	if err := instance.SetModType(j.instanceDir, instance.ModTypeForge); err != nil {
		return err
	}
	if err := lock.Remove(filepath.Join(j.instanceDir, lockName)); err != nil {
		return err
	}
	progress.Deliver(ctx, j.stages, progress.ForgeStage{Stage: progress.StageDone})
	return nil
}

// runInstaller compiles and runs the headless installer program next to the
// installer jar, with Java 21.
func (i *Installer) runInstaller(ctx context.Context, j *job, installerName string, javaProgress chan<- progress.Generic) error {
	javac, err := i.java.Binary(ctx, java.Java21, "javac", javaProgress)
	if err != nil {
		return err
	}

	source := installerSource
	if j.sel.Server {
		source = strings.ReplaceAll(source, "CLIENT", "SERVER")
	}
	files := map[string]string{installerClass + ".java": source}
	if !j.sel.Server {
		// The client installer refuses to run without a launcher profile
		files["launcher_profiles.json"] = "{}"
		files["launcher_profiles_microsoft_store.json"] = "{}"
	}
	for name, content := range files {
		path := filepath.Join(j.forgeDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return ckerrors.Path("write", path, err)
		}
	}

	progress.Send(j.stages, progress.ForgeStage{Stage: progress.StageRunningInstaller})
	i.logger.Info("⚙️ Compiling installer")
	if _, err := process.Run(ctx, i.logger, ckerrors.StageCompile, j.forgeDir, javac,
		"-cp", installerName, installerClass+".java", "-d", "."); err != nil {
		return err
	}

	javaBin, err := i.java.Binary(ctx, java.Java21, java.JavaExecutable(i.Platform), nil)
	if err != nil {
		return err
	}
	args, err := process.SplitArgs(i.cfg.JavaArgs)
	if err != nil {
		return fmt.Errorf("java_args: %w", err)
	}
	args = append(args, "-cp", installerName+i.Platform.ClasspathSeparator()+".", installerClass)

	i.logger.Info("⚙️ Running installer")
	if _, err := process.Run(ctx, i.logger, ckerrors.StageInstaller, j.forgeDir, javaBin, args...); err != nil {
		return err
	}
	return nil
}

// finish persists the results, records the loader and drops the lock last.
func (i *Installer) finish(j *job, descriptor *Descriptor, classpath, clean string) error {
	detailsJSON, err := json.MarshalIndent(descriptor, "", "  ")
	if err != nil {
		return err
	}

	outputs := []struct {
		name string
		data []byte
	}{
		{ClasspathFile, []byte(classpath)},
		{CleanClasspathFile, []byte(clean)},
		{DetailsFile, detailsJSON},
	}
	for _, out := range outputs {
		path := filepath.Join(j.forgeDir, out.name)
		if err := os.WriteFile(path, out.data, 0o644); err != nil {
			return ckerrors.Path("write", path, err)
		}
	}

	if err := instance.SetModType(j.instanceDir, instance.ModTypeForge); err != nil {
		return err
	}
	return lock.Remove(filepath.Join(j.instanceDir, lockName))
}
