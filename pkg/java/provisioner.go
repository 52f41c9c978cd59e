package java

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/craftkit/pkg/archive"
	"github.com/provide-io/craftkit/pkg/codec"
	"github.com/provide-io/craftkit/pkg/config"
	"github.com/provide-io/craftkit/pkg/download"
	ckerrors "github.com/provide-io/craftkit/pkg/errors"
	"github.com/provide-io/craftkit/pkg/jobs"
	"github.com/provide-io/craftkit/pkg/lock"
	"github.com/provide-io/craftkit/pkg/logging"
	"github.com/provide-io/craftkit/pkg/platform"
	"github.com/provide-io/craftkit/pkg/progress"
)

const (
	lockName = "install.lock"
	lockNote = "If you see this, java hasn't finished installing."
)

// Provisioner installs runtimes under <launcher>/java_installs/<version>.
type Provisioner struct {
	// Platform defaults to the host; tests override it.
	Platform platform.Platform

	cfg    *config.Config
	client *download.Client
	logger hclog.Logger
}

// NewProvisioner creates a provisioner for the host platform.
func NewProvisioner(cfg *config.Config, client *download.Client, logger hclog.Logger) *Provisioner {
	return &Provisioner{
		Platform: platform.Current(),
		cfg:      cfg,
		client:   client,
		logger:   logging.OrNull(logger).Named("java"),
	}
}

// Dir is the install directory of v after platform remapping.
func (p *Provisioner) Dir(v Version) string {
	return filepath.Join(p.cfg.JavaInstallsDir(), Remap(v, p.Platform).String())
}

// Binary returns the absolute path of the runtime binary name (java, javac,
// javaw) for v, installing the runtime first if it is missing or a previous
// install was interrupted. Progress goes to ch when it is non-nil.
func (p *Provisioner) Binary(ctx context.Context, v Version, name string, ch chan<- progress.Generic) (string, error) {
	v = Remap(v, p.Platform)
	dir := p.Dir(v)
	lockPath := filepath.Join(dir, lockName)

	_, statErr := os.Stat(dir)
	if os.IsNotExist(statErr) || lock.Exists(lockPath) {
		if err := p.install(ctx, v, dir, ch); err != nil {
			return "", fmt.Errorf("installing %s: %w", v, err)
		}
	} else {
		p.logger.Debug("☕ Java already installed", "version", v, "dir", dir)
	}

	return p.resolveBinary(dir, v, name)
}

func (p *Provisioner) install(ctx context.Context, v Version, dir string, ch chan<- progress.Generic) error {
	if err := os.MkdirAll(dir, archive.DirPerms); err != nil {
		return ckerrors.Path("mkdir", dir, err)
	}
	lockPath := filepath.Join(dir, lockName)
	if _, err := lock.Create(lockPath, lockNote, p.logger); err != nil {
		return err
	}

	p.logger.Info("☕ Installing Java", "version", v, "platform", p.Platform)
	progress.Send(ch, progress.Started())

	var list RuntimeList
	if err := p.client.JSON(ctx, p.cfg.Sources.JavaRuntimeList, &list); err != nil {
		return err
	}

	if ref, ok := list.Manifest(v, p.Platform); ok {
		if err := p.installManifest(ctx, ref, dir, ch); err != nil {
			return err
		}
	} else if err := p.installThirdParty(ctx, v, dir, ch); err != nil {
		return err
	}

	// The lock stays on any failure above
	if err := lock.Remove(lockPath); err != nil {
		return err
	}
	progress.Deliver(ctx, ch, progress.Completed())
	p.logger.Info("✅ Finished installing Java", "version", v)
	return nil
}

func (p *Provisioner) installManifest(ctx context.Context, ref DownloadRef, dir string, ch chan<- progress.Generic) error {
	var manifest FileManifest
	if err := p.client.JSONVerified(ctx, ref.URL, ref.SHA1, &manifest); err != nil {
		return err
	}

	paths := manifest.Paths()
	counter := jobs.NewCounter(len(paths))
	work := make([]jobs.Job[struct{}], 0, len(paths))
	for _, rel := range paths {
		node := manifest.Files[rel]
		work = append(work, func(ctx context.Context) (struct{}, error) {
			done, total := counter.Next()
			progress.Send(ch, progress.Generic{
				Done:    done - 1,
				Total:   total,
				Message: "Installing file: " + rel,
			})
			return struct{}{}, p.installNode(ctx, dir, rel, node, done, total)
		})
	}

	if _, err := jobs.Run(ctx, p.cfg.Concurrency, work); err != nil {
		return err
	}
	p.logger.Debug("📄 Runtime files installed", "count", counter.Done(), "total", len(paths))
	return nil
}

func (p *Provisioner) installNode(ctx context.Context, dir, rel string, node Node, num, total int) error {
	target, err := archive.SafeJoin(dir, rel)
	if err != nil {
		return err
	}

	switch node.Type {
	case NodeDirectory:
		p.logger.Trace("📁 Installing dir", "num", num, "total", total, "path", rel)
		if err := os.MkdirAll(target, archive.DirPerms); err != nil {
			return ckerrors.Path("mkdir", target, err)
		}

	case NodeFile:
		p.logger.Trace("📄 Installing file", "num", num, "total", total, "path", rel)
		data, err := p.fetch(ctx, node.Downloads)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), archive.DirPerms); err != nil {
			return ckerrors.Path("mkdir", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, data, archive.FilePerms); err != nil {
			return ckerrors.Path("write", target, err)
		}
		if node.Executable {
			if err := archive.MakeExecutable(target); err != nil {
				return ckerrors.Path("chmod", target, err)
			}
		}

	case NodeLink:
		// Not created yet; runtimes launch fine without them
		p.logger.Warn("🔗 Skipping symlink", "path", rel, "target", node.Target)
	}
	return nil
}

// fetch prefers the LZMA download and falls back to raw if it fails to
// decode or the decoded bytes do not match the raw sha1. The raw sha1 is
// always checked.
func (p *Provisioner) fetch(ctx context.Context, d FileDownloads) ([]byte, error) {
	if d.LZMA != nil && d.LZMA.URL != "" {
		compressed, err := p.client.Bytes(ctx, d.LZMA.URL)
		if err != nil {
			return nil, err
		}
		data, err := codec.Decode(codec.LZMA, compressed)
		if err == nil {
			err = download.Verify(data, d.Raw.SHA1)
		}
		if err == nil {
			return data, nil
		}
		p.logger.Warn("⚠️ Could not use lzma file, using raw download", "url", d.Raw.URL, "error", err)
	}
	return p.client.BytesVerified(ctx, d.Raw.URL, d.Raw.SHA1)
}

// resolveBinary finds name inside an installed runtime.
func (p *Provisioner) resolveBinary(dir string, v Version, name string) (string, error) {
	for _, rel := range binaryCandidates(p.Platform, v, name) {
		candidate := filepath.Join(dir, filepath.FromSlash(rel))
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		resolved, err := filepath.EvalSymlinks(candidate)
		if err != nil {
			return "", ckerrors.Path("resolve", candidate, err)
		}
		abs, err := filepath.Abs(resolved)
		if err != nil {
			return "", ckerrors.Path("resolve", resolved, err)
		}
		return abs, nil
	}
	return "", fmt.Errorf("%w: %s in %s", ckerrors.ErrNoJavaBinary, name, dir)
}

// binaryCandidates lists where name may live, most common layout first.
func binaryCandidates(p platform.Platform, v Version, name string) []string {
	candidates := []string{"bin/" + name}
	switch p.OS {
	case platform.Windows:
		candidates = append(candidates, "bin/"+name+".exe")
	case platform.Darwin:
		// Corretto's Java 8 tarball is a bare .jdk bundle
		prefix := "jre.bundle/"
		if p.Arch == platform.ARM64 && v == Java8 {
			prefix = ""
		}
		candidates = append(candidates, prefix+"Contents/Home/bin/"+name)
	case platform.Linux:
		if p.Arch == platform.ARM {
			candidates = append(candidates, "jdk1.8.0_231/bin/"+name)
		}
	}
	return candidates
}

// DeleteInstalls removes every provisioned runtime. A missing directory is
// not an error.
func DeleteInstalls(cfg *config.Config, logger hclog.Logger) error {
	logger = logging.OrNull(logger)
	dir := cfg.JavaInstallsDir()
	logger.Info("🧹 Clearing Java installs", "dir", dir)

	if err := os.RemoveAll(dir); err != nil {
		return ckerrors.Path("remove", dir, err)
	}
	return nil
}
