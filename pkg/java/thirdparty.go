package java

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/provide-io/craftkit/pkg/archive"
	ckerrors "github.com/provide-io/craftkit/pkg/errors"
	"github.com/provide-io/craftkit/pkg/platform"
	"github.com/provide-io/craftkit/pkg/progress"
)

// Runtime support where Mojang ships nothing:
//
//	linux   amd64 :  8 16 17 21
//	linux   386   :  8 !! !! !!   only Java 8 (1.16.5 and below)
//	linux   arm64 : __ __ __ __   Corretto
//	linux   arm   : -- !! !! !!   ARM32 JDK tarball
//	darwin  amd64 :  8 16 17 21
//	darwin  arm64 : __ __ 17 21   Corretto
//	windows amd64 :  8 16 17 21
//	windows 386   :  8 16 17 __   Corretto
//	windows arm64 : !! !! 17 21   8 and 16 remap to 17
//
// Numbers are Mojang builds, __ Corretto, -- the ARM32 tarball, !! unsupported.

// thirdPartySource is where a non-Mojang runtime archive comes from.
type thirdPartySource struct {
	URL   string
	Strip int
}

// thirdPartyFor picks the archive for v on p, or fails with ErrOnlyJava8 /
// ErrUnsupportedPlatform.
func (p *Provisioner) thirdPartyFor(v Version) (thirdPartySource, error) {
	plat := p.Platform
	switch {
	case plat.OS == platform.Linux && plat.Arch == platform.ARM64,
		plat.OS == platform.Darwin && plat.Arch == platform.ARM64 && (v == Java8 || v == Java16),
		plat.OS == platform.Windows && plat.Arch == platform.I386 && v == Java21:
		return thirdPartySource{URL: correttoURL(p.cfg.Sources.Corretto, v, plat), Strip: 1}, nil

	case plat.OS == platform.Linux && plat.Arch == platform.ARM:
		if v != Java8 {
			return thirdPartySource{}, ckerrors.ErrOnlyJava8
		}
		// The tarball keeps its jdk1.8.0_231/ folder
		return thirdPartySource{URL: p.cfg.Sources.ARM32JDK, Strip: 0}, nil

	case plat.OS == platform.Linux && plat.Arch == platform.I386:
		return thirdPartySource{}, ckerrors.ErrOnlyJava8
	}
	return thirdPartySource{}, fmt.Errorf("%w: java %d on %s", ckerrors.ErrUnsupportedPlatform, int(v), plat)
}

// correttoURL builds a "latest" Corretto download URL. Corretto 16 is
// discontinued, so 16 is served by 17.
func correttoURL(base string, v Version, p platform.Platform) string {
	if v == Java16 {
		v = Java17
	}

	arch := map[string]string{
		platform.AMD64: "x64",
		platform.I386:  "x86",
		platform.ARM64: "aarch64",
		platform.ARM:   "arm",
	}[p.Arch]
	osName := map[string]string{
		platform.Linux:   "linux",
		platform.Darwin:  "macos",
		platform.Windows: "windows",
	}[p.OS]
	ext := "tar.gz"
	if p.IsWindows() {
		ext = "zip"
	}

	return fmt.Sprintf("%samazon-corretto-%d-%s-%s-jdk.%s", base, int(v), arch, osName, ext)
}

// installThirdParty downloads and unpacks a runtime archive into dir.
func (p *Provisioner) installThirdParty(ctx context.Context, v Version, dir string, ch chan<- progress.Generic) error {
	src, err := p.thirdPartyFor(v)
	if err != nil {
		return err
	}

	p.logger.Info("☕ Installing third-party java", "version", v, "platform", p.Platform, "url", src.URL)
	progress.Send(ch, progress.Generic{Done: 0, Total: 2, Message: "Downloading Java"})

	tmpDir, err := os.MkdirTemp(filepath.Dir(dir), ".download-*")
	if err != nil {
		return ckerrors.Path("mkdir", filepath.Dir(dir), err)
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, path.Base(src.URL))
	if err := p.client.ToFile(ctx, src.URL, archivePath); err != nil {
		return err
	}

	progress.Send(ch, progress.Generic{Done: 1, Total: 2, Message: "Extracting Java"})
	if err := archive.Extract(archivePath, dir, src.Strip); err != nil {
		return err
	}
	return nil
}
