// Package archive unpacks runtime and installer archives and reads single
// entries out of jar files.
package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/provide-io/craftkit/pkg/codec"
	ckerrors "github.com/provide-io/craftkit/pkg/errors"
)

// FixedTime stamps entries of archives we write so output is reproducible.
var FixedTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Extract unpacks a .zip, .tar or compressed tarball into dest, dropping the
// first strip path components of every entry.
func Extract(archivePath, dest string, strip int) error {
	name := strings.ToLower(filepath.Base(archivePath))

	if strings.HasSuffix(name, ".zip") || strings.HasSuffix(name, ".jar") {
		return ExtractZip(archivePath, dest, strip)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return ckerrors.Path("open", archivePath, err)
	}
	defer f.Close()

	if strings.HasSuffix(name, ".tar") {
		return ExtractTar(f, dest, strip)
	}

	c, ok := codec.ForTarball(name)
	if !ok {
		return fmt.Errorf("%w: %s", ckerrors.ErrUnknownArchive, filepath.Base(archivePath))
	}
	r, err := c.NewReader(f)
	if err != nil {
		return &ckerrors.ArchiveError{Err: err}
	}
	defer r.Close()

	return ExtractTar(r, dest, strip)
}

// ExtractTar unpacks a tar stream into dest.
func ExtractTar(r io.Reader, dest string, strip int) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &ckerrors.ArchiveError{Err: fmt.Errorf("reading tar header: %w", err)}
		}

		rel := stripComponents(hdr.Name, strip)
		if rel == "" {
			continue
		}
		target, err := SafeJoin(dest, rel)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, DirPerms); err != nil {
				return ckerrors.Path("mkdir", target, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := writeSymlink(dest, target, hdr.Linkname); err != nil {
				return err
			}
		case tar.TypeLink:
			// Hard link targets are relative to the archive root
			src, err := SafeJoin(dest, stripComponents(hdr.Linkname, strip))
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), DirPerms); err != nil {
				return ckerrors.Path("mkdir", filepath.Dir(target), err)
			}
			os.Remove(target)
			if err := os.Link(src, target); err != nil {
				return ckerrors.Path("link", target, err)
			}
		default:
			// Devices, fifos and pax globals have no place in a runtime
		}
	}
}

// ExtractZip unpacks a zip file into dest.
func ExtractZip(zipPath, dest string, strip int) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return &ckerrors.ArchiveError{Err: fmt.Errorf("opening %s: %w", zipPath, err)}
	}
	defer zr.Close()

	for _, f := range zr.File {
		rel := stripComponents(f.Name, strip)
		if rel == "" {
			continue
		}
		target, err := SafeJoin(dest, rel)
		if err != nil {
			return err
		}

		mode := f.Mode()
		switch {
		case f.FileInfo().IsDir():
			if err := os.MkdirAll(target, DirPerms); err != nil {
				return ckerrors.Path("mkdir", target, err)
			}
		case mode&os.ModeSymlink != 0:
			link, err := readZipFile(f)
			if err != nil {
				return err
			}
			if err := writeSymlink(dest, target, string(link)); err != nil {
				return err
			}
		default:
			rc, err := f.Open()
			if err != nil {
				return &ckerrors.ArchiveError{Entry: f.Name, Err: err}
			}
			err = writeFile(target, rc, mode)
			rc.Close()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadEntry returns the contents of one entry of an in-memory zip or jar.
// A missing entry yields an error matching ErrNotFound.
func ReadEntry(zipBytes []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, &ckerrors.ArchiveError{Err: err}
	}
	for _, f := range zr.File {
		if f.Name == name {
			return readZipFile(f)
		}
	}
	return nil, &ckerrors.ArchiveError{Entry: name, Err: ckerrors.ErrNotFound}
}

// SafeJoin resolves an entry name under dest, rejecting names that escape it.
func SafeJoin(dest, name string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	if cleaned == "/" {
		return "", &ckerrors.ArchiveError{Entry: name, Err: fmt.Errorf("empty path")}
	}
	target := filepath.Join(dest, filepath.FromSlash(cleaned[1:]))

	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &ckerrors.ArchiveError{Entry: name, Err: fmt.Errorf("path escapes destination")}
	}
	return target, nil
}

func stripComponents(name string, strip int) string {
	name = strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "./")
	name = strings.TrimSuffix(name, "/")
	if name == "" || name == "." {
		return ""
	}
	parts := strings.Split(name, "/")
	if len(parts) <= strip {
		return ""
	}
	return strings.Join(parts[strip:], "/")
}

func readZipFile(f *zip.File) ([]byte, error) {
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

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), DirPerms); err != nil {
		return ckerrors.Path("mkdir", filepath.Dir(target), err)
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = FilePerms
	}
	// Always owner-writable so a re-extraction can overwrite
	perm |= 0o200

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return ckerrors.Path("create", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return ckerrors.Path("write", target, err)
	}
	if err := out.Close(); err != nil {
		return ckerrors.Path("close", target, err)
	}
	return nil
}

func writeSymlink(dest, target, linkname string) error {
	// The link target itself must resolve inside dest
	resolved := linkname
	if !filepath.IsAbs(linkname) {
		resolved = filepath.Join(filepath.Dir(target), linkname)
	}
	rel, err := filepath.Rel(dest, resolved)
	if err != nil || filepath.IsAbs(linkname) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &ckerrors.ArchiveError{Entry: target, Err: fmt.Errorf("symlink %s escapes destination", linkname)}
	}

	if err := os.MkdirAll(filepath.Dir(target), DirPerms); err != nil {
		return ckerrors.Path("mkdir", filepath.Dir(target), err)
	}
	os.Remove(target)
	if err := os.Symlink(linkname, target); err != nil {
		return ckerrors.Path("symlink", target, err)
	}
	return nil
}
