package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/craftkit/pkg/codec"
	ckerrors "github.com/provide-io/craftkit/pkg/errors"
)

type entry struct {
	name string
	body string
	mode int64
	link string
	dir  bool
}

func buildTar(t *testing.T, entries []entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: e.mode, ModTime: FixedTime}
		switch {
		case e.dir:
			hdr.Typeflag = tar.TypeDir
		case e.link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.link
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractTarStripsLeadingComponent(t *testing.T) {
	dest := t.TempDir()
	data := buildTar(t, []entry{
		{name: "jdk-17.0.9/", dir: true, mode: 0o755},
		{name: "jdk-17.0.9/bin/java", body: "#!/bin/sh\n", mode: 0o755},
		{name: "jdk-17.0.9/release", body: "JAVA_VERSION=17", mode: 0o644},
	})

	require.NoError(t, ExtractTar(bytes.NewReader(data), dest, 1))

	got, err := os.ReadFile(filepath.Join(dest, "release"))
	require.NoError(t, err)
	assert.Equal(t, "JAVA_VERSION=17", string(got))

	info, err := os.Stat(filepath.Join(dest, "bin", "java"))
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.True(t, IsExecutable(info.Mode()))
	}
	assert.NoDirExists(t, filepath.Join(dest, "jdk-17.0.9"))
}

func TestExtractTarRejectsTraversal(t *testing.T) {
	dest := t.TempDir()
	data := buildTar(t, []entry{
		{name: "jdk/../../evil", body: "x", mode: 0o644},
	})

	err := ExtractTar(bytes.NewReader(data), dest, 0)
	// Cleaning keeps the entry inside dest
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, "evil"))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dest), "evil"))
}

func TestExtractTarRejectsEscapingSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dest := t.TempDir()
	data := buildTar(t, []entry{
		{name: "lib/link", link: "../../etc/passwd"},
	})

	err := ExtractTar(bytes.NewReader(data), dest, 0)
	var archiveErr *ckerrors.ArchiveError
	assert.ErrorAs(t, err, &archiveErr)
}

func TestExtractTarSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dest := t.TempDir()
	data := buildTar(t, []entry{
		{name: "bin/java", body: "bin", mode: 0o755},
		{name: "java", link: "bin/java"},
	})

	require.NoError(t, ExtractTar(bytes.NewReader(data), dest, 0))
	link, err := os.Readlink(filepath.Join(dest, "java"))
	require.NoError(t, err)
	assert.Equal(t, "bin/java", link)
}

func TestExtractDispatch(t *testing.T) {
	tarData := buildTar(t, []entry{
		{name: "amazon-corretto-17/bin/java", body: "corretto", mode: 0o755},
	})

	for _, name := range []string{codec.GZIP, codec.BZIP2, codec.ZSTD} {
		t.Run(name, func(t *testing.T) {
			encoded, err := codec.Encode(name, tarData)
			require.NoError(t, err)

			ext := map[string]string{
				codec.GZIP:  ".tar.gz",
				codec.BZIP2: ".tar.bz2",
				codec.ZSTD:  ".tar.zst",
			}[name]
			archivePath := filepath.Join(t.TempDir(), "runtime"+ext)
			require.NoError(t, os.WriteFile(archivePath, encoded, 0o644))

			dest := t.TempDir()
			require.NoError(t, Extract(archivePath, dest, 1))
			got, err := os.ReadFile(filepath.Join(dest, "bin", "java"))
			require.NoError(t, err)
			assert.Equal(t, "corretto", string(got))
		})
	}

	t.Run("zip", func(t *testing.T) {
		archivePath := filepath.Join(t.TempDir(), "runtime.zip")
		require.NoError(t, os.WriteFile(archivePath, buildZip(t, map[string]string{
			"jdk21.0.1_12/bin/javaw.exe": "win",
		}), 0o644))

		dest := t.TempDir()
		require.NoError(t, Extract(archivePath, dest, 1))
		assert.FileExists(t, filepath.Join(dest, "bin", "javaw.exe"))
	})

	t.Run("unknown", func(t *testing.T) {
		archivePath := filepath.Join(t.TempDir(), "runtime.rar")
		require.NoError(t, os.WriteFile(archivePath, []byte("rar"), 0o644))
		err := Extract(archivePath, t.TempDir(), 0)
		assert.ErrorIs(t, err, ckerrors.ErrUnknownArchive)
	})
}

func TestReadEntry(t *testing.T) {
	data := buildZip(t, map[string]string{
		"version.json":         `{"id":"1.12.2-forge-14.23.5.2859"}`,
		"install_profile.json": `{}`,
	})

	got, err := ReadEntry(data, "version.json")
	require.NoError(t, err)
	assert.Contains(t, string(got), "1.12.2-forge")

	_, err = ReadEntry(data, "missing.json")
	assert.ErrorIs(t, err, ckerrors.ErrNotFound)

	_, err = ReadEntry([]byte("not a zip"), "version.json")
	var archiveErr *ckerrors.ArchiveError
	assert.ErrorAs(t, err, &archiveErr)
}

func TestStripComponents(t *testing.T) {
	tests := []struct {
		name  string
		strip int
		want  string
	}{
		{"jdk/bin/java", 1, "bin/java"},
		{"./jdk/bin/java", 1, "bin/java"},
		{"jdk/", 1, ""},
		{"jdk", 1, ""},
		{"a/b/c", 0, "a/b/c"},
		{"a/b/c", 2, "c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripComponents(tt.name, tt.strip), tt.name)
	}
}

func TestMakeExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no execute bits on windows")
	}
	path := filepath.Join(t.TempDir(), "java")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, MakeExecutable(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}
