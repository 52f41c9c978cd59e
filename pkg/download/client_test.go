package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/craftkit/pkg/config"
	ckerrors "github.com/provide-io/craftkit/pkg/errors"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := config.Default()
	cfg.LauncherDir = t.TempDir()
	return New(cfg, hclog.NewNullLogger())
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/hello.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	})
	mux.HandleFunc("/agent", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Header.Get("User-Agent")))
	})
	mux.HandleFunc("/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promos":{"1.12.2-latest":"14.23.5.2859"}}`))
	})
	mux.HandleFunc("/broken.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promos":`))
	})
	mux.HandleFunc("/slow.jar", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("first half,"))
		w.(http.Flusher).Flush()
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte("second half"))
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestBytes(t *testing.T) {
	srv := newServer(t)
	c := newTestClient(t)

	data, err := c.Bytes(context.Background(), srv.URL+"/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	agent, err := c.Bytes(context.Background(), srv.URL+"/agent")
	require.NoError(t, err)
	assert.Equal(t, "craftkit/"+config.DefaultLauncherVersion, string(agent))
}

func TestStatusErrors(t *testing.T) {
	srv := newServer(t)
	c := newTestClient(t)

	_, err := c.Bytes(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, ckerrors.ErrNotFound)
	var reqErr *ckerrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Equal(t, srv.URL+"/missing", reqErr.URL)

	_, err = c.Bytes(context.Background(), srv.URL+"/boom")
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	assert.False(t, ckerrors.IsNotFound(err))
}

func TestTransportError(t *testing.T) {
	srv := newServer(t)
	url := srv.URL + "/hello.txt"
	srv.Close()

	_, err := newTestClient(t).Bytes(context.Background(), url)
	var reqErr *ckerrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Zero(t, reqErr.StatusCode)
	assert.False(t, ckerrors.IsNotFound(err))
}

func TestJSON(t *testing.T) {
	srv := newServer(t)
	c := newTestClient(t)

	var doc struct {
		Promos map[string]string `json:"promos"`
	}
	require.NoError(t, c.JSON(context.Background(), srv.URL+"/doc.json", &doc))
	assert.Equal(t, "14.23.5.2859", doc.Promos["1.12.2-latest"])

	err := c.JSON(context.Background(), srv.URL+"/broken.json", &doc)
	var jsonErr *ckerrors.JSONError
	require.ErrorAs(t, err, &jsonErr)
	assert.Equal(t, `{"promos":`, jsonErr.Content)
}

func TestToFile(t *testing.T) {
	srv := newServer(t)
	c := newTestClient(t)
	dest := filepath.Join(t.TempDir(), "nested", "dir", "hello.txt")

	require.NoError(t, c.ToFile(context.Background(), srv.URL+"/hello.txt", dest))
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
	assertNoPartFiles(t, filepath.Dir(dest))

	missing := filepath.Join(t.TempDir(), "missing.txt")
	err = c.ToFile(context.Background(), srv.URL+"/missing", missing)
	assert.ErrorIs(t, err, ckerrors.ErrNotFound)
	assert.NoFileExists(t, missing)
}

func TestToFileVerified(t *testing.T) {
	srv := newServer(t)
	c := newTestClient(t)
	// sha1("hello")
	const helloSHA1 = "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"

	dest := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, c.ToFileVerified(context.Background(), srv.URL+"/hello.txt", dest, helloSHA1))
	assert.FileExists(t, dest)

	bad := filepath.Join(t.TempDir(), "bad.txt")
	err := c.ToFileVerified(context.Background(), srv.URL+"/hello.txt", bad, "0000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, ckerrors.ErrChecksumMismatch)
	assert.NoFileExists(t, bad)
	assertNoPartFiles(t, filepath.Dir(bad))

	prefixed := filepath.Join(t.TempDir(), "prefixed.txt")
	require.NoError(t, c.ToFileVerified(context.Background(), srv.URL+"/hello.txt", prefixed,
		"sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"))
	info, err := os.Stat(prefixed)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	}

	err = c.ToFileVerified(context.Background(), srv.URL+"/hello.txt", filepath.Join(t.TempDir(), "x"), "md5:abc")
	assert.Error(t, err)
}

func TestToFileConcurrentSameDest(t *testing.T) {
	srv := newServer(t)
	c := newTestClient(t)
	dest := filepath.Join(t.TempDir(), "libs", "dup-1.jar")

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for n := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[n] = c.ToFile(context.Background(), srv.URL+"/slow.jar", dest)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "first half,second half", string(got))
	assertNoPartFiles(t, filepath.Dir(dest))
}

func TestBytesVerified(t *testing.T) {
	srv := newServer(t)
	c := newTestClient(t)

	data, err := c.BytesVerified(context.Background(), srv.URL+"/hello.txt", "sha1:aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	data, err = c.BytesVerified(context.Background(), srv.URL+"/hello.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = c.BytesVerified(context.Background(), srv.URL+"/hello.txt", "0000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, ckerrors.ErrChecksumMismatch)
	assert.Contains(t, err.Error(), srv.URL+"/hello.txt")

	var doc struct {
		Promos map[string]string `json:"promos"`
	}
	err = c.JSONVerified(context.Background(), srv.URL+"/doc.json", "0000000000000000000000000000000000000000", &doc)
	assert.ErrorIs(t, err, ckerrors.ErrChecksumMismatch)
	assert.Empty(t, doc.Promos)
}

func assertNoPartFiles(t *testing.T, dir string) {
	t.Helper()
	parts, err := filepath.Glob(filepath.Join(dir, "*"+partSuffix))
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestChecksums(t *testing.T) {
	data := []byte("hello")

	assert.Equal(t, "sha1:aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", CalculateChecksum(data, ChecksumSHA1))
	assert.Equal(t, "sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", CalculateChecksum(data, ChecksumSHA256))

	tests := []struct {
		checksum string
		algo     ChecksumAlgorithm
		ok       bool
	}{
		{"aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", ChecksumSHA1, true},
		{"AAF4C61DDCC5E8A2DABEDE0F3B482CD9AEA9434D", ChecksumSHA1, true},
		{"sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", ChecksumSHA256, true},
		{"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", ChecksumSHA256, true},
		{"sha1:0000000000000000000000000000000000000000", ChecksumSHA1, false},
	}
	for _, tt := range tests {
		t.Run(tt.checksum, func(t *testing.T) {
			algo, _, err := ParseChecksum(tt.checksum)
			require.NoError(t, err)
			assert.Equal(t, tt.algo, algo)

			ok, err := VerifyChecksum(data, tt.checksum)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
		})
	}

	_, _, err := ParseChecksum("md5:abc")
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	data := []byte("hello")

	assert.NoError(t, Verify(data, ""))
	assert.NoError(t, Verify(data, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"))

	err := Verify(data, "sha1:0000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, ckerrors.ErrChecksumMismatch)
	assert.Contains(t, err.Error(), "got sha1:aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d")

	err = Verify(data, "md5:abc")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ckerrors.ErrChecksumMismatch)
}
