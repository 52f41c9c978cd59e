// Package download fetches bytes, JSON documents and files over HTTP.
//
// Every failure is a *RequestError carrying the URL; a 404 matches
// ErrNotFound so callers can fall through to the next mirror. There is no
// retry at this layer.
package download

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/craftkit/pkg/config"
	ckerrors "github.com/provide-io/craftkit/pkg/errors"
	"github.com/provide-io/craftkit/pkg/logging"
)

const partSuffix = ".part"

// Client is a shared HTTP client. It is safe for concurrent use.
type Client struct {
	http      *http.Client
	userAgent string
	logger    hclog.Logger
}

// New builds a client whose timeout and User-Agent come from cfg.
func New(cfg *config.Config, logger hclog.Logger) *Client {
	return &Client{
		http:      &http.Client{Timeout: cfg.HTTPTimeout},
		userAgent: "craftkit/" + cfg.LauncherVersion,
		logger:    logging.OrNull(logger).Named("download"),
	}
}

// open issues a GET and returns the body of a 2xx response.
func (c *Client) open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ckerrors.RequestError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Trace("🌐 GET", "url", url)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ckerrors.RequestError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		c.logger.Debug("🌐 Request failed", "url", url, "status", resp.StatusCode)
		return nil, &ckerrors.RequestError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return resp.Body, nil
}

// Bytes downloads url into memory.
func (c *Client) Bytes(ctx context.Context, url string) ([]byte, error) {
	body, err := c.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &ckerrors.RequestError{URL: url, Err: err}
	}
	return data, nil
}

// BytesVerified is Bytes with a checksum check. checksum is "algo:hex" or
// bare hex (see ParseChecksum); empty skips the check.
func (c *Client) BytesVerified(ctx context.Context, url, checksum string) ([]byte, error) {
	data, err := c.Bytes(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := Verify(data, checksum); err != nil {
		c.logger.Warn("🔐 Checksum mismatch", "url", url, "error", err)
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return data, nil
}

// JSON downloads url and decodes it into v.
func (c *Client) JSON(ctx context.Context, url string, v any) error {
	return c.JSONVerified(ctx, url, "", v)
}

// JSONVerified is JSON with a checksum check on the raw document.
func (c *Client) JSONVerified(ctx context.Context, url, checksum string, v any) error {
	data, err := c.BytesVerified(ctx, url, checksum)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ckerrors.JSONError{Content: string(data), Err: err}
	}
	return nil
}

// ToFile streams url to dest, creating parent directories. The body lands in
// a temporary dest.*.part file first, so dest only ever holds a complete
// download and concurrent downloads of one dest never share a file.
func (c *Client) ToFile(ctx context.Context, url, dest string) error {
	return c.toFile(ctx, url, dest, "")
}

// ToFileVerified is ToFile with a checksum check, in the form BytesVerified
// takes. On mismatch nothing is left on disk and the error matches
// ErrChecksumMismatch.
func (c *Client) ToFileVerified(ctx context.Context, url, dest, checksum string) error {
	return c.toFile(ctx, url, dest, checksum)
}

func (c *Client) toFile(ctx context.Context, url, dest, checksum string) error {
	var (
		algo     ChecksumAlgorithm
		expected string
	)
	if checksum != "" {
		var err error
		if algo, expected, err = ParseChecksum(checksum); err != nil {
			return err
		}
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ckerrors.Path("mkdir", dir, err)
	}

	body, err := c.open(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := os.CreateTemp(dir, filepath.Base(dest)+".*"+partSuffix)
	if err != nil {
		return ckerrors.Path("create", dest+partSuffix, err)
	}
	part := out.Name()
	// CreateTemp is owner-only
	if err := out.Chmod(0o644); err != nil {
		out.Close()
		os.Remove(part)
		return ckerrors.Path("chmod", part, err)
	}

	h := algo.New()
	var w io.Writer = out
	if expected != "" {
		w = io.MultiWriter(out, h)
	}

	_, copyErr := io.Copy(w, body)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(part)
		return &ckerrors.RequestError{URL: url, Err: copyErr}
	}
	if closeErr != nil {
		os.Remove(part)
		return ckerrors.Path("close", part, closeErr)
	}

	if expected != "" {
		actual := hex.EncodeToString(h.Sum(nil))
		if actual != expected {
			os.Remove(part)
			c.logger.Warn("🔐 Checksum mismatch", "url", url, "expected", expected, "actual", actual)
			return fmt.Errorf("%w: %s: expected %s:%s, got %s:%s", ckerrors.ErrChecksumMismatch, url, algo, expected, algo, actual)
		}
	}

	if err := atomicReplace(part, dest, c.logger); err != nil {
		os.Remove(part)
		return ckerrors.Path("rename", dest, err)
	}
	return nil
}
