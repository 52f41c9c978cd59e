// Package codec is the registry of stream compression formats runtimes are
// shipped in: per-file LZMA in runtime manifests, and gzip/bzip2/zstd
// compressed tarballs from third-party distributions.
package codec

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Codec names
const (
	GZIP  = "gzip"
	BZIP2 = "bzip2"
	LZMA  = "lzma"
	ZSTD  = "zstd"
)

// Codec is a reversible compression format. Installs only decode; the
// encode side builds test fixtures through Encode.
type Codec interface {
	// Name returns the registry key
	Name() string

	// EncodeStream compresses input into output
	EncodeStream(input io.Reader, output io.Writer) error

	// DecodeStream decompresses input into output
	DecodeStream(input io.Reader, output io.Writer) error

	// NewReader wraps r in a decompressing reader
	NewReader(r io.Reader) (io.ReadCloser, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Codec)
)

// Register adds a codec, replacing any codec of the same name.
func Register(c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[c.Name()] = c
}

// Get retrieves a codec by name.
func Get(name string) (Codec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown codec: %s", name)
	}
	return c, nil
}

// Names lists registered codecs, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Encode compresses data in memory.
func Encode(name string, data []byte) ([]byte, error) {
	c, err := Get(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.EncodeStream(bytes.NewReader(data), &buf); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Decode decompresses data in memory.
func Decode(name string, data []byte) ([]byte, error) {
	c, err := Get(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.DecodeStream(bytes.NewReader(data), &buf); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// tarSuffixes maps compressed-tarball extensions to their codec.
var tarSuffixes = []struct {
	suffix string
	codec  string
}{
	{".tar.gz", GZIP},
	{".tgz", GZIP},
	{".tar.bz2", BZIP2},
	{".tbz2", BZIP2},
	{".tar.zst", ZSTD},
	{".tar.lzma", LZMA},
}

// ForTarball returns the codec for a compressed tarball file name, matched
// case-insensitively on its extension. ok is false for anything else.
func ForTarball(fileName string) (c Codec, ok bool) {
	lower := strings.ToLower(fileName)
	for _, s := range tarSuffixes {
		if strings.HasSuffix(lower, s.suffix) {
			c, err := Get(s.codec)
			if err != nil {
				return nil, false
			}
			return c, true
		}
	}
	return nil, false
}
