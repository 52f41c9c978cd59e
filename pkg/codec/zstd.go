package codec

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

func init() {
	Register(&zstdCodec{})
}

type zstdCodec struct{}

func (zstdCodec) Name() string { return ZSTD }

func (zstdCodec) EncodeStream(input io.Reader, output io.Writer) error {
	zw, err := zstd.NewWriter(output)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := io.Copy(zw, input); err != nil {
		zw.Close()
		return fmt.Errorf("compressing stream: %w", err)
	}
	return zw.Close()
}

func (c zstdCodec) DecodeStream(input io.Reader, output io.Writer) error {
	zr, err := c.NewReader(input)
	if err != nil {
		return err
	}
	defer zr.Close()

	if _, err := io.Copy(output, zr); err != nil {
		return fmt.Errorf("decompressing stream: %w", err)
	}
	return nil
}

func (zstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	return zr.IOReadCloser(), nil
}
