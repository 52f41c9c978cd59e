package codec

import (
	"compress/gzip"
	"fmt"
	"io"
)

func init() {
	Register(&gzipCodec{})
}

type gzipCodec struct{}

func (gzipCodec) Name() string { return GZIP }

func (gzipCodec) EncodeStream(input io.Reader, output io.Writer) error {
	gw := gzip.NewWriter(output)
	if _, err := io.Copy(gw, input); err != nil {
		gw.Close()
		return fmt.Errorf("compressing stream: %w", err)
	}
	return gw.Close()
}

func (c gzipCodec) DecodeStream(input io.Reader, output io.Writer) error {
	gr, err := c.NewReader(input)
	if err != nil {
		return err
	}
	defer gr.Close()

	if _, err := io.Copy(output, gr); err != nil {
		return fmt.Errorf("decompressing stream: %w", err)
	}
	return nil
}

func (gzipCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	return gr, nil
}
