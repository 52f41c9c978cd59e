package codec

import (
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

func init() {
	Register(&lzmaCodec{})
}

// lzmaCodec handles the classic "LZMA alone" container used by runtime manifests.
type lzmaCodec struct{}

func (lzmaCodec) Name() string { return LZMA }

func (lzmaCodec) EncodeStream(input io.Reader, output io.Writer) error {
	lw, err := lzma.NewWriter(output)
	if err != nil {
		return fmt.Errorf("creating lzma writer: %w", err)
	}
	if _, err := io.Copy(lw, input); err != nil {
		lw.Close()
		return fmt.Errorf("compressing stream: %w", err)
	}
	return lw.Close()
}

func (c lzmaCodec) DecodeStream(input io.Reader, output io.Writer) error {
	lr, err := c.NewReader(input)
	if err != nil {
		return err
	}
	defer lr.Close()

	if _, err := io.Copy(output, lr); err != nil {
		return fmt.Errorf("decompressing stream: %w", err)
	}
	return nil
}

func (lzmaCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	lr, err := lzma.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating lzma reader: %w", err)
	}
	return io.NopCloser(lr), nil
}
