package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

func CompressLz4(src []byte, output *bytes.Buffer) error {
	zw := lz4.NewWriter(output)

	if _, writeErr := zw.Write(src); writeErr != nil {
		return fmt.Errorf("unable to compress : %s", writeErr.Error())
	}

	flushErr := zw.Flush()

	if flushErr != nil {
		return flushErr
	}

	return zw.Close()
}

func DecompressLz4(src []byte, output *bytes.Buffer) error {
	zr := lz4.NewReader(bytes.NewReader(src))

	if _, readErr := output.ReadFrom(zr); readErr != nil {
		return fmt.Errorf("unable to decompress : %s", readErr.Error())
	}

	return nil
}

// NewLz4Reader decompresses an lz4 frame stream
func NewLz4Reader(r io.Reader) io.Reader {
	return lz4.NewReader(r)
}

// NewLz4Writer compresses into w, Close flushes the last frame block
// and leaves w open
func NewLz4Writer(w io.Writer) io.WriteCloser {
	return lz4.NewWriter(w)
}
