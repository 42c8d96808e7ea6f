package io

import (
	"errors"
	stdio "io"
	"os"
	"strings"

	"github.com/dot5enko/simple-range-join/compression"
)

// TableFile is a csv file on disk, transparently lz4 compressed
// when the name ends with `.lz4`
type TableFile struct {
	path   string
	file   *os.File
	opened bool

	exists     bool
	compressed bool

	writer stdio.WriteCloser
}

func NewTableFile(path string) *TableFile {

	_, err := os.Stat(path)

	return &TableFile{
		path:       path,
		exists:     err == nil,
		compressed: strings.HasSuffix(path, ".lz4"),
	}
}

func (f *TableFile) Exists() bool {
	return f.exists
}

func (f *TableFile) Compressed() bool {
	return f.compressed
}

func (f *TableFile) Open(readOnly bool) (topErr error) {

	var perm os.FileMode = 0644

	if readOnly {
		f.file, topErr = os.OpenFile(f.path, os.O_RDONLY, perm)
	} else {
		f.file, topErr = os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	}

	if topErr == nil {
		f.opened = true
	}

	return topErr
}

func (f *TableFile) Reader() (stdio.Reader, error) {
	if !f.opened {
		return nil, errors.New("file not opened")
	}

	if f.compressed {
		return compression.NewLz4Reader(f.file), nil
	}
	return f.file, nil
}

func (f *TableFile) Writer() (stdio.Writer, error) {
	if !f.opened {
		return nil, errors.New("file not opened")
	}

	if !f.compressed {
		return f.file, nil
	}

	if f.writer == nil {
		f.writer = compression.NewLz4Writer(f.file)
	}
	return f.writer, nil
}

// Close flushes pending compressed output before closing the file
func (f *TableFile) Close() error {
	if !f.opened {
		return nil
	}

	f.opened = false

	if f.writer != nil {
		if err := f.writer.Close(); err != nil {
			f.file.Close()
			return err
		}
		f.writer = nil
	}

	return f.file.Close()
}
