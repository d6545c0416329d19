package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// File reads an index from the local filesystem. Files ending in .zst or
// .gz are decompressed transparently.
type File struct {
	Path string
}

// NewFile creates a File source
func NewFile(path string) *File {
	return &File{Path: path}
}

// Fetch opens the file and wraps it in a decompressor when needed
func (f *File) Fetch(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		rc := dec.IOReadCloser()
		return &stackedReader{Reader: rc, closers: []io.Closer{rc, file}}, nil
	case ".gz":
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return &stackedReader{Reader: gz, closers: []io.Closer{gz, file}}, nil
	}

	return file, nil
}

func (f *File) String() string {
	return f.Path
}

// stackedReader closes a decompressor and the underlying file together
type stackedReader struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReader) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
