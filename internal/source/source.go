// Package source fetches a search index from disk or over HTTP.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
)

// ErrUnsupported is returned for locations no Source can read
var ErrUnsupported = errors.New("unsupported index source")

// Source yields the raw JSON bytes of a search index.
// Callers must close the returned reader.
type Source interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// New picks a Source for location: http(s) URLs are fetched over the
// network with timeout, everything else is treated as a file path.
func New(location string, timeout time.Duration) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrUnsupported)
	}

	if strings.Contains(location, "://") {
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		switch u.Scheme {
		case "http", "https":
			return NewHTTP(location, timeout), nil
		case "file":
			return NewFile(u.Path), nil
		default:
			return nil, fmt.Errorf("%w: scheme %q", ErrUnsupported, u.Scheme)
		}
	}

	return NewFile(location), nil
}

// Static serves an in-memory index. Useful for tests and embedding.
type Static []byte

// Fetch returns a reader over the static bytes
func (s Static) Fetch(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(s)), nil
}

func (s Static) String() string {
	return "static index"
}
