// Package loader reads OpenAPI documents from disk, an fs.FS or HTTP.
package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"
)

// Options configures a Loader.
type Options struct {
	FileSystem        fs.FS
	HTTPClient        *http.Client
	AllowHTTPFallback bool
	RequestTimeout    time.Duration
}

// Loader delegates to file, fs.FS or HTTP strategies depending on the
// location it is given.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

// New constructs a Loader from options.
func New(options Options) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load returns the raw document at location. http(s) URLs are fetched when
// HTTP is enabled; other locations are read from the configured fs.FS when
// there is one, and from disk otherwise.
func (l *Loader) Load(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, errors.New("openapi loader: location is required")
	}
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		if !l.allowHTTP {
			return nil, errors.New("openapi loader: http support disabled")
		}
		return loadHTTP(ctx, l.http, location, l.timeout)
	case l.fs != nil:
		return loadFromFS(ctx, l.fs, location)
	default:
		return loadFile(ctx, location)
	}
}
