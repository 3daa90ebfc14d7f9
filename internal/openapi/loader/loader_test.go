package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
)

func TestLoadFromFS(t *testing.T) {
	l := New(Options{FileSystem: fstest.MapFS{
		"openapi.yaml": {Data: []byte("openapi: 3.0.3")},
	}})
	data, err := l.Load(context.Background(), "openapi.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "openapi: 3.0.3" {
		t.Fatalf("unexpected payload %q", data)
	}
}

func TestLoadFromFSMissingFile(t *testing.T) {
	l := New(Options{FileSystem: fstest.MapFS{}})
	_, err := l.Load(context.Background(), "missing.yaml")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadHTTPRequiresOptIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("openapi: 3.0.3"))
	}))
	defer srv.Close()

	if _, err := New(Options{}).Load(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected http to be disabled by default")
	}
	data, err := New(Options{AllowHTTPFallback: true}).Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "openapi: 3.0.3" {
		t.Fatalf("unexpected payload %q", data)
	}
}
