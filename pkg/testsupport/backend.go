package testsupport

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// RecordedRequest is what the scripted backend saw.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	CSRF   string
	Form   map[string]string
	Body   []byte
}

type scriptedResponse struct {
	status int
	body   any
}

// Backend is an httptest server answering from a per-route script. Each
// route replays its responses in order and repeats the last one.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	routes   map[string][]scriptedResponse
	requests []RecordedRequest
}

// NewBackend starts a scripted backend closed at test cleanup.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{routes: make(map[string][]scriptedResponse)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the server base URL.
func (b *Backend) URL() string { return b.Server.URL }

// Respond queues a response for method and path. A string body is written
// verbatim, anything else as JSON; nil writes no body.
func (b *Backend) Respond(method, path string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	b.routes[key] = append(b.routes[key], scriptedResponse{status: status, body: body})
}

// Requests returns every recorded request in arrival order.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// Last returns the most recent request for method and path.
func (b *Backend) Last(method, path string) (RecordedRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if b.requests[i].Method == method && b.requests[i].Path == path {
			return b.requests[i], true
		}
	}
	return RecordedRequest{}, false
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	recorded := RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		CSRF:   r.Header.Get("X-CSRFToken"),
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(32 << 20); err == nil && r.MultipartForm != nil {
			recorded.Form = make(map[string]string, len(r.MultipartForm.Value))
			for key, values := range r.MultipartForm.Value {
				if len(values) > 0 {
					recorded.Form[key] = values[0]
				}
			}
		}
	} else if r.Body != nil {
		recorded.Body, _ = io.ReadAll(r.Body)
	}

	b.mu.Lock()
	b.requests = append(b.requests, recorded)
	key := r.Method + " " + r.URL.Path
	queue := b.routes[key]
	var resp scriptedResponse
	found := len(queue) > 0
	if found {
		resp = queue[0]
		if len(queue) > 1 {
			b.routes[key] = queue[1:]
		}
	}
	b.mu.Unlock()

	if !found {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not found."}`)
		return
	}

	switch body := resp.body.(type) {
	case nil:
		w.WriteHeader(resp.status)
	case string:
		w.WriteHeader(resp.status)
		_, _ = io.WriteString(w, body)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
