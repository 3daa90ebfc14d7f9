// Package upload manages the documents attached to a tax return: listing,
// editing, deleting and concurrent batch uploads with per-file progress.
package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-stepform/pkg/api"
	"github.com/goliatone/go-stepform/pkg/submit"
)

// Messages shown when an operation fails.
const (
	DeleteError = "Whoops, something went wrong deleting your file. Please try again."
	EditError   = "Whoops, something went wrong editing your file. Please try again."
	FetchError  = "Whoops, something went wrong fetching your files. Please try again."
	UploadError = "Whoops, something went wrong uploading your file. Please try again."
)

// ErrBusy is returned when a batch is started while another is running.
var ErrBusy = errors.New("upload: uploads already in progress")

// ErrNoFile is returned for an out of range file index.
var ErrNoFile = errors.New("upload: no such file")

// Service is the subset of api.UploadService the manager needs.
type Service interface {
	Files(ctx context.Context, year, target string) ([]api.File, error)
	DeleteFile(ctx context.Context, fileURL string) error
	UpdateDescription(ctx context.Context, fileURL, description string) (api.File, error)
	Upload(ctx context.Context, req api.UploadRequest, progress api.ProgressFunc) (string, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithConcurrency bounds how many files upload at once. Zero or less means
// unbounded.
func WithConcurrency(n int) Option {
	return func(m *Manager) {
		m.concurrency = n
	}
}

// WithFrozen marks the return as frozen; uploads, edits and deletes are
// refused.
func WithFrozen(frozen bool) Option {
	return func(m *Manager) {
		m.frozen = frozen
	}
}

// Manager holds the file list of one return. Methods are safe for concurrent
// use and never hold the lock across a network call.
type Manager struct {
	mu sync.Mutex

	svc         Service
	year        string
	target      string
	frozen      bool
	concurrency int
	logger      zerolog.Logger

	files         []api.File
	err           string
	progress      map[string]float64
	deletePending bool
	savePending   bool
}

// NewManager builds a manager for the files of year, optionally scoped to a
// target user.
func NewManager(svc Service, year, target string, options ...Option) (*Manager, error) {
	if svc == nil {
		return nil, errors.New("upload: service is required")
	}
	if year == "" {
		return nil, errors.New("upload: year is required")
	}
	m := &Manager{
		svc:      svc,
		year:     year,
		target:   target,
		logger:   zerolog.Nop(),
		progress: make(map[string]float64),
	}
	for _, opt := range options {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// State is a render-ready view of the manager.
type State struct {
	Files                 []api.File
	Error                 string
	Progress              map[string]float64
	TotalProgress         float64
	Uploading             bool
	Frozen                bool
	ConfirmDeleteDisabled bool
	SaveDisabled          bool
}

// State returns a copy of the manager state. Only files marked uploaded are
// listed.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	progress := make(map[string]float64, len(m.progress))
	for name, fraction := range m.progress {
		progress[name] = fraction
	}
	return State{
		Files:                 m.uploadedLocked(),
		Error:                 m.err,
		Progress:              progress,
		TotalProgress:         m.totalLocked(),
		Uploading:             len(m.progress) > 0,
		Frozen:                m.frozen,
		ConfirmDeleteDisabled: m.deletePending,
		SaveDisabled:          m.savePending,
	}
}

// ClearError drops the current error message.
func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = ""
}

// Refresh reloads the file list.
func (m *Manager) Refresh(ctx context.Context) error {
	files, err := m.svc.Files(ctx, m.year, m.target)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.err = FetchError
		m.logger.Warn().Err(err).Str("year", m.year).Msg("fetch files failed")
		return fmt.Errorf("upload: fetch files: %w", err)
	}
	m.files = files
	return nil
}

// Delete removes the file at index of the listed (uploaded) files.
func (m *Manager) Delete(ctx context.Context, index int) error {
	m.mu.Lock()
	file, err := m.fileLocked(index)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.err = ""
	m.deletePending = true
	m.mu.Unlock()

	err = m.svc.DeleteFile(ctx, file.URL)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletePending = false
	if err != nil {
		m.err = DeleteError
		m.logger.Warn().Err(err).Str("file", file.Name).Msg("delete file failed")
		return fmt.Errorf("upload: delete %q: %w", file.Name, err)
	}
	m.removeLocked(file.URL)
	return nil
}

// EditDescription updates the description of the file at index. A general
// message from the backend replaces the default edit error.
func (m *Manager) EditDescription(ctx context.Context, index int, description string) error {
	m.mu.Lock()
	file, err := m.fileLocked(index)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.err = ""
	m.savePending = true
	m.mu.Unlock()

	updated, err := m.svc.UpdateDescription(ctx, file.URL, description)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.savePending = false
	if err != nil {
		m.err = EditError
		var reqErr *submit.RequestError
		if errors.As(err, &reqErr) && reqErr.HasGeneral() {
			m.err = reqErr.General
		}
		return fmt.Errorf("upload: edit %q: %w", file.Name, err)
	}
	for i := range m.files {
		if m.files[i].URL == file.URL {
			m.files[i] = updated
		}
	}
	return nil
}

// UploadBatch uploads every request concurrently. Progress is tracked per
// file name; the batch fails with UploadError on the first failure, the
// remaining uploads still run to completion. On success the file list is
// reloaded.
func (m *Manager) UploadBatch(ctx context.Context, requests []api.UploadRequest) error {
	if len(requests) == 0 {
		return nil
	}
	m.mu.Lock()
	if m.frozen {
		m.mu.Unlock()
		return errors.New("upload: return is frozen")
	}
	if len(m.progress) > 0 {
		m.mu.Unlock()
		return ErrBusy
	}
	m.err = ""
	for _, req := range requests {
		m.progress[req.Name] = 0
	}
	m.mu.Unlock()

	var g errgroup.Group
	if m.concurrency > 0 {
		g.SetLimit(m.concurrency)
	}
	for _, req := range requests {
		req := req
		g.Go(func() error {
			_, err := m.svc.Upload(ctx, req, func(fraction float64) {
				m.setProgress(req.Name, fraction)
			})
			if err != nil {
				return fmt.Errorf("upload: %q: %w", req.Name, err)
			}
			return nil
		})
	}
	err := g.Wait()

	m.mu.Lock()
	m.progress = make(map[string]float64)
	if err != nil {
		m.err = UploadError
		m.mu.Unlock()
		m.logger.Warn().Err(err).Int("files", len(requests)).Msg("upload batch failed")
		return err
	}
	m.mu.Unlock()
	m.logger.Info().Int("files", len(requests)).Msg("upload batch complete")
	return m.Refresh(ctx)
}

func (m *Manager) setProgress(name string, fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.progress[name]; ok {
		m.progress[name] = fraction
	}
}

func (m *Manager) totalLocked() float64 {
	if len(m.progress) == 0 {
		return 0
	}
	var sum float64
	for _, fraction := range m.progress {
		sum += fraction
	}
	return sum / float64(len(m.progress))
}

func (m *Manager) uploadedLocked() []api.File {
	out := make([]api.File, 0, len(m.files))
	for _, file := range m.files {
		if file.Uploaded {
			out = append(out, file)
		}
	}
	return out
}

func (m *Manager) fileLocked(index int) (api.File, error) {
	if m.frozen {
		return api.File{}, errors.New("upload: return is frozen")
	}
	listed := m.uploadedLocked()
	if index < 0 || index >= len(listed) {
		return api.File{}, fmt.Errorf("%w: %d", ErrNoFile, index)
	}
	return listed[index], nil
}

func (m *Manager) removeLocked(fileURL string) {
	out := m.files[:0]
	for _, file := range m.files {
		if file.URL != fileURL {
			out = append(out, file)
		}
	}
	m.files = out
}
