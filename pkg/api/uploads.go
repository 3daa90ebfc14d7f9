package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// File is an uploaded document as listed by the backend. URL is the
// absolute resource URL used for edits and deletes.
type File struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	Description string `json:"description"`
	Uploaded    bool   `json:"uploaded"`
	Created     string `json:"date_created"`
}

// UploadParams is the backend's answer to an upload request.
type UploadParams struct {
	ObjectKey          string `json:"object_key"`
	UploadURL          string `json:"upload_url"`
	BucketURL          string `json:"bucket_url"`
	Bucket             string `json:"bucket"`
	Region             string `json:"region"`
	AccessKeyID        string `json:"access_key_id"`
	CacheControl       string `json:"cache_control"`
	ContentDisposition string `json:"content_disposition"`
	ACL                string `json:"acl"`
	Encryption         string `json:"server_side_encryption"`
}

// Target returns where the bytes go: the presigned upload URL, or the bucket
// URL joined with the object key.
func (p UploadParams) Target() string {
	if p.UploadURL != "" {
		return p.UploadURL
	}
	if p.BucketURL == "" {
		return ""
	}
	return strings.TrimRight(p.BucketURL, "/") + "/" + strings.TrimLeft(p.ObjectKey, "/")
}

// UploadRequest describes one local file to upload.
type UploadRequest struct {
	Name   string
	Type   string
	Size   int64
	Year   string
	Target string
	Body   io.Reader
}

// ProgressFunc receives the uploaded fraction in [0, 1].
type ProgressFunc func(fraction float64)

// UploadService wraps the file listing and upload endpoints.
type UploadService struct {
	client *Client
}

// NewUploadService binds the service to client.
func NewUploadService(client *Client) *UploadService {
	return &UploadService{client: client}
}

func filesPath(year, target string) string {
	if target == "" {
		return fmt.Sprintf("/api/returns/%s/files/?only_uploaded=1", url.PathEscape(year))
	}
	return fmt.Sprintf("/api/returns/%s/%s/files/?only_uploaded=1", url.PathEscape(year), url.PathEscape(target))
}

// Files lists uploaded files for year, optionally scoped to a target user.
func (s *UploadService) Files(ctx context.Context, year, target string) ([]File, error) {
	var out []File
	if err := s.client.Get(ctx, filesPath(year, target), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteFile removes the file at its resource URL.
func (s *UploadService) DeleteFile(ctx context.Context, fileURL string) error {
	return s.client.Delete(ctx, fileURL)
}

// UpdateDescription edits a file description and returns the stored file.
func (s *UploadService) UpdateDescription(ctx context.Context, fileURL, description string) (File, error) {
	var out File
	if err := s.client.Patch(ctx, fileURL, Form{"description": description}, &out); err != nil {
		return File{}, err
	}
	return out, nil
}

// Params asks the backend where to put a file.
func (s *UploadService) Params(ctx context.Context, req UploadRequest) (UploadParams, error) {
	form := Form{
		"destination": "uploads",
		"file_name":   req.Name,
		"file_size":   strconv.FormatInt(req.Size, 10),
		"file_type":   req.Type,
		"year":        req.Year,
	}
	if req.Target != "" {
		form["target"] = req.Target
	}
	var out UploadParams
	if err := s.client.Post(ctx, "/api/uploads/params", form, &out); err != nil {
		return UploadParams{}, err
	}
	return out, nil
}

// Complete marks the object as uploaded.
func (s *UploadService) Complete(ctx context.Context, objectKey string) error {
	return s.client.Post(ctx, "/api/uploads/complete", Form{"object_key": objectKey}, nil)
}

// Put streams the bytes to the storage URL in a single request, reporting
// progress as they are read.
func (s *UploadService) Put(ctx context.Context, params UploadParams, req UploadRequest, progress ProgressFunc) error {
	if req.Body == nil {
		return fmt.Errorf("api: upload %q has no body", req.Name)
	}
	target := params.Target()
	if target == "" {
		return fmt.Errorf("api: upload params for %q carry no destination", req.Name)
	}
	body := &progressReader{r: req.Body, total: req.Size, report: progress}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, target, body)
	if err != nil {
		return fmt.Errorf("api: new upload request: %w", err)
	}
	httpReq.ContentLength = req.Size
	if req.Type != "" {
		httpReq.Header.Set("Content-Type", req.Type)
	}
	if params.CacheControl != "" {
		httpReq.Header.Set("Cache-Control", params.CacheControl)
	}
	if params.ContentDisposition != "" {
		httpReq.Header.Set("Content-Disposition", params.ContentDisposition)
	}
	if params.ACL != "" {
		httpReq.Header.Set("x-amz-acl", params.ACL)
	}
	if params.Encryption != "" {
		httpReq.Header.Set("x-amz-server-side-encryption", params.Encryption)
	}

	resp, err := s.client.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("api: upload %q: %w", req.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return DecodeError(resp)
	}
	if progress != nil {
		progress(1)
	}
	return nil
}

// Upload runs the three step protocol (params, direct upload, complete) and
// returns the object key.
func (s *UploadService) Upload(ctx context.Context, req UploadRequest, progress ProgressFunc) (string, error) {
	params, err := s.Params(ctx, req)
	if err != nil {
		return "", err
	}
	if err := s.Put(ctx, params, req, progress); err != nil {
		return "", err
	}
	if err := s.Complete(ctx, params.ObjectKey); err != nil {
		return "", err
	}
	s.client.logger.Debug().Str("file", req.Name).Str("object_key", params.ObjectKey).Msg("upload complete")
	return params.ObjectKey, nil
}

type progressReader struct {
	r      io.Reader
	read   int64
	total  int64
	report ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)
	if p.report != nil && p.total > 0 && n > 0 {
		fraction := float64(p.read) / float64(p.total)
		if fraction > 1 {
			fraction = 1
		}
		p.report(fraction)
	}
	return n, err
}
