// Package contacts is the client for the worker's file parsing service.
package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cristianoliveira/sendpanel/internal/config"
	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/errors"
	"github.com/cristianoliveira/sendpanel/internal/logging"
)

// Endpoint paths on the worker.
const (
	pathUpload   = "/api/upload"
	pathFiles    = "/api/files"
	pathValidate = "/api/validate-file/"
	pathPreview  = "/api/contacts/preview/"
	pathHealth   = "/health"

	uploadField = "file"
)

// UploadResult is the parsed outcome of an accepted upload.
type UploadResult struct {
	Filename     string           `json:"filename"`
	ContactCount int              `json:"contact_count"`
	Preview      []domain.Contact `json:"preview"`
}

// ContactFile converts the result into the domain type. displayName is the
// name the operator submitted; it defaults to the server filename.
func (r UploadResult) ContactFile(displayName string) (domain.ContactFile, error) {
	if displayName == "" {
		displayName = r.Filename
	}
	return domain.NewContactFile(r.Filename, displayName, r.ContactCount, r.Preview)
}

// RemoteFile describes a contacts file already stored on the worker.
type RemoteFile struct {
	Name         string  `json:"name"`
	Size         int64   `json:"size"`
	ContactCount int     `json:"contact_count"`
	Modified     float64 `json:"modified"`
	Unreadable   bool    `json:"error"`
}

// ModifiedAt returns the modification time reported by the worker.
func (f RemoteFile) ModifiedAt() time.Time {
	sec := int64(f.Modified)
	nsec := int64((f.Modified - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// Validation summarizes phone validity for a stored file.
type Validation struct {
	TotalContacts int              `json:"total_contacts"`
	ValidPhones   int              `json:"valid_phones"`
	InvalidPhones int              `json:"invalid_phones"`
	Sample        []domain.Contact `json:"sample_contacts"`
}

// Preview is the first rows of a stored file.
type Preview struct {
	TotalContacts int              `json:"total_contacts"`
	Contacts      []domain.Contact `json:"preview"`
}

// Health is the worker's health report.
type Health struct {
	Status    string  `json:"status"`
	Service   string  `json:"service"`
	Timestamp float64 `json:"timestamp"`
}

// Client talks to the file parsing service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

// NewClient creates a client for the worker at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("component", "contacts"),
	}
}

// NewFromConfig creates a client from server_url and request_timeout.
func NewFromConfig(logger logging.Logger) *Client {
	return NewClient(
		config.Get("server_url", "http://localhost:5000"),
		config.GetDuration("request_timeout", 30*time.Second),
		logger,
	)
}

// BaseURL returns the worker address the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// envelope is the common response wrapper. Success is a pointer so
// endpoints that omit it (health) are not treated as failures.
type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

// Upload sends the file content for parsing. A rejection by the service is
// returned as a validation error carrying the service's message verbatim.
func (c *Client) Upload(ctx context.Context, name string, content io.Reader) (UploadResult, error) {
	const op = "contacts.upload"
	if strings.TrimSpace(name) == "" {
		return UploadResult{}, errors.Validation(op, "file name cannot be empty")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(uploadField, name)
	if err != nil {
		return UploadResult{}, errors.Transport(op, "failed to build upload", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return UploadResult{}, errors.Transport(op, "failed to read file", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, errors.Transport(op, "failed to build upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathUpload, &body)
	if err != nil {
		return UploadResult{}, errors.Transport(op, "failed to build request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result UploadResult
	if err := c.do(op, req, &result); err != nil {
		return UploadResult{}, err
	}
	c.logger.Info("uploaded", "file", result.Filename, "contacts", result.ContactCount)
	return result, nil
}

// ListFiles lists the contacts files stored on the worker.
func (c *Client) ListFiles(ctx context.Context) ([]RemoteFile, error) {
	var out struct {
		Files []RemoteFile `json:"files"`
	}
	if err := c.get(ctx, "contacts.list", pathFiles, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// Validate asks the worker to check phone numbers in a stored file.
func (c *Client) Validate(ctx context.Context, name string) (Validation, error) {
	var out Validation
	if err := c.get(ctx, "contacts.validate", pathValidate+url.PathEscape(name), &out); err != nil {
		return Validation{}, err
	}
	return out, nil
}

// Preview returns the first rows of a stored file.
func (c *Client) Preview(ctx context.Context, name string) (Preview, error) {
	var out Preview
	if err := c.get(ctx, "contacts.preview", pathPreview+url.PathEscape(name), &out); err != nil {
		return Preview{}, err
	}
	return out, nil
}

// Health reports the worker's health.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	if err := c.get(ctx, "contacts.health", pathHealth, &out); err != nil {
		return Health{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Transport(op, "failed to build request", err)
	}
	return c.do(op, req, out)
}

// do executes req and decodes the JSON body into out. The service reports
// failures in-band as {success:false, error}; those become validation
// errors. Anything that prevents a readable answer is a transport error.
func (c *Client) do(op string, req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "op", op, "url", req.URL.String(), "error", err.Error())
		return errors.Transport(op, "file service unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Transport(op, "failed to read response", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return errors.Transport(op, fmt.Sprintf("unexpected response (HTTP %d)", resp.StatusCode), err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = "request rejected by file service"
		}
		c.logger.Info("rejected", "op", op, "error", msg)
		return errors.Validation(op, msg)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return errors.Transport(op, fmt.Sprintf("file service returned HTTP %d", resp.StatusCode), nil)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.Transport(op, "failed to decode response", err)
	}
	return nil
}
