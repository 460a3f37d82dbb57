// Package extraction converts PDF papers into the plain text the report
// pipeline feeds downstream.
//
// client.go implements the Client molecule that delegates PDF parsing to
// a remote document-processor service over HTTP. The service partitions
// the document into layout elements and returns them joined as a single
// content string together with extraction metadata.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ClientConfig holds configuration for the remote extraction client.
type ClientConfig struct {
	// BaseURL is the document-processor endpoint, e.g. "http://localhost:8000"
	BaseURL string

	// HTTPClient is the HTTP client for requests (optional)
	// If nil, a default client with Timeout is created
	HTTPClient *http.Client

	// Timeout for extraction requests when HTTPClient is nil
	// Default: 60 seconds
	Timeout time.Duration
}

// DefaultClientConfig returns sensible defaults for the remote client.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout: 60 * time.Second,
	}
}

// Client extracts text by uploading documents to a remote
// document-processor service.
//
// Thread Safety: Client is safe for concurrent use. Each extraction
// creates its own HTTP request.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// processResponse mirrors the document-processor's JSON response body.
type processResponse struct {
	Status      string  `json:"status"`
	Content     string  `json:"content"`
	NumElements int     `json:"num_elements"`
	FileSizeMB  float64 `json:"file_size_mb"`
}

// healthResponse mirrors the document-processor's health check body.
type healthResponse struct {
	Status string `json:"status"`
}

// NewClient creates a remote extraction client.
//
// Parameters:
//   - config: ClientConfig with the service base URL
//   - logger: structured logger (nil disables logging)
//
// Returns an error when no base URL is configured.
func NewClient(config ClientConfig, logger *zap.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("extraction: client base URL cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultClientConfig().Timeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		client:  httpClient,
		logger:  logger,
	}, nil
}

// BaseURL returns the configured service endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Extract uploads the PDF at path to the document-processor service and
// returns the extracted content.
//
// The upload is a multipart POST to /process_pdf_file with the document
// under the "file" form field. The service responds with the extracted
// text, the number of layout elements, and the document size.
func (c *Client) Extract(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	body, contentType, err := buildUploadBody(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process_pdf_file", body)
	if err != nil {
		return nil, fmt.Errorf("extraction: failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction: upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("extraction: document processor returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var pr processResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("extraction: failed to decode response: %w", err)
	}

	if pr.Status != "success" {
		return nil, fmt.Errorf("extraction: document processor reported status %q", pr.Status)
	}
	if strings.TrimSpace(pr.Content) == "" {
		return nil, ErrNoPDFContent
	}

	c.logger.Debug("remote extraction complete",
		zap.String("path", path),
		zap.Int("num_elements", pr.NumElements),
		zap.Float64("file_size_mb", pr.FileSizeMB),
		zap.Duration("duration", time.Since(start)))

	return &Result{
		Content:     pr.Content,
		NumElements: pr.NumElements,
		FileSizeMB:  pr.FileSizeMB,
	}, nil
}

// Health checks that the document-processor service is reachable and
// reports itself healthy. Used by the startup validation suite.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("extraction: failed to create health request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("extraction: health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("extraction: health check returned status %d", resp.StatusCode)
	}

	var hr healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return fmt.Errorf("extraction: failed to decode health response: %w", err)
	}
	if hr.Status != "healthy" {
		return fmt.Errorf("extraction: service reported status %q", hr.Status)
	}

	return nil
}

// buildUploadBody reads the document into a multipart form body and
// returns the body with its Content-Type. Papers are bounded by the
// pipeline's file size limit, so buffering in memory is fine.
func buildUploadBody(path string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("extraction: failed to open PDF: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("extraction: failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("extraction: failed to read PDF: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("extraction: failed to finalize upload body: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}
