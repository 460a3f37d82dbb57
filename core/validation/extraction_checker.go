package validation

import (
	"context"
	"fmt"
	"time"

	"paperpitch/core"
	"paperpitch/extraction"
)

// ExtractionServiceResult represents the result of a document-processor
// service check.
type ExtractionServiceResult struct {
	Available bool
	Message   string
	Latency   time.Duration
	Error     error
}

// ExtractionChecker verifies that a remote extraction service is reachable
// and reports itself healthy. This is a molecule that composes URL
// validation with the extraction client's health endpoint.
type ExtractionChecker struct {
	timeout              time.Duration
	allowSelfSignedCerts bool
}

// NewExtractionChecker creates a new ExtractionChecker with default settings.
// Default timeout is 30 seconds.
func NewExtractionChecker() *ExtractionChecker {
	return &ExtractionChecker{
		timeout:              30 * time.Second,
		allowSelfSignedCerts: false,
	}
}

// WithTimeout sets the timeout for service checks.
func (c *ExtractionChecker) WithTimeout(timeout time.Duration) *ExtractionChecker {
	c.timeout = timeout
	return c
}

// WithAllowSelfSignedCerts configures whether to allow self-signed certificates.
func (c *ExtractionChecker) WithAllowSelfSignedCerts(allow bool) *ExtractionChecker {
	c.allowSelfSignedCerts = allow
	return c
}

// CheckService verifies the document-processor service at serviceURL.
//
// Returns an ExtractionServiceResult with detailed information about the check.
func (c *ExtractionChecker) CheckService(serviceURL string) ExtractionServiceResult {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.CheckServiceWithContext(ctx, serviceURL)
}

// CheckServiceWithContext verifies the service with a custom context for
// cancellation or deadline control.
func (c *ExtractionChecker) CheckServiceWithContext(ctx context.Context, serviceURL string) ExtractionServiceResult {
	if err := ValidateServerURL(serviceURL); err != nil {
		return ExtractionServiceResult{
			Available: false,
			Message:   "Invalid extraction service URL",
			Error:     core.ErrInvalidBaseURL("EXTRACTOR_URL", serviceURL, err.Error()),
		}
	}

	client, err := extraction.NewClient(extraction.ClientConfig{
		BaseURL:    serviceURL,
		HTTPClient: createHTTPClient(c.timeout, c.allowSelfSignedCerts),
	}, nil)
	if err != nil {
		return ExtractionServiceResult{
			Available: false,
			Message:   "Extraction client rejected configuration",
			Error:     err,
		}
	}

	startTime := time.Now()
	err = client.Health(ctx)
	latency := time.Since(startTime)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || ctx.Err() == context.Canceled {
			return ExtractionServiceResult{
				Available: false,
				Message:   "Health check cancelled or timed out",
				Latency:   latency,
				Error:     core.ErrServiceUnreachable("extractor", serviceURL, ctx.Err().Error()),
			}
		}
		return ExtractionServiceResult{
			Available: false,
			Message:   "Extraction service unavailable",
			Latency:   latency,
			Error:     core.ErrServiceUnreachable("extractor", serviceURL, err.Error()),
		}
	}

	return ExtractionServiceResult{
		Available: true,
		Message:   fmt.Sprintf("Extraction service healthy at %s", serviceURL),
		Latency:   latency,
	}
}

// CheckConfiguredService verifies the extraction service using the
// EXTRACTOR_URL environment variable.
func (c *ExtractionChecker) CheckConfiguredService() ExtractionServiceResult {
	serviceURL := core.GetEnvOrDefault("EXTRACTOR_URL", "")
	if serviceURL == "" {
		return ExtractionServiceResult{
			Available: false,
			Message:   "EXTRACTOR_URL not configured",
			Error:     core.ErrMissingConfig("EXTRACTOR_URL"),
		}
	}
	return c.CheckService(serviceURL)
}

// IsAvailable is a convenience function to check if the service is healthy.
// Returns true if the health endpoint responds positively, false otherwise.
func (c *ExtractionChecker) IsAvailable(serviceURL string) bool {
	result := c.CheckService(serviceURL)
	return result.Available
}
