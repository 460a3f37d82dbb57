package validation

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"paperpitch/core"
)

// defaultOpenAIEndpoint is checked when no OPENAI_BASE_URL override is set.
const defaultOpenAIEndpoint = "https://api.openai.com/v1"

// ConnectivityResult represents the result of a connectivity check.
type ConnectivityResult struct {
	Reachable  bool
	StatusCode int
	Message    string
	Latency    time.Duration
	Error      error
}

// ConnectivityChecker provides methods to verify network connectivity.
// This is a molecule that composes URL validation with HTTP connectivity tests.
type ConnectivityChecker struct {
	timeout              time.Duration
	allowSelfSignedCerts bool
}

// NewConnectivityChecker creates a new ConnectivityChecker with default settings.
// Default timeout is 10 seconds.
func NewConnectivityChecker() *ConnectivityChecker {
	return &ConnectivityChecker{
		timeout:              10 * time.Second,
		allowSelfSignedCerts: false,
	}
}

// WithTimeout sets the timeout for connectivity checks.
func (c *ConnectivityChecker) WithTimeout(timeout time.Duration) *ConnectivityChecker {
	c.timeout = timeout
	return c
}

// WithAllowSelfSignedCerts configures whether to allow self-signed certificates.
func (c *ConnectivityChecker) WithAllowSelfSignedCerts(allow bool) *ConnectivityChecker {
	c.allowSelfSignedCerts = allow
	return c
}

// CheckServerConnectivity tests if a server is reachable using an HTTP HEAD
// request. The URL format is validated first, then a network connection is
// attempted.
//
// Any HTTP response counts as reachable: a 401 or 404 from an API endpoint
// still proves the host answers.
func (c *ConnectivityChecker) CheckServerConnectivity(serverURL string) ConnectivityResult {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.CheckServerConnectivityWithContext(ctx, serverURL)
}

// CheckServerConnectivityWithContext tests server connectivity with a custom
// context for cancellation or deadline control.
func (c *ConnectivityChecker) CheckServerConnectivityWithContext(ctx context.Context, serverURL string) ConnectivityResult {
	if err := ValidateServerURL(serverURL); err != nil {
		return ConnectivityResult{
			Reachable: false,
			Message:   "Invalid URL format",
			Error:     core.ErrInvalidBaseURL("server URL", serverURL, err.Error()),
		}
	}

	client := createHTTPClient(c.timeout, c.allowSelfSignedCerts)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, serverURL, nil)
	if err != nil {
		return ConnectivityResult{
			Reachable: false,
			Message:   "Failed to create request",
			Error:     core.ErrServiceUnreachable("server", serverURL, err.Error()),
		}
	}

	startTime := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(startTime)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || ctx.Err() == context.Canceled {
			return ConnectivityResult{
				Reachable: false,
				Message:   "Request cancelled or timed out",
				Latency:   latency,
				Error:     core.ErrServiceUnreachable("server", serverURL, ctx.Err().Error()),
			}
		}
		return ConnectivityResult{
			Reachable: false,
			Message:   "Connection failed",
			Latency:   latency,
			Error:     core.ErrServiceUnreachable("server", serverURL, err.Error()),
		}
	}
	defer resp.Body.Close()

	return ConnectivityResult{
		Reachable:  true,
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("Server reachable (status: %d)", resp.StatusCode),
		Latency:    latency,
	}
}

// IsReachable is a convenience function to check if a server is reachable.
// Returns true if the server responds, false otherwise.
func (c *ConnectivityChecker) IsReachable(serverURL string) bool {
	result := c.CheckServerConnectivity(serverURL)
	return result.Reachable
}

// CheckOpenAIConnectivity checks connectivity to the completion endpoint
// using the OPENAI_BASE_URL environment variable, falling back to the
// hosted OpenAI API when unset.
func (c *ConnectivityChecker) CheckOpenAIConnectivity() ConnectivityResult {
	baseURL := core.GetEnvOrDefault("OPENAI_BASE_URL", defaultOpenAIEndpoint)

	if err := ValidateServerURL(baseURL); err != nil {
		return ConnectivityResult{
			Reachable: false,
			Message:   "Invalid OpenAI base URL",
			Error:     core.ErrInvalidBaseURL("OPENAI_BASE_URL", baseURL, err.Error()),
		}
	}

	return c.CheckServerConnectivity(baseURL)
}

// createHTTPClient creates an HTTP client with the given timeout and TLS
// settings. Shared by the connectivity, extraction, and prompt store
// checkers.
func createHTTPClient(timeout time.Duration, allowSelfSignedCerts bool) *http.Client {
	client := &http.Client{
		Timeout: timeout,
	}

	if allowSelfSignedCerts {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return client
}
