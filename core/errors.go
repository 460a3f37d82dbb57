package core

import (
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeEnvFileMissing     = "ENV_FILE_MISSING"
	ErrCodeMissingConfig      = "MISSING_CONFIG"
	ErrCodeMissingAuth        = "MISSING_AUTH"
	ErrCodeIncompleteAuth     = "INCOMPLETE_AUTH"
	ErrCodeAuthFailed         = "AUTH_FAILED"
	ErrCodeInvalidBaseURL     = "INVALID_BASE_URL"
	ErrCodeServiceUnreachable = "SERVICE_UNREACHABLE"
	ErrCodeDirUnavailable     = "DIR_UNAVAILABLE"
)

// ErrEnvFileMissing returns an error for missing .env file
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Configuration file not found: %s", path),
		Action:  "Copy example.env to .env and configure the required values",
	}
}

// ErrMissingConfig returns an error for missing required configuration
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in your .env file", varName),
	}
}

// ErrMissingAuth returns an error for missing authentication credentials
func ErrMissingAuth(service string) *ConfigError {
	var action string
	switch service {
	case "openai":
		action = "Set OPENAI_API_KEY in your .env file"
	case "langfuse":
		action = "Set LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY in your .env file"
	default:
		action = fmt.Sprintf("Set the required API key for %s in your .env file", service)
	}
	return &ConfigError{
		Code:    ErrCodeMissingAuth,
		Message: fmt.Sprintf("Missing authentication credentials for %s", service),
		Action:  action,
	}
}

// ErrIncompleteAuth returns an error for partially configured credentials,
// such as a prompt-store public key without its secret key.
func ErrIncompleteAuth(service string, detail string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeIncompleteAuth,
		Message: fmt.Sprintf("Incomplete credentials for %s: %s", service, detail),
		Action:  "Set both keys, or unset both to disable the service",
	}
}

// ErrAuthFailed returns an error when a service rejects the configured
// credentials. Unlike ErrMissingAuth, the credentials are present but wrong.
func ErrAuthFailed(service string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeAuthFailed,
		Message: fmt.Sprintf("Authentication failed for %s: %s", service, reason),
		Action:  "Verify the configured credentials are correct and have not been revoked",
	}
}

// ErrInvalidBaseURL returns an error for a malformed service endpoint
func ErrInvalidBaseURL(varName string, url string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidBaseURL,
		Message: fmt.Sprintf("Invalid %s '%s': %s", varName, url, reason),
		Action:  fmt.Sprintf("Set %s to a valid URL (e.g., https://example.com)", varName),
	}
}

// ErrServiceUnreachable returns an error when an external service cannot be reached
func ErrServiceUnreachable(service string, url string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeServiceUnreachable,
		Message: fmt.Sprintf("Cannot connect to %s at %s: %s", service, url, reason),
		Action:  "Check that the URL is correct and the service is running. For self-signed certificates, set ALLOW_SELF_SIGNED_CERTS=true",
	}
}

// ErrDirUnavailable returns an error when a required directory cannot be
// created or written to.
func ErrDirUnavailable(name string, path string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeDirUnavailable,
		Message: fmt.Sprintf("Cannot use %s directory %s: %s", name, path, reason),
		Action:  fmt.Sprintf("Check permissions for %s or point %s elsewhere", path, name),
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so
func IsConfigError(err error) (*ConfigError, bool) {
	if configErr, ok := err.(*ConfigError); ok {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
