package core

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		contains []string
	}{
		{
			name: "error with action",
			err: &ConfigError{
				Code:    "TEST_CODE",
				Message: "Test message",
				Action:  "Take this action",
			},
			contains: []string{"Test message", "Take this action"},
		},
		{
			name: "error without action",
			err: &ConfigError{
				Code:    "TEST_CODE",
				Message: "Test message only",
				Action:  "",
			},
			contains: []string{"Test message only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(errStr, s) {
					t.Errorf("ConfigError.Error() = %q, expected to contain %q", errStr, s)
				}
			}
		})
	}
}

func TestErrEnvFileMissing(t *testing.T) {
	err := ErrEnvFileMissing(".env")
	if err.Code != ErrCodeEnvFileMissing {
		t.Errorf("Expected code %s, got %s", ErrCodeEnvFileMissing, err.Code)
	}
	if !strings.Contains(err.Message, ".env") {
		t.Errorf("Expected message to contain '.env', got %s", err.Message)
	}
	if !strings.Contains(err.Action, "example.env") {
		t.Errorf("Expected action to mention 'example.env', got %s", err.Action)
	}
}

func TestErrMissingAuth(t *testing.T) {
	tests := []struct {
		service   string
		expectEnv string
	}{
		{"openai", "OPENAI_API_KEY"},
		{"langfuse", "LANGFUSE_PUBLIC_KEY"},
		{"other-service", "other-service"},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			err := ErrMissingAuth(tt.service)
			if err.Code != ErrCodeMissingAuth {
				t.Errorf("Expected code %s, got %s", ErrCodeMissingAuth, err.Code)
			}
			if !strings.Contains(err.Message, tt.service) {
				t.Errorf("Expected message to contain service name, got %s", err.Message)
			}
			if !strings.Contains(err.Action, tt.expectEnv) {
				t.Errorf("Expected action to mention %s, got %s", tt.expectEnv, err.Action)
			}
		})
	}
}

func TestErrIncompleteAuth(t *testing.T) {
	err := ErrIncompleteAuth("langfuse", "secret key missing")
	if err.Code != ErrCodeIncompleteAuth {
		t.Errorf("Expected code %s, got %s", ErrCodeIncompleteAuth, err.Code)
	}
	if !strings.Contains(err.Message, "langfuse") {
		t.Errorf("Expected message to contain service, got %s", err.Message)
	}
	if !strings.Contains(err.Message, "secret key missing") {
		t.Errorf("Expected message to contain detail, got %s", err.Message)
	}
}

func TestErrAuthFailed(t *testing.T) {
	err := ErrAuthFailed("langfuse", "invalid public/secret key pair")
	if err.Code != ErrCodeAuthFailed {
		t.Errorf("Expected code %s, got %s", ErrCodeAuthFailed, err.Code)
	}
	if !strings.Contains(err.Message, "langfuse") {
		t.Errorf("Expected message to contain service, got %s", err.Message)
	}
	if !strings.Contains(err.Message, "invalid public/secret key pair") {
		t.Errorf("Expected message to contain reason, got %s", err.Message)
	}
}

func TestErrInvalidBaseURL(t *testing.T) {
	err := ErrInvalidBaseURL("EXTRACTOR_URL", "not-a-url", "missing scheme")
	if err.Code != ErrCodeInvalidBaseURL {
		t.Errorf("Expected code %s, got %s", ErrCodeInvalidBaseURL, err.Code)
	}
	if !strings.Contains(err.Message, "not-a-url") {
		t.Errorf("Expected message to contain URL, got %s", err.Message)
	}
	if !strings.Contains(err.Message, "missing scheme") {
		t.Errorf("Expected message to contain reason, got %s", err.Message)
	}
	if !strings.Contains(err.Action, "EXTRACTOR_URL") {
		t.Errorf("Expected action to mention EXTRACTOR_URL, got %s", err.Action)
	}
}

func TestErrServiceUnreachable(t *testing.T) {
	err := ErrServiceUnreachable("extractor", "http://localhost:8000", "connection refused")
	if err.Code != ErrCodeServiceUnreachable {
		t.Errorf("Expected code %s, got %s", ErrCodeServiceUnreachable, err.Code)
	}
	if !strings.Contains(err.Message, "extractor") {
		t.Errorf("Expected message to contain service name, got %s", err.Message)
	}
	if !strings.Contains(err.Message, "connection refused") {
		t.Errorf("Expected message to contain reason, got %s", err.Message)
	}
}

func TestErrDirUnavailable(t *testing.T) {
	err := ErrDirUnavailable("reports", "/bad/path", "permission denied")
	if err.Code != ErrCodeDirUnavailable {
		t.Errorf("Expected code %s, got %s", ErrCodeDirUnavailable, err.Code)
	}
	if !strings.Contains(err.Message, "/bad/path") {
		t.Errorf("Expected message to contain path, got %s", err.Message)
	}
}

func TestIsConfigError(t *testing.T) {
	configErr := ErrMissingConfig("OPENAI_API_KEY")

	got, ok := IsConfigError(configErr)
	if !ok {
		t.Error("IsConfigError() = false for a ConfigError")
	}
	if got != configErr {
		t.Error("IsConfigError() did not return the original error")
	}

	plainErr := errors.New("plain error")
	if _, ok := IsConfigError(plainErr); ok {
		t.Error("IsConfigError() = true for a plain error")
	}
}

func TestGetErrorCode(t *testing.T) {
	if code := GetErrorCode(ErrMissingAuth("openai")); code != ErrCodeMissingAuth {
		t.Errorf("GetErrorCode() = %q, want %q", code, ErrCodeMissingAuth)
	}
	if code := GetErrorCode(errors.New("plain")); code != "" {
		t.Errorf("GetErrorCode() = %q for plain error, want empty", code)
	}
}
