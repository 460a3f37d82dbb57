package validation

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paperpitch/core"
	"paperpitch/promptstore"
)

// newPromptServer returns a server that answers the store's prompt fetch
// endpoint with the given status and body.
func newPromptServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, _, ok := r.BasicAuth(); !ok || user == "" {
			t.Error("Expected Basic auth on prompt fetch")
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
}

const testPromptBody = `{
	"name": "paper-pitch",
	"version": 3,
	"type": "text",
	"prompt": "You are a research assistant.",
	"labels": ["production"]
}`

func TestPromptStoreChecker_CheckPromptAccess(t *testing.T) {
	t.Run("prompt available", func(t *testing.T) {
		server := newPromptServer(t, http.StatusOK, testPromptBody)
		defer server.Close()

		c := NewPromptStoreChecker().WithTimeout(2 * time.Second)
		result := c.CheckPromptAccess(server.URL, "pk-lf-test", "sk-lf-test", "paper-pitch", "production")

		if !result.Accessible {
			t.Fatalf("CheckPromptAccess() Accessible = false: %v", result.Error)
		}
		if result.Version != 3 {
			t.Errorf("Version = %d, want 3", result.Version)
		}
		if result.Error != nil {
			t.Errorf("unexpected error: %v", result.Error)
		}
	})

	t.Run("prompt not found with valid credentials", func(t *testing.T) {
		server := newPromptServer(t, http.StatusNotFound, `{"message":"not found"}`)
		defer server.Close()

		c := NewPromptStoreChecker().WithTimeout(2 * time.Second)
		result := c.CheckPromptAccess(server.URL, "pk-lf-test", "sk-lf-test", "wrong-name", "production")

		if !result.Accessible {
			t.Error("CheckPromptAccess() Accessible = false, store answered so credentials work")
		}
		if !errors.Is(result.Error, promptstore.ErrNotFound) {
			t.Errorf("error = %v, want wrapped ErrNotFound", result.Error)
		}
	})

	t.Run("invalid credentials", func(t *testing.T) {
		server := newPromptServer(t, http.StatusUnauthorized, `{"message":"invalid credentials"}`)
		defer server.Close()

		c := NewPromptStoreChecker().WithTimeout(2 * time.Second)
		result := c.CheckPromptAccess(server.URL, "pk-lf-bad", "sk-lf-bad", "paper-pitch", "production")

		if result.Accessible {
			t.Error("CheckPromptAccess() Accessible = true for rejected credentials")
		}
		if core.GetErrorCode(result.Error) != core.ErrCodeAuthFailed {
			t.Errorf("error code = %q, want %q",
				core.GetErrorCode(result.Error), core.ErrCodeAuthFailed)
		}
	})

	t.Run("access denied", func(t *testing.T) {
		server := newPromptServer(t, http.StatusForbidden, `{"message":"forbidden"}`)
		defer server.Close()

		c := NewPromptStoreChecker().WithTimeout(2 * time.Second)
		result := c.CheckPromptAccess(server.URL, "pk-lf-test", "sk-lf-test", "paper-pitch", "production")

		if result.Accessible {
			t.Error("CheckPromptAccess() Accessible = true for 403")
		}
		if core.GetErrorCode(result.Error) != core.ErrCodeAuthFailed {
			t.Errorf("error code = %q, want %q",
				core.GetErrorCode(result.Error), core.ErrCodeAuthFailed)
		}
	})

	t.Run("store error", func(t *testing.T) {
		server := newPromptServer(t, http.StatusInternalServerError, "")
		defer server.Close()

		c := NewPromptStoreChecker().WithTimeout(2 * time.Second)
		result := c.CheckPromptAccess(server.URL, "pk-lf-test", "sk-lf-test", "paper-pitch", "production")

		if result.Accessible {
			t.Error("CheckPromptAccess() Accessible = true for 500")
		}
		if core.GetErrorCode(result.Error) != core.ErrCodeServiceUnreachable {
			t.Errorf("error code = %q, want %q",
				core.GetErrorCode(result.Error), core.ErrCodeServiceUnreachable)
		}
	})

	t.Run("unreachable store", func(t *testing.T) {
		c := NewPromptStoreChecker().WithTimeout(1 * time.Second)
		result := c.CheckPromptAccess("http://localhost:59999", "pk-lf-test", "sk-lf-test", "paper-pitch", "production")

		if result.Accessible {
			t.Error("CheckPromptAccess() Accessible = true for unreachable store")
		}
		if result.Message != "Connection failed" {
			t.Errorf("Message = %q, want connection failure", result.Message)
		}
	})

	t.Run("no credentials", func(t *testing.T) {
		c := NewPromptStoreChecker()
		result := c.CheckPromptAccess("", "", "", "paper-pitch", "production")

		if result.Accessible {
			t.Error("CheckPromptAccess() Accessible = true without credentials")
		}
		if core.GetErrorCode(result.Error) != core.ErrCodeMissingAuth {
			t.Errorf("error code = %q, want %q",
				core.GetErrorCode(result.Error), core.ErrCodeMissingAuth)
		}
	})

	t.Run("partial credentials", func(t *testing.T) {
		c := NewPromptStoreChecker()
		result := c.CheckPromptAccess("", "pk-lf-test", "", "paper-pitch", "production")

		if result.Accessible {
			t.Error("CheckPromptAccess() Accessible = true with half a credential pair")
		}
		if core.GetErrorCode(result.Error) != core.ErrCodeIncompleteAuth {
			t.Errorf("error code = %q, want %q",
				core.GetErrorCode(result.Error), core.ErrCodeIncompleteAuth)
		}
	})
}

func TestPromptStoreChecker_CheckConfiguredStore(t *testing.T) {
	server := newPromptServer(t, http.StatusOK, testPromptBody)
	defer server.Close()

	clearPipelineEnv(t)
	t.Setenv("LANGFUSE_BASE_URL", server.URL)
	t.Setenv("LANGFUSE_PUBLIC_KEY", "pk-lf-test")
	t.Setenv("LANGFUSE_SECRET_KEY", "sk-lf-test")
	t.Setenv("PROMPT_NAME", "paper-pitch")

	c := NewPromptStoreChecker().WithTimeout(2 * time.Second)
	result := c.CheckConfiguredStore()

	if !result.Accessible {
		t.Fatalf("CheckConfiguredStore() Accessible = false: %v", result.Error)
	}
	if result.Version != 3 {
		t.Errorf("Version = %d, want 3", result.Version)
	}
}

func TestPromptStoreChecker_IsAccessible(t *testing.T) {
	okServer := newPromptServer(t, http.StatusOK, testPromptBody)
	defer okServer.Close()

	missingServer := newPromptServer(t, http.StatusNotFound, `{"message":"not found"}`)
	defer missingServer.Close()

	c := NewPromptStoreChecker().WithTimeout(2 * time.Second)

	if !c.IsAccessible(okServer.URL, "pk-lf-test", "sk-lf-test", "paper-pitch", "production") {
		t.Error("IsAccessible() should return true when the prompt is fetchable")
	}

	// Working credentials but missing prompt: accessible store, not a
	// usable prompt, so the convenience check reports false.
	if c.IsAccessible(missingServer.URL, "pk-lf-test", "sk-lf-test", "paper-pitch", "production") {
		t.Error("IsAccessible() should return false when the prompt is missing")
	}
}

func TestPromptStoreChecker_BuilderPattern(t *testing.T) {
	c := NewPromptStoreChecker().
		WithTimeout(5 * time.Second).
		WithAllowSelfSignedCerts(true)

	if c.timeout != 5*time.Second {
		t.Errorf("WithTimeout() did not set timeout correctly")
	}
	if !c.allowSelfSignedCerts {
		t.Errorf("WithAllowSelfSignedCerts() did not set flag correctly")
	}
}
