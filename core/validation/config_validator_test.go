package validation

import (
	"os"
	"path/filepath"
	"testing"

	"paperpitch/core"
)

// pipelineEnvVars lists every variable the validator reads, so tests can
// start from a clean slate regardless of the host environment.
var pipelineEnvVars = []string{
	"OPENAI_API_KEY", "OPENAI_BASE_URL",
	"LANGFUSE_PUBLIC_KEY", "LANGFUSE_SECRET_KEY", "LANGFUSE_BASE_URL",
	"PROMPT_NAME", "PROMPT_LABEL",
	"EXTRACTOR_URL", "UPLOADS_DIR", "REPORTS_DIR", "DB_PATH",
}

func clearPipelineEnv(t *testing.T) {
	t.Helper()
	for _, v := range pipelineEnvVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

// setValidPipelineEnv points every directory at a temp workspace and sets
// the one required credential. Returns the workspace root.
func setValidPipelineEnv(t *testing.T) string {
	t.Helper()
	clearPipelineEnv(t)
	dir := t.TempDir()
	t.Setenv("OPENAI_API_KEY", "sk-test1234567890")
	t.Setenv("UPLOADS_DIR", filepath.Join(dir, "uploads"))
	t.Setenv("REPORTS_DIR", filepath.Join(dir, "reports"))
	t.Setenv("DB_PATH", filepath.Join(dir, "paperpitch.db"))
	return dir
}

func TestConfigValidator_CheckEnvFile(t *testing.T) {
	t.Run("missing file is a warning", func(t *testing.T) {
		v := NewConfigValidator().WithEnvPath(filepath.Join(t.TempDir(), ".env"))
		result := v.CheckEnvFile()

		if result.Valid {
			t.Error("CheckEnvFile() Valid = true for missing file")
		}
		if !result.Warning {
			t.Error("CheckEnvFile() missing file should be a warning, not a failure")
		}
		if result.Error != nil {
			t.Errorf("CheckEnvFile() warning should carry no error, got %v", result.Error)
		}
	})

	t.Run("existing file", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("OPENAI_API_KEY=sk-test"), 0644); err != nil {
			t.Fatalf("failed to create env file: %v", err)
		}

		v := NewConfigValidator().WithEnvPath(envPath)
		result := v.CheckEnvFile()

		if !result.Valid {
			t.Errorf("CheckEnvFile() Valid = false for existing file: %s", result.Message)
		}
	})
}

func TestConfigValidator_CheckAPIKey(t *testing.T) {
	tests := []struct {
		name      string
		apiKey    string
		wantValid bool
	}{
		{
			name:      "valid hosted key",
			apiKey:    "sk-test1234567890",
			wantValid: true,
		},
		{
			name:      "valid gateway key",
			apiKey:    "local-gateway-key",
			wantValid: true,
		},
		{
			name:      "empty key",
			apiKey:    "",
			wantValid: false,
		},
		{
			name:      "too short key",
			apiKey:    "short",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearPipelineEnv(t)
			if tt.apiKey != "" {
				t.Setenv("OPENAI_API_KEY", tt.apiKey)
			}

			v := NewConfigValidator()
			result := v.CheckAPIKey()

			if result.Valid != tt.wantValid {
				t.Errorf("CheckAPIKey() Valid = %v, want %v", result.Valid, tt.wantValid)
			}
			if !tt.wantValid && core.GetErrorCode(result.Error) != core.ErrCodeMissingAuth {
				t.Errorf("CheckAPIKey() error code = %q, want %q",
					core.GetErrorCode(result.Error), core.ErrCodeMissingAuth)
			}
		})
	}
}

func TestConfigValidator_CheckPromptStoreCredentials(t *testing.T) {
	tests := []struct {
		name        string
		publicKey   string
		secretKey   string
		wantValid   bool
		wantWarning bool
		wantCode    string
	}{
		{
			name:      "both keys set",
			publicKey: "pk-lf-test",
			secretKey: "sk-lf-test",
			wantValid: true,
		},
		{
			name:        "neither key set disables the store",
			wantValid:   false,
			wantWarning: true,
		},
		{
			name:      "secret key only",
			secretKey: "sk-lf-test",
			wantValid: false,
			wantCode:  core.ErrCodeIncompleteAuth,
		},
		{
			name:      "public key only",
			publicKey: "pk-lf-test",
			wantValid: false,
			wantCode:  core.ErrCodeIncompleteAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearPipelineEnv(t)
			if tt.publicKey != "" {
				t.Setenv("LANGFUSE_PUBLIC_KEY", tt.publicKey)
			}
			if tt.secretKey != "" {
				t.Setenv("LANGFUSE_SECRET_KEY", tt.secretKey)
			}

			v := NewConfigValidator()
			result := v.CheckPromptStoreCredentials()

			if result.Valid != tt.wantValid {
				t.Errorf("CheckPromptStoreCredentials() Valid = %v, want %v", result.Valid, tt.wantValid)
			}
			if result.Warning != tt.wantWarning {
				t.Errorf("CheckPromptStoreCredentials() Warning = %v, want %v", result.Warning, tt.wantWarning)
			}
			if tt.wantCode != "" && core.GetErrorCode(result.Error) != tt.wantCode {
				t.Errorf("CheckPromptStoreCredentials() error code = %q, want %q",
					core.GetErrorCode(result.Error), tt.wantCode)
			}
		})
	}
}

func TestConfigValidator_CheckUploadsDir(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		clearPipelineEnv(t)
		dir := filepath.Join(t.TempDir(), "uploads")
		t.Setenv("UPLOADS_DIR", dir)

		v := NewConfigValidator()
		result := v.CheckUploadsDir()

		if !result.Valid {
			t.Fatalf("CheckUploadsDir() Valid = false: %s", result.Message)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("uploads directory was not created: %v", err)
		}
	})

	t.Run("unusable path", func(t *testing.T) {
		clearPipelineEnv(t)
		blocker := filepath.Join(t.TempDir(), "blocker")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create blocker: %v", err)
		}
		t.Setenv("UPLOADS_DIR", filepath.Join(blocker, "uploads"))

		v := NewConfigValidator()
		result := v.CheckUploadsDir()

		if result.Valid {
			t.Error("CheckUploadsDir() Valid = true for path under a file")
		}
		if core.GetErrorCode(result.Error) != core.ErrCodeDirUnavailable {
			t.Errorf("CheckUploadsDir() error code = %q, want %q",
				core.GetErrorCode(result.Error), core.ErrCodeDirUnavailable)
		}
	})
}

func TestConfigValidator_CheckReportsDir(t *testing.T) {
	clearPipelineEnv(t)
	dir := filepath.Join(t.TempDir(), "reports")
	t.Setenv("REPORTS_DIR", dir)

	v := NewConfigValidator()
	result := v.CheckReportsDir()

	if !result.Valid {
		t.Fatalf("CheckReportsDir() Valid = false: %s", result.Message)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("reports directory was not created: %v", err)
	}
}

func TestConfigValidator_CheckDatabasePath(t *testing.T) {
	t.Run("writable path", func(t *testing.T) {
		clearPipelineEnv(t)
		t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "paperpitch.db"))

		v := NewConfigValidator()
		result := v.CheckDatabasePath()

		if !result.Valid {
			t.Errorf("CheckDatabasePath() Valid = false: %s", result.Message)
		}
	})

	t.Run("path is a directory", func(t *testing.T) {
		clearPipelineEnv(t)
		dir := t.TempDir()
		t.Setenv("DB_PATH", dir)

		v := NewConfigValidator()
		result := v.CheckDatabasePath()

		if result.Valid {
			t.Error("CheckDatabasePath() Valid = true for a directory")
		}
		if core.GetErrorCode(result.Error) != core.ErrCodeDirUnavailable {
			t.Errorf("CheckDatabasePath() error code = %q, want %q",
				core.GetErrorCode(result.Error), core.ErrCodeDirUnavailable)
		}
	})
}

func TestConfigValidator_ValidateAll(t *testing.T) {
	dir := setValidPipelineEnv(t)
	t.Setenv("LANGFUSE_PUBLIC_KEY", "pk-lf-test")
	t.Setenv("LANGFUSE_SECRET_KEY", "sk-lf-test")

	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("OPENAI_API_KEY=sk-test"), 0644); err != nil {
		t.Fatalf("failed to create env file: %v", err)
	}

	v := NewConfigValidator().WithEnvPath(envPath)
	results := v.ValidateAll()

	if len(results) != 6 {
		t.Fatalf("ValidateAll() returned %d results, want 6", len(results))
	}
	for i, r := range results {
		if !r.Valid {
			t.Errorf("result %d invalid: %s", i, r.Message)
		}
	}
}

func TestConfigValidator_ValidateRequired(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		setValidPipelineEnv(t)

		v := NewConfigValidator()
		if err := v.ValidateRequired(); err != nil {
			t.Errorf("ValidateRequired() error = %v, want nil", err)
		}
	})

	t.Run("missing env file is tolerated", func(t *testing.T) {
		setValidPipelineEnv(t)

		v := NewConfigValidator().WithEnvPath(filepath.Join(t.TempDir(), ".env"))
		if err := v.ValidateRequired(); err != nil {
			t.Errorf("ValidateRequired() error = %v, want nil without .env", err)
		}
	})

	t.Run("disabled prompt store is tolerated", func(t *testing.T) {
		setValidPipelineEnv(t)

		v := NewConfigValidator()
		if err := v.ValidateRequired(); err != nil {
			t.Errorf("ValidateRequired() error = %v, want nil with store disabled", err)
		}
	})

	t.Run("missing API key fails", func(t *testing.T) {
		setValidPipelineEnv(t)
		os.Unsetenv("OPENAI_API_KEY")

		v := NewConfigValidator()
		err := v.ValidateRequired()
		if core.GetErrorCode(err) != core.ErrCodeMissingAuth {
			t.Errorf("ValidateRequired() error code = %q, want %q",
				core.GetErrorCode(err), core.ErrCodeMissingAuth)
		}
	})

	t.Run("partial prompt store credentials fail", func(t *testing.T) {
		setValidPipelineEnv(t)
		t.Setenv("LANGFUSE_PUBLIC_KEY", "pk-lf-test")

		v := NewConfigValidator()
		err := v.ValidateRequired()
		if core.GetErrorCode(err) != core.ErrCodeIncompleteAuth {
			t.Errorf("ValidateRequired() error code = %q, want %q",
				core.GetErrorCode(err), core.ErrCodeIncompleteAuth)
		}
	})
}

func TestConfigValidator_IsValid(t *testing.T) {
	setValidPipelineEnv(t)

	v := NewConfigValidator()
	if !v.IsValid() {
		t.Error("IsValid() = false for valid config")
	}

	os.Unsetenv("OPENAI_API_KEY")
	if v.IsValid() {
		t.Error("IsValid() = true without API key")
	}
}

func TestConfigValidator_CountValidAndInvalid(t *testing.T) {
	dir := setValidPipelineEnv(t)

	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("OPENAI_API_KEY=sk-test"), 0644); err != nil {
		t.Fatalf("failed to create env file: %v", err)
	}

	// Prompt store disabled: warning, counted as neither valid nor invalid.
	v := NewConfigValidator().WithEnvPath(envPath)

	if got := v.CountValid(); got != 5 {
		t.Errorf("CountValid() = %d, want 5", got)
	}
	if got := v.CountInvalid(); got != 0 {
		t.Errorf("CountInvalid() = %d, want 0", got)
	}

	os.Unsetenv("OPENAI_API_KEY")
	if got := v.CountInvalid(); got != 1 {
		t.Errorf("CountInvalid() = %d, want 1 without API key", got)
	}
}
