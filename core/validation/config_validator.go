package validation

import (
	"os"
	"path/filepath"

	"paperpitch/core"
)

// ValidationResult represents the result of a configuration validation check.
// Warning marks a result that callers should surface but not fail on, such
// as a disabled prompt store.
type ValidationResult struct {
	Valid   bool
	Warning bool
	Message string
	Error   error
}

// ConfigValidator composes validation atoms to provide comprehensive
// configuration checking for the report pipeline. This is a molecule that
// orchestrates file existence, key format, and directory writability checks.
type ConfigValidator struct {
	envPath string // Path to .env file (default: ".env")
}

// NewConfigValidator creates a new ConfigValidator with default settings.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		envPath: ".env",
	}
}

// WithEnvPath sets a custom path for the .env file.
func (v *ConfigValidator) WithEnvPath(path string) *ConfigValidator {
	v.envPath = path
	return v
}

// CheckEnvFile checks whether the .env file exists. A missing file is a
// warning rather than a failure: deployments may configure the pipeline
// entirely through the process environment.
func (v *ConfigValidator) CheckEnvFile() ValidationResult {
	if err := CheckFileExists(v.envPath); err != nil {
		return ValidationResult{
			Valid:   false,
			Warning: true,
			Message: "No .env file found, relying on process environment",
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Environment file found",
	}
}

// CheckAPIKey validates that the OpenAI API key is configured.
// Returns a ValidationResult with error details if the key is missing.
func (v *ConfigValidator) CheckAPIKey() ValidationResult {
	apiKey := os.Getenv("OPENAI_API_KEY")

	if apiKey == "" {
		return ValidationResult{
			Valid:   false,
			Message: "OPENAI_API_KEY required. Set your OpenAI (or compatible gateway) API key.",
			Error:   core.ErrMissingAuth("openai"),
		}
	}

	if err := ValidateOpenAIAPIKey(apiKey); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "OpenAI API key invalid: " + err.Error(),
			Error:   core.ErrMissingAuth("openai"),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: "OpenAI API key configured",
	}
}

// CheckPromptStoreCredentials validates the Langfuse credential pair.
// Both keys set enables the prompt store, neither set disables it, and a
// single key is a misconfiguration.
func (v *ConfigValidator) CheckPromptStoreCredentials() ValidationResult {
	publicKey := os.Getenv("LANGFUSE_PUBLIC_KEY")
	secretKey := os.Getenv("LANGFUSE_SECRET_KEY")

	switch {
	case publicKey != "" && secretKey != "":
		return ValidationResult{
			Valid:   true,
			Message: "Prompt store credentials configured",
		}
	case publicKey == "" && secretKey == "":
		return ValidationResult{
			Valid:   false,
			Warning: true,
			Message: "Prompt store disabled, runs use the built-in fallback prompt",
		}
	case publicKey == "":
		return ValidationResult{
			Valid:   false,
			Message: "LANGFUSE_SECRET_KEY set without LANGFUSE_PUBLIC_KEY",
			Error:   core.ErrIncompleteAuth("langfuse", "LANGFUSE_PUBLIC_KEY missing"),
		}
	default:
		return ValidationResult{
			Valid:   false,
			Message: "LANGFUSE_PUBLIC_KEY set without LANGFUSE_SECRET_KEY",
			Error:   core.ErrIncompleteAuth("langfuse", "LANGFUSE_SECRET_KEY missing"),
		}
	}
}

// CheckUploadsDir validates that the uploads directory is writable,
// creating it when missing.
func (v *ConfigValidator) CheckUploadsDir() ValidationResult {
	dir := core.GetEnvOrDefault("UPLOADS_DIR", "uploads")

	if err := CheckDirWritable(dir); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Uploads directory not writable: " + dir,
			Error:   core.ErrDirUnavailable("uploads", dir, err.Error()),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: "Uploads directory writable",
	}
}

// CheckReportsDir validates that the reports directory is writable,
// creating it when missing.
func (v *ConfigValidator) CheckReportsDir() ValidationResult {
	dir := core.GetEnvOrDefault("REPORTS_DIR", "reports")

	if err := CheckDirWritable(dir); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Reports directory not writable: " + dir,
			Error:   core.ErrDirUnavailable("reports", dir, err.Error()),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: "Reports directory writable",
	}
}

// CheckDatabasePath validates that the report store database can be
// created or opened at the configured path.
func (v *ConfigValidator) CheckDatabasePath() ValidationResult {
	dbPath := core.GetEnvOrDefault("DB_PATH", "paperpitch.db")

	if info, err := os.Stat(dbPath); err == nil && info.IsDir() {
		return ValidationResult{
			Valid:   false,
			Message: "Database path is a directory: " + dbPath,
			Error:   core.ErrDirUnavailable("database", dbPath, "path is a directory, expected a file"),
		}
	}

	dir := filepath.Dir(dbPath)
	if err := CheckDirWritable(dir); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Database directory not writable: " + dir,
			Error:   core.ErrDirUnavailable("database", dir, err.Error()),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: "Database path writable",
	}
}

// ValidateAll runs all configuration checks and returns all results.
// This provides a comprehensive view of the configuration state, including
// optional settings like the prompt store.
func (v *ConfigValidator) ValidateAll() []ValidationResult {
	return []ValidationResult{
		v.CheckEnvFile(),
		v.CheckAPIKey(),
		v.CheckPromptStoreCredentials(),
		v.CheckUploadsDir(),
		v.CheckReportsDir(),
		v.CheckDatabasePath(),
	}
}

// ValidateRequired runs only the checks a pipeline start cannot proceed
// without. A missing .env file is tolerated because configuration may come
// from the process environment, and absent prompt store credentials simply
// disable the store.
// Returns the first validation failure, or nil if all required checks pass.
func (v *ConfigValidator) ValidateRequired() error {
	if result := v.CheckAPIKey(); !result.Valid {
		return result.Error
	}
	if result := v.CheckPromptStoreCredentials(); !result.Valid && !result.Warning {
		return result.Error
	}
	if result := v.CheckUploadsDir(); !result.Valid {
		return result.Error
	}
	if result := v.CheckReportsDir(); !result.Valid {
		return result.Error
	}
	if result := v.CheckDatabasePath(); !result.Valid {
		return result.Error
	}
	return nil
}

// IsValid returns true if all required configuration is valid.
func (v *ConfigValidator) IsValid() bool {
	return v.ValidateRequired() == nil
}

// GetFirstError returns the first validation error, or nil if all required checks pass.
func (v *ConfigValidator) GetFirstError() error {
	return v.ValidateRequired()
}

// CountValid returns the number of valid configuration items.
func (v *ConfigValidator) CountValid() int {
	results := v.ValidateAll()
	count := 0
	for _, r := range results {
		if r.Valid {
			count++
		}
	}
	return count
}

// CountInvalid returns the number of failed configuration items.
// Warnings do not count as failures.
func (v *ConfigValidator) CountInvalid() int {
	results := v.ValidateAll()
	count := 0
	for _, r := range results {
		if !r.Valid && !r.Warning {
			count++
		}
	}
	return count
}
