package validation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"paperpitch/core"
	"paperpitch/promptstore"

	"github.com/fatih/color"
)

// ValidationStep represents a single validation step with its status.
type ValidationStep struct {
	Name    string
	Status  StepStatus
	Message string
	Error   error
	Latency time.Duration
}

// StepStatus represents the status of a validation step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepPassed
	StepFailed
	StepWarning
	StepSkipped
)

// String returns the string representation of a step status.
func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepRunning:
		return "running"
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	case StepWarning:
		return "warning"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// SuiteResult represents the complete result of validation suite execution.
type SuiteResult struct {
	Steps       []ValidationStep
	TotalSteps  int
	PassedSteps int
	FailedSteps int
	Warnings    int
	Duration    time.Duration
	Success     bool
}

// ValidationSuite orchestrates all validation molecules for complete startup
// validation. This is an organism that composes ConfigValidator,
// ConnectivityChecker, ExtractionChecker, and PromptStoreChecker to provide
// comprehensive validation with progress output.
type ValidationSuite struct {
	output               io.Writer
	configValidator      *ConfigValidator
	connectivityChecker  *ConnectivityChecker
	extractionChecker    *ExtractionChecker
	promptStoreChecker   *PromptStoreChecker
	allowSelfSignedCerts bool
	timeout              time.Duration
	showProgress         bool
	failFast             bool
}

// namedCheck pairs a step name with its check function.
type namedCheck struct {
	name string
	fn   func() ValidationResult
}

// NewValidationSuite creates a new ValidationSuite with default settings.
func NewValidationSuite() *ValidationSuite {
	return &ValidationSuite{
		output:               os.Stdout,
		configValidator:      NewConfigValidator(),
		connectivityChecker:  NewConnectivityChecker(),
		extractionChecker:    NewExtractionChecker(),
		promptStoreChecker:   NewPromptStoreChecker(),
		allowSelfSignedCerts: false,
		timeout:              30 * time.Second,
		showProgress:         true,
		failFast:             false,
	}
}

// WithOutput sets the output writer for progress messages.
func (s *ValidationSuite) WithOutput(w io.Writer) *ValidationSuite {
	s.output = w
	return s
}

// WithAllowSelfSignedCerts configures whether to allow self-signed certificates.
func (s *ValidationSuite) WithAllowSelfSignedCerts(allow bool) *ValidationSuite {
	s.allowSelfSignedCerts = allow
	s.connectivityChecker.WithAllowSelfSignedCerts(allow)
	s.extractionChecker.WithAllowSelfSignedCerts(allow)
	s.promptStoreChecker.WithAllowSelfSignedCerts(allow)
	return s
}

// WithTimeout sets the timeout for network operations.
func (s *ValidationSuite) WithTimeout(timeout time.Duration) *ValidationSuite {
	s.timeout = timeout
	s.connectivityChecker.WithTimeout(timeout)
	s.extractionChecker.WithTimeout(timeout)
	s.promptStoreChecker.WithTimeout(timeout)
	return s
}

// WithShowProgress enables or disables progress output.
func (s *ValidationSuite) WithShowProgress(show bool) *ValidationSuite {
	s.showProgress = show
	return s
}

// WithFailFast stops validation on first failure if enabled.
func (s *ValidationSuite) WithFailFast(failFast bool) *ValidationSuite {
	s.failFast = failFast
	return s
}

// WithEnvPath sets a custom path for the .env file.
func (s *ValidationSuite) WithEnvPath(path string) *ValidationSuite {
	s.configValidator.WithEnvPath(path)
	return s
}

// configChecks returns the local checks shared by full and quick validation.
// None of these touch the network.
func (s *ValidationSuite) configChecks() []namedCheck {
	return []namedCheck{
		{"Environment File", s.configValidator.CheckEnvFile},
		{"OpenAI API Key", s.configValidator.CheckAPIKey},
		{"Prompt Store Credentials", s.configValidator.CheckPromptStoreCredentials},
		{"Uploads Directory", s.configValidator.CheckUploadsDir},
		{"Reports Directory", s.configValidator.CheckReportsDir},
		{"Database Path", s.configValidator.CheckDatabasePath},
		{"Disk Space", s.checkDiskSpace},
	}
}

// Validate runs all validation checks in sequence with progress output.
// Local configuration checks run first; network checks against the LLM
// endpoint, the extraction service, and the prompt store follow only when
// the configuration is coherent.
// Returns a SuiteResult with complete validation results.
func (s *ValidationSuite) Validate() SuiteResult {
	startTime := time.Now()
	steps := make([]ValidationStep, 0, 10)

	if s.showProgress {
		s.printHeader("PaperPitch Configuration Validation")
	}

	for _, check := range s.configChecks() {
		step := s.runStep(check.name, check.fn)
		steps = append(steps, step)
		if s.failFast && step.Status == StepFailed {
			return s.buildResult(steps, startTime)
		}
	}

	configOK := s.hasAllPassed(steps)

	// Completion endpoint reachability (only if config is valid)
	var step ValidationStep
	if configOK {
		step = s.runStep("OpenAI Connectivity", func() ValidationResult {
			result := s.connectivityChecker.CheckOpenAIConnectivity()
			msg := result.Message
			if result.Latency > 0 {
				msg = fmt.Sprintf("%s (latency: %v)", msg, result.Latency.Round(time.Millisecond))
			}
			return ValidationResult{Valid: result.Reachable, Message: msg, Error: result.Error}
		})
	} else {
		step = s.skipStep("OpenAI Connectivity", "Skipped due to configuration errors")
	}
	steps = append(steps, step)
	if s.failFast && step.Status == StepFailed {
		return s.buildResult(steps, startTime)
	}

	// Extraction service health (only when a remote extractor is configured)
	extractorURL := core.GetEnvOrDefault("EXTRACTOR_URL", "")
	switch {
	case extractorURL == "":
		step = s.skipStep("Extraction Service", "Local extraction configured, no service to check")
	case !configOK:
		step = s.skipStep("Extraction Service", "Skipped due to configuration errors")
	default:
		step = s.runStep("Extraction Service", func() ValidationResult {
			result := s.extractionChecker.CheckService(extractorURL)
			msg := result.Message
			if result.Latency > 0 {
				msg = fmt.Sprintf("%s (latency: %v)", msg, result.Latency.Round(time.Millisecond))
			}
			return ValidationResult{Valid: result.Available, Message: msg, Error: result.Error}
		})
	}
	steps = append(steps, step)
	if s.failFast && step.Status == StepFailed {
		return s.buildResult(steps, startTime)
	}

	// Prompt store access (only when credentials are configured)
	publicKey := core.GetEnvOrDefault("LANGFUSE_PUBLIC_KEY", "")
	secretKey := core.GetEnvOrDefault("LANGFUSE_SECRET_KEY", "")
	switch {
	case publicKey == "" && secretKey == "":
		step = s.skipStep("Prompt Store Access", "Prompt store disabled")
	case !configOK:
		step = s.skipStep("Prompt Store Access", "Skipped due to configuration errors")
	default:
		step = s.runStep("Prompt Store Access", func() ValidationResult {
			result := s.promptStoreChecker.CheckConfiguredStore()
			if errors.Is(result.Error, promptstore.ErrNotFound) {
				// Reachable store, wrong prompt name. Runs still work on
				// the fallback prompt, so this is a warning.
				return ValidationResult{Valid: false, Warning: true, Message: result.Message}
			}
			return ValidationResult{Valid: result.Accessible, Message: result.Message, Error: result.Error}
		})
	}
	steps = append(steps, step)

	result := s.buildResult(steps, startTime)

	if s.showProgress {
		s.printSummary(result)
	}

	return result
}

// ValidateQuick runs only local configuration checks (no network calls).
// Useful for quick startup validation.
func (s *ValidationSuite) ValidateQuick() SuiteResult {
	startTime := time.Now()
	steps := make([]ValidationStep, 0, 7)

	if s.showProgress {
		s.printHeader("Quick Configuration Check")
	}

	for _, check := range s.configChecks() {
		step := s.runStep(check.name, check.fn)
		steps = append(steps, step)
		if s.failFast && step.Status == StepFailed {
			break
		}
	}

	result := s.buildResult(steps, startTime)

	if s.showProgress {
		s.printSummary(result)
	}

	return result
}

// checkDiskSpace reports free space for the reports directory, falling back
// to the working directory before the reports directory exists.
func (s *ValidationSuite) checkDiskSpace() ValidationResult {
	dir := core.GetEnvOrDefault("REPORTS_DIR", "reports")

	info, err := GetDiskSpace(dir)
	if err != nil {
		info, err = GetDiskSpace(".")
	}
	if err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Could not determine free disk space",
			Error:   err,
		}
	}

	if info.Free < DefaultMinFreeBytes {
		return ValidationResult{
			Valid:   false,
			Warning: true,
			Message: fmt.Sprintf("Low disk space: %s free (%.0f%% used)", info.FreeFormatted, info.UsedPercent),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: fmt.Sprintf("%s free", info.FreeFormatted),
	}
}

// runStep executes a validation step with timing and progress output.
func (s *ValidationSuite) runStep(name string, fn func() ValidationResult) ValidationStep {
	step := ValidationStep{Name: name, Status: StepRunning}

	if s.showProgress {
		s.printStepStart(name)
	}

	startTime := time.Now()
	result := fn()
	step.Latency = time.Since(startTime)
	step.Message = result.Message
	step.Error = result.Error

	switch {
	case result.Valid:
		step.Status = StepPassed
	case result.Warning:
		step.Status = StepWarning
	default:
		step.Status = StepFailed
	}

	if s.showProgress {
		s.printStep(step)
	}

	return step
}

// skipStep records a step that did not run, printing it like a completed one.
func (s *ValidationSuite) skipStep(name, message string) ValidationStep {
	step := ValidationStep{
		Name:    name,
		Status:  StepSkipped,
		Message: message,
	}
	if s.showProgress {
		s.printStep(step)
	}
	return step
}

// hasAllPassed checks if no step has failed. Warnings and skips count as
// passed.
func (s *ValidationSuite) hasAllPassed(steps []ValidationStep) bool {
	for _, step := range steps {
		if step.Status == StepFailed {
			return false
		}
	}
	return true
}

// buildResult creates a SuiteResult from completed steps.
func (s *ValidationSuite) buildResult(steps []ValidationStep, startTime time.Time) SuiteResult {
	result := SuiteResult{
		Steps:      steps,
		TotalSteps: len(steps),
		Duration:   time.Since(startTime),
		Success:    true,
	}

	for _, step := range steps {
		switch step.Status {
		case StepPassed:
			result.PassedSteps++
		case StepFailed:
			result.FailedSteps++
			result.Success = false
		case StepWarning:
			result.Warnings++
		}
	}

	return result
}

// printHeader prints a validation header.
func (s *ValidationSuite) printHeader(title string) {
	fmt.Fprintln(s.output)
	headerColor := color.New(color.FgCyan, color.Bold)
	headerColor.Fprintf(s.output, "━━━ %s ━━━\n", title)
	fmt.Fprintln(s.output)
}

// printStepStart prints the step name before execution (for real-time feedback).
func (s *ValidationSuite) printStepStart(name string) {
	fmt.Fprintf(s.output, "  ◌ %s...", name)
}

// printStep prints a completed validation step with status indicator.
func (s *ValidationSuite) printStep(step ValidationStep) {
	var icon string
	var clr *color.Color

	switch step.Status {
	case StepPassed:
		icon = "✓"
		clr = color.New(color.FgGreen)
	case StepFailed:
		icon = "✗"
		clr = color.New(color.FgRed)
	case StepWarning:
		icon = "!"
		clr = color.New(color.FgYellow)
	case StepSkipped:
		icon = "○"
		clr = color.New(color.FgHiBlack)
	default:
		icon = "?"
		clr = color.New(color.FgWhite)
	}

	// Clear the "running" line and print result
	fmt.Fprintf(s.output, "\r")
	clr.Fprintf(s.output, "  %s %s", icon, step.Name)

	// Add message if present
	if step.Message != "" {
		dim := color.New(color.FgHiBlack)
		dim.Fprintf(s.output, " - %s", step.Message)
	}

	fmt.Fprintln(s.output)

	// Print error details for failed steps
	if step.Status == StepFailed && step.Error != nil {
		errColor := color.New(color.FgRed)
		errColor.Fprintf(s.output, "    └─ %s\n", step.Error.Error())
	}
}

// printSummary prints the validation summary.
func (s *ValidationSuite) printSummary(result SuiteResult) {
	fmt.Fprintln(s.output)

	if result.Success {
		successColor := color.New(color.FgGreen, color.Bold)
		successColor.Fprintf(s.output, "━━━ Validation Passed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d/%d checks passed in %v)",
			result.PassedSteps, result.TotalSteps, result.Duration.Round(time.Millisecond))
		successColor.Fprintln(s.output, " ━━━")
	} else {
		failColor := color.New(color.FgRed, color.Bold)
		failColor.Fprintf(s.output, "━━━ Validation Failed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d passed, %d failed)",
			result.PassedSteps, result.FailedSteps)
		failColor.Fprintln(s.output, " ━━━")
	}

	fmt.Fprintln(s.output)
}

// GetErrors returns all errors from completed steps.
func (r SuiteResult) GetErrors() []error {
	errors := make([]error, 0)
	for _, step := range r.Steps {
		if step.Error != nil {
			errors = append(errors, step.Error)
		}
	}
	return errors
}

// GetFirstError returns the first error from completed steps, or nil if all passed.
func (r SuiteResult) GetFirstError() error {
	for _, step := range r.Steps {
		if step.Error != nil {
			return step.Error
		}
	}
	return nil
}

// Summary returns a human-readable summary string.
func (r SuiteResult) Summary() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Validation %s: ", map[bool]string{true: "Passed", false: "Failed"}[r.Success]))
	sb.WriteString(fmt.Sprintf("%d/%d checks passed", r.PassedSteps, r.TotalSteps))
	if r.FailedSteps > 0 {
		sb.WriteString(fmt.Sprintf(", %d failed", r.FailedSteps))
	}
	if r.Warnings > 0 {
		sb.WriteString(fmt.Sprintf(", %d warnings", r.Warnings))
	}
	sb.WriteString(fmt.Sprintf(" (took %v)", r.Duration.Round(time.Millisecond)))
	return sb.String()
}
