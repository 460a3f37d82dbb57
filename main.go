// Package main is the paperpitch entry point.
//
// Invocation modes:
//
//	paperpitch <file.pdf>   one-shot: turn a single PDF into a report
//	paperpitch              watch: poll the uploads directory for new PDFs
//	paperpitch validate     run the full validation suite and exit
//	paperpitch version      print version information
//
// On Windows the service management commands (install, uninstall, start,
// stop, restart, status) are handled before anything else; see
// service_windows.go.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"paperpitch/contentprep"
	"paperpitch/core"
	"paperpitch/core/validation"
	"paperpitch/extraction"
	"paperpitch/llm"
	"paperpitch/logging"
	"paperpitch/metrics"
	"paperpitch/promptstore"
	"paperpitch/reportbuilder"
	"paperpitch/reportstore"
	"paperpitch/shutdown"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "-v", "--version":
			fmt.Println("paperpitch " + core.GetVersionInfo())
			return
		case "help", "-h", "--help":
			printUsage()
			return
		}
	}

	// Windows service management commands (no-ops elsewhere)
	if HandleServiceCommand(os.Args) {
		return
	}

	// When launched by the Windows service manager this blocks until the
	// service is stopped; interactively it returns false immediately.
	ranAsService, err := RunAsService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service error: %v\n", err)
		os.Exit(core.ExitCodeError)
	}
	if ranAsService {
		return
	}

	os.Exit(run(os.Args))
}

func printUsage() {
	fmt.Println(`paperpitch turns PDF papers into investor one-pager reports.

Usage:
  paperpitch [file.pdf]

  With a PDF argument, processes that single file and exits.
  With no arguments, watches the uploads directory for new PDFs.

Commands:
  validate    run the full validation suite, including connectivity checks
  version     print version information
  help        show this help

Service commands (Windows only):
  install     install as a Windows service
  uninstall   remove the Windows service
  start       start the installed service
  stop        stop the installed service
  restart     restart the installed service
  status      show the service status

Configuration is read from environment variables or a .env file in the
working directory.`)
}

// run executes the selected foreground mode and returns the process exit code.
func run(args []string) int {
	isDevelopment := core.ParseBoolEnv("DEV_MODE", false)

	logger, err := logging.NewLogger(isDevelopment, core.GetEnvOrDefault("LOG_FILE", "paperpitch.log"))
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Printf("Failed to sync logger: %v\n", syncErr)
		}
	}()

	if len(args) > 1 && args[1] == "validate" {
		return runValidate()
	}

	// Quick validation catches configuration mistakes before anything heavy
	// runs. Endpoint reachability is not checked here: a temporarily down
	// extraction service should not keep watch mode from starting, and the
	// full suite is available on demand via `paperpitch validate`.
	if code := runStartupValidation(logger, true); code != core.ExitCodeSuccess {
		return code
	}

	config, err := core.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		return core.ExitCodeError
	}

	logger.Info("Configuration loaded",
		zap.String("model", config.OpenAIModel),
		zap.String("prompt", config.PromptName),
		zap.String("prompt_label", config.PromptLabel),
		zap.String("language", config.Language),
		zap.String("uploads_dir", config.UploadsDir),
		zap.String("reports_dir", config.ReportsDir),
		zap.String("db_path", config.DBPath),
		zap.Bool("prompt_store", config.PromptStoreEnabled()),
		zap.Bool("remote_extraction", config.UseRemoteExtraction()),
		zap.Duration("watch_interval", config.WatchInterval),
		zap.Bool("dev_mode", isDevelopment),
	)

	app, err := newApp(config, logger)
	if err != nil {
		logger.Error("Failed to initialize pipeline", zap.Error(err))
		return core.ExitCodeError
	}

	if len(args) > 1 {
		return app.runOnce(args[1])
	}
	return app.runWatch()
}

// runService runs watch mode under an externally owned lifecycle. The
// Windows service wrapper cancels ctx when the service is stopped; the
// shutdown manager then drains exactly as it would after a signal.
func runService(ctx context.Context) int {
	isDevelopment := core.ParseBoolEnv("DEV_MODE", false)

	logger, err := logging.NewLogger(isDevelopment, core.GetEnvOrDefault("LOG_FILE", "paperpitch.log"))
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer func() {
		_ = logger.Sync()
	}()

	if code := runStartupValidation(logger, false); code != core.ExitCodeSuccess {
		return code
	}

	config, err := core.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		return core.ExitCodeError
	}

	app, err := newApp(config, logger)
	if err != nil {
		logger.Error("Failed to initialize pipeline", zap.Error(err))
		return core.ExitCodeError
	}

	go func() {
		<-ctx.Done()
		app.manager.InitiateShutdown()
	}()

	return app.runWatch()
}

// runStartupValidation runs the configuration checks and logs the outcome.
// Warnings (no .env file, disabled prompt store) do not block startup.
func runStartupValidation(logger *logging.Logger, showProgress bool) int {
	suite := validation.NewValidationSuite().
		WithAllowSelfSignedCerts(core.ParseBoolEnv("ALLOW_SELF_SIGNED_CERTS", false)).
		WithShowProgress(showProgress)

	result := suite.ValidateQuick()

	if !result.Success {
		logger.Error("Configuration validation failed",
			zap.Int("passed", result.PassedSteps),
			zap.Int("failed", result.FailedSteps),
			zap.Duration("duration", result.Duration),
		)

		// Log individual failures for debugging
		for _, step := range result.Steps {
			if step.Status == validation.StepFailed {
				logger.Error("Validation step failed",
					zap.String("step", step.Name),
					zap.String("message", step.Message),
					zap.Error(step.Error),
				)
			}
		}

		return core.ExitCodeError
	}

	logger.Info("Configuration validation passed",
		zap.Int("checks_passed", result.PassedSteps),
		zap.Int("warnings", result.Warnings),
		zap.Duration("duration", result.Duration),
	)
	return core.ExitCodeSuccess
}

// runValidate runs the full validation suite, including the OpenAI,
// extraction service, and prompt store connectivity checks. The suite
// prints its own progress and summary.
func runValidate() int {
	suite := validation.NewValidationSuite().
		WithAllowSelfSignedCerts(core.ParseBoolEnv("ALLOW_SELF_SIGNED_CERTS", false)).
		WithShowProgress(true)

	if result := suite.Validate(); !result.Success {
		return core.ExitCodeError
	}
	return core.ExitCodeSuccess
}

// app bundles the collaborators constructed for one process run.
type app struct {
	config       *core.Config
	logger       *logging.Logger
	builder      *reportbuilder.Builder
	store        *reportstore.Store
	asyncWriter  *reportstore.AsyncWriter
	metricsStore *metrics.MetricsStore
	manager      *shutdown.Manager
}

// newApp constructs every pipeline collaborator once and wires them
// together. Nothing here is a singleton; the builder receives all of its
// dependencies through injection.
func newApp(config *core.Config, logger *logging.Logger) (*app, error) {
	zl := logger.Zap()

	for _, dir := range []string{config.UploadsDir, config.ReportsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Content preparation, with optional YAML tuning overrides
	truncatorConfig := contentprep.DefaultTruncatorConfig()
	preparerConfig := contentprep.DefaultPreparerConfig()
	if config.TuningFile != "" {
		tuning, err := contentprep.LoadTuning(config.TuningFile)
		if err != nil {
			return nil, err
		}
		truncatorConfig = tuning.ApplyTruncator(truncatorConfig)
		preparerConfig = tuning.ApplyPreparer(preparerConfig)
		logger.Info("Loaded tuning overrides", zap.String("file", config.TuningFile))
	}
	counter := contentprep.NewCounter(zl)
	truncator := contentprep.NewTruncator(counter, truncatorConfig, zl)
	preparer := contentprep.NewPreparer(counter, truncator, preparerConfig, zl)

	// Extraction runs in-process unless a document-processor service is
	// configured
	var extractor extraction.Service
	if config.UseRemoteExtraction() {
		client, err := extraction.NewClient(extraction.ClientConfig{
			BaseURL:    config.ExtractorURL,
			HTTPClient: core.GetHTTPClient(config, config.ExtractTimeout),
		}, zl)
		if err != nil {
			return nil, err
		}
		extractor = client
	} else {
		extractor = extraction.NewDefaultExtractor(zl)
	}

	llmClient, err := llm.NewClient(llm.ClientConfig{
		APIKey:      config.OpenAIAPIKey,
		BaseURL:     config.OpenAIBaseURL,
		Temperature: float32(config.Temperature),
		HTTPClient:  core.GetHTTPClient(config, config.AITimeout),
	}, zl)
	if err != nil {
		return nil, err
	}

	deps := reportbuilder.BuilderDependencies{
		Extractor: extractor,
		Preparer:  preparer,
		Completer: llmClient,
		Writer:    reportbuilder.NewReportWriter(config.ReportsDir),
		Logger:    zl,
	}

	if config.PromptStoreEnabled() {
		prompts, err := promptstore.NewClient(promptstore.ClientConfig{
			BaseURL:    config.LangfuseBaseURL,
			PublicKey:  config.LangfusePublicKey,
			SecretKey:  config.LangfuseSecretKey,
			Label:      config.PromptLabel,
			HTTPClient: core.GetHTTPClient(config, 30*time.Second),
		}, zl)
		if err != nil {
			return nil, err
		}
		deps.Prompts = prompts
	} else {
		logger.Warn("Prompt store disabled, runs use the built-in fallback prompt")
	}

	store, err := reportstore.NewStore(config.DBPath)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, err
	}

	// The repository queues inserts through the async writer once it is
	// running; the writer's handler executes them against the same store.
	repo := reportstore.NewRepository(store, nil)
	asyncWriter := reportstore.NewAsyncWriter(repo.CreateAsyncWriteHandler())
	asyncWriter.Start()
	repo = reportstore.NewRepository(store, asyncWriter)
	deps.Recorder = repo

	metricsStore := metrics.NewMetricsStore(metrics.StoreConfig{
		RunHistoryCapacity: 100,
		Version:            core.GetVersion(),
	}, time.Now())
	deps.Collector = metricsStore

	builder := reportbuilder.NewBuilder(reportbuilder.BuilderConfig{
		Model:      config.OpenAIModel,
		PromptName: config.PromptName,
		Language:   config.Language,
	}, deps)

	a := &app{
		config:       config,
		logger:       logger,
		builder:      builder,
		store:        store,
		asyncWriter:  asyncWriter,
		metricsStore: metricsStore,
		manager:      shutdown.NewManager(zl),
	}
	a.registerShutdownHandlers()
	return a, nil
}

// registerShutdownHandlers wires the cleanup sequence. Lower priorities
// run first: the metrics summary logs while everything is still open,
// the async writer drains before the store closes, and leftover
// zero-byte reports are removed last.
func (a *app) registerShutdownHandlers() {
	a.manager.Register("metrics-summary", 5, func(ctx context.Context) error {
		a.logRunSummary()
		return nil
	})

	a.manager.Register("async-writer", 20, func(ctx context.Context) error {
		timeout := 10 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); remaining < timeout {
				timeout = remaining
			}
		}
		if !a.asyncWriter.StopWithTimeout(timeout) {
			return fmt.Errorf("async writer drain timed out with %d pending writes", a.asyncWriter.Pending())
		}
		return nil
	})

	a.manager.Register("report-store", 30, func(ctx context.Context) error {
		return a.store.Close()
	})

	a.manager.Register("empty-reports", 45,
		shutdown.CleanupEmptyReports(a.logger.Zap(), a.config.ReportsDir))
}

// runOnce processes a single PDF and exits.
func (a *app) runOnce(pdfPath string) int {
	if !core.IsPDF(pdfPath) {
		a.logger.Error("Not a PDF file", zap.String("path", pdfPath))
		return core.ExitCodeError
	}
	if _, err := os.Stat(pdfPath); err != nil {
		a.logger.Error("Cannot read input file", zap.String("path", pdfPath), zap.Error(err))
		return core.ExitCodeError
	}

	a.manager.Start()

	var result *reportbuilder.BuildResult
	runErr := a.manager.WrapOperation(a.manager.Context(), "report-run", func(ctx context.Context) error {
		var err error
		result, err = a.builder.Build(ctx, pdfPath)
		return err
	})

	code := core.ExitCodeSuccess
	if runErr != nil {
		a.logger.Error("Report run failed", zap.String("file", pdfPath), zap.Error(runErr))
		code = core.ExitCodeError
	} else {
		a.logger.Info("Report ready",
			zap.String("file", pdfPath),
			zap.String("report", result.ReportPath),
			zap.String("prompt_source", result.PromptSource),
			zap.Bool("truncated", result.Prepared.Truncated),
			zap.Duration("took", result.BuildTime),
		)
	}

	return a.finish(code)
}

// runWatch polls the uploads directory until a shutdown signal arrives.
// Old run records are purged on a schedule while the watcher runs.
func (a *app) runWatch() int {
	a.manager.Start()
	a.store.StartCleanupScheduler(a.manager.Context(), a.config.RetentionDays, a.config.CleanupInterval)

	watcher := NewWatcher(a.config, a.builder, a.manager, a.metricsStore, a.logger.Zap())
	watcher.Run(a.manager.Context())

	return a.finish(core.ExitCodeSuccess)
}

// finish executes the graceful shutdown sequence and maps the outcome to
// the final exit code. Signal exits keep their conventional codes (130
// for SIGINT, 143 for SIGTERM) even when the interrupted run failed.
func (a *app) finish(code int) int {
	if err := a.manager.Shutdown(); err != nil && code == core.ExitCodeSuccess {
		code = core.ExitCodeError
	}
	if sig := a.manager.ExitCode(); core.IsSignalExit(sig) {
		code = sig
	}

	a.logger.Info("Goodbye!", zap.String("exit", core.ExitCodeName(code)))
	return code
}

// logRunSummary logs the aggregate metrics for every run this process made.
func (a *app) logRunSummary() {
	m := a.metricsStore.GetRunMetrics()
	if m.TotalRuns == 0 {
		return
	}
	a.logger.Info("Run summary",
		zap.Int64("total_runs", m.TotalRuns),
		zap.Int64("succeeded", m.TotalSuccess),
		zap.Int64("failed", m.TotalErrors),
		zap.Int64("fallback_runs", m.FallbackRuns),
		zap.Int64("truncated_runs", m.TruncatedRuns),
		zap.Int64("prompt_tokens", m.PromptTokens),
		zap.Int64("completion_tokens", m.CompletionTokens),
		zap.Duration("avg_llm_duration", m.AvgLLMDuration),
	)
}
