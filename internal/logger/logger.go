// Package logger configure the application's logging,
// monitoring, and observability.
//
// It uses *ZeroLog* for logging and integrates with
// *New Relic* to instrument the codebase, forwarding logs,
// metrics, and traces for debugging
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/deppfellow/payhost/internal/config"
	"github.com/newrelic/go-agent/v3/integrations/logcontext-v2/zerologWriter"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// LoggerService owns the optional New Relic application.
//
// A LoggerService with a nil application is valid: every New Relic
// integration checks GetApplication() and degrades into a no-op.
type LoggerService struct {
	nrApp *newrelic.Application
	files []io.Closer
}

// NewLoggerService initializes New Relic when a license key is configured.
func NewLoggerService(cfg *config.ObservabilityConfig) *LoggerService {
	service := &LoggerService{}

	if !cfg.NewRelicEnabled() {
		fmt.Println("New Relic license key not provided, skipping initialization")
		return service
	}

	configOptions := []newrelic.ConfigOption{
		newrelic.ConfigAppName(cfg.ServiceName),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(cfg.NewRelic.AppLogForwardingEnabled),
		newrelic.ConfigDistributedTracerEnabled(cfg.NewRelic.DistributedTracingEnabled),
		newrelic.ConfigEnabled(true),
	}

	if cfg.NewRelic.DebugLogging {
		configOptions = append(configOptions, newrelic.ConfigDebugLogger(os.Stdout))
	}

	app, err := newrelic.NewApplication(configOptions...)
	if err != nil {
		fmt.Printf("Failed to initialize New Relic: %v\n", err)
		return service
	}

	service.nrApp = app
	fmt.Printf("New Relic initialized for app: %s\n", cfg.ServiceName)

	return service
}

// GetApplication returns the New Relic application, or nil.
func (ls *LoggerService) GetApplication() *newrelic.Application {
	if ls == nil {
		return nil
	}
	return ls.nrApp
}

// Shutdown flushes New Relic and closes any log files.
func (ls *LoggerService) Shutdown() {
	if ls == nil {
		return
	}
	if ls.nrApp != nil {
		ls.nrApp.Shutdown(10 * time.Second)
		ls.nrApp = nil
	}
	for _, f := range ls.files {
		_ = f.Close()
	}
	ls.files = nil
}

// NewLogger creates a logger without New Relic log forwarding.
func NewLogger(cfg *config.ObservabilityConfig) (zerolog.Logger, error) {
	return NewLoggerWithService(cfg, nil)
}

// NewLoggerWithService builds the application logger.
//
//   - production + json: JSON to stdout, forwarded to New Relic when enabled
//   - anything else: human-friendly console output
//   - logging.directory set: combined.log receives everything, error.log
//     receives error and above. Both are opened in append mode.
func NewLoggerWithService(cfg *config.ObservabilityConfig, loggerService *LoggerService) (zerolog.Logger, error) {
	logLevel, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	var writer io.Writer
	if cfg.IsProduction() && cfg.Logging.Format == "json" {
		writer = os.Stdout
		if app := loggerService.GetApplication(); app != nil {
			writer = zerologWriter.New(os.Stdout, app)
		}
	} else {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}
	}

	if cfg.Logging.Directory != "" {
		fileWriter, err := openLogFiles(cfg.Logging.Directory, loggerService)
		if err != nil {
			return zerolog.Nop(), err
		}
		writer = zerolog.MultiLevelWriter(writer, fileWriter)
	}

	logger := zerolog.New(writer).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger()

	if !cfg.IsProduction() {
		logger = logger.With().Stack().Logger()
	}

	return logger, nil
}

// openLogFiles opens combined.log and error.log under dir.
// The returned writer routes every event to combined.log and error-level
// events to error.log as well.
func openLogFiles(dir string, loggerService *LoggerService) (zerolog.LevelWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	combined, err := os.OpenFile(filepath.Join(dir, "combined.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open combined.log: %w", err)
	}

	errorLog, err := os.OpenFile(filepath.Join(dir, "error.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		_ = combined.Close()
		return nil, fmt.Errorf("failed to open error.log: %w", err)
	}

	if loggerService != nil {
		loggerService.files = append(loggerService.files, combined, errorLog)
	}

	return zerolog.MultiLevelWriter(
		combined,
		&zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: errorLog},
			Level:  zerolog.ErrorLevel,
		},
	), nil
}

// WithTraceContext adds New Relic trace.id / span.id to the logger.
func WithTraceContext(logger zerolog.Logger, txn *newrelic.Transaction) zerolog.Logger {
	if txn == nil {
		return logger
	}

	metadata := txn.GetTraceMetadata()

	return logger.With().
		Str("trace.id", metadata.TraceID).
		Str("span.id", metadata.SpanID).
		Logger()
}
