package translator

import (
	"log/slog"
	"time"

	"github.com/delight-lang/delight/pkgs/classifier"
)

// Opt represents a translator configuration option
type Opt func(*Config)

// TelemetryMode controls telemetry collection
type TelemetryMode int

const (
	TelemetryOff    TelemetryMode = iota // No telemetry (default)
	TelemetryBasic                       // Token and fragment counts
	TelemetryTiming                      // Counts + timing per phase
)

// Config holds translator configuration
type Config struct {
	logger      *slog.Logger
	telemetry   TelemetryMode
	indentation string
	tables      *classifier.Tables
	filename    string
}

// WithLogger routes translator logging to logger.
func WithLogger(logger *slog.Logger) Opt {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithTelemetryBasic enables token and fragment counts
func WithTelemetryBasic() Opt {
	return func(c *Config) {
		c.telemetry = TelemetryBasic
	}
}

// WithTelemetryTiming enables counts and timing per phase
func WithTelemetryTiming() Opt {
	return func(c *Config) {
		c.telemetry = TelemetryTiming
	}
}

// WithIndentation fixes the indentation unit used when scanning source text.
func WithIndentation(unit string) Opt {
	return func(c *Config) {
		c.indentation = unit
	}
}

// WithTables replaces the classification tables.
func WithTables(tables *classifier.Tables) Opt {
	return func(c *Config) {
		c.tables = tables
	}
}

// WithFilename names the source in log records and scan errors.
func WithFilename(name string) Opt {
	return func(c *Config) {
		c.filename = name
	}
}

// Telemetry holds translation metrics
type Telemetry struct {
	ScanTime      time.Duration // Time spent scanning source text
	TranslateTime time.Duration // Time spent in the generator
	TotalTime     time.Duration // Total time
	TokenCount    int           // Tokens consumed
	FragmentCount int           // Non-empty fragments produced
}
