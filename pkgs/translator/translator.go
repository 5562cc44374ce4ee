// Package translator drives a translation run: it pulls tokens, feeds them to
// the generator's start state and assembles the prelude and the body.
package translator

import (
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/delight-lang/delight/pkgs/generator"
	"github.com/delight-lang/delight/pkgs/invariant"
	"github.com/delight-lang/delight/pkgs/lexer"
)

// Result is the output of one run. After a failure it holds everything
// generated before the failing token.
type Result struct {
	Output    string   // Prelude followed by Body
	Body      string   // translated program text
	Prelude   string   // runtime helper definitions
	Helpers   []string // helpers in Prelude, in order of first use
	Depth     int      // scopes still open when the run stopped
	Telemetry *Telemetry
}

func newConfig(opts []Opt) *Config {
	config := &Config{filename: "<input>"}
	for _, opt := range opts {
		opt(config)
	}
	if config.logger == nil {
		config.logger = defaultLogger()
	}
	return config
}

// Translate consumes stream until it is empty or the first parse error. The
// error is logged and returned together with the partial result.
func Translate(stream generator.TokenStream, opts ...Opt) (*Result, error) {
	config := newConfig(opts)
	var telemetry *Telemetry
	if config.telemetry >= TelemetryBasic {
		telemetry = &Telemetry{}
	}
	return translate(stream, config, telemetry)
}

func translate(stream generator.TokenStream, config *Config, telemetry *Telemetry) (*Result, error) {
	var start time.Time
	if config.telemetry >= TelemetryTiming {
		start = time.Now()
	}

	genOpts := []generator.Option{generator.WithLogger(config.logger)}
	if config.tables != nil {
		genOpts = append(genOpts, generator.WithTables(config.tables))
	}
	g := generator.New(stream, genOpts...)

	counted, canCount := stream.(interface{ Remaining() int })
	before := 0
	if canCount {
		before = counted.Remaining()
	}

	var body strings.Builder
	var runErr error
	for !stream.Empty() {
		remaining := 0
		if canCount {
			remaining = counted.Remaining()
		}
		tok := stream.Pop()
		frag, err := g.Start(tok)
		if err != nil {
			runErr = err
			break
		}
		if canCount {
			invariant.Invariant(counted.Remaining() < remaining, "start state at line %d consumed no input", tok.Line)
		}
		if frag != "" {
			body.WriteString(frag)
			if telemetry != nil {
				telemetry.FragmentCount++
			}
		}
	}

	if telemetry != nil && canCount {
		telemetry.TokenCount = before - counted.Remaining()
	}
	if config.telemetry >= TelemetryTiming {
		telemetry.TranslateTime = time.Since(start)
		telemetry.TotalTime = telemetry.ScanTime + telemetry.TranslateTime
	}

	prelude := g.Prelude().String()
	result := &Result{
		Output:    prelude + body.String(),
		Body:      body.String(),
		Prelude:   prelude,
		Helpers:   g.Prelude().Used(),
		Depth:     g.Scopes().Len(),
		Telemetry: telemetry,
	}

	if runErr != nil {
		attrs := []any{"file", config.filename, "error", runErr.Error()}
		var perr *generator.ParseError
		if errors.As(runErr, &perr) {
			attrs = append(attrs, "line", perr.Line, "kind", perr.Kind.String())
			if detail := perr.Detail(); detail != "" {
				attrs = append(attrs, "detail", detail)
			}
		}
		config.logger.Error("translation failed", attrs...)
		return result, runErr
	}

	if result.Depth > 0 {
		config.logger.Warn("input ended with open scopes", "file", config.filename, "scopes", g.Scopes().String())
	}
	config.logger.Debug("translated", "file", config.filename, "helpers", result.Helpers)
	return result, nil
}

// TranslateSource scans Delight source text and translates it.
func TranslateSource(source []byte, opts ...Opt) (*Result, error) {
	config := newConfig(opts)
	var telemetry *Telemetry
	if config.telemetry >= TelemetryBasic {
		telemetry = &Telemetry{}
	}

	var start time.Time
	if config.telemetry >= TelemetryTiming {
		start = time.Now()
	}

	scanOpts := []lexer.Option{lexer.WithFilename(config.filename), lexer.WithLogger(config.logger)}
	if config.indentation != "" {
		scanOpts = append(scanOpts, lexer.WithIndentation(config.indentation))
	}
	stream, err := lexer.Scan(source, scanOpts...)
	if err != nil {
		config.logger.Error("scan failed", "file", config.filename, "error", err.Error())
		return &Result{Telemetry: telemetry}, err
	}

	if config.telemetry >= TelemetryTiming {
		telemetry.ScanTime = time.Since(start)
	}
	return translate(stream, config, telemetry)
}

// TranslateString is a convenience wrapper for tests
func TranslateString(source string, opts ...Opt) (*Result, error) {
	return TranslateSource([]byte(source), opts...)
}

// Hash returns the hex blake2b-256 digest of source, recorded in generated
// file headers.
func Hash(source []byte) string {
	sum := blake2b.Sum256(source)
	return hex.EncodeToString(sum[:])
}
