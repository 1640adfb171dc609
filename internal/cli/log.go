// Package cli implements the rfit command-line interface.
//
// This package provides commands for resolving surfaces against the stock
// template catalogs, running surface files in batch, drawing resistance
// networks, serving the resolver over HTTP and managing the result cache.
// The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - resolve: Pick and build a template for one surface
//   - run: Resolve every surface in a TOML, JSON or YAML file
//   - catalog, browse: Inspect the template catalogs
//   - diagram: Draw a resolved construction as a resistance network
//   - validate: Check a realized stack against its target
//   - serve: Expose the resolver as an HTTP API
//   - cache: Manage the result cache
//   - history: List, show and prune reports saved with run --save
//
// # Configuration
//
// Cache backend, batch concurrency, catalog defaults, the listen address and
// the run history database come from rfit.toml, located via --config, $RFIT_CONFIG or the XDG config
// directory. See [Config].
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Resolved 42 surfaces (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
