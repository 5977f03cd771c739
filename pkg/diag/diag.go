// Package diag collects recoverable diagnostics produced while loading and
// resolving a graph description.
//
// Expected data problems (a profile that is not loaded, an element id that
// does not exist, a name pattern without matches) must not abort a run.
// Components record them on a [Collector] tagged with the source location
// of the offending descriptor and carry on with the next item. The run as a
// whole fails when any diagnostic of [SeverityError] was recorded.
//
// Every diagnostic is also written to the collector's logger as it arrives,
// so progress output and the final summary stay in step.
package diag

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Diagnostic is a single recorded problem.
type Diagnostic struct {
	Severity Severity
	Source   string   // Descriptor location, e.g. "links.nodeGraph#12"
	Message  string   // Human-readable description
	Hints    []string // Optional suggestions (close matches and the like)
}

// String formats the diagnostic on one line.
func (d Diagnostic) String() string {
	s := d.Message
	if d.Source != "" {
		s = d.Source + ": " + s
	}
	if len(d.Hints) > 0 {
		s += fmt.Sprintf(" (did you mean %v?)", d.Hints)
	}
	return s
}

// Collector accumulates diagnostics. It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	logger *log.Logger
	items  []Diagnostic
}

// NewCollector creates a collector that logs to l.
// A nil logger discards log output; diagnostics are still recorded.
func NewCollector(l *log.Logger) *Collector {
	if l == nil {
		l = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Collector{logger: l}
}

// Add records d and logs it at the matching level.
func (c *Collector) Add(d Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()

	kv := []any{}
	if d.Source != "" {
		kv = append(kv, "source", d.Source)
	}
	if len(d.Hints) > 0 {
		kv = append(kv, "closeMatches", d.Hints)
	}
	switch d.Severity {
	case SeverityError:
		c.logger.Error(d.Message, kv...)
	case SeverityWarn:
		c.logger.Warn(d.Message, kv...)
	default:
		c.logger.Debug(d.Message, kv...)
	}
}

// Errorf records an error-severity diagnostic.
func (c *Collector) Errorf(source, format string, args ...any) {
	c.Add(Diagnostic{Severity: SeverityError, Source: source, Message: fmt.Sprintf(format, args...)})
}

// Warnf records a warning.
func (c *Collector) Warnf(source, format string, args ...any) {
	c.Add(Diagnostic{Severity: SeverityWarn, Source: source, Message: fmt.Sprintf(format, args...)})
}

// Infof records an informational diagnostic. These are logged at debug level.
func (c *Collector) Infof(source, format string, args ...any) {
	c.Add(Diagnostic{Severity: SeverityInfo, Source: source, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (c *Collector) HasErrors() bool {
	return c.Count(SeverityError) > 0
}

// Count returns the number of diagnostics with the given severity.
func (c *Collector) Count(s Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// Diagnostics returns a copy of everything recorded so far, in arrival order.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}
