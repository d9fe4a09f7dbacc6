package model

import (
	"fmt"
	"sync"
)

// Diagnostic records one non-fatal degradation or configuration problem.
type Diagnostic struct {
	Component string `json:"component"` // e.g. "framebook", "language", "justice"
	Message   string `json:"message"`
}

// Diagnostics collects warnings across a run so headless callers can
// assert on degraded coverage instead of scraping log output. Safe for
// concurrent use.
type Diagnostics struct {
	mu   sync.Mutex
	list []Diagnostic
	seen map[string]bool
}

// NewDiagnostics creates an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{seen: make(map[string]bool)}
}

// Warn appends a warning.
func (d *Diagnostics) Warn(component, format string, args ...interface{}) {
	d.mu.Lock()
	d.list = append(d.list, Diagnostic{Component: component, Message: fmt.Sprintf(format, args...)})
	d.mu.Unlock()
}

// WarnOnce appends a warning only the first time the key is seen. Used for
// per-language / per-category degradation notices.
func (d *Diagnostics) WarnOnce(key, component, format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[key] {
		return
	}
	d.seen[key] = true
	d.list = append(d.list, Diagnostic{Component: component, Message: fmt.Sprintf(format, args...)})
}

// List returns a copy of the collected diagnostics.
func (d *Diagnostics) List() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.list))
	copy(out, d.list)
	return out
}

// Len returns the number of collected diagnostics.
func (d *Diagnostics) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.list)
}
