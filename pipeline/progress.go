package pipeline

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Progress receives per-part progress of a template run.
type Progress interface {
	Start(total int)
	Increment(delta int)
	Finish()
}

type noProgress struct{}

func (noProgress) Start(int)     {}
func (noProgress) Increment(int) {}
func (noProgress) Finish()       {}

// ProgressTracker tracks and reports the parts a feature has processed.
type ProgressTracker struct {
	writer    io.Writer
	label     string
	total     int
	current   int
	startTime time.Time
	started   bool
	mu        sync.Mutex
}

// NewProgressTracker creates a tracker that writes to writer (typically os.Stderr).
func NewProgressTracker(writer io.Writer, label string) *ProgressTracker {
	return &ProgressTracker{
		writer: writer,
		label:  label,
	}
}

// Start begins tracking a run of total parts.
func (p *ProgressTracker) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.total = total
	p.current = 0
	p.report()
}

// Increment increases the number of processed parts.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current += delta
	if p.current > p.total {
		p.current = p.total
	}
	p.report()
}

// Finish marks the run as complete.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current = p.total
	p.report()
	fmt.Fprintln(p.writer)
	p.started = false
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}
	fmt.Fprintf(p.writer, "\r%s: part %d/%d (%.0f%%) %s",
		p.label, p.current, p.total, percentage, time.Since(p.startTime).Round(time.Second))
}
