package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Progress receives per-item updates of a long-running stage
type Progress interface {
	Start(label string, total int)
	Advance(item string, ok bool)
	Finish()
}

// NopProgress discards updates
type NopProgress struct{}

func (NopProgress) Start(string, int)    {}
func (NopProgress) Advance(string, bool) {}
func (NopProgress) Finish()              {}

// ProgressDisplay redraws a single progress line on an interactive terminal
type ProgressDisplay struct {
	mu        sync.Mutex
	label     string
	total     int
	done      int
	failed    int
	current   string
	startTime time.Time
}

// NewProgressDisplay returns a display on interactive terminals and a
// NopProgress otherwise, so piped output stays line-oriented.
func NewProgressDisplay() Progress {
	if !IsInteractive() || IsQuietMode() {
		return NopProgress{}
	}
	return &ProgressDisplay{}
}

// Start resets the display for a new stage
func (p *ProgressDisplay) Start(label string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.label = label
	p.total = total
	p.done = 0
	p.failed = 0
	p.current = ""
	p.startTime = time.Now()
	p.printProgress()
}

// Advance records one finished item
func (p *ProgressDisplay) Advance(item string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if !ok {
		p.failed++
	}
	p.current = item
	p.printProgress()
}

// Finish ends the progress line
func (p *ProgressDisplay) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(Out)
}

// printProgress prints the progress line
func (p *ProgressDisplay) printProgress() {
	fmt.Fprintf(Out, "\r%s\r%s", strings.Repeat(" ", 100), p.line())
}

func (p *ProgressDisplay) line() string {
	const barWidth = 20
	filled := 0
	if p.total > 0 {
		filled = p.done * barWidth / p.total
	}
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	line := fmt.Sprintf("%s [%s] %d/%d • %s",
		Cyan(p.label),
		bar,
		p.done,
		p.total,
		FormatDuration(time.Since(p.startTime)),
	)
	if p.current != "" {
		line += fmt.Sprintf(" • %s", p.current)
	}
	if p.failed > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d failed", p.failed)))
	}
	return line
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// FormatBytes formats bytes in a human-readable way
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
