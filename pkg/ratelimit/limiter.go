package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter defines the interface for pacing
type Limiter interface {
	// Wait blocks until the next request may start or ctx is done
	Wait(ctx context.Context) error
}

// Recorder is a Limiter that keeps wait statistics
type Recorder interface {
	Limiter
	Stats() (waits int, waited time.Duration)
	Reset()
}

// Pacer sleeps for a fixed, unjittered delay on every Wait
type Pacer struct {
	delay time.Duration

	mu     sync.Mutex
	waits  int
	waited time.Duration
}

var _ Recorder = (*Pacer)(nil)

// NewPacer creates a pacer; a zero or negative delay disables pausing
func NewPacer(delay time.Duration) *Pacer {
	if delay < 0 {
		delay = 0
	}
	return &Pacer{delay: delay}
}

// Wait pauses for the configured delay
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	p.waits++
	p.mu.Unlock()

	if p.delay == 0 {
		return ctx.Err()
	}

	start := time.Now()
	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		p.record(time.Since(start))
		return ctx.Err()
	}
	p.record(time.Since(start))
	return nil
}

func (p *Pacer) record(d time.Duration) {
	p.mu.Lock()
	p.waited += d
	p.mu.Unlock()
}

// Stats returns how many times Wait was called and the total time spent
func (p *Pacer) Stats() (waits int, waited time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waits, p.waited
}

// Reset clears the statistics
func (p *Pacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waits = 0
	p.waited = 0
}
