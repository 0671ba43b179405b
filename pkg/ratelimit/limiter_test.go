package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPacerWaitsFixedDelay(t *testing.T) {
	p := NewPacer(50 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	}
	elapsed := time.Since(start)

	if elapsed < 150*time.Millisecond {
		t.Errorf("Expected at least 150ms of pacing, got %v", elapsed)
	}

	waits, waited := p.Stats()
	if waits != 3 {
		t.Errorf("Expected 3 waits, got %d", waits)
	}
	if waited < 150*time.Millisecond {
		t.Errorf("Expected recorded wait of at least 150ms, got %v", waited)
	}

	p.Reset()
	if waits, _ := p.Stats(); waits != 0 {
		t.Error("Expected stats to be reset")
	}
}

func TestPacerZeroDelay(t *testing.T) {
	p := NewPacer(-time.Second)
	if p.delay != 0 {
		t.Errorf("Expected negative delay to clamp to 0, got %v", p.delay)
	}

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Error("Expected zero-delay pacer to return immediately")
	}
}

func TestPacerHonorsCancellation(t *testing.T) {
	p := NewPacer(10 * time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Wait did not return promptly after cancellation")
	}
}

func TestPacerImplementsLimiter(t *testing.T) {
	var _ Limiter = NewPacer(time.Second)
}
