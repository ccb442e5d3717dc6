package timectrl

import (
	"context"
	"testing"
	"time"
)

func TestInstantClockAdvancesWithoutBlocking(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	clk := Instant(start)

	begin := time.Now()
	if err := clk.Sleep(context.Background(), 10*time.Second); err != nil {
		t.Fatalf("Sleep returned error: %v", err)
	}
	if elapsed := time.Since(begin); elapsed > time.Second {
		t.Fatalf("Sleep blocked for %v, want immediate return", elapsed)
	}

	want := start.Add(10 * time.Second)
	if got := clk.Now(); !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}

func TestInstantClockHonoursCancelledContext(t *testing.T) {
	clk := Instant(time.Unix(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := clk.Sleep(ctx, time.Second); err != context.Canceled {
		t.Fatalf("Sleep = %v, want context.Canceled", err)
	}
}

func TestSystemClockSleepCancellation(t *testing.T) {
	clk := System()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	begin := time.Now()
	err := clk.Sleep(ctx, 10*time.Second)
	if err != context.Canceled {
		t.Fatalf("Sleep = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(begin); elapsed > 5*time.Second {
		t.Fatalf("cancelled Sleep took %v", elapsed)
	}
}
