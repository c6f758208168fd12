package watch

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerBurstFiresOnce(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(40*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	// Simulate the event burst of one rewrite: several triggers inside
	// the quiet period.
	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(120 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("fired %d times for one burst, want 1", got)
	}
}

func TestDebouncerSeparateBurstsFireSeparately(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	d.Trigger()
	time.Sleep(80 * time.Millisecond)
	d.Trigger()
	time.Sleep(80 * time.Millisecond)

	if got := fired.Load(); got != 2 {
		t.Errorf("fired %d times for two bursts, want 2", got)
	}
}

func TestDebouncerStopCancelsPendingFire(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { fired.Add(1) })

	d.Trigger()
	d.Stop()
	d.Stop()

	time.Sleep(90 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("fired %d times after Stop, want 0", got)
	}
}
