package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepTicker_AdvancesAndCaps(t *testing.T) {
	ticker := NewStepTicker(StepTickerConfig{
		Steps:    []string{"reading", "extracting", "reconciling"},
		Interval: 5 * time.Millisecond,
	})

	ticker.Start()
	defer ticker.Stop()

	deadline := time.After(2 * time.Second)
	for ticker.Current() < 2 {
		select {
		case <-deadline:
			t.Fatalf("ticker never reached final step, at %d", ticker.Current())
		case <-time.After(5 * time.Millisecond):
		}
	}

	// Give it a few more intervals; the counter must stay capped.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 2, ticker.Current())
}

func TestStepTicker_StopIsIdempotent(t *testing.T) {
	ticker := NewStepTicker(StepTickerConfig{
		Steps:    []string{"a", "b", "c"},
		Interval: 50 * time.Millisecond,
	})

	ticker.Start()
	ticker.Stop()
	ticker.Stop()

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 0, ticker.Current())
}

func TestStepTicker_NoSteps(t *testing.T) {
	ticker := NewStepTicker(StepTickerConfig{Interval: time.Millisecond})
	ticker.Start()
	ticker.Stop()
	assert.Equal(t, 0, ticker.Current())
}
