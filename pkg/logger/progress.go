package logger

import (
	"sync"
	"time"
)

// StepTicker advances a purely cosmetic progress indicator while a
// long-running call is pending. It owns a display counter and nothing
// else; callers must never feed audit data through it.
type StepTicker struct {
	logger   Logger
	steps    []string
	interval time.Duration

	mu       sync.Mutex
	current  int
	started  bool
	stop     chan struct{}
	stopOnce sync.Once
}

// StepTickerConfig configures a StepTicker
type StepTickerConfig struct {
	Steps    []string      `json:"steps"`
	Interval time.Duration `json:"interval"`
	Logger   Logger        `json:"-"`
}

// NewStepTicker creates a new step ticker
func NewStepTicker(config StepTickerConfig) *StepTicker {
	if config.Logger == nil {
		config.Logger = GetGlobalLogger()
	}
	if config.Interval == 0 {
		config.Interval = 2 * time.Second
	}

	return &StepTicker{
		logger:   config.Logger.WithComponent("progress"),
		steps:    config.Steps,
		interval: config.Interval,
		stop:     make(chan struct{}),
	}
}

// Start begins advancing the indicator on a recurring timer. The counter
// is capped at the final step; the ticker keeps running silently until
// Stop is called.
func (s *StepTicker) Start() {
	s.mu.Lock()
	if s.started || len(s.steps) == 0 {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.logger.WithField("step", s.steps[0]).Info("Working")

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.advance()
			}
		}
	}()
}

// Stop cancels the ticker. Safe to call multiple times and before Start.
func (s *StepTicker) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// Current returns the index of the step currently displayed
func (s *StepTicker) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *StepTicker) advance() {
	s.mu.Lock()
	if s.current >= len(s.steps)-1 {
		s.mu.Unlock()
		return
	}
	s.current++
	step := s.steps[s.current]
	s.mu.Unlock()

	s.logger.WithField("step", step).Info("Working")
}
