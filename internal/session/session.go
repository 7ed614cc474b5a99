// Package session orchestrates a full audit run: concurrent document
// loading, one extraction call, reconciliation, presentation and report
// export. A session runs at most one audit at a time.
package session

import (
	"context"
	"os"
	"sync"
	"time"

	"financial-audit-service/internal/engine"
	"financial-audit-service/internal/exporter"
	"financial-audit-service/internal/extractor"
	"financial-audit-service/internal/models"
	"financial-audit-service/internal/presenter"
	"financial-audit-service/pkg/errors"
	"financial-audit-service/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Inputs names the three source documents for an audit run
type Inputs struct {
	RegistryPath  string
	EarningsPath  string
	StatementPath string

	// OutputPath receives the rendered PDF report; empty skips export
	OutputPath string
}

// Validate checks that all three source documents are named
func (in *Inputs) Validate() error {
	if in.RegistryPath == "" {
		return errors.InputError(errors.CodeFileNotFound, "registry", nil)
	}
	if in.EarningsPath == "" {
		return errors.InputError(errors.CodeFileNotFound, "earnings", nil)
	}
	if in.StatementPath == "" {
		return errors.InputError(errors.CodeFileNotFound, "statement", nil)
	}
	return nil
}

// Outcome is the result of a completed audit run
type Outcome struct {
	RunID        string
	Result       *models.AuditResult
	Presentation *presenter.Presentation
	ReportPath   string
	Duration     time.Duration
}

// Config holds orchestration settings
type Config struct {
	// ShowProgress enables the cosmetic step ticker while extraction
	// is pending
	ShowProgress bool

	// ProgressInterval is how often the ticker advances
	ProgressInterval time.Duration
}

// DefaultConfig returns default orchestration settings
func DefaultConfig() *Config {
	return &Config{
		ShowProgress:     true,
		ProgressInterval: 2 * time.Second,
	}
}

// progressSteps are shown in order while the extraction call is
// outstanding. The ticker caps at the last step; it never claims
// completion.
var progressSteps = []string{
	"Reading source documents",
	"Extracting structured records",
	"Cross-referencing statement credits",
	"Compiling audit results",
}

// Session runs audits end to end
type Session struct {
	config    *Config
	extractor extractor.Extractor
	engine    *engine.Engine
	exporter  *exporter.Exporter
	log       logger.Logger

	mu sync.Mutex
}

// NewSession creates an audit session
func NewSession(config *Config, ext extractor.Extractor, exp *exporter.Exporter) *Session {
	if config == nil {
		config = DefaultConfig()
	}

	return &Session{
		config:    config,
		extractor: ext,
		engine:    engine.NewEngine(),
		exporter:  exp,
		log:       logger.GetGlobalLogger().WithComponent("session"),
	}
}

// Run executes a complete audit. Only one run may be in flight per
// session; a second concurrent call fails without touching any state.
func (s *Session) Run(ctx context.Context, inputs *Inputs) (*Outcome, error) {
	if !s.mu.TryLock() {
		return nil, errors.New(errors.CategoryInternal, errors.CodeAuditInProgress,
			"an audit is already in progress").
			WithSuggestion("Wait for the current audit to finish before starting another")
	}
	defer s.mu.Unlock()

	if err := inputs.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.New().String()
	log := s.log.WithField("run_id", runID)
	log.Info("Audit run started")

	docs, err := loadDocuments(ctx, inputs)
	if err != nil {
		return nil, err
	}

	result, err := s.extract(ctx, docs)
	if err != nil {
		return nil, err
	}

	auditResult, err := s.engine.Reconcile(result.Registry, result.Debits, result.Credits)
	if err != nil {
		return nil, err
	}

	presentation := presenter.Present(auditResult)

	outcome := &Outcome{
		RunID:        runID,
		Result:       auditResult,
		Presentation: presentation,
	}

	if inputs.OutputPath != "" {
		if err := s.exporter.ExportToFile(presentation, auditResult, inputs.OutputPath); err != nil {
			return nil, err
		}
		outcome.ReportPath = inputs.OutputPath
	}

	outcome.Duration = time.Since(start)
	log.WithFields(logger.Fields{
		"users":            len(auditResult.UserSummaries),
		"missing_payments": len(auditResult.MissingPayments),
		"unknown_accounts": len(auditResult.UnknownAccounts),
		"duration":         outcome.Duration.String(),
	}).Info("Audit run complete")

	return outcome, nil
}

// extract performs the single extraction call with the step ticker
// running while it is pending.
func (s *Session) extract(ctx context.Context, docs *extractor.Documents) (*extractor.ExtractionResult, error) {
	var ticker *logger.StepTicker
	if s.config.ShowProgress {
		ticker = logger.NewStepTicker(logger.StepTickerConfig{
			Steps:    progressSteps,
			Interval: s.config.ProgressInterval,
			Logger:   s.log,
		})
		ticker.Start()
		defer ticker.Stop()
	}

	return s.extractor.Extract(ctx, docs)
}

// loadDocuments reads the three source files concurrently. Results are
// surfaced only if every read succeeds; a failing or canceled read
// leaves nothing applied.
func loadDocuments(ctx context.Context, inputs *Inputs) (*extractor.Documents, error) {
	docs := &extractor.Documents{}

	reads := []struct {
		label string
		path  string
		dst   *[]byte
	}{
		{"registry", inputs.RegistryPath, &docs.Registry},
		{"earnings", inputs.EarningsPath, &docs.Earnings},
		{"statement", inputs.StatementPath, &docs.Statement},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, r := range reads {
		r := r
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errors.InputError(errors.CodeFileUnreadable, r.path, err).
					WithContext("document", r.label)
			}

			data, err := os.ReadFile(r.path)
			if err != nil {
				code := errors.CodeFileUnreadable
				if os.IsNotExist(err) {
					code = errors.CodeFileNotFound
				}
				return errors.InputError(code, r.path, err).WithContext("document", r.label)
			}
			if len(data) == 0 {
				return errors.InputError(errors.CodeEmptyFile, r.path, nil).WithContext("document", r.label)
			}

			*r.dst = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
