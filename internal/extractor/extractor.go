// Package extractor defines the boundary with the external
// document-understanding service. The adapter converts the three source
// PDFs into raw structured record sets; all matching and aggregation
// stays in the engine so results remain deterministic and verifiable.
//
// Adapter output is untrusted: everything passes schema validation
// before it reaches the engine.
package extractor

import (
	"context"
	"fmt"

	"financial-audit-service/internal/models"
)

// Documents carries the raw bytes of the three uploaded source PDFs
type Documents struct {
	Registry  []byte
	Earnings  []byte
	Statement []byte
}

// Validate checks that all three documents are present and non-empty
func (d *Documents) Validate() error {
	if len(d.Registry) == 0 {
		return fmt.Errorf("registry document is empty")
	}
	if len(d.Earnings) == 0 {
		return fmt.Errorf("earnings document is empty")
	}
	if len(d.Statement) == 0 {
		return fmt.Errorf("statement document is empty")
	}
	return nil
}

// ExtractionResult holds the three raw record sets extracted from the
// source documents.
type ExtractionResult struct {
	Registry []*models.RegistryEntry `json:"registry"`
	Debits   []*models.DebitEntry    `json:"debits"`
	Credits  []*models.CreditEntry   `json:"credits"`
}

// Validate checks every extracted record against the schema. The first
// violation is reported with its record position.
func (r *ExtractionResult) Validate() error {
	if len(r.Registry) == 0 {
		return fmt.Errorf("extraction produced no registry entries")
	}

	for i, entry := range r.Registry {
		if entry == nil {
			return fmt.Errorf("registry entry %d is null", i)
		}
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("registry entry %d: %w", i, err)
		}
	}

	for i, debit := range r.Debits {
		if debit == nil {
			return fmt.Errorf("debit entry %d is null", i)
		}
		if err := debit.Validate(); err != nil {
			return fmt.Errorf("debit entry %d: %w", i, err)
		}
	}

	for i, credit := range r.Credits {
		if credit == nil {
			return fmt.Errorf("credit entry %d is null", i)
		}
		if err := credit.Validate(); err != nil {
			return fmt.Errorf("credit entry %d: %w", i, err)
		}
	}

	return nil
}

// Extractor converts the three source documents into structured records
type Extractor interface {
	Extract(ctx context.Context, docs *Documents) (*ExtractionResult, error)
}
