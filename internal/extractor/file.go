package extractor

import (
	"context"
	"encoding/json"
	"os"

	"financial-audit-service/pkg/errors"
	"financial-audit-service/pkg/logger"
)

// FileExtractor reads a pre-extracted record bundle from a JSON file
// instead of calling the document-understanding service. It exists for
// offline runs and for auditing with records produced elsewhere; the
// bundle passes the same schema validation as live extraction output.
type FileExtractor struct {
	path string
	log  logger.Logger
}

// NewFileExtractor creates an extractor reading from the given bundle path
func NewFileExtractor(path string) *FileExtractor {
	return &FileExtractor{
		path: path,
		log:  logger.GetGlobalLogger().WithComponent("extractor"),
	}
}

// Extract loads and validates the record bundle. The docs argument is
// ignored; the bundle replaces live document understanding entirely.
func (f *FileExtractor) Extract(ctx context.Context, docs *Documents) (*ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ExtractionError(errors.CodeServiceUnavailable, "extraction canceled", err)
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InputError(errors.CodeFileNotFound, f.path, err)
		}
		return nil, errors.InputError(errors.CodeFileUnreadable, f.path, err)
	}

	var result ExtractionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.ExtractionError(errors.CodeMalformedOutput, "bundle is not valid JSON", err).
			WithContext("path", f.path)
	}

	if err := result.Validate(); err != nil {
		return nil, errors.ExtractionError(errors.CodeSchemaViolation, err.Error(), err).
			WithContext("path", f.path)
	}

	f.log.WithFields(logger.Fields{
		"path":             f.path,
		"registry_entries": len(result.Registry),
		"debit_entries":    len(result.Debits),
		"credit_entries":   len(result.Credits),
	}).Info("Record bundle loaded")

	return &result, nil
}
