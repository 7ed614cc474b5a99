package cmd

import (
	"fmt"
	"os"
	"strings"

	"financial-audit-service/pkg/errors"
	"financial-audit-service/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints the error for a human operator and returns the
// process exit code.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if auditErr, ok := errors.AsAuditError(err); ok {
		return h.handleAuditError(auditErr)
	}

	return h.handleGenericError(err)
}

// handleAuditError handles AuditError with detailed context
func (h *CLIErrorHandler) handleAuditError(err *errors.AuditError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", h.getCategoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

// handleGenericError handles non-AuditError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory") {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if os.IsPermission(err) || strings.Contains(err.Error(), "permission denied") {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if !h.verbose {
		fmt.Fprintf(os.Stderr, "\nFor more details, run with --verbose\n")
	}

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryInput:
		return `Input error help:
• Check that all three source documents exist and are readable
• Verify the file paths are correct (use absolute paths if needed)
• Make sure the documents are not empty`

	case errors.CategoryExtraction:
		return `Extraction error help:
• Rate-limit errors clear on their own; wait a minute and retry
• Credential errors need a valid API key (--api-key or AUDITOR_API_KEY)
• Malformed-output errors usually mean an unreadable or unusual document;
  check that the right file was uploaded for each slot`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'auditor audit --help' to see all available options`

	case errors.CategoryIntegrity:
		return `Integrity error help:
• The extracted records are inconsistent; no partial audit is produced
• Check that the earnings ledger only names users from the registry
• Verify amounts are non-negative and times use 24h HH:mm
• Re-run extraction if a document was misread`

	case errors.CategoryExport:
		return `Export error help:
• Check that the output directory exists and is writable
• Verify there is enough disk space for the report
• The audit itself succeeded; re-run with a different --output path`

	default:
		return `For more help:
• Use 'auditor --help' for general help
• Use 'auditor audit --help' for command-specific help
• Report bugs or ask for help on the project repository`
	}
}
