package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"financial-audit-service/cmd/auditor/config"
	"financial-audit-service/internal/extractor"
	"financial-audit-service/internal/session"
	"financial-audit-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the audit command
var (
	registryFile  string
	earningsFile  string
	statementFile string
	inputBundle   string
	outputFile    string
	apiKey        string
	model         string
	showProgress  bool
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Reconcile earnings and bank statement into a per-user audit",
	Long: `Audit extracts records from the three source documents, reconciles
debits against statement credits per user, and optionally renders a
paginated PDF report.

This command requires either:
- All three source PDFs (user registry, daily earnings, bank statement), or
- A pre-extracted record bundle (JSON) for offline runs

Examples:
  # Full audit from source documents
  auditor audit --registry registry.pdf --earnings earnings.pdf \
    --statement statement.pdf --output report.pdf

  # Offline audit from a pre-extracted bundle
  auditor audit --input-bundle records.json --output report.pdf

  # Reconcile without rendering a report
  auditor audit --input-bundle records.json

  # With progress indicators
  auditor audit --registry r.pdf --earnings e.pdf --statement s.pdf \
    --output report.pdf --progress`,

	PreRunE: validateAuditFlags,
	RunE:    runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	// Source document flags
	auditCmd.Flags().StringVarP(&registryFile, "registry", "r", "", "path to user registry PDF")
	auditCmd.Flags().StringVarP(&earningsFile, "earnings", "e", "", "path to daily earnings PDF")
	auditCmd.Flags().StringVarP(&statementFile, "statement", "s", "", "path to bank statement PDF")
	auditCmd.Flags().StringVar(&inputBundle, "input-bundle", "", "path to pre-extracted record bundle (JSON), replaces the three PDFs")

	// Output flags
	auditCmd.Flags().StringVarP(&outputFile, "output", "o", "", "PDF report output path (omit to skip report rendering)")

	// Extraction flags
	auditCmd.Flags().StringVar(&apiKey, "api-key", "", "document extraction API key (or AUDITOR_API_KEY)")
	auditCmd.Flags().StringVar(&model, "model", "", "document extraction model (default per service)")

	// UI flags
	auditCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")

	// Bind flags to viper
	viper.BindPFlag("registry", auditCmd.Flags().Lookup("registry"))
	viper.BindPFlag("earnings", auditCmd.Flags().Lookup("earnings"))
	viper.BindPFlag("statement", auditCmd.Flags().Lookup("statement"))
	viper.BindPFlag("input-bundle", auditCmd.Flags().Lookup("input-bundle"))
	viper.BindPFlag("output", auditCmd.Flags().Lookup("output"))
	viper.BindPFlag("api-key", auditCmd.Flags().Lookup("api-key"))
	viper.BindPFlag("model", auditCmd.Flags().Lookup("model"))
	viper.BindPFlag("progress", auditCmd.Flags().Lookup("progress"))
}

func validateAuditFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file and env)
	registryFile = viper.GetString("registry")
	earningsFile = viper.GetString("earnings")
	statementFile = viper.GetString("statement")
	inputBundle = viper.GetString("input-bundle")
	outputFile = viper.GetString("output")
	apiKey = viper.GetString("api-key")
	model = viper.GetString("model")
	showProgress = viper.GetBool("progress")

	if inputBundle != "" {
		if registryFile != "" || earningsFile != "" || statementFile != "" {
			return fmt.Errorf("--input-bundle replaces the source documents; do not combine it with --registry, --earnings or --statement")
		}
		return validateFileExists(inputBundle, "record bundle")
	}

	// All three source documents are required for live extraction
	if registryFile == "" || earningsFile == "" || statementFile == "" {
		return fmt.Errorf("all three source documents are required: --registry, --earnings, --statement (or use --input-bundle)")
	}

	for _, doc := range []struct{ path, description string }{
		{registryFile, "user registry document"},
		{earningsFile, "daily earnings document"},
		{statementFile, "bank statement document"},
	} {
		if err := validateFileExists(doc.path, doc.description); err != nil {
			return err
		}
	}

	if apiKey == "" {
		return fmt.Errorf("extraction API key is required: use --api-key or set AUDITOR_API_KEY")
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	return nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	// Cobra already validated the flags; failures from here on are
	// handled by the CLI error handler with typed exit codes.
	cmd.SilenceUsage = true

	ctx := context.Background()

	logConfig := config.CreateLoggerConfig(viper.GetBool("verbose"))
	log, err := logger.NewLogger(logConfig)
	if err != nil {
		return err
	}
	logger.SetGlobalLogger(log)

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting audit...\n")
		if inputBundle != "" {
			fmt.Fprintf(os.Stderr, "Record bundle: %s\n", inputBundle)
		} else {
			fmt.Fprintf(os.Stderr, "Registry: %s\n", registryFile)
			fmt.Fprintf(os.Stderr, "Earnings: %s\n", earningsFile)
			fmt.Fprintf(os.Stderr, "Statement: %s\n", statementFile)
		}
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Report output: %s\n", outputFile)
		}
	}

	// Create the extraction adapter
	var ext extractor.Extractor
	if inputBundle != "" {
		ext = extractor.NewFileExtractor(inputBundle)
	} else {
		geminiConfig := config.CreateGeminiConfig(apiKey, model)
		ext, err = extractor.NewGeminiExtractor(geminiConfig)
		if err != nil {
			return err
		}
	}

	exp, err := config.CreateExporter()
	if err != nil {
		return err
	}

	s := session.NewSession(config.CreateSessionConfig(showProgress), ext, exp)

	var outcome *session.Outcome
	if inputBundle != "" {
		// The bundle stands in for the three documents; hand the
		// session its own path so the concurrent read stage still
		// verifies it is present and non-empty.
		outcome, err = s.Run(ctx, &session.Inputs{
			RegistryPath:  inputBundle,
			EarningsPath:  inputBundle,
			StatementPath: inputBundle,
			OutputPath:    outputFile,
		})
	} else {
		outcome, err = s.Run(ctx, &session.Inputs{
			RegistryPath:  registryFile,
			EarningsPath:  earningsFile,
			StatementPath: statementFile,
			OutputPath:    outputFile,
		})
	}
	if err != nil {
		return err
	}

	printAuditSummary(outcome)

	return nil
}

func printAuditSummary(outcome *session.Outcome) {
	result := outcome.Result
	totals := outcome.Presentation.Totals

	fmt.Printf("Audit complete (%s)\n", outcome.RunID)
	fmt.Printf("  Users audited:      %d\n", len(result.UserSummaries))
	fmt.Printf("  Total owed:         %s\n", totals.TotalOwed.StringFixed(2))
	fmt.Printf("  Total sent:         %s\n", totals.TotalSent.StringFixed(2))
	fmt.Printf("  Net balance:        %s\n", totals.NetBalance.StringFixed(2))
	fmt.Printf("  Missing payments:   %d\n", len(result.MissingPayments))
	fmt.Printf("  Unknown accounts:   %d\n", len(result.UnknownAccounts))

	if result.SummaryNote != "" {
		fmt.Printf("\n%s\n", result.SummaryNote)
	}
	if outcome.ReportPath != "" {
		fmt.Printf("\nReport written to %s\n", outcome.ReportPath)
	}
}
