package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	cssmodules "github.com/berlysia/cssmodules-in-js"
	"github.com/berlysia/cssmodules-in-js/internal/report"
)

// errIssuesFound makes the process exit with code 1 after check printed its
// report.
var errIssuesFound = errors.New("issues found")

var checkCmd = &cobra.Command{
	Use:   "check [PATTERNS...]",
	Short: "Check that every css tag in a project can be extracted",
	Long: `Transform all matching component files without writing output and report
loop usage, dynamic content, invalid scopes and invalid CSS as issues in
golangci-lint format.`,
	PreRunE: preRun,
	RunE:    runCheck,
}

func init() {
	f := checkCmd.Flags()
	f.StringSlice("paths", nil, "File patterns to scan (default **/*.{js,jsx,ts,tsx})")
	f.Bool("strict", false, "Report invalid CSS as errors and exit 1 on any issue (CI mode)")
	f.String("output-format", "", "Output format: issues|summary|full|json")
	f.Int("max-issues-per-linter", 0, "Max issues to show per linter (0=unlimited)")
	f.Int("max-same-issues", 0, "Max repeated issues to show (0=unlimited)")
	f.Bool("print-lines", true, "Show source lines with issues")
	f.Bool("print-linter-name", true, "Show (cssmodules) suffix on issues")
}

func runCheck(cmd *cobra.Command, args []string) error {
	config := buildCheckConfig(args)

	result, err := cssmodules.Check(cmd.Context(), config, cssmodules.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	quiet := getBoolWithFallback("quiet", "quiet", false)
	outputFormat := getStringWithFallback("output-format", "check.output-format", "")
	format := report.DetermineOutputFormat(outputFormat, quiet)

	if !quiet {
		if err := report.WriteOutput(cmd.OutOrStdout(), result, format, config.Report); err != nil {
			return err
		}
	}

	// Strict mode: any issue (error or warning) fails the build
	if config.Strict && len(result.Issues) > 0 {
		return errIssuesFound
	}
	if result.ErrorCount() > 0 {
		return errIssuesFound
	}
	return nil
}
