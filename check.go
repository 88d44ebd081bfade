package cssmodules

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/berlysia/cssmodules-in-js/internal/extract"
	"github.com/berlysia/cssmodules-in-js/internal/report"
	"github.com/berlysia/cssmodules-in-js/internal/syntax"
)

// CheckConfig holds check configuration
type CheckConfig struct {
	Config
	Dir    string        // Base directory for Paths and .gitignore ("." when empty)
	Paths  []string      // Glob patterns of files to check
	Strict bool          // Report invalid CSS as errors instead of warnings
	Report report.Config // Issue limits
}

// fileOutcome is the result of checking one file
type fileOutcome struct {
	modules []report.Module
	issues  []report.Issue
	warning string
	failed  bool
	classes int
}

// Check transforms every file matched by config.Paths without writing
// anything, and reports transform failures and invalid CSS as issues.
func Check(ctx context.Context, config CheckConfig, opts ...Option) (*report.Result, error) {
	// 1. Scan component files
	files, stats, err := ScanFiles(config.Dir, config.Paths, config.Config)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	result := &report.Result{
		FilesDiscovered: stats.FilesDiscovered,
		FilesScanned:    stats.FilesScanned,
		FilesSkipped:    stats.FilesSkipped,
	}

	// 2. Transform files in parallel; outcomes keep scan order
	plugin := New(config.Config, opts...)
	outcomes := make([]fileOutcome, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = checkFile(plugin, file, config.Strict)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("check canceled: %w", err)
	}

	// 3. Merge outcomes
	for _, outcome := range outcomes {
		if outcome.failed {
			result.FilesFailed++
		}
		if len(outcome.modules) > 0 {
			result.FilesWithCSS++
		}
		if outcome.warning != "" {
			result.Warnings = append(result.Warnings, outcome.warning)
		}
		result.BlocksExtracted += len(outcome.modules)
		result.ClassesDefined += outcome.classes
		result.Modules = append(result.Modules, outcome.modules...)
		result.Issues = append(result.Issues, outcome.issues...)
	}

	// 4. Sort and limit issues
	report.SortIssues(result.Issues)
	if config.Report.MaxIssuesPerLinter > 0 || config.Report.MaxSameIssues > 0 {
		result.Issues, result.TruncatedCount = report.LimitIssues(result.Issues, config.Report)
	}

	return result, nil
}

// checkFile transforms a single file and converts the outcome into issues
func checkFile(plugin *Plugin, file string, strict bool) fileOutcome {
	src, err := os.ReadFile(file)
	if err != nil {
		return fileOutcome{warning: fmt.Sprintf("skipped %s: %v", file, err)}
	}

	res, err := plugin.Transform(string(src), file)
	if err != nil {
		return fileOutcome{
			failed: true,
			issues: []report.Issue{IssueFromError(file, src, err)},
		}
	}
	if res == nil {
		return fileOutcome{}
	}

	var outcome fileOutcome
	for _, a := range res.Artifacts {
		outcome.classes += len(a.Classes)
		outcome.modules = append(outcome.modules, report.Module{
			ID:      a.ID,
			File:    file,
			Binding: a.VariableName,
			Classes: a.Classes,
		})

		if a.CSSError == nil {
			continue
		}
		severity := report.SeverityWarning
		if strict {
			severity = report.SeverityError
		}
		issue := report.Issue{
			FromLinter: report.LinterCSS,
			Text:       fmt.Sprintf("invalid CSS in %s: %v", a.VariableName, a.CSSError),
			Severity:   severity,
			Pos:        report.IssuePos{Filename: file, Line: a.Location.Line, Column: a.Location.Column},
		}
		issue.SourceLines = sourceLine(src, a.Location.Line)
		outcome.issues = append(outcome.issues, issue)
	}

	return outcome
}

// IssueFromError converts a transform failure for file into an issue.
// Source lines are attached when the failure has a location.
func IssueFromError(file string, src []byte, err error) report.Issue {
	issue := report.Issue{
		FromLinter: report.LinterTransform,
		Text:       err.Error(),
		Severity:   report.SeverityError,
		Pos:        report.IssuePos{Filename: file},
	}

	var xe *extract.Error
	var pe *syntax.ParseError
	switch {
	case errors.As(err, &xe):
		issue.Text = xe.Message()
		issue.Kind = string(xe.Kind)
		issue.Pos.Line = xe.Location.Line
		issue.Pos.Column = xe.Location.Column
		issue.SourceLines = sourceLine(src, xe.Location.Line)
	case errors.As(err, &pe):
		issue.Text = "syntax error: " + pe.Message
		issue.Kind = "PARSE_ERROR"
		issue.Pos.Line = pe.Line
		issue.Pos.Column = pe.Column
		issue.SourceLines = sourceLine(src, pe.Line)
	}

	return issue
}

// sourceLine returns the 1-based line of src, or nil when out of range.
func sourceLine(src []byte, line int) []string {
	if line <= 0 {
		return nil
	}
	lines := strings.Split(string(src), "\n")
	if line > len(lines) {
		return nil
	}
	return []string{strings.TrimRight(lines[line-1], "\r")}
}
