package report

import (
	"encoding/json"
	"io"
	"time"
)

// JSONOutput represents the structured JSON export schema
type JSONOutput struct {
	Version   string      `json:"version"`
	Timestamp string      `json:"timestamp"`
	Summary   JSONSummary `json:"summary"`
	Stats     JSONStats   `json:"stats"`
	Issues    []JSONIssue `json:"issues"`
	Modules   []Module    `json:"modules"`
}

// JSONSummary contains high-level issue counts
type JSONSummary struct {
	TotalIssues  int `json:"total_issues"`
	Errors       int `json:"errors"`
	Warnings     int `json:"warnings"`
	FilesScanned int `json:"files_scanned"`
}

// JSONStats contains extraction statistics
type JSONStats struct {
	FilesDiscovered int `json:"files_discovered"`
	FilesSkipped    int `json:"files_skipped"`
	FilesWithCSS    int `json:"files_with_css"`
	FilesFailed     int `json:"files_failed"`
	ModulesCount    int `json:"modules"`
	ClassesDefined  int `json:"classes_defined"`
}

// JSONIssue represents a single issue
type JSONIssue struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Kind     string `json:"kind,omitempty"`
	Linter   string `json:"linter"`
	Source   string `json:"source,omitempty"` // Optional source line
}

// WriteJSON writes the check result as JSON
func WriteJSON(w io.Writer, result *Result) error {
	output := buildJSONOutput(result, time.Now())
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// buildJSONOutput converts Result to JSONOutput
func buildJSONOutput(result *Result, now time.Time) JSONOutput {
	jsonIssues := make([]JSONIssue, len(result.Issues))
	for i, issue := range result.Issues {
		source := ""
		if len(issue.SourceLines) > 0 {
			source = issue.SourceLines[0]
		}
		jsonIssues[i] = JSONIssue{
			File:     issue.Pos.Filename,
			Line:     issue.Pos.Line,
			Column:   issue.Pos.Column,
			Severity: issue.Severity,
			Message:  issue.Text,
			Kind:     issue.Kind,
			Linter:   issue.FromLinter,
			Source:   source,
		}
	}

	modules := result.Modules
	if modules == nil {
		modules = []Module{}
	}

	return JSONOutput{
		Version:   "1.0",
		Timestamp: now.Format(time.RFC3339),
		Summary: JSONSummary{
			TotalIssues:  len(result.Issues),
			Errors:       result.ErrorCount(),
			Warnings:     result.WarningCount(),
			FilesScanned: result.FilesScanned,
		},
		Stats: JSONStats{
			FilesDiscovered: result.FilesDiscovered,
			FilesSkipped:    result.FilesSkipped,
			FilesWithCSS:    result.FilesWithCSS,
			FilesFailed:     result.FilesFailed,
			ModulesCount:    result.BlocksExtracted,
			ClassesDefined:  result.ClassesDefined,
		},
		Issues:  jsonIssues,
		Modules: modules,
	}
}
