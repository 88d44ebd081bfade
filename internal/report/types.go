// Package report formats check results: golangci-lint style issues, summary
// statistics and a JSON export.
package report

// Issue represents a single problem in golangci-lint format
type Issue struct {
	FromLinter  string   `json:"FromLinter"`     // "cssmodules"
	Text        string   `json:"Text"`           // "css tag cannot be used inside a loop"
	Kind        string   `json:"Kind,omitempty"` // "LOOP_CSS_NOT_ALLOWED"
	Severity    string   `json:"Severity"`       // "warning", "error"
	SourceLines []string `json:"SourceLines"`    // Lines of code with issue
	Pos         IssuePos `json:"Pos"`            // File location
}

// IssuePos specifies the exact location of an issue
type IssuePos struct {
	Filename string `json:"Filename"` // "src/App.tsx"
	Line     int    `json:"Line"`     // 12
	Column   int    `json:"Column"`   // 18 (1-based, start of the css tag)
}

// IssueSeverity constants
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Linter names shown in the (linter) suffix
const (
	LinterTransform = "cssmodules"
	LinterCSS       = "cssmodules-css"
)

// Module summarizes one generated CSS module.
type Module struct {
	ID      string   `json:"id"`
	File    string   `json:"file"`
	Binding string   `json:"binding"` // original variable name
	Classes []string `json:"classes"`
}

// Result contains the outcome of checking a project
type Result struct {
	// Statistics
	FilesDiscovered int // Files matched by the scan patterns
	FilesScanned    int // Files actually transformed
	FilesSkipped    int // Ignored or excluded files
	FilesWithCSS    int // Files holding at least one css block
	FilesFailed     int // Files whose transform failed
	BlocksExtracted int // Generated CSS modules
	ClassesDefined  int // Class selectors across all modules
	TruncatedCount  int // Issues removed due to limits

	Modules  []Module
	Issues   []Issue
	Warnings []string
}

// Config controls how results are printed
type Config struct {
	MaxIssuesPerLinter int  // 0 = unlimited (default)
	MaxSameIssues      int  // 0 = unlimited (default)
	PrintIssuedLines   bool // Show source lines with issues (default: true)
	PrintLinterName    bool // Show (cssmodules) suffix (default: true)
	UseColors          bool // Enable color output (default: auto-detect)
}

// DefaultConfig returns the printing defaults.
func DefaultConfig() Config {
	return Config{
		PrintIssuedLines: true,
		PrintLinterName:  true,
	}
}

// OutputFormat represents the check output format
type OutputFormat string

const (
	// OutputIssues shows only errors/warnings in golangci-lint format (CI-friendly)
	OutputIssues OutputFormat = "issues"
	// OutputSummary shows statistics and the module list only
	OutputSummary OutputFormat = "summary"
	// OutputFull shows issues + statistics + modules (interactive development)
	OutputFull OutputFormat = "full"
	// OutputJSON exports structured data in JSON format (tooling integration)
	OutputJSON OutputFormat = "json"
)

// ErrorCount is the number of error-severity issues.
func (r *Result) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount is the number of warning-severity issues.
func (r *Result) WarningCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			n++
		}
	}
	return n
}
