package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Reporter prints issues one per line, colored by severity and tagged with
// the linter and failure kind that raised them.
type Reporter struct {
	w          io.Writer
	colors     palette
	printLines bool
	printTags  bool
}

// NewReporter creates a new reporter with the given configuration
func NewReporter(w io.Writer, config Config) *Reporter {
	return &Reporter{
		w:          w,
		colors:     palette{enabled: ShouldUseColors(config)},
		printLines: config.PrintIssuedLines,
		printTags:  config.PrintLinterName,
	}
}

// ShouldUseColors determines if colors should be enabled
func ShouldUseColors(config Config) bool {
	if config.UseColors {
		return true
	}

	// CI runners that render ANSI colors
	if os.Getenv("FORCE_COLOR") != "" || os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}

	fileInfo, err := os.Stdout.Stat()
	return err == nil && fileInfo.Mode()&os.ModeCharDevice != 0
}

// SortIssues orders issues by file, then line, then column
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i].Pos, issues[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// PrintIssues prints issues as `file:line:col: text (linter: KIND)`.
func (r *Reporter) PrintIssues(issues []Issue) {
	SortIssues(issues)

	for _, issue := range issues {
		r.printIssue(issue)
	}
}

func (r *Reporter) printIssue(issue Issue) {
	fmt.Fprintf(r.w, "%s %s%s\n",
		r.colors.severity(issue.Severity, issue.Pos.String()),
		issue.Text,
		r.colors.paint(mutedStyle, r.tag(issue)))

	if !r.printLines || len(issue.SourceLines) == 0 {
		return
	}
	for _, line := range issue.SourceLines {
		fmt.Fprintf(r.w, "\t%s\n", line)
	}
	fmt.Fprintf(r.w, "\t%s\n", r.colors.severity(issue.Severity, caretLine(issue.SourceLines[0], issue.Pos.Column)))
}

// tag names the linter and, when known, the failure kind.
func (r *Reporter) tag(issue Issue) string {
	switch {
	case !r.printTags:
		return ""
	case issue.Kind != "":
		return fmt.Sprintf(" (%s: %s)", issue.FromLinter, issue.Kind)
	default:
		return fmt.Sprintf(" (%s)", issue.FromLinter)
	}
}

// String renders the position as `file:line:col:`, or `file:` when the
// line is unknown.
func (p IssuePos) String() string {
	if p.Line == 0 {
		return p.Filename + ":"
	}
	return fmt.Sprintf("%s:%d:%d:", p.Filename, p.Line, p.Column)
}

// caretLine points at column of source. Tabs before the column are kept so
// the caret lines up under tab-indented code.
func caretLine(source string, column int) string {
	if column <= 0 {
		return "^"
	}
	n := min(column-1, len(source))

	var b strings.Builder
	for _, ch := range source[:n] {
		if ch == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('^')
	return b.String()
}

// PrintSummary prints the issue count followed by a per-linter breakdown
// with the failure kinds each linter reported.
func (r *Reporter) PrintSummary(result Result) {
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, headline(result)+":")

	for _, linter := range tally(result.Issues) {
		fmt.Fprintf(r.w, "* %s: %d\n", linter.name, linter.count)
		for _, kind := range linter.kinds {
			fmt.Fprintf(r.w, "    %s: %d\n", r.colors.severity(kind.severity, kind.name), kind.count)
		}
	}

	if len(result.Issues) > 0 {
		fmt.Fprintln(r.w, "")
		fmt.Fprintln(r.w, r.colors.paint(mutedStyle, "Hint: Run with --output-format full to see statistics and generated modules"))
	}
}

// headline is "N issues (E errors, W warnings; T issues truncated)". The
// severity split only appears when both severities occur.
func headline(result Result) string {
	var details []string
	errs, warns := result.ErrorCount(), result.WarningCount()
	if errs > 0 && warns > 0 {
		details = append(details, pluralizeCount(errs, "error", "errors")+", "+pluralizeCount(warns, "warning", "warnings"))
	}
	if result.TruncatedCount > 0 {
		details = append(details, pluralizeCount(result.TruncatedCount, "issue", "issues")+" truncated")
	}

	head := pluralizeCount(len(result.Issues), "issue", "issues")
	if len(details) == 0 {
		return head
	}
	return head + " (" + strings.Join(details, "; ") + ")"
}

type kindCount struct {
	name     string
	severity string
	count    int
}

type linterCount struct {
	name  string
	count int
	kinds []kindCount
}

// tally counts issues per linter and, within a linter, per kind. Both
// levels are sorted by name; issues without a kind only count for their linter.
func tally(issues []Issue) []linterCount {
	byLinter := make(map[string]*linterCount)
	byKind := make(map[string]map[string]*kindCount)
	for _, issue := range issues {
		lc, ok := byLinter[issue.FromLinter]
		if !ok {
			lc = &linterCount{name: issue.FromLinter}
			byLinter[issue.FromLinter] = lc
			byKind[issue.FromLinter] = make(map[string]*kindCount)
		}
		lc.count++

		if issue.Kind == "" {
			continue
		}
		kc, ok := byKind[issue.FromLinter][issue.Kind]
		if !ok {
			kc = &kindCount{name: issue.Kind, severity: issue.Severity}
			byKind[issue.FromLinter][issue.Kind] = kc
		}
		kc.count++
	}

	out := make([]linterCount, 0, len(byLinter))
	for name, lc := range byLinter {
		for _, kc := range byKind[name] {
			lc.kinds = append(lc.kinds, *kc)
		}
		sort.Slice(lc.kinds, func(i, j int) bool { return lc.kinds[i].name < lc.kinds[j].name })
		out = append(out, *lc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// pluralizeCount returns a formatted string with count and singular/plural form
func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// UseColors returns whether colors are enabled
func (r *Reporter) UseColors() bool {
	return r.colors.enabled
}
