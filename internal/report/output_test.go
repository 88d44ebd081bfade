package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		formatFlag string
		quiet      bool
		expected   OutputFormat
	}{
		{name: "explicit quiet flag", quiet: true, expected: OutputIssues},
		{name: "explicit issues format", formatFlag: "issues", expected: OutputIssues},
		{name: "explicit summary format", formatFlag: "summary", expected: OutputSummary},
		{name: "explicit full format", formatFlag: "full", expected: OutputFull},
		{name: "explicit json format", formatFlag: "json", expected: OutputJSON},
		{name: "unknown format falls back to issues", formatFlag: "xml", expected: OutputIssues},
		{name: "default format is issues", expected: OutputIssues},
		{name: "quiet overrides format flag", formatFlag: "full", quiet: true, expected: OutputIssues},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetermineOutputFormat(tt.formatFlag, tt.quiet))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	var output JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	assert.Equal(t, "1.0", output.Version)
	_, err := time.Parse(time.RFC3339, output.Timestamp)
	assert.NoError(t, err)

	assert.Equal(t, 2, output.Summary.TotalIssues)
	assert.Equal(t, 1, output.Summary.Errors)
	assert.Equal(t, 1, output.Summary.Warnings)
	assert.Equal(t, 4, output.Summary.FilesScanned)

	assert.Equal(t, 3, output.Stats.ModulesCount)
	assert.Equal(t, 4, output.Stats.ClassesDefined)
	assert.Equal(t, 1, output.Stats.FilesFailed)

	require.Len(t, output.Issues, 2)
	assert.Equal(t, "src/List.tsx", output.Issues[0].File)
	assert.Equal(t, "LOOP_CSS_NOT_ALLOWED", output.Issues[0].Kind)
	assert.Equal(t, "    const s = css`.a{}`;", output.Issues[0].Source)
	assert.Empty(t, output.Issues[1].Source)

	require.Len(t, output.Modules, 3)
	assert.Equal(t, []string{"container", "logo"}, output.Modules[0].Classes)
}

func TestWriteJSON_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, &Result{}))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, []any{}, raw["issues"])
	assert.Equal(t, []any{}, raw["modules"])
}

func TestWriteOutput(t *testing.T) {
	tests := []struct {
		name        string
		format      OutputFormat
		contains    []string
		notContains []string
	}{
		{
			name:        "issues",
			format:      OutputIssues,
			contains:    []string{"src/List.tsx:3:15:", "2 issues"},
			notContains: []string{"CSS Modules Statistics", "Generated Modules"},
		},
		{
			name:        "summary",
			format:      OutputSummary,
			contains:    []string{"CSS Modules Statistics", "Modules Generated: 3", "Generated Modules", "src/App.tsx (2 modules)", "styles → .container .logo"},
			notContains: []string{"src/List.tsx:3:15:"},
		},
		{
			name:     "full",
			format:   OutputFull,
			contains: []string{"src/List.tsx:3:15:", "2 issues", "CSS Modules Statistics", "src/Button.tsx (1 module)"},
		},
		{
			name:     "json",
			format:   OutputJSON,
			contains: []string{`"total_issues": 2`, `"modules": 3`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := WriteOutput(&buf, sampleResult(), tt.format, Config{PrintIssuedLines: true, PrintLinterName: true})
			require.NoError(t, err)

			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteOutput(&buf, &Result{}, OutputFormat("xml"), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestPrintWarnings(t *testing.T) {
	var buf bytes.Buffer
	r := NewVerboseReporter(&buf, false)
	r.PrintWarnings(Result{Warnings: []string{"skipped src/big.ts: read failed"}})

	assert.Contains(t, buf.String(), "Warnings")
	assert.Contains(t, buf.String(), "• skipped src/big.ts: read failed")
}

func TestLimitIssues(t *testing.T) {
	var issues []Issue
	for i := 0; i < 5; i++ {
		issues = append(issues, Issue{FromLinter: LinterTransform, Text: "css tag supports static content only"})
	}
	for i := 0; i < 3; i++ {
		issues = append(issues, Issue{FromLinter: LinterCSS, Text: fmt.Sprintf("invalid CSS %d", i)})
	}

	t.Run("per linter", func(t *testing.T) {
		kept, truncated := LimitIssues(issues, Config{MaxIssuesPerLinter: 2})
		assert.Len(t, kept, 4)
		assert.Equal(t, 4, truncated)
	})

	t.Run("same text", func(t *testing.T) {
		kept, truncated := LimitIssues(issues, Config{MaxSameIssues: 1})
		assert.Len(t, kept, 4)
		assert.Equal(t, 4, truncated)
	})

	t.Run("unlimited", func(t *testing.T) {
		kept, truncated := LimitIssues(issues, Config{})
		assert.Len(t, kept, 8)
		assert.Zero(t, truncated)
	})
}
