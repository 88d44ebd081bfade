package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// VerboseReporter handles detailed statistics and the module listing
type VerboseReporter struct {
	w      io.Writer
	colors palette
}

// NewVerboseReporter creates a verbose reporter
func NewVerboseReporter(w io.Writer, useColors bool) *VerboseReporter {
	return &VerboseReporter{
		w:      w,
		colors: palette{enabled: useColors},
	}
}

// PrintStatistics outputs detailed check statistics
func (r *VerboseReporter) PrintStatistics(result Result) {
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, r.colors.paint(headingStyle, "CSS Modules Statistics"))
	fmt.Fprintln(r.w, "----------------------")

	fmt.Fprintf(r.w, "Files Discovered:  %d\n", result.FilesDiscovered)
	fmt.Fprintf(r.w, "Files Scanned:     %d\n", result.FilesScanned)
	fmt.Fprintf(r.w, "Files Skipped:     %d\n", result.FilesSkipped)
	fmt.Fprintf(r.w, "Files With CSS:    %d\n", result.FilesWithCSS)
	fmt.Fprintf(r.w, "Files Failed:      %d\n", result.FilesFailed)
	fmt.Fprintf(r.w, "Modules Generated: %d\n", result.BlocksExtracted)
	fmt.Fprintf(r.w, "Classes Defined:   %d\n", result.ClassesDefined)
}

// PrintModules lists generated modules grouped by source file, busiest files first.
func (r *VerboseReporter) PrintModules(result Result) {
	if len(result.Modules) == 0 {
		return
	}

	byFile := make(map[string][]Module)
	var files []string
	for _, m := range result.Modules {
		if _, ok := byFile[m.File]; !ok {
			files = append(files, m.File)
		}
		byFile[m.File] = append(byFile[m.File], m)
	}
	sort.SliceStable(files, func(i, j int) bool {
		if len(byFile[files[i]]) != len(byFile[files[j]]) {
			return len(byFile[files[i]]) > len(byFile[files[j]])
		}
		return files[i] < files[j]
	})

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, r.colors.paint(headingStyle, "Generated Modules"))
	fmt.Fprintln(r.w, "-----------------")

	for i, file := range files {
		if i >= 10 {
			fmt.Fprintf(r.w, "\n... and %d more files\n", len(files)-i)
			break
		}
		fmt.Fprintf(r.w, "\n%s (%s)\n", file, pluralizeCount(len(byFile[file]), "module", "modules"))
		for _, m := range byFile[file] {
			classes := "no classes"
			if len(m.Classes) > 0 {
				classes = "." + strings.Join(m.Classes, " .")
			}
			fmt.Fprintf(r.w, "  %s → %s\n", r.colors.paint(moduleStyle, m.Binding), classes)
		}
	}
}

// PrintWarnings shows check warnings
func (r *VerboseReporter) PrintWarnings(result Result) {
	if len(result.Warnings) == 0 {
		return
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, r.colors.paint(warningStyle, "Warnings"))
	fmt.Fprintln(r.w, "-----------")

	for _, warning := range result.Warnings {
		fmt.Fprintf(r.w, "• %s\n", warning)
	}
}
