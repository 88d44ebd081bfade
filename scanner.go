package cssmodules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// ScanStats tracks file scanning statistics
type ScanStats struct {
	FilesDiscovered int // Total files found by glob patterns
	FilesScanned    int // Files kept for transforming (after filtering)
	FilesSkipped    int // Files skipped due to filtering
}

// isDeclarationFile checks if a file only holds TypeScript declarations
// (.d.ts, .d.mts, .d.cts)
func isDeclarationFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".d.ts") ||
		strings.HasSuffix(base, ".d.mts") ||
		strings.HasSuffix(base, ".d.cts")
}

// loadGitIgnore loads dir/.gitignore.
// Gracefully degrades if .gitignore doesn't exist
func loadGitIgnore(dir string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// fileFilter decides which discovered files are transformed.
//
// Three-layer filtering:
// 1. Pattern check (fast): skip TypeScript declaration files
// 2. Gitignore check: skip gitignored files (only for paths inside the project)
// 3. Config check: extensions, include and exclude globs
type fileFilter struct {
	config    Config
	gitignore *ignore.GitIgnore
}

func (f fileFilter) skip(rel string) bool {
	if isDeclarationFile(rel) {
		return true
	}
	if f.gitignore != nil && !filepath.IsAbs(rel) && f.gitignore.MatchesPath(rel) {
		return true
	}
	return !f.config.Matches(rel)
}

// ScanFiles expands glob patterns relative to dir into the component files to
// transform. Returned paths are joined with dir.
func ScanFiles(dir string, patterns []string, config Config) ([]string, ScanStats, error) {
	if dir == "" {
		dir = "."
	}
	filter := fileFilter{config: config, gitignore: loadGitIgnore(dir)}
	fsys := os.DirFS(dir)

	var files []string
	seen := make(map[string]bool)
	stats := ScanStats{}

	for _, pattern := range patterns {
		var matches []string
		var err error
		if filepath.IsAbs(pattern) {
			matches, err = doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		} else {
			matches, err = doublestar.Glob(fsys, filepath.ToSlash(pattern), doublestar.WithFilesOnly())
		}
		if err != nil {
			return nil, stats, fmt.Errorf("glob pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true
			stats.FilesDiscovered++

			if filter.skip(match) {
				stats.FilesSkipped++
				continue
			}

			path := match
			if !filepath.IsAbs(match) {
				path = filepath.Join(dir, filepath.FromSlash(match))
			}
			files = append(files, path)
			stats.FilesScanned++
		}
	}

	return files, stats, nil
}

// GetRelativePath returns a relative path from the current working directory.
// Paths outside of it are returned unchanged.
func GetRelativePath(absPath string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return absPath
	}

	rel, err := filepath.Rel(cwd, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return absPath
	}

	return rel
}
