// Package main provides the cssmodules CLI for extracting css tagged
// templates into CSS modules, checking projects and bundling with esbuild.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// check already printed its issues; only the exit code is left
		if !errors.Is(err, errIssuesFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
