package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cssmodules "github.com/berlysia/cssmodules-in-js"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .cssmodules.yaml config file",
	Long: `Create a .cssmodules.yaml configuration file in the current directory with
sensible defaults. With --dts, print TypeScript declarations for the css tag
and the virtual modules instead.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if dts, _ := cmd.Flags().GetBool("dts"); dts {
			tag, _ := cmd.Flags().GetString("tag")
			fmt.Fprint(cmd.OutOrStdout(), cssmodules.TypeDeclarations(tag))
			return nil
		}

		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(".cssmodules.yaml"); err == nil && !force {
			return fmt.Errorf(".cssmodules.yaml already exists (use --force to overwrite)")
		}

		if err := os.WriteFile(".cssmodules.yaml", []byte(defaultConfig), 0644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Created .cssmodules.yaml")
		return nil
	},
}

const defaultConfig = `# cssmodules configuration
# Docs: https://github.com/berlysia/cssmodules-in-js

# Shared settings
tag: css
extensions: [".js", ".jsx", ".ts", ".tsx"]
exclude:
  - "**/node_modules/**"
jsx: automatic             # automatic | transform
jsx-import-source: react
verbose: false

# Check settings
check:
  paths:
    - "src/**/*.{js,jsx,ts,tsx}"
  strict: false
  output-format: issues    # issues | summary | full | json
  max-issues-per-linter: 0 # 0 = unlimited
  max-same-issues: 0       # 0 = unlimited
  print-lines: true
  print-linter-name: true

# Bundle settings (build and watch)
build:
  entry:
    - src/main.tsx
  outdir: dist
  minify: false
  sourcemap: false

watch:
  root: .
  debounce: 100ms
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
	initCmd.Flags().Bool("dts", false, "Print TypeScript declarations for the css tag")
}
