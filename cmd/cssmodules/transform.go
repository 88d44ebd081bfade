package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	cssmodules "github.com/berlysia/cssmodules-in-js"
)

var transformCmd = &cobra.Command{
	Use:   "transform FILE",
	Short: "Print the transformed code of a component file",
	Long: `Run the css tag extraction on a single file and print the rewritten
JavaScript. With --css the generated CSS modules are printed as well.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: preRun,
	RunE:    runTransform,
}

func init() {
	transformCmd.Flags().Bool("css", false, "Also print the generated CSS modules")
}

func runTransform(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[0], err)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	plugin := cssmodules.New(buildPluginConfig(), cssmodules.WithLogger(logger))
	result, err := plugin.Transform(string(src), path)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("%s is not a component file (see --extensions, --include, --exclude)", args[0])
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, result.Code)

	showCSS, _ := cmd.Flags().GetBool("css")
	if !showCSS {
		return nil
	}
	for _, a := range result.Artifacts {
		fmt.Fprintf(out, "\n/* %s (%s) */\n%s\n", a.ID, a.VariableName, a.Content)
		if a.CSSError != nil {
			logger.Warn("invalid CSS", "module", a.ID, "error", a.CSSError)
		}
	}
	return nil
}
