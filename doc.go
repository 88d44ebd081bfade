// Package cssmodules extracts css tagged templates from component files into
// virtual CSS modules.
//
// A component written as
//
//	function Button() {
//		const styles = css`.button { padding: 8px 16px; }`
//		return <button className={styles.button} />
//	}
//
// is rewritten to import its styles from a generated module:
//
//	import styles_0 from "virtual:css-modules$/src/Button-0.module.css";
//	function Button() {
//		return jsx("button", { className: styles_0.button });
//	}
//
// The CSS text is kept in a registry and served back when the bundler loads
// the virtual id, where it is compiled as a CSS module.
//
// # Transforming
//
//	plugin := cssmodules.New(cssmodules.DefaultConfig())
//	result, err := plugin.Transform(code, "/src/Button.tsx")
//
// # Bundling
//
// Plugin.ESBuild returns an esbuild plugin that runs Transform on component
// files and loads the generated modules with esbuild's local-css loader:
//
//	api.Build(api.BuildOptions{
//		EntryPoints: []string{"src/main.tsx"},
//		Bundle:      true,
//		Outdir:      "dist",
//		Plugins:     []api.Plugin{plugin.ESBuild()},
//	})
//
// # Checking
//
// Check transforms a whole project without writing output and reports
// failures in golangci-lint format:
//
//	result, err := cssmodules.Check(ctx, cssmodules.CheckConfig{
//		Config: cssmodules.DefaultConfig(),
//		Paths:  []string{"src/**/*.{js,jsx,ts,tsx}"},
//	})
//
// # CLI Tool
//
// The same features are available from the command line:
//
//	go install github.com/berlysia/cssmodules-in-js/cmd/cssmodules@latest
package cssmodules
