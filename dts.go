package cssmodules

import (
	"fmt"

	"github.com/berlysia/cssmodules-in-js/internal/extract"
)

// TypeDeclarations returns TypeScript declarations for the global tag
// function and the virtual module ids, for projects that type-check their
// components. An empty tag means the default "css".
func TypeDeclarations(tag string) string {
	if tag == "" {
		tag = extract.DefaultTag
	}
	return fmt.Sprintf(`// Generated by cssmodules-in-js. Do not edit.
export {};

declare global {
  const %s: (
    strings: TemplateStringsArray,
    ...values: Array<string | number>
  ) => { readonly [key: string]: string };
}

declare module "%s*%s" {
  const classes: { readonly [key: string]: string };
  export default classes;
}
`, tag, extract.VirtualPrefix, extract.VirtualSuffix)
}
