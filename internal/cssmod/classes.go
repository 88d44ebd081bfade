// Package cssmod inspects the CSS text of generated modules.
package cssmod

import (
	"fmt"
	"io"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Info describes one CSS module.
type Info struct {
	Classes []string // class selectors in first-seen order, without the dot
	Err     error    // first grammar error, nil for well-formed CSS
}

// Inspect lists class selectors and validates the grammar of content.
func Inspect(content string) Info {
	return Info{
		Classes: ClassNames(content),
		Err:     Validate(content),
	}
}

// ClassNames returns the class selectors defined in content. Compound
// selectors (.a.b), selector lists and functional pseudo-classes
// (:not(.a), :is(.b)) all contribute their classes.
func ClassNames(content string) []string {
	var classes []string
	seen := make(map[string]bool)

	lexer := css.NewLexer(parse.NewInputString(content))
	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken {
			// ErrorToken at EOF is normal
			break
		}

		if tt != css.DelimToken || len(text) == 0 || text[0] != '.' {
			continue
		}

		tt, name := lexer.Next()
		if tt != css.IdentToken {
			continue
		}
		className := string(name)
		if !seen[className] {
			seen[className] = true
			classes = append(classes, className)
		}
	}

	return classes
}

// Validate reports the first grammar error in content.
func Validate(content string) error {
	p := css.NewParser(parse.NewInputString(content), false)
	for {
		gt, _, _ := p.Next()
		if gt != css.ErrorGrammar {
			continue
		}
		if err := p.Err(); err != nil && err != io.EOF {
			if perr, ok := err.(*parse.Error); ok {
				return fmt.Errorf("line %d, column %d: %s", perr.Line, perr.Column, perr.Message)
			}
			return err
		}
		return nil
	}
}
