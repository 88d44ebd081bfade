package syntax

import (
	"bytes"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// Position is a location in the text the parser saw.
type Position struct {
	Offset int // 0-based byte offset
	Line   int // 1-based
	Column int // 1-based byte column
}

// IsValid reports whether the position was resolved.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// TagSites returns, in source order, the position of every plain identifier
// tag immediately followed by a template literal. Member tags (a.css`...`)
// are not sites. A slash where an operand is expected starts a regular
// expression literal. Scanning stops at the first lexer error.
func TagSites(src []byte, tag string) []Position {
	var sites []Position

	lexer := js.NewLexer(parse.NewInputBytes(src))
	tagBytes := []byte(tag)

	offset, line, col := 0, 1, 1
	prev := js.ErrorToken
	member := false // prev is a property name after a dot
	var pending *Position

	for {
		tt, data := lexer.Next()
		if tt == js.ErrorToken {
			break
		}

		if (tt == js.DivToken || tt == js.DivEqToken) && !endsOperand(prev, member) {
			if tt, data = lexer.RegExp(); tt == js.ErrorToken {
				break
			}
		}

		start := Position{Offset: offset, Line: line, Column: col}

		// Advance the cursor past this token
		offset += len(data)
		if n := bytes.Count(data, []byte("\n")); n > 0 {
			line += n
			col = len(data) - bytes.LastIndexByte(data, '\n')
		} else {
			col += len(data)
		}

		switch tt {
		case js.WhitespaceToken, js.LineTerminatorToken, js.CommentToken, js.CommentLineTerminatorToken:
			continue
		case js.TemplateToken, js.TemplateStartToken:
			if pending != nil {
				sites = append(sites, *pending)
			}
			pending = nil
		case js.IdentifierToken:
			pending = nil
			if bytes.Equal(data, tagBytes) && prev != js.DotToken && prev != js.OptChainToken {
				site := start
				pending = &site
			}
		default:
			pending = nil
		}
		member = prev == js.DotToken || prev == js.OptChainToken
		prev = tt
	}

	return sites
}

// endsOperand reports whether a token can end an operand, in which case a
// following slash is division.
func endsOperand(tt js.TokenType, member bool) bool {
	if member && js.IsIdentifierName(tt) {
		return true
	}
	if js.IsNumeric(tt) || js.IsIdentifier(tt) {
		return true
	}
	switch tt {
	case js.StringToken, js.TemplateToken, js.TemplateEndToken, js.RegExpToken, js.PrivateIdentifierToken,
		js.CloseParenToken, js.CloseBracketToken,
		js.ThisToken, js.SuperToken, js.NullToken, js.TrueToken, js.FalseToken,
		js.IncrToken, js.DecrToken:
		return true
	}
	return false
}
