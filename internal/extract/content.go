package extract

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tdewolff/parse/v2/js"
)

// templateContent concatenates the raw quasis of tmpl with the values of its
// literal substitutions. The returned expression is the first substitution
// that is not a string or numeric literal.
func templateContent(tmpl *js.TemplateExpr) (string, js.IExpr) {
	var sb strings.Builder
	for _, part := range tmpl.List {
		sb.WriteString(rawQuasi(part.Value))
		value, ok := literalValue(part.Expr)
		if !ok {
			return "", part.Expr
		}
		sb.WriteString(value)
	}
	sb.WriteString(rawQuasi(tmpl.Tail))
	return sb.String(), nil
}

// rawQuasi strips template delimiters: a leading ` or } and a trailing ${ or `.
// CR and CRLF line terminators become LF, as in a template's raw value.
func rawQuasi(b []byte) string {
	if len(b) > 0 && (b[0] == '`' || b[0] == '}') {
		b = b[1:]
	}
	if bytes.HasSuffix(b, []byte("${")) {
		b = b[:len(b)-2]
	} else if bytes.HasSuffix(b, []byte("`")) {
		b = b[:len(b)-1]
	}
	return crlf.Replace(string(b))
}

var crlf = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// literalValue returns the string form of a string or numeric literal.
func literalValue(expr js.IExpr) (string, bool) {
	lit, ok := expr.(*js.LiteralExpr)
	if !ok {
		return "", false
	}
	switch lit.TokenType {
	case js.StringToken:
		return unquote(lit.Data)
	case js.IntegerToken, js.DecimalToken, js.BinaryToken, js.OctalToken, js.HexadecimalToken:
		return numberString(string(lit.Data))
	}
	return "", false
}

// numberString formats a numeric literal the way Number.prototype.toString does.
func numberString(raw string) (string, bool) {
	raw = strings.ReplaceAll(raw, "_", "")
	if len(raw) > 1 && raw[0] == '0' && strings.ContainsAny(raw[1:2], "xXoObB") {
		n, err := strconv.ParseUint(raw, 0, 64)
		if err != nil {
			return "", false
		}
		return strconv.FormatUint(n, 10), true
	}
	if len(raw) > 1 && raw[0] == '0' && isDigits(raw[1:]) {
		// legacy octal literal, 0777
		n, err := strconv.ParseUint(raw[1:], 8, 64)
		if err != nil {
			// 089 is decimal in sloppy mode
			n, err = strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return "", false
			}
		}
		return strconv.FormatUint(n, 10), true
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil && !math.IsInf(f, 0) {
		return "", false
	}
	return formatFloat(f), true
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) {
		return "Infinity"
	}
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	// 1e+21, 1.5e-7
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[0]
	exp = strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + string(sign) + exp
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// unquote decodes a quoted JavaScript string literal.
func unquote(data []byte) (string, bool) {
	if len(data) < 2 {
		return "", false
	}
	q := data[0]
	if (q != '"' && q != '\'') || data[len(data)-1] != q {
		return "", false
	}
	s := data[1 : len(data)-1]

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", false
		}
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case '\r':
			// line continuation, \r\n counts as one terminator
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case '\n':
		case 'x':
			if i+2 >= len(s) {
				return "", false
			}
			n, err := strconv.ParseUint(string(s[i+1:i+3]), 16, 8)
			if err != nil {
				return "", false
			}
			sb.WriteRune(rune(n))
			i += 2
		case 'u':
			r, width, ok := unicodeEscape(s[i+1:])
			if !ok {
				return "", false
			}
			i += width
			if utf16.IsSurrogate(r) && i+2 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
				if lo, w, ok := unicodeEscape(s[i+3:]); ok {
					if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
						r = pair
						i += 2 + w
					}
				}
			}
			sb.WriteRune(r)
		default:
			// LS/PS line continuations and identity escapes
			r, width := utf8.DecodeRune(s[i:])
			if r != '\u2028' && r != '\u2029' {
				sb.WriteRune(r)
			}
			i += width - 1
		}
	}
	return sb.String(), true
}

// unicodeEscape decodes the part after \u: either XXXX or {X...}.
func unicodeEscape(s []byte) (rune, int, bool) {
	if len(s) > 0 && s[0] == '{' {
		end := bytes.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		n, err := strconv.ParseUint(string(s[1:end]), 16, 32)
		if err != nil || n > utf8.MaxRune {
			return 0, 0, false
		}
		return rune(n), end + 1, true
	}
	if len(s) < 4 {
		return 0, 0, false
	}
	n, err := strconv.ParseUint(string(s[:4]), 16, 16)
	if err != nil {
		return 0, 0, false
	}
	return rune(n), 4, true
}
