package extract

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNumberString(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"10", "10"},
		{"0", "0"},
		{"1.50", "1.5"},
		{".5", "0.5"},
		{"5.", "5"},
		{"1e3", "1000"},
		{"1_000", "1000"},
		{"0x1F", "31"},
		{"0o17", "15"},
		{"0b101", "5"},
		{"017", "15"},
		{"089", "89"},
		{"1e21", "1e+21"},
		{"1.5e-7", "1.5e-7"},
		{"0.000001", "0.000001"},
		{"1e400", "Infinity"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := numberString(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		name string
		lit  string
		want string
	}{
		{name: "double", lit: `"red"`, want: "red"},
		{name: "single", lit: `'red'`, want: "red"},
		{name: "empty", lit: `""`, want: ""},
		{name: "escaped quote", lit: `'it\'s'`, want: "it's"},
		{name: "control escapes", lit: `"a\tb\nc"`, want: "a\tb\nc"},
		{name: "hex escape", lit: `"\x41"`, want: "A"},
		{name: "unicode escape", lit: `"\u00e9"`, want: "é"},
		{name: "code point escape", lit: `"\u{1F600}"`, want: "😀"},
		{name: "surrogate pair", lit: `"\uD83D\uDE00"`, want: "😀"},
		{name: "line continuation", lit: "\"a\\\nb\"", want: "ab"},
		{name: "identity escape", lit: `"\q"`, want: "q"},
		{name: "raw utf8", lit: `"→"`, want: "→"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := unquote([]byte(tt.lit))
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnquote_Malformed(t *testing.T) {
	for _, lit := range []string{``, `"`, `"abc'`, `abc`, `"\x4"`, `"\u12"`, `"\u{}"`} {
		_, ok := unquote([]byte(lit))
		assert.False(t, ok, lit)
	}
}

func TestRawQuasi(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"`.a{}`", ".a{}"},
		{"``", ""},
		{"`.a { color: ${", ".a { color: "},
		{"}; }`", "; }"},
		{"}${", ""},
		{"`a\\`b`", "a\\`b"},
		{"`.a{\r\n}`", ".a{\n}"},
		{"`.a{\r}`", ".a{\n}"},
		{"}\r\n.b{}\r\n`", "\n.b{}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, rawQuasi([]byte(tt.in)))
		})
	}
}

// Content of a template whose substitutions are all literals equals the
// concatenation of raw text and literal values.
func TestTemplateContent_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 4).Draw(t, "substitutions")

		var src, want strings.Builder
		src.WriteString("const s = css`")
		for i := 0; i <= n; i++ {
			raw := rapid.StringMatching(`[a-z .:;{}#0-9-]{0,12}`).Draw(t, "raw")
			src.WriteString(raw)
			want.WriteString(raw)
			if i == n {
				break
			}
			if rapid.Bool().Draw(t, "numeric") {
				v := rapid.IntRange(0, 10000).Draw(t, "number")
				src.WriteString("${" + strconv.Itoa(v) + "}")
				want.WriteString(strconv.Itoa(v))
			} else {
				v := rapid.StringMatching(`[a-z0-9 %-]{0,8}`).Draw(t, "string")
				src.WriteString(`${"` + v + `"}`)
				want.WriteString(v)
			}
		}
		src.WriteString("`;\n")

		tree := parseTreeRapid(t, src.String())
		result, err := Extract(tree, "/src/a.js", Options{})
		if err != nil {
			t.Fatalf("extract %q: %v", src.String(), err)
		}
		if len(result.Artifacts) != 1 {
			t.Fatalf("expected one artifact, got %d", len(result.Artifacts))
		}
		if got := result.Artifacts[0].Content; got != want.String() {
			t.Fatalf("content mismatch for %q: got %q, want %q", src.String(), got, want.String())
		}
	})
}
