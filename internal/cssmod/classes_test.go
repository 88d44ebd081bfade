package cssmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassNames(t *testing.T) {
	tests := []struct {
		name string
		css  string
		want []string
	}{
		{
			name: "single class",
			css:  ".button { padding: 8px 16px; }",
			want: []string{"button"},
		},
		{
			name: "pseudo state keeps base class once",
			css: `.button { color: white; }
			      .button:hover { background-color: #747bff; }`,
			want: []string{"button"},
		},
		{
			name: "compound selector",
			css:  ".logo.react:hover { filter: drop-shadow(0 0 2em #61dafbaa); }",
			want: []string{"logo", "react"},
		},
		{
			name: "descendant and list",
			css:  ".card p, .card .title { margin: 0.5em 0; }",
			want: []string{"card", "title"},
		},
		{
			name: "functional pseudo-class",
			css:  ".item:not(.active) { opacity: .5; }",
			want: []string{"item", "active"},
		},
		{
			name: "hyphenated class",
			css:  ".read-the-docs { color: #888; }",
			want: []string{"read-the-docs"},
		},
		{
			name: "decimal values are not classes",
			css:  "div { margin: .5em; line-height: 1.5; }",
			want: nil,
		},
		{
			name: "empty",
			css:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassNames(tt.css))
		})
	}
}

func TestValidate_WellFormed(t *testing.T) {
	css := `
    .container {
      max-width: 1280px;
      margin: 0 auto;
    }
    .logo:hover {
      filter: drop-shadow(0 0 2em #646cffaa);
    }
    @media (min-width: 600px) {
      .container { padding: 2rem; }
    }
  `
	require.NoError(t, Validate(css))
}

func TestInspect(t *testing.T) {
	info := Inspect(".a { color: red; } .b { color: blue; }")
	require.NoError(t, info.Err)
	assert.Equal(t, []string{"a", "b"}, info.Classes)
}
