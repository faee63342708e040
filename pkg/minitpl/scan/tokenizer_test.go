package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenShape struct {
	Type  TokenType
	Value string
}

func shapes(tokens []Token) []tokenShape {
	out := make([]tokenShape, len(tokens))
	for i, tok := range tokens {
		out[i] = tokenShape{Type: tok.Type, Value: tok.Value}
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tokenShape
	}{
		{
			name:  "plain text",
			input: "<h1>Hello World</h1>",
			want: []tokenShape{
				{TokenText, "<h1>Hello World</h1>"},
			},
		},
		{
			name:  "simple variable",
			input: "Hello ${Name}!",
			want: []tokenShape{
				{TokenText, "Hello "},
				{TokenVariable, "Name"},
				{TokenText, "!"},
			},
		},
		{
			name:  "variable path is trimmed",
			input: "${ user.Name }",
			want: []tokenShape{
				{TokenVariable, "user.Name"},
			},
		},
		{
			name:  "if else endif",
			input: "$if(Flag) A $else B $endif",
			want: []tokenShape{
				{TokenIf, "Flag"},
				{TokenText, " A "},
				{TokenElse, ""},
				{TokenText, " B "},
				{TokenEndIf, ""},
			},
		},
		{
			name:  "foreach",
			input: "$foreach(var n in Names)${n};$endfor",
			want: []tokenShape{
				{TokenForeach, "var n in Names"},
				{TokenVariable, "n"},
				{TokenText, ";"},
				{TokenEndFor, ""},
			},
		},
		{
			name:  "nested mixed directives",
			input: "$foreach(var i in Items)$if(i.Active)${i.Name}$endif$endfor",
			want: []tokenShape{
				{TokenForeach, "var i in Items"},
				{TokenIf, "i.Active"},
				{TokenVariable, "i.Name"},
				{TokenEndIf, ""},
				{TokenEndFor, ""},
			},
		},
		{
			name:  "empty interpolation stays text",
			input: "a ${} b",
			want: []tokenShape{
				{TokenText, "a ${} b"},
			},
		},
		{
			name:  "unclosed interpolation stays text",
			input: "Hello ${name",
			want: []tokenShape{
				{TokenText, "Hello ${name"},
			},
		},
		{
			name:  "if without closing paren stays text",
			input: "cost $if(flag",
			want: []tokenShape{
				{TokenText, "cost $if(flag"},
			},
		},
		{
			name:  "dollar signs in prose",
			input: "Price: $5 or $$",
			want: []tokenShape{
				{TokenText, "Price: $5 or $$"},
			},
		},
		{
			name:  "else prefix inside a longer word",
			input: "$elsewhere",
			want: []tokenShape{
				{TokenElse, ""},
				{TokenText, "where"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shapes(Tokenize(tt.input)))
		})
	}
}

func TestTokenizeOffsets(t *testing.T) {
	input := "ab${x}cd$endif"
	tokens := Tokenize(input)
	require.Len(t, tokens, 4)

	for _, tok := range tokens {
		assert.Equal(t, input[tok.Pos:tok.End], tok.Raw)
	}
	assert.Equal(t, 2, tokens[1].Pos)
	assert.Equal(t, 6, tokens[1].End)
}

func TestTokenizeRoundTrip(t *testing.T) {
	input := "<ul>$foreach(var p in Products)<li>${p.Name}: ${ p.Price }</li>$endfor</ul> $if(x"
	var rebuilt string
	for _, tok := range Tokenize(input) {
		rebuilt += tok.Raw
	}
	assert.Equal(t, input, rebuilt)
}

func TestParseForeachHeader(t *testing.T) {
	tests := []struct {
		header   string
		wantName string
		wantPath string
		wantErr  bool
	}{
		{header: "var n in Names", wantName: "n", wantPath: "Names"},
		{header: "  var item   in   User.Posts  ", wantName: "item", wantPath: "User.Posts"},
		{header: "var ingredient in Recipe.Ingredients", wantName: "ingredient", wantPath: "Recipe.Ingredients"},
		{header: "var index in Indexes", wantName: "index", wantPath: "Indexes"},
		{header: "n in Names", wantErr: true},
		{header: "var n Names", wantErr: true},
		{header: "var in Names", wantErr: true},
		{header: "var n in ", wantErr: true},
		{header: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			name, path, err := ParseForeachHeader(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidForeachHeader)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}
