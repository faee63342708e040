package scan

import (
	"errors"
	"regexp"
	"strings"
)

// TokenType represents the type of a template token
type TokenType int

const (
	TokenText TokenType = iota
	TokenVariable
	TokenIf
	TokenElse
	TokenEndIf
	TokenForeach
	TokenEndFor
)

func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "text"
	case TokenVariable:
		return "variable"
	case TokenIf:
		return "if"
	case TokenElse:
		return "else"
	case TokenEndIf:
		return "endif"
	case TokenForeach:
		return "foreach"
	case TokenEndFor:
		return "endfor"
	default:
		return "unknown"
	}
}

// Token is a single lexical element of a template. Pos and End are byte
// offsets into the source; Raw is source[Pos:End].
type Token struct {
	Type  TokenType
	Value string
	Raw   string
	Pos   int
	End   int
}

// IsOpener reports whether the token starts a control block.
func (t Token) IsOpener() bool {
	return t.Type == TokenIf || t.Type == TokenForeach
}

var (
	// Alternation order matters: the longer keywords share the "$e" prefix.
	directiveRegex = regexp.MustCompile(`\$(?:\{([^}]*)\}|if\(([^)]*)\)|foreach\(([^)]*)\)|endif|endfor|else)`)

	foreachHeaderRegex = regexp.MustCompile(`^\s*var\s+([A-Za-z_][A-Za-z0-9_]*)\s+in\s+(\S(?:.*\S)?)\s*$`)
)

// ErrInvalidForeachHeader is returned by ParseForeachHeader when the header
// does not have the form "var <name> in <path>".
var ErrInvalidForeachHeader = errors.New("invalid foreach header: expected \"var <name> in <path>\"")

// Tokenize splits a template string into tokens. Directive-like text that
// is incomplete (for example "${name" or "$if(flag") stays in Text tokens.
func Tokenize(input string) []Token {
	var tokens []Token
	lastEnd := 0

	appendText := func(from, to int) {
		if to <= from {
			return
		}
		// Merge with a preceding text token so text is never fragmented.
		if n := len(tokens); n > 0 && tokens[n-1].Type == TokenText && tokens[n-1].End == from {
			tokens[n-1].End = to
			tokens[n-1].Raw = input[tokens[n-1].Pos:to]
			tokens[n-1].Value = tokens[n-1].Raw
			return
		}
		tokens = append(tokens, Token{
			Type:  TokenText,
			Value: input[from:to],
			Raw:   input[from:to],
			Pos:   from,
			End:   to,
		})
	}

	for _, m := range directiveRegex.FindAllStringSubmatchIndex(input, -1) {
		appendText(lastEnd, m[0])
		lastEnd = m[1]

		raw := input[m[0]:m[1]]
		token := Token{Raw: raw, Pos: m[0], End: m[1]}

		switch {
		case m[2] >= 0:
			inner := input[m[2]:m[3]]
			if inner == "" {
				appendText(m[0], m[1])
				continue
			}
			token.Type = TokenVariable
			token.Value = strings.TrimSpace(inner)
		case m[4] >= 0:
			token.Type = TokenIf
			token.Value = strings.TrimSpace(input[m[4]:m[5]])
		case m[6] >= 0:
			token.Type = TokenForeach
			token.Value = strings.TrimSpace(input[m[6]:m[7]])
		case raw == "$endif":
			token.Type = TokenEndIf
		case raw == "$endfor":
			token.Type = TokenEndFor
		default:
			token.Type = TokenElse
		}
		tokens = append(tokens, token)
	}

	appendText(lastEnd, len(input))
	return tokens
}

// ParseForeachHeader splits a foreach header ("var item in Items") into the
// loop variable name and the collection path.
func ParseForeachHeader(header string) (name, path string, err error) {
	m := foreachHeaderRegex.FindStringSubmatch(header)
	if m == nil {
		return "", "", ErrInvalidForeachHeader
	}
	return m[1], strings.TrimSpace(m[2]), nil
}
