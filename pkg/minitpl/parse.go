package minitpl

import (
	"github.com/minihttp/minitpl/pkg/minitpl/scan"
)

type nodeKind uint8

const (
	nodeLiteral nodeKind = iota
	nodeVariable
	nodeIf
	nodeFor
)

// node is one element of a parsed template. Children are stored as indices
// into Template.nodes.
type node struct {
	kind nodeKind
	pos  int
	// text is the literal text, or the path of a variable, condition or
	// loop collection.
	text string
	// name is the loop variable of a foreach.
	name string
	// body holds the then-branch of a conditional or the body of a loop.
	body []int
	// alt holds the else-branch of a conditional.
	alt []int
}

// Template is a parsed template. It is immutable and safe for concurrent
// use by multiple goroutines.
type Template struct {
	name        string
	source      string
	nodes       []node
	root        []int
	diagnostics []*ParseError
}

// Parse parses a template. Parsing never fails: malformed directives are
// kept as literal text and reported through Diagnostics and Err.
func Parse(src string) *Template {
	return parseNamed("", src)
}

func parseNamed(name, src string) *Template {
	tokens := scan.Tokenize(src)
	p := &parser{
		src:     src,
		tokens:  tokens,
		matches: scan.Match(tokens),
		tmpl:    &Template{name: name, source: src},
	}
	p.tmpl.root = p.parseRange(0, len(p.tokens))
	return p.tmpl
}

// Name returns the template name, usually the file it was read from.
func (t *Template) Name() string { return t.name }

// Source returns the template text.
func (t *Template) Source() string { return t.source }

// Diagnostics returns the malformed-directive reports collected while parsing.
func (t *Template) Diagnostics() []*ParseError { return t.diagnostics }

// Err returns the diagnostics as an error: nil when the template is well
// formed, a *ParseError for a single problem and a *MultiError otherwise.
func (t *Template) Err() error {
	errs := NewMultiError()
	for _, d := range t.diagnostics {
		errs.Add(d)
	}
	return errs.Err()
}

type parser struct {
	src     string
	tokens  []scan.Token
	matches scan.Matches
	tmpl    *Template
}

func (p *parser) add(n node) int {
	p.tmpl.nodes = append(p.tmpl.nodes, n)
	return len(p.tmpl.nodes) - 1
}

func (p *parser) report(tok scan.Token, message string) {
	p.tmpl.diagnostics = append(p.tmpl.diagnostics, NewParseError(p.src, message, tok.Raw, tok.Pos))
}

// literal appends text to out, merging it into a trailing literal node.
func (p *parser) literal(out []int, text string, pos int) []int {
	if text == "" {
		return out
	}
	if n := len(out); n > 0 {
		last := &p.tmpl.nodes[out[n-1]]
		if last.kind == nodeLiteral {
			last.text += text
			return out
		}
	}
	return append(out, p.add(node{kind: nodeLiteral, text: text, pos: pos}))
}

// parseRange builds the nodes for tokens[lo:hi], which must not contain the
// closer of any block opened before lo.
func (p *parser) parseRange(lo, hi int) []int {
	var out []int
	for i := lo; i < hi; i++ {
		tok := p.tokens[i]
		switch tok.Type {
		case scan.TokenText:
			out = p.literal(out, tok.Raw, tok.Pos)

		case scan.TokenVariable:
			out = append(out, p.add(node{kind: nodeVariable, text: tok.Value, pos: tok.Pos}))

		case scan.TokenElse, scan.TokenEndIf, scan.TokenEndFor:
			p.report(tok, "unexpected "+tok.Raw+" without a matching opener")
			out = p.literal(out, tok.Raw, tok.Pos)

		case scan.TokenIf, scan.TokenForeach:
			var name, path string
			if tok.Type == scan.TokenForeach {
				var err error
				name, path, err = scan.ParseForeachHeader(tok.Value)
				if err != nil {
					p.report(tok, err.Error())
					out = p.literal(out, tok.Raw, tok.Pos)
					continue
				}
			}

			block, err := p.matches.Block(i)
			if err != nil || block.Close >= hi {
				closer := "$endif"
				if tok.Type == scan.TokenForeach {
					closer = "$endfor"
				}
				p.report(tok, "missing "+closer)
				return p.literal(out, p.src[tok.Pos:p.tokens[hi-1].End], tok.Pos)
			}

			if tok.Type == scan.TokenIf {
				n := node{kind: nodeIf, text: tok.Value, pos: tok.Pos}
				if block.HasElse() {
					n.body = p.parseRange(i+1, block.Else)
					n.alt = p.parseRange(block.Else+1, block.Close)
				} else {
					n.body = p.parseRange(i+1, block.Close)
				}
				out = append(out, p.add(n))
			} else {
				n := node{kind: nodeFor, text: path, name: name, pos: tok.Pos}
				n.body = p.parseRange(i+1, block.Close)
				out = append(out, p.add(n))
			}
			i = block.Close
		}
	}
	return out
}
