package minitpl

import (
	"context"
	"io"
	"unicode"
	"unicode/utf8"

	"github.com/minihttp/minitpl/pkg/minitpl/model"
)

// Execute renders the template against data and writes the result to w.
// data is converted with model.From; a conversion error is returned
// unchanged apart from wrapping.
func (t *Template) Execute(w io.Writer, data any) error {
	return t.ExecuteContext(context.Background(), w, data)
}

// ExecuteContext is like Execute but stops between loop iterations once
// ctx is done, returning ctx.Err().
func (t *Template) ExecuteContext(ctx context.Context, w io.Writer, data any) error {
	out, err := t.render(ctx, data)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// Render renders the template against data and returns the result.
func (t *Template) Render(data any) (string, error) {
	return t.render(context.Background(), data)
}

func (t *Template) render(ctx context.Context, data any) (string, error) {
	root, err := model.From(data)
	if err != nil {
		return "", WithContext(err, "convert model", map[string]any{"template": t.name})
	}

	s := &state{ctx: ctx, tmpl: t}
	if err := s.walk(t.root, root, nil); err != nil {
		return "", err
	}
	return s.out.String(), nil
}

// state carries one render of a template.
type state struct {
	ctx  context.Context
	tmpl *Template
	out  collapser
}

func (s *state) walk(ids []int, data model.Value, scope *model.Scope) error {
	for _, id := range ids {
		n := &s.tmpl.nodes[id]
		switch n.kind {
		case nodeLiteral:
			s.out.WriteString(n.text)

		case nodeVariable:
			s.out.WriteString(Resolve(data, scope, n.text).String())

		case nodeIf:
			branch := n.alt
			if Truthy(Resolve(data, scope, n.text)) {
				branch = n.body
			}
			if err := s.walk(branch, data, scope); err != nil {
				return err
			}

		case nodeFor:
			// Non-list collections iterate zero times.
			for _, item := range Resolve(data, scope, n.text).Items() {
				if err := s.ctx.Err(); err != nil {
					return err
				}
				if err := s.walk(n.body, item, scope.Bind(n.name, item)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// collapser accumulates output with every run of whitespace folded into a
// single space. Leading whitespace is dropped and a trailing run is never
// emitted, so the result is also trimmed.
type collapser struct {
	buf     []byte
	started bool
	pending bool
}

func (c *collapser) WriteString(s string) {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			c.pending = c.started
			i += size
			continue
		}
		if c.pending {
			c.buf = append(c.buf, ' ')
			c.pending = false
		}
		c.buf = append(c.buf, s[i:i+size]...)
		c.started = true
		i += size
	}
}

func (c *collapser) String() string {
	return string(c.buf)
}

// NormalizeSpace collapses every run of Unicode whitespace in s into a
// single space and trims the ends.
func NormalizeSpace(s string) string {
	var c collapser
	c.WriteString(s)
	return c.String()
}
