package scan

import (
	"errors"
	"fmt"
)

// ErrUnterminated is returned when a block opener has no matching closer
// before the end of the scanned range.
var ErrUnterminated = errors.New("unterminated directive")

// ErrNotOpener is returned when matching is requested for a token that does
// not open a block.
var ErrNotOpener = errors.New("token does not open a block")

// Block holds token indices of a matched control block. Else is -1 when
// the block has no $else of its own.
type Block struct {
	Open  int
	Else  int
	Close int
}

// HasElse reports whether the block has its own $else.
func (b Block) HasElse() bool {
	return b.Else >= 0
}

// Matches holds the block matched for every opener of a token list.
type Matches struct {
	tokens []Token
	blocks []Block
}

// Match pairs every opener in tokens with its closer in a single pass.
//
// An opener's closer is the first closer of its own kind reached by walking
// forward from the opener, where a matched nested block is skipped whole
// and an unterminated nested opener is skipped as a single token. Closers
// of the other kind are passed over. For conditionals the first $else on
// that walk is recorded; later ones stay inside the else body.
//
// Tokens are visited right to left, so each walk is answered from the
// results already computed for the tokens after it.
func Match(tokens []Token) Matches {
	n := len(tokens)
	m := Matches{tokens: tokens, blocks: make([]Block, n)}

	// nextEndIf[i] is the first $endif on the walk that starts at i, or -1.
	// nextEndFor and nextElse likewise.
	nextEndIf, nextEndFor, nextElse := make([]int, n+1), make([]int, n+1), make([]int, n+1)
	nextEndIf[n], nextEndFor[n], nextElse[n] = -1, -1, -1

	for i := n - 1; i >= 0; i-- {
		tok := tokens[i]
		m.blocks[i] = Block{Open: i, Else: -1, Close: -1}
		succ := i + 1

		if tok.IsOpener() {
			closeAt := nextEndIf[i+1]
			if tok.Type == TokenForeach {
				closeAt = nextEndFor[i+1]
			}
			if closeAt >= 0 {
				m.blocks[i].Close = closeAt
				if e := nextElse[i+1]; tok.Type == TokenIf && e >= 0 && e < closeAt {
					m.blocks[i].Else = e
				}
				succ = closeAt + 1
			}
		}

		nextEndIf[i], nextEndFor[i], nextElse[i] = nextEndIf[succ], nextEndFor[succ], nextElse[succ]
		switch tok.Type {
		case TokenEndIf:
			nextEndIf[i] = i
		case TokenEndFor:
			nextEndFor[i] = i
		case TokenElse:
			nextElse[i] = i
		}
	}
	return m
}

// Block returns the block opened at tokens[open].
func (m Matches) Block(open int) (Block, error) {
	if open < 0 || open >= len(m.tokens) || !m.tokens[open].IsOpener() {
		return Block{}, ErrNotOpener
	}
	block := m.blocks[open]
	if block.Close < 0 {
		return block, fmt.Errorf("%w: %s at offset %d", ErrUnterminated, m.tokens[open].Raw, m.tokens[open].Pos)
	}
	return block, nil
}

// MatchBlock finds the closer for the opener at tokens[open].
//
// Depth is tracked per block: an opener of the same kind nests, its closer
// unwinds. Blocks of the other kind are skipped whole. A nested opener that
// is itself unterminated is skipped as a single token, so the enclosing
// block can still find its own closer. See Match for matching a whole token
// list at once.
func MatchBlock(tokens []Token, open int) (Block, error) {
	if open < 0 || open >= len(tokens) || !tokens[open].IsOpener() {
		return Block{}, ErrNotOpener
	}
	return Match(tokens).Block(open)
}

// Span holds the byte boundaries of a block located in raw text.
//
// For a conditional "$if(c) A $else B $endif" starting at Start:
// Header is "c", Then covers " A ", Else covers " B " and Rest is the offset
// right after "$endif". Without an $else, ElseStart and ElseEnd are -1.
type Span struct {
	Kind      TokenType
	Start     int
	Header    string
	ThenStart int
	ThenEnd   int
	ElseStart int
	ElseEnd   int
	Rest      int
}

// HasElse reports whether the span has an else body.
func (s Span) HasElse() bool {
	return s.ElseStart >= 0
}

// FindBlock locates the block whose opener starts at byte offset pos in src
// and returns its boundaries.
func FindBlock(src string, pos int) (Span, error) {
	tokens := Tokenize(src)
	open := -1
	for i, tok := range tokens {
		if tok.Pos == pos {
			open = i
			break
		}
		if tok.Pos > pos {
			break
		}
	}
	if open < 0 {
		return Span{}, fmt.Errorf("%w: no directive at offset %d", ErrNotOpener, pos)
	}

	block, err := MatchBlock(tokens, open)
	if err != nil {
		return Span{}, err
	}

	opener := tokens[block.Open]
	span := Span{
		Kind:      opener.Type,
		Start:     opener.Pos,
		Header:    opener.Value,
		ThenStart: opener.End,
		ThenEnd:   tokens[block.Close].Pos,
		ElseStart: -1,
		ElseEnd:   -1,
		Rest:      tokens[block.Close].End,
	}
	if block.HasElse() {
		span.ThenEnd = tokens[block.Else].Pos
		span.ElseStart = tokens[block.Else].End
		span.ElseEnd = tokens[block.Close].Pos
	}
	return span, nil
}
