// Package scan locates template directives in raw text and matches control
// blocks to their closers.
//
// The package is a pure helper for the minitpl engine: it never evaluates
// anything and does not import the engine, so it can be tested on its own.
//
// # Directives
//
//	${path}                              - interpolation
//	$if(path) ... $else ... $endif       - conditional ($else optional)
//	$foreach(var name in path) ... $endfor - iteration
//
// # Key Functions
//
// Tokenize splits a template into Text and directive tokens, each carrying
// its byte offsets in the source.
//
// Match pairs every opener of a token list with its closer in one pass;
// MatchBlock answers the same for a single opener. For conditionals the
// $else that belongs to the opener's own depth is recorded too. Blocks of
// the other kind nested inside are skipped as a whole, so an $else inside a
// nested $foreach never binds to the enclosing $if.
//
// FindBlock exposes the same matching on raw text and reports the byte
// boundaries of the header, the bodies and the remainder.
package scan
