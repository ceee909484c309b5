package testkit

import (
	"fmt"

	"oxide/internal/token"
)

// CheckTokenInvariants checks a complete token sequence of a file of size n:
// spans (trivia included) never overlap or go backwards, stay inside the
// file, and the sequence ends with exactly one EOF.
func CheckTokenInvariants(toks []token.Token, n uint32) error {
	if len(toks) == 0 {
		return fmt.Errorf("no tokens, expected at least EOF")
	}
	prev := uint32(0)
	for i, tok := range toks {
		for _, tv := range tok.Leading {
			if tv.Span.Start < prev || tv.Span.End < tv.Span.Start {
				return fmt.Errorf("token %d: trivia %v span %v goes back from %d", i, tv.Kind, tv.Span, prev)
			}
			prev = tv.Span.End
		}
		if tok.Span.Start < prev || tok.Span.End < tok.Span.Start {
			return fmt.Errorf("token %d: %v span %v goes back from %d", i, tok.Kind, tok.Span, prev)
		}
		if tok.Span.End > n {
			return fmt.Errorf("token %d: %v span %v is outside content (%d)", i, tok.Kind, tok.Span, n)
		}
		prev = tok.Span.End
		isEOF := tok.Kind == token.EOF
		if isEOF != (i == len(toks)-1) {
			return fmt.Errorf("token %d: EOF must be the last token only", i)
		}
	}
	return nil
}
