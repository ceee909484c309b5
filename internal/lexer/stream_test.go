package lexer_test

import (
	"testing"

	"oxide/internal/lexer"
	"oxide/internal/token"
)

func makeStream(input string, opts lexer.StreamOptions) *lexer.Stream {
	lx, _ := makeTestLexer(input)
	return lexer.NewStream(lx, opts)
}

func TestStreamPeekAndNext(t *testing.T) {
	s := makeStream("a < b", lexer.StreamOptions{})
	if s.PeekN(1).Kind != token.Lt || s.PeekN(2).Text != "b" || s.PeekN(7).Kind != token.EOF {
		t.Fatal("lookahead is wrong")
	}
	if s.Next().Text != "a" || s.Peek().Kind != token.Lt {
		t.Fatal("Next must advance by one token")
	}
	if s.PrevEnd() != 1 {
		t.Fatalf("PrevEnd = %d", s.PrevEnd())
	}
}

func TestStreamCheckpointRestoreDoesNotRelex(t *testing.T) {
	s := makeStream("foo::<T>(x)", lexer.StreamOptions{})
	s.Next()
	cp := s.Checkpoint()
	for range 4 {
		s.Next()
	}
	consumed := s.Consumed()
	s.Restore(cp)
	if s.Peek().Kind != token.ColonColon {
		t.Fatalf("after restore got %v", s.Peek().Kind)
	}
	for range 4 {
		s.Next()
	}
	if s.Consumed() != consumed {
		t.Fatalf("restore re-lexed tokens: %d vs %d", s.Consumed(), consumed)
	}
}

func TestStreamSplitShr(t *testing.T) {
	s := makeStream("Vec<Vec<u8>>= x", lexer.StreamOptions{})
	for range 5 {
		s.Next() // Vec < Vec < u8
	}
	if s.Peek().Kind != token.ShrAssign {
		t.Fatalf("expected >>=, got %v", s.Peek().Kind)
	}
	cp := s.Checkpoint()

	head, ok := s.Split(token.Gt)
	if !ok || head.Kind != token.Gt || head.Span.Len() != 1 {
		t.Fatalf("first split: %v %v", head, ok)
	}
	if s.Peek().Kind != token.GtEq || s.Peek().Text != ">=" {
		t.Fatalf("rest = %v(%q)", s.Peek().Kind, s.Peek().Text)
	}
	if _, ok := s.Split(token.Gt); !ok {
		t.Fatal("second split failed")
	}
	if rest := s.Peek(); rest.Kind != token.Assign || rest.Span.Start != 12 {
		t.Fatalf("rest = %v at %d", rest.Kind, rest.Span.Start)
	}
	if _, ok := s.Split(token.Gt); ok {
		t.Fatal("single-byte token must not split")
	}

	s.Restore(cp)
	if s.Peek().Kind != token.ShrAssign {
		t.Fatalf("restore must undo splits, got %v", s.Peek().Kind)
	}
}

func TestStreamTokenBudget(t *testing.T) {
	var exceeded []token.Token
	s := makeStream("a b c d e", lexer.StreamOptions{
		MaxTokens:  3,
		OnExceeded: func(tok token.Token) { exceeded = append(exceeded, tok) },
	})
	var texts []string
	for s.Peek().Kind != token.EOF {
		texts = append(texts, s.Next().Text)
	}
	if len(texts) != 3 {
		t.Fatalf("tokens = %v", texts)
	}
	if len(exceeded) != 1 || exceeded[0].Text != "d" {
		t.Fatalf("OnExceeded calls = %v", exceeded)
	}
	if !s.Halted() {
		t.Fatal("stream must report halted after budget")
	}
}

func TestStreamHalt(t *testing.T) {
	s := makeStream("fn f() {}", lexer.StreamOptions{})
	s.Next()
	s.Halt()
	cp := s.Checkpoint()
	if tok := s.Next(); tok.Kind != token.EOF || tok.Span.Start != 3 {
		t.Fatalf("after Halt got %v at %d", tok.Kind, tok.Span.Start)
	}
	s.Restore(cp)
	if s.Peek().Kind != token.EOF {
		t.Fatal("restore must not resume a halted stream")
	}
}
