package token

import (
	"testing"
)

func TestLookupKeyword_Positive(t *testing.T) {
	cases := map[string]Kind{
		"fn":     KwFn,
		"let":    KwLet,
		"impl":   KwImpl,
		"trait":  KwTrait,
		"Self":   KwSelfType,
		"self":   KwSelf,
		"await":  KwAwait,
		"dyn":    KwDyn,
		"unsafe": KwUnsafe,
		"true":   KwTrue,
	}

	for lexeme, want := range cases {
		got, ok := LookupKeyword(lexeme)
		if !ok {
			t.Fatalf("LookupKeyword(%q) = !ok, want %v", lexeme, want)
		}
		if got != want {
			t.Fatalf("LookupKeyword(%q) = %v, want %v", lexeme, got, want)
		}
	}
}

func TestLookupKeyword_Negative(t *testing.T) {
	// контекстные слова и имена типов - Ident
	notKw := []string{"Fn", "LET", "union", "auto", "default", "macro_rules", "i32", "String", "_"}
	for _, s := range notKw {
		if k, ok := LookupKeyword(s); ok {
			t.Fatalf("LookupKeyword(%q) = %v, want !ok", s, k)
		}
	}
}

func TestKindClassification(t *testing.T) {
	if !(Token{Kind: KwWhile}).IsKeyword() || (Token{Kind: Plus}).IsKeyword() {
		t.Fatal("keyword range is wrong")
	}
	if !(Token{Kind: RBracket}).IsPunctOrOp() || (Token{Kind: KwWhile}).IsPunctOrOp() {
		t.Fatal("punct range is wrong")
	}
	if !(Token{Kind: KwFalse}).IsLiteral() || !(Token{Kind: ByteLit}).IsLiteral() {
		t.Fatal("literal classification is wrong")
	}
	for k := Invalid; k < kindCount; k++ {
		if k.String() == "" || k.Describe() == "" {
			t.Fatalf("kind %d has no name", k)
		}
	}
	if LBrace.Closer() != RBrace || !RParen.IsClose() || !ShrAssign.IsCompoundAssign() {
		t.Fatal("delimiter helpers are wrong")
	}
}

func TestRawIdent(t *testing.T) {
	tok := Token{Kind: Ident, Text: "r#match"}
	if !tok.IsRawIdent() || tok.IdentName() != "match" {
		t.Fatalf("raw ident: %v %q", tok.IsRawIdent(), tok.IdentName())
	}
	plain := Token{Kind: Ident, Text: "r"}
	if plain.IsRawIdent() || plain.IdentName() != "r" {
		t.Fatal("plain r is not raw")
	}
}

func TestTriviaDocText(t *testing.T) {
	cases := []struct {
		tv   Trivia
		want string
	}{
		{Trivia{Kind: TriviaDocLine, Text: "/// Adds two numbers."}, "Adds two numbers."},
		{Trivia{Kind: TriviaInnerDocLine, Text: "//!crate docs"}, "crate docs"},
		{Trivia{Kind: TriviaDocBlock, Text: "/** block */"}, "block "},
		{Trivia{Kind: TriviaLineComment, Text: "// plain"}, ""},
	}
	for _, c := range cases {
		if got := c.tv.DocText(); got != c.want {
			t.Errorf("%v: DocText() = %q, want %q", c.tv.Kind, got, c.want)
		}
	}
	if !TriviaInnerDocBlock.IsDoc() || TriviaShebang.IsDoc() || !TriviaInnerDocLine.IsInnerDoc() {
		t.Fatal("doc classification is wrong")
	}
}
