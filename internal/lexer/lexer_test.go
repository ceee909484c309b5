package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"oxide/internal/diag"
	"oxide/internal/lexer"
	"oxide/internal/source"
	"oxide/internal/token"
)

// testReporter собирает все диагностики, полученные от лексера
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
		Fixes:    fixes,
	})
}

func (r *testReporter) codes() []diag.Code {
	out := make([]diag.Code, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		out = append(out, d.Code)
	}
	return out
}

func (r *testReporter) messages() []string {
	messages := make([]string, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		messages = append(messages, fmt.Sprintf("[%s] %s: %s", d.Code.ID(), d.Severity, d.Message))
	}
	return messages
}

// makeTestLexer создаёт лексер для тестовой строки
func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.rs", []byte(input))
	file := fs.Get(fileID)

	reporter := &testReporter{}
	return lexer.New(file, lexer.Options{Reporter: reporter}), reporter
}

// collectAllTokens собирает все токены до EOF включительно
func collectAllTokens(lx *lexer.Lexer) []token.Token {
	var tokens []token.Token
	for tok := range lx.All() {
		tokens = append(tokens, tok)
	}
	return tokens
}

// expectTokens проверяет последовательность токенов (без EOF) и отсутствие ошибок
func expectTokens(t *testing.T, input string, expected ...token.Kind) {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tokens := collectAllTokens(lx)
	tokens = tokens[:len(tokens)-1]

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d\ninput: %q\ntokens: %v\nerrors: %v",
			len(expected), len(tokens), input, tokensToString(tokens), reporter.messages())
	}
	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("token %d: expected %v, got %v (text: %q)", i, expected[i], tok.Kind, tok.Text)
		}
	}
	if len(reporter.diagnostics) != 0 {
		t.Errorf("unexpected diagnostics for %q: %v", input, reporter.messages())
	}
}

// expectSingleToken проверяет первый токен входа
func expectSingleToken(t *testing.T, input string, expectedKind token.Kind, expectedText string) {
	t.Helper()
	lx, _ := makeTestLexer(input)
	tok := lx.Next()
	if tok.Kind != expectedKind {
		t.Errorf("%q: expected kind %v, got %v", input, expectedKind, tok.Kind)
	}
	if tok.Text != expectedText {
		t.Errorf("%q: expected text %q, got %q", input, expectedText, tok.Text)
	}
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func TestIdentifiersAndKeywords(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
		text  string
	}{
		{"foo", token.Ident, "foo"},
		{"_bar", token.Ident, "_bar"},
		{"x123", token.Ident, "x123"},
		{"_", token.Underscore, "_"},
		{"r#match", token.Ident, "r#match"},
		{"r#foo", token.Ident, "r#foo"},
		{"fn", token.KwFn, "fn"},
		{"Self", token.KwSelfType, "Self"},
		{"macro_rules", token.Ident, "macro_rules"},
		{"union", token.Ident, "union"},
		{"идентификатор", token.Ident, "идентификатор"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind, tt.text)
		})
	}
}

func TestRawIdentifierPathRoot(t *testing.T) {
	lx, rep := makeTestLexer("r#self")
	tok := lx.Next()
	if tok.Kind != token.Ident || len(rep.diagnostics) != 1 {
		t.Fatalf("got %v, diagnostics %v", tok.Kind, rep.messages())
	}
}

func TestNonNFCIdentifierWarns(t *testing.T) {
	// "e" + combining acute accent: not NFC
	lx, rep := makeTestLexer("cafe\u0301")
	tok := lx.Next()
	if tok.Kind != token.Ident {
		t.Fatalf("expected Ident, got %v", tok.Kind)
	}
	if len(rep.diagnostics) != 1 || rep.diagnostics[0].Severity != diag.SevWarning ||
		rep.diagnostics[0].Code != diag.LexIdentNotNormalized {
		t.Fatalf("expected one NFC warning, got %v", rep.messages())
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
		text  string
	}{
		{"0", token.IntLit, "0"},
		{"1_000_000", token.IntLit, "1_000_000"},
		{"100i32", token.IntLit, "100i32"},
		{"0xffu8", token.IntLit, "0xffu8"},
		{"0b1010", token.IntLit, "0b1010"},
		{"0o777", token.IntLit, "0o777"},
		{"1.5", token.FloatLit, "1.5"},
		{"1.5f64", token.FloatLit, "1.5f64"},
		{"7f32", token.FloatLit, "7f32"},
		{"1e10", token.FloatLit, "1e10"},
		{"2.5E-3", token.FloatLit, "2.5E-3"},
		{"1.", token.FloatLit, "1."},
		{"1..2", token.IntLit, "1"},
		{"1.foo", token.IntLit, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind, tt.text)
		})
	}
}

func TestRangeAndTupleIndexAreNotFloats(t *testing.T) {
	expectTokens(t, "1..2", token.IntLit, token.DotDot, token.IntLit)
	expectTokens(t, "0..=9", token.IntLit, token.DotDotEq, token.IntLit)
	expectTokens(t, "x.0", token.Ident, token.Dot, token.IntLit)
	// "x.0.1" - float после точки, парсер разделяет
	expectTokens(t, "x.0.1", token.Ident, token.Dot, token.FloatLit)
}

func TestBadNumbers(t *testing.T) {
	for _, input := range []string{"0x", "0b102", "1e", "1.5u8", "12abc", "1e+"} {
		t.Run(input, func(t *testing.T) {
			lx, rep := makeTestLexer(input)
			tok := lx.Next()
			if tok.Kind != token.Invalid {
				t.Fatalf("expected Invalid, got %v(%q)", tok.Kind, tok.Text)
			}
			if len(rep.diagnostics) == 0 || rep.diagnostics[0].Code != diag.LexBadNumber {
				t.Fatalf("expected LexBadNumber, got %v", rep.messages())
			}
		})
	}
}

func TestStringsAndChars(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{`"username.txt"`, token.StringLit},
		{`"line\nbreak \"quoted\" \\ \0 \x7f \u{1F600}"`, token.StringLit},
		{"\"multi\nline\"", token.StringLit},
		{"\"continued \\\n    here\"", token.StringLit},
		{`r"C:\path"`, token.RawStringLit},
		{`r#"has "quotes""#`, token.RawStringLit},
		{`r##"a "# b"##`, token.RawStringLit},
		{`b"bytes\xff"`, token.ByteStringLit},
		{`br#"raw bytes"#`, token.RawByteStringLit},
		{`'a'`, token.CharLit},
		{`'\n'`, token.CharLit},
		{`'\''`, token.CharLit},
		{`'\u{10FFFF}'`, token.CharLit},
		{`'я'`, token.CharLit},
		{`b'x'`, token.ByteLit},
		{`b'\xff'`, token.ByteLit},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lx, rep := makeTestLexer(tt.input)
			tok := lx.Next()
			if tok.Kind != tt.kind || tok.Text != tt.input {
				t.Fatalf("got %v(%q), want %v", tok.Kind, tok.Text, tt.kind)
			}
			if len(rep.diagnostics) != 0 {
				t.Fatalf("unexpected diagnostics: %v", rep.messages())
			}
		})
	}
}

func TestLifetimes(t *testing.T) {
	expectTokens(t, "&'a str", token.Amp, token.Lifetime, token.Ident)
	expectTokens(t, "'static", token.Lifetime)
	expectTokens(t, "'outer: loop {}", token.Lifetime, token.Colon, token.KwLoop, token.LBrace, token.RBrace)
	expectTokens(t, "<'_>", token.Lt, token.Lifetime, token.Gt)
	expectSingleToken(t, "'a'", token.CharLit, "'a'")
}

func TestLiteralErrors(t *testing.T) {
	tests := []struct {
		input string
		code  diag.Code
	}{
		{`"unterminated`, diag.LexUnterminatedString},
		{`r#"unterminated"`, diag.LexUnterminatedString},
		{`'ab'`, diag.LexUnterminatedChar},
		{`''`, diag.LexEmptyChar},
		{`'\q'`, diag.LexBadEscape},
		{`"\x80"`, diag.LexBadEscape},
		{`"\u{D800}"`, diag.LexBadEscape},
		{`"\u{1234567}"`, diag.LexBadEscape},
		{`b"\u{41}"`, diag.LexBadEscape},
		{`b"ж"`, diag.LexBadEscape},
		{"/* never closed", diag.LexUnterminatedBlockComment},
		{"€", diag.LexUnknownChar},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lx, rep := makeTestLexer(tt.input)
			collectAllTokens(lx)
			if len(rep.diagnostics) == 0 || rep.diagnostics[0].Code != tt.code {
				t.Fatalf("expected %s, got %v", tt.code.ID(), rep.messages())
			}
		})
	}
}

func TestRawIdentPrefixWithoutName(t *testing.T) {
	// r#1 - не raw ident и не raw string
	lx, rep := makeTestLexer("r#1")
	tok := lx.Next()
	if tok.Kind != token.Invalid || rep.codes()[0] != diag.LexBadRawString {
		t.Fatalf("got %v, %v", tok.Kind, rep.messages())
	}
}

func TestOperatorsLongestMatch(t *testing.T) {
	expectTokens(t, ":: -> => .. ..= ... ? <<= >>= << >> <= >= == != && || += -= *= /= %= ^= &= |=",
		token.ColonColon, token.Arrow, token.FatArrow, token.DotDot, token.DotDotEq, token.DotDotDot,
		token.Question, token.ShlAssign, token.ShrAssign, token.Shl, token.Shr, token.LtEq, token.GtEq,
		token.EqEq, token.BangEq, token.AndAnd, token.OrOr, token.PlusAssign, token.MinusAssign,
		token.StarAssign, token.SlashAssign, token.PercentAssign, token.CaretAssign, token.AmpAssign,
		token.PipeAssign)
	expectTokens(t, "# $ @ ~ ! #![", token.Hash, token.Dollar, token.At, token.Tilde, token.Bang,
		token.Hash, token.Bang, token.LBracket)
}

func TestMacroRulesFragment(t *testing.T) {
	expectTokens(t, "($name:ident) => { $name };",
		token.LParen, token.Dollar, token.Ident, token.Colon, token.Ident, token.RParen,
		token.FatArrow, token.LBrace, token.Dollar, token.Ident, token.RBrace, token.Semicolon)
}

func TestTriviaAttachment(t *testing.T) {
	src := "//! crate doc\n/// item doc\n// plain\n//// also plain\n/** block doc */ /*! inner */ /* c /* nested */ */ fn"
	lx, rep := makeTestLexer(src)
	tok := lx.Next()
	if tok.Kind != token.KwFn {
		t.Fatalf("expected fn, got %v", tok.Kind)
	}
	var kinds []token.TriviaKind
	for _, tv := range tok.Leading {
		if tv.Kind != token.TriviaSpace && tv.Kind != token.TriviaNewline {
			kinds = append(kinds, tv.Kind)
		}
	}
	want := []token.TriviaKind{
		token.TriviaInnerDocLine, token.TriviaDocLine, token.TriviaLineComment, token.TriviaLineComment,
		token.TriviaDocBlock, token.TriviaInnerDocBlock, token.TriviaBlockComment,
	}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("trivia = %v, want %v", kinds, want)
	}
	if len(tok.Docs()) != 4 {
		t.Fatalf("docs = %d, want 4", len(tok.Docs()))
	}
	if len(rep.diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics %v", rep.messages())
	}
}

func TestShebangVersusInnerAttribute(t *testing.T) {
	lx, _ := makeTestLexer("#!/usr/bin/env run-cargo-script\nfn")
	tok := lx.Next()
	if tok.Kind != token.KwFn || tok.Leading[0].Kind != token.TriviaShebang {
		t.Fatalf("expected shebang trivia before fn, got %v %v", tok.Kind, tok.Leading)
	}
	expectTokens(t, "#![allow(dead_code)]", token.Hash, token.Bang, token.LBracket, token.Ident,
		token.LParen, token.Ident, token.RParen, token.RBracket)
}

func TestPositions(t *testing.T) {
	lx, _ := makeTestLexer("fn main() {\n    let x = 1;\n}")
	tokens := collectAllTokens(lx)
	for _, tok := range tokens {
		if tok.Text == "let" {
			if tok.Pos.Line != 2 || tok.Pos.Col != 5 {
				t.Fatalf("let at %d:%d, want 2:5", tok.Pos.Line, tok.Pos.Col)
			}
			if tok.Span.Start != 16 || tok.Span.End != 19 {
				t.Fatalf("let span = %v", tok.Span)
			}
		}
	}
	if last := tokens[len(tokens)-1]; last.Kind != token.EOF || last.Pos.Line != 3 {
		t.Fatalf("EOF at %+v", last.Pos)
	}
}

func TestTokensCoverSource(t *testing.T) {
	src := "pub const PUBLIC_CONST: i32 = 100; // tail\n"
	lx, _ := makeTestLexer(src)
	prev := uint32(0)
	for tok := range lx.All() {
		for _, tv := range tok.Leading {
			if tv.Span.Start != prev {
				t.Fatalf("gap before trivia %v at %d", tv.Kind, prev)
			}
			prev = tv.Span.End
		}
		if tok.Span.Start != prev {
			t.Fatalf("gap before %v at %d", tok.Kind, prev)
		}
		prev = tok.Span.End
	}
	if int(prev) != len(src) {
		t.Fatalf("covered %d of %d bytes", prev, len(src))
	}
}

func TestLexerNeverStalls(t *testing.T) {
	inputs := []string{"\x00\x01\xff", "'", "b'", "r#", "\"\\", "'\\u{", "0x_", "/", "\\"}
	for _, input := range inputs {
		lx, _ := makeTestLexer(input)
		n := 0
		for range lx.All() {
			n++
			if n > len(input)+2 {
				t.Fatalf("%q: lexer does not advance", input)
			}
		}
	}
}
