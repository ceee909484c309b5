package token

import (
	"oxide/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Pos     source.LineCol
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric, boolean, string, char or byte literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, RawStringLit, ByteStringLit, RawByteStringLit,
		CharLit, ByteLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	return t.Kind >= punctBegin && t.Kind < punctEnd
}

// IsKeyword reports whether the token is a strict keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= kwBegin && t.Kind < kwEnd
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsRawIdent reports whether the identifier was written as r#name.
func (t Token) IsRawIdent() bool {
	return t.Kind == Ident && len(t.Text) > 2 && t.Text[0] == 'r' && t.Text[1] == '#'
}

// IdentName returns the identifier text without the raw prefix.
func (t Token) IdentName() string {
	if t.IsRawIdent() {
		return t.Text[2:]
	}
	return t.Text
}

// Is reports whether the token kind is one of ks.
func (t Token) Is(ks ...Kind) bool {
	for _, k := range ks {
		if t.Kind == k {
			return true
		}
	}
	return false
}

// Docs returns the doc comment trivia attached to the token.
func (t Token) Docs() []Trivia {
	var out []Trivia
	for _, tv := range t.Leading {
		if tv.Kind.IsDoc() {
			out = append(out, tv)
		}
	}
	return out
}
