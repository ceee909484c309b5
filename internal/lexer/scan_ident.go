package lexer

import (
	"oxide/internal/diag"
	"oxide/internal/token"

	"golang.org/x/text/unicode/norm"
)

// scanIdentOrKeyword сканирует [Ident] и проверяет через LookupKeyword.
// Ключевые слова регистрозависимые. Token.Text - ровно исходный срез.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()

	r, sz := lx.peekRune()
	if sz == 0 {
		return lx.emit(token.Invalid, start)
	}
	if r < utf8RuneSelf {
		if !isIdentStartByte(byte(r)) {
			return lx.scanOperatorOrPunct()
		}
	} else if !isIdentStartRune(r) {
		return lx.scanUnknown(start)
	}
	ascii := lx.scanIdentTail()

	tok := lx.emit(token.Ident, start)
	if tok.Text == "_" {
		tok.Kind = token.Underscore
		return tok
	}
	if k, ok := token.LookupKeyword(tok.Text); ok {
		tok.Kind = k
		return tok
	}
	if !ascii && !norm.NFC.IsNormalString(tok.Text) {
		lx.warnLex(diag.LexIdentNotNormalized, tok.Span, "identifier is not in Unicode NFC form")
	}
	return tok
}

// scanIdentTail съедает первый символ и продолжение идентификатора.
// Возвращает true, если все символы ASCII.
func (lx *Lexer) scanIdentTail() bool {
	ascii := true
	first := true
	for {
		r, sz := lx.peekRune()
		if sz == 0 {
			return ascii
		}
		if r < utf8RuneSelf {
			b := byte(r)
			if first && !isIdentStartByte(b) || !first && !isIdentContinueByte(b) {
				return ascii
			}
			lx.cursor.Bump()
		} else {
			if first && !isIdentStartRune(r) || !first && !isIdentContinueRune(r) {
				return ascii
			}
			ascii = false
			lx.bumpRune()
		}
		first = false
	}
}

// scanRawIdent: r#name. Keywords become plain identifiers, except path roots.
func (lx *Lexer) scanRawIdent() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Off += 2 // r#
	lx.scanIdentTail()
	tok := lx.emit(token.Ident, start)
	if name := tok.Text[2:]; !token.CanBeRaw(name) {
		lx.errLex(diag.LexUnknownChar, tok.Span, "`"+name+"` cannot be a raw identifier")
	}
	return tok
}

// scanUnknown съедает одну руну (или один битый байт) как Invalid.
func (lx *Lexer) scanUnknown(start Mark) token.Token {
	lx.bumpRune()
	if lx.cursor.Off == uint32(start) {
		lx.cursor.Bump()
	}
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexUnknownChar, tok.Span, "unknown character "+quoteText(tok.Text))
	return tok
}

func quoteText(s string) string {
	return "`" + s + "`"
}
