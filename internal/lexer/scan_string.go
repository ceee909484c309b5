package lexer

import (
	"fmt"

	"oxide/internal/diag"
	"oxide/internal/token"
)

// scanString: "..." или b"...". Переводы строк внутри допустимы.
// Escape-последовательности проверяются, ошибки → LexBadEscape, токен остаётся строкой.
func (lx *Lexer) scanString(isByte bool) token.Token {
	start := lx.cursor.Mark()
	kind := token.StringLit
	if isByte {
		kind = token.ByteStringLit
		lx.cursor.Bump() // b
	}
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		switch b := lx.cursor.Peek(); {
		case b == '"':
			lx.cursor.Bump()
			return lx.emit(kind, start)
		case b == '\\':
			lx.scanEscape(isByte, '"')
		case isByte && b >= utf8RuneSelf:
			esc := lx.cursor.Mark()
			lx.bumpRune()
			lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(esc), "non-ASCII character in byte string literal")
		default:
			lx.bumpRune()
		}
	}
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexUnterminatedString, tok.Span, "unterminated string literal")
	return tok
}

// scanRawString: r"..", r#".."#, br"..", br##".."## (prefixLen = длина r / br).
func (lx *Lexer) scanRawString(kind token.Kind, prefixLen int) token.Token {
	start := lx.cursor.Mark()
	lx.advance(prefixLen)
	hashes := 0
	for lx.cursor.Eat('#') {
		hashes++
	}
	if !lx.cursor.Eat('"') {
		tok := lx.emit(token.Invalid, start)
		lx.errLex(diag.LexBadRawString, tok.Span, "expected '\"' after raw string prefix")
		return tok
	}
	if hashes > 255 {
		tok := lx.emit(token.Invalid, start)
		lx.errLex(diag.LexBadRawString, tok.Span, "too many '#' in raw string delimiter")
		return tok
	}
	for !lx.cursor.EOF() {
		if lx.cursor.Bump() != '"' {
			continue
		}
		n := 0
		for n < hashes && lx.cursor.Peek() == '#' {
			lx.cursor.Bump()
			n++
		}
		if n == hashes {
			return lx.emit(kind, start)
		}
	}
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexUnterminatedString, tok.Span, fmt.Sprintf("unterminated raw string, expected '\"' followed by %d '#'", hashes))
	return tok
}

// scanCharOrLifetime различает 'a' (char), 'a (lifetime/label) и '\n'.
func (lx *Lexer) scanCharOrLifetime() token.Token {
	start := lx.cursor.Mark()
	next := lx.cursor.PeekAt(1)
	if next == '\\' {
		return lx.scanChar(false)
	}
	// 'x' - один символ и закрывающая кавычка
	lx.cursor.Bump()
	r, sz := lx.peekRune()
	if sz > 0 && lx.cursor.PeekAt(uint32(sz)) == '\'' { //nolint:gosec // sz <= 4
		lx.cursor.Reset(start)
		return lx.scanChar(false)
	}
	if sz > 0 && (r < utf8RuneSelf && isIdentStartByte(byte(r)) || r >= utf8RuneSelf && isIdentStartRune(r)) {
		lx.scanIdentTail()
		return lx.emit(token.Lifetime, start)
	}
	lx.cursor.Reset(start)
	return lx.scanChar(false)
}

// scanChar: 'x', '\n', '\u{1F600}', b'x'.
func (lx *Lexer) scanChar(isByte bool) token.Token {
	start := lx.cursor.Mark()
	kind := token.CharLit
	if isByte {
		kind = token.ByteLit
		lx.cursor.Bump() // b
	}
	lx.cursor.Bump() // '

	switch b := lx.cursor.Peek(); {
	case lx.cursor.EOF() || b == '\n':
		tok := lx.emit(token.Invalid, start)
		lx.errLex(diag.LexUnterminatedChar, tok.Span, "unterminated character literal")
		return tok
	case b == '\'':
		lx.cursor.Bump()
		tok := lx.emit(token.Invalid, start)
		lx.errLex(diag.LexEmptyChar, tok.Span, "empty character literal")
		return tok
	case b == '\\':
		lx.scanEscape(isByte, '\'')
	case isByte && b >= utf8RuneSelf:
		esc := lx.cursor.Mark()
		lx.bumpRune()
		lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(esc), "non-ASCII character in byte literal")
	default:
		lx.bumpRune()
	}

	if lx.cursor.Eat('\'') {
		return lx.emit(kind, start)
	}
	// съедаем до кавычки в пределах строки, чтобы не плодить ошибки
	save := lx.cursor.Mark()
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' && lx.cursor.Peek() != '\'' {
		lx.cursor.Bump()
	}
	if !lx.cursor.Eat('\'') {
		lx.cursor.Reset(save)
	}
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexUnterminatedChar, tok.Span, "character literal must contain exactly one character")
	return tok
}

// scanEscape съедает escape-последовательность, начиная с '\', и проверяет её.
func (lx *Lexer) scanEscape(isByte bool, quote byte) {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '\'
	b := lx.cursor.Peek()
	switch b {
	case 'n', 'r', 't', '\\', '0', '\'', '"':
		lx.cursor.Bump()
	case '\n':
		// продолжение строки: пропускаем пробельные символы
		if quote != '"' {
			lx.badEscape(start, "line continuation is only allowed in strings")
			return
		}
		for b := lx.cursor.Peek(); b == '\n' || isHorizontalSpace(b); b = lx.cursor.Peek() {
			lx.cursor.Bump()
		}
	case 'x':
		lx.cursor.Bump()
		h0, h1 := lx.cursor.PeekAt(0), lx.cursor.PeekAt(1)
		if !isHex(h0) || !isHex(h1) {
			for isHex(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			lx.badEscape(start, "\\x escape needs exactly two hex digits")
			return
		}
		lx.cursor.Off += 2
		if !isByte && hexVal(h0) > 7 {
			lx.badEscape(start, "\\x escape must be in range [\\x00-\\x7f]")
		}
	case 'u':
		lx.cursor.Bump()
		if isByte {
			lx.skipUnicodeEscapeBody()
			lx.badEscape(start, "unicode escape in byte literal")
			return
		}
		lx.scanUnicodeEscape(start)
	default:
		if lx.cursor.EOF() {
			lx.badEscape(start, "unterminated escape")
			return
		}
		lx.bumpRune()
		lx.badEscape(start, "unknown character escape "+quoteText(string(lx.file.Content[start:lx.cursor.Off])))
	}
}

// \u{XXXX}: 1..6 hex digits, <= 10FFFF, не суррогат.
func (lx *Lexer) scanUnicodeEscape(start Mark) {
	if !lx.cursor.Eat('{') {
		lx.badEscape(start, "expected '{' in unicode escape")
		return
	}
	var val rune
	digits := 0
	for {
		b := lx.cursor.Peek()
		if b == '_' {
			lx.cursor.Bump()
			continue
		}
		if !isHex(b) {
			break
		}
		if digits < 8 {
			val = val*16 + rune(hexVal(b))
		}
		digits++
		lx.cursor.Bump()
	}
	if !lx.cursor.Eat('}') {
		lx.badEscape(start, "unterminated unicode escape")
		return
	}
	switch {
	case digits == 0:
		lx.badEscape(start, "empty unicode escape")
	case digits > 6:
		lx.badEscape(start, "unicode escape has more than 6 digits")
	case val > 0x10FFFF:
		lx.badEscape(start, "unicode escape out of range")
	case val >= 0xD800 && val <= 0xDFFF:
		lx.badEscape(start, "unicode escape is a surrogate")
	}
}

func (lx *Lexer) skipUnicodeEscapeBody() {
	if !lx.cursor.Eat('{') {
		return
	}
	for isHex(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
	lx.cursor.Eat('}')
}

func (lx *Lexer) badEscape(start Mark, msg string) {
	lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(start), msg)
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

