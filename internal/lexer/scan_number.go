package lexer

import (
	"oxide/internal/diag"
	"oxide/internal/token"
)

var intSuffixes = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
}

var floatSuffixes = map[string]bool{"f32": true, "f64": true}

// scanNumber поддерживает: 0, 1_000, 0b1010, 0o17, 0xff, 1.5, 1e-3, 2.5E+10, 1.
// и суффиксы типов (100i32, 0xffu8, 1.5f64, 7f32).
// "1..2" - это 1, .., 2; "1.foo()" - вызов метода у 1; "x.0.1" разбирает парсер.
// Неверные формы - LexBadNumber, токен завершаем по возможности.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit
	radix := 10

	if lx.cursor.Peek() == '0' {
		switch lx.cursor.PeekAt(1) {
		case 'b':
			radix = 2
		case 'o':
			radix = 8
		case 'x':
			radix = 16
		}
	}

	bad := false
	if radix != 10 {
		lx.cursor.Off += 2
		digits := 0
		for {
			b := lx.cursor.Peek()
			if b == '_' {
				lx.cursor.Bump()
				continue
			}
			if radix == 16 && isHex(b) || radix != 16 && isDec(b) {
				if radix != 16 && int(b-'0') >= radix {
					bad = true
				}
				digits++
				lx.cursor.Bump()
				continue
			}
			break
		}
		if digits == 0 {
			tok := lx.emit(token.IntLit, start)
			lx.errLex(diag.LexBadNumber, tok.Span, "no digits after radix prefix")
			tok.Kind = token.Invalid
			return tok
		}
	} else {
		lx.eatDecDigits()

		// дробная часть: точка, за которой не '.', не идентификатор
		if lx.cursor.Peek() == '.' {
			next := lx.cursor.PeekAt(1)
			switch {
			case next == '.' || isIdentStartByte(next) || next >= utf8RuneSelf:
				// диапазон или вызов метода - не часть числа
			case isDec(next):
				lx.cursor.Bump()
				lx.eatDecDigits()
				kind = token.FloatLit
			default:
				// "1." - допустимый float
				lx.cursor.Bump()
				kind = token.FloatLit
				return lx.emit(kind, start)
			}
		}

		if lx.exponentAhead() {
			lx.cursor.Bump() // e/E
			if b := lx.cursor.Peek(); b == '+' || b == '-' {
				lx.cursor.Bump()
			}
			if !lx.eatDecDigits() {
				tok := lx.emit(kind, start)
				lx.errLex(diag.LexBadNumber, tok.Span, "expected digit after exponent")
				tok.Kind = token.Invalid
				return tok
			}
			kind = token.FloatLit
		}
	}

	// суффикс типа
	sufStart := lx.cursor.Off
	if isIdentStartByte(lx.cursor.Peek()) {
		lx.scanIdentTail()
	}
	suffix := string(lx.file.Content[sufStart:lx.cursor.Off])

	tok := lx.emit(kind, start)
	switch {
	case bad:
		lx.errLex(diag.LexBadNumber, tok.Span, "invalid digit for the radix")
		tok.Kind = token.Invalid
	case suffix == "":
	case floatSuffixes[suffix] && radix == 10:
		tok.Kind = token.FloatLit
	case intSuffixes[suffix] && kind == token.IntLit:
	default:
		lx.errLex(diag.LexBadNumber, tok.Span, "invalid suffix "+quoteText(suffix)+" for number literal")
		tok.Kind = token.Invalid
	}
	return tok
}

// eatDecDigits съедает [0-9_]*, возвращает true, если была хотя бы одна цифра.
func (lx *Lexer) eatDecDigits() bool {
	seen := false
	for {
		b := lx.cursor.Peek()
		switch {
		case isDec(b):
			seen = true
		case b == '_':
		default:
			return seen
		}
		lx.cursor.Bump()
	}
}

// exponentAhead: e/E, затем опционально знак, затем цифра или '_'.
func (lx *Lexer) exponentAhead() bool {
	b := lx.cursor.Peek()
	if b != 'e' && b != 'E' {
		return false
	}
	n := lx.cursor.PeekAt(1)
	if n == '+' || n == '-' {
		n = lx.cursor.PeekAt(2)
	}
	return isDec(n) || n == '_'
}
