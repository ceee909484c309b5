package lexer

import (
	"fmt"
	"iter"

	"oxide/internal/diag"
	"oxide/internal/source"
	"oxide/internal/token"

	"fortio.org/safecast"
)

// maxTokenLength bounds a single token; a longer one stops the lexer.
const maxTokenLength = 1 << 16

type Lexer struct {
	file    *source.File
	cursor  Cursor
	opts    Options
	look    *token.Token   // 1 элементный буфер для токена
	hold    []token.Trivia // накопленные leading trivia
	started bool
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// File returns the file being scanned.
func (lx *Lexer) File() *source.File {
	return lx.file
}

// Next возвращает следующий **значимый** токен с уже собранным Leading.
// После EOF всегда возвращает EOF; trivia в конце файла приклеиваются к EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	if !lx.started {
		lx.started = true
		lx.scanShebang()
	}
	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		sp := lx.emptySpan()
		return token.Token{
			Kind:    token.EOF,
			Span:    sp,
			Pos:     lx.file.LineCol(sp.Start),
			Leading: lx.takeHold(),
		}
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case ch == 'r' && lx.cursor.PeekAt(1) == '#' && isIdentStartByte(lx.cursor.PeekAt(2)):
		tok = lx.scanRawIdent()

	case ch == 'r' && (lx.cursor.PeekAt(1) == '"' || lx.cursor.PeekAt(1) == '#'):
		tok = lx.scanRawString(token.RawStringLit, 1)

	case ch == 'b' && lx.cursor.PeekAt(1) == '\'':
		tok = lx.scanChar(true)

	case ch == 'b' && lx.cursor.PeekAt(1) == '"':
		tok = lx.scanString(true)

	case ch == 'b' && lx.cursor.PeekAt(1) == 'r' && (lx.cursor.PeekAt(2) == '"' || lx.cursor.PeekAt(2) == '#'):
		tok = lx.scanRawString(token.RawByteStringLit, 2)

	case isIdentStartByte(ch), ch >= utf8RuneSelf:
		// ASCII буква или возможный Unicode идентификатор
		tok = lx.scanIdentOrKeyword()

	case isDec(ch):
		tok = lx.scanNumber()

	case ch == '"':
		tok = lx.scanString(false)

	case ch == '\'':
		tok = lx.scanCharOrLifetime()

	default:
		tok = lx.scanOperatorOrPunct()
	}

	if tok.Span.Len() > maxTokenLength {
		lx.errLex(diag.LexTokenTooLong, tok.Span, fmt.Sprintf("token is longer than %d bytes", maxTokenLength))
		lx.cursor.SkipToEnd()
		tok.Kind = token.Invalid
		tok.Span.End = lx.cursor.Off
		tok.Text = ""
	}

	tok.Pos = lx.file.LineCol(tok.Span.Start)
	tok.Leading = lx.takeHold()
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// All returns the remaining tokens as a lazy sequence ending with EOF.
// The sequence shares the lexer's position: it cannot be restarted.
func (lx *Lexer) All() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for {
			tok := lx.Next()
			if !yield(tok) || tok.Kind == token.EOF {
				return
			}
		}
	}
}

func (lx *Lexer) takeHold() []token.Trivia {
	if len(lx.hold) == 0 {
		return nil
	}
	out := lx.hold
	lx.hold = nil
	return out
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) emit(k token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: k, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) advance(n int) {
	un, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("lexer advance overflow: %w", err))
	}
	lx.cursor.Off = min(lx.cursor.Off+un, lx.cursor.Limit)
}
