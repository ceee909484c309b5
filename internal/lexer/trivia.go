package lexer

import (
	"oxide/internal/diag"
	"oxide/internal/token"
)

// collectLeadingTrivia собирает подряд идущие trivia перед значимым токеном.
// - ' ', '\t', '\r', '\f', '\v' коалесцируются в один TriviaSpace
// - последовательные '\n' коалесцируются в один TriviaNewline
// - //... до \n -> TriviaLineComment, ///... -> TriviaDocLine, //!... -> TriviaInnerDocLine
// - /* ... */ -> TriviaBlockComment (вложенность; /** */ и /*! */ - doc)
func (lx *Lexer) collectLeadingTrivia() {
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		if isHorizontalSpace(b) {
			for isHorizontalSpace(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaSpace, start)
			continue
		}

		if b == '\n' {
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaNewline, start)
			continue
		}

		if b == '/' && lx.scanCommentIntoHold() {
			continue
		}

		break
	}
}

func isHorizontalSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\f' || b == '\v'
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}

// //... , /*...*/
func (lx *Lexer) scanCommentIntoHold() bool {
	start := lx.cursor.Mark()
	b0, b1, ok := lx.cursor.Peek2()
	if !ok || b0 != '/' {
		return false
	}
	switch b1 {
	case '/':
		lx.cursor.Off += 2
		kind := token.TriviaLineComment
		switch lx.cursor.Peek() {
		case '/':
			// "////" - обычный комментарий
			if lx.cursor.PeekAt(1) != '/' {
				kind = token.TriviaDocLine
			}
		case '!':
			kind = token.TriviaInnerDocLine
		}
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		lx.pushTrivia(kind, start)
		return true

	case '*':
		lx.cursor.Off += 2
		kind := token.TriviaBlockComment
		switch lx.cursor.Peek() {
		case '*':
			// "/**/" и "/***" - обычные комментарии
			if next := lx.cursor.PeekAt(1); next != '/' && next != '*' {
				kind = token.TriviaDocBlock
			}
		case '!':
			kind = token.TriviaInnerDocBlock
		}
		depth := 1
		for !lx.cursor.EOF() && depth > 0 {
			switch {
			case lx.try2('/', '*'):
				depth++
			case lx.try2('*', '/'):
				depth--
			default:
				lx.cursor.Bump()
			}
		}
		if depth > 0 {
			lx.errLex(diag.LexUnterminatedBlockComment, lx.cursor.SpanFrom(start), "unterminated block comment")
		}
		lx.pushTrivia(kind, start)
		return true

	default:
		// не комментарий - пусть сканируется как оператор '/'
		return false
	}
}

// scanShebang распознаёт "#!..." в самом начале файла.
// "#![" - это inner attribute, а не shebang.
func (lx *Lexer) scanShebang() {
	b0, b1, ok := lx.cursor.Peek2()
	if !ok || b0 != '#' || b1 != '!' {
		return
	}
	i := uint32(2)
	for isHorizontalSpace(lx.cursor.PeekAt(i)) {
		i++
	}
	if lx.cursor.PeekAt(i) == '[' {
		return
	}
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
	lx.pushTrivia(token.TriviaShebang, start)
}
