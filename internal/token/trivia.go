package token

import "oxide/internal/source"

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
	TriviaDocLine       // ///
	TriviaDocBlock      // /** */
	TriviaInnerDocLine  // //!
	TriviaInnerDocBlock // /*! */
	TriviaShebang
)

var triviaNames = [...]string{
	TriviaSpace:         "Space",
	TriviaNewline:       "Newline",
	TriviaLineComment:   "LineComment",
	TriviaBlockComment:  "BlockComment",
	TriviaDocLine:       "DocLine",
	TriviaDocBlock:      "DocBlock",
	TriviaInnerDocLine:  "InnerDocLine",
	TriviaInnerDocBlock: "InnerDocBlock",
	TriviaShebang:       "Shebang",
}

func (k TriviaKind) String() string {
	if int(k) < len(triviaNames) {
		return triviaNames[k]
	}
	return "TriviaKind(?)"
}

// IsDoc reports whether the trivia is an outer or inner doc comment.
func (k TriviaKind) IsDoc() bool {
	return k >= TriviaDocLine && k <= TriviaInnerDocBlock
}

// IsInnerDoc reports whether the doc comment documents the enclosing item.
func (k TriviaKind) IsInnerDoc() bool {
	return k == TriviaInnerDocLine || k == TriviaInnerDocBlock
}

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

// DocText strips comment markers from a doc trivia.
func (t Trivia) DocText() string {
	s := t.Text
	switch t.Kind {
	case TriviaDocLine, TriviaInnerDocLine:
		s = s[3:]
	case TriviaDocBlock, TriviaInnerDocBlock:
		if len(s) >= 5 {
			s = s[3 : len(s)-2]
		}
	default:
		return ""
	}
	if len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	return s
}
