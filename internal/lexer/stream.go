package lexer

import (
	"oxide/internal/source"
	"oxide/internal/token"
)

// StreamOptions configures a Stream.
type StreamOptions struct {
	// MaxTokens caps how many tokens are pulled from the lexer; 0 means no limit.
	MaxTokens int
	// OnExceeded is called once with the first token past the budget.
	OnExceeded func(tok token.Token)
}

// Stream is a buffered, backtrackable view over a Lexer.
//
// Every token is pulled from the lexer once and kept, so Restore is a plain
// state copy and never re-lexes. A compound token (`>>`, `>=`, `>>=`, `<<`,
// `&&`, `||`, ...) can be split from the front with Split; the split position
// is part of the Checkpoint. After the budget is exceeded or Halt is called,
// the stream reports EOF forever.
type Stream struct {
	lx       *Lexer
	buf      []token.Token
	pos      int
	skip     uint32 // bytes of buf[pos] already consumed by Split
	prevEnd  uint32
	opts     StreamOptions
	lexed    int
	exceeded bool
	halted   bool
	haltAt   uint32
}

// Checkpoint is an opaque saved position of a Stream.
type Checkpoint struct {
	pos     int
	skip    uint32
	prevEnd uint32
}

func NewStream(lx *Lexer, opts StreamOptions) *Stream {
	return &Stream{lx: lx, opts: opts}
}

// File returns the underlying source file.
func (s *Stream) File() *source.File {
	return s.lx.file
}

// Peek returns the current token without consuming it.
func (s *Stream) Peek() token.Token {
	return s.PeekN(0)
}

// PeekN returns the k-th token ahead (PeekN(0) == Peek()).
func (s *Stream) PeekN(k int) token.Token {
	if s.halted {
		return s.eofAt(s.haltAt)
	}
	if !s.fill(s.pos + k) {
		return s.buf[len(s.buf)-1]
	}
	tok := s.buf[s.pos+k]
	if k == 0 && s.skip > 0 {
		tok = splitRest(tok, s.skip)
	}
	return tok
}

// Next consumes and returns the current token.
func (s *Stream) Next() token.Token {
	tok := s.Peek()
	if tok.Kind == token.EOF {
		return tok
	}
	s.pos++
	s.skip = 0
	s.prevEnd = tok.Span.End
	return tok
}

// Split consumes the first byte of the current compound token when it
// matches want and returns it as its own token. The remainder stays current.
func (s *Stream) Split(want token.Kind) (token.Token, bool) {
	cur := s.Peek()
	b, ok := splitHeads[want]
	if !ok || len(cur.Text) < 2 || cur.Text[0] != b {
		return cur, false
	}
	head := cur
	head.Kind = want
	head.Text = cur.Text[:1]
	head.Span.End = head.Span.Start + 1
	s.skip++
	s.prevEnd = head.Span.End
	return head, true
}

// PrevEnd returns the end offset of the last consumed token.
func (s *Stream) PrevEnd() uint32 {
	return s.prevEnd
}

// Checkpoint saves the current position.
func (s *Stream) Checkpoint() Checkpoint {
	return Checkpoint{pos: s.pos, skip: s.skip, prevEnd: s.prevEnd}
}

// Restore rewinds to cp. A halted stream stays halted.
func (s *Stream) Restore(cp Checkpoint) {
	s.pos = cp.pos
	s.skip = cp.skip
	s.prevEnd = cp.prevEnd
}

// Halt makes every following read return EOF at the current position.
func (s *Stream) Halt() {
	if s.halted {
		return
	}
	s.haltAt = s.Peek().Span.Start
	s.halted = true
}

// Halted reports whether the stream was stopped by Halt or the token budget.
func (s *Stream) Halted() bool {
	return s.halted || s.exceeded
}

// Consumed returns the number of tokens pulled from the lexer so far.
func (s *Stream) Consumed() int {
	return s.lexed
}

// fill buffers tokens up to index i. It returns false when the lexer ended
// before i; the last buffered token is then EOF.
func (s *Stream) fill(i int) bool {
	for len(s.buf) <= i {
		if n := len(s.buf); n > 0 && s.buf[n-1].Kind == token.EOF {
			return false
		}
		tok := s.lx.Next()
		if tok.Kind != token.EOF {
			s.lexed++
			if s.opts.MaxTokens > 0 && s.lexed > s.opts.MaxTokens {
				s.exceed(tok)
				tok = s.eofAt(tok.Span.Start)
			}
		}
		s.buf = append(s.buf, tok)
	}
	return true
}

func (s *Stream) exceed(tok token.Token) {
	if s.exceeded {
		return
	}
	s.exceeded = true
	if s.opts.OnExceeded != nil {
		s.opts.OnExceeded(tok)
	}
}

func (s *Stream) eofAt(off uint32) token.Token {
	sp := source.Span{File: s.lx.file.ID, Start: off, End: off}
	return token.Token{Kind: token.EOF, Span: sp, Pos: s.lx.file.LineCol(off)}
}

var splitHeads = map[token.Kind]byte{
	token.Gt:     '>',
	token.Lt:     '<',
	token.Amp:    '&',
	token.Pipe:   '|',
	token.Dot:    '.',
	token.Colon:  ':',
	token.Assign: '=',
}

var splitKinds = map[string]token.Kind{
	">":  token.Gt,
	"<":  token.Lt,
	"=":  token.Assign,
	">=": token.GtEq,
	"<=": token.LtEq,
	"&":  token.Amp,
	"|":  token.Pipe,
	".":  token.Dot,
	"..": token.DotDot,
	":":  token.Colon,
}

func splitRest(tok token.Token, skip uint32) token.Token {
	if int(skip) >= len(tok.Text) {
		return tok
	}
	rest := tok
	rest.Text = tok.Text[skip:]
	rest.Span.Start += skip
	rest.Pos.Col += skip
	rest.Leading = nil
	if k, ok := splitKinds[rest.Text]; ok {
		rest.Kind = k
	}
	return rest
}
