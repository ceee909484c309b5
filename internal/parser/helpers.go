package parser

import (
	"fmt"
	"slices"

	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/source"
	"oxide/internal/token"
	"oxide/internal/trace"
)

func (p *Parser) peek() token.Token {
	return p.ts.Peek()
}

func (p *Parser) peekN(k int) token.Token {
	return p.ts.PeekN(k)
}

// advance - съедает текущий токен.
func (p *Parser) advance() token.Token {
	return p.ts.Next()
}

// eat съедает токен kind, если он текущий.
func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// atIdent reports whether the current token is the contextual keyword word
// (`union`, `auto`, `default`, `macro_rules`, ...).
func (p *Parser) atIdent(word string) bool {
	tok := p.peek()
	return tok.Kind == token.Ident && tok.Text == word
}

// start - смещение начала текущего токена.
func (p *Parser) start() uint32 {
	return p.peek().Span.Start
}

// spanFrom строит span от start до конца последнего съеденного токена.
func (p *Parser) spanFrom(start uint32) source.Span {
	end := max(p.ts.PrevEnd(), p.tail)
	if end < start {
		end = start
	}
	return source.Span{File: p.file.ID, Start: start, End: end}
}

// getDiagnosticSpan returns the span of the current token, or an empty span
// right after the previous one at end of input.
func (p *Parser) getDiagnosticSpan() source.Span {
	tok := p.peek()
	if tok.Kind == token.EOF {
		return tok.Span.ZeroideToStart()
	}
	return tok.Span
}

// expect - если текущий токен k, съедаем и возвращаем его.
// Иначе репортим ошибку в текущей позиции и ничего не съедаем.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	diagSpan := p.getDiagnosticSpan()
	if msg == "" {
		msg = fmt.Sprintf("expected %s, found %s", k.Describe(), describe(p.peek()))
	}
	p.report(code, diag.SevError, diagSpan, msg)
	return token.Token{Kind: token.Invalid, Span: diagSpan, Text: p.peek().Text}, false
}

// expectSemi requires `;` and suggests inserting it after the previous token.
func (p *Parser) expectSemi(what string) bool {
	if p.eat(token.Semicolon) {
		return true
	}
	if p.at(token.Invalid) {
		// лексер уже отчитался об этом токене
		return false
	}
	at := source.Span{File: p.file.ID, Start: p.ts.PrevEnd(), End: p.ts.PrevEnd()}
	p.diagnose(diag.SynExpectSemicolon, diag.SevError, p.getDiagnosticSpan(),
		fmt.Sprintf("expected `;` after %s, found %s", what, describe(p.peek()))).
		WithFix("insert `;`", diag.FixEdit{Span: at, NewText: ";"}).
		Emit()
	return false
}

func (p *Parser) err(code diag.Code, msg string) {
	p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) warn(code diag.Code, sp source.Span, msg string) {
	p.report(code, diag.SevWarning, sp, msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	p.diagnose(code, sev, sp, msg).Emit()
}

// diagnose returns a builder for one diagnostic, or nil when it must be
// dropped: after a budget abort, while speculating, at an offset that
// already has an error, or past MaxErrors. Builder methods are nil-safe.
func (p *Parser) diagnose(code diag.Code, sev diag.Severity, sp source.Span, msg string) *diag.ReportBuilder {
	if code.IsFatal() {
		return diag.NewReportBuilder(p.rep, sev, code, sp, msg)
	}
	if p.fatal {
		// после аварийной остановки остальное - следствие обрыва
		return nil
	}
	if p.speculating > 0 {
		if sev == diag.SevError {
			p.specFailed = true
		}
		return nil
	}
	if sev == diag.SevError {
		if eof := p.peek(); eof.Kind == token.EOF && sp.Start >= eof.Span.Start {
			// "expected X, found end of file" внутри незакрытой группы -
			// следствие той же ошибки, что и unclosed delimiter
			if p.unclosedReported {
				return nil
			}
			return diag.NewReportBuilder(&p.atEOF, sev, code, sp, msg)
		}
		if p.hasLastErr && p.lastErrPos == sp.Start {
			return nil
		}
		if p.opts.Enough() {
			return nil
		}
		p.opts.CurrentErrors++
		p.hasLastErr = true
		p.lastErrPos = sp.Start
		p.tracePoint("syntax-error", code.ID())
	}
	return diag.NewReportBuilder(p.rep, sev, code, sp, msg)
}

// unexpected reports the current token as unexpected. Invalid tokens were
// already reported by the lexer and stay silent here.
func (p *Parser) unexpected(code diag.Code, what string) {
	tok := p.peek()
	if tok.Kind == token.Invalid {
		return
	}
	p.err(code, fmt.Sprintf("expected %s, found %s", what, describe(tok)))
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident:
		return fmt.Sprintf("identifier `%s`", tok.Text)
	case token.Invalid:
		return "invalid token"
	}
	if tok.IsLiteral() {
		return "literal `" + tok.Text + "`"
	}
	if tok.IsKeyword() {
		return "keyword `" + tok.Text + "`"
	}
	return "`" + tok.Text + "`"
}

func (p *Parser) tracePoint(name, detail string) {
	if p.tracer == nil || !p.tracer.Enabled() || !p.tracer.Level().ShouldEmit(trace.ScopeNode) {
		return
	}
	trace.Point(p.tracer, trace.ScopeNode, name, detail, p.spanID)
}

// enter - защита глубины рекурсии. При переполнении репортит фатальную
// ошибку и останавливает поток; глубина в этом случае не увеличивается.
func (p *Parser) enter() bool {
	if p.fatal {
		return false
	}
	if p.depth >= p.opts.MaxDepth {
		p.resourceExceeded(p.getDiagnosticSpan(), fmt.Sprintf("nesting depth exceeds %d", p.opts.MaxDepth))
		return false
	}
	p.depth++
	return true
}

func (p *Parser) leave() {
	p.depth--
}

// bail returns the placeholder for a production cut off by a budget.
func (p *Parser) bail() ast.NodeID {
	return p.b.New(ast.Error, p.spanFrom(p.start()))
}

func (p *Parser) resourceExceeded(sp source.Span, what string) {
	if p.fatal {
		return
	}
	p.fatal = true
	p.report(diag.SynResourceExceeded, diag.SevError, sp, "parse aborted: "+what)
	p.tracePoint("resource-exceeded", what)
	p.ts.Halt()
}

// tokenBudgetExceeded is called by the stream from inside Peek; the stream
// already turns every following read into EOF, so no Halt here.
func (p *Parser) tokenBudgetExceeded(tok token.Token) {
	if p.fatal {
		return
	}
	p.fatal = true
	p.report(diag.SynResourceExceeded, diag.SevError, tok.Span,
		fmt.Sprintf("parse aborted: more than %d tokens", p.opts.MaxTokens))
	p.tracePoint("resource-exceeded", "tokens")
}

// cancelled stops the parse when the caller's context is done.
func (p *Parser) cancelled() bool {
	if p.ctx.Err() == nil {
		return false
	}
	p.ts.Halt()
	return true
}

// errorNode wraps everything consumed since start into an Error placeholder.
func (p *Parser) errorNode(start uint32) ast.NodeID {
	id := p.b.New(ast.Error, p.spanFrom(start))
	p.b.AddFlags(id, ast.FlagRecovered)
	return id
}

// resyncUntil - пропускаем токены до одного из stops, закрывающей скобки
// внешней группы или EOF. Сбалансированные группы пропускаются целиком.
// Возвращает true, если что-то было съедено.
func (p *Parser) resyncUntil(stops ...token.Kind) bool {
	moved := false
	for {
		tok := p.peek()
		switch {
		case tok.Kind == token.EOF, slices.Contains(stops, tok.Kind), tok.Kind.IsClose():
			if moved {
				p.tracePoint("resync", tok.Kind.String())
			}
			return moved
		case tok.Kind.IsOpen():
			p.skipGroup()
		default:
			p.advance()
		}
		moved = true
	}
}

// itemStarters - ключевые слова, с которых может начинаться item.
var itemStarters = []token.Kind{
	token.KwFn, token.KwStruct, token.KwEnum, token.KwTrait, token.KwImpl,
	token.KwMod, token.KwConst, token.KwStatic, token.KwType, token.KwUse,
	token.KwExtern, token.KwPub, token.KwUnsafe, token.KwAsync, token.Hash,
}

// stmtStops are resync points inside blocks.
var stmtStops = append([]token.Kind{token.Semicolon, token.KwLet}, itemStarters...)

// recover records an Error node covering what was consumed since start plus
// everything up to the next stop. At least one token is consumed unless the
// current token is a stop, a closer or EOF.
func (p *Parser) recover(start uint32, stops ...token.Kind) ast.NodeID {
	p.resyncUntil(stops...)
	if p.at(token.Semicolon) && slices.Contains(stops, token.Semicolon) {
		p.advance()
	}
	return p.errorNode(start)
}

// skipGroup consumes a balanced delimited group starting at the current
// opener. An unterminated group runs to EOF and is reported once.
func (p *Parser) skipGroup() bool {
	var stack []token.Token
	for {
		tok := p.peek()
		switch {
		case tok.Kind == token.EOF:
			if len(stack) > 0 {
				p.unclosed(stack[len(stack)-1])
			}
			return false
		case tok.Kind.IsOpen():
			stack = append(stack, p.advance())
		case tok.Kind.IsClose():
			if len(stack) == 0 {
				return true
			}
			top := stack[len(stack)-1]
			if tok.Kind != top.Kind.Closer() {
				if !closesAny(stack, tok.Kind) {
					p.report(diag.SynUnexpectedCloseDelim, diag.SevError, tok.Span,
						fmt.Sprintf("unexpected closing delimiter %s", tok.Kind.Describe()))
					p.advance()
					continue
				}
				p.mismatched(top, tok)
			} else {
				p.advance()
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return true
			}
		default:
			p.advance()
		}
	}
}

// skipStrayCloser consumes a closing delimiter that closes nothing at this
// level and wraps it into an Error node, so list loops keep moving.
func (p *Parser) skipStrayCloser() (ast.NodeID, bool) {
	tok := p.peek()
	if !tok.Kind.IsClose() {
		return ast.NoNodeID, false
	}
	p.report(diag.SynUnexpectedCloseDelim, diag.SevError, tok.Span,
		fmt.Sprintf("unexpected closing delimiter %s", tok.Kind.Describe()))
	p.advance()
	return p.errorNode(tok.Span.Start), true
}

func closesAny(stack []token.Token, k token.Kind) bool {
	for _, open := range stack {
		if open.Kind.Closer() == k {
			return true
		}
	}
	return false
}

// unclosed reports a delimiter left open at end of input. Only the innermost
// one is reported: the outer groups are unclosed for the same reason.
func (p *Parser) unclosed(open token.Token) {
	if p.speculating > 0 {
		p.specFailed = true
		return
	}
	// всё, что достраивается дальше, тянется до конца ввода
	p.tail = p.peek().Span.Start
	if p.unclosedReported || p.fatal {
		return
	}
	p.unclosedReported = true
	p.atEOF.drop()
	p.diagnose(diag.SynUnclosedDelimiter, diag.SevError, open.Span,
		fmt.Sprintf("unclosed delimiter %s", open.Kind.Describe())).
		WithNote(p.getDiagnosticSpan(), "input ends here").
		Emit()
}

func (p *Parser) mismatched(open, got token.Token) {
	p.diagnose(diag.SynUnexpectedCloseDelim, diag.SevError, got.Span,
		fmt.Sprintf("mismatched closing delimiter: expected %s, found %s", open.Kind.Closer().Describe(), got.Kind.Describe())).
		WithNote(open.Span, "unclosed delimiter").
		Emit()
}

// closeGroup finishes a delimited list: consumes closer, or reports why it
// cannot. Everything between the list end and the closer is skipped into an
// Error node (returned, possibly NoNodeID).
func (p *Parser) closeGroup(open token.Token) (ast.NodeID, bool) {
	closer := open.Kind.Closer()
	if p.eat(closer) {
		return ast.NoNodeID, true
	}
	start := p.start()
	if p.at(token.EOF) {
		p.unclosed(open)
		if p.fatal {
			return ast.NoNodeID, false
		}
		return p.errorNode(start), false
	}
	p.unexpected(diag.SynUnexpectedToken, closer.Describe())
	p.resyncUntil(closer)
	junk := p.errorNode(start)
	if !p.eat(closer) {
		if p.at(token.EOF) {
			p.unclosed(open)
		}
		return junk, false
	}
	return junk, true
}

func delimFlag(k token.Kind) ast.Flags {
	switch k {
	case token.LParen:
		return ast.FlagParen
	case token.LBracket:
		return ast.FlagBracket
	case token.LBrace:
		return ast.FlagBrace
	default:
		return 0
	}
}

// parseIdent - утилита: ожидает Ident и возвращает имя без префикса r#.
// На ошибке - репорт SynExpectIdentifier.
func (p *Parser) parseIdent() (string, source.Span, bool) {
	tok := p.peek()
	if tok.Kind == token.Ident {
		p.advance()
		return tok.IdentName(), tok.Span, true
	}
	p.unexpected(diag.SynExpectIdentifier, "identifier")
	return "", p.getDiagnosticSpan(), false
}

// outerDocs collects `///` and `/** */` comments in front of the current token.
func (p *Parser) outerDocs() []token.Trivia {
	var out []token.Trivia
	for _, tv := range p.peek().Leading {
		if tv.Kind.IsDoc() && !tv.Kind.IsInnerDoc() {
			out = append(out, tv)
		}
	}
	return out
}

func (p *Parser) innerDocs() []token.Trivia {
	var out []token.Trivia
	for _, tv := range p.peek().Leading {
		if tv.Kind.IsInnerDoc() {
			out = append(out, tv)
		}
	}
	return out
}

// heldReport keeps the first error reported at end of input until the parse
// ends: an unclosed delimiter found later makes it redundant.
type heldReport struct {
	d   diag.Diagnostic
	set bool
}

func (h *heldReport) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	if h.set {
		return
	}
	h.d = diag.Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes, Fixes: fixes}
	h.set = true
}

func (h *heldReport) drop() {
	h.set = false
	h.d = diag.Diagnostic{}
}

// flush отдаёт отложенную ошибку в rep, если её никто не перекрыл.
func (h *heldReport) flush(rep diag.Reporter) {
	if !h.set {
		return
	}
	rep.Report(h.d.Code, h.d.Severity, h.d.Primary, h.d.Message, h.d.Notes, h.d.Fixes)
	h.drop()
}
