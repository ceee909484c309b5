package parser

import (
	"fmt"
	"strings"

	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/source"
	"oxide/internal/token"
)

// restrictions - контекстные ограничения на разбор выражения.
type restrictions uint8

const (
	restrictNone restrictions = 0
	// restrictNoStruct: голова `if`/`while`/`match`/`for`, где `{` открывает
	// тело, а не struct literal.
	restrictNoStruct restrictions = 1 << 0
)

// parseExpr parses a full expression including assignment.
func (p *Parser) parseExpr() ast.NodeID {
	return p.parseExprWith(restrictNone)
}

func (p *Parser) parseExprWith(r restrictions) ast.NodeID {
	return p.parseBinaryExpr(precAssign, r)
}

// parseBinaryExpr - precedence climbing: разбираем унарное выражение,
// затем цепочку бинарных операторов с приоритетом не ниже minPrec.
func (p *Parser) parseBinaryExpr(minPrec int, r restrictions) ast.NodeID {
	if !p.enter() {
		return p.bail()
	}
	defer p.leave()

	start := p.start()
	var left ast.NodeID
	if p.atOr(token.DotDot, token.DotDotEq) {
		// `..`, `..b`, `..=b`
		left = p.parseRangeExpr(start, ast.NoNodeID, r)
	} else {
		left = p.parseUnaryExpr(r)
	}
	return p.parseBinaryRest(start, left, minPrec, r)
}

func (p *Parser) parseBinaryRest(start uint32, left ast.NodeID, minPrec int, r restrictions) ast.NodeID {
	var lastCmp token.Token
	for {
		tok := p.peek()
		prec, rightAssoc := getBinaryOperatorPrec(tok.Kind)
		if prec == precNone || prec < minPrec {
			return left
		}

		switch {
		case tok.Kind == token.KwAs:
			p.advance()
			ty := p.parseTypeNoBounds()
			left = p.b.New(ast.ExprCast, p.spanFrom(start), ast.C(ast.RoleLHS, left), ast.C(ast.RoleType, ty))

		case prec == precRange:
			left = p.parseRangeExpr(start, left, r)

		default:
			p.advance()
			next := prec + 1
			if rightAssoc {
				next = prec
			}
			rhs := p.parseBinaryExpr(next, r)
			kind := ast.ExprBinary
			if prec == precAssign {
				kind = ast.ExprAssign
			}
			op, _ := tokenKindToBinaryOp(tok.Kind)
			left = p.b.New(kind, p.spanFrom(start), ast.C(ast.RoleLHS, left), ast.C(ast.RoleRHS, rhs))
			p.b.SetOp(left, op)

			if isComparison(tok.Kind) {
				if lastCmp.Kind != token.Invalid {
					p.diagnose(diag.SynChainedComparison, diag.SevError, tok.Span,
						"comparison operators cannot be chained").
						WithNote(lastCmp.Span, "previous comparison here").
						Emit()
				}
				lastCmp = tok
			}
		}
	}
}

// parseRangeExpr parses `..`/`..=` after left (NoNodeID for a prefix range)
// with an optional end. Ranges do not associate: `a..b..c` is reported.
func (p *Parser) parseRangeExpr(start uint32, left ast.NodeID, r restrictions) ast.NodeID {
	tok := p.advance()
	op, _ := tokenKindToBinaryOp(tok.Kind)
	var rhs ast.NodeID
	switch {
	case p.atExprStart(r):
		rhs = p.parseBinaryExpr(precRange+1, r)
	case tok.Kind == token.DotDotEq:
		p.unexpected(diag.SynExpectExpression, "expression after `..=`")
	}
	id := p.b.New(ast.ExprRange, p.spanFrom(start), ast.C(ast.RoleLHS, left), ast.C(ast.RoleRHS, rhs))
	p.b.SetOp(id, op)
	if next := p.peek(); next.Is(token.DotDot, token.DotDotEq) {
		p.diagnose(diag.SynChainedRange, diag.SevError, next.Span, "range operators cannot be chained").
			WithNote(tok.Span, "previous range here").
			Emit()
	}
	return id
}

// atExprStart reports whether an expression can begin at the current token.
func (p *Parser) atExprStart(r restrictions) bool {
	tok := p.peek()
	if tok.IsLiteral() {
		return true
	}
	switch tok.Kind {
	case token.LBrace:
		return r&restrictNoStruct == 0
	case token.LParen, token.LBracket, token.Minus, token.Bang, token.Star, token.Amp, token.AndAnd,
		token.Pipe, token.OrOr, token.KwIf, token.KwMatch, token.KwLoop, token.KwWhile, token.KwFor,
		token.KwUnsafe, token.KwAsync, token.KwMove, token.KwReturn, token.KwBreak, token.KwContinue,
		token.KwLet, token.KwConst, token.Lifetime, token.Lt, token.Shl:
		return true
	}
	return p.atPathStart()
}

// parseUnaryExpr collects prefix operators `- ! * & &mut` and applies them
// right to left to the postfix expression that follows.
func (p *Parser) parseUnaryExpr(r restrictions) ast.NodeID {
	type prefix struct {
		op    ast.Op
		start uint32
	}
	var ops []prefix

loop:
	for {
		if len(ops) > 0 && p.depth+len(ops) >= p.opts.MaxDepth {
			p.resourceExceeded(p.getDiagnosticSpan(), fmt.Sprintf("nesting depth exceeds %d", p.opts.MaxDepth))
			return p.bail()
		}
		tok := p.peek()
		switch tok.Kind {
		case token.Minus:
			p.advance()
			ops = append(ops, prefix{ast.OpNeg, tok.Span.Start})
		case token.Bang:
			p.advance()
			ops = append(ops, prefix{ast.OpNot, tok.Span.Start})
		case token.Star:
			p.advance()
			ops = append(ops, prefix{ast.OpDeref, tok.Span.Start})
		case token.AndAnd:
			// `&&x` - это `& &x`: отщепляем первый `&`, второй остаётся текущим
			p.ts.Split(token.Amp)
			ops = append(ops, prefix{ast.OpRef, tok.Span.Start})
		case token.Amp:
			p.advance()
			op := ast.OpRef
			if p.eat(token.KwMut) {
				op = ast.OpRefMut
			}
			ops = append(ops, prefix{op, tok.Span.Start})
		default:
			break loop
		}
	}

	operand := p.parsePostfixExpr(r)
	for i := len(ops) - 1; i >= 0; i-- {
		operand = p.b.New(ast.ExprUnary, p.spanFrom(ops[i].start), ast.C(ast.RoleOperand, operand))
		p.b.SetOp(operand, ops[i].op)
	}
	return operand
}

func (p *Parser) parsePostfixExpr(r restrictions) ast.NodeID {
	start := p.start()
	e := p.parsePrimaryExpr(r)
	return p.parsePostfixRest(start, e)
}

// parsePostfixRest applies call, index, field, method call, `?` and
// `.await` suffixes to e.
func (p *Parser) parsePostfixRest(start uint32, e ast.NodeID) ast.NodeID {
	for {
		switch p.peek().Kind {
		case token.Question:
			p.advance()
			e = p.b.New(ast.ExprTry, p.spanFrom(start), ast.C(ast.RoleOperand, e))
		case token.LParen:
			open := p.advance()
			args, _ := p.parseExprList(open, ast.RoleArg)
			e = p.b.New(ast.ExprCall, p.spanFrom(start), append([]ast.Child{ast.C(ast.RoleCallee, e)}, args...)...)
		case token.LBracket:
			open := p.advance()
			idx := p.parseExpr()
			junk, _ := p.closeGroup(open)
			e = p.b.New(ast.ExprIndex, p.spanFrom(start),
				ast.C(ast.RoleOperand, e), ast.C(ast.RoleIndex, idx), ast.C(ast.RoleError, junk))
		case token.Dot:
			e = p.parseDotSuffix(start, e)
		default:
			return e
		}
	}
}

// parseDotSuffix parses what follows `.`: `await`, a field, a method call
// with optional turbofish, or a tuple index.
func (p *Parser) parseDotSuffix(start uint32, e ast.NodeID) ast.NodeID {
	p.advance() // .
	tok := p.peek()
	switch tok.Kind {
	case token.KwAwait:
		p.advance()
		return p.b.New(ast.ExprAwait, p.spanFrom(start), ast.C(ast.RoleOperand, e))

	case token.Ident:
		p.advance()
		var generics ast.NodeID
		if p.at(token.ColonColon) && p.atTurbofish(1) {
			p.advance()
			generics = p.parseGenericArgs()
			p.b.AddFlags(generics, ast.FlagTurbofish)
		}
		if p.at(token.LParen) {
			open := p.advance()
			kids := []ast.Child{ast.C(ast.RoleReceiver, e), ast.C(ast.RoleGenerics, generics)}
			args, _ := p.parseExprList(open, ast.RoleArg)
			return p.b.NewNamed(ast.ExprMethodCall, p.spanFrom(start), tok.IdentName(), append(kids, args...)...)
		}
		id := p.b.NewNamed(ast.ExprField, p.spanFrom(start), tok.IdentName(),
			ast.C(ast.RoleOperand, e), ast.C(ast.RoleGenerics, generics))
		if generics.IsValid() {
			p.unexpected(diag.SynUnexpectedToken, "`(` after method generics")
			p.b.AddFlags(id, ast.FlagRecovered)
		}
		return id

	case token.IntLit:
		p.advance()
		return p.b.NewNamed(ast.ExprField, p.spanFrom(start), tok.Text, ast.C(ast.RoleOperand, e))

	case token.FloatLit:
		return p.parseFloatIndex(start, e, tok)
	}

	p.unexpected(diag.SynExpectIdentifier, "field name, method call or `await` after `.`")
	id := p.b.New(ast.ExprField, p.spanFrom(start), ast.C(ast.RoleOperand, e))
	p.b.AddFlags(id, ast.FlagRecovered)
	return id
}

// parseFloatIndex splits the literal of `x.0.1` (lexed as `x`, `.`, `0.1`)
// into two tuple field accesses.
func (p *Parser) parseFloatIndex(start uint32, e ast.NodeID, tok token.Token) ast.NodeID {
	first, second, ok := strings.Cut(tok.Text, ".")
	if !ok || !isDigits(first) || (second != "" && !isDigits(second)) {
		p.err(diag.SynUnexpectedToken, fmt.Sprintf("invalid tuple index `%s`", tok.Text))
		p.advance()
		id := p.b.New(ast.ExprField, p.spanFrom(start), ast.C(ast.RoleOperand, e))
		p.b.AddFlags(id, ast.FlagRecovered)
		return id
	}
	p.advance()
	firstEnd := tok.Span.Start + uint32(len(first))
	sp := source.Span{File: p.file.ID, Start: start, End: firstEnd}
	e = p.b.NewNamed(ast.ExprField, sp, first, ast.C(ast.RoleOperand, e))
	if second == "" {
		// `x.0.` и дальше не число
		p.unexpected(diag.SynExpectIdentifier, "field name after `.`")
		id := p.b.New(ast.ExprField, p.spanFrom(start), ast.C(ast.RoleOperand, e))
		p.b.AddFlags(id, ast.FlagRecovered)
		return id
	}
	return p.b.NewNamed(ast.ExprField, p.spanFrom(start), second, ast.C(ast.RoleOperand, e))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parseExprList parses `a, b, c` up to the closer of open and consumes it.
func (p *Parser) parseExprList(open token.Token, role ast.Role) ([]ast.Child, bool) {
	closer := open.Kind.Closer()
	var kids []ast.Child
	for !p.at(closer) && !p.at(token.EOF) {
		before := p.start()
		kids = append(kids, ast.C(role, p.parseExpr()))
		if p.eat(token.Comma) {
			continue
		}
		if !p.at(closer) && p.start() != before {
			p.unexpected(diag.SynUnexpectedToken, "`,` or "+closer.Describe())
		}
		break
	}
	junk, ok := p.closeGroup(open)
	return append(kids, ast.C(ast.RoleError, junk)), ok
}

// speculateGenericArgs tries `<...>` after a path segment in expression
// position, as in `Vec<u8>::new()`. The attempt is kept when `::` follows
// the closing `>`, or `(` follows a single argument (`f<T>(x)`). Otherwise
// the stream and the builder are rolled back and `<` stays a comparison:
// `f(a < b, c > (d))` is two comparisons, not one generic call.
func (p *Parser) speculateGenericArgs() ast.NodeID {
	lt := p.peek()
	if next := p.peekN(1); next.Kind != token.Lifetime && next.Kind != token.Gt {
		cp := p.ts.Checkpoint()
		p.advance()
		ok := p.atTypeStart()
		p.ts.Restore(cp)
		if !ok {
			return ast.NoNodeID
		}
	}

	cp := p.ts.Checkpoint()
	mark := p.b.Mark()
	outerFailed := p.specFailed
	p.speculating++
	p.specFailed = false

	args := p.parseGenericArgs()
	ok := !p.specFailed && !p.fatal
	switch {
	case p.at(token.ColonColon):
	case p.at(token.LParen):
		ok = ok && len(p.b.Kids(args)) == 1
	default:
		ok = false
	}

	p.speculating--
	p.specFailed = outerFailed
	if !ok {
		p.ts.Restore(cp)
		p.b.Truncate(mark)
		p.tracePoint("speculation", "rollback")
		return ast.NoNodeID
	}

	at := source.Span{File: p.file.ID, Start: lt.Span.Start, End: lt.Span.Start}
	p.diagnose(diag.SynTurbofishRequired, diag.SevWarning, lt.Span,
		"generic arguments in expression position need `::`").
		WithFix("insert `::`", diag.FixEdit{Span: at, NewText: "::"}).
		Emit()
	return args
}
