package parser

import (
	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/source"
	"oxide/internal/token"
)

// parsePatternTop parses a pattern with alternatives: `A | B | C`.
// A leading `|` is allowed.
func (p *Parser) parsePatternTop() ast.NodeID {
	if !p.enter() {
		return p.bail()
	}
	defer p.leave()

	start := p.start()
	p.eat(token.Pipe)
	first := p.parsePatternSingle()
	if !p.at(token.Pipe) {
		return first
	}
	kids := []ast.Child{ast.C(ast.RolePat, first)}
	for p.eat(token.Pipe) {
		kids = append(kids, ast.C(ast.RolePat, p.parsePatternSingle()))
	}
	return p.b.New(ast.PatOr, p.spanFrom(start), kids...)
}

// parsePatternNoAlt - паттерн без `|` на верхнем уровне (параметры замыканий).
func (p *Parser) parsePatternNoAlt() ast.NodeID {
	return p.parsePatternSingle()
}

func (p *Parser) parsePatternSingle() ast.NodeID {
	if !p.enter() {
		return p.bail()
	}
	defer p.leave()

	start := p.start()
	tok := p.peek()
	switch {
	case tok.Kind == token.Underscore:
		p.advance()
		return p.b.New(ast.PatWild, p.spanFrom(start))

	case tok.Kind == token.DotDot:
		p.advance()
		if p.atRangePatEnd() {
			id := p.b.New(ast.PatRange, p.spanFrom(start), ast.C(ast.RoleRHS, p.parseRangePatEnd()))
			p.b.SetOp(id, ast.OpRange)
			return id
		}
		return p.b.New(ast.PatRest, p.spanFrom(start))

	case tok.Kind == token.DotDotEq:
		p.advance()
		var end ast.NodeID
		if p.atRangePatEnd() {
			end = p.parseRangePatEnd()
		} else {
			p.unexpected(diag.SynExpectPattern, "range end after `..=`")
		}
		id := p.b.New(ast.PatRange, p.spanFrom(start), ast.C(ast.RoleRHS, end))
		p.b.SetOp(id, ast.OpRangeInclusive)
		return id

	case tok.Kind == token.Amp || tok.Kind == token.AndAnd:
		return p.parseRefPattern()

	case tok.Kind == token.LParen:
		return p.parseTuplePattern()

	case tok.Kind == token.LBracket:
		open := p.advance()
		kids := p.parsePatList(open)
		return p.b.New(ast.PatSlice, p.spanFrom(start), kids...)

	case tok.IsLiteral() || tok.Kind == token.Minus && p.peekN(1).Is(token.IntLit, token.FloatLit):
		lit := p.parseLiteralPattern()
		return p.parsePatRangeRest(start, lit)

	case tok.Kind == token.KwRef || tok.Kind == token.KwMut:
		return p.parseIdentPattern()

	case tok.Kind == token.Ident || tok.Kind == token.KwSelf:
		switch p.peekN(1).Kind {
		case token.ColonColon, token.LParen, token.LBrace, token.Bang,
			token.DotDot, token.DotDotEq, token.DotDotDot:
		default:
			return p.parseIdentPattern()
		}
	}

	if p.atPathStart() {
		return p.parsePathPattern()
	}
	p.unexpected(diag.SynExpectPattern, "pattern")
	sp := p.getDiagnosticSpan()
	return p.b.New(ast.Error, source.Span{File: sp.File, Start: sp.Start, End: sp.Start})
}

// parseIdentPattern parses a binding: `x`, `ref mut x`, `x @ pat`.
func (p *Parser) parseIdentPattern() ast.NodeID {
	start := p.start()
	var flags ast.Flags
	if p.eat(token.KwRef) {
		flags |= ast.FlagRef
	}
	if p.eat(token.KwMut) {
		flags |= ast.FlagMut
	}
	name := ""
	if tok := p.peek(); tok.Kind == token.KwSelf {
		p.advance()
		name = tok.Text
	} else {
		name, _, _ = p.parseIdent()
	}
	var kids []ast.Child
	if p.eat(token.At) {
		kids = append(kids, ast.C(ast.RolePat, p.parsePatternSingle()))
	}
	id := p.b.NewNamed(ast.PatIdent, p.spanFrom(start), name, kids...)
	p.b.AddFlags(id, flags)
	return id
}

// parseRefPattern: `&pat`, `&mut pat`; `&&pat` is two references.
func (p *Parser) parseRefPattern() ast.NodeID {
	start := p.start()
	if p.at(token.AndAnd) {
		p.ts.Split(token.Amp)
		inner := p.parsePatternSingle()
		return p.b.New(ast.PatRef, p.spanFrom(start), ast.C(ast.RolePat, inner))
	}
	p.advance()
	var flags ast.Flags
	if p.eat(token.KwMut) {
		flags |= ast.FlagMut
	}
	id := p.b.New(ast.PatRef, p.spanFrom(start), ast.C(ast.RolePat, p.parsePatternSingle()))
	p.b.AddFlags(id, flags)
	return id
}

// parseTuplePattern: `()`, `(p)`, `(p,)`, `(a, .., z)`. A parenthesized
// single pattern is a PatTuple flagged Paren.
func (p *Parser) parseTuplePattern() ast.NodeID {
	start := p.start()
	open := p.advance()
	trailing := false
	var kids []ast.Child
	for !p.at(token.RParen) && !p.at(token.EOF) {
		before := p.start()
		kids = append(kids, ast.C(ast.RolePat, p.parsePatternTop()))
		if p.eat(token.Comma) {
			trailing = true
			continue
		}
		trailing = false
		if !p.at(token.RParen) && p.start() != before {
			p.unexpected(diag.SynUnexpectedToken, "`,` or `)`")
		}
		break
	}
	paren := len(kids) == 1 && !trailing && p.b.Kind(kids[0].ID) != ast.PatRest
	junk, _ := p.closeGroup(open)
	kids = append(kids, ast.C(ast.RoleError, junk))
	id := p.b.New(ast.PatTuple, p.spanFrom(start), kids...)
	if paren {
		p.b.AddFlags(id, ast.FlagParen)
	}
	return id
}

// parsePatList parses comma separated patterns up to the closer of open.
func (p *Parser) parsePatList(open token.Token) []ast.Child {
	closer := open.Kind.Closer()
	var kids []ast.Child
	for !p.at(closer) && !p.at(token.EOF) {
		before := p.start()
		kids = append(kids, ast.C(ast.RolePat, p.parsePatternTop()))
		if p.eat(token.Comma) {
			continue
		}
		if !p.at(closer) && p.start() != before {
			p.unexpected(diag.SynUnexpectedToken, "`,` or "+closer.Describe())
		}
		break
	}
	junk, _ := p.closeGroup(open)
	return append(kids, ast.C(ast.RoleError, junk))
}

func (p *Parser) parseLiteralPattern() ast.NodeID {
	start := p.start()
	if p.eat(token.Minus) {
		tok := p.advance()
		return p.b.NewNamed(ast.PatLiteral, p.spanFrom(start), "-"+tok.Text)
	}
	tok := p.advance()
	return p.b.NewNamed(ast.PatLiteral, tok.Span, tok.Text)
}

// parsePathPattern parses a pattern headed by a path: unit/const path,
// tuple struct `P(a, b)`, struct `P { x, y: q, .. }`, macro `m!(...)` or
// range `A..=B`.
func (p *Parser) parsePathPattern() ast.NodeID {
	start := p.start()
	path := p.parsePath(pathModeExpr)
	switch {
	case p.at(token.Bang) && p.peekN(1).Kind.IsOpen():
		return p.parseMacroInvocation(start, path, false)
	case p.at(token.LParen):
		open := p.advance()
		kids := append([]ast.Child{ast.C(ast.RolePath, path)}, p.parsePatList(open)...)
		return p.b.New(ast.PatTupleStruct, p.spanFrom(start), kids...)
	case p.at(token.LBrace):
		return p.parseStructPattern(start, path)
	}
	id := p.b.New(ast.PatPath, p.spanFrom(start), ast.C(ast.RolePath, path))
	return p.parsePatRangeRest(start, id)
}

func (p *Parser) parseStructPattern(start uint32, path ast.NodeID) ast.NodeID {
	open := p.advance()
	kids := []ast.Child{ast.C(ast.RolePath, path)}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.DotDot) {
			restStart := p.start()
			p.advance()
			kids = append(kids, ast.C(ast.RoleField, p.b.New(ast.PatRest, p.spanFrom(restStart))))
			break
		}
		before := p.start()
		kids = append(kids, ast.C(ast.RoleField, p.parsePatField()))
		if p.eat(token.Comma) {
			continue
		}
		if !p.at(token.RBrace) && p.start() != before {
			p.unexpected(diag.SynUnexpectedToken, "`,` or `}`")
		}
		break
	}
	junk, _ := p.closeGroup(open)
	kids = append(kids, ast.C(ast.RoleError, junk))
	return p.b.New(ast.PatStruct, p.spanFrom(start), kids...)
}

// parsePatField: `name: pat`, `0: pat`, or shorthand `[ref] [mut] name`.
func (p *Parser) parsePatField() ast.NodeID {
	start := p.start()
	attrs, _ := p.parseOuterAttrs()
	tok := p.peek()
	switch {
	case (tok.Kind == token.Ident || tok.Kind == token.IntLit) && p.peekN(1).Kind == token.Colon:
		p.advance()
		p.advance()
		pat := p.parsePatternTop()
		return p.b.NewNamed(ast.PatField, p.spanFrom(start), tok.IdentName(), append(attrs, ast.C(ast.RolePat, pat))...)
	case tok.Is(token.Ident, token.KwRef, token.KwMut):
		binding := p.parseIdentPattern()
		id := p.b.New(ast.PatField, p.spanFrom(start), append(attrs, ast.C(ast.RolePat, binding))...)
		p.b.Get(id).Name = p.b.Get(binding).Name
		p.b.AddFlags(id, ast.FlagShorthand)
		return id
	}
	p.unexpected(diag.SynExpectIdentifier, "field pattern")
	return p.b.New(ast.Error, p.spanFrom(start), attrs...)
}

// parsePatRangeRest turns lo into a range pattern when `..`, `..=` or the
// legacy `...` follows.
func (p *Parser) parsePatRangeRest(start uint32, lo ast.NodeID) ast.NodeID {
	tok := p.peek()
	if !tok.Is(token.DotDot, token.DotDotEq, token.DotDotDot) {
		return lo
	}
	p.advance()
	op := ast.OpRangeInclusive
	if tok.Kind == token.DotDot {
		op = ast.OpRange
	}
	var hi ast.NodeID
	switch {
	case p.atRangePatEnd():
		hi = p.parseRangePatEnd()
	case op == ast.OpRangeInclusive:
		p.unexpected(diag.SynExpectPattern, "range end")
	}
	id := p.b.New(ast.PatRange, p.spanFrom(start), ast.C(ast.RoleLHS, lo), ast.C(ast.RoleRHS, hi))
	p.b.SetOp(id, op)
	return id
}

func (p *Parser) atRangePatEnd() bool {
	tok := p.peek()
	if tok.IsLiteral() {
		return true
	}
	if tok.Kind == token.Minus {
		return p.peekN(1).Is(token.IntLit, token.FloatLit)
	}
	return p.atPathStart()
}

func (p *Parser) parseRangePatEnd() ast.NodeID {
	if p.atPathStart() {
		start := p.start()
		path := p.parsePath(pathModeExpr)
		return p.b.New(ast.PatPath, p.spanFrom(start), ast.C(ast.RolePath, path))
	}
	return p.parseLiteralPattern()
}
