package parser

import (
	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/token"
)

type pathMode uint8

const (
	// pathModeMod: `a::b::c` без generic-аргументов (use, vis, макросы)
	pathModeMod pathMode = iota
	// pathModeExpr: аргументы только через turbofish `::<>`
	pathModeExpr
	// pathModeType: `Vec<T>`, `Fn(A) -> B`
	pathModeType
)

func isPathSegmentStart(k token.Kind) bool {
	switch k {
	case token.Ident, token.KwSelf, token.KwSelfType, token.KwSuper, token.KwCrate:
		return true
	default:
		return false
	}
}

// atPathStart reports whether a path can begin at the current token.
func (p *Parser) atPathStart() bool {
	switch p.peek().Kind {
	case token.ColonColon:
		return isPathSegmentStart(p.peekN(1).Kind)
	case token.Lt, token.Shl:
		return true
	default:
		return isPathSegmentStart(p.peek().Kind)
	}
}

// parsePath parses a (possibly qualified or global) path:
//
//	a::b::c
//	::std::io
//	Vec::<u8>::new        (expr)
//	HashMap<K, V>         (type)
//	<T as Trait>::Output
func (p *Parser) parsePath(mode pathMode) ast.NodeID {
	start := p.start()
	var kids []ast.Child
	var flags ast.Flags

	switch {
	case p.at(token.Lt) || p.at(token.Shl):
		kids = append(kids, p.parseQualifiedSelf()...)
		if _, ok := p.expect(token.ColonColon, diag.SynUnexpectedToken, ""); !ok {
			return p.finishPath(start, flags, kids)
		}
	case p.at(token.ColonColon):
		p.advance()
		flags |= ast.FlagGlobalPath
	}

	for {
		seg := p.parsePathSegment(mode)
		kids = append(kids, ast.C(ast.RoleSegment, seg))
		if !p.at(token.ColonColon) {
			break
		}
		next := p.peekN(1).Kind
		if !isPathSegmentStart(next) {
			// `a::{...}`, `a::*` в use и `::<` после сегмента разбираются выше по стеку
			break
		}
		p.advance()
	}
	return p.finishPath(start, flags, kids)
}

func (p *Parser) finishPath(start uint32, flags ast.Flags, kids []ast.Child) ast.NodeID {
	id := p.b.New(ast.Path, p.spanFrom(start), kids...)
	p.b.AddFlags(id, flags)
	return id
}

// parseQualifiedSelf parses `<Type as Trait>` or `<Type>`.
func (p *Parser) parseQualifiedSelf() []ast.Child {
	if p.at(token.Shl) {
		// `<<A as B>::C as D>::E`: первый `<` отщепляем
		p.ts.Split(token.Lt)
	} else {
		p.advance()
	}
	kids := []ast.Child{ast.C(ast.RoleQSelf, p.parseType())}
	if p.eat(token.KwAs) {
		kids = append(kids, ast.C(ast.RoleTrait, p.parsePath(pathModeType)))
	}
	if !p.closeAngle() {
		p.unexpected(diag.SynExpectGenericClose, "`>`")
	}
	return kids
}

// parsePathSegment parses one segment with its generic arguments.
func (p *Parser) parsePathSegment(mode pathMode) ast.NodeID {
	start := p.start()
	tok := p.peek()
	name := ""
	if isPathSegmentStart(tok.Kind) {
		p.advance()
		name = tok.IdentName()
	} else {
		p.unexpected(diag.SynExpectIdentifier, "identifier")
	}

	var args ast.NodeID
	switch mode {
	case pathModeExpr:
		switch {
		case p.at(token.ColonColon) && p.atTurbofish(1):
			p.advance()
			args = p.parseGenericArgs()
			p.b.AddFlags(args, ast.FlagTurbofish)
		case p.at(token.Lt):
			// `Vec<u8>::new()` без turbofish
			args = p.speculateGenericArgs()
		}
	case pathModeType:
		switch {
		case p.at(token.ColonColon) && p.atTurbofish(1):
			p.advance()
			args = p.parseGenericArgs()
			p.b.AddFlags(args, ast.FlagTurbofish)
		case p.at(token.Lt) || p.at(token.Shl):
			args = p.parseGenericArgs()
		case p.at(token.LParen) && tok.Kind == token.Ident:
			args = p.parseFnSugarArgs()
		}
	}
	return p.b.NewNamed(ast.PathSegment, p.spanFrom(start), name, ast.C(ast.RoleGenerics, args))
}

// atTurbofish: после `::` на смещении k идёт `<`.
func (p *Parser) atTurbofish(k int) bool {
	next := p.peekN(k).Kind
	return next == token.Lt || next == token.Shl
}

// atGenericClose reports whether the current token starts with `>`.
func (p *Parser) atGenericClose() bool {
	return p.atOr(token.Gt, token.Shr, token.GtEq, token.ShrAssign)
}

// closeAngle consumes one `>`, splitting `>>`, `>=` and `>>=` when needed.
func (p *Parser) closeAngle() bool {
	if p.eat(token.Gt) {
		return true
	}
	_, ok := p.ts.Split(token.Gt)
	return ok
}

// parseGenericArgs parses `<'a, T, N, { N + 1 }, Item = U, Item: Bound>`.
// The current token is `<` (or `<<`, whose first half is split off).
func (p *Parser) parseGenericArgs() ast.NodeID {
	start := p.start()
	if !p.enter() {
		return p.bail()
	}
	defer p.leave()

	if p.at(token.Shl) {
		p.ts.Split(token.Lt)
	} else {
		p.advance()
	}
	var kids []ast.Child
	for !p.atGenericClose() && !p.at(token.EOF) {
		before := p.start()
		arg := p.parseGenericArg()
		kids = append(kids, ast.C(ast.RoleGenericArg, arg))
		if p.eat(token.Comma) {
			continue
		}
		if p.atGenericClose() || p.start() == before {
			break
		}
		p.unexpected(diag.SynExpectGenericClose, "`,` or `>`")
		break
	}
	if !p.closeAngle() {
		p.unexpected(diag.SynExpectGenericClose, "`>`")
	}
	return p.b.New(ast.GenericArgs, p.spanFrom(start), kids...)
}

func (p *Parser) parseGenericArg() ast.NodeID {
	tok := p.peek()
	switch {
	case tok.Kind == token.Lifetime:
		return p.parseLifetime()
	case tok.Kind == token.Ident && (p.peekN(1).Kind == token.Assign || p.peekN(1).Kind == token.Colon):
		start := p.start()
		p.advance()
		if p.eat(token.Assign) {
			ty := p.parseType()
			return p.b.NewNamed(ast.AssocBinding, p.spanFrom(start), tok.IdentName(), ast.C(ast.RoleType, ty))
		}
		p.advance() // :
		bounds := p.parseBounds()
		return p.b.NewNamed(ast.AssocBinding, p.spanFrom(start), tok.IdentName(), bounds...)
	case tok.IsLiteral(), tok.Kind == token.KwTrue, tok.Kind == token.KwFalse:
		return p.parseLiteral()
	case tok.Kind == token.Minus && p.peekN(1).IsLiteral():
		return p.parseUnaryExpr(restrictNone)
	case tok.Kind == token.LBrace:
		return p.parseBlock(ast.NoNodeID)
	default:
		return p.parseType()
	}
}

// parseFnSugarArgs parses `(A, B) -> C` after `Fn`, `FnMut`, `FnOnce`.
func (p *Parser) parseFnSugarArgs() ast.NodeID {
	start := p.start()
	open := p.advance()
	var kids []ast.Child
	for !p.at(token.RParen) && !p.at(token.EOF) {
		before := p.start()
		kids = append(kids, ast.C(ast.RoleParam, p.parseType()))
		if !p.eat(token.Comma) || p.start() == before {
			break
		}
	}
	junk, _ := p.closeGroup(open)
	kids = append(kids, ast.C(ast.RoleError, junk))
	if p.eat(token.Arrow) {
		kids = append(kids, ast.C(ast.RoleRet, p.parseTypeNoBounds()))
	}
	id := p.b.New(ast.GenericArgs, p.spanFrom(start), kids...)
	p.b.AddFlags(id, ast.FlagParen)
	return id
}

func (p *Parser) parseLifetime() ast.NodeID {
	tok := p.advance()
	return p.b.NewNamed(ast.Lifetime, tok.Span, tok.Text)
}
