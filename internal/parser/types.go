package parser

import (
	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/token"
)

// parseType parses a type; `impl A + B` and `dyn A + B` take every bound.
func (p *Parser) parseType() ast.NodeID {
	return p.parseTypeImpl(true)
}

// parseTypeNoBounds is used where a `+` belongs to an outer construct:
// `&dyn A`, `fn() -> T` inside `dyn Fn() -> T + Send`.
func (p *Parser) parseTypeNoBounds() ast.NodeID {
	return p.parseTypeImpl(false)
}

func (p *Parser) parseTypeImpl(allowPlus bool) ast.NodeID {
	if !p.enter() {
		return p.bail()
	}
	defer p.leave()

	start := p.start()
	tok := p.peek()
	switch tok.Kind {
	case token.LParen:
		return p.parseTupleType()
	case token.Bang:
		p.advance()
		return p.b.New(ast.TypeNever, p.spanFrom(start))
	case token.Underscore:
		p.advance()
		return p.b.New(ast.TypeInfer, p.spanFrom(start))
	case token.Star:
		p.advance()
		var flags ast.Flags
		switch {
		case p.eat(token.KwConst):
			flags = ast.FlagConst
		case p.eat(token.KwMut):
			flags = ast.FlagMut
		default:
			p.unexpected(diag.SynExpectType, "`const` or `mut` after `*`")
		}
		elem := p.parseTypeNoBounds()
		id := p.b.New(ast.TypePtr, p.spanFrom(start), ast.C(ast.RoleElem, elem))
		p.b.AddFlags(id, flags)
		return id
	case token.Amp, token.AndAnd:
		return p.parseRefType()
	case token.LBracket:
		return p.parseArrayType()
	case token.KwFn, token.KwUnsafe, token.KwExtern:
		return p.parseFnPtrType(ast.NoNodeID)
	case token.KwFor:
		// for<'a> fn(&'a T) / for<'a> Trait<'a>
		p.advance()
		generics := p.parseGenericParams()
		if p.atOr(token.KwFn, token.KwUnsafe, token.KwExtern) {
			return p.parseFnPtrType(generics)
		}
		path := p.parsePath(pathModeType)
		return p.b.New(ast.TypePath, p.spanFrom(start), ast.C(ast.RoleGenerics, generics), ast.C(ast.RolePath, path))
	case token.KwImpl, token.KwDyn:
		p.advance()
		kind := ast.TypeImplTrait
		if tok.Kind == token.KwDyn {
			kind = ast.TypeDynTrait
		}
		var bounds []ast.Child
		if allowPlus {
			bounds = p.parseBounds()
		} else {
			bounds = []ast.Child{ast.C(ast.RoleBound, p.parseBound())}
		}
		return p.b.New(kind, p.spanFrom(start), bounds...)
	}

	if p.atPathStart() {
		path := p.parsePath(pathModeType)
		if p.at(token.Bang) {
			return p.parseMacroInvocation(start, path, false)
		}
		return p.b.New(ast.TypePath, p.spanFrom(start), ast.C(ast.RolePath, path))
	}

	p.unexpected(diag.SynExpectType, "type")
	return p.b.New(ast.Error, p.getDiagnosticSpan().ZeroideToStart())
}

// parseTupleType: `()`, `(T)`, `(T,)`, `(A, B)`.
func (p *Parser) parseTupleType() ast.NodeID {
	start := p.start()
	open := p.advance()
	var kids []ast.Child
	trailingComma := false
	for !p.at(token.RParen) && !p.at(token.EOF) {
		before := p.start()
		kids = append(kids, ast.C(ast.RoleElem, p.parseType()))
		trailingComma = p.eat(token.Comma)
		if !trailingComma || p.start() == before {
			break
		}
	}
	junk, _ := p.closeGroup(open)
	kids = append(kids, ast.C(ast.RoleError, junk))
	id := p.b.New(ast.TypeTuple, p.spanFrom(start), kids...)
	if len(kids) == 2 && !trailingComma && !junk.IsValid() {
		// (T) - просто скобки
		p.b.AddFlags(id, ast.FlagParen)
	}
	return id
}

// parseRefType: `&T`, `&'a mut T`, `&&T`.
func (p *Parser) parseRefType() ast.NodeID {
	start := p.start()
	if p.at(token.AndAnd) {
		// `&&T` - это `& &T`
		p.ts.Split(token.Amp)
		inner := p.parseRefType()
		return p.b.New(ast.TypeRef, p.spanFrom(start), ast.C(ast.RoleElem, inner))
	}
	p.advance()
	var kids []ast.Child
	if p.at(token.Lifetime) {
		kids = append(kids, ast.C(ast.RoleLifetime, p.parseLifetime()))
	}
	mut := p.eat(token.KwMut)
	kids = append(kids, ast.C(ast.RoleElem, p.parseTypeNoBounds()))
	id := p.b.New(ast.TypeRef, p.spanFrom(start), kids...)
	if mut {
		p.b.AddFlags(id, ast.FlagMut)
	}
	return id
}

// parseArrayType: `[T]` or `[T; N]`.
func (p *Parser) parseArrayType() ast.NodeID {
	start := p.start()
	open := p.advance()
	elem := p.parseType()
	kind := ast.TypeSlice
	var length ast.NodeID
	if p.eat(token.Semicolon) {
		kind = ast.TypeArray
		length = p.parseExpr()
	}
	junk, _ := p.closeGroup(open)
	return p.b.New(kind, p.spanFrom(start), ast.C(ast.RoleElem, elem), ast.C(ast.RoleLen, length), ast.C(ast.RoleError, junk))
}

// parseFnPtrType: `[unsafe] [extern "abi"] fn(A, b: B, ...) -> R`.
func (p *Parser) parseFnPtrType(generics ast.NodeID) ast.NodeID {
	start := p.start()
	if generics.IsValid() {
		start = p.b.Span(generics).Start
	}
	var flags ast.Flags
	if p.eat(token.KwUnsafe) {
		flags |= ast.FlagUnsafe
	}
	abi := ""
	if p.eat(token.KwExtern) {
		flags |= ast.FlagExtern
		if p.atOr(token.StringLit, token.RawStringLit) {
			abi = p.advance().Text
		}
	}
	kids := []ast.Child{ast.C(ast.RoleGenerics, generics)}
	if _, ok := p.expect(token.KwFn, diag.SynExpectType, ""); ok && p.at(token.LParen) {
		open := p.advance()
		for !p.at(token.RParen) && !p.at(token.EOF) {
			before := p.start()
			kids = append(kids, ast.C(ast.RoleParam, p.parseFnPtrParam()))
			if !p.eat(token.Comma) || p.start() == before {
				break
			}
		}
		junk, _ := p.closeGroup(open)
		kids = append(kids, ast.C(ast.RoleError, junk))
	} else if !p.at(token.LParen) {
		p.unexpected(diag.SynUnexpectedToken, "`(`")
	}
	if p.eat(token.Arrow) {
		kids = append(kids, ast.C(ast.RoleRet, p.parseTypeNoBounds()))
	}
	id := p.b.New(ast.TypeFn, p.spanFrom(start), kids...)
	p.b.AddFlags(id, flags)
	if abi != "" {
		p.b.SetName(id, abi)
	}
	return id
}

// parseFnPtrParam: `T`, `name: T`, `_: T` or `...`.
func (p *Parser) parseFnPtrParam() ast.NodeID {
	start := p.start()
	attrs, _ := p.parseOuterAttrs()
	if p.eat(token.DotDotDot) {
		return p.b.New(ast.Param, p.spanFrom(start), attrs...)
	}
	name := ""
	if p.atOr(token.Ident, token.Underscore) && p.peekN(1).Kind == token.Colon {
		name = p.advance().IdentName()
		p.advance()
	}
	ty := p.parseType()
	return p.b.NewNamed(ast.Param, p.spanFrom(start), name, append(attrs, ast.C(ast.RoleType, ty))...)
}

// parseBounds parses `A + 'a + ?Sized + for<'b> Fn(&'b T)`; a trailing `+`
// is allowed. Returns the bounds as RoleBound children.
func (p *Parser) parseBounds() []ast.Child {
	var out []ast.Child
	for {
		if !p.atBoundStart() {
			if len(out) == 0 {
				p.unexpected(diag.SynExpectType, "trait bound")
			}
			return out
		}
		out = append(out, ast.C(ast.RoleBound, p.parseBound()))
		if !p.eat(token.Plus) {
			return out
		}
	}
}

func (p *Parser) atBoundStart() bool {
	switch p.peek().Kind {
	case token.Lifetime, token.Question, token.LParen, token.KwFor, token.Tilde:
		return true
	default:
		return p.atPathStart()
	}
}

// parseBound parses a single bound: lifetime or (possibly `?`-relaxed) trait.
func (p *Parser) parseBound() ast.NodeID {
	if !p.enter() {
		return p.bail()
	}
	defer p.leave()

	start := p.start()
	if p.at(token.Lifetime) {
		return p.parseLifetime()
	}
	if p.at(token.LParen) {
		open := p.advance()
		inner := p.parseBound()
		junk, _ := p.closeGroup(open)
		id := p.b.New(ast.TypePath, p.spanFrom(start), ast.C(ast.RoleBound, inner), ast.C(ast.RoleError, junk))
		p.b.AddFlags(id, ast.FlagParen)
		return id
	}
	var flags ast.Flags
	if p.eat(token.Question) {
		flags |= ast.FlagMaybe
	}
	if p.eat(token.Tilde) {
		// ~const Trait
		p.expect(token.KwConst, diag.SynUnexpectedToken, "")
		flags |= ast.FlagConst
	}
	var generics ast.NodeID
	if p.eat(token.KwFor) {
		generics = p.parseGenericParams()
	}
	if !p.atPathStart() {
		p.unexpected(diag.SynExpectType, "trait bound")
		return p.b.New(ast.Error, p.spanFrom(start))
	}
	path := p.parsePath(pathModeType)
	id := p.b.New(ast.TypePath, p.spanFrom(start), ast.C(ast.RoleGenerics, generics), ast.C(ast.RolePath, path))
	p.b.AddFlags(id, flags)
	return id
}
