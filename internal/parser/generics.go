package parser

import (
	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/token"
)

// parseGenericParams parses `<'a: 'b, T: Clone + 'a = i32, const N: usize = 3>`.
// Returns NoNodeID when the current token is not `<`.
func (p *Parser) parseGenericParams() ast.NodeID {
	if !p.at(token.Lt) {
		return ast.NoNodeID
	}
	if !p.enter() {
		return p.bail()
	}
	defer p.leave()

	start := p.start()
	p.advance()
	var kids []ast.Child
	for !p.atGenericClose() && !p.at(token.EOF) {
		before := p.start()
		kids = append(kids, ast.C(ast.RoleParam, p.parseGenericParam()))
		if p.eat(token.Comma) {
			continue
		}
		if !p.atGenericClose() && p.start() != before {
			p.unexpected(diag.SynExpectGenericClose, "`,` or `>`")
		}
		break
	}
	if !p.closeAngle() {
		p.unexpected(diag.SynExpectGenericClose, "`>`")
		p.resyncUntil(token.Gt, token.LBrace, token.LParen, token.Semicolon, token.KwWhere)
		p.eat(token.Gt)
	}
	return p.b.New(ast.GenericParams, p.spanFrom(start), kids...)
}

func (p *Parser) parseGenericParam() ast.NodeID {
	start := p.start()
	attrs, _ := p.parseOuterAttrs()
	kids := attrs

	switch {
	case p.at(token.Lifetime):
		name := p.advance().Text
		if p.eat(token.Colon) {
			for p.at(token.Lifetime) {
				kids = append(kids, ast.C(ast.RoleBound, p.parseLifetime()))
				if !p.eat(token.Plus) {
					break
				}
			}
		}
		return p.b.NewNamed(ast.LifetimeParam, p.spanFrom(start), name, kids...)

	case p.at(token.KwConst):
		p.advance()
		name, _, _ := p.parseIdent()
		if _, ok := p.expect(token.Colon, diag.SynExpectType, ""); ok {
			kids = append(kids, ast.C(ast.RoleType, p.parseType()))
		}
		if p.eat(token.Assign) {
			kids = append(kids, ast.C(ast.RoleValue, p.parseGenericArg()))
		}
		return p.b.NewNamed(ast.ConstParam, p.spanFrom(start), name, kids...)

	default:
		name, _, ok := p.parseIdent()
		if !ok {
			return p.b.New(ast.Error, p.spanFrom(start), kids...)
		}
		if p.eat(token.Colon) && !p.atOr(token.Comma, token.Gt, token.Assign) {
			kids = append(kids, p.parseBounds()...)
		}
		if p.eat(token.Assign) {
			kids = append(kids, ast.C(ast.RoleValue, p.parseType()))
		}
		return p.b.NewNamed(ast.TypeParam, p.spanFrom(start), name, kids...)
	}
}

// parseWhereClause parses `where T: Clone + Debug, 'a: 'b, for<'c> F: Fn(&'c u8),`.
// Returns NoNodeID when the current token is not `where`.
func (p *Parser) parseWhereClause() ast.NodeID {
	if !p.at(token.KwWhere) {
		return ast.NoNodeID
	}
	start := p.start()
	p.advance()
	var kids []ast.Child
	for p.at(token.Lifetime) || p.at(token.KwFor) || p.atTypeStart() {
		before := p.start()
		kids = append(kids, ast.C(ast.RoleItem, p.parseWherePredicate()))
		if !p.eat(token.Comma) || p.start() == before {
			break
		}
	}
	return p.b.New(ast.WhereClause, p.spanFrom(start), kids...)
}

func (p *Parser) parseWherePredicate() ast.NodeID {
	start := p.start()
	var kids []ast.Child
	if p.at(token.Lifetime) {
		kids = append(kids, ast.C(ast.RoleLifetime, p.parseLifetime()))
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, ""); ok {
			for p.at(token.Lifetime) {
				kids = append(kids, ast.C(ast.RoleBound, p.parseLifetime()))
				if !p.eat(token.Plus) {
					break
				}
			}
		}
		return p.b.New(ast.WherePredicate, p.spanFrom(start), kids...)
	}
	if p.at(token.KwFor) {
		p.advance()
		kids = append(kids, ast.C(ast.RoleGenerics, p.parseGenericParams()))
	}
	kids = append(kids, ast.C(ast.RoleType, p.parseType()))
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, ""); ok && !p.atOr(token.Comma, token.LBrace, token.Semicolon) {
		kids = append(kids, p.parseBounds()...)
	}
	return p.b.New(ast.WherePredicate, p.spanFrom(start), kids...)
}

// atTypeStart reports whether a type can begin at the current token.
func (p *Parser) atTypeStart() bool {
	switch p.peek().Kind {
	case token.LParen, token.Bang, token.Underscore, token.Star, token.Amp, token.AndAnd,
		token.LBracket, token.KwFn, token.KwUnsafe, token.KwExtern, token.KwFor,
		token.KwImpl, token.KwDyn:
		return true
	default:
		return p.atPathStart()
	}
}
