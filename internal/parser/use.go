package parser

import (
	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/token"
)

// parseUse parses a use declaration:
//
//	use std::fs::File;
//	use std::io::{self, Read as _};
//	pub use crate::a::*;
func (p *Parser) parseUse(start uint32, head []ast.Child) ast.NodeID {
	q := p.parseQualifiers()
	p.rejectQualifiers(q, 0, "a use declaration")
	p.advance() // use
	kids := append(head, ast.C(ast.RoleItem, p.parseUseTree()))
	var flags ast.Flags
	if !p.expectSemi("use declaration") {
		kids = append(kids, ast.C(ast.RoleError, p.recover(p.start(), itemStops...)))
		flags |= ast.FlagRecovered
	}
	return p.finishItem(ast.Use, start, "", flags, kids)
}

// parseUseTree: `path`, `path as name`, `path::*`, `path::{tree, ...}`,
// `::{...}`, `*`. An alias is stored as the node name.
func (p *Parser) parseUseTree() ast.NodeID {
	if !p.enter() {
		return p.bail()
	}
	defer p.leave()

	start := p.start()
	var kids []ast.Child
	var flags ast.Flags
	name := ""

	if p.at(token.ColonColon) && (p.peekN(1).Kind == token.LBrace || p.peekN(1).Kind == token.Star) {
		p.advance()
		flags |= ast.FlagGlobalPath
	}
	hasPath := false
	if p.atPathStart() && !p.at(token.Lt) {
		kids = append(kids, ast.C(ast.RolePath, p.parsePath(pathModeMod)))
		hasPath = true
		if p.at(token.ColonColon) {
			p.advance()
			if !p.atOr(token.Star, token.LBrace) {
				p.unexpected(diag.SynExpectIdentifier, "identifier, `*` or `{`")
			}
		}
	}

	switch {
	case p.at(token.Star):
		p.advance()
		flags |= ast.FlagGlob
	case p.at(token.LBrace):
		open := p.advance()
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			before := p.start()
			kids = append(kids, ast.C(ast.RoleItem, p.parseUseTree()))
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
		flags |= ast.FlagBrace
	case hasPath:
		if p.eat(token.KwAs) {
			if p.eat(token.Underscore) {
				name = "_"
			} else {
				name, _, _ = p.parseIdent()
			}
		}
	default:
		p.unexpected(diag.SynExpectIdentifier, "path, `*` or `{`")
	}

	id := p.finishItem(ast.UseTree, start, name, flags, kids)
	return id
}
