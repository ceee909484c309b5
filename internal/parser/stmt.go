package parser

import (
	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/token"
)

// parseBlock parses `{ stmts; tail }`. label is an already parsed `'a`
// lifetime or NoNodeID.
func (p *Parser) parseBlock(label ast.NodeID) ast.NodeID {
	return p.parseBlockFrom(p.start(), label, 0)
}

// parseBlockFrom - блок, чьи префиксы (`unsafe`, `async move`, `'a:`) уже
// съедены начиная со start.
func (p *Parser) parseBlockFrom(start uint32, label ast.NodeID, flags ast.Flags) ast.NodeID {
	if !p.enter() {
		return p.bail()
	}
	defer p.leave()

	kids := []ast.Child{ast.C(ast.RoleLifetime, label)}
	open, ok := p.expect(token.LBrace, diag.SynExpectBlock, "")
	if !ok {
		id := p.b.New(ast.Block, p.spanFrom(start), kids...)
		p.b.AddFlags(id, flags|ast.FlagRecovered)
		p.setLabel(id, label)
		return id
	}
	attrs, docs := p.parseInnerAttrs()
	kids = append(kids, attrs...)
	kids = append(kids, p.parseStmts()...)
	junk, closed := p.closeGroup(open)
	kids = append(kids, ast.C(ast.RoleError, junk))
	if !closed {
		flags |= ast.FlagRecovered
	}

	id := p.b.New(ast.Block, p.spanFrom(start), kids...)
	p.b.AddFlags(id, flags)
	p.setLabel(id, label)
	p.b.SetDocs(id, docs)
	return id
}

// parseStmts parses statements up to `}` or EOF; the closer is left.
func (p *Parser) parseStmts() []ast.Child {
	var kids []ast.Child
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.cancelled() {
			break
		}
		start := p.start()
		if p.at(token.RParen) || p.at(token.RBracket) {
			stray, _ := p.skipStrayCloser()
			kids = append(kids, ast.C(ast.RoleError, stray))
			continue
		}
		id, role := p.parseStmt()
		if p.start() == start && !p.at(token.RBrace) && !p.at(token.EOF) {
			p.advance()
			id = p.b.New(ast.Error, p.spanFrom(start), ast.C(ast.RoleError, id))
			p.b.AddFlags(id, ast.FlagRecovered)
		}
		if p.b.Kind(id) == ast.Error {
			role = ast.RoleError
		}
		kids = append(kids, ast.C(role, id))
	}
	return kids
}

// parseStmt returns one statement and its role in the block: RoleStmt,
// RoleItem, or RoleTail for an expression without `;` right before `}`.
func (p *Parser) parseStmt() (ast.NodeID, ast.Role) {
	start := p.start()
	if p.eat(token.Semicolon) {
		return p.b.New(ast.Empty, p.spanFrom(start)), ast.RoleStmt
	}

	attrs, docs := p.parseOuterAttrs()
	if p.atStmtItem() || (len(attrs) > 0 && p.atOr(token.RBrace, token.EOF)) {
		id := p.parseItemAfterAttrs(ctxBlock, start, attrs)
		p.b.SetDocs(id, docs)
		p.tracePoint("item", p.b.Kind(id).String())
		return id, ast.RoleItem
	}
	if p.at(token.KwLet) {
		return p.parseLet(start, attrs), ast.RoleStmt
	}
	if p.macroCallDelim() == token.LBrace {
		// `m! { ... }` в позиции оператора не требует `;`
		path := p.parsePath(pathModeMod)
		return p.parseMacroInvocation(start, path, true, attrs...), ast.RoleStmt
	}

	expr, blockLike := p.parseStmtExpr()
	kids := append(attrs, ast.C(ast.RoleValue, expr))
	switch {
	case p.eat(token.Semicolon):
		id := p.b.New(ast.ExprStmt, p.spanFrom(start), kids...)
		p.b.AddFlags(id, ast.FlagSemi)
		return id, ast.RoleStmt
	case p.atOr(token.RBrace, token.EOF):
		if len(attrs) == 0 {
			return expr, ast.RoleTail
		}
		return p.b.New(ast.ExprStmt, p.spanFrom(start), kids...), ast.RoleTail
	case blockLike:
		return p.b.New(ast.ExprStmt, p.spanFrom(start), kids...), ast.RoleStmt
	}

	p.expectSemi("expression")
	junkStart := p.start()
	if p.resyncUntil(stmtStops...) {
		kids = append(kids, ast.C(ast.RoleError, p.errorNode(junkStart)))
	}
	p.eat(token.Semicolon)
	id := p.b.New(ast.ExprStmt, p.spanFrom(start), kids...)
	p.b.AddFlags(id, ast.FlagRecovered)
	return id, ast.RoleStmt
}

// parseLet parses `let pat [: Type] [= init [else { ... }]];`.
func (p *Parser) parseLet(start uint32, attrs []ast.Child) ast.NodeID {
	p.advance() // let
	kids := append(attrs, ast.C(ast.RolePat, p.parsePatternTop()))
	if p.eat(token.Colon) {
		kids = append(kids, ast.C(ast.RoleType, p.parseType()))
	}
	if p.eat(token.Assign) {
		kids = append(kids, ast.C(ast.RoleValue, p.parseExpr()))
		if p.eat(token.KwElse) {
			kids = append(kids, ast.C(ast.RoleElse, p.parseBlock(ast.NoNodeID)))
		}
	}
	var flags ast.Flags
	if p.eat(token.Semicolon) {
		flags |= ast.FlagSemi
	} else {
		p.expectSemi("let statement")
		junkStart := p.start()
		if p.resyncUntil(stmtStops...) {
			kids = append(kids, ast.C(ast.RoleError, p.errorNode(junkStart)))
		}
		if p.eat(token.Semicolon) {
			flags |= ast.FlagSemi
		}
		flags |= ast.FlagRecovered
	}
	id := p.b.New(ast.Let, p.spanFrom(start), kids...)
	p.b.AddFlags(id, flags)
	return id
}

// parseStmtExpr parses an expression in statement or match-arm position.
// A block-like expression (block, `if`, `match`, loops) ends at its `}`
// unless `.` or `?` follows; the second result reports that case.
func (p *Parser) parseStmtExpr() (ast.NodeID, bool) {
	if !p.atBlockLike() {
		return p.parseExpr(), false
	}
	if !p.enter() {
		return p.bail(), false
	}
	defer p.leave()

	start := p.start()
	e := p.parsePrimaryExpr(restrictNone)
	if !p.atOr(token.Dot, token.Question) {
		return e, true
	}
	e = p.parsePostfixRest(start, e)
	return p.parseBinaryRest(start, e, precAssign, restrictNone), false
}

func (p *Parser) atBlockLike() bool {
	switch p.peek().Kind {
	case token.LBrace, token.KwIf, token.KwMatch, token.KwLoop, token.KwWhile, token.KwFor:
		return true
	case token.KwUnsafe, token.KwConst:
		return p.peekN(1).Kind == token.LBrace
	case token.KwAsync:
		next := p.peekN(1).Kind
		return next == token.LBrace || next == token.KwMove && p.peekN(2).Kind == token.LBrace
	case token.Lifetime:
		return p.peekN(1).Kind == token.Colon
	default:
		return false
	}
}

// atStmtItem reports whether an item starts at the current token inside a
// block. `unsafe {`, `async {` and `const {` are expressions.
func (p *Parser) atStmtItem() bool {
	if p.at(token.KwPub) {
		return true
	}
	kw, k := p.itemKeyword()
	switch kw.Kind {
	case token.KwFn, token.KwStruct, token.KwEnum, token.KwTrait, token.KwImpl, token.KwMod,
		token.KwStatic, token.KwType, token.KwUse, token.KwExtern:
		return true
	case token.KwConst:
		return p.peekN(k+1).Kind != token.LBrace
	}
	return p.atIdent("macro_rules") && p.peekN(1).Kind == token.Bang && p.peekN(2).Kind == token.Ident
}
