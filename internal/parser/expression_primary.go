package parser

import (
	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/source"
	"oxide/internal/token"
)

// parsePrimaryExpr - атомы выражений и конструкции, начинающиеся с
// ключевого слова. На ошибке возвращает пустой Error в текущей позиции,
// ничего не съедая.
func (p *Parser) parsePrimaryExpr(r restrictions) ast.NodeID {
	start := p.start()
	tok := p.peek()
	if tok.IsLiteral() {
		return p.parseLiteral()
	}

	switch tok.Kind {
	case token.LParen:
		return p.parseParenExpr()
	case token.LBracket:
		return p.parseArrayExpr()
	case token.LBrace:
		return p.parseBlock(ast.NoNodeID)
	case token.KwIf:
		return p.parseIfExpr()
	case token.KwMatch:
		return p.parseMatchExpr()
	case token.KwWhile, token.KwLoop, token.KwFor:
		return p.parseLoopExpr(start, ast.NoNodeID)
	case token.KwLet:
		return p.parseLetExpr(r)
	case token.KwReturn:
		p.advance()
		var kids []ast.Child
		if p.atExprStart(r) {
			kids = append(kids, ast.C(ast.RoleValue, p.parseExprWith(r)))
		}
		return p.b.New(ast.ExprReturn, p.spanFrom(start), kids...)
	case token.KwBreak:
		p.advance()
		var kids []ast.Child
		if p.at(token.Lifetime) {
			kids = append(kids, ast.C(ast.RoleLifetime, p.parseLifetime()))
		}
		if p.atExprStart(r) {
			kids = append(kids, ast.C(ast.RoleValue, p.parseExprWith(r)))
		}
		return p.b.New(ast.ExprBreak, p.spanFrom(start), kids...)
	case token.KwContinue:
		p.advance()
		var label ast.NodeID
		if p.at(token.Lifetime) {
			label = p.parseLifetime()
		}
		return p.b.New(ast.ExprContinue, p.spanFrom(start), ast.C(ast.RoleLifetime, label))
	case token.Lifetime:
		if p.peekN(1).Kind == token.Colon {
			return p.parseLabeled(start)
		}
	case token.KwUnsafe:
		if p.peekN(1).Kind == token.LBrace {
			p.advance()
			return p.parseBlockFrom(start, ast.NoNodeID, ast.FlagUnsafe)
		}
		p.advance()
		p.unexpected(diag.SynExpectBlock, "`{` after `unsafe`")
		return p.errorNode(start)
	case token.KwConst:
		if p.peekN(1).Kind == token.LBrace {
			p.advance()
			return p.parseBlockFrom(start, ast.NoNodeID, ast.FlagConst)
		}
	case token.KwAsync:
		next := p.peekN(1).Kind
		if next == token.LBrace {
			p.advance()
			return p.parseBlockFrom(start, ast.NoNodeID, ast.FlagAsync)
		}
		if next == token.KwMove && p.peekN(2).Kind == token.LBrace {
			p.advance()
			p.advance()
			return p.parseBlockFrom(start, ast.NoNodeID, ast.FlagAsync|ast.FlagMove)
		}
		return p.parseClosure(r)
	case token.Pipe, token.OrOr, token.KwMove:
		return p.parseClosure(r)
	}

	if p.atPathStart() {
		return p.parsePathExpr(r)
	}
	p.unexpected(diag.SynExpectExpression, "expression")
	sp := p.getDiagnosticSpan()
	return p.b.New(ast.Error, source.Span{File: sp.File, Start: sp.Start, End: sp.Start})
}

// parseLiteral - число, строка, символ, байт или true/false; текст
// литерала хранится как имя узла.
func (p *Parser) parseLiteral() ast.NodeID {
	tok := p.advance()
	return p.b.NewNamed(ast.ExprLiteral, tok.Span, tok.Text)
}

// parsePathExpr parses a path and what it heads: a macro call, a struct
// literal or a plain path expression.
func (p *Parser) parsePathExpr(r restrictions) ast.NodeID {
	start := p.start()
	path := p.parsePath(pathModeExpr)
	switch {
	case p.at(token.Bang) && p.peekN(1).Kind.IsOpen():
		return p.parseMacroInvocation(start, path, false)
	case p.at(token.LBrace) && r&restrictNoStruct == 0:
		return p.parseStructLit(start, path)
	}
	return p.b.New(ast.ExprPath, p.spanFrom(start), ast.C(ast.RolePath, path))
}

// parseStructLit parses `Path { a, b: 1, ..base }`.
func (p *Parser) parseStructLit(start uint32, path ast.NodeID) ast.NodeID {
	open := p.advance()
	kids := []ast.Child{ast.C(ast.RolePath, path)}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.eat(token.DotDot) {
			if !p.at(token.RBrace) {
				kids = append(kids, ast.C(ast.RoleBase, p.parseExpr()))
			}
			break
		}
		before := p.start()
		kids = append(kids, ast.C(ast.RoleField, p.parseFieldInit()))
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
	return p.b.New(ast.ExprStruct, p.spanFrom(start), kids...)
}

// parseFieldInit: `name: expr`, `0: expr` or shorthand `name`.
func (p *Parser) parseFieldInit() ast.NodeID {
	start := p.start()
	attrs, _ := p.parseOuterAttrs()
	tok := p.peek()
	switch {
	case (tok.Kind == token.Ident || tok.Kind == token.IntLit) && p.peekN(1).Kind == token.Colon:
		p.advance()
		p.advance()
		val := p.parseExpr()
		return p.b.NewNamed(ast.FieldInit, p.spanFrom(start), tok.IdentName(), append(attrs, ast.C(ast.RoleValue, val))...)
	case tok.Kind == token.Ident:
		p.advance()
		id := p.b.NewNamed(ast.FieldInit, p.spanFrom(start), tok.IdentName(), attrs...)
		p.b.AddFlags(id, ast.FlagShorthand)
		return id
	}
	p.unexpected(diag.SynExpectIdentifier, "field name")
	return p.b.New(ast.Error, p.spanFrom(start), attrs...)
}

// parseParenExpr: `()`, `(e)`, `(e,)`, `(a, b)`.
func (p *Parser) parseParenExpr() ast.NodeID {
	start := p.start()
	open := p.advance()
	var kids []ast.Child
	trailing := false
	for !p.at(token.RParen) && !p.at(token.EOF) {
		before := p.start()
		kids = append(kids, ast.C(ast.RoleElem, p.parseExpr()))
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
	kind := ast.ExprTuple
	if len(kids) == 1 && !trailing {
		kind = ast.ExprParen
		kids[0].Role = ast.RoleOperand
	}
	junk, _ := p.closeGroup(open)
	kids = append(kids, ast.C(ast.RoleError, junk))
	return p.b.New(kind, p.spanFrom(start), kids...)
}

// parseArrayExpr: `[a, b]` or `[x; n]`.
func (p *Parser) parseArrayExpr() ast.NodeID {
	start := p.start()
	open := p.advance()
	if p.at(token.RBracket) {
		p.advance()
		return p.b.New(ast.ExprArray, p.spanFrom(start))
	}
	first := p.parseExpr()
	if p.eat(token.Semicolon) {
		n := p.parseExpr()
		junk, _ := p.closeGroup(open)
		return p.b.New(ast.ExprArrayRepeat, p.spanFrom(start),
			ast.C(ast.RoleElem, first), ast.C(ast.RoleLen, n), ast.C(ast.RoleError, junk))
	}
	kids := []ast.Child{ast.C(ast.RoleElem, first)}
	for p.eat(token.Comma) {
		if p.at(token.RBracket) || p.at(token.EOF) {
			break
		}
		before := p.start()
		kids = append(kids, ast.C(ast.RoleElem, p.parseExpr()))
		if p.start() == before {
			break
		}
	}
	if !p.atOr(token.RBracket, token.EOF) {
		p.unexpected(diag.SynUnexpectedToken, "`,` or `]`")
	}
	junk, _ := p.closeGroup(open)
	kids = append(kids, ast.C(ast.RoleError, junk))
	return p.b.New(ast.ExprArray, p.spanFrom(start), kids...)
}

// parseIfExpr parses an `if`/`else if`/`else` chain. The chain is read
// iteratively and folded from the end, so long `else if` ladders do not
// consume the depth budget.
func (p *Parser) parseIfExpr() ast.NodeID {
	type arm struct {
		start      uint32
		cond, then ast.NodeID
	}
	var arms []arm
	var tail ast.NodeID
	for {
		s := p.start()
		p.advance() // if
		cond := p.parseExprWith(restrictNoStruct)
		then := p.parseBlock(ast.NoNodeID)
		arms = append(arms, arm{s, cond, then})
		if !p.eat(token.KwElse) {
			break
		}
		if !p.at(token.KwIf) {
			tail = p.parseBlock(ast.NoNodeID)
			break
		}
		if p.cancelled() {
			break
		}
	}
	id := tail
	for i := len(arms) - 1; i >= 0; i-- {
		a := arms[i]
		id = p.b.New(ast.ExprIf, p.spanFrom(a.start),
			ast.C(ast.RoleCond, a.cond), ast.C(ast.RoleThen, a.then), ast.C(ast.RoleElse, id))
	}
	return id
}

// parseLetExpr parses `let pat = expr` in a condition. The scrutinee binds
// tighter than `&&` and `||`: `let Some(x) = a && b` is `(let ...) && b`.
func (p *Parser) parseLetExpr(r restrictions) ast.NodeID {
	start := p.start()
	p.advance() // let
	pat := p.parsePatternTop()
	kids := []ast.Child{ast.C(ast.RolePat, pat)}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, ""); ok {
		kids = append(kids, ast.C(ast.RoleScrutinee, p.parseBinaryExpr(precCompare, r)))
	}
	return p.b.New(ast.ExprLet, p.spanFrom(start), kids...)
}

// parseMatchExpr parses `match scrutinee { pat [if guard] => body, ... }`.
func (p *Parser) parseMatchExpr() ast.NodeID {
	start := p.start()
	p.advance() // match
	kids := []ast.Child{ast.C(ast.RoleScrutinee, p.parseExprWith(restrictNoStruct))}
	open, ok := p.expect(token.LBrace, diag.SynExpectBlock, "")
	if !ok {
		id := p.b.New(ast.ExprMatch, p.spanFrom(start), kids...)
		p.b.AddFlags(id, ast.FlagRecovered)
		return id
	}
	attrs, _ := p.parseInnerAttrs()
	kids = append(kids, attrs...)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.cancelled() {
			break
		}
		before := p.start()
		if stray, ok := p.skipStrayCloser(); ok {
			kids = append(kids, ast.C(ast.RoleError, stray))
			continue
		}
		arm := p.parseMatchArm()
		if p.start() == before {
			p.advance()
			arm = p.b.New(ast.Error, p.spanFrom(before), ast.C(ast.RoleError, arm))
			p.b.AddFlags(arm, ast.FlagRecovered)
		}
		role := ast.RoleArm
		if p.b.Kind(arm) == ast.Error {
			role = ast.RoleError
		}
		kids = append(kids, ast.C(role, arm))
	}
	junk, _ := p.closeGroup(open)
	kids = append(kids, ast.C(ast.RoleError, junk))
	return p.b.New(ast.ExprMatch, p.spanFrom(start), kids...)
}

func (p *Parser) parseMatchArm() ast.NodeID {
	start := p.start()
	attrs, _ := p.parseOuterAttrs()
	kids := append(attrs, ast.C(ast.RolePat, p.parsePatternTop()))
	if p.eat(token.KwIf) {
		kids = append(kids, ast.C(ast.RoleGuard, p.parseExpr()))
	}
	if _, ok := p.expect(token.FatArrow, diag.SynExpectFatArrow, ""); !ok {
		junkStart := p.start()
		if p.resyncUntil(token.Comma, token.FatArrow) {
			kids = append(kids, ast.C(ast.RoleError, p.errorNode(junkStart)))
		}
		if !p.at(token.FatArrow) {
			p.eat(token.Comma)
			id := p.b.New(ast.MatchArm, p.spanFrom(start), kids...)
			p.b.AddFlags(id, ast.FlagRecovered)
			return id
		}
		p.advance()
	}
	body, blockLike := p.parseStmtExpr()
	kids = append(kids, ast.C(ast.RoleBody, body))
	if !p.eat(token.Comma) && !blockLike && !p.at(token.RBrace) && !p.at(token.EOF) {
		p.unexpected(diag.SynUnexpectedToken, "`,` or `}` after match arm")
	}
	return p.b.New(ast.MatchArm, p.spanFrom(start), kids...)
}

// parseLabeled parses `'label: loop/while/for/{ }`.
func (p *Parser) parseLabeled(start uint32) ast.NodeID {
	label := p.parseLifetime()
	p.advance() // :
	switch p.peek().Kind {
	case token.KwLoop, token.KwWhile, token.KwFor:
		return p.parseLoopExpr(start, label)
	case token.LBrace:
		return p.parseBlockFrom(start, label, 0)
	}
	p.unexpected(diag.SynUnexpectedToken, "`loop`, `while`, `for` or block after label")
	id := p.b.New(ast.Error, p.spanFrom(start), ast.C(ast.RoleLifetime, label))
	p.b.AddFlags(id, ast.FlagRecovered)
	return id
}

// parseLoopExpr parses `loop {}`, `while cond {}` and `for pat in iter {}`.
func (p *Parser) parseLoopExpr(start uint32, label ast.NodeID) ast.NodeID {
	kw := p.advance()
	kids := []ast.Child{ast.C(ast.RoleLifetime, label)}
	var kind ast.Kind
	switch kw.Kind {
	case token.KwLoop:
		kind = ast.ExprLoop
	case token.KwWhile:
		kind = ast.ExprWhile
		kids = append(kids, ast.C(ast.RoleCond, p.parseExprWith(restrictNoStruct)))
	default:
		kind = ast.ExprFor
		kids = append(kids, ast.C(ast.RolePat, p.parsePatternTop()))
		if _, ok := p.expect(token.KwIn, diag.SynUnexpectedToken, ""); ok {
			kids = append(kids, ast.C(ast.RoleIter, p.parseExprWith(restrictNoStruct)))
		}
	}
	kids = append(kids, ast.C(ast.RoleBody, p.parseBlock(ast.NoNodeID)))
	id := p.b.New(kind, p.spanFrom(start), kids...)
	p.setLabel(id, label)
	return id
}

func (p *Parser) setLabel(id, label ast.NodeID) {
	if !label.IsValid() {
		return
	}
	p.b.AddFlags(id, ast.FlagLabel)
	p.b.Get(id).Name = p.b.Get(label).Name
}

// parseClosure parses `[async] [move] |params| [-> Ret] body`. With an
// explicit return type the body must be a block.
func (p *Parser) parseClosure(r restrictions) ast.NodeID {
	start := p.start()
	var flags ast.Flags
	if p.eat(token.KwAsync) {
		flags |= ast.FlagAsync
	}
	if p.eat(token.KwMove) {
		flags |= ast.FlagMove
	}
	var kids []ast.Child
	switch {
	case p.eat(token.OrOr):
	case p.at(token.Pipe):
		p.advance()
		for !p.at(token.Pipe) && !p.at(token.EOF) {
			before := p.start()
			kids = append(kids, ast.C(ast.RoleParam, p.parseClosureParam()))
			if !p.eat(token.Comma) || p.start() == before {
				break
			}
		}
		if _, ok := p.expect(token.Pipe, diag.SynUnexpectedToken, ""); !ok {
			flags |= ast.FlagRecovered
		}
	default:
		p.unexpected(diag.SynUnexpectedToken, "`|` to start closure parameters")
		flags |= ast.FlagRecovered
	}
	if p.eat(token.Arrow) {
		kids = append(kids, ast.C(ast.RoleRet, p.parseTypeNoBounds()))
		kids = append(kids, ast.C(ast.RoleBody, p.parseBlock(ast.NoNodeID)))
	} else {
		kids = append(kids, ast.C(ast.RoleBody, p.parseExprWith(r)))
	}
	id := p.b.New(ast.ExprClosure, p.spanFrom(start), kids...)
	p.b.AddFlags(id, flags)
	return id
}

func (p *Parser) parseClosureParam() ast.NodeID {
	start := p.start()
	attrs, _ := p.parseOuterAttrs()
	kids := append(attrs, ast.C(ast.RolePat, p.parsePatternNoAlt()))
	if p.eat(token.Colon) {
		kids = append(kids, ast.C(ast.RoleType, p.parseType()))
	}
	return p.b.New(ast.Param, p.spanFrom(start), kids...)
}
