package parser

import (
	"fmt"

	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/token"
)

// itemCtx - где разбирается item: от этого зависят роли детей и то, как
// читаются `type` и `const`.
type itemCtx uint8

const (
	ctxModule itemCtx = iota
	ctxBlock
	ctxTrait
	ctxImpl
	ctxExtern
)

func (c itemCtx) role() ast.Role {
	switch c {
	case ctxTrait, ctxImpl, ctxExtern:
		return ast.RoleMember
	default:
		return ast.RoleItem
	}
}

// itemStops - куда прокручиваем после ошибки внутри item.
var itemStops = append([]token.Kind{token.Semicolon}, itemStarters...)

// parseItems parses items until end (EOF or `}`); the closer is not consumed.
func (p *Parser) parseItems(end token.Kind, ctx itemCtx) []ast.Child {
	var kids []ast.Child
	role := ctx.role()
	for !p.at(end) && !p.at(token.EOF) {
		if p.cancelled() {
			break
		}
		start := p.start()
		if stray, ok := p.skipStrayCloser(); ok {
			kids = append(kids, ast.C(ast.RoleError, stray))
			continue
		}
		id := p.parseItem(ctx)
		if p.start() == start && !p.at(end) && !p.at(token.EOF) {
			// нет прогресса: токен не начинает item и не является точкой синхронизации
			p.advance()
			id = p.b.New(ast.Error, p.spanFrom(start), ast.C(ast.RoleError, id))
			p.b.AddFlags(id, ast.FlagRecovered)
		}
		if p.b.Kind(id) == ast.Error {
			role = ast.RoleError
		}
		kids = append(kids, ast.C(role, id))
		role = ctx.role()
	}
	return kids
}

// parseItem выбирает по первым токенам нужный распознаватель item.
func (p *Parser) parseItem(ctx itemCtx) ast.NodeID {
	if !p.enter() {
		return p.bail()
	}
	defer p.leave()

	start := p.start()
	attrs, docs := p.parseOuterAttrs()
	id := p.parseItemAfterAttrs(ctx, start, attrs)
	p.b.SetDocs(id, docs)
	p.tracePoint("item", p.b.Kind(id).String())
	return id
}

func (p *Parser) parseItemAfterAttrs(ctx itemCtx, start uint32, attrs []ast.Child) ast.NodeID {
	if len(attrs) > 0 && (p.at(token.RBrace) || p.at(token.EOF)) {
		p.report(diag.SynAttrWithoutItem, diag.SevError, p.b.Span(attrs[len(attrs)-1].ID),
			"expected item after attributes")
		return p.b.New(ast.Error, p.spanFrom(start), attrs...)
	}
	head := attrs
	vis := p.parseVisibility()
	head = append(head, ast.C(ast.RoleVis, vis))

	if p.at(token.Semicolon) && len(head) == 1 && !vis.IsValid() {
		p.advance()
		return p.b.New(ast.Empty, p.spanFrom(start))
	}

	kw, _ := p.itemKeyword()
	switch kw.Kind {
	case token.KwFn:
		return p.parseFn(start, head)
	case token.KwStruct:
		return p.parseStruct(start, head)
	case token.KwEnum:
		return p.parseEnum(start, head)
	case token.KwTrait:
		return p.parseTrait(start, head)
	case token.KwImpl:
		return p.parseImpl(start, head)
	case token.KwMod:
		return p.parseMod(start, head)
	case token.KwConst:
		return p.parseConst(start, head, ctx)
	case token.KwStatic:
		return p.parseStatic(start, head)
	case token.KwType:
		return p.parseTypeItem(start, head, ctx)
	case token.KwUse:
		return p.parseUse(start, head)
	case token.KwExtern:
		if p.peekN(1).Kind == token.KwCrate {
			return p.parseExternCrate(start, head)
		}
		return p.parseExternBlock(start, head)
	}

	if p.atIdent("macro_rules") && p.peekN(1).Kind == token.Bang && p.peekN(2).Kind == token.Ident {
		return p.parseMacroRules(start, head)
	}
	if p.atMacroCall() {
		path := p.parsePath(pathModeMod)
		return p.parseMacroInvocation(start, path, true, head...)
	}

	p.unexpected(diag.SynExpectItem, "item")
	id := p.recover(start, itemStops...)
	return p.b.New(ast.Error, p.spanFrom(start), append(head, ast.C(ast.RoleError, id))...)
}

// itemKeyword looks past qualifiers (`const async unsafe extern "C"`,
// contextual `auto` and `default`) and returns the token that decides the
// item kind together with its lookahead offset.
func (p *Parser) itemKeyword() (token.Token, int) {
	for k := 0; k < 8; k++ {
		tok := p.peekN(k)
		next := p.peekN(k + 1).Kind
		switch tok.Kind {
		case token.KwConst:
			if next == token.KwFn || next == token.KwUnsafe || next == token.KwAsync || next == token.KwExtern {
				continue
			}
			return tok, k
		case token.KwAsync, token.KwUnsafe:
			continue
		case token.KwExtern:
			if next == token.KwCrate || next == token.LBrace {
				return tok, k
			}
			if next == token.StringLit || next == token.RawStringLit {
				if p.peekN(k+2).Kind == token.LBrace {
					return tok, k
				}
				k++
			}
			continue
		case token.Ident:
			if tok.Text == "auto" && next == token.KwTrait {
				continue
			}
			if tok.Text == "default" && (next == token.KwFn || next == token.KwConst || next == token.KwAsync ||
				next == token.KwUnsafe || next == token.KwType || next == token.KwImpl || next == token.KwExtern) {
				continue
			}
			return tok, k
		default:
			return tok, k
		}
	}
	return p.peek(), 0
}

// qualifiers - модификаторы перед ключевым словом item.
type qualifiers struct {
	flags ast.Flags
	abi   string
	start uint32
}

// parseQualifiers consumes `default const async unsafe extern "abi" auto`.
func (p *Parser) parseQualifiers() qualifiers {
	q := qualifiers{start: p.start()}
	for {
		switch {
		case p.at(token.KwConst):
			q.flags |= ast.FlagConst
		case p.at(token.KwAsync):
			q.flags |= ast.FlagAsync
		case p.at(token.KwUnsafe):
			q.flags |= ast.FlagUnsafe
		case p.at(token.KwExtern):
			q.flags |= ast.FlagExtern
			p.advance()
			if p.atOr(token.StringLit, token.RawStringLit) {
				q.abi = p.advance().Text
			}
			continue
		case p.atIdent("auto") && p.peekN(1).Kind == token.KwTrait:
			q.flags |= ast.FlagAuto
		case p.atIdent("default") && p.peekN(1).Kind != token.Bang:
			q.flags |= ast.FlagDefault
		default:
			return q
		}
		p.advance()
	}
}

// rejectQualifiers reports qualifiers outside allowed.
func (p *Parser) rejectQualifiers(q qualifiers, allowed ast.Flags, what string) ast.Flags {
	if extra := q.flags &^ allowed; extra != 0 {
		p.report(diag.SynModifierNotAllowed, diag.SevError, p.spanFrom(q.start),
			fmt.Sprintf("modifier is not allowed on %s", what))
	}
	return q.flags & allowed
}

func (p *Parser) finishItem(kind ast.Kind, start uint32, name string, flags ast.Flags, kids []ast.Child) ast.NodeID {
	id := p.b.NewNamed(kind, p.spanFrom(start), name, kids...)
	p.b.AddFlags(id, flags)
	return id
}

// parseFn parses functions and associated functions:
//
//	pub const unsafe extern "C" fn name<T>(self, x: T) -> R where T: Copy { ... }
//	fn new(value: T) -> Self;
func (p *Parser) parseFn(start uint32, head []ast.Child) ast.NodeID {
	q := p.parseQualifiers()
	flags := p.rejectQualifiers(q, ast.FlagConst|ast.FlagAsync|ast.FlagUnsafe|ast.FlagExtern|ast.FlagDefault, "a function")
	p.advance() // fn

	kids := head
	name, _, _ := p.parseIdent()
	kids = append(kids, ast.C(ast.RoleGenerics, p.parseGenericParams()))

	if open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, ""); ok {
		kids = append(kids, p.parseFnParams(open)...)
	} else {
		kids = append(kids, ast.C(ast.RoleError, p.recover(p.start(), token.LBrace, token.Arrow, token.Semicolon)))
	}
	if p.eat(token.Arrow) {
		kids = append(kids, ast.C(ast.RoleRet, p.parseType()))
	}
	kids = append(kids, ast.C(ast.RoleWhere, p.parseWhereClause()))

	switch {
	case p.at(token.LBrace):
		kids = append(kids, ast.C(ast.RoleBody, p.parseBlock(ast.NoNodeID)))
	case p.eat(token.Semicolon):
		flags |= ast.FlagNoBody
	default:
		p.unexpected(diag.SynExpectBlock, "`{` or `;`")
		flags |= ast.FlagNoBody | ast.FlagRecovered
		kids = append(kids, ast.C(ast.RoleError, p.recover(p.start(), itemStops...)))
	}
	return p.finishItem(ast.Function, start, name, flags, kids)
}

// parseFnParams parses the parameter list after `(` up to and including `)`.
func (p *Parser) parseFnParams(open token.Token) []ast.Child {
	var kids []ast.Child
	for !p.at(token.RParen) && !p.at(token.EOF) {
		before := p.start()
		kids = append(kids, ast.C(ast.RoleParam, p.parseParam()))
		if p.eat(token.Comma) {
			continue
		}
		if !p.at(token.RParen) && p.start() != before {
			p.unexpected(diag.SynUnexpectedToken, "`,` or `)`")
		}
		break
	}
	junk, _ := p.closeGroup(open)
	return append(kids, ast.C(ast.RoleError, junk))
}

// parseParam parses `pat: Type`, a self parameter or `...`.
func (p *Parser) parseParam() ast.NodeID {
	start := p.start()
	attrs, _ := p.parseOuterAttrs()
	if p.atSelfParam() {
		return p.parseSelfParam(start, attrs)
	}
	if p.eat(token.DotDotDot) {
		id := p.b.New(ast.Param, p.spanFrom(start), attrs...)
		p.b.SetName(id, "...")
		return id
	}
	kids := attrs
	pat := p.parsePatternTop()
	kids = append(kids, ast.C(ast.RolePat, pat))
	if _, ok := p.expect(token.Colon, diag.SynExpectType, ""); ok {
		kids = append(kids, ast.C(ast.RoleType, p.parseType()))
	} else {
		p.resyncUntil(token.Comma)
	}
	return p.b.New(ast.Param, p.spanFrom(start), kids...)
}

func (p *Parser) atSelfParam() bool {
	selfAt := func(k int) bool {
		return p.peekN(k).Kind == token.KwSelf && p.peekN(k+1).Kind != token.ColonColon
	}
	switch p.peek().Kind {
	case token.KwSelf:
		return selfAt(0)
	case token.KwMut:
		return selfAt(1)
	case token.Amp:
		k := 1
		if p.peekN(k).Kind == token.Lifetime {
			k++
		}
		if p.peekN(k).Kind == token.KwMut {
			k++
		}
		return selfAt(k)
	default:
		return false
	}
}

// parseSelfParam: `self`, `mut self`, `&'a mut self`, `self: Box<Self>`.
func (p *Parser) parseSelfParam(start uint32, kids []ast.Child) ast.NodeID {
	var flags ast.Flags
	if p.eat(token.Amp) {
		flags |= ast.FlagRef
		if p.at(token.Lifetime) {
			kids = append(kids, ast.C(ast.RoleLifetime, p.parseLifetime()))
		}
	}
	if p.eat(token.KwMut) {
		flags |= ast.FlagMut
	}
	p.advance() // self
	if flags&ast.FlagRef == 0 && p.eat(token.Colon) {
		kids = append(kids, ast.C(ast.RoleType, p.parseType()))
	}
	id := p.b.NewNamed(ast.SelfParam, p.spanFrom(start), "self", kids...)
	p.b.AddFlags(id, flags)
	return id
}

// parseStruct parses named, tuple and unit structs:
//
//	struct Point<T> { x: T, pub y: T }
//	struct Wrapper(pub String);
//	struct Marker;
func (p *Parser) parseStruct(start uint32, head []ast.Child) ast.NodeID {
	q := p.parseQualifiers()
	p.rejectQualifiers(q, 0, "a struct")
	p.advance() // struct
	kids := head
	name, _, _ := p.parseIdent()
	kids = append(kids, ast.C(ast.RoleGenerics, p.parseGenericParams()))

	shape := ast.ShapeUnit
	switch {
	case p.at(token.LParen):
		shape = ast.ShapeTuple
		kids = append(kids, p.parseTupleFields()...)
		kids = append(kids, ast.C(ast.RoleWhere, p.parseWhereClause()))
		p.expectSemi("tuple struct")
	default:
		kids = append(kids, ast.C(ast.RoleWhere, p.parseWhereClause()))
		switch {
		case p.at(token.LBrace):
			shape = ast.ShapeStruct
			kids = append(kids, p.parseNamedFields()...)
		case p.eat(token.Semicolon):
		default:
			p.unexpected(diag.SynUnexpectedToken, "`{`, `(` or `;`")
			kids = append(kids, ast.C(ast.RoleError, p.recover(p.start(), itemStops...)))
		}
	}
	id := p.finishItem(ast.Struct, start, name, 0, kids)
	p.b.SetShape(id, shape)
	return id
}

// parseNamedFields: `{ #[attr] pub name: Type, ... }`.
func (p *Parser) parseNamedFields() []ast.Child {
	open := p.advance()
	var kids []ast.Child
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		before := p.start()
		kids = append(kids, ast.C(ast.RoleField, p.parseField(true)))
		if p.eat(token.Comma) {
			continue
		}
		if !p.at(token.RBrace) && p.start() != before {
			p.unexpected(diag.SynUnexpectedToken, "`,` or `}`")
			p.resyncUntil(token.Comma)
			if p.eat(token.Comma) {
				continue
			}
		}
		if p.start() == before {
			break
		}
	}
	junk, _ := p.closeGroup(open)
	return append(kids, ast.C(ast.RoleError, junk))
}

// parseTupleFields: `(pub A, #[attr] B)`.
func (p *Parser) parseTupleFields() []ast.Child {
	open := p.advance()
	var kids []ast.Child
	for !p.at(token.RParen) && !p.at(token.EOF) {
		before := p.start()
		kids = append(kids, ast.C(ast.RoleField, p.parseField(false)))
		if !p.eat(token.Comma) || p.start() == before {
			break
		}
	}
	junk, _ := p.closeGroup(open)
	return append(kids, ast.C(ast.RoleError, junk))
}

func (p *Parser) parseField(named bool) ast.NodeID {
	start := p.start()
	attrs, docs := p.parseOuterAttrs()
	kids := append(attrs, ast.C(ast.RoleVis, p.parseVisibility()))
	name := ""
	if named {
		var ok bool
		name, _, ok = p.parseIdent()
		if !ok {
			p.resyncUntil(token.Comma)
			return p.b.New(ast.Error, p.spanFrom(start), kids...)
		}
		if _, ok := p.expect(token.Colon, diag.SynExpectType, ""); !ok {
			p.resyncUntil(token.Comma)
			return p.finishItem(ast.Field, start, name, ast.FlagRecovered, kids)
		}
	}
	kids = append(kids, ast.C(ast.RoleType, p.parseType()))
	id := p.finishItem(ast.Field, start, name, 0, kids)
	p.b.SetDocs(id, docs)
	return id
}

// parseEnum parses enum declarations:
//
//	enum Message { Quit, Move { x: i32, y: i32 }, Write(String), Code = 3 }
func (p *Parser) parseEnum(start uint32, head []ast.Child) ast.NodeID {
	q := p.parseQualifiers()
	p.rejectQualifiers(q, 0, "an enum")
	p.advance() // enum
	kids := head
	name, _, _ := p.parseIdent()
	kids = append(kids, ast.C(ast.RoleGenerics, p.parseGenericParams()))
	kids = append(kids, ast.C(ast.RoleWhere, p.parseWhereClause()))

	open, ok := p.expect(token.LBrace, diag.SynExpectBlock, "")
	if !ok {
		kids = append(kids, ast.C(ast.RoleError, p.recover(p.start(), itemStops...)))
		return p.finishItem(ast.Enum, start, name, ast.FlagRecovered, kids)
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		before := p.start()
		kids = append(kids, ast.C(ast.RoleMember, p.parseEnumVariant()))
		if p.eat(token.Comma) {
			continue
		}
		if !p.at(token.RBrace) && p.start() != before {
			p.unexpected(diag.SynUnexpectedToken, "`,` or `}`")
			kids = append(kids, ast.C(ast.RoleError, p.recover(p.start(), token.Comma)))
			if p.eat(token.Comma) {
				continue
			}
		}
		if p.start() == before {
			break
		}
	}
	junk, _ := p.closeGroup(open)
	kids = append(kids, ast.C(ast.RoleError, junk))
	return p.finishItem(ast.Enum, start, name, 0, kids)
}

// parseEnumVariant: форма определяется токеном после имени.
func (p *Parser) parseEnumVariant() ast.NodeID {
	start := p.start()
	attrs, docs := p.parseOuterAttrs()
	kids := append(attrs, ast.C(ast.RoleVis, p.parseVisibility()))
	name, _, ok := p.parseIdent()
	if !ok {
		p.resyncUntil(token.Comma)
		return p.b.New(ast.Error, p.spanFrom(start), kids...)
	}
	shape := ast.ShapeUnit
	switch {
	case p.at(token.LBrace):
		shape = ast.ShapeStruct
		kids = append(kids, p.parseNamedFields()...)
	case p.at(token.LParen):
		shape = ast.ShapeTuple
		kids = append(kids, p.parseTupleFields()...)
	}
	if p.eat(token.Assign) {
		kids = append(kids, ast.C(ast.RoleValue, p.parseExpr()))
	}
	id := p.finishItem(ast.EnumVariant, start, name, 0, kids)
	p.b.SetShape(id, shape)
	p.b.SetDocs(id, docs)
	return id
}

// parseTrait parses trait declarations and trait aliases:
//
//	pub unsafe trait MyTrait<T>: Sized + Send where T: Clone { ... }
//	trait Alias = Iterator<Item = u8>;
func (p *Parser) parseTrait(start uint32, head []ast.Child) ast.NodeID {
	q := p.parseQualifiers()
	flags := p.rejectQualifiers(q, ast.FlagUnsafe|ast.FlagAuto, "a trait")
	p.advance() // trait
	kids := head
	name, _, _ := p.parseIdent()
	kids = append(kids, ast.C(ast.RoleGenerics, p.parseGenericParams()))
	if p.eat(token.Colon) && p.atBoundStart() {
		kids = append(kids, p.parseBounds()...)
	}
	if p.eat(token.Assign) {
		kids = append(kids, p.parseBounds()...)
		kids = append(kids, ast.C(ast.RoleWhere, p.parseWhereClause()))
		p.expectSemi("trait alias")
		return p.finishItem(ast.Trait, start, name, flags|ast.FlagNoBody, kids)
	}
	kids = append(kids, ast.C(ast.RoleWhere, p.parseWhereClause()))
	body, ok := p.parseItemBody(ctxTrait)
	kids = append(kids, body...)
	if !ok {
		flags |= ast.FlagRecovered
	}
	return p.finishItem(ast.Trait, start, name, flags, kids)
}

// parseImpl parses inherent and trait impls:
//
//	impl<T> Foo<T> where T: Copy { ... }
//	unsafe impl<T> !Send for Foo<T> {}
//	impl Sized for MyTrait<T, U> {}
func (p *Parser) parseImpl(start uint32, head []ast.Child) ast.NodeID {
	q := p.parseQualifiers()
	flags := p.rejectQualifiers(q, ast.FlagUnsafe|ast.FlagDefault, "an impl")
	p.advance() // impl
	kids := head
	kids = append(kids, ast.C(ast.RoleGenerics, p.parseGenericParams()))
	if p.at(token.KwConst) {
		p.advance()
		flags |= ast.FlagConst
	}
	if p.at(token.Bang) {
		p.advance()
		flags |= ast.FlagNegative
	}
	first := p.parseTypeNoBounds()
	if p.eat(token.KwFor) {
		kids = append(kids, ast.C(ast.RoleTrait, first), ast.C(ast.RoleSelfType, p.parseType()))
	} else {
		if flags&ast.FlagNegative != 0 {
			p.report(diag.SynUnexpectedToken, diag.SevError, p.getDiagnosticSpan(), "negative impls require a trait: expected `for`")
		}
		kids = append(kids, ast.C(ast.RoleSelfType, first))
	}
	kids = append(kids, ast.C(ast.RoleWhere, p.parseWhereClause()))
	body, ok := p.parseItemBody(ctxImpl)
	kids = append(kids, body...)
	if !ok {
		flags |= ast.FlagRecovered
	}
	return p.finishItem(ast.Impl, start, "", flags, kids)
}

// parseItemBody parses `{ #![inner] items }` of traits, impls, modules and
// extern blocks. The second result is false when the body is missing.
func (p *Parser) parseItemBody(ctx itemCtx) ([]ast.Child, bool) {
	open, ok := p.expect(token.LBrace, diag.SynExpectBlock, "")
	if !ok {
		return []ast.Child{ast.C(ast.RoleError, p.recover(p.start(), itemStops...))}, false
	}
	kids, _ := p.parseInnerAttrs()
	kids = append(kids, p.parseItems(token.RBrace, ctx)...)
	junk, _ := p.closeGroup(open)
	return append(kids, ast.C(ast.RoleError, junk)), true
}

// parseMod: `mod name;` или `mod name { items }`.
func (p *Parser) parseMod(start uint32, head []ast.Child) ast.NodeID {
	q := p.parseQualifiers()
	flags := p.rejectQualifiers(q, ast.FlagUnsafe, "a module")
	p.advance() // mod
	kids := head
	name, _, _ := p.parseIdent()
	if p.eat(token.Semicolon) {
		return p.finishItem(ast.Module, start, name, flags|ast.FlagNoBody, kids)
	}
	if !p.at(token.LBrace) {
		p.unexpected(diag.SynExpectBlock, "`{` or `;`")
		kids = append(kids, ast.C(ast.RoleError, p.recover(p.start(), itemStops...)))
		return p.finishItem(ast.Module, start, name, flags|ast.FlagRecovered, kids)
	}
	open := p.advance()
	inner, docs := p.parseInnerAttrs()
	kids = append(kids, inner...)
	kids = append(kids, p.parseItems(token.RBrace, ctxModule)...)
	junk, _ := p.closeGroup(open)
	kids = append(kids, ast.C(ast.RoleError, junk))
	id := p.finishItem(ast.Module, start, name, flags, kids)
	p.b.SetDocs(id, docs)
	return id
}

// parseConst parses `const NAME: T = value;` and `const _: T = value;`.
// In trait and impl bodies it is an associated const whose value may be
// omitted.
func (p *Parser) parseConst(start uint32, head []ast.Child, ctx itemCtx) ast.NodeID {
	q := p.parseQualifiers()
	flags := p.rejectQualifiers(q, ast.FlagConst|ast.FlagDefault, "a constant") &^ ast.FlagConst
	kind := ast.ConstItem
	if ctx == ctxTrait || ctx == ctxImpl {
		kind = ast.AssociatedConst
	}
	kids := head
	name := "_"
	if !p.eat(token.Underscore) {
		name, _, _ = p.parseIdent()
	}
	kids = append(kids, ast.C(ast.RoleGenerics, p.parseGenericParams()))
	if p.eat(token.Colon) {
		kids = append(kids, ast.C(ast.RoleType, p.parseType()))
	} else {
		p.unexpected(diag.SynExpectType, "`:` and a type")
	}
	if p.eat(token.Assign) {
		kids = append(kids, ast.C(ast.RoleValue, p.parseExpr()))
	}
	kids = append(kids, ast.C(ast.RoleWhere, p.parseWhereClause()))
	if !p.expectSemi("constant") {
		kids = append(kids, ast.C(ast.RoleError, p.recover(p.start(), itemStops...)))
		flags |= ast.FlagRecovered
	}
	return p.finishItem(kind, start, name, flags, kids)
}

// parseStatic parses `static [mut] NAME: T = value;`.
func (p *Parser) parseStatic(start uint32, head []ast.Child) ast.NodeID {
	q := p.parseQualifiers()
	flags := p.rejectQualifiers(q, ast.FlagUnsafe, "a static")
	p.advance() // static
	if p.eat(token.KwMut) {
		flags |= ast.FlagMut
	}
	kids := head
	name, _, _ := p.parseIdent()
	if p.eat(token.Colon) {
		kids = append(kids, ast.C(ast.RoleType, p.parseType()))
	} else {
		p.unexpected(diag.SynExpectType, "`:` and a type")
	}
	if p.eat(token.Assign) {
		kids = append(kids, ast.C(ast.RoleValue, p.parseExpr()))
	}
	if !p.expectSemi("static") {
		kids = append(kids, ast.C(ast.RoleError, p.recover(p.start(), itemStops...)))
		flags |= ast.FlagRecovered
	}
	return p.finishItem(ast.StaticItem, start, name, flags, kids)
}

// parseTypeItem parses type aliases and associated types:
//
//	type Result<T> = std::result::Result<T, Error>;
//	type Output;
//	type Item: Clone + 'static where Self: Sized = u8;
func (p *Parser) parseTypeItem(start uint32, head []ast.Child, ctx itemCtx) ast.NodeID {
	q := p.parseQualifiers()
	flags := p.rejectQualifiers(q, ast.FlagDefault, "a type alias")
	p.advance() // type
	kind := ast.TypeAlias
	if ctx == ctxTrait || ctx == ctxImpl {
		kind = ast.AssociatedType
	}
	kids := head
	name, _, _ := p.parseIdent()
	kids = append(kids, ast.C(ast.RoleGenerics, p.parseGenericParams()))
	if p.eat(token.Colon) && p.atBoundStart() {
		kids = append(kids, p.parseBounds()...)
	}
	kids = append(kids, ast.C(ast.RoleWhere, p.parseWhereClause()))
	if p.eat(token.Assign) {
		kids = append(kids, ast.C(ast.RoleType, p.parseType()))
		if p.at(token.KwWhere) {
			kids = append(kids, ast.C(ast.RoleWhere, p.parseWhereClause()))
		}
	} else {
		flags |= ast.FlagNoBody
	}
	if !p.expectSemi("type alias") {
		kids = append(kids, ast.C(ast.RoleError, p.recover(p.start(), itemStops...)))
		flags |= ast.FlagRecovered
	}
	return p.finishItem(kind, start, name, flags, kids)
}

// parseExternCrate: `extern crate foo;`, `extern crate self as bar;`.
func (p *Parser) parseExternCrate(start uint32, head []ast.Child) ast.NodeID {
	q := p.parseQualifiers()
	p.rejectQualifiers(q, ast.FlagExtern, "an extern crate")
	p.advance() // crate
	kids := head
	name := ""
	if p.at(token.KwSelf) {
		name = p.advance().Text
	} else {
		name, _, _ = p.parseIdent()
	}
	if p.eat(token.KwAs) {
		aliasStart := p.start()
		alias := "_"
		if !p.eat(token.Underscore) {
			alias, _, _ = p.parseIdent()
		}
		kids = append(kids, ast.C(ast.RoleItem, p.b.NewNamed(ast.PathSegment, p.spanFrom(aliasStart), alias)))
	}
	var flags ast.Flags
	if !p.expectSemi("extern crate") {
		kids = append(kids, ast.C(ast.RoleError, p.recover(p.start(), itemStops...)))
		flags |= ast.FlagRecovered
	}
	return p.finishItem(ast.ExternCrate, start, name, flags, kids)
}

// parseExternBlock: `[unsafe] extern "C" { fn abs(x: i32) -> i32; static X: u8; }`.
// The ABI string, when present, is the node name.
func (p *Parser) parseExternBlock(start uint32, head []ast.Child) ast.NodeID {
	q := p.parseQualifiers()
	flags := p.rejectQualifiers(q, ast.FlagUnsafe|ast.FlagExtern, "an extern block") &^ ast.FlagExtern
	body, ok := p.parseItemBody(ctxExtern)
	if !ok {
		flags |= ast.FlagRecovered
	}
	return p.finishItem(ast.ExternBlock, start, q.abi, flags, append(head, body...))
}
