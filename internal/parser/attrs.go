package parser

import (
	"fmt"

	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/token"
)

// parseTokenTree captures a balanced delimited group as an opaque TokenTree.
// Nested groups become nested TokenTree children; other tokens are not kept
// as nodes. The current token must be an opener.
//
// A closer of the wrong kind that matches an outer group closes the inner
// groups as recovered; one that matches nothing is reported and skipped.
func (p *Parser) parseTokenTree() ast.NodeID {
	type frame struct {
		open token.Token
		kids []ast.Child
	}
	stack := []frame{{open: p.advance()}}
	var done ast.NodeID

	pop := func(recovered bool) {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		id := p.b.New(ast.TokenTree, p.spanFrom(top.open.Span.Start), top.kids...)
		p.b.AddFlags(id, delimFlag(top.open.Kind))
		if recovered {
			p.b.AddFlags(id, ast.FlagRecovered)
		}
		if len(stack) == 0 {
			done = id
			return
		}
		parent := &stack[len(stack)-1]
		parent.kids = append(parent.kids, ast.C(ast.RoleTree, id))
	}

	for len(stack) > 0 {
		tok := p.peek()
		top := &stack[len(stack)-1]
		switch {
		case tok.Kind == token.EOF:
			p.unclosed(top.open)
			if !p.fatal {
				top.kids = append(top.kids, ast.C(ast.RoleError, p.errorNode(tok.Span.Start)))
			}
			for len(stack) > 0 {
				pop(true)
			}
		case tok.Kind.IsOpen():
			if p.depth+len(stack) >= p.opts.MaxDepth {
				p.resourceExceeded(tok.Span, fmt.Sprintf("nesting depth exceeds %d", p.opts.MaxDepth))
				continue
			}
			stack = append(stack, frame{open: p.advance()})
		case tok.Kind.IsClose():
			if tok.Kind == top.open.Kind.Closer() {
				p.advance()
				pop(false)
				continue
			}
			opens := make([]token.Token, len(stack))
			for i := range stack {
				opens[i] = stack[i].open
			}
			if closesAny(opens, tok.Kind) {
				p.mismatched(top.open, tok)
				pop(true)
				continue
			}
			p.report(diag.SynUnexpectedCloseDelim, diag.SevError, tok.Span,
				fmt.Sprintf("unexpected closing delimiter %s", tok.Kind.Describe()))
			p.advance()
		default:
			p.advance()
		}
	}
	return done
}

// parseDelimTokenTree parses a token tree if the current token opens one,
// and reports code otherwise.
func (p *Parser) parseDelimTokenTree(code diag.Code, what string) (ast.NodeID, bool) {
	if !p.peek().Kind.IsOpen() {
		p.unexpected(code, what)
		return ast.NoNodeID, false
	}
	return p.parseTokenTree(), true
}

// atAttr: `#[` или `#![`.
func (p *Parser) atAttr() bool {
	if !p.at(token.Hash) {
		return false
	}
	next := p.peekN(1).Kind
	return next == token.LBracket || next == token.Bang && p.peekN(2).Kind == token.LBracket
}

func (p *Parser) atInnerAttr() bool {
	return p.at(token.Hash) && p.peekN(1).Kind == token.Bang && p.peekN(2).Kind == token.LBracket
}

// parseAttribute parses `#[path ...]` or `#![path ...]`. The content is kept
// as a token tree; Name holds the leading path text (`allow`, `derive`,
// `cfg_attr`).
func (p *Parser) parseAttribute() ast.NodeID {
	start := p.start()
	p.advance() // #
	inner := p.eat(token.Bang)
	name := ""
	for i := 1; ; i += 2 {
		tok := p.peekN(i)
		if tok.Kind != token.Ident && !tok.IsKeyword() {
			break
		}
		name += tok.IdentName()
		if p.peekN(i+1).Kind != token.ColonColon {
			break
		}
		name += "::"
	}
	tt := p.parseTokenTree()
	id := p.b.NewNamed(ast.Attribute, p.spanFrom(start), name, ast.C(ast.RoleTokens, tt))
	if inner {
		p.b.AddFlags(id, ast.FlagInner)
	}
	return id
}

// parseInnerAttrs parses `#![...]` at the start of a module, block or body,
// together with the `//!` comments that document the enclosing item.
func (p *Parser) parseInnerAttrs() ([]ast.Child, []token.Trivia) {
	var kids []ast.Child
	var docs []token.Trivia
	for {
		docs = append(docs, p.innerDocs()...)
		if !p.atInnerAttr() {
			return kids, docs
		}
		kids = append(kids, ast.C(ast.RoleAttr, p.parseAttribute()))
	}
}

// parseOuterAttrs parses the attributes in front of an item, field, variant,
// statement or expression. Misplaced inner attributes are reported and kept.
func (p *Parser) parseOuterAttrs() ([]ast.Child, []token.Trivia) {
	var kids []ast.Child
	docs := p.outerDocs()
	for p.atAttr() {
		if p.atInnerAttr() {
			p.report(diag.SynInnerAttrNotAllowed, diag.SevError, p.getDiagnosticSpan(),
				"inner attribute is not permitted here; inner attributes must come first in the enclosing module or block")
		}
		kids = append(kids, ast.C(ast.RoleAttr, p.parseAttribute()))
		docs = append(docs, p.outerDocs()...)
	}
	return kids, docs
}

// parseVisibility parses `pub`, `pub(crate)`, `pub(self)`, `pub(super)` and
// `pub(in path)`. The restriction is kept as the node name.
func (p *Parser) parseVisibility() ast.NodeID {
	if !p.at(token.KwPub) {
		return ast.NoNodeID
	}
	start := p.start()
	p.advance()
	if !p.at(token.LParen) {
		return p.b.NewNamed(ast.Visibility, p.spanFrom(start), "pub")
	}
	// `pub (A, B)` в кортежной структуре - это тип поля, а не ограничение
	switch p.peekN(1).Kind {
	case token.KwCrate, token.KwSelf, token.KwSuper:
		if p.peekN(2).Kind != token.RParen {
			return p.b.NewNamed(ast.Visibility, p.spanFrom(start), "pub")
		}
		open := p.advance()
		scope := p.advance()
		junk, _ := p.closeGroup(open)
		return p.b.NewNamed(ast.Visibility, p.spanFrom(start), scope.Text, ast.C(ast.RoleError, junk))
	case token.KwIn:
		open := p.advance()
		p.advance() // in
		path := p.parsePath(pathModeMod)
		junk, _ := p.closeGroup(open)
		return p.b.NewNamed(ast.Visibility, p.spanFrom(start), "in", ast.C(ast.RolePath, path), ast.C(ast.RoleError, junk))
	default:
		return p.b.NewNamed(ast.Visibility, p.spanFrom(start), "pub")
	}
}
