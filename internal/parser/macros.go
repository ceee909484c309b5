package parser

import (
	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/source"
	"oxide/internal/token"
)

// atMacroCall: `path ! (` / `path ! [` / `path ! {`.
func (p *Parser) atMacroCall() bool {
	return p.macroCallDelim() != token.Invalid
}

// macroCallDelim returns the opener of the macro call at the current token,
// or Invalid when there is none.
func (p *Parser) macroCallDelim() token.Kind {
	k := 0
	if p.at(token.ColonColon) {
		k = 1
	}
	for {
		if !isPathSegmentStart(p.peekN(k).Kind) {
			return token.Invalid
		}
		switch p.peekN(k + 1).Kind {
		case token.ColonColon:
			k += 2
		case token.Bang:
			if open := p.peekN(k + 2).Kind; open.IsOpen() {
				return open
			}
			return token.Invalid
		default:
			return token.Invalid
		}
	}
}

// parseMacroInvocation parses `!` and the argument group after path. The
// arguments are kept as an opaque token tree; nothing is expanded.
// In item and statement position (semi) a non-brace call needs `;`.
func (p *Parser) parseMacroInvocation(start uint32, path ast.NodeID, semi bool, head ...ast.Child) ast.NodeID {
	p.advance() // !
	kids := append(head, ast.C(ast.RolePath, path))
	var flags ast.Flags
	args, ok := p.parseDelimTokenTree(diag.SynExpectMacroArgs, "`(`, `[` or `{` after `!`")
	if ok {
		kids = append(kids, ast.C(ast.RoleTokens, args))
		flags |= p.b.Get(args).Flags & (ast.FlagParen | ast.FlagBracket | ast.FlagBrace)
	} else {
		flags |= ast.FlagRecovered
	}
	if semi && flags&ast.FlagBrace == 0 {
		if p.at(token.Semicolon) {
			p.advance()
			flags |= ast.FlagSemi
		} else if ok {
			p.expectSemi("macro invocation")
		}
	}
	id := p.b.New(ast.MacroInvocation, p.spanFrom(start), kids...)
	p.b.AddFlags(id, flags)
	p.b.Get(id).Name = p.lastSegmentName(path)
	return id
}

// lastSegmentName returns the interned name of the final path segment.
func (p *Parser) lastSegmentName(path ast.NodeID) (name source.StringID) {
	n := p.b.Get(path)
	if n == nil || n.Kind != ast.Path {
		return name
	}
	for _, k := range p.b.Kids(path) {
		if k.Role == ast.RoleSegment {
			name = p.b.Get(k.ID).Name
		}
	}
	return name
}

// parseMacroRules parses a declarative macro definition:
//
//	macro_rules! name {
//	    ($x:expr) => { ... };
//	    () => ( ... )
//	}
//
// Matchers and transcribers are balanced token trees and are not
// interpreted.
func (p *Parser) parseMacroRules(start uint32, head []ast.Child) ast.NodeID {
	p.advance() // macro_rules
	p.advance() // !
	name, _, _ := p.parseIdent()
	kids := head

	if !p.peek().Kind.IsOpen() {
		p.unexpected(diag.SynExpectMacroArgs, "`{`, `(` or `[` after macro name")
		kids = append(kids, ast.C(ast.RoleError, p.recover(p.start(), itemStops...)))
		return p.finishItem(ast.MacroDef, start, name, ast.FlagRecovered, kids)
	}
	open := p.advance()
	for !p.at(open.Kind.Closer()) && !p.at(token.EOF) {
		if p.peek().Kind.IsClose() {
			break
		}
		before := p.start()
		kids = append(kids, ast.C(ast.RoleRule, p.parseMacroRule()))
		if p.eat(token.Semicolon) {
			continue
		}
		if !p.at(open.Kind.Closer()) && p.start() != before {
			p.unexpected(diag.SynExpectSemicolon, "`;` between macro rules")
			kids = append(kids, ast.C(ast.RoleError, p.recover(p.start(), token.Semicolon)))
			continue
		}
		if p.start() == before {
			break
		}
	}
	junk, _ := p.closeGroup(open)
	kids = append(kids, ast.C(ast.RoleError, junk))
	flags := delimFlag(open.Kind)
	if open.Kind != token.LBrace {
		if p.eat(token.Semicolon) {
			flags |= ast.FlagSemi
		} else {
			p.expectSemi("macro definition")
		}
	}
	return p.finishItem(ast.MacroDef, start, name, flags, kids)
}

// parseMacroRule: `(matcher) => {transcriber}`.
func (p *Parser) parseMacroRule() ast.NodeID {
	start := p.start()
	matcher, ok := p.parseDelimTokenTree(diag.SynUnbalancedMacroRule, "macro matcher in `(`, `[` or `{`")
	if !ok {
		p.resyncUntil(token.Semicolon)
		return p.errorNode(start)
	}
	kids := []ast.Child{ast.C(ast.RoleMatcher, matcher)}
	if _, ok := p.expect(token.FatArrow, diag.SynExpectFatArrow, ""); !ok {
		p.resyncUntil(token.Semicolon)
		id := p.b.New(ast.MacroRule, p.spanFrom(start), kids...)
		p.b.AddFlags(id, ast.FlagRecovered)
		return id
	}
	transcriber, ok := p.parseDelimTokenTree(diag.SynUnbalancedMacroRule, "macro transcriber in `(`, `[` or `{`")
	if ok {
		kids = append(kids, ast.C(ast.RoleTranscriber, transcriber))
	}
	id := p.b.New(ast.MacroRule, p.spanFrom(start), kids...)
	if !ok {
		p.b.AddFlags(id, ast.FlagRecovered)
	}
	return id
}
