package lsp

import (
	"encoding/json"
	"strings"

	"oxide/internal/ast"
)

// LSP SymbolKind
const (
	symbolModule        = 2
	symbolClass         = 5
	symbolMethod        = 6
	symbolField         = 8
	symbolEnum          = 10
	symbolInterface     = 11
	symbolFunction      = 12
	symbolVariable      = 13
	symbolConstant      = 14
	symbolEnumMember    = 22
	symbolStruct        = 23
	symbolTypeParameter = 26
)

func (s *Server) handleDocumentSymbol(msg *rpcMessage) error {
	var params documentSymbolParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	res := s.currentResult(params.TextDocument.URI)
	if res == nil || res.Tree == nil {
		return s.sendResponse(msg.ID, []documentSymbol{})
	}
	return s.sendResponse(msg.ID, buildDocumentSymbols(res.Tree))
}

// buildDocumentSymbols: иерархия именованных items. Тела функций не обходятся.
func buildDocumentSymbols(tree *ast.Tree) []documentSymbol {
	syms := collectSymbols(tree, tree.Root)
	if syms == nil {
		return []documentSymbol{}
	}
	return syms
}

func collectSymbols(tree *ast.Tree, id ast.NodeID) []documentSymbol {
	var out []documentSymbol
	for _, c := range tree.Children(id) {
		if tree.Kind(id) == ast.Function && c.Role == ast.RoleBody {
			continue
		}
		sym, ok := symbolFor(tree, c.ID)
		if !ok {
			out = append(out, collectSymbols(tree, c.ID)...)
			continue
		}
		sym.Children = collectSymbols(tree, c.ID)
		out = append(out, sym)
	}
	return out
}

func symbolFor(tree *ast.Tree, id ast.NodeID) (documentSymbol, bool) {
	name := tree.Name(id)
	kind, detail := 0, ""
	switch tree.Kind(id) {
	case ast.Module:
		kind = symbolModule
	case ast.Function:
		kind = symbolFunction
		if p := tree.Parent(id); tree.Kind(p) == ast.Impl || tree.Kind(p) == ast.Trait {
			kind = symbolMethod
		}
	case ast.Struct:
		kind = symbolStruct
	case ast.Field:
		kind = symbolField
	case ast.Enum:
		kind = symbolEnum
	case ast.EnumVariant:
		kind = symbolEnumMember
	case ast.Trait:
		kind = symbolInterface
	case ast.Impl:
		kind = symbolClass
		name = implName(tree, id)
	case ast.AssociatedType, ast.TypeAlias:
		kind = symbolTypeParameter
	case ast.AssociatedConst, ast.ConstItem:
		kind = symbolConstant
	case ast.StaticItem:
		kind = symbolVariable
	case ast.MacroDef:
		kind, detail = symbolFunction, "macro"
	default:
		return documentSymbol{}, false
	}
	if name == "" {
		return documentSymbol{}, false
	}
	rng := rangeForSpan(tree.File, tree.Span(id))
	return documentSymbol{
		Name:           name,
		Detail:         detail,
		Kind:           kind,
		Range:          rng,
		SelectionRange: rng,
	}, true
}

// implName: "impl Type" или "impl Trait for Type"
func implName(tree *ast.Tree, id ast.NodeID) string {
	self := collapseSpace(tree.Text(tree.ChildByRole(id, ast.RoleSelfType)))
	if self == "" {
		return ""
	}
	if trait := collapseSpace(tree.Text(tree.ChildByRole(id, ast.RoleTrait))); trait != "" {
		return "impl " + trait + " for " + self
	}
	return "impl " + self
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
