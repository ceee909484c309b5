package lsp

import (
	"encoding/json"
	"sort"

	"oxide/internal/ast"
	"oxide/internal/source"
)

// foldKinds: узлы, которые сворачиваются целиком
var foldKinds = map[ast.Kind]bool{
	ast.Module:      true,
	ast.Function:    true,
	ast.Struct:      true,
	ast.Enum:        true,
	ast.Trait:       true,
	ast.Impl:        true,
	ast.ExternBlock: true,
	ast.MacroDef:    true,
	ast.Block:       true,
	ast.ExprMatch:   true,
	ast.ExprStruct:  true,
	ast.ExprArray:   true,
	ast.ExprCall:    true,
	ast.MatchArm:    true,
	ast.TokenTree:   true,
}

func (s *Server) handleFoldingRange(msg *rpcMessage) error {
	var params foldingRangeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	res := s.currentResult(params.TextDocument.URI)
	if res == nil || res.Tree == nil {
		return s.sendResponse(msg.ID, []foldingRange{})
	}
	return s.sendResponse(msg.ID, buildFoldingRanges(res.Tree))
}

// buildFoldingRanges: многострочные узлы из foldKinds и серии `use`.
// На одну стартовую строку остаётся самый длинный диапазон.
func buildFoldingRanges(tree *ast.Tree) []foldingRange {
	file := tree.File
	if file == nil {
		return []foldingRange{}
	}
	byStart := make(map[int]foldingRange)
	add := func(r foldingRange) {
		if r.StartLine >= r.EndLine {
			return
		}
		if prev, ok := byStart[r.StartLine]; ok && prev.EndLine >= r.EndLine {
			return
		}
		byStart[r.StartLine] = r
	}

	tree.Inspect(func(id ast.NodeID) bool {
		if id == tree.Root {
			return true
		}
		if foldKinds[tree.Kind(id)] {
			add(spanFold(file, tree.Span(id), ""))
		}
		if kids := tree.ChildrenByRole(id, ast.RoleItem); len(kids) > 0 {
			for _, r := range importRuns(tree, kids) {
				add(r)
			}
		}
		return true
	})
	for _, r := range importRuns(tree, tree.ChildrenByRole(tree.Root, ast.RoleItem)) {
		add(r)
	}

	ranges := make([]foldingRange, 0, len(byStart))
	for _, r := range byStart {
		ranges = append(ranges, r)
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].StartLine == ranges[j].StartLine {
			return ranges[i].EndLine < ranges[j].EndLine
		}
		return ranges[i].StartLine < ranges[j].StartLine
	})
	return ranges
}

func spanFold(file *source.File, sp source.Span, kind string) foldingRange {
	end := sp.End
	if end > sp.Start {
		end-- // последний символ, а не позиция за ним
	}
	return foldingRange{
		StartLine: lineForOffset(file, sp.Start),
		EndLine:   lineForOffset(file, end),
		Kind:      kind,
	}
}

// importRuns: подряд идущие `use` одного уровня сворачиваются как imports.
func importRuns(tree *ast.Tree, items []ast.NodeID) []foldingRange {
	var (
		out   []foldingRange
		first = ast.NoNodeID
		last  = ast.NoNodeID
	)
	flush := func() {
		if first.IsValid() && first != last {
			sp := tree.Span(first)
			sp.End = tree.Span(last).End
			out = append(out, spanFold(tree.File, sp, "imports"))
		}
		first, last = ast.NoNodeID, ast.NoNodeID
	}
	for _, id := range items {
		if tree.Kind(id) != ast.Use {
			flush()
			continue
		}
		if !first.IsValid() {
			first = id
		}
		last = id
	}
	flush()
	return out
}
