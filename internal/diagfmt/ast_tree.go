package diagfmt

import (
	"fmt"
	"strings"

	"oxide/internal/ast"
	"oxide/internal/source"
)

type treeNode struct {
	label    string
	children []*treeNode
}

// buildTreeNode describes id and, recursively, its children.
func buildTreeNode(tree *ast.Tree, id ast.NodeID, fs *source.FileSet) *treeNode {
	node := &treeNode{label: nodeLabel(tree, id, fs)}
	for _, kid := range tree.Children(id) {
		node.children = append(node.children, buildTreeNode(tree, kid.ID, fs))
	}
	return node
}

// nodeLabel: `role: Kind "name" op=.. shape=.. [flags] (span: l:c-l:c)`.
func nodeLabel(tree *ast.Tree, id ast.NodeID, fs *source.FileSet) string {
	n := tree.Node(id)
	var b strings.Builder
	if r := tree.Role(id); r != ast.RoleNone {
		b.WriteString(r.String())
		b.WriteString(": ")
	}
	b.WriteString(n.Kind.String())
	if name := tree.Name(id); name != "" {
		fmt.Fprintf(&b, " %q", name)
	}
	if n.Op != ast.OpNone {
		fmt.Fprintf(&b, " op=%s", n.Op)
	}
	if n.Shape != ast.ShapeNone {
		fmt.Fprintf(&b, " shape=%s", n.Shape)
	}
	if names := n.Flags.Names(); len(names) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, " (span: %s)", formatSpan(n.Span, fs))
	return b.String()
}

// renderTree печатает поддерево с рамками ├─ └─.
func renderTree(b *strings.Builder, node *treeNode, prefix string) {
	for i, kid := range node.children {
		last := i == len(node.children)-1
		branch, next := "├─ ", "│  "
		if last {
			branch, next = "└─ ", "   "
		}
		b.WriteString(prefix)
		b.WriteString(branch)
		b.WriteString(kid.label)
		b.WriteByte('\n')
		renderTree(b, kid, prefix+next)
	}
}

// formatSpan renders "startLine:startCol-endLine:endCol", or byte offsets
// when there is no FileSet.
func formatSpan(span source.Span, fs *source.FileSet) string {
	if fs != nil {
		if f := fs.Get(span.File); f != nil {
			start, end := f.LineCol(span.Start), f.LineCol(span.End)
			return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
		}
	}
	return fmt.Sprintf("span(%d-%d)", span.Start, span.End)
}
