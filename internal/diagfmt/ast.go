package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"oxide/internal/ast"
	"oxide/internal/source"
)

type ASTNodeOutput struct {
	Kind     string          `json:"kind"`
	Role     string          `json:"role,omitempty"`
	Name     string          `json:"name,omitempty"`
	Op       string          `json:"op,omitempty"`
	Shape    string          `json:"shape,omitempty"`
	Flags    []string        `json:"flags,omitempty"`
	Span     source.Span     `json:"span"`
	Text     string          `json:"text,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

// FormatASTPretty prints the tree with one node per line.
func FormatASTPretty(w io.Writer, tree *ast.Tree, fs *source.FileSet) error {
	if tree == nil || tree.File == nil {
		return fmt.Errorf("nil tree")
	}
	header := tree.File.Path
	if fs != nil {
		header = tree.File.FormatPath("auto", fs.BaseDir())
	}
	root := buildTreeNode(tree, tree.Root, fs)

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", header, root.label)
	renderTree(&b, root, "")
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatASTJSON writes the tree as nested objects. Leaves carry their
// source text.
func FormatASTJSON(w io.Writer, tree *ast.Tree) error {
	if tree == nil || tree.File == nil {
		return fmt.Errorf("nil tree")
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildASTOutput(tree, tree.Root))
}

func BuildASTOutput(tree *ast.Tree, id ast.NodeID) ASTNodeOutput {
	n := tree.Node(id)
	out := ASTNodeOutput{
		Kind:  n.Kind.String(),
		Role:  tree.Role(id).String(),
		Name:  tree.Name(id),
		Shape: n.Shape.String(),
		Flags: n.Flags.Names(),
		Span:  n.Span,
	}
	if n.Op != ast.OpNone {
		out.Op = n.Op.String()
	}
	kids := tree.Children(id)
	if len(kids) == 0 {
		out.Text = tree.Text(id)
	}
	for _, kid := range kids {
		out.Children = append(out.Children, BuildASTOutput(tree, kid.ID))
	}
	return out
}
