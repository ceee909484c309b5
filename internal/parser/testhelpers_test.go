package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/source"
)

// diagnosticsSummary formats diagnostics for error messages.
func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil || bag.Len() == 0 {
		return "<none>"
	}
	var sb strings.Builder
	for i, d := range bag.Items() {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString("[")
		sb.WriteString(d.Code.ID())
		sb.WriteString("] ")
		sb.WriteString(d.Message)
	}
	return sb.String()
}

func parseWith(t *testing.T, src string, opts Options) Result {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rs", []byte(src))
	return Parse(context.Background(), fs.Get(id), opts)
}

// parseSource parses src and returns the tree with its diagnostics.
func parseSource(t *testing.T, src string) (*ast.Tree, *diag.Bag) {
	t.Helper()
	res := parseWith(t, src, Options{})
	if res.Tree == nil {
		t.Fatal("parse returned nil tree")
	}
	return res.Tree, res.Bag
}

// parseClean parses src and fails on any diagnostic.
func parseClean(t *testing.T, src string) *ast.Tree {
	t.Helper()
	tree, bag := parseSource(t, src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics for %q: %s", src, diagnosticsSummary(bag))
	}
	return tree
}

func parseFixture(t *testing.T, name string) (*ast.Tree, *diag.Bag) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return parseSource(t, string(data))
}

// bodyOf returns the body block of the first function in the tree.
func bodyOf(t *testing.T, tree *ast.Tree) ast.NodeID {
	t.Helper()
	fn := findFirst(tree, ast.Function)
	body := tree.ChildByRole(fn, ast.RoleBody)
	if !body.IsValid() {
		t.Fatal("function has no body")
	}
	return body
}

// tailExpr parses `fn f() { src }` and returns the tail expression.
func tailExpr(t *testing.T, src string) (*ast.Tree, *diag.Bag, ast.NodeID) {
	t.Helper()
	tree, bag := parseSource(t, "fn f() { "+src+" }")
	return tree, bag, tree.ChildByRole(bodyOf(t, tree), ast.RoleTail)
}

func findFirst(tree *ast.Tree, kind ast.Kind) ast.NodeID {
	found := ast.NoNodeID
	tree.Inspect(func(id ast.NodeID) bool {
		if found.IsValid() {
			return false
		}
		if tree.Kind(id) == kind {
			found = id
			return false
		}
		return true
	})
	return found
}

func findAll(tree *ast.Tree, kind ast.Kind) []ast.NodeID {
	var out []ast.NodeID
	tree.Inspect(func(id ast.NodeID) bool {
		if tree.Kind(id) == kind {
			out = append(out, id)
		}
		return true
	})
	return out
}

func childKinds(tree *ast.Tree, id ast.NodeID, role ast.Role) []ast.Kind {
	var out []ast.Kind
	for _, kid := range tree.ChildrenByRole(id, role) {
		out = append(out, tree.Kind(kid))
	}
	return out
}

// sexpr renders an expression compactly: operators as `(op lhs rhs)`,
// leaves as source text.
func sexpr(tree *ast.Tree, id ast.NodeID) string {
	if !id.IsValid() {
		return "_"
	}
	n := tree.Node(id)
	switch n.Kind {
	case ast.ExprLiteral, ast.ExprPath:
		return tree.Text(id)
	case ast.ExprBinary, ast.ExprAssign, ast.ExprRange:
		return "(" + n.Op.String() + " " + sexpr(tree, tree.ChildByRole(id, ast.RoleLHS)) +
			" " + sexpr(tree, tree.ChildByRole(id, ast.RoleRHS)) + ")"
	case ast.ExprUnary:
		return "(" + n.Op.String() + " " + sexpr(tree, tree.ChildByRole(id, ast.RoleOperand)) + ")"
	case ast.ExprCast:
		return "(as " + sexpr(tree, tree.ChildByRole(id, ast.RoleLHS)) + " " + tree.Text(tree.ChildByRole(id, ast.RoleType)) + ")"
	case ast.ExprParen:
		return "(paren " + sexpr(tree, tree.ChildByRole(id, ast.RoleOperand)) + ")"
	case ast.ExprTry:
		return "(? " + sexpr(tree, tree.ChildByRole(id, ast.RoleOperand)) + ")"
	case ast.ExprField:
		return "(." + tree.Name(id) + " " + sexpr(tree, tree.ChildByRole(id, ast.RoleOperand)) + ")"
	case ast.ExprCall:
		parts := []string{"call", sexpr(tree, tree.ChildByRole(id, ast.RoleCallee))}
		for _, a := range tree.ChildrenByRole(id, ast.RoleArg) {
			parts = append(parts, sexpr(tree, a))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case ast.ExprMethodCall:
		parts := []string{"." + tree.Name(id), sexpr(tree, tree.ChildByRole(id, ast.RoleReceiver))}
		for _, a := range tree.ChildrenByRole(id, ast.RoleArg) {
			parts = append(parts, sexpr(tree, a))
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return n.Kind.String()
}
