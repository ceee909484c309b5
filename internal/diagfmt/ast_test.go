package diagfmt

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"oxide/internal/ast"
	"oxide/internal/parser"
	"oxide/internal/source"
)

func parseTree(t *testing.T, src string) (*source.FileSet, *ast.Tree) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("tree.rs", []byte(src))
	res := parser.Parse(context.Background(), fs.Get(id), parser.Options{})
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Bag.Items())
	}
	return fs, res.Tree
}

func TestFormatASTPretty(t *testing.T) {
	fs, tree := parseTree(t, "fn add(a: i32) -> i32 { a + 1 }\n")
	var buf bytes.Buffer
	if err := FormatASTPretty(&buf, tree, fs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if !strings.HasPrefix(lines[0], "tree.rs: Module (span: 1:1-2:1)") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "└─ item: Function \"add\"") {
		t.Fatalf("item line = %q", lines[1])
	}
	for _, want := range []string{
		"├─ param: Param",
		"tail: ExprBinary op=+",
		"ret: TypePath",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	// одна строка на узел плюс заголовок
	nodes := 0
	tree.Inspect(func(ast.NodeID) bool { nodes++; return true })
	if len(lines) != nodes {
		t.Fatalf("lines = %d, nodes = %d", len(lines), nodes)
	}
}

func TestFormatASTPrettyFlags(t *testing.T) {
	fs, tree := parseTree(t, "static mut N: u8 = 0;")
	var buf bytes.Buffer
	if err := FormatASTPretty(&buf, tree, fs); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "item: StaticItem \"N\" [mut] (span: 1:1-1:22)") {
		t.Fatalf("flags not rendered:\n%s", buf.String())
	}
}

func TestFormatASTJSON(t *testing.T) {
	_, tree := parseTree(t, "enum E { A, B(u8) }")
	var buf bytes.Buffer
	if err := FormatASTJSON(&buf, tree); err != nil {
		t.Fatal(err)
	}
	var root ASTNodeOutput
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if root.Kind != "Module" || len(root.Children) != 1 {
		t.Fatalf("root = %+v", root)
	}
	enum := root.Children[0]
	if enum.Kind != "Enum" || enum.Name != "E" || enum.Role != "item" {
		t.Fatalf("enum = %+v", enum)
	}
	var shapes []string
	for _, c := range enum.Children {
		if c.Kind == "EnumVariant" {
			shapes = append(shapes, c.Shape)
		}
	}
	if strings.Join(shapes, ",") != "Unit,Tuple" {
		t.Fatalf("variant shapes = %v", shapes)
	}
}
