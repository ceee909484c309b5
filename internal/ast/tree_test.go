package ast

import (
	"slices"
	"strings"
	"testing"

	"oxide/internal/source"
	"oxide/internal/token"
)

func span(start, end uint32) source.Span {
	return source.Span{Start: start, End: end}
}

// buildSample: `mod m { const A: i32 = 1; } const A: i32 = 2;`
func buildSample(t *testing.T) (*Tree, [2]NodeID) {
	t.Helper()
	b := NewBuilder(Hints{}, nil)

	ty1 := b.NewNamed(TypePath, span(17, 20), "i32")
	v1 := b.NewNamed(ExprLiteral, span(23, 24), "1")
	c1 := b.NewNamed(ConstItem, span(8, 25), "A", C(RoleType, ty1), C(RoleValue, v1))
	mod := b.NewNamed(Module, span(0, 27), "m", C(RoleItem, c1))

	ty2 := b.NewNamed(TypePath, span(37, 40), "i32")
	v2 := b.NewNamed(ExprLiteral, span(43, 44), "2")
	c2 := b.NewNamed(ConstItem, span(28, 45), "A", C(RoleType, ty2), C(RoleValue, v2))
	b.SetDocs(c2, []token.Trivia{{Kind: token.TriviaDocLine, Text: "/// top"}})

	root := b.New(Module, span(0, 45), C(RoleItem, mod), C(RoleItem, c2), C(RoleItem, NoNodeID))
	return b.Finish(root, nil), [2]NodeID{c1, c2}
}

func TestTreeParentsAndRoles(t *testing.T) {
	tree, consts := buildSample(t)
	if tree.Name(consts[0]) != tree.Name(consts[1]) {
		t.Fatal("both consts are named A")
	}
	inner := tree.Enclosing(consts[0], Module)
	outer := tree.Enclosing(consts[1], Module)
	if inner == outer || outer != tree.Root || tree.Parent(inner) != tree.Root {
		t.Fatalf("enclosing modules: %d %d root %d", inner, outer, tree.Root)
	}
	if tree.Role(consts[0]) != RoleItem {
		t.Fatalf("role = %v", tree.Role(consts[0]))
	}
	if got := len(tree.Children(tree.Root)); got != 2 {
		t.Fatalf("invalid child must be dropped, got %d children", got)
	}
	val := tree.ChildByRole(consts[1], RoleValue)
	if tree.Name(val) != "2" || tree.Kind(val) != ExprLiteral {
		t.Fatalf("value child = %v %q", tree.Kind(val), tree.Name(val))
	}
	chain := slices.Collect(tree.Ancestors(val))
	if len(chain) != 2 || chain[0] != consts[1] || chain[1] != tree.Root {
		t.Fatalf("ancestors = %v", chain)
	}
	if docs := tree.Docs(consts[1]); len(docs) != 1 || docs[0].DocText() != "top" {
		t.Fatalf("docs = %v", docs)
	}
	if tree.CountKind(ConstItem) != 2 {
		t.Fatal("CountKind")
	}
}

func TestWalkPreOrderAndStop(t *testing.T) {
	tree, _ := buildSample(t)
	var order []string
	v := NewVisitor()
	v.Default = func(tr *Tree, id NodeID) Action {
		order = append(order, tr.Kind(id).String())
		return Continue
	}
	v.On(Module, func(tr *Tree, id NodeID) Action {
		order = append(order, "Module:"+tr.Name(id))
		return Continue
	})
	tree.Walk(v)
	want := "Module:,Module:m,ConstItem,TypePath,ExprLiteral,ConstItem,TypePath,ExprLiteral"
	if got := strings.Join(order, ","); got != want {
		t.Fatalf("order:\n got %s\nwant %s", got, want)
	}

	order = order[:0]
	v.On(ConstItem, func(tr *Tree, id NodeID) Action {
		order = append(order, "const")
		return SkipChildren
	})
	v.On(TypePath, func(*Tree, NodeID) Action { return Stop })
	tree.Walk(v)
	if got := strings.Join(order, ","); got != "Module:,Module:m,const,const" {
		t.Fatalf("skip order: %s", got)
	}
}

func TestVisitorExhaustive(t *testing.T) {
	v := NewVisitor()
	for k := InvalidKind + 1; k < Kind(KindCount); k++ {
		v.On(k, func(*Tree, NodeID) Action { return Continue })
	}
	if err := v.CheckExhaustive(); err != nil {
		t.Fatal(err)
	}
	v.On(PatOr, nil)
	if err := v.CheckExhaustive(); err == nil || !strings.Contains(err.Error(), "PatOr") {
		t.Fatalf("expected PatOr to be reported, got %v", err)
	}
}

func TestBuilderTruncate(t *testing.T) {
	b := NewBuilder(Hints{Nodes: 4, Kids: 4}, nil)
	keep := b.NewNamed(ExprPath, span(0, 1), "a")
	m := b.Mark()
	lt := b.NewNamed(TypePath, span(2, 3), "T")
	b.New(GenericArgs, span(1, 4), C(RoleGenericArg, lt))
	b.SetDocs(lt, []token.Trivia{{Kind: token.TriviaDocLine}})
	b.Truncate(m)
	if b.Len() != 1 {
		t.Fatalf("len after truncate = %d", b.Len())
	}
	lhs := b.NewNamed(ExprPath, span(2, 3), "b")
	root := b.New(ExprBinary, span(0, 3), C(RoleLHS, keep), C(RoleRHS, lhs))
	b.SetOp(root, OpLt)
	tree := b.Finish(root, nil)
	if tree.Node(root).Op != OpLt || len(tree.Children(root)) != 2 || tree.Docs(lt) != nil {
		t.Fatal("truncated nodes leaked into the tree")
	}
}

func TestNodeFlagsAndNames(t *testing.T) {
	if (Node{Flags: FlagMut | FlagRef}).Has(FlagMut|FlagUnsafe) {
		t.Fatal("Has must require every bit")
	}
	if OpRangeInclusive.String() != "..=" || ShapeStruct.String() != "Struct" || RoleScrutinee.String() != "scrutinee" {
		t.Fatal("names")
	}
	for k := InvalidKind; k < Kind(KindCount); k++ {
		if k.String() == "" {
			t.Fatalf("kind %d has no name", k)
		}
	}
	if !Block.IsExpr() || !Block.IsBlockLike() || !PatOr.IsPat() || !TypeNever.IsType() || !Empty.IsItem() {
		t.Fatal("kind groups")
	}
}
