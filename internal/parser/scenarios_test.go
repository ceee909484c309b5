package parser

import (
	"strings"
	"testing"

	"oxide/internal/ast"
	"oxide/internal/diag"
)

func TestConstInNestedModule(t *testing.T) {
	tree, bag := parseFixture(t, "const_mod.rs")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	consts := findAll(tree, ast.ConstItem)
	if len(consts) != 2 {
		t.Fatalf("expected 2 const items, got %d", len(consts))
	}
	if tree.Name(consts[0]) != "PUBLIC_CONST" || tree.Name(consts[1]) != "PUBLIC_CONST" {
		t.Fatalf("names = %q, %q", tree.Name(consts[0]), tree.Name(consts[1]))
	}
	outer := tree.Enclosing(consts[0], ast.Module)
	inner := tree.Enclosing(consts[1], ast.Module)
	if outer == inner {
		t.Fatal("consts must live in different modules")
	}
	if outer != tree.Root || tree.Name(inner) != "my_module" {
		t.Fatalf("enclosing modules: outer=%d root=%d inner=%q", outer, tree.Root, tree.Name(inner))
	}
	if got := tree.CountKind(ast.Empty); got != 1 {
		t.Fatalf("expected one empty item, got %d", got)
	}
	def := findFirst(tree, ast.MacroDef)
	if tree.Name(def) != "complex_macro" {
		t.Fatalf("macro def name = %q", tree.Name(def))
	}
	attr := findFirst(tree, ast.Attribute)
	if !tree.Node(attr).Has(ast.FlagInner) || tree.Name(attr) != "allow" {
		t.Fatalf("attribute = %q inner=%v", tree.Name(attr), tree.Node(attr).Has(ast.FlagInner))
	}
}

func TestEnumVariantShapes(t *testing.T) {
	tree, bag := parseFixture(t, "enum.rs")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	enums := findAll(tree, ast.Enum)
	if len(enums) != 1 || tree.Name(enums[0]) != "Message" {
		t.Fatalf("expected enum Message, got %d enums", len(enums))
	}
	variants := tree.ChildrenByRole(enums[0], ast.RoleMember)
	want := []struct {
		name  string
		shape ast.Shape
	}{
		{"Quit", ast.ShapeUnit},
		{"Move", ast.ShapeStruct},
		{"Write", ast.ShapeTuple},
		{"ChangeColor", ast.ShapeTuple},
	}
	if len(variants) != len(want) {
		t.Fatalf("expected %d variants, got %d", len(want), len(variants))
	}
	for i, v := range variants {
		if tree.Kind(v) != ast.EnumVariant {
			t.Fatalf("member %d is %v", i, tree.Kind(v))
		}
		if tree.Name(v) != want[i].name || tree.Node(v).Shape != want[i].shape {
			t.Errorf("variant %d = %s %v, want %s %v", i, tree.Name(v), tree.Node(v).Shape, want[i].name, want[i].shape)
		}
	}
	if got := len(tree.ChildrenByRole(variants[3], ast.RoleField)); got != 3 {
		t.Errorf("ChangeColor fields = %d", got)
	}

	match := findFirst(tree, ast.ExprMatch)
	arms := tree.ChildrenByRole(match, ast.RoleArm)
	if len(arms) != 4 {
		t.Fatalf("expected 4 arms, got %d", len(arms))
	}
	wantPats := []ast.Kind{ast.PatPath, ast.PatStruct, ast.PatTupleStruct, ast.PatTupleStruct}
	for i, arm := range arms {
		if got := tree.Kind(tree.ChildByRole(arm, ast.RolePat)); got != wantPats[i] {
			t.Errorf("arm %d pattern = %v, want %v", i, got, wantPats[i])
		}
	}
}

func TestTraitMembersInOrder(t *testing.T) {
	tree, bag := parseFixture(t, "trait_items.rs")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	trait := findFirst(tree, ast.Trait)
	n := tree.Node(trait)
	if tree.Name(trait) != "MyTrait" || !n.Has(ast.FlagUnsafe) {
		t.Fatalf("trait %q unsafe=%v", tree.Name(trait), n.Has(ast.FlagUnsafe))
	}
	members := childKinds(tree, trait, ast.RoleMember)
	want := []ast.Kind{ast.AssociatedType, ast.Function, ast.Function, ast.AssociatedConst, ast.Impl}
	if len(members) != len(want) {
		t.Fatalf("members = %v, want %v", members, want)
	}
	for i := range want {
		if members[i] != want[i] {
			t.Fatalf("members = %v, want %v", members, want)
		}
	}
	fns := tree.ChildrenByRole(trait, ast.RoleMember)[1:3]
	for _, fn := range fns {
		if !tree.Node(fn).Has(ast.FlagNoBody) {
			t.Errorf("fn %s must be a signature", tree.Name(fn))
		}
	}
	if got := len(tree.ChildrenByRole(trait, ast.RoleBound)); got != 3 {
		t.Errorf("supertrait bounds = %d", got)
	}
	where := tree.ChildByRole(trait, ast.RoleWhere)
	if got := tree.CountKind(ast.WherePredicate); !where.IsValid() || got != 2 {
		t.Errorf("where predicates = %d", got)
	}
	impl := tree.ChildrenByRole(trait, ast.RoleMember)[4]
	if tree.Parent(impl) != trait {
		t.Error("nested impl must be a child of the trait")
	}
}

func TestTryOnMethodCall(t *testing.T) {
	tree, bag := parseFixture(t, "result.rs")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	found := false
	for _, stmt := range findAll(tree, ast.ExprStmt) {
		val := tree.ChildByRole(stmt, ast.RoleValue)
		if tree.Kind(val) != ast.ExprTry {
			continue
		}
		call := tree.ChildByRole(val, ast.RoleOperand)
		if tree.Kind(call) == ast.ExprMethodCall && tree.Name(call) == "read_to_string" {
			found = true
			arg := tree.ChildByRole(call, ast.RoleArg)
			if tree.Kind(arg) != ast.ExprUnary || tree.Node(arg).Op != ast.OpRefMut {
				t.Errorf("argument = %v %v", tree.Kind(arg), tree.Node(arg).Op)
			}
		}
	}
	if !found {
		t.Fatal("no `read_to_string(...)?` statement found")
	}
	if got := tree.CountKind(ast.Use); got != 2 {
		t.Errorf("use items = %d", got)
	}
}

func TestUnclosedBraceAtEOF(t *testing.T) {
	src := "fn f() { "
	tree, bag := parseSource(t, src)
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %s", diagnosticsSummary(bag))
	}
	d := bag.Items()[0]
	if d.Code != diag.SynUnclosedDelimiter || d.Severity != diag.SevError {
		t.Fatalf("got %s", diagnosticsSummary(bag))
	}
	errs := findAll(tree, ast.Error)
	if len(errs) == 0 {
		t.Fatal("expected an Error node")
	}
	end := tree.File.Len()
	reaches := false
	for _, id := range errs {
		if tree.Span(id).End == end {
			reaches = true
		}
	}
	if !reaches {
		t.Fatalf("no Error node spans to end of input (%d)", end)
	}
	fn := findFirst(tree, ast.Function)
	if tree.Span(fn).End != end || !tree.Node(bodyOf(t, tree)).Has(ast.FlagRecovered) {
		t.Fatalf("function span %v must reach end of input", tree.Span(fn))
	}
}

func TestMacroDefinitionIsOpaque(t *testing.T) {
	src := `macro_rules! nested {
    ($x:expr) => {{ let y = { $x }; y }};
    () => { nested!(0) };
}

fn main() {
    let v = nested!(1);
    nested! { }
}
`
	tree := parseClean(t, src)
	def := findFirst(tree, ast.MacroDef)
	if tree.Name(def) != "nested" {
		t.Fatalf("macro name = %q", tree.Name(def))
	}
	rules := tree.ChildrenByRole(def, ast.RoleRule)
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	pairs := map[byte]byte{'(': ')', '[': ']', '{': '}'}
	for i, rule := range rules {
		for _, role := range []ast.Role{ast.RoleMatcher, ast.RoleTranscriber} {
			text := tree.Text(tree.ChildByRole(rule, role))
			if len(text) < 2 || pairs[text[0]] != text[len(text)-1] {
				t.Errorf("rule %d %v is not balanced: %q", i, role, text)
			}
		}
	}
	if text := tree.Text(tree.ChildByRole(rules[0], ast.RoleTranscriber)); text != "{{ let y = { $x }; y }}" {
		t.Errorf("transcriber = %q", text)
	}

	calls := findAll(tree, ast.MacroInvocation)
	if len(calls) != 2 {
		t.Fatalf("expected 2 invocations outside the definition, got %d", len(calls))
	}
	for _, call := range calls {
		if tree.Name(call) != "nested" {
			t.Errorf("invocation name = %q", tree.Name(call))
		}
		if tree.Enclosing(call, ast.MacroDef).IsValid() {
			t.Error("transcriber content must not be parsed")
		}
	}
	if strings.Contains(tree.Text(calls[0]), "let y") {
		t.Error("invocation must not be expanded")
	}
}
