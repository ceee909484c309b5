package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/source"
	"oxide/internal/testkit"
)

var fixtures = []string{"const_mod.rs", "enum.rs", "trait_items.rs", "result.rs"}

var brokenInputs = []string{
	"",
	"fn f() { ",
	"}}}",
	"@@@ ### fn",
	"fn f() { let x = ; let y = 2; } fn g() {}",
	"struct S { x: i32 y: i32 } fn g() {}",
	"fn f() { foo(1, 2; } fn g() {}",
	"fn f() { x = 1 y = 2; } fn g() {}",
	"fn f() { match x { a b => 1 } } fn g() {}",
	"impl<T Foo for { fn }",
	"fn f() { \"unterminated }",
	"macro_rules! m { ($x:expr) => { $x ",
	"fn f() { if { } else }",
	"trait T { fn a(&self) -> ; type X = ; }",
	"enum E { A(, B { x: }, = 3 }",
	"fn f() { let v: Vec<u8 = 1; }",
	"fn f() { a < b < c; x.; y as ; }",
	"struct S { a: i32 ",
	"fn f( ",
	"fn f() { let a = 1; g(x, ",
}

func TestParseAlwaysReturnsTree(t *testing.T) {
	for _, src := range brokenInputs {
		t.Run(src, func(t *testing.T) {
			res := parseWith(t, src, Options{})
			if res.Tree == nil || res.Bag == nil {
				t.Fatal("result must carry a tree and a bag")
			}
			if res.Tree.Kind(res.Tree.Root) != ast.Module {
				t.Fatalf("root = %v", res.Tree.Kind(res.Tree.Root))
			}
			if src != "" && !res.Bag.HasErrors() {
				t.Errorf("expected errors for %q", src)
			}
			if res.Halted {
				t.Error("no budget was exceeded")
			}
		})
	}
}

func TestSpanInvariants(t *testing.T) {
	for _, name := range fixtures {
		t.Run(name, func(t *testing.T) {
			tree, _ := parseFixture(t, name)
			if err := testkit.CheckSpanInvariants(tree); err != nil {
				t.Fatal(err)
			}
		})
	}
	for _, src := range brokenInputs {
		t.Run(src, func(t *testing.T) {
			tree, _ := parseSource(t, src)
			if err := testkit.CheckSpanInvariants(tree); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		first diag.Code
	}{
		{"missing let value", "fn f() { let x = ; let y = 2; } fn g() {}", diag.SynExpectExpression},
		{"missing semicolon", "fn f() { x = 1 y = 2; } fn g() {}", diag.SynExpectSemicolon},
		{"missing fat arrow", "fn f() { match x { a b => 1 } } fn g() {}", diag.SynExpectFatArrow},
		{"stray closer", "} fn g() {}", diag.SynUnexpectedCloseDelim},
		{"not an item", "pub 42; fn g() {}", diag.SynExpectItem},
		{"missing field comma", "struct S { x: i32 y: i32 } fn g() {}", diag.UnknownCode},
		{"unclosed call", "fn f() { foo(1, 2; } fn g() {}", diag.UnknownCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, bag := parseSource(t, tt.src)
			if !bag.HasErrors() {
				t.Fatal("expected errors")
			}
			if tt.first != diag.UnknownCode && bag.Items()[0].Code != tt.first {
				t.Errorf("first diagnostic: %s", diagnosticsSummary(bag))
			}
			found := false
			for _, fn := range findAll(tree, ast.Function) {
				if tree.Name(fn) == "g" && !tree.Node(fn).Has(ast.FlagRecovered) {
					found = true
				}
			}
			if !found {
				t.Errorf("parsing must resume at `fn g`: %s", diagnosticsSummary(bag))
			}
		})
	}
}

func TestRecoveryKeepsFollowingStatements(t *testing.T) {
	tree, bag := parseSource(t, "fn f() { let x = ; let y = 2; }")
	if bag.Len() != 1 {
		t.Fatalf("diagnostics: %s", diagnosticsSummary(bag))
	}
	lets := findAll(tree, ast.Let)
	if len(lets) != 2 {
		t.Fatalf("lets = %d", len(lets))
	}
	if got := tree.Kind(tree.ChildByRole(lets[0], ast.RoleValue)); got != ast.Error {
		t.Errorf("missing value = %v", got)
	}
	if tree.Node(lets[1]).Has(ast.FlagRecovered) {
		t.Error("second let is intact")
	}
}

func TestOneErrorPerPosition(t *testing.T) {
	_, bag := parseSource(t, "fn f(")
	seen := map[uint32]bool{}
	for _, d := range bag.Items() {
		if d.Severity != diag.SevError {
			continue
		}
		if seen[d.Primary.Start] {
			t.Fatalf("two errors at offset %d: %s", d.Primary.Start, diagnosticsSummary(bag))
		}
		seen[d.Primary.Start] = true
	}
}

func TestDepthBudget(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts Options
	}{
		{"parens", "fn f() { " + strings.Repeat("(", 10000) + "1" + strings.Repeat(")", 10000) + " }", Options{}},
		{"unary", "fn f() { " + strings.Repeat("-", 10000) + "x }", Options{}},
		{"blocks", "fn f() " + strings.Repeat("{", 40) + strings.Repeat("}", 40), Options{MaxDepth: 32}},
		{"types", "type T = " + strings.Repeat("Vec<", 500) + "u8" + strings.Repeat(">", 500) + ";", Options{}},
		{"patterns", "fn f() { let " + strings.Repeat("&", 1000) + "x = y; }", Options{MaxDepth: 64}},
		{"modules", strings.Repeat("mod m { ", 300) + strings.Repeat("}", 300), Options{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseWith(t, tt.src, tt.opts)
			if res.Bag.Len() != 1 {
				t.Fatalf("diagnostics: %s", diagnosticsSummary(res.Bag))
			}
			d := res.Bag.Items()[0]
			if d.Code != diag.SynResourceExceeded || !res.Bag.HasFatal() {
				t.Fatalf("got %s", diagnosticsSummary(res.Bag))
			}
			if !res.Halted {
				t.Error("parse must be halted")
			}
			if err := testkit.CheckSpanInvariants(res.Tree); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestDepthBudgetNotHitByWideInput(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("fn f() { if a { 0 }")
	for range 2000 {
		sb.WriteString(" else if b { 1 }")
	}
	sb.WriteString(" else { 2 } }\n")
	for range 2000 {
		sb.WriteString("fn g() { let x = 1 + 2 + 3 + 4 + 5 + 6 + 7 + 8; }\n")
	}
	src := sb.String()
	tree, bag := parseSource(t, src)
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %s", diagnosticsSummary(bag))
	}
	if got := tree.CountKind(ast.ExprIf); got != 2001 {
		t.Errorf("if nodes = %d", got)
	}
	if got := tree.CountKind(ast.Function); got != 2001 {
		t.Errorf("functions = %d", got)
	}
}

func TestTokenBudget(t *testing.T) {
	src := "fn f() { 1 + 2 + 3 + 4 + 5 + 6 + 7 + 8; } fn g() {}"
	res := parseWith(t, src, Options{MaxTokens: 10})
	if !res.Halted || !res.Bag.HasFatal() {
		t.Fatalf("halted=%v diagnostics: %s", res.Halted, diagnosticsSummary(res.Bag))
	}
	if res.Bag.Len() != 1 {
		t.Errorf("diagnostics after abort: %s", diagnosticsSummary(res.Bag))
	}
	for _, fn := range findAll(res.Tree, ast.Function) {
		if res.Tree.Name(fn) == "g" {
			t.Error("nothing past the budget may be parsed")
		}
	}
	if err := testkit.CheckSpanInvariants(res.Tree); err != nil {
		t.Fatal(err)
	}
}

func TestMaxErrors(t *testing.T) {
	src := strings.Repeat("fn f() { let = ; } ", 50)
	res := parseWith(t, src, Options{MaxErrors: 3})
	if res.Bag.Len() == 0 || res.Bag.Len() > 3 {
		t.Fatalf("expected 1..3 diagnostics, got %d", res.Bag.Len())
	}
	if got := res.Tree.CountKind(ast.Function); got != 50 {
		t.Errorf("functions = %d: parsing must go on after the error cap", got)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fs := source.NewFileSet()
	id := fs.AddVirtual("c.rs", []byte(strings.Repeat("fn f() {}\n", 100)))
	res := Parse(ctx, fs.Get(id), Options{})
	if res.Tree == nil {
		t.Fatal("tree must not be nil")
	}
	if !res.Halted {
		t.Error("cancelled parse must be halted")
	}
	if got := res.Tree.CountKind(ast.Function); got == 100 {
		t.Error("cancelled parse must stop early")
	}
}

type nodeRow struct {
	Kind  string
	Span  source.Span
	Name  string
	Role  ast.Role
	Flags ast.Flags
	Op    ast.Op
}

func dumpRows(tree *ast.Tree) []nodeRow {
	var rows []nodeRow
	tree.Inspect(func(id ast.NodeID) bool {
		n := tree.Node(id)
		rows = append(rows, nodeRow{
			Kind:  n.Kind.String(),
			Span:  n.Span,
			Name:  tree.Name(id),
			Role:  tree.Role(id),
			Flags: n.Flags,
			Op:    n.Op,
		})
		return true
	})
	return rows
}

func TestDeterminism(t *testing.T) {
	inputs := append([]string{}, brokenInputs...)
	for _, name := range fixtures {
		data, err := os.ReadFile(filepath.Join("testdata", name))
		if err != nil {
			t.Fatal(err)
		}
		inputs = append(inputs, string(data))
	}
	for i, src := range inputs {
		first, bag1 := parseSource(t, src)
		second, bag2 := parseSource(t, src)
		if diff := cmp.Diff(dumpRows(first), dumpRows(second)); diff != "" {
			t.Errorf("input %d: trees differ (-first +second):\n%s", i, diff)
		}
		if diff := cmp.Diff(bag1.Items(), bag2.Items()); diff != "" {
			t.Errorf("input %d: diagnostics differ (-first +second):\n%s", i, diff)
		}
	}
}

type yamlCase struct {
	Name  string         `yaml:"name"`
	Src   string         `yaml:"src"`
	Diags []string       `yaml:"diags"`
	Kinds map[string]int `yaml:"kinds"`
}

func kindByName() map[string]ast.Kind {
	out := make(map[string]ast.Kind, ast.KindCount)
	for k := ast.Kind(1); int(k) < ast.KindCount; k++ {
		out[k.String()] = k
	}
	return out
}

func TestYAMLCases(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "cases.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var cases []yamlCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		t.Fatalf("cases.yaml: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("no cases")
	}
	kinds := kindByName()
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			tree, bag := parseSource(t, tc.Src)
			got := []string{}
			for _, d := range bag.Items() {
				got = append(got, d.Code.ID())
			}
			want := tc.Diags
			if want == nil {
				want = []string{}
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("diagnostics (-want +got):\n%s\n%s", diff, diagnosticsSummary(bag))
			}
			for name, n := range tc.Kinds {
				k, ok := kinds[name]
				if !ok {
					t.Fatalf("unknown kind %q", name)
				}
				if c := tree.CountKind(k); c != n {
					t.Errorf("%s count = %d, want %d", name, c, n)
				}
			}
			if err := testkit.CheckSpanInvariants(tree); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestUnclosedGroupAtEOFReportsOnce(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"block", "fn f() { let a = 1; let b = 2"},
		{"struct body", "struct S { a: i32 "},
		{"fn params", "fn f( "},
		{"call args", "fn f() { g(a, b "},
		{"macro rules", "macro_rules! m { ($x:expr) => { $x } "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, bag := parseSource(t, tt.src)
			if bag.Len() != 1 || bag.Items()[0].Code != diag.SynUnclosedDelimiter {
				t.Fatalf("want a single unclosed delimiter, got %s", diagnosticsSummary(bag))
			}
			end := tree.File.Len()
			reaches := false
			for _, id := range findAll(tree, ast.Error) {
				reaches = reaches || tree.Span(id).End == end
			}
			if !reaches {
				t.Errorf("no Error node reaches end of input %d", end)
			}
			if err := testkit.CheckSpanInvariants(tree); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestMissingSemicolonAtEOFStillReported(t *testing.T) {
	_, bag := parseSource(t, "const X: i32 = 1")
	if bag.Len() != 1 || bag.Items()[0].Code != diag.SynExpectSemicolon {
		t.Fatalf("got %s", diagnosticsSummary(bag))
	}
	if len(bag.Items()[0].Fixes) != 1 {
		t.Fatal("missing `;` fix")
	}
}
