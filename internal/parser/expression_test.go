package parser

import (
	"testing"

	"oxide/internal/ast"
	"oxide/internal/diag"
)

func TestBinaryPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"a - b - c", "(- (- a b) c)"},
		{"a = b = c", "(= a (= b c))"},
		{"a += b * c", "(+= a (* b c))"},
		{"a || b && c", "(|| a (&& b c))"},
		{"a && b || c", "(|| (&& a b) c)"},
		{"a & b == c", "(== (& a b) c)"},
		{"a | b ^ c & d", "(| a (^ b (& c d)))"},
		{"a << b + c", "(<< a (+ b c))"},
		{"-a * b", "(* (- a) b)"},
		{"!a.b()", "(! (.b a))"},
		{"*a.b", "(* (.b a))"},
		{"&mut x", "(&mut x)"},
		{"&&x", "(& (& x))"},
		{"x as u8 as u32", "(as (as x u8) u32)"},
		{"-x as i64", "(as (- x) i64)"},
		{"a * b as f64", "(* a (as b f64))"},
		{"(a + b) * c", "(* (paren (+ a b)) c)"},
		{"a..b", "(.. a b)"},
		{"a..=b + 1", "(..= a (+ b 1))"},
		{"..", "(.. _ _)"},
		{"..n", "(.. _ n)"},
		{"i..", "(.. i _)"},
		{"x = a..b", "(= x (.. a b))"},
		{"a || b..c", "(.. (|| a b) c)"},
		{"f(a, b + 1)?", "(? (call f a (+ b 1)))"},
		{"x.0.1", "(.1 (.0 x))"},
		{"v.iter().map(g)", "(.map (.iter v) g)"},
		{"a < b", "(< a b)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree, bag, e := tailExpr(t, tt.src)
			if bag.Len() != 0 {
				t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
			}
			if got := sexpr(tree, e); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOperatorDiagnostics(t *testing.T) {
	tests := []struct {
		src  string
		code diag.Code
	}{
		{"a == b == c", diag.SynChainedComparison},
		{"a < b > c", diag.SynChainedComparison},
		{"a..b..c", diag.SynChainedRange},
		{"a..=", diag.SynExpectExpression},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, bag, _ := tailExpr(t, tt.src)
			if bag.Len() == 0 {
				t.Fatal("expected a diagnostic")
			}
			if got := bag.Items()[0].Code; got != tt.code {
				t.Errorf("code = %s, want %s (%s)", got.ID(), tt.code.ID(), diagnosticsSummary(bag))
			}
		})
	}
}

func TestGenericsVersusComparison(t *testing.T) {
	t.Run("turbofish", func(t *testing.T) {
		tree, bag, e := tailExpr(t, "f::<u8, Vec<T>>(x)")
		if bag.Len() != 0 {
			t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
		}
		if tree.Kind(e) != ast.ExprCall {
			t.Fatalf("kind = %v", tree.Kind(e))
		}
		callee := tree.ChildByRole(e, ast.RoleCallee)
		if tree.Text(callee) != "f::<u8, Vec<T>>" {
			t.Errorf("callee = %q", tree.Text(callee))
		}
		args := findFirst(tree, ast.GenericArgs)
		if !tree.Node(args).Has(ast.FlagTurbofish) {
			t.Error("generic args must be flagged as turbofish")
		}
	})

	t.Run("missing turbofish is recovered", func(t *testing.T) {
		tree, bag, e := tailExpr(t, "Vec<u8>::new()")
		if bag.Len() != 1 || bag.Items()[0].Code != diag.SynTurbofishRequired {
			t.Fatalf("diagnostics: %s", diagnosticsSummary(bag))
		}
		if bag.Items()[0].Severity != diag.SevWarning || bag.HasErrors() {
			t.Error("missing turbofish is a warning")
		}
		if len(bag.Items()[0].Fixes) == 0 {
			t.Error("expected an insert `::` fix")
		}
		if tree.Kind(e) != ast.ExprCall || tree.Text(tree.ChildByRole(e, ast.RoleCallee)) != "Vec<u8>::new" {
			t.Fatalf("got %s", sexpr(tree, e))
		}
	})

	t.Run("comparison is kept", func(t *testing.T) {
		tree, bag, e := tailExpr(t, "a < b && c > d")
		if bag.Len() != 0 {
			t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
		}
		if got := sexpr(tree, e); got != "(&& (< a b) (> c d))" {
			t.Errorf("got %s", got)
		}
	})

	t.Run("shift is not generics", func(t *testing.T) {
		tree, bag, e := tailExpr(t, "a << b")
		if bag.Len() != 0 {
			t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
		}
		if got := sexpr(tree, e); got != "(<< a b)" {
			t.Errorf("got %s", got)
		}
	})
}

func TestStructLiteralRestriction(t *testing.T) {
	tree := parseClean(t, "fn f() { if a == S {} else { S { x: 1 } }; while x {} for i in v {} match s {} }")
	ifExpr := findFirst(tree, ast.ExprIf)
	cond := tree.ChildByRole(ifExpr, ast.RoleCond)
	if got := sexpr(tree, cond); got != "(== a S)" {
		t.Errorf("if condition = %s", got)
	}
	if tree.Kind(tree.ChildByRole(ifExpr, ast.RoleThen)) != ast.Block {
		t.Error("then branch must be a block")
	}
	lit := findFirst(tree, ast.ExprStruct)
	if !lit.IsValid() || tree.Enclosing(lit, ast.ExprIf) != ifExpr {
		t.Fatal("struct literal inside else block must be allowed")
	}
	fields := tree.ChildrenByRole(lit, ast.RoleField)
	if len(fields) != 1 || tree.Name(fields[0]) != "x" {
		t.Fatalf("fields = %v", fields)
	}
	forExpr := findFirst(tree, ast.ExprFor)
	if sexpr(tree, tree.ChildByRole(forExpr, ast.RoleIter)) != "v" {
		t.Error("for iterator must stop before the body")
	}
	match := findFirst(tree, ast.ExprMatch)
	if tree.Kind(tree.ChildByRole(match, ast.RoleScrutinee)) != ast.ExprPath {
		t.Error("match scrutinee must be a path")
	}
}

func TestBlockLikeStatements(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		stmts []ast.Kind
		tail  ast.Kind
	}{
		{"if then unary", "if a {} -1", []ast.Kind{ast.ExprStmt}, ast.ExprUnary},
		{"match then method", "match x {}.len()", nil, ast.ExprMethodCall},
		{"block then try", "{ x }?", nil, ast.ExprTry},
		{"loops in a row", "loop {} while c {} for x in y {} 0", []ast.Kind{ast.ExprStmt, ast.ExprStmt, ast.ExprStmt}, ast.ExprLiteral},
		{"unsafe block tail", "unsafe { f() }", nil, ast.Block},
		{"labeled loop", "'outer: loop { break 'outer 1; }", nil, ast.ExprLoop},
		{"let else", "let Some(x) = y else { return; }; x", []ast.Kind{ast.Let}, ast.ExprPath},
		{"item in block", "fn g() {} g()", []ast.Kind{ast.Function}, ast.ExprCall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, bag := parseSource(t, "fn f() { "+tt.src+" }")
			if bag.Len() != 0 {
				t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
			}
			body := bodyOf(t, tree)
			var stmts []ast.Kind
			for _, c := range tree.Children(body) {
				if c.Role == ast.RoleStmt || c.Role == ast.RoleItem {
					stmts = append(stmts, tree.Kind(c.ID))
				}
			}
			if len(stmts) != len(tt.stmts) {
				t.Fatalf("statements = %v, want %v", stmts, tt.stmts)
			}
			for i := range stmts {
				if stmts[i] != tt.stmts[i] {
					t.Fatalf("statements = %v, want %v", stmts, tt.stmts)
				}
			}
			if got := tree.Kind(tree.ChildByRole(body, ast.RoleTail)); got != tt.tail {
				t.Errorf("tail = %v, want %v", got, tt.tail)
			}
		})
	}
}

func TestLabelsAndControlFlow(t *testing.T) {
	tree := parseClean(t, "fn f() { 'a: for x in 0..n { if x > 2 { continue 'a; } break 'a; } }")
	loop := findFirst(tree, ast.ExprFor)
	n := tree.Node(loop)
	if !n.Has(ast.FlagLabel) || tree.Name(loop) != "'a" {
		t.Fatalf("label = %q flag=%v", tree.Name(loop), n.Has(ast.FlagLabel))
	}
	if tree.Kind(tree.ChildByRole(loop, ast.RolePat)) != ast.PatIdent {
		t.Error("for pattern must be a binding")
	}
	if got := sexpr(tree, tree.ChildByRole(loop, ast.RoleIter)); got != "(.. 0 n)" {
		t.Errorf("iterator = %s", got)
	}
	cont := findFirst(tree, ast.ExprContinue)
	brk := findFirst(tree, ast.ExprBreak)
	if !cont.IsValid() || !brk.IsValid() {
		t.Fatal("missing continue/break")
	}
	if tree.Enclosing(cont, ast.ExprFor) != loop || tree.Enclosing(brk, ast.ExprFor) != loop {
		t.Error("control flow must be inside the loop")
	}
}

func TestElseIfChain(t *testing.T) {
	tree := parseClean(t, "fn f() { if a { 1 } else if b { 2 } else if let Some(x) = c { x } else { 4 } }")
	ifs := findAll(tree, ast.ExprIf)
	if len(ifs) != 3 {
		t.Fatalf("if nodes = %d", len(ifs))
	}
	for i := 0; i < 2; i++ {
		if tree.ChildByRole(ifs[i], ast.RoleElse) != ifs[i+1] {
			t.Errorf("if %d: else branch must be the next if", i)
		}
	}
	if tree.Kind(tree.ChildByRole(ifs[2], ast.RoleCond)) != ast.ExprLet {
		t.Error("third condition must be a let expression")
	}
	if tree.Kind(tree.ChildByRole(ifs[2], ast.RoleElse)) != ast.Block {
		t.Error("last else must be a block")
	}
}

func TestClosures(t *testing.T) {
	tests := []struct {
		src    string
		params int
		flags  ast.Flags
		body   ast.Kind
	}{
		{"|| 1", 0, 0, ast.ExprLiteral},
		{"|x| x + 1", 1, 0, ast.ExprBinary},
		{"|a: i32, (b, c)| a", 2, 0, ast.ExprPath},
		{"move |x| -> u8 { x }", 1, ast.FlagMove, ast.Block},
		{"async move || {}", 0, ast.FlagAsync | ast.FlagMove, ast.Block},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree, bag, e := tailExpr(t, tt.src)
			if bag.Len() != 0 {
				t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
			}
			if tree.Kind(e) != ast.ExprClosure {
				t.Fatalf("kind = %v", tree.Kind(e))
			}
			if got := len(tree.ChildrenByRole(e, ast.RoleParam)); got != tt.params {
				t.Errorf("params = %d, want %d", got, tt.params)
			}
			if !tree.Node(e).Has(tt.flags) {
				t.Errorf("flags = %v", tree.Node(e).Flags)
			}
			if got := tree.Kind(tree.ChildByRole(e, ast.RoleBody)); got != tt.body {
				t.Errorf("body = %v, want %v", got, tt.body)
			}
		})
	}
}

func TestCompoundExpressions(t *testing.T) {
	tests := []struct {
		src  string
		kind ast.Kind
	}{
		{"[1, 2, 3]", ast.ExprArray},
		{"[0u8; 16]", ast.ExprArrayRepeat},
		{"(1, \"a\", 'c')", ast.ExprTuple},
		{"(x,)", ast.ExprTuple},
		{"()", ast.ExprTuple},
		{"P { x, y: 2, ..Default::default() }", ast.ExprStruct},
		{"v[i + 1]", ast.ExprIndex},
		{"fut.await", ast.ExprAwait},
		{"return", ast.ExprReturn},
		{"async { 1 }", ast.Block},
		{"const { N * 2 }", ast.Block},
		{"vec![1, 2]", ast.MacroInvocation},
		{"x.collect::<Vec<_>>()", ast.ExprMethodCall},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree, bag, e := tailExpr(t, tt.src)
			if bag.Len() != 0 {
				t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
			}
			if got := tree.Kind(e); got != tt.kind {
				t.Errorf("kind = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestStructLiteralShorthandAndBase(t *testing.T) {
	tree, _, e := tailExpr(t, "P { x, y: 2, ..base }")
	fields := tree.ChildrenByRole(e, ast.RoleField)
	if len(fields) != 2 {
		t.Fatalf("fields = %d", len(fields))
	}
	if !tree.Node(fields[0]).Has(ast.FlagShorthand) || tree.Node(fields[1]).Has(ast.FlagShorthand) {
		t.Error("only `x` is shorthand")
	}
	if got := sexpr(tree, tree.ChildByRole(e, ast.RoleBase)); got != "base" {
		t.Errorf("base = %s", got)
	}
}
