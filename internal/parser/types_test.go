package parser

import (
	"testing"

	"oxide/internal/ast"
)

func paramType(t *testing.T, ty string) (*ast.Tree, ast.NodeID) {
	t.Helper()
	tree := parseClean(t, "fn f(a: "+ty+") {}")
	param := findFirst(tree, ast.Param)
	return tree, tree.ChildByRole(param, ast.RoleType)
}

func TestTypeKinds(t *testing.T) {
	tests := []struct {
		src   string
		kind  ast.Kind
		flags ast.Flags
	}{
		{"i32", ast.TypePath, 0},
		{"std::vec::Vec<Vec<u8>>", ast.TypePath, 0},
		{"<T as Iterator>::Item", ast.TypePath, 0},
		{"&'a mut [u8]", ast.TypeRef, ast.FlagMut},
		{"&&str", ast.TypeRef, 0},
		{"*const T", ast.TypePtr, ast.FlagConst},
		{"*mut u8", ast.TypePtr, ast.FlagMut},
		{"(i32, bool)", ast.TypeTuple, 0},
		{"(T)", ast.TypeTuple, ast.FlagParen},
		{"()", ast.TypeTuple, 0},
		{"[u8; 4]", ast.TypeArray, 0},
		{"[u8]", ast.TypeSlice, 0},
		{"fn(i32) -> i32", ast.TypeFn, 0},
		{"unsafe extern \"C\" fn(*const u8, ...)", ast.TypeFn, ast.FlagUnsafe | ast.FlagExtern},
		{"impl Fn(u8) -> u8 + Send", ast.TypeImplTrait, 0},
		{"Box<dyn Trait + 'static>", ast.TypePath, 0},
		{"&dyn for<'b> Fn(&'b u8)", ast.TypeRef, 0},
		{"!", ast.TypeNever, 0},
		{"_", ast.TypeInfer, 0},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree, ty := paramType(t, tt.src)
			n := tree.Node(ty)
			if n.Kind != tt.kind {
				t.Fatalf("kind = %v, want %v", n.Kind, tt.kind)
			}
			if !n.Has(tt.flags) {
				t.Errorf("flags = %v, want %v", n.Flags, tt.flags)
			}
			if got := tree.Text(ty); got != tt.src {
				t.Errorf("span text = %q", got)
			}
		})
	}
}

func TestTypeStructure(t *testing.T) {
	t.Run("impl trait bounds", func(t *testing.T) {
		tree, ty := paramType(t, "impl Fn(u8) -> u8 + Send")
		if got := len(tree.ChildrenByRole(ty, ast.RoleBound)); got != 2 {
			t.Fatalf("bounds = %d", got)
		}
	})

	t.Run("nested generics split >>", func(t *testing.T) {
		tree, _ := paramType(t, "Vec<Vec<u8>>")
		if got := tree.CountKind(ast.GenericArgs); got != 2 {
			t.Fatalf("generic arg lists = %d", got)
		}
	})

	t.Run("associated type binding", func(t *testing.T) {
		tree := parseClean(t, "fn f() -> impl Iterator<Item = u8> + '_ {}")
		fn := findFirst(tree, ast.Function)
		ret := tree.ChildByRole(fn, ast.RoleRet)
		if tree.Kind(ret) != ast.TypeImplTrait {
			t.Fatalf("return type = %v", tree.Kind(ret))
		}
		binding := findFirst(tree, ast.AssocBinding)
		if tree.Name(binding) != "Item" {
			t.Errorf("binding = %q", tree.Name(binding))
		}
	})

	t.Run("array length is an expression", func(t *testing.T) {
		tree, ty := paramType(t, "[u8; N * 2]")
		if got := tree.Kind(tree.ChildByRole(ty, ast.RoleLen)); got != ast.ExprBinary {
			t.Fatalf("length = %v", got)
		}
	})
}

func TestGenericParamsAndWhere(t *testing.T) {
	src := "fn f<'a, T: Clone + 'a, const N: usize = 3>(x: &'a [T; N]) -> T where T: Default, for<'b> &'b T: Copy {}"
	tree := parseClean(t, src)
	fn := findFirst(tree, ast.Function)
	generics := tree.ChildByRole(fn, ast.RoleGenerics)
	kinds := childKinds(tree, generics, ast.RoleParam)
	want := []ast.Kind{ast.LifetimeParam, ast.TypeParam, ast.ConstParam}
	if len(kinds) != len(want) {
		t.Fatalf("generic params = %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("generic params = %v, want %v", kinds, want)
		}
	}
	where := tree.ChildByRole(fn, ast.RoleWhere)
	if got := len(tree.ChildrenByRole(where, ast.RoleItem)); got != 2 {
		t.Fatalf("where predicates = %d", got)
	}
}
