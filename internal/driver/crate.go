package driver

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"

	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/project"
	"oxide/internal/project/dag"
	"oxide/internal/source"
	"oxide/internal/trace"
)

// CrateModule is one file of the crate module tree.
type CrateModule struct {
	// Path относительно каталога корневого файла, через '/'
	Path string
	// Name: crate::net::tcp
	Name   string
	File   *source.File
	Tree   *ast.Tree
	Bag    *diag.Bag
	Halted bool
	// Hash: содержимое файла и всех дочерних модулей; нули при цикле
	Hash project.Digest
}

type CrateResult struct {
	FileSet *source.FileSet
	Root    *CrateModule
	// Modules: родители раньше детей; при цикле порядок обнаружения
	Modules []*CrateModule
	Cyclic  bool
}

// Bag сливает диагностики всех модулей в один отсортированный Bag.
func (r *CrateResult) Bag() *diag.Bag {
	total := 0
	for _, m := range r.Modules {
		total += m.Bag.Len()
	}
	out := diag.NewBag(max(total, 1))
	for _, m := range r.Modules {
		out.Merge(m.Bag)
	}
	out.Sort()
	return out
}

func (r *CrateResult) HasErrors() bool {
	return slices.ContainsFunc(r.Modules, func(m *CrateModule) bool { return m.Bag.HasErrors() })
}

// pendingModule: файл, найденный по `mod name;`, но ещё не разобранный
type pendingModule struct {
	path string
	name string
	id   source.FileID
	// root: корневой файл ведёт себя как mod.rs
	root bool
}

// modDeclRef: `mod name;` внутри файла вместе с цепочкой inline-модулей над ним
type modDeclRef struct {
	name   string
	inline []string
	span   source.Span
}

// ParseCrate разбирает корневой файл крейта и все файлы, на которые
// ссылаются его `mod name;`, волна за волной. Файлы одной волны
// разбираются параллельно.
func ParseCrate(ctx context.Context, rootPath string, opts Options) (*CrateResult, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(abs)
	fs := source.NewFileSetWithBase(dir)

	var rootID source.FileID
	opts.phase("load", func() { rootID, err = fs.Load(abs) })
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", rootPath, err)
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "crate:"+filepath.Base(abs), trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpan(ctx, span)

	res := &CrateResult{FileSet: fs}
	var metas []dag.ModuleMeta
	seen := map[string]bool{filepath.Base(abs): true}
	wave := []pendingModule{{path: filepath.Base(abs), name: "crate", id: rootID, root: true}}

	for len(wave) > 0 {
		parsed := make([]*CrateModule, len(wave))
		names := make([]string, len(wave))
		for i, p := range wave {
			names[i] = p.path
		}
		err := runFiles(ctx, &opts, StageParse, names, func(ctx context.Context, i int) outcome {
			p := wave[i]
			pr := parseLoaded(ctx, fs, fs.Get(p.id), opts)
			parsed[i] = &CrateModule{
				Path:   p.path,
				Name:   p.name,
				File:   pr.File,
				Tree:   pr.Tree,
				Bag:    pr.Bag,
				Halted: pr.Halted,
			}
			return outcome{diagnostics: pr.Bag.Len(), failed: pr.Bag.HasErrors()}
		})
		if err != nil {
			span.End("cancelled")
			return nil, err
		}

		// загрузка следующей волны идёт последовательно: FileSet не потокобезопасен
		var next []pendingModule
		for i, m := range parsed {
			meta := dag.ModuleMeta{
				Path:        m.Path,
				Span:        m.File.Span(),
				ContentHash: project.Digest(m.File.Hash),
			}
			for _, ref := range moduleDecls(m.Tree) {
				decl := resolveDecl(dir, wave[i], ref, m.Bag)
				meta.Decls = append(meta.Decls, decl)
				if seen[decl.Path] || !isFile(filepath.Join(dir, filepath.FromSlash(decl.Path))) {
					continue
				}
				seen[decl.Path] = true
				var id source.FileID
				var lerr error
				opts.phase("load", func() { id, lerr = fs.Load(filepath.Join(dir, filepath.FromSlash(decl.Path))) })
				if lerr != nil {
					diag.ReportError(diag.BagReporter{Bag: m.Bag}, diag.ProjUnreadableFile, ref.span,
						fmt.Sprintf("cannot read module file %s: %v", decl.Path, lerr)).Emit()
					meta.Decls = meta.Decls[:len(meta.Decls)-1]
					continue
				}
				next = append(next, pendingModule{
					path: decl.Path,
					name: qualifiedName(m.Name, ref),
					id:   id,
				})
			}
			metas = append(metas, meta)
			res.Modules = append(res.Modules, m)
		}
		wave = next
	}
	res.Root = res.Modules[0]

	opts.phase("modules", func() { linkModules(res, metas) })
	for _, m := range res.Modules {
		m.Bag.Sort()
	}
	span.WithExtra("modules", fmt.Sprint(len(res.Modules))).End("")
	return res, nil
}

// linkModules строит граф файлов, сообщает о пропущенных, повторных и
// циклических объявлениях, считает хеши и упорядочивает модули.
func linkModules(res *CrateResult, metas []dag.ModuleMeta) {
	idx := dag.BuildIndex(metas)
	byPath := make(map[string]*CrateModule, len(res.Modules))
	nodes := make([]dag.ModuleNode, len(metas))
	for i, meta := range metas {
		m := res.Modules[i]
		byPath[m.Path] = m
		nodes[i] = dag.ModuleNode{Meta: meta, Reporter: diag.BagReporter{Bag: m.Bag}}
	}

	g, slots := dag.BuildGraph(idx, nodes)
	// Broken считается после BuildGraph: пропавший файл тоже ошибка модуля
	for i := range slots {
		m, ok := byPath[slots[i].Meta.Path]
		if !ok || !slots[i].Present {
			continue
		}
		slots[i].Broken, slots[i].FirstErr = firstError(m.Bag)
	}

	topo := dag.ToposortKahn(g)
	res.Cyclic = topo.Cyclic
	dag.ReportCycles(idx, slots, topo)
	dag.ReportBrokenChildren(idx, slots)
	ComputeModuleHashes(g, slots, topo)

	for i := range slots {
		if m, ok := byPath[slots[i].Meta.Path]; ok {
			m.Hash = slots[i].Hash
		}
	}
	if topo.Cyclic {
		return
	}
	ordered := make([]*CrateModule, 0, len(res.Modules))
	for _, id := range topo.Order {
		if m, ok := byPath[idx.IDToName[int(id)]]; ok {
			ordered = append(ordered, m)
		}
	}
	res.Modules = ordered
}

func firstError(bag *diag.Bag) (bool, *diag.Diagnostic) {
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			return true, &d
		}
	}
	return false, nil
}

// moduleDecls collects out-of-line `mod name;` items in source order.
func moduleDecls(tree *ast.Tree) []modDeclRef {
	var out []modDeclRef
	tree.Inspect(func(id ast.NodeID) bool {
		if id == tree.Root || tree.Kind(id) != ast.Module {
			return true
		}
		n := tree.Node(id)
		if !n.Has(ast.FlagNoBody) {
			return true
		}
		name := tree.Name(id)
		if name == "" {
			// имя не разобралось, искать нечего
			return false
		}
		// `mod` внутри тела функции не задаёт файлов
		if tree.Enclosing(id, ast.Function).IsValid() {
			return false
		}
		ref := modDeclRef{name: name, span: n.Span}
		for p := range tree.Ancestors(id) {
			if p != tree.Root && tree.Kind(p) == ast.Module {
				ref.inline = append(ref.inline, tree.Name(p))
			}
		}
		slices.Reverse(ref.inline)
		out = append(out, ref)
		return false
	})
	return out
}

// moduleDir: каталог дочерних модулей файла. Для корня и mod.rs это каталог
// самого файла, для a/b.rs - a/b.
func moduleDir(p pendingModule) string {
	if p.root || path.Base(p.path) == "mod.rs" {
		return path.Dir(p.path)
	}
	return p.path[:len(p.path)-len(path.Ext(p.path))]
}

// resolveDecl выбирает name.rs или name/mod.rs. Если есть оба файла,
// сообщает о неоднозначности и берёт name.rs.
func resolveDecl(dir string, owner pendingModule, ref modDeclRef, bag *diag.Bag) dag.ModDecl {
	base := path.Join(append([]string{moduleDir(owner)}, ref.inline...)...)
	primary := path.Join(base, ref.name+".rs")
	alt := path.Join(base, ref.name, "mod.rs")

	hasPrimary := isFile(filepath.Join(dir, filepath.FromSlash(primary)))
	hasAlt := isFile(filepath.Join(dir, filepath.FromSlash(alt)))
	switch {
	case hasPrimary && hasAlt:
		diag.ReportError(diag.BagReporter{Bag: bag}, diag.ProjAmbiguousModule, ref.span,
			fmt.Sprintf("file for module `%s` found at both %s and %s", ref.name, primary, alt)).
			WithNote(ref.span, "delete or rename one of them").Emit()
	case hasAlt:
		primary, alt = alt, primary
	}
	return dag.ModDecl{Name: ref.name, Path: primary, Alt: alt, Span: ref.span}
}

func qualifiedName(parent string, ref modDeclRef) string {
	name := parent
	for _, seg := range ref.inline {
		name += "::" + seg
	}
	return name + "::" + ref.name
}

func isFile(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}
