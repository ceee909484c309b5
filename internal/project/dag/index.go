package dag

import (
	"sort"

	"oxide/internal/project"
	"oxide/internal/source"
)

type ModuleID uint32

// ModuleMeta describes one parsed file of a crate: its slash path relative
// to the crate directory and the out-of-line `mod name;` declarations it
// contains.
type ModuleMeta struct {
	Path        string
	Span        source.Span // весь файл
	ContentHash project.Digest
	Decls       []ModDecl
}

// ModDecl is a `mod name;` item. Path is the file it resolved to, or the
// preferred candidate when neither candidate exists; Alt is the other one.
type ModDecl struct {
	Name string
	Path string
	Alt  string
	Span source.Span
}

type ModuleIndex struct {
	NameToID map[string]ModuleID
	IDToName []string
}

// собрать уникальные пути, sort.Strings, раздать ID по порядку
func BuildIndex(metas []ModuleMeta) ModuleIndex {
	uniq := make(map[string]struct{}, len(metas))
	for _, meta := range metas {
		if meta.Path != "" {
			uniq[meta.Path] = struct{}{}
		}
		for _, decl := range meta.Decls {
			if decl.Path != "" {
				uniq[decl.Path] = struct{}{}
			}
		}
	}

	paths := make([]string, 0, len(uniq))
	for path := range uniq {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	nameToID := make(map[string]ModuleID, len(paths))
	for i, path := range paths {
		nameToID[path] = ModuleID(i)
	}
	return ModuleIndex{NameToID: nameToID, IDToName: paths}
}
