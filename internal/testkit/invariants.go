package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"oxide/internal/ast"
)

// CheckSpanInvariants runs the structural invariants every parse result must
// hold, even for broken input:
// 1) the root is a Module covering the whole file
// 2) every reachable node has a span inside the file content
// 3) every child span is contained in its parent span
// 4) siblings appear in source order
// 5) parent links agree with child edges
func CheckSpanInvariants(tree *ast.Tree) error {
	if tree == nil || tree.File == nil {
		return fmt.Errorf("nil tree or file")
	}
	sf := tree.File
	if tree.Kind(tree.Root) != ast.Module {
		return fmt.Errorf("root is %v, not Module", tree.Kind(tree.Root))
	}

	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	root := tree.Span(tree.Root)
	if root.Start != 0 || root.End != lenContent {
		return fmt.Errorf("root span %v does not cover file of %d bytes", root, lenContent)
	}

	var firstErr error
	tree.Inspect(func(id ast.NodeID) bool {
		if firstErr != nil {
			return false
		}
		sp := tree.Span(id)
		if sp.File != sf.ID {
			firstErr = fmt.Errorf("%v#%d: span file mismatch: got=%d want=%d", tree.Kind(id), id, sp.File, sf.ID)
			return false
		}
		if sp.End < sp.Start || sp.End > lenContent {
			firstErr = fmt.Errorf("%v#%d: span %v is outside content (%d)", tree.Kind(id), id, sp, lenContent)
			return false
		}
		prev := sp.Start
		for _, kid := range tree.Children(id) {
			ksp := tree.Span(kid.ID)
			if ksp.Start < sp.Start || ksp.End > sp.End {
				firstErr = fmt.Errorf("%v#%d %v: child %v#%d %v escapes parent",
					tree.Kind(id), id, sp, tree.Kind(kid.ID), kid.ID, ksp)
				return false
			}
			if ksp.Start < prev {
				firstErr = fmt.Errorf("%v#%d: child %v#%d starts at %d before previous sibling at %d",
					tree.Kind(id), id, tree.Kind(kid.ID), kid.ID, ksp.Start, prev)
				return false
			}
			prev = ksp.Start
			if p := tree.Parent(kid.ID); p != id {
				firstErr = fmt.Errorf("%v#%d: parent is %d, want %d", tree.Kind(kid.ID), kid.ID, p, id)
				return false
			}
			if r := tree.Role(kid.ID); r != kid.Role {
				firstErr = fmt.Errorf("%v#%d: role %v, edge says %v", tree.Kind(kid.ID), kid.ID, r, kid.Role)
				return false
			}
		}
		return true
	})
	return firstErr
}
