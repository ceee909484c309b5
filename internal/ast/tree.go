package ast

import (
	"iter"

	"oxide/internal/source"
	"oxide/internal/token"
)

// Tree is the immutable result of a parse. Children are reached by index
// through the child pool; parents through a table the tree owns.
type Tree struct {
	File    *source.File
	Strings *source.Interner
	Root    NodeID
	nodes   []Node
	pool    []Child
	parents []NodeID
	roles   []Role
	docs    map[NodeID][]token.Trivia
}

// Len returns the number of nodes, including unreachable ones.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns a copy of the node; the zero Node for invalid ids.
func (t *Tree) Node(id NodeID) Node {
	if !t.valid(id) {
		return Node{}
	}
	return t.nodes[id-1]
}

func (t *Tree) Kind(id NodeID) Kind {
	if !t.valid(id) {
		return InvalidKind
	}
	return t.nodes[id-1].Kind
}

func (t *Tree) Span(id NodeID) source.Span {
	if !t.valid(id) {
		return source.Span{}
	}
	return t.nodes[id-1].Span
}

// Name returns the interned name of the node or "".
func (t *Tree) Name(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	s, _ := t.Strings.Lookup(t.nodes[id-1].Name)
	return s
}

// Text returns the source text covered by the node.
func (t *Tree) Text(id NodeID) string {
	if t.File == nil || !t.valid(id) {
		return ""
	}
	return t.File.Slice(t.nodes[id-1].Span)
}

// Children returns the child edges in source order.
// ВАЖНО: срез указывает во внутренний пул, не модифицируйте его.
func (t *Tree) Children(id NodeID) []Child {
	if !t.valid(id) {
		return nil
	}
	n := &t.nodes[id-1]
	return t.pool[n.kidStart : n.kidStart+n.kidCount : n.kidStart+n.kidCount]
}

// Parent returns the parent of id, NoNodeID for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNodeID
	}
	return t.parents[id]
}

// Role returns the role id plays in its parent.
func (t *Tree) Role(id NodeID) Role {
	if !t.valid(id) {
		return RoleNone
	}
	return t.roles[id]
}

// Ancestors yields the parent chain of id, nearest first.
func (t *Tree) Ancestors(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for p := t.Parent(id); p.IsValid(); p = t.Parent(p) {
			if !yield(p) {
				return
			}
		}
	}
}

// Enclosing returns the nearest ancestor of the given kind.
func (t *Tree) Enclosing(id NodeID, kind Kind) NodeID {
	for p := range t.Ancestors(id) {
		if t.Kind(p) == kind {
			return p
		}
	}
	return NoNodeID
}

// ChildByRole returns the first child with role r.
func (t *Tree) ChildByRole(id NodeID, r Role) NodeID {
	for _, c := range t.Children(id) {
		if c.Role == r {
			return c.ID
		}
	}
	return NoNodeID
}

// ChildrenByRole returns every child with role r in source order.
func (t *Tree) ChildrenByRole(id NodeID, r Role) []NodeID {
	var out []NodeID
	for _, c := range t.Children(id) {
		if c.Role == r {
			out = append(out, c.ID)
		}
	}
	return out
}

// Docs returns doc-comment trivia attached to an item.
func (t *Tree) Docs(id NodeID) []token.Trivia {
	return t.docs[id]
}

// CountKind returns how many reachable nodes have the given kind.
func (t *Tree) CountKind(kind Kind) int {
	n := 0
	t.Inspect(func(id NodeID) bool {
		if t.Kind(id) == kind {
			n++
		}
		return true
	})
	return n
}

func (t *Tree) valid(id NodeID) bool {
	return id.IsValid() && int(id) <= len(t.nodes)
}
