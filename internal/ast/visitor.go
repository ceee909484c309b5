package ast

import (
	"fmt"
	"strings"
)

// Action tells Walk how to continue after a callback.
type Action uint8

const (
	Continue Action = iota
	SkipChildren
	Stop
)

// VisitFunc handles one node.
type VisitFunc func(t *Tree, id NodeID) Action

// Visitor is a capability set: one callback slot per node kind plus an
// optional Default for kinds without a callback. Kinds with neither are
// walked through silently.
type Visitor struct {
	fns     [kindCount]VisitFunc
	Default VisitFunc
}

func NewVisitor() *Visitor {
	return &Visitor{}
}

// On registers fn for kind and returns the visitor for chaining.
func (v *Visitor) On(kind Kind, fn VisitFunc) *Visitor {
	if kind < kindCount {
		v.fns[kind] = fn
	}
	return v
}

// Handles reports whether the visitor has a callback for kind.
func (v *Visitor) Handles(kind Kind) bool {
	return kind < kindCount && v.fns[kind] != nil
}

// CheckExhaustive returns an error naming every kind that has no callback
// when the visitor has no Default. Consumers call it in tests so that a new
// node kind cannot slip past them.
func (v *Visitor) CheckExhaustive() error {
	if v.Default != nil {
		return nil
	}
	var missing []string
	for k := InvalidKind + 1; k < kindCount; k++ {
		if v.fns[k] == nil {
			missing = append(missing, k.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("visitor has no callback for %d kinds: %s", len(missing), strings.Join(missing, ", "))
	}
	return nil
}

func (v *Visitor) visit(t *Tree, id NodeID) Action {
	kind := t.Kind(id)
	if fn := v.fns[kind]; fn != nil {
		return fn(t, id)
	}
	if v.Default != nil {
		return v.Default(t, id)
	}
	return Continue
}

// Walk visits the tree from Root in deterministic pre-order (parents before
// children, children in source order) without recursion.
func (t *Tree) Walk(v *Visitor) {
	t.WalkFrom(t.Root, v)
}

// WalkFrom is Walk for the subtree at id.
func (t *Tree) WalkFrom(id NodeID, v *Visitor) {
	if !t.valid(id) {
		return
	}
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch v.visit(t, cur) {
		case Stop:
			return
		case SkipChildren:
			continue
		}
		kids := t.Children(cur)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i].ID)
		}
	}
}

// Inspect calls fn for every node in pre-order; returning false skips the
// node's children.
func (t *Tree) Inspect(fn func(id NodeID) bool) {
	v := &Visitor{Default: func(_ *Tree, id NodeID) Action {
		if fn(id) {
			return Continue
		}
		return SkipChildren
	}}
	t.Walk(v)
}
