package ast

import (
	"oxide/internal/source"
)

// Node is one entry of the syntax tree arena. Children live in a shared
// pool addressed by kidStart/kidCount; the parent link lives in the Tree.
type Node struct {
	Kind  Kind
	Op    Op
	Shape Shape
	Flags Flags
	Span  source.Span
	// Name: identifier of items, bindings, fields and path segments,
	// literal text, lifetime or loop label.
	Name     source.StringID
	kidStart uint32
	kidCount uint32
}

// Has reports whether the node carries all flags of f.
func (n Node) Has(f Flags) bool {
	return n.Flags.Has(f)
}
