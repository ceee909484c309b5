package ast

import (
	"fmt"

	"oxide/internal/source"
	"oxide/internal/token"

	"fortio.org/safecast"
)

type Hints struct{ Nodes, Kids uint }

// Builder allocates nodes bottom-up: children are created before their
// parent and handed to New, so a node's children are contiguous in the pool.
// Speculative parses roll back with Mark/Truncate.
type Builder struct {
	Nodes   *Arena[Node]
	Strings *source.Interner
	pool    []Child
	docs    map[NodeID][]token.Trivia
}

func NewBuilder(hints Hints, strs *source.Interner) *Builder {
	if hints.Nodes == 0 {
		hints.Nodes = 1 << 9
	}
	if hints.Kids == 0 {
		hints.Kids = 1 << 10
	}
	if strs == nil {
		strs = source.NewInterner()
	}
	return &Builder{
		Nodes:   NewArena[Node](hints.Nodes),
		Strings: strs,
		pool:    make([]Child, 0, hints.Kids),
	}
}

// New allocates a node with the given children; invalid child ids are skipped.
// The span is widened to cover every child, so a parent always contains
// its subtree even when a child is an empty placeholder past the last token.
func (b *Builder) New(kind Kind, sp source.Span, kids ...Child) NodeID {
	start := b.poolLen()
	for _, k := range kids {
		if k.ID.IsValid() {
			b.pool = append(b.pool, k)
			sp = sp.Cover(b.Span(k.ID))
		}
	}
	id := NodeID(b.Nodes.Allocate(Node{
		Kind:     kind,
		Span:     sp,
		kidStart: start,
		kidCount: b.poolLen() - start,
	}))
	return id
}

// NewNamed is New plus an interned name.
func (b *Builder) NewNamed(kind Kind, sp source.Span, name string, kids ...Child) NodeID {
	id := b.New(kind, sp, kids...)
	b.Nodes.Get(uint32(id)).Name = b.Strings.Intern(name)
	return id
}

// Get returns the node for further tuning (Op, Shape, Flags) before Finish.
func (b *Builder) Get(id NodeID) *Node {
	return b.Nodes.Get(uint32(id))
}

// SetOp, SetShape and AddFlags tune a freshly created node.
func (b *Builder) SetOp(id NodeID, op Op) {
	if n := b.Get(id); n != nil {
		n.Op = op
	}
}

func (b *Builder) SetShape(id NodeID, shape Shape) {
	if n := b.Get(id); n != nil {
		n.Shape = shape
	}
}

func (b *Builder) AddFlags(id NodeID, f Flags) {
	if n := b.Get(id); n != nil {
		n.Flags |= f
	}
}

// SetName interns name for id.
func (b *Builder) SetName(id NodeID, name string) {
	if n := b.Get(id); n != nil {
		n.Name = b.Strings.Intern(name)
	}
}

// SetDocs records doc-comment trivia for an item.
func (b *Builder) SetDocs(id NodeID, docs []token.Trivia) {
	if len(docs) == 0 || !id.IsValid() {
		return
	}
	if b.docs == nil {
		b.docs = make(map[NodeID][]token.Trivia)
	}
	b.docs[id] = append(b.docs[id], docs...)
}

// Span returns the span of an already built node.
func (b *Builder) Span(id NodeID) source.Span {
	if n := b.Get(id); n != nil {
		return n.Span
	}
	return source.Span{}
}

// Kind returns the kind of an already built node.
func (b *Builder) Kind(id NodeID) Kind {
	if n := b.Get(id); n != nil {
		return n.Kind
	}
	return InvalidKind
}

// Kids returns the children of an already built node. The slice aliases
// the builder pool and must not be kept across New calls.
func (b *Builder) Kids(id NodeID) []Child {
	n := b.Get(id)
	if n == nil {
		return nil
	}
	return b.pool[n.kidStart : n.kidStart+n.kidCount]
}

// Len returns how many nodes were allocated.
func (b *Builder) Len() uint32 {
	return b.Nodes.Len()
}

// BuildMark is a rollback point for speculative parsing.
type BuildMark struct {
	nodes uint32
	kids  uint32
}

func (b *Builder) Mark() BuildMark {
	return BuildMark{nodes: b.Nodes.Len(), kids: b.poolLen()}
}

// Truncate drops every node and child edge created after m.
func (b *Builder) Truncate(m BuildMark) {
	b.Nodes.Truncate(m.nodes)
	if int(m.kids) < len(b.pool) {
		b.pool = b.pool[:m.kids]
	}
	for id := range b.docs {
		if uint32(id) > m.nodes {
			delete(b.docs, id)
		}
	}
}

// Finish freezes the arena into a Tree rooted at root and computes parent
// links. Nodes not reachable from root keep NoNodeID as parent.
// The builder must not be used afterwards.
func (b *Builder) Finish(root NodeID, file *source.File) *Tree {
	n := b.Nodes.Len()
	t := &Tree{
		File:    file,
		Strings: b.Strings,
		nodes:   b.Nodes.Slice(),
		pool:    b.pool,
		parents: make([]NodeID, n+1),
		roles:   make([]Role, n+1),
		docs:    b.docs,
		Root:    root,
	}
	for i := range t.nodes {
		nd := &t.nodes[i]
		for _, k := range t.pool[nd.kidStart : nd.kidStart+nd.kidCount] {
			parentID, err := safecast.Conv[uint32](i + 1)
			if err != nil {
				panic(fmt.Errorf("node id overflow: %w", err))
			}
			t.parents[k.ID] = NodeID(parentID)
			t.roles[k.ID] = k.Role
		}
	}
	b.Nodes = nil
	b.pool = nil
	b.docs = nil
	return t
}

func (b *Builder) poolLen() uint32 {
	n, err := safecast.Conv[uint32](len(b.pool))
	if err != nil {
		panic(fmt.Errorf("child pool overflow: %w", err))
	}
	return n
}
