package ast

// NodeID addresses a node in a Builder or Tree; ids are 1-based.
type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }
