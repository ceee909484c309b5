// Package ast holds the syntax tree produced by the parser.
//
// Every node lives in one arena and is addressed by a NodeID. A node is a
// tagged variant: Kind says what it is, Op/Shape/Flags/Name carry the few
// scalar details a kind needs, and everything else is a child reached
// through an edge that names its Role (param, body, member, lhs, ...).
//
// The Builder is append-only and works bottom-up, which keeps children of a
// node contiguous and lets the parser roll back a speculative attempt with
// Mark/Truncate. Finish turns it into an immutable Tree with parent links.
//
// A node that could not be parsed completely is an Error node spanning the
// tokens it consumed; it keeps the tree shape intact for tools.
package ast
