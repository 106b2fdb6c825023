// Package tree maintains the lazily materialized directory tree behind the
// browser: an arena of nodes keyed by identifier, an expansion engine that
// populates children from one directory listing plus per-child attribute
// queries, and a projector that produces sorted child views on demand.
//
// Only the currently expanded paths are resident; collapsing a node releases
// its whole subtree, which is what bounds memory on arbitrarily large trees.
package tree
