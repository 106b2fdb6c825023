// Package attr reads the recursive accounting attributes CephFS maintains
// on every directory (ceph.dir.rbytes, ceph.dir.rentries).
//
// The attributes are plain extended attributes with decimal string payloads,
// readable in O(1) per directory, so a usage browser never needs to crawl
// the tree. Absence of the attributes (non-Ceph filesystems, plain files)
// is reported distinctly from zero.
package attr
