// Package btree builds and queries a persistent btree of SHA-1
// digests, tuned for a single question: is this digest part of the
// corpus. The tree is built bottoms-up in one pass over a sorted
// digest stream and never updated there after; queries descend one
// root-to-leaf path.
//
// The file starts with an 8-byte header, the branching order followed
// by the root pointer, and continues as an array of fixed size node
// records. Node identifiers double as positions in that array, so a
// pointer is just a dense uint32.
package btree
