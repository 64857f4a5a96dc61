// Package ntx reads and builds NTX note packs: two-tier chunked binary
// containers for viewing large formatted documents on memory-constrained
// devices with slow, block-oriented named-object storage.
//
// A pack is a set of named storage objects: one index object (NTXIDX)
// enumerating notes, and one or more part objects (NTX0001, NTX0002, ...)
// each holding a contiguous run of a note's chunks. The read path never
// holds more than one part object's bytes and one decoded chunk in memory
// at a time: LoadIndex decodes the note table once, and LoadChunk loads
// and discards part objects one by one until the requested chunk is found.
//
// The write half (Builder) is host-side tooling: it splits note text at
// natural boundaries, partitions chunks into part objects under the
// storage size cap, and emits byte-exact container blobs plus a JSON
// build manifest with content digests.
package ntx

import "errors"

// Sentinel errors for programmatic handling. Every failure from a decode
// or lookup wraps exactly one of these; callers use errors.Is to tell
// storage trouble (ErrUnavailable, ErrEmpty) from structural damage
// (ErrBadMagic through ErrOutOfBounds) and from lookup misses
// (ErrOutOfRange, ErrNotFound). All are terminal for the operation that
// raised them; nothing is retried internally.
var (
	ErrUnavailable = errors.New("object unavailable")
	ErrEmpty       = errors.New("object is empty")
	ErrUndersized  = errors.New("object too small")
	ErrBadMagic    = errors.New("bad magic")
	ErrUnsupported = errors.New("unsupported version")
	ErrTruncated   = errors.New("truncated container")
	ErrOutOfBounds = errors.New("out of bounds")
	ErrOutOfRange  = errors.New("chunk index out of range")
	ErrNotFound    = errors.New("chunk not found")
	ErrDigest      = errors.New("digest mismatch")
)
