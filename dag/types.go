// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dag defines the identifiers and read-only contract the finality
// detector uses to observe the block DAG. The DAG store itself — its
// persistence, gossip and fork-choice machinery — lives outside this
// module; dag only describes the shape the detector needs.
package dag

import (
	"bytes"
	"context"
	"encoding/hex"
)

// Hash is an opaque, fixed-width block identifier with total equality.
type Hash [32]byte

// String returns the hex encoding of h.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero value.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Compare returns -1, 0 or 1 as h is less than, equal to, or greater than o,
// using plain byte-wise ordering.
func (h Hash) Compare(o Hash) int {
	return bytes.Compare(h[:], o[:])
}

// Validator is an opaque, totally-ordered validator identity.
type Validator [32]byte

// String returns the hex encoding of v.
func (v Validator) String() string {
	return hex.EncodeToString(v[:])
}

// Compare returns -1, 0 or 1 as v is less than, equal to, or greater than o.
func (v Validator) Compare(o Validator) int {
	return bytes.Compare(v[:], o[:])
}

// WeightMap maps a validator to its non-negative stake, read from the
// post-state of a single block (normally the current LFB). It is fixed for
// the duration of one finalization round.
type WeightMap map[Validator]uint64

// TotalWeight sums the weights in w.
func (w WeightMap) TotalWeight() uint64 {
	var total uint64
	for _, weight := range w {
		total += weight
	}
	return total
}

// Vote is a validator's earliest message, at a given DAG level, voting for
// consensus_value as the LFB's child to finalize.
type Vote struct {
	Value Hash
	Level uint64
}

// Metadata is the immutable, once-produced description of a block.
type Metadata struct {
	Hash    Hash
	Creator Validator
	Rank    uint64

	// WeightMap is the stake table read from this block's post-state. Only
	// populated on blocks that may serve as an LFB; consumers otherwise
	// fetch it lazily via Lookup on the relevant LFB.
	WeightMap WeightMap

	// MainParent is the block's parent along the main-parent tree used by
	// VotedBranch to find the child of a given LFB on the path to a block.
	MainParent Hash

	// Justification is the full set of messages (including MainParent) this
	// block's creator justifies — i.e. the panorama computer's traversal
	// frontier.
	Justification []Hash
}

// Reader is the read-only view over the external block DAG store that the
// finality detector depends on. All operations are read-only with respect
// to consensus state; a conforming implementation is internally consistent
// (acyclic, total on known hashes).
type Reader interface {
	// Lookup returns the metadata for hash, or ErrNotFound if unknown.
	Lookup(ctx context.Context, hash Hash) (Metadata, error)

	// LatestMessages returns, for every validator with at least one known
	// message, that validator's most recent message.
	LatestMessages(ctx context.Context) (map[Validator]Metadata, error)

	// VotedBranch returns the hash of the immediate child of fromLFB that
	// lies on the justification path from fromLFB to block, or ok=false if
	// block does not transitively justify any such child.
	VotedBranch(ctx context.Context, fromLFB, block Hash) (child Hash, ok bool, err error)

	// LevelZeroMessages returns validator's own messages that vote for
	// voteValue, ordered oldest to newest.
	LevelZeroMessages(ctx context.Context, validator Validator, voteValue Hash) ([]Metadata, error)
}
