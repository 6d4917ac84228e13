// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dag

import (
	"context"
	"sync"
)

// MemDAG is a small in-memory Reader used by tests and cmd/highwaysim. It is
// not a production block store: it has no persistence, no gossip and no
// pruning, matching the non-goals in spec.md §1.
type MemDAG struct {
	mu     sync.RWMutex
	blocks map[Hash]Metadata
	latest map[Validator]Hash
}

// NewMemDAG returns an empty in-memory DAG.
func NewMemDAG() *MemDAG {
	return &MemDAG{
		blocks: make(map[Hash]Metadata),
		latest: make(map[Validator]Hash),
	}
}

// AddBlock records a new block's metadata and advances its creator's latest
// message pointer. Metadata is immutable once added; AddBlock does not
// overwrite an existing entry for the same hash.
func (d *MemDAG) AddBlock(m Metadata) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.blocks[m.Hash]; exists {
		return
	}
	d.blocks[m.Hash] = m
	d.latest[m.Creator] = m.Hash
}

func (d *MemDAG) Lookup(_ context.Context, hash Hash) (Metadata, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	m, ok := d.blocks[hash]
	if !ok {
		return Metadata{}, ErrNotFound
	}
	return m, nil
}

func (d *MemDAG) LatestMessages(_ context.Context) (map[Validator]Metadata, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[Validator]Metadata, len(d.latest))
	for validator, hash := range d.latest {
		out[validator] = d.blocks[hash]
	}
	return out, nil
}

// VotedBranch walks the main-parent chain from block towards the genesis
// until it either finds the immediate child of fromLFB, or fromLFB itself
// (not a strict descendant), or runs off the known chain.
func (d *MemDAG) VotedBranch(ctx context.Context, fromLFB, block Hash) (Hash, bool, error) {
	cur, err := d.Lookup(ctx, block)
	if err != nil {
		return Hash{}, false, err
	}
	for {
		if cur.Hash == fromLFB {
			return Hash{}, false, nil
		}
		if cur.MainParent == fromLFB {
			return cur.Hash, true, nil
		}
		if cur.MainParent.IsZero() {
			return Hash{}, false, nil
		}
		cur, err = d.Lookup(ctx, cur.MainParent)
		if err != nil {
			return Hash{}, false, err
		}
	}
}

// LevelZeroMessages returns validator's own messages voting for voteValue,
// ordered oldest to newest. A message votes for voteValue iff voteValue lies
// on the message's own main-parent ancestry (voteValue == the message itself
// counts too: a validator can still be voting for a branch from the very
// block that created it).
func (d *MemDAG) LevelZeroMessages(ctx context.Context, validator Validator, voteValue Hash) ([]Metadata, error) {
	d.mu.RLock()
	var own []Metadata
	for _, m := range d.blocks {
		if m.Creator == validator {
			own = append(own, m)
		}
	}
	d.mu.RUnlock()

	var votes []Metadata
	for _, m := range own {
		descends, err := d.descendsFrom(ctx, m, voteValue)
		if err != nil {
			return nil, err
		}
		if descends {
			votes = append(votes, m)
		}
	}

	for i := 0; i < len(votes); i++ {
		for j := i + 1; j < len(votes); j++ {
			if votes[j].Rank < votes[i].Rank {
				votes[i], votes[j] = votes[j], votes[i]
			}
		}
	}
	return votes, nil
}

// descendsFrom reports whether ancestor lies on m's main-parent chain
// (including m itself).
func (d *MemDAG) descendsFrom(ctx context.Context, m Metadata, ancestor Hash) (bool, error) {
	cur := m
	for {
		if cur.Hash == ancestor {
			return true, nil
		}
		if cur.MainParent.IsZero() {
			return false, nil
		}
		next, err := d.Lookup(ctx, cur.MainParent)
		if err != nil {
			return false, err
		}
		cur = next
	}
}
