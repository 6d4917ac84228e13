// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package finality implements the finality detector: it decides, as new
// blocks arrive, whether some descendant of the last finalized block has
// gathered enough weighted validator support to be declared irreversibly
// finalized.
package finality

import (
	"context"
	"fmt"
	"sync"

	"github.com/luxfi/log"

	"github.com/casperlabs/highway/committee"
	"github.com/casperlabs/highway/dag"
	"github.com/casperlabs/highway/matrix"
	"github.com/casperlabs/highway/panorama"
)

// Finalized describes a newly finalized consensus value.
type Finalized struct {
	ConsensusValue      dag.Hash
	Committee           []dag.Validator
	Weight              uint64
}

// Detector orchestrates per-block voting-matrix updates and the committee
// fixed point, enforcing the strict serialization spec.md §5 requires: every
// call to OnNewBlock, and every rebuild, runs under the same lock.
type Detector struct {
	mu sync.Mutex

	rFTT float64
	log  log.Logger

	lfb   dag.Hash
	state *matrix.State
	q     uint64
}

// New constructs a detector rooted at initialLFB. rFTT must lie in the open
// interval (0, 0.5); any other value is a precondition violation and New
// returns ErrInvalidRFTT without constructing anything.
func New(ctx context.Context, reader dag.Reader, initialLFB dag.Hash, rFTT float64, logger log.Logger) (*Detector, error) {
	if rFTT <= 0 || rFTT >= 0.5 {
		return nil, ErrInvalidRFTT
	}
	if logger == nil {
		logger = log.NewNoOpLogger()
	}

	d := &Detector{rFTT: rFTT, log: logger}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.rebuild(ctx, reader, initialLFB); err != nil {
		return nil, err
	}
	return d, nil
}

// CurrentLFB returns the detector's last-rebuilt LFB.
func (d *Detector) CurrentLFB() dag.Hash {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lfb
}

// OnNewBlock processes a newly arrived block under the detector's single
// lock, implementing spec.md §4.5 steps 1-8. It returns (nil, nil) for both
// informational None cases (no vote on branch; no committee). It returns a
// non-nil error for DAG lookup failures, wrapped with context via
// fmt.Errorf/%w, and ErrStaleLFB when currentLFB is not the detector's LFB.
func (d *Detector) OnNewBlock(ctx context.Context, reader dag.Reader, block dag.Metadata, currentLFB dag.Hash) (*Finalized, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if currentLFB != d.lfb {
		return nil, fmt.Errorf("%w: caller passed %s, detector is at %s", ErrStaleLFB, currentLFB, d.lfb)
	}

	branch, voted, err := reader.VotedBranch(ctx, currentLFB, block.Hash)
	if err != nil {
		return nil, fmt.Errorf("finality: voted branch for %s: %w", block.Hash, err)
	}
	if !voted {
		d.log.Debug("block does not vote on a child of the current LFB", "block", block.Hash, "lfb", currentLFB)
		return nil, nil
	}

	if i, bonded := d.state.IndexOf(block.Creator); bonded {
		row, err := panorama.Compute(ctx, reader, block.Hash, d.indexMap())
		if err != nil {
			return nil, fmt.Errorf("finality: panorama for %s: %w", block.Hash, err)
		}
		d.state.ReplaceRow(i, row)

		if vote := d.state.Fzl(i); vote == nil || vote.Value != branch {
			d.state.SetFzl(i, dag.Vote{Value: branch, Level: block.Rank})
		}
	} else {
		d.log.Info("block creator is not bonded at the current LFB, skipping matrix update",
			"creator", block.Creator, "lfb", currentLFB)
	}

	result, found := committee.Find(d.state, branch, d.fullMask(), d.q)
	if !found {
		return nil, nil
	}

	finalized := &Finalized{
		ConsensusValue: branch,
		Committee:      d.committeeValidators(result.Mask),
		Weight:         result.Weight,
	}

	if err := d.rebuild(ctx, reader, branch); err != nil {
		return nil, fmt.Errorf("finality: rebuild after finalizing %s: %w", branch, err)
	}

	return finalized, nil
}

// rebuild implements spec.md §4.6. The caller must hold d.mu.
func (d *Detector) rebuild(ctx context.Context, reader dag.Reader, newLFB dag.Hash) error {
	lfbMeta, err := reader.Lookup(ctx, newLFB)
	if err != nil {
		return fmt.Errorf("finality: lookup new LFB %s: %w", newLFB, err)
	}

	state := matrix.NewState(lfbMeta.WeightMap)
	index := make(map[dag.Validator]int, state.Len())
	for i, validator := range state.Validators() {
		index[validator] = i
	}

	latest, err := reader.LatestMessages(ctx)
	if err != nil {
		return fmt.Errorf("finality: latest messages: %w", err)
	}

	for validator, msg := range latest {
		i, bonded := index[validator]
		if !bonded {
			continue
		}

		voteValue, voted, err := reader.VotedBranch(ctx, newLFB, msg.Hash)
		if err != nil {
			return fmt.Errorf("finality: voted branch for %s during rebuild: %w", msg.Hash, err)
		}
		if !voted {
			continue
		}

		zeros, err := reader.LevelZeroMessages(ctx, validator, voteValue)
		if err != nil {
			return fmt.Errorf("finality: level-zero messages for %s: %w", validator, err)
		}
		if len(zeros) == 0 {
			continue
		}

		// zeros is documented oldest-to-newest; the earliest entry is
		// validator's first-level-zero vote for voteValue (see DESIGN.md
		// "fzl rebuild ordering ambiguity").
		earliest := zeros[0]
		state.SetFzl(i, dag.Vote{Value: voteValue, Level: earliest.Rank})
	}

	for i, validator := range state.Validators() {
		if state.Fzl(i) == nil {
			continue
		}
		msg, ok := latest[validator]
		if !ok {
			continue
		}
		row, err := panorama.Compute(ctx, reader, msg.Hash, index)
		if err != nil {
			return fmt.Errorf("finality: panorama for %s during rebuild: %w", msg.Hash, err)
		}
		state.ReplaceRow(i, row)
	}

	d.state = state
	d.lfb = newLFB
	d.q = quorumThreshold(d.rFTT, state.TotalWeight())
	return nil
}

func (d *Detector) indexMap() map[dag.Validator]int {
	index := make(map[dag.Validator]int, d.state.Len())
	for i, validator := range d.state.Validators() {
		index[validator] = i
	}
	return index
}

func (d *Detector) fullMask() committee.Mask {
	mask := committee.NewMask(d.state.Len())
	for i := 0; i < d.state.Len(); i++ {
		mask.Add(i)
	}
	return mask
}

func (d *Detector) committeeValidators(mask committee.Mask) []dag.Validator {
	validators := d.state.Validators()
	out := make([]dag.Validator, 0, mask.Len())
	for i := range mask {
		out = append(out, validators[i])
	}
	return out
}
