// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package matrix holds the voting matrix state for one finalization round:
// the N×N level matrix, the first-level-zero votes, and the
// validator-to-index bijection they are addressed by. It is pure data —
// callers are responsible for serializing access (the finality detector
// does this with its own lock).
package matrix

import (
	"sort"

	"github.com/casperlabs/highway/dag"
)

// State is one finalization round's voting matrix.
type State struct {
	validators []dag.Validator
	index      map[dag.Validator]int
	weights    []uint64
	rows       [][]uint64
	fzl        []*dag.Vote
}

// NewState builds a fresh, zero-initialized State from the weight map of the
// current LFB's post-state. Validators are ordered by their raw byte value
// (dag.Validator.Compare) — the deterministic order spec.md's invariant 1
// requires but does not itself name.
func NewState(weights dag.WeightMap) *State {
	validators := make([]dag.Validator, 0, len(weights))
	for val := range weights {
		validators = append(validators, val)
	}
	sort.Slice(validators, func(i, j int) bool {
		return validators[i].Compare(validators[j]) < 0
	})

	n := len(validators)
	index := make(map[dag.Validator]int, n)
	w := make([]uint64, n)
	rows := make([][]uint64, n)
	for i, val := range validators {
		index[val] = i
		w[i] = weights[val]
		rows[i] = make([]uint64, n)
	}

	return &State{
		validators: validators,
		index:      index,
		weights:    w,
		rows:       rows,
		fzl:        make([]*dag.Vote, n),
	}
}

// Len returns N, the number of bonded validators in this round.
func (s *State) Len() int {
	return len(s.validators)
}

// IndexOf returns the matrix index for validator and whether it is bonded in
// this round.
func (s *State) IndexOf(validator dag.Validator) (int, bool) {
	i, ok := s.index[validator]
	return i, ok
}

// Validators returns the bonded validator set in index order. The returned
// slice must not be mutated.
func (s *State) Validators() []dag.Validator {
	return s.validators
}

// Weight returns the stake of the validator at index i.
func (s *State) Weight(i int) uint64 {
	return s.weights[i]
}

// TotalWeight returns the sum of all bonded validators' weight.
func (s *State) TotalWeight() uint64 {
	var total uint64
	for _, w := range s.weights {
		total += w
	}
	return total
}

// Row returns the current M[i] row. The returned slice must not be mutated;
// use ReplaceRow to update it.
func (s *State) Row(i int) []uint64 {
	return s.rows[i]
}

// Level returns M[i][j].
func (s *State) Level(i, j int) uint64 {
	return s.rows[i][j]
}

// ReplaceRow atomically replaces M[i] with newRow. newRow must have length
// Len(); the State keeps newRow without copying it, so the caller (the
// panorama computer's output) must not modify it after this call.
func (s *State) ReplaceRow(i int, newRow []uint64) {
	s.rows[i] = newRow
}

// Fzl returns validator i's first-level-zero vote, or nil if none recorded
// yet this round.
func (s *State) Fzl(i int) *dag.Vote {
	return s.fzl[i]
}

// SetFzl atomically sets validator i's first-level-zero vote.
func (s *State) SetFzl(i int, vote dag.Vote) {
	s.fzl[i] = &vote
}
