// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package committee implements the committee-finder fixed point: given a
// voting matrix and a candidate block, it iteratively prunes an
// approximately-supporting validator mask down to the maximal stable
// committee that observes quorum, or reports that none exists.
package committee

import (
	"github.com/casperlabs/highway/dag"
	"github.com/casperlabs/highway/matrix"
)

// Result is the maximal stable committee for a candidate and its total
// weight.
type Result struct {
	Mask   Mask
	Weight uint64
}

// Find runs the pruning fixed point described in spec.md §4.4 over m for
// candidate, starting from approx (the committee approximation — typically
// every bonded validator) and quorum threshold q. It returns ok=false when
// no quorum subset survives.
//
// The loop is iterative with an explicit changed flag rather than
// recursive tail-call pruning, and its result does not depend on the order
// validators are visited within a pass: every validator's vote_sum is
// computed against the mask as it stood at the start of the pass, so two
// passes over the same mask in different visitation orders prune the same
// set of validators.
func Find(m *matrix.State, candidate dag.Hash, approx Mask, q uint64) (Result, bool) {
	mask := NewMask(approx.Len())
	mask.Union(approx)

	for {
		voteSum := make(map[int]uint64, mask.Len())
		for i := range mask {
			voteSum[i] = observedWeight(m, candidate, i, mask)
		}

		var survivors Mask
		var total uint64
		changed := false
		for i := range mask {
			if voteSum[i] >= q {
				survivors.Add(i)
				total += m.Weight(i)
				continue
			}
			changed = true
		}

		if !changed {
			return Result{Mask: survivors, Weight: total}, survivors.Len() > 0
		}
		if total < q {
			return Result{}, false
		}
		mask = survivors
	}
}

// observedWeight returns the weight of validators whose first-level-zero
// vote for candidate is observable from i's perspective: the sum of
// weight[j] over j still in mask with fzl[j] = (candidate, level) and
// level <= M[i][j].
func observedWeight(m *matrix.State, candidate dag.Hash, i int, mask Mask) uint64 {
	var sum uint64
	for j := range mask {
		vote := m.Fzl(j)
		if vote == nil || vote.Value != candidate {
			continue
		}
		if vote.Level <= m.Level(i, j) {
			sum += m.Weight(j)
		}
	}
	return sum
}
