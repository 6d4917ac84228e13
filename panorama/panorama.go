// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package panorama computes, for a block B, the maximum DAG-level of every
// validator's messages transitively justified by B — the "panorama" that
// feeds a row of the voting matrix.
package panorama

import (
	"context"
	"fmt"

	"github.com/casperlabs/highway/dag"
)

// Compute returns a slice of length len(index) where entry index[v] is the
// maximum DAG-level among all messages by validator v reachable through
// block's justifications, including block itself when its creator is v.
// Validators absent from block's justification cone keep the zero value.
// The traversal visits each distinct justified message at most once, so it
// runs in time linear in the number of messages reachable from block.
func Compute(ctx context.Context, r dag.Reader, block dag.Hash, index map[dag.Validator]int) ([]uint64, error) {
	row := make([]uint64, len(index))
	visited := make(map[dag.Hash]struct{})
	stack := []dag.Hash{block}

	for len(stack) > 0 {
		n := len(stack) - 1
		h := stack[n]
		stack = stack[:n]

		if _, seen := visited[h]; seen {
			continue
		}
		visited[h] = struct{}{}

		m, err := r.Lookup(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("panorama: lookup %s: %w", h, err)
		}

		if i, ok := index[m.Creator]; ok && m.Rank > row[i] {
			row[i] = m.Rank
		}

		for _, j := range m.Justification {
			if _, seen := visited[j]; !seen {
				stack = append(stack, j)
			}
		}
	}
	return row, nil
}

// DAGLevels adapts Compute's row output to a map keyed by validator, the
// shape named by the panorama_dag_levels signature in the detector's
// external interface.
func DAGLevels(ctx context.Context, r dag.Reader, block dag.Hash, validators []dag.Validator) (map[dag.Validator]uint64, error) {
	index := make(map[dag.Validator]int, len(validators))
	for i, val := range validators {
		index[val] = i
	}
	row, err := Compute(ctx, r, block, index)
	if err != nil {
		return nil, err
	}
	out := make(map[dag.Validator]uint64, len(validators))
	for val, i := range index {
		out[val] = row[i]
	}
	return out, nil
}
