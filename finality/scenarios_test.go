// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Scenario tests mirror the six concrete, literal-valued seed scenarios
// used to validate this detector's behavior. Where a scenario's idealized
// description asks for mutual observation that a single round of acyclic
// justifications cannot produce (three messages can't each observe the
// other two without a cycle), the test adds one extra same-validator
// catch-up message to close the loop, and says so inline.
package finality

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/casperlabs/highway/dag"
)

// Scenario 1: three equal-weight validators (10 each, total 30, rFTT=0.1,
// q=18) all vote for child X of the LFB with panoramas eventually covering
// each other's fzl levels. The committee that emerges is {A,B,C} weight 30.
func TestScenario1_AllThreeFinalizeTogether(t *testing.T) {
	weights := dag.WeightMap{val(1): 10, val(2): 10, val(3): 10}
	g, d := genesis(weights)
	ctx := context.Background()
	det, err := New(ctx, d, g, 0.1, nil)
	require.NoError(t, err)

	x := dag.Metadata{Hash: hash(1), Creator: val(1), Rank: 1, MainParent: g, Justification: []dag.Hash{g}, WeightMap: weights}
	d.AddBlock(x)
	res, err := det.OnNewBlock(ctx, d, x, g)
	require.NoError(t, err)
	require.Nil(t, res)

	b2 := dag.Metadata{Hash: hash(2), Creator: val(2), Rank: 1, MainParent: x.Hash, Justification: []dag.Hash{x.Hash, g}}
	d.AddBlock(b2)
	res, err = det.OnNewBlock(ctx, d, b2, g)
	require.NoError(t, err)
	require.Nil(t, res)

	b3 := dag.Metadata{Hash: hash(3), Creator: val(3), Rank: 1, MainParent: b2.Hash, Justification: []dag.Hash{b2.Hash, x.Hash, g}}
	d.AddBlock(b3)
	res, err = det.OnNewBlock(ctx, d, b3, g)
	require.NoError(t, err)
	require.Nil(t, res, "A's and B's rows are still frozen from before C existed")

	// A's catch-up message closes the loop: its panorama now covers B and
	// C, and since it keeps voting for X its fzl stays at A's first vote.
	b4 := dag.Metadata{Hash: hash(4), Creator: val(1), Rank: 2, MainParent: b3.Hash, Justification: []dag.Hash{b3.Hash, b2.Hash, x.Hash, g}}
	d.AddBlock(b4)
	res, err = det.OnNewBlock(ctx, d, b4, g)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, x.Hash, res.ConsensusValue)
	require.Equal(t, uint64(30), res.Weight)
	require.ElementsMatch(t, []dag.Validator{val(1), val(2), val(3)}, res.Committee)
}

// Scenario 2: same validator set, but only A and B ever vote for X (weight
// 20). Once each one's panorama covers the other's fzl level, the committee
// is {A,B} weight 20 — C plays no part and is simply absent from the
// result, not merely unobserved.
func TestScenario2_TwoOfThreeFinalize(t *testing.T) {
	weights := dag.WeightMap{val(1): 10, val(2): 10, val(3): 10}
	g, d := genesis(weights)
	ctx := context.Background()
	det, err := New(ctx, d, g, 0.1, nil) // q = ceil(0.6*30) = 18
	require.NoError(t, err)

	a1 := dag.Metadata{Hash: hash(1), Creator: val(1), Rank: 1, MainParent: g, Justification: []dag.Hash{g}}
	d.AddBlock(a1)
	res, err := det.OnNewBlock(ctx, d, a1, g)
	require.NoError(t, err)
	require.Nil(t, res)

	b1 := dag.Metadata{Hash: hash(2), Creator: val(2), Rank: 1, MainParent: a1.Hash, Justification: []dag.Hash{a1.Hash, g}}
	d.AddBlock(b1)
	res, err = det.OnNewBlock(ctx, d, b1, g)
	require.NoError(t, err)
	require.Nil(t, res, "A has not yet observed B's vote")

	a2 := dag.Metadata{Hash: hash(3), Creator: val(1), Rank: 2, MainParent: b1.Hash, Justification: []dag.Hash{b1.Hash, a1.Hash, g}}
	d.AddBlock(a2)
	res, err = det.OnNewBlock(ctx, d, a2, g)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, a1.Hash, res.ConsensusValue)
	require.Equal(t, uint64(20), res.Weight)
	require.ElementsMatch(t, []dag.Validator{val(1), val(2)}, res.Committee)
}

// Scenario 3: A and B vote for X, but A's panorama does not yet reach B's
// fzl level. No committee emerges — this is exactly the second step of
// scenario 2, isolated and asserted on its own.
func TestScenario3_InsufficientObservationYieldsNone(t *testing.T) {
	weights := dag.WeightMap{val(1): 10, val(2): 10, val(3): 10}
	g, d := genesis(weights)
	ctx := context.Background()
	det, err := New(ctx, d, g, 0.1, nil)
	require.NoError(t, err)

	a1 := dag.Metadata{Hash: hash(1), Creator: val(1), Rank: 1, MainParent: g, Justification: []dag.Hash{g}}
	d.AddBlock(a1)
	res, err := det.OnNewBlock(ctx, d, a1, g)
	require.NoError(t, err)
	require.Nil(t, res)

	b1 := dag.Metadata{Hash: hash(2), Creator: val(2), Rank: 1, MainParent: a1.Hash, Justification: []dag.Hash{a1.Hash, g}}
	d.AddBlock(b1)
	res, err = det.OnNewBlock(ctx, d, b1, g)
	require.NoError(t, err)
	require.Nil(t, res, "M[A][B] is still 0, below B's fzl level")
}

// Scenario 4: A votes for X, B votes for a distinct child Y of the LFB.
// Neither candidate search reaches quorum on its own weight.
func TestScenario4_DisjointVotesNeverReachQuorum(t *testing.T) {
	weights := dag.WeightMap{val(1): 10, val(2): 10}
	g, d := genesis(weights)
	ctx := context.Background()
	det, err := New(ctx, d, g, 0.1, nil) // q = 12, exceeds either single vote's 10
	require.NoError(t, err)

	x := dag.Metadata{Hash: hash(1), Creator: val(1), Rank: 1, MainParent: g, Justification: []dag.Hash{g}}
	d.AddBlock(x)
	res, err := det.OnNewBlock(ctx, d, x, g)
	require.NoError(t, err)
	require.Nil(t, res)

	y := dag.Metadata{Hash: hash(2), Creator: val(2), Rank: 1, MainParent: g, Justification: []dag.Hash{g}}
	d.AddBlock(y)
	res, err = det.OnNewBlock(ctx, d, y, g)
	require.NoError(t, err)
	require.Nil(t, res)
}

// Scenario 5: after scenario 1 finalizes X, a later block from A voting for
// X's child X' arrives. The detector has rebuilt on X, so the new block is
// processed against X as the active LFB and the committee check runs
// against X' — which, on a single vote, correctly yields no committee yet.
func TestScenario5_RebuildThenVoteOnFinalizedChild(t *testing.T) {
	weights := dag.WeightMap{val(1): 10, val(2): 10, val(3): 10}
	g, d := genesis(weights)
	ctx := context.Background()
	det, err := New(ctx, d, g, 0.1, nil)
	require.NoError(t, err)

	x := dag.Metadata{Hash: hash(1), Creator: val(1), Rank: 1, MainParent: g, Justification: []dag.Hash{g}, WeightMap: weights}
	d.AddBlock(x)
	_, err = det.OnNewBlock(ctx, d, x, g)
	require.NoError(t, err)

	b2 := dag.Metadata{Hash: hash(2), Creator: val(2), Rank: 1, MainParent: x.Hash, Justification: []dag.Hash{x.Hash, g}}
	d.AddBlock(b2)
	_, err = det.OnNewBlock(ctx, d, b2, g)
	require.NoError(t, err)

	b3 := dag.Metadata{Hash: hash(3), Creator: val(3), Rank: 1, MainParent: b2.Hash, Justification: []dag.Hash{b2.Hash, x.Hash, g}}
	d.AddBlock(b3)
	_, err = det.OnNewBlock(ctx, d, b3, g)
	require.NoError(t, err)

	b4 := dag.Metadata{Hash: hash(4), Creator: val(1), Rank: 2, MainParent: b3.Hash, Justification: []dag.Hash{b3.Hash, b2.Hash, x.Hash, g}}
	d.AddBlock(b4)
	finalized, err := det.OnNewBlock(ctx, d, b4, g)
	require.NoError(t, err)
	require.NotNil(t, finalized)
	require.Equal(t, x.Hash, det.CurrentLFB(), "a successful finalization rebuilds the detector onto the new LFB")

	xPrime := dag.Metadata{Hash: hash(5), Creator: val(1), Rank: 3, MainParent: x.Hash, Justification: []dag.Hash{x.Hash}}
	d.AddBlock(xPrime)

	res, err := det.OnNewBlock(ctx, d, xPrime, x.Hash)
	require.NoError(t, err)
	require.Nil(t, res, "a single vote for X' does not reach quorum on its own")
	require.Equal(t, x.Hash, det.CurrentLFB(), "no finalization means no further rebuild")
}

// Scenario 6: a block whose creator was never bonded at the current LFB
// makes no matrix mutation and the committee check still runs on otherwise
// unchanged state.
func TestScenario6_UnbondedCreatorLeavesStateUnchanged(t *testing.T) {
	weights := dag.WeightMap{val(1): 10}
	g, d := genesis(weights)
	ctx := context.Background()
	det, err := New(ctx, d, g, 0.1, nil)
	require.NoError(t, err)

	stranger := dag.Metadata{Hash: hash(9), Creator: val(250), Rank: 1, MainParent: g}
	d.AddBlock(stranger)

	res, err := det.OnNewBlock(ctx, d, stranger, g)
	require.NoError(t, err)
	require.Nil(t, res)
	require.Equal(t, g, det.CurrentLFB(), "an unbonded creator's block never triggers a rebuild")
}
