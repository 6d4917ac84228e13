// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command highwaysim plays back a scripted, three-validator finalization
// scenario against an in-memory DAG and prints each finalization event the
// detector emits.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/casperlabs/highway/config"
	"github.com/casperlabs/highway/dag"
	"github.com/casperlabs/highway/finality"
	"github.com/casperlabs/highway/finalizer"
	"github.com/casperlabs/highway/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "highwaysim",
	Short: "Play back a scripted finality scenario against an in-memory DAG",
	Long: `highwaysim drives the finality detector through a small, fixed
three-validator scenario and prints every finalization event it emits.`,
}

func main() {
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var rFTT float64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scripted three-validator scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd.Context(), rFTT)
		},
	}

	cmd.Flags().Float64Var(&rFTT, "rftt", 0.1, "relative fault-tolerance threshold, in (0, 0.5)")
	return cmd
}

func idToHash(id ids.ID) dag.Hash {
	var h dag.Hash
	copy(h[:], id[:])
	return h
}

func idToValidator(id ids.ID) dag.Validator {
	var v dag.Validator
	copy(v[:], id[:])
	return v
}

func runScenario(ctx context.Context, rFTT float64) error {
	cfg := config.Config{RFTT: rFTT}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("highwaysim: %w", err)
	}

	logger := log.NewNoOpLogger()

	validatorA := idToValidator(ids.GenerateTestID())
	validatorB := idToValidator(ids.GenerateTestID())
	validatorC := idToValidator(ids.GenerateTestID())
	weights := dag.WeightMap{validatorA: 10, validatorB: 10, validatorC: 10}

	d := dag.NewMemDAG()
	genesis := idToHash(ids.GenerateTestID())
	d.AddBlock(dag.Metadata{Hash: genesis, WeightMap: weights})

	det, err := finality.New(ctx, d, genesis, cfg.RFTT, logger)
	if err != nil {
		return fmt.Errorf("highwaysim: constructing detector: %w", err)
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.NewFinalityMetrics(reg)
	if err != nil {
		return fmt.Errorf("highwaysim: registering metrics: %w", err)
	}

	loop := finalizer.NewLoop(det, d, genesis, m, logger)
	if err := loop.Start(ctx); err != nil {
		return fmt.Errorf("highwaysim: starting loop: %w", err)
	}
	defer loop.Stop()

	go printFinalizations(loop)

	x := dag.Metadata{Hash: idToHash(ids.GenerateTestID()), Creator: validatorA, Rank: 1, MainParent: genesis, Justification: []dag.Hash{genesis}, WeightMap: weights}
	d.AddBlock(x)

	b2 := dag.Metadata{Hash: idToHash(ids.GenerateTestID()), Creator: validatorB, Rank: 1, MainParent: x.Hash, Justification: []dag.Hash{x.Hash, genesis}}
	d.AddBlock(b2)

	b3 := dag.Metadata{Hash: idToHash(ids.GenerateTestID()), Creator: validatorC, Rank: 1, MainParent: b2.Hash, Justification: []dag.Hash{b2.Hash, x.Hash, genesis}}
	d.AddBlock(b3)

	b4 := dag.Metadata{Hash: idToHash(ids.GenerateTestID()), Creator: validatorA, Rank: 2, MainParent: b3.Hash, Justification: []dag.Hash{b3.Hash, b2.Hash, x.Hash, genesis}}
	d.AddBlock(b4)

	for _, block := range []dag.Metadata{x, b2, b3, b4} {
		if err := loop.Submit(ctx, block); err != nil {
			return fmt.Errorf("highwaysim: submitting block %s: %w", block.Hash, err)
		}
	}

	time.Sleep(100 * time.Millisecond)
	return nil
}

func printFinalizations(loop *finalizer.Loop) {
	for finalized := range loop.Finalized() {
		fmt.Printf("finalized %s weight=%d committee_size=%d\n",
			finalized.ConsensusValue, finalized.Weight, len(finalized.Committee))
	}
}
