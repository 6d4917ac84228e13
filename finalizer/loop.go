// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package finalizer drives a finality.Detector from a stream of incoming
// blocks, tracking the detector's current LFB between calls and publishing
// finalization events on a channel.
package finalizer

import (
	"context"
	"fmt"
	"sync"

	"github.com/luxfi/log"

	"github.com/casperlabs/highway/dag"
	"github.com/casperlabs/highway/finality"
	"github.com/casperlabs/highway/metrics"
)

// Loop consumes a block stream and calls Detector.OnNewBlock on each
// arrival, serialized by Start/Stop: running is guarded by mu, and Stop blocks
// until the worker goroutine has actually exited.
type Loop struct {
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	reader  dag.Reader
	det     *finality.Detector
	metrics *metrics.FinalityMetrics
	log     log.Logger

	lfb dag.Hash

	blocks    chan dag.Metadata
	finalized chan *finality.Finalized
}

// NewLoop constructs a Loop over det, rooted at initialLFB — normally
// det.CurrentLFB() at construction time. logger may be nil.
func NewLoop(det *finality.Detector, reader dag.Reader, initialLFB dag.Hash, m *metrics.FinalityMetrics, logger log.Logger) *Loop {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Loop{
		reader:    reader,
		det:       det,
		metrics:   m,
		log:       logger,
		lfb:       initialLFB,
		blocks:    make(chan dag.Metadata, 64),
		finalized: make(chan *finality.Finalized, 16),
	}
}

// Start launches the worker goroutine. It is an error to Start a Loop that
// is already running.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return fmt.Errorf("finalizer: loop already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.running = true

	l.wg.Add(1)
	go l.run(runCtx)
	return nil
}

// Stop cancels the worker and waits for it to exit. It is an error to Stop
// a Loop that is not running.
func (l *Loop) Stop() error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return fmt.Errorf("finalizer: loop not running")
	}
	l.cancel()
	l.running = false
	l.mu.Unlock()

	l.wg.Wait()
	return nil
}

// Submit enqueues block for processing. It blocks if the internal queue is
// full, and returns ctx.Err() if ctx is canceled first.
func (l *Loop) Submit(ctx context.Context, block dag.Metadata) error {
	select {
	case l.blocks <- block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Finalized returns the channel of finalization events. It is closed when
// the worker goroutine exits.
func (l *Loop) Finalized() <-chan *finality.Finalized {
	return l.finalized
}

// CurrentLFB returns the LFB the loop will pass to the detector on the next
// block it processes.
func (l *Loop) CurrentLFB() dag.Hash {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lfb
}

func (l *Loop) run(ctx context.Context) {
	defer l.wg.Done()
	defer close(l.finalized)

	for {
		select {
		case <-ctx.Done():
			return
		case block, ok := <-l.blocks:
			if !ok {
				return
			}
			l.processOne(ctx, block)
		}
	}
}

func (l *Loop) processOne(ctx context.Context, block dag.Metadata) {
	if l.metrics != nil {
		l.metrics.BlocksProcessed.Inc()
	}

	lfb := l.CurrentLFB()
	result, err := l.det.OnNewBlock(ctx, l.reader, block, lfb)
	if err != nil {
		l.log.Error("finality: processing block failed", "block", block.Hash, "lfb", lfb, "err", err)
		return
	}
	if result == nil {
		return
	}

	l.log.Info("finalized", "value", result.ConsensusValue, "weight", result.Weight, "committee_size", len(result.Committee))
	if l.metrics != nil {
		l.metrics.Finalizations.Inc()
		l.metrics.Rebuilds.Inc()
		l.metrics.LastCommitteeWeight.Set(float64(result.Weight))
	}

	l.mu.Lock()
	l.lfb = result.ConsensusValue
	l.mu.Unlock()

	select {
	case l.finalized <- result:
	case <-ctx.Done():
	}
}
