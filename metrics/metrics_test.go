// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewFinalityMetrics_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewFinalityMetrics(reg)
	require.NoError(t, err)

	m.BlocksProcessed.Inc()
	m.Finalizations.Inc()
	m.Rebuilds.Inc()
	m.LastCommitteeWeight.Set(30)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 4)
}

func TestNewFinalityMetrics_DuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewFinalityMetrics(reg)
	require.NoError(t, err)

	_, err = NewFinalityMetrics(reg)
	require.Error(t, err)
}
