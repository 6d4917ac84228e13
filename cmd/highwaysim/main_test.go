// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunScenario_RejectsInvalidRFTT(t *testing.T) {
	err := runScenario(context.Background(), 0.5)
	require.Error(t, err)
}

func TestRunScenario_CompletesWithDefaultRFTT(t *testing.T) {
	err := runScenario(context.Background(), 0.1)
	require.NoError(t, err)
}
