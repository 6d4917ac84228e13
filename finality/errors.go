// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package finality

import "errors"

// ErrInvalidRFTT is returned by New when rFTT is not in the open interval
// (0, 0.5). This is a precondition violation: it fails construction loudly
// and is never recovered from.
var ErrInvalidRFTT = errors.New("finality: rFTT must be in the open interval (0, 0.5)")

// ErrStaleLFB is returned by OnNewBlock when the caller's currentLFB does
// not match the detector's own last-rebuilt LFB. The ordering guarantee in
// spec.md §5 requires callers to serialize against emitted finalizations;
// this is the detector's check that they did.
var ErrStaleLFB = errors.New("finality: caller's current LFB does not match detector state")
