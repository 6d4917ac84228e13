// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dag

import "errors"

// ErrNotFound is returned by Reader implementations when a hash presumed
// present is missing from the store. The finality detector never attempts
// to recover from this; it propagates the error unchanged.
var ErrNotFound = errors.New("dag: block not found")
