// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config holds construction-time configuration for the finality
// detector and its validation.
package config

import (
	"fmt"
	"strings"

	"github.com/luxfi/log"
)

// Config is the detector's sole tunable: the relative fault-tolerance
// threshold used to derive the per-round quorum.
type Config struct {
	// RFTT must lie in the open interval (0, 0.5). Values near 0 tolerate
	// almost no adversarial weight before quorum is reached; values near
	// 0.5 require near-unanimous support.
	RFTT float64
}

// ValidationError describes one violated constraint.
type ValidationError struct {
	Field      string
	Value      interface{}
	Constraint string
	Suggestion string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s=%v violates constraint: %s", ve.Field, ve.Value, ve.Constraint)
}

// ValidationResult collects every violated constraint found by
// ValidateDetailed, rather than stopping at the first.
type ValidationResult struct {
	Errors []ValidationError
	Valid  bool
}

// ValidationErrors flattens a set of ValidationError into a single error,
// one violated constraint per line.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	lines := make([]string, len(ve))
	for i, err := range ve {
		lines[i] = err.Error()
	}
	return fmt.Sprintf("invalid configuration (%d constraint%s violated):\n%s",
		len(ve), plural(len(ve)), strings.Join(lines, "\n"))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// Validate returns a single combined error, or nil if cfg is valid.
func Validate(cfg Config) error {
	result := ValidateDetailed(cfg)
	if result.Valid {
		return nil
	}
	return ValidationErrors(result.Errors)
}

// ValidateDetailed checks every constraint on cfg and returns the full set
// of violations found.
func ValidateDetailed(cfg Config) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if cfg.RFTT <= 0 {
		addError(result, "RFTT", cfg.RFTT, "must be greater than 0", "set RFTT > 0")
	}
	if cfg.RFTT >= 0.5 {
		addError(result, "RFTT", cfg.RFTT, "must be less than 0.5", "set RFTT < 0.5")
	}
	if cfg.RFTT > 0 && cfg.RFTT < 0.01 {
		log.Warn("very low RFTT configured: quorum is a bare majority of weight, tolerating almost no faulty weight",
			"rFTT", cfg.RFTT)
	}

	return result
}

func addError(result *ValidationResult, field string, value interface{}, constraint, suggestion string) {
	result.Errors = append(result.Errors, ValidationError{
		Field:      field,
		Value:      value,
		Constraint: constraint,
		Suggestion: suggestion,
	})
	result.Valid = false
}
