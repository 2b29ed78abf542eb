// Package config holds tunable parameters for a pgbtree Tree.
package config

import (
	"os"
	"strconv"
)

// Config controls the branching factor, compression behavior, and
// acceptance thresholds of a Tree.
type Config struct {
	// Order is the maximum number of children per internal page. Must
	// be >= 4.
	Order int

	// EnableCompression toggles whether CompressAllPages does anything.
	// When false, CompressAllPages is a no-op.
	EnableCompression bool

	// MinPayloadForGeneral is the byte threshold below which the
	// GENERAL (deflate) strategy is skipped as not worth the overhead.
	MinPayloadForGeneral int

	// AcceptanceRatioEstimate rejects a candidate strategy whose
	// estimated compressed/original ratio exceeds this before encoding.
	AcceptanceRatioEstimate float64

	// AcceptanceRatioActual discards an actual encode whose measured
	// ratio exceeds this, falling back to NONE.
	AcceptanceRatioActual float64
}

// Default returns the engine's default tuning, overridable via
// PGBTREE_ORDER, PGBTREE_ENABLE_COMPRESSION, PGBTREE_MIN_PAYLOAD_FOR_GENERAL,
// PGBTREE_ACCEPTANCE_RATIO_ESTIMATE, and PGBTREE_ACCEPTANCE_RATIO_ACTUAL.
func Default() Config {
	return Config{
		Order:                   envInt("PGBTREE_ORDER", 256),
		EnableCompression:       envBool("PGBTREE_ENABLE_COMPRESSION", true),
		MinPayloadForGeneral:    envInt("PGBTREE_MIN_PAYLOAD_FOR_GENERAL", 128),
		AcceptanceRatioEstimate: envFloat("PGBTREE_ACCEPTANCE_RATIO_ESTIMATE", 0.9),
		AcceptanceRatioActual:   envFloat("PGBTREE_ACCEPTANCE_RATIO_ACTUAL", 0.95),
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
