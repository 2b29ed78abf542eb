// Package pgbtree is an in-memory, PostgreSQL-style B-tree index: an
// ordered multimap from keys to values with point lookup, range scan,
// insertion, duplicate-aware deletion with rebalancing, and
// multi-strategy page-level compression.
package pgbtree

import (
	"log"

	"pgbtree/btree"
	"pgbtree/compression"
	"pgbtree/config"
	"pgbtree/kv"
	"pgbtree/stats"
)

// Tree is the public handle to an index. The zero value is not usable;
// construct one with New.
type Tree struct {
	inner *btree.Tree
}

// New builds an empty Tree per cfg. cfg.Order < 4 is a construction-time
// contract violation — this constructor has no error return (matching
// the source's `new(order, enable_compression) -> Tree` signature), so
// it logs and panics rather than returning a zero Tree a caller might
// mistake for usable.
func New(cfg config.Config) *Tree {
	t, err := btree.New(cfg)
	if err != nil {
		log.Printf("pgbtree: %v", err)
		panic(err)
	}
	return &Tree{inner: t}
}

// Insert adds key -> value. Duplicate keys accumulate; insertion order
// among entries sharing a key is preserved.
func (t *Tree) Insert(key, value any) error {
	return t.inner.Insert(key, value)
}

// Search returns every value stored under key, in insertion order. A
// missing key yields an empty, non-nil slice.
func (t *Tree) Search(key any) ([]any, error) {
	return t.inner.Search(key)
}

// Delete removes the first entry matching key, or the first entry
// matching both key and value when value is supplied. Reports whether
// anything was removed.
func (t *Tree) Delete(key any, value ...any) (bool, error) {
	return t.inner.Delete(key, value...)
}

// RangeQuery returns a single-pass cursor over entries with key in
// [start, end] (inclusive=true) or (start, end) (inclusive=false).
func (t *Tree) RangeQuery(start, end any, inclusive bool) (Cursor, error) {
	return t.inner.RangeQuery(start, end, inclusive)
}

// CompressAllPages walks every page, compressing any materialized page
// the CompressionManager judges worth compressing. A no-op if the tree
// was constructed with EnableCompression=false.
func (t *Tree) CompressAllPages() CompressionReport {
	return t.inner.CompressAllPages()
}

// GetStatistics reports the tree's shape, aggregate compression ratio,
// and two independent memory estimates: EstimatedBytes from a cheap
// per-node/per-entry cost model, MeasuredBytes from a reflection-based
// deep walk of the live structure.
func (t *Tree) GetStatistics() TreeStats {
	s := t.inner.GetStatistics()
	s.EstimatedBytes = stats.EstimateBytes(t.inner)
	s.MeasuredBytes = stats.MeasureBytes(t.inner)
	return s
}

// GetDetailedCompressionStats returns the compression manager's
// running counters: attempts, successes, and per-strategy byte totals.
func (t *Tree) GetDetailedCompressionStats() CompressionStats {
	return t.inner.GetDetailedCompressionStats()
}

// EstimateCompressionStrategies forecasts each applicable strategy's
// compressed/original ratio for sample without compressing anything or
// touching the committed counters GetDetailedCompressionStats reports.
// sample is an arbitrary slice of key/value pairs, not necessarily
// anything currently stored in the tree.
func (t *Tree) EstimateCompressionStrategies(sample []Pair) map[StrategyTag]float64 {
	return t.inner.EstimateCompressionStrategies(sample)
}

// Cursor, TreeStats, CompressionReport, CompressionStats, and Pair are
// re-exported from btree/kv so callers never need to import them
// directly.
type (
	Cursor            = btree.Cursor
	TreeStats         = btree.TreeStats
	CompressionReport = btree.CompressionReport
	CompressionStats  = btree.CompressionStats
	StrategyCounters  = compression.StrategyCounters
	StrategyTag       = compression.StrategyTag
	Pair              = kv.Pair
)

// Strategy tags identify which compression codec produced a page's
// blob, reported in CompressionReport.ByStrategy and
// CompressionStats.ByStrategy.
const (
	TagNone    = compression.TagNone
	TagPrefix  = compression.TagPrefix
	TagDict    = compression.TagDict
	TagDelta   = compression.TagDelta
	TagRLE     = compression.TagRLE
	TagGeneral = compression.TagGeneral
)

// InvalidArgumentError and DecompressionError are the two error types
// this package's operations ever return (spec §7): a caller-supplied
// argument violated a precondition, or a compressed page's blob could
// not be reversed (possible only under memory corruption, since every
// blob was produced by the same manager asked to reverse it).
type (
	InvalidArgumentError = btree.InvalidArgumentError
	DecompressionError   = btree.DecompressionError
)
