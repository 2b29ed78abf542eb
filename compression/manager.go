// Package compression implements the page-level, content-aware
// compression strategies a B-tree page can be encoded with: PREFIX,
// DICT, DELTA, RLE, and GENERAL, plus the NONE sentinel for pages the
// manager declines to compress.
package compression

import "pgbtree/kv"

// strategy is the small, closed set of codecs the Manager chooses
// between. Unlike an open plugin interface, every implementation lives
// in this package and is known to Manager.strategies at construction
// time — a flat table, not a registry.
type strategy interface {
	tag() StrategyTag
	applicable(fp fingerprint) bool
	estimate(entries []kv.Pair, fp fingerprint) float64
	encode(entries []kv.Pair, fp fingerprint) ([]byte, Metadata, error)
	decode(blob []byte, meta Metadata) ([]kv.Pair, error)
}

// StrategyCounters accumulates how much a single strategy has been
// asked to do and how well it has done it.
type StrategyCounters struct {
	Count          int
	BytesIn        int64
	BytesOut       int64
}

// Stats is the Manager's running tally across every Compress call.
type Stats struct {
	Attempts   int
	Successes  int
	ByStrategy map[StrategyTag]StrategyCounters
}

// Manager picks a compression strategy for a page's entries, encodes
// it, and tracks acceptance statistics. It holds no page data itself;
// Tree/node own the entries and blobs, Manager is purely the cost-model
// and codec dispatch.
type Manager struct {
	acceptEstimate float64
	acceptActual   float64
	strategies     []strategy
	stats          Stats
}

// NewManager builds a Manager from the tree's configured acceptance
// thresholds and general-purpose payload floor.
func NewManager(acceptEstimate, acceptActual float64, minPayloadForGeneral int) *Manager {
	return &Manager{
		acceptEstimate: acceptEstimate,
		acceptActual:   acceptActual,
		// Ordered by decoder cost, cheapest first, per spec §4.3 step 3
		// tie-break: prefix > RLE > delta > dictionary > general.
		strategies: []strategy{
			prefixStrategy{},
			rleStrategy{},
			deltaStrategy{},
			dictStrategy{},
			generalStrategy{minPayload: minPayloadForGeneral},
		},
		stats: Stats{ByStrategy: make(map[StrategyTag]StrategyCounters)},
	}
}

// Compress picks the best-estimated applicable strategy, encodes with
// it, and verifies the actual ratio against acceptActual. If no
// strategy is applicable, estimate clears the bar, or the actual
// encode doesn't, it returns (nil, Metadata{Tag: TagNone}, false, nil):
// the caller keeps the page uncompressed without treating that as an
// error. Per spec §4.3 step 1, the fingerprint is computed once and
// shared across every candidate's estimate.
func (m *Manager) Compress(entries []kv.Pair) ([]byte, Metadata, bool, error) {
	m.stats.Attempts++
	if len(entries) == 0 {
		return nil, Metadata{Tag: TagNone}, false, nil
	}

	fp := computeFingerprint(entries)

	// Strategies are walked in decoder-cost tie-break order (see
	// NewManager); the first applicable strategy to post the best
	// estimated ratio wins, so equal-estimate ties keep the cheaper
	// decoder rather than the later entry in the list.
	var best strategy
	var bestRatio float64
	for _, s := range m.strategies {
		if !s.applicable(fp) {
			continue
		}
		ratio := s.estimate(entries, fp)
		if ratio > m.acceptEstimate {
			continue
		}
		if best == nil || ratio < bestRatio {
			best = s
			bestRatio = ratio
		}
	}
	if best == nil {
		return nil, Metadata{Tag: TagNone}, false, nil
	}

	blob, meta, err := best.encode(entries, fp)
	if err != nil {
		return nil, Metadata{}, false, err
	}

	actualRatio := ratioAfterSavings(fp.totalBytes, fp.totalBytes-len(blob))
	if actualRatio > m.acceptActual {
		// Rejected: the page stays uncompressed, so neither its bytes nor
		// a count enter ByStrategy. Committing BytesIn here without a
		// matching BytesOut would inflate GetStatistics' sum(BytesOut)/
		// sum(BytesIn) ratio with pages that never actually compressed.
		return nil, Metadata{Tag: TagNone}, false, nil
	}

	counters := m.stats.ByStrategy[best.tag()]
	counters.Count++
	counters.BytesIn += int64(fp.totalBytes)
	counters.BytesOut += int64(len(blob))
	m.stats.ByStrategy[best.tag()] = counters
	m.stats.Successes++
	return blob, meta, true, nil
}

// Decompress reverses whatever strategy meta.Tag names. TagNone is an
// error: the caller should never have a compressed blob to decode for
// a page that was never successfully compressed.
func (m *Manager) Decompress(blob []byte, meta Metadata) ([]kv.Pair, error) {
	for _, s := range m.strategies {
		if s.tag() == meta.Tag {
			return s.decode(blob, meta)
		}
	}
	return nil, &DecompressionError{Tag: meta.Tag}
}

// EstimateStrategies runs every applicable strategy's cost-model
// estimate over entries and returns each one's projected
// compressed/original ratio, keyed by tag. It fingerprints entries once
// and shares that fingerprint across every candidate, exactly as
// Compress does, but it never encodes, never compares against
// acceptEstimate/acceptActual, and never touches m.stats: this is a
// read-only probe over a caller-supplied sample, not a commit.
func (m *Manager) EstimateStrategies(entries []kv.Pair) map[StrategyTag]float64 {
	out := make(map[StrategyTag]float64)
	if len(entries) == 0 {
		return out
	}
	fp := computeFingerprint(entries)
	for _, s := range m.strategies {
		if !s.applicable(fp) {
			continue
		}
		out[s.tag()] = s.estimate(entries, fp)
	}
	return out
}

// GetStats returns a snapshot of the manager's running counters.
func (m *Manager) GetStats() Stats {
	out := Stats{
		Attempts:   m.stats.Attempts,
		Successes:  m.stats.Successes,
		ByStrategy: make(map[StrategyTag]StrategyCounters, len(m.stats.ByStrategy)),
	}
	for k, v := range m.stats.ByStrategy {
		out.ByStrategy[k] = v
	}
	return out
}

// DecompressionError reports an attempt to decode a blob tagged with a
// strategy the Manager has no codec for — a corrupted or foreign tag.
type DecompressionError struct {
	Tag StrategyTag
}

func (e *DecompressionError) Error() string {
	return "compression: no codec for strategy tag " + e.Tag.String()
}
