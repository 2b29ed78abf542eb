// Package btree implements an in-memory, PostgreSQL-style B-tree index
// supporting duplicate keys, leaf-chained range scans, and page-level
// compression. Tree structure and rebalancing follow
// storage/index/btree.go's insert/split recursion shape; the
// borrow-then-merge underflow handling follows the
// nextSibling/prevSibling/unbalanced shape of bolt's node.rebalance.
package btree

import (
	"fmt"
	"reflect"

	"pgbtree/compression"
	"pgbtree/config"
	"pgbtree/kv"
)

// Tree is the top-level index: a root page, the configured fanout, and
// the compression manager every page shares.
type Tree struct {
	root              *node
	order             int
	enableCompression bool
	mgr               *compression.Manager

	totalKeys int
	nodeCount int
	height    int
}

// New builds an empty Tree per cfg. Returns *InvalidArgumentError if
// cfg.Order is below the minimum fanout of 4.
func New(cfg config.Config) (*Tree, error) {
	if cfg.Order < 4 {
		return nil, &InvalidArgumentError{Reason: fmt.Sprintf("order must be >= 4, got %d", cfg.Order)}
	}
	return &Tree{
		root:              &node{isLeaf: true},
		order:             cfg.Order,
		enableCompression: cfg.EnableCompression,
		mgr:               compression.NewManager(cfg.AcceptanceRatioEstimate, cfg.AcceptanceRatioActual, cfg.MinPayloadForGeneral),
		nodeCount:         1,
	}, nil
}

func (t *Tree) validateKey(key any) error {
	if _, err := kv.Compare(key, key); err != nil {
		return &InvalidArgumentError{Reason: err.Error()}
	}
	return nil
}

// Insert adds (key, value); duplicate keys are appended after any
// existing entries for the same key (spec §4.1 "stable among equal
// keys"). Never errors on a duplicate key — only on an invalid key.
func (t *Tree) Insert(key, value any) error {
	if err := t.validateKey(key); err != nil {
		return err
	}

	promoted, newChild, err := t.insert(t.root, kv.Pair{Key: key, Value: value})
	if err != nil {
		return err
	}
	if newChild != nil {
		newRoot := &node{
			isLeaf:   false,
			entries:  []kv.Pair{promoted},
			children: []*node{t.root, newChild},
		}
		t.root.parent = newRoot
		newChild.parent = newRoot
		t.root = newRoot
		t.height++
		t.nodeCount++
	}
	t.totalKeys++
	return nil
}

// insert descends into n, inserting e at the position upperBound picks
// (after any existing entries with an equal key). If n overflows, it
// returns the promoted separator and the new right sibling; otherwise
// newChild is nil.
func (t *Tree) insert(n *node, e kv.Pair) (kv.Pair, *node, error) {
	if err := n.ensureMaterialized(t.mgr); err != nil {
		return kv.Pair{}, nil, err
	}

	idx, err := upperBound(n.entries, e.Key)
	if err != nil {
		return kv.Pair{}, nil, &InvalidArgumentError{Reason: err.Error()}
	}

	if n.isLeaf {
		n.entries = append(n.entries, kv.Pair{})
		copy(n.entries[idx+1:], n.entries[idx:])
		n.entries[idx] = e
	} else {
		promoted, newChild, err := t.insert(n.children[idx], e)
		if err != nil {
			return kv.Pair{}, nil, err
		}
		if newChild == nil {
			return kv.Pair{}, nil, nil
		}

		n.entries = append(n.entries, kv.Pair{})
		copy(n.entries[idx+1:], n.entries[idx:])
		n.entries[idx] = promoted

		n.children = append(n.children, nil)
		copy(n.children[idx+2:], n.children[idx+1:])
		n.children[idx+1] = newChild
		newChild.parent = n
	}

	if len(n.entries) > maxEntries(t.order) {
		return t.split(n)
	}
	return kv.Pair{}, nil, nil
}

// split partitions an overflowed page at its midpoint, adjusted (for
// leaves) by adjustLeafSplit to the nearest boundary between distinct
// keys where one exists, so a run of equal keys usually stays in one
// leaf. A leaf holding a single key throughout is cut at the plain
// midpoint; Search and RangeQuery still find every duplicate, since
// they descend with lowerBound and scan forward along nextLeaf.
func (t *Tree) split(n *node) (kv.Pair, *node, error) {
	mid := len(n.entries) / 2

	if n.isLeaf {
		mid = adjustLeafSplit(n.entries, mid)
		right := &node{isLeaf: true, parent: n.parent}
		right.entries = append([]kv.Pair{}, n.entries[mid:]...)
		n.entries = n.entries[:mid]

		right.nextLeaf = n.nextLeaf
		n.nextLeaf = right
		t.nodeCount++

		return kv.Pair{Key: right.entries[0].Key}, right, nil
	}

	promoted := n.entries[mid]
	right := &node{isLeaf: false, parent: n.parent}
	right.entries = append([]kv.Pair{}, n.entries[mid+1:]...)
	right.children = append([]*node{}, n.children[mid+1:]...)
	for _, c := range right.children {
		c.parent = right
	}
	n.children = n.children[:mid+1]
	n.entries = n.entries[:mid]
	t.nodeCount++

	return promoted, right, nil
}

// adjustLeafSplit nudges mid to the nearest boundary between distinct
// keys, searching forward then backward. If entries is a single run of
// one key, it gives up and returns mid unadjusted — an unavoidable edge
// case for a key repeated across more entries than one leaf can hold.
func adjustLeafSplit(entries []kv.Pair, mid int) int {
	if mid <= 0 || mid >= len(entries) {
		return mid
	}
	if !kv.Equal(entries[mid].Key, entries[mid-1].Key) {
		return mid
	}
	for j := mid + 1; j < len(entries); j++ {
		if !kv.Equal(entries[j].Key, entries[j-1].Key) {
			return j
		}
	}
	for j := mid - 1; j > 0; j-- {
		if !kv.Equal(entries[j].Key, entries[j-1].Key) {
			return j
		}
	}
	return mid
}

// Search collects every value stored under key, following next_leaf
// across leaf boundaries for duplicate runs that span a split (spec
// §4.1). Returns an empty, non-nil slice (not an error) when key is
// absent.
func (t *Tree) Search(key any) ([]any, error) {
	if err := t.validateKey(key); err != nil {
		return nil, err
	}

	leaf, err := t.findLeafFloor(key)
	if err != nil {
		return nil, err
	}

	values := []any{}
	for leaf != nil {
		if err := leaf.ensureMaterialized(t.mgr); err != nil {
			return nil, err
		}
		idx, err := lowerBound(leaf.entries, key)
		if err != nil {
			return nil, err
		}
		for idx < len(leaf.entries) && kv.Equal(leaf.entries[idx].Key, key) {
			values = append(values, leaf.entries[idx].Value)
			idx++
		}
		if idx < len(leaf.entries) {
			break // ran into a strictly-greater key in this leaf; done
		}
		if leaf.nextLeaf == nil {
			break
		}
		if err := leaf.nextLeaf.ensureMaterialized(t.mgr); err != nil {
			return nil, err
		}
		if len(leaf.nextLeaf.entries) == 0 || !kv.Equal(leaf.nextLeaf.entries[0].Key, key) {
			break
		}
		leaf = leaf.nextLeaf
	}
	return values, nil
}

// findLeafFloor descends to the first leaf that could contain key: the
// leftmost leaf such that no leaf to its left holds any entry equal to
// key. Uses lowerBound at every level (see package doc on the dual
// position functions).
func (t *Tree) findLeafFloor(key any) (*node, error) {
	n := t.root
	for {
		if err := n.ensureMaterialized(t.mgr); err != nil {
			return nil, err
		}
		if n.isLeaf {
			return n, nil
		}
		idx, err := lowerBound(n.entries, key)
		if err != nil {
			return nil, err
		}
		n = n.children[idx]
	}
}

// Delete removes the first entry matching key (and, if value is
// given, matching value too). Returns (false, nil) if nothing matched.
// Values of a kind kv.Compare orders are matched by Compare; any other
// value is matched with reflect.DeepEqual.
func (t *Tree) Delete(key any, value ...any) (bool, error) {
	if err := t.validateKey(key); err != nil {
		return false, err
	}
	var want any
	hasValue := len(value) > 0
	if hasValue {
		want = value[0]
	}

	leaf, err := t.findLeafFloor(key)
	if err != nil {
		return false, err
	}

	for leaf != nil {
		if err := leaf.ensureMaterialized(t.mgr); err != nil {
			return false, err
		}
		idx, err := lowerBound(leaf.entries, key)
		if err != nil {
			return false, err
		}
		for idx < len(leaf.entries) && kv.Equal(leaf.entries[idx].Key, key) {
			match := !hasValue
			if hasValue {
				// Values are opaque: kinds kv.Compare orders are matched
				// by it, anything else by the value type's own equality.
				if c, err := kv.Compare(leaf.entries[idx].Value, want); err == nil {
					match = c == 0
				} else {
					match = reflect.DeepEqual(leaf.entries[idx].Value, want)
				}
			}
			if match {
				leaf.entries = append(leaf.entries[:idx], leaf.entries[idx+1:]...)
				t.totalKeys--
				if err := t.rebalance(leaf); err != nil {
					return false, err
				}
				return true, nil
			}
			idx++
		}
		if idx < len(leaf.entries) {
			return false, nil
		}
		next := leaf.nextLeaf
		if next == nil {
			return false, nil
		}
		if err := next.ensureMaterialized(t.mgr); err != nil {
			return false, err
		}
		if len(next.entries) == 0 || !kv.Equal(next.entries[0].Key, key) {
			return false, nil
		}
		leaf = next
	}
	return false, nil
}

// rebalance restores the underflow invariant for n after a deletion,
// borrowing from a sibling if one can spare an entry, else merging —
// recursing up toward the root exactly as bolt's node.rebalance does.
func (t *Tree) rebalance(n *node) error {
	if err := n.ensureMaterialized(t.mgr); err != nil {
		return err
	}

	if n == t.root {
		if !n.isLeaf && len(n.entries) == 0 {
			child := n.children[0]
			child.parent = nil
			t.root = child
			t.height--
			t.nodeCount--
		}
		return nil
	}

	if len(n.entries) >= minEntries(t.order) {
		return nil
	}

	left := n.prevSibling()
	if left != nil {
		if err := left.ensureMaterialized(t.mgr); err != nil {
			return err
		}
		if len(left.entries) > minEntries(t.order) {
			t.borrowFromLeft(n, left)
			return nil
		}
	}

	right := n.nextSibling()
	if right != nil {
		if err := right.ensureMaterialized(t.mgr); err != nil {
			return err
		}
		if len(right.entries) > minEntries(t.order) {
			t.borrowFromRight(n, right)
			return nil
		}
	}

	if right != nil {
		return t.mergeInto(n, right)
	}
	if left != nil {
		return t.mergeInto(left, n)
	}
	// n is the only child of its parent but isn't the root: spec's
	// invariants guarantee every internal page has >= 2 children, so
	// this is unreachable outside a corrupted tree.
	return nil
}

// borrowFromLeft rotates left's last entry (and, for internal pages,
// last child) through the parent separator into n.
func (t *Tree) borrowFromLeft(n, left *node) {
	idx := n.parent.childIndex(n)
	sepIdx := idx - 1

	if n.isLeaf {
		moved := left.entries[len(left.entries)-1]
		left.entries = left.entries[:len(left.entries)-1]
		n.entries = append([]kv.Pair{moved}, n.entries...)
		n.parent.entries[sepIdx] = kv.Pair{Key: n.entries[0].Key}
		return
	}

	n.entries = append([]kv.Pair{n.parent.entries[sepIdx]}, n.entries...)
	n.parent.entries[sepIdx] = left.entries[len(left.entries)-1]
	left.entries = left.entries[:len(left.entries)-1]

	movedChild := left.children[len(left.children)-1]
	left.children = left.children[:len(left.children)-1]
	n.children = append([]*node{movedChild}, n.children...)
	movedChild.parent = n
}

// borrowFromRight mirrors borrowFromLeft, rotating right's first entry
// (and first child) through the parent separator into n.
func (t *Tree) borrowFromRight(n, right *node) {
	idx := n.parent.childIndex(n)
	sepIdx := idx

	if n.isLeaf {
		moved := right.entries[0]
		right.entries = right.entries[1:]
		n.entries = append(n.entries, moved)
		n.parent.entries[sepIdx] = kv.Pair{Key: right.entries[0].Key}
		return
	}

	n.entries = append(n.entries, n.parent.entries[sepIdx])
	n.parent.entries[sepIdx] = right.entries[0]
	right.entries = right.entries[1:]

	movedChild := right.children[0]
	right.children = right.children[1:]
	n.children = append(n.children, movedChild)
	movedChild.parent = n
}

// mergeInto absorbs right into n — n keeps its identity, right and its
// separator in the parent are removed, and the parent is recursively
// rebalanced.
func (t *Tree) mergeInto(n, right *node) error {
	parent := n.parent
	sepIdx := parent.childIndex(n)

	if n.isLeaf {
		n.entries = append(n.entries, right.entries...)
		n.nextLeaf = right.nextLeaf
	} else {
		n.entries = append(n.entries, parent.entries[sepIdx])
		n.entries = append(n.entries, right.entries...)
		for _, c := range right.children {
			c.parent = n
		}
		n.children = append(n.children, right.children...)
	}

	parent.entries = append(parent.entries[:sepIdx], parent.entries[sepIdx+1:]...)
	rightIdx := parent.childIndex(right)
	parent.children = append(parent.children[:rightIdx], parent.children[rightIdx+1:]...)
	t.nodeCount--

	return t.rebalance(parent)
}

// CompressAllPages walks every page, invoking the CompressionManager on
// each materialized, not-yet-compressed page (spec §4.1). A no-op when
// compression is disabled. BytesSaved is the tree-wide cumulative total
// across every page ever successfully compressed, not this call's own
// delta: a page already compressed by an earlier call is skipped here
// (it is no longer materialized) but its savings still belong in the
// total, so a second invocation on an otherwise unchanged tree reports
// the same BytesSaved as the first — the idempotence spec §8 requires
// of compress_all_pages, matching the original's cumulative
// total_original_size/total_compressed_size bookkeeping
// (original_source/btree.py's compress_all_pages).
func (t *Tree) CompressAllPages() CompressionReport {
	report := CompressionReport{ByStrategy: make(map[compression.StrategyTag]int)}
	if !t.enableCompression {
		return report
	}
	t.walk(t.root, func(n *node) {
		if n.compressed || len(n.entries) == 0 {
			return
		}
		report.Attempts++
		ok := n.compress(t.mgr)
		if !ok {
			report.Failures++
			return
		}
		report.Successes++
		report.ByStrategy[n.meta.Tag]++
	})
	for _, c := range t.mgr.GetStats().ByStrategy {
		report.BytesSaved += c.BytesIn - c.BytesOut
	}
	return report
}

func (t *Tree) walk(n *node, fn func(*node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.children {
		t.walk(c, fn)
	}
}

// TreeStats reports the tree's structural shape and compression
// effectiveness. EstimatedBytes/MeasuredBytes are left zero here and
// filled in by the stats package, which needs the NodeCount/TotalKeys
// accessors below plus a reflection-based cross-check.
type TreeStats struct {
	Height          int
	NodeCount       int
	TotalKeys       int
	AvgFillRatio    float64
	CompressionRatio *float64
	EstimatedBytes  int64
	MeasuredBytes   int64
}

// GetStatistics reports the tree's shape and aggregate compression
// ratio. Entry counts for compressed pages come from their metadata
// (Metadata.Count), so this never triggers decompression.
func (t *Tree) GetStatistics() TreeStats {
	stats := TreeStats{
		Height:    t.height,
		NodeCount: t.nodeCount,
		TotalKeys: t.totalKeys,
	}

	var fillSum float64
	var pageCount int
	t.walk(t.root, func(n *node) {
		pageCount++
		count := len(n.entries)
		if n.compressed {
			count = n.meta.Count
		}
		capacity := maxEntries(t.order)
		if capacity > 0 {
			fillSum += float64(count) / float64(capacity)
		}
	})
	if pageCount > 0 {
		stats.AvgFillRatio = fillSum / float64(pageCount)
	}

	mgrStats := t.mgr.GetStats()
	if mgrStats.Attempts > 0 {
		var bytesIn, bytesOut int64
		for _, c := range mgrStats.ByStrategy {
			bytesIn += c.BytesIn
			bytesOut += c.BytesOut
		}
		if bytesIn > 0 {
			ratio := float64(bytesOut) / float64(bytesIn)
			stats.CompressionRatio = &ratio
		}
	}

	return stats
}

// CompressionReport is returned by CompressAllPages.
type CompressionReport struct {
	Attempts   int
	Successes  int
	Failures   int
	BytesSaved int64
	ByStrategy map[compression.StrategyTag]int
}

// CompressionStats mirrors the manager's internal counters: committed,
// cumulative totals across every CompressAllPages call, as opposed to
// EstimateCompressionStrategies' one-off, non-committing sample probe.
type CompressionStats struct {
	Attempts  int
	Successes int
	ByStrategy map[compression.StrategyTag]compression.StrategyCounters
}

// GetDetailedCompressionStats returns the manager's running tally of
// attempts, successes, and per-strategy byte counters.
func (t *Tree) GetDetailedCompressionStats() CompressionStats {
	s := t.mgr.GetStats()
	return CompressionStats{
		Attempts:   s.Attempts,
		Successes:  s.Successes,
		ByStrategy: s.ByStrategy,
	}
}

// EstimateCompressionStrategies runs every applicable strategy's cost
// model over sample and reports each one's projected compressed/original
// ratio, without compressing anything or touching the tree's committed
// compression counters. sample need not come from the tree at all: any
// []kv.Pair the caller wants a forecast for works, matching the
// original's get_compression_stats(data), which likewise took an
// arbitrary data argument rather than reading the tree's own pages.
func (t *Tree) EstimateCompressionStrategies(sample []kv.Pair) map[compression.StrategyTag]float64 {
	return t.mgr.EstimateStrategies(sample)
}

// NodeCount, TotalKeys, and Height expose the tree's accumulated
// counters for the stats package's byte-size cost model, without
// giving it access to page internals.
func (t *Tree) NodeCount() int { return t.nodeCount }
func (t *Tree) TotalKeys() int { return t.totalKeys }
func (t *Tree) Height() int    { return t.height }

// upperBound returns the number of entries with Key <= key: the
// stable-insertion position for a new entry, and (since separators are
// right-biased — spec §9 decision 1) the child index to descend into
// during Insert.
func upperBound(entries []kv.Pair, key any) (int, error) {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		c, err := kv.Compare(entries[mid].Key, key)
		if err != nil {
			return 0, err
		}
		if c <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}

// lowerBound returns the index of the first entry with Key >= key: the
// leftmost child that could possibly hold key, used by Search and
// Delete so no earlier occurrence is ever missed. A key that cannot be
// ordered against the entries yields *InvalidArgumentError.
func lowerBound(entries []kv.Pair, key any) (int, error) {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		c, err := kv.Compare(entries[mid].Key, key)
		if err != nil {
			return 0, &InvalidArgumentError{Reason: err.Error()}
		}
		if c < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}
