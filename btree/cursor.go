package btree

import "pgbtree/kv"

// Cursor is a single-pass, pull-based range iterator: call Next until
// it returns false, reading Key/Value after each true. Modeled on
// NikolasRummel-db-index-performance-evaluation's index.Iterator shape
// (Next/Key/Value/Err), the one cursor interface in the retrieval pack
// that already matches a pull-based "next() -> option<(k,v)>" design.
type Cursor interface {
	Next() bool
	Key() any
	Value() any
	Err() error
}

// rangeCursor walks the leaf chain starting at the first leaf that
// could contain start, emitting entries within [start, end] when
// inclusive is true, or (start, end) when it is false, until it passes
// end.
type rangeCursor struct {
	tree      *Tree
	leaf      *node
	idx       int
	start, end any
	inclusive bool
	started   bool
	done      bool
	err       error
	key, val  any
}

// RangeQuery returns a lazy cursor over entries with key in
// [start, end] (inclusive) or (start, end) (exclusive on both ends),
// per spec §4.1. start must not exceed end.
func (t *Tree) RangeQuery(start, end any, inclusive bool) (Cursor, error) {
	if err := t.validateKey(start); err != nil {
		return nil, err
	}
	if err := t.validateKey(end); err != nil {
		return nil, err
	}
	if c, err := kv.Compare(start, end); err != nil {
		return nil, &InvalidArgumentError{Reason: err.Error()}
	} else if c > 0 {
		return nil, &InvalidArgumentError{Reason: "range start must not exceed end"}
	}

	leaf, err := t.findLeafFloor(start)
	if err != nil {
		return nil, err
	}
	return &rangeCursor{tree: t, leaf: leaf, start: start, end: end, inclusive: inclusive}, nil
}

// Next advances the cursor, returning false once the range is
// exhausted or an error occurred (check Err to distinguish the two).
func (c *rangeCursor) Next() bool {
	if c.done || c.err != nil {
		return false
	}

	for c.leaf != nil {
		if !c.started {
			if err := c.leaf.ensureMaterialized(c.tree.mgr); err != nil {
				c.err = err
				c.done = true
				return false
			}
			idx, err := lowerBound(c.leaf.entries, c.start)
			if err != nil {
				c.err = err
				c.done = true
				return false
			}
			c.idx = idx
			c.started = true
		}

		for c.idx < len(c.leaf.entries) {
			e := c.leaf.entries[c.idx]
			c.idx++

			cStart, err := kv.Compare(e.Key, c.start)
			if err != nil {
				c.err = err
				c.done = true
				return false
			}
			if !c.inclusive && cStart == 0 {
				continue
			}

			cEnd, err := kv.Compare(e.Key, c.end)
			if err != nil {
				c.err = err
				c.done = true
				return false
			}
			if cEnd > 0 || (!c.inclusive && cEnd == 0) {
				c.done = true
				return false
			}

			c.key, c.val = e.Key, e.Value
			return true
		}

		next := c.leaf.nextLeaf
		if next != nil {
			if err := next.ensureMaterialized(c.tree.mgr); err != nil {
				c.err = err
				c.done = true
				return false
			}
		}
		c.leaf = next
		c.idx = 0
	}

	c.done = true
	return false
}

func (c *rangeCursor) Key() any   { return c.key }
func (c *rangeCursor) Value() any { return c.val }
func (c *rangeCursor) Err() error { return c.err }
