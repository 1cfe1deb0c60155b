// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package v2f

// Compressor runs the V2F entropy coder walk against a shared,
// read-only Forest. It carries no state across blocks: CompressBlock always
// re-seeds at logical root 0.
type Compressor struct {
	forest *Forest
}

// NewCompressor returns a Compressor bound to forest, which must outlive it.
func NewCompressor(forest *Forest) *Compressor {
	return &Compressor{forest: forest}
}

// CompressBlock walks samples against the forest, appending each emitted
// codeword to dst, and returns the extended slice. samples must be non-empty
// and every value must be <= forest.MaxExpectedValue.
//
// The walk: starting at root 0, each sample either hits (descends to a child
// whose own children_count has not been exceeded) or misses (the current
// node emits its codeword and play resumes at roots[c].children[x], c being
// the missed node's children_count and x the sample that missed). At the end
// of the block, any current node that is not included is walked down its
// child-0 edge until an included node is reached, whose codeword is then
// emitted as the trailing word.
func (c *Compressor) CompressBlock(samples []uint32, dst []byte) (_ []byte, err error) {
	defer recoverError(&err)
	f := c.forest
	if len(samples) == 0 {
		return dst, errorf(InvalidParameter, "empty block")
	}

	current := f.rootNodeID(0)
	for _, x := range samples {
		if x > f.MaxExpectedValue {
			return dst, errorf(CorruptedData, "sample %d exceeds max_expected_value %d", x, f.MaxExpectedValue)
		}
		e := &f.entries[current]
		childCount := uint32(len(e.children))
		if x < childCount {
			current = e.children[x]
			continue
		}
		// Miss: x >= childCount means e is included (childCount <=
		// MaxExpectedValue, so childCount < MaxExpectedValue+1), so
		// e.wordBytes is guaranteed non-nil here.
		dst = append(dst, e.wordBytes...)
		root := &f.entries[f.rootNodeID(childCount)]
		next := root.children[x]
		if next == noChild {
			return dst, errorf(CorruptedData, "forest root %d has no child for symbol %d", childCount, x)
		}
		current = next
	}

	// End-of-block flush: descend non-included nodes via child 0 until an
	// included node is reached, then emit its codeword.
	for steps := 0; !f.entries[current].included(); steps++ {
		if steps > f.entryArenaSize {
			return dst, errorf(CorruptedData, "forest flush did not reach an included entry")
		}
		current = f.entries[current].children[0]
	}
	dst = append(dst, f.entries[current].wordBytes...)
	return dst, nil
}
