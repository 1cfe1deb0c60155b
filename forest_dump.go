// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package v2f

import (
	"fmt"
	"io"
	"strings"
)

// DistinctRootCount reports the number of physically stored roots; logical
// roots beyond this alias the last one (see Forest.logicalRootIndex).
func (f *Forest) DistinctRootCount() int { return f.distinctRootCount }

// RootIncludedCounts reports each distinct root's included-entry count, the
// figure the original's verify_codec tool compares against
// 2^(8*bytes_per_word) to flag a non-optimal tree.
func (f *Forest) RootIncludedCounts() []uint32 {
	counts := make([]uint32, len(f.decoderRoots))
	for i, r := range f.decoderRoots {
		counts[i] = r.rootIncludedCount
	}
	return counts
}

// Dump writes a human-readable recursive trace of every distinct root and
// the tree hanging off it: each node's child count, inclusion state and
// codeword bytes. It is the Go counterpart of the original's
// print_coder_node_recursive, surfaced through v2f-verify-codec's -dump
// flag instead of being gated behind a debug log level.
func (f *Forest) Dump(w io.Writer) {
	for r := 0; r < f.distinctRootCount; r++ {
		fmt.Fprintf(w, "root %d: entries=%d included=%d\n", r, f.rootEntryCounts[r], f.decoderRoots[r].rootIncludedCount)
		seen := make([]bool, len(f.entries))
		f.dumpNode(w, f.rootNodeID(uint32(r)), 1, seen)
	}
}

func (f *Forest) dumpNode(w io.Writer, id NodeID, depth int, seen []bool) {
	indent := strings.Repeat("  ", depth)
	if seen[id] {
		fmt.Fprintf(w, "%s<node %d> (repeat)\n", indent, id)
		return
	}
	seen[id] = true

	e := &f.entries[id]
	if e.included() {
		fmt.Fprintf(w, "%s<node %d> children=%d word=% x\n", indent, id, len(e.children), e.wordBytes)
	} else {
		fmt.Fprintf(w, "%s<node %d> children=%d\n", indent, id, len(e.children))
	}
	for x, child := range e.children {
		if child == noChild {
			continue
		}
		fmt.Fprintf(w, "%s  [%d]:\n", indent, x)
		f.dumpNode(w, child, depth+1, seen)
	}
}
