// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package v2f

// maxForestWordBytes bounds Forest.BytesPerWord and Forest.BytesPerSample
// (both in [1,2]), distinct from MaxBytesPerSample
// which bounds the wider raw-sample I/O path's bytesPerSample argument.
const maxForestWordBytes = 2

// NodeID indexes into a Forest's entry arena. It replaces the original
// implementation's doubly-patched pointer graph (index on disk, pointer in
// memory) with a single contiguous slice and a stable integer handle.
type NodeID uint32

// noChild marks an unpopulated slot in a root's children table: the symbol
// values a missing-i root does not cover. The compressor checks for it and
// reports CorruptedData instead of following it.
const noChild NodeID = 1<<32 - 1

// coderEntry is a node of an encoder tree, or (for the entries beyond
// entryArenaSize) one of the distinct root tables. children is dense and
// zero-based for ordinary tree entries (symbol x selects children[x] for
// x < len(children)); for a root entry it is sized MaxExpectedValue+1 and
// may contain noChild holes below the root's own index. wordBytes is nil
// for every entry that is not included: root entries, and interior entries
// whose children_count equals MaxExpectedValue+1.
type coderEntry struct {
	children  []NodeID
	wordBytes []byte
}

func (e *coderEntry) included() bool { return e.wordBytes != nil }

// decoderEntry is a node's decode-side twin: the samples it reconstructs and
// the logical root index to resume at afterwards. Roots have no decoder
// twin; decoding jumps root-to-root directly (see decoder.go).
type decoderEntry struct {
	samples       []uint32
	childrenCount uint32
}

// decoderRoot is one physically stored root's decode table.
type decoderRoot struct {
	entriesByWord     []NodeID // size rootIncludedCount; indexed by codeword value
	rootIncludedCount uint32
}

// Forest is the loaded, immutable pair of V2F encoder/decoder trees used by
// a block pipeline. It owns every entry, child-link table, sample array and
// word-byte buffer reachable from it; Compressor/Decompressor only borrow a
// *Forest for the lifetime of a block.
type Forest struct {
	BytesPerWord     int
	BytesPerSample   int
	MaxExpectedValue uint32

	// entries holds every ordinary (non-root) entry in entries[:entryArenaSize],
	// followed by one synthetic pseudo-entry per distinct stored root in
	// entries[entryArenaSize:]. Folding roots into the same arena lets the
	// compressor's hot loop treat "current node" as a single NodeID
	// regardless of whether it is mid-tree or freshly re-seeded at a root.
	entries        []coderEntry
	entryArenaSize int

	decoderEntries []decoderEntry // parallel to entries[:entryArenaSize]
	decoderRoots   []decoderRoot  // one per distinct stored root

	distinctRootCount int // len(decoderRoots); logical roots beyond this alias the last one

	// rootEntryOffsets/rootEntryCounts record each distinct root's slice of
	// entries[:entryArenaSize], so WriteForest and Dump can walk the forest
	// root-by-root the way it was laid out on disk.
	rootEntryOffsets []int
	rootEntryCounts  []uint32
}

// rootCount is the logical number of roots, root i covering "symbols already
// consumed when we ran out of children" for i in [0, MaxExpectedValue].
func (f *Forest) rootCount() uint32 { return f.MaxExpectedValue + 1 }

// logicalRootIndex maps a logical root index (0..MaxExpectedValue) to the
// index of the distinct stored root backing it, per the "file stores only
// the distinct prefix of roots; the remaining indices reuse the last stored
// root" rule.
func (f *Forest) logicalRootIndex(i uint32) int {
	d := int(i)
	if d >= f.distinctRootCount {
		d = f.distinctRootCount - 1
	}
	return d
}

// rootNodeID returns the NodeID of the coder pseudo-entry for logical root i.
func (f *Forest) rootNodeID(i uint32) NodeID {
	return NodeID(f.entryArenaSize + f.logicalRootIndex(i))
}

// decoderRootAt returns the decode table for logical root i.
func (f *Forest) decoderRootAt(i uint32) *decoderRoot {
	return &f.decoderRoots[f.logicalRootIndex(i)]
}
