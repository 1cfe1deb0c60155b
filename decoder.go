// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package v2f

// Decompressor runs the V2F entropy decoder walk.
type Decompressor struct {
	forest *Forest
}

// NewDecompressor returns a Decompressor bound to forest, which must outlive it.
func NewDecompressor(forest *Forest) *Decompressor {
	return &Decompressor{forest: forest}
}

// DecompressBlock reads codewords of forest.BytesPerWord bytes each from
// compressed, appending reconstructed samples to dst until count samples
// have been produced, and returns the extended slice.
//
// compressed's length must be a multiple of forest.BytesPerWord. Decoding
// starts at logical root 0; each codeword selects an entry from the current
// root's entries_by_word table, emits that entry's samples, and transitions
// to the root named by the entry's children_count.
func (c *Decompressor) DecompressBlock(compressed []byte, count int, dst []uint32) (_ []uint32, err error) {
	defer recoverError(&err)
	f := c.forest
	wordSize := f.BytesPerWord
	if wordSize <= 0 || len(compressed)%wordSize != 0 {
		return dst, errorf(CorruptedData, "compressed length %d is not a multiple of bytes_per_word %d", len(compressed), wordSize)
	}
	if count <= 0 {
		return dst, errorf(InvalidParameter, "sample count must be positive, got %d", count)
	}

	start := len(dst)
	rootIdx := uint32(0)
	for off := 0; off < len(compressed) && len(dst)-start < count; off += wordSize {
		w := uint32(0)
		for _, b := range compressed[off : off+wordSize] {
			w = w<<8 | uint32(b)
		}
		root := f.decoderRootAt(rootIdx)
		if w >= root.rootIncludedCount {
			return dst, errorf(CorruptedData, "codeword %d >= root_included_count %d", w, root.rootIncludedCount)
		}
		e := &f.decoderEntries[root.entriesByWord[w]]
		for _, s := range e.samples {
			if len(dst)-start >= count {
				break
			}
			dst = append(dst, s)
		}
		if e.childrenCount >= f.rootCount() {
			return dst, errorf(CorruptedData, "entry children_count %d >= root_count %d", e.childrenCount, f.rootCount())
		}
		rootIdx = e.childrenCount
	}
	if len(dst)-start != count {
		return dst, errorf(CorruptedData, "decoded %d samples, want %d", len(dst)-start, count)
	}
	return dst, nil
}
