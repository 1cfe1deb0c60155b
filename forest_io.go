// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package v2f

import (
	"io"

	"github.com/gici-uab/v2f/decorrelator"
	"github.com/gici-uab/v2f/internal/iohelp"
	"github.com/gici-uab/v2f/quantizer"
)

// Header is the forest file's fixed-layout preamble: the quantizer and
// decorrelator parameters a compressed stream was built against. SamplesPerRow
// is not part of the file and must come from the caller, same as any
// override of the fields below.
type Header struct {
	QuantizerMode    quantizer.Mode
	StepSize         uint32
	DecorrelatorMode decorrelator.Mode
	MaxSampleValue   uint32
}

func readUint(r io.Reader, n int) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:n]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, errorf(CorruptedData, "forest file truncated: %v", err)
		}
		return 0, errorf(Io, "forest file read: %v", err)
	}
	var v uint32
	for _, b := range buf[:n] {
		v = v<<8 | uint32(b)
	}
	return v, nil
}

func writeUint(w io.Writer, v uint32, n int) error {
	var buf [4]byte
	x := v
	for i := n - 1; i >= 0; i-- {
		buf[i] = byte(x)
		x >>= 8
	}
	if _, err := w.Write(buf[:n]); err != nil {
		return errorf(Io, "forest file write: %v", err)
	}
	return nil
}

// rawEntry is the on-disk shape of one non-root entry, before child indices
// are patched into NodeIDs.
type rawEntry struct {
	childrenIdx []uint32
	samples     []uint32
	wordBytes   []byte
	included    bool
}

// LoadForest reads a forest file: the header, then each distinct root's
// entries and its own children table, validating every invariant the format
// carries. Child indices are read as raw file-local positions in a first
// pass and patched into NodeIDs in a second, mirroring the original
// implementation's two-pass load without its pointer aliasing.
func LoadForest(r io.Reader) (hdr Header, forest *Forest, err error) {
	defer recoverError(&err)
	br := iohelp.Wrap(r)

	qMode, e := readUint(br, 1)
	if e != nil {
		return hdr, nil, e
	}
	stepSize, e := readUint(br, 4)
	if e != nil {
		return hdr, nil, e
	}
	dMode, e := readUint(br, 2)
	if e != nil {
		return hdr, nil, e
	}
	maxSampleValue, e := readUint(br, 4)
	if e != nil {
		return hdr, nil, e
	}
	forestID, e := readUint(br, 4)
	if e != nil {
		return hdr, nil, e
	}
	if forestID != 0 {
		return hdr, nil, errorf(FeatureNotImplemented, "forest_id %d not supported", forestID)
	}
	totalEntryCount, e := readUint(br, 4)
	if e != nil {
		return hdr, nil, e
	}
	bytesPerWord, e := readUint(br, 1)
	if e != nil {
		return hdr, nil, e
	}
	bytesPerSample, e := readUint(br, 1)
	if e != nil {
		return hdr, nil, e
	}
	maxExpectedValue, e := readUint(br, 2)
	if e != nil {
		return hdr, nil, e
	}
	distinctRootCountMinus1, e := readUint(br, 2)
	if e != nil {
		return hdr, nil, e
	}
	distinctRootCount := int(distinctRootCountMinus1) + 1

	hdr = Header{
		QuantizerMode:    quantizer.Mode(qMode),
		StepSize:         stepSize,
		DecorrelatorMode: decorrelator.Mode(dMode),
		MaxSampleValue:   maxSampleValue,
	}

	f := &Forest{
		BytesPerWord:     int(bytesPerWord),
		BytesPerSample:   int(bytesPerSample),
		MaxExpectedValue: maxExpectedValue,
	}
	// The forest's own bytes_per_word/bytes_per_sample are narrower than the
	// raw sample I/O path's MaxBytesPerSample: both are restricted to [1,2],
	// independent of the 1-4 byte range ReadSamples/WriteSamples support for
	// the pipeline's raw-sample boundary.
	if f.BytesPerWord < 1 || f.BytesPerWord > maxForestWordBytes {
		return hdr, nil, errorf(CorruptedData, "bytes_per_word %d out of range", f.BytesPerWord)
	}
	if f.BytesPerSample < 1 || f.BytesPerSample > maxForestWordBytes {
		return hdr, nil, errorf(CorruptedData, "bytes_per_sample %d out of range", f.BytesPerSample)
	}

	rootCount := f.MaxExpectedValue + 1
	if distinctRootCount < 1 || uint32(distinctRootCount) > rootCount {
		return hdr, nil, errorf(CorruptedData, "distinct_root_count %d invalid for max_expected_value %d", distinctRootCount, f.MaxExpectedValue)
	}

	var allEntries []rawEntry
	f.rootEntryOffsets = make([]int, distinctRootCount)
	f.rootEntryCounts = make([]uint32, distinctRootCount)
	rootChildrenIdx := make([][]uint32, distinctRootCount)
	rootChildrenSym := make([][]uint32, distinctRootCount)
	rootIncludedCounts := make([]uint32, distinctRootCount)

	var sumRootEntryCount uint64
	maxWordValue := uint64(1) << uint(8*f.BytesPerWord)

	for rootIdx := 0; rootIdx < distinctRootCount; rootIdx++ {
		rootEntryCount, e := readUint(br, 4)
		if e != nil {
			return hdr, nil, e
		}
		rootIncludedCount, e := readUint(br, 4)
		if e != nil {
			return hdr, nil, e
		}
		if uint64(rootIncludedCount) > maxWordValue {
			return hdr, nil, errorf(CorruptedData, "root %d: root_included_count %d exceeds 2^(8*bytes_per_word)", rootIdx, rootIncludedCount)
		}
		rootIncludedCounts[rootIdx] = rootIncludedCount
		f.rootEntryOffsets[rootIdx] = len(allEntries)
		f.rootEntryCounts[rootIdx] = rootEntryCount
		sumRootEntryCount += uint64(rootEntryCount)

		for i := uint32(0); i < rootEntryCount; i++ {
			idx, e := readUint(br, 4)
			if e != nil {
				return hdr, nil, e
			}
			if idx != i {
				return hdr, nil, errorf(CorruptedData, "root %d: entry index %d out of order, want %d", rootIdx, idx, i)
			}
			childrenCount, e := readUint(br, 4)
			if e != nil {
				return hdr, nil, e
			}
			if childrenCount > f.MaxExpectedValue+1 {
				return hdr, nil, errorf(CorruptedData, "root %d entry %d: children_count %d exceeds max_expected_value+1", rootIdx, i, childrenCount)
			}
			childrenIdx := make([]uint32, childrenCount)
			for c := range childrenIdx {
				ci, e := readUint(br, 4)
				if e != nil {
					return hdr, nil, e
				}
				childrenIdx[c] = ci
			}
			re := rawEntry{childrenIdx: childrenIdx}
			if childrenCount < f.MaxExpectedValue+1 {
				re.included = true
				sc, e := readUint(br, 2)
				if e != nil {
					return hdr, nil, e
				}
				re.samples = make([]uint32, sc)
				for s := range re.samples {
					v, e := readUint(br, f.BytesPerSample)
					if e != nil {
						return hdr, nil, e
					}
					re.samples[s] = v
				}
				re.wordBytes = make([]byte, f.BytesPerWord)
				if _, e := io.ReadFull(br, re.wordBytes); e != nil {
					return hdr, nil, errorf(CorruptedData, "root %d entry %d: codeword read: %v", rootIdx, i, e)
				}
			}
			allEntries = append(allEntries, re)
		}

		rootChildrenCount, e := readUint(br, 4)
		if e != nil {
			return hdr, nil, e
		}
		full := rootChildrenCount == f.MaxExpectedValue+1
		missingR := rootChildrenCount == f.MaxExpectedValue+1-uint32(rootIdx)
		if !full && !missingR {
			return hdr, nil, errorf(CorruptedData, "root %d: children_count %d is neither full nor missing-%d", rootIdx, rootChildrenCount, rootIdx)
		}
		cidx := make([]uint32, rootChildrenCount)
		csym := make([]uint32, rootChildrenCount)
		for j := range cidx {
			ei, e := readUint(br, 4)
			if e != nil {
				return hdr, nil, e
			}
			sym, e := readUint(br, f.BytesPerSample)
			if e != nil {
				return hdr, nil, e
			}
			cidx[j] = ei
			csym[j] = sym
		}
		rootChildrenIdx[rootIdx] = cidx
		rootChildrenSym[rootIdx] = csym
	}

	if sumRootEntryCount != uint64(totalEntryCount) {
		return hdr, nil, errorf(CorruptedData, "sum of root_entry_count (%d) != total_entry_count (%d)", sumRootEntryCount, totalEntryCount)
	}

	entryArenaSize := len(allEntries)
	f.entryArenaSize = entryArenaSize
	f.distinctRootCount = distinctRootCount
	f.entries = make([]coderEntry, entryArenaSize+distinctRootCount)
	f.decoderEntries = make([]decoderEntry, entryArenaSize)
	f.decoderRoots = make([]decoderRoot, distinctRootCount)

	checkChildIdx := func(idx uint32, ctx string) error {
		if idx >= uint32(entryArenaSize) {
			return errorf(CorruptedData, "%s: child index %d >= total_entry_count %d", ctx, idx, entryArenaSize)
		}
		return nil
	}

	for i, re := range allEntries {
		children := make([]NodeID, len(re.childrenIdx))
		for c, idx := range re.childrenIdx {
			if err := checkChildIdx(idx, "entry"); err != nil {
				return hdr, nil, err
			}
			children[c] = NodeID(idx)
		}
		f.entries[i] = coderEntry{children: children, wordBytes: re.wordBytes}
		f.decoderEntries[i] = decoderEntry{samples: re.samples, childrenCount: uint32(len(re.childrenIdx))}
	}

	for rootIdx := 0; rootIdx < distinctRootCount; rootIdx++ {
		children := make([]NodeID, f.MaxExpectedValue+1)
		for i := range children {
			children[i] = noChild
		}
		cidx, csym := rootChildrenIdx[rootIdx], rootChildrenSym[rootIdx]
		for j := range cidx {
			if err := checkChildIdx(cidx[j], "root"); err != nil {
				return hdr, nil, err
			}
			sym := csym[j]
			if sym > f.MaxExpectedValue {
				return hdr, nil, errorf(CorruptedData, "root %d: input_symbol %d out of range", rootIdx, sym)
			}
			children[sym] = NodeID(cidx[j])
		}
		f.entries[entryArenaSize+rootIdx] = coderEntry{children: children}

		base := f.rootEntryOffsets[rootIdx]
		count := f.rootEntryCounts[rootIdx]
		entriesByWord := make([]NodeID, rootIncludedCounts[rootIdx])
		populated := make([]bool, len(entriesByWord))
		for i := uint32(0); i < count; i++ {
			re := allEntries[base+int(i)]
			if !re.included {
				continue
			}
			w := uint32(0)
			for _, b := range re.wordBytes {
				w = w<<8 | uint32(b)
			}
			if w >= uint32(len(entriesByWord)) {
				return hdr, nil, errorf(CorruptedData, "root %d entry %d: codeword %d >= root_included_count %d", rootIdx, i, w, len(entriesByWord))
			}
			entriesByWord[w] = NodeID(base + int(i))
			populated[w] = true
		}
		for w, ok := range populated {
			if !ok {
				return hdr, nil, errorf(CorruptedData, "root %d: entries_by_word slot %d unpopulated", rootIdx, w)
			}
		}
		f.decoderRoots[rootIdx] = decoderRoot{entriesByWord: entriesByWord, rootIncludedCount: rootIncludedCounts[rootIdx]}
	}

	return hdr, f, nil
}

// WriteForest serializes hdr and forest back into the on-disk layout. It is
// the inverse of LoadForest and is used both to persist a newly built forest
// and, in tests, to check that re-serialising and re-loading produces an
// isomorphic forest.
func WriteForest(w io.Writer, hdr Header, f *Forest) (err error) {
	defer recoverError(&err)

	if err := writeUint(w, uint32(hdr.QuantizerMode), 1); err != nil {
		return err
	}
	if err := writeUint(w, hdr.StepSize, 4); err != nil {
		return err
	}
	if err := writeUint(w, uint32(hdr.DecorrelatorMode), 2); err != nil {
		return err
	}
	if err := writeUint(w, hdr.MaxSampleValue, 4); err != nil {
		return err
	}
	if err := writeUint(w, 0, 4); err != nil { // forest_id
		return err
	}
	if err := writeUint(w, uint32(f.entryArenaSize), 4); err != nil {
		return err
	}
	if err := writeUint(w, uint32(f.BytesPerWord), 1); err != nil {
		return err
	}
	if err := writeUint(w, uint32(f.BytesPerSample), 1); err != nil {
		return err
	}
	if err := writeUint(w, f.MaxExpectedValue, 2); err != nil {
		return err
	}
	if err := writeUint(w, uint32(f.distinctRootCount-1), 2); err != nil {
		return err
	}

	for rootIdx := 0; rootIdx < f.distinctRootCount; rootIdx++ {
		base := f.rootEntryOffsets[rootIdx]
		count := f.rootEntryCounts[rootIdx]
		dr := f.decoderRoots[rootIdx]
		if err := writeUint(w, count, 4); err != nil {
			return err
		}
		if err := writeUint(w, dr.rootIncludedCount, 4); err != nil {
			return err
		}
		for i := uint32(0); i < count; i++ {
			ce := f.entries[base+int(i)]
			de := f.decoderEntries[base+int(i)]
			if err := writeUint(w, i, 4); err != nil {
				return err
			}
			if err := writeUint(w, uint32(len(ce.children)), 4); err != nil {
				return err
			}
			for _, c := range ce.children {
				if err := writeUint(w, uint32(c), 4); err != nil {
					return err
				}
			}
			if ce.included() {
				if err := writeUint(w, uint32(len(de.samples)), 2); err != nil {
					return err
				}
				for _, s := range de.samples {
					if err := writeUint(w, s, f.BytesPerSample); err != nil {
						return err
					}
				}
				if _, err := w.Write(ce.wordBytes); err != nil {
					return errorf(Io, "forest file write: %v", err)
				}
			}
		}

		root := f.entries[f.entryArenaSize+rootIdx]
		populatedCount := 0
		for _, c := range root.children {
			if c != noChild {
				populatedCount++
			}
		}
		if err := writeUint(w, uint32(populatedCount), 4); err != nil {
			return err
		}
		for sym, c := range root.children {
			if c == noChild {
				continue
			}
			if err := writeUint(w, uint32(c), 4); err != nil {
				return err
			}
			if err := writeUint(w, uint32(sym), f.BytesPerSample); err != nil {
				return err
			}
		}
	}
	return nil
}
