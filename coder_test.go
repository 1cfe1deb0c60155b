// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package v2f

import "testing"

// TestCoderSingleSample is the sample_count = 1 boundary case.
func TestCoderSingleSample(t *testing.T) {
	f := newIdentityForest(1, 1, 255)
	c := NewCompressor(f)
	compressed, err := c.CompressBlock([]uint32{42}, nil)
	if err != nil {
		t.Fatalf("CompressBlock: %v", err)
	}
	if len(compressed) != 1 {
		t.Fatalf("compressed size = %d, want 1", len(compressed))
	}

	d := NewDecompressor(f)
	decoded, err := d.DecompressBlock(compressed, 1, nil)
	if err != nil {
		t.Fatalf("DecompressBlock: %v", err)
	}
	if len(decoded) != 1 || decoded[0] != 42 {
		t.Fatalf("decoded = %v, want [42]", decoded)
	}
}

// TestCoderMaxBlockSizeBoundary exercises sample_count = MaxBlockSize.
func TestCoderMaxBlockSizeBoundary(t *testing.T) {
	f := newIdentityForest(1, 1, 255)
	samples := make([]uint32, MaxBlockSize)
	for i := range samples {
		samples[i] = uint32(i % 256)
	}

	c := NewCompressor(f)
	compressed, err := c.CompressBlock(samples, nil)
	if err != nil {
		t.Fatalf("CompressBlock: %v", err)
	}

	d := NewDecompressor(f)
	decoded, err := d.DecompressBlock(compressed, len(samples), nil)
	if err != nil {
		t.Fatalf("DecompressBlock: %v", err)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("decoded count = %d, want %d", len(decoded), len(samples))
	}
	for i := range samples {
		if decoded[i] != samples[i] {
			t.Fatalf("decoded[%d] = %d, want %d", i, decoded[i], samples[i])
		}
	}
}

// TestCoderBothExtremesInBlock covers samples taking both 0 and
// max_sample_value within the same block.
func TestCoderBothExtremesInBlock(t *testing.T) {
	f := newIdentityForest(2, 1, 1000)
	samples := []uint32{0, 1000, 0, 1000, 500, 0, 1000}

	c := NewCompressor(f)
	compressed, err := c.CompressBlock(samples, nil)
	if err != nil {
		t.Fatalf("CompressBlock: %v", err)
	}

	d := NewDecompressor(f)
	decoded, err := d.DecompressBlock(compressed, len(samples), nil)
	if err != nil {
		t.Fatalf("DecompressBlock: %v", err)
	}
	for i := range samples {
		if decoded[i] != samples[i] {
			t.Fatalf("decoded[%d] = %d, want %d", i, decoded[i], samples[i])
		}
	}
}

// TestCompressBlockRejectsOutOfRangeSample exercises the sample-exceeds-
// max_expected_value corruption check in the compressor's hot loop.
func TestCompressBlockRejectsOutOfRangeSample(t *testing.T) {
	f := newIdentityForest(1, 1, 15)
	c := NewCompressor(f)
	if _, err := c.CompressBlock([]uint32{16}, nil); KindOf(err) != CorruptedData {
		t.Fatalf("CompressBlock with out-of-range sample: err = %v, want CorruptedData", err)
	}
}
