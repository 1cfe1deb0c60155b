// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package decorrelator

import "testing"

// TestMapUnmapBijection checks that mapSample/unmapSample are mutual
// inverses for every (prediction, sample) pair in a small range, which is
// the invariant the whole decorrelator depends on.
func TestMapUnmapBijection(t *testing.T) {
	const m = 31
	for p := uint32(0); p <= m; p++ {
		seen := make(map[uint32]uint32)
		for s := uint32(0); s <= m; s++ {
			coded := mapSample(s, p, m)
			if coded > m {
				t.Fatalf("mapSample(%d,%d,%d) = %d out of range", s, p, m, coded)
			}
			if prev, ok := seen[coded]; ok {
				t.Fatalf("mapSample(%d,%d,%d) collides with mapSample(%d,%d,%d): both produce %d", s, p, m, prev, p, m, coded)
			}
			seen[coded] = s
			back := unmapSample(coded, p, m)
			if back != s {
				t.Errorf("unmapSample(mapSample(%d,%d,%d)) = %d, want %d", s, p, m, back, s)
			}
		}
	}
}

func TestLeftAllZeros(t *testing.T) {
	d, err := New(Left, 255, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	samples := []uint32{0, 0, 0, 0, 0}
	want := []uint32{0, 0, 0, 0, 0}
	if err := d.Decorrelate(samples); err != nil {
		t.Fatalf("Decorrelate: %v", err)
	}
	for i := range samples {
		if samples[i] != want[i] {
			t.Errorf("Decorrelate[%d] = %d, want %d", i, samples[i], want[i])
		}
	}
}

// TestLeftConstantRun decorrelates a constant run. The first sample is
// mapped against a p=0 prediction; since theta=min(p,M-p)=0 there, any
// nonzero difference falls in the map's "otherwise" branch and is coded as
// theta+a = a, not the zig-zag 2a branch (that branch only covers a<=theta).
// Every following sample predicts from its predecessor, so the constant
// run after the first sample maps to zero.
func TestLeftConstantRun(t *testing.T) {
	d, err := New(Left, 255, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	samples := []uint32{5, 5, 5, 5}
	want := []uint32{5, 0, 0, 0}
	if err := d.Decorrelate(samples); err != nil {
		t.Fatalf("Decorrelate: %v", err)
	}
	for i := range samples {
		if samples[i] != want[i] {
			t.Errorf("Decorrelate[%d] = %d, want %d", i, samples[i], want[i])
		}
	}
}

func TestRoundTripAllModes(t *testing.T) {
	const m = 255
	src := []uint32{10, 250, 0, 255, 128, 64, 200, 1, 30, 90, 45, 180, 12, 222, 77, 88}
	for _, mode := range []Mode{None, Left, TwoLeftAvg} {
		d, err := New(mode, m, 0)
		if err != nil {
			t.Fatalf("mode %d: New: %v", mode, err)
		}
		samples := append([]uint32(nil), src...)
		if err := d.Decorrelate(samples); err != nil {
			t.Fatalf("mode %d: Decorrelate: %v", mode, err)
		}
		if err := d.Invert(samples); err != nil {
			t.Fatalf("mode %d: Invert: %v", mode, err)
		}
		for i := range samples {
			if samples[i] != src[i] {
				t.Errorf("mode %d: round trip[%d] = %d, want %d", mode, i, samples[i], src[i])
			}
		}
	}
}

func TestRoundTripTwoDModes(t *testing.T) {
	const m = 255
	const row = 4
	src := []uint32{10, 20, 30, 40, 45, 5, 60, 70, 0, 255, 128, 64, 200, 1, 90, 88}
	for _, mode := range []Mode{JpegLs, Fgij} {
		d, err := New(mode, m, row)
		if err != nil {
			t.Fatalf("mode %d: New: %v", mode, err)
		}
		samples := append([]uint32(nil), src...)
		if err := d.Decorrelate(samples); err != nil {
			t.Fatalf("mode %d: Decorrelate: %v", mode, err)
		}
		if err := d.Invert(samples); err != nil {
			t.Fatalf("mode %d: Invert: %v", mode, err)
		}
		for i := range samples {
			if samples[i] != src[i] {
				t.Errorf("mode %d: round trip[%d] = %d, want %d", mode, i, samples[i], src[i])
			}
		}
	}
}

// TestJpegLsRamp exercises the 3x3 ramp: MED falls back to the edge-detect
// branches here (NW is strictly below both W and N at every interior cell,
// since the row step of 30 exceeds the column step of 10), so every
// bottom-right prediction is exactly 10 below its sample, not an exact
// linear fit. The round trip must still recover the original ramp exactly.
func TestJpegLsRamp(t *testing.T) {
	d, err := New(JpegLs, 255, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	src := []uint32{10, 20, 30, 40, 50, 60, 70, 80, 90}
	samples := append([]uint32(nil), src...)
	if err := d.Decorrelate(samples); err != nil {
		t.Fatalf("Decorrelate: %v", err)
	}
	// Bottom-right 2x2 corresponds to flat indices 4,5,7,8.
	for _, idx := range []int{4, 5, 7, 8} {
		if got := samples[idx]; got != mapSample(src[idx], src[idx]-10, 255) {
			t.Errorf("residual at index %d = %d, want mapSample(%d,%d,255)", idx, got, src[idx], src[idx]-10)
		}
	}
	if err := d.Invert(samples); err != nil {
		t.Fatalf("Invert: %v", err)
	}
	for i := range samples {
		if samples[i] != src[i] {
			t.Errorf("round trip[%d] = %d, want %d", i, samples[i], src[i])
		}
	}
}

func TestInvalidParameters(t *testing.T) {
	if _, err := New(Mode(9), 255, 0); err == nil {
		t.Error("New with unknown mode: want error")
	}
	if _, err := New(JpegLs, 255, 2); err == nil {
		t.Error("New JpegLs with samples_per_row<3: want error")
	}
	d, _ := New(Left, 255, 0)
	if err := d.Decorrelate(nil); err == nil {
		t.Error("Decorrelate empty block: want error")
	}
	d2, _ := New(JpegLs, 255, 3)
	if err := d2.Decorrelate(make([]uint32, 4)); err == nil {
		t.Error("Decorrelate with sample_count not a multiple of samples_per_row: want error")
	}
}
