// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package quantizer

import "testing"

func TestNew(t *testing.T) {
	var vectors = []struct {
		mode    Mode
		step    uint32
		maxVal  uint32
		wantErr bool
	}{
		{None, 1, 255, false},
		{None, 2, 255, true},
		{Uniform, 1, 255, false},
		{Uniform, 8, 255, false},
		{Uniform, 0, 255, true},
		{Uniform, 256, 255, true},
		{Mode(99), 1, 255, true},
	}
	for i, v := range vectors {
		_, err := New(v.mode, v.step, v.maxVal)
		if (err != nil) != v.wantErr {
			t.Errorf("test %d: New(%d,%d,%d) error = %v, wantErr %v", i, v.mode, v.step, v.maxVal, err, v.wantErr)
		}
	}
}

func TestQuantizeShiftMatchesDivide(t *testing.T) {
	for _, step := range []uint32{2, 4, 8} {
		q, err := New(Uniform, step, 255)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		samples := make([]uint32, 256)
		want := make([]uint32, 256)
		for i := range samples {
			samples[i] = uint32(i)
			want[i] = uint32(i) / step
		}
		if err := q.Quantize(samples); err != nil {
			t.Fatalf("Quantize: %v", err)
		}
		for i := range samples {
			if samples[i] != want[i] {
				t.Errorf("step %d: Quantize(%d) = %d, want %d", step, i, samples[i], want[i])
			}
		}
	}
}

func TestDequantizeClamp(t *testing.T) {
	q, err := New(Uniform, 10, 25)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	samples := []uint32{0, 1, 2}
	if err := q.Dequantize(samples); err != nil {
		t.Fatalf("Dequantize: %v", err)
	}
	// index 2 reconstructs to 2*10+5=25, exactly at max; a step_size of 10
	// with max_sample_value 22 would need the clamp, exercised next.
	want := []uint32{5, 15, 25}
	for i := range samples {
		if samples[i] != want[i] {
			t.Errorf("Dequantize[%d] = %d, want %d", i, samples[i], want[i])
		}
	}

	q2, err := New(Uniform, 10, 22)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	samples2 := []uint32{2}
	if err := q2.Dequantize(samples2); err != nil {
		t.Fatalf("Dequantize: %v", err)
	}
	if samples2[0] != 22 {
		t.Errorf("clamp: Dequantize[2] = %d, want 22", samples2[0])
	}
}

func TestNoneIsNoOp(t *testing.T) {
	q, err := New(None, 1, 255)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	samples := []uint32{0, 1, 100, 255}
	orig := append([]uint32(nil), samples...)
	if err := q.Quantize(samples); err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if err := q.Dequantize(samples); err != nil {
		t.Fatalf("Dequantize: %v", err)
	}
	for i := range samples {
		if samples[i] != orig[i] {
			t.Errorf("None mode mutated sample %d: got %d, want %d", i, samples[i], orig[i])
		}
	}
}
