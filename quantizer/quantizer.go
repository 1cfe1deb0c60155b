// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package quantizer implements the uniform scalar quantizer used as the
// first stage of the V2F compression pipeline.
package quantizer

import v2f "github.com/gici-uab/v2f/internal/errkind"

// Mode selects the quantization applied to a block of samples.
type Mode uint8

const (
	// None leaves samples untouched; StepSize must be 1.
	None Mode = iota
	// Uniform divides each sample by StepSize.
	Uniform
)

// MaxStepSize is the largest step size this module accepts.
const MaxStepSize = 255

// Quantizer is {mode, step_size, max_sample_value}. It is
// immutable for the lifetime of a block pipeline.
type Quantizer struct {
	Mode           Mode
	StepSize       uint32
	MaxSampleValue uint32
}

// New validates and constructs a Quantizer. mode=None requires stepSize==1.
func New(mode Mode, stepSize, maxSampleValue uint32) (Quantizer, error) {
	if stepSize < 1 || stepSize > MaxStepSize {
		return Quantizer{}, v2f.Errorf(v2f.InvalidParameter, "step size %d out of range [1,%d]", stepSize, MaxStepSize)
	}
	if mode != None && mode != Uniform {
		return Quantizer{}, v2f.Errorf(v2f.InvalidParameter, "unknown quantizer mode %d", mode)
	}
	if mode == None && stepSize != 1 {
		return Quantizer{}, v2f.Errorf(v2f.InvalidParameter, "mode None requires step size 1, got %d", stepSize)
	}
	return Quantizer{Mode: mode, StepSize: stepSize, MaxSampleValue: maxSampleValue}, nil
}

// Quantize divides every sample in place by StepSize, using a right shift
// for the power-of-two step sizes 2, 4 and 8. None and StepSize==1 are a
// no-op.
func (q Quantizer) Quantize(samples []uint32) error {
	if q.Mode == None || q.StepSize == 1 {
		return nil
	}
	if q.Mode != Uniform {
		return v2f.Errorf(v2f.InvalidParameter, "unknown quantizer mode %d", q.Mode)
	}
	switch q.StepSize {
	case 2:
		shiftAll(samples, 1)
	case 4:
		shiftAll(samples, 2)
	case 8:
		shiftAll(samples, 3)
	default:
		divideAll(samples, q.StepSize)
	}
	return nil
}

// Dequantize reconstructs every quantization index in place as
// min(q*step + step/2, max_sample_value); the clamp keeps a truncated final
// bin from producing an out-of-range reconstruction.
func (q Quantizer) Dequantize(samples []uint32) error {
	if q.Mode == None || q.StepSize == 1 {
		return nil
	}
	if q.Mode != Uniform {
		return v2f.Errorf(v2f.InvalidParameter, "unknown quantizer mode %d", q.Mode)
	}
	half := q.StepSize >> 1
	for i, s := range samples {
		v := q.StepSize*s + half
		if v > q.MaxSampleValue {
			v = q.MaxSampleValue
		}
		samples[i] = v
	}
	return nil
}

func shiftAll(samples []uint32, shift uint) {
	for i, s := range samples {
		samples[i] = s >> shift
	}
}

func divideAll(samples []uint32, step uint32) {
	for i, s := range samples {
		samples[i] = s / step
	}
}
