// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package v2f

import (
	"io"
	"time"

	"github.com/gici-uab/v2f/decorrelator"
	"github.com/gici-uab/v2f/internal/iohelp"
	"github.com/gici-uab/v2f/quantizer"
)

// MaxBlockSize is the largest number of samples a single envelope may carry
// (5120*256).
const MaxBlockSize = 5120 * 256

// envelopeHeaderSize is the byte length of compressed_bitstream_size (4) plus
// sample_count (4).
const envelopeHeaderSize = 8

// Overrides replaces the forest header's quantizer/decorrelator parameters
// when non-nil, mirroring the original's overwrite_quantizer_mode/
// overwrite_decorrelator_mode parameter pairs.
type Overrides struct {
	QuantizerMode    *quantizer.Mode
	StepSize         *uint32
	DecorrelatorMode *decorrelator.Mode
	SamplesPerRow    int
}

// TimingSink receives the wall-clock duration of a named pipeline stage. A
// nil sink disables timing; this replaces the original's global named-timer
// registry with an injected callback.
type TimingSink func(stage string, d time.Duration)

func (s TimingSink) record(stage string, start time.Time) {
	if s != nil {
		s(stage, time.Since(start))
	}
}

// pipeline bundles the loaded forest with the quantizer/decorrelator it was
// built against, after overrides have been applied.
type pipeline struct {
	forest       *Forest
	quantizer    quantizer.Quantizer
	decorrelator decorrelator.Decorrelator
}

func buildPipeline(hdr Header, forest *Forest, ov Overrides) (pipeline, error) {
	qMode := hdr.QuantizerMode
	if ov.QuantizerMode != nil {
		qMode = *ov.QuantizerMode
	}
	step := hdr.StepSize
	if ov.StepSize != nil {
		step = *ov.StepSize
	}
	dMode := hdr.DecorrelatorMode
	if ov.DecorrelatorMode != nil {
		dMode = *ov.DecorrelatorMode
	}

	// The forest header carries decorrelator.max_sample_value (the quantized
	// domain the entropy coder sees) but not a separate quantizer max; the
	// quantizer's max_sample_value is the raw-sample domain implied by the
	// forest's own wire width, (1<<(8*bytes_per_sample))-1.
	rawMax := uint32(1)<<uint(8*forest.BytesPerSample) - 1
	q, err := quantizer.New(qMode, step, rawMax)
	if err != nil {
		return pipeline{}, err
	}
	d, err := decorrelator.New(dMode, hdr.MaxSampleValue, ov.SamplesPerRow)
	if err != nil {
		return pipeline{}, err
	}
	return pipeline{forest: forest, quantizer: q, decorrelator: d}, nil
}

// Compress reads raw samples from raw (bytesPerSample each, big-endian), the
// forest header from header, applies ov, and streams envelopes to out until
// raw reaches EOF aligned to a sample boundary. It is the Compress entrypoint
// once raw reaches an aligned end of stream.
func Compress(raw io.Reader, header io.Reader, out io.Writer, bytesPerSample int, ov Overrides, timing TimingSink) (err error) {
	defer recoverError(&err)

	t0 := time.Now()
	hdr, forest, err := LoadForest(header)
	if err != nil {
		return err
	}
	timing.record("load_forest", t0)

	p, err := buildPipeline(hdr, forest, ov)
	if err != nil {
		return err
	}
	comp := NewCompressor(forest)

	samples := make([]uint32, MaxBlockSize)
	compressed := make([]byte, 0, MaxBlockSize*forest.BytesPerWord)
	for {
		t1 := time.Now()
		n, rerr := ReadSamples(raw, samples, MaxBlockSize, bytesPerSample)
		timing.record("read_samples", t1)
		if n == 0 {
			if rerr != nil && KindOf(rerr) == UnexpectedEndOfFile {
				return nil
			}
			return rerr
		}

		block := append([]uint32(nil), samples[:n]...)
		if err := p.quantizer.Quantize(block); err != nil {
			return err
		}
		if err := p.decorrelator.Decorrelate(block); err != nil {
			return err
		}

		t2 := time.Now()
		compressed = compressed[:0]
		compressed, err = comp.CompressBlock(block, compressed)
		timing.record("compress_block", t2)
		if err != nil {
			return err
		}

		if err := writeUint(out, uint32(len(compressed)), 4); err != nil {
			return err
		}
		if err := writeUint(out, uint32(n), 4); err != nil {
			return err
		}
		if _, werr := out.Write(compressed); werr != nil {
			return errorf(Io, "envelope write: %v", werr)
		}

		if rerr != nil {
			// A short read was satisfied up to the returned count but did
			// not fill the full block; the next read will report the
			// aligned end-of-stream.
			if KindOf(rerr) == UnexpectedEndOfFile {
				continue
			}
			return rerr
		}
	}
}

// Decompress reads envelopes from compressed, the forest header from header,
// applies ov, and writes reconstructed samples to out (bytesPerSample each,
// big-endian) until compressed reaches EOF aligned to an envelope boundary.
// It is the codec's Decompress entrypoint.
func Decompress(compressed io.Reader, header io.Reader, out io.Writer, bytesPerSample int, ov Overrides, timing TimingSink) (err error) {
	defer recoverError(&err)

	t0 := time.Now()
	hdr, forest, err := LoadForest(header)
	if err != nil {
		return err
	}
	timing.record("load_forest", t0)

	p, err := buildPipeline(hdr, forest, ov)
	if err != nil {
		return err
	}
	dec := NewDecompressor(forest)

	br := iohelp.Wrap(compressed)
	maxCompressedLen := uint32(MaxBlockSize * forest.BytesPerWord)
	samples := make([]uint32, 0, MaxBlockSize)
	bitstream := make([]byte, MaxBlockSize*forest.BytesPerWord)

	for {
		if _, err := br.Peek(1); err != nil {
			if err == io.EOF {
				return nil
			}
			return errorf(Io, "envelope peek: %v", err)
		}

		size, err := readUint(br, 4)
		if err != nil {
			return err
		}
		count, err := readUint(br, 4)
		if err != nil {
			return err
		}
		if size == 0 || size%uint32(forest.BytesPerWord) != 0 || size > maxCompressedLen {
			return errorf(CorruptedData, "compressed_bitstream_size %d invalid for bytes_per_word %d", size, forest.BytesPerWord)
		}
		if count < 1 || count > MaxBlockSize {
			return errorf(CorruptedData, "sample_count %d out of range", count)
		}

		buf := bitstream[:size]
		if _, err := io.ReadFull(br, buf); err != nil {
			return errorf(CorruptedData, "envelope bitstream truncated: %v", err)
		}

		t1 := time.Now()
		samples = samples[:0]
		samples, err = dec.DecompressBlock(buf, int(count), samples)
		timing.record("decompress_block", t1)
		if err != nil {
			return err
		}
		if len(samples) != int(count) {
			return errorf(CorruptedData, "decoder reconstructed %d samples, envelope declared %d", len(samples), count)
		}

		if err := p.decorrelator.Invert(samples); err != nil {
			return err
		}
		if err := p.quantizer.Dequantize(samples); err != nil {
			return err
		}
		if err := WriteSamples(out, samples, len(samples), bytesPerSample); err != nil {
			return err
		}
	}
}
