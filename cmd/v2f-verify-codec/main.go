// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command v2f-verify-codec is the self-test tool: it loads a forest,
// exercises it against a synthetic sample
// block built the same way the original's v2f_verify_codec.c builds one,
// and reports structural statistics alongside a lossless round-trip check.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"hash/crc32"
	"os"

	v2f "github.com/gici-uab/v2f"
	"github.com/gici-uab/v2f/internal/cli"

	"github.com/dsnet/golib/hashutil"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("v2f-verify-codec", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dump := fs.Bool("dump", false, "dump the forest's tree structure")
	version := fs.Bool("v", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 64
		}
		return 1
	}
	if *version {
		fmt.Println(cli.Banner)
		return 64
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: v2f-verify-codec [flags] <header>")
		return 1
	}

	headerFile, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer headerFile.Close()

	hdr, forest, err := v2f.LoadForest(headerFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(v2f.KindOf(err))
	}

	reportForestStats(forest)
	if *dump {
		forest.Dump(os.Stdout)
	}

	if err := roundTripSelfTest(forest, hdr.StepSize); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(v2f.KindOf(err))
	}

	fmt.Println("OK")
	return 0
}

// buildSelfTestSamples reproduces v2f_verify_codec.c's synthetic test
// array: 1024*(M+1) samples cycling i % (M+1), with samples[1] forced to
// M-1 and the last sample forced to M, so both the max_expected_value edge
// and a near-max value are exercised regardless of M.
func buildSelfTestSamples(maxExpectedValue uint32) []uint32 {
	m := maxExpectedValue
	n := 1024 * int(m+1)
	samples := make([]uint32, n)
	for i := range samples {
		samples[i] = uint32(i) % (m + 1)
	}
	if n > 1 && m > 0 {
		samples[1] = m - 1
	}
	if n > 0 {
		samples[n-1] = m
	}
	return samples
}

// roundTripSelfTest compresses and decompresses buildSelfTestSamples's
// output directly through the forest (bypassing the quantizer/decorrelator
// pipeline, exactly as the original forces quantizer mode to Uniform with
// step_size 1 before self-testing) and verifies lossless reconstruction.
// Losslessness is only checked when stepSize is 1, i.e. the quantizer is
// effectively None.
func roundTripSelfTest(forest *v2f.Forest, stepSize uint32) error {
	samples := buildSelfTestSamples(forest.MaxExpectedValue)

	comp := v2f.NewCompressor(forest)
	compressed, err := comp.CompressBlock(samples, nil)
	if err != nil {
		return fmt.Errorf("compress self-test block: %w", err)
	}

	dec := v2f.NewDecompressor(forest)
	decoded, err := dec.DecompressBlock(compressed, len(samples), nil)
	if err != nil {
		return fmt.Errorf("decompress self-test block: %w", err)
	}
	if len(decoded) != len(samples) {
		return fmt.Errorf("self-test sample count mismatch: got %d, want %d", len(decoded), len(samples))
	}

	origCRC, err := checksumSamples(samples)
	if err != nil {
		return err
	}
	gotCRC, err := checksumSamples(decoded)
	if err != nil {
		return err
	}

	if stepSize != 1 {
		fmt.Printf("self-test round trip skipped lossless check (step_size=%d); crc original=%08x reconstructed=%08x\n", stepSize, origCRC, gotCRC)
		return nil
	}
	if origCRC != gotCRC {
		return fmt.Errorf("self-test checksum mismatch: original=%08x reconstructed=%08x", origCRC, gotCRC)
	}
	for i := range samples {
		if samples[i] != decoded[i] {
			return fmt.Errorf("self-test sample %d mismatch: got %d, want %d", i, decoded[i], samples[i])
		}
	}
	return nil
}

// checksumSamples computes a whole-stream CRC-32 over samples encoded as
// big-endian uint32, combining per-chunk checksums with
// hashutil.CombineCRC32 rather than buffering the whole stream through one
// hash.Write call — the incremental-combination idiom of bzip2's
// updateCRC/combineCRC, repurposed here from a per-block bzip2 checksum to
// a whole-stream verification checksum.
func checksumSamples(samples []uint32) (uint32, error) {
	const chunkLen = 4096
	var buf [4 * chunkLen]byte
	var crc uint32
	var total int64
	for off := 0; off < len(samples); off += chunkLen {
		end := off + chunkLen
		if end > len(samples) {
			end = len(samples)
		}
		chunk := samples[off:end]
		n := 0
		for _, s := range chunk {
			binary.BigEndian.PutUint32(buf[n:], s)
			n += 4
		}
		chunkCRC := crc32.ChecksumIEEE(buf[:n])
		if off == 0 {
			crc = chunkCRC
		} else {
			crc = hashutil.CombineCRC32(crc32.IEEE, crc, chunkCRC, int64(n))
		}
		total += int64(n)
	}
	if total == 0 {
		return 0, fmt.Errorf("empty self-test sample array")
	}
	return crc, nil
}

// reportForestStats prints the tree/root summary the original's
// verify_codec tool logs: distinct root count (aliasing dedup is already
// resolved at load time into Forest.distinctRootCount, unlike the original
// which discovers aliasing by comparing tree pointers at verify time),
// per-root included-node counts, and whether each root's included count
// reaches the "optimal" 2^(8*bytes_per_word) bound.
func reportForestStats(forest *v2f.Forest) {
	fmt.Printf("bytes_per_word=%d bytes_per_sample=%d max_expected_value=%d\n",
		forest.BytesPerWord, forest.BytesPerSample, forest.MaxExpectedValue)
	fmt.Printf("logical_roots=%d distinct_roots=%d\n", forest.MaxExpectedValue+1, forest.DistinctRootCount())

	optimal := uint32(1) << uint(8*forest.BytesPerWord)
	for i, count := range forest.RootIncludedCounts() {
		status := ""
		if uint32(count) == optimal {
			status = " (optimal)"
		}
		fmt.Printf("  root %d: included=%d%s\n", i, count, status)
	}
}
