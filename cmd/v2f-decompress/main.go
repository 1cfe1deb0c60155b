// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command v2f-decompress is the decompress entrypoint: it reads
// V2F envelopes and a forest header, and writes reconstructed raw samples.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	v2f "github.com/gici-uab/v2f"
	"github.com/gici-uab/v2f/decorrelator"
	"github.com/gici-uab/v2f/internal/cli"
	"github.com/gici-uab/v2f/quantizer"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("v2f-decompress", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	qMode := fs.Int("q", -1, "quantizer mode")
	step := fs.Int("s", -1, "step size (1..255)")
	dMode := fs.Int("d", -1, "decorrelator mode")
	samplesPerRow := fs.Int("w", 0, "samples per row (required by JpegLs, Fgij)")
	bytesPerSample := fs.Int("b", 1, "bytes per raw sample")
	timingPath := fs.String("t", "", "write timing CSV to path")
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
	if fs.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "usage: v2f-decompress [flags] <compressed> <header> <out>")
		return 1
	}

	var ov v2f.Overrides
	if *qMode >= 0 {
		m := quantizer.Mode(*qMode)
		ov.QuantizerMode = &m
	}
	if *step >= 0 {
		s := uint32(*step)
		ov.StepSize = &s
	}
	if *dMode >= 0 {
		m := decorrelator.Mode(*dMode)
		ov.DecorrelatorMode = &m
	}
	ov.SamplesPerRow = *samplesPerRow

	compressedFile, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer compressedFile.Close()
	headerFile, err := os.Open(fs.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer headerFile.Close()
	outFile, err := os.Create(fs.Arg(2))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer outFile.Close()

	timing, flush := timingSink(*timingPath)
	defer flush()

	if err := v2f.Decompress(compressedFile, headerFile, outFile, *bytesPerSample, ov, timing); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(v2f.KindOf(err))
	}
	return 0
}

func timingSink(path string) (v2f.TimingSink, func()) {
	if path == "" {
		return nil, func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, func() {}
	}
	w := csv.NewWriter(f)
	w.Write([]string{"stage", "duration_ns"})
	sink := v2f.TimingSink(func(stage string, d time.Duration) {
		w.Write([]string{stage, strconv.FormatInt(d.Nanoseconds(), 10)})
	})
	return sink, func() {
		w.Flush()
		f.Close()
	}
}
