// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command v2f-compress is the compress entrypoint: it reads a
// raw sample stream and a forest header, and streams V2F envelopes to an
// output file.
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
	fs := flag.NewFlagSet("v2f-compress", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	qMode := fs.Int("q", -1, "quantizer mode")
	step := fs.Int("s", -1, "step size (1..255)")
	dMode := fs.Int("d", -1, "decorrelator mode")
	samplesPerRow := fs.Int("w", 0, "samples per row (required by JpegLs, Fgij)")
	bytesPerSample := fs.Int("b", 1, "bytes per raw sample")
	shadow := fs.String("y", "", "even-length, non-decreasing list of row-pair shadow regions")
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
		fmt.Fprintln(os.Stderr, "usage: v2f-compress [flags] <raw> <header> <out>")
		return 1
	}
	if _, err := cli.ParseShadowList(*shadow); err != nil {
		// The shadow list is validated but otherwise opaque to the core: it
		// is rejected here and never reaches Compress.
		fmt.Fprintln(os.Stderr, err)
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

	rawFile, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rawFile.Close()
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

	if err := v2f.Compress(rawFile, headerFile, outFile, *bytesPerSample, ov, timing); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(v2f.KindOf(err))
	}
	return 0
}

// timingSink builds a TimingSink that appends rows to a CSV file at path (a
// no-op sink, and a no-op flush, if path is empty). This is the
// per-process replacement for the original's global named-timer registry
// writing a single report at exit.
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
