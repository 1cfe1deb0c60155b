// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command v2f-bench compares V2F's compression ratio and throughput against
// general-purpose codecs from the wider ecosystem on the same raw raster
// input, adapting internal/tool/bench's encoder/decoder registry into a
// shootout between V2F and flate/xz implementations.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"sort"
	"time"

	v2f "github.com/gici-uab/v2f"
	"github.com/gici-uab/v2f/internal/cli"

	"github.com/klauspost/compress/flate"
	"github.com/ulikunitz/xz"
)

// Encoder compresses src to a freshly allocated buffer.
type Encoder func(src []byte) ([]byte, error)

var encoders = map[string]Encoder{}

func registerEncoder(name string, enc Encoder) { encoders[name] = enc }

func init() {
	registerEncoder("flate", func(src []byte) ([]byte, error) {
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(src); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	registerEncoder("xz", func(src []byte) ([]byte, error) {
		var buf bytes.Buffer
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(src); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("v2f-bench", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	bytesPerSample := fs.Int("b", 1, "bytes per raw sample")
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
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: v2f-bench [flags] <raw> <header>")
		return 1
	}

	raw, err := ioutil.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	headerFile, err := os.Open(fs.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer headerFile.Close()

	results := map[string]result{}

	t0 := time.Now()
	var v2fOut bytes.Buffer
	if err := v2f.Compress(bytes.NewReader(raw), headerFile, &v2fOut, *bytesPerSample, v2f.Overrides{}, nil); err != nil {
		fmt.Fprintln(os.Stderr, "v2f:", err)
		return int(v2f.KindOf(err))
	}
	results["v2f"] = result{compressedSize: v2fOut.Len(), elapsed: time.Since(t0)}

	for _, name := range sortedNames(encoders) {
		t1 := time.Now()
		out, err := encoders[name](raw)
		if err != nil {
			fmt.Fprintln(os.Stderr, name+":", err)
			continue
		}
		results[name] = result{compressedSize: len(out), elapsed: time.Since(t1)}
	}

	printResults(len(raw), results)
	return 0
}

type result struct {
	compressedSize int
	elapsed        time.Duration
}

func sortedNames(m map[string]Encoder) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func printResults(rawSize int, results map[string]result) {
	names := make([]string, 0, len(results))
	for k := range results {
		names = append(names, k)
	}
	sort.Strings(names)

	fmt.Printf("%-8s %12s %10s %12s\n", "codec", "compressed", "ratio", "MB/s")
	for _, name := range names {
		r := results[name]
		ratio := float64(rawSize) / float64(r.compressedSize)
		mbps := (float64(rawSize) / 1e6) / r.elapsed.Seconds()
		fmt.Printf("%-8s %12d %10.3f %12.3f\n", name, r.compressedSize, ratio, mbps)
	}
}
