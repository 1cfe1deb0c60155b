// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package cli holds the argument-parsing and banner helpers shared by the
// v2f command-line tools, grounded on the original's bin_common.c
// (parse_positive_integer, show_banner) shared by its own compress/
// decompress/verify_codec executables.
package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is printed by -v and embedded in the startup banner.
const Version = "1.0.0"

// Banner mirrors show_banner's fixed project banner.
const Banner = `------------------------------------------------------------------
V2F Codec Software version ` + Version + `
------------------------------------------------------------------`

// ParseShadowList parses a comma-separated list of non-negative integers
// into row-pair shadow regions and validates it the way the original's
// v2f_compress.c validates -y: the count must be even, each pair (a, b)
// must satisfy a <= b, and consecutive pairs must not overlap (the end of
// one pair must be < the start of the next).
func ParseShadowList(s string) ([][2]uint32, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts)%2 != 0 {
		return nil, fmt.Errorf("the -y argument requires an even number of values, got %d", len(parts))
	}
	vals := make([]uint32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value format in option -y (%s)", p)
		}
		vals[i] = uint32(v)
	}
	pairs := make([][2]uint32, 0, len(vals)/2)
	for i := 0; i < len(vals); i += 2 {
		a, b := vals[i], vals[i+1]
		if a > b {
			return nil, fmt.Errorf("the -y argument requires non-decreasing pairs, got (%d, %d)", a, b)
		}
		if len(pairs) > 0 && pairs[len(pairs)-1][1] >= a {
			return nil, fmt.Errorf("the -y argument does not accept overlapping shadow regions")
		}
		pairs = append(pairs, [2]uint32{a, b})
	}
	return pairs, nil
}
