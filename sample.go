// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package v2f

import "io"

// MaxBytesPerSample is the widest wire representation a Sample supports.
const MaxBytesPerSample = 4

// Sample is an unsigned sample value, wide enough for the abstract model of
// the data model even though the wire format constrains bytesPerSample to 1-4.
type Sample = uint32

// ReadSamples reads count samples of bytesPerSample bytes each, big-endian,
// from r into dest (which must have length >= count), and returns the
// number of samples actually read.
//
// A short read that ends mid-sample is reported as Io. A short read that
// ends on a sample boundary is reported as UnexpectedEndOfFile with
// readCount < count; reading zero bytes at the very start reports
// UnexpectedEndOfFile with readCount == 0, which the envelope driver uses as
// its normal end-of-stream sentinel.
func ReadSamples(r io.Reader, dest []Sample, count int, bytesPerSample int) (readCount int, err error) {
	if bytesPerSample < 1 || bytesPerSample > MaxBytesPerSample || count < 0 || len(dest) < count {
		return 0, errorf(InvalidParameter, "bad ReadSamples arguments: count=%d bytesPerSample=%d", count, bytesPerSample)
	}
	var buf [MaxBytesPerSample]byte
	for i := 0; i < count; i++ {
		n, rerr := io.ReadFull(r, buf[:bytesPerSample])
		if rerr != nil {
			if n == 0 {
				if i == 0 {
					return 0, errorf(UnexpectedEndOfFile, "no samples could be read")
				}
				return i, errorf(UnexpectedEndOfFile, "stream ended after %d of %d samples", i, count)
			}
			// A short read that does not land on a sample boundary is a
			// hard I/O failure: the stream is misaligned to the element size.
			return i, errorf(Io, "short read mid-sample: %v", rerr)
		}
		var v Sample
		for _, b := range buf[:bytesPerSample] {
			v = v<<8 | Sample(b)
		}
		dest[i] = v
	}
	return count, nil
}

// WriteSamples writes count samples of bytesPerSample bytes each,
// big-endian, to w. Any short write is a hard I/O failure.
func WriteSamples(w io.Writer, src []Sample, count int, bytesPerSample int) error {
	if bytesPerSample < 1 || bytesPerSample > MaxBytesPerSample || count < 0 || len(src) < count {
		return errorf(InvalidParameter, "bad WriteSamples arguments: count=%d bytesPerSample=%d", count, bytesPerSample)
	}
	var buf [MaxBytesPerSample]byte
	for i := 0; i < count; i++ {
		v := src[i]
		for j := bytesPerSample - 1; j >= 0; j-- {
			buf[j] = byte(v)
			v >>= 8
		}
		if _, err := w.Write(buf[:bytesPerSample]); err != nil {
			return errorf(Io, "short write at sample %d of %d: %v", i, count, err)
		}
	}
	return nil
}
