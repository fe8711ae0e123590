package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// Magic prefixes every encoded frame.
const Magic = "NRTY"

const headerSize = 4 + 4 + 4 + 4

// ErrMalformedFrame is returned when decoding a frame with an invalid layout.
var ErrMalformedFrame = errors.New("malformed frame")

// Encode serializes f as little-endian binary:
//
//	magic "NRTY" | uint32 N | float32 scale | float32 elapsed seconds |
//	3N float32 positions | 3N float32 colors | N float32 sizes
func Encode(f Frame) []byte {
	n := f.Count()
	buf := make([]byte, headerSize+4*(7*n))

	copy(buf, Magic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(n))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(f.Scale))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(float32(f.Elapsed.Seconds())))

	off := headerSize
	for _, s := range [][]float32{f.Positions[:3*n], f.Colors[:3*n], f.Sizes} {
		for _, v := range s {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
			off += 4
		}
	}
	return buf
}

// Decode parses a frame produced by Encode. The returned slices are newly allocated.
func Decode(data []byte) (Frame, error) {
	if len(data) < headerSize || string(data[:4]) != Magic {
		return Frame{}, ErrMalformedFrame
	}
	n := int(binary.LittleEndian.Uint32(data[4:]))
	if len(data) != headerSize+4*(7*n) {
		return Frame{}, fmt.Errorf("%w: %d bytes for %d particles", ErrMalformedFrame, len(data), n)
	}

	f := Frame{
		Positions: make([]float32, 3*n),
		Colors:    make([]float32, 3*n),
		Sizes:     make([]float32, n),
		Scale:     math.Float32frombits(binary.LittleEndian.Uint32(data[8:])),
	}
	secs := math.Float32frombits(binary.LittleEndian.Uint32(data[12:]))
	f.Elapsed = time.Duration(float64(secs) * float64(time.Second))

	off := headerSize
	for _, s := range [][]float32{f.Positions, f.Colors, f.Sizes} {
		for i := range s {
			s[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
	}
	return f, nil
}
