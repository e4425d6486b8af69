// Package uvarint implements the unsigned LEB128 variable length integer
// encoding.
//
// Every encoded byte carries seven value bits, least significant group
// first. The high bit of a byte is set when more bytes follow and clear on
// the final byte, so zero encodes as the single byte 0x00 and the maximum
// uint64 encodes as
//
//	FF FF FF FF FF FF FF FF FF 01
//
// Encoding writes into a caller owned fixed size array and returns the
// written prefix of it. Decoding returns the value together with the bytes
// following the encoded value, without copying.
package uvarint

import (
	"errors"
	"math/bits"
)

// Maximum encoded lengths in bytes, ceil(width/7).
const (
	Uint8Len   = 2
	Uint16Len  = 3
	Uint32Len  = 5
	Uint64Len  = 10
	Uint128Len = 19
	UintLen    = (bits.UintSize + 6) / 7
)

var (
	// ErrInsufficient is returned when the input ends before the final byte
	// of a value. More input may complete it.
	ErrInsufficient = errors.New("uvarint: not enough input bytes")
	// ErrOverflow is returned when the encoded value does not fit the
	// requested width. The input is malformed.
	ErrOverflow = errors.New("uvarint: input bytes exceed maximum")
)

// Unsigned is the set of fixed width integer types the generic helpers
// accept.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

func width[T Unsigned]() int {
	return bits.Len64(uint64(^T(0)))
}

// MaxLen returns the maximum number of bytes a value of type T encodes to.
func MaxLen[T Unsigned]() int {
	return (width[T]() + 6) / 7
}

// Len returns the number of bytes v encodes to.
func Len[T Unsigned](v T) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// Encode writes v into buf and returns the written prefix of buf.
// buf must hold at least MaxLen[T]() bytes.
func Encode[T Unsigned](v T, buf []byte) []byte {
	i := 0
	for v >= 0x80 {
		buf[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	buf[i] = byte(v)
	return buf[:i+1]
}

// Append appends the encoding of v to dst and returns the extended slice.
func Append[T Unsigned](dst []byte, v T) []byte {
	var buf [Uint64Len]byte
	return append(dst, Encode(v, buf[:])...)
}

// Decode reads a value of type T from the front of buf and returns it with
// the remainder of buf. It stops at the first byte without the continuation
// bit and never looks further.
func Decode[T Unsigned](buf []byte) (T, []byte, error) {
	w := width[T]()
	last := (w+6)/7 - 1
	var n T
	for i, b := range buf {
		shift := uint(i * 7)
		if b&0x80 == 0 {
			if i == last && b>>(uint(w)-shift) != 0 {
				return 0, nil, ErrOverflow
			}
			n |= T(b) << shift
			return n, buf[i+1:], nil
		}
		if i == last {
			return 0, nil, ErrOverflow
		}
		n |= T(b&0x7f) << shift
	}
	return 0, nil, ErrInsufficient
}
