// Package codec decodes and encodes varint length-prefixed frames and bare
// varint values against a growable in-memory buffer.
//
// Decoders are meant to be polled: call Decode each time more bytes have
// been appended to the buffer. A call either yields nothing and consumes
// nothing it cannot finish with, or yields exactly one complete item.
package codec

import (
	"errors"
	"fmt"

	"github.com/BurntRouter/uvarint-go/uvarint"
)

// ErrTooLarge is returned when a frame length exceeds the configured maximum.
// A decoder that returned it has lost sync with its input.
var ErrTooLarge = errors.New("codec: frame length exceeds maximum")

// Buffer is a growable byte buffer that is consumed from the front and
// appended to at the back. *bytes.Buffer implements it.
type Buffer interface {
	// Bytes returns the unread contents.
	Bytes() []byte
	// Next removes and returns the next n bytes.
	Next(n int) []byte
	Write(p []byte) (int, error)
	// Grow reserves room for at least n more bytes.
	Grow(n int)
}

// Uvi encodes and decodes single varint values of type T.
// The zero value is ready to use.
type Uvi[T uvarint.Unsigned] struct{}

// Encode appends the encoding of v to dst.
func (Uvi[T]) Encode(v T, dst Buffer) error {
	var buf [uvarint.Uint64Len]byte
	_, err := dst.Write(uvarint.Encode(v, buf[:]))
	return err
}

// Decode removes one value from the front of src. ok is false when src does
// not hold a complete value yet; src is left untouched in that case.
func (Uvi[T]) Decode(src Buffer) (v T, ok bool, err error) {
	b := src.Bytes()
	v, rest, err := uvarint.Decode[T](b)
	switch {
	case errors.Is(err, uvarint.ErrInsufficient):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("codec: %w", err)
	}
	src.Next(len(b) - len(rest))
	return v, true, nil
}

// Uvi128 is Uvi for uvarint.Uint128 values.
type Uvi128 struct{}

// Encode appends the encoding of v to dst.
func (Uvi128) Encode(v uvarint.Uint128, dst Buffer) error {
	var buf [uvarint.Uint128Len]byte
	_, err := dst.Write(uvarint.EncodeUint128(v, &buf))
	return err
}

// Decode removes one value from the front of src. ok is false when src does
// not hold a complete value yet; src is left untouched in that case.
func (Uvi128) Decode(src Buffer) (v uvarint.Uint128, ok bool, err error) {
	b := src.Bytes()
	v, rest, err := uvarint.DecodeUint128(b)
	switch {
	case errors.Is(err, uvarint.ErrInsufficient):
		return uvarint.Uint128{}, false, nil
	case err != nil:
		return uvarint.Uint128{}, false, fmt.Errorf("codec: %w", err)
	}
	src.Next(len(b) - len(rest))
	return v, true, nil
}
