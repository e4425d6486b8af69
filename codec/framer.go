package codec

import (
	"errors"
	"fmt"
	"math"

	"github.com/BurntRouter/uvarint-go/uvarint"
)

type framerState int

const (
	awaitingLength framerState = iota
	awaitingPayload
)

// maxReserve caps how far Decode grows the buffer ahead of arriving data,
// so a declared length alone cannot force a large allocation.
const maxReserve = 64 << 10

// Framer encodes and incrementally decodes varint length-prefixed frames.
// A Framer carries decoding state between calls and must not be shared
// between streams.
type Framer struct {
	state framerState
	need  int // payload length, valid in awaitingPayload
	max   int
}

// NewFramer returns a Framer without a length bound.
func NewFramer() *Framer {
	return &Framer{max: math.MaxInt}
}

// SetMaxLen bounds the payload length accepted by Encode and Decode.
func (f *Framer) SetMaxLen(n int) {
	if n < 0 {
		n = 0
	}
	f.max = n
}

// MaxLen reports the current payload length bound.
func (f *Framer) MaxLen() int { return f.max }

// Encode appends varint(len(payload)) followed by payload to dst.
// Nothing is written when payload exceeds the bound.
func (f *Framer) Encode(payload []byte, dst Buffer) error {
	if len(payload) > f.max {
		return fmt.Errorf("%w: %d > %d", ErrTooLarge, len(payload), f.max)
	}
	var hdr [uvarint.UintLen]byte
	dst.Grow(uvarint.Len(uint(len(payload))) + len(payload))
	if _, err := dst.Write(uvarint.EncodeUint(uint(len(payload)), &hdr)); err != nil {
		return err
	}
	_, err := dst.Write(payload)
	return err
}

// Decode returns the next complete frame in src, or nil when src does not
// hold one yet. The returned payload does not alias src.
//
// After ErrTooLarge or an overflowing length prefix the input can no longer
// be trusted and the caller should drop the stream.
func (f *Framer) Decode(src Buffer) ([]byte, error) {
	if f.state == awaitingLength {
		b := src.Bytes()
		n, rest, err := uvarint.DecodeUint(b)
		switch {
		case errors.Is(err, uvarint.ErrInsufficient):
			return nil, nil
		case err != nil:
			return nil, fmt.Errorf("codec: frame length: %w", err)
		}
		src.Next(len(b) - len(rest))
		if n > uint(f.max) {
			return nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, n, f.max)
		}
		f.state, f.need = awaitingPayload, int(n)
	}

	if f.need > f.max {
		f.reset()
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, f.need, f.max)
	}
	if avail := len(src.Bytes()); avail < f.need {
		src.Grow(min(f.need-avail, maxReserve))
		return nil, nil
	}
	payload := make([]byte, f.need)
	copy(payload, src.Next(f.need))
	f.reset()
	return payload, nil
}

// Pending reports whether a length prefix has been consumed whose payload
// has not arrived yet.
func (f *Framer) Pending() bool { return f.state == awaitingPayload }

func (f *Framer) reset() {
	f.state, f.need = awaitingLength, 0
}
