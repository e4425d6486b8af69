// Package stream reads and writes varint values and length-prefixed frames
// on blocking byte streams.
//
// Reads pull the varint one byte at a time so that nothing past the value is
// taken from the reader; a frame payload is then fetched with a single bulk
// read. Writes flush the writer afterwards when it has a Flush method, such
// as *bufio.Writer.
package stream

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/BurntRouter/uvarint-go/codec"
	"github.com/BurntRouter/uvarint-go/uvarint"
)

// payloadChunk is the largest payload allocated up front.
const payloadChunk = 64 << 10

type flusher interface {
	Flush() error
}

func flush(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Write encodes v to w.
func Write[T uvarint.Unsigned](w io.Writer, v T) error {
	var buf [uvarint.Uint64Len]byte
	if _, err := w.Write(uvarint.Encode(v, buf[:])); err != nil {
		return err
	}
	return flush(w)
}

// WriteUint128 encodes v to w.
func WriteUint128(w io.Writer, v uvarint.Uint128) error {
	var buf [uvarint.Uint128Len]byte
	if _, err := w.Write(uvarint.EncodeUint128(v, &buf)); err != nil {
		return err
	}
	return flush(w)
}

// WriteBytes writes varint(len(p)) followed by p to w.
func WriteBytes(w io.Writer, p []byte) error {
	var buf [uvarint.UintLen]byte
	if _, err := w.Write(uvarint.EncodeUint(uint(len(p)), &buf)); err != nil {
		return err
	}
	if _, err := w.Write(p); err != nil {
		return err
	}
	return flush(w)
}

// readVarint fills scratch one byte at a time until a byte without the
// continuation bit arrives and returns the encoded bytes.
func readVarint(r io.Reader, scratch []byte) ([]byte, error) {
	for i := range scratch {
		n, err := r.Read(scratch[i : i+1])
		if n == 0 {
			if err == nil || err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if scratch[i]&0x80 == 0 {
			return scratch[:i+1], nil
		}
	}
	return nil, uvarint.ErrOverflow
}

// Read decodes one value of type T from r.
// It returns io.ErrUnexpectedEOF if the stream ends first.
func Read[T uvarint.Unsigned](r io.Reader) (T, error) {
	var scratch [uvarint.Uint64Len]byte
	b, err := readVarint(r, scratch[:uvarint.MaxLen[T]()])
	if err != nil {
		return 0, err
	}
	v, _, err := uvarint.Decode[T](b)
	return v, err
}

// ReadUint128 decodes one Uint128 from r.
func ReadUint128(r io.Reader) (uvarint.Uint128, error) {
	var scratch [uvarint.Uint128Len]byte
	b, err := readVarint(r, scratch[:])
	if err != nil {
		return uvarint.Uint128{}, err
	}
	v, _, err := uvarint.DecodeUint128(b)
	return v, err
}

// ReadBytes reads one length-prefixed frame from r. The length is not
// bounded; use ReadBytesLimit on untrusted input.
func ReadBytes(r io.Reader) ([]byte, error) {
	n, err := Read[uint](r)
	if err != nil {
		return nil, err
	}
	return readPayload(r, n)
}

// ReadBytesLimit is like ReadBytes but fails with codec.ErrTooLarge, before
// reading any payload, when the frame is longer than max.
func ReadBytesLimit(r io.Reader, max int) ([]byte, error) {
	n, err := Read[uint](r)
	if err != nil {
		return nil, err
	}
	if max < 0 || n > uint(max) {
		return nil, fmt.Errorf("%w: %d > %d", codec.ErrTooLarge, n, max)
	}
	return readPayload(r, n)
}

func readPayload(r io.Reader, n uint) ([]byte, error) {
	if n > math.MaxInt {
		return nil, fmt.Errorf("%w: %d", codec.ErrTooLarge, n)
	}
	if n <= payloadChunk {
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		return buf, nil
	}
	// Large declared lengths are only backed by memory as bytes arrive.
	var b bytes.Buffer
	b.Grow(payloadChunk)
	if _, err := io.CopyN(&b, r, int64(n)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return b.Bytes(), nil
}
