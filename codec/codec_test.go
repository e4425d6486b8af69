package codec

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/BurntRouter/uvarint-go/uvarint"
)

func TestFramerRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		[]byte("hello"),
		bytes.Repeat([]byte{0x01}, 300),
	}
	f := NewFramer()
	var b bytes.Buffer
	for _, p := range payloads {
		if err := f.Encode(p, &b); err != nil {
			t.Fatal(err)
		}
	}
	for i, want := range payloads {
		got, err := f.Decode(&b)
		if err != nil {
			t.Fatal(err)
		}
		if got == nil || !bytes.Equal(got, want) {
			t.Fatalf("frame %d: got %q want %q", i, got, want)
		}
	}
	if b.Len() != 0 {
		t.Fatalf("%d bytes left over", b.Len())
	}
	got, err := f.Decode(&b)
	if err != nil || got != nil {
		t.Fatalf("empty buffer: got %q err=%v", got, err)
	}
}

func TestFramerEncodeWireFormat(t *testing.T) {
	var b bytes.Buffer
	if err := NewFramer().Encode([]byte("abc"), &b); err != nil {
		t.Fatal(err)
	}
	if want := []byte{0x03, 'a', 'b', 'c'}; !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("got % x want % x", b.Bytes(), want)
	}
}

func TestFramerEverySplitPoint(t *testing.T) {
	payload := bytes.Repeat([]byte("xyz"), 100) // two byte length prefix
	var enc bytes.Buffer
	if err := NewFramer().Encode(payload, &enc); err != nil {
		t.Fatal(err)
	}
	wire := enc.Bytes()
	for split := 0; split <= len(wire); split++ {
		f := NewFramer()
		var b bytes.Buffer
		b.Write(wire[:split])
		got, err := f.Decode(&b)
		if err != nil {
			t.Fatalf("split %d: %v", split, err)
		}
		if split < len(wire) {
			if got != nil {
				t.Fatalf("split %d: partial frame returned", split)
			}
			b.Write(wire[split:])
			if got, err = f.Decode(&b); err != nil {
				t.Fatalf("split %d: %v", split, err)
			}
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("split %d: payload mismatch", split)
		}
	}
}

func TestFramerByteAtATime(t *testing.T) {
	var enc bytes.Buffer
	f := NewFramer()
	for _, p := range []string{"one", "", "three"} {
		if err := f.Encode([]byte(p), &enc); err != nil {
			t.Fatal(err)
		}
	}
	var got []string
	var b bytes.Buffer
	for _, c := range enc.Bytes() {
		b.WriteByte(c)
		for {
			p, err := f.Decode(&b)
			if err != nil {
				t.Fatal(err)
			}
			if p == nil {
				break
			}
			got = append(got, string(p))
		}
	}
	// The empty frame is complete as soon as its prefix arrives.
	if len(got) != 3 || got[0] != "one" || got[1] != "" || got[2] != "three" {
		t.Fatalf("got %q", got)
	}
}

func TestFramerDecodeTooLarge(t *testing.T) {
	var b bytes.Buffer
	if err := NewFramer().Encode(make([]byte, 10), &b); err != nil {
		t.Fatal(err)
	}
	f := NewFramer()
	f.SetMaxLen(9)
	got, err := f.Decode(&b)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err=%v", err)
	}
	if got != nil {
		t.Fatal("payload returned with error")
	}
	if f.state != awaitingLength {
		t.Fatal("pending length kept after failure")
	}
}

func TestFramerDecodeTooLargeBeforePayloadArrives(t *testing.T) {
	var b bytes.Buffer
	b.Write(uvarint.Append(nil, uint64(1<<20)))
	f := NewFramer()
	f.SetMaxLen(1024)
	if _, err := f.Decode(&b); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err=%v", err)
	}
}

func TestFramerMaxLoweredWhilePending(t *testing.T) {
	var b bytes.Buffer
	b.Write([]byte{0x05, 'a'})
	f := NewFramer()
	if p, err := f.Decode(&b); p != nil || err != nil {
		t.Fatalf("p=%q err=%v", p, err)
	}
	f.SetMaxLen(4)
	b.Write([]byte("bcde"))
	if _, err := f.Decode(&b); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err=%v", err)
	}
}

func TestFramerEncodeTooLarge(t *testing.T) {
	f := NewFramer()
	f.SetMaxLen(3)
	var b bytes.Buffer
	if err := f.Encode([]byte("four"), &b); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err=%v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("partial write of %d bytes", b.Len())
	}
	if err := f.Encode([]byte("thr"), &b); err != nil {
		t.Fatal(err)
	}
}

func TestFramerLengthOverflow(t *testing.T) {
	var b bytes.Buffer
	b.Write(bytes.Repeat([]byte{0xff}, 11))
	if _, err := NewFramer().Decode(&b); !errors.Is(err, uvarint.ErrOverflow) {
		t.Fatalf("err=%v", err)
	}
}

func TestFramerDefaultUnbounded(t *testing.T) {
	if NewFramer().MaxLen() != math.MaxInt {
		t.Fatal("default bound is not unbounded")
	}
}

func TestFramerReservesMissingBytes(t *testing.T) {
	var b bytes.Buffer
	b.Write(uvarint.Append(nil, uint(4096)))
	f := NewFramer()
	if p, err := f.Decode(&b); p != nil || err != nil {
		t.Fatalf("p=%q err=%v", p, err)
	}
	if b.Cap() < 4096 {
		t.Fatalf("cap=%d, want at least 4096", b.Cap())
	}
}

func TestUviRoundTrip(t *testing.T) {
	var c Uvi[uint32]
	var b bytes.Buffer
	for _, v := range []uint32{0, 1, 300, math.MaxUint32} {
		if err := c.Encode(v, &b); err != nil {
			t.Fatal(err)
		}
	}
	for _, want := range []uint32{0, 1, 300, math.MaxUint32} {
		v, ok, err := c.Decode(&b)
		if err != nil || !ok || v != want {
			t.Fatalf("v=%d ok=%v err=%v want %d", v, ok, err, want)
		}
	}
}

func TestUviInsufficientConsumesNothing(t *testing.T) {
	var c Uvi[uint64]
	var b bytes.Buffer
	b.Write([]byte{0x80, 0x80})
	v, ok, err := c.Decode(&b)
	if err != nil || ok || v != 0 {
		t.Fatalf("v=%d ok=%v err=%v", v, ok, err)
	}
	if b.Len() != 2 {
		t.Fatalf("consumed input: %d left", b.Len())
	}
	b.WriteByte(0x01)
	if v, ok, err = c.Decode(&b); err != nil || !ok || v != 1<<14 {
		t.Fatalf("v=%d ok=%v err=%v", v, ok, err)
	}
}

func TestUviOverflow(t *testing.T) {
	var c Uvi[uint8]
	var b bytes.Buffer
	b.Write([]byte{0xff, 0xff})
	if _, _, err := c.Decode(&b); !errors.Is(err, uvarint.ErrOverflow) {
		t.Fatalf("err=%v", err)
	}
}

func TestFramerHugeLengthStaysPending(t *testing.T) {
	var b bytes.Buffer
	b.Write(uvarint.Append(nil, uint64(1)<<62))
	b.WriteString("abc")
	f := NewFramer()
	p, err := f.Decode(&b)
	if p != nil || err != nil {
		t.Fatalf("p=%q err=%v", p, err)
	}
	if !f.Pending() {
		t.Fatal("declared length not kept pending")
	}
	if b.Len() != 3 {
		t.Fatalf("payload bytes consumed: %d left", b.Len())
	}
	if p, err = f.Decode(&b); p != nil || err != nil {
		t.Fatalf("second poll: p=%q err=%v", p, err)
	}
}

func TestUvi128(t *testing.T) {
	var c Uvi128
	var b bytes.Buffer
	values := []uvarint.Uint128{{}, uvarint.Uint128From64(300), {Hi: 1, Lo: 7}, uvarint.MaxUint128}
	for _, v := range values {
		if err := c.Encode(v, &b); err != nil {
			t.Fatal(err)
		}
	}
	for _, want := range values {
		v, ok, err := c.Decode(&b)
		if err != nil || !ok || v != want {
			t.Fatalf("v=%v ok=%v err=%v want %v", v, ok, err, want)
		}
	}

	b.Write([]byte{0x80})
	if _, ok, err := c.Decode(&b); ok || err != nil || b.Len() != 1 {
		t.Fatalf("partial: ok=%v err=%v left=%d", ok, err, b.Len())
	}
	b.Reset()
	b.Write(bytes.Repeat([]byte{0xff}, 20))
	if _, _, err := c.Decode(&b); !errors.Is(err, uvarint.ErrOverflow) {
		t.Fatalf("err=%v", err)
	}
}
