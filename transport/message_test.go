package transport

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/BurntRouter/uvarint-go/codec"
)

func TestMessageRoundTrip(t *testing.T) {
	client, server := pipeConns(t, Options{Logger: quietLogger()}, Options{MaxFrame: 8, Logger: quietLogger()})
	body := strings.Repeat("helloworld", 5)

	errc := make(chan error, 1)
	go func() {
		// chunkSize above the peer max falls back to the peer max.
		errc <- client.SendMessage(strings.NewReader(body), 1<<20)
	}()
	out, err := io.ReadAll(server.RecvMessage())
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != body {
		t.Fatalf("got %q", out)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
}

func TestMessageReaderSupportsSmallReads(t *testing.T) {
	var wire bytes.Buffer
	w := newConn(bytes.NewReader(nil), &wire, nil, Options{Logger: quietLogger()})
	if err := w.SendMessage(strings.NewReader("hello"), 3); err != nil {
		t.Fatal(err)
	}
	if want := []byte{0x03, 'h', 'e', 'l', 0x02, 'l', 'o', 0x00}; !bytes.Equal(wire.Bytes(), want) {
		t.Fatalf("wire % x want % x", wire.Bytes(), want)
	}

	r := newConn(bytes.NewReader(wire.Bytes()), io.Discard, nil, Options{Logger: quietLogger()})
	out, err := io.ReadAll(iotest.OneByteReader(r.RecvMessage()))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "hello" {
		t.Fatalf("got %q", out)
	}
}

func TestMessageReaderRejectsOversizedChunk(t *testing.T) {
	var wire bytes.Buffer
	w := newConn(bytes.NewReader(nil), &wire, nil, Options{Logger: quietLogger()})
	if err := w.SendMessage(strings.NewReader("hello"), 5); err != nil {
		t.Fatal(err)
	}
	r := newConn(bytes.NewReader(wire.Bytes()), io.Discard, nil, Options{MaxFrame: 4, Logger: quietLogger()})
	if _, err := io.ReadAll(r.RecvMessage()); !errors.Is(err, codec.ErrTooLarge) {
		t.Fatalf("err=%v", err)
	}
}
