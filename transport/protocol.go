package transport

import (
	"bufio"
	"errors"
	"io"
	"math"

	"github.com/BurntRouter/uvarint-go/stream"
)

const (
	Magic       = "UVIF"
	VersionByte = 1

	// FramesPath is the HTTP path frame streams are served on.
	FramesPath = "/frames"
)

var ErrBadHandshake = errors.New("transport: bad handshake")

// WriteHello writes the connection preface advertising the largest frame
// payload the writer accepts, and flushes w.
func WriteHello(w *bufio.Writer, maxFrame int) error {
	if _, err := w.WriteString(Magic); err != nil {
		return err
	}
	if err := w.WriteByte(VersionByte); err != nil {
		return err
	}
	return stream.Write(w, uint(maxFrame))
}

// ReadHello reads the peer's preface and returns its advertised max frame.
func ReadHello(r *bufio.Reader) (maxFrame int, err error) {
	preface := make([]byte, len(Magic)+1)
	if _, err := io.ReadFull(r, preface); err != nil {
		return 0, err
	}
	if string(preface[:len(Magic)]) != Magic || preface[len(Magic)] != VersionByte {
		return 0, ErrBadHandshake
	}
	n, err := stream.Read[uint](r)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt {
		return math.MaxInt, nil
	}
	return int(n), nil
}
