package transport

import (
	"fmt"
	"io"

	"github.com/BurntRouter/uvarint-go/codec"
	"github.com/BurntRouter/uvarint-go/stream"
)

// SendMessage streams r as frames of at most chunkSize bytes followed by an
// empty frame marking the end of the message.
func (c *Conn) SendMessage(r io.Reader, chunkSize int) error {
	if chunkSize <= 0 || chunkSize > c.peerMax {
		chunkSize = min(64<<10, c.peerMax)
	}
	if chunkSize <= 0 {
		return fmt.Errorf("%w: peer accepts no payload", codec.ErrTooLarge)
	}
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if err := c.Send(buf[:n]); err != nil {
				return err
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
	}
	return c.Send(nil)
}

// RecvMessage returns a reader over the next message sent with SendMessage.
// It must be drained to io.EOF before the Conn is read from again.
func (c *Conn) RecvMessage() io.Reader {
	return &messageReader{c: c}
}

type messageReader struct {
	c    *Conn
	done bool

	buf []byte
	off int
}

func (m *messageReader) Read(p []byte) (int, error) {
	if m.done {
		return 0, io.EOF
	}
	if m.off < len(m.buf) {
		n := copy(p, m.buf[m.off:])
		m.off += n
		return n, nil
	}

	n, err := stream.Read[uint](m.c.br)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		m.done = true
		return 0, io.EOF
	}
	if n > uint(m.c.maxFrame) {
		m.c.metrics.rejected()
		return 0, fmt.Errorf("%w: chunk %d > %d", codec.ErrTooLarge, n, m.c.maxFrame)
	}
	need := int(n)
	if cap(m.buf) < need {
		m.buf = make([]byte, need)
	} else {
		m.buf = m.buf[:need]
	}
	if _, err := io.ReadFull(m.c.br, m.buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	m.c.metrics.received(need)
	m.off = copy(p, m.buf)
	return m.off, nil
}
