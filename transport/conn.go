package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/BurntRouter/uvarint-go/codec"
	"github.com/BurntRouter/uvarint-go/stream"
)

// Conn carries varint length-prefixed frames in both directions.
// One goroutine may Send while another Recvs.
type Conn struct {
	br    *bufio.Reader
	bw    *bufio.Writer
	close func() error

	maxFrame int // accepted from the peer
	peerMax  int // accepted by the peer

	log     *slog.Logger
	metrics *Metrics

	mu     sync.Mutex
	closed bool
}

func newConn(r io.Reader, w io.Writer, closer func() error, opt Options) *Conn {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	return &Conn{
		br:       br,
		bw:       bw,
		close:    closer,
		maxFrame: opt.maxFrame(),
		peerMax:  opt.maxFrame(),
		log:      opt.logger(),
		metrics:  opt.Metrics,
	}
}

func (c *Conn) sendHello() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return WriteHello(c.bw, c.maxFrame)
}

func (c *Conn) recvHello() error {
	n, err := ReadHello(c.br)
	if err != nil {
		return fmt.Errorf("transport: hello: %w", err)
	}
	c.peerMax = n
	c.log.Debug("transport: handshake complete", "max_frame", c.maxFrame, "peer_max_frame", n)
	return nil
}

// handshake exchanges hellos. The initiator writes first so that
// unbuffered pipes do not deadlock.
func (c *Conn) handshake(initiator bool) error {
	if initiator {
		if err := c.sendHello(); err != nil {
			return err
		}
		return c.recvHello()
	}
	if err := c.recvHello(); err != nil {
		return err
	}
	return c.sendHello()
}

// PeerMaxFrame reports the largest payload the peer accepts.
func (c *Conn) PeerMaxFrame() int { return c.peerMax }

// Send writes p as one frame and flushes it.
func (c *Conn) Send(p []byte) error {
	if len(p) > c.peerMax {
		c.metrics.rejected()
		return fmt.Errorf("%w: %d > peer max %d", codec.ErrTooLarge, len(p), c.peerMax)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return net.ErrClosed
	}
	if err := stream.WriteBytes(c.bw, p); err != nil {
		return err
	}
	c.metrics.sent(len(p))
	return nil
}

// Recv reads the next frame. It returns io.EOF when the peer closed the
// stream between frames.
func (c *Conn) Recv() ([]byte, error) {
	if _, err := c.br.Peek(1); err != nil {
		return nil, err
	}
	p, err := stream.ReadBytesLimit(c.br, c.maxFrame)
	if err != nil {
		if errors.Is(err, codec.ErrTooLarge) {
			c.metrics.rejected()
			c.log.Warn("transport: rejected oversized frame", "err", err)
		}
		return nil, err
	}
	c.metrics.received(len(p))
	return p, nil
}

// Close releases the underlying stream.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	err := c.bw.Flush()
	c.mu.Unlock()
	if c.close != nil {
		err = errors.Join(err, c.close())
	}
	return err
}
