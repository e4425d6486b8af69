package transport

import (
	"bufio"
	"context"
	"errors"
	"net"
	"time"

	quic "github.com/quic-go/quic-go"
)

// NextProto is the ALPN protocol of frame streams over raw QUIC.
const NextProto = "uvif"

func closeQUIC(conn *quic.Conn, st *quic.Stream) func() error {
	return func() error {
		var err error
		if st != nil {
			err = errors.Join(err, st.Close())
		}
		if conn != nil {
			err = errors.Join(err, conn.CloseWithError(0, ""))
		}
		return err
	}
}

// withDeadline bounds the handshake on st by the deadline of ctx, if any.
func withDeadline(ctx context.Context, st *quic.Stream, fn func() error) error {
	if dl, ok := ctx.Deadline(); ok {
		_ = st.SetDeadline(dl)
		defer st.SetDeadline(time.Time{})
	}
	return fn()
}

func dialQUIC(ctx context.Context, opt Options) (*Conn, error) {
	tlsCfg, err := tlsConfig(opt.TLS, []string{NextProto})
	if err != nil {
		return nil, err
	}
	qc, err := quic.DialAddr(ctx, opt.Addr, tlsCfg, &quic.Config{})
	if err != nil {
		return nil, err
	}
	st, err := qc.OpenStreamSync(ctx)
	if err != nil {
		_ = qc.CloseWithError(0, "")
		return nil, err
	}
	c := newConn(bufio.NewReader(st), st, closeQUIC(qc, st), opt)
	if err := withDeadline(ctx, st, func() error { return c.handshake(true) }); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Listener accepts frame connections over QUIC.
type Listener struct {
	ln  *quic.Listener
	opt Options
}

// Listen starts a QUIC listener on addr. opt.TLS must carry a server
// certificate.
func Listen(addr string, opt Options) (*Listener, error) {
	tlsCfg, err := tlsConfig(opt.TLS, []string{NextProto})
	if err != nil {
		return nil, err
	}
	ln, err := quic.ListenAddr(addr, tlsCfg, &quic.Config{})
	if err != nil {
		return nil, err
	}
	return &Listener{ln: ln, opt: opt}, nil
}

// Accept waits for the next peer to open a stream and completes the hello
// exchange with it.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	qc, err := l.ln.Accept(ctx)
	if err != nil {
		return nil, err
	}
	st, err := qc.AcceptStream(ctx)
	if err != nil {
		_ = qc.CloseWithError(0, "")
		return nil, err
	}
	c := newConn(bufio.NewReader(st), st, closeQUIC(qc, st), l.opt)
	if err := withDeadline(ctx, st, func() error { return c.handshake(false) }); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

func (l *Listener) Close() error { return l.ln.Close() }
