package transport

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/quic-go/quic-go/http3"
)

// dialH3 opens a frame stream as a POST to FramesPath: the request body
// carries frames to the server and the response body frames back.
// ctx bounds the whole exchange, not just the dial.
func dialH3(ctx context.Context, opt Options) (*Conn, error) {
	tlsCfg, err := tlsConfig(opt.TLS, []string{http3.NextProtoH3})
	if err != nil {
		return nil, err
	}
	tr := &http3.Transport{TLSClientConfig: tlsCfg}
	pr, pw := io.Pipe()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://"+opt.Addr+FramesPath, pr)
	if err != nil {
		_ = tr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	cl := &http.Client{Transport: tr}

	bw := bufio.NewWriter(pw)
	hello := make(chan error, 1)
	go func() { hello <- WriteHello(bw, opt.maxFrame()) }()

	resp, err := cl.Do(req)
	if err != nil {
		_ = pw.CloseWithError(err)
		<-hello
		_ = tr.Close()
		return nil, err
	}
	if err := <-hello; err != nil {
		_ = resp.Body.Close()
		_ = tr.Close()
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
		_ = pw.Close()
		_ = tr.Close()
		return nil, &httpError{Status: resp.Status, Body: string(b)}
	}

	closer := func() error {
		return errors.Join(pw.Close(), resp.Body.Close(), tr.Close())
	}
	c := newConn(bufio.NewReader(resp.Body), bw, closer, opt)
	if err := c.recvHello(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// flushWriter pushes every write to the client immediately.
type flushWriter struct {
	w  io.Writer
	rc *http.ResponseController
}

func (f flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err != nil {
		return n, err
	}
	return n, f.rc.Flush()
}

// Handler serves frame streams opened by Dial with TransportH3. It works
// with any HTTP server that supports full duplex bodies, http3.Server
// included. fn owns the Conn until it returns.
func Handler(fn func(ctx context.Context, c *Conn) error, opt Options) http.Handler {
	log := opt.logger()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rc := http.NewResponseController(w)
		_ = rc.EnableFullDuplex() // http3 streams are always duplex

		c := newConn(bufio.NewReader(r.Body), flushWriter{w: w, rc: rc}, r.Body.Close, opt)
		if err := c.recvHello(); err != nil {
			log.Warn("transport: bad hello", "remote", r.RemoteAddr, "err", err)
			http.Error(w, "bad handshake", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		if err := c.sendHello(); err != nil {
			log.Warn("transport: hello", "remote", r.RemoteAddr, "err", err)
			return
		}
		if err := fn(r.Context(), c); err != nil && !errors.Is(err, io.EOF) {
			log.Warn("transport: stream handler", "remote", r.RemoteAddr, "err", err)
		}
		_ = c.Close()
	})
}

type httpError struct {
	Status string
	Body   string
}

func (e *httpError) Error() string { return "transport http error: " + e.Status + ": " + e.Body }
