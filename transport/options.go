package transport

import (
	"crypto/tls"
	"log/slog"
	"time"
)

type Transport string

const (
	TransportQUIC Transport = "quic"
	TransportH3   Transport = "h3"
)

// DefaultMaxFrame is the frame size bound used when Options.MaxFrame is unset.
const DefaultMaxFrame = 16 << 20

type TLSConfig struct {
	ServerName         string
	InsecureSkipVerify bool
	CAFile             string // optional
	CertFile           string // server certificate, or client cert for mTLS
	KeyFile            string

	// Config, when set, is cloned and used instead of the fields above.
	Config *tls.Config
}

type ReconnectOptions struct {
	Enabled    bool
	Delay      time.Duration
	MaxRetries int // 0 = forever
}

type Options struct {
	Addr      string // host:port
	Transport Transport
	TLS       TLSConfig

	// MaxFrame bounds the payload of frames this side accepts and is
	// advertised to the peer in the hello. 0 means DefaultMaxFrame.
	MaxFrame int

	// Reconnect controls dial retries. Nil means enabled with defaults.
	Reconnect *ReconnectOptions

	// Logger receives connection events. Nil means slog.Default().
	Logger *slog.Logger
	// Metrics is optional.
	Metrics *Metrics
}

func (o Options) reconnect() (enabled bool, delay time.Duration, maxRetries int) {
	if o.Reconnect == nil {
		return true, time.Second, 0
	}
	if !o.Reconnect.Enabled {
		return false, 0, 0
	}
	delay = o.Reconnect.Delay
	if delay <= 0 {
		delay = time.Second
	}
	return true, delay, o.Reconnect.MaxRetries
}

func (o Options) maxFrame() int {
	if o.MaxFrame <= 0 {
		return DefaultMaxFrame
	}
	return o.MaxFrame
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
