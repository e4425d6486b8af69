package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/BurntRouter/uvarint-go/transport"
	"github.com/quic-go/quic-go/http3"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		addr, cert, key, kind string
		maxFrame              int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a frame echo server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			opt := transport.Options{
				Addr:     addr,
				MaxFrame: maxFrame,
				TLS:      transport.TLSConfig{CertFile: cert, KeyFile: key},
				Logger:   logger(),
			}
			if transport.Transport(kind) == transport.TransportH3 {
				return serveH3(ctx, opt, cert, key)
			}
			return serveQUIC(ctx, opt)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:4433", "listen address")
	cmd.Flags().StringVar(&cert, "cert", "", "TLS certificate file")
	cmd.Flags().StringVar(&key, "key", "", "TLS key file")
	cmd.Flags().StringVar(&kind, "transport", string(transport.TransportQUIC), "quic or h3")
	cmd.Flags().IntVar(&maxFrame, "max-frame", transport.DefaultMaxFrame, "largest accepted frame payload")
	_ = cmd.MarkFlagRequired("cert")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func echo(c *transport.Conn) error {
	for {
		p, err := c.Recv()
		if err != nil {
			return err
		}
		if err := c.Send(p); err != nil {
			return err
		}
	}
}

func serveQUIC(ctx context.Context, opt transport.Options) error {
	ln, err := transport.Listen(opt.Addr, opt)
	if err != nil {
		return err
	}
	defer ln.Close()
	log := opt.Logger
	log.Info("serving frames over QUIC", "addr", ln.Addr().String())
	for {
		c, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go func() {
			defer c.Close()
			if err := echo(c); err != nil && !errors.Is(err, io.EOF) {
				log.Debug("connection closed", "err", err)
			}
		}()
	}
}

func serveH3(ctx context.Context, opt transport.Options, cert, key string) error {
	mux := http.NewServeMux()
	mux.Handle(transport.FramesPath, transport.Handler(func(_ context.Context, c *transport.Conn) error {
		return echo(c)
	}, opt))
	srv := &http3.Server{Addr: opt.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	opt.Logger.Info("serving frames over HTTP/3", "addr", opt.Addr)
	if err := srv.ListenAndServeTLS(cert, key); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func sendCmd() *cobra.Command {
	var (
		opt      transport.Options
		kind     string
		insecure bool
		timeout  time.Duration
		retries  int
	)
	cmd := &cobra.Command{
		Use:   "send MSG...",
		Short: "Send each argument as a frame and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			opt.Transport = transport.Transport(kind)
			opt.TLS.InsecureSkipVerify = insecure
			opt.Logger = logger()
			opt.Reconnect = &transport.ReconnectOptions{Enabled: retries != 1, Delay: time.Second, MaxRetries: retries}
			c, err := transport.Dial(ctx, opt)
			if err != nil {
				return err
			}
			defer c.Close()
			for _, a := range args {
				if err := c.Send([]byte(a)); err != nil {
					return err
				}
				p, err := c.Recv()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opt.Addr, "addr", "127.0.0.1:4433", "server address")
	cmd.Flags().StringVar(&kind, "transport", string(transport.TransportQUIC), "quic or h3")
	cmd.Flags().StringVar(&opt.TLS.CAFile, "ca", "", "CA certificate file")
	cmd.Flags().StringVar(&opt.TLS.ServerName, "server-name", "", "TLS server name")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "skip certificate verification")
	cmd.Flags().IntVar(&opt.MaxFrame, "max-frame", transport.DefaultMaxFrame, "largest accepted frame payload")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline")
	cmd.Flags().IntVar(&retries, "retries", 3, "dial attempts (0 = until timeout)")
	return cmd
}
