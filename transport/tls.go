package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

func tlsConfig(c TLSConfig, nextProtos []string) (*tls.Config, error) {
	if c.Config != nil {
		cfg := c.Config.Clone()
		if len(cfg.NextProtos) == 0 {
			cfg.NextProtos = nextProtos
		}
		return cfg, nil
	}
	cfg := &tls.Config{
		NextProtos:         nextProtos,
		InsecureSkipVerify: c.InsecureSkipVerify,
		ServerName:         c.ServerName,
	}
	if c.CAFile != "" {
		b, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(b) {
			return nil, fmt.Errorf("transport: no certificates in %s", c.CAFile)
		}
		cfg.RootCAs = pool
	}
	if c.CertFile != "" || c.KeyFile != "" {
		crt, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{crt}
	}
	return cfg, nil
}
