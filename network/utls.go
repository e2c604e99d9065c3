package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/duocast-cli/duocast/constant"
	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const browserTimeout = 30 * time.Second

// h2Transport is a shared HTTP/2 transport for servers that negotiate h2.
var (
	h2Transport     *http2.Transport
	h2TransportOnce sync.Once
)

func getH2Transport() *http2.Transport {
	h2TransportOnce.Do(func() {
		h2Transport = &http2.Transport{
			// Use custom DialTLSContext to provide utls connections
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialTLS(ctx, network, addr)
			},
		}
	})
	return h2Transport
}

// h1Transport is a shared HTTP/1.1 transport for servers that negotiate http/1.1.
var h1Transport = &http.Transport{
	DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialTLSH1(ctx, network, addr)
	},
}

// browserFallbackRoundTripper retries a failed H2 attempt over the H1 transport.
type browserFallbackRoundTripper struct{}

func (browserFallbackRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", constant.UserAgent)
	}

	resp, err := getH2Transport().RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, berr := req.GetBody()
		if berr != nil {
			return nil, fmt.Errorf("reset request body for h1 fallback: %w", berr)
		}
		clone.Body = body
	}

	resp, h1err := h1Transport.RoundTrip(clone)
	if h1err != nil {
		return nil, fmt.Errorf("request failed over h2 (%v) and h1: %w", err, h1err)
	}
	return resp, nil
}

// BrowserClient presents a Chrome Client Hello via refraction-networking/utls.
// License servers are commonly fronted by anti-bot CDNs that reject the
// standard Go TLS stack; with the spoofed fingerprint the license POST goes
// through like regular browser traffic. HTTP/2 is attempted first, with a
// transparent fallback to an HTTP/1.1-only transport when the server does
// not negotiate h2.
var BrowserClient = &http.Client{
	Timeout:   browserTimeout,
	Transport: browserFallbackRoundTripper{},
}

// dialTLS creates a TLS connection mimicking Chrome 120's fingerprint.
// Advertises both h2 and http/1.1 (natural Chrome behavior).
func dialTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: browserTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}, utls.HelloChrome_120)

	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}

// dialTLSH1 creates a TLS connection forcing HTTP/1.1 only (for fallback).
func dialTLSH1(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: browserTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		NextProtos: []string{"http/1.1"},
	}, utls.HelloChrome_120)

	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
