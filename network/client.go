// Package network provides the HTTP clients shared across the application:
// a tuned default client for connector and release-check requests, and a
// browser-fingerprint client for license servers behind anti-bot CDNs.
package network

import (
	"net/http"
	"time"
)

// Client is shared by everything that talks plain HTTP. License round
// trips and device discovery reuse its connection pool.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}
