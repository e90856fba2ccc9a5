package app

import (
	"net"
	"net/http"
	"time"
)

// newUpstreamHTTPClient returns a client for the handful of registry hosts.
// Per-request deadlines come from the fetch layer, so the client itself has
// no overall timeout.
func newUpstreamHTTPClient(maxPerHost int) *http.Client {
	if maxPerHost <= 0 {
		maxPerHost = DefaultMaxConcurrent
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   maxPerHost,
		MaxConnsPerHost:       maxPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: transport}
}
