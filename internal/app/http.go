package app

import (
	"net/http"
	"time"
)

const (
	feedClientTimeout    = 60 * time.Second
	feedHeaderTimeout    = 20 * time.Second
	feedIdleConnsPerHost = 2
)

// newFeedHTTPClient returns a client for the single feed host. It starts from
// a clone of the default transport so proxy and TLS settings follow the
// environment, then keeps the pool small and bounds the wait for headers.
func newFeedHTTPClient() *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConns = feedIdleConnsPerHost
	tr.MaxIdleConnsPerHost = feedIdleConnsPerHost
	tr.ResponseHeaderTimeout = feedHeaderTimeout
	return &http.Client{Transport: tr, Timeout: feedClientTimeout}
}
