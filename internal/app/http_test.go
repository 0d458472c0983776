package app

import (
	"net/http"
	"testing"
)

func TestNewFeedHTTPClient_Transport(t *testing.T) {
	c := newFeedHTTPClient()
	if c.Timeout != feedClientTimeout {
		t.Fatalf("timeout=%v, want %v", c.Timeout, feedClientTimeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport is %T", c.Transport)
	}
	if tr == http.DefaultTransport {
		t.Fatalf("default transport must not be shared")
	}
	if tr.Proxy == nil {
		t.Fatalf("proxy settings from the environment were dropped")
	}
	if tr.MaxIdleConnsPerHost != feedIdleConnsPerHost || tr.MaxIdleConns != feedIdleConnsPerHost {
		t.Fatalf("idle pool %d/%d, want %d", tr.MaxIdleConns, tr.MaxIdleConnsPerHost, feedIdleConnsPerHost)
	}
	if tr.ResponseHeaderTimeout != feedHeaderTimeout {
		t.Fatalf("header timeout=%v", tr.ResponseHeaderTimeout)
	}
	if newFeedHTTPClient().Transport == c.Transport {
		t.Fatalf("each client should own its transport")
	}
}
