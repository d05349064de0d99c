package fetch

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"
)

// ErrNoProxy is returned when a proxied request is asked for but no proxy can be used.
var ErrNoProxy = errors.New("no upstream proxy available")

// ProxyPool rotates requests across a fixed set of upstream proxies.
type ProxyPool struct {
	clients []*http.Client
	next    atomic.Uint64
}

// NewProxyPool builds a pool with one client per proxy so connections to each
// proxy are reused. An empty list yields an empty pool that always fails.
func NewProxyPool(rawURLs []string) (*ProxyPool, error) {
	pool := &ProxyPool{}
	for _, raw := range rawURLs {
		if raw == "" {
			continue
		}
		proxyURL, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		if proxyURL.Host == "" {
			return nil, fmt.Errorf("proxy url %q has no host", proxyURL.Redacted())
		}

		pool.clients = append(pool.clients, &http.Client{
			Transport: newTransport(http.ProxyURL(proxyURL)),
		})
	}
	return pool, nil
}

// Len returns the number of proxies in the pool.
func (p *ProxyPool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.clients)
}

func (p *ProxyPool) client() (*http.Client, error) {
	if p.Len() == 0 {
		return nil, ErrNoProxy
	}
	i := p.next.Add(1) - 1
	return p.clients[i%uint64(len(p.clients))], nil
}

func newTransport(proxy func(*http.Request) (*url.URL, error)) *http.Transport {
	return &http.Transport{
		Proxy:                 proxy,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
