package proxy

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/proxy" // For SOCKS5
)

// Config describes the outbound proxy used for Discord and third-party APIs.
type Config struct {
	Type     string `mapstructure:"type"` // http, https or socks5
	Address  string `mapstructure:"address"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Enabled reports whether a proxy address is configured.
func (c Config) Enabled() bool {
	return c.Address != ""
}

// URL returns the proxy URL including credentials.
func (c Config) URL() (*url.URL, error) {
	proxyURLStr := fmt.Sprintf("%s://%s", c.Type, c.Address)
	u, err := url.Parse(proxyURLStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse proxy URL %s: %w", proxyURLStr, err)
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}
	return u, nil
}

// SOCKS5Dialer returns a dialer tunnelling through the configured SOCKS5 proxy.
func (c Config) SOCKS5Dialer() (proxy.Dialer, error) {
	if c.Type != "socks5" {
		return nil, fmt.Errorf("proxy type %q is not socks5", c.Type)
	}
	u, err := c.URL()
	if err != nil {
		return nil, err
	}
	dialer, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer for %s: %w", c.Address, err)
	}
	return dialer, nil
}

// DefaultHTTPClientFactory builds one shared HTTP client for the configured proxy.
type DefaultHTTPClientFactory struct {
	cfg Config

	mu     sync.Mutex
	client *http.Client
}

// NewHTTPClientFactory creates a new DefaultHTTPClientFactory.
func NewHTTPClientFactory(cfg Config) *DefaultHTTPClientFactory {
	return &DefaultHTTPClientFactory{cfg: cfg}
}

// Config returns the proxy configuration the factory was built with.
func (f *DefaultHTTPClientFactory) Config() Config {
	return f.cfg
}

// GetClient returns the HTTP client, routed through the proxy when one is configured.
// The client is built once and reused.
func (f *DefaultHTTPClientFactory) GetClient() (*http.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client != nil {
		return f.client, nil
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if f.cfg.Enabled() {
		switch f.cfg.Type {
		case "http", "https":
			proxyURL, err := f.cfg.URL()
			if err != nil {
				return nil, err
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		case "socks5":
			dialer, err := f.cfg.SOCKS5Dialer()
			if err != nil {
				return nil, err
			}
			contextDialer, ok := dialer.(proxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("SOCKS5 dialer does not implement proxy.ContextDialer")
			}
			transport.DialContext = contextDialer.DialContext
			transport.Proxy = nil
		default:
			return nil, fmt.Errorf("unsupported proxy type: %s", f.cfg.Type)
		}
	}

	f.client = &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
	return f.client, nil
}
