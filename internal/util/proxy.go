package util

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	xproxy "golang.org/x/net/proxy"
)

// NewProxyFunc creates a proxy function based on configuration.
// If no proxy URL is provided, falls back to environment variables.
func NewProxyFunc(httpProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		return url.Parse(httpProxy)
	}
}

// NewHTTPClient builds the HTTP client used for API calls. A SOCKS5 proxy
// takes precedence over an HTTP proxy when both are configured.
func NewHTTPClient(timeout time.Duration, httpProxy, socksProxy string) (*http.Client, error) {
	transport := &http.Transport{
		Proxy: NewProxyFunc(httpProxy),
	}

	if socksProxy != "" {
		u, err := url.Parse(socksProxy)
		if err != nil {
			return nil, fmt.Errorf("parse socks proxy: %w", err)
		}

		var auth *xproxy.Auth
		if u.User != nil {
			password, _ := u.User.Password()
			auth = &xproxy.Auth{User: u.User.Username(), Password: password}
		}

		dialer, err := xproxy.SOCKS5("tcp", u.Host, auth, xproxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks5 dialer: %w", err)
		}

		transport.Proxy = nil
		if ctxDialer, ok := dialer.(xproxy.ContextDialer); ok {
			transport.DialContext = ctxDialer.DialContext
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}
