package oauth

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Значения по умолчанию для HTTP клиента провайдеров
const (
	DefaultConnectTimeout  = 3 * time.Second
	DefaultResponseTimeout = 5 * time.Second
	DefaultMaxBodyBytes    = 1 << 20
)

// errResponseTooLarge is returned by the transport when a body exceeds the cap.
var errResponseTooLarge = errors.New("provider response exceeds size limit")

// HTTPConfig bounds every call made to a provider.
type HTTPConfig struct {
	ConnectTimeout  time.Duration
	ResponseTimeout time.Duration
	MaxBodyBytes    int64
}

func (c HTTPConfig) withDefaults() HTTPConfig {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.ResponseTimeout <= 0 {
		c.ResponseTimeout = DefaultResponseTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return c
}

// NewHTTPClient builds a client with connect, response and size bounds.
// The whole body is read inside the transport, so a slow or oversized body
// fails in Do and never reaches a decoder.
func NewHTTPClient(cfg HTTPConfig) *http.Client {
	cfg = cfg.withDefaults()

	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ResponseTimeout,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &http.Client{
		Transport: &boundedTransport{base: base, maxBody: cfg.MaxBodyBytes},
		Timeout:   cfg.ConnectTimeout + cfg.ResponseTimeout,
	}
}

type boundedTransport struct {
	base    http.RoundTripper
	maxBody int64
}

func (t *boundedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}
	if int64(len(body)) > t.maxBody {
		return nil, errResponseTooLarge
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}
