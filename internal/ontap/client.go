package ontap

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/janskibh/netapp-exporter/internal/config"
)

// maxBodyBytes caps a single upstream response. A truncated body fails JSON
// decoding and is counted like any other failed request.
const maxBodyBytes = 32 << 20

// NewTransport builds the transport shared by every scrape. Connections are
// pooled across scrapes; credentials are attached per scrape by the client.
func NewTransport(cfg config.TargetConfig) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // user-configured, default matches cluster self-signed certs
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: workers,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// basicAuthRoundTripper injects HTTP Basic credentials into every outgoing request.
type basicAuthRoundTripper struct {
	base     http.RoundTripper
	username string
	password string
}

func (t *basicAuthRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(req)
}

// Client fetches JSON documents from one ONTAP target with one set of
// credentials. It lives for a single collection pass.
type Client struct {
	http   *http.Client
	target config.Target
	rec    Recorder
	log    *slog.Logger
}

func newClient(base http.RoundTripper, target config.Target, timeout time.Duration, rec Recorder, log *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Transport: &basicAuthRoundTripper{base: base, username: target.Username, password: target.Password},
			Timeout:   timeout,
		},
		target: target,
		rec:    rec,
		log:    log,
	}
}

// URL resolves a detail link against the target. The result always points at
// the target's scheme and address: a link naming another host, or one that is
// not an absolute path, is rejected so credentials never leave the target.
func (c *Client) URL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", ref, err)
	}
	if u.Host != "" && !strings.EqualFold(u.Host, c.target.Address) {
		return "", fmt.Errorf("link %q points outside target %s", ref, c.target.Address)
	}
	if !strings.HasPrefix(u.Path, "/") {
		return "", fmt.Errorf("link %q is not an absolute path", ref)
	}
	return c.target.URL(u.RequestURI()), nil
}

// Fetch GETs endpoint and returns the decoded JSON document. On transport error,
// timeout, non-200 status or undecodable body it increments the failed-request
// counter for endpoint, logs the cause and reports ok=false. There is no retry.
func (c *Client) Fetch(ctx context.Context, endpoint string) (doc any, ok bool) {
	doc, err := c.get(ctx, endpoint)
	if err != nil {
		c.rec.FailedRequest(endpoint)
		c.log.Warn("ontap: fetch failed", "url", endpoint, "err", err)
		return nil, false
	}
	return doc, true
}

func (c *Client) get(ctx context.Context, endpoint string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if msg := strings.TrimSpace(string(body)); msg != "" {
			return nil, fmt.Errorf("unexpected status %s: %s", resp.Status, msg)
		}
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	return doc, nil
}
