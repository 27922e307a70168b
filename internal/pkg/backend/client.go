// Package backend talks to the simulation service that actually runs the supply-chain model.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/csvtable"
)

const (
	runPath          = "/api/run"
	maxErrorSnippet  = 200
	maxResponseBytes = 64 << 20
	retryInterval    = 200 * time.Millisecond
)

type Config struct {
	BaseURL      string
	Timeout      time.Duration
	FetchRetries uint64
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	retries uint64
}

func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url must be absolute, got %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		retries: cfg.FetchRetries,
	}, nil
}

// Run posts a multipart body to /api/run and returns the named output URLs. It is never
// retried.
func (c *Client) Run(ctx context.Context, body io.Reader, contentType, authToken string) (domain.OutputURLs, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.String()+runPath, body)
	if err != nil {
		return nil, fmt.Errorf("build run request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrBackend, err.Error())
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read run response: %s", constants.ErrBackend, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: run returned %d: %s",
			constants.ErrBackend, resp.StatusCode, describeErrorBody(resp.Header.Get("Content-Type"), payload))
	}

	return decodeOutputURLs(payload)
}

func decodeOutputURLs(payload []byte) (domain.OutputURLs, error) {
	var raw map[string]interface{}
	if err := sonic.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode run response: %s", constants.ErrBackend, err.Error())
	}

	urls := make(domain.OutputURLs)
	for k, v := range raw {
		s, ok := v.(string)
		if !ok || !strings.HasSuffix(k, "_url") || strings.TrimSpace(s) == "" {
			continue
		}
		urls[k] = s
	}

	if len(urls) == 0 {
		msg := "no output urls in response"
		if e, ok := raw["error"].(string); ok && e != "" {
			msg = e
		}
		return nil, fmt.Errorf("%w: %s", constants.ErrBackend, msg)
	}

	return urls, nil
}

// Resolve turns a possibly relative output URL into an absolute one on the backend host.
func (c *Client) Resolve(raw string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse output url: %w", err)
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// FetchCSV downloads and parses one output file. Transient failures are retried with a
// constant backoff; 4xx responses are not.
func (c *Client) FetchCSV(ctx context.Context, rawURL string) (*domain.Table, error) {
	target, err := c.Resolve(rawURL)
	if err != nil {
		return nil, err
	}

	var payload []byte
	err = backoff.Retry(
		func() error {
			var fetchErr error
			payload, fetchErr = c.get(ctx, target)
			return fetchErr
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(retryInterval), c.retries),
			ctx,
		),
	)
	if err != nil {
		return nil, err
	}

	table, err := csvtable.ParseBytes(payload)
	if err != nil {
		return nil, fmt.Errorf("csvtable.ParseBytes: %w", err)
	}

	return table, nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http.Get: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("status code error: %d %s",
			resp.StatusCode, describeErrorBody(resp.Header.Get("Content-Type"), payload))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(statusErr)
		}
		return nil, statusErr
	}

	return payload, nil
}

// describeErrorBody reduces an error response to one readable line. HTML pages from proxies
// are boiled down to their title and text.
func describeErrorBody(contentType string, body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "empty response"
	}

	if strings.Contains(contentType, "html") || bytes.HasPrefix(bytes.ToLower(body), []byte("<!doctype html")) ||
		bytes.HasPrefix(bytes.ToLower(body), []byte("<html")) {
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
			title := strings.TrimSpace(doc.Find("title").First().Text())
			text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
			switch {
			case title != "" && text != "" && !strings.HasPrefix(text, title):
				return truncate(title + ": " + text)
			case title != "":
				return truncate(title)
			case text != "":
				return truncate(text)
			}
		}
	}

	if strings.Contains(contentType, "json") || bytes.HasPrefix(body, []byte("{")) {
		var obj map[string]interface{}
		if err := sonic.Unmarshal(body, &obj); err == nil {
			for _, k := range []string{"message", "error", "detail"} {
				if s, ok := obj[k].(string); ok && s != "" {
					return truncate(s)
				}
			}
		}
	}

	return truncate(strings.Join(strings.Fields(string(body)), " "))
}

func truncate(s string) string {
	if len(s) <= maxErrorSnippet {
		return s
	}
	n := maxErrorSnippet
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
