// Package transport is the single auth-aware HTTP client sitting underneath
// every external collaborator (calendar provider, work-item provider). It is
// component A of the reconciliation engine: one polymorphic client over
// {get, post, put, patch, delete}, with retry, backoff, and rate-limit
// handling, grounded on the teacher's resty-based API client
// (cli/api_client.go's buildHTTPClient/retryCondition wiring).
package transport

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"

	"github.com/bvtime/reconciler/engine/core"
	"github.com/bvtime/reconciler/pkg/logger"
)

// Config controls retry/backoff/timeout behaviour. Defaults mirror §4.A.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    uint64
	BackoffFactor time.Duration
	Auth          AuthProvider
}

func DefaultConfig(baseURL string, auth AuthProvider) Config {
	return Config{
		BaseURL:       baseURL,
		Timeout:       30 * time.Second,
		MaxRetries:    3,
		BackoffFactor: 1 * time.Second,
		Auth:          auth,
	}
}

// Client is the shared, pooled HTTP client. One Client instance owns one
// underlying *resty.Client (and therefore one connection pool) for the
// lifetime of a single orchestrator run.
type Client struct {
	rc     *resty.Client
	cfg    Config
	maxRetries int
}

func NewClient(cfg Config) *Client {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	c := &Client{rc: rc, cfg: cfg, maxRetries: int(cfg.MaxRetries)}

	rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if cfg.Auth == nil {
			return nil
		}
		header, value, err := cfg.Auth.Header(req.Context())
		if err != nil {
			return err
		}
		req.SetHeader(header, value)
		return nil
	})

	return c
}

// Close releases the pooled connections backing this client.
func (c *Client) Close() {
	c.rc.GetClient().CloseIdleConnections()
}

// Do executes one request of the given method against path with an optional
// query, body, and extra headers, decoding a JSON response into result (if
// non-nil). It is the one internal request function every HTTP call in the
// engine funnels through, per §4.A's contract.
func (c *Client) Do(
	ctx context.Context,
	method, path string,
	query url.Values,
	body any,
	headers map[string]string,
	result any,
) error {
	backoff := retry.NewExponential(c.cfg.BackoffFactor)
	backoff = retry.WithMaxRetries(uint64(c.maxRetries), backoff)

	var attempt int
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		req := c.rc.R().SetContext(ctx)
		if query != nil {
			req.SetQueryParamsFromValues(query)
		}
		if body != nil {
			req.SetBody(body)
		}
		for k, v := range headers {
			req.SetHeader(k, v)
		}
		if result != nil {
			req.SetResult(result)
		}

		resp, err := execute(req, method, path)
		classified := classify(resp, err)
		if classified == nil {
			return nil
		}

		log := logger.FromContext(ctx)
		if classified.Retryable() && attempt <= c.maxRetries {
			if resp != nil {
				if wait := retryAfter(resp); wait > 0 {
					if err := sleepFor(ctx, wait); err != nil {
						return err
					}
				}
			}
			log.Warn("transport retrying", "path", path, "attempt", attempt, "error", classified.Error())
			return retry.RetryableError(classified)
		}
		return classified
	})
}

func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, result any) error {
	return c.Do(ctx, "GET", path, query, nil, nil, result)
}

func (c *Client) PostJSON(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, "POST", path, nil, body, nil, result)
}

func (c *Client) PatchJSON(ctx context.Context, path string, body, result any, headers map[string]string) error {
	return c.Do(ctx, "PATCH", path, nil, body, headers, result)
}

func execute(req *resty.Request, method, path string) (*resty.Response, error) {
	switch method {
	case "GET":
		return req.Get(path)
	case "POST":
		return req.Post(path)
	case "PUT":
		return req.Put(path)
	case "PATCH":
		return req.Patch(path)
	case "DELETE":
		return req.Delete(path)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}
}

// classify maps a resty outcome onto the taxonomy kinds from §4.A/§7.
// Returns nil when the call succeeded (2xx).
func classify(resp *resty.Response, err error) *core.Error {
	if err != nil {
		if ctxErr, ok := err.(interface{ Timeout() bool }); ok && ctxErr.Timeout() {
			return core.NewError(err, core.KindTimeout, nil)
		}
		return core.NewError(err, core.KindConnection, nil)
	}
	if resp == nil {
		return core.NewError(fmt.Errorf("empty response"), core.KindConnection, nil)
	}

	status := resp.StatusCode()
	switch {
	case status < 400:
		return nil
	case status == 401:
		return core.NewError(fmt.Errorf("unauthorized"), core.KindUnauthorized, detail(resp))
	case status == 403:
		return core.NewError(fmt.Errorf("forbidden"), core.KindForbidden, detail(resp))
	case status == 404:
		return core.NewError(fmt.Errorf("not found"), core.KindNotFound, detail(resp))
	case status == 429:
		return core.NewError(fmt.Errorf("rate limited"), core.KindRateLimited, detail(resp))
	case status >= 500:
		return core.NewError(fmt.Errorf("server error"), core.KindServer, detail(resp))
	default:
		return core.NewError(fmt.Errorf("request failed with status %d", status), core.KindProtocol, detail(resp))
	}
}

func detail(resp *resty.Response) map[string]any {
	body := resp.String()
	if len(body) > 500 {
		body = body[:500] + "..."
	}
	return map[string]any{"status": resp.StatusCode(), "body": body}
}

func retryAfter(resp *resty.Response) time.Duration {
	h := resp.Header().Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// sleepFor honours an explicit Retry-After header before go-retry applies
// its own exponential backoff for the next attempt.
func sleepFor(ctx context.Context, wait time.Duration) error {
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return core.NewError(ctx.Err(), core.KindCancelled, nil)
	}
}
