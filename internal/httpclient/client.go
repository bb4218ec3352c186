// Package httpclient provides an outbound HTTP client whose requests
// are routed through the breaker registry, one breaker per named
// dependency.
package httpclient

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/fusegate/fusegate/internal/resilience"
)

// Client is a breaker-protected HTTP client. Each dependency name maps
// to its own breaker, created lazily from the client's default policy.
type Client struct {
	rest     *resty.Client
	registry *resilience.Registry
	policy   resilience.Policy
}

// New creates a protected client. Requests carry their deadline
// through the breaker's call timeout, so the resty client itself has
// no separate timeout.
func New(registry *resilience.Registry, policy resilience.Policy) *Client {
	rest := resty.New().
		SetRetryCount(0). // retry policy belongs to callers, never the breaker
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(3))

	return &Client{
		rest:     rest,
		registry: registry,
		policy:   policy,
	}
}

// Get issues a GET to url, protected by the breaker for dependency.
func (c *Client) Get(ctx context.Context, dependency, url string) resilience.Outcome[*resty.Response] {
	return c.execute(ctx, dependency, "GET "+url, func(ctx context.Context) (*resty.Response, error) {
		return c.rest.R().SetContext(ctx).Get(url)
	})
}

// Post issues a POST with a JSON body to url, protected by the breaker
// for dependency.
func (c *Client) Post(ctx context.Context, dependency, url string, body any) resilience.Outcome[*resty.Response] {
	return c.execute(ctx, dependency, "POST "+url, func(ctx context.Context) (*resty.Response, error) {
		return c.rest.R().SetContext(ctx).SetBody(body).Post(url)
	})
}

func (c *Client) execute(ctx context.Context, dependency, label string, do func(ctx context.Context) (*resty.Response, error)) resilience.Outcome[*resty.Response] {
	b, err := c.registry.GetOrCreate(dependency, c.policy)
	if err != nil {
		return resilience.Failure[*resty.Response](err, 0)
	}

	return resilience.Execute(ctx, b, label, func(ctx context.Context) (*resty.Response, error) {
		resp, err := do(ctx)
		if err != nil {
			return nil, err
		}
		// Server-side errors mean the dependency is unhealthy; client
		// errors do not.
		if resp.StatusCode() >= 500 {
			return nil, fmt.Errorf("upstream %s returned status %d", dependency, resp.StatusCode())
		}
		return resp, nil
	})
}

// Breaker returns the breaker protecting dependency, if one exists.
func (c *Client) Breaker(dependency string) (*resilience.Breaker, bool) {
	return c.registry.Get(dependency)
}
