package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fixture-tracker/internal/cache"
	"fixture-tracker/internal/config"
	"fixture-tracker/internal/constants"
	"fixture-tracker/internal/metrics"
	"fixture-tracker/internal/ratelimit"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
)

// Client is the single point of contact with the remote football API. Every
// call goes through the tiered cache, the shared rate limiter, and a small
// fixed delay between outbound requests.
type Client struct {
	apiKey  string
	baseURL string
	http    *fasthttp.Client
	cache   *cache.Tiered
	limiter *ratelimit.Limiter
	logger  zerolog.Logger

	delay   time.Duration
	backoff time.Duration
	sleep   func(time.Duration)
}

func NewClient(cfg *config.Config, tc *cache.Tiered, limiter *ratelimit.Limiter, logger zerolog.Logger) *Client {
	// Cold start: stale entries from a previous process must not survive.
	tc.ClearAll()

	return &Client{
		apiKey:  cfg.FootballAPIKey,
		baseURL: cfg.BaseURL,
		http: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		cache:   tc,
		limiter: limiter,
		logger:  logger,
		delay:   constants.RequestDelay,
		backoff: constants.RateLimitBackoff,
		sleep:   time.Sleep,
	}
}

// BatchRequest resolves each parameter set against endpoint, serving fresh
// cache entries without a network call. The result map is keyed by the
// canonical parameter encoding; a Result with a non-nil Err marks a failed
// fetch, and one failure never aborts the rest of the batch.
func (c *Client) BatchRequest(ctx context.Context, endpoint string, paramSets []Params, tier cache.Tier) map[string]Result {
	results := make(map[string]Result, len(paramSets))

	for _, params := range paramSets {
		key := params.Encode()
		cacheKey := endpoint + "?" + key

		if cached, ok := c.cache.Get(cacheKey, tier); ok {
			if env, ok := cached.(*Envelope); ok {
				results[key] = Result{Envelope: env}
				continue
			}
		}

		env, err := c.doGet(ctx, endpoint, params)
		if err != nil {
			c.logger.Error().Err(err).Str("endpoint", endpoint).Str("params", key).Msg("batch request failed")
			metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
			results[key] = Result{Err: err}
		} else {
			c.cache.Set(cacheKey, env, tier)
			metrics.APIRequests.WithLabelValues(endpoint, "ok").Inc()
			results[key] = Result{Envelope: env}
		}

		// Even below the limiter's threshold, do not burst the remote.
		c.sleep(c.delay)
	}

	return results
}

// doGet performs one rate-limited GET. HTTP 429 is retried exactly once
// after a fixed backoff; every other failure surfaces immediately.
func (c *Client) doGet(ctx context.Context, endpoint string, params Params) (*Envelope, error) {
	var env *Envelope

	b := retry.WithMaxRetries(1, retry.NewConstant(c.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		c.limiter.Wait()

		status, body, err := c.get(ctx, endpoint, params)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		if status == fasthttp.StatusTooManyRequests {
			return retry.RetryableError(fmt.Errorf("rate limited by remote API"))
		}
		if status != fasthttp.StatusOK {
			return fmt.Errorf("unexpected status %d", status)
		}

		parsed := &Envelope{}
		if err := json.Unmarshal(body, parsed); err != nil {
			return fmt.Errorf("malformed response: %w", err)
		}
		if parsed.HasErrors() {
			return fmt.Errorf("api errors: %s", parsed.Errors)
		}

		env = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return env, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params Params) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.baseURL + endpoint
	if q := params.Encode(); q != "" {
		uri += "?" + q
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("x-apisports-key", c.apiKey)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.http.DoDeadline(req, resp, deadline); err != nil {
			return 0, nil, err
		}
	} else {
		if err := c.http.Do(req, resp); err != nil {
			return 0, nil, err
		}
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return resp.StatusCode(), body, nil
}
