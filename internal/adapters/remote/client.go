package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const maxResponseSize = 1 << 20

// HTTPClient is satisfied by *http.Client
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures the scoring API client
type Config struct {
	URL             string
	Timeout         time.Duration
	Attempts        uint
	RetryDelay      time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// StatusError is returned for server-side failures of the scoring API
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scoring API returned HTTP %d: %s", e.Code, e.Body)
}

type predictRequest struct {
	Message string `json:"message"`
}

// Client sends message bodies to a remote scoring endpoint
type Client struct {
	url        string
	httpClient HTTPClient
	attempts   uint
	retryDelay time.Duration
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a new scoring API client. httpClient may be nil.
func NewClient(cfg Config, httpClient HTTPClient, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid scoring API URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid scoring API URL %q: scheme must be http or https", cfg.URL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid scoring API URL %q: missing host", cfg.URL)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "scoring-api",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		url:        u.String(),
		httpClient: httpClient,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
		breaker:    breaker,
		logger:     logger.With(zap.String("url", u.String())),
	}, nil
}

// Name returns the backend name
func (c *Client) Name() string {
	return "remote"
}

// URL returns the endpoint the client posts to
func (c *Client) URL() string {
	return c.url
}

// Score implements core.Scorer. Every failure is logged and reported as
// VerdictUnknown.
func (c *Client) Score(ctx context.Context, body string) core.Verdict {
	verdict := core.VerdictUnknown

	err := retry.Do(
		func() error {
			v, err := c.breaker.Execute(func() (interface{}, error) {
				return c.post(ctx, body)
			})
			if err != nil {
				return err
			}
			verdict = v.(core.Verdict)
			return nil
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("Retrying scoring request after error", zap.Uint("attempt", n), zap.Error(err))
		}),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests)
		}),
	)
	if err != nil {
		c.logger.Warn("Scoring request failed", zap.Error(err))
		return core.VerdictUnknown
	}
	return verdict
}

// post performs one request. Only failures worth retrying are returned as
// errors; client errors and malformed responses resolve to unknown.
func (c *Client) post(ctx context.Context, body string) (core.Verdict, error) {
	payload, err := json.Marshal(predictRequest{Message: body})
	if err != nil {
		c.logger.Error("Failed to encode scoring request", zap.Error(err))
		return core.VerdictUnknown, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		c.logger.Error("Failed to create scoring request", zap.Error(err))
		return core.VerdictUnknown, nil
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Accept", "application/json")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.VerdictUnknown, fmt.Errorf("scoring request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close response body", zap.Error(closeErr))
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return core.VerdictUnknown, fmt.Errorf("reading scoring response: %w", err)
	}

	c.logger.Debug("Scoring request completed",
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", time.Since(startTime)))

	if resp.StatusCode != http.StatusOK {
		errBody := string(data)
		if errBody == "" {
			errBody = "No error details"
		}
		c.logger.Warn("Scoring API returned error status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", errBody))
		if resp.StatusCode >= http.StatusInternalServerError {
			return core.VerdictUnknown, &StatusError{Code: resp.StatusCode, Body: errBody}
		}
		return core.VerdictUnknown, nil
	}

	return c.parse(data), nil
}

func (c *Client) parse(data []byte) core.Verdict {
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		c.logger.Warn("Failed to parse scoring response", zap.Error(err), zap.ByteString("response", data))
		return core.VerdictUnknown
	}

	raw, ok := fields["verdict"]
	if !ok {
		c.logger.Warn("'verdict' field missing in scoring response", zap.ByteString("response", data))
		return core.VerdictUnknown
	}

	label, ok := raw.(string)
	if !ok {
		c.logger.Warn("'verdict' field is not a string", zap.Any("verdict", raw))
		return core.VerdictUnknown
	}

	verdict := core.VerdictFromLabel(label)
	if !verdict.Known() {
		c.logger.Info("Unrecognised verdict label", zap.String("verdict", label))
	}
	return verdict
}
