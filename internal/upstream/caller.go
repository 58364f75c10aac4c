package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/Clark-Hu/movies-service/internal/metrics"
)

const maxResponseBody = 1 << 20 // 1 MiB

// Options configures a Caller.
type Options struct {
	// Name labels logs and metrics, e.g. "movieinfo".
	Name string
	// Timeout bounds each individual attempt. Zero disables the bound.
	Timeout time.Duration
	// RateLimitRPS caps outbound attempts per second. Zero disables limiting.
	RateLimitRPS float64
	// Client is shared across callers; NewHTTPClient is used when nil.
	Client *http.Client
	Logger *slog.Logger
}

// Caller performs single GET attempts against one upstream service and
// classifies the responses. Retrying is left to the caller.
type Caller struct {
	name    string
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewCaller constructs a Caller from opts.
func NewCaller(opts Options) *Caller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.Client
	if client == nil {
		client = NewHTTPClient(opts.Timeout)
	}
	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}
	return &Caller{
		name:    opts.Name,
		timeout: opts.Timeout,
		client:  client,
		limiter: limiter,
		logger:  logger.With("upstream", opts.Name),
	}
}

// NewHTTPClient builds the process-wide HTTP client used for upstream calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	dialTimeout := timeout
	if dialTimeout <= 0 {
		dialTimeout = 30 * time.Second
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   dialTimeout,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(transport),
	}
}

// Name returns the upstream label used in logs, metrics and decode errors.
func (c *Caller) Name() string {
	return c.name
}

// Get issues one GET to endpoint. Non-2xx responses are turned into errors by
// classify; 2xx bodies are decoded into out.
func (c *Caller) Get(ctx context.Context, endpoint string, classify Classifier, out any) error {
	if classify == nil {
		classify = Classify
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.limiterError(ctx, err)
		}
	}

	attemptCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(middleware.RequestIDHeader, requestID(ctx))

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.UpstreamLatency.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
		return c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	metrics.UpstreamLatency.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	if err != nil {
		return c.transportError(ctx, err)
	}

	c.logger.Info("upstream responded", "status", resp.StatusCode, "url", endpoint)

	if err := classify(resp.StatusCode, body); err != nil {
		c.record(err)
		return err
	}

	if len(body) == 0 {
		err = &DecodeError{Upstream: c.name, StatusCode: resp.StatusCode, Err: io.EOF}
		c.record(err)
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		decodeErr := &DecodeError{Upstream: c.name, StatusCode: resp.StatusCode, Err: err}
		c.logger.Error("upstream payload does not match contract", "status", resp.StatusCode, "error", err)
		c.record(decodeErr)
		return decodeErr
	}
	c.record(nil)
	return nil
}

// OnRetry logs and counts a scheduled retry. Its signature matches retry.Policy.OnRetry.
func (c *Caller) OnRetry(attempt uint64, err error) {
	metrics.UpstreamRetries.WithLabelValues(c.name).Inc()
	c.logger.Warn("retrying upstream call", "attempt", attempt, "error", err)
}

// transportError classifies failures that produced no response. Cancellation
// by the caller is returned as the context error; anything else means the
// dependency is unreachable and is reported as a retriable ServerError.
func (c *Caller) transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		c.record(ctxErr)
		return ctxErr
	}
	status := http.StatusServiceUnavailable
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		status = http.StatusGatewayTimeout
	}
	c.logger.Warn("upstream unreachable", "status", status, "error", err)
	classified := NewError(KindServerError, ServerErrorPrefix+err.Error(), status)
	c.record(classified)
	return classified
}

// limiterError reports a rate limiter wait that cannot complete. A wait that
// would outlive the caller's deadline means the upstream is not reachable in
// time, so it is classified like a transport failure.
func (c *Caller) limiterError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		c.record(ctxErr)
		return ctxErr
	}
	c.logger.Warn("upstream rate limit wait failed", "error", err)
	classified := NewError(KindServerError, ServerErrorPrefix+err.Error(), http.StatusServiceUnavailable)
	c.record(classified)
	return classified
}

func (c *Caller) record(err error) {
	metrics.UpstreamAttempts.WithLabelValues(c.name, Outcome(err)).Inc()
}

// Outcome returns a stable metrics label for err.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind, ok := KindOf(err); ok {
		return kind.String()
	}
	var decodeErr *DecodeError
	switch {
	case errors.As(err, &decodeErr):
		return "decode_error"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	default:
		return "error"
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
