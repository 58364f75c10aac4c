package reviews

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/Clark-Hu/movies-service/internal/domain"
	"github.com/Clark-Hu/movies-service/internal/retry"
	"github.com/Clark-Hu/movies-service/internal/upstream"
)

const clientErrorPrefix = "Server Exception in ReviewService"

// Client defines the contract for querying the reviews service.
type Client interface {
	RetrieveReviews(ctx context.Context, movieID string) ([]domain.Review, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	caller  *upstream.Caller
	policy  retry.Policy
	logger  *slog.Logger
}

// NewHTTPClient constructs a reviews client rooted at baseURL, e.g.
// http://localhost:8081/v1/reviews.
func NewHTTPClient(baseURL string, caller *upstream.Caller, policy retry.Policy, logger *slog.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse reviews url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("reviews url %q must be absolute", baseURL)
	}
	return &HTTPClient{
		baseURL: parsed,
		caller:  caller,
		policy:  policy.WithOnRetry(caller.OnRetry),
		logger:  logger,
	}, nil
}

// RetrieveReviews lists the reviews of a movie in upstream order. A 404 from
// the reviews service means "no reviews" and yields an empty slice.
func (c *HTTPClient) RetrieveReviews(ctx context.Context, movieID string) ([]domain.Review, error) {
	endpoint := *c.baseURL
	q := endpoint.Query()
	q.Set("movieInfoId", movieID)
	endpoint.RawQuery = q.Encode()
	target := endpoint.String()

	reviews, err := retry.Do(ctx, c.policy, func(ctx context.Context) ([]domain.Review, error) {
		var reviews []domain.Review
		err := c.caller.Get(ctx, target, classify, &reviews)
		return reviews, err
	})
	switch {
	case err == nil:
	case upstream.IsNotFound(err):
		c.logger.Debug("no reviews found", "movieId", movieID)
		return []domain.Review{}, nil
	case errors.Is(err, io.EOF):
		// 2xx with an empty body.
		return []domain.Review{}, nil
	default:
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

func classify(status int, body []byte) error {
	err := upstream.Classify(status, body)
	if upstream.IsClientError(err) {
		return upstream.NewError(upstream.KindClientError, clientErrorPrefix+string(body), status)
	}
	return err
}
