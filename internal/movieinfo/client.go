package movieinfo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Clark-Hu/movies-service/internal/domain"
	"github.com/Clark-Hu/movies-service/internal/retry"
	"github.com/Clark-Hu/movies-service/internal/upstream"
)

// Client defines the contract for querying the movie-info service.
type Client interface {
	RetrieveMovieInfo(ctx context.Context, movieID string) (domain.MovieInfo, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL string
	caller  *upstream.Caller
	policy  retry.Policy
	logger  *slog.Logger
}

// NewHTTPClient constructs a movie-info client rooted at baseURL, e.g.
// http://localhost:8080/v1/movieinfos.
func NewHTTPClient(baseURL string, caller *upstream.Caller, policy retry.Policy, logger *slog.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse movie info url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("movie info url %q must be absolute", baseURL)
	}
	return &HTTPClient{
		baseURL: parsed.String(),
		caller:  caller,
		policy:  policy.WithOnRetry(caller.OnRetry),
		logger:  logger,
	}, nil
}

// RetrieveMovieInfo fetches one movie's metadata. A missing movie yields a
// NotFound error that is never retried; server errors are retried per policy.
func (c *HTTPClient) RetrieveMovieInfo(ctx context.Context, movieID string) (domain.MovieInfo, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(movieID)
	classify := notFoundMessage(movieID)

	info, err := retry.Do(ctx, c.policy, func(ctx context.Context) (*domain.MovieInfo, error) {
		var info *domain.MovieInfo
		if err := c.caller.Get(ctx, endpoint, classify, &info); err != nil {
			return nil, err
		}
		if info == nil {
			return nil, &upstream.DecodeError{Upstream: c.caller.Name(), StatusCode: http.StatusOK, Err: errNullMovieInfo}
		}
		return info, nil
	})
	if err != nil {
		c.logger.Debug("movie info lookup failed", "movieId", movieID, "error", err)
		return domain.MovieInfo{}, err
	}
	return *info, nil
}

// errNullMovieInfo marks a 2xx response whose body is the JSON literal null.
var errNullMovieInfo = errors.New("null movie info payload")

func notFoundMessage(movieID string) upstream.Classifier {
	return func(status int, body []byte) error {
		err := upstream.Classify(status, body)
		if upstream.IsNotFound(err) {
			return upstream.NewError(upstream.KindNotFound,
				"There is no MovieInfo available for the passed Id : "+movieID, status)
		}
		return err
	}
}
