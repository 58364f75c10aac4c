// Package movies composes movie metadata and reviews into a single Movie.
package movies

import (
	"context"
	"log/slog"

	"github.com/Clark-Hu/movies-service/internal/domain"
	"github.com/Clark-Hu/movies-service/internal/metrics"
	"github.com/Clark-Hu/movies-service/internal/movieinfo"
	"github.com/Clark-Hu/movies-service/internal/reviews"
	"github.com/Clark-Hu/movies-service/internal/upstream"
)

// Options tunes the aggregation strategy.
type Options struct {
	// Parallel starts the reviews lookup alongside the movie-info lookup.
	// A movie-info failure still takes precedence over any reviews outcome.
	Parallel bool
	Logger   *slog.Logger
}

// Service aggregates the movie-info and reviews upstreams.
type Service struct {
	movieInfo movieinfo.Client
	reviews   reviews.Client
	parallel  bool
	logger    *slog.Logger
}

// NewService wires the two upstream clients.
func NewService(infoClient movieinfo.Client, reviewsClient reviews.Client, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		movieInfo: infoClient,
		reviews:   reviewsClient,
		parallel:  opts.Parallel,
		logger:    logger,
	}
}

// GetMovieByID returns the movie's metadata together with its reviews. Any
// movie-info failure is returned as-is and no partial Movie is produced.
func (s *Service) GetMovieByID(ctx context.Context, movieID string) (domain.Movie, error) {
	var (
		movie domain.Movie
		err   error
	)
	if s.parallel {
		movie, err = s.getParallel(ctx, movieID)
	} else {
		movie, err = s.getSequential(ctx, movieID)
	}
	metrics.Aggregations.WithLabelValues(upstream.Outcome(err)).Inc()
	if err != nil {
		s.logger.Info("movie aggregation failed", "movieId", movieID, "error", err)
		return domain.Movie{}, err
	}
	return movie, nil
}

func (s *Service) getSequential(ctx context.Context, movieID string) (domain.Movie, error) {
	info, err := s.movieInfo.RetrieveMovieInfo(ctx, movieID)
	if err != nil {
		return domain.Movie{}, err
	}
	revs, err := s.reviews.RetrieveReviews(ctx, movieID)
	if err != nil {
		return domain.Movie{}, err
	}
	return domain.NewMovie(info, revs), nil
}

type reviewsResult struct {
	reviews []domain.Review
	err     error
}

func (s *Service) getParallel(ctx context.Context, movieID string) (domain.Movie, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so the goroutine never blocks once we stop listening.
	done := make(chan reviewsResult, 1)
	go func() {
		revs, err := s.reviews.RetrieveReviews(ctx, movieID)
		done <- reviewsResult{reviews: revs, err: err}
	}()

	info, err := s.movieInfo.RetrieveMovieInfo(ctx, movieID)
	if err != nil {
		return domain.Movie{}, err
	}

	res := <-done
	if res.err != nil {
		return domain.Movie{}, res.err
	}
	return domain.NewMovie(info, res.reviews), nil
}
