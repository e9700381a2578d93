// Package comments implements the comment board use cases: save a comment
// at a coordinate, list comments in the same geohash cell, and vote.
package comments

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/coatcheck/coatcheck-service/internal/domain"
	"github.com/coatcheck/coatcheck-service/internal/idgen"
	"github.com/coatcheck/coatcheck-service/internal/observability"
)

// Service validates inputs, computes geohashes, and orchestrates store
// operations. It is stateless: nothing is cached between calls.
type Service struct {
	store   domain.CommentStore
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService creates a comment service backed by the given store.
func NewService(store domain.CommentStore, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Save validates and persists a new comment, returning its generated ID.
// Validation is fail-fast: username, then description, then coordinates.
func (s *Service) Save(ctx context.Context, userName, description string, lat, lon float64) (string, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return "", domain.NewInvalidInput("username")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return "", domain.NewInvalidInput("description")
	}

	lat, lon, err := normalizeCoordinates(lat, lon)
	if err != nil {
		return "", err
	}

	id, err := idgen.NewCommentID()
	if err != nil {
		return "", fmt.Errorf("generate comment id: %w", err)
	}

	c := domain.Comment{
		ID:          id,
		UserName:    userName,
		Description: description,
		Latitude:    lat,
		Longitude:   lon,
		Geohash:     domain.Encode(lat, lon, domain.GeohashPrecision),
	}

	if err := s.store.Put(ctx, c); err != nil {
		return "", err
	}

	s.metrics.CommentsSaved.Inc()
	s.logger.Info("comment saved", "comment_id", id, "geohash", c.Geohash)
	return id, nil
}

// Nearby returns every comment in the geohash cell containing the coordinate.
// An empty cell yields an empty slice.
func (s *Service) Nearby(ctx context.Context, lat, lon float64) ([]domain.Comment, error) {
	lat, lon, err := normalizeCoordinates(lat, lon)
	if err != nil {
		return nil, err
	}

	gh := domain.Encode(lat, lon, domain.GeohashPrecision)
	results, err := s.store.QueryByGeohash(ctx, gh)
	if err != nil {
		return nil, err
	}

	s.metrics.NearbyQueries.Inc()
	if results == nil {
		results = []domain.Comment{}
	}
	return results, nil
}

// Rate applies one vote of the given kind to a comment and returns the new
// counter value for that kind. Votes are unconditional: there is no un-vote
// and no per-voter deduplication.
func (s *Service) Rate(ctx context.Context, commentID, voteKind string) (int64, error) {
	kind, err := domain.ParseVoteKind(voteKind)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(commentID) == "" {
		return 0, domain.NewInvalidInput("commentId")
	}

	if _, err := s.store.GetByID(ctx, commentID); err != nil {
		return 0, err
	}

	count, err := s.store.UpdateVote(ctx, commentID, kind)
	if err != nil {
		return 0, err
	}

	s.metrics.Votes.WithLabelValues(string(kind)).Inc()
	s.logger.Info("comment rated", "comment_id", commentID, "kind", kind, "count", count)
	return count, nil
}

// normalizeCoordinates rejects non-finite values, rounds to 6 decimal places
// (~0.11 m), and range-checks the rounded result.
func normalizeCoordinates(lat, lon float64) (float64, float64, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return 0, 0, domain.NewInvalidInput("coordinates")
	}
	lat = round6(lat)
	lon = round6(lon)
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, domain.NewInvalidInput("coordinates-range")
	}
	return lat, lon, nil
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
