// Package service provides business logic services for Brewlog.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tapline/brewlog/internal/domain"
	"github.com/tapline/brewlog/internal/repository"
)

// BeerService owns the beer aggregate: tasting entries and the append-only
// comment sequences attached to them.
type BeerService struct {
	beerRepo    repository.BeerRepository
	commentRepo repository.CommentRepository
	logger      zerolog.Logger
}

// NewBeerService creates a new BeerService.
func NewBeerService(beerRepo repository.BeerRepository, commentRepo repository.CommentRepository, logger zerolog.Logger) *BeerService {
	return &BeerService{
		beerRepo:    beerRepo,
		commentRepo: commentRepo,
		logger:      logger.With().Str("service", "beer").Logger(),
	}
}

// CreateBeerInput contains the data needed to create a beer.
type CreateBeerInput struct {
	Name        string
	ImageURL    string
	Description string
}

// Create validates the input and persists a new beer with an empty comment
// sequence. No ownership is recorded for the creating user.
func (s *BeerService) Create(ctx context.Context, input CreateBeerInput) (*domain.Beer, error) {
	switch {
	case input.Name == "":
		return nil, ErrBeerNameRequired
	case input.ImageURL == "":
		return nil, ErrBeerImageRequired
	case input.Description == "":
		return nil, ErrBeerDescriptionRequired
	}

	beer := domain.NewBeer(input.Name, input.ImageURL, input.Description)
	if err := s.beerRepo.Create(ctx, beer); err != nil {
		s.logger.Error().Err(err).Str("name", input.Name).Msg("failed to create beer")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("beer_id", beer.ID).
		Str("name", beer.Name).
		Msg("beer created")

	return beer, nil
}

// BeerDetail is a beer with its comment sequence expanded into full comment
// records, in attachment order.
type BeerDetail struct {
	Beer     *domain.Beer
	Comments []*domain.Comment
}

// Get retrieves a beer and expands its comments for display.
func (s *BeerService) Get(ctx context.Context, id int64) (*BeerDetail, error) {
	beer, err := s.beerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrBeerNotFound) {
			return nil, ErrBeerNotFound
		}
		s.logger.Error().Err(err).Int64("beer_id", id).Msg("failed to get beer")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	comments, err := s.commentRepo.GetByIDs(ctx, beer.CommentIDs)
	if err != nil {
		s.logger.Error().Err(err).Int64("beer_id", id).Msg("failed to expand comments")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &BeerDetail{
		Beer:     beer,
		Comments: comments,
	}, nil
}

// List returns all beers in creation order.
func (s *BeerService) List(ctx context.Context) ([]*domain.Beer, error) {
	beers, err := s.beerRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list beers")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return beers, nil
}

// AttachCommentInput contains the data needed to attach a comment to a beer.
type AttachCommentInput struct {
	BeerID     int64
	Text       string
	AuthorID   int64
	AuthorName string
}

// AttachComment creates a comment and appends it to the beer's sequence.
// The two phases are not transactional: when the beer turns out not to
// exist, the comment persisted in phase one is left behind as accepted
// garbage rather than rolled back. Orphans are never referenced by any
// beer, so they are invisible to readers.
func (s *BeerService) AttachComment(ctx context.Context, input AttachCommentInput) (*domain.Comment, error) {
	if input.Text == "" {
		return nil, ErrCommentTextRequired
	}

	comment := domain.NewComment(input.Text, input.AuthorID, input.AuthorName)
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		s.logger.Error().Err(err).Int64("beer_id", input.BeerID).Msg("failed to create comment")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.beerRepo.AppendComment(ctx, input.BeerID, comment.ID); err != nil {
		if errors.Is(err, domain.ErrBeerNotFound) {
			s.logger.Warn().
				Int64("beer_id", input.BeerID).
				Int64("comment_id", comment.ID).
				Msg("comment orphaned: beer disappeared before attach")
			return nil, ErrBeerNotFound
		}
		s.logger.Error().Err(err).Int64("beer_id", input.BeerID).Msg("failed to append comment")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("beer_id", input.BeerID).
		Int64("comment_id", comment.ID).
		Int64("author_id", input.AuthorID).
		Msg("comment attached")

	return comment, nil
}
