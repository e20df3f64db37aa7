package postgres

import (
	"context"
	"fmt"

	"github.com/tapline/brewlog/internal/domain"
	"github.com/tapline/brewlog/internal/repository"
)

// beerRepository implements repository.BeerRepository for PostgreSQL.
type beerRepository struct {
	db *DB
}

// NewBeerRepository creates a new PostgreSQL beer repository.
func NewBeerRepository(db *DB) repository.BeerRepository {
	return &beerRepository{db: db}
}

// Create creates a new beer.
func (r *beerRepository) Create(ctx context.Context, beer *domain.Beer) error {
	query := `
		INSERT INTO beers (name, image_url, description, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		beer.Name,
		beer.ImageURL,
		beer.Description,
		beer.CreatedAt,
	).Scan(&beer.ID)
	if err != nil {
		return fmt.Errorf("failed to create beer: %w", err)
	}

	return nil
}

// GetByID retrieves a beer by ID, including its ordered comment ID sequence.
func (r *beerRepository) GetByID(ctx context.Context, id int64) (*domain.Beer, error) {
	query := `
		SELECT id, name, image_url, description, created_at
		FROM beers
		WHERE id = $1
	`

	beer := &domain.Beer{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&beer.ID,
		&beer.Name,
		&beer.ImageURL,
		&beer.Description,
		&beer.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrBeerNotFound
		}
		return nil, fmt.Errorf("failed to get beer: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT comment_id FROM beer_comments WHERE beer_id = $1 ORDER BY id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get beer comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var commentID int64
		if err := rows.Scan(&commentID); err != nil {
			return nil, fmt.Errorf("failed to scan comment ID: %w", err)
		}
		beer.CommentIDs = append(beer.CommentIDs, commentID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comment IDs: %w", err)
	}

	return beer, nil
}

// List returns all beers in creation order without comment sequences.
func (r *beerRepository) List(ctx context.Context) ([]*domain.Beer, error) {
	query := `
		SELECT id, name, image_url, description, created_at
		FROM beers
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list beers: %w", err)
	}
	defer rows.Close()

	var beers []*domain.Beer
	for rows.Next() {
		beer := &domain.Beer{}
		if err := rows.Scan(
			&beer.ID,
			&beer.Name,
			&beer.ImageURL,
			&beer.Description,
			&beer.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan beer: %w", err)
		}
		beers = append(beers, beer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate beers: %w", err)
	}

	return beers, nil
}

// AppendComment atomically appends a comment ID to the beer's sequence.
// The guarded INSERT is a single statement, so concurrent appends to the
// same beer serialize at the store and both land.
func (r *beerRepository) AppendComment(ctx context.Context, beerID, commentID int64) error {
	query := `
		INSERT INTO beer_comments (beer_id, comment_id)
		SELECT $1, $2
		WHERE EXISTS (SELECT 1 FROM beers WHERE id = $1)
	`

	tag, err := r.db.Pool.Exec(ctx, query, beerID, commentID)
	if err != nil {
		return fmt.Errorf("failed to append comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBeerNotFound
	}

	return nil
}
