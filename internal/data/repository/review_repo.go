package repository

import (
	"context"
	"errors"
	"fmt"

	"marketplace-api/internal/data/entity"
	"marketplace-api/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReviewSort string

const (
	ReviewSortNewest  ReviewSort = "newest"
	ReviewSortOldest  ReviewSort = "oldest"
	ReviewSortHighest ReviewSort = "highest"
	ReviewSortLowest  ReviewSort = "lowest"
)

var reviewOrder = map[ReviewSort]string{
	ReviewSortNewest:  "rv.created_at DESC, rv.id",
	ReviewSortOldest:  "rv.created_at ASC, rv.id",
	ReviewSortHighest: "rv.rating DESC, rv.created_at DESC, rv.id",
	ReviewSortLowest:  "rv.rating ASC, rv.created_at DESC, rv.id",
}

type ReviewFilter struct {
	BranchID *uuid.UUID
	UserID   *uuid.UUID
	Rating   *int
	Sort     ReviewSort
	Limit    int
	Offset   int
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	FindAll(ctx context.Context, filter ReviewFilter) ([]*entity.Review, error)
	CountAll(ctx context.Context, filter ReviewFilter) (int64, error)
	FindByUserAndBranch(ctx context.Context, userID, branchID uuid.UUID) (*entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Business queries
	GetBranchStats(ctx context.Context, branchID uuid.UUID) (*entity.ReviewStats, error)
}

type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

const reviewSelect = `
	SELECT rv.id, rv.branch_id, rv.user_id, rv.rating, rv.comment, rv.created_at, rv.updated_at,
	       COALESCE(u.username, '')
	FROM reviews rv
	LEFT JOIN users u ON u.id = rv.user_id`

func scanReview(row scanner) (*entity.Review, error) {
	var review entity.Review
	err := row.Scan(
		&review.ID,
		&review.BranchID,
		&review.UserID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.UpdatedAt,
		&review.Username,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	query := `
		INSERT INTO reviews (id, branch_id, user_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		review.ID,
		review.BranchID,
		review.UserID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("user_id", review.UserID.String()),
			zap.String("branch_id", review.BranchID.String()),
		)
		return fmt.Errorf("create review for branch %s by user %s: %w",
			review.BranchID.String(), review.UserID.String(), err)
	}

	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	review, err := scanReview(r.db.QueryRow(ctx, reviewSelect+` WHERE rv.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by ID",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return nil, fmt.Errorf("find review by ID %s: %w", id.String(), err)
	}

	return review, nil
}

func (f ReviewFilter) where() *whereBuilder {
	w := &whereBuilder{}
	if f.BranchID != nil {
		w.add("rv.branch_id = ?", *f.BranchID)
	}
	if f.UserID != nil {
		w.add("rv.user_id = ?", *f.UserID)
	}
	if f.Rating != nil {
		w.add("rv.rating = ?", *f.Rating)
	}
	return w
}

func (r *reviewRepository) FindAll(ctx context.Context, filter ReviewFilter) ([]*entity.Review, error) {
	order, ok := reviewOrder[filter.Sort]
	if !ok {
		order = reviewOrder[ReviewSortNewest]
	}

	w := filter.where()
	limitClause, args := w.page(filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, reviewSelect+w.where()+` ORDER BY `+order+limitClause, args...)
	if err != nil {
		r.log.Error("Failed to find reviews",
			zap.Error(err),
			zap.Int("limit", filter.Limit),
			zap.Int("offset", filter.Offset),
		)
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			r.log.Error("Failed to scan review row", zap.Error(err))
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

func (r *reviewRepository) CountAll(ctx context.Context, filter ReviewFilter) (int64, error) {
	w := filter.where()

	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews rv`+w.where(), w.args...).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count reviews", zap.Error(err))
		return 0, fmt.Errorf("count reviews: %w", err)
	}

	return count, nil
}

func (r *reviewRepository) FindByUserAndBranch(ctx context.Context, userID, branchID uuid.UUID) (*entity.Review, error) {
	query := reviewSelect + ` WHERE rv.user_id = $1 AND rv.branch_id = $2 LIMIT 1`

	review, err := scanReview(r.db.QueryRow(ctx, query, userID, branchID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by user and branch",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("branch_id", branchID.String()),
		)
		return nil, fmt.Errorf("find review by user %s and branch %s: %w",
			userID.String(), branchID.String(), err)
	}

	return review, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, comment = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		review.ID,
		review.Rating,
		review.Comment,
		review.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update review",
			zap.Error(err),
			zap.String("review_id", review.ID.String()),
		)
		return fmt.Errorf("update review %s: %w", review.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s not found", review.ID.String())
	}

	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete review",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return fmt.Errorf("delete review %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s not found", id.String())
	}

	r.log.Info("Review deleted", zap.String("review_id", id.String()))
	return nil
}

func (r *reviewRepository) GetBranchStats(ctx context.Context, branchID uuid.UUID) (*entity.ReviewStats, error) {
	query := `
		SELECT
			COALESCE(AVG(rating), 0)::float8,
			COUNT(*),
			COALESCE(MIN(rating), 0),
			COALESCE(MAX(rating), 0),
			COUNT(*) FILTER (WHERE rating = 1),
			COUNT(*) FILTER (WHERE rating = 2),
			COUNT(*) FILTER (WHERE rating = 3),
			COUNT(*) FILTER (WHERE rating = 4),
			COUNT(*) FILTER (WHERE rating = 5)
		FROM reviews
		WHERE branch_id = $1
	`

	var (
		stats entity.ReviewStats
		dist  [5]int64
	)
	err := r.db.QueryRow(ctx, query, branchID).Scan(
		&stats.Average,
		&stats.Total,
		&stats.MinRating,
		&stats.MaxRating,
		&dist[0], &dist[1], &dist[2], &dist[3], &dist[4],
	)
	if err != nil {
		r.log.Error("Failed to get branch review stats",
			zap.Error(err),
			zap.String("branch_id", branchID.String()),
		)
		return nil, fmt.Errorf("get review stats for branch %s: %w", branchID.String(), err)
	}

	stats.Distribution = make(map[int]int64, len(dist))
	for i, n := range dist {
		stats.Distribution[i+1] = n
	}
	return &stats, nil
}
