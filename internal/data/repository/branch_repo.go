package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/pkg/database"
	"marketplace-api/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BranchFilter struct {
	Search       *string
	City         *string
	VendorID     *uuid.UUID
	FreeDelivery *bool
	IsActive     *bool
	MinRating    *float64
	// HasOfferAt keeps branches with a branch offer valid at that instant.
	HasOfferAt *time.Time
	// Box is a coarse geo prefilter; exact distance is checked by the caller.
	Box    *utils.Box
	Limit  int
	Offset int
}

type BranchRepository interface {
	Create(ctx context.Context, branch *entity.Branch) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Branch, error)
	FindAll(ctx context.Context, filter BranchFilter) ([]*entity.Branch, error)
	CountAll(ctx context.Context, filter BranchFilter) (int64, error)
	FindPopular(ctx context.Context, limit int) ([]*entity.Branch, error)
	Update(ctx context.Context, branch *entity.Branch) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type branchRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBranchRepository(db database.PgxIface, log *zap.Logger) BranchRepository {
	return &branchRepository{
		db:  db,
		log: log.With(zap.String("repository", "branch")),
	}
}

const branchSelect = `
	SELECT * FROM (
		SELECT b.id, b.vendor_id, b.name, b.image, b.lat, b.lng, b.address, b.city,
		       b.work_time, b.delivery_time, b.min_order, b.delivery_fee, b.free_delivery,
		       b.is_active, b.created_at, b.updated_at,
		       COALESCE(AVG(rv.rating), 0)::float8 AS rating,
		       COUNT(rv.id) AS total_reviews
		FROM branches b
		LEFT JOIN reviews rv ON rv.branch_id = b.id
		GROUP BY b.id
	) b`

func scanBranch(row scanner) (*entity.Branch, error) {
	var (
		branch   entity.Branch
		workTime []byte
	)
	err := row.Scan(
		&branch.ID,
		&branch.VendorID,
		&branch.Name,
		&branch.Image,
		&branch.Lat,
		&branch.Lng,
		&branch.Address,
		&branch.City,
		&workTime,
		&branch.DeliveryTime,
		&branch.MinOrder,
		&branch.DeliveryFee,
		&branch.FreeDelivery,
		&branch.IsActive,
		&branch.CreatedAt,
		&branch.UpdatedAt,
		&branch.Rating,
		&branch.TotalReviews,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(workTime, &branch.WorkTime); err != nil {
		return nil, fmt.Errorf("decode work_time: %w", err)
	}
	return &branch, nil
}

func (r *branchRepository) Create(ctx context.Context, branch *entity.Branch) error {
	workTime, err := jsonParam(branch.WorkTime)
	if err != nil {
		return fmt.Errorf("encode work_time: %w", err)
	}

	query := `
		INSERT INTO branches (id, vendor_id, name, image, lat, lng, address, city, work_time,
		                      delivery_time, min_order, delivery_fee, free_delivery, is_active,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = r.db.Exec(ctx, query,
		branch.ID,
		branch.VendorID,
		branch.Name,
		branch.Image,
		branch.Lat,
		branch.Lng,
		branch.Address,
		branch.City,
		workTime,
		branch.DeliveryTime,
		branch.MinOrder,
		branch.DeliveryFee,
		branch.FreeDelivery,
		branch.IsActive,
		branch.CreatedAt,
		branch.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create branch",
			zap.Error(err),
			zap.String("vendor_id", branch.VendorID.String()),
			zap.String("name", branch.Name),
		)
		return fmt.Errorf("create branch %s: %w", branch.Name, err)
	}

	return nil
}

func (r *branchRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Branch, error) {
	branch, err := scanBranch(r.db.QueryRow(ctx, branchSelect+` WHERE b.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find branch by ID",
			zap.Error(err),
			zap.String("branch_id", id.String()),
		)
		return nil, fmt.Errorf("find branch by ID %s: %w", id, err)
	}

	return branch, nil
}

func (f BranchFilter) where() *whereBuilder {
	w := &whereBuilder{}
	if f.Search != nil && *f.Search != "" {
		w.add("b.name ILIKE ?", likePattern(*f.Search))
	}
	if f.City != nil && *f.City != "" {
		w.add("b.city ILIKE ?", likePattern(*f.City))
	}
	if f.VendorID != nil {
		w.add("b.vendor_id = ?", *f.VendorID)
	}
	if f.FreeDelivery != nil {
		w.add("b.free_delivery = ?", *f.FreeDelivery)
	}
	if f.IsActive != nil {
		w.add("b.is_active = ?", *f.IsActive)
	}
	if f.MinRating != nil {
		w.add("b.rating >= ?", *f.MinRating)
	}
	if f.HasOfferAt != nil {
		w.add(`EXISTS (
			SELECT 1 FROM offers o
			WHERE o.entity_type = 'branch' AND o.entity_id = b.id AND o.is_active = TRUE
			  AND o.start_date <= ? AND o.end_date >= ?)`, *f.HasOfferAt, *f.HasOfferAt)
	}
	if f.Box != nil {
		w.add("b.lat BETWEEN ? AND ?", f.Box.MinLat, f.Box.MaxLat)
		w.add("b.lng BETWEEN ? AND ?", f.Box.MinLng, f.Box.MaxLng)
	}
	return w
}

func (r *branchRepository) FindAll(ctx context.Context, filter BranchFilter) ([]*entity.Branch, error) {
	w := filter.where()
	limitClause, args := w.page(filter.Limit, filter.Offset)
	query := branchSelect + w.where() + ` ORDER BY b.created_at DESC, b.id` + limitClause

	branches, err := r.list(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find all branches",
			zap.Error(err),
			zap.Int("limit", filter.Limit),
			zap.Int("offset", filter.Offset),
		)
		return nil, fmt.Errorf("find all branches: %w", err)
	}
	return branches, nil
}

func (r *branchRepository) CountAll(ctx context.Context, filter BranchFilter) (int64, error) {
	w := filter.where()

	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM (`+branchSelect+w.where()+`) c`, w.args...).Scan(&total)
	if err != nil {
		r.log.Error("Failed to count branches", zap.Error(err))
		return 0, fmt.Errorf("count branches: %w", err)
	}

	return total, nil
}

func (r *branchRepository) FindPopular(ctx context.Context, limit int) ([]*entity.Branch, error) {
	query := branchSelect + ` WHERE b.is_active = TRUE
		ORDER BY b.rating DESC, b.total_reviews DESC, b.id
		LIMIT $1`

	branches, err := r.list(ctx, query, limit)
	if err != nil {
		r.log.Error("Failed to find popular branches", zap.Error(err))
		return nil, fmt.Errorf("find popular branches: %w", err)
	}
	return branches, nil
}

func (r *branchRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Branch, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []*entity.Branch
	for rows.Next() {
		branch, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan branch row: %w", err)
		}
		branches = append(branches, branch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate branch rows: %w", err)
	}

	return branches, nil
}

func (r *branchRepository) Update(ctx context.Context, branch *entity.Branch) error {
	workTime, err := jsonParam(branch.WorkTime)
	if err != nil {
		return fmt.Errorf("encode work_time: %w", err)
	}

	query := `
		UPDATE branches
		SET name = $2, image = $3, lat = $4, lng = $5, address = $6, city = $7,
		    work_time = $8, delivery_time = $9, min_order = $10, delivery_fee = $11,
		    free_delivery = $12, is_active = $13, updated_at = $14
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		branch.ID,
		branch.Name,
		branch.Image,
		branch.Lat,
		branch.Lng,
		branch.Address,
		branch.City,
		workTime,
		branch.DeliveryTime,
		branch.MinOrder,
		branch.DeliveryFee,
		branch.FreeDelivery,
		branch.IsActive,
		branch.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update branch",
			zap.Error(err),
			zap.String("branch_id", branch.ID.String()),
		)
		return fmt.Errorf("update branch %s: %w", branch.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("branch %s not found", branch.ID)
	}

	return nil
}

func (r *branchRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.Exec(ctx, `UPDATE branches SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		r.log.Error("Failed to set branch active flag",
			zap.Error(err),
			zap.String("branch_id", id.String()),
			zap.Bool("active", active),
		)
		return fmt.Errorf("set branch %s active=%t: %w", id, active, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("branch %s not found", id)
	}

	return nil
}
