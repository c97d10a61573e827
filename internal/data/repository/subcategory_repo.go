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

type SubcategoryFilter struct {
	Search       *string
	CategoryID   *uuid.UUID
	BranchID     *uuid.UUID
	HasOffer     *bool
	FreeDelivery *bool
	IsActive     *bool
}

type SubcategoryRepository interface {
	Create(ctx context.Context, sub *entity.Subcategory) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Subcategory, error)
	FindAll(ctx context.Context, filter SubcategoryFilter) ([]*entity.Subcategory, error)
	Update(ctx context.Context, sub *entity.Subcategory) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type subcategoryRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSubcategoryRepository(db database.PgxIface, log *zap.Logger) SubcategoryRepository {
	return &subcategoryRepository{
		db:  db,
		log: log.With(zap.String("repository", "subcategory")),
	}
}

const subcategorySelect = `
	SELECT s.id, s.branch_id, s.category_id, s.name, s.image, s.has_offer, s.free_delivery,
	       s.sort_order, s.is_active, s.created_at, s.updated_at,
	       (SELECT COUNT(*) FROM products p WHERE p.subcategory_id = s.id AND p.is_active = TRUE) AS product_count
	FROM subcategories s`

func scanSubcategory(row scanner) (*entity.Subcategory, error) {
	var sub entity.Subcategory
	err := row.Scan(
		&sub.ID,
		&sub.BranchID,
		&sub.CategoryID,
		&sub.Name,
		&sub.Image,
		&sub.HasOffer,
		&sub.FreeDelivery,
		&sub.SortOrder,
		&sub.IsActive,
		&sub.CreatedAt,
		&sub.UpdatedAt,
		&sub.ProductCount,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subcategoryRepository) Create(ctx context.Context, sub *entity.Subcategory) error {
	query := `
		INSERT INTO subcategories (id, branch_id, category_id, name, image, has_offer,
		                           free_delivery, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		sub.ID,
		sub.BranchID,
		sub.CategoryID,
		sub.Name,
		sub.Image,
		sub.HasOffer,
		sub.FreeDelivery,
		sub.SortOrder,
		sub.IsActive,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create subcategory",
			zap.Error(err),
			zap.String("branch_id", sub.BranchID.String()),
			zap.String("name", sub.Name),
		)
		return fmt.Errorf("create subcategory %s: %w", sub.Name, err)
	}

	return nil
}

func (r *subcategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Subcategory, error) {
	sub, err := scanSubcategory(r.db.QueryRow(ctx, subcategorySelect+` WHERE s.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find subcategory by ID",
			zap.Error(err),
			zap.String("subcategory_id", id.String()),
		)
		return nil, fmt.Errorf("find subcategory by ID %s: %w", id, err)
	}
	return sub, nil
}

func (r *subcategoryRepository) FindAll(ctx context.Context, filter SubcategoryFilter) ([]*entity.Subcategory, error) {
	w := &whereBuilder{}
	if filter.Search != nil && *filter.Search != "" {
		w.add("s.name ILIKE ?", likePattern(*filter.Search))
	}
	if filter.CategoryID != nil {
		w.add("s.category_id = ?", *filter.CategoryID)
	}
	if filter.BranchID != nil {
		w.add("s.branch_id = ?", *filter.BranchID)
	}
	if filter.HasOffer != nil {
		w.add("s.has_offer = ?", *filter.HasOffer)
	}
	if filter.FreeDelivery != nil {
		w.add("s.free_delivery = ?", *filter.FreeDelivery)
	}
	if filter.IsActive != nil {
		w.add("s.is_active = ?", *filter.IsActive)
	}

	rows, err := r.db.Query(ctx, subcategorySelect+w.where()+` ORDER BY s.sort_order, s.name`, w.args...)
	if err != nil {
		r.log.Error("Failed to find subcategories", zap.Error(err))
		return nil, fmt.Errorf("find subcategories: %w", err)
	}
	defer rows.Close()

	var subs []*entity.Subcategory
	for rows.Next() {
		sub, err := scanSubcategory(rows)
		if err != nil {
			r.log.Error("Failed to scan subcategory row", zap.Error(err))
			return nil, fmt.Errorf("scan subcategory row: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate subcategory rows: %w", err)
	}

	return subs, nil
}

func (r *subcategoryRepository) Update(ctx context.Context, sub *entity.Subcategory) error {
	query := `
		UPDATE subcategories
		SET category_id = $2, name = $3, image = $4, has_offer = $5, free_delivery = $6,
		    sort_order = $7, is_active = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		sub.ID,
		sub.CategoryID,
		sub.Name,
		sub.Image,
		sub.HasOffer,
		sub.FreeDelivery,
		sub.SortOrder,
		sub.IsActive,
		sub.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update subcategory",
			zap.Error(err),
			zap.String("subcategory_id", sub.ID.String()),
		)
		return fmt.Errorf("update subcategory %s: %w", sub.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("subcategory %s not found", sub.ID)
	}

	return nil
}

func (r *subcategoryRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE subcategories SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to deactivate subcategory",
			zap.Error(err),
			zap.String("subcategory_id", id.String()),
		)
		return fmt.Errorf("deactivate subcategory %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("subcategory %s not found", id)
	}

	return nil
}
