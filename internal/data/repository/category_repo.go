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

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	FindByName(ctx context.Context, name string) (*entity.Category, error)
	FindAll(ctx context.Context) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountSubcategories(ctx context.Context, id uuid.UUID) (int64, error)
}

type categoryRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCategoryRepository(db database.PgxIface, log *zap.Logger) CategoryRepository {
	return &categoryRepository{
		db:  db,
		log: log.With(zap.String("repository", "category")),
	}
}

const categorySelect = `
	SELECT id, name, image, has_offer, free_delivery, created_at, updated_at
	FROM categories`

func scanCategory(row scanner) (*entity.Category, error) {
	var category entity.Category
	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Image,
		&category.HasOffer.Decimal,
		&category.FreeDelivery,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	query := `
		INSERT INTO categories (id, name, image, has_offer, free_delivery, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		category.ID,
		category.Name,
		category.Image,
		category.HasOffer.Decimal,
		category.FreeDelivery,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create category",
			zap.Error(err),
			zap.String("name", category.Name),
		)
		return fmt.Errorf("create category %s: %w", category.Name, err)
	}

	return nil
}

func (r *categoryRepository) findOne(ctx context.Context, where string, arg any) (*entity.Category, error) {
	category, err := scanCategory(r.db.QueryRow(ctx, categorySelect+` WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find category", zap.Error(err), zap.Any("key", arg))
		return nil, fmt.Errorf("find category %v: %w", arg, err)
	}
	return category, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	return r.findOne(ctx, "LOWER(name) = LOWER($1)", name)
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]*entity.Category, error) {
	rows, err := r.db.Query(ctx, categorySelect+` ORDER BY name`)
	if err != nil {
		r.log.Error("Failed to find all categories", zap.Error(err))
		return nil, fmt.Errorf("find all categories: %w", err)
	}
	defer rows.Close()

	var categories []*entity.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			r.log.Error("Failed to scan category row", zap.Error(err))
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	query := `
		UPDATE categories
		SET name = $2, image = $3, has_offer = $4, free_delivery = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		category.ID,
		category.Name,
		category.Image,
		category.HasOffer.Decimal,
		category.FreeDelivery,
		category.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update category",
			zap.Error(err),
			zap.String("category_id", category.ID.String()),
		)
		return fmt.Errorf("update category %s: %w", category.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("category %s not found", category.ID)
	}

	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete category",
			zap.Error(err),
			zap.String("category_id", id.String()),
		)
		return fmt.Errorf("delete category %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("category %s not found", id)
	}

	r.log.Info("Category deleted", zap.String("category_id", id.String()))
	return nil
}

func (r *categoryRepository) CountSubcategories(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM subcategories WHERE category_id = $1`, id).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count subcategories of category",
			zap.Error(err),
			zap.String("category_id", id.String()),
		)
		return 0, fmt.Errorf("count subcategories of %s: %w", id, err)
	}
	return count, nil
}
