package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductFilter struct {
	BranchID      *uuid.UUID
	SubcategoryID *uuid.UUID
	Search        *string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	IsActive      *bool
	// HasOfferAt keeps products with a product offer valid at that instant.
	HasOfferAt *time.Time
	Limit      int
	Offset     int
}

type ProductRepository interface {
	// Create inserts the product and its Variations in one transaction.
	Create(ctx context.Context, product *entity.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	CountAll(ctx context.Context, filter ProductFilter) (int64, error)
	Update(ctx context.Context, product *entity.Product) error
	Deactivate(ctx context.Context, id uuid.UUID) error

	CreateVariation(ctx context.Context, variation *entity.ProductVariation) error
	FindVariationByID(ctx context.Context, id uuid.UUID) (*entity.ProductVariation, error)
	UpdateVariation(ctx context.Context, variation *entity.ProductVariation) error
	DeleteVariation(ctx context.Context, id uuid.UUID) error
}

type productRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewProductRepository(db database.PgxIface, log *zap.Logger) ProductRepository {
	return &productRepository{
		db:  db,
		log: log.With(zap.String("repository", "product")),
	}
}

const productSelect = `
	SELECT p.id, p.branch_id, p.subcategory_id, p.name, p.description, p.image, p.base_price,
	       p.is_available, p.is_active, p.sort_order, p.created_at, p.updated_at
	FROM products p`

const variationSelect = `
	SELECT id, product_id, name, price, is_available, sort_order, created_at, updated_at
	FROM product_variations`

func scanProduct(row scanner) (*entity.Product, error) {
	var product entity.Product
	err := row.Scan(
		&product.ID,
		&product.BranchID,
		&product.SubcategoryID,
		&product.Name,
		&product.Description,
		&product.Image,
		&product.BasePrice,
		&product.IsAvailable,
		&product.IsActive,
		&product.SortOrder,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func scanVariation(row scanner) (*entity.ProductVariation, error) {
	var v entity.ProductVariation
	err := row.Scan(
		&v.ID,
		&v.ProductID,
		&v.Name,
		&v.Price,
		&v.IsAvailable,
		&v.SortOrder,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

const insertVariation = `
	INSERT INTO product_variations (id, product_id, name, price, is_available, sort_order,
	                                created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func variationArgs(v *entity.ProductVariation) []any {
	return []any{v.ID, v.ProductID, v.Name, v.Price, v.IsAvailable, v.SortOrder, v.CreatedAt, v.UpdatedAt}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin product transaction", zap.Error(err))
		return fmt.Errorf("begin product tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	query := `
		INSERT INTO products (id, branch_id, subcategory_id, name, description, image, base_price,
		                      is_available, is_active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.Exec(ctx, query,
		product.ID,
		product.BranchID,
		product.SubcategoryID,
		product.Name,
		product.Description,
		product.Image,
		product.BasePrice,
		product.IsAvailable,
		product.IsActive,
		product.SortOrder,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create product",
			zap.Error(err),
			zap.String("branch_id", product.BranchID.String()),
			zap.String("name", product.Name),
		)
		return fmt.Errorf("create product %s: %w", product.Name, err)
	}

	for _, v := range product.Variations {
		if _, err := tx.Exec(ctx, insertVariation, variationArgs(v)...); err != nil {
			r.log.Error("Failed to create product variation",
				zap.Error(err),
				zap.String("product_id", product.ID.String()),
				zap.String("name", v.Name),
			)
			return fmt.Errorf("create variation %s of product %s: %w", v.Name, product.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit product transaction", zap.Error(err))
		return fmt.Errorf("commit product tx: %w", err)
	}

	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := scanProduct(r.db.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find product by ID",
			zap.Error(err),
			zap.String("product_id", id.String()),
		)
		return nil, fmt.Errorf("find product by ID %s: %w", id, err)
	}

	if err := r.attachVariations(ctx, []*entity.Product{product}); err != nil {
		return nil, err
	}
	return product, nil
}

func (f ProductFilter) where() *whereBuilder {
	w := &whereBuilder{}
	if f.BranchID != nil {
		w.add("p.branch_id = ?", *f.BranchID)
	}
	if f.SubcategoryID != nil {
		w.add("p.subcategory_id = ?", *f.SubcategoryID)
	}
	if f.Search != nil && *f.Search != "" {
		w.add("(p.name ILIKE ? OR p.description ILIKE ?)", likePattern(*f.Search), likePattern(*f.Search))
	}
	if f.MinPrice != nil {
		w.add("p.base_price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		w.add("p.base_price <= ?", *f.MaxPrice)
	}
	if f.IsActive != nil {
		w.add("p.is_active = ?", *f.IsActive)
	}
	if f.HasOfferAt != nil {
		w.add(`EXISTS (
			SELECT 1 FROM offers o
			WHERE o.entity_type = 'product' AND o.entity_id = p.id AND o.is_active = TRUE
			  AND o.start_date <= ? AND o.end_date >= ?)`, *f.HasOfferAt, *f.HasOfferAt)
	}
	return w
}

func (r *productRepository) FindAll(ctx context.Context, filter ProductFilter) ([]*entity.Product, error) {
	w := filter.where()
	limitClause, args := w.page(filter.Limit, filter.Offset)
	query := productSelect + w.where() + ` ORDER BY p.sort_order, p.name, p.id` + limitClause

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find products",
			zap.Error(err),
			zap.Int("limit", filter.Limit),
			zap.Int("offset", filter.Offset),
		)
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			r.log.Error("Failed to scan product row", zap.Error(err))
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	if err := r.attachVariations(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// attachVariations loads variations for all products with one query.
func (r *productRepository) attachVariations(ctx context.Context, products []*entity.Product) error {
	if len(products) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*entity.Product, len(products))
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	query := variationSelect + ` WHERE product_id = ANY($1::uuid[]) ORDER BY sort_order, name`
	rows, err := r.db.Query(ctx, query, uuidStrings(ids))
	if err != nil {
		r.log.Error("Failed to load product variations", zap.Error(err))
		return fmt.Errorf("load variations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVariation(rows)
		if err != nil {
			r.log.Error("Failed to scan variation row", zap.Error(err))
			return fmt.Errorf("scan variation row: %w", err)
		}
		if p, ok := byID[v.ProductID]; ok {
			p.Variations = append(p.Variations, v)
		}
	}

	return rows.Err()
}

func (r *productRepository) CountAll(ctx context.Context, filter ProductFilter) (int64, error) {
	w := filter.where()

	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+w.where(), w.args...).Scan(&total)
	if err != nil {
		r.log.Error("Failed to count products", zap.Error(err))
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET subcategory_id = $2, name = $3, description = $4, image = $5, base_price = $6,
		    is_available = $7, is_active = $8, sort_order = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		product.ID,
		product.SubcategoryID,
		product.Name,
		product.Description,
		product.Image,
		product.BasePrice,
		product.IsAvailable,
		product.IsActive,
		product.SortOrder,
		product.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update product",
			zap.Error(err),
			zap.String("product_id", product.ID.String()),
		)
		return fmt.Errorf("update product %s: %w", product.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("product %s not found", product.ID)
	}
	return nil
}

func (r *productRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to deactivate product",
			zap.Error(err),
			zap.String("product_id", id.String()),
		)
		return fmt.Errorf("deactivate product %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("product %s not found", id)
	}
	return nil
}

func (r *productRepository) CreateVariation(ctx context.Context, variation *entity.ProductVariation) error {
	if _, err := r.db.Exec(ctx, insertVariation, variationArgs(variation)...); err != nil {
		r.log.Error("Failed to create product variation",
			zap.Error(err),
			zap.String("product_id", variation.ProductID.String()),
		)
		return fmt.Errorf("create variation %s: %w", variation.Name, err)
	}
	return nil
}

func (r *productRepository) FindVariationByID(ctx context.Context, id uuid.UUID) (*entity.ProductVariation, error) {
	v, err := scanVariation(r.db.QueryRow(ctx, variationSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find variation by ID",
			zap.Error(err),
			zap.String("variation_id", id.String()),
		)
		return nil, fmt.Errorf("find variation by ID %s: %w", id, err)
	}
	return v, nil
}

func (r *productRepository) UpdateVariation(ctx context.Context, variation *entity.ProductVariation) error {
	query := `
		UPDATE product_variations
		SET name = $2, price = $3, is_available = $4, sort_order = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		variation.ID,
		variation.Name,
		variation.Price,
		variation.IsAvailable,
		variation.SortOrder,
		variation.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update variation",
			zap.Error(err),
			zap.String("variation_id", variation.ID.String()),
		)
		return fmt.Errorf("update variation %s: %w", variation.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("variation %s not found", variation.ID)
	}
	return nil
}

func (r *productRepository) DeleteVariation(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM product_variations WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete variation",
			zap.Error(err),
			zap.String("variation_id", id.String()),
		)
		return fmt.Errorf("delete variation %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("variation %s not found", id)
	}
	return nil
}
