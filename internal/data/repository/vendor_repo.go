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
	"go.uber.org/zap"
)

type VendorFilter struct {
	Search   *string
	IsActive *bool
	// IDs restricts the result to these vendors; an empty non-nil slice matches nothing.
	IDs    []uuid.UUID
	Limit  int
	Offset int
}

type VendorRepository interface {
	Create(ctx context.Context, vendor *entity.Vendor) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Vendor, error)
	FindAll(ctx context.Context, filter VendorFilter) ([]*entity.Vendor, error)
	CountAll(ctx context.Context, filter VendorFilter) (int64, error)
	FindPopular(ctx context.Context, limit int) ([]*entity.Vendor, error)
	FindExpiredSubscriptions(ctx context.Context, now time.Time) ([]*entity.Vendor, error)
	Update(ctx context.Context, vendor *entity.Vendor) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type vendorRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewVendorRepository(db database.PgxIface, log *zap.Logger) VendorRepository {
	return &vendorRepository{
		db:  db,
		log: log.With(zap.String("repository", "vendor")),
	}
}

// rating = average of the vendor's per-branch review averages
const vendorSelect = `
	SELECT v.id, v.name, v.image, v.about, v.subscript_date, v.is_active,
	       v.created_at, v.updated_at,
	       COALESCE((
	           SELECT AVG(br.avg_rating) FROM (
	               SELECT AVG(rv.rating) AS avg_rating
	               FROM branches b JOIN reviews rv ON rv.branch_id = b.id
	               WHERE b.vendor_id = v.id
	               GROUP BY b.id
	           ) br
	       ), 0)::float8 AS rating,
	       (SELECT COUNT(*) FROM branches b WHERE b.vendor_id = v.id) AS branch_count
	FROM vendors v`

func scanVendor(row scanner) (*entity.Vendor, error) {
	var vendor entity.Vendor
	err := row.Scan(
		&vendor.ID,
		&vendor.Name,
		&vendor.Image,
		&vendor.About,
		&vendor.SubscriptDate,
		&vendor.IsActive,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
		&vendor.Rating,
		&vendor.BranchCount,
	)
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) Create(ctx context.Context, vendor *entity.Vendor) error {
	query := `
		INSERT INTO vendors (id, name, image, about, subscript_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		vendor.ID,
		vendor.Name,
		vendor.Image,
		vendor.About,
		vendor.SubscriptDate,
		vendor.IsActive,
		vendor.CreatedAt,
		vendor.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create vendor",
			zap.Error(err),
			zap.String("name", vendor.Name),
		)
		return fmt.Errorf("create vendor %s: %w", vendor.Name, err)
	}

	return nil
}

func (r *vendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Vendor, error) {
	vendor, err := scanVendor(r.db.QueryRow(ctx, vendorSelect+` WHERE v.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find vendor by ID",
			zap.Error(err),
			zap.String("vendor_id", id.String()),
		)
		return nil, fmt.Errorf("find vendor by ID %s: %w", id, err)
	}

	return vendor, nil
}

func (f VendorFilter) where() *whereBuilder {
	w := &whereBuilder{}
	if f.Search != nil && *f.Search != "" {
		w.add("v.name ILIKE ?", likePattern(*f.Search))
	}
	if f.IsActive != nil {
		w.add("v.is_active = ?", *f.IsActive)
	}
	if f.IDs != nil {
		w.add("v.id = ANY(?::uuid[])", uuidStrings(f.IDs))
	}
	return w
}

func (r *vendorRepository) FindAll(ctx context.Context, filter VendorFilter) ([]*entity.Vendor, error) {
	w := filter.where()
	limitClause, args := w.page(filter.Limit, filter.Offset)
	query := vendorSelect + w.where() + ` ORDER BY v.created_at DESC, v.id` + limitClause

	vendors, err := r.list(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find all vendors",
			zap.Error(err),
			zap.Int("limit", filter.Limit),
			zap.Int("offset", filter.Offset),
		)
		return nil, fmt.Errorf("find all vendors: %w", err)
	}
	return vendors, nil
}

func (r *vendorRepository) CountAll(ctx context.Context, filter VendorFilter) (int64, error) {
	w := filter.where()

	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM vendors v`+w.where(), w.args...).Scan(&total)
	if err != nil {
		r.log.Error("Failed to count vendors", zap.Error(err))
		return 0, fmt.Errorf("count vendors: %w", err)
	}

	return total, nil
}

func (r *vendorRepository) FindPopular(ctx context.Context, limit int) ([]*entity.Vendor, error) {
	query := `SELECT * FROM (` + vendorSelect + ` WHERE v.is_active = TRUE) t
		ORDER BY t.rating DESC, t.branch_count DESC, t.id
		LIMIT $1`

	vendors, err := r.list(ctx, query, limit)
	if err != nil {
		r.log.Error("Failed to find popular vendors", zap.Error(err))
		return nil, fmt.Errorf("find popular vendors: %w", err)
	}
	return vendors, nil
}

func (r *vendorRepository) FindExpiredSubscriptions(ctx context.Context, now time.Time) ([]*entity.Vendor, error) {
	query := vendorSelect + ` WHERE v.subscript_date + INTERVAL '1 year' < $1 ORDER BY v.subscript_date`

	vendors, err := r.list(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to find expired vendor subscriptions", zap.Error(err))
		return nil, fmt.Errorf("find expired subscriptions: %w", err)
	}
	return vendors, nil
}

func (r *vendorRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Vendor, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []*entity.Vendor
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vendor row: %w", err)
		}
		vendors = append(vendors, vendor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendor rows: %w", err)
	}

	return vendors, nil
}

func (r *vendorRepository) Update(ctx context.Context, vendor *entity.Vendor) error {
	query := `
		UPDATE vendors
		SET name = $2, image = $3, about = $4, subscript_date = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		vendor.ID,
		vendor.Name,
		vendor.Image,
		vendor.About,
		vendor.SubscriptDate,
		vendor.IsActive,
		vendor.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update vendor",
			zap.Error(err),
			zap.String("vendor_id", vendor.ID.String()),
		)
		return fmt.Errorf("update vendor %s: %w", vendor.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("vendor %s not found", vendor.ID)
	}

	return nil
}

func (r *vendorRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE vendors SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to deactivate vendor",
			zap.Error(err),
			zap.String("vendor_id", id.String()),
		)
		return fmt.Errorf("deactivate vendor %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("vendor %s not found", id)
	}

	r.log.Info("Vendor deactivated", zap.String("vendor_id", id.String()))
	return nil
}
