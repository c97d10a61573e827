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

type OfferFilter struct {
	EntityType *entity.EntityType
	EntityID   *uuid.UUID
	Limit      int
	Offset     int
}

type OfferRepository interface {
	Create(ctx context.Context, offer *entity.Offer) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Offer, error)
	// FindActiveByEntity returns offers valid at now, oldest first (created_at, id).
	// That order is the compounding order used for pricing.
	FindActiveByEntity(ctx context.Context, ref entity.EntityRef, now time.Time) ([]*entity.Offer, error)
	FindValid(ctx context.Context, filter OfferFilter, now time.Time) ([]*entity.Offer, error)
	CountValid(ctx context.Context, filter OfferFilter, now time.Time) (int64, error)
	FindExpired(ctx context.Context, now time.Time, limit, offset int) ([]*entity.Offer, error)
	CountExpired(ctx context.Context, now time.Time) (int64, error)
	// FindEntityName resolves the display name of the offer target, "" when missing.
	FindEntityName(ctx context.Context, ref entity.EntityRef) (string, error)
	Update(ctx context.Context, offer *entity.Offer) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type offerRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOfferRepository(db database.PgxIface, log *zap.Logger) OfferRepository {
	return &offerRepository{
		db:  db,
		log: log.With(zap.String("repository", "offer")),
	}
}

const offerSelect = `
	SELECT id, entity_type, entity_id, type, value, title, description,
	       start_date, end_date, is_active, created_at, updated_at
	FROM offers`

func scanOffer(row scanner) (*entity.Offer, error) {
	var (
		offer      entity.Offer
		entityType string
		entityID   uuid.UUID
	)
	err := row.Scan(
		&offer.ID,
		&entityType,
		&entityID,
		&offer.Kind,
		&offer.Value,
		&offer.Title,
		&offer.Description,
		&offer.StartDate,
		&offer.EndDate,
		&offer.IsActive,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	offer.Target, err = entity.ParseEntityRef(entityType, entityID)
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) Create(ctx context.Context, offer *entity.Offer) error {
	query := `
		INSERT INTO offers (id, entity_type, entity_id, type, value, title, description,
		                    start_date, end_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		offer.ID,
		offer.Target.Type(),
		offer.Target.ID(),
		offer.Kind,
		offer.Value,
		offer.Title,
		offer.Description,
		offer.StartDate,
		offer.EndDate,
		offer.IsActive,
		offer.CreatedAt,
		offer.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create offer",
			zap.Error(err),
			zap.Stringer("target", offer.Target),
		)
		return fmt.Errorf("create offer for %s: %w", offer.Target, err)
	}

	return nil
}

func (r *offerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Offer, error) {
	offer, err := scanOffer(r.db.QueryRow(ctx, offerSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find offer by ID",
			zap.Error(err),
			zap.String("offer_id", id.String()),
		)
		return nil, fmt.Errorf("find offer by ID %s: %w", id, err)
	}
	return offer, nil
}

func (r *offerRepository) FindActiveByEntity(ctx context.Context, ref entity.EntityRef, now time.Time) ([]*entity.Offer, error) {
	query := offerSelect + `
		WHERE entity_type = $1 AND entity_id = $2
		  AND is_active = TRUE AND start_date <= $3 AND end_date >= $3
		ORDER BY created_at ASC, id ASC`

	offers, err := r.list(ctx, query, ref.Type(), ref.ID(), now)
	if err != nil {
		r.log.Error("Failed to find active offers",
			zap.Error(err),
			zap.Stringer("target", ref),
		)
		return nil, fmt.Errorf("find active offers for %s: %w", ref, err)
	}
	return offers, nil
}

func (f OfferFilter) validWhere(now time.Time) *whereBuilder {
	w := &whereBuilder{}
	w.add("is_active = TRUE")
	w.add("start_date <= ?", now)
	w.add("end_date >= ?", now)
	if f.EntityType != nil {
		w.add("entity_type = ?", string(*f.EntityType))
	}
	if f.EntityID != nil {
		w.add("entity_id = ?", *f.EntityID)
	}
	return w
}

func (r *offerRepository) FindValid(ctx context.Context, filter OfferFilter, now time.Time) ([]*entity.Offer, error) {
	w := filter.validWhere(now)
	limitClause, args := w.page(filter.Limit, filter.Offset)

	offers, err := r.list(ctx, offerSelect+w.where()+` ORDER BY created_at DESC, id`+limitClause, args...)
	if err != nil {
		r.log.Error("Failed to find valid offers", zap.Error(err))
		return nil, fmt.Errorf("find valid offers: %w", err)
	}
	return offers, nil
}

func (r *offerRepository) CountValid(ctx context.Context, filter OfferFilter, now time.Time) (int64, error) {
	w := filter.validWhere(now)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM offers`+w.where(), w.args...).Scan(&total); err != nil {
		r.log.Error("Failed to count valid offers", zap.Error(err))
		return 0, fmt.Errorf("count valid offers: %w", err)
	}
	return total, nil
}

func (r *offerRepository) FindExpired(ctx context.Context, now time.Time, limit, offset int) ([]*entity.Offer, error) {
	query := offerSelect + ` WHERE end_date < $1 ORDER BY end_date DESC, id LIMIT $2 OFFSET $3`

	offers, err := r.list(ctx, query, now, limit, offset)
	if err != nil {
		r.log.Error("Failed to find expired offers", zap.Error(err))
		return nil, fmt.Errorf("find expired offers: %w", err)
	}
	return offers, nil
}

func (r *offerRepository) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM offers WHERE end_date < $1`, now).Scan(&total); err != nil {
		r.log.Error("Failed to count expired offers", zap.Error(err))
		return 0, fmt.Errorf("count expired offers: %w", err)
	}
	return total, nil
}

func (r *offerRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Offer, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []*entity.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer row: %w", err)
		}
		offers = append(offers, offer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offer rows: %w", err)
	}
	return offers, nil
}

var entityTables = map[entity.EntityType]string{
	entity.EntityBranch:      "branches",
	entity.EntitySubcategory: "subcategories",
	entity.EntityProduct:     "products",
}

func (r *offerRepository) FindEntityName(ctx context.Context, ref entity.EntityRef) (string, error) {
	table, ok := entityTables[ref.Type()]
	if !ok {
		return "", fmt.Errorf("unknown entity type %q", ref.Type())
	}

	var name string
	err := r.db.QueryRow(ctx, `SELECT name FROM `+table+` WHERE id = $1`, ref.ID()).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		r.log.Error("Failed to resolve offer target name",
			zap.Error(err),
			zap.Stringer("target", ref),
		)
		return "", fmt.Errorf("resolve name of %s: %w", ref, err)
	}
	return name, nil
}

func (r *offerRepository) Update(ctx context.Context, offer *entity.Offer) error {
	query := `
		UPDATE offers
		SET type = $2, value = $3, title = $4, description = $5,
		    start_date = $6, end_date = $7, is_active = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		offer.ID,
		offer.Kind,
		offer.Value,
		offer.Title,
		offer.Description,
		offer.StartDate,
		offer.EndDate,
		offer.IsActive,
		offer.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update offer",
			zap.Error(err),
			zap.String("offer_id", offer.ID.String()),
		)
		return fmt.Errorf("update offer %s: %w", offer.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("offer %s not found", offer.ID)
	}
	return nil
}

func (r *offerRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE offers SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to deactivate offer",
			zap.Error(err),
			zap.String("offer_id", id.String()),
		)
		return fmt.Errorf("deactivate offer %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("offer %s not found", id)
	}

	r.log.Info("Offer deactivated", zap.String("offer_id", id.String()))
	return nil
}
