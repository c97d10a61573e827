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

type OTPRepository interface {
	// Replace deletes every unused OTP of (user, purpose) and inserts otp, atomically.
	Replace(ctx context.Context, otp *entity.OTP) error
	// FindUnused returns the newest unused OTP for (user, purpose) issued to contact.
	FindUnused(ctx context.Context, userID uuid.UUID, purpose entity.OTPPurpose, contact string) (*entity.OTP, error)
	// RecordFailedAttempt increments attempts and, when exhausted, consumes the row.
	RecordFailedAttempt(ctx context.Context, id uuid.UUID, exhausted bool) error
	MarkAsUsed(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type otpRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOTPRepository(db database.PgxIface, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
	}
}

func (r *otpRepository) Replace(ctx context.Context, otp *entity.OTP) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin OTP transaction", zap.Error(err))
		return fmt.Errorf("begin otp tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx,
		`DELETE FROM otps WHERE user_id = $1 AND type = $2 AND is_used = FALSE`,
		otp.UserID, otp.Purpose,
	)
	if err != nil {
		r.log.Error("Failed to invalidate previous OTPs",
			zap.Error(err),
			zap.String("user_id", otp.UserID.String()),
			zap.String("purpose", string(otp.Purpose)),
		)
		return fmt.Errorf("invalidate otps for user %s: %w", otp.UserID, err)
	}

	query := `
		INSERT INTO otps (id, user_id, email, phone, otp, type,
		                  expires_at, is_used, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, query,
		otp.ID,
		otp.UserID,
		otp.Email,
		otp.Phone,
		otp.Code,
		otp.Purpose,
		otp.ExpiresAt,
		otp.IsUsed,
		otp.Attempts,
		otp.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create OTP",
			zap.Error(err),
			zap.String("user_id", otp.UserID.String()),
			zap.String("purpose", string(otp.Purpose)),
		)
		return fmt.Errorf("create otp for user %s: %w", otp.UserID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit OTP transaction", zap.Error(err))
		return fmt.Errorf("commit otp tx: %w", err)
	}

	return nil
}

func (r *otpRepository) FindUnused(ctx context.Context, userID uuid.UUID, purpose entity.OTPPurpose, contact string) (*entity.OTP, error) {
	column := "email"
	if purpose.Channel() == entity.ChannelPhone {
		column = "phone"
	}

	query := `
		SELECT id, user_id, email, phone, otp, type,
		       expires_at, is_used, attempts, created_at
		FROM otps
		WHERE user_id = $1
		  AND type = $2
		  AND ` + column + ` = $3
		  AND is_used = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`

	var otp entity.OTP
	err := r.db.QueryRow(ctx, query, userID, purpose, contact).Scan(
		&otp.ID,
		&otp.UserID,
		&otp.Email,
		&otp.Phone,
		&otp.Code,
		&otp.Purpose,
		&otp.ExpiresAt,
		&otp.IsUsed,
		&otp.Attempts,
		&otp.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find unused OTP",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("purpose", string(purpose)),
		)
		return nil, fmt.Errorf("find otp for user %s type %s: %w", userID, purpose, err)
	}

	return &otp, nil
}

func (r *otpRepository) RecordFailedAttempt(ctx context.Context, id uuid.UUID, exhausted bool) error {
	query := `
		UPDATE otps
		SET attempts = attempts + 1, is_used = is_used OR $2
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, exhausted)
	if err != nil {
		r.log.Error("Failed to record OTP attempt",
			zap.Error(err),
			zap.String("otp_id", id.String()),
		)
		return fmt.Errorf("record attempt on otp %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("OTP %s not found", id)
	}

	return nil
}

func (r *otpRepository) MarkAsUsed(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE otps SET is_used = TRUE WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to mark OTP as used",
			zap.Error(err),
			zap.String("otp_id", id.String()),
		)
		return fmt.Errorf("mark otp %s as used: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("OTP %s not found", id)
	}

	return nil
}

func (r *otpRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM otps WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete OTP",
			zap.Error(err),
			zap.String("otp_id", id.String()),
		)
		return fmt.Errorf("delete otp %s: %w", id, err)
	}
	return nil
}

// DeleteExpired removes expired rows whether used or not.
func (r *otpRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM otps WHERE expires_at < $1`, now)
	if err != nil {
		r.log.Error("Failed to delete expired OTPs", zap.Error(err))
		return 0, fmt.Errorf("delete expired otps: %w", err)
	}

	return result.RowsAffected(), nil
}
