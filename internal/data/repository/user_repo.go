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

// ErrAmbiguousPhone means a bare local number belongs to users under different
// country codes; the caller has to ask for the full number.
var ErrAmbiguousPhone = errors.New("phone number matches more than one user")

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByPhone(ctx context.Context, phone string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdateFCMToken(ctx context.Context, id uuid.UUID, token string) error
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

const userColumns = `
	id, username, email, country_code, phone_number, date_of_birth, gender,
	password_hash, account_type, is_active, is_verified, email_verified, phone_verified,
	fail_login_attempts, locked_until, last_login_at, fcm_token, profile_image,
	created_at, updated_at, deleted_at`

func scanUser(row scanner) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.CountryCode,
		&user.PhoneNumber,
		&user.DateOfBirth,
		&user.Gender,
		&user.PasswordHash,
		&user.AccountType,
		&user.IsActive,
		&user.IsVerified,
		&user.EmailVerified,
		&user.PhoneVerified,
		&user.FailLoginAttempts,
		&user.LockedUntil,
		&user.LastLoginAt,
		&user.FCMToken,
		&user.ProfileImage,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user record into the database
func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, username, email, country_code, phone_number, date_of_birth,
		                   gender, password_hash, account_type, is_active, is_verified,
		                   email_verified, phone_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.CountryCode,
		user.PhoneNumber,
		user.DateOfBirth,
		user.Gender,
		user.PasswordHash,
		user.AccountType,
		user.IsActive,
		user.IsVerified,
		user.EmailVerified,
		user.PhoneVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
			zap.String("username", user.Username),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

func (r *userRepository) findOne(ctx context.Context, label, where string, arg any) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` AND deleted_at IS NULL`

	user, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find user by "+label,
			zap.Error(err),
			zap.Any(label, arg),
		)
		return nil, fmt.Errorf("find user by %s %v: %w", label, arg, err)
	}

	return user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, "id", "id = $1", id)
}

// FindByEmail matches case-insensitively, like the unique index.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email", "LOWER(email) = LOWER($1)", email)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "username", "LOWER(username) = LOWER($1)", username)
}

// FindByPhone accepts the local number or the number with its country code.
// More than one match returns ErrAmbiguousPhone instead of picking a row.
func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE (phone_number = $1 OR country_code || phone_number = $1) AND deleted_at IS NULL
		ORDER BY created_at, id
		LIMIT 2`

	rows, err := r.db.Query(ctx, query, phone)
	if err != nil {
		r.log.Error("Failed to find user by phone", zap.Error(err))
		return nil, fmt.Errorf("find user by phone: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	switch len(users) {
	case 0:
		return nil, nil
	case 1:
		return users[0], nil
	default:
		r.log.Warn("Phone number matches several users", zap.String("phone", phone))
		return nil, ErrAmbiguousPhone
	}
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, country_code = $4, phone_number = $5,
		    password_hash = $6, account_type = $7, is_active = $8, is_verified = $9,
		    email_verified = $10, phone_verified = $11, fail_login_attempts = $12,
		    locked_until = $13, last_login_at = $14, profile_image = $15, updated_at = $16
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.CountryCode,
		user.PhoneNumber,
		user.PasswordHash,
		user.AccountType,
		user.IsActive,
		user.IsVerified,
		user.EmailVerified,
		user.PhoneVerified,
		user.FailLoginAttempts,
		user.LockedUntil,
		user.LastLoginAt,
		user.ProfileImage,
		user.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update user",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		return fmt.Errorf("update user %s: %w", user.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found or already deleted", user.ID.String())
	}

	return nil
}

func (r *userRepository) UpdateFCMToken(ctx context.Context, id uuid.UUID, token string) error {
	query := `UPDATE users SET fcm_token = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id, token)
	if err != nil {
		r.log.Error("Failed to update FCM token",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return fmt.Errorf("update fcm token for %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", id.String())
	}

	return nil
}
