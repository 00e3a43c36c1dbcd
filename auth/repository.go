package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrUserNotFound signals that the user does not exist.
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrDuplicateEmail signals that the email is already registered.
	ErrDuplicateEmail = errors.New("auth: email already exists")
)

// Repository handles data access for user accounts.
type Repository interface {
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID string) (User, error)
	UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (User, error)
	SetVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) (User, error)
	MarkVerified(ctx context.Context, userID string) (User, error)
	SetVerified(ctx context.Context, userID string, verified bool) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// CreateUserParams contains write parameters for creating users. Email is
// expected to be lowercased by the service before it gets here.
type CreateUserParams struct {
	Name                  string
	Email                 string
	PasswordHash          string
	Phone                 *string
	Role                  Role
	VerificationToken     string
	VerificationExpiresAt time.Time
	AgencyName            *string
	AgencyLicense         *string
	AgencyAddress         *string
}

const userColumns = `id, name, email, password_hash, phone, role, is_verified,
		verification_token, verification_token_expires,
		agency_name, agency_license, agency_address, created_at, updated_at`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed user repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CreateUser inserts a new user with hashed password and a pending verification token.
func (r *PGRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	insertSQL := `
		INSERT INTO users (name, email, password_hash, phone, role,
			verification_token, verification_token_expires,
			agency_name, agency_license, agency_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, insertSQL,
		params.Name,
		params.Email,
		params.PasswordHash,
		params.Phone,
		params.Role,
		params.VerificationToken,
		params.VerificationExpiresAt,
		params.AgencyName,
		params.AgencyLicense,
		params.AgencyAddress,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("auth: create user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email address, case-insensitively.
func (r *PGRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	selectSQL := `
		SELECT ` + userColumns + `
		FROM users
		WHERE lower(email) = lower($1)
	`

	user, err := scanUser(r.pool.QueryRow(ctx, selectSQL, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: get user by email: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID.
func (r *PGRepository) GetUserByID(ctx context.Context, userID string) (User, error) {
	selectSQL := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, selectSQL, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: get user by id: %w", err)
	}

	return user, nil
}

// UpdateProfile applies a partial update; nil params leave columns untouched.
func (r *PGRepository) UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (User, error) {
	updateSQL := `
		UPDATE users
		SET name           = COALESCE($2, name),
		    email          = COALESCE($3, email),
		    phone          = COALESCE($4, phone),
		    role           = COALESCE($5, role),
		    agency_name    = COALESCE($6, agency_name),
		    agency_license = COALESCE($7, agency_license),
		    agency_address = COALESCE($8, agency_address),
		    updated_at     = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, updateSQL,
		userID,
		params.Name,
		params.Email,
		params.Phone,
		params.Role,
		params.AgencyName,
		params.AgencyLicense,
		params.AgencyAddress,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("auth: update profile: %w", err)
	}

	return user, nil
}

// SetVerificationToken replaces any pending verification token with a fresh one.
func (r *PGRepository) SetVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) (User, error) {
	updateSQL := `
		UPDATE users
		SET verification_token = $2,
		    verification_token_expires = $3,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, updateSQL, userID, token, expiresAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: set verification token: %w", err)
	}

	return user, nil
}

// MarkVerified flips the verification flag and clears the single-use token.
func (r *PGRepository) MarkVerified(ctx context.Context, userID string) (User, error) {
	updateSQL := `
		UPDATE users
		SET is_verified = TRUE,
		    verification_token = NULL,
		    verification_token_expires = NULL,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, updateSQL, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: mark verified: %w", err)
	}

	return user, nil
}

// SetVerified lets an admin toggle the verification flag directly.
func (r *PGRepository) SetVerified(ctx context.Context, userID string, verified bool) (User, error) {
	updateSQL := `
		UPDATE users
		SET is_verified = $2,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, updateSQL, userID, verified))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: set verified: %w", err)
	}

	return user, nil
}

// ListUsers returns every account, newest first.
func (r *PGRepository) ListUsers(ctx context.Context) ([]User, error) {
	selectSQL := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, selectSQL)
	if err != nil {
		return nil, fmt.Errorf("auth: list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("auth: scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("auth: iterate user rows: %w", err)
	}
	return users, nil
}

// DeleteUser removes an account.
func (r *PGRepository) DeleteUser(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("auth: delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&user.Role,
		&user.IsVerified,
		&user.VerificationToken,
		&user.VerificationExpiresAt,
		&user.AgencyName,
		&user.AgencyLicense,
		&user.AgencyAddress,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	return user, nil
}
