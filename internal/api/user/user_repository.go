package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/stockers-dev/stockers-api/internal/api"
	"github.com/stockers-dev/stockers-api/internal/api/auth"
)

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo defines the contract for profile and verification-code persistence.
type UserRepo interface {
	GetUserByID(ctx context.Context, userID string) (*auth.User, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.User, error)

	// UpdatePassword replaces the stored hash for a live account.
	UpdatePassword(ctx context.Context, userID, newHashedPassword string) error

	// ReplaceVerificationCode deletes any previous codes for the email and
	// stores the new one, atomically.
	ReplaceVerificationCode(ctx context.Context, email, code string, expiresAt time.Time) error

	// GetVerificationCode fetches the stored code row for (email, code).
	GetVerificationCode(ctx context.Context, email, code string) (*VerificationCode, error)

	// DeleteVerificationCode spends a code.
	DeleteVerificationCode(ctx context.Context, id string) error
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresUserRepo(pgpool api.DBPool, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, userID string) (*auth.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	query := `
        SELECT id, email, password_hash, role, created_at, updated_at
        FROM users
        WHERE id = $1 AND deleted_at IS NULL`

	var u auth.User
	err := r.pgpool.QueryRow(ctx, query, userID).Scan(
		&u.ID, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to query user", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return &u, nil
}

func (r *PostgresUserRepo) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetUserByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	query := `
        SELECT id, email, password_hash, role, created_at, updated_at
        FROM users
        WHERE email = $1 AND deleted_at IS NULL`

	var u auth.User
	err := r.pgpool.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to query user by email", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return &u, nil
}

func (r *PostgresUserRepo) UpdatePassword(ctx context.Context, userID, newHashedPassword string) error {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "UpdatePassword", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdatePassword"), slog.String("userID", userID))

	query := `
        UPDATE users
        SET password_hash = $1, updated_at = now()
        WHERE id = $2 AND deleted_at IS NULL`

	tag, err := r.pgpool.Exec(ctx, query, newHashedPassword, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update password", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "User not found")
		return fmt.Errorf("user not found: %w", api.ErrNotFound)
	}

	l.InfoContext(ctx, "Password updated")
	span.SetStatus(codes.Ok, "Password updated")
	return nil
}

func (r *PostgresUserRepo) ReplaceVerificationCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "ReplaceVerificationCode", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "password_resets"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "ReplaceVerificationCode"))

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// A new issuance invalidates every earlier code for the same email.
	if _, err = tx.Exec(ctx, "DELETE FROM password_resets WHERE email = $1", email); err != nil {
		l.ErrorContext(ctx, "Failed to delete stale verification codes", slog.Any("error", err))
		span.RecordError(err)
		return fmt.Errorf("database error clearing verification codes: %w", err)
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO password_resets (email, code, expires_at) VALUES ($1, $2, $3)",
		email, code, expiresAt)
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert verification code", slog.Any("error", err))
		span.RecordError(err)
		return fmt.Errorf("database error storing verification code: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error committing verification code: %w", err)
	}

	span.SetStatus(codes.Ok, "Verification code replaced")
	return nil
}

func (r *PostgresUserRepo) GetVerificationCode(ctx context.Context, email, code string) (*VerificationCode, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetVerificationCode", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "password_resets"),
	))
	defer span.End()

	query := `
        SELECT id, email, code, expires_at, created_at
        FROM password_resets
        WHERE email = $1 AND code = $2`

	var vc VerificationCode
	err := r.pgpool.QueryRow(ctx, query, email, code).Scan(
		&vc.ID, &vc.Email, &vc.Code, &vc.ExpiresAt, &vc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Code not found")
			return nil, fmt.Errorf("verification code not found: %w", api.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to query verification code", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching verification code: %w", err)
	}

	span.SetStatus(codes.Ok, "Code fetched")
	return &vc, nil
}

func (r *PostgresUserRepo) DeleteVerificationCode(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "DeleteVerificationCode", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "password_resets"),
	))
	defer span.End()

	_, err := r.pgpool.Exec(ctx, "DELETE FROM password_resets WHERE id = $1", id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete verification code", slog.Any("error", err))
		span.RecordError(err)
		return fmt.Errorf("database error deleting verification code: %w", err)
	}

	span.SetStatus(codes.Ok, "Code deleted")
	return nil
}
