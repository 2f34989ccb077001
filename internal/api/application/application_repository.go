package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/stockers-dev/stockers-api/internal/api"
)

var _ ApplicationRepo = (*PostgresApplicationRepo)(nil)

// ApplicationRepo defines persistence for applications and their attachments.
type ApplicationRepo interface {
	// RecruitExists reports whether the posting is present.
	RecruitExists(ctx context.Context, recruitID string) (bool, error)

	// CreateWithAttachment inserts the application and its attachment row in
	// one transaction so a failed attachment write never strands a bare
	// application.
	CreateWithAttachment(ctx context.Context, recruitID, userID string, content []byte, fileURL string) (*Application, error)

	// UpdateWithAttachment replaces content and the attachment URL in one
	// transaction, returning the previously stored URL.
	UpdateWithAttachment(ctx context.Context, applicationID string, content []byte, fileURL string) (string, error)

	GetByRecruitAndUser(ctx context.Context, recruitID, userID string) (*Application, error)
	GetAttachment(ctx context.Context, applicationID string) (*Attachment, error)
	Delete(ctx context.Context, applicationID string) error

	AdminList(ctx context.Context, filter AdminListFilter) ([]AdminApplication, error)
	AdminGet(ctx context.Context, applicationID string) (*AdminApplicationDetail, error)
	UpdateStatus(ctx context.Context, applicationID, status string) error
}

type PostgresApplicationRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresApplicationRepo(pgpool api.DBPool, logger *slog.Logger) *PostgresApplicationRepo {
	return &PostgresApplicationRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresApplicationRepo) RecruitExists(ctx context.Context, recruitID string) (bool, error) {
	ctx, span := otel.Tracer("ApplicationRepo").Start(ctx, "RecruitExists", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "recruits"),
	))
	defer span.End()

	var exists bool
	err := r.pgpool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM recruits WHERE id = $1)", recruitID).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return false, fmt.Errorf("database error checking recruit: %w", err)
	}

	span.SetStatus(codes.Ok, "Checked")
	return exists, nil
}

func (r *PostgresApplicationRepo) CreateWithAttachment(ctx context.Context, recruitID, userID string, content []byte, fileURL string) (*Application, error) {
	ctx, span := otel.Tracer("ApplicationRepo").Start(ctx, "CreateWithAttachment", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "applications"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateWithAttachment"), slog.String("recruitID", recruitID))

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var app Application
	err = tx.QueryRow(ctx, `
        INSERT INTO applications (recruit_id, user_id, content, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, recruit_id, user_id, content, status, created_at, updated_at`,
		recruitID, userID, content, StatusReceived,
	).Scan(&app.ID, &app.RecruitID, &app.UserID, &app.Content, &app.Status, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			l.WarnContext(ctx, "Duplicate application")
			span.SetStatus(codes.Error, "Duplicate application")
			return nil, fmt.Errorf("ALREADY_EXISTS: %w", api.ErrConflict)
		}
		l.ErrorContext(ctx, "Failed to insert application", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating application: %w", err)
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO attachments (application_id, file_url) VALUES ($1, $2)",
		app.ID, fileURL,
	); err != nil {
		l.ErrorContext(ctx, "Failed to insert attachment", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating attachment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to commit application: %w", err)
	}

	l.InfoContext(ctx, "Application created", slog.String("applicationID", app.ID))
	span.SetStatus(codes.Ok, "Application created")
	return &app, nil
}

func (r *PostgresApplicationRepo) UpdateWithAttachment(ctx context.Context, applicationID string, content []byte, fileURL string) (string, error) {
	ctx, span := otel.Tracer("ApplicationRepo").Start(ctx, "UpdateWithAttachment", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "applications"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateWithAttachment"), slog.String("applicationID", applicationID))

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		"UPDATE applications SET content = $2, updated_at = NOW() WHERE id = $1",
		applicationID, content,
	)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update application", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return "", fmt.Errorf("database error updating application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Application not found")
		return "", fmt.Errorf("application %s: %w", applicationID, api.ErrNotFound)
	}

	var previousURL string
	err = tx.QueryRow(ctx, `
        UPDATE attachments a SET file_url = $2
        FROM (SELECT id, file_url FROM attachments WHERE application_id = $1 FOR UPDATE) prev
        WHERE a.id = prev.id
        RETURNING prev.file_url`,
		applicationID, fileURL,
	).Scan(&previousURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Application rows always carry an attachment, but tolerate a
			// missing one by inserting it fresh.
			if _, err := tx.Exec(ctx,
				"INSERT INTO attachments (application_id, file_url) VALUES ($1, $2)",
				applicationID, fileURL,
			); err != nil {
				span.RecordError(err)
				return "", fmt.Errorf("database error inserting attachment: %w", err)
			}
		} else {
			l.ErrorContext(ctx, "Failed to update attachment", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "DB UPDATE failed")
			return "", fmt.Errorf("database error updating attachment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to commit application update: %w", err)
	}

	l.InfoContext(ctx, "Application updated")
	span.SetStatus(codes.Ok, "Application updated")
	return previousURL, nil
}

func (r *PostgresApplicationRepo) GetByRecruitAndUser(ctx context.Context, recruitID, userID string) (*Application, error) {
	ctx, span := otel.Tracer("ApplicationRepo").Start(ctx, "GetByRecruitAndUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "applications"),
	))
	defer span.End()

	var app Application
	err := r.pgpool.QueryRow(ctx, `
        SELECT id, recruit_id, user_id, content, status, created_at, updated_at
        FROM applications
        WHERE recruit_id = $1 AND user_id = $2`,
		recruitID, userID,
	).Scan(&app.ID, &app.RecruitID, &app.UserID, &app.Content, &app.Status, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Application not found")
			return nil, fmt.Errorf("application for recruit %s: %w", recruitID, api.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error fetching application: %w", err)
	}

	span.SetStatus(codes.Ok, "Application found")
	return &app, nil
}

func (r *PostgresApplicationRepo) GetAttachment(ctx context.Context, applicationID string) (*Attachment, error) {
	ctx, span := otel.Tracer("ApplicationRepo").Start(ctx, "GetAttachment", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "attachments"),
	))
	defer span.End()

	var att Attachment
	err := r.pgpool.QueryRow(ctx,
		"SELECT id, application_id, file_url FROM attachments WHERE application_id = $1",
		applicationID,
	).Scan(&att.ID, &att.ApplicationID, &att.FileURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Attachment not found")
			return nil, fmt.Errorf("attachment for application %s: %w", applicationID, api.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error fetching attachment: %w", err)
	}

	span.SetStatus(codes.Ok, "Attachment found")
	return &att, nil
}

func (r *PostgresApplicationRepo) Delete(ctx context.Context, applicationID string) error {
	ctx, span := otel.Tracer("ApplicationRepo").Start(ctx, "Delete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "applications"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Delete"), slog.String("applicationID", applicationID))

	// Attachments go with the application via ON DELETE CASCADE.
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM applications WHERE id = $1", applicationID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to delete application", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Application not found")
		return fmt.Errorf("application %s: %w", applicationID, api.ErrNotFound)
	}

	l.InfoContext(ctx, "Application deleted")
	span.SetStatus(codes.Ok, "Application deleted")
	return nil
}

func (r *PostgresApplicationRepo) AdminList(ctx context.Context, filter AdminListFilter) ([]AdminApplication, error) {
	ctx, span := otel.Tracer("ApplicationRepo").Start(ctx, "AdminList", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "applications"),
	))
	defer span.End()

	var sb strings.Builder
	sb.WriteString(`
        SELECT a.id, a.content, a.status, a.created_at, a.updated_at,
               r.id, r.position, r.job_openings, r.author, r.work_type, r.career_type, r.deadline
        FROM applications a
        JOIN recruits r ON r.id = a.recruit_id`)

	args := []interface{}{}
	conds := []string{}
	if filter.CareerType != "" {
		args = append(args, filter.CareerType)
		conds = append(conds, fmt.Sprintf("r.career_type = $%d", len(args)))
	}
	if filter.Position != "" {
		args = append(args, filter.Position)
		conds = append(conds, fmt.Sprintf("r.position = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY a.created_at DESC")

	rows, err := r.pgpool.Query(ctx, sb.String(), args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error listing applications: %w", err)
	}
	defer rows.Close()

	results := []AdminApplication{}
	for rows.Next() {
		var a AdminApplication
		if err := rows.Scan(
			&a.ID, &a.Content, &a.Status, &a.CreatedAt, &a.UpdatedAt,
			&a.RecruitID, &a.Position, &a.JobOpenings, &a.Author, &a.WorkType,
			&a.CareerType, &a.Deadline,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning application row: %w", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error iterating applications: %w", err)
	}

	span.SetStatus(codes.Ok, "Applications listed")
	return results, nil
}

func (r *PostgresApplicationRepo) AdminGet(ctx context.Context, applicationID string) (*AdminApplicationDetail, error) {
	ctx, span := otel.Tracer("ApplicationRepo").Start(ctx, "AdminGet", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "applications"),
	))
	defer span.End()

	var d AdminApplicationDetail
	err := r.pgpool.QueryRow(ctx, `
        SELECT a.id, a.content, a.status, a.created_at, a.updated_at,
               r.id, r.position, r.job_openings, r.author, r.work_type, r.career_type, r.deadline,
               u.id, u.email
        FROM applications a
        JOIN recruits r ON r.id = a.recruit_id
        JOIN users u ON u.id = a.user_id
        WHERE a.id = $1`,
		applicationID,
	).Scan(
		&d.ID, &d.Content, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.RecruitID, &d.Position, &d.JobOpenings, &d.Author, &d.WorkType,
		&d.CareerType, &d.Deadline, &d.UserID, &d.UserEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Application not found")
			return nil, fmt.Errorf("application %s: %w", applicationID, api.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error fetching application: %w", err)
	}

	span.SetStatus(codes.Ok, "Application found")
	return &d, nil
}

func (r *PostgresApplicationRepo) UpdateStatus(ctx context.Context, applicationID, status string) error {
	ctx, span := otel.Tracer("ApplicationRepo").Start(ctx, "UpdateStatus", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "applications"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateStatus"), slog.String("applicationID", applicationID))

	tag, err := r.pgpool.Exec(ctx,
		"UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1",
		applicationID, status,
	)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update status", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error updating status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Application not found")
		return fmt.Errorf("application %s: %w", applicationID, api.ErrNotFound)
	}

	l.InfoContext(ctx, "Application status updated", slog.String("status", status))
	span.SetStatus(codes.Ok, "Status updated")
	return nil
}
