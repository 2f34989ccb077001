package recruit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/stockers-dev/stockers-api/internal/api"
)

var _ RecruitRepo = (*PostgresRecruitRepo)(nil)

// RecruitRepo defines persistence for postings and their stack associations.
type RecruitRepo interface {
	CreateRecruit(ctx context.Context, req CreateRecruitRequest, deadline time.Time, author string) (*Recruit, error)
	GetRecruit(ctx context.Context, recruitID string) (*Recruit, error)
	ListRecruits(ctx context.Context, filter ListFilter) ([]Recruit, error)
	UpdateRecruit(ctx context.Context, recruitID string, params UpdateRecruitParams) error
	DeleteRecruit(ctx context.Context, recruitID string) error

	// GetOrCreateStack resolves a stack row by its content hash, creating it
	// with the given name when absent, and returns the row id.
	GetOrCreateStack(ctx context.Context, name, hashID string) (string, error)
	ListRecruitStackIDs(ctx context.Context, recruitID string) ([]string, error)
	AddRecruitStack(ctx context.Context, recruitID, stackID string) error
	RemoveRecruitStack(ctx context.Context, recruitID, stackID string) error
}

type PostgresRecruitRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresRecruitRepo(pgpool api.DBPool, logger *slog.Logger) *PostgresRecruitRepo {
	return &PostgresRecruitRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresRecruitRepo) CreateRecruit(ctx context.Context, req CreateRecruitRequest, deadline time.Time, author string) (*Recruit, error) {
	ctx, span := otel.Tracer("RecruitRepo").Start(ctx, "CreateRecruit", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "recruits"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateRecruit"))

	query := `
        INSERT INTO recruits (position, description, work_type, career_type, job_openings, author, deadline, minimum_salary, maximum_salary)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, position, description, work_type, career_type, job_openings, author, deadline, minimum_salary, maximum_salary, created_at, updated_at`

	var rec Recruit
	err := r.pgpool.QueryRow(ctx, query,
		req.Position, req.Description, req.WorkType, req.CareerType,
		req.JobOpenings, author, deadline, req.MinimumSalary, req.MaximumSalary,
	).Scan(
		&rec.ID, &rec.Position, &rec.Description, &rec.WorkType, &rec.CareerType,
		&rec.JobOpenings, &rec.Author, &rec.Deadline, &rec.MinimumSalary,
		&rec.MaximumSalary, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert recruit", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating recruit: %w", err)
	}
	rec.Stacks = []string{}

	l.InfoContext(ctx, "Recruit created", slog.String("recruitID", rec.ID))
	span.SetStatus(codes.Ok, "Recruit created")
	return &rec, nil
}

func (r *PostgresRecruitRepo) GetRecruit(ctx context.Context, recruitID string) (*Recruit, error) {
	ctx, span := otel.Tracer("RecruitRepo").Start(ctx, "GetRecruit", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "recruits"),
	))
	defer span.End()

	query := `
        SELECT r.id, r.position, r.description, r.work_type, r.career_type,
               r.job_openings, r.author, r.deadline, r.minimum_salary,
               r.maximum_salary, r.created_at, r.updated_at,
               COALESCE(array_agg(s.name ORDER BY s.name) FILTER (WHERE s.id IS NOT NULL), '{}')
        FROM recruits r
        LEFT JOIN recruit_stacks rs ON rs.recruit_id = r.id
        LEFT JOIN stacks s ON s.id = rs.stack_id
        WHERE r.id = $1
        GROUP BY r.id`

	var rec Recruit
	err := r.pgpool.QueryRow(ctx, query, recruitID).Scan(
		&rec.ID, &rec.Position, &rec.Description, &rec.WorkType, &rec.CareerType,
		&rec.JobOpenings, &rec.Author, &rec.Deadline, &rec.MinimumSalary,
		&rec.MaximumSalary, &rec.CreatedAt, &rec.UpdatedAt, &rec.Stacks,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Recruit not found")
			return nil, fmt.Errorf("recruit %s: %w", recruitID, api.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error fetching recruit: %w", err)
	}

	span.SetStatus(codes.Ok, "Recruit found")
	return &rec, nil
}

func (r *PostgresRecruitRepo) ListRecruits(ctx context.Context, filter ListFilter) ([]Recruit, error) {
	ctx, span := otel.Tracer("RecruitRepo").Start(ctx, "ListRecruits", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "recruits"),
	))
	defer span.End()

	var sb strings.Builder
	sb.WriteString(`
        SELECT r.id, r.position, r.description, r.work_type, r.career_type,
               r.job_openings, r.author, r.deadline, r.minimum_salary,
               r.maximum_salary, r.created_at, r.updated_at,
               COALESCE(array_agg(s.name ORDER BY s.name) FILTER (WHERE s.id IS NOT NULL), '{}')
        FROM recruits r
        LEFT JOIN recruit_stacks rs ON rs.recruit_id = r.id
        LEFT JOIN stacks s ON s.id = rs.stack_id`)

	args := []interface{}{}
	if filter.Position != "" {
		args = append(args, filter.Position)
		sb.WriteString(fmt.Sprintf(" WHERE r.position = $%d", len(args)))
	}
	sb.WriteString(" GROUP BY r.id")

	switch filter.Sort {
	case "deadline":
		sb.WriteString(" ORDER BY r.deadline ASC, r.created_at DESC")
	case "-deadline":
		sb.WriteString(" ORDER BY r.deadline DESC, r.created_at DESC")
	default:
		sb.WriteString(" ORDER BY r.created_at DESC")
	}

	rows, err := r.pgpool.Query(ctx, sb.String(), args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error listing recruits: %w", err)
	}
	defer rows.Close()

	recruits := []Recruit{}
	for rows.Next() {
		var rec Recruit
		if err := rows.Scan(
			&rec.ID, &rec.Position, &rec.Description, &rec.WorkType, &rec.CareerType,
			&rec.JobOpenings, &rec.Author, &rec.Deadline, &rec.MinimumSalary,
			&rec.MaximumSalary, &rec.CreatedAt, &rec.UpdatedAt, &rec.Stacks,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning recruit row: %w", err)
		}
		recruits = append(recruits, rec)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error iterating recruits: %w", err)
	}

	span.SetStatus(codes.Ok, "Recruits listed")
	return recruits, nil
}

func (r *PostgresRecruitRepo) UpdateRecruit(ctx context.Context, recruitID string, params UpdateRecruitParams) error {
	ctx, span := otel.Tracer("RecruitRepo").Start(ctx, "UpdateRecruit", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "recruits"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateRecruit"), slog.String("recruitID", recruitID))

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{recruitID}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Position != nil {
		add("position", *params.Position)
	}
	if params.Description != nil {
		add("description", *params.Description)
	}
	if params.JobOpenings != nil {
		add("job_openings", *params.JobOpenings)
	}
	if params.WorkType != nil {
		add("work_type", *params.WorkType)
	}
	if params.CareerType != nil {
		add("career_type", *params.CareerType)
	}
	if params.Deadline != nil {
		add("deadline", *params.Deadline)
	}
	if params.MinimumSalary != nil {
		add("minimum_salary", *params.MinimumSalary)
	}
	if params.MaximumSalary != nil {
		add("maximum_salary", *params.MaximumSalary)
	}

	query := fmt.Sprintf("UPDATE recruits SET %s WHERE id = $1", strings.Join(sets, ", "))
	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update recruit", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error updating recruit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Recruit not found")
		return fmt.Errorf("recruit %s: %w", recruitID, api.ErrNotFound)
	}

	span.SetStatus(codes.Ok, "Recruit updated")
	return nil
}

func (r *PostgresRecruitRepo) DeleteRecruit(ctx context.Context, recruitID string) error {
	ctx, span := otel.Tracer("RecruitRepo").Start(ctx, "DeleteRecruit", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "recruits"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "DeleteRecruit"), slog.String("recruitID", recruitID))

	tag, err := r.pgpool.Exec(ctx, "DELETE FROM recruits WHERE id = $1", recruitID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to delete recruit", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting recruit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Recruit not found")
		return fmt.Errorf("recruit %s: %w", recruitID, api.ErrNotFound)
	}

	l.InfoContext(ctx, "Recruit deleted")
	span.SetStatus(codes.Ok, "Recruit deleted")
	return nil
}

func (r *PostgresRecruitRepo) GetOrCreateStack(ctx context.Context, name, hashID string) (string, error) {
	ctx, span := otel.Tracer("RecruitRepo").Start(ctx, "GetOrCreateStack", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "stacks"),
	))
	defer span.End()

	// The no-op DO UPDATE makes RETURNING yield the existing row, so two
	// racing creators converge on the same id.
	query := `
        INSERT INTO stacks (name, hash_id)
        VALUES ($1, $2)
        ON CONFLICT (hash_id) DO UPDATE SET name = stacks.name
        RETURNING id`

	var id string
	if err := r.pgpool.QueryRow(ctx, query, name, hashID).Scan(&id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPSERT failed")
		return "", fmt.Errorf("database error upserting stack: %w", err)
	}

	span.SetStatus(codes.Ok, "Stack resolved")
	return id, nil
}

func (r *PostgresRecruitRepo) ListRecruitStackIDs(ctx context.Context, recruitID string) ([]string, error) {
	ctx, span := otel.Tracer("RecruitRepo").Start(ctx, "ListRecruitStackIDs", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "recruit_stacks"),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, "SELECT stack_id FROM recruit_stacks WHERE recruit_id = $1", recruitID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error listing recruit stacks: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning stack id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error iterating stack ids: %w", err)
	}

	span.SetStatus(codes.Ok, "Stack ids listed")
	return ids, nil
}

func (r *PostgresRecruitRepo) AddRecruitStack(ctx context.Context, recruitID, stackID string) error {
	ctx, span := otel.Tracer("RecruitRepo").Start(ctx, "AddRecruitStack", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "recruit_stacks"),
	))
	defer span.End()

	query := `
        INSERT INTO recruit_stacks (recruit_id, stack_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING`

	if _, err := r.pgpool.Exec(ctx, query, recruitID, stackID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return fmt.Errorf("database error adding recruit stack: %w", err)
	}

	span.SetStatus(codes.Ok, "Stack associated")
	return nil
}

func (r *PostgresRecruitRepo) RemoveRecruitStack(ctx context.Context, recruitID, stackID string) error {
	ctx, span := otel.Tracer("RecruitRepo").Start(ctx, "RemoveRecruitStack", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "recruit_stacks"),
	))
	defer span.End()

	if _, err := r.pgpool.Exec(ctx, "DELETE FROM recruit_stacks WHERE recruit_id = $1 AND stack_id = $2", recruitID, stackID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error removing recruit stack: %w", err)
	}

	span.SetStatus(codes.Ok, "Stack dissociated")
	return nil
}
