package database

import (
	"context"
	"embed"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// querier is the subset of pgxpool.Pool used by PostgresDatabase.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var muralColumns = []string{"id", "title", "description", "latitude", "longitude", "media", "year", "is_active", "created_at"}

// gooseUp is a seam for testing goose.UpContext.
var gooseUp = func(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

// PostgresDatabase stores records in the hosted Postgres instance.
type PostgresDatabase struct {
	pool *pgxpool.Pool
	db   querier
}

func NewPostgresDatabase(ctx context.Context, connectionString string) (DatabaseService, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresDatabase{pool: pool, db: pool}, nil
}

func newPostgresDatabaseWithQuerier(db querier) *PostgresDatabase {
	return &PostgresDatabase{db: db}
}

func (p *PostgresDatabase) CreateDatabase(ctx context.Context) error {
	if p.pool == nil {
		return fmt.Errorf("migrations require a connection pool")
	}
	if err := gooseUp(ctx, p.pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (p *PostgresDatabase) DoesDatabaseExist() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.db.Ping(ctx) == nil
}

func (p *PostgresDatabase) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *PostgresDatabase) CreateMural(ctx context.Context, mural *Mural) (*Mural, error) {
	stored := withMuralDefaults(mural)

	var year *int32
	if stored.Year != nil {
		y := int32(*stored.Year)
		year = &y
	}

	query, args, err := psql.Insert("murals").
		Columns(muralColumns...).
		Values(stored.ID, stored.Title, stored.Description, stored.Latitude, stored.Longitude,
			stored.Media, year, stored.IsActive, stored.CreatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := p.db.Exec(ctx, query, args...); err != nil {
		return nil, mapError(err, "mural "+stored.ID)
	}
	return stored, nil
}

func (p *PostgresDatabase) GetMurals(ctx context.Context, activeOnly bool) ([]*Mural, error) {
	builder := psql.Select(muralColumns...).From("murals").OrderBy("created_at DESC")
	if activeOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "murals")
	}
	defer rows.Close()

	murals := make([]*Mural, 0)
	for rows.Next() {
		var (
			mural Mural
			year  *int32
		)
		if err := rows.Scan(&mural.ID, &mural.Title, &mural.Description, &mural.Latitude, &mural.Longitude,
			&mural.Media, &year, &mural.IsActive, &mural.CreatedAt); err != nil {
			return nil, mapError(err, "murals")
		}
		if year != nil {
			y := int(*year)
			mural.Year = &y
		}
		if mural.Media == nil {
			mural.Media = []string{}
		}
		murals = append(murals, &mural)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "murals")
	}
	return murals, nil
}

func (p *PostgresDatabase) CreateSubmission(ctx context.Context, submission *Submission) (*Submission, error) {
	stored := withSubmissionDefaults(submission)

	query, args, err := psql.Insert("mural_submissions").
		Columns("id", "submission_type", "org_name", "contact_name", "email", "phone", "location",
			"about_org", "why_mural", "wall_details", "timeline", "other_notes",
			"auth_confirmed", "terms_accepted", "media", "created_at").
		Values(stored.ID, stored.Type, stored.OrgName, stored.ContactName, stored.Email, stored.Phone, stored.Location,
			stored.AboutOrg, stored.WhyMural, stored.WallDetails, stored.Timeline, stored.OtherNotes,
			stored.AuthConfirmed, stored.TermsAccepted, stored.Media, stored.CreatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := p.db.Exec(ctx, query, args...); err != nil {
		return nil, mapError(err, "submission "+stored.ID)
	}
	return stored, nil
}

func (p *PostgresDatabase) CreateContactMessage(ctx context.Context, message *ContactMessage) (*ContactMessage, error) {
	stored := withContactDefaults(message)

	query, args, err := psql.Insert("contact_submissions").
		Columns("id", "name", "email", "project_type", "message", "created_at").
		Values(stored.ID, stored.Name, stored.Email, stored.ProjectType, stored.Message, stored.CreatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := p.db.Exec(ctx, query, args...); err != nil {
		return nil, mapError(err, "contact message "+stored.ID)
	}
	return stored, nil
}
