package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteDatabase struct {
	db               *sql.DB
	connectionString string
}

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	// every new connection to ":memory:" is a fresh database
	db.SetMaxOpenConns(1)

	return &SQLiteDatabase{
		db:               db,
		connectionString: connectionString,
	}, nil
}

func (s *SQLiteDatabase) CreateDatabase(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS murals (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			media TEXT NOT NULL DEFAULT '[]',
			year INTEGER,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS mural_submissions (
			id TEXT PRIMARY KEY,
			submission_type TEXT NOT NULL,
			org_name TEXT NOT NULL,
			contact_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL,
			about_org TEXT NOT NULL,
			why_mural TEXT NOT NULL,
			wall_details TEXT NOT NULL,
			timeline TEXT NOT NULL DEFAULT '',
			other_notes TEXT NOT NULL DEFAULT '',
			auth_confirmed INTEGER NOT NULL,
			terms_accepted INTEGER NOT NULL,
			media TEXT NOT NULL DEFAULT '[]',
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contact_submissions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			project_type TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	}
	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) DoesDatabaseExist() bool {
	// In SQLite, the database file is created when you connect to it.
	// So we can assume it exists if we can successfully ping the database.
	err := s.db.Ping()
	return err == nil
}

func (s *SQLiteDatabase) CreateMural(ctx context.Context, mural *Mural) (*Mural, error) {
	stored := withMuralDefaults(mural)
	media, err := json.Marshal(stored.Media)
	if err != nil {
		return nil, fmt.Errorf("failed to encode media: %w", err)
	}

	var year sql.NullInt64
	if stored.Year != nil {
		year = sql.NullInt64{Int64: int64(*stored.Year), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO murals (id, title, description, latitude, longitude, media, year, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.Title, stored.Description, stored.Latitude, stored.Longitude,
		string(media), year, stored.IsActive, stored.CreatedAt.UnixNano())
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *SQLiteDatabase) GetMurals(ctx context.Context, activeOnly bool) ([]*Mural, error) {
	query := `SELECT id, title, description, latitude, longitude, media, year, is_active, created_at FROM murals`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close() // Explicitly ignore error as we're already returning an error from the function
	}()

	murals := make([]*Mural, 0)
	for rows.Next() {
		var (
			mural     Mural
			media     string
			year      sql.NullInt64
			createdAt int64
		)
		if err := rows.Scan(&mural.ID, &mural.Title, &mural.Description, &mural.Latitude, &mural.Longitude,
			&media, &year, &mural.IsActive, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(media), &mural.Media); err != nil {
			return nil, fmt.Errorf("failed to decode media of mural %s: %w", mural.ID, err)
		}
		if year.Valid {
			y := int(year.Int64)
			mural.Year = &y
		}
		mural.CreatedAt = time.Unix(0, createdAt).UTC()
		murals = append(murals, &mural)
	}
	return murals, rows.Err()
}

func (s *SQLiteDatabase) CreateSubmission(ctx context.Context, submission *Submission) (*Submission, error) {
	stored := withSubmissionDefaults(submission)
	media, err := json.Marshal(stored.Media)
	if err != nil {
		return nil, fmt.Errorf("failed to encode media: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO mural_submissions (id, submission_type, org_name, contact_name, email, phone, location,
			about_org, why_mural, wall_details, timeline, other_notes, auth_confirmed, terms_accepted, media, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.Type, stored.OrgName, stored.ContactName, stored.Email, stored.Phone, stored.Location,
		stored.AboutOrg, stored.WhyMural, stored.WallDetails, stored.Timeline, stored.OtherNotes,
		stored.AuthConfirmed, stored.TermsAccepted, string(media), stored.CreatedAt.UnixNano())
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *SQLiteDatabase) CreateContactMessage(ctx context.Context, message *ContactMessage) (*ContactMessage, error) {
	stored := withContactDefaults(message)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_submissions (id, name, email, project_type, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.Name, stored.Email, stored.ProjectType, stored.Message, stored.CreatedAt.UnixNano())
	if err != nil {
		return nil, err
	}
	return stored, nil
}
