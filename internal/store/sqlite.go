package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/rjratcon/rachaeljuzeler/internal/model"
)

// SQLiteBackend implements Backend using a local SQLite database.
type SQLiteBackend struct {
	db *sqlx.DB
}

// projectRow is the projects table layout; images are a JSON array.
type projectRow struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Subtitle    string `db:"subtitle"`
	Description string `db:"description"`
	Folder      string `db:"folder"`
	Images      string `db:"images"`
}

// NewSQLiteBackend opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// An in-memory database lives per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteBackend{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteBackend) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// LoadProjects reads every row of the projects table.
func (s *SQLiteBackend) LoadProjects(ctx context.Context) (map[string]model.Project, error) {
	var rows []projectRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM projects"); err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}

	projects := make(map[string]model.Project, len(rows))
	for _, r := range rows {
		p := model.Project{
			ID:          r.ID,
			Title:       r.Title,
			Subtitle:    r.Subtitle,
			Description: r.Description,
			Folder:      r.Folder,
		}
		if err := json.Unmarshal([]byte(r.Images), &p.Images); err != nil {
			return nil, fmt.Errorf("decoding images for project %s: %w", r.ID, err)
		}
		projects[r.ID] = p
	}
	return projects, nil
}

// SaveProjects replaces the projects table with the given mapping.
func (s *SQLiteBackend) SaveProjects(ctx context.Context, projects map[string]model.Project) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM projects"); err != nil {
		return fmt.Errorf("clearing projects: %w", err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO projects (id, title, subtitle, description, folder, images)
		VALUES (:id, :title, :subtitle, :description, :folder, :images)`)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for id, p := range projects {
		images, err := json.Marshal(p.Images)
		if err != nil {
			return fmt.Errorf("encoding images for project %s: %w", id, err)
		}
		row := projectRow{
			ID:          id,
			Title:       p.Title,
			Subtitle:    p.Subtitle,
			Description: p.Description,
			Folder:      p.Folder,
			Images:      string(images),
		}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("inserting project %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// LoadDocument decodes the JSON body stored under name.
func (s *SQLiteBackend) LoadDocument(ctx context.Context, name string, v any) (bool, error) {
	var body string
	err := s.db.GetContext(ctx, &body, "SELECT body FROM documents WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading document %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return false, fmt.Errorf("decoding document %s: %w", name, err)
	}
	return true, nil
}

// SaveDocument stores v as JSON under name, replacing any previous body.
func (s *SQLiteBackend) SaveDocument(ctx context.Context, name string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding document %s: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, string(body), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing document %s: %w", name, err)
	}
	return nil
}
