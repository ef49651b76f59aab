package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

const ddl = `
CREATE TABLE IF NOT EXISTS forms (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	document   TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS form_versions (
	form_id      TEXT NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
	number       INTEGER NOT NULL,
	document     TEXT NOT NULL,
	published_at TEXT NOT NULL,
	PRIMARY KEY (form_id, number)
);
`

// SQLite implements Store on a SQLite database through the pure-Go
// modernc.org/sqlite driver.
type SQLite struct {
	db  *sql.DB
	cfg config
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating when needed) the database at path and migrates
// it. Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// One connection keeps pragmas and :memory: databases consistent.
	db.SetMaxOpenConns(1)

	s, err := NewSQLite(ctx, db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite wraps an already opened database and migrates it.
func NewSQLite(ctx context.Context, db *sql.DB, opts ...Option) (*SQLite, error) {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &SQLite{db: db, cfg: newConfig(opts)}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Create(ctx context.Context, doc *schema.FormSchema) (Form, error) {
	doc, err := prepare(doc)
	if err != nil {
		return Form{}, fmt.Errorf("store: create: %w", err)
	}
	raw, err := schema.Encode(doc)
	if err != nil {
		return Form{}, fmt.Errorf("store: create: %w", err)
	}
	now := s.cfg.now()
	form := Form{ID: s.cfg.newID(), Title: titleOf(doc), Schema: doc, CreatedAt: now, UpdatedAt: now}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO forms (id, title, document, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		form.ID, form.Title, string(raw), stamp(now), stamp(now))
	if err != nil {
		return Form{}, fmt.Errorf("store: insert form: %w", err)
	}
	s.cfg.logger.Debug("store: form created", "id", form.ID)
	return form, nil
}

func (s *SQLite) Load(ctx context.Context, id string) (Form, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT f.id, f.title, f.document, f.created_at, f.updated_at,
			COALESCE((SELECT MAX(number) FROM form_versions v WHERE v.form_id = f.id), 0)
		FROM forms f WHERE f.id = ?`, id)

	var (
		form             Form
		raw              string
		created, updated string
	)
	if err := row.Scan(&form.ID, &form.Title, &raw, &created, &updated, &form.Published); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Form{}, fmt.Errorf("store: form %s: %w", id, ErrNotFound)
		}
		return Form{}, fmt.Errorf("store: load form %s: %w", id, err)
	}
	doc, err := schema.Decode([]byte(raw))
	if err != nil {
		return Form{}, fmt.Errorf("store: decode form %s: %w", id, err)
	}
	form.Schema = doc
	form.CreatedAt = parseStamp(created)
	form.UpdatedAt = parseStamp(updated)
	return form, nil
}

func (s *SQLite) List(ctx context.Context) ([]Form, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.title, f.created_at, f.updated_at,
			COALESCE((SELECT MAX(number) FROM form_versions v WHERE v.form_id = f.id), 0)
		FROM forms f ORDER BY f.updated_at DESC, f.id`)
	if err != nil {
		return nil, fmt.Errorf("store: list forms: %w", err)
	}
	defer rows.Close()

	forms := []Form{}
	for rows.Next() {
		var (
			form             Form
			created, updated string
		)
		if err := rows.Scan(&form.ID, &form.Title, &created, &updated, &form.Published); err != nil {
			return nil, fmt.Errorf("store: scan form: %w", err)
		}
		form.CreatedAt = parseStamp(created)
		form.UpdatedAt = parseStamp(updated)
		forms = append(forms, form)
	}
	return forms, rows.Err()
}

func (s *SQLite) Save(ctx context.Context, id string, doc *schema.FormSchema) (Form, error) {
	doc, err := prepare(doc)
	if err != nil {
		return Form{}, fmt.Errorf("store: save %s: %w", id, err)
	}
	raw, err := schema.Encode(doc)
	if err != nil {
		return Form{}, fmt.Errorf("store: save %s: %w", id, err)
	}
	now := s.cfg.now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE forms SET title = ?, document = ?, updated_at = ? WHERE id = ?`,
		titleOf(doc), string(raw), stamp(now), id)
	if err != nil {
		return Form{}, fmt.Errorf("store: update form %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Form{}, fmt.Errorf("store: form %s: %w", id, ErrNotFound)
	}
	s.cfg.logger.Debug("store: form saved", "id", id)
	return s.Load(ctx, id)
}

func (s *SQLite) Publish(ctx context.Context, id string) (Version, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Version{}, fmt.Errorf("store: publish %s: %w", id, err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT document FROM forms WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Version{}, fmt.Errorf("store: form %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Version{}, fmt.Errorf("store: publish %s: %w", id, err)
	}

	var number int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(number), 0) + 1 FROM form_versions WHERE form_id = ?`, id).Scan(&number)
	if err != nil {
		return Version{}, fmt.Errorf("store: next version of %s: %w", id, err)
	}

	now := s.cfg.now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO form_versions (form_id, number, document, published_at) VALUES (?, ?, ?, ?)`,
		id, number, raw, stamp(now))
	if err != nil {
		return Version{}, fmt.Errorf("store: insert version of %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return Version{}, fmt.Errorf("store: publish %s: %w", id, err)
	}

	doc, err := schema.Decode([]byte(raw))
	if err != nil {
		return Version{}, fmt.Errorf("store: decode version of %s: %w", id, err)
	}
	s.cfg.logger.Info("store: form published", "id", id, "version", number)
	return Version{FormID: id, Number: number, Schema: doc, PublishedAt: now}, nil
}

func (s *SQLite) Versions(ctx context.Context, id string) ([]Version, error) {
	if err := s.exists(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT number, published_at FROM form_versions WHERE form_id = ? ORDER BY number`, id)
	if err != nil {
		return nil, fmt.Errorf("store: list versions of %s: %w", id, err)
	}
	defer rows.Close()

	versions := []Version{}
	for rows.Next() {
		v := Version{FormID: id}
		var published string
		if err := rows.Scan(&v.Number, &published); err != nil {
			return nil, fmt.Errorf("store: scan version: %w", err)
		}
		v.PublishedAt = parseStamp(published)
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *SQLite) LoadVersion(ctx context.Context, id string, number int) (Version, error) {
	var raw, published string
	err := s.db.QueryRowContext(ctx,
		`SELECT document, published_at FROM form_versions WHERE form_id = ? AND number = ?`,
		id, number).Scan(&raw, &published)
	if errors.Is(err, sql.ErrNoRows) {
		return Version{}, fmt.Errorf("store: form %s version %d: %w", id, number, ErrNotFound)
	}
	if err != nil {
		return Version{}, fmt.Errorf("store: load version %d of %s: %w", number, id, err)
	}
	doc, err := schema.Decode([]byte(raw))
	if err != nil {
		return Version{}, fmt.Errorf("store: decode version %d of %s: %w", number, id, err)
	}
	return Version{FormID: id, Number: number, Schema: doc, PublishedAt: parseStamp(published)}, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM form_versions WHERE form_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete versions of %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM forms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: form %s: %w", id, ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	s.cfg.logger.Debug("store: form deleted", "id", id)
	return nil
}

func (s *SQLite) exists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM forms WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("store: form %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("store: lookup %s: %w", id, err)
	}
	return nil
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseStamp(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
