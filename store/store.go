// Package store persists imported exams, their sheet rows and image
// payloads in an SQLite database.
//
// Usage:
//
//	st, err := store.Open("exams.db", store.WithMkdirAll())
//	if err != nil {
//	    // handle error
//	}
//	defer st.Close()
//	imp, err := st.SaveImport(ctx, "de-thi.docx", doc, rows, nil)
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tsawler/examdoc/model"
	"github.com/tsawler/examdoc/sheet"
)

// ErrNotFound is returned when a requested import or image does not exist.
var ErrNotFound = errors.New("store: not found")

const schema = `
CREATE TABLE IF NOT EXISTS imports (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	title       TEXT NOT NULL,
	time_limit  INTEGER NOT NULL,
	questions   INTEGER NOT NULL,
	images      INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
	import_id     TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	exam_id       TEXT NOT NULL,
	level         TEXT NOT NULL,
	question_type TEXT NOT NULL,
	question_text TEXT NOT NULL,
	image_id      TEXT NOT NULL,
	option_a      TEXT NOT NULL,
	option_b      TEXT NOT NULL,
	option_c      TEXT NOT NULL,
	option_d      TEXT NOT NULL,
	answer_key    TEXT NOT NULL,
	solution      TEXT NOT NULL,
	topic         TEXT NOT NULL,
	grade         INTEGER NOT NULL,
	quiz_level    INTEGER NOT NULL,
	PRIMARY KEY (import_id, position)
);

CREATE TABLE IF NOT EXISTS images (
	import_id       TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
	local_id        TEXT NOT NULL,
	filename        TEXT NOT NULL,
	path            TEXT NOT NULL,
	mime_type       TEXT NOT NULL,
	relationship_id TEXT NOT NULL,
	width           INTEGER NOT NULL,
	height          INTEGER NOT NULL,
	remote_id       TEXT NOT NULL DEFAULT '',
	data            BLOB NOT NULL,
	PRIMARY KEY (import_id, local_id)
);
`

type config struct {
	busyTimeout int
	mkdirAll    bool
}

// Option customises Open behaviour.
type Option func(*config)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithMkdirAll creates parent directories of the database path before opening.
func WithMkdirAll() Option { return func(c *config) { c.mkdirAll = true } }

// Store is an SQLite-backed import archive. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := config{busyTimeout: 10_000}
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path, cfg))
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// dsn appends the connection pragmas to path. The driver applies them to
// every connection it opens, so the pool never hands out a connection
// without foreign keys.
func dsn(path string, cfg config) string {
	pragmas := []string{
		"foreign_keys(1)",
		"journal_mode(WAL)",
		fmt.Sprintf("busy_timeout(%d)", cfg.busyTimeout),
		"synchronous(NORMAL)",
	}
	q := make([]string, len(pragmas))
	for i, p := range pragmas {
		q[i] = "_pragma=" + p
	}
	return path + "?" + strings.Join(q, "&")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Import describes one stored import.
type Import struct {
	ID        string
	Source    string
	Title     string
	TimeLimit int
	Questions int
	Images    int
	CreatedAt time.Time
}

// SaveImport stores rows and the document's images in one transaction and
// returns the new import. remote maps local image ids to remote ids and
// may be nil.
func (s *Store) SaveImport(ctx context.Context, source string, doc *model.ExamDocument, rows []sheet.Row, remote map[string]string) (Import, error) {
	if doc == nil {
		return Import{}, errors.New("store: nil document")
	}

	imp := Import{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Source:    source,
		Title:     doc.Title,
		TimeLimit: doc.TimeLimit,
		Questions: len(rows),
		Images:    len(doc.Images),
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Import{}, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, title, time_limit, questions, images, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		imp.ID, imp.Source, imp.Title, imp.TimeLimit, imp.Questions, imp.Images, imp.CreatedAt.UnixMilli(),
	); err != nil {
		return Import{}, fmt.Errorf("store: insert import: %w", err)
	}

	qstmt, err := tx.PrepareContext(ctx, `INSERT INTO questions (
		import_id, position, exam_id, level, question_type, question_text, image_id,
		option_a, option_b, option_c, option_d, answer_key, solution, topic, grade, quiz_level
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Import{}, fmt.Errorf("store: prepare questions: %w", err)
	}
	defer qstmt.Close()

	for i, r := range rows {
		if _, err := qstmt.ExecContext(ctx,
			imp.ID, i, r.ExamID, r.Level, r.QuestionType, r.QuestionText, r.ImageID,
			r.OptionA, r.OptionB, r.OptionC, r.OptionD, r.AnswerKey, r.Solution, r.Topic, r.Grade, r.QuizLevel,
		); err != nil {
			return Import{}, fmt.Errorf("store: insert question %d: %w", i, err)
		}
	}

	istmt, err := tx.PrepareContext(ctx, `INSERT INTO images (
		import_id, local_id, filename, path, mime_type, relationship_id, width, height, remote_id, data
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Import{}, fmt.Errorf("store: prepare images: %w", err)
	}
	defer istmt.Close()

	for _, a := range doc.Images {
		data := a.Data
		if data == nil {
			data = []byte{}
		}
		if _, err := istmt.ExecContext(ctx,
			imp.ID, a.ID, a.Filename, a.Path, a.MIMEType, a.RelationshipID, a.Width, a.Height, remote[a.ID], data,
		); err != nil {
			return Import{}, fmt.Errorf("store: insert image %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Import{}, fmt.Errorf("store: commit: %w", err)
	}
	return imp, nil
}

// Imports lists stored imports, newest first.
func (s *Store) Imports(ctx context.Context) ([]Import, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, title, time_limit, questions, images, created_at FROM imports ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list imports: %w", err)
	}
	defer rows.Close()

	var out []Import
	for rows.Next() {
		var imp Import
		var created int64
		if err := rows.Scan(&imp.ID, &imp.Source, &imp.Title, &imp.TimeLimit, &imp.Questions, &imp.Images, &created); err != nil {
			return nil, fmt.Errorf("store: scan import: %w", err)
		}
		imp.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, imp)
	}
	return out, rows.Err()
}

// Rows returns the sheet rows of an import in their original order.
func (s *Store) Rows(ctx context.Context, importID string) ([]sheet.Row, error) {
	if err := s.exists(ctx, importID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT
		exam_id, level, question_type, question_text, image_id,
		option_a, option_b, option_c, option_d, answer_key, solution, topic, grade, quiz_level
		FROM questions WHERE import_id = ? ORDER BY position`, importID)
	if err != nil {
		return nil, fmt.Errorf("store: query rows: %w", err)
	}
	defer rows.Close()

	var out []sheet.Row
	for rows.Next() {
		var r sheet.Row
		if err := rows.Scan(&r.ExamID, &r.Level, &r.QuestionType, &r.QuestionText, &r.ImageID,
			&r.OptionA, &r.OptionB, &r.OptionC, &r.OptionD, &r.AnswerKey, &r.Solution, &r.Topic,
			&r.Grade, &r.QuizLevel); err != nil {
			return nil, fmt.Errorf("store: scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Image returns a stored image with its payload and the remote id it was
// uploaded under, if any.
func (s *Store) Image(ctx context.Context, importID, localID string) (model.ImageAsset, string, error) {
	var a model.ImageAsset
	var remote string
	err := s.db.QueryRowContext(ctx, `SELECT local_id, filename, path, mime_type, relationship_id, width, height, remote_id, data
		FROM images WHERE import_id = ? AND local_id = ?`, importID, localID).
		Scan(&a.ID, &a.Filename, &a.Path, &a.MIMEType, &a.RelationshipID, &a.Width, &a.Height, &remote, &a.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ImageAsset{}, "", fmt.Errorf("%w: image %s in import %s", ErrNotFound, localID, importID)
	}
	if err != nil {
		return model.ImageAsset{}, "", fmt.Errorf("store: query image: %w", err)
	}
	return a, remote, nil
}

// Delete removes an import with its rows and images.
func (s *Store) Delete(ctx context.Context, importID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM imports WHERE id = ?`, importID)
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: import %s", ErrNotFound, importID)
	}
	return nil
}

func (s *Store) exists(ctx context.Context, importID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM imports WHERE id = ?`, importID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: import %s", ErrNotFound, importID)
	}
	if err != nil {
		return fmt.Errorf("store: lookup import: %w", err)
	}
	return nil
}
