package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lawbridge/lawbridge/pkg/api"
)

type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

func openSQLite(ctx context.Context, dsn string) (*sqliteStore, io.Closer, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, err
	}
	for _, pragma := range []string{`PRAGMA journal_mode=WAL;`, `PRAGMA foreign_keys=ON;`, `PRAGMA busy_timeout=5000;`} {
		if _, err := dbh.ExecContext(ctx, pragma); err != nil {
			_ = dbh.Close()
			return nil, nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return &sqliteStore{db: dbh, now: time.Now}, dbh, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS conversations (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  bot TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_created_id ON conversations(created_at DESC, id);
CREATE INDEX IF NOT EXISTS idx_conversations_bot ON conversations(bot);
CREATE TABLE IF NOT EXISTS turns (
  conversation_id TEXT NOT NULL,
  seq INTEGER NOT NULL,
  role TEXT NOT NULL,
  content TEXT NOT NULL,
  confidence REAL,
  created_at TIMESTAMP NOT NULL,
  PRIMARY KEY(conversation_id, seq),
  FOREIGN KEY(conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
);
`)
	return err
}

func (s *sqliteStore) CreateConversation(ctx context.Context, c api.Conversation) (api.Conversation, error) {
	c, err := prepare(c, s.now())
	if err != nil {
		return api.Conversation{}, err
	}
	err = inTx(ctx, s.db, func(ctx context.Context, q querier) error {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO conversations(id, title, bot, created_at, updated_at) VALUES(?,?,?,?,?)`,
			c.ID, c.Title, c.Bot, c.CreatedAt, c.CreatedAt); err != nil {
			if isConstraint(err) {
				return fmt.Errorf("conversation %s: %w", c.ID, ErrConflict)
			}
			return err
		}
		return insertTurns(ctx, q, c.ID, 0, c.Turns)
	})
	if err != nil {
		return api.Conversation{}, err
	}
	return c, nil
}

func (s *sqliteStore) AppendTurn(ctx context.Context, id string, t api.Turn) (api.Conversation, error) {
	t, err := prepareTurn(t, s.now().UTC())
	if err != nil {
		return api.Conversation{}, err
	}
	var out api.Conversation
	err = inTx(ctx, s.db, func(ctx context.Context, q querier) error {
		now := s.now().UTC()
		var next int
		if err := q.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq)+1, 0) FROM turns WHERE conversation_id=?`, id).Scan(&next); err != nil {
			return err
		}
		res, err := q.ExecContext(ctx, `UPDATE conversations SET updated_at=? WHERE id=?`, now, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		if err := insertTurns(ctx, q, id, next, []api.Turn{t}); err != nil {
			return err
		}
		out, err = getConversation(ctx, q, id)
		return err
	})
	if err != nil {
		return api.Conversation{}, err
	}
	return out, nil
}

func (s *sqliteStore) GetConversation(ctx context.Context, id string) (api.Conversation, error) {
	var q querier = s.db
	if tx := TxFromContext(ctx); tx != nil {
		q = tx
	}
	return getConversation(ctx, q, id)
}

// ImportConversation stores c under its ID, replacing any existing copy.
func (s *sqliteStore) ImportConversation(ctx context.Context, c api.Conversation) (api.Conversation, error) {
	c, err := prepare(c, s.now())
	if err != nil {
		return api.Conversation{}, err
	}
	err = inTx(ctx, s.db, func(ctx context.Context, q querier) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM conversations WHERE id=?`, c.ID); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO conversations(id, title, bot, created_at, updated_at) VALUES(?,?,?,?,?)`,
			c.ID, c.Title, c.Bot, c.CreatedAt, s.now().UTC()); err != nil {
			return err
		}
		return insertTurns(ctx, q, c.ID, 0, c.Turns)
	})
	if err != nil {
		return api.Conversation{}, err
	}
	return c, nil
}

func (s *sqliteStore) DeleteConversation(ctx context.Context, id string) error {
	return inTx(ctx, s.db, func(ctx context.Context, q querier) error {
		res, err := q.ExecContext(ctx, `DELETE FROM conversations WHERE id=?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *sqliteStore) ListConversations(ctx context.Context, lq api.ListQuery) ([]api.Summary, api.Page, error) {
	limit := lq.Limit
	if limit <= 0 {
		limit = 100
	}
	conds := []string{}
	args := []any{}
	if lq.Bot != "" {
		conds = append(conds, "c.bot = ?")
		args = append(args, lq.Bot)
	}
	if !lq.Since.IsZero() {
		conds = append(conds, "c.created_at >= ?")
		args = append(args, lq.Since.UTC())
	}
	cursor, hasCursor := parseCursorToken(lq.Cursor)
	if hasCursor {
		conds = append(conds, "(c.created_at < ? OR (c.created_at = ? AND c.id < ?))")
		args = append(args, cursor.ts.UTC(), cursor.ts.UTC(), cursor.id)
	}
	query := `SELECT c.id, c.title, c.bot, c.created_at, c.updated_at,
  (SELECT COUNT(*) FROM turns t WHERE t.conversation_id = c.id)
FROM conversations c`
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}
	query += "\nORDER BY c.created_at DESC, c.id DESC\nLIMIT ?"
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, api.Page{}, err
	}
	defer rows.Close()
	var out []api.Summary
	for rows.Next() {
		var sum api.Summary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Bot, &sum.CreatedAt, &sum.UpdatedAt, &sum.Turns); err != nil {
			return nil, api.Page{}, err
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, api.Page{}, err
	}
	out, page := buildPage(out, limit, hasCursor)
	return out, page, nil
}

func getConversation(ctx context.Context, q querier, id string) (api.Conversation, error) {
	var c api.Conversation
	var updated time.Time
	row := q.QueryRowContext(ctx, `SELECT id, title, bot, created_at, updated_at FROM conversations WHERE id=?`, id)
	if err := row.Scan(&c.ID, &c.Title, &c.Bot, &c.CreatedAt, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.Conversation{}, ErrNotFound
		}
		return api.Conversation{}, err
	}
	rows, err := q.QueryContext(ctx,
		`SELECT role, content, confidence, created_at FROM turns WHERE conversation_id=? ORDER BY seq ASC`, id)
	if err != nil {
		return api.Conversation{}, err
	}
	defer rows.Close()
	c.Turns = []api.Turn{}
	for rows.Next() {
		var t api.Turn
		var role string
		var conf sql.NullFloat64
		if err := rows.Scan(&role, &t.Content, &conf, &t.CreatedAt); err != nil {
			return api.Conversation{}, err
		}
		t.Role = api.Role(role)
		if conf.Valid {
			t.Confidence = api.Confidence(conf.Float64)
		}
		c.Turns = append(c.Turns, t)
	}
	return c, rows.Err()
}

func insertTurns(ctx context.Context, q querier, id string, first int, turns []api.Turn) error {
	for i, t := range turns {
		var conf any
		if t.Confidence != nil {
			conf = *t.Confidence
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO turns(conversation_id, seq, role, content, confidence, created_at) VALUES(?,?,?,?,?,?)`,
			id, first+i, string(t.Role), t.Content, conf, t.CreatedAt.UTC()); err != nil {
			return err
		}
	}
	return nil
}

func isConstraint(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "constraint")
}
