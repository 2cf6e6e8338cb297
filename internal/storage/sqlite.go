package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
	"github.com/Zuo-Peng/framechat/internal/chat"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS sessions (
    session_id  TEXT PRIMARY KEY,
    position    INTEGER NOT NULL,
    name        TEXT NOT NULL,
    created_at  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS messages (
    session_id  TEXT NOT NULL,
    seq         INTEGER NOT NULL,
    role        TEXT NOT NULL,
    text        TEXT NOT NULL DEFAULT '',
    image_path  TEXT NOT NULL DEFAULT '',
    video_id    TEXT NOT NULL DEFAULT '',
    keyframe    TEXT NOT NULL DEFAULT '',
    has_image   INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (session_id, seq)
);

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// schemaVersion should be bumped whenever the table layout changes.
const schemaVersion = "1"

// SQLite stores sessions and messages as rows. Every Save rewrites the whole
// snapshot inside one transaction.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrateSchemaVersion() error {
	var ver string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err == nil && ver == schemaVersion {
		return nil
	}
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("read schema version: %w", err)
	}
	_, err = s.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Load(ctx context.Context) (*chat.Snapshot, error) {
	var active string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'active_id'").Scan(&active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read active session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT session_id, name, created_at FROM sessions ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	defer rows.Close()

	snap := &chat.Snapshot{ActiveID: active}
	index := make(map[string]int)
	for rows.Next() {
		var sess chat.Session
		var created string
		if err := rows.Scan(&sess.ID, &sess.Name, &created); err != nil {
			return nil, err
		}
		if sess.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("%w: session %q: %v", apperrors.ErrCorrupt, sess.ID, err)
		}
		sess.Messages = []chat.Message{}
		index[sess.ID] = len(snap.Sessions)
		snap.Sessions = append(snap.Sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	msgs, err := s.db.QueryContext(ctx,
		"SELECT session_id, role, text, image_path, video_id, keyframe, has_image, created_at FROM messages ORDER BY session_id, seq")
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	defer msgs.Close()

	for msgs.Next() {
		var (
			sessionID, role, created string
			m                        chat.Message
			img                      chat.ImageRef
			hasImage                 bool
		)
		if err := msgs.Scan(&sessionID, &role, &m.Text, &img.Path, &img.VideoID, &img.Keyframe, &hasImage, &created); err != nil {
			return nil, err
		}
		i, ok := index[sessionID]
		if !ok {
			return nil, fmt.Errorf("%w: message for unknown session %q", apperrors.ErrCorrupt, sessionID)
		}
		m.Role = chat.Role(role)
		if hasImage {
			m.Image = &img
		}
		if m.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("%w: message in %q: %v", apperrors.ErrCorrupt, sessionID, err)
		}
		snap.Sessions[i].Messages = append(snap.Sessions[i].Messages, m)
	}
	return snap, msgs.Err()
}

func (s *SQLite) Save(ctx context.Context, snap *chat.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions"); err != nil {
		return err
	}

	sessStmt, err := tx.PrepareContext(ctx, "INSERT INTO sessions (session_id, position, name, created_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer sessStmt.Close()

	msgStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO messages (session_id, seq, role, text, image_path, video_id, keyframe, has_image, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer msgStmt.Close()

	for pos, sess := range snap.Sessions {
		if _, err := sessStmt.ExecContext(ctx, sess.ID, pos, sess.Name, formatTime(sess.CreatedAt)); err != nil {
			return fmt.Errorf("insert session %s: %w", sess.ID, err)
		}
		for seq, m := range sess.Messages {
			var img chat.ImageRef
			if m.Image != nil {
				img = *m.Image
			}
			if _, err := msgStmt.ExecContext(ctx, sess.ID, seq, string(m.Role), m.Text,
				img.Path, img.VideoID, img.Keyframe, m.Image != nil, formatTime(m.CreatedAt)); err != nil {
				return fmt.Errorf("insert message %s/%d: %w", sess.ID, seq, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO meta (key, value) VALUES ('active_id', ?)", snap.ActiveID); err != nil {
		return err
	}
	return tx.Commit()
}

// Counts reports how many sessions and messages are stored.
func (s *SQLite) Counts(ctx context.Context) (sessions, messages int, err error) {
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&sessions); err != nil {
		return 0, 0, err
	}
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&messages)
	return sessions, messages, err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
