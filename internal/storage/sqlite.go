package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"workbench/internal/chat"

	_ "modernc.org/sqlite"
)

// SQLiteStore 基于 SQLite (WAL 模式) 的持久化实现
// SQLiteStore implements Store using SQLite with WAL mode.
//
// Save keeps the whole-collection semantics of the Store contract: it
// replaces the workspace's rows inside one transaction.
type SQLiteStore struct {
	db        *sql.DB
	path      string
	workspace string
}

// NewSQLiteStore 创建并初始化 SQLite 数据库。workspace 区分不同工作区
// 的会话集合（chat / builder），共用一个数据库文件。
// NewSQLiteStore creates and initializes a SQLite database. workspace
// keys the session collection of each variant (chat / builder) inside
// a shared database file.
func NewSQLiteStore(dbPath, workspace string) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite db path is empty")
	}
	workspace = strings.TrimSpace(workspace)
	if workspace == "" {
		return nil, fmt.Errorf("workspace key is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// 启用 WAL 模式和优化 PRAGMA / Enable WAL and performance PRAGMAs
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	store := &SQLiteStore{db: db, path: dbPath, workspace: workspace}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		workspace   TEXT NOT NULL,
		id          TEXT NOT NULL,
		title       TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		code        TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		PRIMARY KEY(workspace, id)
	);

	CREATE TABLE IF NOT EXISTS messages (
		workspace      TEXT NOT NULL,
		session_id     TEXT NOT NULL,
		seq            INTEGER NOT NULL,
		msg_id         TEXT NOT NULL,
		role           TEXT NOT NULL,
		content        TEXT NOT NULL DEFAULT '',
		timestamp      TEXT NOT NULL DEFAULT '',
		is_code_update INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY(workspace, session_id, seq),
		FOREIGN KEY(workspace, session_id) REFERENCES sessions(workspace, id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(workspace, session_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close 关闭数据库连接 / Close the database connection
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load 读取本工作区的全部会话，按 updated_at 降序
// Load reads all sessions of this workspace, newest first
func (s *SQLiteStore) Load() ([]Session, error) {
	rows, err := s.db.Query(`
		SELECT id, title, name, description, code, created_at, updated_at
		FROM sessions WHERE workspace=? ORDER BY updated_at DESC`, s.workspace)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.Name, &sess.Description,
			&sess.Code, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		messages, err := s.loadMessages(sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Messages = messages
	}
	return sessions, nil
}

func (s *SQLiteStore) loadMessages(sessionID string) ([]chat.Message, error) {
	rows, err := s.db.Query(`
		SELECT msg_id, role, content, timestamp, is_code_update
		FROM messages WHERE workspace=? AND session_id=? ORDER BY seq`, s.workspace, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		var msg chat.Message
		var codeUpdate int
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.Timestamp, &codeUpdate); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.IsCodeUpdate = codeUpdate != 0
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Save 在单个事务中整体替换本工作区的会话集合
// Save replaces this workspace's whole collection in one transaction
func (s *SQLiteStore) Save(sessions []Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// 清除旧集合 / Clear the old collection
	if _, err := tx.Exec("DELETE FROM messages WHERE workspace=?", s.workspace); err != nil {
		return fmt.Errorf("delete old messages: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM sessions WHERE workspace=?", s.workspace); err != nil {
		return fmt.Errorf("delete old sessions: %w", err)
	}

	sessStmt, err := tx.Prepare(`
		INSERT INTO sessions (workspace, id, title, name, description, code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare session insert: %w", err)
	}
	defer sessStmt.Close()

	msgStmt, err := tx.Prepare(`
		INSERT INTO messages (workspace, session_id, seq, msg_id, role, content, timestamp, is_code_update)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare message insert: %w", err)
	}
	defer msgStmt.Close()

	for _, sess := range sessions {
		createdAt := sess.CreatedAt
		if strings.TrimSpace(createdAt) == "" {
			createdAt = NowUTC()
		}
		updatedAt := sess.UpdatedAt
		if strings.TrimSpace(updatedAt) == "" {
			updatedAt = createdAt
		}
		if _, err := sessStmt.Exec(s.workspace, sess.ID, sess.Title, sess.Name,
			sess.Description, sess.Code, createdAt, updatedAt); err != nil {
			return fmt.Errorf("insert session %s: %w", sess.ID, err)
		}
		for i, msg := range sess.Messages {
			if _, err := msgStmt.Exec(s.workspace, sess.ID, i, msg.ID, msg.Role,
				msg.Content, msg.Timestamp, boolToInt(msg.IsCodeUpdate)); err != nil {
				return fmt.Errorf("insert message %d of %s: %w", i, sess.ID, err)
			}
		}
	}

	return tx.Commit()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
