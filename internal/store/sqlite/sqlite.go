// Package sqlite implements store.Store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/adskoe96/adsk-chat/internal/store"
)

// schema is provisioned once at startup. Every statement is idempotent, so a
// restart against an existing database is a no-op.
const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	author_id   INTEGER,
	author_name TEXT NOT NULL,
	body        TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages (created_at, id);

CREATE TABLE IF NOT EXISTS accounts (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	display_name  TEXT NOT NULL,
	avatar        TEXT NOT NULL DEFAULT '',
	role          TEXT NOT NULL DEFAULT 'user',
	bio           TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens the database at dbPath and provisions the schema. A provisioning
// failure is returned to the caller, which treats it as fatal.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single writer; this also bounds the number of
	// outstanding queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("provision schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== MessageStore implementation ====

// AppendMessage persists one message and returns the stored record with its
// assigned id and timestamp.
func (s *SQLiteStore) AppendMessage(ctx context.Context, authorID int64, authorName, body string) (*store.Message, error) {
	var author any
	if authorID != 0 {
		author = authorID
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (author_id, author_name, body) VALUES (?, ?, ?)`,
		author, authorName, body,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w: %w", store.ErrUnavailable, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w: %w", store.ErrUnavailable, err)
	}

	return s.getMessage(ctx, id)
}

// RecentMessages returns the newest limit messages, oldest first.
func (s *SQLiteStore) RecentMessages(ctx context.Context, limit int) ([]*store.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(author_id, 0), author_name, body, created_at
		FROM messages
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w: %w", store.ErrUnavailable, err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.AuthorID, &msg.AuthorName, &msg.Body, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w: %w", store.ErrUnavailable, err)
	}

	// The query walks newest first; flip to the display order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (s *SQLiteStore) getMessage(ctx context.Context, id int64) (*store.Message, error) {
	var msg store.Message
	err := s.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(author_id, 0), author_name, body, created_at
		FROM messages
		WHERE id = ?
	`, id).Scan(&msg.ID, &msg.AuthorID, &msg.AuthorName, &msg.Body, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("query message: %w: %w", store.ErrUnavailable, err)
	}
	return &msg, nil
}

// ==== AccountStore implementation ====

// CreateAccount inserts a new account with the default role and the username
// as display name.
func (s *SQLiteStore) CreateAccount(ctx context.Context, username, passwordHash string) (*store.Account, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (username, password_hash, display_name, role)
		VALUES (?, ?, ?, ?)
	`, username, passwordHash, username, store.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetAccountByID(ctx, id)
}

// GetAccountByID retrieves an account by id.
func (s *SQLiteStore) GetAccountByID(ctx context.Context, id int64) (*store.Account, error) {
	return s.getAccount(ctx, `WHERE id = ?`, id)
}

// GetAccountByUsername retrieves an account by username.
func (s *SQLiteStore) GetAccountByUsername(ctx context.Context, username string) (*store.Account, error) {
	return s.getAccount(ctx, `WHERE username = ?`, username)
}

func (s *SQLiteStore) getAccount(ctx context.Context, where string, arg any) (*store.Account, error) {
	query := `
		SELECT id, username, password_hash, display_name, avatar, role, bio, created_at
		FROM accounts ` + where
	var acc store.Account
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&acc.ID,
		&acc.Username,
		&acc.PasswordHash,
		&acc.DisplayName,
		&acc.Avatar,
		&acc.Role,
		&acc.Bio,
		&acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAccountNotFound
		}
		return nil, fmt.Errorf("query account: %w", err)
	}

	return &acc, nil
}

// UpdateProfile replaces the display name and bio of an account.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, id int64, displayName, bio string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET display_name = ?, bio = ? WHERE id = ?
	`, displayName, bio, id)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return checkUpdated(result)
}

// UpdateAvatar replaces the avatar reference of an account.
func (s *SQLiteStore) UpdateAvatar(ctx context.Context, id int64, avatar string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET avatar = ? WHERE id = ?
	`, avatar, id)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	return checkUpdated(result)
}

func checkUpdated(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrAccountNotFound
	}
	return nil
}
