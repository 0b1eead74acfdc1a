package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists chats in PostgreSQL. It implements the same
// Store interface as MemoryStore so the web layer does not care which
// backend is configured.
//
// Safe for concurrent use by multiple goroutines.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore creates a store on top of an existing pool. It seeds
// the first chat when the table is empty so the invariant of at least
// one chat holds from the start. logger nil means slog.Default().
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("chat: pool is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &PostgresStore{pool: pool, logger: logger}

	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM chats`).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count chats: %w", err)
	}
	if count == 0 {
		if _, err := s.Create(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Create inserts a new empty chat and marks it active.
func (s *PostgresStore) Create(ctx context.Context) (*Chat, error) {
	c := &Chat{
		ID:    "chat-" + uuid.NewString(),
		Title: DefaultTitle,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.logger.Debug("transaction rollback", "error", err)
		}
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO chats (id, title) VALUES ($1, $2) RETURNING created_at, updated_at`,
		c.ID, c.Title,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO app_state (id, active_chat_id) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET active_chat_id = EXCLUDED.active_chat_id`,
		c.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to activate chat: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("created chat", "id", c.ID)
	return c, nil
}

// Get retrieves a chat and its messages ordered by sequence number.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Chat, error) {
	c := &Chat{ID: id}
	err := s.pool.QueryRow(ctx,
		`SELECT title, created_at, updated_at FROM chats WHERE id = $1`, id,
	).Scan(&c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat %s: %w", id, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, role, content, files, created_at
		 FROM messages WHERE chat_id = $1 ORDER BY sequence_number`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages for chat %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.Files, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		c.Messages = append(c.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return c, nil
}

// List returns chat summaries ordered by updated_at descending.
func (s *PostgresStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.title, count(m.id), c.updated_at
		 FROM chats c LEFT JOIN messages m ON m.chat_id = c.id
		 GROUP BY c.id ORDER BY c.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.MessageCount, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read summaries: %w", err)
	}
	return out, nil
}

// Append adds a message inside a transaction that locks the chat row,
// so concurrent appends to the same chat get distinct sequence numbers.
// The first user message sets the chat title.
func (s *PostgresStore) Append(ctx context.Context, chatID, role, content string, files []FileRef) (*Message, error) {
	if role != RoleUser && role != RoleAssistant {
		return nil, ErrInvalidRole
	}
	if files == nil {
		files = []FileRef{}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.logger.Debug("transaction rollback", "error", err)
		}
	}()

	var locked string
	err = tx.QueryRow(ctx, `SELECT id FROM chats WHERE id = $1 FOR UPDATE`, chatID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock chat %s: %w", chatID, err)
	}

	var maxSeq int32
	if err := tx.QueryRow(ctx,
		`SELECT coalesce(max(sequence_number), 0) FROM messages WHERE chat_id = $1`, chatID,
	).Scan(&maxSeq); err != nil {
		return nil, fmt.Errorf("failed to get sequence number: %w", err)
	}

	msg := &Message{
		ID:      "msg-" + uuid.NewString(),
		Role:    role,
		Content: content,
		Files:   files,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO messages (id, chat_id, role, content, files, sequence_number)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		msg.ID, chatID, msg.Role, msg.Content, msg.Files, maxSeq+1,
	).Scan(&msg.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	if role == RoleUser && maxSeq == 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE chats SET title = $1, updated_at = now() WHERE id = $2`,
			DeriveTitle(content), chatID,
		); err != nil {
			return nil, fmt.Errorf("failed to set chat title: %w", err)
		}
	} else if _, err := tx.Exec(ctx,
		`UPDATE chats SET updated_at = now() WHERE id = $1`, chatID,
	); err != nil {
		return nil, fmt.Errorf("failed to touch chat: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("appended message", "chat_id", chatID, "role", role)
	return msg, nil
}

// Clear deletes a chat's messages and resets its title.
func (s *PostgresStore) Clear(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE chats SET title = $1, updated_at = now() WHERE id = $2`,
		DefaultTitle, id)
	if err != nil {
		return fmt.Errorf("failed to reset chat %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE chat_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear messages for chat %s: %w", id, err)
	}
	return nil
}

// Delete removes a chat and its messages (CASCADE). The last remaining
// chat cannot be deleted. Deleting the active chat activates the most
// recently updated survivor.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.logger.Debug("transaction rollback", "error", err)
		}
	}()

	var count int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM chats`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count chats: %w", err)
	}
	if count <= 1 {
		return ErrLastChat
	}

	tag, err := tx.Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chat %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx,
		`UPDATE app_state SET active_chat_id = (
			SELECT id FROM chats ORDER BY updated_at DESC LIMIT 1
		 ) WHERE id = 1 AND active_chat_id = $1`, id,
	); err != nil {
		return fmt.Errorf("failed to move active chat: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("deleted chat", "id", id)
	return nil
}

// Active returns the id of the active chat.
func (s *PostgresStore) Active(ctx context.Context) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT active_chat_id FROM app_state WHERE id = 1`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get active chat: %w", err)
	}
	return id, nil
}

// SetActive switches the active chat.
func (s *PostgresStore) SetActive(ctx context.Context, id string) error {
	var exists string
	err := s.pool.QueryRow(ctx, `SELECT id FROM chats WHERE id = $1`, id).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check chat %s: %w", id, err)
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO app_state (id, active_chat_id) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET active_chat_id = EXCLUDED.active_chat_id`,
		id,
	); err != nil {
		return fmt.Errorf("failed to set active chat: %w", err)
	}
	return nil
}
