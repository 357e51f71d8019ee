package agent

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/mesafina/mesafina/internal/db"
	"github.com/mesafina/mesafina/internal/disambig"
)

// Store persists chat sessions, their transcripts, and any clarification
// state awaiting a guest reply.
type Store struct {
	db *db.DB
}

// NewStore creates a new agent store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// CreateSession opens a new chat session. Session IDs are ULIDs so
// transcripts sort chronologically by ID.
func (s *Store) CreateSession(ctx context.Context, restaurantID, locale, channel string) (*ChatSession, error) {
	if locale == "" {
		locale = "en"
	}
	if channel == "" {
		channel = "dashboard"
	}
	now := time.Now().UTC()
	sess := ChatSession{
		ID:           ulid.Make().String(),
		RestaurantID: restaurantID,
		Locale:       locale,
		Channel:      channel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, restaurant_id, locale, channel, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.RestaurantID, sess.Locale, sess.Channel, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting chat session: %w", err)
	}
	return &sess, nil
}

// GetSession retrieves a session by ID. Returns nil if not found.
func (s *Store) GetSession(ctx context.Context, id string) (*ChatSession, error) {
	var sess ChatSession
	err := s.db.QueryRowContext(ctx,
		`SELECT id, restaurant_id, locale, channel, created_at, updated_at FROM chat_sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.RestaurantID, &sess.Locale, &sess.Channel, &sess.CreatedAt, &sess.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting chat session: %w", err)
	}
	return &sess, nil
}

// AppendMessage stores one transcript message and bumps the session.
func (s *Store) AppendMessage(ctx context.Context, sessionID, role, content string) (*ChatMessage, error) {
	msg := ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.SessionID, msg.Role, msg.Content, msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting chat message: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE chat_sessions SET updated_at = ? WHERE id = ?`, msg.CreatedAt, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("touching chat session: %w", err)
	}
	return &msg, nil
}

// ListMessages returns a session's transcript, oldest first.
func (s *Store) ListMessages(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	query := `SELECT id, session_id, role, content, created_at FROM chat_messages
	 WHERE session_id = ? ORDER BY created_at ASC`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing chat messages: %w", err)
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var msg ChatMessage
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

// SavePending stores clarification state for a session, replacing any
// previous state. The state is serialized to JSON; the payload allowlist in
// disambig guarantees it survives the round trip intact.
func (s *Store) SavePending(ctx context.Context, sessionID string, p *disambig.Pending) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshalling pending state: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pending_disambiguations (session_id, state) VALUES (?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET state = excluded.state`,
		sessionID, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving pending state: %w", err)
	}
	return nil
}

// LoadPending retrieves clarification state for a session. Returns nil if none.
func (s *Store) LoadPending(ctx context.Context, sessionID string) (*disambig.Pending, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM pending_disambiguations WHERE session_id = ?`, sessionID,
	).Scan(&raw)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading pending state: %w", err)
	}

	var p disambig.Pending
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("unmarshalling pending state: %w", err)
	}
	return &p, nil
}

// ClearPending removes any clarification state for a session.
func (s *Store) ClearPending(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM pending_disambiguations WHERE session_id = ?`, sessionID,
	)
	if err != nil {
		return fmt.Errorf("clearing pending state: %w", err)
	}
	return nil
}

// CountSessions returns the total number of chat sessions.
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_sessions`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting chat sessions: %w", err)
	}
	return n, nil
}
