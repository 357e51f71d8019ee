package guests

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/mesafina/mesafina/internal/db"
)

// Store manages persistence of guest records.
type Store struct {
	db *db.DB
}

// NewStore creates a new guest store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create adds a new guest.
func (s *Store) Create(ctx context.Context, g Guest) (*Guest, error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	g.Phone = NormalizePhone(g.Phone)
	g.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO guests (id, restaurant_id, name, phone, email, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.RestaurantID, g.Name, g.Phone, g.Email, g.Notes, g.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting guest: %w", err)
	}
	return &g, nil
}

// GetByID retrieves a guest by ID. Returns nil if not found.
func (s *Store) GetByID(ctx context.Context, id string) (*Guest, error) {
	var g Guest
	err := s.db.QueryRowContext(ctx,
		`SELECT id, restaurant_id, name, phone, email, notes, created_at FROM guests WHERE id = ?`, id,
	).Scan(&g.ID, &g.RestaurantID, &g.Name, &g.Phone, &g.Email, &g.Notes, &g.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting guest: %w", err)
	}
	return &g, nil
}

// FindByPhone looks a guest up by phone number within one restaurant.
// The input may carry formatting; comparison is on digits only.
func (s *Store) FindByPhone(ctx context.Context, restaurantID, phone string) (*Guest, error) {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return nil, nil
	}

	var g Guest
	err := s.db.QueryRowContext(ctx,
		`SELECT id, restaurant_id, name, phone, email, notes, created_at FROM guests
		 WHERE restaurant_id = ? AND phone = ?`, restaurantID, normalized,
	).Scan(&g.ID, &g.RestaurantID, &g.Name, &g.Phone, &g.Email, &g.Notes, &g.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding guest by phone: %w", err)
	}
	return &g, nil
}

// SearchByName returns guests whose name contains the query, case-insensitive,
// within one restaurant.
func (s *Store) SearchByName(ctx context.Context, restaurantID, name string) ([]Guest, error) {
	pattern := "%" + strings.TrimSpace(name) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, restaurant_id, name, phone, email, notes, created_at FROM guests
		 WHERE restaurant_id = ? AND name LIKE ? COLLATE NOCASE ORDER BY name ASC`,
		restaurantID, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("searching guests: %w", err)
	}
	defer rows.Close()

	var out []Guest
	for rows.Next() {
		var g Guest
		if err := rows.Scan(&g.ID, &g.RestaurantID, &g.Name, &g.Phone, &g.Email, &g.Notes, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning guest: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// List returns all guests of a restaurant ordered by name.
func (s *Store) List(ctx context.Context, restaurantID string) ([]Guest, error) {
	return s.SearchByName(ctx, restaurantID, "")
}

// Update modifies a guest's editable fields.
func (s *Store) Update(ctx context.Context, g Guest) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE guests SET name = ?, phone = ?, email = ?, notes = ? WHERE id = ?`,
		g.Name, NormalizePhone(g.Phone), g.Email, g.Notes, g.ID,
	)
	if err != nil {
		return fmt.Errorf("updating guest: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("guest not found: %s", g.ID)
	}
	return nil
}

// NormalizePhone strips everything but digits, keeping a leading plus.
func NormalizePhone(phone string) string {
	var sb strings.Builder
	for i, r := range phone {
		if unicode.IsDigit(r) || (i == 0 && r == '+') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
