package restaurants

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesafina/mesafina/internal/db"
)

// Store manages persistence of restaurants and their tables.
type Store struct {
	db *db.DB
}

// NewStore creates a new restaurant store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create adds a new restaurant.
func (s *Store) Create(ctx context.Context, rest Restaurant) (*Restaurant, error) {
	if rest.ID == "" {
		rest.ID = uuid.New().String()
	}
	if rest.Timezone == "" {
		rest.Timezone = "UTC"
	}
	if rest.Locale == "" {
		rest.Locale = "en"
	}
	now := time.Now().UTC()
	rest.CreatedAt = now
	rest.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO restaurants (id, name, timezone, locale, phone, address, policy_markdown, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rest.ID, rest.Name, rest.Timezone, rest.Locale, rest.Phone, rest.Address, rest.PolicyMarkdown, rest.CreatedAt, rest.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting restaurant: %w", err)
	}
	return &rest, nil
}

// GetByID retrieves a restaurant by its ID. Returns nil if not found.
func (s *Store) GetByID(ctx context.Context, id string) (*Restaurant, error) {
	var rest Restaurant
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, timezone, locale, phone, address, policy_markdown, created_at, updated_at
		 FROM restaurants WHERE id = ?`, id,
	).Scan(&rest.ID, &rest.Name, &rest.Timezone, &rest.Locale, &rest.Phone, &rest.Address, &rest.PolicyMarkdown, &rest.CreatedAt, &rest.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting restaurant: %w", err)
	}
	return &rest, nil
}

// List returns all restaurants ordered by name.
func (s *Store) List(ctx context.Context) ([]Restaurant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, timezone, locale, phone, address, policy_markdown, created_at, updated_at
		 FROM restaurants ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing restaurants: %w", err)
	}
	defer rows.Close()

	var out []Restaurant
	for rows.Next() {
		var rest Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.Timezone, &rest.Locale, &rest.Phone, &rest.Address, &rest.PolicyMarkdown, &rest.CreatedAt, &rest.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning restaurant: %w", err)
		}
		out = append(out, rest)
	}
	return out, rows.Err()
}

// Update modifies a restaurant's editable fields.
func (s *Store) Update(ctx context.Context, rest Restaurant) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE restaurants SET name = ?, timezone = ?, locale = ?, phone = ?, address = ?, updated_at = ?
		 WHERE id = ?`,
		rest.Name, rest.Timezone, rest.Locale, rest.Phone, rest.Address, now, rest.ID,
	)
	if err != nil {
		return fmt.Errorf("updating restaurant: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("restaurant not found: %s", rest.ID)
	}
	return nil
}

// SetPolicy replaces a restaurant's policy markdown.
func (s *Store) SetPolicy(ctx context.Context, id, markdown string) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE restaurants SET policy_markdown = ?, updated_at = ? WHERE id = ?`,
		markdown, now, id,
	)
	if err != nil {
		return fmt.Errorf("updating policy: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("restaurant not found: %s", id)
	}
	return nil
}

// Delete removes a restaurant and, via foreign keys, everything under it.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM restaurants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting restaurant: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("restaurant not found: %s", id)
	}
	return nil
}

// AddTable adds a dining table to a restaurant.
func (s *Store) AddTable(ctx context.Context, table Table) (*Table, error) {
	if table.ID == "" {
		table.ID = uuid.New().String()
	}
	if table.Zone == "" {
		table.Zone = "main"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dining_tables (id, restaurant_id, label, capacity, zone) VALUES (?, ?, ?, ?, ?)`,
		table.ID, table.RestaurantID, table.Label, table.Capacity, table.Zone,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting table: %w", err)
	}
	return &table, nil
}

// ListTables returns a restaurant's tables ordered by label.
func (s *Store) ListTables(ctx context.Context, restaurantID string) ([]Table, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, restaurant_id, label, capacity, zone FROM dining_tables
		 WHERE restaurant_id = ? ORDER BY label ASC`, restaurantID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var out []Table
	for rows.Next() {
		var table Table
		if err := rows.Scan(&table.ID, &table.RestaurantID, &table.Label, &table.Capacity, &table.Zone); err != nil {
			return nil, fmt.Errorf("scanning table: %w", err)
		}
		out = append(out, table)
	}
	return out, rows.Err()
}

// Count returns the number of restaurants on the platform.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM restaurants`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting restaurants: %w", err)
	}
	return n, nil
}
