package reservations

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesafina/mesafina/internal/db"
	"github.com/mesafina/mesafina/internal/guests"
	"github.com/mesafina/mesafina/internal/identify"
	"github.com/mesafina/mesafina/internal/outcome"
)

// codeAttempts bounds how often Create retries on a confirmation code collision.
const codeAttempts = 10

// Store manages persistence of reservations.
type Store struct {
	db     *db.DB
	guests *guests.Store
}

// NewStore creates a new reservation store.
func NewStore(database *db.DB, guestStore *guests.Store) *Store {
	return &Store{db: database, guests: guestStore}
}

// Create books a reservation and assigns it a confirmation code.
func (s *Store) Create(ctx context.Context, res Reservation) (*Reservation, error) {
	if res.GuestID == "" {
		return nil, outcome.Validationf("guest_id is required")
	}
	if res.PartySize <= 0 {
		return nil, outcome.Validationf("party_size must be positive")
	}
	if res.ScheduledAt.IsZero() {
		return nil, outcome.Validationf("scheduled_at is required")
	}

	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.Status == "" {
		res.Status = StatusBooked
	}
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now

	// Confirmation codes are unique per restaurant; retry on collision.
	var lastErr error
	for i := 0; i < codeAttempts; i++ {
		res.ConfirmationCode = newConfirmationCode()
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO reservations (id, restaurant_id, guest_id, table_id, confirmation_code, scheduled_at, party_size, status, notes, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			res.ID, res.RestaurantID, res.GuestID, nullable(res.TableID), res.ConfirmationCode,
			res.ScheduledAt.UTC(), res.PartySize, res.Status, res.Notes, res.CreatedAt, res.UpdatedAt,
		)
		if err == nil {
			return &res, nil
		}
		lastErr = err
		if !strings.Contains(err.Error(), "UNIQUE") {
			break
		}
	}
	return nil, fmt.Errorf("inserting reservation: %w", lastErr)
}

// GetByID retrieves a reservation by ID. Returns nil if not found.
func (s *Store) GetByID(ctx context.Context, id string) (*Reservation, error) {
	row := s.db.QueryRowContext(ctx, selectReservation+` WHERE id = ?`, id)
	return scanReservation(row)
}

// GetByCode retrieves a reservation by confirmation code within one restaurant.
func (s *Store) GetByCode(ctx context.Context, restaurantID, code string) (*Reservation, error) {
	row := s.db.QueryRowContext(ctx,
		selectReservation+` WHERE restaurant_id = ? AND confirmation_code = ?`,
		restaurantID, strings.TrimLeft(strings.TrimSpace(code), "#"),
	)
	return scanReservation(row)
}

// List returns a restaurant's reservations matching the filter, soonest first.
func (s *Store) List(ctx context.Context, restaurantID string, filter ListFilter) ([]Reservation, error) {
	query := selectReservation + ` WHERE restaurant_id = ?`
	args := []interface{}{restaurantID}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if !filter.From.IsZero() {
		query += " AND scheduled_at >= ?"
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		query += " AND scheduled_at < ?"
		args = append(args, filter.To.UTC())
	}

	query += " ORDER BY scheduled_at ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reservations: %w", err)
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		res, err := scanReservationRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// ListByGuest returns a guest's reservations, soonest first.
func (s *Store) ListByGuest(ctx context.Context, guestID string) ([]Reservation, error) {
	rows, err := s.db.QueryContext(ctx,
		selectReservation+` WHERE guest_id = ? ORDER BY scheduled_at ASC`, guestID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing guest reservations: %w", err)
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		res, err := scanReservationRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// Lookup resolves a free-text identifier to upcoming reservations. The
// identifier's digit run picks the strategy: short digit runs are treated as
// confirmation codes, long ones as phone numbers, everything else as a name.
func (s *Store) Lookup(ctx context.Context, restaurantID, identifier string, now time.Time) ([]LookupResult, error) {
	q := identify.NewQuery(identifier)

	var found []Reservation
	switch q.Kind {
	case identify.KindConfirmation:
		res, err := s.GetByCode(ctx, restaurantID, q.Raw)
		if err != nil {
			return nil, err
		}
		if res != nil {
			found = []Reservation{*res}
		}

	case identify.KindPhone:
		g, err := s.guests.FindByPhone(ctx, restaurantID, q.Raw)
		if err != nil {
			return nil, err
		}
		if g != nil {
			found, err = s.upcomingForGuest(ctx, g.ID, now)
			if err != nil {
				return nil, err
			}
		}

	case identify.KindName:
		matches, err := s.guests.SearchByName(ctx, restaurantID, q.Raw)
		if err != nil {
			return nil, err
		}
		for _, g := range matches {
			rs, err := s.upcomingForGuest(ctx, g.ID, now)
			if err != nil {
				return nil, err
			}
			found = append(found, rs...)
		}
	}

	results := make([]LookupResult, 0, len(found))
	for _, res := range found {
		name := ""
		if g, err := s.guests.GetByID(ctx, res.GuestID); err == nil && g != nil {
			name = g.Name
		}
		results = append(results, LookupResult{
			Reservation: res,
			GuestName:   name,
			Mutability:  identify.ComputeMutability(res.ScheduledAt, now),
		})
	}
	return results, nil
}

// Reschedule moves a booked reservation to a new time. The modification
// window is enforced against the current scheduled time.
func (s *Store) Reschedule(ctx context.Context, id string, newTime time.Time, partySize int, now time.Time) error {
	res, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if res == nil {
		return outcome.Validationf("reservation not found: %s", id)
	}
	if res.Status != StatusBooked {
		return outcome.BusinessRulef("only booked reservations can be changed, this one is %s", res.Status)
	}

	m := identify.ComputeMutability(res.ScheduledAt, now)
	if !m.CanModify {
		return outcome.BusinessRulef("reservations can no longer be changed within %.0f hours of the reserved time", identify.ModifyWindowHours)
	}

	if partySize <= 0 {
		partySize = res.PartySize
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE reservations SET scheduled_at = ?, party_size = ?, updated_at = ? WHERE id = ?`,
		newTime.UTC(), partySize, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("rescheduling reservation: %w", err)
	}
	return nil
}

// Cancel cancels a booked reservation, enforcing the cancellation window.
func (s *Store) Cancel(ctx context.Context, id string, now time.Time) error {
	res, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if res == nil {
		return outcome.Validationf("reservation not found: %s", id)
	}
	if res.Status != StatusBooked {
		return outcome.BusinessRulef("only booked reservations can be cancelled, this one is %s", res.Status)
	}

	m := identify.ComputeMutability(res.ScheduledAt, now)
	if !m.CanCancel {
		return outcome.BusinessRulef("reservations can no longer be cancelled within %.0f hours of the reserved time", identify.CancelWindowHours)
	}

	return s.setStatus(ctx, id, StatusCancelled)
}

// UpdateStatus moves a reservation through its lifecycle without window
// checks. This is the staff override path; guest-facing flows go through
// Reschedule and Cancel.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) error {
	switch status {
	case StatusBooked, StatusSeated, StatusCompleted, StatusCancelled, StatusNoShow:
	default:
		return outcome.Validationf("unknown status %q", status)
	}
	return s.setStatus(ctx, id, status)
}

func (s *Store) setStatus(ctx context.Context, id string, status Status) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating reservation status: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return outcome.Validationf("reservation not found: %s", id)
	}
	return nil
}

func (s *Store) upcomingForGuest(ctx context.Context, guestID string, now time.Time) ([]Reservation, error) {
	rows, err := s.db.QueryContext(ctx,
		selectReservation+` WHERE guest_id = ? AND status = ? AND scheduled_at >= ? ORDER BY scheduled_at ASC`,
		guestID, StatusBooked, now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing upcoming reservations: %w", err)
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		res, err := scanReservationRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

const selectReservation = `SELECT id, restaurant_id, guest_id, table_id, confirmation_code, scheduled_at, party_size, status, notes, created_at, updated_at FROM reservations`

func scanReservation(row *sql.Row) (*Reservation, error) {
	var res Reservation
	var tableID sql.NullString
	err := row.Scan(&res.ID, &res.RestaurantID, &res.GuestID, &tableID, &res.ConfirmationCode,
		&res.ScheduledAt, &res.PartySize, &res.Status, &res.Notes, &res.CreatedAt, &res.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting reservation: %w", err)
	}
	res.TableID = tableID.String
	return &res, nil
}

func scanReservationRows(rows *sql.Rows) (*Reservation, error) {
	var res Reservation
	var tableID sql.NullString
	err := rows.Scan(&res.ID, &res.RestaurantID, &res.GuestID, &tableID, &res.ConfirmationCode,
		&res.ScheduledAt, &res.PartySize, &res.Status, &res.Notes, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scanning reservation: %w", err)
	}
	res.TableID = tableID.String
	return &res, nil
}

// newConfirmationCode produces a four digit code. Codes are short on purpose
// so guests can read them back over the phone.
func newConfirmationCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "0000"
	}
	return fmt.Sprintf("%04d", n.Int64())
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// CountUpcoming returns the number of booked reservations at or after now,
// across all restaurants.
func (s *Store) CountUpcoming(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE status = ? AND scheduled_at >= ?`,
		StatusBooked, now,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting upcoming reservations: %w", err)
	}
	return n, nil
}

// Recent returns the most recently created reservations across all
// restaurants, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Reservation, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		selectReservation+` ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recent reservations: %w", err)
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		res, err := scanReservationRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}
