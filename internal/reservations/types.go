package reservations

import (
	"time"

	"github.com/mesafina/mesafina/internal/identify"
)

// Status represents the lifecycle stage of a reservation.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusSeated    Status = "seated"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Reservation is a booking for a guest at a restaurant. ConfirmationCode is
// a short code guests quote over the phone, unique within the restaurant.
type Reservation struct {
	ID               string    `json:"id"`
	RestaurantID     string    `json:"restaurant_id"`
	GuestID          string    `json:"guest_id"`
	TableID          string    `json:"table_id,omitempty"`
	ConfirmationCode string    `json:"confirmation_code"`
	ScheduledAt      time.Time `json:"scheduled_at"`
	PartySize        int       `json:"party_size"`
	Status           Status    `json:"status"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// LookupResult pairs a found reservation with what may still be done to it.
type LookupResult struct {
	Reservation Reservation         `json:"reservation"`
	GuestName   string              `json:"guest_name"`
	Mutability  identify.Mutability `json:"mutability"`
}

// ListFilter controls which reservations to return.
type ListFilter struct {
	Status Status
	From   time.Time
	To     time.Time
	Limit  int
}
