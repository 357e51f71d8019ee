package guests

import "time"

// Guest is a diner known to one restaurant. Guests are tenant-scoped; the
// same person at two restaurants is two guest records.
type Guest struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
