package restaurants

import "time"

// Restaurant is a tenant on the platform. Locale drives the language tables
// used by the normalizer and the clarification prompts.
type Restaurant struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Timezone       string    `json:"timezone"`
	Locale         string    `json:"locale"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	PolicyMarkdown string    `json:"policy_markdown,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Table is a physical dining table belonging to a restaurant.
type Table struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurant_id"`
	Label        string `json:"label"`
	Capacity     int    `json:"capacity"`
	Zone         string `json:"zone"`
}
