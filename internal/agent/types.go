package agent

import "time"

// ChatSession is one guest conversation with a restaurant's assistant.
type ChatSession struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Locale       string    `json:"locale"`
	Channel      string    `json:"channel"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChatMessage is a single message within a session.
type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Action names what the engine did as a result of a guest turn.
type Action string

const (
	ActionNone          Action = "none"
	ActionBooked        Action = "booked"
	ActionCancelled     Action = "cancelled"
	ActionRescheduled   Action = "rescheduled"
	ActionClarification Action = "clarification"
	ActionAnswered      Action = "answered"
)

// Reply is the engine's response to one guest message.
type Reply struct {
	SessionID     string `json:"session_id"`
	Text          string `json:"text"`
	Action        Action `json:"action"`
	ReservationID string `json:"reservation_id,omitempty"`
}

// intent is the structured reading of a guest message produced by the LLM.
type intent struct {
	Intent     string `json:"intent"`
	Date       string `json:"date,omitempty"`
	Time       string `json:"time,omitempty"`
	PartySize  int    `json:"party_size,omitempty"`
	GuestName  string `json:"guest_name,omitempty"`
	GuestPhone string `json:"guest_phone,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	NewDate    string `json:"new_date,omitempty"`
	NewTime    string `json:"new_time,omitempty"`
	Question   string `json:"question,omitempty"`
}
