package dashboard

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format. The first message of
// a conversation carries restaurant_id and an empty session_id; the engine's
// session ID comes back in every response and must be echoed on later turns.
type chatRequest struct {
	Type         string `json:"type"` // "message"
	SessionID    string `json:"session_id"`
	RestaurantID string `json:"restaurant_id"`
	Locale       string `json:"locale"`
	Content      string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type          string `json:"type"` // "response" or "error"
	SessionID     string `json:"session_id"`
	Content       string `json:"content"`
	Action        string `json:"action,omitempty"`
	ReservationID string `json:"reservation_id,omitempty"`
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("dashboard: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("dashboard: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			d.sendError(conn, "", "invalid message format")
			continue
		}

		if req.Content == "" {
			d.sendError(conn, req.SessionID, "content is required")
			continue
		}

		switch req.Type {
		case "message":
			d.handleChatMessage(conn, r, req)
		default:
			d.sendError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

func (d *Dashboard) handleChatMessage(conn *websocket.Conn, r *http.Request, req chatRequest) {
	if d.engine == nil {
		d.sendError(conn, req.SessionID, "LLM provider not configured")
		return
	}

	ctx := r.Context()
	sessionID := req.SessionID

	if sessionID == "" {
		if req.RestaurantID == "" {
			d.sendError(conn, "", "restaurant_id is required for a new session")
			return
		}
		sess, err := d.sessions.CreateSession(ctx, req.RestaurantID, req.Locale, "widget")
		if err != nil {
			d.sendError(conn, "", "failed to create session: "+err.Error())
			return
		}
		sessionID = sess.ID
	}

	reply, err := d.engine.HandleMessage(ctx, sessionID, req.Content, time.Now().UTC())
	if err != nil {
		d.sendError(conn, sessionID, "processing failed: "+err.Error())
		return
	}

	d.sendResponse(conn, chatResponse{
		Type:          "response",
		SessionID:     sessionID,
		Content:       reply.Text,
		Action:        string(reply.Action),
		ReservationID: reply.ReservationID,
	})
}

func (d *Dashboard) sendResponse(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("dashboard: websocket write: %v", err)
	}
}

func (d *Dashboard) sendError(conn *websocket.Conn, sessionID, message string) {
	resp := chatResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   message,
	}
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("dashboard: websocket write error: %v", err)
	}
}
