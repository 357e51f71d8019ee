package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/mesafina/mesafina/internal/disambig"
	"github.com/mesafina/mesafina/internal/guests"
	"github.com/mesafina/mesafina/internal/knowledge"
	"github.com/mesafina/mesafina/internal/llm"
	"github.com/mesafina/mesafina/internal/locale"
	"github.com/mesafina/mesafina/internal/outcome"
	"github.com/mesafina/mesafina/internal/reservations"
	"github.com/mesafina/mesafina/internal/timenorm"
)

// Engine turns guest messages into reservation actions. Each turn runs the
// same pipeline: repair time expressions, resolve any open clarification,
// read the intent, act on it. The model only reads messages; every state
// change goes through the stores with their windows enforced in code.
type Engine struct {
	store        *Store
	reservations *reservations.Store
	guests       *guests.Store
	normalizer   *timenorm.Normalizer
	resolver     *disambig.Resolver
	provider     llm.Provider
	answerer     *knowledge.Answerer // may be nil
	model        string
	temperature  float64
}

// Options configures an Engine.
type Options struct {
	Store        *Store
	Reservations *reservations.Store
	Guests       *guests.Store
	Locales      *locale.Registry
	Provider     llm.Provider
	Answerer     *knowledge.Answerer
	Model        string
	Temperature  float64
}

// NewEngine creates an Engine.
func NewEngine(opts Options) *Engine {
	return &Engine{
		store:        opts.Store,
		reservations: opts.Reservations,
		guests:       opts.Guests,
		normalizer:   timenorm.New(opts.Locales),
		resolver:     disambig.NewResolver(opts.Locales),
		provider:     opts.Provider,
		answerer:     opts.Answerer,
		model:        opts.Model,
		temperature:  opts.Temperature,
	}
}

// HandleMessage processes one guest turn and returns the assistant's reply.
func (e *Engine) HandleMessage(ctx context.Context, sessionID, text string, now time.Time) (*Reply, error) {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, outcome.Validationf("unknown session: %s", sessionID)
	}

	if _, err := e.store.AppendMessage(ctx, sessionID, "user", text); err != nil {
		return nil, err
	}

	pending, err := e.store.LoadPending(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var reply *Reply
	if pending != nil {
		reply, err = e.continueClarification(ctx, sess, pending, text, now)
	} else {
		reply, err = e.handleFreshTurn(ctx, sess, text, now)
	}
	if err != nil {
		return nil, err
	}

	if _, err := e.store.AppendMessage(ctx, sessionID, "assistant", reply.Text); err != nil {
		return nil, err
	}
	return reply, nil
}

// continueClarification feeds the guest reply to the clarification state
// machine and finishes the deferred booking once a name wins.
func (e *Engine) continueClarification(ctx context.Context, sess *ChatSession, pending *disambig.Pending, text string, now time.Time) (*Reply, error) {
	res, err := e.resolver.Resolve(pending, text, sess.Locale, now)
	if err != nil {
		// An empty reply costs no attempt; ask the same question again.
		if outcome.Is(err, outcome.CategoryValidation) {
			return &Reply{
				SessionID: sess.ID,
				Text:      e.resolver.Prompt(pending, sess.Locale),
				Action:    ActionClarification,
			}, nil
		}
		return nil, err
	}

	switch res.Status {
	case disambig.StatusReprompt:
		if err := e.store.SavePending(ctx, sess.ID, res.Pending); err != nil {
			return nil, err
		}
		return &Reply{SessionID: sess.ID, Text: res.Message, Action: ActionClarification}, nil

	case disambig.StatusResolved, disambig.StatusFallback:
		if err := e.store.ClearPending(ctx, sess.ID); err != nil {
			return nil, err
		}
		reply, err := e.finishDeferredBooking(ctx, sess, pending.Payload, res.Choice, res.Value, now)
		if err != nil {
			return nil, err
		}
		if res.Status == disambig.StatusFallback {
			reply.Text = res.Message + " " + reply.Text
		}
		return reply, nil
	}

	return nil, outcome.Systemf("unexpected resolution status %q", res.Status)
}

// handleFreshTurn normalizes the message, reads its intent, and acts on it.
func (e *Engine) handleFreshTurn(ctx context.Context, sess *ChatSession, text string, now time.Time) (*Reply, error) {
	normalized := text
	if timenorm.HasTimePatterns(text) {
		result := e.normalizer.Normalize(text, sess.Locale)
		normalized = result.Message
		for _, c := range result.Changes {
			log.Printf("session %s: normalized %q -> %q (%s, %.2f)", sess.ID, c.Original, c.Normalized, c.Kind, c.Confidence)
		}
	}

	in, err := e.readIntent(ctx, normalized)
	if err != nil {
		return nil, err
	}

	switch in.Intent {
	case "book":
		return e.handleBook(ctx, sess, in, now)
	case "cancel":
		return e.handleCancel(ctx, sess, in, now)
	case "modify":
		return e.handleModify(ctx, sess, in, now)
	case "question":
		return e.handleQuestion(ctx, sess, in)
	default:
		return &Reply{
			SessionID: sess.ID,
			Text:      "Happy to help with a booking, a change, a cancellation, or a question about the restaurant.",
			Action:    ActionNone,
		}, nil
	}
}

// readIntent asks the model to classify the message into a structured intent.
func (e *Engine) readIntent(ctx context.Context, message string) (*intent, error) {
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: intentSystemPrompt},
			{Role: llm.RoleUser, Content: message},
		},
		Temperature: e.temperature,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("reading intent: %w", err)
	}

	raw := strings.TrimSpace(resp.Content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var in intent
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &in); err != nil {
		return nil, fmt.Errorf("parsing intent %q: %w", resp.Content, err)
	}
	return &in, nil
}

func (e *Engine) handleBook(ctx context.Context, sess *ChatSession, in *intent, now time.Time) (*Reply, error) {
	if in.Time == "" {
		return &Reply{SessionID: sess.ID, Text: "What time would you like to come in?", Action: ActionNone}, nil
	}
	if in.GuestName == "" {
		return &Reply{SessionID: sess.ID, Text: "Could I have a name for the reservation?", Action: ActionNone}, nil
	}

	partySize := in.PartySize
	if partySize <= 0 {
		partySize = 2
	}

	// A known phone with a different name on file opens a clarification
	// instead of silently overwriting either name.
	if in.GuestPhone != "" {
		existing, err := e.guests.FindByPhone(ctx, sess.RestaurantID, in.GuestPhone)
		if err != nil {
			return nil, err
		}
		if existing != nil && !strings.EqualFold(strings.TrimSpace(existing.Name), strings.TrimSpace(in.GuestName)) {
			payload := map[string]any{
				"restaurantId": sess.RestaurantID,
				"sessionId":    sess.ID,
				"language":     sess.Locale,
				"date":         in.Date,
				"time":         in.Time,
				"partySize":    strconv.Itoa(partySize),
				"guestPhone":   in.GuestPhone,
			}
			pending, err := disambig.NewPending(existing.Name, in.GuestName, payload, now)
			if err != nil {
				return nil, err
			}
			if err := e.store.SavePending(ctx, sess.ID, pending); err != nil {
				return nil, err
			}
			return &Reply{
				SessionID: sess.ID,
				Text:      e.resolver.Prompt(pending, sess.Locale),
				Action:    ActionClarification,
			}, nil
		}
	}

	return e.book(ctx, sess, in.Date, in.Time, partySize, in.GuestName, in.GuestPhone, now)
}

// finishDeferredBooking completes the booking that was parked behind a name
// clarification, under the chosen name.
func (e *Engine) finishDeferredBooking(ctx context.Context, sess *ChatSession, payload map[string]any, choice disambig.Choice, name string, now time.Time) (*Reply, error) {
	date, _ := payload["date"].(string)
	timeStr, _ := payload["time"].(string)
	phone, _ := payload["guestPhone"].(string)
	sizeStr, _ := payload["partySize"].(string)
	partySize, _ := strconv.Atoi(sizeStr)
	if partySize <= 0 {
		partySize = 2
	}

	// The guest asked to book under a new name: update the record on file.
	if choice == disambig.ChoiceRequested && phone != "" {
		if existing, err := e.guests.FindByPhone(ctx, sess.RestaurantID, phone); err == nil && existing != nil {
			existing.Name = name
			if err := e.guests.Update(ctx, *existing); err != nil {
				return nil, err
			}
		}
	}

	return e.book(ctx, sess, date, timeStr, partySize, name, phone, now)
}

func (e *Engine) book(ctx context.Context, sess *ChatSession, date, timeStr string, partySize int, name, phone string, now time.Time) (*Reply, error) {
	scheduledAt, err := parseWhen(date, timeStr, now)
	if err != nil {
		return &Reply{SessionID: sess.ID, Text: "I could not read that time, could you give it as HH:MM?", Action: ActionNone}, nil
	}

	guest, err := e.findOrCreateGuest(ctx, sess.RestaurantID, name, phone)
	if err != nil {
		return nil, err
	}

	res, err := e.reservations.Create(ctx, reservations.Reservation{
		RestaurantID: sess.RestaurantID,
		GuestID:      guest.ID,
		ScheduledAt:  scheduledAt,
		PartySize:    partySize,
	})
	if err != nil {
		if msg, ok := refusalMessage(err); ok {
			return &Reply{SessionID: sess.ID, Text: msg, Action: ActionNone}, nil
		}
		return nil, err
	}

	return &Reply{
		SessionID:     sess.ID,
		Text:          fmt.Sprintf("Booked for %s, party of %d, on %s at %s. Your confirmation code is %s.", guest.Name, partySize, scheduledAt.Format("Monday, January 2"), scheduledAt.Format("15:04"), res.ConfirmationCode),
		Action:        ActionBooked,
		ReservationID: res.ID,
	}, nil
}

func (e *Engine) handleCancel(ctx context.Context, sess *ChatSession, in *intent, now time.Time) (*Reply, error) {
	result, reply := e.findOne(ctx, sess, in.Identifier, now)
	if reply != nil {
		return reply, nil
	}

	if err := e.reservations.Cancel(ctx, result.Reservation.ID, now); err != nil {
		if msg, ok := refusalMessage(err); ok {
			return &Reply{SessionID: sess.ID, Text: msg, Action: ActionNone}, nil
		}
		return nil, err
	}

	return &Reply{
		SessionID:     sess.ID,
		Text:          fmt.Sprintf("Done, the reservation for %s on %s has been cancelled.", result.GuestName, result.Reservation.ScheduledAt.Format("Monday at 15:04")),
		Action:        ActionCancelled,
		ReservationID: result.Reservation.ID,
	}, nil
}

func (e *Engine) handleModify(ctx context.Context, sess *ChatSession, in *intent, now time.Time) (*Reply, error) {
	if in.NewTime == "" {
		return &Reply{SessionID: sess.ID, Text: "What time should I move it to?", Action: ActionNone}, nil
	}

	result, reply := e.findOne(ctx, sess, in.Identifier, now)
	if reply != nil {
		return reply, nil
	}

	newAt, err := parseWhen(in.NewDate, in.NewTime, now)
	if err != nil {
		return &Reply{SessionID: sess.ID, Text: "I could not read the new time, could you give it as HH:MM?", Action: ActionNone}, nil
	}

	if err := e.reservations.Reschedule(ctx, result.Reservation.ID, newAt, in.PartySize, now); err != nil {
		if msg, ok := refusalMessage(err); ok {
			return &Reply{SessionID: sess.ID, Text: msg, Action: ActionNone}, nil
		}
		return nil, err
	}

	return &Reply{
		SessionID:     sess.ID,
		Text:          fmt.Sprintf("All set, the reservation for %s is now on %s at %s.", result.GuestName, newAt.Format("Monday, January 2"), newAt.Format("15:04")),
		Action:        ActionRescheduled,
		ReservationID: result.Reservation.ID,
	}, nil
}

func (e *Engine) handleQuestion(ctx context.Context, sess *ChatSession, in *intent) (*Reply, error) {
	if e.answerer == nil {
		return &Reply{
			SessionID: sess.ID,
			Text:      "I can take bookings here; for other questions, please call the restaurant directly.",
			Action:    ActionNone,
		}, nil
	}

	question := in.Question
	if question == "" {
		question = "general information"
	}
	answer, _, err := e.answerer.Answer(ctx, sess.RestaurantID, question)
	if err != nil {
		return nil, err
	}
	return &Reply{SessionID: sess.ID, Text: answer, Action: ActionAnswered}, nil
}

// findOne resolves an identifier to exactly one reservation, or returns the
// reply to send instead.
func (e *Engine) findOne(ctx context.Context, sess *ChatSession, identifier string, now time.Time) (*reservations.LookupResult, *Reply) {
	if identifier == "" {
		return nil, &Reply{SessionID: sess.ID, Text: "Could you give me the confirmation code, the phone number, or the name on the reservation?", Action: ActionNone}
	}

	results, err := e.reservations.Lookup(ctx, sess.RestaurantID, identifier, now)
	if err != nil {
		log.Printf("session %s: lookup %q: %v", sess.ID, identifier, err)
		return nil, &Reply{SessionID: sess.ID, Text: "Something went wrong looking that up, please try again.", Action: ActionNone}
	}

	switch len(results) {
	case 0:
		return nil, &Reply{SessionID: sess.ID, Text: "I could not find a reservation under that. Could you double-check the code, phone number, or name?", Action: ActionNone}
	case 1:
		return &results[0], nil
	default:
		var sb strings.Builder
		sb.WriteString("I found more than one upcoming reservation:")
		for _, r := range results {
			fmt.Fprintf(&sb, " %s on %s (code %s);", r.GuestName, r.Reservation.ScheduledAt.Format("Jan 2 15:04"), r.Reservation.ConfirmationCode)
		}
		sb.WriteString(" which one did you mean? The confirmation code is the quickest way.")
		return nil, &Reply{SessionID: sess.ID, Text: sb.String(), Action: ActionNone}
	}
}

func (e *Engine) findOrCreateGuest(ctx context.Context, restaurantID, name, phone string) (*guests.Guest, error) {
	if phone != "" {
		if g, err := e.guests.FindByPhone(ctx, restaurantID, phone); err != nil {
			return nil, err
		} else if g != nil {
			return g, nil
		}
	}
	return e.guests.Create(ctx, guests.Guest{
		RestaurantID: restaurantID,
		Name:         name,
		Phone:        phone,
	})
}

// refusalMessage converts validation and business rule errors into guest
// facing text; system errors stay errors.
func refusalMessage(err error) (string, bool) {
	var oe *outcome.Error
	if !errors.As(err, &oe) {
		return "", false
	}
	switch oe.Category {
	case outcome.CategoryValidation, outcome.CategoryBusinessRule:
		return "I'm sorry, " + oe.Reason + ".", true
	default:
		return "", false
	}
}

// parseWhen combines a YYYY-MM-DD date and an HH:MM time. A missing date
// means the coming occurrence of that time.
func parseWhen(date, timeStr string, now time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", timeStr, err)
	}

	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing date %q: %w", date, err)
		}
		return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	if candidate.Before(now) {
		candidate = candidate.Add(24 * time.Hour)
	}
	return candidate, nil
}
