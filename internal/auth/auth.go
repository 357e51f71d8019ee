package auth

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesafina/mesafina/internal/db"
	"github.com/mesafina/mesafina/internal/outcome"
)

// User is a staff member who can sign in to the dashboard.
type User struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session identifies an authenticated staff user.
type Session struct {
	UserID       string `json:"user_id"`
	RestaurantID string `json:"restaurant_id"`
	Role         string `json:"role"`
}

type ctxKey string

const sessionKey ctxKey = "session"

const (
	cookieName    = "mesafina_session"
	sessionMaxAge = 14 * 24 * time.Hour
)

// Store manages staff users and signed session cookies.
type Store struct {
	sc *securecookie.SecureCookie
	db *db.DB
}

// NewStore creates an auth store. The secret seeds both the HMAC and the
// encryption key of the session cookie.
func NewStore(database *db.DB, secret string) *Store {
	hashKey := sha256.Sum256([]byte(secret + ":hash"))
	blockKey := sha256.Sum256([]byte(secret + ":block"))

	sc := securecookie.New(hashKey[:], blockKey[:])
	sc.MaxAge(int(sessionMaxAge.Seconds()))

	return &Store{sc: sc, db: database}
}

// HashPassword hashes a password with bcrypt.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword reports whether pw matches the bcrypt hash.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// CreateUser registers a staff user for a restaurant.
func (s *Store) CreateUser(ctx context.Context, restaurantID, username, password, role string) (*User, error) {
	if username == "" || password == "" {
		return nil, outcome.Validationf("username and password are required")
	}
	if role == "" {
		role = "host"
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := User{
		ID:           uuid.New().String(),
		RestaurantID: restaurantID,
		Username:     username,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO staff_users (id, restaurant_id, username, password_hash, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.RestaurantID, u.Username, hash, u.Role, u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting staff user: %w", err)
	}
	return &u, nil
}

// Authenticate checks credentials and returns the matching user.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var u User
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, restaurant_id, username, password_hash, role, created_at
		 FROM staff_users WHERE username = ?`, username,
	).Scan(&u.ID, &u.RestaurantID, &u.Username, &hash, &u.Role, &u.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, outcome.Validationf("invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("looking up staff user: %w", err)
	}
	if !CheckPassword(hash, password) {
		return nil, outcome.Validationf("invalid credentials")
	}
	return &u, nil
}

// SetSession writes a signed session cookie for the user.
func (s *Store) SetSession(w http.ResponseWriter, r *http.Request, u *User) error {
	sess := Session{UserID: u.ID, RestaurantID: u.RestaurantID, Role: u.Role}
	encoded, err := s.sc.Encode(cookieName, sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int(sessionMaxAge.Seconds()),
	})
	return nil
}

// ClearSession expires the session cookie.
func (s *Store) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// GetSession decodes and validates the session cookie.
func (s *Store) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, false
	}
	var sess Session
	if err := s.sc.Decode(cookieName, c.Value, &sess); err != nil {
		return Session{}, false
	}
	if sess.UserID == "" {
		return Session{}, false
	}
	return sess, true
}

// RequireAuth rejects unauthenticated requests with a 401 and stores the
// session in the request context otherwise.
func (s *Store) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.GetSession(r)
		if !ok {
			http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the session placed by RequireAuth.
func SessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionKey).(Session)
	return sess, ok
}
