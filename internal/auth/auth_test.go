package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mesafina/mesafina/internal/db"
	"github.com/mesafina/mesafina/internal/outcome"
	"github.com/mesafina/mesafina/internal/restaurants"
)

func setupTest(t *testing.T) (*Store, string) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	rest, err := restaurants.NewStore(database).Create(context.Background(), restaurants.Restaurant{Name: "Staffed"})
	if err != nil {
		t.Fatalf("creating restaurant: %v", err)
	}
	return NewStore(database, "test-secret"), rest.ID
}

func TestCreateAndAuthenticate(t *testing.T) {
	store, restID := setupTest(t)
	ctx := context.Background()

	u, err := store.CreateUser(ctx, restID, "maria", "hunter2hunter2", "manager")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Role != "manager" {
		t.Errorf("role = %q", u.Role)
	}

	got, err := store.Authenticate(ctx, "maria", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("authenticated wrong user: %+v", got)
	}

	_, err = store.Authenticate(ctx, "maria", "wrong")
	if !outcome.Is(err, outcome.CategoryValidation) {
		t.Errorf("wrong password: got %v, want validation error", err)
	}

	_, err = store.Authenticate(ctx, "nobody", "whatever")
	if !outcome.Is(err, outcome.CategoryValidation) {
		t.Errorf("unknown user: got %v, want validation error", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "other") {
		t.Error("wrong password accepted")
	}
}

func TestSessionCookieRoundTrip(t *testing.T) {
	store, restID := setupTest(t)

	u, err := store.CreateUser(context.Background(), restID, "host1", "longenoughpw", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := store.SetSession(rec, req, u); err != nil {
		t.Fatalf("SetSession: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	// Replay the cookie on a new request.
	req2 := httptest.NewRequest(http.MethodGet, "/me", nil)
	req2.AddCookie(cookies[0])

	sess, ok := store.GetSession(req2)
	if !ok {
		t.Fatal("session not recognized")
	}
	if sess.UserID != u.ID || sess.RestaurantID != restID {
		t.Errorf("session = %+v", sess)
	}
	if sess.Role != "host" {
		t.Errorf("expected default role host, got %q", sess.Role)
	}
}

func TestTamperedCookieRejected(t *testing.T) {
	store, _ := setupTest(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "tampered-value"})

	if _, ok := store.GetSession(req); ok {
		t.Error("tampered cookie accepted")
	}
}

func TestRequireAuthMiddleware(t *testing.T) {
	store, restID := setupTest(t)

	u, _ := store.CreateUser(context.Background(), restID, "guard", "longenoughpw", "")

	handler := store.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok || sess.UserID != u.ID {
			t.Errorf("context session = %+v, ok = %v", sess, ok)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	// Without a cookie.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rec.Code)
	}

	// With a valid cookie.
	loginRec := httptest.NewRecorder()
	store.SetSession(loginRec, httptest.NewRequest(http.MethodPost, "/login", nil), u)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(loginRec.Result().Cookies()[0])
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("authenticated status = %d, want 204", rec.Code)
	}
}

func TestLoginRoute(t *testing.T) {
	store, restID := setupTest(t)

	store.CreateUser(context.Background(), restID, "router", "longenoughpw", "")

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	body := `{"username":"router","password":"longenoughpw"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("no session cookie set")
	}

	// Wrong password.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"router","password":"bad"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}
}
