package seed

import (
	"context"
	"testing"
	"time"

	"github.com/mesafina/mesafina/internal/auth"
	"github.com/mesafina/mesafina/internal/db"
	"github.com/mesafina/mesafina/internal/guests"
	"github.com/mesafina/mesafina/internal/reservations"
	"github.com/mesafina/mesafina/internal/restaurants"
)

// nopReporter keeps seed output out of test logs.
type nopReporter struct{}

func (nopReporter) Start(int)          {}
func (nopReporter) Update(int, string) {}
func (nopReporter) Finish()            {}

func TestRun(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	ctx := context.Background()

	result, err := Run(ctx, database, "seed-secret", nopReporter{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	rest, err := restaurants.NewStore(database).GetByID(ctx, result.RestaurantID)
	if err != nil || rest == nil {
		t.Fatalf("demo restaurant missing: %v", err)
	}
	if rest.PolicyMarkdown == "" {
		t.Error("demo restaurant has no policy")
	}

	tables, err := restaurants.NewStore(database).ListTables(ctx, result.RestaurantID)
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if len(tables) != result.Tables {
		t.Errorf("tables = %d, want %d", len(tables), result.Tables)
	}

	guestStore := guests.NewStore(database)
	resvStore := reservations.NewStore(database, guestStore)
	upcoming, err := resvStore.CountUpcoming(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("CountUpcoming: %v", err)
	}
	if upcoming != result.Reservations {
		t.Errorf("upcoming = %d, want %d", upcoming, result.Reservations)
	}

	// The demo staff login works.
	userStore := auth.NewStore(database, "seed-secret")
	if _, err := userStore.Authenticate(ctx, result.StaffUsername, result.StaffPassword); err != nil {
		t.Errorf("demo staff login failed: %v", err)
	}
}

func TestRunTwiceCreatesSecondRestaurant(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	ctx := context.Background()

	if _, err := Run(ctx, database, "seed-secret", nopReporter{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// The second run fails on the unique staff username, not on the
	// restaurant data.
	if _, err := Run(ctx, database, "seed-secret", nopReporter{}); err == nil {
		t.Error("expected second run to fail on the duplicate staff username")
	}

	n, err := restaurants.NewStore(database).Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("restaurants = %d, want 2", n)
	}
}
