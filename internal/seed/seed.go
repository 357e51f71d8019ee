package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/mesafina/mesafina/internal/auth"
	"github.com/mesafina/mesafina/internal/db"
	"github.com/mesafina/mesafina/internal/guests"
	"github.com/mesafina/mesafina/internal/progress"
	"github.com/mesafina/mesafina/internal/reservations"
	"github.com/mesafina/mesafina/internal/restaurants"
)

// Result summarizes what a seeding run created.
type Result struct {
	RestaurantID   string
	RestaurantName string
	Tables         int
	Guests         int
	Reservations   int
	StaffUsername  string
	StaffPassword  string
}

const demoPolicy = `# House Policies

Welcome to Trattoria del Ponte. We hold tables for 15 minutes past the
reserved time.

## Cancellations

Please cancel at least two hours before your reservation. Same-day changes
need four hours notice.

## Large parties

Parties of seven or more should call us directly so we can arrange seating.

## Dietary needs

Our kitchen handles gluten-free and vegetarian requests; let us know when
booking.
`

var demoTables = []restaurants.Table{
	{Label: "T1", Capacity: 2, Zone: "window"},
	{Label: "T2", Capacity: 2, Zone: "window"},
	{Label: "T3", Capacity: 4, Zone: "main"},
	{Label: "T4", Capacity: 4, Zone: "main"},
	{Label: "T5", Capacity: 6, Zone: "main"},
	{Label: "T6", Capacity: 8, Zone: "terrace"},
}

var demoGuests = []guests.Guest{
	{Name: "Elena Moretti", Phone: "+39 055 210 441"},
	{Name: "James Whitfield", Phone: "+1 212 555 0184"},
	{Name: "Sofia Lindqvist", Phone: "+46 8 555 123 45"},
	{Name: "Karl Brenner", Phone: "+49 30 555 9911"},
}

// Run populates the database with a demo restaurant, its tables, a handful of
// guests, and upcoming reservations. It is idempotent only in the weak sense
// that rerunning creates a second demo restaurant rather than failing.
func Run(ctx context.Context, database *db.DB, secret string, reporter progress.Reporter) (*Result, error) {
	restStore := restaurants.NewStore(database)
	guestStore := guests.NewStore(database)
	resvStore := reservations.NewStore(database, guestStore)
	userStore := auth.NewStore(database, secret)

	steps := 1 + len(demoTables) + len(demoGuests) + len(demoGuests) + 1
	reporter.Start(steps)
	defer reporter.Finish()
	step := 0

	rest, err := restStore.Create(ctx, restaurants.Restaurant{
		Name:     "Trattoria del Ponte",
		Timezone: "Europe/Rome",
		Locale:   "en",
		Phone:    "+39 055 210 000",
		Address:  "Borgo San Jacopo 12, Firenze",
	})
	if err != nil {
		return nil, fmt.Errorf("creating demo restaurant: %w", err)
	}
	if err := restStore.SetPolicy(ctx, rest.ID, demoPolicy); err != nil {
		return nil, fmt.Errorf("setting demo policy: %w", err)
	}
	step++
	reporter.Update(step, "restaurant "+rest.Name)

	for _, tbl := range demoTables {
		tbl.RestaurantID = rest.ID
		if _, err := restStore.AddTable(ctx, tbl); err != nil {
			return nil, fmt.Errorf("adding table %s: %w", tbl.Label, err)
		}
		step++
		reporter.Update(step, "table "+tbl.Label)
	}

	now := time.Now().UTC()
	var created []guests.Guest
	for _, g := range demoGuests {
		g.RestaurantID = rest.ID
		saved, err := guestStore.Create(ctx, g)
		if err != nil {
			return nil, fmt.Errorf("creating guest %s: %w", g.Name, err)
		}
		created = append(created, *saved)
		step++
		reporter.Update(step, "guest "+saved.Name)
	}

	// One upcoming reservation per guest, spread over the coming days.
	resvCount := 0
	for i, g := range created {
		day := now.AddDate(0, 0, i+1)
		when := time.Date(day.Year(), day.Month(), day.Day(), 19, 0, 0, 0, time.UTC)
		if _, err := resvStore.Create(ctx, reservations.Reservation{
			RestaurantID: rest.ID,
			GuestID:      g.ID,
			ScheduledAt:  when,
			PartySize:    2 + i%4,
		}); err != nil {
			return nil, fmt.Errorf("creating reservation for %s: %w", g.Name, err)
		}
		resvCount++
		step++
		reporter.Update(step, "reservation for "+g.Name)
	}

	const username, password = "demo", "demo-password"
	if _, err := userStore.CreateUser(ctx, rest.ID, username, password, "manager"); err != nil {
		return nil, fmt.Errorf("creating staff user: %w", err)
	}
	step++
	reporter.Update(step, "staff user "+username)

	return &Result{
		RestaurantID:   rest.ID,
		RestaurantName: rest.Name,
		Tables:         len(demoTables),
		Guests:         len(created),
		Reservations:   resvCount,
		StaffUsername:  username,
		StaffPassword:  password,
	}, nil
}
