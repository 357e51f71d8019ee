package db

import "testing"

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	// Every table in the schema should exist.
	for _, table := range []string{
		"restaurants", "dining_tables", "guests", "reservations",
		"chat_sessions", "chat_messages", "pending_disambiguations", "staff_users",
	} {
		var name string
		err := d.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	_, err = d.Exec(`INSERT INTO guests (id, restaurant_id, name) VALUES ('g1', 'missing', 'X')`)
	if err == nil {
		t.Error("expected foreign key violation for unknown restaurant")
	}
}
