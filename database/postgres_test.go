package database

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Integration tests against a scratch database. Skipped unless PG_TEST_DSN
// is set. Every table is truncated before each case.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("PG_TEST_DSN")
	if dsn == "" || testing.Short() {
		t.Skip("skipping postgres integration test: PG_TEST_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	runStoreSuite(t, func(t *testing.T) Store {
		s := NewPostgresStore(db)
		ctx := context.Background()
		if err := s.Migrate(ctx); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		if _, err := db.ExecContext(ctx, `TRUNCATE users, menu, reviews, carts, payments`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return s
	})
}

func TestIDHelpers(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	back, err := parseIDs(hexIDs(ids))
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 || back[0] != ids[0] || back[1] != ids[1] {
		t.Errorf("parseIDs(hexIDs(ids)) = %v, want %v", back, ids)
	}
	if _, err := parseIDs([]string{"nothex"}); err == nil {
		t.Error("expected error for malformed id")
	}

	var dst primitive.ObjectID
	if err := (scanID{&dst}).Scan([]byte(ids[0].Hex())); err != nil || dst != ids[0] {
		t.Errorf("scanID.Scan = %v, dst = %v", err, dst)
	}
	if err := (scanID{&dst}).Scan(42); err == nil {
		t.Error("expected error scanning int id")
	}
}
