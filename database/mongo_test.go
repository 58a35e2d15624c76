package database

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Integration tests against a real deployment. Skipped unless
// MONGO_TEST_URI is set, e.g. mongodb://localhost:27017.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" || testing.Short() {
		t.Skip("skipping mongo integration test: MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	n := 0
	runStoreSuite(t, func(t *testing.T) Store {
		n++
		name := fmt.Sprintf("restaurant_test_%d_%d", time.Now().UnixNano(), n)
		s := NewMongoStore(client, name, false)
		if err := s.Migrate(context.Background()); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		t.Cleanup(func() { _ = client.Database(name).Drop(context.Background()) })
		return s
	})
}
