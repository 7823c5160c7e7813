//go:build integration

package snapshot

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/graphsnap/pkg/config"
)

// Run with: go test -tags integration ./pkg/snapshot/
// Requires GRAPHSNAP_REDIS_ADDR and/or GRAPHSNAP_MONGO_URI.

func TestRedisStoreIntegration(t *testing.T) {
	addr := os.Getenv("GRAPHSNAP_REDIS_ADDR")
	if addr == "" {
		t.Skip("GRAPHSNAP_REDIS_ADDR not set")
	}
	s, err := Open(context.Background(), config.Store{
		Backend:   config.BackendRedis,
		RedisAddr: addr,
		Prefix:    "graphsnap-test:" + uuid.NewString() + ":",
	}, nil)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestMongoStoreIntegration(t *testing.T) {
	uri := os.Getenv("GRAPHSNAP_MONGO_URI")
	if uri == "" {
		t.Skip("GRAPHSNAP_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, config.Store{
		Backend:         config.BackendMongo,
		MongoURI:        uri,
		MongoDatabase:   "graphsnap_test",
		MongoCollection: "snapshots_" + uuid.NewString()[:8],
	}, nil)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}
