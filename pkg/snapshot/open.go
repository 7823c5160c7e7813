package snapshot

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/graphsnap/pkg/config"
	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/observability"
)

// Open builds the backend cfg selects, checks that it is reachable, and
// instruments it with the registered store hooks. logger may be nil.
func Open(ctx context.Context, cfg config.Store, logger *log.Logger) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendFile, "":
		s, err = NewFileStore(cfg.Dir)

	case config.BackendNull:
		s = NewNullStore()

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err = client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			err = errors.Wrap(errors.ErrCodeInternal, err, "connect to redis at %s", cfg.RedisAddr)
			break
		}
		s = NewRedisStore(client, cfg.Prefix)

	case config.BackendMongo:
		var client *mongo.Client
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			err = errors.Wrap(errors.ErrCodeInternal, err, "connect to mongo")
			break
		}
		if err = client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			err = errors.Wrap(errors.ErrCodeInternal, err, "connect to mongo")
			break
		}
		s = NewMongoStore(client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection))

	case config.BackendBadger:
		db, openErr := OpenBadger(BadgerConfig{Dir: cfg.BadgerDir, Logger: logger})
		if openErr != nil {
			err = openErr
			break
		}
		s = NewBadgerStore(db, cfg.Prefix)

	default:
		err = errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug("snapshot store opened", "backend", backendName(cfg.Backend))
	}
	return Instrument(s, backendName(cfg.Backend)), nil
}

func backendName(b string) string {
	if b == "" {
		return config.BackendFile
	}
	return b
}

// Instrument wraps s so that every operation is reported to the store
// hooks in pkg/observability under the given backend name.
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (s *instrumented) Get(ctx context.Context, id string) (*Snapshot, error) {
	snap, err := s.Store.Get(ctx, id)
	if err == nil || errors.Is(err, errors.ErrCodeNotFound) {
		observability.Store().OnGet(ctx, s.backend, err == nil)
	}
	return snap, err
}

func (s *instrumented) Put(ctx context.Context, snap *Snapshot) error {
	err := s.Store.Put(ctx, snap)
	if err == nil {
		observability.Store().OnPut(ctx, s.backend, len(snap.Data))
	}
	return err
}

func (s *instrumented) Delete(ctx context.Context, id string) error {
	err := s.Store.Delete(ctx, id)
	if err == nil {
		observability.Store().OnDelete(ctx, s.backend)
	}
	return err
}
