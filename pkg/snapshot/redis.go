package snapshot

import (
	"context"
	stderrors "errors"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/graphsnap/pkg/errors"
)

// RedisStore keeps each snapshot as a Redis string under prefix+"snap:"+id
// and tracks ids in the set prefix+"index" for listing.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store over client. The store owns the client and
// closes it on Close.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get retrieves a snapshot.
func (s *RedisStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "redis get %s", id)
	}
	return decodeSnapshot(data)
}

// Put stores a snapshot and adds it to the index in one transaction.
func (s *RedisStore) Put(ctx context.Context, snap *Snapshot) error {
	if err := checkID(snap.ID); err != nil {
		return err
	}
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(snap.ID), data, 0)
		pipe.SAdd(ctx, s.indexKey(), snap.ID)
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "redis put %s", snap.ID)
	}
	return nil
}

// Delete removes a snapshot and its index entry.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "redis delete %s", id)
	}
	return nil
}

// List loads every indexed snapshot. Index entries whose snapshot has
// vanished are skipped.
func (s *RedisStore) List(ctx context.Context) ([]Info, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "redis list")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "redis list")
	}

	infos := make([]Info, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		snap, err := decodeSnapshot([]byte(str))
		if err != nil {
			continue
		}
		infos = append(infos, snap.Info())
	}
	sortInfos(infos)
	return infos, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(id string) string {
	return s.prefix + "snap:" + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
