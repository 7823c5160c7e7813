package snapshot

import (
	"context"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/serial"
	"github.com/matzehuels/graphsnap/pkg/tree"
)

// Save serializes v with the default registry and stores the result as a
// new snapshot.
func Save(ctx context.Context, s Store, v any, opts ...serial.Option) (*Snapshot, error) {
	root, err := serial.New(nil, opts...).Encode(v)
	if err != nil {
		return nil, err
	}
	data, err := tree.Marshal(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write document")
	}
	snap := fromTree(data, root)
	if err := s.Put(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Load fetches a snapshot and deserializes it with the default registry.
func Load[T any](ctx context.Context, s Store, id string, opts ...serial.Option) (T, error) {
	snap, err := s.Get(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return serial.Deserialize[T](string(snap.Data), opts...)
}
