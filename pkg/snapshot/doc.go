// Package snapshot stores serialized object graphs under generated ids.
//
// # Overview
//
// A [Snapshot] is a serialized document plus the metadata needed to find
// and verify it: a UUID, the wire tag of the root record, a SHA-256 hash of
// the document and a creation time. [Save] and [Load] take care of the
// serialization:
//
//	store, err := snapshot.Open(ctx, cfg.Store)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	snap, err := snapshot.Save(ctx, store, scene)
//	// ...
//	scene, err = snapshot.Load[*Scene](ctx, store, snap.ID)
//
// # Backends
//
//   - [FileStore]: one JSON file per snapshot in hashed subdirectories
//   - [RedisStore]: Redis strings plus an index set
//   - [MongoStore]: one document per snapshot in a collection
//   - [BadgerStore]: an embedded Badger key-value database
//   - [NullStore]: discards everything
//
// [Open] builds a backend from configuration and instruments it with the
// store hooks from pkg/observability.
//
// # Identifiers
//
// Snapshot ids end up in file names and database keys; every backend
// validates them with errors.ValidateSnapshotID before use.
package snapshot
