package snapshot

import "context"

// NullStore is a no-op store that never keeps anything.
// Useful for testing or when persistence should be disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() *NullStore {
	return &NullStore{}
}

// Get always reports a missing snapshot.
func (s *NullStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return nil, notFound(id)
}

// Put does nothing.
func (s *NullStore) Put(ctx context.Context, snap *Snapshot) error {
	return checkID(snap.ID)
}

// Delete does nothing.
func (s *NullStore) Delete(ctx context.Context, id string) error {
	return checkID(id)
}

// List always returns an empty listing.
func (s *NullStore) List(ctx context.Context) ([]Info, error) {
	return nil, nil
}

// Close does nothing.
func (s *NullStore) Close() error {
	return nil
}

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
