package snapshot

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/tree"
)

// ErrNotFound is returned when a requested snapshot does not exist.
// Errors returned by stores wrap it, so test with the standard errors.Is
// or with errors.Is(err, errors.ErrCodeNotFound) from pkg/errors.
var ErrNotFound = errors.New(errors.ErrCodeNotFound, "snapshot not found")

// Snapshot is one stored document.
type Snapshot struct {
	ID        string          `json:"id"`
	RootType  string          `json:"root_type"`
	Hash      string          `json:"hash"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// Info describes a snapshot without its document.
type Info struct {
	ID        string    `json:"id"`
	RootType  string    `json:"root_type"`
	Hash      string    `json:"hash"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists snapshots.
//
// Get returns an error wrapping [ErrNotFound] for unknown ids. Delete of an
// unknown id is not an error. List returns the newest snapshots first.
type Store interface {
	Get(ctx context.Context, id string) (*Snapshot, error)
	Put(ctx context.Context, s *Snapshot) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Info, error)
	Close() error
}

// New wraps a serialized document in a snapshot with a fresh id.
// The document must parse; it is stored compacted and its root "$type"
// becomes RootType.
func New(data []byte) (*Snapshot, error) {
	root, err := tree.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidJSON, err, "parse snapshot")
	}
	var buf bytes.Buffer
	if err := tree.Compact(&buf, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidJSON, err, "compact snapshot")
	}
	return fromTree(buf.Bytes(), root), nil
}

// fromTree builds a snapshot from compact text and its parsed root.
func fromTree(data []byte, root tree.Node) *Snapshot {
	s := &Snapshot{
		ID:        uuid.NewString(),
		Hash:      Hash(data),
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if obj, ok := root.(*tree.Object); ok {
		s.RootType, _ = obj.String("$type")
	}
	return s
}

// Info returns the listing entry for s.
func (s *Snapshot) Info() Info {
	return Info{
		ID:        s.ID,
		RootType:  s.RootType,
		Hash:      s.Hash,
		Size:      len(s.Data),
		CreatedAt: s.CreatedAt,
	}
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func notFound(id string) error {
	return errors.Wrap(errors.ErrCodeNotFound, ErrNotFound, "snapshot %s", id)
}

func checkID(id string) error {
	return errors.ValidateSnapshotID(id)
}

func sortInfos(infos []Info) {
	slices.SortFunc(infos, func(a, b Info) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// encodeSnapshot renders the storage form of s. HTML escaping stays off so
// that Data is stored byte for byte and still matches Hash.
func encodeSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot %s", s.ID)
	}
	return buf.Bytes(), nil
}

func decodeSnapshot(b []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	return &s, nil
}
