package snapshot

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/graphsnap/pkg/errors"
)

// MongoStore keeps one document per snapshot in a collection. The
// serialized graph is stored as a string so the collection stays readable
// from the mongo shell.
type MongoStore struct {
	coll *mongo.Collection
}

// mongoDoc is the stored form of a snapshot.
type mongoDoc struct {
	ID        string    `bson:"_id"`
	RootType  string    `bson:"root_type"`
	Hash      string    `bson:"hash"`
	Size      int       `bson:"size"`
	Data      string    `bson:"data,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// NewMongoStore creates a store over coll. Close disconnects the
// collection's client.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// Get retrieves a snapshot.
func (s *MongoStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "mongo get %s", id)
	}
	return &Snapshot{
		ID:        doc.ID,
		RootType:  doc.RootType,
		Hash:      doc.Hash,
		Data:      []byte(doc.Data),
		CreatedAt: doc.CreatedAt.UTC(),
	}, nil
}

// Put upserts a snapshot.
func (s *MongoStore) Put(ctx context.Context, snap *Snapshot) error {
	if err := checkID(snap.ID); err != nil {
		return err
	}
	doc := mongoDoc{
		ID:        snap.ID,
		RootType:  snap.RootType,
		Hash:      snap.Hash,
		Size:      len(snap.Data),
		Data:      string(snap.Data),
		CreatedAt: snap.CreatedAt,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": snap.ID}, doc, opts); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "mongo put %s", snap.ID)
	}
	return nil
}

// Delete removes a snapshot.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "mongo delete %s", id)
	}
	return nil
}

// List returns snapshot metadata, newest first. Documents are not fetched.
func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	opts := options.Find().
		SetProjection(bson.M{"data": 0}).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "mongo list")
	}
	var docs []mongoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "mongo list")
	}
	infos := make([]Info, len(docs))
	for i, d := range docs {
		infos[i] = Info{
			ID:        d.ID,
			RootType:  d.RootType,
			Hash:      d.Hash,
			Size:      d.Size,
			CreatedAt: d.CreatedAt.UTC(),
		}
	}
	return infos, nil
}

// Close disconnects the client the collection belongs to.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.coll.Database().Client().Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
