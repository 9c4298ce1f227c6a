package publish

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/stratum/pkg/errors"
)

// Default MongoDB names.
const (
	DefaultDatabase   = "stratum"
	DefaultCollection = "reports"
)

// MongoSink upserts one document per analysed network, keyed by graph hash,
// so re-publishing an unchanged network replaces its previous report.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSink connects to uri. Empty database or collection names take the
// defaults.
func NewMongoSink(ctx context.Context, uri, database, collection string) (*MongoSink, error) {
	if err := errors.ValidateURI(uri, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackend, err, "connect to mongodb")
	}
	return &MongoSink{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Publish implements Sink.
func (s *MongoSink) Publish(ctx context.Context, b *Bundle) error {
	if err := b.check(); err != nil {
		return err
	}
	doc, err := Document(b, time.Now().UTC())
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx,
		bson.M{"_id": b.Report.GraphHash},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBackend, err, "upsert report %s", b.Report.GraphHash)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Document converts a bundle into the stored document: the report's JSON
// fields, keyed by graph hash, plus the enriched problem rows.
func Document(b *Bundle, publishedAt time.Time) (bson.M, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if b.Report.GraphHash == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "report has no graph hash")
	}
	data, err := json.Marshal(b.Report)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode report")
	}
	var doc bson.M
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "convert report")
	}

	routes := b.Routes()
	problems := make(bson.A, len(b.Problems))
	for i := range b.Problems {
		row := bson.M{}
		for _, c := range b.Problems[i].Columns {
			row[c.Name] = c.Value
		}
		row["route"] = string(routes[i])
		problems[i] = row
	}

	doc["_id"] = b.Report.GraphHash
	doc["problems"] = problems
	doc["published_at"] = publishedAt
	return doc, nil
}

var _ Sink = (*MongoSink)(nil)
