package replica

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	journalDatabase   = "expertlog"
	journalCollection = "replication_failures"
)

// Collection is the part of *mongo.Collection the journal needs.
type Collection interface {
	InsertOne(
		ctx context.Context,
		document interface{},
		opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// MongoJournal is a Sink that records one document per failure in MongoDB,
// for alerting and manual reconciliation.
type MongoJournal struct {
	coll Collection
	now  func() time.Time
}

// NewMongoJournal returns a journal writing to coll.
func NewMongoJournal(coll Collection) *MongoJournal {
	return &MongoJournal{coll: coll, now: time.Now}
}

// ConnectMongoJournal connects to uri and returns a journal on the
// replication_failures collection plus a function that disconnects.
func ConnectMongoJournal(ctx context.Context, uri string) (*MongoJournal, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(journalDatabase).Collection(journalCollection)
	return NewMongoJournal(coll), client.Disconnect, nil
}

// ReplicationFailed implements Sink.
func (j *MongoJournal) ReplicationFailed(ctx context.Context, perr *PartialReplicationError) error {
	doc := bson.D{
		{Key: "entity", Value: string(perr.Change.Entity)},
		{Key: "op", Value: string(perr.Change.Op)},
		{Key: "recordId", Value: perr.Change.ID.String()},
		{Key: "secondary", Value: perr.Secondary},
		{Key: "error", Value: perr.Err.Error()},
		{Key: "occurredAt", Value: j.now().UTC()},
	}
	if _, err := j.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("journal insert: %w", err)
	}
	return nil
}
