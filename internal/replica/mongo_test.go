package replica

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/roach88/expertlog/internal/record"
)

// mockCollection lets each test decide what InsertOne does.
type mockCollection struct {
	InsertOneFunc func(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

func (m *mockCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	return m.InsertOneFunc(ctx, document, opts...)
}

func TestMongoJournal_ReplicationFailed(t *testing.T) {
	var got bson.D
	coll := &mockCollection{
		InsertOneFunc: func(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
			got = document.(bson.D)
			return &mongo.InsertOneResult{InsertedID: "x"}, nil
		},
	}
	j := NewMongoJournal(coll)
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	j.now = func() time.Time { return at }

	perr := &PartialReplicationError{
		Change:    Change{Op: OpInsert, Entity: record.EntityCamp, ID: record.SerialID(42)},
		Secondary: "secondary",
		Err:       errors.New("connection refused"),
	}
	require.NoError(t, j.ReplicationFailed(context.Background(), perr))

	want := bson.D{
		{Key: "entity", Value: "expert_camp"},
		{Key: "op", Value: "insert"},
		{Key: "recordId", Value: "42"},
		{Key: "secondary", Value: "secondary"},
		{Key: "error", Value: "connection refused"},
		{Key: "occurredAt", Value: at},
	}
	assert.Equal(t, want, got)
}

func TestMongoJournal_InsertError(t *testing.T) {
	coll := &mockCollection{
		InsertOneFunc: func(context.Context, interface{}, ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
			return nil, errors.New("not primary")
		},
	}
	perr := &PartialReplicationError{
		Change: Change{Op: OpDelete, Entity: record.EntityLog, ID: record.SerialID(1)},
		Err:    errors.New("boom"),
	}
	err := NewMongoJournal(coll).ReplicationFailed(context.Background(), perr)
	assert.ErrorContains(t, err, "journal insert: not primary")
}
