package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection is the subset of document-store verbs the repositories use.
// FindOne returns mongo.ErrNoDocuments when nothing matches.
type Collection interface {
	InsertOne(ctx context.Context, document interface{}) (interface{}, error)
	FindAll(ctx context.Context, results interface{}) error
	FindOne(ctx context.Context, filter bson.M, result interface{}) error
	UpdateOne(ctx context.Context, filter bson.M, update bson.M) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter bson.M) (*mongo.DeleteResult, error)
}

// Session is one acquired database handle.
type Session interface {
	Collection(name string) Collection
	Close(ctx context.Context) error
}

// Connector opens a new Session on every call.
type Connector interface {
	Connect(ctx context.Context) (Session, error)
}
