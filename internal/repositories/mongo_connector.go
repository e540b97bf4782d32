package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"restaurant-orders/pkg/config"
)

type mongoConnector struct {
	cfg config.MongoConfig
}

// NewMongoConnector returns a Connector that dials a fresh client per session.
func NewMongoConnector(cfg config.MongoConfig) Connector {
	return &mongoConnector{cfg: cfg}
}

func (c *mongoConnector) Connect(ctx context.Context) (Session, error) {
	connectCtx, cancel := withTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(c.cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}

	return &mongoSession{client: client, db: client.Database(c.cfg.Database)}, nil
}

type mongoSession struct {
	client *mongo.Client
	db     *mongo.Database
}

func (s *mongoSession) Collection(name string) Collection {
	return &mongoCollection{coll: s.db.Collection(name)}
}

func (s *mongoSession) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) InsertOne(ctx context.Context, document interface{}) (interface{}, error) {
	res, err := c.coll.InsertOne(ctx, document)
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}

func (c *mongoCollection) FindAll(ctx context.Context, results interface{}) error {
	cur, err := c.coll.Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	return cur.All(ctx, results)
}

func (c *mongoCollection) FindOne(ctx context.Context, filter bson.M, result interface{}) error {
	return c.coll.FindOne(ctx, filter).Decode(result)
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter bson.M, update bson.M) (*mongo.UpdateResult, error) {
	return c.coll.UpdateOne(ctx, filter, update)
}

func (c *mongoCollection) DeleteOne(ctx context.Context, filter bson.M) (*mongo.DeleteResult, error) {
	return c.coll.DeleteOne(ctx, filter)
}
