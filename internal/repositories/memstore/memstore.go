// Package memstore is an in-process document store implementing
// repositories.Connector. It backs local runs (MONGO_URI=memory://) and the
// package tests; documents are kept as BSON so encoding behaves like MongoDB.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"restaurant-orders/internal/repositories"
)

// Op names a store operation for failure injection.
type Op string

const (
	OpConnect Op = "connect"
	OpClose   Op = "close"
	OpInsert  Op = "insert"
	OpFind    Op = "find"
	OpFindOne Op = "findOne"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
)

var ErrSessionClosed = errors.New("memstore: session already closed")

type document struct {
	id  primitive.ObjectID
	raw bson.Raw
}

// Stats counts session lifecycle calls.
type Stats struct {
	Connects int
	Closes   int
}

type Store struct {
	mu          sync.Mutex
	collections map[string][]document
	failures    map[Op]error
	stats       Stats
}

func New() *Store {
	return &Store{
		collections: make(map[string][]document),
		failures:    make(map[Op]error),
	}
}

// FailNext makes the next call of op return err.
func (s *Store) FailNext(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Seed stores documents directly, without touching the session counters.
func (s *Store) Seed(collection string, docs ...interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		if _, err := s.insertLocked(collection, d); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}

func (s *Store) takeFailure(op Op) error {
	err := s.failures[op]
	delete(s.failures, op)
	return err
}

func (s *Store) Connect(ctx context.Context) (repositories.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(OpConnect); err != nil {
		return nil, err
	}
	s.stats.Connects++
	return &session{store: s}, nil
}

type session struct {
	store  *Store
	closed bool
}

func (ss *session) Collection(name string) repositories.Collection {
	return &collection{session: ss, name: name}
}

func (ss *session) Close(ctx context.Context) error {
	s := ss.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if ss.closed {
		return ErrSessionClosed
	}
	ss.closed = true
	s.stats.Closes++
	return s.takeFailure(OpClose)
}

type collection struct {
	session *session
	name    string
}

// begin locks the store and checks the session state, the context and any
// injected failure. The caller must unlock on nil error.
func (c *collection) begin(ctx context.Context, op Op) error {
	s := c.session.store
	s.mu.Lock()
	var err error
	switch {
	case c.session.closed:
		err = ErrSessionClosed
	case ctx.Err() != nil:
		err = ctx.Err()
	default:
		err = s.takeFailure(op)
	}
	if err != nil {
		s.mu.Unlock()
	}
	return err
}

func (c *collection) InsertOne(ctx context.Context, doc interface{}) (interface{}, error) {
	if err := c.begin(ctx, OpInsert); err != nil {
		return nil, err
	}
	defer c.session.store.mu.Unlock()
	return c.session.store.insertLocked(c.name, doc)
}

func (c *collection) FindAll(ctx context.Context, results interface{}) error {
	rv := reflect.ValueOf(results)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("memstore: results must be a pointer to a slice, got %T", results)
	}
	if err := c.begin(ctx, OpFind); err != nil {
		return err
	}
	defer c.session.store.mu.Unlock()

	docs := c.session.store.collections[c.name]
	sliceType := rv.Elem().Type()
	out := reflect.MakeSlice(sliceType, 0, len(docs))
	for _, d := range docs {
		elem := reflect.New(sliceType.Elem())
		if err := bson.Unmarshal(d.raw, elem.Interface()); err != nil {
			return err
		}
		out = reflect.Append(out, elem.Elem())
	}
	rv.Elem().Set(out)
	return nil
}

func (c *collection) FindOne(ctx context.Context, filter bson.M, result interface{}) error {
	id, err := filterID(filter)
	if err != nil {
		return err
	}
	if err := c.begin(ctx, OpFindOne); err != nil {
		return err
	}
	defer c.session.store.mu.Unlock()

	i := c.session.store.indexLocked(c.name, id)
	if i < 0 {
		return mongo.ErrNoDocuments
	}
	return bson.Unmarshal(c.session.store.collections[c.name][i].raw, result)
}

func (c *collection) UpdateOne(ctx context.Context, filter bson.M, update bson.M) (*mongo.UpdateResult, error) {
	id, err := filterID(filter)
	if err != nil {
		return nil, err
	}
	set, ok := update["$set"].(bson.M)
	if !ok || len(update) != 1 {
		return nil, fmt.Errorf("memstore: only {$set: bson.M} updates are supported")
	}
	if err := c.begin(ctx, OpUpdate); err != nil {
		return nil, err
	}
	s := c.session.store
	defer s.mu.Unlock()

	i := s.indexLocked(c.name, id)
	if i < 0 {
		return &mongo.UpdateResult{}, nil
	}

	var fields bson.D
	if err := bson.Unmarshal(s.collections[c.name][i].raw, &fields); err != nil {
		return nil, err
	}
	for key, value := range set {
		fields = setField(fields, key, value)
	}
	raw, err := bson.Marshal(fields)
	if err != nil {
		return nil, err
	}
	s.collections[c.name][i].raw = raw
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (c *collection) DeleteOne(ctx context.Context, filter bson.M) (*mongo.DeleteResult, error) {
	id, err := filterID(filter)
	if err != nil {
		return nil, err
	}
	if err := c.begin(ctx, OpDelete); err != nil {
		return nil, err
	}
	s := c.session.store
	defer s.mu.Unlock()

	i := s.indexLocked(c.name, id)
	if i < 0 {
		return &mongo.DeleteResult{}, nil
	}
	docs := s.collections[c.name]
	s.collections[c.name] = append(docs[:i:i], docs[i+1:]...)
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func (s *Store) insertLocked(name string, doc interface{}) (primitive.ObjectID, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}

	id, ok := bson.Raw(raw).Lookup("_id").ObjectIDOK()
	if !ok {
		if _, lookupErr := bson.Raw(raw).LookupErr("_id"); lookupErr == nil {
			return primitive.NilObjectID, fmt.Errorf("memstore: _id must be an ObjectID")
		}
		var fields bson.D
		if err := bson.Unmarshal(raw, &fields); err != nil {
			return primitive.NilObjectID, err
		}
		id = primitive.NewObjectID()
		fields = append(bson.D{{Key: "_id", Value: id}}, fields...)
		if raw, err = bson.Marshal(fields); err != nil {
			return primitive.NilObjectID, err
		}
	}

	if s.indexLocked(name, id) >= 0 {
		return primitive.NilObjectID, fmt.Errorf("memstore: E11000 duplicate key _id %s", id.Hex())
	}
	s.collections[name] = append(s.collections[name], document{id: id, raw: raw})
	return id, nil
}

func (s *Store) indexLocked(name string, id primitive.ObjectID) int {
	for i, d := range s.collections[name] {
		if d.id == id {
			return i
		}
	}
	return -1
}

func filterID(filter bson.M) (primitive.ObjectID, error) {
	id, ok := filter["_id"].(primitive.ObjectID)
	if !ok || len(filter) != 1 {
		return primitive.NilObjectID, fmt.Errorf("memstore: only {_id: ObjectID} filters are supported")
	}
	return id, nil
}

func setField(fields bson.D, key string, value interface{}) bson.D {
	for i := range fields {
		if fields[i].Key == key {
			fields[i].Value = value
			return fields
		}
	}
	return append(fields, bson.E{Key: key, Value: value})
}
