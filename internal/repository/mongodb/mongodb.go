// Package mongodb implements the repository interfaces on MongoDB
// (go.mongodb.org/mongo-driver/v2).
//
// Collection names are the ones the existing collabhub database uses:
// user, rolePost, applications, roles and techstacks. Each repository decodes
// into its own bson document struct and converts to the storage-agnostic
// types in internal/model, so ObjectIDs never leave this package.
//
// ApplicationDB.Submit runs a multi-document transaction, which MongoDB only
// supports on a replica set or sharded cluster. Atlas clusters qualify; a
// standalone mongod must be started with --replSet.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
	"github.com/sujiiiiit/collabhub-backend/internal/repository"
)

const (
	usersCollection        = "user"
	rolePostsCollection    = "rolePost"
	applicationsCollection = "applications"
	rolesCollection        = "roles"
	techStacksCollection   = "techstacks"
)

// DB owns the client connection. The per-collection repositories share it.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, pings the primary and selects database.
func Connect(ctx context.Context, uri, database string) (*DB, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connecting: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: pinging primary: %w", err)
	}

	return &DB{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (d *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}

// Drop removes the whole database. Only tests call it.
func (d *DB) Drop(ctx context.Context) error {
	return d.db.Drop(ctx)
}

func (d *DB) Users() *UserDB {
	return &UserDB{coll: d.db.Collection(usersCollection)}
}

func (d *DB) RolePosts() *RolePostDB {
	return &RolePostDB{coll: d.db.Collection(rolePostsCollection)}
}

func (d *DB) Applications() *ApplicationDB {
	return &ApplicationDB{
		client:       d.client,
		applications: d.db.Collection(applicationsCollection),
		users:        d.db.Collection(usersCollection),
	}
}

func (d *DB) Roles() *RoleDB {
	return &RoleDB{coll: d.db.Collection(rolesCollection)}
}

func (d *DB) TechStacks() *TechStackDB {
	return &TechStackDB{coll: d.db.Collection(techStacksCollection)}
}

// Store returns every repository backed by this database. Closing the store
// disconnects the client.
func (d *DB) Store() *repository.Store {
	return &repository.Store{
		Users:        d.Users(),
		RolePosts:    d.RolePosts(),
		Applications: d.Applications(),
		Roles:        d.Roles(),
		TechStacks:   d.TechStacks(),
		Closer:       d,
	}
}

// objectID parses a hex id from a URL. A malformed id is the caller's
// mistake, so it is reported as a validation error rather than a miss.
func objectID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, apperror.ValidationFailed("id", fmt.Sprintf("Invalid id %q", id))
	}
	return oid, nil
}

func hexList(ids []bson.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

// flexString reads a scalar that older documents stored as either a string
// or a number.
func flexString(v bson.RawValue) string {
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	if n, ok := v.Int32OK(); ok {
		return fmt.Sprintf("%d", n)
	}
	if n, ok := v.Int64OK(); ok {
		return fmt.Sprintf("%d", n)
	}
	if f, ok := v.DoubleOK(); ok {
		return fmt.Sprintf("%g", f)
	}
	return ""
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
