package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
	"github.com/sujiiiiit/collabhub-backend/internal/model"
	"github.com/sujiiiiit/collabhub-backend/internal/repository"
)

var (
	_ repository.RoleRepository      = (*RoleDB)(nil)
	_ repository.TechStackRepository = (*TechStackDB)(nil)
)

// roleId and stackId were loaded by hand into the legacy collections, some
// as numbers, so they are read through flexString.
type roleDoc struct {
	ID     bson.ObjectID `bson:"_id"`
	RoleID bson.RawValue `bson:"roleId"`
	Name   string        `bson:"name"`
}

type techStackDoc struct {
	ID      bson.ObjectID `bson:"_id"`
	StackID bson.RawValue `bson:"stackId"`
	Name    string        `bson:"name"`
}

// RoleDB stores canonical roles in the "roles" collection.
type RoleDB struct {
	coll *mongo.Collection
}

func (r *RoleDB) Create(ctx context.Context, role *model.Role) error {
	id := bson.NewObjectID()
	_, err := r.coll.InsertOne(ctx, bson.M{"_id": id, "roleId": role.RoleID, "name": role.Name})
	if err != nil {
		return fmt.Errorf("mongodb: inserting role: %w", err)
	}
	role.ID = id.Hex()
	return nil
}

func (r *RoleDB) GetByID(ctx context.Context, id string) (*model.Role, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc roleDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("role", id)
		}
		return nil, fmt.Errorf("mongodb: getting role %s: %w", id, err)
	}
	return &model.Role{ID: doc.ID.Hex(), RoleID: flexString(doc.RoleID), Name: doc.Name}, nil
}

func (r *RoleDB) List(ctx context.Context) ([]model.Role, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing roles: %w", err)
	}
	var docs []roleDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decoding roles: %w", err)
	}

	roles := make([]model.Role, 0, len(docs))
	for _, doc := range docs {
		roles = append(roles, model.Role{ID: doc.ID.Hex(), RoleID: flexString(doc.RoleID), Name: doc.Name})
	}
	return roles, nil
}

func (r *RoleDB) Update(ctx context.Context, role *model.Role) error {
	oid, err := objectID(role.ID)
	if err != nil {
		return err
	}
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"roleId": role.RoleID, "name": role.Name}})
	if err != nil {
		return fmt.Errorf("mongodb: updating role %s: %w", role.ID, err)
	}
	if result.MatchedCount == 0 {
		return apperror.NotFound("role", role.ID)
	}
	return nil
}

func (r *RoleDB) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongodb: deleting role %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return apperror.NotFound("role", id)
	}
	return nil
}

// TechStackDB stores canonical tech stacks in the "techstacks" collection.
type TechStackDB struct {
	coll *mongo.Collection
}

func (t *TechStackDB) Create(ctx context.Context, stack *model.TechStack) error {
	id := bson.NewObjectID()
	_, err := t.coll.InsertOne(ctx, bson.M{"_id": id, "stackId": stack.StackID, "name": stack.Name})
	if err != nil {
		return fmt.Errorf("mongodb: inserting tech stack: %w", err)
	}
	stack.ID = id.Hex()
	return nil
}

func (t *TechStackDB) List(ctx context.Context) ([]model.TechStack, error) {
	cursor, err := t.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing tech stacks: %w", err)
	}
	var docs []techStackDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decoding tech stacks: %w", err)
	}

	stacks := make([]model.TechStack, 0, len(docs))
	for _, doc := range docs {
		stacks = append(stacks, model.TechStack{ID: doc.ID.Hex(), StackID: flexString(doc.StackID), Name: doc.Name})
	}
	return stacks, nil
}
