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

var _ repository.UserRepository = (*UserDB)(nil)

type userDoc struct {
	ID               bson.ObjectID   `bson:"_id,omitempty"`
	Username         string          `bson:"username"`
	Email            string          `bson:"email"`
	GitHubID         bson.RawValue   `bson:"githubId"`
	AccessToken      string          `bson:"accessToken"`
	ApplicationCount int             `bson:"applicationCount"`
	Applied          []bson.ObjectID `bson:"applied"`
}

func (d *userDoc) toModel() *model.User {
	return &model.User{
		ID:               d.ID.Hex(),
		Username:         d.Username,
		Email:            d.Email,
		GitHubID:         flexString(d.GitHubID),
		AccessToken:      d.AccessToken,
		ApplicationCount: d.ApplicationCount,
		Applied:          hexList(d.Applied),
	}
}

// UserDB stores users in the "user" collection.
type UserDB struct {
	coll *mongo.Collection
}

func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	id := bson.NewObjectID()
	_, err := u.coll.InsertOne(ctx, bson.M{
		"_id":              id,
		"username":         user.Username,
		"email":            user.Email,
		"githubId":         user.GitHubID,
		"accessToken":      user.AccessToken,
		"applicationCount": user.ApplicationCount,
		"applied":          bson.A{},
	})
	if err != nil {
		return fmt.Errorf("mongodb: inserting user (githubID=%s): %w", user.GitHubID, err)
	}
	user.ID = id.Hex()
	user.Applied = []string{}
	return nil
}

func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return u.findOne(ctx, bson.M{"_id": oid}, id)
}

func (u *UserDB) GetByGitHubID(ctx context.Context, githubID string) (*model.User, error) {
	return u.findOne(ctx, bson.M{"githubId": githubID}, githubID)
}

func (u *UserDB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return u.findOne(ctx, bson.M{"username": username}, username)
}

func (u *UserDB) findOne(ctx context.Context, filter bson.M, key string) (*model.User, error) {
	var doc userDoc
	if err := u.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", key)
		}
		return nil, fmt.Errorf("mongodb: getting user %s: %w", key, err)
	}
	return doc.toModel(), nil
}

func (u *UserDB) UpdateAccessToken(ctx context.Context, id, accessToken string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := u.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"accessToken": accessToken}})
	if err != nil {
		return fmt.Errorf("mongodb: updating access token for user %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

func (u *UserDB) List(ctx context.Context) ([]model.User, error) {
	cursor, err := u.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing users: %w", err)
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decoding users: %w", err)
	}

	users := make([]model.User, 0, len(docs))
	for i := range docs {
		users = append(users, *docs[i].toModel())
	}
	return users, nil
}
