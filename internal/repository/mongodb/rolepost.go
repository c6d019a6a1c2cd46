package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
	"github.com/sujiiiiit/collabhub-backend/internal/model"
	"github.com/sujiiiiit/collabhub-backend/internal/repository"
)

var _ repository.RolePostRepository = (*RolePostDB)(nil)

type rolePostDoc struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	ProjectName string        `bson:"pName"`
	RepoLink    string        `bson:"repoLink"`
	TechStack   []string      `bson:"techStack"`
	TechPublic  bool          `bson:"techPublic"`
	Roles       []string      `bson:"roles"`
	Address     string        `bson:"address"`
	Description string        `bson:"description"`
	Duration    string        `bson:"duration"`
	Deadline    string        `bson:"deadline"`
	UserID      string        `bson:"userId"`
	CreatedAt   string        `bson:"createdAt"`
}

func (d *rolePostDoc) toModel() *model.RolePost {
	return &model.RolePost{
		ID:          d.ID.Hex(),
		ProjectName: d.ProjectName,
		RepoLink:    d.RepoLink,
		TechStack:   nonNil(d.TechStack),
		TechPublic:  d.TechPublic,
		Roles:       nonNil(d.Roles),
		Address:     d.Address,
		Description: d.Description,
		Duration:    d.Duration,
		Deadline:    d.Deadline,
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt,
	}
}

// RolePostDB stores role posts in the "rolePost" collection.
type RolePostDB struct {
	coll *mongo.Collection
}

func (r *RolePostDB) Create(ctx context.Context, post *model.RolePost) error {
	doc := rolePostDoc{
		ID:          bson.NewObjectID(),
		ProjectName: post.ProjectName,
		RepoLink:    post.RepoLink,
		TechStack:   nonNil(post.TechStack),
		TechPublic:  post.TechPublic,
		Roles:       nonNil(post.Roles),
		Address:     post.Address,
		Description: post.Description,
		Duration:    post.Duration,
		Deadline:    post.Deadline,
		UserID:      post.UserID,
		CreatedAt:   post.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongodb: inserting role post: %w", err)
	}
	post.ID = doc.ID.Hex()
	return nil
}

func (r *RolePostDB) GetByID(ctx context.Context, id string) (*model.RolePost, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc rolePostDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("role post", id)
		}
		return nil, fmt.Errorf("mongodb: getting role post %s: %w", id, err)
	}
	return doc.toModel(), nil
}

// List applies each non-empty filter dimension; $in gives "any of" for the
// list-valued fields.
func (r *RolePostDB) List(ctx context.Context, filter repository.RolePostFilter) ([]model.RolePost, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	if len(filter.TechStack) > 0 {
		query["techStack"] = bson.M{"$in": filter.TechStack}
	}
	if len(filter.Roles) > 0 {
		query["roles"] = bson.M{"$in": filter.Roles}
	}

	opts := options.Find()
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return r.find(ctx, query, opts)
}

func (r *RolePostDB) ListByUser(ctx context.Context, userID string) ([]model.RolePost, error) {
	return r.find(ctx, bson.M{"userId": userID}, options.Find())
}

func (r *RolePostDB) Update(ctx context.Context, post *model.RolePost) error {
	oid, err := objectID(post.ID)
	if err != nil {
		return err
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"pName":       post.ProjectName,
		"repoLink":    post.RepoLink,
		"techStack":   nonNil(post.TechStack),
		"techPublic":  post.TechPublic,
		"roles":       nonNil(post.Roles),
		"address":     post.Address,
		"description": post.Description,
		"duration":    post.Duration,
		"deadline":    post.Deadline,
	}})
	if err != nil {
		return fmt.Errorf("mongodb: updating role post %s: %w", post.ID, err)
	}
	if result.MatchedCount == 0 {
		return apperror.NotFound("role post", post.ID)
	}
	return nil
}

func (r *RolePostDB) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]model.RolePost, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing role posts: %w", err)
	}
	var docs []rolePostDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decoding role posts: %w", err)
	}

	posts := make([]model.RolePost, 0, len(docs))
	for i := range docs {
		posts = append(posts, *docs[i].toModel())
	}
	return posts, nil
}
