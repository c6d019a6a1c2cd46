package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
	"github.com/sujiiiiit/collabhub-backend/internal/model"
	"github.com/sujiiiiit/collabhub-backend/internal/repository"
)

var _ repository.ApplicationRepository = (*ApplicationDB)(nil)

type resumeDoc struct {
	Data        []byte `bson:"data"`
	ContentType string `bson:"contentType"`
	Filename    string `bson:"filename"`
}

type applicationDoc struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	Username   string        `bson:"username"`
	CreatedBy  string        `bson:"createdBy"`
	RolePostID string        `bson:"rolePostId"`
	Message    string        `bson:"message"`
	Role       string        `bson:"role"`
	Resume     *resumeDoc    `bson:"resume,omitempty"`
	AppliedOn  string        `bson:"appliedOn"`
	Status     string        `bson:"status"`
}

func (d *applicationDoc) toModel() *model.Application {
	app := &model.Application{
		ID:         d.ID.Hex(),
		Username:   d.Username,
		CreatedBy:  d.CreatedBy,
		RolePostID: d.RolePostID,
		Message:    d.Message,
		Role:       d.Role,
		AppliedOn:  d.AppliedOn,
		Status:     model.NormalizeStatus(d.Status),
	}
	if d.Resume != nil {
		app.Resume = &model.Resume{
			Data:        d.Resume.Data,
			ContentType: d.Resume.ContentType,
			Filename:    d.Resume.Filename,
		}
	}
	return app
}

// withoutResume keeps the payload out of every read except GetResume.
var withoutResume = bson.M{"resume": 0}

// ApplicationDB stores applications and links them to users. It needs the
// client to start sessions for Submit's transaction.
type ApplicationDB struct {
	client       *mongo.Client
	applications *mongo.Collection
	users        *mongo.Collection
}

// Submit inserts app and updates the owning user inside one transaction.
// WithTransaction may run the callback more than once on transient errors, so
// the callback only touches its own locals until it succeeds.
func (a *ApplicationDB) Submit(ctx context.Context, app *model.Application) ([]string, error) {
	doc := applicationDoc{
		Username:   app.Username,
		CreatedBy:  app.CreatedBy,
		RolePostID: app.RolePostID,
		Message:    app.Message,
		Role:       app.Role,
		AppliedOn:  app.AppliedOn,
		Status:     string(app.Status),
	}
	if app.Resume != nil {
		doc.Resume = &resumeDoc{
			Data:        app.Resume.Data,
			ContentType: app.Resume.ContentType,
			Filename:    app.Resume.Filename,
		}
	}

	sess, err := a.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("mongodb: starting session: %w", err)
	}
	defer sess.EndSession(ctx)

	result, err := sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		doc.ID = bson.NewObjectID()
		if _, err := a.applications.InsertOne(ctx, doc); err != nil {
			return nil, fmt.Errorf("inserting application: %w", err)
		}

		var user userDoc
		err := a.users.FindOneAndUpdate(ctx,
			bson.M{"username": app.Username},
			bson.M{
				"$inc":  bson.M{"applicationCount": 1},
				"$push": bson.M{"applied": doc.ID},
			},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&user)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []string{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("linking application to user %q: %w", app.Username, err)
		}
		return hexList(user.Applied), nil
	})
	if err != nil {
		return nil, fmt.Errorf("mongodb: submitting application: %w", err)
	}

	app.ID = doc.ID.Hex()
	return result.([]string), nil
}

func (a *ApplicationDB) GetByID(ctx context.Context, id string) (*model.Application, error) {
	return a.findOne(ctx, id, options.FindOne().SetProjection(withoutResume))
}

func (a *ApplicationDB) GetResume(ctx context.Context, id string) (*model.Application, error) {
	return a.findOne(ctx, id, options.FindOne().SetProjection(bson.M{"_id": 1, "resume": 1}))
}

func (a *ApplicationDB) findOne(ctx context.Context, id string, opts *options.FindOneOptionsBuilder) (*model.Application, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc applicationDoc
	if err := a.applications.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("application", id)
		}
		return nil, fmt.Errorf("mongodb: getting application %s: %w", id, err)
	}
	return doc.toModel(), nil
}

func (a *ApplicationDB) Exists(ctx context.Context, username, rolePostID string) (bool, error) {
	n, err := a.applications.CountDocuments(ctx,
		bson.M{"username": username, "rolePostId": rolePostID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongodb: checking application for %q on %q: %w", username, rolePostID, err)
	}
	return n > 0, nil
}

func (a *ApplicationDB) ListByRolePostPrefix(ctx context.Context, prefix string) ([]model.Application, error) {
	return a.find(ctx, rolePostPrefixFilter(prefix))
}

// rolePostPrefixFilter anchors the prefix and escapes it, so it is matched
// literally.
func rolePostPrefixFilter(prefix string) bson.M {
	return bson.M{"rolePostId": bson.M{"$regex": bson.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}}}
}

func (a *ApplicationDB) ListByCreator(ctx context.Context, userID string) ([]model.Application, error) {
	return a.find(ctx, bson.M{"createdBy": userID})
}

func (a *ApplicationDB) UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := a.applications.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return fmt.Errorf("mongodb: updating status of application %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return apperror.NotFound("application", id)
	}
	return nil
}

func (a *ApplicationDB) find(ctx context.Context, filter bson.M) ([]model.Application, error) {
	cursor, err := a.applications.Find(ctx, filter, options.Find().SetProjection(withoutResume))
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing applications: %w", err)
	}
	var docs []applicationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decoding applications: %w", err)
	}

	apps := make([]model.Application, 0, len(docs))
	for i := range docs {
		apps = append(apps, *docs[i].toModel())
	}
	return apps, nil
}
