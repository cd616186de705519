package users

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
)

const usersCollection = "users"

type userDocument struct {
	ID       any    `bson:"_id"`
	FullName string `bson:"fullName"`
	Username string `bson:"username"`
	Email    string `bson:"email"`
}

// MongoDirectory lit la collection "users" de la même base que les posts.
type MongoDirectory struct {
	coll *mongo.Collection
}

func NewMongoDirectory(db *mongo.Database) *MongoDirectory {
	return &MongoDirectory{coll: db.Collection(usersCollection)}
}

var _ ports.UserDirectory = (*MongoDirectory)(nil)

func (d *MongoDirectory) Project(ctx context.Context, userIDs []string, fields ...domain.UserField) ([]domain.UserProjection, error) {
	if len(userIDs) == 0 {
		return []domain.UserProjection{}, nil
	}

	// Les _id peuvent être des ObjectID (créés par l'identity) ou des chaînes
	keys := make([]any, 0, len(userIDs))
	for _, id := range userIDs {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			keys = append(keys, oid)
			continue
		}
		keys = append(keys, id)
	}

	projection := bson.D{}
	for _, f := range fields {
		projection = append(projection, bson.E{Key: string(f), Value: 1})
	}

	opts := options.Find()
	if len(projection) > 0 {
		opts.SetProjection(projection)
	}

	cur, err := d.coll.Find(ctx, bson.M{"_id": bson.M{"$in": keys}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find users: %w", err)
	}

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode users: %w", err)
	}

	found := make(map[string]domain.UserProjection, len(docs))
	for _, doc := range docs {
		id := idString(doc.ID)
		found[id] = domain.UserProjection{
			ID:       id,
			FullName: doc.FullName,
			Username: doc.Username,
			Email:    doc.Email,
		}.Only(fields...)
	}
	return inOrder(userIDs, found), nil
}

func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}
