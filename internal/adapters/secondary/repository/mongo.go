package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
)

const postsCollection = "posts"

// refID est une référence utilisateur : ObjectID en base quand l'id est un hex valide,
// chaîne sinon. Les deux formes sont relues en chaîne.
type refID string

func (r refID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if oid, err := primitive.ObjectIDFromHex(string(r)); err == nil {
		return bson.MarshalValue(oid)
	}
	return bson.MarshalValue(string(r))
}

func (r *refID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.ObjectID:
		*r = refID(raw.ObjectID().Hex())
	case bsontype.String:
		*r = refID(raw.StringValue())
	case bsontype.Null:
		*r = ""
	default:
		return fmt.Errorf("mongo: unexpected user reference type %s", t)
	}
	return nil
}

// refCandidates : les deux représentations possibles d'un id, pour matcher l'ancien et le nouveau format.
func refCandidates(id string) bson.A {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.A{oid, id}
	}
	return bson.A{id}
}

// DTOs internes : le domaine reste sans tags bson
type mediaDocument struct {
	URL  string `bson:"url"`
	Type string `bson:"type"`
}

type commentDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	User      refID              `bson:"user"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type postDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Text      string             `bson:"text,omitempty"`
	Media     []mediaDocument    `bson:"media"`
	Author    refID              `bson:"author"`
	Links     []string           `bson:"links,omitempty"`
	HashTags  []string           `bson:"hashTags,omitempty"`
	Mentions  []string           `bson:"mentions,omitempty"`
	Poll      bson.M             `bson:"poll,omitempty"`
	Location  bson.M             `bson:"location,omitempty"`
	Likes     []refID            `bson:"likes"`
	Comments  []commentDocument  `bson:"comments"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type MongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{coll: db.Collection(postsCollection)}
}

var _ ports.PostRepository = (*MongoRepo)(nil)

// EnsureIndexes crée l'index utilisé par les listings par auteur (idempotent).
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "author", Value: 1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo: create author index: %w", err)
	}
	return nil
}

func (r *MongoRepo) Create(ctx context.Context, post *domain.Post) error {
	now := time.Now().UTC()
	doc := toDocument(post)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo: insert post: %w", err)
	}

	post.ID = doc.ID.Hex()
	post.CreatedAt = now
	post.UpdatedAt = now
	return nil
}

func (r *MongoRepo) FindByID(ctx context.Context, postID string) (*domain.Post, error) {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, domain.ErrPostNotFound
	}

	var doc postDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("mongo: find post: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByAuthor : plus récents d'abord (l'ObjectID est croissant dans le temps)
func (r *MongoRepo) ListByAuthor(ctx context.Context, authorID string, limit int) ([]*domain.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{"author": bson.M{"$in": refCandidates(authorID)}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list posts: %w", err)
	}

	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode posts: %w", err)
	}

	posts := make([]*domain.Post, len(docs))
	for i := range docs {
		posts[i] = docs[i].toDomain()
	}
	return posts, nil
}

func (r *MongoRepo) Delete(ctx context.Context, postID string) error {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return domain.ErrPostNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo: delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *MongoRepo) AddLike(ctx context.Context, postID, userID string) (*domain.Post, error) {
	return r.update(ctx, postID, bson.M{"$addToSet": bson.M{"likes": refID(userID)}})
}

func (r *MongoRepo) RemoveLike(ctx context.Context, postID, userID string) (*domain.Post, error) {
	return r.update(ctx, postID, bson.M{"$pull": bson.M{"likes": bson.M{"$in": refCandidates(userID)}}})
}

func (r *MongoRepo) AppendComment(ctx context.Context, postID string, comment *domain.Comment) (*domain.Post, error) {
	doc := commentDocument{
		ID:        primitive.NewObjectID(),
		User:      refID(comment.UserID),
		Text:      comment.Text,
		CreatedAt: time.Now().UTC(),
	}

	post, err := r.update(ctx, postID, bson.M{"$push": bson.M{"comments": doc}})
	if err != nil {
		return nil, err
	}

	comment.ID = doc.ID.Hex()
	comment.CreatedAt = doc.CreatedAt
	return post, nil
}

// update applique UNE commande atomique et renvoie le document après modification.
func (r *MongoRepo) update(ctx context.Context, postID string, update bson.M) (*domain.Post, error) {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, domain.ErrPostNotFound
	}
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc postDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("mongo: update post: %w", err)
	}
	return doc.toDomain(), nil
}

// --- Mappers ---

func toDocument(p *domain.Post) postDocument {
	media := make([]mediaDocument, len(p.Media))
	for i, m := range p.Media {
		media[i] = mediaDocument{URL: m.URL, Type: string(m.Type)}
	}

	comments := make([]commentDocument, 0, len(p.Comments))
	for _, c := range p.Comments {
		oid, err := primitive.ObjectIDFromHex(c.ID)
		if err != nil {
			oid = primitive.NewObjectID()
		}
		comments = append(comments, commentDocument{ID: oid, User: refID(c.UserID), Text: c.Text, CreatedAt: c.CreatedAt})
	}

	likes := make([]refID, len(p.Likes))
	for i, id := range p.Likes {
		likes[i] = refID(id)
	}

	return postDocument{
		Text:     p.Text,
		Media:    media,
		Author:   refID(p.AuthorID),
		Links:    p.Links,
		HashTags: p.HashTags,
		Mentions: p.Mentions,
		Poll:     p.Poll,
		Location: p.Location,
		Likes:    likes,
		Comments: comments,
	}
}

func (d *postDocument) toDomain() *domain.Post {
	media := make([]domain.Media, len(d.Media))
	for i, m := range d.Media {
		media[i] = domain.Media{URL: m.URL, Type: domain.MediaType(m.Type)}
	}

	comments := make([]domain.Comment, len(d.Comments))
	for i, c := range d.Comments {
		comments[i] = domain.Comment{ID: c.ID.Hex(), UserID: string(c.User), Text: c.Text, CreatedAt: c.CreatedAt}
	}

	likes := make([]string, len(d.Likes))
	for i, id := range d.Likes {
		likes[i] = string(id)
	}

	return &domain.Post{
		ID:        d.ID.Hex(),
		AuthorID:  string(d.Author),
		Text:      d.Text,
		Media:     media,
		Links:     d.Links,
		HashTags:  d.HashTags,
		Mentions:  d.Mentions,
		Poll:      normalizeMap(d.Poll),
		Location:  normalizeMap(d.Location),
		Likes:     likes,
		Comments:  comments,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// normalizeMap convertit les sous-documents décodés (primitive.D / primitive.A)
// en map/slice simples, sinon le JSON de sortie devient illisible.
func normalizeMap(m bson.M) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case primitive.M:
		return normalizeMap(bson.M(t))
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}
