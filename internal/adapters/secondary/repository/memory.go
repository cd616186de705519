package repository

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
)

// MemoryRepo garde les posts en RAM. Chaque méthode tient le verrou du début à la fin,
// ce qui donne la même atomicité par document que Mongo.
type MemoryRepo struct {
	mu    sync.RWMutex
	posts map[string]*domain.Post
	order []string // ordre d'insertion
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		posts: make(map[string]*domain.Post),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.PostRepository = (*MemoryRepo)(nil)

func (r *MemoryRepo) Create(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	post.ID = primitive.NewObjectID().Hex()
	post.CreatedAt = now
	post.UpdatedAt = now

	r.posts[post.ID] = clonePost(post)
	r.order = append(r.order, post.ID)
	return nil
}

func (r *MemoryRepo) FindByID(_ context.Context, postID string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return clonePost(p), nil
}

// ListByAuthor renvoie les plus récents d'abord.
func (r *MemoryRepo) ListByAuthor(_ context.Context, authorID string, limit int) ([]*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := []*domain.Post{}
	for i := len(r.order) - 1; i >= 0 && len(posts) < limit; i-- {
		p, ok := r.posts[r.order[i]]
		if !ok || p.AuthorID != authorID {
			continue
		}
		posts = append(posts, clonePost(p))
	}
	return posts, nil
}

func (r *MemoryRepo) Delete(_ context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[postID]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.posts, postID)
	r.order = slices.DeleteFunc(r.order, func(id string) bool { return id == postID })
	return nil
}

func (r *MemoryRepo) AddLike(_ context.Context, postID, userID string) (*domain.Post, error) {
	return r.update(postID, func(p *domain.Post) {
		if !p.IsLikedBy(userID) {
			p.Likes = append(p.Likes, userID)
		}
	})
}

func (r *MemoryRepo) RemoveLike(_ context.Context, postID, userID string) (*domain.Post, error) {
	return r.update(postID, func(p *domain.Post) {
		p.Likes = slices.DeleteFunc(p.Likes, func(id string) bool { return id == userID })
	})
}

func (r *MemoryRepo) AppendComment(_ context.Context, postID string, comment *domain.Comment) (*domain.Post, error) {
	return r.update(postID, func(p *domain.Post) {
		comment.ID = primitive.NewObjectID().Hex()
		comment.CreatedAt = r.now()
		p.Comments = append(p.Comments, *comment)
	})
}

func (r *MemoryRepo) update(postID string, mutate func(p *domain.Post)) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	mutate(p)
	p.UpdatedAt = r.now()
	return clonePost(p), nil
}

// clonePost évite que l'appelant partage des slices avec le store.
func clonePost(p *domain.Post) *domain.Post {
	c := *p
	c.Media = slices.Clone(p.Media)
	c.Links = slices.Clone(p.Links)
	c.HashTags = slices.Clone(p.HashTags)
	c.Mentions = slices.Clone(p.Mentions)
	c.Poll = maps.Clone(p.Poll)
	c.Location = maps.Clone(p.Location)
	c.Likes = slices.Clone(p.Likes)
	c.Comments = slices.Clone(p.Comments)
	if c.Likes == nil {
		c.Likes = []string{}
	}
	if c.Comments == nil {
		c.Comments = []domain.Comment{}
	}
	if c.Media == nil {
		c.Media = []domain.Media{}
	}
	return &c
}
