package ports

import (
	"context"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
)

// --- INPUTS ---

type CreatePostCmd struct {
	AuthorID string
	Text     string
	Links    []string
	HashTags []string
	Mentions []string
	Poll     map[string]any
	Location map[string]any
	Files    []domain.UploadedFile
}

// --- OUTPUTS ---

type LikeResult struct {
	Post  *domain.Post
	Liked bool // false = le like a été retiré
}

type PostService interface {
	CreatePost(ctx context.Context, cmd CreatePostCmd) (*domain.Post, error)
	ListOwnPosts(ctx context.Context, callerID string) ([]*domain.Post, error)
	// Aucun contrôle d'accès : n'importe quel appelant peut lister les posts d'un autre user.
	ListUserPosts(ctx context.Context, userID string) ([]*domain.Post, error)
	GetPost(ctx context.Context, postID string) (*domain.PostDetail, error)
	DeletePost(ctx context.Context, postID string) error

	// Interactions
	ListLikers(ctx context.Context, postID string) ([]domain.UserProjection, error)
	ToggleLike(ctx context.Context, postID, likerID string) (*LikeResult, error)
	AddComment(ctx context.Context, postID, commenterID, text string) (*domain.Post, error)
}
