package ports

import (
	"context"
	"io"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
)

// --- PERSISTANCE ---

// PostRepository : chaque méthode de mutation est UNE commande atomique côté store.
// Un id inconnu (ou mal formé) renvoie domain.ErrPostNotFound.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, postID string) (*domain.Post, error)
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]*domain.Post, error)
	Delete(ctx context.Context, postID string) error

	AddLike(ctx context.Context, postID, userID string) (*domain.Post, error)    // set-add, sans doublon
	RemoveLike(ctx context.Context, postID, userID string) (*domain.Post, error) // set-remove
	AppendComment(ctx context.Context, postID string, comment *domain.Comment) (*domain.Post, error)
}

// UserDirectory résout des ids utilisateur en projections, dans l'ordre des ids.
// Les ids introuvables sont ignorés.
type UserDirectory interface {
	Project(ctx context.Context, userIDs []string, fields ...domain.UserField) ([]domain.UserProjection, error)
}

// --- UPLOAD ---

type FileStore interface {
	Save(ctx context.Context, originalName, mimeType string, content io.Reader) (domain.UploadedFile, error)
	// Remove ne renvoie pas d'erreur si le fichier a déjà disparu.
	Remove(ctx context.Context, file domain.UploadedFile) error
}

// --- MESSAGERIE ---

type EventPublisher interface {
	PublishPostCreated(ctx context.Context, post *domain.Post) error
	PublishPostDeleted(ctx context.Context, postID string) error
	PublishPostLiked(ctx context.Context, postID, userID string, liked bool) error
	PublishPostCommented(ctx context.Context, postID string, comment domain.Comment) error
}
