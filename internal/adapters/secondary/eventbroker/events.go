package eventbroker

import (
	"time"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
)

// Sujets (NATS) / routing keys (RabbitMQ)
const (
	SubjectPostCreated   = "post.created"
	SubjectPostDeleted   = "post.deleted"
	SubjectPostLiked     = "post.liked"
	SubjectPostUnliked   = "post.unliked"
	SubjectPostCommented = "post.commented"
)

// Contrat implicite avec les consommateurs (feed, notifications)
type PostCreatedEvent struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"` // "post", "image", "video", "audio", "gif"
	CreatedAt time.Time `json:"created_at"`
}

type PostDeletedEvent struct {
	ID string `json:"id"`
}

type PostLikedEvent struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
	Liked  bool   `json:"liked"`
}

type PostCommentedEvent struct {
	PostID    string    `json:"post_id"`
	CommentID string    `json:"comment_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newPostCreatedEvent(post *domain.Post) PostCreatedEvent {
	contentType := "post"
	if len(post.Media) > 0 {
		contentType = string(post.Media[0].Type) // type du 1er média
	}
	return PostCreatedEvent{
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Content:   post.Text,
		Type:      contentType,
		CreatedAt: post.CreatedAt,
	}
}

func likeSubject(liked bool) string {
	if liked {
		return SubjectPostLiked
	}
	return SubjectPostUnliked
}
