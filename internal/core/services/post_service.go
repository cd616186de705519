package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
)

var tracer = otel.Tracer("social-service/posts")

type service struct {
	repo      ports.PostRepository
	users     ports.UserDirectory
	publisher ports.EventPublisher
}

func NewPostService(repo ports.PostRepository, users ports.UserDirectory, pub ports.EventPublisher) ports.PostService {
	return &service{repo: repo, users: users, publisher: pub}
}

func (s *service) CreatePost(ctx context.Context, cmd ports.CreatePostCmd) (*domain.Post, error) {
	post := &domain.Post{
		AuthorID: cmd.AuthorID,
		Text:     cmd.Text,
		Media:    domain.NewMedia(cmd.Files),
		Links:    cmd.Links,
		HashTags: cmd.HashTags,
		Mentions: cmd.Mentions,
		Poll:     cmd.Poll,
		Location: cmd.Location,
		Likes:    []string{},
		Comments: []domain.Comment{},
	}

	// 1. Sauvegarde (Source of Truth)
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	// 2. Événement : best effort, la donnée est déjà sauvée
	if err := s.publisher.PublishPostCreated(ctx, post); err != nil {
		slog.WarnContext(ctx, "Failed to publish post.created", "post_id", post.ID, "error", err)
	}

	return post, nil
}

func (s *service) ListOwnPosts(ctx context.Context, callerID string) ([]*domain.Post, error) {
	return s.repo.ListByAuthor(ctx, callerID, domain.PageSize)
}

func (s *service) ListUserPosts(ctx context.Context, userID string) ([]*domain.Post, error) {
	return s.repo.ListByAuthor(ctx, userID, domain.PageSize)
}

func (s *service) GetPost(ctx context.Context, postID string) (*domain.PostDetail, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	likes, err := s.users.Project(ctx, post.Likes, domain.UserFieldFullName, domain.UserFieldUsername, domain.UserFieldEmail)
	if err != nil {
		return nil, err
	}

	return &domain.PostDetail{Post: post, Likes: likes}, nil
}

func (s *service) DeletePost(ctx context.Context, postID string) error {
	if err := s.repo.Delete(ctx, postID); err != nil {
		return err
	}

	if err := s.publisher.PublishPostDeleted(ctx, postID); err != nil {
		slog.WarnContext(ctx, "Failed to publish post.deleted", "post_id", postID, "error", err)
	}
	return nil
}

func (s *service) ListLikers(ctx context.Context, postID string) ([]domain.UserProjection, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.users.Project(ctx, post.Likes, domain.UserFieldFullName, domain.UserFieldEmail)
}

// ToggleLike lit l'appartenance puis émet UNE des deux commandes atomiques (add / remove).
// La lecture et l'écriture ne sont pas transactionnelles : deux toggles concurrents du même
// user peuvent se croiser (flip-flop). Les commandes restent idempotentes, donc jamais de doublon.
func (s *service) ToggleLike(ctx context.Context, postID, likerID string) (*ports.LikeResult, error) {
	ctx, span := tracer.Start(ctx, "ToggleLike", trace.WithAttributes(
		attribute.String("post_id", postID),
		attribute.String("user_id", likerID),
	))
	defer span.End()

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked := !post.IsLikedBy(likerID)

	var updated *domain.Post
	if liked {
		updated, err = s.repo.AddLike(ctx, postID, likerID)
	} else {
		updated, err = s.repo.RemoveLike(ctx, postID, likerID)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("liked", liked))

	if err := s.publisher.PublishPostLiked(ctx, postID, likerID, liked); err != nil {
		slog.WarnContext(ctx, "Failed to publish like event", "post_id", postID, "liked", liked, "error", err)
	}

	return &ports.LikeResult{Post: updated, Liked: liked}, nil
}

func (s *service) AddComment(ctx context.Context, postID, commenterID, text string) (*domain.Post, error) {
	comment, err := domain.NewComment(commenterID, text)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.AppendComment(ctx, postID, comment)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishPostCommented(ctx, postID, *comment); err != nil {
		slog.WarnContext(ctx, "Failed to publish post.commented", "post_id", postID, "error", err)
	}
	return post, nil
}
