package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
)

type NatsPublisher struct {
	nc *nats.Conn
}

func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

var _ ports.EventPublisher = (*NatsPublisher)(nil)

func (p *NatsPublisher) PublishPostCreated(ctx context.Context, post *domain.Post) error {
	return p.publish(ctx, SubjectPostCreated, newPostCreatedEvent(post))
}

func (p *NatsPublisher) PublishPostDeleted(ctx context.Context, postID string) error {
	return p.publish(ctx, SubjectPostDeleted, PostDeletedEvent{ID: postID})
}

func (p *NatsPublisher) PublishPostLiked(ctx context.Context, postID, userID string, liked bool) error {
	return p.publish(ctx, likeSubject(liked), PostLikedEvent{PostID: postID, UserID: userID, Liked: liked})
}

func (p *NatsPublisher) PublishPostCommented(ctx context.Context, postID string, comment domain.Comment) error {
	return p.publish(ctx, SubjectPostCommented, PostCommentedEvent{
		PostID:    postID,
		CommentID: comment.ID,
		UserID:    comment.UserID,
		CreatedAt: comment.CreatedAt,
	})
}

func (p *NatsPublisher) publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{},
	}
	// Injection du contexte de trace dans les headers NATS
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	slog.DebugContext(ctx, "📢 Publishing event", "subject", subject)
	return p.nc.PublishMsg(msg)
}
