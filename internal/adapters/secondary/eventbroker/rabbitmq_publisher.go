package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
)

const ExchangeName = "posts"

// RabbitPublisher publie sur un exchange "topic" ; la routing key est le sujet de l'événement.
type RabbitPublisher struct {
	ch *amqp.Channel
}

// NewRabbitPublisher déclare l'exchange (idempotent).
func NewRabbitPublisher(ch *amqp.Channel) (*RabbitPublisher, error) {
	err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: declare exchange: %w", err)
	}
	return &RabbitPublisher{ch: ch}, nil
}

var _ ports.EventPublisher = (*RabbitPublisher)(nil)

func (p *RabbitPublisher) PublishPostCreated(ctx context.Context, post *domain.Post) error {
	return p.publish(ctx, SubjectPostCreated, newPostCreatedEvent(post))
}

func (p *RabbitPublisher) PublishPostDeleted(ctx context.Context, postID string) error {
	return p.publish(ctx, SubjectPostDeleted, PostDeletedEvent{ID: postID})
}

func (p *RabbitPublisher) PublishPostLiked(ctx context.Context, postID, userID string, liked bool) error {
	return p.publish(ctx, likeSubject(liked), PostLikedEvent{PostID: postID, UserID: userID, Liked: liked})
}

func (p *RabbitPublisher) PublishPostCommented(ctx context.Context, postID string, comment domain.Comment) error {
	return p.publish(ctx, SubjectPostCommented, PostCommentedEvent{
		PostID:    postID,
		CommentID: comment.ID,
		UserID:    comment.UserID,
		CreatedAt: comment.CreatedAt,
	})
}

func (p *RabbitPublisher) publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}

	return p.ch.PublishWithContext(ctx, ExchangeName, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
