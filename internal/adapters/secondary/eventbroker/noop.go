package eventbroker

import (
	"context"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
)

// NoopPublisher : EVENT_BROKER=none
type NoopPublisher struct{}

var _ ports.EventPublisher = NoopPublisher{}

func (NoopPublisher) PublishPostCreated(context.Context, *domain.Post) error        { return nil }
func (NoopPublisher) PublishPostDeleted(context.Context, string) error              { return nil }
func (NoopPublisher) PublishPostLiked(context.Context, string, string, bool) error  { return nil }
func (NoopPublisher) PublishPostCommented(context.Context, string, domain.Comment) error {
	return nil
}
