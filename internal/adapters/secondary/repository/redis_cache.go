package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
)

// versionTTL borne la durée de vie des compteurs de version, bien au-delà d'une lecture du store.
const versionTTL = time.Hour

var errStaleFill = errors.New("cache: post changed during fill")

// CachedRepo est un cache read-through devant le vrai store.
// Le store reste la source de vérité : toute erreur Redis retombe sur le store.
// Chaque invalidation incrémente post:<id>:v ; un remplissage n'est écrit que si
// la version lue avant la lecture du store n'a pas bougé.
type CachedRepo struct {
	next   ports.PostRepository
	client *redis.Client
	ttl    time.Duration
}

func NewCachedRepo(next ports.PostRepository, client *redis.Client, ttl time.Duration) *CachedRepo {
	return &CachedRepo{next: next, client: client, ttl: ttl}
}

var _ ports.PostRepository = (*CachedRepo)(nil)

func postKey(postID string) string {
	return fmt.Sprintf("post:%s", postID)
}

func versionKey(postID string) string {
	return fmt.Sprintf("post:%s:v", postID)
}

func (r *CachedRepo) Create(ctx context.Context, post *domain.Post) error {
	return r.next.Create(ctx, post)
}

func (r *CachedRepo) FindByID(ctx context.Context, postID string) (*domain.Post, error) {
	data, err := r.client.Get(ctx, postKey(postID)).Bytes()
	switch {
	case err == nil:
		var post domain.Post
		if err := json.Unmarshal(data, &post); err == nil {
			return &post, nil
		}
		slog.WarnContext(ctx, "Corrupted post in cache", "post_id", postID)
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "Redis read failed, falling back to store", "post_id", postID, "error", err)
	}

	version, versionErr := r.client.Get(ctx, versionKey(postID)).Result()
	if errors.Is(versionErr, redis.Nil) {
		version, versionErr = "", nil
	}

	post, err := r.next.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if versionErr == nil {
		r.store(ctx, post, version)
	}
	return post, nil
}

func (r *CachedRepo) ListByAuthor(ctx context.Context, authorID string, limit int) ([]*domain.Post, error) {
	return r.next.ListByAuthor(ctx, authorID, limit)
}

func (r *CachedRepo) Delete(ctx context.Context, postID string) error {
	if err := r.next.Delete(ctx, postID); err != nil {
		return err
	}
	r.invalidate(ctx, postID)
	return nil
}

func (r *CachedRepo) AddLike(ctx context.Context, postID, userID string) (*domain.Post, error) {
	return r.mutated(ctx, postID)(r.next.AddLike(ctx, postID, userID))
}

func (r *CachedRepo) RemoveLike(ctx context.Context, postID, userID string) (*domain.Post, error) {
	return r.mutated(ctx, postID)(r.next.RemoveLike(ctx, postID, userID))
}

func (r *CachedRepo) AppendComment(ctx context.Context, postID string, comment *domain.Comment) (*domain.Post, error) {
	return r.mutated(ctx, postID)(r.next.AppendComment(ctx, postID, comment))
}

// mutated supprime la clé après une mutation réussie (jamais de réécriture).
func (r *CachedRepo) mutated(ctx context.Context, postID string) func(*domain.Post, error) (*domain.Post, error) {
	return func(post *domain.Post, err error) (*domain.Post, error) {
		if err != nil {
			return nil, err
		}
		r.invalidate(ctx, postID)
		return post, nil
	}
}

// store écrit le post sous WATCH du compteur de version : une invalidation
// concurrente fait échouer l'écriture au lieu de réinstaller une copie périmée.
func (r *CachedRepo) store(ctx context.Context, post *domain.Post, version string) {
	data, err := json.Marshal(post)
	if err != nil {
		return
	}

	vkey := versionKey(post.ID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, postKey(post.ID), data, r.ttl)
			return nil
		})
		return err
	}, vkey)

	switch {
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		slog.DebugContext(ctx, "Skipped stale cache fill", "post_id", post.ID)
	case err != nil:
		slog.WarnContext(ctx, "Redis write failed", "post_id", post.ID, "error", err)
	}
}

func (r *CachedRepo) invalidate(ctx context.Context, postID string) {
	vkey := versionKey(postID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, vkey)
		pipe.Expire(ctx, vkey, versionTTL)
		pipe.Del(ctx, postKey(postID))
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "Redis invalidation failed", "post_id", postID, "error", err)
	}
}
