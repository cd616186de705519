package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
)

func TestMemoryRepo_CreateAssignsIdentityAndTimestamps(t *testing.T) {
	repo := NewMemoryRepo()
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	post := &domain.Post{AuthorID: "u1", Text: "hello"}
	require.NoError(t, repo.Create(context.Background(), post))

	assert.Len(t, post.ID, 24)
	assert.Equal(t, fixed, post.CreatedAt)
	assert.Equal(t, fixed, post.UpdatedAt)
}

func TestMemoryRepo_LikeSetSemantics(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	post := &domain.Post{AuthorID: "u1"}
	require.NoError(t, repo.Create(ctx, post))

	_, err := repo.AddLike(ctx, post.ID, "u2")
	require.NoError(t, err)
	updated, err := repo.AddLike(ctx, post.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, updated.Likes)

	updated, err = repo.RemoveLike(ctx, post.ID, "u2")
	require.NoError(t, err)
	assert.Empty(t, updated.Likes)

	updated, err = repo.RemoveLike(ctx, post.ID, "u2")
	require.NoError(t, err)
	assert.Empty(t, updated.Likes)
}

func TestMemoryRepo_UpdateBumpsUpdatedAt(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	post := &domain.Post{AuthorID: "u1"}
	require.NoError(t, repo.Create(ctx, post))

	clock = clock.Add(time.Hour)
	comment := &domain.Comment{UserID: "u2", Text: "hi"}
	updated, err := repo.AppendComment(ctx, post.ID, comment)
	require.NoError(t, err)

	assert.Equal(t, post.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clock, updated.UpdatedAt)
	assert.Equal(t, clock, comment.CreatedAt)
	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, []domain.Comment{*comment}, updated.Comments)
}

func TestMemoryRepo_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	post := &domain.Post{AuthorID: "u1", Likes: []string{"u2"}}
	require.NoError(t, repo.Create(ctx, post))

	post.Likes[0] = "tampered"
	got, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	got.Likes = append(got.Likes, "tampered-too")

	again, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, again.Likes)
}

func TestMemoryRepo_ListByAuthor(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	var ids []string
	for _, author := range []string{"a", "b", "a", "a"} {
		p := &domain.Post{AuthorID: author}
		require.NoError(t, repo.Create(ctx, p))
		ids = append(ids, p.ID)
	}

	posts, err := repo.ListByAuthor(ctx, "a", 2)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, ids[3], posts[0].ID)
	assert.Equal(t, ids[2], posts[1].ID)

	require.NoError(t, repo.Delete(ctx, ids[3]))
	posts, err = repo.ListByAuthor(ctx, "a", 10)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	none, err := repo.ListByAuthor(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryRepo_NotFound(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), domain.ErrPostNotFound)
	_, err = repo.AddLike(ctx, "missing", "u1")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	_, err = repo.RemoveLike(ctx, "missing", "u1")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	_, err = repo.AppendComment(ctx, "missing", &domain.Comment{Text: "x"})
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}
