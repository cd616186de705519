package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/adapters/secondary/users"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/services"
)

// --- Fakes ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) record(event string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) PublishPostCreated(_ context.Context, post *domain.Post) error {
	return p.record("created:" + post.ID)
}

func (p *recordingPublisher) PublishPostDeleted(_ context.Context, postID string) error {
	return p.record("deleted:" + postID)
}

func (p *recordingPublisher) PublishPostLiked(_ context.Context, postID, userID string, liked bool) error {
	return p.record(fmt.Sprintf("liked:%s:%s:%t", postID, userID, liked))
}

func (p *recordingPublisher) PublishPostCommented(_ context.Context, postID string, c domain.Comment) error {
	return p.record(fmt.Sprintf("commented:%s:%s", postID, c.UserID))
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type failingDirectory struct{}

func (failingDirectory) Project(context.Context, []string, ...domain.UserField) ([]domain.UserProjection, error) {
	return nil, errors.New("directory down")
}

var (
	ada   = domain.UserProjection{ID: "u-ada", FullName: "Ada Lovelace", Username: "ada", Email: "ada@example.com"}
	grace = domain.UserProjection{ID: "u-grace", FullName: "Grace Hopper", Username: "grace", Email: "grace@example.com"}
)

type fixture struct {
	svc  ports.PostService
	repo *repository.MemoryRepo
	pub  *recordingPublisher
}

func newFixture() fixture {
	repo := repository.NewMemoryRepo()
	pub := &recordingPublisher{}
	return fixture{
		svc:  services.NewPostService(repo, users.NewStaticDirectory(ada, grace), pub),
		repo: repo,
		pub:  pub,
	}
}

func (f fixture) createPost(t *testing.T, author, text string) *domain.Post {
	t.Helper()
	post, err := f.svc.CreatePost(context.Background(), ports.CreatePostCmd{AuthorID: author, Text: text})
	require.NoError(t, err)
	return post
}

// --- Tests ---

func TestCreateAndToggleRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	post := f.createPost(t, ada.ID, "hello")
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, ada.ID, post.AuthorID)
	assert.Equal(t, []domain.Media{}, post.Media)
	assert.Equal(t, []string{}, post.Likes)
	assert.Equal(t, []domain.Comment{}, post.Comments)

	res, err := f.svc.ToggleLike(ctx, post.ID, grace.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, []string{grace.ID}, res.Post.Likes)

	res, err = f.svc.ToggleLike(ctx, post.ID, grace.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Empty(t, res.Post.Likes)

	assert.Equal(t, []string{
		"created:" + post.ID,
		"liked:" + post.ID + ":u-grace:true",
		"liked:" + post.ID + ":u-grace:false",
	}, f.pub.Events())
}

func TestCreatePost_ClassifiesMedia(t *testing.T) {
	f := newFixture()

	post, err := f.svc.CreatePost(context.Background(), ports.CreatePostCmd{
		AuthorID: ada.ID,
		Links:    []string{"https://example.com"},
		HashTags: []string{"go"},
		Poll:     map[string]any{"question": "tabs?"},
		Files: []domain.UploadedFile{
			{Destination: "uploads", Filename: "clip.mp4", MimeType: "video/mp4"},
			{Destination: "uploads", Filename: "doc.pdf", MimeType: "application/pdf"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.Media{
		{URL: "uploads/clip.mp4", Type: domain.MediaTypeVideo},
		{URL: "uploads/doc.pdf", Type: domain.MediaTypeGIF},
	}, post.Media)
	assert.Equal(t, []string{"https://example.com"}, post.Links)
	assert.Equal(t, map[string]any{"question": "tabs?"}, post.Poll)
}

func TestToggleLike_DistinctUsersKeepInsertionOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	post := f.createPost(t, ada.ID, "hello")

	_, err := f.svc.ToggleLike(ctx, post.ID, grace.ID)
	require.NoError(t, err)
	res, err := f.svc.ToggleLike(ctx, post.ID, ada.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{grace.ID, ada.ID}, res.Post.Likes)
}

func TestAddComment_AppendsInOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	post := f.createPost(t, ada.ID, "hello")

	const n = 5
	var last *domain.Post
	for i := 0; i < n; i++ {
		var err error
		last, err = f.svc.AddComment(ctx, post.ID, grace.ID, fmt.Sprintf("comment %d", i))
		require.NoError(t, err)
	}

	require.Len(t, last.Comments, n)
	for i, c := range last.Comments {
		assert.Equal(t, fmt.Sprintf("comment %d", i), c.Text)
		assert.Equal(t, grace.ID, c.UserID)
		assert.NotEmpty(t, c.ID)
		assert.False(t, c.CreatedAt.IsZero())
	}
}

func TestAddComment_RejectsEmptyText(t *testing.T) {
	f := newFixture()
	post := f.createPost(t, ada.ID, "hello")

	_, err := f.svc.AddComment(context.Background(), post.ID, grace.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidComment)

	stored, err := f.repo.FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Comments)
}

func TestListings_CapAndScope(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		f.createPost(t, ada.ID, fmt.Sprintf("ada %d", i))
	}
	f.createPost(t, grace.ID, "grace 0")

	own, err := f.svc.ListOwnPosts(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, own, domain.PageSize)
	assert.Equal(t, "ada 11", own[0].Text, "newest first")
	for _, p := range own {
		assert.Equal(t, ada.ID, p.AuthorID)
	}

	other, err := f.svc.ListUserPosts(ctx, grace.ID)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "grace 0", other[0].Text)

	unknown, err := f.svc.ListUserPosts(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestGetPost_ExpandsLikes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	post := f.createPost(t, ada.ID, "hello")

	_, err := f.svc.ToggleLike(ctx, post.ID, grace.ID)
	require.NoError(t, err)
	_, err = f.svc.ToggleLike(ctx, post.ID, "u-deleted")
	require.NoError(t, err)

	detail, err := f.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, detail.Post.ID)
	assert.Equal(t, []domain.UserProjection{grace}, detail.Likes, "unknown users are skipped")
}

func TestListLikers_ProjectsNameAndEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	post := f.createPost(t, ada.ID, "hello")

	_, err := f.svc.ToggleLike(ctx, post.ID, grace.ID)
	require.NoError(t, err)
	_, err = f.svc.ToggleLike(ctx, post.ID, ada.ID)
	require.NoError(t, err)

	likers, err := f.svc.ListLikers(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.UserProjection{
		{ID: grace.ID, FullName: grace.FullName, Email: grace.Email},
		{ID: ada.ID, FullName: ada.FullName, Email: ada.Email},
	}, likers)
}

func TestDeletePost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	post := f.createPost(t, ada.ID, "hello")

	require.NoError(t, f.svc.DeletePost(ctx, post.ID))
	_, err := f.svc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	assert.Contains(t, f.pub.Events(), "deleted:"+post.ID)

	assert.ErrorIs(t, f.svc.DeletePost(ctx, post.ID), domain.ErrPostNotFound)
}

func TestUnknownPost_NotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, id := range []string{primitive.NewObjectID().Hex(), "not-an-object-id"} {
		_, err := f.svc.GetPost(ctx, id)
		assert.ErrorIs(t, err, domain.ErrPostNotFound)

		assert.ErrorIs(t, f.svc.DeletePost(ctx, id), domain.ErrPostNotFound)

		_, err = f.svc.ListLikers(ctx, id)
		assert.ErrorIs(t, err, domain.ErrPostNotFound)

		_, err = f.svc.ToggleLike(ctx, id, ada.ID)
		assert.ErrorIs(t, err, domain.ErrPostNotFound)

		_, err = f.svc.AddComment(ctx, id, ada.ID, "hi")
		assert.ErrorIs(t, err, domain.ErrPostNotFound)
	}
	assert.Empty(t, f.pub.Events())
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture()
	f.pub.err = errors.New("broker down")
	ctx := context.Background()

	post := f.createPost(t, ada.ID, "hello")
	res, err := f.svc.ToggleLike(ctx, post.ID, grace.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)

	_, err = f.svc.AddComment(ctx, post.ID, grace.ID, "still saved")
	require.NoError(t, err)
}

func TestGetPost_DirectoryFailure(t *testing.T) {
	repo := repository.NewMemoryRepo()
	svc := services.NewPostService(repo, failingDirectory{}, &recordingPublisher{})
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, ports.CreatePostCmd{AuthorID: ada.ID})
	require.NoError(t, err)

	_, err = svc.GetPost(ctx, post.ID)
	assert.EqualError(t, err, "directory down")
}

// barrierRepo bloque chaque lecture jusqu'à ce que toutes les lectures attendues soient faites :
// les toggles concurrents voient tous le même état initial.
type barrierRepo struct {
	ports.PostRepository
	reads sync.WaitGroup
}

func (r *barrierRepo) FindByID(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := r.PostRepository.FindByID(ctx, postID)
	r.reads.Done()
	r.reads.Wait()
	return post, err
}

func TestToggleLike_ConcurrentSameLikerNeverDuplicates(t *testing.T) {
	mem := repository.NewMemoryRepo()
	ctx := context.Background()
	post := &domain.Post{AuthorID: ada.ID}
	require.NoError(t, mem.Create(ctx, post))

	const togglers = 4
	repo := &barrierRepo{PostRepository: mem}
	repo.reads.Add(togglers)
	svc := services.NewPostService(repo, users.NewStaticDirectory(), &recordingPublisher{})

	var wg sync.WaitGroup
	results := make([]*ports.LikeResult, togglers)
	for i := 0; i < togglers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.ToggleLike(ctx, post.ID, grace.ID)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	// Toutes les lectures ont vu "pas liké" : chacun ajoute, l'ajout est idempotent.
	for _, res := range results {
		require.NotNil(t, res)
		assert.True(t, res.Liked)
	}
	stored, err := mem.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{grace.ID}, stored.Likes)
}

func TestToggleLike_ConcurrentDistinctLikers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	post := f.createPost(t, ada.ID, "hello")

	const likers = 20
	var wg sync.WaitGroup
	for i := 0; i < likers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.ToggleLike(ctx, post.ID, fmt.Sprintf("user-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := f.repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Likes, likers)
	assert.ElementsMatch(t, uniq(stored.Likes), stored.Likes)
}

func uniq(ids []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
