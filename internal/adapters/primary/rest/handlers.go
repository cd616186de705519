package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
)

func (s *Server) createPost(c *gin.Context) {
	cmd, err := s.readCreatePost(c)
	if err != nil {
		s.discardUploads(c.Request.Context(), cmd.Files)
		s.fail(c, err, "")
		return
	}

	post, err := s.service.CreatePost(c.Request.Context(), cmd)
	if err != nil {
		s.discardUploads(c.Request.Context(), cmd.Files)
		s.fail(c, err, "")
		return
	}
	s.metrics.PostCreated(mediaKind(post))

	c.JSON(http.StatusOK, gin.H{"msg": "Post Created Successfully", "post": toPostResponse(post)})
}

func (s *Server) listOwnPosts(c *gin.Context) {
	posts, err := s.service.ListOwnPosts(c.Request.Context(), ForContext(c.Request.Context()))
	if err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "", "posts": toPostsResponse(posts)})
}

func (s *Server) listUserPosts(c *gin.Context) {
	posts, err := s.service.ListUserPosts(c.Request.Context(), c.Param("userId"))
	if err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "", "posts": toPostsResponse(posts)})
}

func (s *Server) getPost(c *gin.Context) {
	detail, err := s.service.GetPost(c.Request.Context(), c.Param("postId"))
	if err != nil {
		s.fail(c, err, "Post Not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Post Found", "post": toDetailResponse(detail)})
}

func (s *Server) deletePost(c *gin.Context) {
	if err := s.service.DeletePost(c.Request.Context(), c.Param("postId")); err != nil {
		s.fail(c, err, "Post Not Found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Post Deleted Successfully"})
}

func (s *Server) listLikers(c *gin.Context) {
	users, err := s.service.ListLikers(c.Request.Context(), c.Param("postId"))
	if err != nil {
		s.fail(c, err, "Post Not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Fetched all users", "users": toUsersResponse(users)})
}

func (s *Server) toggleLike(c *gin.Context) {
	ctx := c.Request.Context()
	res, err := s.service.ToggleLike(ctx, c.Param("postId"), ForContext(ctx))
	if err != nil {
		s.fail(c, err, "Post Not found")
		return
	}
	s.metrics.LikeToggled(res.Liked)

	msg := "Unliked Post"
	if res.Liked {
		msg = "Liked Post"
	}
	c.JSON(http.StatusOK, gin.H{"msg": msg, "post": toPostResponse(res.Post)})
}

func (s *Server) addComment(c *gin.Context) {
	text, err := s.readComment(c)
	if err != nil {
		s.fail(c, err, "")
		return
	}

	ctx := c.Request.Context()
	post, err := s.service.AddComment(ctx, c.Param("postId"), ForContext(ctx), text)
	if err != nil {
		s.fail(c, err, "No Post Found")
		return
	}
	s.metrics.Commented()

	c.JSON(http.StatusOK, gin.H{"msg": "Commented Successfully", "post": toPostResponse(post)})
}

// fail traduit les erreurs du domaine en statuts HTTP. notFoundMsg est propre à chaque route.
func (s *Server) fail(c *gin.Context, err error, notFoundMsg string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrPostNotFound) && notFoundMsg != "":
		c.JSON(http.StatusNotFound, gin.H{"msg": notFoundMsg})
	case errors.Is(err, domain.ErrInvalidComment):
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Comment text is required"})
	case errors.Is(err, errInvalidBody):
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request body", "error": err.Error()})
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"msg": "Upload too large"})
	default:
		slog.ErrorContext(c.Request.Context(), "Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Internal Server Error", "error": err.Error()})
	}
}
