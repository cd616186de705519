package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
	"github.com/jupiterclapton/cenackle/services/social-service/pkg/telemetry"
)

type Options struct {
	UploadDir      string // servi en lecture seule sous /uploads
	MaxUploadBytes int64
}

type Server struct {
	service  ports.PostService
	files    ports.FileStore
	verifier TokenVerifier
	metrics  *telemetry.Metrics
	opts     Options
}

func NewServer(service ports.PostService, files ports.FileStore, verifier TokenVerifier, metrics *telemetry.Metrics, opts Options) *Server {
	return &Server{
		service:  service,
		files:    files,
		verifier: verifier,
		metrics:  metrics,
		opts:     opts,
	}
}

// Router construit le moteur gin complet (santé, métriques, uploads, API authentifiée).
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	if s.opts.UploadDir != "" {
		r.Static("/uploads", s.opts.UploadDir)
	}

	s.Register(r.Group("/api/post", s.authenticate()))
	return r
}

func (s *Server) Register(api *gin.RouterGroup) {
	api.POST("", s.createPost)
	api.GET("", s.listOwnPosts)
	api.GET("/user/:userId", s.listUserPosts)
	api.GET("/:postId", s.getPost)
	api.DELETE("/:postId", s.deletePost)

	api.GET("/:postId/likes", s.listLikers)
	api.POST("/:postId/like", s.toggleLike)
	api.POST("/:postId/comment", s.addComment)
}

// observe alimente http_requests_total / http_request_duration_seconds, par route déclarée.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
