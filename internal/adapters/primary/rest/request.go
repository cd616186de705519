package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
)

var errInvalidBody = errors.New("invalid request body")

// Taille max d'un champ texte d'un formulaire multipart
const maxFieldBytes = 1 << 20

type createPostRequest struct {
	Text     string         `json:"text"`
	Links    []string       `json:"links"`
	HashTags []string       `json:"hashTags"`
	Mentions []string       `json:"mentions"`
	Poll     map[string]any `json:"poll"`
	Location map[string]any `json:"location"`
}

type commentRequest struct {
	Text string `json:"text"`
}

// readCreatePost accepte un corps JSON ou un formulaire multipart (champs + fichiers sous n'importe quel nom).
func (s *Server) readCreatePost(c *gin.Context) (ports.CreatePostCmd, error) {
	cmd := ports.CreatePostCmd{AuthorID: ForContext(c.Request.Context())}

	mediaType, _, _ := mime.ParseMediaType(c.ContentType())
	if mediaType == "multipart/form-data" {
		return s.readMultipart(c, cmd)
	}

	var req createPostRequest
	if err := bindJSON(c, &req); err != nil {
		return cmd, err
	}
	cmd.Text = req.Text
	cmd.Links = req.Links
	cmd.HashTags = req.HashTags
	cmd.Mentions = req.Mentions
	cmd.Poll = req.Poll
	cmd.Location = req.Location
	return cmd, nil
}

// readMultipart lit les parts dans l'ordre : l'ordre des fichiers donne l'ordre des médias.
func (s *Server) readMultipart(c *gin.Context, cmd ports.CreatePostCmd) (ports.CreatePostCmd, error) {
	ctx := c.Request.Context()
	if s.opts.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
	}

	mr, err := c.Request.MultipartReader()
	if err != nil {
		return cmd, fmt.Errorf("%w: %v", errInvalidBody, err)
	}

	values := map[string][]string{}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return cmd, multipartError(err)
		}

		if part.FileName() != "" {
			file, err := s.files.Save(ctx, part.FileName(), part.Header.Get("Content-Type"), part)
			part.Close()
			if err != nil {
				return cmd, err
			}
			cmd.Files = append(cmd.Files, file)
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
		part.Close()
		if err != nil {
			return cmd, multipartError(err)
		}
		values[part.FormName()] = append(values[part.FormName()], string(data))
	}

	cmd.Text = first(values["text"])
	cmd.Links = stringList(values["links"])
	cmd.HashTags = stringList(values["hashTags"])
	cmd.Mentions = stringList(values["mentions"])
	if cmd.Poll, err = jsonObject(first(values["poll"])); err != nil {
		return cmd, err
	}
	if cmd.Location, err = jsonObject(first(values["location"])); err != nil {
		return cmd, err
	}
	return cmd, nil
}

func (s *Server) readComment(c *gin.Context) (string, error) {
	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		return "", err
	}
	return req.Text, nil
}

// bindJSON tolère un corps vide.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// Un dépassement de taille reste une *http.MaxBytesError ; le reste est un corps invalide.
func multipartError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", errInvalidBody, err)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// stringList : soit un champ répété, soit un seul champ contenant un tableau JSON.
func stringList(values []string) []string {
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var list []string
		if err := json.Unmarshal([]byte(values[0]), &list); err == nil {
			return list
		}
	}
	return values
}

func jsonObject(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return obj, nil
}

// discardUploads supprime les fichiers déjà écrits d'une création qui échoue.
func (s *Server) discardUploads(ctx context.Context, files []domain.UploadedFile) {
	for _, file := range files {
		if err := s.files.Remove(ctx, file); err != nil {
			slog.WarnContext(ctx, "Failed to remove orphan upload", "file", file.Filename, "error", err)
		}
	}
}

// mediaKind : type du premier média, "post" si texte seul.
func mediaKind(post *domain.Post) string {
	if len(post.Media) > 0 {
		return string(post.Media[0].Type)
	}
	return "post"
}
