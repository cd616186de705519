package rest

import (
	"time"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
)

type mediaResponse struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

type commentResponse struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type userResponse struct {
	ID       string `json:"_id,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// postResponse : Likes vaut []string, ou []userResponse une fois peuplé (getPost).
type postResponse struct {
	ID        string            `json:"_id"`
	Text      string            `json:"text,omitempty"`
	Media     []mediaResponse   `json:"media"`
	Author    string            `json:"author"`
	Links     []string          `json:"links,omitempty"`
	HashTags  []string          `json:"hashTags,omitempty"`
	Mentions  []string          `json:"mentions,omitempty"`
	Poll      map[string]any    `json:"poll,omitempty"`
	Location  map[string]any    `json:"location,omitempty"`
	Likes     any               `json:"likes"`
	Comments  []commentResponse `json:"comments"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// --- Mappers (Domain -> JSON) ---

func toPostResponse(p *domain.Post) postResponse {
	media := make([]mediaResponse, len(p.Media))
	for i, m := range p.Media {
		media[i] = mediaResponse{URL: m.URL, Type: string(m.Type)}
	}

	comments := make([]commentResponse, len(p.Comments))
	for i, c := range p.Comments {
		comments[i] = commentResponse{ID: c.ID, User: c.UserID, Text: c.Text, CreatedAt: c.CreatedAt}
	}

	likes := p.Likes
	if likes == nil {
		likes = []string{}
	}

	return postResponse{
		ID:        p.ID,
		Text:      p.Text,
		Media:     media,
		Author:    p.AuthorID,
		Links:     p.Links,
		HashTags:  p.HashTags,
		Mentions:  p.Mentions,
		Poll:      p.Poll,
		Location:  p.Location,
		Likes:     likes,
		Comments:  comments,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toPostsResponse(posts []*domain.Post) []postResponse {
	out := make([]postResponse, len(posts))
	for i, p := range posts {
		out[i] = toPostResponse(p)
	}
	return out
}

func toDetailResponse(d *domain.PostDetail) postResponse {
	resp := toPostResponse(d.Post)
	resp.Likes = toUsersResponse(d.Likes)
	return resp
}

func toUsersResponse(users []domain.UserProjection) []userResponse {
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = userResponse{ID: u.ID, FullName: u.FullName, Username: u.Username, Email: u.Email}
	}
	return out
}
