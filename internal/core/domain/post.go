package domain

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// --- ERREURS DU DOMAINE ---
var (
	ErrPostNotFound   = errors.New("post not found")
	ErrInvalidComment = errors.New("comment text is required")
)

// PageSize est le plafond fixe des listings par auteur (pas de curseur).
const PageSize = 10

type Comment struct {
	ID        string
	UserID    string
	Text      string
	CreatedAt time.Time
}

// NewComment valide le texte et prépare un commentaire.
// L'ID et la date sont posés par le store au moment de l'append.
func NewComment(userID, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidComment
	}
	return &Comment{UserID: userID, Text: text}, nil
}

type Post struct {
	ID       string
	AuthorID string
	Text     string
	Media    []Media

	// Champs opaques, jamais interprétés par le moteur
	Links    []string
	HashTags []string
	Mentions []string
	Poll     map[string]any
	Location map[string]any

	Likes     []string
	Comments  []Comment
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Post) IsLikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}

// PostDetail est un Post dont les likes sont "peuplés" avec les projections utilisateur.
type PostDetail struct {
	Post  *Post
	Likes []UserProjection
}
