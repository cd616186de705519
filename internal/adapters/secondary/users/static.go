package users

import (
	"context"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
)

// StaticDirectory sert un jeu d'utilisateurs fixe (dev local, tests).
type StaticDirectory struct {
	users map[string]domain.UserProjection
}

func NewStaticDirectory(users ...domain.UserProjection) *StaticDirectory {
	m := make(map[string]domain.UserProjection, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &StaticDirectory{users: m}
}

var _ ports.UserDirectory = (*StaticDirectory)(nil)

func (d *StaticDirectory) Project(_ context.Context, userIDs []string, fields ...domain.UserField) ([]domain.UserProjection, error) {
	found := make(map[string]domain.UserProjection, len(userIDs))
	for _, id := range userIDs {
		if u, ok := d.users[id]; ok {
			found[id] = u.Only(fields...)
		}
	}
	return inOrder(userIDs, found), nil
}

// inOrder remet les projections dans l'ordre des ids demandés, en sautant les absents.
func inOrder(userIDs []string, found map[string]domain.UserProjection) []domain.UserProjection {
	out := make([]domain.UserProjection, 0, len(found))
	for _, id := range userIDs {
		if u, ok := found[id]; ok {
			out = append(out, u)
		}
	}
	return out
}
