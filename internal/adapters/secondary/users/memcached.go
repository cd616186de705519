package users

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
)

const keyPrefix = "user-projection:"

type cachedUser struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CachedDirectory garde les projections COMPLÈTES en Memcached et coupe selon les champs demandés.
type CachedDirectory struct {
	next ports.UserDirectory
	mc   *memcache.Client
	ttl  int32 // secondes
}

func NewCachedDirectory(next ports.UserDirectory, mc *memcache.Client, ttlSeconds int32) *CachedDirectory {
	return &CachedDirectory{next: next, mc: mc, ttl: ttlSeconds}
}

var _ ports.UserDirectory = (*CachedDirectory)(nil)

func (d *CachedDirectory) Project(ctx context.Context, userIDs []string, fields ...domain.UserField) ([]domain.UserProjection, error) {
	if len(userIDs) == 0 {
		return []domain.UserProjection{}, nil
	}

	found := make(map[string]domain.UserProjection, len(userIDs))

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = keyPrefix + id
	}
	items, err := d.mc.GetMulti(keys)
	if err != nil {
		slog.WarnContext(ctx, "Memcached read failed, falling back", "error", err)
		items = nil
	}
	for _, item := range items {
		var u cachedUser
		if err := json.Unmarshal(item.Value, &u); err != nil {
			continue
		}
		found[u.ID] = domain.UserProjection{ID: u.ID, FullName: u.FullName, Username: u.Username, Email: u.Email}
	}

	var missing []string
	for _, id := range userIDs {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		fetched, err := d.next.Project(ctx, missing, domain.AllUserFields...)
		if err != nil {
			return nil, err
		}
		for _, u := range fetched {
			found[u.ID] = u
			d.store(ctx, u)
		}
	}

	for id, u := range found {
		found[id] = u.Only(fields...)
	}
	return inOrder(userIDs, found), nil
}

func (d *CachedDirectory) store(ctx context.Context, u domain.UserProjection) {
	data, err := json.Marshal(cachedUser{ID: u.ID, FullName: u.FullName, Username: u.Username, Email: u.Email})
	if err != nil {
		return
	}
	err = d.mc.Set(&memcache.Item{Key: keyPrefix + u.ID, Value: data, Expiration: d.ttl})
	if err != nil {
		slog.WarnContext(ctx, "Memcached write failed", "user_id", u.ID, "error", err)
	}
}
