package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
	"cadi-backend/internal/infra/metrics"
	red "cadi-backend/internal/infra/redis"
)

var _ repository.UserRepository = (*userRepoCacheDecorator)(nil)

// userRepoCacheDecorator caches single-user lookups outside transactions.
// Lookups inside a transaction always hit the database.
type userRepoCacheDecorator struct {
	inner repository.UserRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewUserRepoCacheDecorator(inner repository.UserRepository, cache red.RedisClient, ttl time.Duration) repository.UserRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &userRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func userIDKey(id string) string         { return fmt.Sprintf("user:id:%s", id) }
func userNameKey(username string) string { return fmt.Sprintf("user:username:%s", username) }

func (d *userRepoCacheDecorator) invalidate(ctx context.Context, u *model.User) {
	if err := d.cache.Del(ctx, userIDKey(u.ID), userNameKey(u.Username)); err != nil {
		metrics.IncCacheError("user", "del")
	}
}

func (d *userRepoCacheDecorator) store(ctx context.Context, u *model.User) {
	bytes, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := d.cache.Set(ctx, userIDKey(u.ID), bytes, d.ttl); err != nil {
		metrics.IncCacheError("user", "set")
		return
	}
	_ = d.cache.Set(ctx, userNameKey(u.Username), bytes, d.ttl)
}

func (d *userRepoCacheDecorator) lookup(ctx context.Context, key string) (*model.User, bool) {
	val, err := d.cache.Get(ctx, key)
	if err != nil {
		if !red.IsMiss(err) {
			metrics.IncCacheError("user", "get")
		}
		return nil, false
	}
	var user model.User
	if json.Unmarshal([]byte(val), &user) != nil {
		return nil, false
	}
	return &user, true
}

func (d *userRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, u *model.User) error {
	return d.inner.Create(ctx, tx, u)
}

func (d *userRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	d.invalidate(ctx, u)
	return d.inner.Save(ctx, tx, u)
}

func (d *userRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	if u, ok := d.lookup(ctx, userIDKey(id)); ok {
		metrics.IncCacheRequest("user", "hit")
		return u, nil
	}
	metrics.IncCacheRequest("user", "miss")
	user, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	d.store(ctx, user)
	return user, nil
}

func (d *userRepoCacheDecorator) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.User, error) {
	if tx != nil {
		return d.inner.FindByUsername(ctx, tx, username)
	}
	if u, ok := d.lookup(ctx, userNameKey(username)); ok {
		metrics.IncCacheRequest("user", "hit")
		return u, nil
	}
	metrics.IncCacheRequest("user", "miss")
	user, err := d.inner.FindByUsername(ctx, tx, username)
	if err != nil {
		return nil, err
	}
	d.store(ctx, user)
	return user, nil
}

// Pass-through methods that don't need caching
func (d *userRepoCacheDecorator) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return d.inner.FindByEmail(ctx, tx, email)
}

func (d *userRepoCacheDecorator) ListByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.User, error) {
	return d.inner.ListByIDs(ctx, tx, ids)
}

func (d *userRepoCacheDecorator) ListByRole(ctx context.Context, tx repository.Tx, role model.Role) ([]*model.User, error) {
	return d.inner.ListByRole(ctx, tx, role)
}

func (d *userRepoCacheDecorator) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	if limit == 0 {
		metrics.IncCacheRequest("user_list", "bypass")
	}
	return d.inner.List(ctx, tx, offset, limit)
}

