// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides CommunityRepository, which also owns
// the per-community prefix cache.
//
// Prefix cache semantics:
//
//   - GetPrefix on an unknown community writes the default prefix into the
//     cache before creating or fetching the row, then reconciles the entry to
//     the stored prefix unless a confirmed SetPrefix happened in between.
//   - SetPrefix returns false without touching the store when the prefix is
//     unchanged. Otherwise it issues one conditional UPDATE and writes the
//     cache only when exactly one row changed.
//   - Entries are never evicted, including after an administrative delete.
package repo

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-community-bot/internal/domain"
)

// CommunityRepository persists communities and caches their prefixes.
type CommunityRepository struct {
	*Repository[domain.Community]

	defaultPrefix string
	cache         *prefixCache
}

// NewCommunityRepository returns a repository whose new rows start with
// defaultPrefix. Prefer Communities(reg) so the cache is shared.
func NewCommunityRepository(db *gorm.DB, defaultPrefix string) (*CommunityRepository, error) {
	base, err := NewRepository[domain.Community](db)
	if err != nil {
		return nil, err
	}
	if defaultPrefix == "" {
		defaultPrefix = domain.DefaultPrefix
	}
	return &CommunityRepository{Repository: base, defaultPrefix: defaultPrefix, cache: newPrefixCache()}, nil
}

// DefaultPrefix returns the prefix new communities start with.
func (r *CommunityRepository) DefaultPrefix() string { return r.defaultPrefix }

// CreateOrFetch returns the community with id, inserting it when absent.
// A concurrent insert of the same id is absorbed and the winner's row returned.
func (r *CommunityRepository) CreateOrFetch(ctx context.Context, id int64, name string) (domain.Community, error) {
	if c, ok, err := r.find(ctx, id); err != nil || ok {
		return c, err
	}

	err := r.Insert(ctx, Values{
		"id":             id,
		"name":           name,
		"command_prefix": r.defaultPrefix,
	})
	if err != nil && !errors.Is(err, ErrUniqueViolation) {
		return domain.Community{}, err
	}
	if err != nil {
		log.Debug().Int64("community_id", id).Msg("community created concurrently")
	}

	c, ok, err := r.find(ctx, id)
	if err != nil {
		return domain.Community{}, err
	}
	if !ok {
		return domain.Community{}, ErrNotFound
	}
	return c, nil
}

func (r *CommunityRepository) find(ctx context.Context, id int64) (domain.Community, bool, error) {
	row, err := r.FindByID(ctx, id)
	if err != nil {
		return domain.Community{}, false, err
	}
	c, ok := row.Get()
	return c, ok, nil
}

// Rename stores a new display name and reports whether a row changed.
func (r *CommunityRepository) Rename(ctx context.Context, id int64, name string) (bool, error) {
	n, err := r.UpdateBy(ctx, Criteria{"id": id}, Values{"name": name})
	return n == 1, err
}

// GetPrefix returns the community's command prefix, creating the community
// with the default prefix when it is unknown to the store.
func (r *CommunityRepository) GetPrefix(ctx context.Context, id int64) (string, error) {
	prefix, gen, hit := r.cache.claim(id, r.defaultPrefix)
	if hit {
		return prefix, nil
	}
	c, err := r.CreateOrFetch(ctx, id, "")
	if err != nil {
		r.cache.abandon(id, gen)
		return prefix, err
	}
	return r.cache.reconcile(id, gen, c.CommandPrefix), nil
}

// SetPrefix changes the community's prefix. It returns false with no store
// write when prefix equals the current one. A row that vanished since it was
// cached is recreated first; ErrNotFound means it vanished again.
func (r *CommunityRepository) SetPrefix(ctx context.Context, id int64, prefix string) (bool, error) {
	current, err := r.GetPrefix(ctx, id)
	if err != nil {
		return false, err
	}
	if current == prefix {
		return false, nil
	}
	n, err := r.updatePrefix(ctx, id, prefix)
	if err == nil && n == 0 {
		log.Debug().Int64("community_id", id).Msg("community vanished; recreating before prefix update")
		if _, err = r.CreateOrFetch(ctx, id, ""); err == nil {
			n, err = r.updatePrefix(ctx, id, prefix)
		}
	}
	if err != nil {
		return false, err
	}
	if n != 1 {
		return false, ErrNotFound
	}
	r.cache.store(id, prefix)
	return true, nil
}

func (r *CommunityRepository) updatePrefix(ctx context.Context, id int64, prefix string) (int64, error) {
	return r.UpdateBy(ctx, Criteria{"id": id}, Values{"command_prefix": prefix})
}

// ListPage returns communities ordered by id, starting at offset.
func (r *CommunityRepository) ListPage(ctx context.Context, offset, limit int) ([]domain.Community, error) {
	var out []domain.Community
	err := r.DB(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Delete removes the community and, by cascade, its custom commands. The
// cached prefix keeps being served until the next lookup recreates the row.
func (r *CommunityRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := r.DestroyByID(ctx, id)
	if ok {
		r.cache.invalidate(id)
	}
	return ok, err
}
