// Package services – CommunityService
//
// This file implements the CommunityService, which tracks the communities
// the bot serves: joining on membership events, following renames, and the
// read/delete operations behind the admin API.
package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/tbourn/go-community-bot/internal/domain"
	"github.com/tbourn/go-community-bot/internal/repo"
)

// CommunityRepo defines the repository contract required by CommunityService.
type CommunityRepo interface {
	// CreateOrFetch returns the community, inserting it when absent.
	CreateOrFetch(ctx context.Context, id int64, name string) (domain.Community, error)

	// Rename stores a new display name; false when no row changed.
	Rename(ctx context.Context, id int64, name string) (bool, error)

	// FindByID returns the community, if stored.
	FindByID(ctx context.Context, id any) (repo.Option[domain.Community], error)

	// Delete removes the community and its commands.
	Delete(ctx context.Context, id int64) (bool, error)

	// Count returns the number of rows matching criteria (nil = all).
	Count(ctx context.Context, c repo.Criteria) (int64, error)

	// ListPage returns communities ordered by id.
	ListPage(ctx context.Context, offset, limit int) ([]domain.Community, error)
}

// CommunityService manages community rows.
type CommunityService struct {
	Repo CommunityRepo

	// NameMaxLen caps stored names by rune length.
	NameMaxLen int
}

// NewCommunityService constructs a CommunityService with default limits.
func NewCommunityService(r CommunityRepo) *CommunityService {
	return &CommunityService{Repo: r, NameMaxLen: 255}
}

// Join records that the bot is present in a community and refreshes its
// name when it changed.
func (s *CommunityService) Join(ctx context.Context, id int64, name string) (domain.Community, error) {
	name = s.clip(normalizeName(name))
	c, err := s.Repo.CreateOrFetch(ctx, id, name)
	if err != nil {
		return domain.Community{}, err
	}
	if name != "" && c.Name != name {
		if _, err := s.Repo.Rename(ctx, id, name); err != nil {
			return domain.Community{}, err
		}
		c.Name = name
	}
	return c, nil
}

// Rename follows a title change. Unknown communities are created first.
func (s *CommunityService) Rename(ctx context.Context, id int64, name string) error {
	_, err := s.Join(ctx, id, name)
	return err
}

// Get returns a stored community or ErrCommunityNotFound.
func (s *CommunityService) Get(ctx context.Context, id int64) (domain.Community, error) {
	row, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return domain.Community{}, err
	}
	c, ok := row.Get()
	if !ok {
		return domain.Community{}, ErrCommunityNotFound
	}
	return c, nil
}

// Delete removes a community and, by cascade, its custom commands.
func (s *CommunityService) Delete(ctx context.Context, id int64) error {
	ok, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCommunityNotFound
	}
	return nil
}

// ListPage returns a page of communities (paginated).
// It applies defaults for invalid page/pageSize and returns total count.
func (s *CommunityService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Community, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.Count(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Community{}, 0, nil
	}

	items, err := s.Repo.ListPage(ctx, offset, pageSize)
	return items, total, err
}

func (s *CommunityService) clip(name string) string {
	if s.NameMaxLen > 0 && utf8.RuneCountInString(name) > s.NameMaxLen {
		return string([]rune(name)[:s.NameMaxLen])
	}
	return name
}

// normalizeName trims whitespace and collapses runs of spaces.
func normalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
