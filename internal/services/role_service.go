// Package services – RoleService
//
// This file implements role links: pairings of a presence channel with a
// role. Only the persistence side is provided; the platform has no
// presence-channel roles to act on.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tbourn/go-community-bot/internal/domain"
	"github.com/tbourn/go-community-bot/internal/repo"
)

// RoleLinkRepo defines the repository contract required by RoleService.
type RoleLinkRepo interface {
	FindByVoiceChannel(ctx context.Context, channelID int64) ([]domain.RoleLink, error)
	FindByCommunity(ctx context.Context, communityID int64) ([]domain.RoleLink, error)
	Link(ctx context.Context, communityID, channelID, roleID int64) error
	Unlink(ctx context.Context, channelID, roleID int64) (bool, error)
}

// RoleService manages role links.
type RoleService struct {
	Repo RoleLinkRepo
}

// NewRoleService constructs a RoleService.
func NewRoleService(r RoleLinkRepo) *RoleService {
	return &RoleService{Repo: r}
}

// Link pairs a channel with a role.
func (s *RoleService) Link(ctx context.Context, communityID, channelID, roleID int64) error {
	if channelID <= 0 || roleID <= 0 {
		return ErrInvalidID
	}
	if err := s.Repo.Link(ctx, communityID, channelID, roleID); err != nil {
		if errors.Is(err, repo.ErrUniqueViolation) {
			return fmt.Errorf("%w: %v", ErrRoleLinkExists, err)
		}
		return err
	}
	return nil
}

// Unlink removes a pairing.
func (s *RoleService) Unlink(ctx context.Context, channelID, roleID int64) error {
	ok, err := s.Repo.Unlink(ctx, channelID, roleID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRoleLinkNotFound
	}
	return nil
}

// List returns every link in a community.
func (s *RoleService) List(ctx context.Context, communityID int64) ([]domain.RoleLink, error) {
	return s.Repo.FindByCommunity(ctx, communityID)
}

// RolesFor returns the roles granted while present in a channel.
func (s *RoleService) RolesFor(ctx context.Context, channelID int64) ([]int64, error) {
	links, err := s.Repo.FindByVoiceChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(links))
	for _, l := range links {
		out = append(out, l.RoleID)
	}
	return out, nil
}
