package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-community-bot/internal/domain"
)

// RoleLinkRepository persists presence-channel to role pairings.
type RoleLinkRepository struct {
	*Repository[domain.RoleLink]
}

// NewRoleLinkRepository returns a repository over role_link. Prefer RoleLinks(reg).
func NewRoleLinkRepository(db *gorm.DB) (*RoleLinkRepository, error) {
	base, err := NewRepository[domain.RoleLink](db)
	if err != nil {
		return nil, err
	}
	return &RoleLinkRepository{Repository: base}, nil
}

// FindByVoiceChannel returns the roles linked to a channel.
func (r *RoleLinkRepository) FindByVoiceChannel(ctx context.Context, channelID int64) ([]domain.RoleLink, error) {
	return r.FindBy(ctx, Criteria{"voice_channel_id": channelID})
}

// FindByCommunity returns every link in a community.
func (r *RoleLinkRepository) FindByCommunity(ctx context.Context, communityID int64) ([]domain.RoleLink, error) {
	return r.FindBy(ctx, Criteria{"guild_id": communityID})
}

// Link pairs channelID with roleID. An existing pair yields an error
// matching ErrUniqueViolation.
func (r *RoleLinkRepository) Link(ctx context.Context, communityID, channelID, roleID int64) error {
	return r.Insert(ctx, Values{
		"guild_id":         communityID,
		"voice_channel_id": channelID,
		"role_id":          roleID,
	})
}

// Unlink removes the pair and reports whether it existed.
func (r *RoleLinkRepository) Unlink(ctx context.Context, channelID, roleID int64) (bool, error) {
	n, err := r.DestroyBy(ctx, Criteria{"voice_channel_id": channelID, "role_id": roleID})
	return n > 0, err
}
