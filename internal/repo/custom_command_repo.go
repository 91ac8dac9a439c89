package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-community-bot/internal/domain"
)

// trigger is a keyword in some dialects; clause columns are quoted.
var byTrigger = clause.OrderByColumn{Column: clause.Column{Name: "trigger"}}

// CustomCommandRepository persists store-defined commands.
type CustomCommandRepository struct {
	*Repository[domain.CustomCommand]
}

// NewCustomCommandRepository returns a repository over custom_command.
// Prefer CustomCommands(reg).
func NewCustomCommandRepository(db *gorm.DB) (*CustomCommandRepository, error) {
	base, err := NewRepository[domain.CustomCommand](db)
	if err != nil {
		return nil, err
	}
	return &CustomCommandRepository{Repository: base}, nil
}

// FindByTrigger returns the community's command for trigger, if any.
func (r *CustomCommandRepository) FindByTrigger(ctx context.Context, communityID int64, trigger string) (Option[domain.CustomCommand], error) {
	return r.FindOneBy(ctx, Criteria{"community_id": communityID, "trigger": trigger})
}

// ListTriggers returns the community's triggers in ascending order.
func (r *CustomCommandRepository) ListTriggers(ctx context.Context, communityID int64) ([]string, error) {
	var out []string
	err := r.DB(ctx).
		Where("community_id = ?", communityID).
		Order(byTrigger).
		Pluck("trigger", &out).Error
	return out, err
}

// ListByCommunity returns the community's commands ordered by trigger.
func (r *CustomCommandRepository) ListByCommunity(ctx context.Context, communityID int64) ([]domain.CustomCommand, error) {
	var out []domain.CustomCommand
	err := r.DB(ctx).
		Where("community_id = ?", communityID).
		Order(byTrigger).
		Find(&out).Error
	return out, err
}

// AddToCommunity inserts a command. A trigger that already exists in the
// community yields an error matching ErrUniqueViolation.
func (r *CustomCommandRepository) AddToCommunity(ctx context.Context, communityID int64, p domain.ParsedCommand) error {
	return r.Insert(ctx, Values{
		"community_id":       communityID,
		"trigger":            p.Trigger,
		"response":           p.Response,
		"file":               p.PathRelative,
		"original_file_name": p.FileName,
	})
}

// UpdateInCommunity replaces the response and attachment of an existing
// command and reports whether it existed.
func (r *CustomCommandRepository) UpdateInCommunity(ctx context.Context, communityID int64, p domain.ParsedCommand) (bool, error) {
	n, err := r.UpdateBy(ctx,
		Criteria{"community_id": communityID, "trigger": p.Trigger},
		Values{
			"response":           p.Response,
			"file":               p.PathRelative,
			"original_file_name": p.FileName,
		})
	return n == 1, err
}

// DeleteFromCommunity removes the command and returns the removed row so the
// caller can clean up its stored file.
func (r *CustomCommandRepository) DeleteFromCommunity(ctx context.Context, communityID int64, trigger string) (Option[domain.CustomCommand], error) {
	row, err := r.FindByTrigger(ctx, communityID, trigger)
	if err != nil || !row.IsSome() {
		return row, err
	}
	n, err := r.DestroyBy(ctx, Criteria{"community_id": communityID, "trigger": trigger})
	if err != nil {
		return None[domain.CustomCommand](), err
	}
	if n == 0 {
		// Lost a race with another delete.
		return None[domain.CustomCommand](), nil
	}
	return row, nil
}
