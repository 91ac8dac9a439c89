// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// for conditional responses (ETag generation) in the admin HTTP layer.
package repo

import (
	"context"
	"time"
)

// Stats returns aggregate metadata for a community's custom commands: the
// total number of rows and the maximum UpdatedAt timestamp among those rows.
//
// When the community has no commands, the returned count is 0 and
// maxUpdatedAt is nil.
func (r *CustomCommandRepository) Stats(ctx context.Context, communityID int64) (count int64, maxUpdatedAt *time.Time, err error) {
	q := r.DB(ctx).Where("community_id = ?", communityID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = r.DB(ctx).Where("community_id = ?", communityID).
		Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
