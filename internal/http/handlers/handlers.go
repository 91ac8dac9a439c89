// Admin HTTP handlers.
//
// The admin API exposes the bot's stored state for operators:
//   - communities the bot has joined
//   - custom commands per community
//   - role links per community
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-community-bot/internal/domain"
	"github.com/tbourn/go-community-bot/internal/utils"
)

//
// Service contracts (context-aware)
//

// CommunityService defines the community operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CommunityService interface {
	// Get returns a stored community or services.ErrCommunityNotFound.
	Get(ctx context.Context, id int64) (domain.Community, error)
	// ListPage returns a page of communities and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Community, int64, error)
	// Delete removes a community and its custom commands.
	Delete(ctx context.Context, id int64) error
}

// CommandService defines custom command operations consumed by HTTP handlers.
type CommandService interface {
	// List returns the community's commands ordered by trigger.
	List(ctx context.Context, communityID int64) ([]domain.CustomCommand, error)
	// Stats returns the command count and latest update, for ETags.
	Stats(ctx context.Context, communityID int64) (int64, *time.Time, error)
	// Remove deletes a command and its stored file.
	Remove(ctx context.Context, communityID int64, trigger string) (domain.CustomCommand, error)
}

// RoleService defines role link operations consumed by HTTP handlers.
type RoleService interface {
	List(ctx context.Context, communityID int64) ([]domain.RoleLink, error)
	Link(ctx context.Context, communityID, channelID, roleID int64) error
	Unlink(ctx context.Context, channelID, roleID int64) error
}

//
// Handler wiring
//

// Handlers groups the admin endpoints. It depends on abstract service
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	communitySvc CommunityService
	commandSvc   CommandService
	roleSvc      RoleService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(communitySvc CommunityService, commandSvc CommandService, roleSvc RoleService) *Handlers {
	return &Handlers{communitySvc: communitySvc, commandSvc: commandSvc, roleSvc: roleSvc}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// communityID parses the :id path parameter. On failure it writes a 400 and
// returns false.
func communityID(c *gin.Context) (int64, bool) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "community id must be a non-zero integer")
		return 0, false
	}
	return id, true
}
