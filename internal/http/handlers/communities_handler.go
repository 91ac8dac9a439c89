// Community HTTP handlers.
//
//   - GET    /communities        (list, paginated)
//   - GET    /communities/{id}   (fetch)
//   - DELETE /communities/{id}   (delete with its commands)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-community-bot/internal/domain"
	"github.com/tbourn/go-community-bot/internal/services"
	"github.com/tbourn/go-community-bot/internal/utils"
)

// ListCommunitiesResponse wraps a page of communities and pagination information.
type ListCommunitiesResponse struct {
	Communities []domain.Community `json:"communities"`
	Pagination  Pagination         `json:"pagination"`
}

// ListCommunities godoc
// @ID          listCommunities
// @Summary     List communities (paginated)
// @Description Returns a page of the communities the bot has joined, ordered by ID.
// @Tags        Communities
// @Produce     json
// @Security    BearerAuth
//
// @Param       page       query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListCommunitiesResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /communities [get]
func (h *Handlers) ListCommunities(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.communitySvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		failInternal(c, ErrCodeListFailed, err)
		return
	}

	totalPages := utils.TotalPages(total, pageSize)
	ok(c, http.StatusOK, ListCommunitiesResponse{
		Communities: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetCommunity godoc
// @ID          getCommunity
// @Summary     Get a community
// @Tags        Communities
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true  "Community ID (platform chat ID)"  example(-1001234567890)
//
// @Success     200  {object} domain.Community
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Community not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /communities/{id} [get]
func (h *Handlers) GetCommunity(c *gin.Context) {
	id, valid := communityID(c)
	if !valid {
		return
	}
	community, err := h.communitySvc.Get(c.Request.Context(), id)
	if err != nil {
		failCommunity(c, err)
		return
	}
	ok(c, http.StatusOK, community)
}

// DeleteCommunity godoc
// @ID          deleteCommunity
// @Summary     Delete a community
// @Description Deletes the community and, by cascade, its custom commands. The bot recreates it on the next join.
// @Tags        Communities
// @Security    BearerAuth
//
// @Param       id  path  int  true  "Community ID (platform chat ID)"  example(-1001234567890)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Community not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /communities/{id} [delete]
func (h *Handlers) DeleteCommunity(c *gin.Context) {
	id, valid := communityID(c)
	if !valid {
		return
	}
	if err := h.communitySvc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrCommunityNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "community not found")
			return
		}
		failInternal(c, ErrCodeDeleteFailed, err)
		return
	}
	noContent(c)
}

// failCommunity maps a CommunityService.Get error to a response.
func failCommunity(c *gin.Context, err error) {
	if errors.Is(err, services.ErrCommunityNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "community not found")
		return
	}
	failInternal(c, ErrCodeInternal, err)
}
