// Role link HTTP handlers.
//
//   - GET    /communities/{id}/role-links   (list)
//   - POST   /communities/{id}/role-links   (link)
//   - DELETE /communities/{id}/role-links   (unlink)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-community-bot/internal/domain"
	"github.com/tbourn/go-community-bot/internal/services"
)

// RoleLinkRequest is the JSON payload for linking and unlinking.
type RoleLinkRequest struct {
	VoiceChannelID int64 `json:"voice_channel_id" binding:"required" example:"4242"`
	RoleID         int64 `json:"role_id"          binding:"required" example:"77"`
}

// ListRoleLinksResponse wraps a community's role links.
type ListRoleLinksResponse struct {
	CommunityID int64             `json:"community_id" example:"-1001234567890"`
	RoleLinks   []domain.RoleLink `json:"role_links"`
}

// ListRoleLinks godoc
// @ID          listRoleLinks
// @Summary     List role links
// @Tags        RoleLinks
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true  "Community ID (platform chat ID)"  example(-1001234567890)
//
// @Success     200  {object} handlers.ListRoleLinksResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /communities/{id}/role-links [get]
func (h *Handlers) ListRoleLinks(c *gin.Context) {
	id, valid := communityID(c)
	if !valid {
		return
	}
	links, err := h.roleSvc.List(c.Request.Context(), id)
	if err != nil {
		failInternal(c, ErrCodeListFailed, err)
		return
	}
	if links == nil {
		links = []domain.RoleLink{}
	}
	ok(c, http.StatusOK, ListRoleLinksResponse{CommunityID: id, RoleLinks: links})
}

// CreateRoleLink godoc
// @ID          createRoleLink
// @Summary     Link a channel to a role
// @Tags        RoleLinks
// @Accept      json
// @Security    BearerAuth
//
// @Param       id    path  int                         true  "Community ID (platform chat ID)"  example(-1001234567890)
// @Param       body  body  handlers.RoleLinkRequest    true  "Channel and role"
//
// @Success     201  {string} string "Created"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Community not found"
// @Failure     409  {object} handlers.ErrorResponse "Already linked"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /communities/{id}/role-links [post]
func (h *Handlers) CreateRoleLink(c *gin.Context) {
	ctx := c.Request.Context()
	id, valid := communityID(c)
	if !valid {
		return
	}
	var req RoleLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "voice_channel_id and role_id required")
		return
	}
	if _, err := h.communitySvc.Get(ctx, id); err != nil {
		failCommunity(c, err)
		return
	}

	if err := h.roleSvc.Link(ctx, id, req.VoiceChannelID, req.RoleID); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidID):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ids must be positive")
		case errors.Is(err, services.ErrRoleLinkExists):
			fail(c, http.StatusConflict, ErrCodeConflict, "role link already exists")
		default:
			failInternal(c, ErrCodeCreateFailed, err)
		}
		return
	}
	c.Status(http.StatusCreated)
}

// DeleteRoleLink godoc
// @ID          deleteRoleLink
// @Summary     Unlink a channel from a role
// @Tags        RoleLinks
// @Accept      json
// @Security    BearerAuth
//
// @Param       id    path  int                         true  "Community ID (platform chat ID)"  example(-1001234567890)
// @Param       body  body  handlers.RoleLinkRequest    true  "Channel and role"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Role link not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /communities/{id}/role-links [delete]
func (h *Handlers) DeleteRoleLink(c *gin.Context) {
	ctx := c.Request.Context()
	id, valid := communityID(c)
	if !valid {
		return
	}
	var req RoleLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "voice_channel_id and role_id required")
		return
	}

	// Links are keyed by channel and role only; refuse to unlink another
	// community's pair.
	links, err := h.roleSvc.List(ctx, id)
	if err != nil {
		failInternal(c, ErrCodeDeleteFailed, err)
		return
	}
	if !hasLink(links, req) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "role link not found")
		return
	}

	if err := h.roleSvc.Unlink(ctx, req.VoiceChannelID, req.RoleID); err != nil {
		if errors.Is(err, services.ErrRoleLinkNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "role link not found")
			return
		}
		failInternal(c, ErrCodeDeleteFailed, err)
		return
	}
	noContent(c)
}

func hasLink(links []domain.RoleLink, req RoleLinkRequest) bool {
	for _, l := range links {
		if l.VoiceChannelID == req.VoiceChannelID && l.RoleID == req.RoleID {
			return true
		}
	}
	return false
}
