// Custom command HTTP handlers.
//
//   - GET    /communities/{id}/commands             (list, ETag support)
//   - DELETE /communities/{id}/commands/{trigger}   (remove)
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-community-bot/internal/domain"
	"github.com/tbourn/go-community-bot/internal/services"
)

// ListCommandsResponse wraps a community's custom commands.
type ListCommandsResponse struct {
	CommunityID int64                  `json:"community_id" example:"-1001234567890"`
	Commands    []domain.CustomCommand `json:"commands"`
}

// ListCommands godoc
// @ID          listCommands
// @Summary     List custom commands
// @Description Returns the community's custom commands ordered by trigger. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Commands
// @Produce     json
// @Security    BearerAuth
//
// @Param       id             path    int     true  "Community ID (platform chat ID)"  example(-1001234567890)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"       example(W/\"commands:-100:3:1700000000\")
//
// @Success     200  {object} handlers.ListCommandsResponse
// @Header      200  {string} ETag           "Weak ETag for current result"
// @Header      200  {string} Cache-Control  "private, no-cache"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Community not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /communities/{id}/commands [get]
func (h *Handlers) ListCommands(c *gin.Context) {
	ctx := c.Request.Context()
	id, valid := communityID(c)
	if !valid {
		return
	}
	if _, err := h.communitySvc.Get(ctx, id); err != nil {
		failCommunity(c, err)
		return
	}

	// ETag pre-check (best effort).
	if count, maxTS, err := h.commandSvc.Stats(ctx, id); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"commands:%d:%d:%d"`, id, count, ts)
		c.Header("ETag", etag)
		c.Header("Cache-Control", "private, no-cache")
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.commandSvc.List(ctx, id)
	if err != nil {
		failInternal(c, ErrCodeListFailed, err)
		return
	}
	if items == nil {
		items = []domain.CustomCommand{}
	}
	ok(c, http.StatusOK, ListCommandsResponse{CommunityID: id, Commands: items})
}

// DeleteCommand godoc
// @ID          deleteCommand
// @Summary     Remove a custom command
// @Description Removes the command and its stored file, as "commands remove" does in chat.
// @Tags        Commands
// @Security    BearerAuth
//
// @Param       id       path  int     true  "Community ID (platform chat ID)"  example(-1001234567890)
// @Param       trigger  path  string  true  "Command trigger"                  example(cat)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Command not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /communities/{id}/commands/{trigger} [delete]
func (h *Handlers) DeleteCommand(c *gin.Context) {
	id, valid := communityID(c)
	if !valid {
		return
	}
	trigger := strings.TrimSpace(c.Param("trigger"))
	if trigger == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "trigger required")
		return
	}

	if _, err := h.commandSvc.Remove(c.Request.Context(), id, trigger); err != nil {
		if errors.Is(err, services.ErrCommandNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "command not found")
			return
		}
		failInternal(c, ErrCodeDeleteFailed, err)
		return
	}
	noContent(c)
}
