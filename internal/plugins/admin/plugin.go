// Package admin holds commands for community administrators.
package admin

import (
	"context"
	"strconv"

	"github.com/tbourn/go-community-bot/internal/dispatch"
)

// Replies of the say command.
const (
	MsgSent        = "Message sent!"
	MsgForeignChat = "You can't send messages outside of your communities!"
	msgInvalidChat = "The chat must be a numeric chat ID!"
)

// Plugin is the admin module.
type Plugin struct{}

// New returns the module.
func New() *Plugin { return &Plugin{} }

// Name implements dispatch.Module.
func (p *Plugin) Name() string { return "admin" }

// Register implements dispatch.Module.
func (p *Plugin) Register(d *dispatch.Dispatcher) error {
	return d.AddCommand(&dispatch.Command{
		Name:   "say",
		Help:   "Sends a message to a chat you administer. Usage: say <chat_id> <text>",
		Checks: []dispatch.Check{dispatch.CommunityOnly, dispatch.AdminOnly},
		Run:    p.say,
	})
}

// say relays text to another chat. The sender must administer the target
// chat as well as the one the command came from.
func (p *Plugin) say(ctx context.Context, inv *dispatch.Invocation) error {
	rawChat, text := dispatch.NextArg(inv.Args)
	if rawChat == "" {
		return dispatch.MissingArgument("chat")
	}
	if text == "" {
		return dispatch.MissingArgument("message")
	}
	chatID, err := strconv.ParseInt(rawChat, 10, 64)
	if err != nil {
		return dispatch.InvalidArgument(msgInvalidChat)
	}

	if chatID != inv.Message.ChatID {
		ok, err := inv.Sender().IsAdmin(ctx, chatID, inv.Message.SenderID)
		if err != nil {
			return err
		}
		if !ok {
			return dispatch.InvalidArgument(MsgForeignChat)
		}
	}

	if err := inv.Sender().Reply(ctx, chatID, 0, text); err != nil {
		return err
	}
	inv.Log.Info().Int64("target_chat_id", chatID).Msg("message relayed")
	return inv.Reply(ctx, MsgSent)
}
