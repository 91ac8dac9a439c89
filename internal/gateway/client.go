// Package gateway connects the dispatcher to Telegram. Client implements the
// outbound side (dispatch.Sender); Gateway polls for updates and turns them
// into community events and dispatched messages.
package gateway

import (
	"context"
	"fmt"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-community-bot/internal/dispatch"
)

// MaxMessageRunes is Telegram's limit for a text message.
const MaxMessageRunes = 4096

// MaxCaptionRunes is Telegram's limit for a media caption.
const MaxCaptionRunes = 1024

// BotAPI is the subset of *tgbotapi.BotAPI the gateway uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(c tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(c tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var _ BotAPI = (*tgbotapi.BotAPI)(nil)

// Client sends replies through the Bot API.
type Client struct {
	bot BotAPI
	log zerolog.Logger
}

var _ dispatch.Sender = (*Client)(nil)

// NewClient wraps bot.
func NewClient(bot BotAPI, log zerolog.Logger) *Client {
	return &Client{bot: bot, log: log.With().Str("component", "gateway").Logger()}
}

// Reply sends text as a reply to message replyTo (0 = no reply).
func (c *Client) Reply(ctx context.Context, chatID int64, replyTo int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, truncate(text, MaxMessageRunes))
	msg.ReplyToMessageID = replyTo
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}

// ReplyFile uploads the file at path with an optional caption.
func (c *Client) ReplyFile(ctx context.Context, chatID int64, replyTo int, path, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = truncate(caption, MaxCaptionRunes)
	doc.ReplyToMessageID = replyTo
	if _, err := c.bot.Send(doc); err != nil {
		return fmt.Errorf("send document to %d: %w", chatID, err)
	}
	return nil
}

// IsAdmin reports whether userID is the creator or an administrator of chatID.
func (c *Client) IsAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m, err := c.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		return false, fmt.Errorf("get chat member %d/%d: %w", chatID, userID, err)
	}
	return m.IsCreator() || m.IsAdministrator(), nil
}

// AttachmentURL resolves a file ID to a download URL.
func (c *Client) AttachmentURL(ctx context.Context, fileID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	url, err := c.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("get file %s: %w", fileID, err)
	}
	return url, nil
}

// DirectMessage sends text to a user's private chat. Long texts are cut to
// the platform limit.
func (c *Client) DirectMessage(ctx context.Context, userID int64, text string) error {
	return c.Reply(ctx, userID, 0, text)
}

// truncate cuts s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
