package dispatch

import (
	"context"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
)

// Invocation is the per-message context handed to handlers and commands.
type Invocation struct {
	ID      string // uuid, also logged as invocation_id
	Message Message
	Prefix  string

	// Invoked is the first token after the prefix, Remainder everything after it.
	Invoked   string
	Remainder string

	// Command is the resolved static command (after subcommand resolution)
	// and Args the text left for it; both are empty when nothing matched.
	Command *Command
	Args    string

	Log    zerolog.Logger
	sender Sender
}

// CommunityID returns the originating community, or false for private chats.
func (inv *Invocation) CommunityID() (int64, bool) { return inv.Message.CommunityID() }

// Sender exposes the platform for attachment lookups and the like.
func (inv *Invocation) Sender() Sender { return inv.sender }

// Reply answers the invoking message with text.
func (inv *Invocation) Reply(ctx context.Context, text string) error {
	return inv.sender.Reply(ctx, inv.Message.ChatID, inv.Message.ID, text)
}

// ReplyFile answers the invoking message with a stored file.
func (inv *Invocation) ReplyFile(ctx context.Context, path, caption string) error {
	return inv.sender.ReplyFile(ctx, inv.Message.ChatID, inv.Message.ID, path, caption)
}

// splitInvocation strips prefix from text and returns the first token and
// the rest. ok is false when text is not prefixed or no token follows.
func splitInvocation(text, prefix string) (invoked, remainder string, ok bool) {
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(text, prefix)
	if rest == "" || unicode.IsSpace(rune(rest[0])) {
		return "", "", false
	}
	invoked, remainder = nextToken(rest)
	return invoked, remainder, invoked != ""
}

// nextToken splits s at the first run of whitespace.
func nextToken(s string) (token, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}

// Fields splits command arguments on whitespace.
func Fields(args string) []string { return strings.Fields(args) }

// NextArg returns the first whitespace-delimited argument and the rest.
func NextArg(args string) (string, string) { return nextToken(args) }
