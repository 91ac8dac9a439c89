// Package dispatch routes inbound chat messages to feature modules.
//
// Modules register soft handlers, which see every prefixed message in
// registration order, and static commands, which are looked up by name.
// All failures raised by either path are funneled into one Reporter that
// produces the user-facing reply.
package dispatch

import "context"

// Attachment is a file sent along with a message.
type Attachment struct {
	FileID   string
	FileName string
	Size     int64
}

// Message is a platform-neutral inbound chat message.
type Message struct {
	ID         int   // platform message id, used for threaded replies
	ChatID     int64 // where to reply
	Private    bool  // direct chat with the bot; no community
	SenderID   int64
	SenderName string
	FromBot    bool
	Text       string
	Attachment *Attachment
}

// CommunityID returns the originating community, or false for private chats.
func (m Message) CommunityID() (int64, bool) {
	if m.Private {
		return 0, false
	}
	return m.ChatID, true
}

// Sender is the outbound side of the messaging platform.
type Sender interface {
	Reply(ctx context.Context, chatID int64, replyTo int, text string) error
	ReplyFile(ctx context.Context, chatID int64, replyTo int, path, caption string) error
	IsAdmin(ctx context.Context, chatID, userID int64) (bool, error)
	AttachmentURL(ctx context.Context, fileID string) (string, error)
	DirectMessage(ctx context.Context, userID int64, text string) error
}

// PrefixResolver returns a community's command prefix.
type PrefixResolver interface {
	GetPrefix(ctx context.Context, communityID int64) (string, error)
}
