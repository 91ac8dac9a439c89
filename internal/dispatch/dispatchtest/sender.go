// Package dispatchtest provides an in-memory dispatch.Sender for tests of
// modules built on the dispatcher.
package dispatchtest

import (
	"context"
	"sync"

	"github.com/tbourn/go-community-bot/internal/dispatch"
)

// Reply is one recorded text or file reply.
type Reply struct {
	ChatID  int64
	ReplyTo int
	Text    string // caption for files
	Path    string // empty for text replies
}

// Sender records outbound traffic. Admins lists the user IDs IsAdmin
// accepts in every chat not listed in ChatAdmins.
type Sender struct {
	mu      sync.Mutex
	replies []Reply
	dms     map[int64][]string

	Admins     map[int64]bool
	ChatAdmins map[int64]map[int64]bool // chat ID -> user IDs
	AdminErr   error
	// URLErr fails AttachmentURL when set.
	URLErr error
}

var _ dispatch.Sender = (*Sender)(nil)

// NewSender returns an empty recorder.
func NewSender() *Sender {
	return &Sender{dms: map[int64][]string{}, Admins: map[int64]bool{}}
}

func (s *Sender) Reply(_ context.Context, chatID int64, replyTo int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, Reply{ChatID: chatID, ReplyTo: replyTo, Text: text})
	return nil
}

func (s *Sender) ReplyFile(_ context.Context, chatID int64, replyTo int, path, caption string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, Reply{ChatID: chatID, ReplyTo: replyTo, Text: caption, Path: path})
	return nil
}

func (s *Sender) IsAdmin(_ context.Context, chatID, userID int64) (bool, error) {
	if s.AdminErr != nil {
		return false, s.AdminErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if admins, ok := s.ChatAdmins[chatID]; ok {
		return admins[userID], nil
	}
	return s.Admins[userID], nil
}

// AttachmentURL maps a file ID to a fixed fake URL.
func (s *Sender) AttachmentURL(_ context.Context, fileID string) (string, error) {
	if s.URLErr != nil {
		return "", s.URLErr
	}
	return "https://files.example/" + fileID, nil
}

func (s *Sender) DirectMessage(_ context.Context, userID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dms[userID] = append(s.dms[userID], text)
	return nil
}

// Replies returns a copy of everything replied so far.
func (s *Sender) Replies() []Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Reply(nil), s.replies...)
}

// Texts returns the text (or caption) of every reply.
func (s *Sender) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.replies))
	for i, r := range s.replies {
		out[i] = r.Text
	}
	return out
}

// Last returns the most recent reply text, or "".
func (s *Sender) Last() string {
	t := s.Texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

// DMs returns the direct messages sent to userID.
func (s *Sender) DMs(userID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.dms[userID]...)
}

// Reset forgets recorded traffic.
func (s *Sender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = nil
	s.dms = map[int64][]string{}
}

// Prefixes resolves every community to Prefix.
type Prefixes struct {
	Prefix string
	Err    error
}

func (p Prefixes) GetPrefix(context.Context, int64) (string, error) { return p.Prefix, p.Err }
