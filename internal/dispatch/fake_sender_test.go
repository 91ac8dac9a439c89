package dispatch

import (
	"context"
	"sync"
)

type sentReply struct {
	ChatID  int64
	ReplyTo int
	Text    string
}

// fakeSender records outbound traffic.
type fakeSender struct {
	mu       sync.Mutex
	replies  []sentReply
	files    []string
	dms      map[int64][]string
	admins   map[int64]bool
	adminErr error
}

func newFakeSender() *fakeSender {
	return &fakeSender{dms: map[int64][]string{}, admins: map[int64]bool{}}
}

func (f *fakeSender) Reply(_ context.Context, chatID int64, replyTo int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, sentReply{ChatID: chatID, ReplyTo: replyTo, Text: text})
	return nil
}

func (f *fakeSender) ReplyFile(_ context.Context, _ int64, _ int, path, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files = append(f.files, path)
	return nil
}

func (f *fakeSender) IsAdmin(_ context.Context, _ int64, userID int64) (bool, error) {
	if f.adminErr != nil {
		return false, f.adminErr
	}
	return f.admins[userID], nil
}

func (f *fakeSender) AttachmentURL(_ context.Context, fileID string) (string, error) {
	return "https://files.example/" + fileID, nil
}

func (f *fakeSender) DirectMessage(_ context.Context, userID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dms[userID] = append(f.dms[userID], text)
	return nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.replies))
	for i, r := range f.replies {
		out[i] = r.Text
	}
	return out
}

// staticPrefixes resolves every community to a fixed prefix.
type staticPrefixes struct {
	prefix string
	err    error
	calls  int
}

func (s *staticPrefixes) GetPrefix(context.Context, int64) (string, error) {
	s.calls++
	return s.prefix, s.err
}
