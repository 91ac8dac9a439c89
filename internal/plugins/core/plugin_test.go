package core

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-community-bot/internal/dispatch"
	"github.com/tbourn/go-community-bot/internal/dispatch/dispatchtest"
)

func TestDescribe(t *testing.T) {
	p := New(Info{Name: "dango_bot", Description: "witty tagline"})
	if got, want := p.describe(false), "Dango Bot\nVersion dev\nwitty tagline"; got != want {
		t.Fatalf("describe = %q; want %q", got, want)
	}

	p = New(Info{Name: "dango", Version: "1.2.0", BuildDate: "2024-03-01T10:20:30Z"})
	got := p.describe(false)
	if !strings.Contains(got, "Version 1.2.0, built on Friday, 2024-03-01, 10:20:30+0000") {
		t.Fatalf("describe = %q", got)
	}

	// An unparsable date is left out.
	p = New(Info{Name: "dango", BuildDate: "yesterday"})
	if got := p.describe(false); strings.Contains(got, "built on") {
		t.Fatalf("describe = %q", got)
	}
}

func TestAbout_OwnerSeesModules(t *testing.T) {
	s := dispatchtest.NewSender()
	d := dispatch.New(dispatch.Config{DefaultPrefix: "!"}, dispatchtest.Prefixes{Prefix: "!"}, s, zerolog.Nop())
	if err := d.Load(New(Info{Name: "dango", OwnerID: 99})); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ctx := context.Background()

	d.Dispatch(ctx, dispatch.Message{ID: 1, ChatID: -1, SenderID: 5, Text: "!about"})
	if got := s.Last(); strings.Contains(got, "Installed modules") {
		t.Fatalf("non-owner reply = %q", got)
	}

	d.Dispatch(ctx, dispatch.Message{ID: 2, ChatID: 99, SenderID: 99, Private: true, Text: "!about"})
	if got := s.Last(); !strings.HasSuffix(got, "Installed modules: core") {
		t.Fatalf("owner reply = %q", got)
	}
}
