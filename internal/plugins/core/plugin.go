// Package core contains commands that provide the core bot functionality.
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-community-bot/internal/dispatch"
)

// Info describes the running build.
type Info struct {
	Name        string // bot username; title-cased for display
	Version     string // empty means "dev"
	BuildDate   string // RFC 3339, optional
	Description string
	OwnerID     int64 // 0 disables owner-only details
}

// Plugin is the core module.
type Plugin struct {
	info Info
	d    *dispatch.Dispatcher
}

// New returns the module describing info.
func New(info Info) *Plugin { return &Plugin{info: info} }

// Name implements dispatch.Module.
func (p *Plugin) Name() string { return "core" }

// Register implements dispatch.Module.
func (p *Plugin) Register(d *dispatch.Dispatcher) error {
	p.d = d
	return d.AddCommand(&dispatch.Command{
		Name: "about",
		Help: "Information about the bot and the running version of it.",
		Run:  p.about,
	})
}

func (p *Plugin) about(ctx context.Context, inv *dispatch.Invocation) error {
	return inv.Reply(ctx, p.describe(p.info.OwnerID != 0 && inv.Message.SenderID == p.info.OwnerID))
}

func (p *Plugin) describe(owner bool) string {
	version := p.info.Version
	if version == "" {
		version = "dev"
	}
	name := strings.TrimSpace(p.info.Name)
	if name == "" {
		name = "bot"
	}

	var b strings.Builder
	b.WriteString(cases.Title(language.English).String(strings.ReplaceAll(name, "_", " ")))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Version %s", version)
	if p.info.BuildDate != "" {
		if t, err := time.Parse(time.RFC3339, p.info.BuildDate); err == nil {
			fmt.Fprintf(&b, ", built on %s", t.Format("Monday, 2006-01-02, 15:04:05-0700"))
		}
	}
	if p.info.Description != "" {
		fmt.Fprintf(&b, "\n%s", p.info.Description)
	}
	if owner && p.d != nil {
		fmt.Fprintf(&b, "\nInstalled modules: %s", strings.Join(p.d.Modules(), ", "))
	}
	return b.String()
}
