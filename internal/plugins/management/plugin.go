// Package management holds the configuration commands of the bot.
package management

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tbourn/go-community-bot/internal/dispatch"
	"github.com/tbourn/go-community-bot/internal/services"
)

// Settings is the subset of services.SettingsService the plugin needs.
type Settings interface {
	Prefix(ctx context.Context, communityID int64) (string, error)
	SetPrefix(ctx context.Context, communityID int64, raw string) (string, bool, error)
}

// Plugin is the management module.
type Plugin struct {
	settings Settings
}

// New returns the module backed by settings.
func New(settings Settings) *Plugin { return &Plugin{settings: settings} }

// Name implements dispatch.Module.
func (p *Plugin) Name() string { return "management" }

// Register implements dispatch.Module.
func (p *Plugin) Register(d *dispatch.Dispatcher) error {
	return d.AddCommand(&dispatch.Command{
		Name:   "config",
		Help:   "Configuration of the bot.",
		Checks: []dispatch.Check{dispatch.CommunityOnly},
		Subcommands: []*dispatch.Command{
			{
				Name:   "setprefix",
				Help:   "Sets a new command prefix for the bot commands.",
				Checks: []dispatch.Check{dispatch.AdminOnly},
				Run:    p.setPrefix,
			},
			{Name: "prefix", Help: "Shows the current command prefix.", Run: p.prefix},
		},
	})
}

func (p *Plugin) setPrefix(ctx context.Context, inv *dispatch.Invocation) error {
	raw, _ := dispatch.NextArg(inv.Args)
	if raw == "" {
		return dispatch.MissingArgument("prefix")
	}
	cid, _ := inv.CommunityID()

	prefix, changed, err := p.settings.SetPrefix(ctx, cid, raw)
	if errors.Is(err, services.ErrInvalidPrefix) {
		reason := strings.TrimPrefix(err.Error(), services.ErrInvalidPrefix.Error()+": ")
		return dispatch.InvalidArgument(fmt.Sprintf("The prefix %s!", reason))
	}
	if err != nil {
		return err
	}

	if changed {
		inv.Log.Info().Str("prefix", prefix).Msg("command prefix changed")
		return inv.Reply(ctx, fmt.Sprintf("Command prefix changed to `%s`.", prefix))
	}
	return inv.Reply(ctx, fmt.Sprintf("`%s` is already your prefix.", prefix))
}

func (p *Plugin) prefix(ctx context.Context, inv *dispatch.Invocation) error {
	cid, _ := inv.CommunityID()
	prefix, err := p.settings.Prefix(ctx, cid)
	if err != nil {
		return err
	}
	return inv.Reply(ctx, fmt.Sprintf("The command prefix is `%s`.", prefix))
}
