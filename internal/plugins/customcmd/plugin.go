// Package customcmd lets community administrators define their own
// trigger/response commands. Defined triggers are answered by a soft
// handler; the "commands" group manages them.
package customcmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tbourn/go-community-bot/internal/dispatch"
	"github.com/tbourn/go-community-bot/internal/domain"
	"github.com/tbourn/go-community-bot/internal/services"
)

// Service is the subset of services.CommandService the plugin needs.
type Service interface {
	Add(ctx context.Context, communityID int64, trigger, response string, att *services.Attachment) error
	Edit(ctx context.Context, communityID int64, trigger, response string, att *services.Attachment) error
	Remove(ctx context.Context, communityID int64, trigger string) (domain.CustomCommand, error)
	Lookup(ctx context.Context, communityID int64, trigger string) (domain.CustomCommand, bool, error)
	Triggers(ctx context.Context, communityID int64) ([]string, error)
	FilePath(rel string) string
}

// Plugin is the custom commands module.
type Plugin struct {
	svc Service
}

// New returns the module backed by svc.
func New(svc Service) *Plugin { return &Plugin{svc: svc} }

// Name implements dispatch.Module.
func (p *Plugin) Name() string { return "customcmd" }

// Register implements dispatch.Module.
func (p *Plugin) Register(d *dispatch.Dispatcher) error {
	if err := d.AddHandler(p.Name(), "respond", p.respond); err != nil {
		return err
	}
	admin := []dispatch.Check{dispatch.AdminOnly}
	return d.AddCommand(&dispatch.Command{
		Name:   "commands",
		Help:   "Management of user-defined commands.",
		Checks: []dispatch.Check{dispatch.CommunityOnly},
		Subcommands: []*dispatch.Command{
			{Name: "add", Help: "Add a new command.", Checks: admin, Run: p.add},
			{Name: "edit", Help: "Change the response of a command.", Checks: admin, Run: p.edit},
			{Name: "remove", Aliases: []string{"delete"}, Help: "Remove a command.", Checks: admin, Run: p.remove},
			{Name: "list", Help: "List all commands defined in the community.", Run: p.list},
		},
	})
}

// respond answers a defined trigger. Private chats have no commands.
func (p *Plugin) respond(ctx context.Context, inv *dispatch.Invocation) (bool, error) {
	cid, ok := inv.CommunityID()
	if !ok {
		return false, nil
	}
	c, found, err := p.svc.Lookup(ctx, cid, inv.Invoked)
	if err != nil || !found {
		return false, err
	}
	if c.HasFile() {
		return true, inv.ReplyFile(ctx, p.svc.FilePath(c.File), c.Response)
	}
	return true, inv.Reply(ctx, c.Response)
}

func (p *Plugin) add(ctx context.Context, inv *dispatch.Invocation) error {
	return p.save(ctx, inv, p.svc.Add, "Command `%s` added successfully!")
}

func (p *Plugin) edit(ctx context.Context, inv *dispatch.Invocation) error {
	return p.save(ctx, inv, p.svc.Edit, "Command `%s` updated successfully!")
}

type saveFunc func(ctx context.Context, communityID int64, trigger, response string, att *services.Attachment) error

func (p *Plugin) save(ctx context.Context, inv *dispatch.Invocation, save saveFunc, done string) error {
	cid, _ := inv.CommunityID()
	trigger, response := dispatch.NextArg(inv.Args)
	if trigger == "" {
		return dispatch.MissingArgument("trigger")
	}

	att, err := attachment(ctx, inv)
	if err != nil {
		return err
	}
	if err := save(ctx, cid, trigger, response, att); err != nil {
		return translate(err, trigger)
	}
	return inv.Reply(ctx, fmt.Sprintf(done, trigger))
}

func (p *Plugin) remove(ctx context.Context, inv *dispatch.Invocation) error {
	cid, _ := inv.CommunityID()
	trigger, _ := dispatch.NextArg(inv.Args)
	if trigger == "" {
		return dispatch.MissingArgument("trigger")
	}
	if _, err := p.svc.Remove(ctx, cid, trigger); err != nil {
		return translate(err, trigger)
	}
	return inv.Reply(ctx, fmt.Sprintf("Command `%s` removed successfully!", trigger))
}

func (p *Plugin) list(ctx context.Context, inv *dispatch.Invocation) error {
	cid, _ := inv.CommunityID()
	triggers, err := p.svc.Triggers(ctx, cid)
	if err != nil {
		return err
	}
	if len(triggers) == 0 {
		return inv.Reply(ctx, "No commands defined yet.")
	}
	var b strings.Builder
	b.WriteString("```\nDefined commands:\n")
	for _, t := range triggers {
		fmt.Fprintf(&b, "  %s%s\n", inv.Prefix, t)
	}
	b.WriteString("```")
	return inv.Reply(ctx, b.String())
}

// attachment resolves the download URL of the invoking message's file.
func attachment(ctx context.Context, inv *dispatch.Invocation) (*services.Attachment, error) {
	a := inv.Message.Attachment
	if a == nil {
		return nil, nil
	}
	url, err := inv.Sender().AttachmentURL(ctx, a.FileID)
	if err != nil {
		return nil, fmt.Errorf("resolve attachment %s: %w", a.FileID, err)
	}
	return &services.Attachment{URL: url, FileName: a.FileName}, nil
}

// translate maps service errors to user-facing errors. Download and store
// failures pass through and are classified by the dispatcher.
func translate(err error, trigger string) error {
	switch {
	case errors.Is(err, services.ErrCommandExists):
		return dispatch.AlreadyExists(fmt.Sprintf("Command `%s` already exists!", trigger), err)
	case errors.Is(err, services.ErrCommandNotFound):
		return dispatch.InvalidArgument(fmt.Sprintf("Command `%s` does not exist!", trigger))
	case errors.Is(err, services.ErrEmptyTrigger):
		return dispatch.MissingArgument("trigger")
	case errors.Is(err, services.ErrEmptyResponse):
		return dispatch.MissingArgument("response")
	case errors.Is(err, services.ErrTriggerTooLong):
		return dispatch.InvalidArgument("That trigger is too long!")
	}
	return err
}
