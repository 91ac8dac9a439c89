package dispatch

import (
	"context"
	"fmt"
	"strings"
)

// Check guards a command; a non-nil error aborts the invocation.
type Check func(ctx context.Context, inv *Invocation) error

// Command is an entry in the static command table. A command with
// Subcommands is a group; a group without Run requires a subcommand.
type Command struct {
	Name        string
	Aliases     []string
	Module      string // set by Load when empty
	Help        string
	Checks      []Check
	Run         func(ctx context.Context, inv *Invocation) error
	Subcommands []*Command

	parent *Command
}

// QualifiedName is the space-separated path from the root command.
func (c *Command) QualifiedName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.QualifiedName() + " " + c.Name
}

func (c *Command) names() []string {
	return append([]string{c.Name}, c.Aliases...)
}

func (c *Command) sub(name string) *Command {
	for _, s := range c.Subcommands {
		for _, n := range s.names() {
			if n == name {
				return s
			}
		}
	}
	return nil
}

// link validates the tree and sets parent pointers.
func (c *Command) link(module string) error {
	if strings.TrimSpace(c.Name) == "" || strings.ContainsAny(c.Name, " \t\n") {
		return fmt.Errorf("invalid command name %q", c.Name)
	}
	if c.Module == "" {
		c.Module = module
	}
	if c.Run == nil && len(c.Subcommands) == 0 {
		return fmt.Errorf("command %q has neither a body nor subcommands", c.Name)
	}
	seen := map[string]bool{}
	for _, s := range c.Subcommands {
		for _, n := range s.names() {
			if seen[n] {
				return fmt.Errorf("command %q: duplicate subcommand %q", c.Name, n)
			}
			seen[n] = true
		}
		s.parent = c
		if err := s.link(c.Module); err != nil {
			return err
		}
	}
	return nil
}

// resolve descends into subcommands while the next argument names one, and
// returns the command to run with the arguments left for it.
func (c *Command) resolve(args string) (*Command, string) {
	cmd := c
	for len(cmd.Subcommands) > 0 {
		tok, rest := nextToken(args)
		s := cmd.sub(tok)
		if s == nil {
			break
		}
		cmd, args = s, rest
	}
	return cmd, args
}

// checks returns the guards of every ancestor followed by the command's own.
func (c *Command) checks() []Check {
	var out []Check
	if c.parent != nil {
		out = c.parent.checks()
	}
	return append(out, c.Checks...)
}

func (c *Command) usage(prefix string) string {
	subs := make([]string, 0, len(c.Subcommands))
	for _, s := range c.Subcommands {
		subs = append(subs, s.Name)
	}
	return fmt.Sprintf("Usage: `%s%s <%s>`", prefix, c.QualifiedName(), strings.Join(subs, "|"))
}

// CommunityOnly rejects private chats.
func CommunityOnly(_ context.Context, inv *Invocation) error {
	if _, ok := inv.CommunityID(); !ok {
		return NoPrivateMessage()
	}
	return nil
}

// AdminOnly requires the sender to administer the chat. Private chats pass,
// since the sender is the only other member.
func AdminOnly(ctx context.Context, inv *Invocation) error {
	if inv.Message.Private {
		return nil
	}
	ok, err := inv.sender.IsAdmin(ctx, inv.Message.ChatID, inv.Message.SenderID)
	if err != nil {
		return fmt.Errorf("admin check: %w", err)
	}
	if !ok {
		return MissingPermission()
	}
	return nil
}
