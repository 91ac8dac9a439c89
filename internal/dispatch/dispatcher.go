package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandlerFunc is a soft handler. It reports whether it fully handled the
// message. Returning an error counts as handled; the error is reported and
// the remaining handlers still run.
type HandlerFunc func(ctx context.Context, inv *Invocation) (handled bool, err error)

// Module is a feature module. Register is called once by Load and adds the
// module's handlers and commands.
type Module interface {
	Name() string
	Register(d *Dispatcher) error
}

// HandlerID names a registered soft handler.
type HandlerID struct {
	Module string
	Name   string
}

func (h HandlerID) String() string { return h.Module + "." + h.Name }

type handlerEntry struct {
	id HandlerID
	fn HandlerFunc
}

// Status is the coarse result of a dispatch.
type Status int

const (
	// StatusIgnored: the message was not an invocation (no prefix, a bot
	// author, or nothing after the prefix).
	StatusIgnored Status = iota
	// StatusHandled: a handler or command ran without error.
	StatusHandled
	// StatusFailed: at least one error condition was reported.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusHandled:
		return "handled"
	case StatusFailed:
		return "failed"
	}
	return "ignored"
}

// Outcome describes what Dispatch did with a message.
type Outcome struct {
	Status   Status
	Command  string          // qualified name of the static command run, if any
	Handlers []HandlerID     // soft handlers that reported handling the message
	Errors   []*CommandError // conditions reported, in order
}

// Err returns the first reported condition, or nil.
func (o Outcome) Err() *CommandError {
	if len(o.Errors) == 0 {
		return nil
	}
	return o.Errors[0]
}

// Config configures a Dispatcher.
type Config struct {
	DefaultPrefix string // used in private chats
	Reporter      ReporterConfig
}

// Dispatcher resolves inbound messages against registered modules.
type Dispatcher struct {
	cfg      Config
	prefixes PrefixResolver
	sender   Sender
	reporter *Reporter
	log      zerolog.Logger
	tracer   trace.Tracer

	mu       sync.RWMutex
	modules  []string
	loading  string
	handlers []handlerEntry
	commands map[string]*Command
	ordered  []*Command
}

// New returns a Dispatcher with no modules loaded.
func New(cfg Config, prefixes PrefixResolver, sender Sender, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		prefixes: prefixes,
		sender:   sender,
		reporter: NewReporter(sender, cfg.Reporter, log),
		log:      log,
		tracer:   otel.Tracer("dispatch/Dispatcher"),
		commands: make(map[string]*Command),
	}
}

// Load registers modules in order. A module name may be loaded once.
func (d *Dispatcher) Load(modules ...Module) error {
	for _, m := range modules {
		name := m.Name()
		d.mu.Lock()
		for _, loaded := range d.modules {
			if loaded == name {
				d.mu.Unlock()
				return fmt.Errorf("module %q already loaded", name)
			}
		}
		d.modules = append(d.modules, name)
		d.loading = name
		d.mu.Unlock()

		err := m.Register(d)

		d.mu.Lock()
		d.loading = ""
		d.mu.Unlock()
		if err != nil {
			return fmt.Errorf("load module %q: %w", name, err)
		}
		d.log.Info().Str("module", name).Msg("module loaded")
	}
	return nil
}

// Modules returns the loaded module names in load order.
func (d *Dispatcher) Modules() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.modules...)
}

// AddHandler appends a soft handler. Handlers run in the order added.
func (d *Dispatcher) AddHandler(module, name string, fn HandlerFunc) error {
	if fn == nil {
		return fmt.Errorf("handler %s.%s: nil func", module, name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := HandlerID{Module: module, Name: name}
	for _, h := range d.handlers {
		if h.id == id {
			return fmt.Errorf("handler %s already registered", id)
		}
	}
	d.handlers = append(d.handlers, handlerEntry{id: id, fn: fn})
	return nil
}

// Handlers returns the registered soft handlers in order.
func (d *Dispatcher) Handlers() []HandlerID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]HandlerID, len(d.handlers))
	for i, h := range d.handlers {
		out[i] = h.id
	}
	return out
}

// AddCommand adds a root command to the static table. Names and aliases
// must be unique across all modules.
func (d *Dispatcher) AddCommand(cmd *Command) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := cmd.link(d.loading); err != nil {
		return err
	}
	for _, n := range cmd.names() {
		if prev, ok := d.commands[n]; ok {
			return fmt.Errorf("command %q already registered by module %q", n, prev.Module)
		}
	}
	for _, n := range cmd.names() {
		d.commands[n] = cmd
	}
	d.ordered = append(d.ordered, cmd)
	return nil
}

// Commands returns the root commands in registration order.
func (d *Dispatcher) Commands() []*Command {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*Command(nil), d.ordered...)
}

// Dispatch processes one inbound message. Soft handlers run first, all of
// them, in order; then the matching static command. UnknownCommand is
// reported only when neither path handled the message.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) (out Outcome) {
	defer func() { dispatchMsgs.WithLabelValues(out.Status.String()).Inc() }()

	if msg.FromBot || msg.Text == "" {
		return out
	}

	inv := &Invocation{
		ID:      uuid.NewString(),
		Message: msg,
		sender:  d.sender,
	}
	lc := d.log.With().Str("invocation_id", inv.ID).Int64("chat_id", msg.ChatID)
	communityID, inCommunity := msg.CommunityID()
	if inCommunity {
		lc = lc.Int64("community_id", communityID)
	}
	inv.Log = lc.Logger()

	prefix := d.cfg.DefaultPrefix
	if inCommunity {
		p, err := d.prefixes.GetPrefix(ctx, communityID)
		if err != nil {
			out.fail(d.reporter.Report(ctx, inv, fmt.Errorf("resolve prefix: %w", err)))
			return out
		}
		prefix = p
	}
	inv.Prefix = prefix

	invoked, remainder, ok := splitInvocation(msg.Text, prefix)
	if !ok {
		return out
	}
	inv.Invoked, inv.Remainder = invoked, remainder
	inv.Log = inv.Log.With().Str("invoked", invoked).Logger()

	start := time.Now()
	defer func() { dispatchLat.Observe(time.Since(start).Seconds()) }()

	ctx, span := d.tracer.Start(ctx, "Dispatch", trace.WithAttributes(
		attribute.String("dispatch.invoked", invoked),
		attribute.Int64("dispatch.chat_id", msg.ChatID),
	))
	defer func() {
		span.SetAttributes(attribute.String("dispatch.status", out.Status.String()))
		if ce := out.Err(); ce != nil {
			span.SetStatus(codes.Error, ce.Kind.String())
		}
		span.End()
	}()

	d.mu.RLock()
	handlers := append([]handlerEntry(nil), d.handlers...)
	root := d.commands[invoked]
	d.mu.RUnlock()

	handled := false
	for _, h := range handlers {
		ok, err := d.runHandler(ctx, h, inv)
		if err != nil {
			out.fail(d.reporter.Report(ctx, inv, err))
			handled = true
			continue
		}
		if ok {
			handled = true
			out.Handlers = append(out.Handlers, h.id)
		}
	}

	if root != nil {
		cmd, args := root.resolve(remainder)
		inv.Command, inv.Args = cmd, args
		out.Command = cmd.QualifiedName()
		if err := d.runCommand(ctx, cmd, inv); err != nil {
			out.fail(d.reporter.Report(ctx, inv, err))
			return out
		}
		handled = true
	}

	if !handled {
		out.fail(d.reporter.Report(ctx, inv, UnknownCommand(prefix, invoked)))
		return out
	}
	if out.Status != StatusFailed {
		out.Status = StatusHandled
	}
	return out
}

func (o *Outcome) fail(ce *CommandError) {
	o.Status = StatusFailed
	if ce != nil {
		o.Errors = append(o.Errors, ce)
	}
}

func (d *Dispatcher) runHandler(ctx context.Context, h handlerEntry, inv *Invocation) (handled bool, err error) {
	defer recoverInto(&err, h.id.String())
	return h.fn(ctx, inv)
}

func (d *Dispatcher) runCommand(ctx context.Context, cmd *Command, inv *Invocation) (err error) {
	defer recoverInto(&err, cmd.QualifiedName())
	for _, check := range cmd.checks() {
		if err := check(ctx, inv); err != nil {
			return err
		}
	}
	if cmd.Run == nil {
		return InvalidArgument(cmd.usage(inv.Prefix))
	}
	inv.Log.Debug().Str("command", cmd.QualifiedName()).Msg("running command")
	return cmd.Run(ctx, inv)
}

func recoverInto(err *error, where string) {
	if r := recover(); r != nil {
		*err = Internal(fmt.Errorf("panic in %s: %v\n%s", where, r, debug.Stack()))
	}
}
