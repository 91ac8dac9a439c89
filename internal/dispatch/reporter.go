package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReporterConfig controls owner notification of internal failures.
type ReporterConfig struct {
	OwnerID    int64
	SendErrors bool
}

// Reporter is the single error path: it logs every condition, answers the
// invoking user, and forwards internal failures to the owner when enabled.
type Reporter struct {
	sender Sender
	cfg    ReporterConfig
	log    zerolog.Logger
}

// NewReporter returns a Reporter replying through sender.
func NewReporter(sender Sender, cfg ReporterConfig, log zerolog.Logger) *Reporter {
	return &Reporter{sender: sender, cfg: cfg, log: log}
}

func (r *Reporter) notifyOwner() bool { return r.cfg.SendErrors && r.cfg.OwnerID != 0 }

// Report classifies err, replies to the invocation, and returns the
// classified condition.
func (r *Reporter) Report(ctx context.Context, inv *Invocation, err error) *CommandError {
	ce := Classify(err)
	if ce == nil {
		return nil
	}
	dispatchErrs.WithLabelValues(ce.Kind.String()).Inc()

	text := ce.UserMessage()
	if ce.Kind == KindInternal {
		errorID := uuid.NewString()
		inv.Log.Error().Err(err).Str("error_id", errorID).Msg("command failed")
		if r.notifyOwner() {
			text = MsgInternalReported
			if nerr := r.sender.DirectMessage(ctx, r.cfg.OwnerID, ownerReport(errorID, inv, err)); nerr != nil {
				inv.Log.Warn().Err(nerr).Str("error_id", errorID).Msg("owner notification failed")
			}
		}
	} else {
		inv.Log.Info().Str("kind", ce.Kind.String()).Err(err).Msg("command rejected")
	}

	if rerr := inv.Reply(ctx, text); rerr != nil {
		inv.Log.Warn().Err(rerr).Msg("error reply failed")
	}
	return ce
}

func ownerReport(errorID string, inv *Invocation, err error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error %s\n", errorID)
	fmt.Fprintf(&b, "chat: %d, user: %d (%s)\n", inv.Message.ChatID, inv.Message.SenderID, inv.Message.SenderName)
	fmt.Fprintf(&b, "message: %s\n\n", inv.Message.Text)
	fmt.Fprintf(&b, "%+v", err)
	return b.String()
}
