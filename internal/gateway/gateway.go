package gateway

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-community-bot/internal/dispatch"
	"github.com/tbourn/go-community-bot/internal/domain"
	"github.com/tbourn/go-community-bot/internal/observability"
)

var updatesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gateway_updates_total",
		Help: "Telegram updates received, by kind.",
	},
	[]string{"kind"},
)

func init() {
	prometheus.MustRegister(updatesTotal)
}

// Dispatcher processes inbound messages.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg dispatch.Message) dispatch.Outcome
}

// Communities follows membership and title changes.
type Communities interface {
	Join(ctx context.Context, id int64, name string) (domain.Community, error)
	Rename(ctx context.Context, id int64, name string) error
}

// Gateway long-polls Telegram and handles each update on its own goroutine.
type Gateway struct {
	bot         BotAPI
	dispatcher  Dispatcher
	communities Communities
	log         zerolog.Logger

	wg sync.WaitGroup
}

// New returns a Gateway; call Run to start polling.
func New(bot BotAPI, d Dispatcher, communities Communities, log zerolog.Logger) *Gateway {
	return &Gateway{
		bot:         bot,
		dispatcher:  d,
		communities: communities,
		log:         log.With().Str("component", "gateway").Logger(),
	}
}

// Run polls until ctx is done, then waits for in-flight updates.
func (g *Gateway) Run(ctx context.Context, pollTimeout time.Duration) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(pollTimeout / time.Second)
	u.AllowedUpdates = []string{"message", "my_chat_member"}

	updates := g.bot.GetUpdatesChan(u)
	g.log.Info().Dur("poll_timeout", pollTimeout).Msg("polling for updates")

	defer g.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			g.bot.StopReceivingUpdates()
			g.log.Info().Msg("stopped polling; waiting for in-flight updates")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			g.wg.Add(1)
			go func() {
				defer g.wg.Done()
				g.handle(ctx, update)
			}()
		}
	}
}

func (g *Gateway) handle(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error().Interface("panic", r).Int("update_id", update.UpdateID).Msg("update handler panicked")
		}
	}()

	switch {
	case update.MyChatMember != nil:
		updatesTotal.WithLabelValues("my_chat_member").Inc()
		ctx, span := observability.StartUpdate(ctx, "my_chat_member", update.UpdateID, update.MyChatMember.Chat.ID)
		defer span.End()
		g.membership(ctx, update.MyChatMember)
	case update.Message != nil && update.Message.Chat != nil:
		ctx, span := observability.StartUpdate(ctx, "message", update.UpdateID, update.Message.Chat.ID)
		defer span.End()
		g.message(ctx, update.Message)
	default:
		updatesTotal.WithLabelValues("other").Inc()
	}
}

// membership records the bot being added to a group. Leaving keeps the
// community's data.
func (g *Gateway) membership(ctx context.Context, m *tgbotapi.ChatMemberUpdated) {
	if m.Chat.IsPrivate() {
		return
	}
	log := g.log.With().Int64("community_id", m.Chat.ID).Str("status", m.NewChatMember.Status).Logger()
	switch m.NewChatMember.Status {
	case "member", "administrator":
		if _, err := g.communities.Join(ctx, m.Chat.ID, m.Chat.Title); err != nil {
			log.Error().Err(err).Msg("record community join")
			return
		}
		log.Info().Str("name", m.Chat.Title).Msg("joined community")
	case "left", "kicked":
		log.Info().Msg("left community")
	}
}

func (g *Gateway) message(ctx context.Context, m *tgbotapi.Message) {
	switch {
	case m.NewChatTitle != "":
		updatesTotal.WithLabelValues("new_chat_title").Inc()
		if err := g.communities.Rename(ctx, m.Chat.ID, m.NewChatTitle); err != nil {
			g.log.Error().Err(err).Int64("community_id", m.Chat.ID).Msg("record community rename")
		}
		return
	case m.MigrateToChatID != 0:
		// A group upgraded to a supergroup continues under a new ID.
		updatesTotal.WithLabelValues("migrate").Inc()
		if _, err := g.communities.Join(ctx, m.MigrateToChatID, m.Chat.Title); err != nil {
			g.log.Error().Err(err).Int64("community_id", m.MigrateToChatID).Msg("record migrated community")
		}
		return
	}

	updatesTotal.WithLabelValues("message").Inc()
	msg, ok := toMessage(m)
	if !ok {
		return
	}
	out := g.dispatcher.Dispatch(ctx, msg)
	if out.Status != dispatch.StatusIgnored {
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("dispatch.status", out.Status.String()),
			attribute.String("dispatch.command", out.Command),
		)
		g.log.Debug().
			Int64("chat_id", msg.ChatID).
			Str("status", out.Status.String()).
			Str("command", out.Command).
			Msg("message dispatched")
	}
}

// toMessage converts a Telegram message. Captions count as text so files
// can carry commands.
func toMessage(m *tgbotapi.Message) (dispatch.Message, bool) {
	text := m.Text
	if text == "" {
		text = m.Caption
	}
	if text == "" {
		return dispatch.Message{}, false
	}
	msg := dispatch.Message{
		ID:      m.MessageID,
		ChatID:  m.Chat.ID,
		Private: m.Chat.IsPrivate(),
		Text:    text,
	}
	if m.From != nil {
		msg.SenderID = m.From.ID
		msg.SenderName = m.From.UserName
		if msg.SenderName == "" {
			msg.SenderName = m.From.FirstName
		}
		msg.FromBot = m.From.IsBot
	}

	switch {
	case m.Document != nil:
		msg.Attachment = &dispatch.Attachment{FileID: m.Document.FileID, FileName: m.Document.FileName, Size: int64(m.Document.FileSize)}
	case len(m.Photo) > 0:
		// Sizes are ascending; keep the largest.
		p := m.Photo[len(m.Photo)-1]
		msg.Attachment = &dispatch.Attachment{FileID: p.FileID, FileName: "photo.jpg", Size: int64(p.FileSize)}
	}
	return msg, true
}
