package management

import (
	"context"
	"fmt"
	"strings"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-community-bot/internal/dispatch"
	"github.com/tbourn/go-community-bot/internal/dispatch/dispatchtest"
	"github.com/tbourn/go-community-bot/internal/plugins/dice"
	"github.com/tbourn/go-community-bot/internal/repo"
	"github.com/tbourn/go-community-bot/internal/services"
)

const (
	chatID  int64 = -2002
	adminID int64 = 1
	userID  int64 = 2
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newBot(t *testing.T, db *gorm.DB) (*dispatch.Dispatcher, *dispatchtest.Sender) {
	t.Helper()
	communities, err := repo.NewCommunityRepository(db, "!")
	if err != nil {
		t.Fatalf("NewCommunityRepository: %v", err)
	}
	s := dispatchtest.NewSender()
	s.Admins[adminID] = true
	d := dispatch.New(dispatch.Config{DefaultPrefix: "!"}, communities, s, zerolog.Nop())
	err = d.Load(
		New(services.NewSettingsService(communities)),
		dice.NewWithSource(func(n int) int { return 0 }),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return d, s
}

func msg(from int64, text string) dispatch.Message {
	return dispatch.Message{ID: 5, ChatID: chatID, SenderID: from, Text: text}
}

func TestSetPrefix(t *testing.T) {
	d, s := newBot(t, newDB(t))
	ctx := context.Background()

	d.Dispatch(ctx, msg(adminID, "!config setprefix ?"))
	if got := s.Last(); got != "Command prefix changed to `?`." {
		t.Fatalf("reply = %q", got)
	}
	d.Dispatch(ctx, msg(adminID, "?config setprefix ?"))
	if got := s.Last(); got != "`?` is already your prefix." {
		t.Fatalf("reply = %q", got)
	}
	d.Dispatch(ctx, msg(userID, "?config prefix"))
	if got := s.Last(); got != "The command prefix is `?`." {
		t.Fatalf("reply = %q", got)
	}
}

func TestSetPrefix_Errors(t *testing.T) {
	d, s := newBot(t, newDB(t))
	ctx := context.Background()

	out := d.Dispatch(ctx, msg(userID, "!config setprefix ?"))
	if ce := out.Err(); ce == nil || ce.Kind != dispatch.KindMissingPermission {
		t.Fatalf("outcome: %+v", out)
	}

	d.Dispatch(ctx, msg(adminID, "!config setprefix"))
	if got := s.Last(); got != "You need to specify the prefix!" {
		t.Fatalf("reply = %q", got)
	}

	d.Dispatch(ctx, msg(adminID, "!config setprefix toolong"))
	if got := s.Last(); got != "The prefix must be at most 5 characters!" {
		t.Fatalf("reply = %q", got)
	}

	out = d.Dispatch(ctx, dispatch.Message{ID: 1, ChatID: adminID, SenderID: adminID, Private: true, Text: "!config setprefix ?"})
	if ce := out.Err(); ce == nil || ce.Kind != dispatch.KindNoPrivateMessage {
		t.Fatalf("private outcome: %+v", out)
	}
}

// A prefix change is visible to a second process sharing the store, and the
// old prefix stops resolving commands.
func TestScenario_PrefixChangeWithDice(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	first, s1 := newBot(t, db)

	if out := first.Dispatch(ctx, msg(userID, "!roll 1d6")); out.Status != dispatch.StatusHandled {
		t.Fatalf("roll outcome: %+v", out)
	}
	if got := s1.Last(); got != "Rolling 1d6\nDice 1: 1\nFull value: 1" {
		t.Fatalf("roll reply = %q", got)
	}

	second, s2 := newBot(t, db)
	second.Dispatch(ctx, msg(userID, "!config prefix"))
	if got := s2.Last(); got != "The command prefix is `!`." {
		t.Fatalf("second instance reply = %q", got)
	}

	first.Dispatch(ctx, msg(adminID, "!config setprefix ?"))
	s1.Reset()
	if out := first.Dispatch(ctx, msg(userID, "!roll 1d6")); out.Status != dispatch.StatusIgnored {
		t.Fatalf("old prefix outcome: %+v", out)
	}
	if len(s1.Texts()) != 0 {
		t.Fatalf("old prefix must not be answered: %v", s1.Texts())
	}
	if out := first.Dispatch(ctx, msg(userID, "?roll 1d6")); out.Status != dispatch.StatusHandled {
		t.Fatalf("new prefix outcome: %+v", out)
	}

	// A fresh instance reads the stored prefix.
	third, s3 := newBot(t, db)
	if out := third.Dispatch(ctx, msg(userID, "?roll 2")); out.Status != dispatch.StatusHandled {
		t.Fatalf("third instance outcome: %+v", out)
	}
	if got := s3.Last(); got != "Rolling 2\nFull value: 2" {
		t.Fatalf("third instance reply = %q", got)
	}
}
