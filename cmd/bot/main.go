// Command bot runs the community bot: it long-polls Telegram, dispatches
// commands to the built-in modules, and optionally serves the admin API.
//
//	@title						Community Bot Admin API
//	@version					1.0
//	@description				Operator API for the communities, custom commands and role links stored by the bot.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the admin token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-community-bot/internal/config"
	"github.com/tbourn/go-community-bot/internal/dispatch"
	"github.com/tbourn/go-community-bot/internal/download"
	"github.com/tbourn/go-community-bot/internal/gateway"
	httpapi "github.com/tbourn/go-community-bot/internal/http"
	"github.com/tbourn/go-community-bot/internal/observability"
	"github.com/tbourn/go-community-bot/internal/plugins/admin"
	"github.com/tbourn/go-community-bot/internal/plugins/core"
	"github.com/tbourn/go-community-bot/internal/plugins/customcmd"
	"github.com/tbourn/go-community-bot/internal/plugins/dice"
	"github.com/tbourn/go-community-bot/internal/plugins/management"
	"github.com/tbourn/go-community-bot/internal/repo"
	"github.com/tbourn/go-community-bot/internal/services"
	"github.com/tbourn/go-community-bot/internal/sysutil"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		sysutil.SetupLogger(os.Stderr, "info", false)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := sysutil.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.Admin.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Msg("bot stopped")
	}
	logger.Info().Msg("bye")
}

func run(ctx context.Context, cfg config.Config) error {
	bot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return err
	}
	bot.Debug = cfg.Bot.Debug
	log.Info().Str("username", bot.Self.UserName).Msg("authorized")

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, observability.Build{
		Version:     sysutil.FirstNonEmpty(cfg.Bot.BuildVersion, "dev"),
		BotUsername: bot.Self.UserName,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.Open(cfg.DB)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}

	reg := repo.NewRegistry(db, cfg.Bot.DefaultPrefix)
	communityRepo, err := repo.Communities(reg)
	if err != nil {
		return err
	}
	commandRepo, err := repo.CustomCommands(reg)
	if err != nil {
		return err
	}
	roleRepo, err := repo.RoleLinks(reg)
	if err != nil {
		return err
	}

	fetcher := download.New(
		download.WithMaxBytes(cfg.Media.MaxDownloadBytes),
		download.WithTimeout(cfg.Media.DownloadTimeout),
	)
	communitySvc := services.NewCommunityService(communityRepo)
	settingsSvc := services.NewSettingsService(communityRepo)
	commandSvc := services.NewCommandService(commandRepo, communityRepo, fetcher, cfg.Media.Root)
	roleSvc := services.NewRoleService(roleRepo)

	client := gateway.NewClient(bot, log.Logger)
	d := dispatch.New(dispatch.Config{
		DefaultPrefix: cfg.Bot.DefaultPrefix,
		Reporter: dispatch.ReporterConfig{
			OwnerID:    cfg.Bot.OwnerID,
			SendErrors: cfg.Bot.SendErrors,
		},
	}, communityRepo, client, log.With().Str("component", "dispatch").Logger())

	err = d.Load(
		core.New(core.Info{
			Name:        bot.Self.UserName,
			Version:     cfg.Bot.BuildVersion,
			BuildDate:   cfg.Bot.BuildDate,
			Description: cfg.Bot.Description,
			OwnerID:     cfg.Bot.OwnerID,
		}),
		management.New(settingsSvc),
		admin.New(),
		customcmd.New(commandSvc),
		dice.New(),
	)
	if err != nil {
		return err
	}
	log.Info().Strs("modules", d.Modules()).Msg("modules loaded")

	var srv *http.Server
	if cfg.Admin.Enabled {
		srv = adminServer(cfg, httpapi.Services{
			Communities: communitySvc,
			Commands:    commandSvc,
			Roles:       roleSvc,
		})
		go func() {
			log.Info().Str("addr", srv.Addr).Msg("admin API listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("admin API stopped")
			}
		}()
	}

	gw := gateway.New(bot, d, communitySvc, log.Logger)
	runErr := gw.Run(ctx, cfg.Bot.PollTimeout)

	if srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("admin API shutdown")
		}
	}
	return runErr
}

func adminServer(cfg config.Config, svc httpapi.Services) *http.Server {
	r := gin.New()
	httpapi.RegisterRoutes(r, svc, cfg)
	a := cfg.Admin
	return &http.Server{
		Addr:              ":" + a.Port,
		Handler:           r,
		ReadTimeout:       a.ReadTimeout,
		ReadHeaderTimeout: a.ReadHeaderTimeout,
		WriteTimeout:      a.WriteTimeout,
		IdleTimeout:       a.IdleTimeout,
		MaxHeaderBytes:    a.MaxHeaderBytes,
	}
}
