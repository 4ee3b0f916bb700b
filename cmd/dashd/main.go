// Command dashd runs the formdesk dashboard gateway: a thin client over the
// upstream admin API that owns the session, proxies resources, renders
// dynamic form fields and relays push notifications to the browser.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/formdesk/dashboard-gateway/internal/api"
	"github.com/formdesk/dashboard-gateway/internal/core/ports"
	"github.com/formdesk/dashboard-gateway/internal/core/service"
	"github.com/formdesk/dashboard-gateway/internal/gateway"
	"github.com/formdesk/dashboard-gateway/internal/infrastructure/config"
	memoryscope "github.com/formdesk/dashboard-gateway/internal/infrastructure/db/memory"
	redisinfra "github.com/formdesk/dashboard-gateway/internal/infrastructure/db/redis"
	"github.com/formdesk/dashboard-gateway/internal/infrastructure/push"
	"github.com/formdesk/dashboard-gateway/internal/infrastructure/upstream"
	"github.com/formdesk/dashboard-gateway/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Persistence scopes ---
	var rdb *redis.Client
	var remembered ports.Scope = memoryscope.NewScope()
	if cfg.Redis.Addr != "" {
		client, err := redisinfra.Connect(ctx, redisinfra.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, remembered sessions will not survive restarts")
		} else {
			rdb = client
			remembered = redisinfra.NewScope(rdb, cfg.Session.ScopePrefix)
		}
	} else {
		log.Warn().Msg("no redis configured, remembered sessions will not survive restarts")
	}
	ephemeral := memoryscope.NewScope()

	// --- Session store and upstream gateway ---
	sessions := service.NewSessionStore(remembered, ephemeral, log,
		service.WithTokenTTL(cfg.Session.TokenTTL))

	redirectToLogin := func() {
		log.Info().Msg("session rejected upstream, browser shell will be redirected to login")
	}
	gw, err := gateway.New(cfg.Upstream.BaseURL,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
		gateway.WithMiddleware(
			gateway.ExpiryGuard(sessions),
			gateway.BearerAuth(sessions),
			gateway.AuthFailure(sessions, redirectToLogin, log),
			gateway.Logging(log),
			gateway.Metrics(),
		),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid upstream base url")
	}

	authClient := upstream.NewAuthClient(gw)
	sessions.AttachAPI(authClient)

	// --- Notifications ---
	notificationOpts := []service.NotificationOption{}
	var source ports.PushSource
	if rdb != nil {
		source = push.NewListener(rdb, log)
		notificationOpts = append(notificationOpts, service.WithDeduper(redisinfra.NewEventDedup(rdb)))
	}
	notifications := service.NewNotificationService(upstream.NewNotificationClient(gw), source, log, notificationOpts...)

	// --- Restore a prior session, if any ---
	if restored, _ := sessions.Restore(ctx); restored && !sessions.CheckTokenExpiration(ctx) {
		if principal := sessions.Principal(); principal != nil && source != nil {
			if err := notifications.StartListening(ctx, principal.ID); err != nil {
				log.Warn().Err(err).Msg("push listener failed to start")
			}
		}
	}

	// --- HTTP surface ---
	e := api.NewRouter(api.Deps{
		Sessions:      sessions,
		Notifications: notifications,
		Resources:     upstream.NewResourceClient(gw),
		Upstream:      gw,
		Redis:         rdb,
		Log:           log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("upstream", cfg.Upstream.BaseURL).Msg("dashboard gateway started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notifications.StopListening(shutdownCtx)
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("stopped")
}
