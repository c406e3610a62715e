package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/varsityhq/varsity-server/auth"
	"github.com/varsityhq/varsity-server/calendar"
	fakeeventrepo "github.com/varsityhq/varsity-server/calendar/repofake"
	"github.com/varsityhq/varsity-server/identity"
	"github.com/varsityhq/varsity-server/internal/config"
	"github.com/varsityhq/varsity-server/members"
	fakememberrepo "github.com/varsityhq/varsity-server/members/repofake"
	"github.com/varsityhq/varsity-server/notifications"
	fakenotificationrepo "github.com/varsityhq/varsity-server/notifications/repofake"
	"github.com/varsityhq/varsity-server/server"
	"github.com/varsityhq/varsity-server/store/postgres"
	"github.com/varsityhq/varsity-server/token"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, err := buildServer(ctx, c)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	cancel()
	return shutdown(httpServer)
}

func buildServer(ctx context.Context, c config.Config) (*server.Server, error) {
	var (
		memberRepo       members.Repo
		notificationRepo notifications.Repo
		eventRepo        calendar.Repo
		blacklist        token.Blacklist
		leader           notifications.Leader
	)

	if dsn := c.GetPostgresDSN(); dsn != "" {
		pool, err := postgres.Connect(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("buildServer postgres: %w", err)
		}
		memberRepo = postgres.NewMemberRepo(pool)
		notificationRepo = postgres.NewNotificationRepo(pool)
		eventRepo = postgres.NewEventRepo(pool)
		blacklist = postgres.NewBlacklist(pool)
		leader = postgres.NewAdvisoryLockLeader(pool, c.GetLeaderLockKey())
	} else {
		log.Warn().Msg("POSTGRES_DSN not set, using in-memory stores (single instance only)")
		memberRepo = fakememberrepo.NewFakeMemberRepo()
		notificationRepo = fakenotificationrepo.NewFakeNotificationRepo()
		eventRepo = fakeeventrepo.NewFakeEventRepo()
		blacklist = token.NewInMemoryBlacklist()
		leader = notifications.SingleInstanceLeader{}
	}

	codec := token.NewCodec(token.NewHMACSigner(c.GetTokenSecret()), token.WithIssuer(c.GetTokenIssuer()))

	var appleOptions []identity.AppleOption
	var codeVerifier identity.CodeVerifier
	if secret := c.GetAppleClientSecret(); secret != "" {
		appleOptions = append(appleOptions, identity.WithClientSecret(secret, c.GetAppleRedirectURL()))
	}
	verifier, err := identity.NewAppleVerifier(ctx, c.GetAppleIssuerURL(), c.GetAppleClientID(), appleOptions...)
	if err != nil {
		return nil, fmt.Errorf("buildServer apple verifier: %w", err)
	}
	if c.GetAppleClientSecret() != "" {
		codeVerifier = verifier
	}

	authService, err := auth.NewService(memberRepo, codec, blacklist,
		c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry(),
		auth.WithLogger(log.Logger))
	if err != nil {
		return nil, fmt.Errorf("buildServer auth service: %w", err)
	}

	notificationService, err := notifications.NewService(notificationRepo, eventRepo, memberRepo)
	if err != nil {
		return nil, fmt.Errorf("buildServer notification service: %w", err)
	}

	dispatcher, err := notifications.NewDispatcher(notificationRepo, eventRepo,
		notifications.NewHTTPGateway(c.GetPushGatewayURL()),
		notifications.WithGatewayTimeout(c.GetPushGatewayTimeout()),
		notifications.WithDispatcherLogger(log.Logger))
	if err != nil {
		return nil, fmt.Errorf("buildServer dispatcher: %w", err)
	}

	scheduler := notifications.NewScheduler(dispatcher, leader, c.GetDispatchHour(),
		notifications.WithSchedulerLogger(log.Logger))
	scheduler.Start(ctx)

	token.StartSweeper(ctx, blacklist, c.GetBlacklistSweepInterval())

	return server.New(c, server.Deps{
		Verifier:      verifier,
		CodeVerifier:  codeVerifier,
		Auth:          authService,
		Codec:         codec,
		Blacklist:     blacklist,
		Notifications: notificationService,
		Logger:        log.Logger,
	})
}

func setupLogging(c config.Config) {
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
