package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/dealroom-client/internal/api"
	"github.com/spec-kit/dealroom-client/internal/config"
	"github.com/spec-kit/dealroom-client/internal/events"
	"github.com/spec-kit/dealroom-client/internal/observability"
	"github.com/spec-kit/dealroom-client/internal/service"
	"github.com/spec-kit/dealroom-client/internal/session"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dealroom",
		Short:         "Virtual deal room client",
		Long:          "Command line client for the virtual deal room: accounts, deals and per-deal chat.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRegisterCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newDealsCmd(),
		newChatCmd(),
	)
	return root
}

// app bundles the wired client the way the views consume it. Construction
// order: config, logger, store, session manager (restored once), transports,
// services.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	dispatcher events.Dispatcher
	auth       *api.AuthAPI
	sessions   *session.Manager
	deals      *service.DealService
	chat       *service.ChatService
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := session.NewStore(cfg.State.Dir)
	if err != nil {
		return nil, err
	}

	dispatcher := events.NewInMemoryDispatcher()

	// Login and register are unauthenticated, so the auth collaborator gets
	// a bare client; everything else rides the token-attaching one.
	authAPI := api.NewAuthAPI(api.NewClient(api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.RequestTimeout(),
		Logger:  logger,
	}))

	sessions := session.NewManager(session.Dependencies{
		Auth:       authAPI,
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	sessions.Restore()

	authed := api.NewClient(api.Options{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.RequestTimeout(),
		Tokens:        sessions,
		OnAuthFailure: sessions.Expire,
		Logger:        logger,
	})

	deals := service.NewDealService(service.DealDependencies{
		Deals:      api.NewDealsAPI(authed),
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	chat := service.NewChatService(api.NewMessagesAPI(authed), logger)

	return &app{
		cfg:        cfg,
		logger:     logger,
		dispatcher: dispatcher,
		auth:       authAPI,
		sessions:   sessions,
		deals:      deals,
		chat:       chat,
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
