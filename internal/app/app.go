package app

import (
	"context"
	"fmt"

	"lunchcheck_bot/internal/config"
	"lunchcheck_bot/internal/logger"
	"lunchcheck_bot/internal/lunchcheck"
	"lunchcheck_bot/internal/scheduler"
	"lunchcheck_bot/internal/store"
	"lunchcheck_bot/internal/telegram"
)

// App wires all services and manages their lifecycle.
type App struct {
	Store     *store.Store
	Bot       *telegram.Bot
	Scheduler *scheduler.Scheduler

	saver *store.Saver
	mongo *store.MongoBackend
}

// New initializes every service from the configuration. The store is loaded
// from the snapshot backend; a missing or corrupt snapshot yields an empty
// store and is never fatal.
func New(cfg *config.Config) (*App, error) {
	app := &App{}

	backend, err := app.initBackend(cfg)
	if err != nil {
		return nil, err
	}

	data, err := backend.Load(context.Background())
	if err != nil {
		logger.L().Warnf("Failed to load snapshot, starting empty: %v", err)
	}
	app.Store = store.Load(data)
	logger.L().Infof("Store loaded: %d chats", len(app.Store.ChatIDs()))

	app.saver = store.NewSaver(app.Store, backend, cfg.SnapshotInterval)

	client := lunchcheck.NewClient(cfg.SaldoBaseURL, cfg.FetchTimeout)
	parser := lunchcheck.NewCardParser(cfg.SaldoBaseURL)

	app.Bot, err = telegram.New(telegram.Config{Token: cfg.TelegramToken}, app.Store, client, parser)
	if err != nil {
		app.Close(context.Background())
		return nil, fmt.Errorf("init Telegram bot failed: %w", err)
	}

	monitor := telegram.NewCardMonitor(app.Store, client, app.Bot.SendMessage, cfg.CheckConcurrency)

	app.Scheduler = scheduler.New()
	if err := app.Scheduler.Schedule("balance-check", cfg.CheckSchedule, monitor.RunCheck); err != nil {
		app.Close(context.Background())
		return nil, fmt.Errorf("init scheduler failed: %w", err)
	}

	return app, nil
}

// Start launches the background loops (snapshot saver and scheduler). The
// bot's long poll is started separately because it blocks.
func (a *App) Start() {
	a.saver.Start()
	a.Scheduler.Start()
}

// Close stops background loops, letting in-flight work finish, and releases
// external connections. A final snapshot flush is best effort.
func (a *App) Close(ctx context.Context) error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.saver != nil {
		a.saver.Stop()
	}
	if a.mongo != nil {
		if err := a.mongo.Close(ctx); err != nil {
			return fmt.Errorf("close MongoDB failed: %w", err)
		}
	}
	return nil
}

func (a *App) initBackend(cfg *config.Config) (store.Backend, error) {
	if cfg.MongoURI != "" {
		mb, err := store.NewMongoBackend(store.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDBName,
		})
		if err != nil {
			return nil, fmt.Errorf("init MongoDB backend failed: %w", err)
		}
		a.mongo = mb
		logger.L().Info("Using MongoDB snapshot backend")
		return mb, nil
	}

	fb, err := store.NewFileBackend(cfg.DataFile)
	if err != nil {
		return nil, fmt.Errorf("init file backend failed: %w", err)
	}
	logger.L().Infof("Using file snapshot backend: %s", cfg.DataFile)
	return fb, nil
}
