// Package app wires the application's dependencies together.
package app

import (
	"context"

	"github.com/crosspost-cli/crosspost/internal/config"
	"github.com/crosspost-cli/crosspost/internal/history"
	"github.com/crosspost-cli/crosspost/internal/platform"
	"github.com/crosspost-cli/crosspost/internal/publisher"
	"github.com/crosspost-cli/crosspost/internal/retry"
)

// App is the main application container holding all dependencies.
type App struct {
	Config    *config.Config
	Registry  *platform.Registry
	Publisher *publisher.Publisher
	History   *history.Store
}

// New creates an application instance with all dependencies wired up.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := history.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry(cfg)

	return &App{
		Config:    cfg,
		Registry:  registry,
		Publisher: publisher.New(registry),
		History:   store,
	}, nil
}

// NewRegistry builds the fixed adapter set from configuration. Split out
// so commands that never touch the history store can skip opening it.
func NewRegistry(cfg *config.Config) *platform.Registry {
	policy := retry.Policy{
		MaxAttempts: cfg.RetryMaxAttempts,
		Delay:       cfg.RetryDelay,
	}

	return platform.NewRegistry(
		platform.NewFacebook(platform.FacebookConfig{
			AccessToken: cfg.Facebook.AccessToken,
			PageID:      cfg.Facebook.PageID,
			BaseURL:     cfg.Facebook.BaseURL,
		}, policy),
		platform.NewInstagram(platform.InstagramConfig{
			AccessToken:  cfg.Instagram.AccessToken,
			AccountID:    cfg.Instagram.AccountID,
			BaseURL:      cfg.Instagram.BaseURL,
			MediaBaseURL: cfg.Instagram.MediaBaseURL,
		}, policy),
		platform.NewTelegram(platform.TelegramConfig{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
			BaseURL:  cfg.Telegram.BaseURL,
		}, policy),
		platform.NewLinkedIn(platform.LinkedInConfig{
			AccessToken: cfg.LinkedIn.AccessToken,
			PersonID:    cfg.LinkedIn.PersonID,
			BaseURL:     cfg.LinkedIn.BaseURL,
		}, policy),
	)
}

// Close closes all resources.
func (a *App) Close() error {
	if a.History != nil {
		return a.History.Close()
	}
	return nil
}
