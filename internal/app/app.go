package app

import (
	"github.com/rafaelalberola/lamiradacreativa/internal/config"
	"github.com/rafaelalberola/lamiradacreativa/internal/services"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
)

// App struct holds references to config & services.
type App struct {
	Config              *config.Config
	TrackingService     services.TrackingService
	IdentityService     services.IdentityService
	NotificationService services.NotificationService
	CheckoutService     services.CheckoutService
	WebhookDispatcher   *services.WebhookDispatcher
}

// NewApp sets up the core application context. Nothing here dials out; each
// service checks its own configuration when first used.
func NewApp(cfg *config.Config) *App {
	utils.Logger.Infof("Initializing %s App", cfg.AppName)

	tracking := services.NewTrackingService(cfg)
	identity := services.NewIdentityService(cfg)
	notification := services.NewNotificationService(cfg)

	return &App{
		Config:              cfg,
		TrackingService:     tracking,
		IdentityService:     identity,
		NotificationService: notification,
		CheckoutService:     services.NewCheckoutService(cfg),
		WebhookDispatcher:   services.NewWebhookDispatcher(cfg, tracking, identity, notification),
	}
}

// Close is a no-op here but included for consistency.
func (a *App) Close() {
	utils.Logger.Infof("%s app shutting down.", a.Config.AppName)
}
