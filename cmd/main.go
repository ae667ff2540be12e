package main

import (
	"net/http"
	"time"

	"github.com/rafaelalberola/lamiradacreativa/internal/app"
	"github.com/rafaelalberola/lamiradacreativa/internal/config"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)

	// 1) Config
	cfg := config.LoadConfig()

	// 2) Core application (services, etc.)
	application := app.NewApp(cfg)
	defer application.Close()

	// 3) Router, controllers & CORS
	handler := app.NewHandler(application)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	utils.Logger.Infof("Starting %s on :%s", cfg.AppName, cfg.AppPort)
	if err := srv.ListenAndServe(); err != nil {
		utils.Logger.Fatal("Server error:", err)
	}
}
