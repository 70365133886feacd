package main

import (
	"github.com/ashendes/restaurant-admin/internal/client"
	"github.com/ashendes/restaurant-admin/internal/config"
	"github.com/ashendes/restaurant-admin/internal/dashboard"
	"github.com/ashendes/restaurant-admin/internal/orderstatus"
	"github.com/ashendes/restaurant-admin/internal/session"
	log "github.com/sirupsen/logrus"
)

func init() {
	// Initialize logger
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	cfg := config.Load()
	log.SetLevel(cfg.LogLevel)
	logger := log.WithField("service", "dashboard")

	sess := session.New()
	api := client.New(client.Config{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.Timeout,
		BulkheadSize: cfg.API.BulkheadSize,
	}, sess, logger)

	alerts := dashboard.NewAlerts(50, logger)
	orders := orderstatus.NewController(api,
		orderstatus.WithNotifier(alerts),
		orderstatus.WithLogger(logger),
	)
	svc := dashboard.NewService(api, sess, orders, logger)

	router := dashboard.NewRouter(svc, alerts, api)

	logger.WithField("api_base_url", cfg.API.BaseURL).Infof("Dashboard starting on port %s", cfg.Dashboard.Port)
	if err := router.Run(":" + cfg.Dashboard.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
