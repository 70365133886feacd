package main

import (
	"github.com/ashendes/restaurant-admin/internal/config"
	"github.com/ashendes/restaurant-admin/internal/orderapi"
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

	server := orderapi.NewServer(orderapi.NewStore(), []byte(cfg.TokenSecret))
	router := server.Router()

	log.Infof("Order API starting on port %s", cfg.OrderAPI.Port)
	if err := router.Run(":" + cfg.OrderAPI.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
