package main

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quickstay/booking/config"
	"github.com/quickstay/booking/config/db"
	redisclient "github.com/quickstay/booking/config/redis"
	"github.com/quickstay/booking/logger"
	"github.com/quickstay/booking/middlewares/cors"
	"github.com/quickstay/booking/migrations"
	"github.com/quickstay/booking/routes"
	"github.com/quickstay/booking/utils/mail"
)

//go:embed templates/email/*
var embeddedEmailTemplates embed.FS

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	db.Connect()
	defer db.Close()
	defer redisclient.CloseRedis()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := migrations.Apply(migrateCtx, db.DB); err != nil {
		migrateCancel()
		logger.ErrorLogger.Errorf("Failed to apply migrations: %v", err)
		os.Exit(1)
	}
	migrateCancel()
	logger.InfoLogger.Info("Migrations applied.")

	mail.InitTemplates(embeddedEmailTemplates)
	logger.InfoLogger.Info("Email templates initialized.")

	mailer, err := mail.NewMailerFromEnv()
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to configure mailer: %v", err)
		os.Exit(1)
	}

	port := config.Getenv("PORT", "8080")

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())

	routes.RegisterBookingRoutes(r, mailer)
	routes.RegisterWebhookRoutes(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok from booking service"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.InfoLogger.Infof("Listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorLogger.Errorf("Server error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoLogger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLogger.Errorf("Forced shutdown: %v", err)
	}
	logger.InfoLogger.Info("Server stopped.")
}
