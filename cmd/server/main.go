package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/brickvest/brickvest/internal/pkg/config"
	"github.com/brickvest/brickvest/internal/pkg/health"
	"github.com/brickvest/brickvest/internal/pkg/localstore"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/middleware"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/internal/pkg/server"
	"github.com/brickvest/brickvest/services/auth"
	authhttp "github.com/brickvest/brickvest/services/auth/handler/http"
	authprovider "github.com/brickvest/brickvest/services/auth/provider"
	"github.com/brickvest/brickvest/services/factory"
	paymenthttp "github.com/brickvest/brickvest/services/payment/handler/http"
	paymentuc "github.com/brickvest/brickvest/services/payment/usecase"
	propertyhttp "github.com/brickvest/brickvest/services/property/handler/http"
	propertyws "github.com/brickvest/brickvest/services/property/handler/websocket"
	propertyuc "github.com/brickvest/brickvest/services/property/usecase"
)

func main() {
	cfg := config.InitConfig(".env")

	zapLogger, err := logger.InitFromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Close()

	zapLogger.Info("starting brickvest server",
		logger.String("environment", cfg.App.Environment),
		logger.String("backend", string(cfg.Storage.Backend)))

	store := localstore.New(cfg.Storage.DataDir)
	repoFactory := factory.New(cfg, store, zapLogger)
	defer repoFactory.Close()

	// Google verification falls back to simulated profiles when no endpoint
	// is configured, so the local backend works offline.
	var verifier auth.GoogleVerifier
	if cfg.Google.TokenInfoURL != "" {
		verifier = auth.NewTokenInfoVerifier(cfg.Google)
	} else {
		verifier = auth.NewSimulatedVerifier()
	}

	authService := auth.NewService(
		authprovider.NewProvider(repoFactory, verifier, cfg.JWT, zapLogger),
		store, zapLogger)
	paymentUC := paymentuc.NewPaymentUC(repoFactory, zapLogger)
	propertyUC := propertyuc.NewPropertyUC(repoFactory, repoFactory, zapLogger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.EchoMiddleware(zapLogger))
	e.Use(middleware.PanicRecoveryMiddleware(zapLogger))
	e.Use(echomw.CORS())

	healthHandler := health.NewHandler(cfg.App.Name, string(repoFactory.Backend()))
	healthHandler.AddCheck("storage", func(ctx context.Context) error {
		_, err := repoFactory.PropertyRepository("").GetProperties(ctx)
		return err
	})
	healthHandler.RegisterEndpoints(e)

	authHandler := authhttp.NewAuthHandler(authService)
	paymentHandler := paymenthttp.NewPaymentHandler(paymentUC)
	propertyHandler := propertyhttp.NewPropertyHandler(propertyUC)
	streamHandler := propertyws.NewStreamHandler(propertyUC, zapLogger)

	public := e.Group("")
	authHandler.RegisterPublicRoutes(public)
	propertyHandler.RegisterPublicRoutes(public)
	streamHandler.RegisterRoutes(public)

	protected := e.Group("", middleware.JWTAuthMiddleware(cfg.JWT))
	authHandler.RegisterRoutes(protected)
	paymentHandler.RegisterRoutes(protected)
	propertyHandler.RegisterRoutes(protected)

	warmLocalCatalogue(cfg, repoFactory, zapLogger)

	srv := server.NewGracefulServer(e, zapLogger, cfg.Server.Port)
	if err := srv.Start(); err != nil {
		zapLogger.Fatal("server stopped", logger.Err(err))
	}
}

// warmLocalCatalogue makes sure the local backend has its demo listings, so
// a fresh data directory is browsable before anyone signs in.
func warmLocalCatalogue(cfg *models.Config, f *factory.Factory, zapLogger *logger.ZapLogger) {
	if cfg.Storage.Backend != models.BackendLocal {
		return
	}
	properties, err := f.PropertyRepository("").GetProperties(context.Background())
	if err != nil {
		zapLogger.Error("failed to warm property catalogue", logger.Err(err))
		return
	}
	zapLogger.Info("property catalogue ready", logger.Int("count", len(properties)))
}
