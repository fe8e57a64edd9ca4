package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/khushi-tulsiyan/auctionmania/internal/api/handlers"
	"github.com/khushi-tulsiyan/auctionmania/internal/api/middleware"
	"github.com/khushi-tulsiyan/auctionmania/internal/auction"
	"github.com/khushi-tulsiyan/auctionmania/internal/config"
	"github.com/khushi-tulsiyan/auctionmania/internal/domain"
	mysqlrepo "github.com/khushi-tulsiyan/auctionmania/internal/infrastructure/mysql"
	redismirror "github.com/khushi-tulsiyan/auctionmania/internal/infrastructure/redis"
	wsgateway "github.com/khushi-tulsiyan/auctionmania/internal/infrastructure/websocket"
	"github.com/khushi-tulsiyan/auctionmania/internal/services"
	"github.com/khushi-tulsiyan/auctionmania/pkg/logger"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	log.Info("Configuration loaded", "config", cfg.String())

	clock := clockwork.NewRealClock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Catalog: MySQL when configured, inline config seeds otherwise.
	seeds := cfg.Catalog
	if cfg.MySQL.DSN != "" {
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			log.Error("Failed to connect to MySQL", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

		if err := db.PingContext(ctx); err != nil {
			log.Error("Failed to ping MySQL", "error", err)
			os.Exit(1)
		}

		catalogRepo := mysqlrepo.NewCatalogRepository(db)
		seeds, err = catalogRepo.LoadCatalog(ctx)
		if err != nil {
			log.Error("Failed to load auction catalog", "error", err)
			os.Exit(1)
		}
		log.Info("Auction catalog loaded from MySQL", "auctions", len(seeds))
	}

	if len(seeds) == 0 {
		log.Error("No auctions configured")
		os.Exit(1)
	}

	registry := auction.NewRegistry(seeds, clock)
	router := wsgateway.NewRouter(log)

	// Optional accepted-bid mirror.
	var mirror domain.EventMirror
	if cfg.Redis.Address != "" {
		rdb := redisClient.NewClient(&redisClient.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		mirror = redismirror.NewEventMirror(rdb)
		log.Info("Bid event mirror enabled", "address", cfg.Redis.Address)
	}

	bidService := services.NewBidService(registry, router, mirror, log)
	closer := services.NewDeadlineCloser(registry, router, clock, log)

	// Websocket gateway.
	wsHandler := wsgateway.NewHandler(bidService, registry, router, clock, log)
	wsRouter := mux.NewRouter()
	wsRouter.Use(middleware.CORS)
	wsRouter.HandleFunc("/ws", wsHandler.HandleConnection)
	wsRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	wsServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.WSPort),
		Handler: wsRouter,
	}

	// Query API.
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	auctionHandler := handlers.NewAuctionHandler(registry, clock, log)
	api := e.Group("/api/v1")
	api.GET("/auctions", auctionHandler.ListAuctions)
	api.GET("/auctions/:id", auctionHandler.GetAuction)
	api.GET("/auctions/:id/bids", auctionHandler.GetBidHistory)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "auctionmania",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	if err := closer.Start(); err != nil {
		log.Error("Failed to start deadline closer", "error", err)
		os.Exit(1)
	}

	go func() {
		log.Info("Starting websocket gateway", "address", wsServer.Addr)
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Websocket gateway failed to start", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.APIPort)
		log.Info("Starting query API", "address", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Query API failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down auctionmania...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	closer.Stop()

	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Websocket gateway forced to shutdown", "error", err)
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Query API forced to shutdown", "error", err)
	}

	log.Info("auctionmania stopped")
}
