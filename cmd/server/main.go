package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkdirlove/song-server/internal/config"
	"github.com/mkdirlove/song-server/internal/handler"
	"github.com/mkdirlove/song-server/internal/middleware"
	"github.com/mkdirlove/song-server/internal/repository"
	"github.com/mkdirlove/song-server/pkg/crypto"
	"github.com/mkdirlove/song-server/pkg/jwt"
	"github.com/mkdirlove/song-server/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{Level: logger.ParseLevel(cfg.Log.Level)})
	log.Info("starting song-server", logger.Int("http_port", cfg.Server.HTTPPort))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := repository.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal("failed to connect to document store", logger.Err(err))
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Error("disconnect error", logger.Err(err))
		}
	}()

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("failed to ensure indexes", logger.Err(err))
	}

	users := repository.NewUserRepository(db)
	songs := repository.NewSongRepository(db)
	hasher := crypto.NewPasswordHasher()
	tokens := jwt.NewManager(&jwt.Config{
		Secret:      cfg.JWT.Secret,
		Issuer:      cfg.JWT.Issuer,
		TokenExpiry: cfg.JWT.TokenExpiry,
	})

	if err := repository.EnsureAdminUser(ctx, users, hasher,
		cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword, log); err != nil {
		log.Fatal("failed to bootstrap admin user", logger.Err(err))
	}

	userHandler := handler.NewUserHandler(users, tokens, hasher, cfg.Mongo.PageSize, log)
	songHandler := handler.NewSongHandler(songs, cfg.Mongo.PageSize, log)

	router := newRouter(log, tokens, userHandler, songHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("http server listening", logger.Int("port", cfg.Server.HTTPPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", logger.Err(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("received shutdown signal", logger.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown error", logger.Err(err))
	}
	log.Info("song-server stopped")
}

// newRouter assembles the middleware stack and routes. Order matters: the
// request id must exist before recovery or logging reference it.
func newRouter(log logger.Logger, tokens *jwt.Manager,
	userHandler *handler.UserHandler, songHandler *handler.SongHandler) *gin.Engine {

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logging(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().Unix()})
	})

	router.POST("/login", userHandler.Login)
	router.GET("/get_songs", songHandler.GetSongs)

	authed := router.Group("/", middleware.RequireUser(tokens, log))
	authed.POST("/add_song", songHandler.AddSong)
	authed.POST("/like_song", songHandler.LikeSong)
	authed.POST("/play_song", songHandler.PlaySong)
	authed.POST("/remove_song", songHandler.RemoveSong)
	authed.POST("/add_user", userHandler.AddUser)
	authed.POST("/remove_user", userHandler.RemoveUser)
	authed.GET("/get_users", userHandler.GetUsers)

	return router
}
