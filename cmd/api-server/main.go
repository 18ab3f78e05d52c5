package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"wallhub/internal/auth"
	"wallhub/internal/external"
	"wallhub/internal/favorites"
	"wallhub/internal/images"
	"wallhub/internal/profile"
	synchub "wallhub/internal/sync"
	"wallhub/pkg/database"
	"wallhub/pkg/objstore"
	"wallhub/pkg/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := utils.Load()
	if err != nil {
		log.Fatalf("config failed: %v", err)
	}

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()

	// Optional: avoid "trusted all proxies" warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// seeded local wallpapers referenced by relative catalog URLs
	router.Static("/static-images", cfg.StaticDir)

	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": stats.WSClients,
		})
	})

	// Object storage is optional — without it uploads return errors but
	// browsing and favorites still work.
	var store *objstore.Store
	if cfg.S3.AccessKey != "" {
		store, err = objstore.New(cfg.S3)
		if err != nil {
			log.Printf("object storage unavailable, uploads disabled: %v", err)
			store = nil
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := store.EnsureBucket(ctx); err != nil {
				log.Printf("ensure bucket failed, uploads disabled: %v", err)
				store = nil
			}
			cancel()
		}
	} else {
		log.Println("WALLHUB_S3_ACCESS_KEY not set — uploads disabled")
	}

	api := router.Group("/api")

	// Auth
	tokenSvc := auth.TokenService{
		Secret:   []byte(cfg.Auth.Secret),
		Issuer:   cfg.Auth.Issuer,
		Duration: cfg.Auth.Duration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(api.Group("/auth"))

	// Image catalog (public browsing)
	imagesRepo := images.NewRepo(db)
	var imageStore images.ObjectStore
	if store != nil {
		imageStore = store
	}
	imagesHandler := images.NewHandler(imagesRepo, imageStore)
	imagesHandler.RegisterRoutes(api.Group("/images"))

	// Feed: local catalog + external search with fallback (public)
	provider := external.NewUnsplashClient(cfg.Unsplash)
	feedHandler := external.NewHandler(imagesRepo, provider, cfg.PublicBaseURL)
	feedHandler.RegisterRoutes(api.Group("/external"))

	// Protected surface
	protectedImages := api.Group("/images")
	protectedImages.Use(auth.AuthMiddleware(tokenSvc, authRepo))
	imagesHandler.RegisterProtectedRoutes(protectedImages)

	favRepo := favorites.NewRepo(db)
	favHandler := favorites.NewHandler(favRepo, hub)
	favHandler.RegisterRoutes(protectedImages)

	profileGroup := api.Group("/profile")
	profileGroup.Use(auth.AuthMiddleware(tokenSvc, authRepo))
	var profileStore profile.ObjectStore
	if store != nil {
		profileStore = store
	}
	profileHandler := profile.NewHandler(authRepo, profileStore)
	profileHandler.RegisterRoutes(profileGroup)

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on :%s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}

	log.Println("server stopped")
}
