package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"trackrate/internal/config"
	"trackrate/internal/db"
	"trackrate/internal/handlers"
	"trackrate/internal/logging"
	"trackrate/internal/metrics"
	"trackrate/internal/router"
	"trackrate/internal/services"
	"trackrate/internal/spotify"
	"trackrate/internal/utils"
)

const (
	sessionName     = "trackrate_session"
	shutdownTimeout = 10 * time.Second
	cacheSize       = 500
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close(conn)
	if err := db.Migrate(conn); err != nil {
		return err
	}

	cache, err := utils.NewCache(cacheSize)
	if err != nil {
		return err
	}

	deps := router.Deps{
		Config:    cfg,
		DB:        conn,
		Users:     services.NewUserService(conn),
		Tracks:    services.NewTrackService(conn, cache),
		Reviews:   services.NewReviewService(conn),
		Comments:  services.NewCommentService(conn),
		Reactions: services.NewReactionService(conn),
	}
	deps.Profiles = services.NewProfileService(conn, deps.Users)

	var catalog services.Catalog
	if cfg.SpotifyEnabled() {
		sc := spotify.Config{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			TokenURL:     cfg.SpotifyTokenURL,
			APIURL:       cfg.SpotifyAPIURL,
		}
		inner, err := spotify.NewCatalog(sc)
		if err != nil {
			return err
		}
		breaker := spotify.NewBreakerCatalog(inner, spotify.DefaultBreakerSettings)
		catalog = breaker
		deps.Catalog = breaker

		signIn, err := spotify.NewSignIn(sc, cfg.SiteURL+"/auth/spotify/callback")
		if err != nil {
			return err
		}
		deps.SpotifySignIn = signIn
	} else {
		log.Warn().Msg("Spotify credentials not set: catalog search and Spotify sign-in are disabled")
	}
	deps.Search = services.NewSearchService(conn, catalog, cache)

	gin.SetMode(cfg.GinMode)
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	router.RegisterRoutes(engine, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(cmd.Context(), srv)
}

func newEngine(cfg *config.Config) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger())
	r.Use(metrics.Middleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	store, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}
	r.Use(sessions.Sessions(sessionName, store))

	r.HTMLRender = loadTemplates(cfg.TemplatesDir)
	r.Static("/static", "./web/static")
	r.NoRoute(func(c *gin.Context) {
		handlers.RenderError(c, http.StatusNotFound, "Page not found")
	})
	return r, nil
}

// serve runs srv until SIGINT/SIGTERM, then drains in-flight requests.
func serve(parent context.Context, srv *http.Server) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("trackrate server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
