package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"trackrate/internal/config"
	"trackrate/internal/handlers"
	"trackrate/internal/metrics"
	"trackrate/internal/middleware"
	"trackrate/internal/services"
)

// Deps is everything the routes need. SpotifySignIn and Catalog may be nil.
type Deps struct {
	Config        *config.Config
	DB            *gorm.DB
	Users         *services.UserService
	Search        *services.SearchService
	Tracks        *services.TrackService
	Reviews       *services.ReviewService
	Comments      *services.CommentService
	Reactions     *services.ReactionService
	Profiles      *services.ProfileService
	SpotifySignIn handlers.SpotifySignIn
	Catalog       handlers.BreakerState
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	authHandler := handlers.NewAuthHandler(d.Users, d.Config, d.SpotifySignIn)
	trackHandler := handlers.NewTrackHandler(d.Search, d.Tracks, d.Reviews)
	reviewHandler := handlers.NewReviewHandler(d.Reviews)
	commentHandler := handlers.NewCommentHandler(d.Comments)
	voteHandler := handlers.NewVoteHandler(d.Reactions)
	userHandler := handlers.NewUserHandler(d.Profiles)
	pageHandler := handlers.NewPageHandler(d.Search, d.Tracks, d.Reviews)
	seoHandler := handlers.NewSEOHandler(d.Config.SiteURL, d.Tracks)
	healthHandler := handlers.NewHealthHandler(d.DB, d.Catalog)

	r.Use(middleware.LoadUser(d.Users))

	// Pages
	r.GET("/", pageHandler.Home)
	r.GET("/search", pageHandler.Search)
	r.GET("/track/:id", pageHandler.Track)
	r.GET("/profile", middleware.AuthRequired(), userHandler.Profile)
	r.GET("/sign-in", authHandler.SignInPage)

	// Sign-in
	r.GET("/auth/google", authHandler.GoogleLogin)
	r.GET("/auth/google/callback", authHandler.GoogleCallback)
	r.GET("/auth/spotify", authHandler.SpotifyLogin)
	r.GET("/auth/spotify/callback", authHandler.SpotifyCallback)
	r.POST("/auth/logout", authHandler.Logout)

	// Operational
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/metrics", metrics.Handler())
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)

	// Public API
	api := r.Group("/api")
	{
		api.GET("/search", trackHandler.Search)
		api.GET("/trending", trackHandler.Trending)
		api.GET("/tracks/:id", trackHandler.Get)
		api.GET("/featured-reviews", trackHandler.Featured)
		api.GET("/reviews", reviewHandler.List)
		api.GET("/reviews/:id", reviewHandler.Get)
		api.GET("/reviews/:id/comments", commentHandler.List)
	}

	// Authenticated API
	authed := r.Group("/api")
	authed.Use(middleware.APIAuthRequired())
	{
		authed.GET("/profile", userHandler.ProfileAPI)

		authed.POST("/reviews", reviewHandler.Create)
		authed.PATCH("/reviews/:id", reviewHandler.Update)
		authed.DELETE("/reviews/:id", reviewHandler.Delete)

		authed.POST("/reviews/:id/comments", commentHandler.Create)
		authed.PATCH("/reviews/:id/comments/:commentId", commentHandler.Update)
		authed.DELETE("/reviews/:id/comments/:commentId", commentHandler.Delete)

		authed.GET("/reviews/:id/reaction", voteHandler.State)
		authed.POST("/reviews/:id/like", voteHandler.Add(services.ReactionLike))
		authed.DELETE("/reviews/:id/like", voteHandler.Remove(services.ReactionLike))
		authed.POST("/reviews/:id/dislike", voteHandler.Add(services.ReactionDislike))
		authed.DELETE("/reviews/:id/dislike", voteHandler.Remove(services.ReactionDislike))
	}
}
