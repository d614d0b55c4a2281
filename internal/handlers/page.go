package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"trackrate/internal/models"
	"trackrate/internal/services"
)

// PageHandler renders the server-side pages. Mutations happen through the
// JSON API; pages re-fetch after a change.
type PageHandler struct {
	search  *services.SearchService
	tracks  *services.TrackService
	reviews *services.ReviewService
}

func NewPageHandler(search *services.SearchService, tracks *services.TrackService, reviews *services.ReviewService) *PageHandler {
	return &PageHandler{search: search, tracks: tracks, reviews: reviews}
}

// Home handles GET /
func (h *PageHandler) Home(c *gin.Context) {
	var (
		trending []models.Track
		featured []models.Review
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		trending, err = h.tracks.Trending(ctx)
		return err
	})
	g.Go(func() (err error) {
		featured, err = h.reviews.Featured(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		_ = c.Error(err)
		RenderError(c, http.StatusInternalServerError, "Could not load the home page")
		return
	}
	Render(c, http.StatusOK, "home.html", gin.H{
		"Title":    "Discover",
		"Trending": trending,
		"Featured": featured,
	})
}

// Search handles GET /search?q=
func (h *PageHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	data := gin.H{"Title": "Search", "Query": q}
	if q == "" {
		Render(c, http.StatusOK, "search.html", data)
		return
	}
	tracks, err := h.search.Search(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrUpstream) {
			status = http.StatusBadGateway
		}
		data["Error"] = "Search is unavailable right now. Try again in a moment."
		Render(c, status, "search.html", data)
		return
	}
	data["Results"] = tracks
	Render(c, http.StatusOK, "search.html", data)
}

// Track handles GET /track/:id
func (h *PageHandler) Track(c *gin.Context) {
	ctx := c.Request.Context()
	track, err := h.tracks.Get(ctx, c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		RenderError(c, http.StatusNotFound, "Track not found")
		return
	}
	if err != nil {
		_ = c.Error(err)
		RenderError(c, http.StatusInternalServerError, "Could not load the track")
		return
	}
	page, err := h.reviews.ListByTrack(ctx, track.ID, c.Query("cursor"), services.ClampLimit(c.Query("limit")))
	if errors.Is(err, services.ErrInvalidCursor) {
		c.Redirect(http.StatusFound, "/track/"+track.ID)
		return
	}
	if err != nil {
		_ = c.Error(err)
		RenderError(c, http.StatusInternalServerError, "Could not load reviews")
		return
	}
	Render(c, http.StatusOK, "track.html", gin.H{
		"Title":   track.Name,
		"Track":   track,
		"Reviews": page,
	})
}
