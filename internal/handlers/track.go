package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trackrate/internal/models"
	"trackrate/internal/services"
)

type TrackHandler struct {
	search  *services.SearchService
	tracks  *services.TrackService
	reviews *services.ReviewService
}

func NewTrackHandler(search *services.SearchService, tracks *services.TrackService, reviews *services.ReviewService) *TrackHandler {
	return &TrackHandler{search: search, tracks: tracks, reviews: reviews}
}

// trackItem is the public shape of a track in search and trending results.
type trackItem struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []string `json:"artists"`
	Album   string   `json:"album"`
	Image   *string  `json:"image,omitempty"`
}

func toItems(tracks []models.Track) []trackItem {
	items := make([]trackItem, len(tracks))
	for i, t := range tracks {
		artists := []string(t.Artists)
		if artists == nil {
			artists = []string{}
		}
		items[i] = trackItem{ID: t.ID, Name: t.Name, Artists: artists, Album: t.Album, Image: t.AlbumImage}
	}
	return items
}

// Search handles GET /api/search?q=
func (h *TrackHandler) Search(c *gin.Context) {
	tracks, err := h.search.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toItems(tracks)})
}

// Trending handles GET /api/trending
func (h *TrackHandler) Trending(c *gin.Context) {
	tracks, err := h.tracks.Trending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toItems(tracks)})
}

// Get handles GET /api/tracks/:id
func (h *TrackHandler) Get(c *gin.Context) {
	track, err := h.tracks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"track": track})
}

// Featured handles GET /api/featured-reviews
func (h *TrackHandler) Featured(c *gin.Context) {
	reviews, err := h.reviews.Featured(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": reviews})
}
