package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trackrate/internal/middleware"
	"trackrate/internal/services"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// List handles GET /api/reviews?trackId=&limit=&cursor=
func (h *ReviewHandler) List(c *gin.Context) {
	page, err := h.reviews.ListByTrack(c.Request.Context(),
		c.Query("trackId"), c.Query("cursor"), services.ClampLimit(c.Query("limit")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/reviews/:id
func (h *ReviewHandler) Get(c *gin.Context) {
	review, err := h.reviews.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

// Create handles POST /api/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var in services.CreateReviewInput
	if !bindJSON(c, &in) {
		return
	}
	review, err := h.reviews.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

// Update handles PATCH /api/reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var in services.UpdateReviewInput
	if !bindJSON(c, &in) {
		return
	}
	review, err := h.reviews.Update(c.Request.Context(), userID, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

// Delete handles DELETE /api/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.reviews.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
