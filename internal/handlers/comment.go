package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trackrate/internal/middleware"
	"trackrate/internal/services"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type commentBody struct {
	Body *string `json:"body"`
}

type commentPatch struct {
	Body services.Optional[string] `json:"body"`
}

// List handles GET /api/reviews/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	page, err := h.comments.ListByReview(c.Request.Context(),
		c.Param("id"), c.Query("cursor"), services.ClampLimit(c.Query("limit")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Create handles POST /api/reviews/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var in commentBody
	if !bindJSON(c, &in) {
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), userID, c.Param("id"), in.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// Update handles PATCH /api/reviews/:id/comments/:commentId
func (h *CommentHandler) Update(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var in commentPatch
	if !bindJSON(c, &in) {
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), userID, c.Param("id"), c.Param("commentId"), in.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// Delete handles DELETE /api/reviews/:id/comments/:commentId
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.comments.Delete(c.Request.Context(), userID, c.Param("id"), c.Param("commentId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
