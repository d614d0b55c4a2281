package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"trackrate/internal/middleware"
	"trackrate/internal/services"
)

// VoteHandler serves like/dislike on reviews.
type VoteHandler struct {
	reactions *services.ReactionService
}

func NewVoteHandler(reactions *services.ReactionService) *VoteHandler {
	return &VoteHandler{reactions: reactions}
}

type reactionOp func(ctx context.Context, userID, reviewID string, kind services.Reaction) (*services.ReactionCounts, error)

// Add returns the handler for POST /api/reviews/:id/{like,dislike}.
func (h *VoteHandler) Add(kind services.Reaction) gin.HandlerFunc {
	return h.handle(kind, h.reactions.Add)
}

// Remove returns the handler for DELETE /api/reviews/:id/{like,dislike}.
func (h *VoteHandler) Remove(kind services.Reaction) gin.HandlerFunc {
	return h.handle(kind, h.reactions.Remove)
}

func (h *VoteHandler) handle(kind services.Reaction, op reactionOp) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		counts, err := op(c.Request.Context(), userID, c.Param("id"), kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "likes": counts.Likes, "dislikes": counts.Dislikes})
	}
}

// State handles GET /api/reviews/:id/reaction
func (h *VoteHandler) State(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	state, err := h.reactions.State(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}
