package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trackrate/internal/middleware"
	"trackrate/internal/services"
)

type UserHandler struct {
	profiles *services.ProfileService
}

func NewUserHandler(profiles *services.ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// ProfileAPI handles GET /api/profile
func (h *UserHandler) ProfileAPI(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	profile, err := h.profiles.Load(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Profile handles GET /profile
func (h *UserHandler) Profile(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/sign-in?next=/profile")
		return
	}
	profile, err := h.profiles.Load(c.Request.Context(), userID)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load your profile")
		_ = c.Error(err)
		return
	}
	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"Title":   profile.User.DisplayName(),
		"Profile": profile,
	})
}
