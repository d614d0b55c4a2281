package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"trackrate/internal/logging"
	"trackrate/internal/models"
	"trackrate/internal/services"
)

const (
	CheckUserKey   = "user"
	SessionUserKey = "user_id"
)

// UserLoader resolves a session's user id to a user.
type UserLoader interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// LoadUser retrieves the signed-in user from the session and sets it on the
// context. A session pointing at a deleted user is cleared.
func LoadUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, _ := session.Get(SessionUserKey).(string)
		if id != "" {
			user, err := users.Get(c.Request.Context(), id)
			if err == nil {
				c.Set(CheckUserKey, user)
				c.Set(logging.UserIDKey, user.ID)
			} else {
				session.Delete(SessionUserKey)
				_ = session.Save()
			}
		}
		c.Next()
	}
}

// CurrentUser returns the user LoadUser attached, if any.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CheckUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// CurrentUserID returns the caller's id or services.ErrUnauthorized.
func CurrentUserID(c *gin.Context) (string, error) {
	if user := CurrentUser(c); user != nil && user.ID != "" {
		return user.ID, nil
	}
	return "", services.ErrUnauthorized
}

// AuthRequired sends anonymous page requests to the sign-in page.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, "/sign-in?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// APIAuthRequired rejects anonymous API requests with 401 before the handler
// runs, so no partial write can happen.
func APIAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
