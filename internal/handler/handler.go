package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"socialnet/backend/internal/relationship"
	"socialnet/backend/internal/visibility"
	"socialnet/backend/pkg/apperr"
)

// Core services the handlers delegate to. Wired once from main, like
// hub.GlobalHub.
var (
	Relations  relationship.Engine
	Visibility *visibility.Resolver
	Feed       *visibility.Feed
)

// Init wires the core services into the handler package.
func Init(engine relationship.Engine, resolver *visibility.Resolver, feed *visibility.Feed) {
	Relations = engine
	Visibility = resolver
	Feed = feed
}

// currentUserID returns the authenticated user's id, or 0 for anonymous
// requests behind OptionalAuthMiddleware. No user has id 0, so an anonymous
// viewer never passes owner or friendship checks.
func currentUserID(c *gin.Context) uint {
	if v, ok := c.Get("userID"); ok {
		return v.(uint)
	}
	return 0
}

// respondError translates a service error into an HTTP response. Classified
// errors carry a caller-safe message; anything else is an internal error.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrInvalidOperation), errors.Is(err, apperr.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// forbidContent rejects access to content the viewer may not see. Hidden
// and nonexistent content are reported differently on purpose: 404 is
// reserved for rows that do not exist, 403 for rows that exist but are
// hidden, consistently across all content types.
func forbidContent(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to view this content"})
}
