package handler

import (
	"io"
	"socialnet/backend/internal/hub"

	"github.com/gin-gonic/gin"
)

// StreamEvents godoc
// @Summary      Subscribe to real-time events
// @Description  Opens a server-sent events stream delivering friend request, acceptance and message notifications.
// @Tags         events
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200  {string}  string  "SSE stream"
// @Failure      401  {object}  ErrorResponse
// @Router       /events [get]
func StreamEvents(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	client := make(hub.Client, 16)
	hub.GlobalHub.Subscribe(viewerID.(uint), client)
	defer hub.GlobalHub.Unsubscribe(viewerID.(uint), client)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(message))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
