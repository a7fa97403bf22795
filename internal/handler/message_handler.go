package handler

import (
	"net/http"
	"path/filepath"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/hub"
	"socialnet/backend/internal/models"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// region --- DTOs ---

// SendMessageInput defines the structure for sending a direct message.
type SendMessageInput struct {
	Content string `json:"content"`
	// Optional media already uploaded via /messages/media.
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"`
}

// MessageResponse defines the structure for a single direct message.
type MessageResponse struct {
	ID         uint        `json:"id"`
	SenderID   uint        `json:"sender_id"`
	ReceiverID uint        `json:"receiver_id"`
	Content    string      `json:"content"`
	IsRead     bool        `json:"is_read"`
	Media      []MediaItem `json:"media"`
	CreatedAt  string      `json:"created_at"`
}

// ConversationResponse summarises one conversation partner.
type ConversationResponse struct {
	Partner     PublicUserResponse `json:"partner"`
	LastMessage MessageResponse    `json:"last_message"`
	UnreadCount int64              `json:"unread_count"`
}

// endregion

// region --- Message Handlers ---

// SendMessage godoc
// @Summary      Send a direct message
// @Description  Sends a message to the target user. Fails when either side has blocked the other.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int              true  "Receiver User ID"
// @Param        input body      SendMessageInput true  "Message"
// @Success      201  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id}/messages [post]
func SendMessage(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	receiverID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid receiver ID"})
		return
	}
	if viewerID.(uint) == uint(receiverID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot message yourself"})
		return
	}

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Content == "" && input.MediaURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A message needs content or media"})
		return
	}

	var receiver models.User
	if err := database.DB.First(&receiver, uint(receiverID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	blocked, err := Relations.IsBlocked(c.Request.Context(), viewerID.(uint), uint(receiverID))
	if err != nil {
		respondError(c, err)
		return
	}
	if blocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot message this user"})
		return
	}

	message := models.Message{
		SenderID:   viewerID.(uint),
		ReceiverID: uint(receiverID),
		Content:    input.Content,
	}
	if input.MediaURL != "" {
		message.Media = append(message.Media, models.MessageMedia{
			MediaURL:  input.MediaURL,
			MediaType: input.MediaType,
		})
	}

	if err := database.DB.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	response := buildMessageResponse(message)
	hub.GlobalHub.NotifyUser(uint(receiverID), hub.Event{
		Type:    hub.EventDirectMessage,
		Payload: response,
	})

	c.JSON(http.StatusCreated, response)
}

// GetConversations godoc
// @Summary      List conversations
// @Description  Lists the current user's conversations with the latest message and unread count for each partner.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ConversationResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /messages/conversations [get]
func GetConversations(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var messages []models.Message
	err := database.DB.
		Preload("Media").
		Where("(sender_id = ? OR receiver_id = ?) AND is_deleted = ?", viewerID, viewerID, false).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve messages"})
		return
	}

	// Messages arrive newest first, so the first one per partner is the
	// latest in that conversation.
	lastByPartner := map[uint]models.Message{}
	partnerOrder := []uint{}
	for _, m := range messages {
		partnerID := m.SenderID
		if partnerID == viewerID.(uint) {
			partnerID = m.ReceiverID
		}
		if _, seen := lastByPartner[partnerID]; !seen {
			lastByPartner[partnerID] = m
			partnerOrder = append(partnerOrder, partnerID)
		}
	}

	responses := []ConversationResponse{}
	for _, partnerID := range partnerOrder {
		var partner models.User
		if err := database.DB.First(&partner, partnerID).Error; err != nil {
			continue
		}

		var unread int64
		database.DB.Model(&models.Message{}).
			Where("sender_id = ? AND receiver_id = ? AND is_read = ? AND is_deleted = ?", partnerID, viewerID, false, false).
			Count(&unread)

		responses = append(responses, ConversationResponse{
			Partner:     buildPublicUserResponse(partner, viewerID.(uint)),
			LastMessage: buildMessageResponse(lastByPartner[partnerID]),
			UnreadCount: unread,
		})
	}

	c.JSON(http.StatusOK, responses)
}

// GetConversation godoc
// @Summary      Get a conversation
// @Description  Returns the message history with the target user, oldest first, and marks their messages as read.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Partner User ID"
// @Success      200  {array}   MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /messages/{id} [get]
func GetConversation(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	partnerID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partner ID"})
		return
	}

	var partner models.User
	if err := database.DB.First(&partner, uint(partnerID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Reading a conversation marks the partner's messages as read.
	database.DB.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", uint(partnerID), viewerID, false).
		Update("is_read", true)

	var messages []models.Message
	err = database.DB.
		Preload("Media").
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND is_deleted = ?",
			viewerID, uint(partnerID), uint(partnerID), viewerID, false).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve messages"})
		return
	}

	responses := []MessageResponse{}
	for _, m := range messages {
		responses = append(responses, buildMessageResponse(m))
	}

	c.JSON(http.StatusOK, responses)
}

// UploadMessageMedia godoc
// @Summary      Upload message media
// @Description  Stores a media file for use in a direct message and returns its URL.
// @Tags         messages
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "Media file"
// @Success      201  {object}  map[string]string "{"media_url": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /messages/media [post]
func UploadMessageMedia(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A 'file' form field is required"})
		return
	}

	filename := uuid.NewString() + filepath.Ext(file.Filename)
	dst := filepath.Join("uploads", "messages", filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store media"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"media_url": "/uploads/messages/" + filename})
}

// endregion

func buildMessageResponse(m models.Message) MessageResponse {
	media := []MediaItem{}
	for _, item := range m.Media {
		media = append(media, MediaItem{MediaURL: item.MediaURL, MediaType: item.MediaType})
	}

	return MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		IsRead:     m.IsRead,
		Media:      media,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
}
