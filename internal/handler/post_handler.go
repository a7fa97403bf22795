package handler

import (
	"errors"
	"net/http"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

// MediaItemInput describes one media attachment on a new post.
type MediaItemInput struct {
	MediaURL  string `json:"media_url" binding:"required"`
	MediaType string `json:"media_type" binding:"required" example:"image"`
}

// CreatePostInput defines the structure for creating a post.
type CreatePostInput struct {
	Caption     string             `json:"caption"`
	PrivacyMode models.PrivacyMode `json:"privacy_mode" example:"public"`
	Media       []MediaItemInput   `json:"media"`
}

// UpdatePrivacyInput defines the structure for changing a post's privacy mode.
type UpdatePrivacyInput struct {
	PrivacyMode models.PrivacyMode `json:"privacy_mode" binding:"required" example:"friends"`
}

// ReactionInput defines the structure for reacting to a post.
type ReactionInput struct {
	ReactionType string `json:"reaction_type" binding:"required" example:"like"`
}

// CreateCommentInput defines the structure for commenting on a post.
type CreateCommentInput struct {
	Content         string `json:"content" binding:"required"`
	ParentCommentID *uint  `json:"parent_comment_id"`
}

// PostResponse defines the structure for a single post.
type PostResponse struct {
	ID             uint               `json:"id"`
	User           PublicUserResponse `json:"user"`
	Caption        string             `json:"caption"`
	PrivacyMode    models.PrivacyMode `json:"privacy_mode"`
	Media          []MediaItem        `json:"media"`
	ReactionsCount int64              `json:"reactions_count"`
	CommentsCount  int64              `json:"comments_count"`
	CreatedAt      string             `json:"created_at"`
}

// MediaItem describes one media attachment on a post.
type MediaItem struct {
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"`
}

// CommentResponse defines the structure for a single comment.
type CommentResponse struct {
	ID              uint               `json:"id"`
	User            PublicUserResponse `json:"user"`
	Content         string             `json:"content"`
	ParentCommentID *uint              `json:"parent_comment_id,omitempty"`
	CreatedAt       string             `json:"created_at"`
}

// endregion

// region --- Post Handlers ---

// CreatePost godoc
// @Summary      Create a post
// @Description  Creates a new post for the current user, optionally with media attachments.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreatePostInput true "Post content"
// @Success      201  {object}  PostResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /posts [post]
func CreatePost(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.PrivacyMode == "" {
		input.PrivacyMode = models.PrivacyPublic
	}
	if !input.PrivacyMode.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid privacy mode"})
		return
	}

	post := models.Post{
		UserID:      viewerID.(uint),
		Caption:     input.Caption,
		PrivacyMode: input.PrivacyMode,
	}
	for i, m := range input.Media {
		post.Media = append(post.Media, models.PostMedia{
			MediaURL:   m.MediaURL,
			MediaType:  m.MediaType,
			OrderIndex: i,
		})
	}

	if err := database.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	if err := database.DB.Preload("User").Preload("Media").First(&post, post.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}

	c.JSON(http.StatusCreated, buildPostResponse(post, viewerID.(uint)))
}

// GetFeed godoc
// @Summary      Get the feed
// @Description  Returns the posts the current user is allowed to see, newest first.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(10)
// @Success      200  {array}   PostResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /posts/feed [get]
func GetFeed(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	page, limit := pageParams(c)

	posts, err := Feed.For(c.Request.Context(), viewerID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	start := (page - 1) * limit
	if start > len(posts) {
		start = len(posts)
	}
	end := start + limit
	if end > len(posts) {
		end = len(posts)
	}

	responses := []PostResponse{}
	for _, post := range posts[start:end] {
		responses = append(responses, buildPostResponse(post, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, responses)
}

// GetPostByID godoc
// @Summary      Get a post
// @Description  Returns a single post if the current user is allowed to see it.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  PostResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [get]
func GetPostByID(c *gin.Context) {
	viewerID := currentUserID(c)

	post, ok := loadVisiblePost(c, viewerID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, buildPostResponse(post, viewerID))
}

// GetUserPosts godoc
// @Summary      Get a user's posts
// @Description  Returns the target user's posts that the current user is allowed to see, newest first.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {array}   PostResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id}/posts [get]
func GetUserPosts(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var target models.User
	if err := database.DB.First(&target, uint(targetID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var posts []models.Post
	err = database.DB.
		Preload("User").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		Where("user_id = ? AND is_deleted = ?", uint(targetID), false).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve posts"})
		return
	}

	responses := []PostResponse{}
	for _, post := range posts {
		visible, err := Visibility.CanView(c.Request.Context(), post.UserID, viewerID.(uint), post.PrivacyMode)
		if err != nil {
			respondError(c, err)
			return
		}
		if visible {
			responses = append(responses, buildPostResponse(post, viewerID.(uint)))
		}
	}

	c.JSON(http.StatusOK, responses)
}

// UpdatePostPrivacy godoc
// @Summary      Change a post's privacy mode
// @Description  Changes the privacy mode of one of the current user's posts.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Post ID"
// @Param        input body      UpdatePrivacyInput true  "New privacy mode"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/privacy [put]
func UpdatePostPrivacy(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input UpdatePrivacyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !input.PrivacyMode.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid privacy mode"})
		return
	}

	post, ok := loadOwnPost(c, viewerID.(uint))
	if !ok {
		return
	}

	if err := database.DB.Model(&post).Update("privacy_mode", input.PrivacyMode).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Privacy mode updated"})
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Soft deletes one of the current user's posts.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [delete]
func DeletePost(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	post, ok := loadOwnPost(c, viewerID.(uint))
	if !ok {
		return
	}

	if err := database.DB.Model(&post).Update("is_deleted", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// endregion

// region --- Reaction Handlers ---

// ReactToPost godoc
// @Summary      React to a post
// @Description  Adds or replaces the current user's reaction on a post they can see.
// @Tags         reactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int           true  "Post ID"
// @Param        input body      ReactionInput true  "Reaction"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/reactions [post]
func ReactToPost(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input ReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, ok := loadVisiblePost(c, viewerID.(uint))
	if !ok {
		return
	}

	// One reaction per user per post, repeat reactions replace the type
	var existing models.PostReaction
	err := database.DB.Where("post_id = ? AND user_id = ?", post.ID, viewerID).First(&existing).Error
	switch {
	case err == nil:
		if err := database.DB.Model(&existing).Update("reaction_type", input.ReactionType).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reaction"})
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		reaction := models.PostReaction{
			PostID:       post.ID,
			UserID:       viewerID.(uint),
			ReactionType: input.ReactionType,
		}
		if err := database.DB.Create(&reaction).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reaction"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up reaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reaction saved"})
}

// RemoveReaction godoc
// @Summary      Remove a reaction
// @Description  Removes the current user's reaction from a post.
// @Tags         reactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/reactions [delete]
func RemoveReaction(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	result := database.DB.Where("post_id = ? AND user_id = ?", uint(postID), viewerID).Delete(&models.PostReaction{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove reaction"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reaction not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reaction removed"})
}

// endregion

// region --- Comment Handlers ---

// CreateComment godoc
// @Summary      Comment on a post
// @Description  Adds a comment, optionally as a reply, to a post the current user can see.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Post ID"
// @Param        input body      CreateCommentInput true  "Comment"
// @Success      201  {object}  CommentResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/comments [post]
func CreateComment(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input CreateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, ok := loadVisiblePost(c, viewerID.(uint))
	if !ok {
		return
	}

	if input.ParentCommentID != nil {
		var parent models.Comment
		if err := database.DB.First(&parent, *input.ParentCommentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent comment not found"})
			return
		}
		if parent.PostID != post.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent comment belongs to another post"})
			return
		}
	}

	comment := models.Comment{
		PostID:          post.ID,
		UserID:          viewerID.(uint),
		Content:         input.Content,
		ParentCommentID: input.ParentCommentID,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	if err := database.DB.Preload("User").First(&comment, comment.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comment"})
		return
	}

	c.JSON(http.StatusCreated, buildCommentResponse(comment, viewerID.(uint)))
}

// GetPostComments godoc
// @Summary      List a post's comments
// @Description  Lists the comments on a post the current user can see, oldest first.
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Post ID"
// @Success      200  {array}   CommentResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/comments [get]
func GetPostComments(c *gin.Context) {
	viewerID := currentUserID(c)

	post, ok := loadVisiblePost(c, viewerID)
	if !ok {
		return
	}

	var comments []models.Comment
	err := database.DB.
		Preload("User").
		Where("post_id = ? AND is_deleted = ?", post.ID, false).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	responses := []CommentResponse{}
	for _, comment := range comments {
		responses = append(responses, buildCommentResponse(comment, viewerID))
	}

	c.JSON(http.StatusOK, responses)
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Description  Soft deletes a comment written by the current user.
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Comment ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /comments/{id} [delete]
func DeleteComment(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	var comment models.Comment
	if err := database.DB.First(&comment, uint(commentID)).Error; err != nil || comment.IsDeleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if comment.UserID != viewerID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own comments"})
		return
	}

	if err := database.DB.Model(&comment).Update("is_deleted", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// endregion

// region --- Helpers ---

// loadOwnPost fetches the post in the :id param and checks the current
// user owns it. It writes the error response itself when ok is false.
func loadOwnPost(c *gin.Context, viewerID uint) (models.Post, bool) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return models.Post{}, false
	}

	var post models.Post
	if err := database.DB.First(&post, uint(postID)).Error; err != nil || post.IsDeleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return models.Post{}, false
	}
	if post.UserID != viewerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only modify your own posts"})
		return models.Post{}, false
	}

	return post, true
}

// loadVisiblePost fetches the post in the :id param and checks the
// current user may see it. It writes the error response itself when ok
// is false.
func loadVisiblePost(c *gin.Context, viewerID uint) (models.Post, bool) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return models.Post{}, false
	}

	var post models.Post
	err = database.DB.
		Preload("User").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		First(&post, uint(postID)).Error
	if err != nil || post.IsDeleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return models.Post{}, false
	}

	visible, err := Visibility.CanView(c.Request.Context(), post.UserID, viewerID, post.PrivacyMode)
	if err != nil {
		respondError(c, err)
		return models.Post{}, false
	}
	if !visible {
		forbidContent(c)
		return models.Post{}, false
	}

	return post, true
}

func buildPostResponse(post models.Post, viewerID uint) PostResponse {
	var reactions, comments int64
	database.DB.Model(&models.PostReaction{}).Where("post_id = ?", post.ID).Count(&reactions)
	database.DB.Model(&models.Comment{}).Where("post_id = ? AND is_deleted = ?", post.ID, false).Count(&comments)

	media := []MediaItem{}
	for _, m := range post.Media {
		media = append(media, MediaItem{MediaURL: m.MediaURL, MediaType: m.MediaType})
	}

	return PostResponse{
		ID:             post.ID,
		User:           buildPublicUserResponse(post.User, viewerID),
		Caption:        post.Caption,
		PrivacyMode:    post.PrivacyMode,
		Media:          media,
		ReactionsCount: reactions,
		CommentsCount:  comments,
		CreatedAt:      post.CreatedAt.Format(time.RFC3339),
	}
}

func buildCommentResponse(comment models.Comment, viewerID uint) CommentResponse {
	return CommentResponse{
		ID:              comment.ID,
		User:            buildPublicUserResponse(comment.User, viewerID),
		Content:         comment.Content,
		ParentCommentID: comment.ParentCommentID,
		CreatedAt:       comment.CreatedAt.Format(time.RFC3339),
	}
}

// endregion
