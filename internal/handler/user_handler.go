package handler

import (
	"net/http"
	"path/filepath"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"
	"socialnet/backend/pkg/jwt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Nickname string `json:"nickname" binding:"required" example:"testuser"`
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"password123"`
	FullName string `json:"full_name" example:"Test User"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Login    string `json:"login" binding:"required" example:"testuser"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// RelationInfo describes the relationship between the viewer and a user.
type RelationInfo struct {
	ID     uint                    `json:"id"`
	Status models.FriendshipStatus `json:"status"`
	// Direction is "outgoing" when the viewer initiated the relationship,
	// "incoming" otherwise.
	Direction string `json:"direction"`
}

// PublicUserResponse defines the structure for a user's public profile.
type PublicUserResponse struct {
	ID             uint          `json:"id" example:"1"`
	Nickname       string        `json:"nickname" example:"testuser"`
	FullName       string        `json:"full_name"`
	AvatarURL      string        `json:"avatar_url"`
	Bio            string        `json:"bio"`
	FriendsCount   int64         `json:"friends_count"`
	FollowersCount int64         `json:"followers_count"`
	FollowingCount int64         `json:"following_count"`
	Relation       *RelationInfo `json:"relation,omitempty"`
}

// PrivateUserResponse defines the structure for the authenticated user's own profile.
type PrivateUserResponse struct {
	ID             uint   `json:"id" example:"1"`
	Nickname       string `json:"nickname" example:"testuser"`
	Email          string `json:"email" example:"test@example.com"`
	FullName       string `json:"full_name"`
	AvatarURL      string `json:"avatar_url"`
	Bio            string `json:"bio"`
	FriendsCount   int64  `json:"friends_count"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// PaginatedUserResponse defines the structure for a paginated list of users.
type PaginatedUserResponse struct {
	Data []PublicUserResponse `json:"data"`
	Meta PaginationMeta       `json:"meta"`
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingUser models.User
	if err := database.DB.Where("nickname = ? OR email = ?", input.Nickname, input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Nickname or email already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Nickname:     input.Nickname,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FullName:     input.FullName,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with nickname/email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("nickname = ? OR email = ?", input.Login, input.Login).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// endregion

// region --- User Handlers ---

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches for users by nickname with pagination.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query for nickname"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedUserResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /users [get]
func SearchUsers(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	searchQuery := c.Query("q")
	page, limit := pageParams(c)
	offset := (page - 1) * limit

	var users []models.User
	var totalItems int64

	query := database.DB.Model(&models.User{})
	if searchQuery != "" {
		query = query.Where("nickname ILIKE ?", "%"+searchQuery+"%")
	}

	// Get total count before pagination
	if err := query.Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}

	if err := query.Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	// Don't show the viewer in the search results
	finalResponses := []PublicUserResponse{}
	for _, user := range users {
		if user.ID == viewerID.(uint) {
			continue
		}
		finalResponses = append(finalResponses, buildPublicUserResponse(user, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, PaginatedUserResponse{
		Data: finalResponses,
		Meta: PaginationMeta{
			TotalItems:  totalItems,
			TotalPages:  (int(totalItems) + limit - 1) / limit,
			CurrentPage: page,
			PageSize:    limit,
		},
	})
}

// GetUserByID godoc
// @Summary      Get user by ID
// @Description  Retrieves the public profile for a specific user, including the viewer's relationship to them.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  PublicUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func GetUserByID(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if viewerID.(uint) == uint(targetUserID) {
		GetMe(c)
		return
	}

	var targetUser models.User
	if err := database.DB.First(&targetUser, uint(targetUserID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, buildPublicUserResponse(targetUser, viewerID.(uint)))
}

// GetMe godoc
// @Summary      Get current user's info
// @Description  Retrieves the private profile for the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, buildPrivateUserResponse(user))
}

// UploadAvatar godoc
// @Summary      Upload an avatar
// @Description  Stores a new avatar image for the current user and updates their profile.
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "Avatar image"
// @Success      200  {object}  map[string]string "{"avatar_url": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/me/avatar [post]
func UploadAvatar(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A 'file' form field is required"})
		return
	}

	filename := uuid.NewString() + filepath.Ext(file.Filename)
	dst := filepath.Join("uploads", "avatars", filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store avatar"})
		return
	}

	avatarURL := "/uploads/avatars/" + filename
	if err := database.DB.Model(&models.User{}).Where("id = ?", viewerID).Update("avatar_url", avatarURL).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": avatarURL})
}

// endregion

// region --- Helpers ---

func relationCounts(userID uint) (friends, followers, following int64) {
	database.DB.Model(&models.Friendship{}).
		Where("status = ? AND (requester_id = ? OR addressee_id = ?)", models.StatusAccepted, userID, userID).
		Count(&friends)
	database.DB.Model(&models.Friendship{}).
		Where("status = ? AND addressee_id = ?", models.StatusAccepted, userID).
		Count(&followers)
	database.DB.Model(&models.Friendship{}).
		Where("status = ? AND requester_id = ?", models.StatusAccepted, userID).
		Count(&following)
	return friends, followers, following
}

func buildPublicUserResponse(targetUser models.User, viewerID uint) PublicUserResponse {
	friends, followers, following := relationCounts(targetUser.ID)

	var relation *RelationInfo
	lo, hi := models.PairKey(viewerID, targetUser.ID)
	var f models.Friendship
	if err := database.DB.Where("pair_lo = ? AND pair_hi = ?", lo, hi).First(&f).Error; err == nil {
		direction := "incoming"
		if f.RequesterID == viewerID {
			direction = "outgoing"
		}
		relation = &RelationInfo{ID: f.ID, Status: f.Status, Direction: direction}
	}

	return PublicUserResponse{
		ID:             targetUser.ID,
		Nickname:       targetUser.Nickname,
		FullName:       targetUser.FullName,
		AvatarURL:      targetUser.AvatarURL,
		Bio:            targetUser.Bio,
		FriendsCount:   friends,
		FollowersCount: followers,
		FollowingCount: following,
		Relation:       relation,
	}
}

func buildPrivateUserResponse(user models.User) PrivateUserResponse {
	friends, followers, following := relationCounts(user.ID)

	return PrivateUserResponse{
		ID:             user.ID,
		Nickname:       user.Nickname,
		Email:          user.Email,
		FullName:       user.FullName,
		AvatarURL:      user.AvatarURL,
		Bio:            user.Bio,
		FriendsCount:   friends,
		FollowersCount: followers,
		FollowingCount: following,
	}
}

// endregion
