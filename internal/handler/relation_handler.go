package handler

import (
	"net/http"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/hub"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/relationship"
	"strconv"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// RelationshipResponse describes a single relationship record.
type RelationshipResponse struct {
	ID          uint                    `json:"id"`
	RequesterID uint                    `json:"requester_id"`
	AddresseeID uint                    `json:"addressee_id"`
	Status      models.FriendshipStatus `json:"status"`
	Counterpart PublicUserResponse      `json:"counterpart"`
}

// endregion

// region --- Relationship Actions ---

// SendFriendRequest godoc
// @Summary      Send a friend request
// @Description  Creates a pending friend request from the current user to the target user.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /users/{id}/request [post]
func SendFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}

	f, err := Relations.SendRequest(c.Request.Context(), viewerID.(uint), uint(targetID))
	if err != nil {
		respondError(c, err)
		return
	}

	hub.GlobalHub.NotifyUser(uint(targetID), hub.Event{
		Type:    hub.EventFriendRequest,
		Payload: gin.H{"relationship_id": f.ID, "from_user_id": viewerID.(uint)},
	})

	c.JSON(http.StatusCreated, gin.H{"message": "Friend request sent", "relationship_id": strconv.FormatUint(uint64(f.ID), 10)})
}

// AcceptFriendRequest godoc
// @Summary      Accept a friend request
// @Description  Accepts a pending friend request addressed to the current user.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Relationship ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /relationships/{id}/accept [post]
func AcceptFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	f, err := Relations.Accept(c.Request.Context(), uint(relationshipID), viewerID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	hub.GlobalHub.NotifyUser(f.RequesterID, hub.Event{
		Type:    hub.EventRequestAccept,
		Payload: gin.H{"relationship_id": f.ID, "by_user_id": viewerID.(uint)},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
}

// CancelFriendRequest godoc
// @Summary      Cancel a friend request
// @Description  Cancels a pending friend request that the current user sent.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Relationship ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /relationships/{id} [delete]
func CancelFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	if err := Relations.Cancel(c.Request.Context(), uint(relationshipID), viewerID.(uint)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request cancelled"})
}

// FollowUser godoc
// @Summary      Follow a user
// @Description  Creates an immediately accepted relationship from the current user to the target user.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /users/{id}/follow [post]
func FollowUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}

	if _, err := Relations.Follow(c.Request.Context(), viewerID.(uint), uint(targetID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User followed"})
}

// UnfriendUser godoc
// @Summary      Remove a friend
// @Description  Removes the accepted relationship between the current user and the target user.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id}/unfriend [post]
func UnfriendUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}

	if err := Relations.Unfriend(c.Request.Context(), viewerID.(uint), uint(targetID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
}

// BlockUser godoc
// @Summary      Block a user
// @Description  Blocks the target user, replacing whatever relationship existed before. Blocking an already blocked user is a no-op.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id}/block [post]
func BlockUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}

	if err := Relations.Block(c.Request.Context(), viewerID.(uint), uint(targetID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User blocked"})
}

// endregion

// region --- Relationship Listings ---

// GetMyFriends godoc
// @Summary      List friends
// @Description  Lists the current user's accepted relationships.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   RelationshipResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/friends [get]
func GetMyFriends(c *gin.Context) {
	listRelations(c, func(viewerID uint) ([]models.Friendship, error) {
		return Relations.FriendsOf(c.Request.Context(), viewerID)
	})
}

// GetIncomingRequests godoc
// @Summary      List incoming friend requests
// @Description  Lists pending requests addressed to the current user.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   RelationshipResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/requests/incoming [get]
func GetIncomingRequests(c *gin.Context) {
	listRelations(c, func(viewerID uint) ([]models.Friendship, error) {
		return Relations.IncomingPending(c.Request.Context(), viewerID)
	})
}

// GetOutgoingRequests godoc
// @Summary      List outgoing friend requests
// @Description  Lists pending requests the current user has sent.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   RelationshipResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/requests/outgoing [get]
func GetOutgoingRequests(c *gin.Context) {
	listRelations(c, func(viewerID uint) ([]models.Friendship, error) {
		return Relations.OutgoingPending(c.Request.Context(), viewerID)
	})
}

// GetMyFollowers godoc
// @Summary      List followers
// @Description  Lists users whose accepted relationship to the current user was initiated by them.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   RelationshipResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/followers [get]
func GetMyFollowers(c *gin.Context) {
	listRelations(c, func(viewerID uint) ([]models.Friendship, error) {
		return Relations.FollowersOf(c.Request.Context(), viewerID)
	})
}

// GetMyFollowing godoc
// @Summary      List followed users
// @Description  Lists users with whom the current user initiated an accepted relationship.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   RelationshipResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/following [get]
func GetMyFollowing(c *gin.Context) {
	listRelations(c, func(viewerID uint) ([]models.Friendship, error) {
		return Relations.FollowingOf(c.Request.Context(), viewerID)
	})
}

func listRelations(c *gin.Context, fetch func(viewerID uint) ([]models.Friendship, error)) {
	viewerID, _ := c.Get("userID")

	rels, err := fetch(viewerID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	counterpartIDs := relationship.Counterparts(viewerID.(uint), rels)
	usersByID := map[uint]models.User{}
	if len(counterpartIDs) > 0 {
		var users []models.User
		if err := database.DB.Where("id IN ?", counterpartIDs).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
			return
		}
		for _, u := range users {
			usersByID[u.ID] = u
		}
	}

	responses := []RelationshipResponse{}
	for _, f := range rels {
		counterpart, ok := usersByID[f.CounterpartOf(viewerID.(uint))]
		if !ok {
			continue
		}
		responses = append(responses, RelationshipResponse{
			ID:          f.ID,
			RequesterID: f.RequesterID,
			AddresseeID: f.AddresseeID,
			Status:      f.Status,
			Counterpart: buildPublicUserResponse(counterpart, viewerID.(uint)),
		})
	}

	c.JSON(http.StatusOK, responses)
}

// endregion

// region --- Admin ---

// GetAllRelationships godoc
// @Summary      List all relationships (admin)
// @Description  Returns every relationship record with pagination. Requires the admin role.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(10)
// @Success      200  {object}  PaginatedResponse[models.Friendship]
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/relationships [get]
func GetAllRelationships(c *gin.Context) {
	page, limit := pageParams(c)

	query := database.DB.Model(&models.Friendship{}).
		Preload("Requester").
		Preload("Addressee").
		Order("id ASC")

	response, err := Paginate[models.Friendship](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve relationships"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// endregion
