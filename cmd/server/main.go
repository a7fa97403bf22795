package main

import (
	"fmt"
	"log"
	"net/http"

	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/config"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/handler"
	"socialnet/backend/internal/relationship"
	"socialnet/backend/internal/visibility"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "socialnet/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Socialnet API
// @version         1.0
// @description     This is the API for the Socialnet service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	// Wire the relationship engine and visibility resolver on top of the
	// shared gorm connection.
	store := relationship.NewGormStore(database.DB)
	engine := relationship.NewEngine(store, store)
	resolver := visibility.NewResolver(engine)
	feed := visibility.NewFeed(visibility.NewGormPostSource(database.DB), resolver)
	handler.Init(engine, resolver, feed)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Uploaded avatars and message media
	router.Static("/uploads", "./uploads")

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", handler.SearchUsers) // Must be before /:id
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.POST("/me/avatar", handler.UploadAvatar)
			userRoutes.GET("/me/friends", handler.GetMyFriends)
			userRoutes.GET("/me/requests/incoming", handler.GetIncomingRequests)
			userRoutes.GET("/me/requests/outgoing", handler.GetOutgoingRequests)
			userRoutes.GET("/me/followers", handler.GetMyFollowers)
			userRoutes.GET("/me/following", handler.GetMyFollowing)
			userRoutes.GET("/:id", handler.GetUserByID)
			userRoutes.GET("/:id/posts", handler.GetUserPosts)

			// Relationship actions
			userRoutes.POST("/:id/request", handler.SendFriendRequest)
			userRoutes.POST("/:id/follow", handler.FollowUser)
			userRoutes.POST("/:id/unfriend", handler.UnfriendUser)
			userRoutes.POST("/:id/block", handler.BlockUser)

			// Direct messages
			userRoutes.POST("/:id/messages", handler.SendMessage)
		}

		// Relationship routes addressed by record ID (protected)
		relationshipRoutes := apiV1.Group("/relationships")
		relationshipRoutes.Use(auth.AuthMiddleware())
		{
			relationshipRoutes.POST("/:id/accept", handler.AcceptFriendRequest)
			relationshipRoutes.DELETE("/:id", handler.CancelFriendRequest)
		}

		// Post reads work without a session; anonymous viewers only see
		// public posts.
		postReads := apiV1.Group("/posts")
		postReads.Use(auth.OptionalAuthMiddleware())
		{
			postReads.GET("/:id", handler.GetPostByID)
			postReads.GET("/:id/comments", handler.GetPostComments)
		}

		// Post routes (protected)
		postRoutes := apiV1.Group("/posts")
		postRoutes.Use(auth.AuthMiddleware())
		{
			postRoutes.POST("", handler.CreatePost)
			postRoutes.GET("/feed", handler.GetFeed) // Must be before /:id
			postRoutes.PUT("/:id/privacy", handler.UpdatePostPrivacy)
			postRoutes.DELETE("/:id", handler.DeletePost)
			postRoutes.POST("/:id/reactions", handler.ReactToPost)
			postRoutes.DELETE("/:id/reactions", handler.RemoveReaction)
			postRoutes.POST("/:id/comments", handler.CreateComment)
		}

		// Comment routes (protected)
		commentRoutes := apiV1.Group("/comments")
		commentRoutes.Use(auth.AuthMiddleware())
		{
			commentRoutes.DELETE("/:id", handler.DeleteComment)
		}

		// Message routes (protected)
		messageRoutes := apiV1.Group("/messages")
		messageRoutes.Use(auth.AuthMiddleware())
		{
			messageRoutes.GET("/conversations", handler.GetConversations) // Must be before /:id
			messageRoutes.POST("/media", handler.UploadMessageMedia)
			messageRoutes.GET("/:id", handler.GetConversation)
		}

		// Real-time event stream (protected)
		apiV1.GET("/events", auth.AuthMiddleware(), handler.StreamEvents)

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			adminRoutes.GET("/relationships", handler.GetAllRelationships)
		}
	}

	fmt.Println("Server is running on " + config.AppConfig.ServerAddr)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(config.AppConfig.ServerAddr))
}
