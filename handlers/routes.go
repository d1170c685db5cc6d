package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the settings the router reports or enforces
type RouterConfig struct {
	AllowOrigins  []string
	StorageDriver string
	Durable       bool
}

// NewRouter builds the gin engine with every API route
func NewRouter(h *ChatHandler, cfg RouterConfig) *gin.Engine {
	registerValidation()

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// API routes
	api := router.Group("/api")
	{
		// Character routes
		api.GET("/characters", h.ListCharacters)
		api.POST("/characters", h.CreateCharacter)
		api.GET("/characters/:id", h.GetCharacter)
		api.PATCH("/characters/:id", h.UpdateCharacter)
		api.DELETE("/characters/:id", h.DeleteCharacter)
		api.GET("/characters/:id/card", h.GetCharacterCard)
		api.GET("/archetypes", h.ListArchetypes)

		// Conversation routes
		api.GET("/characters/:id/conversation", h.GetConversation)
		api.POST("/characters/:id/messages", h.AddMessage)
		api.POST("/characters/:id/chat", h.Chat)

		// Guided creation
		api.POST("/creator/messages", h.CreatorMessage)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"storage": cfg.StorageDriver,
			"durable": cfg.Durable,
		})
	})

	return router
}
