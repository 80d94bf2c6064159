package handlers

import (
	"net/http"

	"content-qa-cms/config"
	"content-qa-cms/helper"
	"content-qa-cms/middleware"
	"content-qa-cms/models"
	"content-qa-cms/repositories"
	"content-qa-cms/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Dependencies is everything the HTTP layer is built from.
type Dependencies struct {
	Transactor  repositories.Transactor
	Repos       repositories.Repositories
	QaStates    services.QaStateService
	Definitions *config.Definitions
	Helper      *helper.HTTPHelper
	Log         zerolog.Logger
}

func NewRouter(deps Dependencies) *gin.Engine {
	authService := services.NewAuthService(deps.Repos.Users)
	itemService := services.NewItemService(deps.QaStates, deps.Transactor, deps.Definitions)
	groupService := services.NewGroupService(deps.Repos.Groups, deps.Transactor)

	authHandler := NewAuthHandler(authService, deps.Helper)
	itemHandler := NewItemHandler(itemService, deps.QaStates, deps.Helper)
	groupHandler := NewGroupHandler(groupService, deps.Helper)
	itemTypeHandler := NewItemTypeHandler(deps.Definitions, deps.Helper)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(deps.Log))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		itemTypes := v1.Group("/item-types")
		{
			itemTypes.GET("", itemTypeHandler.GetItemTypes)
			itemTypes.GET("/:name/rules", itemTypeHandler.GetRules)
		}

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/profile", authHandler.GetProfile)

			items := protected.Group("/items")
			{
				items.POST("", itemHandler.CreateItem)
				items.GET("", itemHandler.GetItems)
				items.GET("/:id", itemHandler.GetItem)
				items.PUT("/:id/steps/:step", itemHandler.SaveStep)
				items.PUT("/:id/translations/:language/steps/:step", itemHandler.SaveTranslationStep)
				items.GET("/:id/changesets", itemHandler.GetChangesets)
				items.GET("/:id/progress", itemHandler.GetProgress)

				items.PUT("/:id/status",
					middleware.RequireRole(models.RoleReviewer, models.RolePublisher),
					itemHandler.ChangeStatus)

				publishing := items.Group("", middleware.RequireRole(models.RolePublisher))
				{
					publishing.PUT("/:id/permissions", itemHandler.SetPermissions)
					publishing.POST("/:id/publish", itemHandler.Publish)
					publishing.POST("/:id/unpublish", itemHandler.Unpublish)
				}

				items.GET("/:id/groups", groupHandler.GetItemGroups)
				items.POST("/:id/groups", middleware.RequireRole(models.RolePublisher), groupHandler.AttachItem)
				items.DELETE("/:id/groups/:group_id", middleware.RequireRole(models.RolePublisher), groupHandler.DetachItem)
			}

			groups := protected.Group("/groups")
			{
				groups.POST("", middleware.RequireRole(models.RoleAdmin), groupHandler.CreateGroup)
				groups.GET("", groupHandler.GetGroups)
				groups.GET("/:id", groupHandler.GetGroup)
			}
		}
	}

	return router
}
