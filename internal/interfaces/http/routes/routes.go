package routes

import (
	"github.com/franklioxygen/MyTube-sub001/internal/application/services"
	"github.com/franklioxygen/MyTube-sub001/internal/interfaces/http/handlers"
	"github.com/franklioxygen/MyTube-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter 构建HTTP路由
// 所有业务端点挂在/api/v1下,swagger文档挂在/swagger
func NewRouter(container *services.ServiceContainer) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.CORS(),
		middleware.ErrorHandler(),
	)

	taskHandler := handlers.NewTaskHandler(container)
	downloadHandler := handlers.NewDownloadHandler(container)
	libraryHandler := handlers.NewLibraryHandler(container)
	subscriptionHandler := handlers.NewSubscriptionHandler(container)
	healthHandler := handlers.NewHealthHandler(container)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	{
		api.GET("/health", healthHandler.HealthCheck)

		tasks := api.Group("/tasks")
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/playlist", taskHandler.CreatePlaylistTask)
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.POST("/:id/pause", taskHandler.PauseTask)
			tasks.POST("/:id/resume", taskHandler.ResumeTask)
			tasks.POST("/:id/cancel", taskHandler.CancelTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/clear-finished", taskHandler.ClearFinishedTasks)
		}

		downloads := api.Group("/downloads")
		{
			downloads.POST("", downloadHandler.CreateDownload)
			downloads.GET("", downloadHandler.ListDownloads)
			downloads.GET("/:id", downloadHandler.GetDownload)
			downloads.DELETE("/:id", downloadHandler.CancelDownload)
		}

		videos := api.Group("/videos")
		{
			videos.GET("", libraryHandler.ListVideos)
			videos.GET("/:id", libraryHandler.GetVideo)
			videos.DELETE("/:id", libraryHandler.DeleteVideo)
		}

		collections := api.Group("/collections")
		{
			collections.GET("", libraryHandler.ListCollections)
			collections.GET("/:id/videos", libraryHandler.GetCollectionVideos)
		}

		history := api.Group("/history")
		{
			history.GET("", libraryHandler.ListHistory)
			history.DELETE("/:id", libraryHandler.DeleteHistoryItem)
			history.DELETE("", libraryHandler.ClearHistory)
		}

		subscriptions := api.Group("/subscriptions")
		{
			subscriptions.POST("", subscriptionHandler.CreateSubscription)
			subscriptions.GET("", subscriptionHandler.ListSubscriptions)
			subscriptions.DELETE("/:id", subscriptionHandler.DeleteSubscription)
		}
	}

	return router
}
