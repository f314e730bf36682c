package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-delivery-service/internal/services"
	"github.com/SAP-F-2025/exam-delivery-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	deliveryHandler *DeliveryHandler
	resultHandler   *ResultHandler
	deliveryService services.DeliveryService
	auth            gin.HandlerFunc
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokenParser TokenParser,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		deliveryHandler: NewDeliveryHandler(serviceManager.Delivery(), logger),
		resultHandler:   NewResultHandler(serviceManager.Result(), serviceManager.Assessment(), logger),
		deliveryService: serviceManager.Delivery(),
		auth:            AuthMiddleware(tokenParser, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.auth)
	{
		v1.GET("/assessments", hm.resultHandler.ListAssessments)

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.deliveryHandler.StartSession)
			sessions.GET("/:id", hm.deliveryHandler.GetSession)
			sessions.DELETE("/:id", hm.deliveryHandler.EndSession)
			sessions.PUT("/:id/mode", hm.deliveryHandler.SetMode)

			// Answers
			sessions.PUT("/:id/answers", hm.deliveryHandler.RecordAnswer)
			sessions.PUT("/:id/essays/:part", hm.deliveryHandler.RecordEssay)

			// Navigation
			sessions.POST("/:id/next", hm.deliveryHandler.Next)
			sessions.POST("/:id/previous", hm.deliveryHandler.Previous)
			sessions.POST("/:id/select", hm.deliveryHandler.SelectQuestion)
			sessions.PUT("/:id/tab", hm.deliveryHandler.SetTab)

			sessions.POST("/:id/submit", hm.deliveryHandler.Submit)
		}

		results := v1.Group("/results")
		{
			results.GET("/assessments/:id/export", hm.resultHandler.ExportResults)
			results.GET("/assessments/:id/stats", hm.resultHandler.GetResultStats)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"service":         "exam-delivery-service",
		"active_sessions": hm.deliveryService.ActiveSessions(),
	})
}
