package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saksham-ndma/training-service/internal/config"
	"github.com/saksham-ndma/training-service/internal/models"
	"github.com/saksham-ndma/training-service/internal/repositories"
	"github.com/saksham-ndma/training-service/internal/services"
	"github.com/saksham-ndma/training-service/internal/utils"
)

// HandlerManager manages all HTTP handlers
type HandlerManager struct {
	sessionHandler  *SessionHandler
	districtHandler *DistrictHandler
	userHandler     *UserHandler
	authMiddleware  *CasdoorAuthMiddleware
}

// NewHandlerManager creates a new handler manager with all handlers
func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger, casdoorConfig config.CasdoorConfig, userRepo repositories.UserRepository) *HandlerManager {
	return &HandlerManager{
		sessionHandler:  NewSessionHandler(serviceManager.Session(), logger),
		districtHandler: NewDistrictHandler(serviceManager.District(), logger),
		userHandler:     NewUserHandler(serviceManager.User(), logger),
		authMiddleware:  NewCasdoorAuthMiddleware(casdoorConfig, userRepo),
	}
}

// SetupRoutes configures all API routes. Role gates are the coarse filter;
// ownership and geography checks happen in the service layer.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", healthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())

	sessions := v1.Group("/sessions")
	{
		// Reads are open to every authenticated role; scoping is applied
		// per-principal in the service
		sessions.GET("", hm.sessionHandler.ListSessions)
		sessions.GET("/my-trainings",
			hm.authMiddleware.RequireRoleMiddleware(models.RoleTrainer),
			hm.sessionHandler.MyTrainings)
		sessions.GET("/:id", hm.sessionHandler.GetSession)

		sessions.POST("",
			hm.authMiddleware.RequireRoleMiddleware(models.RoleTrainer),
			hm.sessionHandler.CreateSession)
		sessions.PUT("/:id",
			hm.authMiddleware.RequireRoleMiddleware(models.RoleTrainer, models.RoleSDMAAdmin),
			hm.sessionHandler.UpdateSession)
		sessions.DELETE("/:id",
			hm.authMiddleware.RequireRoleMiddleware(models.RoleTrainer, models.RoleSDMAAdmin),
			hm.sessionHandler.DeleteSession)
		sessions.POST("/:id/cancel",
			hm.authMiddleware.RequireRoleMiddleware(models.RoleTrainer, models.RoleSDMAAdmin),
			hm.sessionHandler.CancelSession)
		sessions.POST("/:id/evidence",
			hm.authMiddleware.RequireRoleMiddleware(models.RoleTrainer),
			hm.sessionHandler.SubmitEvidence)
		sessions.POST("/:id/review",
			hm.authMiddleware.RequireRoleMiddleware(models.RoleSDMAAdmin),
			hm.sessionHandler.ReviewSession)
	}

	trainers := v1.Group("/trainers")
	{
		trainers.GET("/:trainer_id/stats", hm.sessionHandler.GetTrainerStats)
	}

	districts := v1.Group("/districts")
	{
		districts.GET("", hm.districtHandler.ListDistricts)
		districts.GET("/:id", hm.districtHandler.GetDistrict)
		districts.GET("/:id/stats", hm.districtHandler.GetDistrictStats)

		districts.POST("",
			hm.authMiddleware.RequireRoleMiddleware(models.RoleNDMAAdmin),
			hm.districtHandler.CreateDistrict)
		districts.POST("/import",
			hm.authMiddleware.RequireRoleMiddleware(models.RoleNDMAAdmin),
			hm.districtHandler.ImportDistricts)
	}

	users := v1.Group("/users")
	{
		users.GET("/me", hm.userHandler.GetMe)
		users.GET("",
			hm.authMiddleware.RequireRoleMiddleware(models.RoleNDMAAdmin),
			hm.userHandler.ListUsers)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "training-service",
	})
}
