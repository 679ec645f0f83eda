package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/carecircle/carecircle-api/internal/authz"
	"github.com/carecircle/carecircle-api/internal/clock"
	"github.com/carecircle/carecircle-api/internal/middleware"
	"github.com/carecircle/carecircle-api/internal/plan"
	"github.com/carecircle/carecircle-api/internal/presence"
	"github.com/carecircle/carecircle-api/internal/store"
)

// RouterDeps carries everything the API surface needs.
type RouterDeps struct {
	Tasks    *store.TaskStore
	Users    *store.UserStore
	Tracker  *presence.Tracker
	Clock    clock.Clock
	Plan     plan.Key
	Log      *logrus.Logger
	GinMode  string
	UseRecov bool
}

// NewRouter builds the full API surface. Every /api route runs behind the
// identity middleware; write routes additionally check role permissions.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.GinMode != "" {
		gin.SetMode(deps.GinMode)
	}

	r := gin.New()
	if deps.UseRecov {
		r.Use(gin.Recovery())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	taskHandler := NewTaskHandler(deps.Tasks, deps.Clock)
	userHandler := NewUserHandler(deps.Users)
	planHandler := NewPlanHandler(deps.Plan)
	presenceHandler := NewPresenceHandler(deps.Tracker)
	parentalHandler := NewParentalHandler(deps.Log)

	api := r.Group("/api")
	api.Use(middleware.Identity(deps.Users))
	{
		api.GET("/users", middleware.RequirePermission(authz.ActionViewTasks), userHandler.ListUsers)
		api.GET("/plan", middleware.RequirePermission(authz.ActionViewTasks), planHandler.GetPlan)

		device := api.Group("/device")
		{
			device.POST("/heartbeat", middleware.RequirePermission(authz.ActionHeartbeat), presenceHandler.Heartbeat)
			device.GET("/presence", middleware.RequirePermission(authz.ActionViewTasks), presenceHandler.GetPresence)
		}

		api.POST("/parental/enforce", middleware.RequirePermission(authz.ActionEnforce), parentalHandler.Enforce)

		tasks := api.Group("/tasks")
		{
			tasks.GET("", middleware.RequirePermission(authz.ActionViewTasks), taskHandler.ListTasks)
			tasks.POST("", middleware.RequirePermission(authz.ActionManageTasks), taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequirePermission(authz.ActionViewTasks), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequirePermission(authz.ActionManageTasks), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequirePermission(authz.ActionManageTasks), taskHandler.DeleteTask)
			tasks.POST("/:id/ack", middleware.RequirePermission(authz.ActionAckTask), taskHandler.AckTask)
			tasks.POST("/:id/hold", middleware.RequirePermission(authz.ActionManageTasks), taskHandler.HoldTask)
			tasks.POST("/:id/resume", middleware.RequirePermission(authz.ActionManageTasks), taskHandler.ResumeTask)
			tasks.POST("/:id/enforce", middleware.RequirePermission(authz.ActionEnforce), taskHandler.EnforceTask)
			tasks.POST("/:id/clear-enforcement", middleware.RequirePermission(authz.ActionEnforce), taskHandler.ClearEnforcement)
			tasks.POST("/:id/cancel", middleware.RequirePermission(authz.ActionManageTasks), taskHandler.CancelTask)
			tasks.POST("/:id/proof", middleware.RequirePermission(authz.ActionAttachProof), taskHandler.AttachProof)
		}
	}

	return r
}
