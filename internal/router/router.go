package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/daykeep/backend/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Group   *apiHandler.GroupHandler
	Task    *apiHandler.TaskHandler
	Log     *apiHandler.LogHandler
	Streak  *apiHandler.StreakHandler
	Events  *apiHandler.EventsHandler
	Health  *apiHandler.HealthHandler

	// Metrics serves the Prometheus endpoint; nil leaves it unregistered.
	Metrics fasthttp.RequestHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	if handlers.Metrics != nil {
		r.GET("/metrics", handlers.Metrics)
	}

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", handlers.Auth.Logout)

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))
	r.PUT("/api/v1/profile", authMiddleware(handlers.Profile.UpdateProfile))

	r.GET("/api/v1/groups", authMiddleware(handlers.Group.List))
	r.POST("/api/v1/groups", authMiddleware(handlers.Group.Create))
	r.POST("/api/v1/groups/reorder", authMiddleware(handlers.Group.Reorder))
	r.PATCH("/api/v1/groups/{id}", authMiddleware(handlers.Group.Update))
	r.DELETE("/api/v1/groups/{id}", authMiddleware(handlers.Group.Delete))
	r.POST("/api/v1/groups/{id}/pin-groups", authMiddleware(handlers.Group.CreatePinGroup))
	r.PATCH("/api/v1/pin-groups/{id}", authMiddleware(handlers.Group.UpdatePinGroup))
	r.DELETE("/api/v1/pin-groups/{id}", authMiddleware(handlers.Group.DeletePinGroup))
	r.POST("/api/v1/pin-groups/{id}/pins", authMiddleware(handlers.Group.AddPin))
	r.DELETE("/api/v1/pins/{id}", authMiddleware(handlers.Group.RemovePin))
	r.POST("/api/v1/pins/{id}/move", authMiddleware(handlers.Group.MovePin))

	r.GET("/api/v1/groups/{id}/tasks", authMiddleware(handlers.Task.ListByGroup))
	r.PATCH("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Update))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Delete))

	r.GET("/api/v1/groups/{id}/logs", authMiddleware(handlers.Log.ListByGroup))
	r.GET("/api/v1/logs", authMiddleware(handlers.Log.List))
	r.PUT("/api/v1/logs", authMiddleware(handlers.Log.Set))
	r.POST("/api/v1/logs/{id}/move", authMiddleware(handlers.Log.Move))
	r.DELETE("/api/v1/logs/{id}", authMiddleware(handlers.Log.Delete))

	r.GET("/api/v1/streaks", authMiddleware(handlers.Streak.List))
	r.POST("/api/v1/streaks", authMiddleware(handlers.Streak.Create))
	r.GET("/api/v1/streaks/{id}", authMiddleware(handlers.Streak.Get))
	r.PATCH("/api/v1/streaks/{id}", authMiddleware(handlers.Streak.Update))
	r.DELETE("/api/v1/streaks/{id}", authMiddleware(handlers.Streak.Delete))
	r.POST("/api/v1/streaks/{id}/toggle", authMiddleware(handlers.Streak.Toggle))
	r.GET("/api/v1/streaks/{id}/logs", authMiddleware(handlers.Streak.ListLogs))

	r.GET("/api/v1/events", authMiddleware(handlers.Events.Stream))

	return r
}
