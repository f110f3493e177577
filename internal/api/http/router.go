package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/http/handlers"
	"github.com/spec-kit/task-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tasks          *handlers.TasksHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.Middleware
	AuthRateLimit  fiber.Handler
}

// RegisterRoutes wires HTTP routes. The auth middleware runs on every
// request but only attaches identity; protected groups enforce it with an
// explicit guard.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.AuthMiddleware.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	if cfg.AuthRateLimit != nil {
		authGroup.Use(cfg.AuthRateLimit)
	}
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	api := app.Group("/api", auth.RequireAuthenticated())

	tasks := api.Group("/tasks")
	tasks.Get("/getAll", cfg.Tasks.GetAll)
	tasks.Get("/getTaskById/:id", cfg.Tasks.GetByID)
	tasks.Get("/getByUserName/:username", cfg.Tasks.GetByUserName)
	tasks.Post("/create", cfg.Tasks.Create)
	tasks.Put("/update/:id", cfg.Tasks.Update)
	tasks.Delete("/delete/:id", cfg.Tasks.Delete)

	users := api.Group("/users")
	users.Get("/getAllUsers", cfg.Users.GetAll)
	users.Get("/user/:id", cfg.Users.GetByID)
	users.Delete("/:id", cfg.Users.Delete)
}
