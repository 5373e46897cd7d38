package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/devsanbid/bravo-test-sub001/internal/api/http/handlers"
	"github.com/devsanbid/bravo-test-sub001/internal/auth"
	"github.com/devsanbid/bravo-test-sub001/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Pages          *handlers.PageHandler
	Blogs          *handlers.BlogHandler
	Gallery        *handlers.GalleryHandler
	Materials      *handlers.MaterialHandler
	Storage        *handlers.StorageHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// pageRoutes are served behind the navigation gate. Areas register both the bare prefix
// and everything below it.
var pageRoutes = []string{
	"/", "/login", "/register", "/forgotpassword",
	"/dashboard", "/dashboard/*",
	"/mod", "/mod/*",
	"/admin", "/admin/*",
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	mw := cfg.AuthMiddleware

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", mw.Optional, cfg.Auth.Logout)
	authGroup.Get("/me", mw.Handle, cfg.Auth.Me)
	authGroup.Get("/route", cfg.Auth.Route)
	authGroup.Get("/verification", mw.Handle, cfg.Auth.VerificationStatus)
	authGroup.Post("/verification", mw.Handle, cfg.Auth.SendVerification)
	authGroup.Put("/verification", cfg.Auth.ConfirmVerification)
	authGroup.Post("/recovery", cfg.Auth.RequestRecovery)
	authGroup.Put("/recovery", cfg.Auth.ConfirmRecovery)

	staff := []fiber.Handler{mw.Handle, auth.RequireStaff()}

	blogs := api.Group("/blogs")
	blogs.Get("/", mw.Optional, cfg.Blogs.List)
	blogs.Get("/:id", mw.Optional, cfg.Blogs.Get)
	blogs.Post("/", append(staff, cfg.Blogs.Create)...)
	blogs.Put("/:id", append(staff, cfg.Blogs.Update)...)
	blogs.Delete("/:id", append(staff, cfg.Blogs.Delete)...)

	gallery := api.Group("/gallery")
	gallery.Get("/", cfg.Gallery.List)
	gallery.Get("/events", cfg.Gallery.Events)
	gallery.Delete("/", append(staff, cfg.Gallery.Delete)...)
	gallery.Post("/upload", append(staff, cfg.Gallery.Upload)...)
	gallery.Get("/update", append(staff, cfg.Gallery.Get)...)
	gallery.Put("/update", append(staff, cfg.Gallery.Update)...)

	materials := api.Group("/materials")
	materials.Get("/", cfg.Materials.List)
	materials.Delete("/", mw.Handle, cfg.Materials.Delete)
	materials.Post("/upload", mw.Handle, cfg.Materials.Upload)
	materials.Get("/update", mw.Handle, cfg.Materials.Get)
	materials.Patch("/update", mw.Handle, cfg.Materials.Update)
	materials.Get("/detail", mw.Handle, cfg.Materials.Get)

	api.Get("/storage/:bucket/files/:id/view", cfg.Storage.View)

	for _, path := range pageRoutes {
		app.Get(path, mw.Gate, cfg.Pages.Render)
	}
}
