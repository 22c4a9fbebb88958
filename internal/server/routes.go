// Package server assembles the chi router over the domain services.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"studentportal/internal/auth"
	"studentportal/internal/server/handlers"
	"studentportal/internal/server/util"
	"studentportal/internal/shared"
)

// Services bundles the domain services the router depends on.
type Services struct {
	Auth    *auth.Service
	Course  *handlers.CourseHandler
	Contact *handlers.ContactHandler
	Grade   *handlers.GradeHandler
	User    *handlers.UserHandler
	Upload  *handlers.UploadHandler
}

// SetupRoutes configures the Chi router, middleware, and route handlers.
func SetupRoutes(cfg *shared.Config, svcs Services) *chi.Mux {
	r := chi.NewRouter()

	// 1. Global Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	authHandler := &handlers.AuthHandler{Auth: svcs.Auth}

	// 2. Define Routes (grouped by prefix)
	r.Route("/api", func(r chi.Router) {

		// --- Public Routes ---

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Contact form (anyone can write in)
		r.Post("/contact", svcs.Contact.Submit)

		// Course catalog is publicly viewable
		r.Get("/courses", svcs.Course.List)
		r.Get("/courses/{id}", svcs.Course.Get)

		// --- Protected Routes (Require Valid Token) ---
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(svcs.Auth))

			r.Get("/auth/validate", authHandler.Validate)
			r.Post("/auth/change-password", authHandler.ChangePassword)

			// Profile
			r.Get("/users/me", svcs.User.Me)
			r.Put("/users/me", svcs.User.UpdateMe)
			r.Post("/users/me/avatar", svcs.Upload.Avatar)

			// Courses
			r.Post("/courses", svcs.Course.Create)
			r.Put("/courses/{id}", svcs.Course.Update)
			r.Post("/courses/{id}/enroll", svcs.Course.Enroll)
			r.Get("/courses/{id}/materials", svcs.Course.Materials)
			r.Post("/courses/{id}/materials", svcs.Upload.Material)

			// Grades
			r.Route("/grades", func(r chi.Router) {
				r.Get("/", svcs.Grade.MyGrades)
				r.Post("/", svcs.Grade.Create)
				r.Put("/{id}", svcs.Grade.Update)
				r.Post("/{id}/incomplete", svcs.Grade.MarkIncomplete)
				r.Get("/student/{id}", svcs.Grade.StudentGrades)
				r.Get("/course/{id}", svcs.Grade.CourseGrades)
				r.Get("/course/{id}/stats", svcs.Grade.CourseStats)
			})

			// Stored files
			r.Get("/files/*", svcs.Upload.Download)

			// Admin Management
			r.Route("/admin", func(r chi.Router) {
				r.Use(handlers.RequireRole(shared.RoleAdmin))

				r.Get("/users", svcs.User.List)
				r.Put("/users/{id}", svcs.User.Update)
				r.Delete("/users/{id}", svcs.User.Deactivate)
				r.Get("/users/stats", svcs.User.Stats)

				r.Route("/contact", func(r chi.Router) {
					r.Get("/", svcs.Contact.List)
					r.Patch("/{id}/read", svcs.Contact.MarkRead)
					r.Post("/{id}/reply", svcs.Contact.Reply)
					r.Patch("/{id}/archive", svcs.Contact.Archive)
				})
			})
		})
	})

	return r
}

// AuthMiddleware validates the bearer token and injects the user into the
// request context.
func AuthMiddleware(authSvc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := util.ExtractToken(r)
			if err != nil {
				util.WriteJSONError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}

			user, err := authSvc.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				util.HandleServiceError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(util.WithUser(r.Context(), user)))
		})
	}
}
