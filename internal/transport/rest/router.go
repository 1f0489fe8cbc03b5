package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/erensaridag/careermatch/internal/application"
	"github.com/erensaridag/careermatch/internal/auth"
	"github.com/erensaridag/careermatch/internal/posting"
	"github.com/erensaridag/careermatch/internal/transport/middleware"
	"github.com/erensaridag/careermatch/internal/transport/swagger"
	"github.com/erensaridag/careermatch/internal/user"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, postingHandler *posting.Handler, applicationHandler *application.Handler, roles *auth.RoleAuthorization, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/signup", authHandler.SignUp)
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
				sr.Post("/reset-password", authHandler.ResetPassword)
			})
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				// Current user profile
				if userHandler != nil {
					pr.Get("/users/me", userHandler.GetCurrentUser)
					pr.Patch("/users/me", userHandler.UpdateCurrentUser)
				}

				// Applicant profile lookup for companies
				if applicationHandler != nil {
					pr.Group(func(cr chi.Router) {
						cr.Use(roles.RequireCompany())
						cr.Get("/users/{id}", applicationHandler.ApplicantDetail)
					})
				}

				// Internship listing routes
				if postingHandler != nil {
					pr.Route("/internships", func(ir chi.Router) {
						ir.Get("/", postingHandler.ListPostings)
						ir.Get("/search", postingHandler.ListPostings)

						// Company routes gated on role
						ir.Group(func(cr chi.Router) {
							cr.Use(roles.RequireCompany())
							cr.Post("/", postingHandler.CreatePosting)
							cr.Get("/mine", postingHandler.ListMyPostings)
							if applicationHandler != nil {
								cr.Get("/pending-count", applicationHandler.CountPending)
							}
						})

						ir.Get("/{id}", postingHandler.GetPosting)

						ir.Group(func(cr chi.Router) {
							cr.Use(roles.RequireCompany())
							cr.Patch("/{id}", postingHandler.UpdatePosting)
							cr.Delete("/{id}", postingHandler.DeletePosting)
							if applicationHandler != nil {
								cr.Get("/{id}/applications", applicationHandler.ListApplicants)
							}
						})

						if applicationHandler != nil {
							ir.Group(func(sr chi.Router) {
								sr.Use(roles.RequireStudent())
								sr.Post("/{id}/applications", applicationHandler.Apply)
							})
						}
					})
				}

				// Application routes
				if applicationHandler != nil {
					pr.Route("/applications", func(ar chi.Router) {
						ar.Group(func(sr chi.Router) {
							sr.Use(roles.RequireStudent())
							sr.Get("/mine", applicationHandler.ListMine)
							sr.Get("/mine/count", applicationHandler.CountMine)
						})

						ar.Group(func(cr chi.Router) {
							cr.Use(roles.RequireCompany())
							cr.Patch("/{id}/status", applicationHandler.UpdateStatus)
						})

						// Withdrawal is open to either side; ownership is
						// checked in the service.
						ar.Delete("/{id}", applicationHandler.Withdraw)
					})
				}
			})
		}
	})
}
