package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/stockers-dev/stockers-api/internal/api/application"
	"github.com/stockers-dev/stockers-api/internal/api/auth"
	"github.com/stockers-dev/stockers-api/internal/api/recruit"
	"github.com/stockers-dev/stockers-api/internal/api/user"
)

// Config contains dependencies needed for the router setup.
type Config struct {
	AuthHandler        *auth.AuthHandler
	UserHandler        *user.UserHandler
	RecruitHandler     *recruit.RecruitHandler
	ApplicationHandler *application.ApplicationHandler

	Authenticate func(http.Handler) http.Handler
	RequireAdmin func(http.Handler) http.Handler
}

// SetupRouter wires the route tree. Server-wide middleware (request id,
// logging, recoverer) is applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/users/signup", cfg.AuthHandler.Signup)
			r.Post("/users/signin", cfg.AuthHandler.Signin)
			r.Post("/users/verification", cfg.UserHandler.PostVerification)
			r.Patch("/users/verification", cfg.UserHandler.PatchVerification)

			r.Get("/recruits", cfg.RecruitHandler.ListRecruits)
			r.Get("/recruits/{recruitID}", cfg.RecruitHandler.GetRecruit)
		})

		// Authenticated routes, any role
		r.Group(func(r chi.Router) {
			r.Use(cfg.Authenticate)

			r.Get("/users/mypage", cfg.UserHandler.GetMyPage)
			r.Patch("/users/mypage", cfg.UserHandler.PatchMyPage)

			r.Get("/recruits/{recruitID}/applications", cfg.ApplicationHandler.GetApplication)
			r.Post("/recruits/{recruitID}/applications", cfg.ApplicationHandler.SubmitApplication)
			r.Patch("/recruits/{recruitID}/applications", cfg.ApplicationHandler.UpdateApplication)
			r.Delete("/recruits/{recruitID}/applications", cfg.ApplicationHandler.DeleteApplication)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.Authenticate)
			r.Use(cfg.RequireAdmin)

			r.Post("/recruits", cfg.RecruitHandler.CreateRecruit)
			r.Patch("/recruits/{recruitID}", cfg.RecruitHandler.UpdateRecruit)
			r.Delete("/recruits/{recruitID}", cfg.RecruitHandler.DeleteRecruit)

			r.Get("/applications", cfg.ApplicationHandler.AdminListApplications)
			r.Get("/applications/{applicationID}", cfg.ApplicationHandler.AdminGetApplication)
			r.Patch("/applications/{applicationID}", cfg.ApplicationHandler.AdminUpdateStatus)
		})
	})

	return r
}
