package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"labmatch/internal/domain/user"
	"labmatch/internal/http/handlers"
	httpmw "labmatch/internal/http/middleware"
)

type RouterDependencies struct {
	UserHandler           *handlers.UserHandler
	ProjectHandler        *handlers.ProjectHandler
	ApplicationHandler    *handlers.ApplicationHandler
	RecommendationHandler *handlers.RecommendationHandler
	AuthMiddleware        *httpmw.AuthMiddleware
	Limiter               httpmw.Limiter
	RequestTimeout        time.Duration
	CORSOrigins           string
}

const maxBodyBytes = 1 << 20

func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(deps.RequestTimeout))
	r.Use(bodyLimit(maxBodyBytes))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(deps.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httpmw.RateLimit(deps.Limiter, httpmw.ClientIP, 120, time.Minute))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.Authenticate)

		r.Get("/users/me", deps.UserHandler.Me)
		r.With(httpmw.RequireRole(user.RoleStudent)).Put("/users/me/skills", deps.UserHandler.UpdateSkills)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", deps.ProjectHandler.List)
			r.Get("/stats", deps.ProjectHandler.Stats)
			r.With(httpmw.RequireRole(user.RoleProfessor)).Get("/mine", deps.ProjectHandler.ListMine)
			r.With(httpmw.RequireRole(user.RoleProfessor)).Post("/", deps.ProjectHandler.Create)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", deps.ProjectHandler.Get)
				r.With(httpmw.RequireRole(user.RoleProfessor)).Patch("/", deps.ProjectHandler.Update)
				r.With(httpmw.RequireRole(user.RoleProfessor)).Delete("/", deps.ProjectHandler.Delete)
				r.With(httpmw.RequireRole(user.RoleStudent)).Post("/apply", deps.ProjectHandler.Apply)
				r.With(httpmw.RequireRole(user.RoleProfessor)).Get("/candidates", deps.RecommendationHandler.Candidates)
				r.With(httpmw.RequireRole(user.RoleStudent)).Get("/skill-gap", deps.RecommendationHandler.SkillGap)
			})
		})

		r.Route("/applications", func(r chi.Router) {
			r.With(httpmw.RequireRole(user.RoleStudent)).Post("/", deps.ApplicationHandler.Submit)
			r.Get("/", deps.ApplicationHandler.List)
			r.Get("/stats", deps.ApplicationHandler.Stats)

			r.Route("/{applicationID}", func(r chi.Router) {
				r.Get("/", deps.ApplicationHandler.Get)
				r.Get("/match", deps.RecommendationHandler.Match)
				r.With(httpmw.RequireRole(user.RoleProfessor)).Put("/approve", deps.ApplicationHandler.Approve)
				r.With(httpmw.RequireRole(user.RoleProfessor)).Put("/reject", deps.ApplicationHandler.Reject)
				r.With(httpmw.RequireRole(user.RoleStudent)).Delete("/", deps.ApplicationHandler.Withdraw)
			})
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Use(httpmw.RequireRole(user.RoleStudent))
			r.Get("/", deps.RecommendationHandler.ListForStudent)
			r.Get("/top/{limit}", deps.RecommendationHandler.Top)
		})
	})

	return r
}

func bodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
