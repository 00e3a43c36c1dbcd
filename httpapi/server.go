// Package httpapi maps the auth and property services onto the REST surface.
package httpapi

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"homelist/auth"
	"homelist/property"
	"homelist/storage"
)

// Server holds the wired services and turns them into HTTP handlers. All
// dependencies are passed in explicitly; there is no package-level state.
type Server struct {
	auth       *auth.Service
	properties *property.Service
	store      *storage.DiskStore
	corsOrigin string
	devMode    bool
}

// Options carries server knobs that are not services.
type Options struct {
	CORSOrigin string
	// DevMode includes internal error detail in 500 responses.
	DevMode bool
}

// NewServer wires the services into a Server.
func NewServer(authService *auth.Service, propertyService *property.Service, store *storage.DiskStore, opts Options) *Server {
	return &Server{
		auth:       authService,
		properties: propertyService,
		store:      store,
		corsOrigin: opts.CORSOrigin,
		devMode:    opts.DevMode,
	}
}

// Routes builds the router. Routing is thin on purpose: handlers validate
// input shape, delegate to services and map errors to status codes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handleWelcome)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/verify-email", s.handleVerifyEmail)
		r.Post("/resend-verification", s.handleResendVerification)

		r.Group(func(r chi.Router) {
			r.Use(s.Authenticate)
			r.Get("/me", s.handleMe)
			r.Put("/me", s.handleUpdateMe)
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(s.Authenticate)
		r.With(s.RequireAdmin).Get("/", s.handleListUsers)
		r.Get("/{id}", s.handleGetUser)
		r.Put("/{id}", s.handleUpdateUser)
		r.With(s.RequireAdmin).Put("/{id}/verify", s.handleSetUserVerified)
		r.With(s.RequireAdmin).Delete("/{id}", s.handleDeleteUser)
	})

	r.Route("/api/properties", func(r chi.Router) {
		r.Get("/", s.handleListProperties)
		r.Get("/active", s.handleActiveProperties)
		r.Get("/{id}", s.handleGetProperty)

		r.Group(func(r chi.Router) {
			r.Use(s.Authenticate)
			r.Get("/user/{userID}", s.handleUserProperties)
			r.Post("/", s.handleCreateProperty)
			r.Put("/{id}", s.handleUpdateProperty)
			r.Post("/{id}/images", s.handleUploadImages)
			r.Delete("/{id}", s.handleDeleteProperty)
		})
	})

	// Stored images are served straight off disk, same paths as persisted
	// on the listings.
	prefix := "/" + strings.TrimPrefix(filepath.ToSlash(s.store.Dir()), "/")
	uploads := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(s.store.Dir())))
	r.Get(prefix+"/*", uploads.ServeHTTP)

	return r
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Property Listing API"})
}
