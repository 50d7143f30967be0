package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dropwishes/api/internal/api/handler"
	mw "github.com/dropwishes/api/internal/api/middleware"
	"github.com/dropwishes/api/internal/config"
	"github.com/dropwishes/api/internal/core"
	"github.com/dropwishes/api/internal/mail"
	"github.com/dropwishes/api/internal/storage"
)

//go:embed docs/swagger.json
var swaggerJSON []byte

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	pool     *pgxpool.Pool
	cfg      *config.Config
	store    storage.Store
	mailer   mail.Mailer
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, cfg *config.Config, store storage.Store, mailer mail.Mailer) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: core.NewServices(pool),
		pool:     pool,
		cfg:      cfg,
		store:    store,
		mailer:   mailer,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
	s.router.Use(mw.CORS(s.cfg.ClientHost))
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	// API documentation (no auth required)
	s.router.Get("/api/docs/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(swaggerJSON)
	})
	s.router.Get("/api/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(scalarHTML))
	})

	// Uploaded media
	media := handler.NewMedia(s.store)
	s.router.Get("/static/media/*", media.Serve)

	auth := mw.Auth(s.services.Auth)

	user := handler.NewUser(s.services.User, s.services.Auth)
	s.router.Route("/api/user", func(r chi.Router) {
		r.Post("/create", user.Register)
		r.Post("/token", user.Token)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/me", user.Me)
			r.Patch("/me", user.UpdateMe)
			r.Put("/change-password", user.ChangePassword)
			r.Put("/change-email", user.ChangeEmail)
			r.Delete("/delete-user", user.DeleteUser)
			r.Post("/token/logout", user.Logout)
		})
	})

	otp := handler.NewOTP(s.services.Auth, s.mailer, s.logger)
	s.router.Route("/api/otp-auth", func(r chi.Router) {
		r.Post("/", otp.Request)
		r.Post("/verify", otp.Verify)
	})

	wishlist := handler.NewWishlist(s.services.Wishlist)
	product := handler.NewProduct(s.services.Product, s.store)
	s.router.Route("/api/wishlist", func(r chi.Router) {
		r.Use(auth)

		r.Get("/wishlists", wishlist.List)
		r.Post("/wishlists", wishlist.Create)
		r.Get("/wishlists/{id}", wishlist.Get)
		r.Put("/wishlists/{id}", wishlist.Update)
		r.Patch("/wishlists/{id}", wishlist.Update)
		r.Delete("/wishlists/{id}", wishlist.Delete)

		r.Get("/products", product.List)
		r.Post("/products", product.Create)
		r.Get("/products/{id}", product.Get)
		r.Patch("/products/{id}", product.Update)
		r.Delete("/products/{id}", product.Delete)
		r.Post("/products/{id}/upload-image", product.UploadImage)
	})

	post := handler.NewPost(s.services.Post, s.store)
	comment := handler.NewComment(s.services.Comment)
	tag := handler.NewTag(s.services.Tag)
	s.router.Route("/api/blog", func(r chi.Router) {
		// Reads are public.
		r.Get("/posts", post.List)
		r.Get("/posts/{id}", post.Get)
		r.Get("/comments", comment.List)
		r.Get("/comments/{id}", comment.Get)
		r.Get("/tags", tag.List)
		r.Get("/tags/{id}", tag.Get)

		// Post and tag writes are staff only.
		r.Group(func(r chi.Router) {
			r.Use(auth, mw.RequireStaff)
			r.Post("/posts", post.Create)
			r.Put("/posts/{id}", post.Update)
			r.Patch("/posts/{id}", post.Update)
			r.Delete("/posts/{id}", post.Delete)
			r.Post("/posts/{id}/upload-image", post.UploadImage)
			r.Put("/tags/{id}", tag.Update)
			r.Delete("/tags/{id}", tag.Delete)
		})

		// Any authenticated user can comment; edits are author-checked in
		// the handler.
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/comments", comment.Create)
			r.Put("/comments/{id}", comment.Update)
			r.Patch("/comments/{id}", comment.Update)
			r.Delete("/comments/{id}", comment.Delete)
		})
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

const scalarHTML = `<!DOCTYPE html>
<html>
<head>
  <title>DropWishes API</title>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
  <script id="api-reference" data-url="/api/docs/openapi.json"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
