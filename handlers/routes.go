package handlers

import (
	"net/http"

	"bookreviews/middleware"
	"bookreviews/service"
	"bookreviews/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Routes builds the full HTTP surface. Listing and single-book reads
// are public; every mutating route goes through the session middleware
// and then its handler's ownership check.
func Routes(db store.Store, jwtSecret, frontendURL string, covers *service.CoverService) http.Handler {
	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	booksHandler := &BooksHandler{DB: db, Covers: covers}
	reviewsHandler := &ReviewsHandler{DB: db}
	usersHandler := &UsersHandler{DB: db}
	requireAuth := middleware.Auth(db, jwtSecret)

	r := chi.NewRouter()
	r.Use(middleware.CORS(frontendURL))
	r.Use(middleware.RequestLog)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/logout", authHandler.Logout)
			r.With(requireAuth).Get("/user-details", authHandler.UserDetails)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", booksHandler.List)
			r.With(requireAuth).Post("/", booksHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", booksHandler.Get)
				r.Get("/cover", booksHandler.Cover)
				r.With(requireAuth).Put("/", booksHandler.Update)
				r.With(requireAuth).Delete("/", booksHandler.Delete)
				r.Get("/reviews", reviewsHandler.ListForBook)
				r.With(requireAuth).Post("/reviews", reviewsHandler.Create)
			})
		})

		r.Route("/reviews/{id}", func(r chi.Router) {
			r.Use(requireAuth)
			r.Put("/", reviewsHandler.Update)
			r.Delete("/", reviewsHandler.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/my-books", usersHandler.MyBooks)
			r.Get("/my-reviews", usersHandler.MyReviews)
		})
	})

	return r
}
