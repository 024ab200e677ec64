package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/parkeat/internal/api"
	m "github.com/RoyceAzure/lab/parkeat/internal/api/middleware"
	"github.com/RoyceAzure/lab/parkeat/internal/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// SetupRouter authLimiter 為 nil 時登入/註冊不限流
func SetupRouter(server *api.Server, authLimiter *ratelimit.TokenBucket, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.RecoverMiddleware(logger))

	limited := func(r chi.Router) chi.Router { return r }
	if authLimiter != nil {
		limited = func(r chi.Router) chi.Router {
			return r.With(ratelimit.NewRateLimitMiddleware(authLimiter, ratelimit.ClientIP))
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			limited(r).Post("/login", server.AuthHandler.Login)
			limited(r).Post("/register", server.AuthHandler.Register)
			r.Post("/logout", server.AuthHandler.Logout)
			r.Get("/me", server.AuthHandler.Me)
			r.Patch("/me", server.AuthHandler.UpdateMe)
		})

		r.Get("/onboarding", server.AuthHandler.Onboarding)
		r.Post("/onboarding", server.AuthHandler.CompleteOnboarding)

		r.Route("/stores", func(r chi.Router) {
			r.Get("/", server.StoreHandler.List)
			r.Get("/{storeID}", server.StoreHandler.Get)
			r.Get("/{storeID}/reviews", server.StoreHandler.Reviews)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", server.CartHandler.Get)
			r.Delete("/", server.CartHandler.Clear)
			r.Post("/items", server.CartHandler.AddItem)
			r.Patch("/items/{productID}", server.CartHandler.UpdateItem)
			r.Delete("/items/{productID}", server.CartHandler.RemoveItem)
			r.Put("/table", server.CartHandler.SetTableCode)
		})

		r.Post("/checkout", server.OrderHandler.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", server.OrderHandler.List)
			r.Get("/{orderID}", server.OrderHandler.Get)
			r.Post("/{orderID}/cancel", server.OrderHandler.Cancel)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", server.NotificationHandler.List)
			r.Delete("/", server.NotificationHandler.Clear)
			r.Post("/read-all", server.NotificationHandler.MarkAllAsRead)
			r.Post("/{id}/read", server.NotificationHandler.MarkAsRead)
		})

		r.Route("/location", func(r chi.Router) {
			r.Get("/", server.LocationHandler.Get)
			r.Post("/request", server.LocationHandler.Request)
			r.Post("/skip", server.LocationHandler.Skip)
		})
	})

	return r
}

// Routes 列出所有路由，啟動時印出用
func Routes(r chi.Routes) []string {
	var routes []string
	_ = chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	return routes
}
