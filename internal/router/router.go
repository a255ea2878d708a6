package router

import (
	"net/http"

	"tiendita/internal/handler"
	"tiendita/internal/middleware"
	"tiendita/internal/service"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers wired into the router.
type Handlers struct {
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
	User     *handler.UserHandler
}

// New creates the HTTP router with all routes and middleware configured.
// Session resolution runs on every request; per-route guards decide whether
// an anonymous request is allowed through.
func New(h Handlers, auth service.AuthService, cookieName string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// No authentication required.
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("POST /api/auth/reset-password", h.Auth.ResetPassword)

	mux.HandleFunc("GET /api/products", h.Product.GetAll)
	mux.HandleFunc("GET /api/products/{id}", h.Product.GetByID)
	mux.HandleFunc("GET /api/products/{id}/image", h.Product.GetImage)
	mux.HandleFunc("GET /api/users/{id}/image", h.Auth.ProfileImage)

	// Session required.
	user := middleware.RequireUser(logger)
	mux.Handle("GET /api/auth/me", user(http.HandlerFunc(h.Auth.Me)))
	mux.Handle("PUT /api/auth/me", user(http.HandlerFunc(h.Auth.UpdateMe)))
	mux.Handle("PUT /api/auth/me/image", user(http.HandlerFunc(h.Auth.UploadProfileImage)))
	mux.Handle("GET /api/cart", user(http.HandlerFunc(h.Cart.Get)))
	mux.Handle("POST /api/cart", user(http.HandlerFunc(h.Cart.Add)))
	mux.Handle("DELETE /api/cart/{lineID}", user(http.HandlerFunc(h.Cart.RemoveLine)))
	mux.Handle("POST /api/checkout", user(http.HandlerFunc(h.Checkout.Checkout)))
	mux.Handle("GET /api/orders", user(http.HandlerFunc(h.Order.History)))
	mux.Handle("GET /api/orders/{id}", user(http.HandlerFunc(h.Order.GetByID)))

	// Admin role required.
	admin := middleware.RequireAdmin(logger)
	mux.Handle("POST /api/admin/products", admin(http.HandlerFunc(h.Product.Create)))
	mux.Handle("PUT /api/admin/products/{id}", admin(http.HandlerFunc(h.Product.Update)))
	mux.Handle("DELETE /api/admin/products/{id}", admin(http.HandlerFunc(h.Product.Delete)))
	mux.Handle("PUT /api/admin/products/{id}/image", admin(http.HandlerFunc(h.Product.UploadImage)))
	mux.Handle("GET /api/admin/users", admin(http.HandlerFunc(h.User.List)))
	mux.Handle("POST /api/admin/users", admin(http.HandlerFunc(h.User.Create)))
	mux.Handle("GET /api/admin/users/{id}", admin(http.HandlerFunc(h.User.GetByID)))
	mux.Handle("PUT /api/admin/users/{id}", admin(http.HandlerFunc(h.User.Update)))
	mux.Handle("DELETE /api/admin/users/{id}", admin(http.HandlerFunc(h.User.Delete)))
	mux.Handle("GET /api/admin/sales", admin(http.HandlerFunc(h.Order.Sales)))

	// Apply middleware in order: Recovery -> Logging -> CORS -> SessionAuth
	var root http.Handler = mux
	root = middleware.SessionAuth(auth, cookieName, logger)(root)
	root = middleware.CORS(root)
	root = middleware.Logging(logger)(root)
	root = middleware.Recovery(logger)(root)

	return root
}
