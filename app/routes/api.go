// Package routes wires controllers onto the router.
package routes

import (
	"net/http"
	"time"

	"github.com/saydalia/saydalia/app/controllers"
	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/pkg/metrics"
	"github.com/saydalia/saydalia/pkg/middleware"
	"github.com/saydalia/saydalia/pkg/rbac"
	"github.com/saydalia/saydalia/pkg/reqid"
	"github.com/saydalia/saydalia/pkg/router"
)

// API carries the handlers the route table mounts. GraphQL is a plain
// handler because the schema is built once at boot.
type API struct {
	Auth          *controllers.AuthController
	Users         *controllers.UserController
	Pharmacies    *controllers.PharmacyController
	Orders        *controllers.OrderController
	Notifications *controllers.NotificationController
	Dashboard     *controllers.DashboardController
	Health        *controllers.HealthController
	GraphQL       http.HandlerFunc

	// Resolve maps a token subject to a live user; see middleware.Auth.
	Resolve middleware.UserResolver
}

// Register mounts the whole HTTP surface: global middleware, the public
// catalog, authenticated routes, and the admin group.
func Register(r *router.Router, api API) {
	r.Use(
		metrics.Middleware(),
		reqid.Middleware(),
		middleware.Recovery,
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(300, time.Minute),
	)

	r.Get("/health", "health", api.Health.Check)
	r.HandleFunc("/metrics", metrics.Handler())

	root := r.Group("/api")
	auth := middleware.Auth(api.Resolve)

	// Public.
	root.Post("/auth/register", "auth.register", api.Auth.Register)
	root.Post("/auth/login", "auth.login", api.Auth.Login)
	root.Get("/pharmacies", "pharmacies.index", api.Pharmacies.Index)
	root.Get("/pharmacies/{id}", "pharmacies.show", api.Pharmacies.Show)
	root.Get("/pharmacies/{id}/medicines", "pharmacies.medicines", api.Pharmacies.Medicines)
	if api.GraphQL != nil {
		root.Post("/graphql", "graphql", api.GraphQL)
	}

	// Any authenticated user.
	user := root.Group("", auth)
	user.Get("/users/{id}", "users.show", api.Users.Show)
	user.Put("/users/{id}", "users.update", api.Users.Update)
	user.Post("/orders", "orders.create", api.Orders.Create)
	user.Get("/orders", "orders.index", api.Orders.Index)
	user.Get("/orders/{id}", "orders.show", api.Orders.Show)
	user.Get("/notifications", "notifications.index", api.Notifications.Index)
	user.Get("/notifications/unread", "notifications.unread", api.Notifications.UnreadCount)
	user.Patch("/notifications/{id}/read", "notifications.read", api.Notifications.MarkRead)
	user.Get("/notifications/stream", "notifications.stream", api.Notifications.Stream)

	// Pharmacy admins only.
	admin := root.Group("", auth, middleware.AdminOnly)
	admin.Post("/pharmacies", "pharmacies.create", api.Pharmacies.Create)
	admin.Put("/pharmacies/{id}", "pharmacies.update", api.Pharmacies.Update)
	admin.Put("/pharmacies/{id}/icon", "pharmacies.icon", api.Pharmacies.UploadIcon)
	admin.Delete("/pharmacies/{id}", "pharmacies.delete", api.Pharmacies.Delete)
	admin.Put("/pharmacies/{id}/medicines", "medicines.replace", api.Pharmacies.ReplaceMedicines)
	admin.Post("/pharmacies/{id}/medicines", "medicines.create", api.Pharmacies.AddMedicine)
	admin.Put("/pharmacies/{id}/medicines/{medicineId}", "medicines.update", api.Pharmacies.UpdateMedicine)
	admin.Patch("/pharmacies/{id}/medicines/{medicineId}/stock", "medicines.stock", api.Pharmacies.SetStock)
	admin.Delete("/pharmacies/{id}/medicines/{medicineId}", "medicines.delete", api.Pharmacies.DeleteMedicine)
	admin.Get("/pharmacies/{id}/orders", "pharmacies.orders", api.Orders.PharmacyOrders)
	admin.Patch("/orders/{id}/status", "orders.status", api.Orders.UpdateStatus)

	// Aggregate admin views use the role middleware directly.
	views := root.Group("/admin", auth, rbac.HasRole(models.RoleAdmin))
	views.Get("/dashboard", "admin.dashboard", api.Dashboard.Show)
	views.Get("/pharmacy", "admin.pharmacy", api.Pharmacies.Mine)
	views.Get("/pharmacy/orders", "admin.pharmacy.orders", api.Orders.Index)
}
