package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/gearmarket-backend/api/controllers"
	"github.com/angelmondragon/gearmarket-backend/api/middleware"
	"github.com/angelmondragon/gearmarket-backend/internal/notifications"
	"github.com/angelmondragon/gearmarket-backend/internal/preferences"
	"github.com/angelmondragon/gearmarket-backend/pkg/config"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
)

// Dependencies groups everything the HTTP surface needs.
type Dependencies struct {
	Config        *config.Config
	Logger        *logger.Logger
	Notifications notifications.Service
	Preferences   preferences.Service
	// Pingers are checked by /health/ready, keyed by dependency name.
	Pingers map[string]controllers.Pinger
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins, cfg.App.IsDev()),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Delete("/", controllers.DeleteAllNotifications(deps.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(deps.Notifications, logg))
			r.Get("/stream", controllers.StreamNotifications(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Delete("/{notificationId}", controllers.DeleteNotification(deps.Notifications, logg))
		})

		r.Route("/notification-settings", func(r chi.Router) {
			r.Get("/", controllers.GetNotificationSettings(deps.Preferences, logg))
			r.Put("/", controllers.UpdateNotificationSettings(deps.Preferences, logg))
		})
	})

	return r
}
