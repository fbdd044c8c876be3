package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/gearmarket-backend/api/responses"
)

var defaultCORSOrigins = []string{
	"https://gearmarket.kr",
	"https://www.gearmarket.kr",
	"https://admin.gearmarket.kr",
}

// CORS applies the browser origin policy. An empty list means the production
// origins, plus localhost:3000 when dev is set. EventSource cannot send custom
// headers, so Last-Event-ID is the only non-standard header the stream needs.
func CORS(origins []string, dev bool) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(origins)+1)
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		allowed = append(allowed, defaultCORSOrigins...)
	}
	if dev {
		allowed = append(allowed, "http://localhost:3000")
	}

	return cors.New(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Last-Event-ID"},
		ExposedHeaders:   []string{responses.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler
}
