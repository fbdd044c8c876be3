package controllers

import (
	"net/http"

	"github.com/angelmondragon/gearmarket-backend/api/middleware"
	"github.com/angelmondragon/gearmarket-backend/api/responses"
	"github.com/angelmondragon/gearmarket-backend/api/validators"
	"github.com/angelmondragon/gearmarket-backend/internal/preferences"
	pkgerrors "github.com/angelmondragon/gearmarket-backend/pkg/errors"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
)

// GetNotificationSettings returns the caller's per-type email preferences.
func GetNotificationSettings(svc preferences.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := settingsUser(w, r, svc, logg)
		if !ok {
			return
		}
		prefs, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}

// UpdateNotificationSettings applies a partial update to the caller's preferences.
func UpdateNotificationSettings(svc preferences.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := settingsUser(w, r, svc, logg)
		if !ok {
			return
		}

		var body preferences.UpdateParams
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefs, err := svc.Update(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}

func settingsUser(w http.ResponseWriter, r *http.Request, svc preferences.Service, logg *logger.Logger) (string, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preferences service unavailable"))
		return "", false
	}
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return "", false
	}
	return userID, true
}
