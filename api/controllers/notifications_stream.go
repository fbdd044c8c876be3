package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/gearmarket-backend/api/middleware"
	"github.com/angelmondragon/gearmarket-backend/api/responses"
	"github.com/angelmondragon/gearmarket-backend/internal/notifications"
	pkgerrors "github.com/angelmondragon/gearmarket-backend/pkg/errors"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
)

const (
	streamEventRecords = "notifications"
	streamEventUnread  = "unread_count"
	streamEventError   = "error"

	streamBuffer = 8
)

// StreamKeepAlive is how often an idle stream writes a comment line.
var StreamKeepAlive = 25 * time.Second

type streamEvent struct {
	name    string
	payload any
}

// StreamNotifications pushes the caller's latest records and unread count as
// server-sent events until the client disconnects or its token expires.
func StreamNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	if logg == nil {
		logg = logger.Nop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r, svc, logg)
		if !ok {
			return
		}
		ctx := r.Context()

		events := make(chan streamEvent, streamBuffer)
		// done releases handlers blocked on a full buffer once the loop exits.
		done := make(chan struct{})
		push := func(ev streamEvent) {
			select {
			case events <- ev:
			case <-done:
			case <-ctx.Done():
			}
		}

		unsubscribe, err := svc.Subscribe(ctx, userID, notifications.Handlers{
			OnRecords: func(records []notifications.Record) {
				push(streamEvent{name: streamEventRecords, payload: records})
			},
			OnUnreadCount: func(count int64) {
				push(streamEvent{name: streamEventUnread, payload: map[string]int64{"count": count}})
			},
			OnError: func(err error) {
				code := pkgerrors.CodeOf(err)
				push(streamEvent{name: streamEventError, payload: map[string]any{
					"code":      string(code),
					"message":   pkgerrors.MetadataFor(code).PublicMessage,
					"retryable": pkgerrors.Retryable(err),
				}})
			},
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		defer func() {
			close(done)
			unsubscribe()
		}()

		rc := http.NewResponseController(w)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		if err := rc.Flush(); err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "notifications.stream.flush_unsupported")
			return
		}

		ticker := time.NewTicker(StreamKeepAlive)
		defer ticker.Stop()

		var expired <-chan time.Time
		if p, ok := middleware.PrincipalFromContext(ctx); ok && !p.ExpiresAt.IsZero() {
			timer := time.NewTimer(time.Until(p.ExpiresAt))
			defer timer.Stop()
			expired = timer.C
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-expired:
				_ = writeStreamEvent(w, streamEvent{name: streamEventError, payload: map[string]string{
					"code":    string(pkgerrors.CodeUnauthorized),
					"message": "token expired",
				}})
				_ = rc.Flush()
				return
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
			case ev := <-events:
				if err := writeStreamEvent(w, ev); err != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "notifications.stream.write_failed")
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeStreamEvent(w http.ResponseWriter, ev streamEvent) error {
	body, err := json.Marshal(ev.payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, body)
	return err
}
