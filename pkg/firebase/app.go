package firebase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/angelmondragon/gearmarket-backend/pkg/config"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

var errProjectIDRequired = errors.New("firebase project id is required")

// App bundles the Admin SDK clients the backend uses.
type App struct {
	app       *firebase.App
	firestore *firestore.Client
	auth      *auth.Client
}

// New boots the Admin SDK. Credentials come from inline JSON, base64 JSON or a
// file, in that order; with none set the SDK falls back to application default credentials.
func New(ctx context.Context, cfg config.FirebaseConfig, logg *logger.Logger) (*App, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errProjectIDRequired
	}

	opts, source, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("initializing firebase auth client: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"project_id":  cfg.ProjectID,
			"credentials": source,
		}), "firebase app initialized")
	}

	return &App{app: app, firestore: fs, auth: authClient}, nil
}

func clientOptions(cfg config.FirebaseConfig) ([]option.ClientOption, string, error) {
	if raw := strings.TrimSpace(cfg.CredentialsJSON); raw != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(raw))}, "json", nil
	}
	if encoded := strings.TrimSpace(cfg.CredentialsBase64); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("decoding base64 firebase credentials: %w", err)
		}
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}, "base64", nil
	}
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		return []option.ClientOption{option.WithCredentialsFile(file)}, "file", nil
	}
	return nil, "default", nil
}

// Firestore returns the shared Firestore client.
func (a *App) Firestore() *firestore.Client {
	if a == nil {
		return nil
	}
	return a.firestore
}

// Auth returns the Firebase Auth admin client.
func (a *App) Auth() *auth.Client {
	if a == nil {
		return nil
	}
	return a.auth
}

// Ping issues a cheap read so readiness checks notice a broken Firestore connection.
func (a *App) Ping(ctx context.Context) error {
	if a == nil || a.firestore == nil {
		return errors.New("firebase app not initialized")
	}
	_, err := a.firestore.Collections(ctx).Next()
	if err != nil && !isIteratorDone(err) {
		return err
	}
	return nil
}

// Close releases the Firestore connection.
func (a *App) Close() error {
	if a == nil || a.firestore == nil {
		return nil
	}
	return a.firestore.Close()
}

func isIteratorDone(err error) bool {
	return errors.Is(err, iterator.Done)
}
