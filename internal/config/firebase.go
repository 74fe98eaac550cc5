package config

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK. It returns nil without an
// error when no credentials file is configured.
func InitFirebase(ctx context.Context, cfg *Config) (*firebase.App, error) {
	if cfg.FirebaseCredentials == "" {
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		StorageBucket: cfg.FirebaseBucket,
	}, option.WithCredentialsFile(cfg.FirebaseCredentials))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	return app, nil
}
