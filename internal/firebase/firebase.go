package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"claimsetter/backend/internal/config"
	"claimsetter/backend/internal/domain/admin"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// Scopes requested for the service credential.
var Scopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/datastore",
	"https://www.googleapis.com/auth/firebase",
	"https://www.googleapis.com/auth/identitytoolkit",
	"https://www.googleapis.com/auth/userinfo.email",
}

// NewApp loads the service credential and builds the Firebase app.
// Credential sources, in order: cfg.CredentialsFile (service account json
// file path), cfg.CredentialsJSON (raw json content), then Application
// Default Credentials. Every failure here is an InvalidCredential error and
// happens before any call to the identity service.
func NewApp(ctx context.Context, cfg config.Config) (*firebase.App, error) {
	creds, err := LoadCredentials(ctx, cfg)
	if err != nil {
		return nil, invalidCredential("load credentials", err)
	}

	// If ProjectID is set, pass it (useful when running locally)
	appCfg := &firebase.Config{ProjectID: cfg.ProjectID}
	if appCfg.ProjectID == "" {
		appCfg.ProjectID = creds.ProjectID
	}

	app, err := firebase.NewApp(ctx, appCfg, option.WithCredentials(creds))
	if err != nil {
		return nil, invalidCredential("init app", err)
	}
	return app, nil
}

func NewAuthClient(ctx context.Context, app *firebase.App) (*auth.Client, error) {
	c, err := app.Auth(ctx)
	if err != nil {
		return nil, invalidCredential("init auth client", err)
	}
	return c, nil
}

// LoadCredentials resolves and parses the service credential without
// contacting any Google API.
func LoadCredentials(ctx context.Context, cfg config.Config) (*google.Credentials, error) {
	switch {
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", cfg.CredentialsFile, err)
		}
		return parseCredentials(ctx, data)
	case cfg.CredentialsJSON != "":
		return parseCredentials(ctx, []byte(cfg.CredentialsJSON))
	default:
		// In Cloud Run / GCP, Application Default Credentials are used automatically.
		creds, err := google.FindDefaultCredentials(ctx, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("no credentials configured: %w", err)
		}
		return creds, nil
	}
}

func parseCredentials(ctx context.Context, data []byte) (*google.Credentials, error) {
	if len(data) == 0 {
		return nil, errors.New("credential file is empty")
	}
	creds, err := google.CredentialsFromJSON(ctx, data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credential: %w", err)
	}
	return creds, nil
}

func invalidCredential(op string, err error) error {
	return &admin.Error{Kind: admin.KindInvalidCredential, Op: op, Err: err}
}
