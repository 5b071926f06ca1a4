package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"claimsetter/backend/internal/config"
	"claimsetter/backend/internal/domain/admin"
	"claimsetter/backend/internal/domain/audit"
	"claimsetter/backend/internal/firebase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr, connectFirebase)
	stop()
	os.Exit(code)
}

// connectFirebase loads the service credential and builds the admin
// service. The returned func releases the clients.
func connectFirebase(ctx context.Context, cfg config.Config) (*admin.Service, func(), error) {
	app, err := firebase.NewApp(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	authClient, err := firebase.NewAuthClient(ctx, app)
	if err != nil {
		return nil, nil, err
	}

	svc := admin.NewService(admin.NewFirebaseProvider(authClient))
	closeFn := func() {}

	if cfg.AuditCollection != "" {
		fs, err := firebase.NewFirestore(ctx, app)
		if err != nil {
			return nil, nil, err
		}
		svc.SetAuditLog(audit.NewRepo(fs.Client, cfg.AuditCollection))
		closeFn = fs.Close
	}
	return svc, closeFn, nil
}
