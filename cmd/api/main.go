package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"claimsetter/backend/internal/config"
	"claimsetter/backend/internal/domain/admin"
	"claimsetter/backend/internal/domain/audit"
	"claimsetter/backend/internal/firebase"
	apihttp "claimsetter/backend/internal/http"
	"claimsetter/backend/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(os.Stderr, cfg.LogLevel)

	app, err := firebase.NewApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("firebase app init failed")
	}

	authClient, err := firebase.NewAuthClient(ctx, app)
	if err != nil {
		log.Fatal().Err(err).Msg("firebase auth client init failed")
	}

	adminSvc := admin.NewService(admin.NewFirebaseProvider(authClient))

	// Audit log (optional - only if a collection is configured)
	if cfg.AuditCollection != "" {
		fs, err := firebase.NewFirestore(ctx, app)
		if err != nil {
			log.Fatal().Err(err).Msg("firestore init failed")
		}
		defer fs.Close()
		adminSvc.SetAuditLog(audit.NewRepo(fs.Client, cfg.AuditCollection))
		log.Info().Str("collection", cfg.AuditCollection).Msg("audit log enabled")
	} else {
		log.Info().Msg("ADMIN_AUDIT_COLLECTION not set, audit log disabled")
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:      cfg,
		Verifier: authClient,
		AdminSvc: adminSvc,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Port).Str("project", cfg.ProjectID).Msg("admin API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("shutting down...")
	_ = srv.Shutdown(ctxShutdown)
}
