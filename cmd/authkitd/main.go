package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/joho/godotenv/autoload"

	"github.com/treeatlas/authkit/internal/migrations"
	mfamodule "github.com/treeatlas/authkit/modules/mfa"
	"github.com/treeatlas/authkit/pkg/audit"
	"github.com/treeatlas/authkit/pkg/logger"
	"github.com/treeatlas/authkit/pkg/mfacrypto"
	"github.com/treeatlas/authkit/pkg/pg"
	mfasvc "github.com/treeatlas/authkit/svc/mfa"
)

type serverConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Issuer          string        `env:"MFA_ISSUER" envDefault:"Costa Rica Tree Atlas"`
}

func main() {
	log := logger.New(logger.WithService("authkitd"))
	logger.SetAsDefault(log)

	if err := run(log); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srvCfg serverConfig
	if err := env.Parse(&srvCfg); err != nil {
		return err
	}
	var pgCfg pg.Config
	if err := env.Parse(&pgCfg); err != nil {
		return err
	}

	cipher, err := mfacrypto.NewFromConfig()
	if err != nil {
		return err
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, migrations.FS, pgCfg, log); err != nil {
		return err
	}

	auditLog := audit.NewLogger(audit.NewPostgresStorage(pool))
	svc := mfasvc.New(mfasvc.NewPostgresStore(pool), auditLog, cipher,
		mfasvc.WithIssuer(srvCfg.Issuer),
		mfasvc.WithLogger(log),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", healthHandler(pg.Healthcheck(pool)))
	r.Mount("/mfa", mfamodule.NewService(svc, mfamodule.WithLogger(log)).Handle())

	server := &http.Server{
		Addr:              srvCfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srvCfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

func healthHandler(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
