package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ArenaPull/internal/domain/repository"
	"ArenaPull/internal/handler/api"
	internalrepo "ArenaPull/internal/repository"
	"ArenaPull/internal/usecase"
	"ArenaPull/pkg/config"
	xhttp "ArenaPull/pkg/http"
	applogger "ArenaPull/pkg/logger"
	"ArenaPull/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	poller     *usecase.ChallengePoller
	registrar  *usecase.ModelRegistrar
	journal    repository.Journal
	pool       *queue.Pool
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	lgr *applogger.Logger,
	poller *usecase.ChallengePoller,
	registrar *usecase.ModelRegistrar,
	journal repository.Journal,
	pool *queue.Pool,
) *App {
	return &App{
		cfg:       cfg,
		logger:    lgr,
		poller:    poller,
		registrar: registrar,
		journal:   journal,
		pool:      pool,
	}
}

// Registrar exposes the registrar for the registration CLI modes.
func (a *App) Registrar() *usecase.ModelRegistrar { return a.registrar }

// Logger exposes the application logger.
func (a *App) Logger() *applogger.Logger { return a.logger }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// When the kafka journal is on, repeated log lines are aggregated and
	// shipped through the same producer.
	if kj, ok := a.journal.(*internalrepo.KafkaJournal); ok {
		a.logger.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          a.cfg.Kafka.Topic + ".logs",
			Publisher:      kj.Producer(),
		})
		defer a.logger.RemoveCollector()
	}

	if err := a.pool.Start(); err != nil {
		return err
	}

	if err := a.registrar.Preflight(ctx); err != nil {
		a.logger.Error("preflight failed", applogger.Error(err))
		return err
	}
	if err := a.registrar.EnsureRegistered(ctx, false); err != nil {
		// Registration failures do not stop the loop: already-registered
		// models can still upload.
		a.logger.Warn("model registration incomplete", applogger.Error(err))
	}

	handler := api.NewStatusHandler(a.logger, a.poller.Registry(), a.journal)
	a.httpServer = xhttp.NewServer(handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		a.poller.Run(ctx)
	}()
	a.logger.Info("poller started",
		applogger.String("arena", a.cfg.Arena.BaseURL),
		applogger.Duration("interval", a.cfg.Arena.PollInterval),
		applogger.Int("models", len(a.cfg.Models)))

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	<-pollerDone

	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}
	if err := a.pool.Stop(shutdownCtx); err != nil {
		a.logger.Warn("pool stop error", applogger.Error(err))
	}
	if err := a.journal.Close(); err != nil {
		a.logger.Warn("journal close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
