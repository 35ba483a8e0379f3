package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opskitchen/shiftboard/internal/adapters/http/api"
	"github.com/opskitchen/shiftboard/internal/adapters/pos"
	"github.com/opskitchen/shiftboard/internal/adapters/repository"
	app "github.com/opskitchen/shiftboard/internal/app"
	"github.com/opskitchen/shiftboard/internal/config"
	"github.com/opskitchen/shiftboard/internal/domain/attribution"
	"github.com/opskitchen/shiftboard/internal/domain/leaderboard"
	"github.com/opskitchen/shiftboard/internal/domain/scoring"
	"github.com/opskitchen/shiftboard/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	mongoTimeout      = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	location := time.Local
	if cfg.Timezone != "" {
		location, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			os.Stderr.WriteString("invalid timezone: " + err.Error() + "\n")
			return
		}
	}

	creds := pos.Credentials{ClientID: cfg.POSClientID, ClientSecret: cfg.POSClientSecret}
	posClient := pos.NewClient(cfg.POSBaseURL, creds,
		pos.WithTokenSource(pos.NewTokenSource(cfg.POSBaseURL, creds, nil,
			time.Duration(cfg.TokenTTLHours)*time.Hour)),
		pos.WithPageSize(cfg.OrderPageSize),
		pos.WithMaxPages(cfg.MaxOrderPages),
		pos.WithTurnTimeCeiling(cfg.TurnTimeCeilingMinutes),
	)

	store, cleanup, err := newStore(ctx, cfg, log)
	if err != nil {
		os.Stderr.WriteString("failed to initialize store: " + err.Error() + "\n")
		return
	}
	defer cleanup()

	engine := attribution.NewEngine(posClient, posClient,
		attribution.WithLocation(location),
		attribution.WithLaborBatchSize(cfg.LaborBatchSize),
	)
	aggregator := leaderboard.New(
		leaderboard.WithScoringEngine(scoring.NewEngine(
			scoring.WithCriticalTurnTime(cfg.CriticalTurnTimeMinutes),
		)),
	)

	svc := app.New(engine, aggregator, store, app.NewStaticData(),
		app.WithLogger(log),
		app.WithWorkerCount(cfg.SyncWorkerCount),
		app.WithQueueSize(cfg.SyncQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithLookbackDays(cfg.LookbackDays),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop(context.Background())

	var auth *api.Authenticator
	if cfg.JWTSecret != "" {
		auth = api.NewAuthenticator([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience)
	} else {
		log.Warn(ctx, "JWT secret not set; sync endpoint is unauthenticated")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(svc, auth).Router(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// newStore selects Mongo when configured, else the in-memory store.
func newStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, func(), error) {
	if cfg.MongoURI == "" {
		log.Info(ctx, "using in-memory attribution store")
		return repository.NewMemStore(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, mongooptions.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, nil, err
	}

	log.Info(ctx, "using mongo attribution store",
		logger.String("database", cfg.MongoDatabase),
		logger.String("collection", cfg.MongoCollection))

	cleanup := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}
	return repository.NewMongoStore(client.Database(cfg.MongoDatabase), cfg.MongoCollection), cleanup, nil
}
