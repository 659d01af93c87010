package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ledgerly/budget-api/internal/api"
	"github.com/ledgerly/budget-api/internal/api/handler"
	"github.com/ledgerly/budget-api/internal/core/domain"
	"github.com/ledgerly/budget-api/internal/core/service"
	mongodb "github.com/ledgerly/budget-api/internal/infrastructure/db/mongo"
	redisdb "github.com/ledgerly/budget-api/internal/infrastructure/db/redis"
	"github.com/ledgerly/budget-api/internal/infrastructure/queue"
	"github.com/ledgerly/budget-api/internal/pkg/config"
	"github.com/ledgerly/budget-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

//go:generate swag init -d ../../ -g cmd/server/main.go -o ../../docs --parseInternal

// @title                       Budget API
// @version                     1.0
// @description                 Personal budgets and their transactions, scoped to the signed-in user.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Session token as "Bearer <token>"
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log := logger.Init(logger.Options{})
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context) error {
	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "budget-api",
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	redisClient, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer redisClient.Close()

	users := mongodb.NewUserRepository(db)
	budgets := mongodb.NewBudgetRepository(db)
	transactions := mongodb.NewTransactionRepository(db)
	for _, idx := range []interface{ EnsureIndexes(context.Context) error }{users, budgets, transactions} {
		if err := idx.EnsureIndexes(ctx); err != nil {
			return err
		}
	}

	atomic, err := mongodb.SupportsTransactions(ctx, db)
	if err != nil {
		return err
	}
	log.Info().Bool("transactions", atomic).Msg("mongo deployment inspected")

	tokens, err := service.NewJWTService(cfg.JWTSecret)
	if err != nil {
		return err
	}

	journal := redisdb.NewCascadeJournal(redisClient)
	dispatcher := queue.NewCascadeDispatcher(cfg.Cascade.Workers, log)

	authSvc := service.NewAuthService(users, service.NewBcryptHasher(cfg.BcryptCost), tokens, domain.SessionTTL, log)
	transactor := mongodb.NewTransactor(mongoClient, atomic)
	budgetSvc := service.NewBudgetService(budgets, transactions, transactor, journal, dispatcher, log)
	transactionSvc := service.NewTransactionService(budgets, transactions, transactor, log)

	dispatcher.Start(ctx, budgetSvc, journal, cfg.Cascade.SweepInterval)

	e := api.NewRouter(api.Dependencies{
		Auth:         authSvc,
		Tokens:       tokens,
		Budgets:      budgetSvc,
		Transactions: transactionSvc,
		HealthChecks: map[string]handler.HealthCheck{
			"mongodb": func(ctx context.Context) error { return mongodb.Ping(ctx, mongoClient) },
			"redis":   func(ctx context.Context) error { return redisdb.Ping(ctx, redisClient) },
		},
		Log: log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	dispatcher.Wait()
	return nil
}
