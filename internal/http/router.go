package router

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Renal37/cardledger/internal/logger"
	"github.com/Renal37/cardledger/internal/middlewares"
	"github.com/Renal37/cardledger/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Config struct {
	Endpoint       string
	AllowedOrigins []string
}

type Router struct {
	config   Config
	services middlewares.Services
}

// New собирает роутер со всеми обработчиками и middleware.
func New(config Config, services middlewares.Services) *Router {
	return &Router{
		config:   config,
		services: services,
	}
}

func (router *Router) get() chi.Router {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   router.config.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middlewares.ServiceInjectorMiddleware(router.services),
		logger.RequestLogger,
		middlewares.AuthMiddleware().WithExcludedPaths(
			"/api/tiers",
			"/ping",
		).Middleware,
	)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/balance", GetBalance)
		r.Get("/tiers", GetTiers)
		r.With(middlewares.JSONMiddleware[models.FeeRequest]).Post("/fees/quote", QuoteFee)

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", GetCards)
			r.With(middlewares.JSONMiddleware[models.NewCard]).Post("/", CreateCard)

			r.Route("/{id}", func(r chi.Router) {
				r.With(middlewares.JSONMiddleware[models.LimitUpdate]).Put("/limits", UpdateLimit)
				r.Post("/freeze", FreezeCard)
				r.Post("/unfreeze", UnfreezeCard)
				r.Delete("/", DeleteCard)
				r.Get("/actions", GetCardActions)
			})
		})

		r.Get("/transactions", GetTransactions)
		r.Get("/deposits/{ref}/events", WatchDeposit)
	})

	return r
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер.
func (router *Router) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              router.config.Endpoint,
		Handler:           router.get(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("server started", zap.String("address", router.config.Endpoint))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Log.Info("server stopped")
	return nil
}
