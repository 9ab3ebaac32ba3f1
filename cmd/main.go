package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	elaute "github.com/ikyriazi/elaute-api"
	routing "github.com/ikyriazi/elaute-api/pkg/api"
	"github.com/ikyriazi/elaute-api/pkg/browse"
	"github.com/ikyriazi/elaute-api/pkg/config"
	"github.com/ikyriazi/elaute-api/pkg/database"
	"github.com/ikyriazi/elaute-api/pkg/session"
	"github.com/ikyriazi/elaute-api/pkg/sync"
)

func setupTracing(ctx context.Context) error {
	exp, err := otlptracegrpc.New(ctx)
	if err != nil {
		return err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceName("elaute-api"),
			),
		),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
	return nil
}

// openStore picks the session store: postgres, then redis, then memory.
// The returned purge function is nil when the store expires sessions itself.
func openStore(ctx context.Context, cfg *config.Config) (session.Store, func(context.Context) (int64, error), error) {
	switch {
	case cfg.DatabaseURL != "":
		db, err := database.Open(ctx, cfg.DatabaseURL, cfg.OTelEnabled)
		if err != nil {
			return nil, nil, err
		}
		store := database.NewSessionStore(db, cfg.SessionTTL)
		return store, store.PurgeExpired, nil
	case cfg.RedisURL != "":
		client, err := session.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Using redis session store")
		return session.NewRedisStore(client, cfg.SessionTTL), nil, nil
	default:
		slog.Info("Using in-memory session store")
		return session.NewMemoryStore(cfg.SessionTTL), nil, nil
	}
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	if cfg.OTelEnabled {
		if err := setupTracing(ctx); err != nil {
			slog.Error("Tracing setup failed", "error", err)
			os.Exit(1)
		}
	}

	store, purge, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Session store unavailable", "error", err)
		os.Exit(1)
	}

	svc := browse.NewService(store)
	reload := func(ctx context.Context) error {
		c, err := sync.Sync(ctx, sync.Options{
			Source:      cfg.Source,
			RecordsPath: cfg.RecordsPath,
			Fetch:       cfg.FetchOptions(),
		})
		if err != nil {
			return err
		}
		svc.SetCatalogue(c)
		return nil
	}

	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Server"},
		AllowCredentials: false,
	}))

	humaConfig := huma.DefaultConfig("e-laute API", "1.0.0")
	humaConfig.OpenAPI.Info.Description = elaute.Readme
	humaConfig.OpenAPI.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	humaConfig.DocsPath = "/"
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.PublicURL()},
	}
	api := humachi.New(router, humaConfig)

	routing.Setup(api, routing.Deps{
		Browse: svc,
		Reload: reload,
		Secret: cfg.JWTSecret,
	})

	var handler http.Handler = router
	if cfg.OTelEnabled {
		handler = otelhttp.NewHandler(router, "api")
	}
	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: handler,
	}

	go func() {
		slog.Info("Starting server", "addr", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// A failed load leaves the grid uninitialised; operations answer 503
	// until a reload succeeds.
	if err := reload(ctx); err != nil {
		slog.Error("Catalogue unavailable", "source", cfg.Source, "error", err)
	}

	if purge == nil {
		select {}
	}
	for {
		time.Sleep(time.Hour)

		n, err := purge(ctx)
		if err != nil {
			slog.Error("Session purge failed", "error", err)
			continue
		}
		slog.Debug("Expired sessions purged", "count", n)
	}
}
