package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"

	"device-hierarchy/internal/auth"
	"device-hierarchy/internal/hierarchy/application"
	"device-hierarchy/internal/hierarchy/infrastructure/hostapi"
	hierpostgres "device-hierarchy/internal/hierarchy/infrastructure/postgres"
	hierhttp "device-hierarchy/internal/hierarchy/interfaces/http"
	hiermetrics "device-hierarchy/internal/hierarchy/metrics"
	hiernotify "device-hierarchy/internal/hierarchy/notify"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := application.LoadConfig()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	source, sink, cleanup, err := buildAdapters(logger)
	if err != nil {
		logger.Fatalf("adapter error: %v", err)
	}
	defer cleanup()

	var notifier hiernotify.Notifier
	if cfg.WebhookURL != "" {
		notifier = hiernotify.NewWebhookNotifier(cfg.WebhookURL)
	}

	metrics := hiermetrics.New()
	runner := application.NewRunner(source, sink, cfg, notifier, metrics, logger)

	recalcHandler, err := hierhttp.NewRecalculateHandler(runner, logger)
	if err != nil {
		logger.Fatalf("handler error: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/hierarchy/recalculate", recalcHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	secret := []byte(os.Getenv("JWT_SECRET"))
	var handler http.Handler = mux
	if len(secret) > 0 {
		mw := auth.NewMiddleware(secret, []string{"/api/health", "/metrics"}, "/api/v1/hierarchy/")
		handler = mw.Wrap(mux)
	} else {
		logger.Printf("event=auth_disabled reason=empty_jwt_secret")
	}

	addr := getenvDefault("HTTP_ADDR", ":8080")
	logger.Printf("event=server_start addr=%s table=%s", addr, cfg.TableName)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}

// buildAdapters selects the record source/sink: a Postgres mirror when
// DATABASE_URL is set, otherwise the spreadsheet host's record API.
func buildAdapters(logger *log.Logger) (application.RecordSource, application.RecordSink, func(), error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		repo := hierpostgres.NewTableRepository(db)
		logger.Printf("event=source_selected kind=postgres")
		return repo, repo, func() { db.Close() }, nil
	}

	client, err := hostapi.NewClient(
		getenvDefault("HOST_API_URL", "http://localhost:8484"),
		os.Getenv("HOST_DOC_ID"),
		os.Getenv("HOST_API_TOKEN"),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Printf("event=source_selected kind=hostapi")
	return client, client, func() {}, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
