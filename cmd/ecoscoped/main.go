// Command ecoscoped is the Ecoscope platform service.
// It serves the REST API, the store-change webhook endpoint, and a health
// check, backed by Postgres and blob storage.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/ecoscope/ecoscope/internal/api"
	"github.com/ecoscope/ecoscope/internal/evaluation"
	"github.com/ecoscope/ecoscope/internal/platform"
	"github.com/ecoscope/ecoscope/internal/registry"
	"github.com/ecoscope/ecoscope/internal/webhook"
	"github.com/ecoscope/ecoscope/pkg/assess"
)

type config struct {
	Port          string
	DatabaseURL   string
	APIKey        string
	WebhookSecret string

	StorageBackend string // local, s3, gcs
	LocalPath      string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	GCSBucket      string
}

func loadConfig() config {
	return config{
		Port:          envOrDefault("PORT", "8080"),
		DatabaseURL:   envOrDefault("DATABASE_URL", "postgres://localhost:5432/ecoscope?sslmode=disable"),
		APIKey:        os.Getenv("API_KEY"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),

		StorageBackend: envOrDefault("STORAGE_BACKEND", "local"),
		LocalPath:      envOrDefault("LOCAL_STORAGE_PATH", "/tmp/ecoscope-data"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Region:       os.Getenv("S3_REGION"),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		GCSBucket:      os.Getenv("GCS_BUCKET"),
	}
}

func main() {
	cfg := loadConfig()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	if err := platform.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	storage, err := newStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}

	// Initialize services
	registrySvc := registry.NewService(db)
	evaluator := assess.NewEvaluator(assess.Defaults())
	evaluationSvc := evaluation.NewService(registrySvc, storage, evaluator)

	apiHandler := api.NewHandler(db, registrySvc, evaluationSvc, nil)
	webhookHandler := webhook.NewHandler([]byte(cfg.WebhookSecret), registrySvc, evaluationSvc)

	// Set up HTTP routes. The webhook carries its own HMAC and the health
	// check must stay open, so only the API routes sit behind the key check.
	apiMux := http.NewServeMux()
	apiHandler.RegisterRoutes(apiMux)

	mux := http.NewServeMux()
	mux.Handle("/api/", api.APIKeyAuth(cfg.APIKey)(apiMux))
	mux.Handle("POST /v1/webhooks/store", webhookHandler)
	mux.HandleFunc("GET /healthz", healthHandler(db))

	handler := api.CORS(mux)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		log.Printf("starting ecoscoped on :%s (storage=%s)", cfg.Port, cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func newStorage(ctx context.Context, cfg config) (evaluation.StorageClient, error) {
	switch cfg.StorageBackend {
	case "s3":
		return evaluation.NewS3Storage(ctx, evaluation.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "gcs":
		return evaluation.NewGCSStorage(ctx, cfg.GCSBucket)
	default:
		return evaluation.NewLocalStorage(cfg.LocalPath), nil
	}
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
