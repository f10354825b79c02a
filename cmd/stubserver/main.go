// Command stubserver runs a local ProcurePay backend for development and
// integration testing. It speaks the same HTTP contract the real backend
// does, backed by an in-memory store or, when STUB_DB_DSN is set, Postgres.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"procurepay/internal/config"
	"procurepay/internal/stub"
)

func main() {
	log := config.NewLogger()

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Debug("no configs/.env file found")
	}

	secret := os.Getenv("STUB_JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
		log.Warn("STUB_JWT_SECRET not set, using the development default")
	}

	mediaRoot := os.Getenv("STUB_MEDIA_ROOT")
	if mediaRoot == "" {
		mediaRoot = "media"
	}
	if err := os.MkdirAll(mediaRoot, 0o755); err != nil {
		log.WithError(err).Fatal("media root unavailable")
	}

	threshold := decimal.NewFromInt(1000)
	if raw := os.Getenv("STUB_L2_THRESHOLD"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			log.WithError(err).Fatalf("invalid STUB_L2_THRESHOLD %q", raw)
		}
		threshold = parsed
	}

	var store stub.Store
	if dsn := os.Getenv("STUB_DB_DSN"); dsn != "" {
		gs, err := stub.NewGormStore(dsn)
		if err != nil {
			log.WithError(err).Fatal("database connection failed")
		}
		log.Info("connected to PostgreSQL")
		store = gs
	} else {
		log.Info("using in-memory store")
		store = stub.NewMemStore()
	}

	svc := stub.NewService(store, threshold)
	handler := stub.NewHandler(svc, []byte(secret), mediaRoot, log)
	router := stub.NewRouter(handler)

	port := os.Getenv("STUB_PORT")
	if port == "" {
		port = "8000"
	}

	log.Infof("stub server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}
