package main

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	"petrecord/internal/adapters/auth/gateway"
	"petrecord/internal/adapters/capabilities/docintel"
	"petrecord/internal/adapters/qr"
	pg "petrecord/internal/adapters/storage/postgres"
	"petrecord/internal/platform/logger"
	"petrecord/internal/ports/auth"
	"petrecord/internal/ports/extraction"
	"petrecord/internal/router"

	"github.com/joho/godotenv"
)

// @title PetRecord API
// @version 1.0
// @description Historia clínica de mascotas: perfiles, registros, extracción de documentos y shares.
// @BasePath /
func main() {
	// .env es opcional; en deploy las vars vienen del entorno
	_ = godotenv.Load()

	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	var db *sql.DB
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		opened, err := pg.Open(dsn)
		if err != nil {
			log.Error("cannot open postgres", logger.F{"err": err.Error()})
			os.Exit(1)
		}
		db = opened
		log.Info("using postgres storage", nil)
	} else {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
	}

	var verifier auth.AuthVerifier
	if base := os.Getenv("AUTH_GATEWAY_URL"); base != "" {
		client, err := gateway.NewClient(gateway.Config{
			BaseURL: base,
			APIKey:  os.Getenv("AUTH_GATEWAY_API_KEY"),
		})
		if err != nil {
			log.Error("cannot build auth gateway client", logger.F{"err": err.Error()})
			os.Exit(1)
		}
		verifier = gateway.NewVerifier(client)
	} else {
		log.Warn("AUTH_GATEWAY_URL not set, running in dev auth mode", nil)
	}

	var (
		extractor   extraction.Extractor
		transcriber extraction.Transcriber
	)
	ai, err := docintel.NewClient(docintel.Config{
		BaseURL: os.Getenv("DOCINTEL_URL"),
		APIKey:  os.Getenv("DOCINTEL_API_KEY"),
		Model:   os.Getenv("DOCINTEL_MODEL"),
	})
	if err != nil {
		log.Error("cannot build docintel client", logger.F{"err": err.Error()})
		os.Exit(1)
	}
	if ai.IsConfigured() {
		extractor = ai
		transcriber = ai
		log.Info("document extraction enabled", logger.F{"model": os.Getenv("DOCINTEL_MODEL")})
	} else {
		log.Warn("docintel not configured, uploads will queue for manual review", nil)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		DB:           db,
		Extractor:    extractor,
		Transcriber:  transcriber,
		QR:           qr.NewRenderer(),
		BaseURL:      os.Getenv("SHARE_BASE_URL"),
		Log:          log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second, // uploads con extracción tardan más que un CRUD
	}

	log.Info("starting server", logger.F{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", logger.F{"err": err.Error()})
		os.Exit(1)
	}
}
