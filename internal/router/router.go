package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "petrecord/internal/adapters/storage/memory"
	pg "petrecord/internal/adapters/storage/postgres"
	"petrecord/internal/domain/documents"
	"petrecord/internal/domain/labtrends"
	"petrecord/internal/domain/merge"
	"petrecord/internal/domain/pets"
	"petrecord/internal/domain/records"
	"petrecord/internal/domain/sharing"
	"petrecord/internal/middleware"
	"petrecord/internal/platform/logger"
	"petrecord/internal/ports/auth"
	"petrecord/internal/ports/extraction"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "petrecord/docs"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Capabilities de extracción. Nil = el servicio corre sin IA y los
	// uploads quedan en "manual".
	Extractor   extraction.Extractor
	Transcriber extraction.Transcriber

	// QR para los links de compartir. Nil = sin imagen, el link alcanza.
	QR sharing.QRRenderer

	// Base pública para armar share URLs (p.ej. https://app.example.com).
	BaseURL string

	Log logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		petRepo     pets.Repository
		recordsRepo records.Repository
		sharesRepo  sharing.Repository
		docsRepo    documents.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back to in-memory", logger.F{"err": err.Error()})
			}
		}
	}

	if db != nil {
		petRepo = pg.NewPetsRepo(db)
		recordsRepo = pg.NewRecordsRepo(db)
		sharesRepo = pg.NewSharingRepo(db)
		docsRepo = pg.NewDocumentsRepo(db)
	} else {
		memRecords := mem.NewRecordsRepo()
		memShares := mem.NewSharingRepo()
		memDocs := mem.NewDocumentsRepo()
		petRepo = mem.NewPetRepo(memRecords, memShares, memDocs)
		recordsRepo = memRecords
		sharesRepo = memShares
		docsRepo = memDocs
	}

	// Services por módulo
	petsSvc := pets.NewService(petRepo)
	recordsSvc := records.NewService(recordsRepo)
	mergeSvc := merge.NewService(petsSvc, recordsRepo, log)
	trendsSvc := labtrends.NewService(recordsRepo)
	sharingSvc := sharing.NewService(sharesRepo, petsSvc, recordsRepo, opts.QR, opts.BaseURL)
	docsSvc := documents.NewService(docsRepo, mergeSvc, opts.Extractor, opts.Transcriber, log)

	r.Get("/status", statusHandler(docsSvc))

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc)
	records.RegisterRoutes(r, recordsSvc, petsSvc)
	labtrends.RegisterRoutes(r, trendsSvc, petsSvc)
	sharing.RegisterRoutes(r, sharingSvc)
	documents.RegisterRoutes(r, docsSvc, petsSvc)

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}

func statusHandler(docsSvc *documents.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if docsSvc.AIEnabled() {
			_, _ = w.Write([]byte(`{"status":"ok","aiEnabled":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","aiEnabled":false}`))
	}
}
