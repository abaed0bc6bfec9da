package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pentapillisuresh/getbid/config"
	"github.com/pentapillisuresh/getbid/db"
	"github.com/pentapillisuresh/getbid/db/migrations"
	"github.com/pentapillisuresh/getbid/internal/handlers"
	"github.com/pentapillisuresh/getbid/internal/lifecycle"
	"github.com/pentapillisuresh/getbid/logger"
)

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("POSTGRES_CONN env variable is not set")
	}

	zl, err := logger.New(cfg.Debug)
	if err != nil {
		log.Fatalf("cannot build logger: %v", err)
	}
	defer zl.Sync()

	dbConn, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("cannot connect to db", zap.Error(err))
	}
	defer dbConn.Close()

	if cfg.MigrationsDir != "" {
		if err := migrations.Run(dbConn.DB, cfg.MigrationsDir); err != nil {
			zl.Fatal("migrations failed", zap.Error(err))
		}
	}

	store := db.NewStorage(dbConn)
	svc := lifecycle.NewService(store, zl)
	h := handlers.NewHandler(svc, zl)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		r.Post("/tenders/new", h.CreateTenderHandler)
		r.Get("/tenders", h.GetTendersHandler)
		r.Get("/tenders/{tenderId}", h.GetTenderHandler)
		r.Put("/tenders/{tenderId}/archive", h.ArchiveTenderHandler)
		r.Get("/tenders/{tenderId}/stage", h.GetTenderStageHandler)
		r.Get("/tenders/{tenderId}/ranking", h.RankBidsHandler)
		r.Get("/tenders/{tenderId}/bids", h.GetBidsForTenderHandler)
		r.Post("/tenders/{tenderId}/award", h.AwardHandler)

		r.Post("/bids/new", h.SubmitBidHandler)
		r.Get("/bids/{bidId}", h.GetBidHandler)
		r.Put("/bids/{bidId}/evaluation/technical", h.RecordTechnicalEvaluationHandler)
		r.Put("/bids/{bidId}/evaluation/financial", h.RecordFinancialEvaluationHandler)
		r.Put("/bids/{bidId}/disqualify", h.DisqualifyBidHandler)

		r.Post("/documents/upload", h.UploadDocumentHandler)
		r.Get("/documents/{documentId}", h.GetDocumentHandler)
	})

	zl.Info("starting server", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
