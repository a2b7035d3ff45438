package main

import (
	"context"
	"net/http"
	"time"

	api "github.com/certiflow/certiflow/internal/api/http"
	auth "github.com/certiflow/certiflow/internal/auth/middleware"
	"github.com/certiflow/certiflow/internal/config"
	"github.com/certiflow/certiflow/internal/db"
	"github.com/certiflow/certiflow/internal/exam"
	"github.com/certiflow/certiflow/internal/logging"
	"github.com/certiflow/certiflow/internal/rbac"
	syncx "github.com/certiflow/certiflow/internal/sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DB.Driver), cfg.DB.DSN)
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}

	catalog := exam.NewSQLCatalog(dbh, cfg.DB.Driver)
	sessions := exam.NewSQLSessionStore(dbh, cfg.DB.Driver)
	events := syncx.NewEventRepo(dbh)
	svc := exam.NewService(catalog, sessions, events, log, exam.ServiceConfig{
		PassThreshold:  cfg.Scoring.PassThreshold,
		AssessmentCode: cfg.Scoring.AssessmentCode,
	})

	authSvc := auth.NewAuthService(cfg.Auth.HMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(api.RequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("exam:create")).
			Post("/exams", api.UpsertExamHandler(catalog))
		pr.With(rbac.Require("exam:view")).
			Get("/exams/{examID}", api.GetExamHandler(catalog))

		pr.With(rbac.Require("session:create")).
			Post("/exams/sessions", api.CreateSessionHandler(svc))
		pr.With(rbac.Require("session:submit")).
			Post("/exams/sessions/{candidateExamID}/submit", api.SubmitExamHandler(svc))
		pr.With(rbac.RequireOwnerOr("session:view-all", api.SessionOwner(svc))).
			Get("/exams/sessions/{candidateExamID}", api.GetSessionHandler(svc))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})
	r.Handle("/metrics", promhttp.Handler())

	log.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("db", cfg.DB.Driver),
		zap.Float64("pass_threshold", cfg.Scoring.PassThreshold))
	log.Fatal("server exited", zap.Error(http.ListenAndServe(cfg.HTTPAddr, r)))
}
