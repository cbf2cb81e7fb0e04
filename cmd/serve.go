package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hemovita/hemovita-cli/internal/bandit"
	"github.com/hemovita/hemovita-cli/internal/engine"
	"github.com/hemovita/hemovita-cli/internal/model"
	"github.com/hemovita/hemovita-cli/internal/monitoring"
	"github.com/hemovita/hemovita-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the report and risk-profile HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
		}

		eng, err := initEngine(ctx, st)
		if err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: false,
		}))

		limiter := rate.NewLimiter(rate.Limit(cfg.Server.ReportRPS), cfg.Server.ReportBurst)

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/api/report", func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				http.Error(w, `{"error":"too many requests"}`, http.StatusTooManyRequests)
				return
			}

			var body engine.ReportRequest
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			if len(body.Labs) == 0 {
				http.Error(w, `{"error":"labs is required"}`, http.StatusBadRequest)
				return
			}

			report, err := buildWithRun(req.Context(), st, func() (*model.Report, *model.RunResult) {
				return eng.BuildReport(body)
			})
			if err != nil {
				zap.L().Error("report generation failed", zap.Error(err))
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}

			writeJSON(w, http.StatusOK, report)
		})

		r.Post("/api/risk-profile", func(w http.ResponseWriter, req *http.Request) {
			var body bandit.ProfileInput
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}

			profile := eng.RiskProfile(body)
			if profile == nil {
				http.Error(w, `{"error":"risk model unavailable"}`, http.StatusServiceUnavailable)
				return
			}
			writeJSON(w, http.StatusOK, profile)
		})

		r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
			if st == nil {
				http.Error(w, `{"error":"run store disabled"}`, http.StatusNotFound)
				return
			}
			runs, err := st.ListRuns(req.Context(), store.RunFilter{})
			if err != nil {
				zap.L().Error("list runs failed", zap.Error(err))
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		r.Get("/api/stats", func(w http.ResponseWriter, req *http.Request) {
			if st == nil {
				http.Error(w, `{"error":"run store disabled"}`, http.StatusNotFound)
				return
			}
			lookback := 24
			if raw := req.URL.Query().Get("hours"); raw != "" {
				if n, err := strconv.Atoi(raw); err == nil && n > 0 {
					lookback = n
				}
			}
			snap, err := monitoring.NewCollector(st).Collect(req.Context(), lookback)
			if err != nil {
				zap.L().Error("collect stats failed", zap.Error(err))
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, snap)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go shutdownOnSignal(ctx, srv)

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

const shutdownGrace = 10 * time.Second

// shutdownOnSignal drains the server once ctx is cancelled. The drain
// runs on a fresh timeout context: the signal context is already done,
// and passing it to Shutdown would abort in-flight requests.
func shutdownOnSignal(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	zap.L().Info("shutting down server")

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
