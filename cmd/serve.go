package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/redealvo/rede-cli/internal/engine"
	"github.com/redealvo/rede-cli/internal/snapshot"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only dashboard API",
	Long: `Serve the ranking, per-store breakdown, tier summary and excellence
endpoints over HTTP. Data is read from an in-memory snapshot that a
background loop refreshes from the database.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	provider := snapshot.NewProvider(st, time.Duration(cfg.Snapshot.MinRefreshSecs)*time.Second)
	if _, err := provider.Refresh(ctx); err != nil {
		return eris.Wrap(err, "serve: initial snapshot")
	}
	go provider.Run(ctx, time.Duration(cfg.Snapshot.RefreshSecs)*time.Second)

	router := buildRouter(provider, cfg.Server.AllowedOrigins)

	port := servePort
	if port == 0 {
		port = cfg.Server.Port
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}

	return nil
}

// buildRouter wires the API routes. Extracted so handler tests can exercise
// the router without binding a port.
func buildRouter(provider *snapshot.Provider, allowedOrigins []string) chi.Router {
	eng := engine.New(engine.DefaultConfig())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/ranking", func(w http.ResponseWriter, req *http.Request) {
			snap, ok := provider.Current()
			if !ok {
				writeError(w, http.StatusServiceUnavailable, "snapshot not ready")
				return
			}
			month := monthParam(req)
			if err := validateMonth(month); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			entries := eng.Rank(snap.Stores, snap.Evaluations, snap.Thresholds, month, engine.Filters{
				Query:      req.URL.Query().Get("q"),
				Franchisee: req.URL.Query().Get("franchisee"),
			})
			writeJSON(w, http.StatusOK, map[string]any{
				"month":      month,
				"fetched_at": snap.FetchedAt,
				"entries":    entries,
			})
		})

		r.Get("/stores/{id}/score", func(w http.ResponseWriter, req *http.Request) {
			snap, ok := provider.Current()
			if !ok {
				writeError(w, http.StatusServiceUnavailable, "snapshot not ready")
				return
			}
			month := monthParam(req)
			if err := validateMonth(month); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			id := chi.URLParam(req, "id")
			for i := range snap.Stores {
				if snap.Stores[i].ID != id {
					continue
				}
				result := eng.ScoreStore(snap.Stores[i], snap.Evaluations, month)
				writeJSON(w, http.StatusOK, map[string]any{
					"store_id":  id,
					"name":      snap.Stores[i].Name,
					"month":     month,
					"pillars":   result.Scores,
					"composite": result.Composite,
					"patent":    engine.Classify(float64(result.Composite), snap.Thresholds),
					"has_data":  result.HasData,
				})
				return
			}
			writeError(w, http.StatusNotFound, "store not found")
		})

		r.Get("/tiers", func(w http.ResponseWriter, req *http.Request) {
			snap, ok := provider.Current()
			if !ok {
				writeError(w, http.StatusServiceUnavailable, "snapshot not ready")
				return
			}
			month := monthParam(req)
			if err := validateMonth(month); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			entries := eng.Rank(snap.Stores, snap.Evaluations, snap.Thresholds, month, engine.Filters{})
			writeJSON(w, http.StatusOK, map[string]any{
				"month":  month,
				"ranked": len(entries),
				"tiers":  engine.SummarizeTiers(entries),
			})
		})

		r.Get("/excellence", func(w http.ResponseWriter, req *http.Request) {
			snap, ok := provider.Current()
			if !ok {
				writeError(w, http.StatusServiceUnavailable, "snapshot not ready")
				return
			}
			month := monthParam(req)
			if err := validateMonth(month); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			window, err := parseWindowParams(req)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			groups := eng.BestWorstByGroup(snap.Stores, snap.Evaluations, month, window)
			writeJSON(w, http.StatusOK, map[string]any{
				"month":  month,
				"groups": groups,
			})
		})

		r.Get("/thresholds", func(w http.ResponseWriter, _ *http.Request) {
			snap, ok := provider.Current()
			if !ok {
				writeError(w, http.StatusServiceUnavailable, "snapshot not ready")
				return
			}
			writeJSON(w, http.StatusOK, snap.Thresholds)
		})

		r.Post("/refresh", func(w http.ResponseWriter, req *http.Request) {
			snap, err := provider.Refresh(req.Context())
			if err != nil {
				zap.L().Error("manual refresh failed", zap.Error(err))
				writeError(w, http.StatusBadGateway, "refresh failed")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"status":      "ok",
				"fetched_at":  snap.FetchedAt,
				"stores":      len(snap.Stores),
				"evaluations": len(snap.Evaluations),
			})
		})
	})

	return r
}

func monthParam(req *http.Request) string {
	if m := req.URL.Query().Get("month"); m != "" {
		return m
	}
	return currentMonth()
}

func parseWindowParams(req *http.Request) (engine.DateWindow, error) {
	var w engine.DateWindow
	if from := req.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return w, eris.Wrapf(err, "invalid from %q", from)
		}
		w.From = t
	}
	if to := req.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return w, eris.Wrapf(err, "invalid to %q", to)
		}
		w.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	return w, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
