package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var servePort int

// runner starts and executes pipeline runs. *pipeline.Pipeline satisfies it.
type runner interface {
	Start(ctx context.Context, opts pipeline.Options) (*model.Run, error)
	Execute(ctx context.Context, run *model.Run, opts pipeline.Options) (*pipeline.Result, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for triggering and inspecting runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, exportTargets{})
		if err != nil {
			return err
		}
		defer env.Close()

		router, wait := buildRouter(ctx, env.Pipeline, env.Store)

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
			zap.L().Info("serve: shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Warn("serve: shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("serve: starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		// Canceled runs still finalize their in-flight records and export.
		wait()
		return nil
	},
}

type runRequest struct {
	Sources []string `json:"sources"`
	MaxURLs int      `json:"max_urls"`
}

// buildRouter wires the API routes. Runs accepted over POST /runs execute
// in the background under ctx; the returned func blocks until they finish.
func buildRouter(ctx context.Context, r runner, st store.Store) (http.Handler, func()) {
	var wg sync.WaitGroup

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Post("/runs", func(w http.ResponseWriter, req *http.Request) {
		var body runRequest
		// An empty body starts a run with discovered sources.
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.MaxURLs < 0 {
			writeError(w, http.StatusBadRequest, "max_urls must not be negative")
			return
		}

		opts := pipeline.Options{Sources: body.Sources, MaxURLs: body.MaxURLs, RunScopedOutput: true}
		run, err := r.Start(req.Context(), opts)
		if err != nil {
			zap.L().Error("serve: start run", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not start run")
			return
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := r.Execute(ctx, run, opts)
			if err != nil {
				zap.L().Error("serve: run failed", zap.String("run_id", run.ID), zap.Error(err))
				return
			}
			zap.L().Info("serve: run finished",
				zap.String("run_id", run.ID),
				zap.String("status", string(result.Status)),
				zap.Int("successful", result.Summary.Successful),
			)
		}()

		writeJSON(w, http.StatusAccepted, run)
	})

	router.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
		filter := store.RunFilter{Status: model.RunStatus(req.URL.Query().Get("status"))}
		var err error
		if filter.Limit, err = queryInt(req, "limit"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if filter.Offset, err = queryInt(req, "offset"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		runs, err := st.ListRuns(req.Context(), filter)
		if err != nil {
			zap.L().Error("serve: list runs", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not list runs")
			return
		}
		if runs == nil {
			runs = []model.Run{}
		}
		writeJSON(w, http.StatusOK, runs)
	})

	router.Get("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
		run, err := st.GetRun(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, run)
	})

	router.Get("/runs/{id}/records", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		if _, err := st.GetRun(req.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}
		recs, err := st.ListRecords(req.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if req.URL.Query().Get("successful") == "true" {
			recs = model.FilterSuccessful(recs)
		}
		if recs == nil {
			recs = []model.CompanyRecord{}
		}
		writeJSON(w, http.StatusOK, recs)
	})

	return router, wg.Wait
}

func queryInt(req *http.Request, key string) (int, error) {
	raw := req.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, eris.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("serve: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	zap.L().Error("serve: store", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "store error")
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
