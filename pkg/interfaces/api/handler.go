package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lararachidi/agent-supply-chain/pkg/application/dto"
	"github.com/lararachidi/agent-supply-chain/pkg/application/services/genie"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/logger"
)

// Asker answers natural language questions
type Asker interface {
	Ask(ctx context.Context, question string) (*dto.GenieAnswer, error)
}

// Options configures the optional endpoints
type Options struct {
	// MetricsPath serves Gatherer when both are set.
	MetricsPath string
	Gatherer    prometheus.Gatherer
}

type errorResponse struct {
	Error string `json:"error"`
}

type askRequest struct {
	Question string `json:"question"`
}

// NewHandler exposes the query functions under /api/functions
func NewHandler(tools *genie.Toolbox, asker Asker, log logger.Logger, opts Options) http.Handler {
	h := &handler{tools: tools, asker: asker, log: logger.OrNop(log)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /api/functions/raw_from_product", h.rawFromProduct)
	mux.HandleFunc("GET /api/functions/product_from_raw", h.productFromRaw)
	mux.HandleFunc("GET /api/functions/revenue_risk", h.revenueRisk)
	mux.HandleFunc("GET /api/functions/lookup_product_demand", h.lookupProductDemand)
	mux.HandleFunc("GET /api/functions/query_unstructured_emails", h.queryEmails)
	mux.HandleFunc("POST /api/functions/ask_genie_pharma_gsc", h.ask)
	if opts.MetricsPath != "" && opts.Gatherer != nil {
		mux.Handle("GET "+opts.MetricsPath, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

type handler struct {
	tools *genie.Toolbox
	asker Asker
	log   logger.Logger
}

func (h *handler) rawFromProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.required(w, r, "product")
	if !ok {
		return
	}
	usage, err := h.tools.RawFromProduct(r.Context(), entities.MaterialID(product))
	h.respond(w, usage, err)
}

func (h *handler) productFromRaw(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.required(w, r, "raw")
	if !ok {
		return
	}
	usage, err := h.tools.ProductFromRaw(r.Context(), entities.MaterialID(raw))
	h.respond(w, usage, err)
}

func (h *handler) revenueRisk(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.required(w, r, "raw")
	if !ok {
		return
	}
	param, ok := h.required(w, r, "shortfall")
	if !ok {
		return
	}
	shortfall, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("shortfall %q is not an integer", param))
		return
	}
	risk, err := h.tools.RevenueRisk(r.Context(), entities.MaterialID(raw), entities.Quantity(shortfall))
	h.respond(w, risk, err)
}

func (h *handler) lookupProductDemand(w http.ResponseWriter, r *http.Request) {
	product, ok := h.required(w, r, "product")
	if !ok {
		return
	}
	demand, err := h.tools.LookupProductDemand(r.Context(), entities.MaterialID(product), r.URL.Query().Get("wholesaler"))
	h.respond(w, demand, err)
}

func (h *handler) queryEmails(w http.ResponseWriter, r *http.Request) {
	query, ok := h.required(w, r, "query")
	if !ok {
		return
	}
	k := 0
	if param := r.URL.Query().Get("k"); param != "" {
		n, err := strconv.Atoi(param)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Errorf("k %q is not an integer", param))
			return
		}
		k = n
	}
	matches, err := h.tools.QueryEmails(r.Context(), query, k)
	h.respond(w, matches, err)
}

func (h *handler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	answer, err := h.asker.Ask(r.Context(), req.Question)
	h.respond(w, answer, err)
}

func (h *handler) required(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("missing query parameter %s", name))
		return "", false
	}
	return v, true
}

func (h *handler) respond(w http.ResponseWriter, v interface{}, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Errorf("query function failed: %v", err)
		}
		h.writeError(w, status, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrInvalidArgument), errors.Is(err, genie.ErrUnknownTool):
		return http.StatusBadRequest
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warnf("failed to encode response: %v", err)
	}
}

// Serve runs handler on addr until ctx is cancelled or the listener fails
func Serve(ctx context.Context, addr string, handler http.Handler, log logger.Logger) error {
	log = logger.OrNop(log)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Infof("serving query functions on %s", addr)

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			log.Warnf("server shutdown: %v", serr)
		}
		err = <-errCh
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
