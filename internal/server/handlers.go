package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	ctshttp "github.com/jrh3k5/transfer-explorer/internal/http"
	"github.com/jrh3k5/transfer-explorer/internal/jsonrpc"
	"github.com/jrh3k5/transfer-explorer/internal/metrics"
	"github.com/jrh3k5/transfer-explorer/internal/query"
	"github.com/jrh3k5/transfer-explorer/internal/transaction"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxRequestBodyBytes = 1 << 16

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "transfer-proxy",
	}

	s.sendJSON(w, health, http.StatusOK)
}

func (s *Server) handleMetrics() http.Handler {
	return promhttp.Handler()
}

// handleTransfers answers POST /transactions/{address} with one page of transfers.
func (s *Server) handleTransfers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	address := r.PathValue("address")
	if !transaction.IsAddress(address) {
		s.sendError(w, fmt.Sprintf("'%s' is not a valid address", address), http.StatusBadRequest)

		return
	}

	var payload query.Payload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&payload); err != nil {
		s.sendError(w, fmt.Sprintf("failed to decode request body: %v", err), http.StatusBadRequest)

		return
	}

	if !strings.EqualFold(payload.FromAddress, address) && !strings.EqualFold(payload.ToAddress, address) {
		s.sendError(w, "address must match fromAddress or toAddress in the payload", http.StatusBadRequest)

		return
	}

	cacheKey, err := cacheKeyFor(payload)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusInternalServerError)

		return
	}

	if s.cache != nil {
		if page, ok := s.cache.Get(cacheKey); ok {
			metrics.CacheHits.Inc()
			slog.DebugContext(ctx, fmt.Sprintf("Serving cached transfers for %s", address))
			s.sendJSON(w, page, http.StatusOK)

			return
		}
		metrics.CacheMisses.Inc()
	}

	page, err := s.fetchUpstream(ctx, address, payload)
	if err != nil {
		slog.WarnContext(ctx, fmt.Sprintf("Failed to fetch transfers for %s", address), "error", err)
		metrics.UpstreamErrors.WithLabelValues(errorKind(err)).Inc()
		s.sendError(w, err.Error(), upstreamStatus(err))

		return
	}

	if page.Transfers == nil {
		page.Transfers = []transaction.Record{}
	}

	if s.cache != nil {
		s.cache.Add(cacheKey, page)
	}

	slog.InfoContext(ctx, fmt.Sprintf("Returning %d transfers for %s", len(page.Transfers), address))
	s.sendJSON(w, page, http.StatusOK)
}

func (s *Server) fetchUpstream(
	ctx context.Context,
	address string,
	payload query.Payload,
) (*transaction.Page, error) {
	if s.config.UpstreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.UpstreamTimeout)
		defer cancel()
	}

	start := time.Now()
	page, err := s.fetcher.FetchTransfers(ctx, address, payload)
	metrics.UpstreamDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}

	if page == nil {
		return nil, &ctshttp.ParseError{Err: errors.New("upstream returned no transfers page")}
	}

	return page, nil
}

// instrument records the request count and latency of a route.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(recorder, r)

		metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
	}
}

func (s *Server) sendJSON(w http.ResponseWriter, body any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("Failed to write response body", "error", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	s.sendJSON(w, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	}, code)
}

// cacheKeyFor identifies a page request by its canonical payload encoding.
// Addresses are lowercased so that checksummed and plain forms share an entry.
func cacheKeyFor(payload query.Payload) (string, error) {
	payload.FromAddress = strings.ToLower(payload.FromAddress)
	payload.ToAddress = strings.ToLower(payload.ToAddress)

	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}

	return string(b), nil
}

func upstreamStatus(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	var httpErr *ctshttp.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
		return http.StatusTooManyRequests
	}

	return http.StatusBadGateway
}

func errorKind(err error) string {
	var (
		netErr   *ctshttp.NetworkError
		httpErr  *ctshttp.HTTPError
		parseErr *ctshttp.ParseError
		rpcErr   *jsonrpc.Error
	)

	switch {
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &httpErr):
		return "http"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &rpcErr):
		return "rpc"
	default:
		return "other"
	}
}
