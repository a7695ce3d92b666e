package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jonwraymond/hostdiag/checks"
	"github.com/jonwraymond/hostdiag/health"
	"github.com/jonwraymond/hostdiag/observe"
)

// AgentHandler serves a Querier over the agent protocol.
type AgentHandler struct {
	source   checks.Querier
	verifier *Verifier
	logger   observe.Logger
	mux      *http.ServeMux
}

// NewAgentHandler creates the agent side of the HTTP transport. Every
// request must carry a bearer token accepted by verifier for its target
// host. A nil logger discards.
func NewAgentHandler(source checks.Querier, verifier *Verifier, logger observe.Logger) *AgentHandler {
	if logger == nil {
		logger = observe.NopLogger()
	}
	h := &AgentHandler{source: source, verifier: verifier, logger: logger, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /v1/volumes", h.volumes)
	h.mux.HandleFunc("GET /v1/services", h.services)
	h.mux.HandleFunc("GET /v1/eventlog", h.eventLog)
	h.mux.HandleFunc("GET /v1/boot", h.boot)
	h.mux.HandleFunc("GET /v1/updates", h.updates)
	h.mux.HandleFunc("GET /v1/utilization", h.utilization)
	h.mux.HandleFunc("GET /v1/network", h.network)
	return h
}

// ServeHTTP verifies the bearer token and dispatches the request.
func (h *AgentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := targetOf(r)

	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header {
		h.reject(r.Context(), w, target, ErrMissingToken)
		return
	}
	if err := h.verifier.Verify(strings.TrimSpace(token), target); err != nil {
		h.reject(r.Context(), w, target, err)
		return
	}

	h.mux.ServeHTTP(w, r)
}

func (h *AgentHandler) reject(ctx context.Context, w http.ResponseWriter, target string, err error) {
	h.logger.Warn(ctx, "agent request rejected", observe.F("target", target), observe.F("error", err))
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
}

func targetOf(r *http.Request) string {
	if t := r.Header.Get(TargetHeader); t != "" {
		return t
	}
	if h, _, err := net.SplitHostPort(r.Host); err == nil {
		return h
	}
	return r.Host
}

func (h *AgentHandler) volumes(w http.ResponseWriter, r *http.Request) {
	out, err := h.source.Volumes(r.Context(), targetOf(r))
	h.respond(w, r, out, err)
}

func (h *AgentHandler) services(w http.ResponseWriter, r *http.Request) {
	out, err := h.source.Services(r.Context(), targetOf(r), r.URL.Query()["name"])
	h.respond(w, r, out, err)
}

func (h *AgentHandler) eventLog(w http.ResponseWriter, r *http.Request) {
	since, err := time.Parse(time.RFC3339, r.URL.Query().Get("since"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "since: " + err.Error()})
		return
	}
	out, err := h.source.EventLogErrors(r.Context(), targetOf(r), since)
	h.respond(w, r, out, err)
}

func (h *AgentHandler) boot(w http.ResponseWriter, r *http.Request) {
	out, err := h.source.LastBoot(r.Context(), targetOf(r))
	h.respond(w, r, bootResponse{LastBoot: out}, err)
}

func (h *AgentHandler) updates(w http.ResponseWriter, r *http.Request) {
	out, err := h.source.PendingUpdates(r.Context(), targetOf(r))
	h.respond(w, r, out, err)
}

func (h *AgentHandler) utilization(w http.ResponseWriter, r *http.Request) {
	out, err := h.source.Utilization(r.Context(), targetOf(r))
	h.respond(w, r, out, err)
}

func (h *AgentHandler) network(w http.ResponseWriter, r *http.Request) {
	out, err := h.source.NetworkAdapters(r.Context(), targetOf(r))
	h.respond(w, r, out, err)
}

func (h *AgentHandler) respond(w http.ResponseWriter, r *http.Request, out any, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, out)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, health.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, ErrUnknownHost):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	h.logger.Warn(r.Context(), "agent query failed",
		observe.F("target", targetOf(r)),
		observe.F("path", r.URL.Path),
		observe.F("status", status),
		observe.F("error", err),
	)
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
