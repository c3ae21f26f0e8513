package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/JulianoL13/app-node-engine/internal/common/logs"
	"github.com/JulianoL13/app-node-engine/internal/node"
	"github.com/JulianoL13/app-node-engine/internal/subscription"
	"github.com/samber/lo"
)

const (
	defaultLimit = 50
	maxLimit     = 500
	maxBodyBytes = 5 << 20
)

type NodeLister interface {
	Execute(ctx context.Context, input node.GetNodesInput) (node.GetNodesOutput, error)
}

type RandomNodePicker interface {
	Execute(ctx context.Context, protocol string) (*node.Node, error)
}

type NodeExporter interface {
	Execute(ctx context.Context, input node.ExportInput) (string, error)
}

type NodeCounter interface {
	Count(ctx context.Context, protocol string) (int, error)
}

type Handler struct {
	lister    NodeLister
	picker    RandomNodePicker
	exporter  NodeExporter
	counter   NodeCounter
	decoder   *subscription.Decoder
	converter subscription.Converter
	logger    logs.Logger
}

func NewHandler(
	lister NodeLister,
	picker RandomNodePicker,
	exporter NodeExporter,
	counter NodeCounter,
	decoder *subscription.Decoder,
	logger logs.Logger,
) *Handler {
	return &Handler{
		lister:    lister,
		picker:    picker,
		exporter:  exporter,
		counter:   counter,
		decoder:   decoder,
		converter: subscription.NewConverter(),
		logger:    logger,
	}
}

// NodeResponse is the JSON representation of a node
type NodeResponse struct {
	ID          string    `json:"id"`
	URI         string    `json:"uri"`
	Protocol    string    `json:"protocol"`
	Address     string    `json:"address"`
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

func toResponse(n *node.Node) NodeResponse {
	return NodeResponse{
		ID:          n.ID(),
		URI:         n.URI,
		Protocol:    string(n.Protocol),
		Address:     n.Address,
		Name:        n.Name,
		Source:      n.Source,
		FirstSeenAt: n.FirstSeenAt,
		LastSeenAt:  n.LastSeenAt,
	}
}

type PaginatedResponse struct {
	Data       []NodeResponse `json:"data"`
	NextCursor float64        `json:"next_cursor"`
	Limit      int            `json:"limit"`
	TotalCount int            `json:"total_count"`
}

type DecodeResponse struct {
	Strategy string   `json:"strategy"`
	Count    int      `json:"count"`
	Nodes    []string `json:"nodes"`
}

type ConvertFailure struct {
	Index int    `json:"index"`
	Type  string `json:"type"`
	Error string `json:"error"`
}

type ConvertResponse struct {
	Nodes  []string         `json:"nodes"`
	Errors []ConvertFailure `json:"errors,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func parseProtocol(r *http.Request) (string, bool) {
	p := r.URL.Query().Get("protocol")
	if p == "" {
		return "", true
	}
	return p, lo.Contains(subscription.Protocols, subscription.Protocol(p))
}

func isTruthy(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// Health reports service status and the number of alive nodes
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.counter.Count(r.Context(), "")
	if err != nil {
		LoggerFromContext(r.Context(), h.logger).Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "nodes": count})
}

// GetNodes returns alive nodes page by page
// Query params: cursor, limit, protocol
func (h *Handler) GetNodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	protocol, ok := parseProtocol(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown protocol")
		return
	}

	limit := defaultLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxLimit)
	}

	var cursor float64
	if v := q.Get("cursor"); v != "" {
		c, err := strconv.ParseFloat(v, 64)
		if err != nil || c < 0 {
			writeError(w, http.StatusBadRequest, "invalid cursor")
			return
		}
		cursor = c
	}

	out, err := h.lister.Execute(r.Context(), node.GetNodesInput{Cursor: cursor, Limit: limit, Protocol: protocol})
	if err != nil {
		LoggerFromContext(r.Context(), h.logger).Error("failed to get nodes", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, PaginatedResponse{
		Data:       lo.Map(out.Nodes, func(n *node.Node, _ int) NodeResponse { return toResponse(n) }),
		NextCursor: out.NextCursor,
		Limit:      limit,
		TotalCount: out.Total,
	})
}

// GetRandomNode returns one alive node
// Query params: protocol
func (h *Handler) GetRandomNode(w http.ResponseWriter, r *http.Request) {
	protocol, ok := parseProtocol(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown protocol")
		return
	}

	n, err := h.picker.Execute(r.Context(), protocol)
	if errors.Is(err, node.ErrNoNodesAvailable) {
		writeError(w, http.StatusNotFound, "no nodes available")
		return
	}
	if err != nil {
		LoggerFromContext(r.Context(), h.logger).Error("failed to pick node", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(n))
}

// ExportNodes renders alive nodes as a subscription body
// Query params: format (plain|base64), clean, protocol
func (h *Handler) ExportNodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	protocol, ok := parseProtocol(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown protocol")
		return
	}

	body, err := h.exporter.Execute(r.Context(), node.ExportInput{
		Format:   node.Format(q.Get("format")),
		Protocol: protocol,
		Clean:    isTruthy(q.Get("clean")),
	})
	if errors.Is(err, node.ErrUnknownFormat) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		LoggerFromContext(r.Context(), h.logger).Error("failed to export nodes", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, body)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "unreadable body")
		return nil, false
	}
	return body, true
}

// Decode extracts node URIs from a raw subscription payload
// Query params: min_length
func (h *Handler) Decode(w http.ResponseWriter, r *http.Request) {
	decoder := h.decoder
	if v := r.URL.Query().Get("min_length"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid min_length")
			return
		}
		decoder = decoder.ForMinLength(n)
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	outcome := decoder.DecodeOutcome(string(body))
	nodes := outcome.Nodes
	if nodes == nil {
		nodes = []string{}
	}

	LoggerFromContext(r.Context(), h.logger).Debug("payload decoded",
		"bytes", len(body),
		"strategy", outcome.Strategy.String(),
		"nodes", len(nodes),
	)

	writeJSON(w, http.StatusOK, DecodeResponse{
		Strategy: outcome.Strategy.String(),
		Count:    len(nodes),
		Nodes:    nodes,
	})
}

// Convert turns one proxy descriptor, a list of them, or a document with a
// "proxies" list into node URIs
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var descriptors []subscription.Descriptor
	var single subscription.Descriptor
	if err := json.Unmarshal(body, &single); err == nil && single.Has("type") {
		descriptors = []subscription.Descriptor{single}
	} else {
		parsed, err := subscription.ParseDescriptors(string(body))
		if err != nil {
			writeError(w, http.StatusBadRequest, "body is not a proxy descriptor document")
			return
		}
		descriptors = parsed
	}

	resp := ConvertResponse{Nodes: []string{}}
	for i, d := range descriptors {
		uri, err := h.converter.Convert(d)
		if err != nil {
			resp.Errors = append(resp.Errors, ConvertFailure{Index: i, Type: d.Type(), Error: err.Error()})
			continue
		}
		resp.Nodes = append(resp.Nodes, uri)
	}

	status := http.StatusOK
	if len(resp.Nodes) == 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}
