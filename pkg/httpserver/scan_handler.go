package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mselser95/triarb-tracker/internal/scanner"
	"github.com/mselser95/triarb-tracker/internal/triangle"
	"github.com/mselser95/triarb-tracker/pkg/types"
	"go.uber.org/zap"
)

// ScanSource exposes scanner state to HTTP handlers. *scanner.Scanner implements it.
type ScanSource interface {
	Status() scanner.Status
	Triangles() []triangle.Triangle
}

// Labeler renders a token for display.
type Labeler interface {
	Label(ctx context.Context, token types.Token) string
}

// ScanHandler handles HTTP requests for scanner data.
type ScanHandler struct {
	source  ScanSource
	labeler Labeler
	logger  *zap.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(source ScanSource, labeler Labeler, logger *zap.Logger) *ScanHandler {
	return &ScanHandler{
		source:  source,
		labeler: labeler,
		logger:  logger,
	}
}

// TriangleResponse is one entry of GET /api/triangles.
type TriangleResponse struct {
	Tokens []string `json:"tokens"`
	Labels []string `json:"labels"`
}

// TrianglesResponse represents the HTTP response for the triangle list.
type TrianglesResponse struct {
	Count     int                `json:"count"`
	Triangles []TriangleResponse `json:"triangles"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleStatus handles GET /api/status.
func (h *ScanHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.source.Status())
}

// HandleTriangles handles GET /api/triangles[?token=<address>].
func (h *ScanHandler) HandleTriangles(w http.ResponseWriter, r *http.Request) {
	filter := strings.TrimSpace(r.URL.Query().Get("token"))

	all := h.source.Triangles()
	out := make([]TriangleResponse, 0, len(all))

	for _, tri := range all {
		if filter != "" && !containsToken(tri, filter) {
			continue
		}

		entry := TriangleResponse{
			Tokens: types.ToStrings(tri.Tokens()),
			Labels: make([]string, 0, 3),
		}
		for _, token := range tri {
			entry.Labels = append(entry.Labels, h.label(r.Context(), token))
		}
		out = append(out, entry)
	}

	if filter != "" && len(out) == 0 {
		h.writeError(w, "no triangle contains token "+filter, http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, TrianglesResponse{Count: len(out), Triangles: out})
}

func (h *ScanHandler) label(ctx context.Context, token types.Token) string {
	if h.labeler == nil {
		return token.Short()
	}
	return h.labeler.Label(ctx, token)
}

func containsToken(tri triangle.Triangle, needle string) bool {
	for _, token := range tri {
		if strings.EqualFold(string(token), needle) {
			return true
		}
	}
	return false
}

func (h *ScanHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (h *ScanHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	h.writeJSON(w, statusCode, ErrorResponse{Error: message})
}
