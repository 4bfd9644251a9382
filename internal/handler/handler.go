// Package handler exposes the catalog over HTTP.
package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/averix-dev/catalog-gateway/internal/domain/catalog"
)

// Handler serves the product API, delegating resolution to the catalog
// service.
type Handler struct {
	catalog *catalog.Service
}

// New constructs a Handler.
func New(svc *catalog.Service) *Handler {
	return &Handler{catalog: svc}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.listProducts)
}

// writeJSON sends buf as an application/json response.
func writeJSON(w http.ResponseWriter, status int, buf []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// writeFailure maps a catalog failure onto an HTTP status and renders its
// message. Server failures are a bad upstream (502); network and cache
// failures mean the gateway currently has nothing to serve (503).
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var f *catalog.Failure
	if errors.As(err, &f) {
		message = f.Message
		switch f.Kind {
		case catalog.FailureServer:
			status = http.StatusBadGateway
		case catalog.FailureNetwork, catalog.FailureCache:
			status = http.StatusServiceUnavailable
		}
	}

	zctx.From(r.Context()).Warn("request failed",
		zap.Int("status", status),
		zap.Error(err),
	)

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, status, e.Bytes())
}
