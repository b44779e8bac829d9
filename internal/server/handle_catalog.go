package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/trailquest/hunt/internal/catalog"
)

type ReloadResponse struct {
	Routes      int `json:"routes"`
	Checkpoints int `json:"checkpoints"`
}

// handleCatalogReload pulls fresh content from the source and swaps the whole
// catalog in one step. On failure the previous catalog stays in effect.
func handleCatalogReload(logger *slog.Logger, src catalog.Source, cat *catalog.Holder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := cat.Reload(r.Context(), src)
		if err != nil {
			logger.Error("catalog reload failed", "error", err)
			writeError(w, http.StatusBadGateway, "content source unavailable")
			return
		}

		routes, checkpoints := c.Len()
		logger.Info("catalog reloaded", "routes", routes, "checkpoints", checkpoints)
		writeJSON(w, http.StatusOK, ReloadResponse{Routes: routes, Checkpoints: checkpoints})
	}
}

// handleCheckpointQR renders a checkpoint's scan token as a QR PNG so
// operators can print signage for the physical stop.
func handleCheckpointQR(cat *catalog.Holder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		cp, ok := cat.Current().Checkpoint(id)
		if !ok {
			writeError(w, http.StatusNotFound, "checkpoint not found")
			return
		}

		png, err := qrcode.Encode(cp.ScanToken, qrcode.Medium, 512)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}
