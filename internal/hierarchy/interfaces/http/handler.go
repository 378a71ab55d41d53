package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"device-hierarchy/internal/hierarchy/application"
	hierarchy "device-hierarchy/internal/hierarchy/domain"
)

// RecalculateHandler triggers a hierarchy run over the configured table.
// This is the thin outer driver; the engine itself touches no HTTP state.
type RecalculateHandler struct {
	runner *application.Runner
	logger *log.Logger
}

// NewRecalculateHandler constructs the handler.
func NewRecalculateHandler(runner *application.Runner, logger *log.Logger) (*RecalculateHandler, error) {
	if runner == nil {
		return nil, errors.New("recalculate handler: nil runner")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RecalculateHandler{runner: runner, logger: logger}, nil
}

// ServeHTTP runs the engine and returns the run summary.
func (h *RecalculateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result, err := h.runner.Run(r.Context(), func(percent, done, total int) {
		h.logger.Printf("event=hierarchy_progress percent=%d done=%d total=%d", percent, done, total)
	})
	if err != nil {
		h.logger.Printf("recalculate: run error: %v", err)
		status := http.StatusInternalServerError
		var sinkErr *hierarchy.SinkError
		if errors.As(err, &sinkErr) {
			status = http.StatusBadGateway
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		payload := map[string]any{"status": "error", "error": err.Error()}
		if sinkErr != nil {
			payload["failedBatch"] = sinkErr.Batch
			if result != nil {
				payload["rowsApplied"] = result.RowsUpdated
			}
		}
		_ = json.NewEncoder(w).Encode(payload)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"table":       result.Table,
		"devices":     result.Devices,
		"rowsUpdated": result.RowsUpdated,
		"batches":     result.Batches,
		"diagnostics": result.Diagnostics,
	})
}
