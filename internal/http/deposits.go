package router

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Renal37/cardledger/internal/logger"
	"github.com/Renal37/cardledger/internal/middlewares"
	"github.com/Renal37/cardledger/internal/models"
	"github.com/Renal37/cardledger/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// WatchDeposit стримит статус депозита событиями SSE: status на каждое изменение,
// затем end или error. Опрос останавливается, когда клиент отключается.
func WatchDeposit(w http.ResponseWriter, r *http.Request) {
	watcher, ok := middlewares.GetServiceFromContext[models.DepositWatcher](w, r, middlewares.DepositWatcherKey)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		middlewares.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Streaming is not supported")
		return
	}

	watch := watcher.Watch(r.Context(), chi.URLParam(r, "ref"))
	defer watch.Stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case deposit := <-watch.Updates():
			writeEvent(w, "status", deposit)
			flusher.Flush()

		case <-watch.Done():
			select {
			case deposit := <-watch.Updates():
				writeEvent(w, "status", deposit)
			default:
			}

			if err := watch.Err(); err != nil {
				if r.Context().Err() != nil {
					return
				}
				writeEvent(w, "error", middlewares.ErrorBody{
					Code:    services.ErrorCode(err),
					Message: services.UserMessage(err),
				})
			} else {
				writeEvent(w, "end", struct{}{})
			}
			flusher.Flush()
			return

		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		logger.Log.Error("failed to encode event", zap.String("event", event), zap.Error(err))
		return
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		logger.Log.Debug("failed to write event", zap.String("event", event), zap.Error(err))
	}
}
