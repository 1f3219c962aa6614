package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/filter"
	"github.com/vukdaten/volksfeste/internal/logger"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v, err := s.view(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, s.pageData(v)); err != nil {
		logger.Error("Failed to render dashboard", nil, err)
	}
}

// eventsResponse is the body of GET /api/events
type eventsResponse struct {
	Filter *filter.Filter `json:"filter"`
	Count  int            `json:"count"`
	Events []*event.Entry `json:"events"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	v, err := s.view(r)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	events := append([]*event.Entry{}, v.listed...)
	event.SortByStart(events)

	s.respondWithJSON(w, http.StatusOK, eventsResponse{
		Filter: v.filter,
		Count:  len(events),
		Events: events,
	})
}

func (s *Server) handleExport(format exportFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := s.view(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ids, err := filter.ParseSelection(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		selected := filter.Select(v.listed, ids)
		body, err := render(selected, v.filter.Month, format, s.now())
		if err != nil {
			logger.Error("Export failed", logger.Fields{"format": string(format)}, err)
			http.Error(w, "Export fehlgeschlagen", http.StatusInternalServerError)
			return
		}
		if len(body) == 0 {
			http.Error(w, "Keine Veranstaltungen mit Datum gefunden", http.StatusNotFound)
			return
		}

		logger.Info("Export created", logger.Fields{
			"format":  string(format),
			"entries": len(selected),
			"filter":  v.filter.String(),
		})

		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("Content-Disposition", contentDisposition(ExportName(v.filter.Month, format)))
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"events": len(s.entries),
	})
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to encode response", nil, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
