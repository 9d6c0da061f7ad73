package server

import (
	"encoding/json"
	"net/http"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSnapshot serves the balance snapshot, refreshing when the cached one
// has aged past the configured bound. A failed refresh degrades to the last
// known snapshot; 404 only when none can be obtained at all.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.cache.Get(r.Context(), s.snapshotMaxAge)
	if err != nil {
		s.log.Warn().Err(err).Msg("snapshot refresh failed, serving last known")
		snap = s.cache.Current()
	}
	if snap == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no snapshot yet"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleReport returns the most recent cycle report, falling back to the
// recorder when the process has not completed a cycle since starting.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report := s.lane.LastReport()
	if report == nil {
		var err error
		report, err = s.recorder.LatestCycle()
		if err != nil {
			s.log.Error().Err(err).Msg("load latest cycle")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "load latest cycle failed"})
			return
		}
	}
	if report == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no cycles recorded"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleRebalance admits a manual cycle.
func (s *Server) handleRebalance(w http.ResponseWriter, r *http.Request) {
	queued := s.lane.Trigger(model.TriggerManual)
	writeJSON(w, http.StatusAccepted, map[string]bool{"queued": queued})
}

// handleAlert ingests one structured alert from the feed and runs it through
// the gate.
func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	var rec model.AlertRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid alert payload"})
		return
	}
	admitted, reason := s.gate.Admit(&rec)
	if admitted {
		s.lane.Trigger(model.TriggerAlert)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"admitted": admitted,
		"reason":   reason,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
