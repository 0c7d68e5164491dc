// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pdiddy/engagement-letters/internal/history"
	"github.com/pdiddy/engagement-letters/internal/notify"
	"github.com/pdiddy/engagement-letters/internal/settings"
	"github.com/pdiddy/engagement-letters/pkg/types"
)

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	list, err := settings.Load(s.Config.Paths.SettingsFile)
	if err != nil {
		s.sendError(notify.ProcessSettings, http.MethodGet, "Settings Error",
			fmt.Sprintf("An error occurred while loading user settings: %v", err))
		list = []types.Setting{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) postSettings(w http.ResponseWriter, r *http.Request) {
	fail := func(status int, err error) {
		msg := fmt.Sprintf("An error occurred while saving user settings: %v", err)
		s.sendError(notify.ProcessSettings, http.MethodPost, "Settings Error", msg)
		writeJSON(w, status, statusResponse{Status: "error", Message: msg})
	}

	var form []types.Setting
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		fail(http.StatusBadRequest, fmt.Errorf("decoding form: %w", err))
		return
	}
	path := s.Config.Paths.SettingsFile
	current, err := settings.Load(path)
	if err != nil {
		fail(http.StatusInternalServerError, err)
		return
	}
	merged, err := settings.Merge(current, form)
	if err != nil {
		fail(http.StatusBadRequest, err)
		return
	}
	if err := settings.Save(path, merged); err != nil {
		fail(http.StatusInternalServerError, err)
		return
	}
	s.Logger.Info("settings saved", "path", path)
	writeJSON(w, http.StatusOK, statusResponse{Status: "success", Redirect: "/settings"})
}

// limitParam parses the limit query parameter. Missing means zero, which
// the store reads as its configured maximum.
func limitParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit %q", v)
	}
	return n, nil
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "error", Message: "history is not configured"})
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: err.Error()})
		return
	}
	q := r.URL.Query()
	var records []types.ProcessingRecord
	if runID := q.Get("run"); runID != "" && limit == 0 && q.Get("status") == "" {
		records, err = s.History.Run(r.Context(), runID)
	} else {
		records, err = s.History.Query(r.Context(), history.QueryOptions{
			RunID:  runID,
			Status: types.ProcessingStatus(q.Get("status")),
			Limit:  limit,
		})
	}
	if err != nil {
		s.Logger.Error("querying history", "error", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) getRuns(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "error", Message: "history is not configured"})
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: err.Error()})
		return
	}
	runs, err := s.History.Runs(r.Context(), limit)
	if err != nil {
		s.Logger.Error("querying runs", "error", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}
