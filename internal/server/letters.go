// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/engagement-letters/internal/ids"
	"github.com/pdiddy/engagement-letters/internal/notify"
	"github.com/pdiddy/engagement-letters/internal/rollover"
	"github.com/pdiddy/engagement-letters/internal/settings"
	"github.com/pdiddy/engagement-letters/pkg/types"
)

const uploadField = "currentYearDirectory"

type rolloverResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	RunID   string         `json:"run_id"`
	Summary batchSummary   `json:"summary"`
	Results []resultRecord `json:"results"`
}

type batchSummary struct {
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Total     int `json:"total"`
}

type resultRecord struct {
	Filename string                 `json:"filename"`
	Status   types.ProcessingStatus `json:"status"`
	Output   string                 `json:"output,omitempty"`
	Message  string                 `json:"message,omitempty"`
}

func (s *Server) documentRollover(w http.ResponseWriter, r *http.Request) {
	const process, method = notify.ProcessLetters, http.MethodPost
	s.Hub.Send(notify.ProcessStart, "Processing engagement letters!")

	outDir := s.processedDir()
	if !isDir(outDir) {
		msg := fmt.Sprintf("The specified directory ( %s ) does not exist. Configure in settings or in config file.", outDir)
		s.sendError(process, method, "Letter Processing Error", msg)
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: msg})
		return
	}

	uploads, err := s.readUploads(w, r, uploadField)
	if err != nil {
		s.sendError(process, method, "Letter Processing Error", err.Error())
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: err.Error()})
		return
	}

	opts, err := settings.LoadRateOptions(s.Config.Paths.SettingsFile)
	if err != nil {
		msg := fmt.Sprintf("An error occurred while loading rate settings: %v", err)
		s.sendError(process, method, "Settings Error", msg)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: msg})
		return
	}

	s.Hub.Send(notify.Processing, notify.StepDetail{Process: process, Method: method, Message: "Processing..."})

	ws, err := s.newWorkspace()
	if err != nil {
		s.sendError(process, method, "Letter Processing Error", err.Error())
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: err.Error()})
		return
	}
	defer func() {
		if err := ws.remove(); err != nil {
			s.Logger.Warn("removing processing directory", "error", err)
		}
	}()

	// Non-letters are never saved; ProcessBatch reports them as skipped
	// from the name alone. An upload that fails to save fails to load.
	paths := make([]string, len(uploads))
	for i, u := range uploads {
		paths[i] = ws.path(i, u.Name)
		if !rollover.IsLetterFile(u.Name) {
			continue
		}
		if _, err := ws.save(i, u); err != nil {
			s.Logger.Error("saving upload", "filename", u.Name, "error", err)
		}
	}

	runID := ids.New()
	resp := rolloverResponse{RunID: runID, Results: make([]resultRecord, 0, len(uploads))}
	batch := s.Processor.ProcessBatch(paths, outDir, opts, func(index, total int, res rollover.Result) {
		s.reportResult(r.Context(), process, method, runID, res)
		resp.Results = append(resp.Results, resultRecord{
			Filename: res.Filename,
			Status:   res.Status,
			Output:   res.OutputPath,
			Message:  res.Message(),
		})
		s.Hub.Send(notify.Progress, notify.ProgressDetail{Process: process, Value: float64(index) / float64(total)})
	})

	resp.Summary = batchSummary{
		Updated:   batch.Updated,
		Unchanged: batch.Unchanged,
		Failed:    batch.Failed,
		Skipped:   batch.Skipped,
		Total:     batch.Total(),
	}
	resp.Status = "success"
	resp.Message = "Successfully processed engagement letters!"
	s.Logger.Info("rollover complete", "run_id", runID, "updated", batch.Updated,
		"unchanged", batch.Unchanged, "failed", batch.Failed, "skipped", batch.Skipped)
	s.Hub.Send(notify.Complete, resp.Message)
	writeJSON(w, http.StatusOK, resp)
}

// reportResult turns one rollover result into events and a history row.
func (s *Server) reportResult(ctx context.Context, process, method, runID string, res rollover.Result) {
	switch {
	case res.Err == nil, res.Status == types.StatusSkipped:
	case rollover.IsWarning(res.Err):
		s.Logger.Warn(res.Message(), "filename", res.Filename)
	default:
		s.sendError(process, method, "Letter Processing Error", res.Message())
	}

	status := "failed"
	switch res.Status {
	case types.StatusUpdated:
		status = "success"
	case types.StatusSkipped:
		status = "skipped"
	}
	s.Hub.Send(notify.ProcessResults, notify.ResultDetail{
		Process:  process,
		Status:   status,
		Filename: res.Filename,
		Output:   res.OutputPath,
	})

	if s.History == nil {
		return
	}
	if _, err := s.History.Record(ctx, res.Record(ids.New(), runID, time.Now())); err != nil {
		s.Logger.Warn("recording history", "filename", res.Filename, "error", err)
	}
}
