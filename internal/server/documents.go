// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pdiddy/engagement-letters/internal/convert"
	"github.com/pdiddy/engagement-letters/internal/entities"
	"github.com/pdiddy/engagement-letters/internal/notify"
	"github.com/pdiddy/engagement-letters/internal/rollover"
	"github.com/pdiddy/engagement-letters/internal/signature"
	"github.com/pdiddy/engagement-letters/pkg/types"
)

const documentsField = "documents"

// documentsResponse is the body of the print and signature routes.
type documentsResponse struct {
	Status string   `json:"status"`
	Files  []string `json:"files"`
	Errors []string `json:"errors"`
}

// eachUpload saves the uploads accepted by keep into a fresh workspace and
// calls fn for each, then removes the workspace. Rejected uploads are
// reported through reject. It answers the request itself on setup errors
// and returns false.
func (s *Server) eachUpload(w http.ResponseWriter, r *http.Request, process, title string,
	keep func(name string) bool, reject func(name string), fn func(index, total int, name, path string)) bool {
	uploads, err := s.readUploads(w, r, documentsField)
	if err != nil {
		s.sendError(process, http.MethodPost, title, err.Error())
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: err.Error()})
		return false
	}
	ws, err := s.newWorkspace()
	if err != nil {
		s.sendError(process, http.MethodPost, title, err.Error())
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: err.Error()})
		return false
	}
	defer func() {
		if err := ws.remove(); err != nil {
			s.Logger.Warn("removing processing directory", "error", err)
		}
	}()

	total := len(uploads)
	for i, u := range uploads {
		if !keep(u.Name) {
			reject(u.Name)
		} else if path, err := ws.save(i, u); err != nil {
			s.sendError(process, http.MethodPost, title, err.Error())
		} else {
			fn(i+1, total, u.Name, path)
		}
		s.Hub.Send(notify.Progress, notify.ProgressDetail{Process: process, Value: float64(i+1) / float64(total)})
	}
	return true
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf") && !strings.HasPrefix(name, "~")
}

func (s *Server) checkEntities(w http.ResponseWriter, r *http.Request) {
	const process, title = notify.ProcessEntities, "Entity Check Error"
	s.Hub.Send(notify.ProcessStart, "Checking entities...")

	results := []types.Extraction{}
	ok := s.eachUpload(w, r, process, title, rollover.IsLetterFile,
		func(name string) {
			s.sendError(process, http.MethodPost, title, fmt.Sprintf("%s is not a Word document", name))
		},
		func(_, _ int, name, path string) {
			ex, err := entities.ExtractFile(path)
			if err != nil {
				s.sendError(process, http.MethodPost, title, err.Error())
				return
			}
			results = append(results, ex)
			s.Hub.Send(notify.ProcessResults, notify.ResultDetail{Process: process, Status: "success", Filename: name})
		})
	if !ok {
		return
	}
	s.Hub.Send(notify.Complete, "Entity check complete!")
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) printToPDF(w http.ResponseWriter, r *http.Request) {
	const process, title = notify.ProcessPrint, "PDF Printing Error"
	if s.Converter == nil {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "error", Message: "PDF printing is not configured"})
		return
	}
	s.Hub.Send(notify.ProcessStart, "Printing documents to PDF...")

	outDir := s.processedDir()
	resp := documentsResponse{Files: []string{}, Errors: []string{}}
	fail := func(name, msg string) {
		resp.Errors = append(resp.Errors, msg)
		s.sendError(process, http.MethodPost, title, msg)
		s.Hub.Send(notify.ProcessResults, notify.ResultDetail{Process: process, Status: "failed", Filename: name})
	}
	ok := s.eachUpload(w, r, process, title, rollover.IsLetterFile,
		func(name string) { fail(name, fmt.Sprintf("%s is not a Word document", name)) },
		func(_, _ int, name, path string) {
			pdfPath, err := convert.ConvertDocument(r.Context(), s.Converter, path, outDir)
			if err != nil {
				fail(name, err.Error())
				return
			}
			resp.Files = append(resp.Files, filepath.Base(pdfPath))
			s.Hub.Send(notify.ProcessResults, notify.ResultDetail{
				Process: process, Status: "success", Filename: name, Output: pdfPath,
			})
		})
	if !ok {
		return
	}
	resp.Status = "success"
	if len(resp.Errors) > 0 {
		resp.Status = "partial"
	}
	s.Hub.Send(notify.Complete, "Finished printing documents!")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) addSignatures(w http.ResponseWriter, r *http.Request) {
	const process, title = notify.ProcessSignatures, "Signature Error"
	if s.Locator == nil || s.Stamper == nil {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "error", Message: "signature stamping is not configured"})
		return
	}
	s.Hub.Send(notify.ProcessStart, "Adding signatures...")

	outDir := s.processedDir()
	resp := documentsResponse{Files: []string{}, Errors: []string{}}
	fail := func(name, msg string) {
		resp.Errors = append(resp.Errors, msg)
		s.sendError(process, http.MethodPost, title, msg)
		s.Hub.Send(notify.ProcessResults, notify.ResultDetail{Process: process, Status: "failed", Filename: name})
	}
	ok := s.eachUpload(w, r, process, title, isPDF,
		func(name string) { fail(name, fmt.Sprintf("%s is not a PDF", name)) },
		func(_, _ int, name, path string) {
			out, pos, err := signature.Sign(r.Context(), s.Locator, s.Stamper, path, outDir)
			if err != nil {
				fail(name, err.Error())
				return
			}
			s.Logger.Info("signed", "filename", name, "page", pos.Page+1, "signer", pos.Signer)
			resp.Files = append(resp.Files, filepath.Base(out))
			s.Hub.Send(notify.ProcessResults, notify.ResultDetail{
				Process: process, Status: "success", Filename: name, Output: out,
			})
		})
	if !ok {
		return
	}
	resp.Status = "success"
	if len(resp.Errors) > 0 {
		resp.Status = "partial"
	}
	s.Hub.Send(notify.Complete, "Finished adding signatures!")
	writeJSON(w, http.StatusOK, resp)
}
