// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/engagement-letters/internal/docx"
	"github.com/pdiddy/engagement-letters/internal/docx/docxtest"
	"github.com/pdiddy/engagement-letters/internal/history"
	"github.com/pdiddy/engagement-letters/internal/notify"
	"github.com/pdiddy/engagement-letters/internal/rollover"
	"github.com/pdiddy/engagement-letters/internal/secrets"
	"github.com/pdiddy/engagement-letters/internal/signature"
	"github.com/pdiddy/engagement-letters/pkg/types"
)

type fakeConverter struct {
	fail map[string]bool
}

func (f fakeConverter) Convert(_ context.Context, docxPath, pdfPath string) error {
	if f.fail[filepath.Base(docxPath)] {
		return errors.New("conversion crashed")
	}
	return os.WriteFile(pdfPath, []byte("%PDF-1.4\n"), 0o644)
}

type fakeLocator struct {
	pos signature.Position
	err error
}

func (f fakeLocator) Locate(context.Context, string) (signature.Position, error) {
	return f.pos, f.err
}

type copyStamper struct{}

func (copyStamper) Stamp(inPath, outPath string, _ signature.Position) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, append(data, []byte("%signed\n")...), 0o644)
}

type fixture struct {
	srv     *Server
	handler http.Handler
	root    string
	history *history.Store
}

func newFixture(t *testing.T, mutate ...func(*Deps)) *fixture {
	t.Helper()
	root := t.TempDir()
	cfg := types.AppConfig{
		Paths: types.PathsConfig{
			ProcessedDir:  filepath.Join(root, "complete"),
			ProcessingDir: filepath.Join(root, "processing"),
			SettingsFile:  filepath.Join(root, "user-config.json"),
		},
	}
	require.NoError(t, os.MkdirAll(cfg.Paths.ProcessedDir, 0o755))

	store, err := history.Open(types.HistoryConfig{DBPath: filepath.Join(root, "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := Deps{
		Config:    cfg,
		Logger:    logger,
		Hub:       notify.NewHub(logger, 0),
		Processor: rollover.NewProcessor(docx.Loader{}),
		History:   store,
	}
	for _, m := range mutate {
		m(&deps)
	}
	srv := New(deps)
	return &fixture{srv: srv, handler: srv.Routes(), root: root, history: store}
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// uploadRequest builds a multipart POST of the named files under field.
func uploadRequest(t *testing.T, target, field string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		w, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func letterBytes(t *testing.T, texts ...string) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "letter.docx")
	docxtest.Write(t, path, texts...)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func writeSettings(t *testing.T, path string, list []types.Setting) {
	t.Helper()
	data, err := json.Marshal(list)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestDocumentRollover(t *testing.T) {
	f := newFixture(t)
	req := uploadRequest(t, "/engagementLetters/document-rollover", uploadField, map[string][]byte{
		"Client 2022 Engagement Letter.docx": letterBytes(t, "Letter dated 2022", "Dear Client,"),
		"notes.txt":                          []byte("not a letter"),
	})

	rec := f.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[rolloverResponse](t, rec)
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 1, resp.Summary.Updated)
	assert.Equal(t, 1, resp.Summary.Skipped)
	assert.Equal(t, 2, resp.Summary.Total)

	out := filepath.Join(f.root, "complete", "Client 2023 Engagement Letter.docx")
	assert.FileExists(t, out)
	texts, err := docx.ReadTexts(out)
	require.NoError(t, err)
	assert.Contains(t, texts, "Letter dated 2023")

	entries, err := os.ReadDir(filepath.Join(f.root, "processing"))
	require.NoError(t, err)
	assert.Empty(t, entries, "request workspace should be removed")

	records, err := f.history.Run(context.Background(), resp.RunID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestDocumentRollover_SettingOverridesProcessedDir(t *testing.T) {
	f := newFixture(t)
	custom := filepath.Join(f.root, "custom")
	require.NoError(t, os.MkdirAll(custom, 0o755))
	writeSettings(t, f.srv.Config.Paths.SettingsFile, []types.Setting{
		{ConfigName: "PROCESSED_FILES_DIRECTORY", Type: types.SettingString, Value: json.RawMessage(`"` + custom + `"`)},
	})
	req := uploadRequest(t, "/engagementLetters/document-rollover", uploadField, map[string][]byte{
		"Client 2022 Engagement Letter.docx": letterBytes(t, "Letter dated 2022"),
	})

	rec := f.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.FileExists(t, filepath.Join(custom, "Client 2023 Engagement Letter.docx"))
}

func TestDocumentRollover_MissingProcessedDir(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.RemoveAll(f.srv.Config.Paths.ProcessedDir))
	req := uploadRequest(t, "/engagementLetters/document-rollover", uploadField, map[string][]byte{
		"a.docx": letterBytes(t, "Letter dated 2022"),
	})

	rec := f.do(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[statusResponse](t, rec)
	assert.Contains(t, resp.Message, "does not exist")
}

func TestDocumentRollover_NoFiles(t *testing.T) {
	f := newFixture(t)
	req := uploadRequest(t, "/engagementLetters/document-rollover", "wrongField", map[string][]byte{
		"a.docx": letterBytes(t, "Letter dated 2022"),
	})

	rec := f.do(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[statusResponse](t, rec).Message, "no files were uploaded")
}

func TestDocumentRollover_SendsEvents(t *testing.T) {
	f := newFixture(t)
	events, cancel := f.srv.Hub.Subscribe()
	defer cancel()
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go func() { _ = f.srv.Hub.Run(ctx) }()

	req := uploadRequest(t, "/engagementLetters/document-rollover", uploadField, map[string][]byte{
		"Unchanged 2022.docx": letterBytes(t, "Dear Client,"),
	})
	rec := f.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var seen []notify.EventType
	var result notify.ResultDetail
	timeout := time.After(2 * time.Second)
	for len(seen) == 0 || seen[len(seen)-1] != notify.Complete {
		select {
		case ev := <-events:
			seen = append(seen, ev.Type)
			if d, ok := ev.Detail.(notify.ResultDetail); ok {
				result = d
			}
		case <-timeout:
			t.Fatalf("timed out; got %v", seen)
		}
	}
	assert.Equal(t, []notify.EventType{
		notify.ProcessStart, notify.Processing, notify.ProcessError,
		notify.ProcessResults, notify.Progress, notify.Complete,
	}, seen)
	assert.Equal(t, "failed", result.Status)
	assert.Equal(t, "Unchanged_2022.docx", result.Filename)
}

func TestCheckEntities(t *testing.T) {
	f := newFixture(t)
	req := uploadRequest(t, "/entityChecker/check-entities", documentsField, map[string][]byte{
		"Acme.docx": letterBytes(t,
			"Acme Holdings LLC",
			"123 Main Street",
			"Springfield, IL 62701",
			"",
			"Name of Entity\tType of Return",
			"Acme Holdings LLC\tForm 1065",
		),
	})

	rec := f.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[[]types.Extraction](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme.docx", got[0].Filename)
	assert.Equal(t, "123 Main Street\nSpringfield, IL 62701", got[0].Address)
	assert.Contains(t, got[0].Entities, types.Entity{NameOfEntity: "Acme Holdings LLC", TypeOfReturn: "Form 1065"})
}

func TestPrintToPDF(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		d.Converter = fakeConverter{fail: map[string]bool{"Broken.docx": true}}
	})
	req := uploadRequest(t, "/pdfPrinter/print-to-pdf", documentsField, map[string][]byte{
		"Client_2023_Letter.docx": letterBytes(t, "Letter dated 2023"),
		"Broken.docx":             letterBytes(t, "Letter dated 2023"),
		"scan.png":                []byte("png"),
	})

	rec := f.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[documentsResponse](t, rec)
	assert.Equal(t, "partial", resp.Status)
	assert.Equal(t, []string{"Client 2023 Letter.pdf"}, resp.Files)
	assert.Len(t, resp.Errors, 2)
	assert.FileExists(t, filepath.Join(f.root, "complete", "Client 2023 Letter.pdf"))
}

func TestPrintToPDF_NotConfigured(t *testing.T) {
	f := newFixture(t)
	req := uploadRequest(t, "/pdfPrinter/print-to-pdf", documentsField, map[string][]byte{
		"a.docx": letterBytes(t, "x"),
	})

	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, req).Code)
}

func TestAddSignatures(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		d.Locator = fakeLocator{pos: signature.Position{Page: 1, Y: 200, Signer: "Jane Roe"}}
		d.Stamper = copyStamper{}
	})
	req := uploadRequest(t, "/pdfSignatures/add-signatures", documentsField, map[string][]byte{
		"Client Letter.pdf": []byte("%PDF-1.4\n"),
		"Client.docx":       letterBytes(t, "x"),
	})

	rec := f.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[documentsResponse](t, rec)
	assert.Equal(t, []string{"Client_Letter - Signed.pdf"}, resp.Files)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "is not a PDF")
	data, err := os.ReadFile(filepath.Join(f.root, "complete", "Client_Letter - Signed.pdf"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "%signed")
}

func TestAddSignatures_LocateFails(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		d.Locator = fakeLocator{err: signature.ErrNoSignatureBlock}
		d.Stamper = copyStamper{}
	})
	req := uploadRequest(t, "/pdfSignatures/add-signatures", documentsField, map[string][]byte{
		"a.pdf": []byte("%PDF-1.4\n"),
	})

	rec := f.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[documentsResponse](t, rec)
	assert.Equal(t, "partial", resp.Status)
	assert.Empty(t, resp.Files)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "signature block not found")
}

func TestGetSettings(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	writeSettings(t, f.srv.Config.Paths.SettingsFile, []types.Setting{
		{ConfigName: "YEAR", Type: types.SettingNumber, Value: json.RawMessage(`2024`)},
	})
	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]types.Setting](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "YEAR", got[0].ConfigName)
}

func TestPostSettings(t *testing.T) {
	f := newFixture(t)
	path := f.srv.Config.Paths.SettingsFile
	writeSettings(t, path, []types.Setting{
		{ConfigName: "PROCESSED_FILES_DIRECTORY", Type: types.SettingString, Value: json.RawMessage(`"old"`)},
		{ConfigName: "YEAR", Type: types.SettingNumber, Value: json.RawMessage(`2024`)},
	})
	body := `[{"config_name":"YEAR","type":"number","value":"2025"},{"config_name":"UNKNOWN","type":"string","value":"x"}]`

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/settings", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, statusResponse{Status: "success", Redirect: "/settings"}, decode[statusResponse](t, rec))

	var saved []types.Setting
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &saved))
	require.Len(t, saved, 2)
	assert.JSONEq(t, `"old"`, string(saved[0].Value))
	assert.JSONEq(t, `2025`, string(saved[1].Value))
}

func TestPostSettings_BadBody(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/settings", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryRoutes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, rec := range []types.ProcessingRecord{
		{RunID: "run-a", Filename: "one.docx", Status: types.StatusUpdated},
		{RunID: "run-a", Filename: "two.docx", Status: types.StatusFailed},
		{RunID: "run-b", Filename: "three.docx", Status: types.StatusUpdated},
	} {
		_, err := f.history.Record(ctx, rec)
		require.NoError(t, err)
	}

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/history?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]types.ProcessingRecord](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "three.docx", got[0].Filename)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/history?run=run-a&status=failed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[[]types.ProcessingRecord](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "two.docx", got[0].Filename)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/history?limit=many", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/history/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	runs := decode[[]history.RunSummary](t, rec)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-b", runs[0].RunID)
	assert.Equal(t, 1, runs[1].Failed)
}

func TestHistory_NotConfigured(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.History = nil })
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/history", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestShutdown_Token(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		d.Secrets = secrets.Secrets{secrets.ShutdownToken: "s3cret"}
	})

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/shutdown", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	select {
	case <-f.srv.ShutdownRequested():
		t.Fatal("shutdown accepted without a token")
	default:
	}

	req := httptest.NewRequest(http.MethodPost, "/shutdown", nil)
	req.Header.Set("X-Shutdown-Token", "s3cret")
	rec = f.do(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server shutting down")
	select {
	case <-f.srv.ShutdownRequested():
	default:
		t.Fatal("shutdown not requested")
	}

	// A second request does not close the channel twice.
	assert.NotPanics(t, func() { f.do(t, req) })
}

func TestServe_StopsOnShutdownRequest(t *testing.T) {
	f := newFixture(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- f.srv.Serve(context.Background(), ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/shutdown", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestFrontendDir(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>letters</h1>"), 0o644))
		d.Config.Paths.FrontendDir = dir
	})

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "letters")
}
