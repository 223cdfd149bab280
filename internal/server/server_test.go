package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tunde-oladipo/casefile-audit/constants"
	"github.com/tunde-oladipo/casefile-audit/internal/dispatch"
	"github.com/tunde-oladipo/casefile-audit/internal/export"
	"github.com/tunde-oladipo/casefile-audit/internal/fields"
	"github.com/tunde-oladipo/casefile-audit/internal/llm"
	"github.com/tunde-oladipo/casefile-audit/internal/pipeline"
	"github.com/tunde-oladipo/casefile-audit/internal/store"
)

type stubExtractor struct{}

func (stubExtractor) ExtractFields(_ context.Context, req llm.ExtractRequest) (fields.Map, []byte, error) {
	if req.DocType == constants.DocTypeI797 {
		return fields.Map{"beneficiary": "JANE DOE", "notice_date": "2024-02-01"}, nil, nil
	}
	return fields.Map{}, nil, nil
}

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "server.db"), nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	processor := pipeline.NewProcessor(nil, dispatch.NewDispatcher(stubExtractor{}, nil), 2)
	srv := New(Params{
		Processor: processor,
		Store:     st,
		Exporter:  export.NewService(nil),
		Options:   pipeline.DefaultOptions(),
	})
	return srv, st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestProcessEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()

	rr := doJSON(t, h, http.MethodPost, "/api/process", map[string]any{
		"source_name": "casefile.pdf",
		"pages": []map[string]any{
			{"text": "U.S. Citizenship and Immigration Services\nI-797, Notice of Action\nReceipt Number: WAC1234567890\n" + strings.Repeat("details ", 40)},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var res pipeline.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.SegmentsFound != 1 {
		t.Errorf("SegmentsFound = %d, want 1", res.SegmentsFound)
	}
	if res.Documents[0].DocumentType != constants.DocTypeI797 {
		t.Errorf("type = %s", res.Documents[0].DocumentType)
	}

	// The run was persisted as a side effect.
	stored, err := st.GetRun(context.Background(), res.ProcessingID)
	if err != nil {
		t.Fatalf("stored run not found: %v", err)
	}
	if stored.SourceName != "casefile.pdf" {
		t.Errorf("stored SourceName = %q", stored.SourceName)
	}
}

func TestProcessEndpointRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	t.Run("empty pages", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodPost, "/api/process", map[string]any{
			"source_name": "x.pdf",
			"pages":       []any{},
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "error") {
			t.Errorf("body = %s", rr.Body.String())
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/process", strings.NewReader("{nope"))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
	})
}

func TestRunsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rr := doJSON(t, h, http.MethodPost, "/api/process", map[string]any{
		"source_name": "casefile.pdf",
		"pages": []map[string]any{
			{"text": "I-797, Notice of Action\n" + strings.Repeat("details ", 40)},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("process status = %d", rr.Code)
	}
	var res pipeline.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}

	t.Run("list", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/api/runs", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var body struct {
			Runs []store.RunInfo `json:"runs"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Runs) != 1 || body.Runs[0].ID != res.ProcessingID {
			t.Errorf("runs = %+v", body.Runs)
		}
	})

	t.Run("get by id", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/api/runs/"+res.ProcessingID, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
	})

	t.Run("get missing id", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/api/runs/does-not-exist", nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rr.Code)
		}
	})

	t.Run("export workbook", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/api/runs/"+res.ProcessingID+"/export", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		ct := rr.Header().Get("Content-Type")
		if !strings.Contains(ct, "spreadsheetml") {
			t.Errorf("Content-Type = %q", ct)
		}
		if rr.Body.Len() == 0 {
			t.Error("empty workbook body")
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/api/runs?limit=zero", nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
	})
}
