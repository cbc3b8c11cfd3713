package infobutton

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func getInfo(h *Handler, domain string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ontology/info/"+url.PathEscape(domain), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("domain")
	c.SetParamValues(domain)
	if err := h.Info(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandler_Info(t *testing.T) {
	h := NewHandler(NewService(Config{
		DictionaryPath:    testDictionary,
		DataDictionaryURL: "https://dictionary.example.org/{DOMAIN}",
	}, zerolog.Nop()))

	tests := []struct {
		name       string
		domain     string
		wantStatus int
		wantCode   string
	}{
		{"found", "diagnoses", http.StatusOK, ""},
		{"missing title", "labs", http.StatusOK, "IFB-103-LABS"},
		{"missing body", "meds", http.StatusOK, "IFB-102-MEDS"},
		{"unknown domain", "procedures", http.StatusNotFound, "IFB-101-PROCEDURES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := getInfo(h, tt.domain)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			var got Info
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.ErrorCode != tt.wantCode {
				t.Errorf("error code = %q, want %q", got.ErrorCode, tt.wantCode)
			}
			if got.Link != "https://dictionary.example.org/"+tt.domain {
				t.Errorf("link = %q", got.Link)
			}
		})
	}
}

func TestHandler_Info_DictionaryUnavailable(t *testing.T) {
	h := NewHandler(NewService(Config{}, zerolog.Nop()))

	rec := getInfo(h, "diagnoses")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var got Info
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ErrorCode != "IFB-404-DIAGNOSES" {
		t.Errorf("error code = %q", got.ErrorCode)
	}
}

func TestHandler_Info_BlankDomain(t *testing.T) {
	h := NewHandler(NewService(Config{DictionaryPath: testDictionary}, zerolog.Nop()))

	if rec := getInfo(h, " "); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
