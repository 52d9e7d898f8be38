package consult

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*Handler, *echo.Echo) {
	t.Helper()
	svc, _, _, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func TestHandler_Start(t *testing.T) {
	h, e := newTestHandler(t)
	body := `{"patient_id":"` + uuid.New().String() + `","clinician_id":"` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Start(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var got Session
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != StatusActive {
		t.Errorf("expected status %q, got %q", StatusActive, got.Status)
	}
}

func TestHandler_Start_MissingClinician(t *testing.T) {
	h, e := newTestHandler(t)
	body := `{"patient_id":"` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Start(c); err == nil {
		t.Error("expected error for missing clinician")
	}
}

func TestHandler_SetTranslation(t *testing.T) {
	h, e := newTestHandler(t)
	s := startSession(t, h.svc)

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"enabled":true}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())

	if err := h.SetTranslation(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Session
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !got.TranslationEnabled {
		t.Error("expected translation to be enabled")
	}
}

func TestHandler_PushAudio(t *testing.T) {
	h, e := newTestHandler(t)
	s := startSession(t, h.svc)

	frame := base64.StdEncoding.EncodeToString([]byte("frame"))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"frame":"`+frame+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())

	if err := h.PushAudio(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}
}

func TestHandler_PushAudio_BadBase64(t *testing.T) {
	h, e := newTestHandler(t)
	s := startSession(t, h.svc)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"frame":"not base64!!"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())

	if err := h.PushAudio(c); err == nil {
		t.Error("expected error for invalid base64 frame")
	}
}

func TestHandler_End(t *testing.T) {
	h, e := newTestHandler(t)
	s := startSession(t, h.svc)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())

	if err := h.End(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Session
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != StatusEnded {
		t.Errorf("expected status %q, got %q", StatusEnded, got.Status)
	}
}

func TestHandler_Caption_UnknownSession(t *testing.T) {
	h, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if err := h.Caption(c); err == nil {
		t.Error("expected error for unknown session")
	}
}
