package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/neolimp/leadfilter/internal/config"
	"github.com/neolimp/leadfilter/internal/email"
	"github.com/neolimp/leadfilter/internal/pipeline"
	"github.com/neolimp/leadfilter/internal/store"
)

type fakeStore struct {
	created []*store.Record
}

func (f *fakeStore) Create(ctx context.Context, record *store.Record) error {
	record.ID = fmt.Sprintf("rec-%d", len(f.created)+1)
	f.created = append(f.created, record)
	return nil
}

func (f *fakeStore) MarkNotified(ctx context.Context, id, mailID string) error {
	return nil
}

func (f *fakeStore) RecordMailError(ctx context.Context, id, errMsg string) error {
	return nil
}

type fakeSender struct {
	sent   int
	result email.Result
}

func (f *fakeSender) Send(ctx context.Context, msg email.Message) email.Result {
	f.sent++
	return f.result
}

func (f *fakeSender) Name() string { return "fake" }

func newTestServer(sender *fakeSender) (*Server, *fakeStore) {
	st := &fakeStore{}
	cfg := &config.Config{
		Server: config.ServerConfig{ListenAddress: ":0", Origin: "web-neolimp-contacto"},
		Email: config.EmailConfig{
			From:           "no-reply@neolimp.com.ar",
			To:             []string{"ventas@neolimp.com.ar"},
			SendTimeoutSec: 5,
		},
	}
	p := pipeline.New(st, sender, cfg, zap.NewNop())
	return NewServer(p, cfg.Server.ListenAddress, zap.NewNop()), st
}

func leadPayload() map[string]string {
	return map[string]string{
		"nombre":   "Juan Perez",
		"empresa":  "Metalurgica Norte",
		"email":    "juan@metalnorte.com.ar",
		"telefono": "(03489) 42-1234",
		"servicio": "limpieza-industrial",
		"mensaje":  "Hola, necesito presupuesto para limpieza semanal de oficina de 300m2 en Campana, con relevamiento previo. Gracias.",
	}
}

func postJSON(t *testing.T, s *Server, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) pipeline.Response {
	t.Helper()
	var resp pipeline.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(&fakeSender{result: email.Result{Success: true}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestContactMissingFields(t *testing.T) {
	s, _ := newTestServer(&fakeSender{result: email.Result{Success: true}})

	payload := leadPayload()
	delete(payload, "telefono")
	w := postJSON(t, s, payload)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.OK {
		t.Error("ok = true, want false")
	}
}

func TestContactLeadJSON(t *testing.T) {
	sender := &fakeSender{result: email.Result{Success: true, MessageID: "msg-7"}}
	s, st := newTestServer(sender)

	w := postJSON(t, s, leadPayload())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	resp := decodeResponse(t, w)
	if !resp.OK || resp.Status != "consulta_real" {
		t.Errorf("resp = %+v, want ok consulta_real", resp)
	}
	if resp.DocID == nil {
		t.Error("docId missing")
	}
	if resp.MailSent == nil || !*resp.MailSent {
		t.Error("mailSent should be true")
	}
	if resp.MailID != "msg-7" {
		t.Errorf("mailId = %q, want msg-7", resp.MailID)
	}
	if sender.sent != 1 {
		t.Errorf("sends = %d, want 1", sender.sent)
	}
	if len(st.created) != 1 {
		t.Errorf("persisted = %d, want 1", len(st.created))
	}
}

func TestContactSpamForm(t *testing.T) {
	sender := &fakeSender{result: email.Result{Success: true}}
	s, st := newTestServer(sender)

	form := url.Values{}
	form.Set("nombre", "Juan Perez")
	form.Set("email", "juan@metalnorte.com.ar")
	form.Set("telefono", "(03489) 42-1234")
	form.Set("mensaje", "ofrecemos marketing digital y posicionamiento web, sume seguidores ya")
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if !resp.OK || !resp.Discarded || resp.Status != "spam" {
		t.Errorf("resp = %+v, want ok discarded spam", resp)
	}
	if sender.sent != 0 {
		t.Error("spam must not trigger email")
	}
	if len(st.created) != 1 {
		t.Error("spam must still be persisted")
	}
}

func TestContactHoneypot(t *testing.T) {
	sender := &fakeSender{result: email.Result{Success: true}}
	s, st := newTestServer(sender)

	payload := leadPayload()
	payload["website"] = "http://bot.example.com"
	w := postJSON(t, s, payload)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decodeResponse(t, w)
	if !resp.OK || !resp.Discarded {
		t.Errorf("resp = %+v, want ok discarded", resp)
	}
	if len(st.created) != 0 {
		t.Error("honeypot submission must not be persisted")
	}
	if sender.sent != 0 {
		t.Error("honeypot submission must not trigger email")
	}
}

func TestContactNotifyFailure(t *testing.T) {
	sender := &fakeSender{result: email.Result{Success: false, Error: errors.New("smtp down")}}
	s, _ := newTestServer(sender)

	w := postJSON(t, s, leadPayload())
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 (body %s)", w.Code, w.Body.String())
	}

	resp := decodeResponse(t, w)
	if resp.OK {
		t.Error("ok = true, want false")
	}
	// Classification must still be visible even though the send failed.
	if resp.Status != "consulta_real" {
		t.Errorf("status = %q, want consulta_real", resp.Status)
	}
	if resp.Error == "" {
		t.Error("error field missing")
	}
}

func TestContactBadJSON(t *testing.T) {
	s, _ := newTestServer(&fakeSender{result: email.Result{Success: true}})

	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
