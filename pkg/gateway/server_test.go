package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/morfien101/fila/pkg/desk"
	"github.com/morfien101/fila/pkg/fila"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var brt = time.FixedZone("BRT", -3*60*60)

func newTestServer(t *testing.T, rl RateLimitOptions) *Server {
	t.Helper()
	base := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	var tick int
	store := fila.NewStore(fila.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}))
	s, err := New(desk.New(store, nil), Options{Location: brt, RateLimit: rl})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func expectDetail(t *testing.T, w *httptest.ResponseRecorder, code int, msg string) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("status = %d, expected %d (%s)", w.Code, code, w.Body.String())
	}
	got := decode[map[string]string](t, w)
	if got["detail"] != msg {
		t.Fatalf("detail = %q, expected %q", got["detail"], msg)
	}
}

func TestWalkInOverHTTP(t *testing.T) {
	s := newTestServer(t, RateLimitOptions{})

	for _, body := range []string{
		`{"nome":"Ana","tipo_atendimento":"N"}`,
		`{"nome":"Bia","tipo_atendimento":"P"}`,
		`{"nome":"Caio","tipo_atendimento":"P"}`,
	} {
		if w := do(t, s, http.MethodPost, "/fila", body); w.Code != http.StatusOK {
			t.Fatalf("enqueue %s: %d %s", body, w.Code, w.Body.String())
		}
	}

	w := do(t, s, http.MethodGet, "/fila", "")
	pending := decode[[]pendingView](t, w)
	want := []string{"Bia", "Caio", "Ana"}
	if len(pending) != len(want) {
		t.Fatalf("pending = %+v", pending)
	}
	for i, p := range pending {
		if p.Nome != want[i] || p.Posicao != i || p.Atendido {
			t.Fatalf("pending[%d] = %+v", i, p)
		}
	}
	if pending[2].DataChegada != "2024-03-01 12:01:00" {
		t.Fatalf("Ana arrival = %q", pending[2].DataChegada)
	}

	w = do(t, s, http.MethodPut, "/fila", "")
	served := decode[serveView](t, w)
	if served.Status != statusServed || served.Nome != "Bia" || served.DataAtendimento != "2024-03-01 12:04:00" {
		t.Fatalf("serve = %+v", served)
	}

	w = do(t, s, http.MethodGet, "/fila/0", "")
	head := decode[pendingView](t, w)
	if head.Nome != "Caio" || head.Posicao != 0 {
		t.Fatalf("head = %+v", head)
	}

	w = do(t, s, http.MethodGet, "/atendimentos", "")
	history := decode[[]servedView](t, w)
	if len(history) != 1 || history[0].Nome != "Bia" || history[0].TipoAtendimento != "P" {
		t.Fatalf("history = %+v", history)
	}
	if history[0].DataChegada != "2024-03-01 12:02:00" {
		t.Fatalf("history arrival = %q", history[0].DataChegada)
	}
}

func TestEnqueueRejections(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
		msg  string
	}{
		{"name too long", `{"nome":"abcdefghijklmnopqrstu","tipo_atendimento":"N"}`, http.StatusBadRequest, msgNameTooLong},
		{"name checked before class", `{"nome":"abcdefghijklmnopqrstu","tipo_atendimento":"X"}`, http.StatusBadRequest, msgNameTooLong},
		{"unknown class", `{"nome":"Ana","tipo_atendimento":"X"}`, http.StatusBadRequest, msgInvalidClass},
		{"missing class", `{"nome":"Ana"}`, http.StatusUnprocessableEntity, msgInvalidBody},
		{"malformed json", `{"nome":`, http.StatusUnprocessableEntity, msgInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, RateLimitOptions{})
			w := do(t, s, http.MethodPost, "/fila", tt.body)
			expectDetail(t, w, tt.code, tt.msg)

			if list := decode[[]pendingView](t, do(t, s, http.MethodGet, "/fila", "")); len(list) != 0 {
				t.Fatalf("queue mutated: %+v", list)
			}
		})
	}
}

func TestPositionRoutes(t *testing.T) {
	s := newTestServer(t, RateLimitOptions{})
	do(t, s, http.MethodPost, "/fila", `{"nome":"Ana","tipo_atendimento":"N"}`)
	do(t, s, http.MethodPost, "/fila", `{"nome":"Bia","tipo_atendimento":"N"}`)

	expectDetail(t, do(t, s, http.MethodGet, "/fila/5", ""), http.StatusNotFound, msgNotFound)
	expectDetail(t, do(t, s, http.MethodGet, "/fila/-1", ""), http.StatusNotFound, msgNotFound)
	expectDetail(t, do(t, s, http.MethodGet, "/fila/abc", ""), http.StatusUnprocessableEntity, msgInvalidPosicao)
	expectDetail(t, do(t, s, http.MethodDelete, "/fila/2", ""), http.StatusNotFound, msgNotFound)

	w := do(t, s, http.MethodDelete, "/fila/0", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	if got := decode[map[string]string](t, w)["message"]; got != "Cliente na posição 0 removido" {
		t.Fatalf("message = %q", got)
	}

	pending := decode[[]pendingView](t, do(t, s, http.MethodGet, "/fila", ""))
	if len(pending) != 1 || pending[0].Nome != "Bia" || pending[0].Posicao != 0 {
		t.Fatalf("pending = %+v", pending)
	}
}

func TestServeEmptyQueue(t *testing.T) {
	s := newTestServer(t, RateLimitOptions{})
	w := do(t, s, http.MethodPut, "/fila", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	got := decode[serveView](t, w)
	if got != (serveView{Status: statusEmpty}) {
		t.Fatalf("serve = %+v", got)
	}
	if history := decode[[]servedView](t, do(t, s, http.MethodGet, "/atendimentos", "")); len(history) != 0 {
		t.Fatalf("history = %+v", history)
	}
}

func TestServeResultAllServed(t *testing.T) {
	s := newTestServer(t, RateLimitOptions{})
	if got := s.serveResult(fila.ServedRecord{}, fila.AllServed); got.Status != statusAllServed || got.Nome != "" {
		t.Fatalf("got %+v", got)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, RateLimitOptions{})
	do(t, s, http.MethodPost, "/fila", `{"nome":"Ana","tipo_atendimento":"N"}`)
	do(t, s, http.MethodPost, "/fila", `{"nome":"Bia","tipo_atendimento":"N"}`)
	do(t, s, http.MethodPut, "/fila", "")

	got := decode[map[string]any](t, do(t, s, http.MethodGet, "/healthz", ""))
	if got["status"] != "ok" || got["pending"] != float64(1) || got["served"] != float64(1) {
		t.Fatalf("health = %+v", got)
	}
}

func TestDefaultLocation(t *testing.T) {
	s, err := New(desk.New(fila.NewStore(), nil), Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.loc.String() != DefaultTimezone {
		t.Fatalf("location = %s", s.loc)
	}
}
