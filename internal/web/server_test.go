package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/salon-agenda/internal/schedule"
	"github.com/example/salon-agenda/internal/store"
	"go.uber.org/zap"
)

var (
	testHours    = schedule.WorkingHours{Start: 9, End: 18, Interval: 30}
	testStylists = []string{"Luis", "Maria", "Pedro"}
	testServices = []string{"Corte de Cabello", "Barba y Afeitado", "Manicura", "Tinte"}
)

func newTestServer(t *testing.T, path string, seed []schedule.Appointment) (*Server, *httptest.Server) {
	t.Helper()
	st := store.New(store.NewFileResource(path), zap.NewNop())
	if seed != nil {
		st.Replace(seed)
		if err := st.Save(context.Background()); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	st.Load(context.Background())

	s, err := New(st, NewSessions(nil, nil), zap.NewNop(), "LuisTickets", testHours, testStylists, testServices)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	s.now = func() time.Time { return time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC) }
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func TestHome_RendersGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	_, ts := newTestServer(t, path, []schedule.Appointment{
		{ID: 1, Date: "2024-06-01", Time: "09:00", Stylist: "Luis", ClientName: "Ana", Service: "Tinte", Status: schedule.StatusConfirmed},
		{ID: 2, Date: "2024-06-01", Time: "09:30", Stylist: "Maria", ClientName: "Bea", Service: "Manicura", Status: schedule.StatusPending},
		{ID: 3, Date: "2024-06-03", Time: "09:00", Stylist: "Luis", ClientName: "Otro", Service: "Tinte"},
	})

	resp, err := newClient(t).Get(ts.URL + "/?date=2024-06-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, want := range []string{
		"LuisTickets",
		"Agenda para 2024-06-01",
		"+ Nueva Cita",
		`<div class="grid-header">Hora</div>`,
		`<div class="grid-header">Pedro</div>`,
		`data-time="17:30" data-stylist="Pedro"`,
		`class="appointment confirmada" data-id="1">Ana (Tinte)</div>`,
		`class="appointment pendiente" data-id="2">Bea (Manicura)</div>`,
		`<option value="Barba y Afeitado">`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}
	if strings.Contains(body, "Otro (Tinte)") {
		t.Fatalf("appointment from another date rendered")
	}
	if strings.Contains(body, "modal-backdrop open") {
		t.Fatalf("modal should start closed")
	}
}

func TestHome_DefaultsToToday(t *testing.T) {
	_, ts := newTestServer(t, filepath.Join(t.TempDir(), "data.json"), nil)
	resp, err := newClient(t).Get(ts.URL + "/?date=not-a-date")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Agenda para 2024-06-02") {
		t.Fatalf("expected today's agenda")
	}
}

func TestBookingFlow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s, ts := newTestServer(t, path, nil)
	c := newClient(t)

	resp, err := c.Get(ts.URL + "/appointments/new?date=2024-06-02&time=10:00&stylist=Pedro")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}

	resp, err = c.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body := readBody(t, resp)
	for _, want := range []string{
		"modal-backdrop open",
		`<option value="10:00" selected>`,
		`<option value="Pedro" selected>`,
		"autofocus",
		"Agenda para 2024-06-02",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("open modal missing %q", want)
		}
	}

	form := url.Values{
		"clientName": {"Ana"},
		"service":    {"Tinte"},
		"time":       {"10:00"},
		"stylist":    {"Pedro"},
	}
	resp, err = c.PostForm(ts.URL+"/appointments", form)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/?date=2024-06-02" {
		t.Fatalf("unexpected redirect %q", loc)
	}

	all := s.Store.All()
	if len(all) != 1 {
		t.Fatalf("expected one appointment, got %d", len(all))
	}
	a := all[0]
	if a.Date != "2024-06-02" || a.Time != "10:00" || a.Stylist != "Pedro" || a.ClientName != "Ana" || a.Service != "Tinte" || a.Status != schedule.StatusPending || a.ID == 0 {
		t.Fatalf("unexpected record %+v", a)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read persisted: %v", err)
	}
	persisted, err := schedule.DecodeDocument(b)
	if err != nil || len(persisted) != 1 || persisted[0].ID != a.ID {
		t.Fatalf("record not persisted: %v %s", err, b)
	}

	resp, err = c.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body = readBody(t, resp)
	if strings.Contains(body, "modal-backdrop open") {
		t.Fatalf("modal should be closed after submit")
	}
	if !strings.Contains(body, "Ana (Tinte)") {
		t.Fatalf("new appointment not rendered")
	}
}

func TestBooking_SaveFailureStillCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "data.json")
	s, ts := newTestServer(t, path, nil)
	c := newClient(t)

	resp, _ := c.Get(ts.URL + "/appointments/new?date=2024-06-02")
	readBody(t, resp)
	resp, err := c.PostForm(ts.URL+"/appointments", url.Values{
		"clientName": {"Ana"}, "service": {"Tinte"}, "time": {"09:00"}, "stylist": {"Luis"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 despite save failure, got %d", resp.StatusCode)
	}
	if s.Store.Len() != 1 {
		t.Fatalf("record should stay in memory")
	}
}

func TestBooking_MissingFieldKeepsModalOpen(t *testing.T) {
	s, ts := newTestServer(t, filepath.Join(t.TempDir(), "data.json"), nil)
	c := newClient(t)

	resp, _ := c.Get(ts.URL + "/appointments/new?date=2024-06-02&time=11:00&stylist=Maria")
	readBody(t, resp)
	resp, err := c.PostForm(ts.URL+"/appointments", url.Values{
		"service": {"Tinte"}, "time": {"11:00"}, "stylist": {"Maria"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "modal-backdrop open") || !strings.Contains(body, "clientName") {
		t.Fatalf("modal should stay open with a message")
	}
	if s.Store.Len() != 0 {
		t.Fatalf("invalid form reached the store")
	}
}

func TestBooking_Cancel(t *testing.T) {
	s, ts := newTestServer(t, filepath.Join(t.TempDir(), "data.json"), nil)
	c := newClient(t)

	resp, _ := c.Get(ts.URL + "/appointments/new?date=2024-06-02&time=11:00&stylist=Maria")
	readBody(t, resp)
	resp, err := c.PostForm(ts.URL+"/appointments/cancel", url.Values{"clientName": {"typed"}})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}

	resp, _ = c.Get(ts.URL + "/")
	body := readBody(t, resp)
	if strings.Contains(body, "modal-backdrop open") {
		t.Fatalf("modal should be closed after cancel")
	}
	if strings.Contains(body, `value="typed"`) {
		t.Fatalf("cancelled input leaked back into the form")
	}
	if s.Store.Len() != 0 {
		t.Fatalf("cancel must not persist")
	}
}

func TestAPI_CreateAndGrid(t *testing.T) {
	_, ts := newTestServer(t, filepath.Join(t.TempDir(), "data.json"), nil)

	payload := `{"date":"2024-06-02","clientName":"Ana","service":"Tinte","time":"10:00","stylist":"Pedro"}`
	resp, err := http.Post(ts.URL+"/api/appointments", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}
	var a schedule.Appointment
	if err := json.Unmarshal([]byte(body), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.Status != schedule.StatusPending || a.ID == 0 {
		t.Fatalf("unexpected record %+v", a)
	}

	resp, err = http.Get(ts.URL + "/api/grid?date=2024-06-02")
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	var g schedule.Grid
	if err := json.Unmarshal([]byte(readBody(t, resp)), &g); err != nil {
		t.Fatalf("decode grid: %v", err)
	}
	cell, ok := g.Cell("10:00", "Pedro")
	if !ok || len(cell.Appointments) != 1 || cell.Appointments[0].ID != a.ID {
		t.Fatalf("appointment not in grid cell: %+v", cell)
	}
	if len(g.Rows) != 18 {
		t.Fatalf("expected 18 rows, got %d", len(g.Rows))
	}
}

func TestAPI_CreateMissingField(t *testing.T) {
	_, ts := newTestServer(t, filepath.Join(t.TempDir(), "data.json"), nil)
	resp, err := http.Post(ts.URL+"/api/appointments", "application/json", strings.NewReader(`{"clientName":"Ana"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, `"field":"service"`) {
		t.Fatalf("expected 400 naming service, got %d %s", resp.StatusCode, body)
	}
}

func TestAPI_Slots(t *testing.T) {
	_, ts := newTestServer(t, filepath.Join(t.TempDir(), "data.json"), nil)
	resp, err := http.Get(ts.URL + "/api/slots")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var out struct {
		Slots []string `json:"slots"`
	}
	if err := json.Unmarshal([]byte(readBody(t, resp)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Slots) != 18 || out.Slots[0] != "09:00" || out.Slots[17] != "17:30" {
		t.Fatalf("unexpected slots %v", out.Slots)
	}
}

func TestDocument_ETagAndReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s, ts := newTestServer(t, path, nil)

	resp, err := http.Get(ts.URL + "/data.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body := readBody(t, resp)
	tag := resp.Header.Get("ETag")
	if tag == "" {
		t.Fatalf("expected ETag")
	}
	if !strings.Contains(body, `"appointments": []`) {
		t.Fatalf("unexpected document %s", body)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/data.json", nil)
	req.Header.Set("If-None-Match", tag)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional get: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", resp.StatusCode)
	}

	doc := []byte(`{"appointments":[{"id":5,"date":"2024-06-01","time":"09:00","stylist":"Luis","clientName":"Ana","service":"Tinte","status":"Confirmada"}]}`)
	resp, err = http.Post(ts.URL+"/data.json", "application/json", bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp.Header.Get("ETag") == tag {
		t.Fatalf("ETag should change with the document")
	}
	if all := s.Store.All(); len(all) != 1 || all[0].ID != 5 {
		t.Fatalf("document not replaced: %+v", all)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), `"clientName": "Ana"`) {
		t.Fatalf("replacement not persisted: %s", b)
	}

	resp, err = http.Post(ts.URL+"/data.json", "application/json", strings.NewReader("{oops"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed document, got %d", resp.StatusCode)
	}
}

func TestDocument_ServesAsHTTPResource(t *testing.T) {
	_, upstream := newTestServer(t, filepath.Join(t.TempDir(), "data.json"), nil)

	remote := store.New(store.NewHTTPResource(upstream.URL+"/data.json", upstream.Client()), zap.NewNop())
	remote.Load(context.Background())
	remote.Append(schedule.Appointment{ID: 77, Date: "2024-06-02", Time: "09:00", Stylist: "Luis", ClientName: "Eva", Service: "Tinte", Status: schedule.StatusPending})
	if err := remote.Save(context.Background()); err != nil {
		t.Fatalf("save through upstream: %v", err)
	}

	again := store.New(store.NewHTTPResource(upstream.URL+"/data.json", upstream.Client()), zap.NewNop()).Load(context.Background())
	if len(again) != 1 || again[0].ID != 77 {
		t.Fatalf("unexpected upstream document %+v", again)
	}
}

func TestMisc(t *testing.T) {
	_, ts := newTestServer(t, filepath.Join(t.TempDir(), "data.json"), nil)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	if body := readBody(t, resp); body != "ok\n" {
		t.Fatalf("unexpected healthz %q", body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}

	resp, _ = http.Get(ts.URL + "/nope")
	readBody(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp, _ = http.Get(ts.URL + "/static/app.css")
	if body := readBody(t, resp); !strings.Contains(body, ".agenda-grid") {
		t.Fatalf("static css not served")
	}
}
