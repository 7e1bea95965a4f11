package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/salon-agenda/internal/booking"
	"github.com/example/salon-agenda/internal/schedule"
	"github.com/example/salon-agenda/internal/store"
	"go.uber.org/zap"
)

//go:embed templates/*.html static/*
var assets embed.FS

type Server struct {
	Store    *store.Store
	Sessions *Sessions
	Log      *zap.Logger

	Title    string
	Hours    schedule.WorkingHours
	Stylists []string
	Services []string

	tmpl  *template.Template
	slots []string
	now   func() time.Time
}

func New(st *store.Store, sessions *Sessions, log *zap.Logger, title string, hours schedule.WorkingHours, stylists, services []string) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"cellURL": cellURL,
	}).ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		Store:    st,
		Sessions: sessions,
		Log:      log.Named("web"),
		Title:    title,
		Hours:    hours,
		Stylists: stylists,
		Services: services,
		tmpl:     tmpl,
		slots:    schedule.GenerateSlots(hours),
		now:      time.Now,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	static, _ := fs.Sub(assets, "static")
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/appointments/new", s.handleNew)
	mux.HandleFunc("/appointments/cancel", s.handleCancel)
	mux.HandleFunc("/appointments", s.handleCreate)

	mux.HandleFunc("/api/slots", s.handleAPISlots)
	mux.HandleFunc("/api/grid", s.handleAPIGrid)
	mux.HandleFunc("/api/appointments", s.handleAPICreate)
	mux.HandleFunc("/data.json", s.handleDocument)

	var h http.Handler = mux
	h = withAccessLog(s.Log)(h)
	h = withRequestID(h)
	h = withRecover(s.Log)(h)
	return h
}

func (s *Server) Slots() []string { return s.slots }

func (s *Server) today() string { return schedule.Today(s.now()) }

// selectedDate picks the query date, then the session's, then today.
func (s *Server) selectedDate(r *http.Request, sess viewSession) string {
	if d := strings.TrimSpace(r.URL.Query().Get("date")); schedule.ValidDate(d) {
		return d
	}
	if schedule.ValidDate(sess.Date) {
		return sess.Date
	}
	return s.today()
}

func (s *Server) workflow(sess viewSession) *booking.Workflow {
	return booking.Resume(s.Store, s.Log, sess.Modal)
}

type modalData struct {
	Open  bool
	Form  booking.Form
	Focus string
}

type pageData struct {
	Title    string
	Date     string
	Grid     schedule.Grid
	Slots    []string
	Stylists []string
	Services []string
	Modal    modalData
	Flash    string
}

func (s *Server) page(date string, wf *booking.Workflow, flash string) pageData {
	return pageData{
		Title:    s.Title,
		Date:     date,
		Grid:     schedule.Project(s.Store.All(), date, s.slots, s.Stylists),
		Slots:    s.slots,
		Stylists: s.Stylists,
		Services: s.Services,
		Modal: modalData{
			Open:  wf.State() == booking.StateOpen,
			Form:  wf.Form(),
			Focus: wf.Focus(),
		},
		Flash: flash,
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess := s.Sessions.Get(r)
	date := s.selectedDate(r, sess)
	if date != sess.Date {
		sess.Date = date
		s.saveSession(w, r, sess)
	}
	s.render(w, http.StatusOK, s.page(date, s.workflow(sess), ""))
}

// handleNew opens the booking modal, prefilled from the clicked cell.
func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess := s.Sessions.Get(r)
	sess.Date = s.selectedDate(r, sess)
	wf := s.workflow(sess)
	if wf.State() == booking.StateOpen {
		_ = wf.Cancel()
	}
	q := r.URL.Query()
	if err := wf.Open(q.Get("time"), q.Get("stylist")); err != nil {
		writeErr(w, err, http.StatusConflict)
		return
	}
	sess.Modal = wf.Snapshot()
	s.saveSession(w, r, sess)
	http.Redirect(w, r, dayURL(sess.Date), http.StatusFound)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess := s.Sessions.Get(r)
	wf := s.workflow(sess)
	if err := wf.Cancel(); err != nil && !errors.Is(err, booking.ErrInvalidTransition) {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	sess.Modal = wf.Snapshot()
	s.saveSession(w, r, sess)
	http.Redirect(w, r, dayURL(s.selectedDate(r, sess)), http.StatusFound)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess := s.Sessions.Get(r)
	date := s.selectedDate(r, sess)

	wf := s.workflow(sess)
	if wf.State() != booking.StateOpen {
		// The form was posted without an open modal in the session (expired
		// or rejected cookie); the page that posted it had it open.
		_ = wf.Open("", "")
	}
	redirect := dayURL(date)
	wf.OnCommitted = func(d string) { redirect = dayURL(d) }

	form := booking.Form{
		ClientName: strings.TrimSpace(r.FormValue("clientName")),
		Service:    strings.TrimSpace(r.FormValue("service")),
		Time:       strings.TrimSpace(r.FormValue("time")),
		Stylist:    strings.TrimSpace(r.FormValue("stylist")),
	}
	if _, err := wf.Submit(r.Context(), date, form); err != nil {
		var fe *booking.FieldError
		if errors.As(err, &fe) {
			sess.Date = date
			sess.Modal = wf.Snapshot()
			s.saveSession(w, r, sess)
			s.render(w, http.StatusUnprocessableEntity, s.page(date, wf, "Falta completar: "+fe.Field))
			return
		}
		s.Log.Error("booking failed", zap.Error(err))
		writeErr(w, err, http.StatusInternalServerError)
		return
	}

	sess.Date = date
	sess.Modal = wf.Snapshot()
	s.saveSession(w, r, sess)
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess viewSession) {
	if err := s.Sessions.Save(w, r, sess); err != nil {
		s.Log.Warn("session cookie not written", zap.Error(err))
	}
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "base", data); err != nil {
		s.Log.Error("render failed", zap.Error(err))
	}
}

func writeErr(w http.ResponseWriter, err error, code int) {
	http.Error(w, err.Error(), code)
}

func dayURL(date string) string {
	return "/?date=" + url.QueryEscape(date)
}

func cellURL(date, slot, stylist string) string {
	q := url.Values{}
	q.Set("date", date)
	q.Set("time", slot)
	q.Set("stylist", stylist)
	return "/appointments/new?" + q.Encode()
}

// Start serves h until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
