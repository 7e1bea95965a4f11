package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/salon-agenda/internal/schedule"
	"go.uber.org/zap"
)

type State string

const (
	StateClosed     State = "closed"
	StateOpen       State = "open"
	StateSubmitting State = "submitting"
)

var (
	ErrInvalidTransition = errors.New("invalid booking transition")
	ErrMissingField      = errors.New("required field missing")
)

// FieldError names the first required field that was empty.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s is required", e.Field) }

func (e *FieldError) Unwrap() error { return ErrMissingField }

// Form is the modal's input.
type Form struct {
	ClientName string `json:"clientName"`
	Service    string `json:"service"`
	Time       string `json:"time"`
	Stylist    string `json:"stylist"`
}

func (f Form) validate() error {
	required := []struct{ name, value string }{
		{"clientName", f.ClientName},
		{"service", f.Service},
		{"time", f.Time},
		{"stylist", f.Stylist},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &FieldError{Field: r.name}
		}
	}
	return nil
}

// Committer is the part of the store the workflow writes through.
type Committer interface {
	NextID(now time.Time) int64
	Append(a schedule.Appointment)
	Save(ctx context.Context) error
}

// Snapshot is the resumable modal state, small enough for a cookie.
type Snapshot struct {
	State State  `json:"s"`
	Form  Form   `json:"f"`
	Focus string `json:"fo,omitempty"`
}

// Workflow creates one appointment at a time:
// closed -> open -> submitting -> closed, or open -> closed on cancel.
type Workflow struct {
	store Committer
	log   *zap.Logger
	now   func() time.Time

	state State
	form  Form
	focus string

	// OnCommitted runs after a successful submit with the booked date; the
	// caller re-projects and re-renders that day.
	OnCommitted func(date string)
}

func New(store Committer, log *zap.Logger) *Workflow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{store: store, log: log.Named("booking"), now: time.Now, state: StateClosed}
}

// Resume rebuilds a workflow from a snapshot. A snapshot caught mid-submit
// or with an unknown state resumes closed.
func Resume(store Committer, log *zap.Logger, snap Snapshot) *Workflow {
	w := New(store, log)
	if snap.State == StateOpen {
		w.state = StateOpen
		w.form = snap.Form
		w.focus = snap.Focus
	}
	return w
}

func (w *Workflow) Snapshot() Snapshot {
	return Snapshot{State: w.state, Form: w.form, Focus: w.focus}
}

func (w *Workflow) State() State { return w.state }

func (w *Workflow) Form() Form { return w.form }

// Focus names the input that should receive focus while open.
func (w *Workflow) Focus() string { return w.focus }

// Open shows the form, prefilled with the cell's time and stylist when given.
func (w *Workflow) Open(slot, stylist string) error {
	if w.state != StateClosed {
		return fmt.Errorf("%w: open from %s", ErrInvalidTransition, w.state)
	}
	w.form = Form{Time: slot, Stylist: stylist}
	w.focus = "clientName"
	w.state = StateOpen
	return nil
}

// Cancel discards the form without persisting anything.
func (w *Workflow) Cancel() error {
	if w.state != StateOpen {
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, w.state)
	}
	w.reset()
	return nil
}

// Submit books f on date. Only presence of the four fields is checked. A
// failed save is logged and otherwise ignored: the record stays in memory
// and the form still closes.
func (w *Workflow) Submit(ctx context.Context, date string, f Form) (schedule.Appointment, error) {
	if w.state != StateOpen {
		return schedule.Appointment{}, fmt.Errorf("%w: submit from %s", ErrInvalidTransition, w.state)
	}
	if err := f.validate(); err != nil {
		w.form = f
		return schedule.Appointment{}, err
	}

	w.state = StateSubmitting
	a := schedule.Appointment{
		ID:         w.store.NextID(w.now()),
		Date:       date,
		Time:       f.Time,
		Stylist:    f.Stylist,
		ClientName: f.ClientName,
		Service:    f.Service,
		Status:     schedule.StatusPending,
	}
	w.store.Append(a)
	if err := w.store.Save(ctx); err != nil {
		w.log.Warn("appointment kept in memory only", zap.Int64("id", a.ID), zap.Error(err))
	}

	w.reset()
	w.log.Info("appointment booked",
		zap.Int64("id", a.ID),
		zap.String("date", a.Date),
		zap.String("time", a.Time),
		zap.String("stylist", a.Stylist))
	if w.OnCommitted != nil {
		w.OnCommitted(date)
	}
	return a, nil
}

func (w *Workflow) reset() {
	w.state = StateClosed
	w.form = Form{}
	w.focus = ""
}
