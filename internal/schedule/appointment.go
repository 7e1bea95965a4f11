package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// DateLayout is the calendar date format used for Appointment.Date.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusPending   Status = "Pendiente"
	StatusConfirmed Status = "Confirmada"
)

// Category is the display class of an appointment in the grid.
type Category string

const (
	CategoryPending   Category = "pendiente"
	CategoryConfirmed Category = "confirmada"
)

// Category maps every status, known or not, to a display class. A new
// status value has to be added here to get anything but the pending class.
func (s Status) Category() Category {
	switch s {
	case StatusConfirmed:
		return CategoryConfirmed
	case StatusPending:
		return CategoryPending
	default:
		return CategoryPending
	}
}

type Appointment struct {
	ID         int64  `json:"id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Stylist    string `json:"stylist"`
	ClientName string `json:"clientName"`
	Service    string `json:"service"`
	Status     Status `json:"status"`
}

// Label is the text shown inside a grid cell.
func (a Appointment) Label() string {
	return a.ClientName + " (" + a.Service + ")"
}

// Document is the persisted envelope: {"appointments": [...]}.
type Document struct {
	Appointments []Appointment `json:"appointments"`
}

// ErrNullDocument rejects a body of bare JSON null, which has no
// "appointments" to read.
var ErrNullDocument = errors.New("document is null")

// DecodeDocument parses a persisted document. A missing or null
// "appointments" key yields an empty collection; a null document is an error.
func DecodeDocument(b []byte) ([]Appointment, error) {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil, ErrNullDocument
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc.Appointments == nil {
		return []Appointment{}, nil
	}
	return doc.Appointments, nil
}

func EncodeDocument(appts []Appointment) ([]byte, error) {
	if appts == nil {
		appts = []Appointment{}
	}
	return json.MarshalIndent(Document{Appointments: appts}, "", "  ")
}

// Today is the selected date used when none is given.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
