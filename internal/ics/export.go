// Package ics renders appointments as an iCalendar feed.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/agendacitas/agenda/internal/model"
)

const (
	// ProductID identifies the generator in PRODID.
	ProductID = "-//agendacitas//agenda//ES"
	// SlotDuration is the length of one appointment.
	SlotDuration = 30 * time.Minute

	uidDomain  = "agenda.local"
	slotLayout = "2006-01-02 15:04"
)

// Exporter builds VCALENDAR documents. Appointment dates and times are
// wall-clock values interpreted in Location.
type Exporter struct {
	Location *time.Location
	Now      func() time.Time
}

// NewExporter creates an Exporter for the given location (nil means UTC).
func NewExporter(loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{Location: loc, Now: time.Now}
}

// Export returns the serialized calendar. Each appointment becomes one
// VEVENT with a stable UID so re-imports update instead of duplicate.
func (e *Exporter) Export(name string, appts []*model.Appointment) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	stamp := e.Now().UTC()
	for _, a := range appts {
		start, err := time.ParseInLocation(slotLayout, a.Date+" "+a.Time, e.Location)
		if err != nil {
			return "", fmt.Errorf("appointment %s: invalid slot %q %q: %w", a.ID, a.Date, a.Time, err)
		}

		ev := cal.AddEvent(a.ID + "@" + uidDomain)
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(SlotDuration))
		ev.SetSummary(a.Name)
		ev.SetLocation(a.Place)
		if a.Phone != "" {
			ev.SetDescription("Tel: " + a.Phone)
		}
	}

	return cal.Serialize(), nil
}
