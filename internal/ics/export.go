package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"assistcal/internal/model"
)

const (
	productID = "-//assistcal//personal assistant//EN"

	// floatingLayout writes DTSTART without a zone; timestamps are naive
	// wall clock.
	floatingLayout = "20060102T150405"

	categoryTask    = "TASK"
	categoryMeeting = "MEETING"
)

// Export renders tasks and meetings as a VCALENDAR. Each record becomes a
// VEVENT whose UID is the record id and whose CATEGORIES tells the kind.
func Export(tasks []model.Task, meetings []model.Meeting, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, m := range meetings {
		ev := cal.AddEvent(m.ID + "@meeting")
		ev.SetDtStampTime(stamp)
		ev.SetProperty(ical.ComponentPropertyDtStart, m.Time.Format(floatingLayout))
		ev.SetSummary(m.Description)
		ev.SetProperty(ical.ComponentPropertyCategories, categoryMeeting)
		if m.Completed {
			ev.SetProperty(ical.ComponentPropertyDescription, "completed")
		}
	}
	for _, t := range tasks {
		ev := cal.AddEvent(t.ID + "@task")
		ev.SetDtStampTime(stamp)
		ev.SetProperty(ical.ComponentPropertyDtStart, t.Deadline.Format(floatingLayout))
		ev.SetSummary(t.Name)
		ev.SetProperty(ical.ComponentPropertyCategories, categoryTask)
		if t.Completed {
			ev.SetProperty(ical.ComponentPropertyDescription, "completed")
		}
	}

	return cal.Serialize()
}
