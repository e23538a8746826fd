package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "assistcal/internal/log"
	"assistcal/internal/model"
)

// Entry is one importable VEVENT.
type Entry struct {
	UID string
	// Task is true for events exported with CATEGORIES:TASK; everything
	// else is treated as a meeting.
	Task    bool
	Summary string
	When    time.Time
}

// ParseResult holds importable entries and the UIDs that were skipped.
type ParseResult struct {
	Entries []Entry
	Skipped []string
}

// Parse reads a calendar payload. Recurring and all-day events are skipped
// since a meeting is a single point in time; start times are converted to
// local wall clock and stripped of their zone.
func Parse(body []byte) (ParseResult, error) {
	var res ParseResult
	if len(body) == 0 {
		return res, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return res, err
	}

	for _, ve := range cal.Events() {
		uid := ""
		if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
			uid = p.Value
		}

		if ve.GetProperty(ical.ComponentPropertyRrule) != nil {
			appLog.Warn("ics import: skipping recurring event", "uid", uid)
			res.Skipped = append(res.Skipped, uid)
			continue
		}

		dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
		if dtStart == nil || isAllDay(dtStart) {
			appLog.Warn("ics import: skipping event without a start time", "uid", uid)
			res.Skipped = append(res.Skipped, uid)
			continue
		}

		when, err := startTime(ve, dtStart)
		if err != nil {
			appLog.Error("ics import: bad DTSTART", err, "uid", uid)
			res.Skipped = append(res.Skipped, uid)
			continue
		}

		e := Entry{UID: uid, When: when}
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			e.Summary = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
			e.Task = strings.EqualFold(strings.TrimSpace(p.Value), categoryTask)
		}
		res.Entries = append(res.Entries, e)
	}

	appLog.Debug("ics parse completed", "entries", len(res.Entries), "skipped", len(res.Skipped))
	return res, nil
}

// startTime reads floating DTSTART values as-is; zoned ones go through the
// library and are moved to local time.
func startTime(ve *ical.VEvent, p *ical.IANAProperty) (time.Time, error) {
	_, zoned := p.ICalParameters["TZID"]
	if !zoned && !strings.HasSuffix(p.Value, "Z") {
		return time.Parse(floatingLayout, strings.TrimSpace(p.Value))
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return time.Time{}, err
	}
	return model.Naive(start.Local()), nil
}

// isAllDay reports VALUE=DATE or a date-only DTSTART.
func isAllDay(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}
