package calendar

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/vukdaten/volksfeste/internal/event"
)

const prodID = "-//Volksfeste//volksfeste//DE"

// GenerateICS generates an iCalendar (.ics) file with one all-day event per
// entry. Entries without a start date are left out; an empty result has no
// calendar at all.
func GenerateICS(entries []*event.Entry, name string, now time.Time) string {
	var dated []*event.Entry
	for _, e := range entries {
		if !e.Start.IsZero() {
			dated = append(dated, e)
		}
	}
	if len(dated) == 0 {
		return ""
	}

	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString(fmt.Sprintf("PRODID:%s\r\n", prodID))
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if name != "" {
		ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(name)))
	}

	stamp := formatICSTime(now)
	for _, e := range dated {
		writeEvent(&ics, e, stamp)
	}

	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

func writeEvent(ics *strings.Builder, e *event.Entry, stamp string) {
	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s@volksfeste\r\n", uid(e)))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", stamp))

	// DTEND of an all-day event is exclusive
	end := e.End
	if end.IsZero() || end.Before(e.Start) {
		end = e.Start
	}
	ics.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", formatICSDate(e.Start)))
	ics.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", formatICSDate(end.AddDate(0, 0, 1))))

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(e.Title)))

	description := fmt.Sprintf("%s - %s", event.FormatDate(e.Start), event.FormatDate(end))
	if e.State != "" {
		description = fmt.Sprintf("%s\n%s", description, e.State)
	}
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description)))

	location := e.Place
	if e.PLZ != "" {
		location = fmt.Sprintf("%s %s", e.PLZ, e.Place)
	}
	if location != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(location)))
	}

	if e.Latitude != 0 || e.Longitude != 0 {
		ics.WriteString(fmt.Sprintf("GEO:%.6f;%.6f\r\n", e.Latitude, e.Longitude))
	}

	if link := firstLink(e.InfoLink, e.DetailLink); link != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", link))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:TRANSPARENT\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// uid is derived from title, place and start so re-exports update
// the same calendar entries
func uid(e *event.Entry) string {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(e.Title)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(e.Place)))
	h.Write([]byte{0})
	h.Write([]byte(formatICSDate(e.Start)))
	return fmt.Sprintf("%016x", h.Sum64())
}

func firstLink(links ...string) string {
	for _, l := range links {
		if strings.HasPrefix(l, "http") {
			return l
		}
	}
	return ""
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatICSDate formats the calendar day of t as an iCalendar date
func formatICSDate(t time.Time) string {
	return t.Format("20060102")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
