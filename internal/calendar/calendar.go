// Package calendar converts daily tasks to and from iCalendar text.
package calendar

import (
	"bufio"
	"fmt"
	"io"
	"planboard/internal/models/task"
	"strconv"
	"strings"
	"time"
)

const (
	stampLayout = "20060102T150405Z"
	uidDomain   = "planboard.app"
	prodID      = "-//Planboard//Daily Tasks//EN"
	crlf        = "\r\n"
)

// Event is one VEVENT read back from a calendar file.
type Event struct {
	UID     string
	Summary string
	Start   *time.Time
}

func icsStatus(s task.Status) string {
	switch s {
	case task.StatusDone:
		return "COMPLETED"
	case task.StatusInProgress:
		return "IN-PROCESS"
	}
	return "NEEDS-ACTION"
}

func stamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

// Export renders tasks as a VCALENDAR. Undated tasks start at now.
func Export(tasks []task.Task, now time.Time) string {
	var b strings.Builder
	_ = Write(&b, tasks, now)
	return b.String()
}

func Write(w io.Writer, tasks []task.Task, now time.Time) error {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
	}
	for _, t := range tasks {
		start := now
		if t.ScheduledDate != nil {
			start = *t.ScheduledDate
		}
		lines = append(lines,
			"BEGIN:VEVENT",
			fmt.Sprintf("UID:%s@%s", t.UUID, uidDomain),
			"DTSTAMP:"+stamp(now),
			"DTSTART:"+stamp(start),
			"SUMMARY:"+oneLine(t.Text),
			"STATUS:"+icsStatus(t.Status),
			"DESCRIPTION:Status: "+string(t.Status),
			"END:VEVENT",
		)
	}
	lines = append(lines, "END:VCALENDAR")

	if _, err := io.WriteString(w, strings.Join(lines, crlf)); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

// Import reads VEVENTs. Events without a summary are dropped and lines that cannot be
// parsed are skipped; only a read error fails the whole import.
func Import(r io.Reader) ([]Event, error) {
	var (
		events  []Event
		current *Event
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case line == "BEGIN:VEVENT":
			current = &Event{}
		case line == "END:VEVENT":
			if current != nil && current.Summary != "" {
				events = append(events, *current)
			}
			current = nil
		case current != nil:
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			name, _, _ := strings.Cut(key, ";")
			switch name {
			case "SUMMARY":
				current.Summary = value
			case "UID":
				current.UID = value
			case "DTSTART":
				if t, err := ParseStamp(value); err == nil {
					current.Start = &t
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read calendar: %w", err)
	}
	return events, nil
}

// ParseStamp reads YYYYMMDD with an optional THHMM[SS][Z] suffix as UTC. Dates and
// times that do not exist on the calendar are an error.
func ParseStamp(value string) (time.Time, error) {
	digits := strings.NewReplacer("T", "", "Z", "").Replace(strings.TrimSpace(value))
	if len(digits) < 8 {
		return time.Time{}, fmt.Errorf("parse stamp %q: too short", value)
	}
	part := func(from, to int) (int, error) {
		if len(digits) < to {
			return 0, nil
		}
		return strconv.Atoi(digits[from:to])
	}

	var fields [6]int
	bounds := [6][2]int{{0, 4}, {4, 6}, {6, 8}, {8, 10}, {10, 12}, {12, 14}}
	for i, bnd := range bounds {
		v, err := part(bnd[0], bnd[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("parse stamp %q: %w", value, err)
		}
		fields[i] = v
	}
	t := time.Date(fields[0], time.Month(fields[1]), fields[2], fields[3], fields[4], fields[5], 0, time.UTC)
	// time.Date normalizes overflow (Feb 31, 25:00); such stamps are rejected.
	if t.Year() != fields[0] || int(t.Month()) != fields[1] || t.Day() != fields[2] ||
		t.Hour() != fields[3] || t.Minute() != fields[4] || t.Second() != fields[5] {
		return time.Time{}, fmt.Errorf("parse stamp %q: out of range", value)
	}
	return t, nil
}

// Tasks turns imported events into new todo tasks.
func Tasks(events []Event) []task.Task {
	out := make([]task.Task, 0, len(events))
	for _, e := range events {
		t := task.Task{Text: e.Summary, ScheduledDate: e.Start}
		t.SetStatus(task.StatusTodo)
		t.Normalize()
		out = append(out, t)
	}
	return out
}
