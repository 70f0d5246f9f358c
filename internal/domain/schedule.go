package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidEventType is returned when a project's event_type does not match
// any known schedule variant, or when the variant payload for the declared
// type is missing or empty. It signals a data-integrity violation upstream
// and must propagate to the caller.
var ErrInvalidEventType = errors.New("invalid event type")

// EventType selects which schedule variant of a project is populated.
type EventType string

const (
	EventOneTime          EventType = "oneTime"
	EventMultiDay         EventType = "multiDay"
	EventSameDayMultiArea EventType = "sameDayMultiArea"
)

// ProjectStatus is the lifecycle state of a project. All values except
// cancelled are derived from the schedule and the current instant;
// cancelled is a sticky, persisted terminal state.
type ProjectStatus string

const (
	StatusUpcoming   ProjectStatus = "upcoming"
	StatusInProgress ProjectStatus = "in-progress"
	StatusCompleted  ProjectStatus = "completed"
	StatusCancelled  ProjectStatus = "cancelled"
)

// ScheduleSlot is a single volunteering time window on some date.
// StartTime and EndTime are local wall-clock "HH:MM" strings; EndTime must
// be strictly after StartTime on the same date. Volunteers is the slot capacity.
type ScheduleSlot struct {
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Volunteers int    `json:"volunteers"`
}

// OneTimeSchedule is a single occurrence on one date with one slot.
type OneTimeSchedule struct {
	Date string `json:"date"`
	ScheduleSlot
}

// ProjectDay is one calendar date of a multi-day project with its time windows.
// Slots need not be contiguous or non-overlapping; that is not validated here.
type ProjectDay struct {
	Date  string         `json:"date"`
	Slots []ScheduleSlot `json:"slots"`
}

// ProjectRole is a named area of a same-day multi-area project with its own window.
type ProjectRole struct {
	Name string `json:"name"`
	ScheduleSlot
}

// MultiAreaSchedule is a single-date event bounded by overallStart/overallEnd
// and split into named roles. The overall bounds are enforced to contain every
// role window at creation time and are not re-checked afterwards.
type MultiAreaSchedule struct {
	Date         string        `json:"date"`
	OverallStart string        `json:"overallStart"`
	OverallEnd   string        `json:"overallEnd"`
	Roles        []ProjectRole `json:"roles"`
}

// Schedule is the tagged union of the three event shapes. Exactly one field
// is populated, selected by the project's EventType.
type Schedule struct {
	OneTime          *OneTimeSchedule   `json:"oneTime,omitempty"`
	MultiDay         []ProjectDay       `json:"multiDay,omitempty"`
	SameDayMultiArea *MultiAreaSchedule `json:"sameDayMultiArea,omitempty"`
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// CombineDateTime resolves a calendar date and a wall-clock "HH:MM" string
// into an instant in the server's local time zone.
func CombineDateTime(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout+" "+clockLayout, date+" "+clock, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse schedule datetime %q %q: %w", date, clock, err)
	}
	return t, nil
}

// ClockMinutes converts an "HH:MM" string to minutes since midnight.
func ClockMinutes(clock string) (int, error) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// SlotKey addresses a single slot inside a schedule: "oneTime" for the single
// occurrence, "<date>-<index>" for multi-day slots, and the role name for
// same-day multi-area roles. Signups reference slots by this key.
type SlotKey = string

// SlotKeys returns the addressable slot keys of the schedule for the given
// event type, in schedule order.
func (s Schedule) SlotKeys(eventType EventType) ([]SlotKey, error) {
	switch eventType {
	case EventOneTime:
		if s.OneTime == nil {
			return nil, ErrInvalidEventType
		}
		return []SlotKey{"oneTime"}, nil
	case EventMultiDay:
		if len(s.MultiDay) == 0 {
			return nil, ErrInvalidEventType
		}
		var keys []SlotKey
		for _, day := range s.MultiDay {
			for i := range day.Slots {
				keys = append(keys, fmt.Sprintf("%s-%d", day.Date, i))
			}
		}
		return keys, nil
	case EventSameDayMultiArea:
		if s.SameDayMultiArea == nil {
			return nil, ErrInvalidEventType
		}
		var keys []SlotKey
		for _, role := range s.SameDayMultiArea.Roles {
			keys = append(keys, role.Name)
		}
		return keys, nil
	default:
		return nil, ErrInvalidEventType
	}
}

// SlotByKey resolves a slot key to its slot. The second return is false when
// the key does not address any slot of this schedule.
func (s Schedule) SlotByKey(eventType EventType, key SlotKey) (ScheduleSlot, bool) {
	switch eventType {
	case EventOneTime:
		if s.OneTime != nil && key == "oneTime" {
			return s.OneTime.ScheduleSlot, true
		}
	case EventMultiDay:
		for _, day := range s.MultiDay {
			for i, slot := range day.Slots {
				if key == fmt.Sprintf("%s-%d", day.Date, i) {
					return slot, true
				}
			}
		}
	case EventSameDayMultiArea:
		if s.SameDayMultiArea != nil {
			for _, role := range s.SameDayMultiArea.Roles {
				if role.Name == key {
					return role.ScheduleSlot, true
				}
			}
		}
	}
	return ScheduleSlot{}, false
}

// FormatStatusText renders a status for display: first letter capitalized,
// hyphen replaced with a space ("in-progress" becomes "In progress").
// Returns "Unknown" for an empty status.
func FormatStatusText(status ProjectStatus) string {
	if status == "" {
		return "Unknown"
	}
	text := strings.ReplaceAll(string(status), "-", " ")
	return strings.ToUpper(text[:1]) + text[1:]
}
