package domain

import "time"

// Timing and eligibility derivation for projects. Every function here is
// pure: it closes only over its arguments, takes the current instant as an
// explicit parameter where time matters, and is safe to call concurrently.

// StartDateTime computes the earliest moment volunteering work begins.
// For oneTime that is the date plus the slot's start; for multiDay the
// minimum across every (day, slot) pair regardless of array order; for
// sameDayMultiArea the date plus the overall start, ignoring role windows.
func (p *Project) StartDateTime() (time.Time, error) {
	switch p.EventType {
	case EventOneTime:
		if p.Schedule.OneTime == nil {
			return time.Time{}, ErrInvalidEventType
		}
		return CombineDateTime(p.Schedule.OneTime.Date, p.Schedule.OneTime.StartTime)
	case EventMultiDay:
		var earliest time.Time
		found := false
		for _, day := range p.Schedule.MultiDay {
			for _, slot := range day.Slots {
				t, err := CombineDateTime(day.Date, slot.StartTime)
				if err != nil {
					return time.Time{}, err
				}
				if !found || t.Before(earliest) {
					earliest = t
					found = true
				}
			}
		}
		if !found {
			return time.Time{}, ErrInvalidEventType
		}
		return earliest, nil
	case EventSameDayMultiArea:
		if p.Schedule.SameDayMultiArea == nil {
			return time.Time{}, ErrInvalidEventType
		}
		return CombineDateTime(p.Schedule.SameDayMultiArea.Date, p.Schedule.SameDayMultiArea.OverallStart)
	default:
		return time.Time{}, ErrInvalidEventType
	}
}

// EndDateTime computes the latest moment volunteering work ends, symmetric
// to StartDateTime.
func (p *Project) EndDateTime() (time.Time, error) {
	switch p.EventType {
	case EventOneTime:
		if p.Schedule.OneTime == nil {
			return time.Time{}, ErrInvalidEventType
		}
		return CombineDateTime(p.Schedule.OneTime.Date, p.Schedule.OneTime.EndTime)
	case EventMultiDay:
		var latest time.Time
		found := false
		for _, day := range p.Schedule.MultiDay {
			for _, slot := range day.Slots {
				t, err := CombineDateTime(day.Date, slot.EndTime)
				if err != nil {
					return time.Time{}, err
				}
				if !found || t.After(latest) {
					latest = t
					found = true
				}
			}
		}
		if !found {
			return time.Time{}, ErrInvalidEventType
		}
		return latest, nil
	case EventSameDayMultiArea:
		if p.Schedule.SameDayMultiArea == nil {
			return time.Time{}, ErrInvalidEventType
		}
		return CombineDateTime(p.Schedule.SameDayMultiArea.Date, p.Schedule.SameDayMultiArea.OverallEnd)
	default:
		return time.Time{}, ErrInvalidEventType
	}
}

// StatusAt derives the project's lifecycle status at the given instant.
// Cancelled is sticky and wins unconditionally, even when the schedule
// window has not started or has long since passed. Otherwise the event is
// in-progress over the half-open interval [start, end): now == start counts
// as in-progress, now == end as completed.
func (p *Project) StatusAt(now time.Time) (ProjectStatus, error) {
	if p.Status == StatusCancelled {
		return StatusCancelled, nil
	}
	start, err := p.StartDateTime()
	if err != nil {
		return "", err
	}
	end, err := p.EndDateTime()
	if err != nil {
		return "", err
	}
	switch {
	case !now.Before(end):
		return StatusCompleted, nil
	case !now.Before(start):
		return StatusInProgress, nil
	default:
		return StatusUpcoming, nil
	}
}

// CanCancelAt reports whether the project may still be cancelled at the
// given instant: never once cancelled or completed, otherwise any time up
// to and including the scheduled start.
func (p *Project) CanCancelAt(now time.Time) (bool, error) {
	status, err := p.StatusAt(now)
	if err != nil {
		return false, err
	}
	if status == StatusCancelled || status == StatusCompleted {
		return false, nil
	}
	start, err := p.StartDateTime()
	if err != nil {
		return false, err
	}
	return !now.After(start), nil
}

// Blackout windows around the event during which deletion is refused.
const (
	deleteBlackoutBeforeStartHours = 24
	deleteBlackoutAfterEndHours    = 48
)

// CanDeleteAt reports whether the project may be deleted at the given
// instant. Hour differences truncate toward zero. An active project must be
// outside both blackout zones: not within 24 hours before start and not
// within 48 hours after end. A cancelled project is deletable as soon as
// either condition clears; the OR is intentional and must not be collapsed
// into the active-project rule.
func (p *Project) CanDeleteAt(now time.Time) (bool, error) {
	start, err := p.StartDateTime()
	if err != nil {
		return false, err
	}
	end, err := p.EndDateTime()
	if err != nil {
		return false, err
	}
	hoursUntilStart := int(start.Sub(now).Hours())
	hoursAfterEnd := int(now.Sub(end).Hours())

	if p.Status == StatusCancelled {
		return hoursUntilStart > deleteBlackoutBeforeStartHours || hoursAfterEnd > deleteBlackoutAfterEndHours, nil
	}
	if hoursUntilStart >= 0 && hoursUntilStart <= deleteBlackoutBeforeStartHours {
		return false, nil
	}
	if hoursAfterEnd >= 0 && hoursAfterEnd <= deleteBlackoutAfterEndHours {
		return false, nil
	}
	return true, nil
}

// VisibleTo reports whether the caller may view the project. Public projects
// are always visible. Private projects require a caller with any membership
// in the owning organization; role does not matter. A private project with
// no owning organization is never visible.
func (p *Project) VisibleTo(userID string, memberships []OrganizationMembership) bool {
	if !p.IsPrivate {
		return true
	}
	if userID == "" || p.OrganizationID == nil {
		return false
	}
	for _, m := range memberships {
		if m.OrganizationID == *p.OrganizationID {
			return true
		}
	}
	return false
}

// ManageableBy reports whether the caller may mutate the project. The
// creator always may. Otherwise an admin or staff membership in the owning
// organization is required; the plain member role is insufficient.
func (p *Project) ManageableBy(userID string, memberships []OrganizationMembership) bool {
	if userID == "" {
		return false
	}
	if p.CreatorID == userID {
		return true
	}
	if p.OrganizationID == nil {
		return false
	}
	for _, m := range memberships {
		if m.OrganizationID != *p.OrganizationID {
			continue
		}
		if m.Role == RoleAdmin || m.Role == RoleStaff {
			return true
		}
	}
	return false
}

// Occurrence is a single concrete time window of a project's schedule, used
// for calendar export and reminders.
type Occurrence struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Occurrences expands the schedule into concrete time windows: one for a
// oneTime project, one per (day, slot) for multiDay, one per role for
// sameDayMultiArea.
func (p *Project) Occurrences() ([]Occurrence, error) {
	switch p.EventType {
	case EventOneTime:
		if p.Schedule.OneTime == nil {
			return nil, ErrInvalidEventType
		}
		start, err := CombineDateTime(p.Schedule.OneTime.Date, p.Schedule.OneTime.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := CombineDateTime(p.Schedule.OneTime.Date, p.Schedule.OneTime.EndTime)
		if err != nil {
			return nil, err
		}
		return []Occurrence{{Name: p.Title, Start: start, End: end}}, nil
	case EventMultiDay:
		if len(p.Schedule.MultiDay) == 0 {
			return nil, ErrInvalidEventType
		}
		var out []Occurrence
		for _, day := range p.Schedule.MultiDay {
			for _, slot := range day.Slots {
				start, err := CombineDateTime(day.Date, slot.StartTime)
				if err != nil {
					return nil, err
				}
				end, err := CombineDateTime(day.Date, slot.EndTime)
				if err != nil {
					return nil, err
				}
				out = append(out, Occurrence{Name: p.Title, Start: start, End: end})
			}
		}
		return out, nil
	case EventSameDayMultiArea:
		if p.Schedule.SameDayMultiArea == nil {
			return nil, ErrInvalidEventType
		}
		var out []Occurrence
		for _, role := range p.Schedule.SameDayMultiArea.Roles {
			start, err := CombineDateTime(p.Schedule.SameDayMultiArea.Date, role.StartTime)
			if err != nil {
				return nil, err
			}
			end, err := CombineDateTime(p.Schedule.SameDayMultiArea.Date, role.EndTime)
			if err != nil {
				return nil, err
			}
			out = append(out, Occurrence{Name: p.Title + " - " + role.Name, Start: start, End: end})
		}
		return out, nil
	default:
		return nil, ErrInvalidEventType
	}
}
