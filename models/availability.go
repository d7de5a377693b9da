package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultProbeDuration is the booking window assumed when the caller does not
// supply a service duration.
const DefaultProbeDuration = 60

const (
	ReasonDayOff       = "Employee does not work on this day"
	ReasonOutsideHours = "Outside working hours"
	ReasonAbsent       = "Employee is absent on this date"
	ReasonBooked       = "Employee already has an appointment in this slot"
)

type AvailabilityResult struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

func available() AvailabilityResult {
	return AvailabilityResult{Available: true}
}

func unavailable(reason string) AvailabilityResult {
	return AvailabilityResult{Available: false, Reason: reason}
}

// ParseMinutes converts an "HH:MM" wall-clock time to minutes since midnight.
func ParseMinutes(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", hhmm)
	}
	return h*60 + m, nil
}

// CheckAvailability decides whether an employee can take an appointment
// starting at startTime on date, lasting duration minutes. Checks run in
// order and short-circuit on the first failure:
//
//  1. the weekday must be enabled in the employee's schedule,
//  2. the start instant must fall inside one of that day's slots (bounds
//     inclusive),
//  3. the date must not fall inside any absence range (date granularity,
//     bounds inclusive),
//  4. the interval [start, start+duration) must not overlap any of the
//     employee's non-cancelled appointments on that date.
//
// The check is advisory: it does not lock anything, so callers that need a
// hard guarantee must re-check inside their write transaction.
func CheckAvailability(emp *Employee, appointments []Appointment, date, startTime string, duration int) (AvailabilityResult, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return AvailabilityResult{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	reqStart, err := ParseMinutes(startTime)
	if err != nil {
		return AvailabilityResult{}, err
	}
	if duration <= 0 {
		duration = DefaultProbeDuration
	}

	sched := emp.Schedule[day.Weekday()]
	if !sched.Enabled {
		return unavailable(ReasonDayOff), nil
	}

	within := false
	for _, slot := range sched.Slots {
		slotStart, err := ParseMinutes(slot.Start)
		if err != nil {
			continue
		}
		slotEnd, err := ParseMinutes(slot.End)
		if err != nil {
			continue
		}
		if reqStart >= slotStart && reqStart <= slotEnd {
			within = true
			break
		}
	}
	if !within {
		return unavailable(ReasonOutsideHours), nil
	}

	for _, absence := range emp.Absences {
		absStart, err := time.Parse("2006-01-02", absence.Start)
		if err != nil {
			continue
		}
		absEnd, err := time.Parse("2006-01-02", absence.End)
		if err != nil {
			continue
		}
		if !day.Before(absStart) && !day.After(absEnd) {
			return unavailable(ReasonAbsent), nil
		}
	}

	reqEnd := reqStart + duration
	for _, apt := range appointments {
		if apt.Status == AppointmentCancelled || apt.Date != date {
			continue
		}
		aptStart, err := ParseMinutes(apt.Time)
		if err != nil {
			continue
		}
		aptEnd := aptStart + apt.Duration
		if intervalsConflict(reqStart, reqEnd, aptStart, aptEnd) {
			return unavailable(ReasonBooked), nil
		}
	}

	return available(), nil
}

// intervalsConflict reports whether [newStart, newEnd) collides with
// [aptStart, aptEnd): the new start lands inside the existing interval, the
// new end lands inside it, or the new interval swallows it whole.
func intervalsConflict(newStart, newEnd, aptStart, aptEnd int) bool {
	if newStart >= aptStart && newStart < aptEnd {
		return true
	}
	if newEnd > aptStart && newEnd <= aptEnd {
		return true
	}
	return newStart <= aptStart && newEnd >= aptEnd
}
