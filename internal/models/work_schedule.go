package models

import (
	"fmt"
	"time"
)

// DayType classifies a scheduled calendar day.
type DayType string

const (
	DayTypeWork  DayType = "WORK"
	DayTypeOff   DayType = "OFF"
	DayTypeLeave DayType = "LEAVE"

	// DayTypeNoSchedule is the report sentinel for days with no schedule row.
	// It is never persisted.
	DayTypeNoSchedule DayType = "NO_SCHEDULE"
)

// Valid returns true for persistable day types.
func (t DayType) Valid() bool {
	switch t {
	case DayTypeWork, DayTypeOff, DayTypeLeave:
		return true
	default:
		return false
	}
}

// WorkSchedule is the planned day for one employee, unique per (employee, date).
// Planned times are minutes-of-day in the configured local timezone.
type WorkSchedule struct {
	ID           string     `db:"id" json:"id"`
	EmployeeID   string     `db:"employee_id" json:"employee_id"`
	Date         time.Time  `db:"date" json:"date"`
	DayType      DayType    `db:"day_type" json:"day_type"`
	PlannedStart *TimeOfDay `db:"planned_start" json:"planned_start,omitempty"`
	PlannedEnd   *TimeOfDay `db:"planned_end" json:"planned_end,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Validate enforces the schedule shape: WORK requires planned_start < planned_end,
// OFF and LEAVE require both to be absent.
func (s WorkSchedule) Validate() error {
	switch s.DayType {
	case DayTypeWork:
		if s.PlannedStart == nil || s.PlannedEnd == nil {
			return fmt.Errorf("WORK day requires planned start and end times")
		}
		if !s.PlannedStart.Before(*s.PlannedEnd) {
			return fmt.Errorf("planned end must be after planned start")
		}
	case DayTypeOff, DayTypeLeave:
		if s.PlannedStart != nil || s.PlannedEnd != nil {
			return fmt.Errorf("start/end times must be empty for %s days", s.DayType)
		}
	default:
		return fmt.Errorf("unknown day type %q", s.DayType)
	}
	return nil
}

// PlannedMinutes returns the planned span for WORK days, zero otherwise.
func (s WorkSchedule) PlannedMinutes() int {
	if s.DayType != DayTypeWork || s.PlannedStart == nil || s.PlannedEnd == nil {
		return 0
	}
	return s.PlannedEnd.Minutes() - s.PlannedStart.Minutes()
}
