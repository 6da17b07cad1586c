package models

// DutyState is an employee's derived attendance status. It is computed fresh
// from the day's event log on every query, never stored.
type DutyState string

const (
	DutyOffDuty DutyState = "OFF_DUTY"
	DutyWorking DutyState = "WORKING"
	DutyOnBreak DutyState = "ON_BREAK"
)

// EmployeeState is the point-in-time view the tablet UI and live dashboard
// consume. Optional fields are nil when there is no open shift today.
type EmployeeState struct {
	State              DutyState `json:"state"`
	StartedAt          *string   `json:"started_at,omitempty"`
	WorkMinutes        *int      `json:"work_minutes,omitempty"`
	BreakMinutes       *int      `json:"break_minutes,omitempty"`
	BreakStartedAt     *string   `json:"break_started_at,omitempty"`
	MinutesOnBreak     *int      `json:"minutes_on_break,omitempty"`
	LastEventType      *string   `json:"last_event_type,omitempty"`
	LastAction         *string   `json:"last_action,omitempty"`
	LastEventTimestamp *string   `json:"last_event_timestamp,omitempty"`
	MinutesSinceStart  *int      `json:"minutes_since_start,omitempty"`
	LastWasToilet      bool      `json:"last_was_toilet"`
}

// OffDuty is the empty state returned when no open check-in exists today.
func OffDuty() EmployeeState {
	return EmployeeState{State: DutyOffDuty}
}
