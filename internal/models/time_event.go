package models

import "time"

// EventType enumerates the kinds of tablet-submitted time events.
type EventType string

const (
	EventCheckIn    EventType = "CHECK_IN"
	EventCheckOut   EventType = "CHECK_OUT"
	EventBreakStart EventType = "BREAK_START"
	EventBreakEnd   EventType = "BREAK_END"
	EventToilet     EventType = "TOILET"
)

// Valid returns true when the event type is a supported value.
func (t EventType) Valid() bool {
	switch t {
	case EventCheckIn, EventCheckOut, EventBreakStart, EventBreakEnd, EventToilet:
		return true
	default:
		return false
	}
}

// TimeEvent is one row of the append-only per-employee event log.
//
// The timestamp is always stamped server-side. Events are never reordered
// after insertion: (timestamp, id) ascending is the authoritative order for
// state derivation, which is why the id is a monotonic BIGSERIAL rather than
// a UUID. Once written, only the anomaly flag and reason may change.
type TimeEvent struct {
	ID            int64     `db:"id" json:"id"`
	EmployeeID    string    `db:"employee_id" json:"employee_id"`
	DeviceID      string    `db:"device_id" json:"device_id"`
	EventType     EventType `db:"event_type" json:"event_type"`
	Timestamp     time.Time `db:"timestamp" json:"timestamp"`
	IsAnomaly     bool      `db:"is_anomaly" json:"is_anomaly"`
	AnomalyReason string    `db:"anomaly_reason" json:"anomaly_reason,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
