package models

import "time"

// AnomalyKind is a closed set of attendance anomaly classifications. The
// detail text is free-form; the kind keeps aggregation and exports exhaustive.
type AnomalyKind string

const (
	AnomalyEvent                  AnomalyKind = "EVENT_ANOMALY"
	AnomalyMultipleCheckIn        AnomalyKind = "MULTIPLE_CHECK_IN"
	AnomalyMultipleCheckOut       AnomalyKind = "MULTIPLE_CHECK_OUT"
	AnomalyCheckOutWithoutCheckIn AnomalyKind = "CHECK_OUT_WITHOUT_CHECK_IN"
	AnomalyMissingCheckOut        AnomalyKind = "MISSING_CHECK_OUT"
	AnomalyBreakStartWhileOpen    AnomalyKind = "BREAK_START_WHILE_BREAK_OPEN"
	AnomalyBreakEndWithoutStart   AnomalyKind = "BREAK_END_WITHOUT_START"
	AnomalyBreakWithoutEnd        AnomalyKind = "BREAK_WITHOUT_END"
)

// Anomaly tags a day with a typed violation and human-readable detail.
type Anomaly struct {
	Kind   AnomalyKind `json:"type"`
	Detail string      `json:"detail"`
}

// PlannedDay is the schedule portion of a per-day report row.
type PlannedDay struct {
	Start   *string `json:"start"`
	End     *string `json:"end"`
	Minutes int     `json:"minutes"`
}

// ActualDay is the observed portion of a per-day report row.
type ActualDay struct {
	CheckIn       *string `json:"check_in"`
	CheckOut      *string `json:"check_out"`
	WorkedMinutes int     `json:"worked_minutes"`
	BreakMinutes  int     `json:"break_minutes"`
}

// ReportDay is one (employee, date) breakdown.
type ReportDay struct {
	Date            string     `json:"date"`
	DayType         DayType    `json:"day_type"`
	Planned         PlannedDay `json:"planned"`
	Actual          ActualDay  `json:"actual"`
	LatenessMinutes int        `json:"lateness_minutes"`
	Absence         bool       `json:"absence"`
	Anomalies       []Anomaly  `json:"anomalies"`
}

// ReportTotals accumulates an employee's figures across the range.
type ReportTotals struct {
	PlannedMinutes int `json:"planned_minutes"`
	WorkedMinutes  int `json:"worked_minutes"`
	BreakMinutes   int `json:"break_minutes"`
	LateMinutes    int `json:"late_minutes"`
	Absences       int `json:"absences"`
	LeaveDays      int `json:"leave_days"`
	AnomalyDays    int `json:"anomaly_days"`
}

// ReportEmployee pairs an employee with totals and ordered day breakdowns.
type ReportEmployee struct {
	EmployeeID   string       `json:"employee_id"`
	EmployeeName string       `json:"employee_name"`
	Totals       ReportTotals `json:"totals"`
	Days         []ReportDay  `json:"days"`
}

// ReportRange captures the inclusive date bounds of a report.
type ReportRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// AttendanceReport is the aggregation output: range metadata, then one entry
// per active employee with totals and per-day rows.
type AttendanceReport struct {
	Range                ReportRange      `json:"range"`
	LateThresholdMinutes int              `json:"late_threshold_minutes"`
	Employees            []ReportEmployee `json:"employees"`
}

// DashboardRow is one live-dashboard line for "today".
type DashboardRow struct {
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Status       string    `json:"status"`
	StatusLabel  string    `json:"status_label"`
	InTime       *string   `json:"in_time"`
	OutTime      *string   `json:"out_time"`
	TotalMinutes int       `json:"total_minutes"`
	WorkMinutes  int       `json:"work_minutes"`
	BreakMinutes int       `json:"break_minutes"`
	LastAction   *string   `json:"last_action"`
	Anomalies    []string  `json:"anomalies"`
	GeneratedAt  time.Time `json:"generated_at"`
}
