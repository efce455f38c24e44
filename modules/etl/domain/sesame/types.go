// Package sesame holds the row types fetched from the Sesame HR
// integration API. Each type mirrors one CSV endpoint.
package sesame

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is one row of the employees snapshot. ID is the Sesame
// GUID; NID is the national identifier used to join against the
// warehouse employee dimension.
type Employee struct {
	ID           string
	NID          string
	CompanyName  string
	PricePerHour decimal.Decimal
}

// TimeEntry is one imputation event: a task-level time interval.
type TimeEntry struct {
	EmployeeID string
	Comment    string
	Project    string
	Tags       string
	In         time.Time
	Out        time.Time
}

// Hours returns the entry duration in hours.
func (e TimeEntry) Hours() decimal.Decimal {
	return decimal.NewFromFloat(e.Out.Sub(e.In).Seconds() / 3600)
}

// WorkEntry is one raw signing interval (clock-in/clock-out).
type WorkEntry struct {
	EmployeeID string
	In         time.Time
	Out        time.Time
}

// WorkedHours is one per-employee daily summary. Date is the calendar
// day the row was fetched for, formatted YYYY-MM-DD.
type WorkedHours struct {
	EmployeeID     string
	Date           string
	SecondsWorked  float64
	SecondsToWork  float64
	SecondsBalance float64
}

// DepartmentAssignment is one assignment event from the unbounded
// assignment history. Only the latest UpdatedAt per employee is
// authoritative.
type DepartmentAssignment struct {
	EmployeeID     string
	DepartmentName string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
