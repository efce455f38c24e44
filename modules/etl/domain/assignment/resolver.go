// Package assignment resolves the authoritative department assignment
// per employee from an unbounded history of assignment events.
package assignment

import (
	"github.com/nimbusbi/timefact/modules/etl/domain/sesame"
)

// UnassignedDepartment is the fallback label for employees without any
// assignment event. It flows through dimension matching like any other
// label.
const UnassignedDepartment = "No asignado"

// Latest picks, for each employee, the assignment event with the
// maximum UpdatedAt. Ties break on the greater CreatedAt, then on the
// lexicographically greater DepartmentName, so the result does not
// depend on input order.
func Latest(events []sesame.DepartmentAssignment) map[string]sesame.DepartmentAssignment {
	latest := make(map[string]sesame.DepartmentAssignment, len(events))
	for _, ev := range events {
		current, seen := latest[ev.EmployeeID]
		if !seen || newerThan(ev, current) {
			latest[ev.EmployeeID] = ev
		}
	}
	return latest
}

// DepartmentFor returns the authoritative department label for an
// employee, falling back to UnassignedDepartment.
func DepartmentFor(latest map[string]sesame.DepartmentAssignment, employeeID string) string {
	if ev, ok := latest[employeeID]; ok {
		return ev.DepartmentName
	}
	return UnassignedDepartment
}

func newerThan(a, b sesame.DepartmentAssignment) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.DepartmentName > b.DepartmentName
}
