// Package warehouse defines the dimensional model the reconciliation
// engine reads and the fact rows it produces.
package warehouse

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used across natural keys.
const DateLayout = "2006-01-02"

// EmployeeDim is a row of Dim_Empleado.
type EmployeeDim struct {
	EmpleadoID int64
	DNI        string
}

// CompanyDim is a row of Dim_Empresa.
type CompanyDim struct {
	EmpresaID int64
	Nombre    string
}

// DepartmentDim is a row of Dim_Departamento.
type DepartmentDim struct {
	DepartamentoID int64
	Nombre         string
}

// ImputationFact is a row of Fact_Imputaciones. EmpresaID and
// DepartamentoID are nil when the dimension label could not be
// resolved; unresolved is a legal persisted value, not an error.
type ImputationFact struct {
	Fecha          time.Time
	Tarea          string
	Cliente        string
	Proyecto       string
	Etiqueta       string
	PrecioHora     decimal.Decimal
	HorasImputadas decimal.Decimal
	EmpresaID      *int64
	DepartamentoID *int64
	EmpleadoID     int64
}

// ImputationKey is the natural key of Fact_Imputaciones.
type ImputationKey struct {
	EmpleadoID int64
	Fecha      string
	Tarea      string
}

func (f ImputationFact) Key() ImputationKey {
	return ImputationKey{
		EmpleadoID: f.EmpleadoID,
		Fecha:      f.Fecha.Format(DateLayout),
		Tarea:      f.Tarea,
	}
}

// AttendanceFact is a row of Fact_Fichajes. Times are seconds.
type AttendanceFact struct {
	Fecha           time.Time
	TiempoTeorico   float64
	TiempoTrabajado float64
	EmpresaID       *int64
	DepartamentoID  *int64
	EmpleadoID      int64
}

// AttendanceKey is the natural key of Fact_Fichajes.
type AttendanceKey struct {
	Fecha      string
	EmpleadoID int64
}

func (f AttendanceFact) Key() AttendanceKey {
	return AttendanceKey{
		Fecha:      f.Fecha.Format(DateLayout),
		EmpleadoID: f.EmpleadoID,
	}
}

// DateOf strips the time-of-day component, keeping the calendar date
// in UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
