package facts

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nimbusbi/timefact/modules/etl/domain/warehouse"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func imputation(empleado int64, fecha time.Time, tarea string, horas float64) warehouse.ImputationFact {
	return warehouse.ImputationFact{
		Fecha:          fecha,
		Tarea:          tarea,
		Cliente:        "Acme",
		Proyecto:       "interno",
		Etiqueta:       "desarrollo",
		PrecioHora:     decimal.NewFromInt(40),
		HorasImputadas: decimal.NewFromFloat(horas),
		EmpleadoID:     empleado,
	}
}

func TestAggregateImputations_SumsHoursPerKey(t *testing.T) {
	rows := []warehouse.ImputationFact{
		imputation(42, day(1), "design", 2),
		imputation(42, day(1), "design", 1.5),
		imputation(42, day(1), "review", 1),
		imputation(7, day(1), "design", 3),
	}

	out := AggregateImputations(rows)
	require.Len(t, out, 3)
	require.Equal(t, "design", out[0].Tarea)
	require.True(t, out[0].HorasImputadas.Equal(decimal.NewFromFloat(3.5)), out[0].HorasImputadas.String())
	require.True(t, out[1].HorasImputadas.Equal(decimal.NewFromInt(1)))
	require.True(t, out[2].HorasImputadas.Equal(decimal.NewFromInt(3)))
}

func TestAggregateImputations_FirstValueWinsForNonSummedColumns(t *testing.T) {
	first := imputation(42, day(1), "design", 2)
	second := imputation(42, day(1), "design", 1)
	second.Cliente = "Other"
	second.Proyecto = "externo"

	out := AggregateImputations([]warehouse.ImputationFact{first, second})
	require.Len(t, out, 1)
	require.Equal(t, "Acme", out[0].Cliente)
	require.Equal(t, "interno", out[0].Proyecto)
}

func TestAggregateImputations_MissingTagDefaultsBeforeGrouping(t *testing.T) {
	row := imputation(42, day(1), "design", 2)
	row.Etiqueta = ""

	out := AggregateImputations([]warehouse.ImputationFact{row})
	require.Len(t, out, 1)
	require.Equal(t, DefaultEtiqueta, out[0].Etiqueta)
}

func TestAggregateImputations_Idempotent(t *testing.T) {
	rows := []warehouse.ImputationFact{
		imputation(42, day(1), "design", 2),
		imputation(42, day(1), "design", 1),
		imputation(7, day(2), "", 4),
	}

	once := AggregateImputations(rows)
	twice := AggregateImputations(once)
	require.Equal(t, once, twice)
}

func attendance(empleado int64, fecha time.Time, theoretical, worked float64) warehouse.AttendanceFact {
	return warehouse.AttendanceFact{
		Fecha:           fecha,
		TiempoTeorico:   theoretical,
		TiempoTrabajado: worked,
		EmpleadoID:      empleado,
	}
}

func TestAggregateAttendance_OneRowPerEmployeeAndDay(t *testing.T) {
	// Three day-fragments for the same day must collapse into one row.
	rows := []warehouse.AttendanceFact{
		attendance(42, day(1), 28800, 27000),
		attendance(42, day(1), 0, 1800),
		attendance(42, day(2), 28800, 28800),
		attendance(7, day(1), 28800, 30000),
	}

	out := AggregateAttendance(rows)
	require.Len(t, out, 3)
	require.Equal(t, 28800.0, out[0].TiempoTeorico)
	require.Equal(t, 28800.0, out[0].TiempoTrabajado)
}

func TestAggregateAttendance_Idempotent(t *testing.T) {
	rows := []warehouse.AttendanceFact{
		attendance(42, day(1), 28800, 27000),
		attendance(42, day(1), 0, 1800),
	}

	once := AggregateAttendance(rows)
	require.Equal(t, once, AggregateAttendance(once))
}
