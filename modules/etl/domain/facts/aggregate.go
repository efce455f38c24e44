// Package facts turns event-level rows into daily/task-level fact rows
// and computes the incremental set to append to the warehouse.
package facts

import (
	"github.com/nimbusbi/timefact/modules/etl/domain/warehouse"
)

// DefaultEtiqueta replaces a missing tag before grouping so the
// natural key is never undermined by an absent value.
const DefaultEtiqueta = "No especificada"

// AggregateImputations reduces imputation rows to exactly one row per
// (empleado, fecha, tarea). Hours are summed; every other column takes
// the value of the first row encountered in input order. Output keeps
// first-seen key order, so aggregating an already aggregated batch is
// a no-op.
func AggregateImputations(rows []warehouse.ImputationFact) []warehouse.ImputationFact {
	out := make([]warehouse.ImputationFact, 0, len(rows))
	index := make(map[warehouse.ImputationKey]int, len(rows))

	for _, row := range rows {
		if row.Etiqueta == "" {
			row.Etiqueta = DefaultEtiqueta
		}

		key := row.Key()
		if i, seen := index[key]; seen {
			out[i].HorasImputadas = out[i].HorasImputadas.Add(row.HorasImputadas)
			continue
		}
		index[key] = len(out)
		out = append(out, row)
	}
	return out
}

// AggregateAttendance reduces worked-hours fragments to exactly one
// row per (fecha, empleado), summing theoretical and worked seconds.
// Dimension ids take the first encountered value.
func AggregateAttendance(rows []warehouse.AttendanceFact) []warehouse.AttendanceFact {
	out := make([]warehouse.AttendanceFact, 0, len(rows))
	index := make(map[warehouse.AttendanceKey]int, len(rows))

	for _, row := range rows {
		key := row.Key()
		if i, seen := index[key]; seen {
			out[i].TiempoTeorico += row.TiempoTeorico
			out[i].TiempoTrabajado += row.TiempoTrabajado
			continue
		}
		index[key] = len(out)
		out = append(out, row)
	}
	return out
}
