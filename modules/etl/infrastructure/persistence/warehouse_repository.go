// Package persistence reads the warehouse dimensions and fact-table
// key sets and appends new fact rows. All access goes through the
// pool/transaction carried in the context.
package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nimbusbi/timefact/modules/etl/domain/warehouse"
	"github.com/nimbusbi/timefact/pkg/composables"
)

type WarehouseRepository struct {
	schema string
}

func NewWarehouseRepository(schema string) *WarehouseRepository {
	if schema == "" {
		schema = "dbo"
	}
	return &WarehouseRepository{schema: schema}
}

func (r *WarehouseRepository) table(name string) string {
	return fmt.Sprintf("%q.%q", r.schema, name)
}

func (r *WarehouseRepository) EmployeeDims(ctx context.Context) ([]warehouse.EmployeeDim, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, fmt.Sprintf(`
		SELECT empleado_id, "DNI"
		FROM %s
		ORDER BY empleado_id
	`, r.table("Dim_Empleado")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []warehouse.EmployeeDim
	for rows.Next() {
		var row warehouse.EmployeeDim
		if err := rows.Scan(&row.EmpleadoID, &row.DNI); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *WarehouseRepository) CompanyDims(ctx context.Context) ([]warehouse.CompanyDim, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, fmt.Sprintf(`
		SELECT empresa_id, nombre
		FROM %s
		ORDER BY empresa_id
	`, r.table("Dim_Empresa")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []warehouse.CompanyDim
	for rows.Next() {
		var row warehouse.CompanyDim
		if err := rows.Scan(&row.EmpresaID, &row.Nombre); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *WarehouseRepository) DepartmentDims(ctx context.Context) ([]warehouse.DepartmentDim, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, fmt.Sprintf(`
		SELECT departamento_id, nombre
		FROM %s
		ORDER BY departamento_id
	`, r.table("Dim_Departamento")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []warehouse.DepartmentDim
	for rows.Next() {
		var row warehouse.DepartmentDim
		if err := rows.Scan(&row.DepartamentoID, &row.Nombre); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ImputationKeys reads the full natural-key set of Fact_Imputaciones,
// creating the table on first run.
func (r *WarehouseRepository) ImputationKeys(ctx context.Context) (map[warehouse.ImputationKey]struct{}, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.ensureImputationsTable(ctx); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, fmt.Sprintf(`
		SELECT empleado_id, to_char(fecha, 'YYYY-MM-DD'), tarea
		FROM %s
	`, r.table("Fact_Imputaciones")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[warehouse.ImputationKey]struct{})
	for rows.Next() {
		var key warehouse.ImputationKey
		if err := rows.Scan(&key.EmpleadoID, &key.Fecha, &key.Tarea); err != nil {
			return nil, err
		}
		out[key] = struct{}{}
	}
	return out, rows.Err()
}

// AttendanceKeys reads the full natural-key set of Fact_Fichajes,
// creating the table on first run.
func (r *WarehouseRepository) AttendanceKeys(ctx context.Context) (map[warehouse.AttendanceKey]struct{}, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.ensureAttendanceTable(ctx); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, fmt.Sprintf(`
		SELECT to_char(fecha, 'YYYY-MM-DD'), empleado_id
		FROM %s
	`, r.table("Fact_Fichajes")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[warehouse.AttendanceKey]struct{})
	for rows.Next() {
		var key warehouse.AttendanceKey
		if err := rows.Scan(&key.Fecha, &key.EmpleadoID); err != nil {
			return nil, err
		}
		out[key] = struct{}{}
	}
	return out, rows.Err()
}

// AppendImputations inserts the given rows; it never updates or
// deletes existing rows.
func (r *WarehouseRepository) AppendImputations(ctx context.Context, facts []warehouse.ImputationFact) error {
	if len(facts) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			fecha, tarea, cliente, proyecto, etiqueta,
			precio_hora, horas_imputadas, empresa_id, departamento_id, empleado_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.table("Fact_Imputaciones"))

	batch := &pgx.Batch{}
	for _, f := range facts {
		batch.Queue(
			query,
			f.Fecha, f.Tarea, f.Cliente, f.Proyecto, f.Etiqueta,
			f.PrecioHora, f.HorasImputadas, f.EmpresaID, f.DepartamentoID, f.EmpleadoID,
		)
	}
	return tx.SendBatch(ctx, batch).Close()
}

// AppendAttendance inserts the given rows append-only.
func (r *WarehouseRepository) AppendAttendance(ctx context.Context, facts []warehouse.AttendanceFact) error {
	if len(facts) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			fecha, tiempo_teorico, tiempo_trabajado, empresa_id, departamento_id, empleado_id
		) VALUES ($1, $2, $3, $4, $5, $6)
	`, r.table("Fact_Fichajes"))

	batch := &pgx.Batch{}
	for _, f := range facts {
		batch.Queue(
			query,
			f.Fecha, f.TiempoTeorico, f.TiempoTrabajado,
			f.EmpresaID, f.DepartamentoID, f.EmpleadoID,
		)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func (r *WarehouseRepository) ensureImputationsTable(ctx context.Context) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			fecha date NOT NULL,
			tarea text NOT NULL,
			cliente text,
			proyecto text,
			etiqueta text,
			precio_hora numeric(12, 2),
			horas_imputadas numeric(14, 4),
			empresa_id bigint,
			departamento_id bigint,
			empleado_id bigint NOT NULL
		)
	`, r.table("Fact_Imputaciones")))
	return err
}

func (r *WarehouseRepository) ensureAttendanceTable(ctx context.Context) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			fecha date NOT NULL,
			tiempo_teorico double precision,
			tiempo_trabajado double precision,
			empresa_id bigint,
			departamento_id bigint,
			empleado_id bigint NOT NULL
		)
	`, r.table("Fact_Fichajes")))
	return err
}
