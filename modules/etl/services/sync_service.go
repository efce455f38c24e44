// Package services drives the reconciliation pipeline: fetch, resolve
// dimensions, aggregate the two fact streams and append the
// incremental rows.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/nimbusbi/timefact/modules/etl/domain/assignment"
	"github.com/nimbusbi/timefact/modules/etl/domain/facts"
	"github.com/nimbusbi/timefact/modules/etl/domain/match"
	"github.com/nimbusbi/timefact/modules/etl/domain/sesame"
	"github.com/nimbusbi/timefact/modules/etl/domain/warehouse"
	"github.com/nimbusbi/timefact/pkg/composables"
	"github.com/nimbusbi/timefact/pkg/eventbus"
)

// Fetcher is the batched-fetch capability of the HR API client. The
// engine never sees pacing or pagination concerns.
type Fetcher interface {
	Employees(ctx context.Context) ([]sesame.Employee, error)
	WorkedHours(ctx context.Context, from, to time.Time) ([]sesame.WorkedHours, error)
	TimeEntries(ctx context.Context, from, to time.Time) ([]sesame.TimeEntry, error)
	WorkEntries(ctx context.Context, from, to time.Time) ([]sesame.WorkEntry, error)
	DepartmentAssignments(ctx context.Context) ([]sesame.DepartmentAssignment, error)
}

// WarehouseRepository is the read/append surface over the dimensional
// warehouse.
type WarehouseRepository interface {
	EmployeeDims(ctx context.Context) ([]warehouse.EmployeeDim, error)
	CompanyDims(ctx context.Context) ([]warehouse.CompanyDim, error)
	DepartmentDims(ctx context.Context) ([]warehouse.DepartmentDim, error)
	ImputationKeys(ctx context.Context) (map[warehouse.ImputationKey]struct{}, error)
	AttendanceKeys(ctx context.Context) (map[warehouse.AttendanceKey]struct{}, error)
	AppendImputations(ctx context.Context, rows []warehouse.ImputationFact) error
	AppendAttendance(ctx context.Context, rows []warehouse.AttendanceFact) error
}

// RunResult reports one completed synchronization run.
type RunResult struct {
	From time.Time
	To   time.Time

	ImputationsProcessed int
	ImputationsAdded     int
	AttendanceProcessed  int
	AttendanceAdded      int

	Elapsed time.Duration
}

type SyncService struct {
	fetcher   Fetcher
	repo      WarehouseRepository
	matcher   match.Matcher
	publisher eventbus.EventBus

	// Serializes the diff-then-append step: two concurrent runs against
	// the same fact tables would both compute "new" rows from the same
	// snapshot and break key uniqueness.
	runMu sync.Mutex
}

func NewSyncService(
	fetcher Fetcher,
	repo WarehouseRepository,
	matcher match.Matcher,
	publisher eventbus.EventBus,
) *SyncService {
	if matcher == nil {
		matcher = match.ContainsMatcher{}
	}
	return &SyncService{
		fetcher:   fetcher,
		repo:      repo,
		matcher:   matcher,
		publisher: publisher,
	}
}

// Run executes one full reconciliation over [from, to] inclusive. An
// inverted range yields an empty run, not an error. Any failure after
// validation aborts the whole run; nothing is partially committed.
func (s *SyncService) Run(ctx context.Context, from, to time.Time) (RunResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	log := composables.UseLogger(ctx)
	result := RunResult{From: from, To: to}

	if from.After(to) {
		log.WithFields(logrus.Fields{"from": from, "to": to}).Info("inverted date range, nothing to synchronize")
		result.Elapsed = time.Since(start)
		s.publishCompleted(result)
		return result, nil
	}

	src, err := s.fetch(ctx, from, to, log)
	if err != nil {
		return RunResult{}, err
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		dims, err := s.loadDimensions(ctx)
		if err != nil {
			return errors.Wrap(err, "load dimensions")
		}
		latest := assignment.Latest(src.assignments)

		impAdded, impTotal, err := s.syncImputations(ctx, src, dims, latest, log)
		if err != nil {
			return errors.Wrap(err, "imputations")
		}
		result.ImputationsProcessed = impTotal
		result.ImputationsAdded = impAdded

		attAdded, attTotal, err := s.syncAttendance(ctx, src, dims, latest, log)
		if err != nil {
			return errors.Wrap(err, "attendance")
		}
		result.AttendanceProcessed = attTotal
		result.AttendanceAdded = attAdded
		return nil
	})
	if err != nil {
		return RunResult{}, err
	}

	result.Elapsed = time.Since(start)
	log.WithFields(logrus.Fields{
		"elapsed":           result.Elapsed.String(),
		"imputations_added": result.ImputationsAdded,
		"attendance_added":  result.AttendanceAdded,
	}).Info("synchronization run completed")

	s.publishCompleted(result)
	return result, nil
}

// inTx runs the warehouse phase inside one transaction when the
// context carries a pool, so a failed run never leaves one fact table
// ahead of the other. A context without a pool keeps whatever query
// surface it already carries.
func (s *SyncService) inTx(ctx context.Context, fn func(context.Context) error) error {
	if _, err := composables.UsePool(ctx); err != nil {
		return fn(ctx)
	}
	return composables.InTx(ctx, fn)
}

type sourceData struct {
	employees   []sesame.Employee
	workedHours []sesame.WorkedHours
	timeEntries []sesame.TimeEntry
	assignments []sesame.DepartmentAssignment
}

func (s *SyncService) fetch(ctx context.Context, from, to time.Time, log *logrus.Entry) (*sourceData, error) {
	src := &sourceData{}
	var err error

	if src.employees, err = s.fetcher.Employees(ctx); err != nil {
		return nil, errors.Wrap(err, "fetch employees")
	}
	log.WithField("rows", len(src.employees)).Info("employees loaded")

	if src.workedHours, err = s.fetcher.WorkedHours(ctx, from, to); err != nil {
		return nil, errors.Wrap(err, "fetch worked hours")
	}
	log.WithField("rows", len(src.workedHours)).Info("worked hours loaded")

	workEntries, err := s.fetcher.WorkEntries(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "fetch work entries")
	}
	log.WithField("rows", len(workEntries)).Info("work entries loaded")

	if src.timeEntries, err = s.fetcher.TimeEntries(ctx, from, to); err != nil {
		return nil, errors.Wrap(err, "fetch time entries")
	}
	log.WithField("rows", len(src.timeEntries)).Info("time entries loaded")

	if src.assignments, err = s.fetcher.DepartmentAssignments(ctx); err != nil {
		return nil, errors.Wrap(err, "fetch department assignments")
	}
	log.WithField("rows", len(src.assignments)).Info("department assignments loaded")

	return src, nil
}

type dimensions struct {
	// empleadoByDNI keeps the last surrogate id per DNI, mirroring the
	// warehouse load order.
	empleadoByDNI map[string]int64
	companies     []match.Candidate
	departments   []match.Candidate
}

func (s *SyncService) loadDimensions(ctx context.Context) (*dimensions, error) {
	employeeDims, err := s.repo.EmployeeDims(ctx)
	if err != nil {
		return nil, err
	}
	companyDims, err := s.repo.CompanyDims(ctx)
	if err != nil {
		return nil, err
	}
	departmentDims, err := s.repo.DepartmentDims(ctx)
	if err != nil {
		return nil, err
	}

	dims := &dimensions{
		empleadoByDNI: make(map[string]int64, len(employeeDims)),
		companies:     make([]match.Candidate, 0, len(companyDims)),
		departments:   make([]match.Candidate, 0, len(departmentDims)),
	}
	for _, d := range employeeDims {
		dims.empleadoByDNI[d.DNI] = d.EmpleadoID
	}
	for _, c := range companyDims {
		dims.companies = append(dims.companies, match.Candidate{Label: c.Nombre, ID: c.EmpresaID})
	}
	for _, d := range departmentDims {
		dims.departments = append(dims.departments, match.Candidate{Label: d.Nombre, ID: d.DepartamentoID})
	}
	return dims, nil
}

func (s *SyncService) resolve(label string, candidates []match.Candidate) *int64 {
	if id, ok := s.matcher.Match(label, candidates); ok {
		return &id
	}
	return nil
}

func (s *SyncService) syncImputations(
	ctx context.Context,
	src *sourceData,
	dims *dimensions,
	latest map[string]sesame.DepartmentAssignment,
	log *logrus.Entry,
) (added, processed int, err error) {
	log.Info("building imputation facts")

	employeesByID := make(map[string]sesame.Employee, len(src.employees))
	for _, e := range src.employees {
		employeesByID[e.ID] = e
	}

	var candidate []warehouse.ImputationFact
	skipped := 0
	for _, entry := range src.timeEntries {
		employee, ok := employeesByID[entry.EmployeeID]
		if !ok {
			skipped++
			continue
		}
		empleadoID, ok := dims.empleadoByDNI[employee.NID]
		if !ok {
			skipped++
			continue
		}

		department := assignment.DepartmentFor(latest, entry.EmployeeID)
		candidate = append(candidate, warehouse.ImputationFact{
			Fecha:          warehouse.DateOf(entry.In),
			Tarea:          entry.Comment,
			Cliente:        employee.CompanyName,
			Proyecto:       entry.Project,
			Etiqueta:       entry.Tags,
			PrecioHora:     employee.PricePerHour,
			HorasImputadas: entry.Hours(),
			EmpresaID:      s.resolve(employee.CompanyName, dims.companies),
			DepartamentoID: s.resolve(department, dims.departments),
			EmpleadoID:     empleadoID,
		})
	}
	if skipped > 0 {
		log.WithField("rows", skipped).Warn("time entries without a resolvable employee surrogate were dropped")
	}

	summary := facts.AggregateImputations(candidate)

	existing, err := s.repo.ImputationKeys(ctx)
	if err != nil {
		return 0, 0, errors.Wrap(err, "read persisted keys")
	}
	newRows, err := facts.NewRows(summary, existing)
	if err != nil {
		return 0, 0, err
	}
	if len(newRows) == 0 {
		log.Info("imputations fact table is up to date")
		return 0, len(summary), nil
	}

	if err := s.repo.AppendImputations(ctx, newRows); err != nil {
		return 0, 0, errors.Wrap(err, "append rows")
	}
	return len(newRows), len(summary), nil
}

func (s *SyncService) syncAttendance(
	ctx context.Context,
	src *sourceData,
	dims *dimensions,
	latest map[string]sesame.DepartmentAssignment,
	log *logrus.Entry,
) (added, processed int, err error) {
	log.Info("building attendance facts")

	employeesByID := make(map[string]sesame.Employee, len(src.employees))
	for _, e := range src.employees {
		employeesByID[e.ID] = e
	}

	var candidate []warehouse.AttendanceFact
	skipped := 0
	for _, wh := range src.workedHours {
		employee, ok := employeesByID[wh.EmployeeID]
		if !ok {
			skipped++
			continue
		}
		empleadoID, ok := dims.empleadoByDNI[employee.NID]
		if !ok {
			skipped++
			continue
		}

		fecha, err := time.Parse(warehouse.DateLayout, wh.Date)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "worked hours date %q", wh.Date)
		}

		department := assignment.DepartmentFor(latest, wh.EmployeeID)
		candidate = append(candidate, warehouse.AttendanceFact{
			Fecha:           fecha,
			TiempoTeorico:   wh.SecondsToWork,
			TiempoTrabajado: wh.SecondsWorked,
			EmpresaID:       s.resolve(employee.CompanyName, dims.companies),
			DepartamentoID:  s.resolve(department, dims.departments),
			EmpleadoID:      empleadoID,
		})
	}
	if skipped > 0 {
		log.WithField("rows", skipped).Warn("worked-hours rows without a resolvable employee surrogate were dropped")
	}

	summary := facts.AggregateAttendance(candidate)

	existing, err := s.repo.AttendanceKeys(ctx)
	if err != nil {
		return 0, 0, errors.Wrap(err, "read persisted keys")
	}
	newRows, err := facts.NewRows(summary, existing)
	if err != nil {
		return 0, 0, err
	}
	if len(newRows) == 0 {
		log.Info("attendance fact table is up to date")
		return 0, len(summary), nil
	}

	if err := s.repo.AppendAttendance(ctx, newRows); err != nil {
		return 0, 0, errors.Wrap(err, "append rows")
	}
	return len(newRows), len(summary), nil
}

func (s *SyncService) publishCompleted(result RunResult) {
	if s.publisher != nil {
		s.publisher.Publish(&SyncCompletedEvent{Result: result})
	}
}
