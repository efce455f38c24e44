package sesame

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	domain "github.com/nimbusbi/timefact/modules/etl/domain/sesame"
)

// table is a header-indexed CSV payload. Column lookups go through the
// header so endpoint column order never matters.
type table struct {
	columns map[string]int
	rows    [][]string
}

func parseTable(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	if len(records) == 0 {
		return &table{columns: map[string]int{}}, nil
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}
	return &table{columns: columns, rows: records[1:]}, nil
}

func (t *table) get(row []string, column string) (string, error) {
	i, ok := t.columns[column]
	if !ok {
		return "", errors.Errorf("missing column %q", column)
	}
	if i >= len(row) {
		return "", nil
	}
	return strings.TrimSpace(row[i]), nil
}

// seconds parses a worked-hours numeric field. The upstream emits "-"
// for empty days; that normalizes to zero. Anything else non-numeric
// is a fatal decode error.
func (t *table) seconds(row []string, column string) (float64, error) {
	raw, err := t.get(row, column)
	if err != nil {
		return 0, err
	}
	if raw == "" || raw == "-" {
		return 0, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "column %q: unconvertible value %q", column, raw)
	}
	f, _ := value.Float64()
	return f, nil
}

func (t *table) timestamp(row []string, column string) (time.Time, error) {
	raw, err := t.get(row, column)
	if err != nil {
		return time.Time{}, err
	}
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.Errorf("column %q: unparseable timestamp %q", column, raw)
}

func decodeEmployees(t *table) ([]domain.Employee, error) {
	out := make([]domain.Employee, 0, len(t.rows))
	for _, row := range t.rows {
		id, err := t.get(row, "id")
		if err != nil {
			return nil, err
		}
		nid, err := t.get(row, "nid")
		if err != nil {
			return nil, err
		}
		company, err := t.get(row, "company_name")
		if err != nil {
			return nil, err
		}
		rawPrice, err := t.get(row, "price_per_hour")
		if err != nil {
			return nil, err
		}
		price := decimal.Zero
		if rawPrice != "" && rawPrice != "-" {
			price, err = decimal.NewFromString(rawPrice)
			if err != nil {
				return nil, errors.Wrapf(err, "employee %s: price_per_hour %q", id, rawPrice)
			}
		}
		out = append(out, domain.Employee{
			ID:           id,
			NID:          nid,
			CompanyName:  company,
			PricePerHour: price,
		})
	}
	return out, nil
}

func decodeTimeEntries(t *table) ([]domain.TimeEntry, error) {
	out := make([]domain.TimeEntry, 0, len(t.rows))
	for _, row := range t.rows {
		employeeID, err := t.get(row, "employee_id")
		if err != nil {
			return nil, err
		}
		comment, err := t.get(row, "comment")
		if err != nil {
			return nil, err
		}
		project, err := t.get(row, "project")
		if err != nil {
			return nil, err
		}
		tags, err := t.get(row, "tags")
		if err != nil {
			return nil, err
		}
		in, err := t.timestamp(row, "time_entry_in_datetime")
		if err != nil {
			return nil, err
		}
		outTime, err := t.timestamp(row, "time_entry_out_datetime")
		if err != nil {
			return nil, err
		}
		out = append(out, domain.TimeEntry{
			EmployeeID: employeeID,
			Comment:    comment,
			Project:    project,
			Tags:       tags,
			In:         in,
			Out:        outTime,
		})
	}
	return out, nil
}

func decodeWorkEntries(t *table) ([]domain.WorkEntry, error) {
	out := make([]domain.WorkEntry, 0, len(t.rows))
	for _, row := range t.rows {
		employeeID, err := t.get(row, "employee_id")
		if err != nil {
			return nil, err
		}
		in, err := t.timestamp(row, "work_entry_in_datetime")
		if err != nil {
			return nil, err
		}
		outTime, err := t.timestamp(row, "work_entry_out_datetime")
		if err != nil {
			return nil, err
		}
		out = append(out, domain.WorkEntry{EmployeeID: employeeID, In: in, Out: outTime})
	}
	return out, nil
}

func decodeWorkedHours(t *table, day string) ([]domain.WorkedHours, error) {
	out := make([]domain.WorkedHours, 0, len(t.rows))
	for _, row := range t.rows {
		employeeID, err := t.get(row, "employeeId")
		if err != nil {
			return nil, err
		}
		worked, err := t.seconds(row, "secondsWorked")
		if err != nil {
			return nil, err
		}
		toWork, err := t.seconds(row, "secondsToWork")
		if err != nil {
			return nil, err
		}
		balance, err := t.seconds(row, "secondsBalance")
		if err != nil {
			return nil, err
		}
		out = append(out, domain.WorkedHours{
			EmployeeID:     employeeID,
			Date:           day,
			SecondsWorked:  worked,
			SecondsToWork:  toWork,
			SecondsBalance: balance,
		})
	}
	return out, nil
}

func decodeDepartmentAssignments(t *table) ([]domain.DepartmentAssignment, error) {
	out := make([]domain.DepartmentAssignment, 0, len(t.rows))
	for _, row := range t.rows {
		employeeID, err := t.get(row, "employee_id")
		if err != nil {
			return nil, err
		}
		department, err := t.get(row, "department_name")
		if err != nil {
			return nil, err
		}
		created, err := t.timestamp(row, "created_at")
		if err != nil {
			return nil, err
		}
		updated, err := t.timestamp(row, "updated_at")
		if err != nil {
			return nil, err
		}
		out = append(out, domain.DepartmentAssignment{
			EmployeeID:     employeeID,
			DepartmentName: department,
			CreatedAt:      created,
			UpdatedAt:      updated,
		})
	}
	return out, nil
}
