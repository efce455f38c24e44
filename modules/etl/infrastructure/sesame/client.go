// Package sesame implements the CSV-over-HTTP client for the Sesame
// integration API: bearer-token auth, per-day pagination for the
// worked-hours endpoint and a quota pause between day chunks.
package sesame

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	domain "github.com/nimbusbi/timefact/modules/etl/domain/sesame"
	"github.com/nimbusbi/timefact/modules/etl/domain/warehouse"
	"github.com/nimbusbi/timefact/pkg/configuration"
)

const (
	employeesEndpoint             = "/sesame/employees-csv"
	workedHoursEndpoint           = "/sesame/worked-hours-csv"
	workEntriesEndpoint           = "/sesame/work-entries-csv"
	timeEntriesEndpoint           = "/sesame/time-entries-csv"
	departmentAssignmentsEndpoint = "/sesame/employee-department-assignations-csv"
)

var employeeStatuses = []string{"active", "inactive"}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger

	pauseEvery int
	pause      time.Duration
	sleep      func(time.Duration)
}

type Option func(*Client)

// WithSleep replaces the quota pause; tests inject a recorder so the
// per-day loop runs instantly.
func WithSleep(sleep func(time.Duration)) Option {
	return func(c *Client) { c.sleep = sleep }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(opts configuration.SesameOptions, logger *logrus.Logger, options ...Option) *Client {
	c := &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		httpClient: &http.Client{Timeout: opts.RequestTimeout},
		logger:     logger,
		pauseEvery: opts.RatePauseEvery,
		pause:      opts.RatePause,
		sleep:      time.Sleep,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) getCSV(ctx context.Context, endpoint string, params url.Values) (*table, error) {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", endpoint)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("GET %s: unexpected status %d", endpoint, resp.StatusCode)
	}

	return parseTable(resp.Body)
}

// Employees fetches the employee snapshot per status filter and unions
// the results.
func (c *Client) Employees(ctx context.Context) ([]domain.Employee, error) {
	var out []domain.Employee
	for _, status := range employeeStatuses {
		params := url.Values{"status": {status}}
		t, err := c.getCSV(ctx, employeesEndpoint, params)
		if err != nil {
			return nil, errors.Wrapf(err, "employees status=%s", status)
		}
		batch, err := decodeEmployees(t)
		if err != nil {
			return nil, errors.Wrapf(err, "employees status=%s", status)
		}
		out = append(out, batch...)
	}
	return out, nil
}

// WorkedHours fetches the daily summaries one calendar day at a time
// across [from, to] and unions the chunks. A pause is injected before
// every pauseEvery-th request to respect the upstream quota. A day
// with no rows is a benign empty day; a non-200 response is an error.
func (c *Client) WorkedHours(ctx context.Context, from, to time.Time) ([]domain.WorkedHours, error) {
	var out []domain.WorkedHours
	days := dateRange(from, to)
	for i, d := range days {
		if i%c.pauseEvery == 0 && c.pause > 0 {
			c.sleep(c.pause)
		}
		day := d.Format(warehouse.DateLayout)
		c.logger.Debugf("worked hours: %s (%d/%d)", day, i+1, len(days))

		params := url.Values{"from_date": {day}, "to_date": {day}}
		t, err := c.getCSV(ctx, workedHoursEndpoint, params)
		if err != nil {
			return nil, errors.Wrapf(err, "worked hours %s", day)
		}
		batch, err := decodeWorkedHours(t, day)
		if err != nil {
			return nil, errors.Wrapf(err, "worked hours %s", day)
		}
		out = append(out, batch...)
	}
	return out, nil
}

// TimeEntries fetches the imputation events for the whole range.
func (c *Client) TimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error) {
	t, err := c.getCSV(ctx, timeEntriesEndpoint, rangeParams(from, to))
	if err != nil {
		return nil, errors.Wrap(err, "time entries")
	}
	return decodeTimeEntries(t)
}

// WorkEntries fetches the raw signing intervals for the whole range.
func (c *Client) WorkEntries(ctx context.Context, from, to time.Time) ([]domain.WorkEntry, error) {
	t, err := c.getCSV(ctx, workEntriesEndpoint, rangeParams(from, to))
	if err != nil {
		return nil, errors.Wrap(err, "work entries")
	}
	return decodeWorkEntries(t)
}

// DepartmentAssignments fetches the full assignment history; the
// endpoint is not bounded by the date range.
func (c *Client) DepartmentAssignments(ctx context.Context) ([]domain.DepartmentAssignment, error) {
	t, err := c.getCSV(ctx, departmentAssignmentsEndpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "department assignments")
	}
	return decodeDepartmentAssignments(t)
}

func rangeParams(from, to time.Time) url.Values {
	return url.Values{
		"from_date": {from.Format(warehouse.DateLayout)},
		"to_date":   {to.Format(warehouse.DateLayout)},
	}
}

func dateRange(from, to time.Time) []time.Time {
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

