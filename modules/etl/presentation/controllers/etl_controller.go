package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/nimbusbi/timefact/modules/etl/domain/warehouse"
	"github.com/nimbusbi/timefact/modules/etl/services"
	"github.com/nimbusbi/timefact/pkg/composables"
	"github.com/nimbusbi/timefact/pkg/httpapi"
	"github.com/nimbusbi/timefact/pkg/serrors"
	"github.com/nimbusbi/timefact/pkg/server"
)

var (
	errInvalidBody = serrors.NewError("ETL_INVALID_BODY", "invalid request body, JSON expected", "")
	errMissingDate = serrors.NewError("ETL_MISSING_DATE", "both from_date and to_date must be provided", "")
	errBadDate     = serrors.NewError("ETL_BAD_DATE", "from_date and to_date must be YYYY-MM-DD dates", "")
	errRunFailed   = serrors.NewError("ETL_RUN_FAILED", "synchronization run failed", "")
)

// SyncRunner is the pipeline surface the controller depends on.
type SyncRunner interface {
	Run(ctx context.Context, from, to time.Time) (services.RunResult, error)
}

type RunRequest struct {
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

type RunResponse struct {
	Message             string `json:"message"`
	Elapsed             string `json:"elapsed"`
	ImputationsAdded    int    `json:"imputations_added"`
	AttendanceAdded     int    `json:"attendance_added"`
	ImputationsComputed int    `json:"imputations_computed"`
	AttendanceComputed  int    `json:"attendance_computed"`
}

type EtlController struct {
	runner   SyncRunner
	basePath string
}

func NewEtlController(runner SyncRunner) server.Controller {
	return &EtlController{
		runner:   runner,
		basePath: "/etl",
	}
}

func (c *EtlController) Key() string {
	return c.basePath
}

func (c *EtlController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/run", c.Run).Methods(http.MethodPost)
}

// Run triggers one synchronous reconciliation over the requested date
// range and reports elapsed time and row counts.
func (c *EtlController) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteCodedError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	if req.FromDate == "" || req.ToDate == "" {
		_ = httpapi.WriteCodedError(w, http.StatusBadRequest, errMissingDate)
		return
	}

	from, err := time.Parse(warehouse.DateLayout, req.FromDate)
	if err != nil {
		_ = httpapi.WriteCodedError(w, http.StatusBadRequest, errBadDate)
		return
	}
	to, err := time.Parse(warehouse.DateLayout, req.ToDate)
	if err != nil {
		_ = httpapi.WriteCodedError(w, http.StatusBadRequest, errBadDate)
		return
	}

	result, err := c.runner.Run(r.Context(), from, to)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("synchronization run failed")
		_ = httpapi.WriteCodedError(w, http.StatusInternalServerError, errRunFailed.WithTemplateData(map[string]string{
			"cause": err.Error(),
		}))
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, &RunResponse{
		Message:             "synchronization completed",
		Elapsed:             result.Elapsed.String(),
		ImputationsAdded:    result.ImputationsAdded,
		AttendanceAdded:     result.AttendanceAdded,
		ImputationsComputed: result.ImputationsProcessed,
		AttendanceComputed:  result.AttendanceProcessed,
	})
}
