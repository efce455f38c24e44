package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nimbusbi/timefact/pkg/httpapi"
	"github.com/nimbusbi/timefact/pkg/server"
)

type HealthController struct{}

func NewHealthController() server.Controller {
	return &HealthController{}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.Get).Methods(http.MethodGet)
}

func (c *HealthController) Get(w http.ResponseWriter, r *http.Request) {
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
