// Package etl assembles the reconciliation module: Sesame client,
// warehouse repository, sync service and HTTP controllers.
package etl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/nimbusbi/timefact/modules/etl/infrastructure/persistence"
	"github.com/nimbusbi/timefact/modules/etl/infrastructure/sesame"
	"github.com/nimbusbi/timefact/modules/etl/presentation/controllers"
	"github.com/nimbusbi/timefact/modules/etl/services"
	"github.com/nimbusbi/timefact/pkg/configuration"
	"github.com/nimbusbi/timefact/pkg/eventbus"
	"github.com/nimbusbi/timefact/pkg/server"
)

type Module struct {
	SyncService *services.SyncService
	Controllers []server.Controller
}

func NewModule(conf *configuration.Configuration, logger *logrus.Logger, bus eventbus.EventBus) *Module {
	client := sesame.NewClient(conf.Sesame, logger)
	repo := persistence.NewWarehouseRepository(conf.Database.Schema)
	syncService := services.NewSyncService(client, repo, nil, bus)

	if bus != nil {
		services.NewMetricsRecorder(prometheus.DefaultRegisterer).Subscribe(bus)
	}

	return &Module{
		SyncService: syncService,
		Controllers: []server.Controller{
			controllers.NewHealthController(),
			controllers.NewEtlController(syncService),
		},
	}
}

func (m *Module) Name() string {
	return "etl"
}
