package server

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/nimbusbi/timefact/pkg/configuration"
	"github.com/nimbusbi/timefact/pkg/constants"
	"github.com/nimbusbi/timefact/pkg/metrics"
	"github.com/nimbusbi/timefact/pkg/middleware"
	"github.com/nimbusbi/timefact/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Pool          *pgxpool.Pool
	Controllers   []server.Controller
}

// Default assembles the HTTP server with the standard middleware stack
// and the optional operational endpoints.
func Default(options *DefaultOptions) *server.HTTPServer {
	middlewares := []mux.MiddlewareFunc{
		middleware.Recover(options.Logger),
		middleware.WithLogger(options.Logger, options.Configuration.RequestIDHeader),
		middleware.Provide(constants.PoolKey, options.Pool),
	}

	controllers := options.Controllers
	if options.Configuration.Prometheus.Enabled {
		controllers = append(controllers, metrics.NewPrometheusController(options.Configuration.Prometheus.Path))
	}

	return server.NewHTTPServer(controllers, middlewares, nil, nil)
}
