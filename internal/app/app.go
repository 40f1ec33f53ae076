package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/amaumene/zoetrope/internal/api"
	"github.com/amaumene/zoetrope/internal/config"
	"github.com/amaumene/zoetrope/internal/controllers"
	"github.com/amaumene/zoetrope/internal/models"
	"github.com/amaumene/zoetrope/internal/scheduler"
)

// App holds every long-lived component of the daemon
type App struct {
	Config     *config.Config
	Logger     *logrus.Logger
	Store      models.Store
	Registry   *prometheus.Registry
	Tracer     trace.TracerProvider
	Collection *controllers.CollectionController
	Dashboard  *controllers.DashboardController
	Search     *controllers.SearchController
	Inbox      *controllers.InboxController
	Scheduler  *scheduler.Scheduler
	Server     *api.Server
}
