//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/controllers"
	"github.com/newscred/lead-router/dispatcher"
	"github.com/newscred/lead-router/redistribution"
	"github.com/newscred/lead-router/scheduler"
	"github.com/newscred/lead-router/storage"
)

var (
	configInjectorSet = wire.NewSet(wire.Bind(new(config.HTTPConfig), new(*config.Config)), wire.Bind(new(config.RouterConfig), new(*config.Config)),
		wire.Bind(new(config.RedistributionConfig), new(*config.Config)), wire.Bind(new(config.SchedulerConfig), new(*config.Config)))
	repositoryInjectorSet = wire.NewSet(getAppRepository, getQueueRepository, getPoolLeadRepository, getAuditRepository, getRedistributionJobRepository,
		getLockRepository)
	routerWithControllerSet = wire.NewSet(configInjectorSet, repositoryInjectorSet, NewServerListener,
		wire.Bind(new(controllers.ServerLifecycleListener), new(*ServerLifecycleListenerImpl)), dispatcher.DispatcherInjector,
		redistribution.RedistributionInjector, scheduler.SchedulerInjector, controllers.ControllerInjector,
		wire.Struct(new(HTTPServiceContainer), "Configuration", "DataAccessor", "Server", "Listener", "Dispatcher", "JobRunner", "Scheduler"))
)

// GetAppVersion retrieves the app version
func GetAppVersion() config.AppVersion {
	wire.Build(config.GetVersion)

	return ""
}

// GetHTTPServer builds the router over an initialized data accessor and starts serving HTTP
func GetHTTPServer(configuration *config.Config, dataAccessor storage.DataAccessor) (*HTTPServiceContainer, error) {
	wire.Build(routerWithControllerSet)

	return &HTTPServiceContainer{}, nil
}
