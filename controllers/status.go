package controllers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
)

const (
	statusPath  = "/_status"
	metricsPath = "/metrics"
)

// AppData to deserialize in status endpoint
type AppData struct {
	SeedData  *config.SeedData
	AppStatus data.AppStatus
}

// NewStatusController Factory for new StatusController
func NewStatusController(appRepo storage.AppRepository) *StatusController {
	statusController := &StatusController{appRepository: appRepo}
	return statusController
}

// StatusController is the controller for `/_status` endpoint
type StatusController struct {
	appRepository storage.AppRepository
}

// GetPath returns the endpoint path
func (cont *StatusController) GetPath() string {
	return statusPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (cont *StatusController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return statusPath
}

// Get is the GET /_status endpoint controller
func (cont *StatusController) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	app, err := cont.appRepository.GetApp()
	if err != nil {
		writeErr(w, err)
		return
	}
	data := AppData{SeedData: app.GetSeedData(), AppStatus: app.GetStatus()}
	writeJSON(w, data)
}

// MetricsController exposes the prometheus registry at `/metrics`
type MetricsController struct {
	handler http.Handler
}

// NewMetricsController wraps the prometheus handler
func NewMetricsController(handler http.Handler) *MetricsController {
	return &MetricsController{handler: handler}
}

// GetPath returns the endpoint path
func (cont *MetricsController) GetPath() string {
	return metricsPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (cont *MetricsController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return metricsPath
}

// Get is the GET /metrics endpoint controller
func (cont *MetricsController) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cont.handler.ServeHTTP(w, r)
}
