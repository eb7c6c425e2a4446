package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/dispatcher"
	"github.com/newscred/lead-router/storage/data"
	"github.com/rs/zerolog/hlog"
)

const (
	leadsPath          = "/leads"
	headerLeadPriority = "X-Lead-Priority"
	asyncQueryParamKey = "async"
)

// LeadsController receives new leads and distributes them
type LeadsController struct {
	Dispatcher   dispatcher.LeadDispatcher
	RouterConfig config.RouterConfig
}

// NewLeadsController creates the controller for POST /leads
func NewLeadsController(leadDispatcher dispatcher.LeadDispatcher, routerConfig config.RouterConfig) *LeadsController {
	return &LeadsController{Dispatcher: leadDispatcher, RouterConfig: routerConfig}
}

// Post distributes the lead in the body and answers with the outcome. With `?async=true` the lead is only
// queued and 202 is returned.
func (controller *LeadsController) Post(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	lead := &data.Lead{}
	if !readJSON(w, r, lead) {
		return
	}
	actor := getActor(r, controller.RouterConfig.GetActorHeaderName())
	priority := getPriority(r)
	if async, _ := strconv.ParseBool(r.URL.Query().Get(asyncQueryParamKey)); async {
		if err := controller.Dispatcher.Submit(lead, actor, priority); err != nil {
			writeDispatchErr(w, r, err)
			return
		}
		writeStatus(w, http.StatusAccepted, nil)
		return
	}
	result, err := controller.Dispatcher.Dispatch(r.Context(), lead, actor, priority)
	if err != nil {
		writeDispatchErr(w, r, err)
		return
	}
	writeJSON(w, result)
}

func writeDispatchErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dispatcher.ErrInvalidLead):
		writeStatus(w, http.StatusBadRequest, err)
	case errors.Is(err, dispatcher.ErrDispatcherStopped):
		writeStatus(w, http.StatusServiceUnavailable, ErrServiceUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		hlog.FromRequest(r).Warn().Err(err).Msg("client went away before the lead was distributed")
		writeStatus(w, http.StatusServiceUnavailable, err)
	default:
		writeErr(w, err)
	}
}

func getPriority(r *http.Request) uint {
	priority, err := strconv.ParseUint(r.Header.Get(headerLeadPriority), 10, 32)
	if err != nil {
		return 0
	}
	return uint(priority)
}

// GetPath returns the endpoint's path
func (controller *LeadsController) GetPath() string {
	return leadsPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (controller *LeadsController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return leadsPath
}
